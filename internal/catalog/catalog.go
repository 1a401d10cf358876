// Package catalog normalizes the scheduling input into read-only, indexed
// views. Construction validates referential links; nothing mutates a catalog
// after Build returns.
package catalog

import (
	"fmt"
	"sort"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

// Catalog is the normalized in-memory input document.
type Catalog struct {
	Rooms       []models.Room
	Instructors []models.Instructor
	Groups      []models.Group
	Sections    []models.Section
	Courses     []models.Course

	roomByID       map[string]models.Room
	instructorByID map[string]models.Instructor
	groupByID      map[string]models.Group
	sectionByID    map[string]models.Section
	courseByID     map[string]models.Course

	sectionsByGroup map[string][]models.Section
	groupsByYear    map[int][]models.Group
}

// Build indexes the input entities. It returns the catalog together with the
// structural errors and advisory warnings discovered along the way; a
// non-empty error list means the catalog must not be scheduled.
func Build(rooms []models.Room, instructors []models.Instructor, groups []models.Group, sections []models.Section, courses []models.Course) (*Catalog, []models.InputErrorDetail, []string) {
	c := &Catalog{
		Rooms:           rooms,
		Instructors:     instructors,
		Groups:          groups,
		Sections:        sections,
		Courses:         courses,
		roomByID:        make(map[string]models.Room, len(rooms)),
		instructorByID:  make(map[string]models.Instructor, len(instructors)),
		groupByID:       make(map[string]models.Group, len(groups)),
		sectionByID:     make(map[string]models.Section, len(sections)),
		courseByID:      make(map[string]models.Course, len(courses)),
		sectionsByGroup: make(map[string][]models.Section),
		groupsByYear:    make(map[int][]models.Group),
	}

	var errs []models.InputErrorDetail
	var warnings []string

	knownRoomTypes := make(map[models.RoomType]struct{}, len(models.KnownRoomTypes))
	for _, rt := range models.KnownRoomTypes {
		knownRoomTypes[rt] = struct{}{}
	}

	for _, room := range rooms {
		if _, dup := c.roomByID[room.ID]; dup {
			errs = append(errs, inputErr(room.ID, "duplicate room id"))
			continue
		}
		if _, ok := knownRoomTypes[room.Type]; !ok {
			errs = append(errs, inputErr(room.ID, fmt.Sprintf("unknown room type %q", room.Type)))
			continue
		}
		if room.Capacity < 0 {
			errs = append(errs, inputErr(room.ID, "capacity must be >= 0"))
			continue
		}
		c.roomByID[room.ID] = room
	}

	for _, instr := range instructors {
		if _, dup := c.instructorByID[instr.ID]; dup {
			errs = append(errs, inputErr(instr.ID, "duplicate instructor id"))
			continue
		}
		if instr.Role != models.RoleProfessor && instr.Role != models.RoleTA {
			errs = append(errs, inputErr(instr.ID, fmt.Sprintf("unknown role %q", instr.Role)))
			continue
		}
		c.instructorByID[instr.ID] = instr
	}

	for _, group := range groups {
		if _, dup := c.groupByID[group.ID]; dup {
			errs = append(errs, inputErr(group.ID, "duplicate group id"))
			continue
		}
		if group.Year < 1 {
			errs = append(errs, inputErr(group.ID, "year must be >= 1"))
			continue
		}
		c.groupByID[group.ID] = group
		c.groupsByYear[group.Year] = append(c.groupsByYear[group.Year], group)
	}

	for _, section := range sections {
		if _, dup := c.sectionByID[section.ID]; dup {
			errs = append(errs, inputErr(section.ID, "duplicate section id"))
			continue
		}
		if _, ok := c.groupByID[section.GroupID]; !ok {
			errs = append(errs, inputErr(section.ID, fmt.Sprintf("section references unknown group %q", section.GroupID)))
			continue
		}
		c.sectionByID[section.ID] = section
		c.sectionsByGroup[section.GroupID] = append(c.sectionsByGroup[section.GroupID], section)
	}

	for _, course := range courses {
		if _, dup := c.courseByID[course.ID]; dup {
			errs = append(errs, inputErr(course.ID, "duplicate course id"))
			continue
		}
		for _, kind := range course.Kinds {
			if kind.Length <= 0 {
				errs = append(errs, inputErr(course.ID, fmt.Sprintf("%s kind has non-positive length %d", kind.Type, kind.Length)))
			}
			if kind.Type == models.SessionLab && (kind.LabType == nil || *kind.LabType == "") && !course.IsProject {
				errs = append(errs, inputErr(course.ID, "Lab kind requires lab_type"))
			}
		}
		c.courseByID[course.ID] = course
	}

	// Qualifications naming unknown courses are tolerated; flag them so the
	// planner can clean the roster.
	for _, instr := range instructors {
		for _, courseID := range instr.QualifiedCourses {
			if _, ok := c.courseByID[courseID]; !ok {
				warnings = append(warnings, fmt.Sprintf("instructor %s is qualified for unknown course %s", instr.ID, courseID))
			}
		}
	}

	// Deterministic iteration everywhere downstream.
	for gid := range c.sectionsByGroup {
		list := c.sectionsByGroup[gid]
		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	}
	for year := range c.groupsByYear {
		list := c.groupsByYear[year]
		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	}

	return c, errs, warnings
}

func inputErr(ref, message string) models.InputErrorDetail {
	return models.InputErrorDetail{Ref: ref, Message: message}
}

// RoomByID returns the room for the id.
func (c *Catalog) RoomByID(id string) (models.Room, bool) {
	room, ok := c.roomByID[id]
	return room, ok
}

// InstructorByID returns the instructor for the id.
func (c *Catalog) InstructorByID(id string) (models.Instructor, bool) {
	instr, ok := c.instructorByID[id]
	return instr, ok
}

// GroupByID returns the group for the id.
func (c *Catalog) GroupByID(id string) (models.Group, bool) {
	group, ok := c.groupByID[id]
	return group, ok
}

// SectionByID returns the section for the id.
func (c *Catalog) SectionByID(id string) (models.Section, bool) {
	section, ok := c.sectionByID[id]
	return section, ok
}

// CourseByID returns the course for the id.
func (c *Catalog) CourseByID(id string) (models.Course, bool) {
	course, ok := c.courseByID[id]
	return course, ok
}

// SectionsOfGroup returns the group's sections ordered by id.
func (c *Catalog) SectionsOfGroup(groupID string) []models.Section {
	return c.sectionsByGroup[groupID]
}

// EligibleGroups returns the groups a course applies to: year matches and
// the major either is unset or equals the group's specialization. Ordered by
// group id.
func (c *Catalog) EligibleGroups(course models.Course) []models.Group {
	var eligible []models.Group
	for _, group := range c.groupsByYear[course.Year] {
		if course.Major != nil && (group.Specialization == nil || *group.Specialization != *course.Major) {
			continue
		}
		eligible = append(eligible, group)
	}
	return eligible
}

// EligibleSections returns all sections of the eligible groups, ordered by
// section id.
func (c *Catalog) EligibleSections(course models.Course) []models.Section {
	var eligible []models.Section
	for _, group := range c.EligibleGroups(course) {
		eligible = append(eligible, c.sectionsByGroup[group.ID]...)
	}
	sort.Slice(eligible, func(i, j int) bool { return eligible[i].ID < eligible[j].ID })
	return eligible
}

// QualifiedInstructors returns instructors qualified for the course with the
// role demanded by the session type, ordered by instructor id.
func (c *Catalog) QualifiedInstructors(courseID string, sessionType models.SessionType) []models.Instructor {
	wantRole := models.RoleTA
	if sessionType == models.SessionLecture {
		wantRole = models.RoleProfessor
	}
	var qualified []models.Instructor
	for _, instr := range c.Instructors {
		if instr.Role != wantRole {
			continue
		}
		for _, qualifiedCourse := range instr.QualifiedCourses {
			if qualifiedCourse == courseID {
				qualified = append(qualified, instr)
				break
			}
		}
	}
	sort.Slice(qualified, func(i, j int) bool { return qualified[i].ID < qualified[j].ID })
	return qualified
}
