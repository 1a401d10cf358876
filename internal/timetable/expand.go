package timetable

import (
	"fmt"
	"sort"
	"strings"

	"github.com/noah-isme/uni-timetable-api/internal/catalog"
	"github.com/noah-isme/uni-timetable-api/internal/models"
)

// Default weekly repetitions per session type when the catalog leaves
// sessions_per_week unset.
const (
	defaultLectureSessions = 2
	defaultOtherSessions   = 1
)

// Expand derives every atomic session occurrence the week must place: one per
// (course, kind, cohort, repetition). The returned list is deterministically
// ordered by (year, course id, kind type, cohort, repetition).
func Expand(cat *catalog.Catalog, grid Grid) ([]models.Occurrence, []models.InputErrorDetail) {
	var occurrences []models.Occurrence
	var errs []models.InputErrorDetail

	for _, course := range cat.Courses {
		eligibleGroups := cat.EligibleGroups(course)

		// A project course becomes one full-day occurrence per group no
		// matter how its kinds are declared.
		if course.IsProject {
			occurrences = append(occurrences, expandProject(cat, grid, course, eligibleGroups)...)
			continue
		}

		for _, kind := range course.Kinds {
			if kind.Type == models.SessionProject {
				occurrences = append(occurrences, expandProject(cat, grid, course, eligibleGroups)...)
				continue
			}

			slots, err := grid.SlotsNeeded(kind.Length)
			if err != nil {
				errs = append(errs, models.InputErrorDetail{
					Ref:     course.ID,
					Message: fmt.Sprintf("%s kind: %v", kind.Type, err),
				})
				continue
			}

			repetitions := kind.SessionsPerWeek
			if repetitions < 1 {
				if kind.Type == models.SessionLecture {
					repetitions = defaultLectureSessions
				} else {
					repetitions = defaultOtherSessions
				}
			}

			switch {
			case course.FullYear && (kind.Type == models.SessionLecture || kind.Type == models.SessionLab):
				occurrences = append(occurrences, expandFullYear(cat, course, kind, slots, repetitions)...)
			case kind.Type == models.SessionLecture:
				for _, group := range eligibleGroups {
					cohort := sectionIDs(cat.SectionsOfGroup(group.ID))
					for rep := 0; rep < repetitions; rep++ {
						occurrences = append(occurrences, models.Occurrence{
							ID:             occurrenceID(course.ID, group.ID, "LEC", rep),
							CourseID:       course.ID,
							Type:           models.SessionLecture,
							Year:           course.Year,
							Cohort:         cohort,
							GroupID:        group.ID,
							Students:       group.StudentsCount,
							Slots:          slots,
							HasInstructor:  true,
							IgnoreCapacity: kind.IgnoreCapacity,
							Repetition:     rep,
						})
					}
				}
			case kind.Type == models.SessionTut:
				for _, section := range cat.EligibleSections(course) {
					for rep := 0; rep < repetitions; rep++ {
						occurrences = append(occurrences, models.Occurrence{
							ID:             occurrenceID(course.ID, section.ID, "TUT", rep),
							CourseID:       course.ID,
							Type:           models.SessionTut,
							Year:           course.Year,
							Cohort:         []string{section.ID},
							GroupID:        section.GroupID,
							Students:       section.StudentsCount,
							Slots:          slots,
							HasInstructor:  true,
							IgnoreCapacity: kind.IgnoreCapacity,
							Repetition:     rep,
						})
					}
				}
			case kind.Type == models.SessionLab:
				occurrences = append(occurrences, expandLab(cat, course, kind, slots, repetitions, eligibleGroups)...)
			default:
				errs = append(errs, models.InputErrorDetail{
					Ref:     course.ID,
					Message: fmt.Sprintf("unknown session type %q", kind.Type),
				})
			}
		}
	}

	sortOccurrences(occurrences)
	return occurrences, errs
}

// expandLab partitions each eligible group's sections into consecutive
// bundles of up to max_sections_together; one occurrence per bundle. The
// default bundle size of 1 intentionally yields per-section labs.
func expandLab(cat *catalog.Catalog, course models.Course, kind models.CourseKind, slots, repetitions int, eligibleGroups []models.Group) []models.Occurrence {
	bundleSize := kind.MaxSectionsTogether
	if bundleSize < 1 {
		bundleSize = 1
	}
	labType := ""
	if kind.LabType != nil {
		labType = *kind.LabType
	}

	var occurrences []models.Occurrence
	for _, group := range eligibleGroups {
		sections := cat.SectionsOfGroup(group.ID)
		for lo := 0; lo < len(sections); lo += bundleSize {
			hi := lo + bundleSize
			if hi > len(sections) {
				hi = len(sections)
			}
			bundle := sections[lo:hi]
			cohort := sectionIDs(bundle)
			students := 0
			for _, section := range bundle {
				students += section.StudentsCount
			}
			for rep := 0; rep < repetitions; rep++ {
				occurrences = append(occurrences, models.Occurrence{
					ID:             occurrenceID(course.ID, strings.Join(cohort, "+"), "LAB", rep),
					CourseID:       course.ID,
					Type:           models.SessionLab,
					Year:           course.Year,
					Cohort:         cohort,
					GroupID:        group.ID,
					Students:       students,
					Slots:          slots,
					LabType:        labType,
					HasInstructor:  true,
					IgnoreCapacity: kind.IgnoreCapacity,
					Repetition:     rep,
				})
			}
		}
	}
	return occurrences
}

// expandProject coerces the session to one full teaching day per eligible
// group, with no instructor assignment.
func expandProject(cat *catalog.Catalog, grid Grid, course models.Course, eligibleGroups []models.Group) []models.Occurrence {
	var occurrences []models.Occurrence
	for _, group := range eligibleGroups {
		occurrences = append(occurrences, models.Occurrence{
			ID:            occurrenceID(course.ID, group.ID, "PROJECT", 0),
			CourseID:      course.ID,
			Type:          models.SessionProject,
			Year:          course.Year,
			Cohort:        sectionIDs(cat.SectionsOfGroup(group.ID)),
			GroupID:       group.ID,
			Students:      group.StudentsCount,
			Slots:         grid.SlotsPerDay(),
			HasInstructor: false,
			Repetition:    0,
		})
	}
	return occurrences
}

// expandFullYear builds the occurrences attended by every section of the
// course's year at once: one year-wide cohort, one occurrence per weekly
// repetition.
func expandFullYear(cat *catalog.Catalog, course models.Course, kind models.CourseKind, slots, repetitions int) []models.Occurrence {
	sections := cat.EligibleSections(course)
	if len(sections) == 0 {
		return nil
	}
	cohort := sectionIDs(sections)
	students := 0
	for _, section := range sections {
		students += section.StudentsCount
	}
	labType := ""
	if kind.LabType != nil {
		labType = *kind.LabType
	}
	suffix := "LEC"
	if kind.Type == models.SessionLab {
		suffix = "LAB"
	}

	var occurrences []models.Occurrence
	for rep := 0; rep < repetitions; rep++ {
		occurrences = append(occurrences, models.Occurrence{
			ID:             occurrenceID(course.ID, fmt.Sprintf("Y%d", course.Year), suffix, rep),
			CourseID:       course.ID,
			Type:           kind.Type,
			Year:           course.Year,
			Cohort:         cohort,
			Students:       students,
			Slots:          slots,
			LabType:        labType,
			HasInstructor:  true,
			IgnoreCapacity: kind.IgnoreCapacity,
			Repetition:     rep,
		})
	}
	return occurrences
}

func occurrenceID(courseID, cohortRef, suffix string, rep int) string {
	id := fmt.Sprintf("%s_%s_%s", courseID, cohortRef, suffix)
	if rep > 0 {
		id = fmt.Sprintf("%s#%d", id, rep)
	}
	return id
}

func sectionIDs(sections []models.Section) []string {
	ids := make([]string, len(sections))
	for i, section := range sections {
		ids[i] = section.ID
	}
	sort.Strings(ids)
	return ids
}

var kindRank = map[models.SessionType]int{
	models.SessionLecture: 0,
	models.SessionTut:     1,
	models.SessionLab:     2,
	models.SessionProject: 3,
}

func sortOccurrences(occurrences []models.Occurrence) {
	sort.SliceStable(occurrences, func(i, j int) bool {
		a, b := occurrences[i], occurrences[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.CourseID != b.CourseID {
			return a.CourseID < b.CourseID
		}
		if kindRank[a.Type] != kindRank[b.Type] {
			return kindRank[a.Type] < kindRank[b.Type]
		}
		if a.CohortKey() != b.CohortKey() {
			return a.CohortKey() < b.CohortKey()
		}
		return a.Repetition < b.Repetition
	})
}
