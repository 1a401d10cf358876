package models

// RoomType enumerates the physical room categories a catalog may declare.
type RoomType string

const (
	RoomClassroom      RoomType = "classroom"
	RoomTheater        RoomType = "theater"
	RoomHall           RoomType = "hall"
	RoomComputerLab    RoomType = "computer lab"
	RoomElectronicsLab RoomType = "electronics lab"
	RoomPhysicsLab     RoomType = "physics lab"
	RoomChemistryLab   RoomType = "chemistry lab"
	RoomBioLab         RoomType = "bio lab"
)

// KnownRoomTypes lists every accepted room type.
var KnownRoomTypes = []RoomType{
	RoomClassroom, RoomTheater, RoomHall,
	RoomComputerLab, RoomElectronicsLab, RoomPhysicsLab, RoomChemistryLab, RoomBioLab,
}

// Role is the teaching role of an instructor.
type Role string

const (
	RoleProfessor Role = "Professor"
	RoleTA        Role = "TA"
)

// SessionType is the kind of teaching session a course demands.
type SessionType string

const (
	SessionLecture SessionType = "Lecture"
	SessionTut     SessionType = "Tut"
	SessionLab     SessionType = "Lab"
	SessionProject SessionType = "Project"
)

// Room is a schedulable physical space.
type Room struct {
	ID       string   `json:"room_id"`
	Type     RoomType `json:"type"`
	Capacity int      `json:"capacity"`
	Building string   `json:"building"`
}

// Instructor teaches the courses it is qualified for, in its role.
type Instructor struct {
	ID               string   `json:"instr_id"`
	Name             string   `json:"name"`
	Role             Role     `json:"role"`
	QualifiedCourses []string `json:"qualified_courses"`
}

// Group is a cohort of students admitted in the same year, optionally
// narrowed to a specialization.
type Group struct {
	ID             string  `json:"group_id"`
	Year           int     `json:"year"`
	Specialization *string `json:"specialization"`
	SectionsCount  int     `json:"sections_count"`
	StudentsCount  int     `json:"students_count"`
}

// Section is a subdivision of a group.
type Section struct {
	ID            string `json:"section_id"`
	GroupID       string `json:"group_id"`
	StudentsCount int    `json:"students_count"`
}

// CourseKind describes one session type a course requires each week.
type CourseKind struct {
	Type                SessionType `json:"type"`
	Length              int         `json:"length"`
	LabType             *string     `json:"lab_type,omitempty"`
	SessionsPerWeek     int         `json:"sessions_per_week,omitempty"`
	MaxSectionsTogether int         `json:"max_sections_together,omitempty"`
	IgnoreCapacity      bool        `json:"ignore_capacity,omitempty"`
}

// Course describes a taught course and its weekly session demands.
type Course struct {
	ID        string       `json:"course_id"`
	Name      string       `json:"name"`
	Year      int          `json:"year"`
	Major     *string      `json:"major"`
	IsProject bool         `json:"is_project,omitempty"`
	FullYear  bool         `json:"full_year,omitempty"`
	Kinds     []CourseKind `json:"kinds"`
}
