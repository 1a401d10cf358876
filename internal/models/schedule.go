package models

import "time"

// ScheduleRecord is one flattened schedule row: an occurrence projected onto
// one of its sections.
type ScheduleRecord struct {
	CourseID        string `json:"course_id"`
	Type            string `json:"type"`
	Day             string `json:"day"`
	StartPeriod     int    `json:"start_period"`
	StartSubSlot    int    `json:"start_sub_slot"`
	DurationPeriods int    `json:"duration_periods"`
	DurationMinutes int    `json:"duration_minutes"`
	RoomID          string `json:"room_id"`
	RoomType        string `json:"room_type"`
	Building        string `json:"building"`
	InstructorID    string `json:"instructor_id,omitempty"`
	GroupID         string `json:"group_id,omitempty"`
	SectionID       string `json:"section_id"`
	Year            int    `json:"year"`
	LabType         string `json:"lab_type,omitempty"`
	TimeSlot        string `json:"time_slot"`
}

// InputErrorDetail names a catalog or occurrence that failed validation.
type InputErrorDetail struct {
	Ref     string `json:"ref"`
	Message string `json:"message"`
}

// TimetableRunStatus tracks the lifecycle of a persisted run.
type TimetableRunStatus string

const (
	TimetableRunStatusDraft     TimetableRunStatus = "DRAFT"
	TimetableRunStatusPublished TimetableRunStatus = "PUBLISHED"
)

// TimetableRun is one persisted generation result, versioned per label.
type TimetableRun struct {
	ID               string             `db:"id" json:"id"`
	Label            string             `db:"label" json:"label"`
	Version          int                `db:"version" json:"version"`
	Status           TimetableRunStatus `db:"status" json:"status"`
	Strategy         string             `db:"strategy" json:"strategy"`
	SolveTimeSeconds float64            `db:"solve_time_seconds" json:"solve_time_seconds"`
	TotalSessions    int                `db:"total_sessions" json:"total_sessions"`
	CreatedAt        time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `db:"updated_at" json:"updated_at"`
}

// TimetableSlot is one persisted schedule row belonging to a run.
type TimetableSlot struct {
	ID           string `db:"id" json:"id"`
	RunID        string `db:"run_id" json:"run_id"`
	CourseID     string `db:"course_id" json:"course_id"`
	SessionType  string `db:"session_type" json:"session_type"`
	Day          string `db:"day" json:"day"`
	StartPeriod  int    `db:"start_period" json:"start_period"`
	DurationMins int    `db:"duration_minutes" json:"duration_minutes"`
	RoomID       string `db:"room_id" json:"room_id"`
	InstructorID string `db:"instructor_id" json:"instructor_id"`
	SectionID    string `db:"section_id" json:"section_id"`
	TimeSlot     string `db:"time_slot" json:"time_slot"`
}
