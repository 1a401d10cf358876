package dto

import "github.com/noah-isme/uni-timetable-api/internal/models"

// TimetableOptions tunes one generation call. Zero values fall back to the
// service defaults.
type TimetableOptions struct {
	MaxTimeSeconds  int    `json:"max_time_seconds" validate:"omitempty,min=1,max=3600"`
	Strategy        string `json:"strategy" validate:"omitempty,oneof=constraint backtrack-section backtrack-course"`
	Days            int    `json:"days" validate:"omitempty,min=1,max=7"`
	PeriodsPerDay   int    `json:"periods_per_day" validate:"omitempty,min=1,max=16"`
	BaseSlotMinutes int    `json:"base_slot_minutes" validate:"omitempty,min=1,max=90"`
	DayStartClock   string `json:"day_start_clock"`
	Workers         int    `json:"workers" validate:"omitempty,min=1,max=64"`
}

// GenerateTimetableRequest carries the full input document of one solve.
// Unrecognized fields are ignored by the JSON decoder.
type GenerateTimetableRequest struct {
	Rooms       []models.Room       `json:"rooms" validate:"required,min=1"`
	Instructors []models.Instructor `json:"instructors"`
	Groups      []models.Group      `json:"groups" validate:"required,min=1"`
	Sections    []models.Section    `json:"sections" validate:"required,min=1"`
	Courses     []models.Course     `json:"courses" validate:"required,min=1"`
	Options     TimetableOptions    `json:"options"`
	Label       string              `json:"label"`
}

// GenerateTimetableResponse is the terminal result of one generation call,
// successful or not. Status is one of Success, InputError, Infeasible,
// Timeout.
type GenerateTimetableResponse struct {
	Status           string                    `json:"status"`
	Message          string                    `json:"message,omitempty"`
	SolveTimeSeconds float64                   `json:"solve_time_seconds"`
	TotalSessions    int                       `json:"total_sessions,omitempty"`
	Schedule         []models.ScheduleRecord   `json:"schedule,omitempty"`
	Errors           []models.InputErrorDetail `json:"errors,omitempty"`
	Unscheduled      []string                  `json:"unscheduled,omitempty"`
	Warnings         []string                  `json:"warnings,omitempty"`
	RunID            string                    `json:"run_id,omitempty"`
}

// TimetableRunQuery filters persisted runs.
type TimetableRunQuery struct {
	Label string `form:"label"`
}
