package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/catalog"
	"github.com/noah-isme/uni-timetable-api/internal/dto"
	"github.com/noah-isme/uni-timetable-api/internal/models"
	"github.com/noah-isme/uni-timetable-api/internal/solver"
	"github.com/noah-isme/uni-timetable-api/internal/timetable"
	"github.com/noah-isme/uni-timetable-api/pkg/config"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

// Response status strings. Success carries a schedule; the other three carry
// diagnostics only.
const (
	StatusSuccess    = "Success"
	StatusInputError = "InputError"
	StatusInfeasible = "Infeasible"
	StatusTimeout    = "Timeout"
)

// advisoryWeeklySubslots is the advisory instructor load ceiling; exceeding
// it yields a warning, never a hard failure.
const advisoryWeeklySubslots = 20

// RunStore persists successful runs; nil disables persistence.
type RunStore interface {
	SaveRun(ctx context.Context, run *models.TimetableRun, slots []models.TimetableSlot) error
}

// TimetableService drives the full generation pipeline: catalog, instance
// expansion, feasibility pre-check, domain construction, solve, advisory
// post-pass, and extraction.
type TimetableService struct {
	runs      RunStore
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	defaults  config.SolverConfig
}

// NewTimetableService wires the generation dependencies. The run store may
// be nil when persistence is disabled.
func NewTimetableService(runs RunStore, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, defaults config.SolverConfig) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		runs:      runs,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		defaults:  defaults,
	}
}

// Generate runs one complete solve and returns the terminal result. An error
// is returned only for malformed requests or internal faults; InputError,
// Infeasible, and Timeout are reported in the response body.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable generation payload")
	}

	grid, opts := s.resolveOptions(req.Options)
	if err := grid.Validate(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time grid options")
	}

	started := time.Now()

	cat, inputErrs, warnings := catalog.Build(req.Rooms, req.Instructors, req.Groups, req.Sections, req.Courses)
	if len(inputErrs) > 0 {
		return s.inputErrorResponse(opts.Strategy, started, inputErrs, warnings), nil
	}

	occurrences, expandErrs := timetable.Expand(cat, grid)
	inputErrs = append(inputErrs, expandErrs...)
	inputErrs = append(inputErrs, timetable.Precheck(cat, grid, occurrences)...)
	if len(inputErrs) > 0 {
		return s.inputErrorResponse(opts.Strategy, started, inputErrs, warnings), nil
	}

	domains := timetable.BuildDomains(cat, grid, occurrences)
	problem := &solver.Problem{Grid: grid, Occurrences: occurrences, Domains: domains}

	engine, err := solver.New(opts, s.logger)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid solver options")
	}

	solveCtx, cancel := context.WithTimeout(ctx, opts.MaxTime)
	defer cancel()
	result := engine.Solve(solveCtx, problem)

	elapsed := time.Since(started)
	s.metrics.ObserveSolve(opts.Strategy, string(result.Status), elapsed)
	s.logger.Info("timetable solve finished",
		zap.String("strategy", opts.Strategy),
		zap.String("status", string(result.Status)),
		zap.Int("occurrences", len(occurrences)),
		zap.Int64("attempts", result.Attempts),
		zap.Duration("elapsed", elapsed),
	)

	resp := &dto.GenerateTimetableResponse{
		SolveTimeSeconds: round3(elapsed.Seconds()),
		Warnings:         warnings,
	}

	switch result.Status {
	case solver.StatusSuccess:
		moves := solver.ImprovePlacement(problem, result.Assignments)
		if moves > 0 {
			s.logger.Debug("advisory post-pass applied", zap.Int("moves", moves))
		}
		records := timetable.Extract(cat, grid, occurrences, result.Assignments)
		resp.Status = StatusSuccess
		resp.TotalSessions = len(occurrences)
		resp.Schedule = records
		resp.Warnings = append(resp.Warnings, s.advisoryWarnings(cat, occurrences, result.Assignments)...)
		s.persist(ctx, req.Label, opts.Strategy, resp)
	case solver.StatusTimeout:
		resp.Status = StatusTimeout
		resp.Message = "solve deadline expired before a complete assignment was found"
		resp.Unscheduled = result.Unscheduled
	default:
		resp.Status = StatusInfeasible
		resp.Message = "no assignment satisfies the hard constraints"
		resp.Unscheduled = result.Unscheduled
	}
	return resp, nil
}

func (s *TimetableService) inputErrorResponse(strategy string, started time.Time, errs []models.InputErrorDetail, warnings []string) *dto.GenerateTimetableResponse {
	s.metrics.ObserveSolve(strategy, StatusInputError, time.Since(started))
	return &dto.GenerateTimetableResponse{
		Status:           StatusInputError,
		Message:          fmt.Sprintf("%d input error(s); search not attempted", len(errs)),
		SolveTimeSeconds: round3(time.Since(started).Seconds()),
		Errors:           errs,
		Warnings:         warnings,
	}
}

// resolveOptions overlays request options on the configured defaults.
func (s *TimetableService) resolveOptions(reqOpts dto.TimetableOptions) (timetable.Grid, solver.Options) {
	grid := timetable.Grid{
		Days:            s.defaults.Days,
		PeriodsPerDay:   s.defaults.PeriodsPerDay,
		BaseSlotMinutes: s.defaults.BaseSlotMinutes,
		DayStartClock:   s.defaults.DayStartClock,
	}
	if reqOpts.Days > 0 {
		grid.Days = reqOpts.Days
	}
	if reqOpts.PeriodsPerDay > 0 {
		grid.PeriodsPerDay = reqOpts.PeriodsPerDay
	}
	if reqOpts.BaseSlotMinutes > 0 {
		grid.BaseSlotMinutes = reqOpts.BaseSlotMinutes
	}
	if reqOpts.DayStartClock != "" {
		grid.DayStartClock = reqOpts.DayStartClock
	}

	opts := solver.Options{
		Strategy: s.defaults.Strategy,
		MaxTime:  s.defaults.MaxTime,
		Workers:  s.defaults.Workers,
	}
	if reqOpts.Strategy != "" {
		opts.Strategy = reqOpts.Strategy
	}
	if opts.Strategy == "" {
		opts.Strategy = solver.StrategyConstraint
	}
	if reqOpts.MaxTimeSeconds > 0 {
		opts.MaxTime = time.Duration(reqOpts.MaxTimeSeconds) * time.Second
	}
	if opts.MaxTime <= 0 {
		opts.MaxTime = 300 * time.Second
	}
	if reqOpts.Workers > 0 {
		opts.Workers = reqOpts.Workers
	}
	return grid, opts
}

// advisoryWarnings surfaces soft findings on a successful schedule: rooms
// the week never uses and instructors loaded past the advisory ceiling.
func (s *TimetableService) advisoryWarnings(cat *catalog.Catalog, occurrences []models.Occurrence, assignments map[string]models.Assignment) []string {
	var warnings []string

	usedRooms := make(map[string]struct{}, len(assignments))
	loads := map[string]int{}
	occByID := make(map[string]models.Occurrence, len(occurrences))
	for _, occ := range occurrences {
		occByID[occ.ID] = occ
	}
	for id, assignment := range assignments {
		usedRooms[assignment.RoomID] = struct{}{}
		if assignment.InstructorID != "" {
			loads[assignment.InstructorID] += occByID[id].Slots
		}
	}

	for _, room := range cat.Rooms {
		if _, ok := usedRooms[room.ID]; !ok {
			warnings = append(warnings, fmt.Sprintf("room %s is unused this week", room.ID))
		}
	}

	overloaded := make([]string, 0)
	for instrID, load := range loads {
		if load > advisoryWeeklySubslots {
			overloaded = append(overloaded, fmt.Sprintf("instructor %s teaches %d sub-slots, above the advisory %d", instrID, load, advisoryWeeklySubslots))
		}
	}
	sort.Strings(overloaded)
	warnings = append(warnings, overloaded...)
	return warnings
}

// persist stores a successful run when persistence is configured. Storage
// failures degrade to a warning; the solve result is already final.
func (s *TimetableService) persist(ctx context.Context, label, strategy string, resp *dto.GenerateTimetableResponse) {
	if s.runs == nil {
		return
	}
	if label == "" {
		label = "default"
	}
	run := &models.TimetableRun{
		ID:               uuid.NewString(),
		Label:            label,
		Status:           models.TimetableRunStatusDraft,
		Strategy:         strategy,
		SolveTimeSeconds: resp.SolveTimeSeconds,
		TotalSessions:    resp.TotalSessions,
	}
	slots := make([]models.TimetableSlot, 0, len(resp.Schedule))
	for _, record := range resp.Schedule {
		slots = append(slots, models.TimetableSlot{
			ID:           uuid.NewString(),
			RunID:        run.ID,
			CourseID:     record.CourseID,
			SessionType:  record.Type,
			Day:          record.Day,
			StartPeriod:  record.StartPeriod,
			DurationMins: record.DurationMinutes,
			RoomID:       record.RoomID,
			InstructorID: record.InstructorID,
			SectionID:    record.SectionID,
			TimeSlot:     record.TimeSlot,
		})
	}
	if err := s.runs.SaveRun(ctx, run, slots); err != nil {
		s.logger.Warn("failed to persist timetable run", zap.Error(err))
		resp.Warnings = append(resp.Warnings, "generated schedule could not be persisted")
		return
	}
	resp.RunID = run.ID
}

func round3(v float64) float64 {
	return float64(int64(v*1000+0.5)) / 1000
}
