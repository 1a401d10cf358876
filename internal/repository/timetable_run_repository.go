package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

// TimetableRunRepository persists generated timetables as versioned runs.
type TimetableRunRepository struct {
	db *sqlx.DB
}

// NewTimetableRunRepository constructs the repository.
func NewTimetableRunRepository(db *sqlx.DB) *TimetableRunRepository {
	return &TimetableRunRepository{db: db}
}

// SaveRun inserts a run with the next version for its label together with
// its slots, atomically.
func (r *TimetableRunRepository) SaveRun(ctx context.Context, run *models.TimetableRun, slots []models.TimetableSlot) error {
	if run == nil {
		return fmt.Errorf("run payload is nil")
	}
	if run.Label == "" {
		return fmt.Errorf("label is required")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Status == "" {
		run.Status = models.TimetableRunStatusDraft
	}
	now := time.Now().UTC()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	run.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const nextVersionQuery = `SELECT COALESCE(MAX(version), 0) + 1 FROM timetable_runs WHERE label = $1`
	if err = sqlx.GetContext(ctx, tx, &run.Version, nextVersionQuery, run.Label); err != nil {
		return fmt.Errorf("compute next run version: %w", err)
	}

	const insertRunQuery = `
INSERT INTO timetable_runs (id, label, version, status, strategy, solve_time_seconds, total_sessions, created_at, updated_at)
VALUES (:id, :label, :version, :status, :strategy, :solve_time_seconds, :total_sessions, :created_at, :updated_at)`
	if _, err = sqlx.NamedExecContext(ctx, tx, insertRunQuery, run); err != nil {
		return fmt.Errorf("insert timetable run: %w", err)
	}

	const insertSlotQuery = `
INSERT INTO timetable_slots (id, run_id, course_id, session_type, day, start_period, duration_minutes, room_id, instructor_id, section_id, time_slot)
VALUES (:id, :run_id, :course_id, :session_type, :day, :start_period, :duration_minutes, :room_id, :instructor_id, :section_id, :time_slot)`
	for i := range slots {
		if slots[i].ID == "" {
			slots[i].ID = uuid.NewString()
		}
		slots[i].RunID = run.ID
		if _, err = sqlx.NamedExecContext(ctx, tx, insertSlotQuery, slots[i]); err != nil {
			return fmt.Errorf("insert timetable slot: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit timetable run: %w", err)
	}
	return nil
}

// ListByLabel returns all run versions for a label, newest first.
func (r *TimetableRunRepository) ListByLabel(ctx context.Context, label string) ([]models.TimetableRun, error) {
	const query = `SELECT id, label, version, status, strategy, solve_time_seconds, total_sessions, created_at, updated_at
FROM timetable_runs WHERE label = $1 ORDER BY version DESC`
	var runs []models.TimetableRun
	if err := r.db.SelectContext(ctx, &runs, query, label); err != nil {
		return nil, fmt.Errorf("list timetable runs: %w", err)
	}
	return runs, nil
}

// FindByID loads one run.
func (r *TimetableRunRepository) FindByID(ctx context.Context, id string) (*models.TimetableRun, error) {
	const query = `SELECT id, label, version, status, strategy, solve_time_seconds, total_sessions, created_at, updated_at
FROM timetable_runs WHERE id = $1`
	var run models.TimetableRun
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListSlots returns a run's schedule rows ordered by slot id. Slot ids are
// random UUIDs, so this is not the order in which the generator emitted them.
func (r *TimetableRunRepository) ListSlots(ctx context.Context, runID string) ([]models.TimetableSlot, error) {
	const query = `SELECT id, run_id, course_id, session_type, day, start_period, duration_minutes, room_id, instructor_id, section_id, time_slot
FROM timetable_slots WHERE run_id = $1 ORDER BY id`
	var slots []models.TimetableSlot
	if err := r.db.SelectContext(ctx, &slots, query, runID); err != nil {
		return nil, fmt.Errorf("list timetable slots: %w", err)
	}
	return slots, nil
}

// Delete removes a draft run and its slots.
func (r *TimetableRunRepository) Delete(ctx context.Context, id string) error {
	const slotQuery = `DELETE FROM timetable_slots WHERE run_id = $1
AND EXISTS (SELECT 1 FROM timetable_runs WHERE id = $1 AND status = '` + string(models.TimetableRunStatusDraft) + `')`
	if _, err := r.db.ExecContext(ctx, slotQuery, id); err != nil {
		return fmt.Errorf("delete timetable slots: %w", err)
	}
	const runQuery = `DELETE FROM timetable_runs WHERE id = $1 AND status = $2`
	result, err := r.db.ExecContext(ctx, runQuery, id, models.TimetableRunStatusDraft)
	if err != nil {
		return fmt.Errorf("delete timetable run: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("timetable run rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
