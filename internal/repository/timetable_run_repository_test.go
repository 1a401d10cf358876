package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

func newRunRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTimetableRunRepositorySaveRun(t *testing.T) {
	db, mock, cleanup := newRunRepoMock(t)
	defer cleanup()
	repo := NewTimetableRunRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0) + 1 FROM timetable_runs WHERE label = $1")).
		WithArgs("fall-2026").
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_runs")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_slots")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	run := &models.TimetableRun{Label: "fall-2026", Strategy: "constraint", SolveTimeSeconds: 0.42, TotalSessions: 1}
	slots := []models.TimetableSlot{{
		CourseID: "C1", SessionType: "Lecture", Day: "Sunday",
		StartPeriod: 1, DurationMins: 90, RoomID: "R1", InstructorID: "P1",
		SectionID: "G1-S1", TimeSlot: "09:00–10:30",
	}}

	err := repo.SaveRun(context.Background(), run, slots)
	require.NoError(t, err)
	assert.Equal(t, 3, run.Version)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, run.ID, slots[0].RunID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRunRepositorySaveRunRollsBack(t *testing.T) {
	db, mock, cleanup := newRunRepoMock(t)
	defer cleanup()
	repo := NewTimetableRunRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0) + 1 FROM timetable_runs WHERE label = $1")).
		WithArgs("default").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.SaveRun(context.Background(), &models.TimetableRun{Label: "default"}, nil)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRunRepositorySaveRunRequiresLabel(t *testing.T) {
	db, _, cleanup := newRunRepoMock(t)
	defer cleanup()
	repo := NewTimetableRunRepository(db)

	require.Error(t, repo.SaveRun(context.Background(), &models.TimetableRun{}, nil))
	require.Error(t, repo.SaveRun(context.Background(), nil, nil))
}

func TestTimetableRunRepositoryListByLabel(t *testing.T) {
	db, mock, cleanup := newRunRepoMock(t)
	defer cleanup()
	repo := NewTimetableRunRepository(db)

	rows := sqlmock.NewRows([]string{"id", "label", "version", "status", "strategy", "solve_time_seconds", "total_sessions", "created_at", "updated_at"}).
		AddRow("run-2", "default", 2, string(models.TimetableRunStatusDraft), "constraint", 1.5, 42, time.Now(), time.Now()).
		AddRow("run-1", "default", 1, string(models.TimetableRunStatusPublished), "backtrack-course", 2.5, 42, time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, label, version").
		WithArgs("default").
		WillReturnRows(rows)

	runs, err := repo.ListByLabel(context.Background(), "default")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 2, runs[0].Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRunRepositoryListSlots(t *testing.T) {
	db, mock, cleanup := newRunRepoMock(t)
	defer cleanup()
	repo := NewTimetableRunRepository(db)

	rows := sqlmock.NewRows([]string{"id", "run_id", "course_id", "session_type", "day", "start_period", "duration_minutes", "room_id", "instructor_id", "section_id", "time_slot"}).
		AddRow("slot-1", "run-1", "C1", "Lecture", "Sunday", 1, 90, "R1", "P1", "G1-S1", "09:00–10:30")
	mock.ExpectQuery("SELECT id, run_id, course_id").
		WithArgs("run-1").
		WillReturnRows(rows)

	slots, err := repo.ListSlots(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "C1", slots[0].CourseID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRunRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRunRepoMock(t)
	defer cleanup()
	repo := NewTimetableRunRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_slots WHERE run_id = $1")).
		WithArgs("run-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_runs WHERE id = $1 AND status = $2")).
		WithArgs("run-1", string(models.TimetableRunStatusDraft)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "run-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRunRepositoryDeleteNotFound(t *testing.T) {
	db, mock, cleanup := newRunRepoMock(t)
	defer cleanup()
	repo := NewTimetableRunRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_slots WHERE run_id = $1")).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_runs WHERE id = $1 AND status = $2")).
		WithArgs("ghost", string(models.TimetableRunStatusDraft)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
