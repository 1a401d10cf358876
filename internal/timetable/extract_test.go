package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

func TestExtractFlattensPerSection(t *testing.T) {
	cat := twoSectionFixture(t, []models.Course{
		{ID: "C1", Name: "Course One", Year: 1, Kinds: []models.CourseKind{{Type: models.SessionLecture, Length: 90, SessionsPerWeek: 1}}},
	})
	grid := DefaultGrid()

	occurrences, errs := Expand(cat, grid)
	require.Empty(t, errs)
	require.Len(t, occurrences, 1)

	assignments := map[string]models.Assignment{
		occurrences[0].ID: {
			OccurrenceID: occurrences[0].ID,
			Day:          1,
			Start:        2,
			RoomID:       "R1",
			InstructorID: "P1",
		},
	}

	records := Extract(cat, grid, occurrences, assignments)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "C1", first.CourseID)
	assert.Equal(t, "Lecture", first.Type)
	assert.Equal(t, "Monday", first.Day)
	assert.Equal(t, 2, first.StartPeriod)
	assert.Equal(t, 0, first.StartSubSlot)
	assert.Equal(t, 1, first.DurationPeriods)
	assert.Equal(t, 90, first.DurationMinutes)
	assert.Equal(t, "R1", first.RoomID)
	assert.Equal(t, "classroom", first.RoomType)
	assert.Equal(t, "B1", first.Building)
	assert.Equal(t, "P1", first.InstructorID)
	assert.Equal(t, "G1", first.GroupID)
	assert.Equal(t, "G1-S1", first.SectionID)
	assert.Equal(t, 1, first.Year)
	assert.Equal(t, "10:30–12:00", first.TimeSlot)

	assert.Equal(t, "G1-S2", records[1].SectionID)
}

func TestExtractOrdersByDayStartCourseSection(t *testing.T) {
	cat := twoSectionFixture(t, []models.Course{
		{ID: "C1", Name: "One", Year: 1, Kinds: []models.CourseKind{{Type: models.SessionTut, Length: 45}}},
	})
	grid := DefaultGrid()

	occurrences, errs := Expand(cat, grid)
	require.Empty(t, errs)
	require.Len(t, occurrences, 2)

	assignments := map[string]models.Assignment{
		occurrences[0].ID: {OccurrenceID: occurrences[0].ID, Day: 3, Start: 0, RoomID: "R1", InstructorID: "TA1"},
		occurrences[1].ID: {OccurrenceID: occurrences[1].ID, Day: 0, Start: 4, RoomID: "R1", InstructorID: "TA1"},
	}

	records := Extract(cat, grid, occurrences, assignments)
	require.Len(t, records, 2)
	assert.Equal(t, "Sunday", records[0].Day)
	assert.Equal(t, "Wednesday", records[1].Day)
}

func TestExtractSkipsUnassigned(t *testing.T) {
	cat := twoSectionFixture(t, []models.Course{
		{ID: "C1", Name: "One", Year: 1, Kinds: []models.CourseKind{{Type: models.SessionTut, Length: 45}}},
	})
	grid := DefaultGrid()

	occurrences, errs := Expand(cat, grid)
	require.Empty(t, errs)

	records := Extract(cat, grid, occurrences, map[string]models.Assignment{})
	assert.Empty(t, records)
}
