package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridDimensions(t *testing.T) {
	grid := DefaultGrid()
	assert.Equal(t, 2, grid.SubslotsPerPeriod())
	assert.Equal(t, 8, grid.SlotsPerDay())
	assert.Equal(t, 40, grid.TotalSlots())
	assert.Equal(t, 2, grid.DayOf(17))
}

func TestGridSlotsNeeded(t *testing.T) {
	grid := DefaultGrid()

	slots, err := grid.SlotsNeeded(90)
	require.NoError(t, err)
	assert.Equal(t, 2, slots)

	slots, err = grid.SlotsNeeded(45)
	require.NoError(t, err)
	assert.Equal(t, 1, slots)

	_, err = grid.SlotsNeeded(60)
	assert.Error(t, err)

	_, err = grid.SlotsNeeded(0)
	assert.Error(t, err)
}

func TestGridValidate(t *testing.T) {
	valid := DefaultGrid()
	require.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(*Grid)
	}{
		{"zero days", func(g *Grid) { g.Days = 0 }},
		{"eight days", func(g *Grid) { g.Days = 8 }},
		{"zero periods", func(g *Grid) { g.PeriodsPerDay = 0 }},
		{"base not dividing period", func(g *Grid) { g.BaseSlotMinutes = 40 }},
		{"bad clock", func(g *Grid) { g.DayStartClock = "nine" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			grid := DefaultGrid()
			tc.mutate(&grid)
			assert.Error(t, grid.Validate())
		})
	}
}

func TestGridClockAndTimeRange(t *testing.T) {
	grid := DefaultGrid()
	assert.Equal(t, "09:00", grid.Clock(0))
	assert.Equal(t, "09:45", grid.Clock(1))
	assert.Equal(t, "09:00–10:30", grid.TimeRange(0, 2))
	assert.Equal(t, "12:00–12:45", grid.TimeRange(4, 1))
}

func TestGridDayNames(t *testing.T) {
	grid := DefaultGrid()
	assert.Equal(t, "Sunday", grid.DayName(0))
	assert.Equal(t, "Thursday", grid.DayName(4))
}
