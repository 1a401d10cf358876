// Package timetable holds the time grid, instance expansion, domain
// construction, and result extraction stages of the scheduling pipeline.
package timetable

import (
	"fmt"
	"strconv"
	"strings"
)

// PeriodMinutes is the fixed length of one teaching period.
const PeriodMinutes = 90

// weekdays is the teaching week wheel, Sunday first.
var weekdays = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// Grid parameterizes the weekly time model: D days of P periods, each period
// split into sub-slots of BaseSlotMinutes. Every occurrence occupies
// consecutive sub-slots within a single day.
type Grid struct {
	Days            int
	PeriodsPerDay   int
	BaseSlotMinutes int
	DayStartClock   string
}

// DefaultGrid mirrors the institutional default: five days, four 90-minute
// periods, 45-minute sub-slots, teaching from 09:00.
func DefaultGrid() Grid {
	return Grid{Days: 5, PeriodsPerDay: 4, BaseSlotMinutes: 45, DayStartClock: "09:00"}
}

// Validate rejects grids the solver cannot operate on.
func (g Grid) Validate() error {
	if g.Days < 1 || g.Days > 7 {
		return fmt.Errorf("days must be within 1..7, got %d", g.Days)
	}
	if g.PeriodsPerDay < 1 {
		return fmt.Errorf("periods_per_day must be >= 1, got %d", g.PeriodsPerDay)
	}
	if g.BaseSlotMinutes <= 0 || PeriodMinutes%g.BaseSlotMinutes != 0 {
		return fmt.Errorf("base_slot_minutes must divide %d, got %d", PeriodMinutes, g.BaseSlotMinutes)
	}
	if _, err := parseClock(g.DayStartClock); err != nil {
		return fmt.Errorf("day_start_clock: %w", err)
	}
	return nil
}

// SubslotsPerPeriod is how many sub-slots one period holds.
func (g Grid) SubslotsPerPeriod() int {
	return PeriodMinutes / g.BaseSlotMinutes
}

// SlotsPerDay is the number of sub-slots in one day.
func (g Grid) SlotsPerDay() int {
	return g.PeriodsPerDay * g.SubslotsPerPeriod()
}

// TotalSlots is the number of sub-slots in the whole week.
func (g Grid) TotalSlots() int {
	return g.Days * g.SlotsPerDay()
}

// DayOf maps a week-wide sub-slot index to its day.
func (g Grid) DayOf(start int) int {
	return start / g.SlotsPerDay()
}

// SlotsNeeded converts a session length in minutes to sub-slots. Lengths not
// divisible by the base sub-slot are a fatal input error.
func (g Grid) SlotsNeeded(lengthMinutes int) (int, error) {
	if lengthMinutes <= 0 || lengthMinutes%g.BaseSlotMinutes != 0 {
		return 0, fmt.Errorf("length %d is not a positive multiple of %d minutes", lengthMinutes, g.BaseSlotMinutes)
	}
	return lengthMinutes / g.BaseSlotMinutes, nil
}

// DayName returns the calendar name of a day index.
func (g Grid) DayName(day int) string {
	return weekdays[day%len(weekdays)]
}

// Clock renders the wall-clock time at which a sub-slot within a day begins.
func (g Grid) Clock(subslot int) string {
	startMinutes, _ := parseClock(g.DayStartClock)
	total := startMinutes + subslot*g.BaseSlotMinutes
	return fmt.Sprintf("%02d:%02d", total/60%24, total%60)
}

// TimeRange renders the "HH:MM–HH:MM" band an in-day placement covers.
func (g Grid) TimeRange(startSubslot, slots int) string {
	return g.Clock(startSubslot) + "–" + g.Clock(startSubslot+slots)
}

func parseClock(clock string) (int, error) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM, got %q", clock)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("bad hour in %q", clock)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("bad minute in %q", clock)
	}
	return hours*60 + minutes, nil
}
