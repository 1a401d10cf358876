package solver

import (
	"sort"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

// ImprovePlacement is the advisory post-pass: sessions sitting in the last
// period of a day are moved to an earlier start on the same day when the
// move keeps every hard constraint intact. Instructor load and slot
// preferences stay advisory, so a move is only ever a relocation of a single
// occurrence with its room and instructor unchanged. The pass is
// deterministic: occurrences are visited in id order and the earliest legal
// start wins.
func ImprovePlacement(p *Problem, assignments map[string]models.Assignment) int {
	if len(assignments) == 0 {
		return 0
	}

	index := indexResources(p)
	totalSlots := p.Grid.TotalSlots()
	sections := newBusyGrid(len(index.sections), totalSlots)
	instrs := newBusyGrid(len(index.instructors), totalSlots)
	rooms := newBusyGrid(len(index.rooms), totalSlots)
	slotsPerDay := p.Grid.SlotsPerDay()

	occByID := make(map[string]int, len(p.Occurrences))
	for i, occ := range p.Occurrences {
		occByID[occ.ID] = i
	}

	occupyAll := func(occ models.Occurrence, weekStart int, instrID, roomID string, on bool) {
		for _, sectionID := range occ.Cohort {
			if on {
				sections.occupy(index.sections[sectionID], weekStart, occ.Slots)
			} else {
				sections.release(index.sections[sectionID], weekStart, occ.Slots)
			}
		}
		if instrID != "" {
			if on {
				instrs.occupy(index.instructors[instrID], weekStart, occ.Slots)
			} else {
				instrs.release(index.instructors[instrID], weekStart, occ.Slots)
			}
		}
		if on {
			rooms.occupy(index.rooms[roomID], weekStart, occ.Slots)
		} else {
			rooms.release(index.rooms[roomID], weekStart, occ.Slots)
		}
	}

	for id, assignment := range assignments {
		occ := p.Occurrences[occByID[id]]
		occupyAll(occ, assignment.Day*slotsPerDay+assignment.Start, assignment.InstructorID, assignment.RoomID, true)
	}

	ids := make([]string, 0, len(assignments))
	for id := range assignments {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	lastPeriodStart := (p.Grid.PeriodsPerDay - 1) * p.Grid.SubslotsPerPeriod()
	moves := 0

	for _, id := range ids {
		assignment := assignments[id]
		occ := p.Occurrences[occByID[id]]
		if occ.Type == models.SessionProject {
			continue
		}
		if assignment.Start < lastPeriodStart {
			continue
		}

		currentWeekStart := assignment.Day*slotsPerDay + assignment.Start
		occupyAll(occ, currentWeekStart, assignment.InstructorID, assignment.RoomID, false)

		moved := false
		for _, weekStart := range p.Domains[occByID[id]].Starts {
			if p.Grid.DayOf(weekStart) != assignment.Day {
				continue
			}
			startInDay := weekStart % slotsPerDay
			if startInDay >= assignment.Start {
				break
			}
			if !spanFree(sections, instrs, rooms, index, occ, weekStart, assignment.InstructorID, assignment.RoomID) {
				continue
			}
			assignment.Start = startInDay
			assignments[id] = assignment
			occupyAll(occ, weekStart, assignment.InstructorID, assignment.RoomID, true)
			moved = true
			moves++
			break
		}
		if !moved {
			occupyAll(occ, currentWeekStart, assignment.InstructorID, assignment.RoomID, true)
		}
	}
	return moves
}

func spanFree(sections, instrs, rooms *busyGrid, index resourceIndex, occ models.Occurrence, weekStart int, instrID, roomID string) bool {
	for _, sectionID := range occ.Cohort {
		if !sections.free(index.sections[sectionID], weekStart, occ.Slots) {
			return false
		}
	}
	if instrID != "" && !instrs.free(index.instructors[instrID], weekStart, occ.Slots) {
		return false
	}
	return rooms.free(index.rooms[roomID], weekStart, occ.Slots)
}
