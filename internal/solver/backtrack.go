package solver

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

// deadlineCheckInterval is how many candidate placements are tried between
// wall-clock checks.
const deadlineCheckInterval = 2048

// backtracker is the hand-rolled strategy: depth-first placement with
// forward pruning over busy bitsets, iterating day, start, instructor, and
// room in that nested order.
type backtracker struct {
	bySection bool
	logger    *zap.Logger
}

type backtrackState struct {
	problem  *Problem
	order    []int
	index    resourceIndex
	sections *busyGrid
	instrs   *busyGrid
	rooms    *busyGrid

	// projectDays pins every project occurrence of a group to one day.
	projectDays   map[string]int
	projectCounts map[string]int

	assignments map[string]models.Assignment
	attempts    int64
	backtracks  int64
	deadline    time.Time
	timedOut    bool
}

func (b *backtracker) Solve(ctx context.Context, p *Problem) *Result {
	state := &backtrackState{
		problem:       p,
		order:         b.searchOrder(p),
		index:         indexResources(p),
		projectDays:   map[string]int{},
		projectCounts: map[string]int{},
		assignments:   make(map[string]models.Assignment, len(p.Occurrences)),
		deadline:      deadlineOf(ctx),
	}
	totalSlots := p.Grid.TotalSlots()
	state.sections = newBusyGrid(len(state.index.sections), totalSlots)
	state.instrs = newBusyGrid(len(state.index.instructors), totalSlots)
	state.rooms = newBusyGrid(len(state.index.rooms), totalSlots)

	solved := state.place(0)

	result := &Result{
		Attempts:   state.attempts,
		Backtracks: state.backtracks,
	}
	switch {
	case solved:
		result.Status = StatusSuccess
		result.Assignments = state.assignments
	case state.timedOut:
		result.Status = StatusTimeout
		result.Unscheduled = state.remaining()
	default:
		result.Status = StatusInfeasible
	}
	b.logger.Debug("backtracking finished",
		zap.String("status", string(result.Status)),
		zap.Int64("attempts", state.attempts),
		zap.Int64("backtracks", state.backtracks),
	)
	return result
}

// searchOrder fixes the variable ordering: grouped by owning section (the
// first section of the cohort) with all occurrences of one owning section
// placed consecutively, or flat lexicographic by occurrence id. Both are
// total orders, making outcomes reproducible.
func (b *backtracker) searchOrder(p *Problem) []int {
	order := make([]int, len(p.Occurrences))
	for i := range order {
		order[i] = i
	}
	if b.bySection {
		sort.SliceStable(order, func(i, j int) bool {
			a, c := p.Occurrences[order[i]], p.Occurrences[order[j]]
			if cohortAnchor(a) != cohortAnchor(c) {
				return cohortAnchor(a) < cohortAnchor(c)
			}
			return a.ID < c.ID
		})
	} else {
		sort.SliceStable(order, func(i, j int) bool {
			return p.Occurrences[order[i]].ID < p.Occurrences[order[j]].ID
		})
	}
	return order
}

// place assigns the k-th occurrence in search order and recurses. It returns
// true on a complete assignment; a false return with timedOut set means the
// deadline expired somewhere below.
func (s *backtrackState) place(k int) bool {
	if k == len(s.order) {
		return true
	}
	occIdx := s.order[k]
	occ := s.problem.Occurrences[occIdx]
	domain := s.problem.Domains[occIdx]
	slotsPerDay := s.problem.Grid.SlotsPerDay()

	instructors := domain.Instructors
	if !occ.HasInstructor {
		instructors = []string{""}
	}

	for startPos, weekStart := range domain.Starts {
		day := domain.StartDays[startPos][1]

		if occ.Type == models.SessionProject && occ.GroupID != "" {
			if pinned, ok := s.projectDays[occ.GroupID]; ok && pinned != day {
				continue
			}
		}
		if !s.cohortFree(occ, weekStart) {
			continue
		}

		for _, instrID := range instructors {
			if instrID != "" && !s.instrs.free(s.index.instructors[instrID], weekStart, occ.Slots) {
				continue
			}
			for _, roomID := range domain.Rooms {
				s.attempts++
				if s.attempts%deadlineCheckInterval == 0 && time.Now().After(s.deadline) {
					s.timedOut = true
					return false
				}
				if !s.rooms.free(s.index.rooms[roomID], weekStart, occ.Slots) {
					continue
				}

				s.occupy(occ, weekStart, day, instrID, roomID)
				s.assignments[occ.ID] = models.Assignment{
					OccurrenceID: occ.ID,
					Day:          day,
					Start:        weekStart % slotsPerDay,
					RoomID:       roomID,
					InstructorID: instrID,
				}

				if s.place(k + 1) {
					return true
				}
				if s.timedOut {
					return false
				}

				s.backtracks++
				s.release(occ, weekStart, day, instrID, roomID)
				delete(s.assignments, occ.ID)
			}
		}
	}
	return false
}

func (s *backtrackState) cohortFree(occ models.Occurrence, weekStart int) bool {
	for _, sectionID := range occ.Cohort {
		if !s.sections.free(s.index.sections[sectionID], weekStart, occ.Slots) {
			return false
		}
	}
	return true
}

func (s *backtrackState) occupy(occ models.Occurrence, weekStart, day int, instrID, roomID string) {
	for _, sectionID := range occ.Cohort {
		s.sections.occupy(s.index.sections[sectionID], weekStart, occ.Slots)
	}
	if instrID != "" {
		s.instrs.occupy(s.index.instructors[instrID], weekStart, occ.Slots)
	}
	s.rooms.occupy(s.index.rooms[roomID], weekStart, occ.Slots)
	if occ.Type == models.SessionProject && occ.GroupID != "" {
		s.projectDays[occ.GroupID] = day
		s.projectCounts[occ.GroupID]++
	}
}

func (s *backtrackState) release(occ models.Occurrence, weekStart, day int, instrID, roomID string) {
	for _, sectionID := range occ.Cohort {
		s.sections.release(s.index.sections[sectionID], weekStart, occ.Slots)
	}
	if instrID != "" {
		s.instrs.release(s.index.instructors[instrID], weekStart, occ.Slots)
	}
	s.rooms.release(s.index.rooms[roomID], weekStart, occ.Slots)
	if occ.Type == models.SessionProject && occ.GroupID != "" {
		s.projectCounts[occ.GroupID]--
		if s.projectCounts[occ.GroupID] == 0 {
			delete(s.projectCounts, occ.GroupID)
			delete(s.projectDays, occ.GroupID)
		}
	}
}

// remaining lists occurrences without an assignment, in search order.
func (s *backtrackState) remaining() []string {
	var ids []string
	for _, occIdx := range s.order {
		occ := s.problem.Occurrences[occIdx]
		if _, ok := s.assignments[occ.ID]; !ok {
			ids = append(ids, occ.ID)
		}
	}
	return ids
}
