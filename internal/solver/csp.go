package solver

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

// cspSolver is the declarative strategy: the problem is compiled into a
// constraint model (one start, room, and instructor variable per occurrence,
// the day functionally linked to the start) and searched systematically.
// Workers partition the first variable's start domain and race; each owns
// its private search state and they communicate only through cancellation
// flags and the result slots. The winner is the lowest-indexed worker that
// completed a solution, which keeps the outcome deterministic for a given
// input and worker count.
type cspSolver struct {
	workers int
	logger  *zap.Logger
}

// pairConstraint relates one occurrence to a lower-indexed one. The
// conditional exclusions (same room, same instructor, same day) apply to
// every pair; sharedStudents and projectPair are precomputed from cohorts.
type pairConstraint struct {
	other          int
	sharedStudents bool
	projectPair    bool
}

// placement is a candidate value tuple for one occurrence.
type placement struct {
	day, startInDay, slots int
	room, instr            string
}

type cspModel struct {
	problem     *Problem
	constraints [][]pairConstraint // constraints[i] references only j < i
}

func compileModel(p *Problem) *cspModel {
	model := &cspModel{
		problem:     p,
		constraints: make([][]pairConstraint, len(p.Occurrences)),
	}
	for i := 1; i < len(p.Occurrences); i++ {
		for j := 0; j < i; j++ {
			a, b := p.Occurrences[i], p.Occurrences[j]
			model.constraints[i] = append(model.constraints[i], pairConstraint{
				other:          j,
				sharedStudents: a.SharesStudents(b),
				projectPair: a.Type == models.SessionProject &&
					b.Type == models.SessionProject &&
					a.GroupID != "" && a.GroupID == b.GroupID,
			})
		}
	}
	return model
}

// satisfied evaluates one binary constraint between two placements.
func (c pairConstraint) satisfied(a, b placement) bool {
	overlap := a.day == b.day &&
		a.startInDay < b.startInDay+b.slots &&
		b.startInDay < a.startInDay+a.slots
	if overlap {
		if a.room == b.room {
			return false
		}
		if a.instr != "" && a.instr == b.instr {
			return false
		}
		if c.sharedStudents {
			return false
		}
	}
	if c.projectPair && a.day != b.day {
		return false
	}
	return true
}

func (s *cspSolver) Solve(ctx context.Context, p *Problem) *Result {
	if len(p.Occurrences) == 0 {
		return &Result{Status: StatusSuccess, Assignments: map[string]models.Assignment{}}
	}

	model := compileModel(p)
	deadline := deadlineOf(ctx)

	workers := s.workers
	if max := len(p.Domains[0].Starts); workers > max && max > 0 {
		workers = max
	}
	if workers < 1 {
		workers = 1
	}

	results := make([]*workerResult, workers)
	cancels := make([]atomic.Bool, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			results[w] = model.search(w, workers, deadline, &cancels[w])
			if results[w].solved {
				for later := w + 1; later < workers; later++ {
					cancels[later].Store(true)
				}
			}
		}(w)
	}
	wg.Wait()

	var attempts, backtracks int64
	timedOut := false
	for _, wr := range results {
		attempts += wr.attempts
		backtracks += wr.backtracks
		timedOut = timedOut || wr.timedOut
	}

	for w := 0; w < workers; w++ {
		if results[w].solved {
			s.logger.Debug("constraint search solved",
				zap.Int("winner", w),
				zap.Int64("attempts", attempts),
				zap.Int64("backtracks", backtracks),
			)
			return &Result{
				Status:      StatusSuccess,
				Assignments: results[w].assignments,
				Attempts:    attempts,
				Backtracks:  backtracks,
			}
		}
	}

	status := StatusInfeasible
	if timedOut {
		status = StatusTimeout
	}
	return &Result{
		Status:      status,
		Unscheduled: allOccurrenceIDs(p),
		Attempts:    attempts,
		Backtracks:  backtracks,
	}
}

type workerResult struct {
	solved      bool
	timedOut    bool
	assignments map[string]models.Assignment
	attempts    int64
	backtracks  int64
}

type cspSearch struct {
	model      *cspModel
	placements []placement
	assigned   []bool
	deadline   time.Time
	cancel     *atomic.Bool
	attempts   int64
	backtracks int64
	timedOut   bool
	canceled   bool
}

// search runs the systematic search over the worker's partition: the first
// variable only tries start positions congruent to the worker index modulo
// the worker count; deeper variables use their full domains.
func (m *cspModel) search(workerIdx, workers int, deadline time.Time, cancel *atomic.Bool) *workerResult {
	search := &cspSearch{
		model:      m,
		placements: make([]placement, len(m.problem.Occurrences)),
		assigned:   make([]bool, len(m.problem.Occurrences)),
		deadline:   deadline,
		cancel:     cancel,
	}
	solved := search.assign(0, workerIdx, workers)

	result := &workerResult{
		solved:     solved,
		timedOut:   search.timedOut,
		attempts:   search.attempts,
		backtracks: search.backtracks,
	}
	if solved {
		result.assignments = search.export()
	}
	return result
}

func (s *cspSearch) assign(varIdx, workerIdx, workers int) bool {
	if varIdx == len(s.model.problem.Occurrences) {
		return true
	}
	occ := s.model.problem.Occurrences[varIdx]
	domain := s.model.problem.Domains[varIdx]
	slotsPerDay := s.model.problem.Grid.SlotsPerDay()

	instructors := domain.Instructors
	if !occ.HasInstructor {
		instructors = []string{""}
	}

	for startPos := range domain.Starts {
		if varIdx == 0 && startPos%workers != workerIdx {
			continue
		}
		weekStart := domain.Starts[startPos]
		candidate := placement{
			day:        domain.StartDays[startPos][1],
			startInDay: weekStart % slotsPerDay,
			slots:      occ.Slots,
		}
		for _, instrID := range instructors {
			candidate.instr = instrID
			for _, roomID := range domain.Rooms {
				candidate.room = roomID

				s.attempts++
				if s.attempts%deadlineCheckInterval == 0 {
					if s.cancel.Load() {
						s.canceled = true
						return false
					}
					if time.Now().After(s.deadline) {
						s.timedOut = true
						return false
					}
				}

				if !s.consistent(varIdx, candidate) {
					continue
				}
				s.placements[varIdx] = candidate
				s.assigned[varIdx] = true
				if s.assign(varIdx+1, workerIdx, workers) {
					return true
				}
				if s.timedOut || s.canceled {
					return false
				}
				s.backtracks++
				s.assigned[varIdx] = false
			}
		}
	}
	return false
}

// consistent checks the candidate against every constraint binding the
// variable to already-assigned ones.
func (s *cspSearch) consistent(varIdx int, candidate placement) bool {
	for _, constraint := range s.model.constraints[varIdx] {
		if !s.assigned[constraint.other] {
			continue
		}
		if !constraint.satisfied(candidate, s.placements[constraint.other]) {
			return false
		}
	}
	return true
}

func (s *cspSearch) export() map[string]models.Assignment {
	assignments := make(map[string]models.Assignment, len(s.placements))
	for i, occ := range s.model.problem.Occurrences {
		assignments[occ.ID] = models.Assignment{
			OccurrenceID: occ.ID,
			Day:          s.placements[i].day,
			Start:        s.placements[i].startInDay,
			RoomID:       s.placements[i].room,
			InstructorID: s.placements[i].instr,
		}
	}
	return assignments
}
