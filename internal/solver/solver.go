// Package solver places session occurrences onto the weekly grid. Two
// interchangeable strategies share one contract: a declarative constraint
// model searched systematically (optionally in parallel), and a hand-rolled
// backtracker over busy bitsets.
package solver

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/models"
	"github.com/noah-isme/uni-timetable-api/internal/timetable"
)

// Strategy names accepted by the factory.
const (
	StrategyConstraint       = "constraint"
	StrategyBacktrackSection = "backtrack-section"
	StrategyBacktrackCourse  = "backtrack-course"
)

// Status is the terminal outcome of a solve.
type Status string

const (
	StatusSuccess    Status = "Success"
	StatusInfeasible Status = "Infeasible"
	StatusTimeout    Status = "Timeout"
)

// Problem bundles the read-only inputs of one solve: the grid, the expanded
// occurrences, and their precomputed domains (index-aligned).
type Problem struct {
	Grid        timetable.Grid
	Occurrences []models.Occurrence
	Domains     []timetable.Domain
}

// Result is the outcome of one solve invocation.
type Result struct {
	Status      Status
	Assignments map[string]models.Assignment
	Unscheduled []string
	Attempts    int64
	Backtracks  int64
}

// Options select a strategy and bound the search.
type Options struct {
	Strategy string
	MaxTime  time.Duration
	Workers  int
}

// Solver is implemented by every placement strategy. Each call owns fresh
// internal state; no state survives an invocation. The context deadline is
// the wall-clock budget, checked cooperatively during search.
type Solver interface {
	Solve(ctx context.Context, p *Problem) *Result
}

// deadlineOf extracts the context deadline, defaulting far into the future.
func deadlineOf(ctx context.Context) time.Time {
	if deadline, ok := ctx.Deadline(); ok {
		return deadline
	}
	return time.Now().Add(24 * time.Hour)
}

// New builds the solver for the requested strategy.
func New(opts Options, logger *zap.Logger) (Solver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch opts.Strategy {
	case StrategyConstraint, "":
		workers := opts.Workers
		if workers < 1 {
			workers = 1
		}
		return &cspSolver{workers: workers, logger: logger}, nil
	case StrategyBacktrackSection:
		return &backtracker{bySection: true, logger: logger}, nil
	case StrategyBacktrackCourse:
		return &backtracker{bySection: false, logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", opts.Strategy)
	}
}

// resourceIndex maps the string ids touched by a problem onto dense ints for
// the busy bitsets.
type resourceIndex struct {
	sections    map[string]int
	rooms       map[string]int
	instructors map[string]int
}

func indexResources(p *Problem) resourceIndex {
	idx := resourceIndex{
		sections:    map[string]int{},
		rooms:       map[string]int{},
		instructors: map[string]int{},
	}
	for i, occ := range p.Occurrences {
		for _, sectionID := range occ.Cohort {
			if _, ok := idx.sections[sectionID]; !ok {
				idx.sections[sectionID] = len(idx.sections)
			}
		}
		for _, roomID := range p.Domains[i].Rooms {
			if _, ok := idx.rooms[roomID]; !ok {
				idx.rooms[roomID] = len(idx.rooms)
			}
		}
		for _, instrID := range p.Domains[i].Instructors {
			if _, ok := idx.instructors[instrID]; !ok {
				idx.instructors[instrID] = len(idx.instructors)
			}
		}
	}
	return idx
}

// cohortAnchor is the first section of an occurrence's cohort, used as its
// owning section for section-ordered search.
func cohortAnchor(occ models.Occurrence) string {
	if len(occ.Cohort) == 0 {
		return ""
	}
	return occ.Cohort[0]
}

// allOccurrenceIDs returns every occurrence id, sorted, for failure reports.
func allOccurrenceIDs(p *Problem) []string {
	ids := make([]string, len(p.Occurrences))
	for i, occ := range p.Occurrences {
		ids[i] = occ.ID
	}
	sort.Strings(ids)
	return ids
}
