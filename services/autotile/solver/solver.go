// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package solver

import (
	"fmt"
	"log/slog"
	"math"
)

// Input is the per-problem data handed to Init.
type Input struct {
	// Lower and Upper are the inclusive domains, one per variable.
	Lower []int64

	Upper []int64

	// Initial is the starting assignment. Each Run restarts from it.
	Initial []int64

	// SolveLast deprioritises variables until no other variable makes
	// progress. Optional.
	SolveLast []bool
}

// Stats describes the most recent Run.
type Stats struct {
	// Iterations is the number of outer iterations started.
	Iterations int `json:"iterations"`

	// LocateRounds is the number of LocateRegion phases run.
	LocateRounds int `json:"locate_rounds"`

	// TuneRounds is the number of FineTune phases run.
	TuneRounds int `json:"tune_rounds"`

	// Recorded is the number of RecordBestVarVal calls.
	Recorded int `json:"recorded"`

	// Commits is the number of committed updates.
	Commits int `json:"commits"`

	// Found is the number of solutions returned.
	Found int `json:"found"`

	// Reason is why the loop stopped.
	Reason TerminalReason `json:"reason"`
}

// Baseline is the objective and buffer margin an update is compared against.
type Baseline struct {
	Objective float64
	Margin    float64
}

// Solver is the general tile-size solver.
//
// Description:
//
//	Construct with New, call Init once with domains and the initial
//	assignment, then call Run any number of times. Every Run restarts from
//	the initial assignment, so identical inputs give identical results.
//
// Thread Safety: Not safe for concurrent use.
type Solver struct {
	cfg       Config
	problem   Problem
	objective ObjectiveEvaluator
	logger    *slog.Logger

	vars     *VariableSet
	cons     *ConstraintSet
	momentum *MomentumTracker
	visited  *VisitedSet
	pool     *SolutionPool

	initialized  bool
	state        RunState
	bestLocality Locality
	bestPriority TunePriority
	stats        Stats
}

// New wires a Problem and a Workspace into a Solver.
//
// Inputs:
//   - cfg: Solver configuration. Must match the one the workspace was sized for.
//   - problem: Numeric model. Must not be nil.
//   - ws: Arena from NewWorkspace. Must not be nil.
//   - opts: Optional settings such as WithLogger.
//
// Outputs:
//   - *Solver: The solver, not yet initialised.
//   - error: ErrInvalidConfig, ErrNilProblem, ErrNilWorkspace or ErrDimensionMismatch.
func New(cfg Config, problem Problem, ws *Workspace, opts ...Option) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if problem == nil {
		return nil, ErrNilProblem
	}
	if ws == nil {
		return nil, ErrNilWorkspace
	}
	if err := ws.fits(cfg); err != nil {
		return nil, err
	}

	s := &Solver{
		cfg:      cfg,
		problem:  problem,
		logger:   slog.Default().With(slog.String("component", "general_solver")),
		vars:     ws.Variables,
		cons:     ws.Constraints,
		momentum: ws.Momentum,
		visited:  ws.Visited,
		pool:     ws.Pool,
	}
	if obj, ok := problem.(ObjectiveEvaluator); ok {
		s.objective = obj
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Init loads domains and the initial assignment.
//
// Outputs:
//   - error: ErrDimensionMismatch or ErrInvalidBounds; the solver stays
//     uninitialised on error.
func (s *Solver) Init(in Input) error {
	if err := s.vars.Load(in.Lower, in.Upper, in.Initial, in.SolveLast); err != nil {
		s.initialized = false
		return fmt.Errorf("init solver: %w", err)
	}
	s.initialized = true
	s.reset()
	return nil
}

// Config returns the solver configuration.
func (s *Solver) Config() Config { return s.cfg }

// State returns the state of the outer loop.
func (s *Solver) State() RunState { return s.state }

// Stats returns statistics of the most recent Run.
func (s *Solver) Stats() Stats { return s.stats }

// Variables returns the variable state.
func (s *Solver) Variables() *VariableSet { return s.vars }

// Constraints returns the constraint state.
func (s *Solver) Constraints() *ConstraintSet { return s.cons }

// Pool returns the solution pool.
func (s *Solver) Pool() *SolutionPool { return s.pool }

// Visited returns the visited set.
func (s *Solver) Visited() *VisitedSet { return s.visited }

// Solutions returns copies of the retained solutions, best first. Unlike
// Run it allocates.
func (s *Solver) Solutions() []Solution {
	out := make([]Solution, 0, s.pool.Len())
	for i := 0; i < s.pool.Len(); i++ {
		sol, _ := s.pool.Entry(i)
		out = append(out, sol)
	}
	return out
}

// Run searches for the best assignments.
//
// Description:
//
//	Each outer iteration calls Initialize, then LocateRegion when the
//	assignment is infeasible, or FineTune when it is feasible and has not
//	been visited before. The loop stops when a phase fails, a feasible
//	assignment repeats, or the iteration budget is exhausted.
//
// Inputs:
//   - out: Rows receiving the solutions, best first. Each row must hold
//     one value per variable. See NewResultBuffer.
//
// Outputs:
//   - int: Number of rows written. Inspect it before trusting out.
//   - error: ErrNotInitialized, or ErrNoSolution when nothing was found.
//     The pool keeps whatever was recorded either way.
func (s *Solver) Run(out [][]int64) (int, error) {
	if !s.initialized {
		return 0, ErrNotInitialized
	}
	s.reset()

	for s.state != StateTerminated {
		if s.stats.Iterations >= s.cfg.Iterations {
			s.terminate(ReasonBudget)
			break
		}
		s.stats.Iterations++
		s.Initialize()

		switch s.state {
		case StateInfeasible:
			s.stats.LocateRounds++
			if !s.LocateRegion() {
				s.terminate(ReasonLocateFailed)
			}
		case StateFeasible:
			if s.visited.SearchVars(s.vars.value, true) {
				s.terminate(ReasonConverged)
				break
			}
			s.stats.TuneRounds++
			if !s.FineTune() {
				s.terminate(ReasonTuneFailed)
			}
		}
	}

	n := s.pool.GetResult(out)
	s.stats.Found = n
	s.logger.Debug("general solver finished",
		slog.String("reason", s.stats.Reason.String()),
		slog.Int("iterations", s.stats.Iterations),
		slog.Int("locate_rounds", s.stats.LocateRounds),
		slog.Int("tune_rounds", s.stats.TuneRounds),
		slog.Int("solutions", n),
	)
	if n == 0 {
		return 0, ErrNoSolution
	}
	return n, nil
}

// Initialize prepares one outer iteration.
//
// Description:
//
//	Clears this iteration's momentum proposals, recomputes every
//	constraint from the current assignment, marks the violated constraints
//	active, evaluates global feasibility and rotates
//	history <- recorded <- value for every variable.
func (s *Solver) Initialize() {
	s.momentum.Reset()
	s.problem.RefreshConstraints(s.vars.value, AllVariables, s.cons.values)
	s.cons.Reweight()
	s.vars.Rotate()
	if s.cons.Feasible() {
		s.state = StateFeasible
	} else {
		s.state = StateInfeasible
	}
}

// RecordBestVarVal offers the current assignment to the SolutionPool.
func (s *Solver) RecordBestVarVal() bool {
	s.stats.Recorded++
	values := s.vars.value
	return s.pool.AddVarVal(values, s.objectiveOf(values), s.problem.BufferMargin(values))
}

// UpdateMomentum proposes target for variable idx with the given gain.
//
// Outputs:
//   - bool: True if the proposal replaced the variable's previous one.
func (s *Solver) UpdateMomentum(idx int, target int64, gain float64) bool {
	if !s.vars.valid(idx) {
		return false
	}
	lower, upper := s.vars.lower[idx], s.vars.upper[idx]
	if target < lower || target > upper {
		return false
	}
	if !s.momentum.Offer(idx, s.momentum.Score(idx, gain)) {
		return false
	}
	s.vars.target[idx] = target
	return true
}

// GetBestChoice returns the variable with the highest proposal that would
// actually change the assignment. Ties go to the lower index.
func (s *Solver) GetBestChoice() (int, bool) {
	best := -1
	bestScore := math.Inf(-1)
	for i := 0; i < s.vars.Len(); i++ {
		score, ok := s.momentum.Proposal(i)
		if !ok || s.vars.target[i] == s.vars.value[i] {
			continue
		}
		if best < 0 || score > bestScore {
			best, bestScore = i, score
		}
	}
	return best, best >= 0
}

// UpdateBestVar commits the pending target of variable idx.
//
// Description:
//
//	Sets the value, makes the variable's proposal its momentum and zeroes
//	the momentum of every other variable, refreshes the constraints the
//	variable touches and calls the Problem's trace hook.
func (s *Solver) UpdateBestVar(idx int) bool {
	if !s.vars.valid(idx) {
		return false
	}
	if !s.vars.Set(idx, s.vars.target[idx]) {
		return false
	}
	s.momentum.Commit(idx)
	s.problem.RefreshConstraints(s.vars.value, idx, s.cons.values)
	s.problem.TraceAssignment(s.vars.value)
	s.stats.Commits++
	return true
}

// reset restores the initial assignment and empties every per-run buffer.
func (s *Solver) reset() {
	s.vars.Restore()
	s.momentum.Clear()
	s.visited.Reset()
	s.pool.Reset()
	s.stats = Stats{}
	s.state = StateInfeasible
	s.bestLocality = localityNone
	s.bestPriority = priorityNone
}

func (s *Solver) terminate(reason TerminalReason) {
	s.state = StateTerminated
	s.stats.Reason = reason
}

// objectiveOf returns the value the pool orders by.
func (s *Solver) objectiveOf(values []int64) float64 {
	if s.objective != nil {
		return s.objective.Objective(values)
	}
	return s.problem.SmoothedObjective(values)
}

// baseline evaluates the current assignment.
func (s *Solver) baseline() Baseline {
	return Baseline{
		Objective: s.problem.SmoothedObjective(s.vars.value),
		Margin:    s.problem.BufferMargin(s.vars.value),
	}
}

// setTentative moves variable idx to val without committing and refreshes
// the constraints it touches. Callers bracket runs of tentative updates
// with cons.save and cons.restore.
func (s *Solver) setTentative(idx int, val int64) {
	s.vars.value[idx] = val
	s.problem.RefreshConstraints(s.vars.value, idx, s.cons.values)
}

// undoTentative puts variable idx back to base and restores the constraints.
func (s *Solver) undoTentative(idx int, base int64) {
	s.vars.value[idx] = base
	s.cons.restore()
}

func (s *Solver) less(a, b float64) bool  { return approxLess(a, b, s.cfg.Tolerance) }
func (s *Solver) equal(a, b float64) bool { return approxEqual(a, b, s.cfg.Tolerance) }
