// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package solver implements the general tile-size solver used by auto-fusion
// scheduling to pick per-axis block sizes for generated kernels.
//
// The solver is a constrained local search over non-negative integer
// variables. Each outer iteration either drives an infeasible assignment
// towards the feasible region (LocateRegion) or improves a feasible one
// (FineTune). Candidate updates are classified by two state machines:
//
//	Locality:     GlobalValid > LocalValid > CrossRegion > Invalid > Alternative > Reject
//	TunePriority: Harmless > Dilated > Normal > Other > Tabu > Refuse
//
// Within the best tier of an iteration, candidates are ranked by an
// exponentially weighted momentum score and the winner is committed.
// Previously accepted feasible assignments are kept in a sorted VisitedSet
// for cycle detection, and the best TopNum feasible assignments are kept in a
// SolutionPool ordered by (objective, buffer margin).
//
// # Usage
//
//	ws, err := solver.NewWorkspace(len(axes), constraintCount, cfg)
//	if err != nil {
//	    return err
//	}
//	s, err := solver.New(cfg, problem, ws)
//	if err != nil {
//	    return err
//	}
//	if err := s.Init(solver.Input{Lower: lo, Upper: hi, Initial: init}); err != nil {
//	    return err
//	}
//	out := solver.NewResultBuffer(cfg.TopNum, len(axes))
//	n, err := s.Run(out)
//
// # Resource Model
//
// All state lives in the Workspace, allocated once from the variable and
// constraint counts. Run performs no allocation and has no suspension points;
// the iteration budget is its only bound. Callers that need a wall-clock limit
// lower Config.Iterations or run the solve on their own goroutine.
//
// # Thread Safety
//
// A Solver and its Workspace are owned by a single goroutine for the duration
// of Run. Independent solves must use independent Solvers.
package solver
