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

import "fmt"

// Workspace is the arena of one solver: the five backing structures, sized
// once from the variable and constraint counts.
//
// Thread Safety: Owned by a single Solver for the duration of Run.
type Workspace struct {
	Variables   *VariableSet
	Constraints *ConstraintSet
	Momentum    *MomentumTracker
	Visited     *VisitedSet
	Pool        *SolutionPool
}

// MaxWorkspaceValues caps the assignments a Workspace stores for the
// VisitedSet and the SolutionPool, counted in tile values.
const MaxWorkspaceValues = 1 << 24

// NewWorkspace allocates every buffer a solve needs.
//
// Inputs:
//   - varCount: Number of tile variables. Must be >= 1.
//   - consCount: Number of inequality constraints. Must be >= 0.
//   - cfg: Solver configuration; TopNum, Iterations, MomentumFactor and
//     Tolerance size and parameterise the buffers.
//
// Outputs:
//   - *Workspace: The arena, ready to pass to New.
//   - error: ErrDimensionMismatch, or ErrInvalidConfig when cfg is invalid
//     or varCount*Iterations exceeds MaxWorkspaceValues.
func NewWorkspace(varCount, consCount int, cfg Config) (*Workspace, error) {
	if varCount < 1 || consCount < 0 {
		return nil, fmt.Errorf("%w: need at least one variable, got %d variables and %d constraints",
			ErrDimensionMismatch, varCount, consCount)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if varCount > MaxWorkspaceValues/cfg.Iterations || varCount > MaxWorkspaceValues/cfg.TopNum {
		return nil, fmt.Errorf("%w: %d variables with iterations %d and top_num %d exceed %d stored values",
			ErrInvalidConfig, varCount, cfg.Iterations, cfg.TopNum, MaxWorkspaceValues)
	}
	return &Workspace{
		Variables:   NewVariableSet(varCount),
		Constraints: NewConstraintSet(consCount, cfg.Tolerance),
		Momentum:    NewMomentumTracker(varCount, cfg.MomentumFactor),
		Visited:     NewVisitedSet(varCount, cfg.Iterations),
		Pool:        NewSolutionPool(varCount, cfg.TopNum, cfg.Tolerance),
	}, nil
}

// NewResultBuffer allocates an output buffer for Run with rows rows of
// width values.
func NewResultBuffer(rows, width int) [][]int64 {
	flat := make([]int64, rows*width)
	out := make([][]int64, rows)
	for i := range out {
		out[i] = flat[i*width : (i+1)*width : (i+1)*width]
	}
	return out
}

// fits reports whether the workspace was sized for cfg.
func (w *Workspace) fits(cfg Config) error {
	if w.Variables == nil || w.Constraints == nil || w.Momentum == nil || w.Visited == nil || w.Pool == nil {
		return fmt.Errorf("%w: workspace is missing a buffer", ErrNilWorkspace)
	}
	n := w.Variables.Len()
	if len(w.Momentum.momentum) != n || w.Visited.width != n || w.Pool.width != n {
		return fmt.Errorf("%w: workspace buffers disagree on variable count", ErrDimensionMismatch)
	}
	if w.Pool.topNum != cfg.TopNum || w.Visited.capacity != cfg.Iterations {
		return fmt.Errorf("%w: workspace was sized for a different config", ErrDimensionMismatch)
	}
	return nil
}
