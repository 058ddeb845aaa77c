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

// AllVariables is passed to Problem.RefreshConstraints to force a full
// recompute of every constraint.
const AllVariables = -1

// ProbeKind selects which quantity Problem.Probe evaluates.
type ProbeKind int

const (
	// ProbeConstraint is the weighted inequality violation.
	ProbeConstraint ProbeKind = iota

	// ProbeBuffer is the weighted buffer cost.
	ProbeBuffer
)

// String returns the probe name.
func (k ProbeKind) String() string {
	switch k {
	case ProbeConstraint:
		return "constraint"
	case ProbeBuffer:
		return "buffer"
	default:
		return "unknown"
	}
}

// Problem is the numeric model of one tiling scenario.
//
// Description:
//
//	The solver owns the search; the Problem only evaluates. Implementations
//	must be deterministic and must not retain the slices they are given.
//	The only permitted side effect is writing constraint values into the
//	slice passed to RefreshConstraints.
//
//	vars always has one entry per solver variable. constraints and weights
//	always have one entry per constraint.
//
// Thread Safety: A Problem may be shared by concurrent solvers only if its
// methods are free of shared mutable state.
type Problem interface {
	// SmoothedObjective returns a continuous surrogate of the tiling cost.
	// Lower is better.
	SmoothedObjective(vars []int64) float64

	// BufferMargin returns how close the assignment sits to the on-chip
	// buffer capacity. Lower is better: a lower margin is further from the
	// boundary.
	BufferMargin(vars []int64) float64

	// Probe evaluates the probe of the given kind. weights selects and
	// scales the constraints that contribute; the solver calls it at ±1
	// perturbations of a single variable to find a descent direction.
	Probe(vars []int64, kind ProbeKind, weights []float64) float64

	// RefreshConstraints recomputes the constraint values touched by
	// vars[changed] into out. changed == AllVariables recomputes all.
	RefreshConstraints(vars []int64, changed int, out []float64)

	// LocallyFeasible reports whether every constraint that involves
	// variable idx is satisfied.
	LocallyFeasible(constraints []float64, idx int) bool

	// TraceAssignment is a diagnostic hook invoked after every committed
	// update. It may be a no-op.
	TraceAssignment(vars []int64)
}

// ObjectiveEvaluator is implemented by problems that distinguish the exact
// (discrete) objective from the smoothed surrogate. When present, the
// SolutionPool is ordered by the exact objective.
type ObjectiveEvaluator interface {
	Objective(vars []int64) float64
}

// Direction is the sign of a candidate update.
type Direction int64

const (
	// DirNegative decreases the variable.
	DirNegative Direction = -1

	// DirNone means no update direction exists.
	DirNone Direction = 0

	// DirPositive increases the variable.
	DirPositive Direction = 1
)

// String returns "+", "-" or "0".
func (d Direction) String() string {
	switch d {
	case DirPositive:
		return "+"
	case DirNegative:
		return "-"
	default:
		return "0"
	}
}
