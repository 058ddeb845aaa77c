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

// VariableSet holds the per-axis tile-size state.
//
// Description:
//
//	Each role lives in its own slice, all of length Len(). value is the
//	live assignment the Problem sees. recorded is the value at the start of
//	the current outer iteration and history the value at the start of the
//	previous one; both are rotated once per iteration by Rotate. target is
//	the pending candidate of this iteration. initial is the assignment given
//	to Init and restored at the start of every Run.
//
// Invariant: lower[i] <= value[i] <= upper[i] after every committed update.
type VariableSet struct {
	lower     []int64
	upper     []int64
	value     []int64
	recorded  []int64
	history   []int64
	target    []int64
	initial   []int64
	solveLast []bool
}

// NewVariableSet allocates state for n variables.
func NewVariableSet(n int) *VariableSet {
	return &VariableSet{
		lower:     make([]int64, n),
		upper:     make([]int64, n),
		value:     make([]int64, n),
		recorded:  make([]int64, n),
		history:   make([]int64, n),
		target:    make([]int64, n),
		initial:   make([]int64, n),
		solveLast: make([]bool, n),
	}
}

// Len returns the number of variables.
func (v *VariableSet) Len() int { return len(v.value) }

// valid reports whether idx addresses a variable.
func (v *VariableSet) valid(idx int) bool { return idx >= 0 && idx < len(v.value) }

// Load copies domains and the initial assignment into the set.
//
// Inputs:
//   - lower, upper: Inclusive non-negative domains. Must have length Len().
//   - initial: Starting assignment inside the domains. Must have length Len().
//   - solveLast: Optional; nil means no variable is deprioritised.
//
// Outputs:
//   - error: ErrDimensionMismatch or ErrInvalidBounds; the set is unchanged on error.
func (v *VariableSet) Load(lower, upper, initial []int64, solveLast []bool) error {
	n := v.Len()
	if len(lower) != n || len(upper) != n || len(initial) != n {
		return fmt.Errorf("%w: want %d variables, got lower=%d upper=%d initial=%d",
			ErrDimensionMismatch, n, len(lower), len(upper), len(initial))
	}
	if solveLast != nil && len(solveLast) != n {
		return fmt.Errorf("%w: want %d solve_last flags, got %d", ErrDimensionMismatch, n, len(solveLast))
	}
	for i := 0; i < n; i++ {
		if lower[i] < 0 || lower[i] > upper[i] {
			return fmt.Errorf("%w: variable %d has domain [%d, %d]", ErrInvalidBounds, i, lower[i], upper[i])
		}
		if initial[i] < lower[i] || initial[i] > upper[i] {
			return fmt.Errorf("%w: variable %d starts at %d outside [%d, %d]",
				ErrInvalidBounds, i, initial[i], lower[i], upper[i])
		}
	}
	copy(v.lower, lower)
	copy(v.upper, upper)
	copy(v.initial, initial)
	for i := range v.solveLast {
		v.solveLast[i] = solveLast != nil && solveLast[i]
	}
	v.Restore()
	return nil
}

// Restore resets every role to the initial assignment.
func (v *VariableSet) Restore() {
	copy(v.value, v.initial)
	copy(v.recorded, v.initial)
	copy(v.history, v.initial)
	copy(v.target, v.initial)
}

// Rotate shifts history <- recorded <- value and clears pending targets.
// Called exactly once per outer iteration.
func (v *VariableSet) Rotate() {
	copy(v.history, v.recorded)
	copy(v.recorded, v.value)
	copy(v.target, v.value)
}

// Value returns the current value of variable idx.
func (v *VariableSet) Value(idx int) (int64, bool) {
	if !v.valid(idx) {
		return 0, false
	}
	return v.value[idx], true
}

// Bounds returns the inclusive domain of variable idx.
func (v *VariableSet) Bounds(idx int) (lower, upper int64, ok bool) {
	if !v.valid(idx) {
		return 0, 0, false
	}
	return v.lower[idx], v.upper[idx], true
}

// Target returns the pending candidate of variable idx.
func (v *VariableSet) Target(idx int) (int64, bool) {
	if !v.valid(idx) {
		return 0, false
	}
	return v.target[idx], true
}

// SolveLast reports whether variable idx is deprioritised.
func (v *VariableSet) SolveLast(idx int) bool {
	return v.valid(idx) && v.solveLast[idx]
}

// Set commits val to variable idx if it is inside the domain.
func (v *VariableSet) Set(idx int, val int64) bool {
	if !v.valid(idx) || val < v.lower[idx] || val > v.upper[idx] {
		return false
	}
	v.value[idx] = val
	return true
}

// SetTarget records the pending candidate of variable idx.
func (v *VariableSet) SetTarget(idx int, val int64) bool {
	if !v.valid(idx) || val < v.lower[idx] || val > v.upper[idx] {
		return false
	}
	v.target[idx] = val
	return true
}

// Values returns the live assignment. Callers must not retain or modify it.
func (v *VariableSet) Values() []int64 { return v.value }

// Snapshot copies the live assignment into dst and returns the number of
// values copied.
func (v *VariableSet) Snapshot(dst []int64) int { return copy(dst, v.value) }

// distance returns how many unit steps variable idx can move in dir before
// leaving its domain.
func (v *VariableSet) distance(idx int, dir Direction) int64 {
	switch dir {
	case DirPositive:
		return v.upper[idx] - v.value[idx]
	case DirNegative:
		return v.value[idx] - v.lower[idx]
	default:
		return 0
	}
}
