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

// ConstraintSet holds the inequality constraint values of the current
// assignment. A constraint is satisfied when its value is <= 0.
//
// weights marks the constraints active in the current outer iteration: 1 for
// a violated constraint and 0 otherwise. The Problem's probes use it to
// focus the descent direction on what is actually violated.
type ConstraintSet struct {
	values  []float64
	weights []float64
	backup  []float64
	slack   float64
}

// NewConstraintSet allocates state for m constraints. slack is the absolute
// tolerance under which a positive value still counts as satisfied.
func NewConstraintSet(m int, slack float64) *ConstraintSet {
	return &ConstraintSet{
		values:  make([]float64, m),
		weights: make([]float64, m),
		backup:  make([]float64, m),
		slack:   slack,
	}
}

// Len returns the number of constraints.
func (c *ConstraintSet) Len() int { return len(c.values) }

// Value returns constraint j.
func (c *ConstraintSet) Value(j int) (float64, bool) {
	if j < 0 || j >= len(c.values) {
		return 0, false
	}
	return c.values[j], true
}

// Values returns the live values. Callers must not retain it.
func (c *ConstraintSet) Values() []float64 { return c.values }

// Weights returns the live weights. Callers must not retain it.
func (c *ConstraintSet) Weights() []float64 { return c.weights }

// Feasible reports whether every constraint is satisfied.
func (c *ConstraintSet) Feasible() bool {
	for _, v := range c.values {
		if v > c.slack {
			return false
		}
	}
	return true
}

// Violation returns the sum of positive constraint values.
func (c *ConstraintSet) Violation() float64 {
	var sum float64
	for _, v := range c.values {
		if v > c.slack {
			sum += v
		}
	}
	return sum
}

// Reweight marks violated constraints active for this iteration.
func (c *ConstraintSet) Reweight() {
	for j, v := range c.values {
		if v > c.slack {
			c.weights[j] = 1
		} else {
			c.weights[j] = 0
		}
	}
}

// save copies the live values aside before tentative updates.
func (c *ConstraintSet) save() { copy(c.backup, c.values) }

// restore undoes every tentative update since the last save.
func (c *ConstraintSet) restore() { copy(c.values, c.backup) }
