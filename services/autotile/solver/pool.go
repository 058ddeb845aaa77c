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

import "math"

// Solution is one retained assignment.
type Solution struct {
	// Values holds one tile value per variable.
	Values []int64 `json:"values"`

	// Objective is the objective recorded with the assignment.
	Objective float64 `json:"objective"`

	// Margin is the buffer margin recorded with the assignment.
	Margin float64 `json:"margin"`
}

// SolutionPool keeps the best TopNum feasible assignments.
//
// Description:
//
//	Entries are always sorted ascending by (objective, margin), comparing
//	floats with a relative tolerance. AddVarVal copies the current entries
//	to scratch space and re-inserts them around the candidate, so the pool
//	never allocates after construction.
type SolutionPool struct {
	width  int
	topNum int
	count  int
	tol    float64

	objective []float64
	margin    []float64
	vars      []int64

	scratchObjective []float64
	scratchMargin    []float64
	scratchVars      []int64
}

// NewSolutionPool allocates a pool of topNum assignments of width variables.
func NewSolutionPool(width, topNum int, tol float64) *SolutionPool {
	if topNum < 0 {
		topNum = 0
	}
	return &SolutionPool{
		width:            width,
		topNum:           topNum,
		tol:              tol,
		objective:        make([]float64, topNum),
		margin:           make([]float64, topNum),
		vars:             make([]int64, topNum*width),
		scratchObjective: make([]float64, topNum),
		scratchMargin:    make([]float64, topNum),
		scratchVars:      make([]int64, topNum*width),
	}
}

// Len returns the number of retained assignments.
func (p *SolutionPool) Len() int { return p.count }

// Cap returns TopNum.
func (p *SolutionPool) Cap() int { return p.topNum }

// Reset empties the pool.
func (p *SolutionPool) Reset() { p.count = 0 }

// AddVarVal merges a candidate into the pool.
//
// Description:
//
//	The candidate is placed before the first entry it does not rank behind,
//	so it is only dropped when the pool is full and it is strictly worse
//	than every retained entry.
//
// Inputs:
//   - vars: Assignment to retain. Must have the pool's width.
//   - objective, margin: Ordering keys.
//
// Outputs:
//   - bool: True if the candidate is in the pool afterwards.
func (p *SolutionPool) AddVarVal(vars []int64, objective, margin float64) bool {
	if len(vars) != p.width || p.topNum == 0 {
		return false
	}
	w := p.width
	old := p.count
	copy(p.scratchObjective, p.objective[:old])
	copy(p.scratchMargin, p.margin[:old])
	copy(p.scratchVars, p.vars[:old*w])

	retained := false
	i, k := 0, 0
	for ; k < p.topNum; k++ {
		switch {
		case !retained && (i == old || !p.less(p.scratchObjective[i], p.scratchMargin[i], objective, margin)):
			p.objective[k] = objective
			p.margin[k] = margin
			copy(p.vars[k*w:(k+1)*w], vars)
			retained = true
		case i < old:
			p.objective[k] = p.scratchObjective[i]
			p.margin[k] = p.scratchMargin[i]
			copy(p.vars[k*w:(k+1)*w], p.scratchVars[i*w:(i+1)*w])
			i++
		default:
			p.count = k
			return retained
		}
	}
	p.count = k
	return retained
}

// GetResult copies up to TopNum assignments, best first, into out and
// returns how many were copied. Rows shorter than the width are skipped and
// end the copy.
func (p *SolutionPool) GetResult(out [][]int64) int {
	n := 0
	for ; n < p.count && n < len(out); n++ {
		if len(out[n]) < p.width {
			break
		}
		copy(out[n], p.vars[n*p.width:(n+1)*p.width])
	}
	return n
}

// Entry returns a copy of entry i.
func (p *SolutionPool) Entry(i int) (Solution, bool) {
	if i < 0 || i >= p.count {
		return Solution{}, false
	}
	values := make([]int64, p.width)
	copy(values, p.vars[i*p.width:(i+1)*p.width])
	return Solution{Values: values, Objective: p.objective[i], Margin: p.margin[i]}, true
}

// less orders (objA, marA) strictly before (objB, marB).
func (p *SolutionPool) less(objA, marA, objB, marB float64) bool {
	if !approxEqual(objA, objB, p.tol) {
		return objA < objB
	}
	if !approxEqual(marA, marB, p.tol) {
		return marA < marB
	}
	return false
}

// approxEqual compares with a tolerance relative to the larger magnitude,
// floored at 1 so values near zero compare absolutely.
func approxEqual(a, b, tol float64) bool {
	if a == b {
		return true
	}
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= tol*scale
}

// approxLess reports a < b beyond tolerance.
func approxLess(a, b, tol float64) bool {
	return a < b && !approxEqual(a, b, tol)
}
