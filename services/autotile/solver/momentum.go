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

// MomentumTracker ranks competing candidate updates within one tier.
//
// Description:
//
//	momentum[i] carries across outer iterations: it is set to the winning
//	score when variable i is committed and zeroed when another variable
//	wins. valid[i] and candidate[i] describe the proposal of variable i in
//	the current iteration and are cleared by Reset.
//
//	A proposal's score is factor*momentum + (1-factor)*gain, so a variable
//	that keeps winning keeps an advantage over a newcomer with equal gain.
type MomentumTracker struct {
	momentum  []float64
	candidate []float64
	valid     []bool
	factor    float64
}

// NewMomentumTracker allocates state for n variables.
func NewMomentumTracker(n int, factor float64) *MomentumTracker {
	return &MomentumTracker{
		momentum:  make([]float64, n),
		candidate: make([]float64, n),
		valid:     make([]bool, n),
		factor:    factor,
	}
}

// Reset clears this iteration's proposals. Carried momentum is kept.
func (m *MomentumTracker) Reset() {
	for i := range m.valid {
		m.valid[i] = false
		m.candidate[i] = 0
	}
}

// Clear zeroes all state, including carried momentum.
func (m *MomentumTracker) Clear() {
	m.Reset()
	for i := range m.momentum {
		m.momentum[i] = 0
	}
}

// Invalidate drops every proposal of this iteration, used when a better
// tier appears.
func (m *MomentumTracker) Invalidate() {
	for i := range m.valid {
		m.valid[i] = false
	}
}

// Score blends the carried momentum of variable idx with gain.
func (m *MomentumTracker) Score(idx int, gain float64) float64 {
	if idx < 0 || idx >= len(m.momentum) {
		return math.Inf(-1)
	}
	return m.factor*m.momentum[idx] + (1-m.factor)*gain
}

// Offer records score as the proposal of variable idx if it beats the
// proposal already held for idx.
func (m *MomentumTracker) Offer(idx int, score float64) bool {
	if idx < 0 || idx >= len(m.valid) {
		return false
	}
	if m.valid[idx] && score <= m.candidate[idx] {
		return false
	}
	m.valid[idx] = true
	m.candidate[idx] = score
	return true
}

// Proposal returns the score proposed for variable idx this iteration.
func (m *MomentumTracker) Proposal(idx int) (float64, bool) {
	if idx < 0 || idx >= len(m.valid) || !m.valid[idx] {
		return 0, false
	}
	return m.candidate[idx], true
}

// Momentum returns the carried momentum of variable idx.
func (m *MomentumTracker) Momentum(idx int) float64 {
	if idx < 0 || idx >= len(m.momentum) {
		return 0
	}
	return m.momentum[idx]
}

// Commit makes idx the winner: its proposal becomes its momentum and every
// other variable loses its momentum.
func (m *MomentumTracker) Commit(idx int) bool {
	if idx < 0 || idx >= len(m.momentum) || !m.valid[idx] {
		return false
	}
	for i := range m.momentum {
		m.momentum[i] = 0
	}
	m.momentum[idx] = m.candidate[idx]
	return true
}
