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

// GetLocality classifies the current assignment for variable idx moving in
// direction dir. The caller has already placed the candidate value and
// refreshed the constraints it touches.
//
// Description:
//
//	GlobalValid if every constraint holds, LocalValid if the constraints
//	involving idx hold, Reject if the candidate returns to the value of the
//	previous outer iteration, CrossRegion if the descent direction at the
//	candidate still points along dir, Invalid otherwise.
//
// Outputs:
//   - Locality: The tier. Invalid for an out-of-range idx.
func (s *Solver) GetLocality(idx int, dir Direction) Locality {
	if !s.vars.valid(idx) {
		return Invalid
	}
	if s.cons.Feasible() {
		return GlobalValid
	}
	if s.problem.LocallyFeasible(s.cons.values, idx) {
		return LocalValid
	}
	v := s.vars.value[idx]
	if v == s.vars.history[idx] && v != s.vars.recorded[idx] {
		return Reject
	}
	if s.descent(idx) == dir {
		return CrossRegion
	}
	return Invalid
}

// GetTunePriority classifies the current assignment of a feasible search
// against base. The caller has already placed the candidate value and
// refreshed the constraints it touches.
//
// Outputs:
//   - TunePriority: The tier. Refuse for an out-of-range idx.
func (s *Solver) GetTunePriority(idx int, base Baseline) TunePriority {
	if !s.vars.valid(idx) {
		return Refuse
	}
	if s.oscillates(idx) {
		return Tabu
	}
	obj := s.problem.SmoothedObjective(s.vars.value)
	if s.less(base.Objective, obj) {
		return Refuse
	}
	if s.cons.Feasible() {
		if s.less(obj, base.Objective) {
			return Harmless
		}
		if s.less(s.problem.BufferMargin(s.vars.value), base.Margin) {
			return Dilated
		}
		return Refuse
	}
	if s.problem.LocallyFeasible(s.cons.values, idx) {
		return Normal
	}
	if !s.cfg.SimpleMode && s.less(obj, base.Objective) {
		return Other
	}
	return Refuse
}

// oscillates reports whether the pending move of idx reverses the move the
// variable made in the previous outer iteration. The product is taken on
// raw tile values and wraps for magnitudes beyond 2^31.
func (s *Solver) oscillates(idx int) bool {
	rec := s.vars.recorded[idx]
	return (rec-s.vars.history[idx])*(s.vars.value[idx]-rec) < 0
}

// descent returns the direction in which variable idx reduces the
// constraint probe, falling back to the buffer probe when the constraint
// probe is flat.
func (s *Solver) descent(idx int) Direction {
	if d := s.probeDirection(idx, ProbeConstraint); d != DirNone {
		return d
	}
	return s.probeDirection(idx, ProbeBuffer)
}

// probeDirection compares the probe at the current value of idx against
// its single-unit neighbours inside the domain.
func (s *Solver) probeDirection(idx int, kind ProbeKind) Direction {
	vars := s.vars.value
	weights := s.cons.weights
	v := vars[idx]

	base := s.problem.Probe(vars, kind, weights)
	up, down := math.Inf(1), math.Inf(1)
	if v < s.vars.upper[idx] {
		vars[idx] = v + 1
		up = s.problem.Probe(vars, kind, weights)
	}
	if v > s.vars.lower[idx] {
		vars[idx] = v - 1
		down = s.problem.Probe(vars, kind, weights)
	}
	vars[idx] = v

	if s.less(up, base) && !s.less(down, up) {
		return DirPositive
	}
	if s.less(down, base) {
		return DirNegative
	}
	return DirNone
}

// localityAt classifies idx = base + dir*step and puts base back.
func (s *Solver) localityAt(idx int, base int64, dir Direction, step int64) Locality {
	s.setTentative(idx, base+int64(dir)*step)
	l := s.GetLocality(idx, dir)
	s.undoTentative(idx, base)
	return l
}

// feasibleAt reports whether every constraint holds with idx = val and puts
// base back.
func (s *Solver) feasibleAt(idx int, base, val int64) bool {
	s.setTentative(idx, val)
	ok := s.cons.Feasible()
	s.undoTentative(idx, base)
	return ok
}

// priorityAt classifies idx = base + dir*step against ref and puts base back.
func (s *Solver) priorityAt(idx int, base int64, dir Direction, step int64, ref Baseline) TunePriority {
	s.setTentative(idx, base+int64(dir)*step)
	p := s.GetTunePriority(idx, ref)
	s.undoTentative(idx, base)
	return p
}

// baselineAt evaluates the assignment with idx = base + dir*step and puts
// base back. Constraints are untouched.
func (s *Solver) baselineAt(idx int, base int64, dir Direction, step int64) Baseline {
	s.vars.value[idx] = base + int64(dir)*step
	b := s.baseline()
	s.vars.value[idx] = base
	return b
}
