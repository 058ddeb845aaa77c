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

// LocateRegion runs one infeasible-phase step.
//
// Description:
//
//	Every variable not flagged solve-last is offered to TryLocate. The
//	solve-last variables are offered only when none of the others reached
//	any tier. The best proposal at the best tier reached is committed.
//
// Outputs:
//   - bool: False if no variable reached any tier or no proposal changes
//     the assignment.
func (s *Solver) LocateRegion() bool {
	s.bestLocality = localityNone
	for i := 0; i < s.vars.Len(); i++ {
		if !s.vars.solveLast[i] {
			s.TryLocate(i)
		}
	}
	if s.bestLocality == localityNone {
		for i := 0; i < s.vars.Len(); i++ {
			if s.vars.solveLast[i] {
				s.TryLocate(i)
			}
		}
	}
	if s.bestLocality == localityNone {
		return false
	}
	idx, ok := s.GetBestChoice()
	if !ok {
		return false
	}
	return s.UpdateBestVar(idx)
}

// TryLocate searches the move of variable idx towards the feasible region
// and proposes it.
//
// Description:
//
//	Follows the descent direction of the active constraints to the
//	feasible boundary with getCoarseLoc and getFineLoc. In
//	high-performance mode, a boundary that is feasible and already visited
//	is swapped for its peer on the far side of the domain. The proposal is
//	scored by the change in smoothed objective. Variable and constraint
//	state are left as they were.
//
// Outputs:
//   - bool: True if a proposal was recorded for idx.
func (s *Solver) TryLocate(idx int) bool {
	if !s.vars.valid(idx) {
		return false
	}
	dir := s.descent(idx)
	if dir == DirNone {
		return false
	}
	window := s.vars.distance(idx, dir)
	if window <= 0 {
		return false
	}

	base := s.vars.value[idx]
	baseObj := s.problem.SmoothedObjective(s.vars.value)
	s.cons.save()

	lo, hi, tier := s.getCoarseLoc(idx, base, dir, window)
	step, tier := s.getFineLoc(idx, base, dir, lo, hi, tier)
	target := base + int64(dir)*step

	if !s.cfg.SimpleMode && tier == GlobalValid {
		s.vars.value[idx] = target
		seen := s.visited.SearchVars(s.vars.value, false)
		s.vars.value[idx] = base
		if seen {
			if peer, ok := s.getPeerLoc(idx, base, dir, target); ok {
				target, tier = peer, Alternative
			}
		}
	}

	s.vars.value[idx] = target
	gain := baseObj - s.problem.SmoothedObjective(s.vars.value)
	s.undoTentative(idx, base)

	if s.bestLocality.Better(tier) {
		return false
	}
	if tier.Better(s.bestLocality) {
		s.bestLocality = tier
		s.momentum.Invalidate()
	}
	return s.UpdateMomentum(idx, target, gain)
}
