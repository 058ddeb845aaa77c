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

// =============================================================================
// Boundary search used by LocateRegion
// =============================================================================

// getCoarseLoc doubles the step from base along dir while the candidate
// keeps crossing the infeasible region.
//
// Outputs:
//   - lo: The last step classified CrossRegion, or 0.
//   - hi: The first step that was not CrossRegion, or window.
//   - tier: The classification at hi.
func (s *Solver) getCoarseLoc(idx int, base int64, dir Direction, window int64) (lo, hi int64, tier Locality) {
	step := int64(1)
	for {
		if step > window {
			step = window
		}
		tier = s.localityAt(idx, base, dir, step)
		if tier != CrossRegion || step == window {
			return lo, step, tier
		}
		lo = step
		step *= 2
	}
}

// getFineLoc bisects (lo, hi] from getCoarseLoc down to the boundary.
//
// Description:
//
//	When hi already reaches a valid tier the result is the smallest step
//	that still does. When the walk regressed past CrossRegion the result is
//	the farthest step that still crosses, unless a valid step turns up on
//	the way. A walk that never left CrossRegion ends at hi.
func (s *Solver) getFineLoc(idx int, base int64, dir Direction, lo, hi int64, tier Locality) (int64, Locality) {
	if tier == CrossRegion {
		return hi, tier
	}
	for hi-lo > 1 {
		mid := lo + (hi-lo)/2
		t := s.localityAt(idx, base, dir, mid)
		switch {
		case tier.Valid():
			if t.Valid() {
				hi, tier = mid, t
			} else {
				lo = mid
			}
		case t.Valid():
			hi, tier = mid, t
		case t == CrossRegion:
			lo = mid
		default:
			hi, tier = mid, t
		}
	}
	if !tier.Valid() && lo > 0 {
		return lo, CrossRegion
	}
	return hi, tier
}

// getPeerLoc looks for the feasible boundary on the far side of cand.
//
// Description:
//
//	Moving up, it returns the largest feasible value in [cand, upper] and
//	treats cand itself as the feasible anchor. Moving down, it returns the
//	smallest feasible value in [lower, cand-1] and re-verifies it, since
//	that range excludes the anchor. Both searches assume feasibility is
//	monotone in the variable.
//
// Outputs:
//   - int64: The peer value.
//   - bool: True if a feasible peer distinct from cand exists.
func (s *Solver) getPeerLoc(idx int, base int64, dir Direction, cand int64) (int64, bool) {
	lower, upper := s.vars.lower[idx], s.vars.upper[idx]
	switch dir {
	case DirPositive:
		lo, hi := cand, upper
		for lo < hi {
			mid := lo + (hi-lo+1)/2
			if s.feasibleAt(idx, base, mid) {
				lo = mid
			} else {
				hi = mid - 1
			}
		}
		return lo, lo != cand
	case DirNegative:
		if cand <= lower {
			return cand, false
		}
		lo, hi := lower, cand-1
		for lo < hi {
			mid := lo + (hi-lo)/2
			if s.feasibleAt(idx, base, mid) {
				hi = mid
			} else {
				lo = mid + 1
			}
		}
		if !s.feasibleAt(idx, base, lo) {
			return cand, false
		}
		return lo, true
	default:
		return cand, false
	}
}

// =============================================================================
// Improvement search used by FineTune
// =============================================================================

// searchLoc probes single-unit steps from base along dir and returns the
// earliest step of the best improving tier found.
//
// Description:
//
//	Tabu ends the walk. Refuse ends it in simple mode and is skipped
//	otherwise. Tiers worse than the best seen across variables this
//	iteration are skipped. Harmless ends the walk immediately.
func (s *Solver) searchLoc(idx int, base int64, dir Direction, window int64, ref Baseline) (int64, TunePriority) {
	limit := int64(s.cfg.SearchLength)
	if window < limit {
		limit = window
	}
	bestStep, best := int64(0), priorityNone
	for step := int64(1); step <= limit; step++ {
		p := s.priorityAt(idx, base, dir, step, ref)
		if p == Tabu {
			break
		}
		if p == Refuse {
			if s.cfg.SimpleMode {
				break
			}
			continue
		}
		if s.bestPriority.Better(p) {
			continue
		}
		if p.Better(best) {
			bestStep, best = step, p
		}
		if p == Harmless {
			break
		}
	}
	return bestStep, best
}

// tuneLoc extends an improving step found by searchLoc.
func (s *Solver) tuneLoc(idx int, base int64, dir Direction, step, window int64, p TunePriority) int64 {
	switch p {
	case Harmless:
		return s.getHarmlessLoc(idx, base, dir, step, window)
	case Dilated:
		return s.getDilatedLoc(idx, base, dir, step, window)
	default:
		return step
	}
}

// getHarmlessLoc extends step while every extension keeps improving the
// objective over the previous accepted step.
func (s *Solver) getHarmlessLoc(idx int, base int64, dir Direction, step, window int64) int64 {
	return s.extendLoc(idx, base, dir, step, window, Harmless)
}

// getDilatedLoc extends step while the objective is unchanged and the
// buffer margin does not get worse.
func (s *Solver) getDilatedLoc(idx int, base int64, dir Direction, step, window int64) int64 {
	return s.extendLoc(idx, base, dir, step, window, Dilated)
}

// extendLoc grows good by nextStride until a step fails accepts, then
// bisects between the last accepted and the first rejected step.
func (s *Solver) extendLoc(idx int, base int64, dir Direction, good, window int64, p TunePriority) int64 {
	ref := s.baselineAt(idx, base, dir, good)
	bad := int64(-1)
	for good < window {
		next := s.nextStride(good)
		if next > window {
			next = window
		}
		if !s.accepts(idx, base, dir, next, ref, p) {
			bad = next
			break
		}
		good = next
		ref = s.baselineAt(idx, base, dir, good)
	}
	if bad < 0 {
		return good
	}
	for bad-good > 1 {
		mid := good + (bad-good)/2
		if s.accepts(idx, base, dir, mid, ref, p) {
			good = mid
			ref = s.baselineAt(idx, base, dir, good)
		} else {
			bad = mid
		}
	}
	return good
}

// accepts reports whether step continues an extension of tier p from ref.
func (s *Solver) accepts(idx int, base int64, dir Direction, step int64, ref Baseline, p TunePriority) bool {
	if p == Harmless {
		return s.priorityAt(idx, base, dir, step, ref) == Harmless
	}
	s.setTentative(idx, base+int64(dir)*step)
	ok := !s.oscillates(idx) &&
		s.cons.Feasible() &&
		s.equal(s.problem.SmoothedObjective(s.vars.value), ref.Objective) &&
		!s.less(ref.Margin, s.problem.BufferMargin(s.vars.value))
	s.undoTentative(idx, base)
	return ok
}

// nextStride doubles the step in simple mode and advances it by
// SearchLength otherwise.
func (s *Solver) nextStride(step int64) int64 {
	if s.cfg.SimpleMode {
		return step * 2
	}
	return step + int64(s.cfg.SearchLength)
}
