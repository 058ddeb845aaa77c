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

// FineTune runs one feasible-phase step.
//
// Description:
//
//	Records the current assignment, then offers every variable to TryTune,
//	positive direction first. In simple mode the negative direction is only
//	tried when the positive one produced nothing. Solve-last variables are
//	tuned only when no other variable produced a candidate. The best
//	proposal at the best tier reached is committed.
//
// Outputs:
//   - bool: False if no variable yields an improving candidate.
func (s *Solver) FineTune() bool {
	s.RecordBestVarVal()
	s.bestPriority = priorityNone

	for i := 0; i < s.vars.Len(); i++ {
		if !s.vars.solveLast[i] {
			s.tuneVariable(i)
		}
	}
	if s.bestPriority == priorityNone {
		for i := 0; i < s.vars.Len(); i++ {
			if s.vars.solveLast[i] {
				s.tuneVariable(i)
			}
		}
	}
	if s.bestPriority == priorityNone {
		return false
	}
	idx, ok := s.GetBestChoice()
	if !ok {
		return false
	}
	return s.UpdateBestVar(idx)
}

func (s *Solver) tuneVariable(idx int) bool {
	pos := s.TryTune(idx, DirPositive)
	neg := false
	if !s.cfg.SimpleMode || !pos {
		neg = s.TryTune(idx, DirNegative)
	}
	return pos || neg
}

// TryTune searches an improving move of variable idx along dir and
// proposes it.
//
// Description:
//
//	searchLoc finds the first improving step within SearchLength, tuneLoc
//	extends Harmless and Dilated steps, and the proposal is scored by the
//	objective gain, or by the margin gain for Dilated moves. Variable and
//	constraint state are left as they were.
//
// Outputs:
//   - bool: True if a proposal was recorded for idx.
func (s *Solver) TryTune(idx int, dir Direction) bool {
	if !s.vars.valid(idx) || dir == DirNone {
		return false
	}
	window := s.vars.distance(idx, dir)
	if window <= 0 {
		return false
	}

	base := s.vars.value[idx]
	ref := s.baseline()
	s.cons.save()

	step, p := s.searchLoc(idx, base, dir, window, ref)
	if !p.Improving() {
		return false
	}
	step = s.tuneLoc(idx, base, dir, step, window, p)
	target := base + int64(dir)*step

	next := s.baselineAt(idx, base, dir, step)
	gain := ref.Objective - next.Objective
	if p == Dilated {
		gain = ref.Margin - next.Margin
	}

	if s.bestPriority.Better(p) {
		return false
	}
	if p.Better(s.bestPriority) {
		s.bestPriority = p
		s.momentum.Invalidate()
	}
	return s.UpdateMomentum(idx, target, gain)
}
