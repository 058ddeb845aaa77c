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

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// linearProblem is a Problem with a linear objective and linear
// constraints rows[j]·x - rhs[j] <= 0.
type linearProblem struct {
	obj    []float64
	rows   [][]float64
	rhs    []float64
	traced int
}

func (p *linearProblem) constraint(vars []int64, j int) float64 {
	var sum float64
	for i, a := range p.rows[j] {
		sum += a * float64(vars[i])
	}
	return sum - p.rhs[j]
}

func (p *linearProblem) SmoothedObjective(vars []int64) float64 {
	var sum float64
	for i, c := range p.obj {
		sum += c * float64(vars[i])
	}
	return sum
}

func (p *linearProblem) BufferMargin(vars []int64) float64 {
	var sum float64
	for j := range p.rows {
		sum += p.constraint(vars, j)
	}
	return sum
}

func (p *linearProblem) Probe(vars []int64, kind ProbeKind, weights []float64) float64 {
	var sum float64
	for j := range p.rows {
		c := p.constraint(vars, j)
		if kind == ProbeConstraint && c < 0 {
			c = 0
		}
		sum += weights[j] * c
	}
	return sum
}

func (p *linearProblem) RefreshConstraints(vars []int64, changed int, out []float64) {
	for j := range p.rows {
		if changed == AllVariables || p.rows[j][changed] != 0 {
			out[j] = p.constraint(vars, j)
		}
	}
}

func (p *linearProblem) LocallyFeasible(constraints []float64, idx int) bool {
	for j := range p.rows {
		if p.rows[j][idx] != 0 && constraints[j] > 1e-9 {
			return false
		}
	}
	return true
}

func (p *linearProblem) TraceAssignment([]int64) { p.traced++ }

// feasible reports whether vars satisfies every constraint.
func (p *linearProblem) feasible(vars []int64) bool {
	for j := range p.rows {
		if p.constraint(vars, j) > 1e-9 {
			return false
		}
	}
	return true
}

// capProblem is scenario A: maximise x subject to x <= 50.
func capProblem() *linearProblem {
	return &linearProblem{
		obj:  []float64{-1},
		rows: [][]float64{{1}},
		rhs:  []float64{50},
	}
}

// sumProblem is scenario B: maximise x + 2y subject to x + y <= 100.
func sumProblem() *linearProblem {
	return &linearProblem{
		obj:  []float64{-1, -2},
		rows: [][]float64{{1, 1}},
		rhs:  []float64{100},
	}
}

func newTestSolver(t *testing.T, cfg Config, p *linearProblem, in Input) *Solver {
	t.Helper()
	ws, err := NewWorkspace(len(in.Initial), len(p.rows), cfg)
	require.NoError(t, err)
	s, err := New(cfg, p, ws)
	require.NoError(t, err)
	require.NoError(t, s.Init(in))
	return s
}

func simpleConfig() Config {
	return DefaultConfig()
}

func performanceConfig() Config {
	cfg := DefaultConfig()
	cfg.SimpleMode = false
	return cfg
}
