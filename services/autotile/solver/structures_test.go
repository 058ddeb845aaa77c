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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisitedSet_SearchVars(t *testing.T) {
	t.Run("idempotent insertion", func(t *testing.T) {
		v := NewVisitedSet(2, 8)

		assert.False(t, v.SearchVars([]int64{3, 4}, true))
		assert.Equal(t, 1, v.Len())
		assert.True(t, v.SearchVars([]int64{3, 4}, true))
		assert.Equal(t, 1, v.Len())
	})

	t.Run("lookup without insert", func(t *testing.T) {
		v := NewVisitedSet(2, 8)

		assert.False(t, v.SearchVars([]int64{1, 1}, false))
		assert.Zero(t, v.Len())
	})

	t.Run("entries stay sorted", func(t *testing.T) {
		v := NewVisitedSet(2, 8)
		for _, vars := range [][]int64{{5, 0}, {1, 9}, {3, 3}, {1, 2}, {5, 1}} {
			v.SearchVars(vars, true)
		}
		require.Equal(t, 5, v.Len())

		want := [][]int64{{1, 2}, {1, 9}, {3, 3}, {5, 0}, {5, 1}}
		got := make([]int64, 2)
		for i, w := range want {
			require.True(t, v.At(i, got))
			assert.Equal(t, w, got)
		}
	})

	t.Run("capacity", func(t *testing.T) {
		v := NewVisitedSet(1, 2)
		v.SearchVars([]int64{1}, true)
		v.SearchVars([]int64{2}, true)
		assert.False(t, v.SearchVars([]int64{3}, true))
		assert.Equal(t, 2, v.Len())
		assert.False(t, v.SearchVars([]int64{3}, false))
	})

	t.Run("wrong width", func(t *testing.T) {
		v := NewVisitedSet(2, 2)
		assert.False(t, v.SearchVars([]int64{1}, true))
		assert.Zero(t, v.Len())
	})
}

func TestSolutionPool_AddVarVal(t *testing.T) {
	t.Run("sorted by objective then margin", func(t *testing.T) {
		p := NewSolutionPool(1, 4, 1e-9)

		assert.True(t, p.AddVarVal([]int64{1}, 3, 0))
		assert.True(t, p.AddVarVal([]int64{2}, 1, 0.5))
		assert.True(t, p.AddVarVal([]int64{3}, 2, 0))
		assert.True(t, p.AddVarVal([]int64{4}, 1, 0.1))
		require.Equal(t, 4, p.Len())

		out := NewResultBuffer(4, 1)
		require.Equal(t, 4, p.GetResult(out))
		assert.Equal(t, [][]int64{{4}, {2}, {3}, {1}}, out)
	})

	t.Run("never exceeds top num", func(t *testing.T) {
		p := NewSolutionPool(1, 2, 1e-9)

		p.AddVarVal([]int64{1}, 5, 0)
		p.AddVarVal([]int64{2}, 4, 0)
		assert.True(t, p.AddVarVal([]int64{3}, 1, 0))
		assert.False(t, p.AddVarVal([]int64{4}, 9, 0))
		assert.Equal(t, 2, p.Len())

		first, _ := p.Entry(0)
		second, _ := p.Entry(1)
		assert.Equal(t, []int64{3}, first.Values)
		assert.Equal(t, []int64{2}, second.Values)
	})

	t.Run("objectives within tolerance fall back to margin", func(t *testing.T) {
		p := NewSolutionPool(1, 2, 1e-6)

		p.AddVarVal([]int64{1}, 1.0, 0.9)
		p.AddVarVal([]int64{2}, 1.0+1e-9, 0.1)

		first, _ := p.Entry(0)
		assert.Equal(t, []int64{2}, first.Values)
	})

	t.Run("result buffer shorter than pool", func(t *testing.T) {
		p := NewSolutionPool(1, 3, 1e-9)
		p.AddVarVal([]int64{1}, 1, 0)
		p.AddVarVal([]int64{2}, 2, 0)

		out := NewResultBuffer(1, 1)
		assert.Equal(t, 1, p.GetResult(out))
		assert.Equal(t, int64(1), out[0][0])
	})

	t.Run("reset", func(t *testing.T) {
		p := NewSolutionPool(1, 3, 1e-9)
		p.AddVarVal([]int64{1}, 1, 0)
		p.Reset()
		assert.Zero(t, p.Len())
		_, ok := p.Entry(0)
		assert.False(t, ok)
	})
}

func TestMomentumTracker(t *testing.T) {
	m := NewMomentumTracker(3, 0.25)

	assert.InDelta(t, 3.0, m.Score(0, 4), 1e-12)
	require.True(t, m.Offer(0, 3))
	assert.False(t, m.Offer(0, 2), "a weaker proposal must not replace a stronger one")
	require.True(t, m.Offer(1, 1))

	score, ok := m.Proposal(0)
	require.True(t, ok)
	assert.InDelta(t, 3.0, score, 1e-12)

	require.True(t, m.Commit(0))
	assert.InDelta(t, 3.0, m.Momentum(0), 1e-12)
	assert.Zero(t, m.Momentum(1))

	// Carried momentum contributes factor * momentum.
	assert.InDelta(t, 0.25*3+0.75*2, m.Score(0, 2), 1e-12)

	m.Reset()
	_, ok = m.Proposal(0)
	assert.False(t, ok)
	assert.False(t, m.Commit(0))
	assert.InDelta(t, 3.0, m.Momentum(0), 1e-12)

	m.Clear()
	assert.Zero(t, m.Momentum(0))
	assert.False(t, m.Offer(5, 1))
}

func TestConstraintSet(t *testing.T) {
	c := NewConstraintSet(3, 1e-9)
	copy(c.Values(), []float64{-1, 2, 0})

	assert.False(t, c.Feasible())
	assert.InDelta(t, 2.0, c.Violation(), 1e-12)

	c.Reweight()
	assert.Equal(t, []float64{0, 1, 0}, c.Weights())

	c.save()
	c.values[1] = -5
	assert.True(t, c.Feasible())
	c.restore()
	assert.Equal(t, []float64{-1, 2, 0}, c.Values())
}

func TestVariableSet_Rotate(t *testing.T) {
	v := NewVariableSet(1)
	require.NoError(t, v.Load([]int64{0}, []int64{10}, []int64{4}, nil))

	require.True(t, v.Set(0, 6))
	v.Rotate()
	require.True(t, v.Set(0, 8))
	v.Rotate()

	assert.Equal(t, int64(6), v.history[0])
	assert.Equal(t, int64(8), v.recorded[0])
	assert.Equal(t, int64(8), v.target[0])
	assert.Equal(t, int64(2), v.distance(0, DirPositive))
	assert.Equal(t, int64(8), v.distance(0, DirNegative))
	assert.False(t, v.Set(0, 11))

	v.Restore()
	got, ok := v.Value(0)
	require.True(t, ok)
	assert.Equal(t, int64(4), got)
}

func TestNewWorkspace(t *testing.T) {
	cfg := DefaultConfig()

	_, err := NewWorkspace(0, 1, cfg)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	bad := cfg
	bad.TopNum = 0
	_, err = NewWorkspace(1, 1, bad)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	ws, err := NewWorkspace(3, 2, cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, ws.Variables.Len())
	assert.Equal(t, 2, ws.Constraints.Len())
	assert.Equal(t, cfg.TopNum, ws.Pool.Cap())
	assert.Equal(t, cfg.Iterations, ws.Visited.Cap())
}

func TestConfig_ValidateBounds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"top_num zero", func(c *Config) { c.TopNum = 0 }},
		{"top_num above max", func(c *Config) { c.TopNum = MaxTopNum + 1 }},
		{"search_length above max", func(c *Config) { c.SearchLength = MaxSearchLength + 1 }},
		{"iterations above max", func(c *Config) { c.Iterations = MaxIterations + 1 }},
		{"iterations huge", func(c *Config) { c.Iterations = 1 << 50 }},
		{"momentum one", func(c *Config) { c.MomentumFactor = 1 }},
		{"negative tolerance", func(c *Config) { c.Tolerance = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}

	edge := DefaultConfig()
	edge.TopNum = MaxTopNum
	edge.SearchLength = MaxSearchLength
	edge.Iterations = MaxIterations
	assert.NoError(t, edge.Validate())
}

func TestNewWorkspace_RejectsOversizedBuffers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Iterations = 1 << 16

	_, err := NewWorkspace(MaxWorkspaceValues/cfg.Iterations+1, 1, cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewWorkspace(1<<40, 1, DefaultConfig())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	ws, err := NewWorkspace(4, 1, cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.Iterations, ws.Visited.Cap())
}

func TestTerminalReason_Text(t *testing.T) {
	for _, r := range []TerminalReason{ReasonNone, ReasonBudget, ReasonConverged, ReasonLocateFailed, ReasonTuneFailed} {
		text, err := r.MarshalText()
		require.NoError(t, err)

		var back TerminalReason
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, r, back, string(text))
	}
}
