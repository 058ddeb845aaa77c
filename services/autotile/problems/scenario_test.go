// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package problems

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/AleutianAI/AleutianTile/pkg/validation"
	"github.com/AleutianAI/AleutianTile/services/autotile/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validScenario() *Scenario {
	return &Scenario{
		Name: "elementwise",
		Axes: []Axis{
			{Name: "i", Extent: 1024, Align: 8, Parallel: true},
			{Name: "j", Extent: 256},
		},
		Buffers: []Buffer{
			{Name: "x", Capacity: 16384, ElemBytes: 4, Axes: []string{"i", "j"}},
		},
		Hardware: Hardware{Cores: 2, Bandwidth: 16, Overhead: 10},
	}
}

func TestLoadScenario(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		sc, err := LoadScenario("testdata/matmul.yaml")
		require.NoError(t, err)
		assert.Equal(t, "matmul_512x512x256", sc.Name)
		assert.Len(t, sc.Axes, 3)
		assert.Equal(t, []string{"m", "k"}, sc.Buffers[0].Axes)
		assert.Nil(t, sc.Solver)
	})

	t.Run("json with overrides", func(t *testing.T) {
		sc, err := LoadScenario("testdata/softmax.json")
		require.NoError(t, err)
		assert.True(t, sc.Axes[1].SolveLast)

		cfg := sc.SolverConfig(solver.DefaultConfig())
		assert.Equal(t, 64, cfg.Iterations)
		assert.False(t, cfg.SimpleMode)
		assert.Equal(t, solver.DefaultConfig().TopNum, cfg.TopNum)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("garbage", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("axes: [\n"), 0o600))
		_, err := LoadScenario(path)
		assert.ErrorIs(t, err, ErrParseScenario)
	})
}

func TestScenario_Validate(t *testing.T) {
	momentum := 1.5

	tests := []struct {
		name   string
		mutate func(*Scenario)
		want   error
	}{
		{name: "valid", mutate: func(*Scenario) {}},
		{name: "missing name", mutate: func(s *Scenario) { s.Name = "" }, want: ErrInvalidScenario},
		{name: "no axes", mutate: func(s *Scenario) { s.Axes = nil }, want: ErrInvalidScenario},
		{name: "zero extent", mutate: func(s *Scenario) { s.Axes[0].Extent = 0 }, want: ErrInvalidScenario},
		{name: "zero bandwidth", mutate: func(s *Scenario) { s.Hardware.Bandwidth = 0 }, want: ErrInvalidScenario},
		{name: "align beyond extent", mutate: func(s *Scenario) { s.Axes[1].Align = 512 }, want: ErrInvalidScenario},
		{name: "initial beyond extent", mutate: func(s *Scenario) { s.Axes[1].Initial = 257 }, want: ErrInvalidScenario},
		{name: "duplicate axis", mutate: func(s *Scenario) { s.Axes[1].Name = "i" }, want: ErrDuplicateName},
		{
			name:   "duplicate buffer",
			mutate: func(s *Scenario) { s.Buffers = append(s.Buffers, s.Buffers[0]) },
			want:   ErrDuplicateName,
		},
		{name: "unknown axis", mutate: func(s *Scenario) { s.Buffers[0].Axes = []string{"z"} }, want: ErrUnknownAxis},
		{name: "bad axis name", mutate: func(s *Scenario) { s.Axes[0].Name = "i j" }, want: validation.ErrInvalidName},
		{name: "bad scenario name", mutate: func(s *Scenario) { s.Name = "../etc" }, want: ErrInvalidScenario},
		{
			name:   "bad solver override",
			mutate: func(s *Scenario) { s.Solver = &SolverOverrides{MomentumFactor: &momentum} },
			want:   ErrInvalidScenario,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := validScenario()
			tt.mutate(sc)
			err := sc.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestScenario_Fingerprint(t *testing.T) {
	cfg := solver.DefaultConfig()
	a, err := validScenario().Fingerprint(cfg)
	require.NoError(t, err)
	b, err := validScenario().Fingerprint(cfg)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	changed := validScenario()
	changed.Axes[0].Extent = 2048
	c, err := changed.Fingerprint(cfg)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	cfg.Iterations++
	d, err := validScenario().Fingerprint(cfg)
	require.NoError(t, err)
	assert.NotEqual(t, a, d)
}
