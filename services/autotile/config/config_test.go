// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestDefault_Valid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoad_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autotile.yaml")
	writeFile(t, path, `
solver:
  top_num: 3
  search_length: 8
  iterations: 100
  simple_mode: false
  momentum_factor: 0.5
  tolerance: 0.000000001
server:
  port: 9000
  rate_limit: 5
logging:
  level: debug
`)

	t.Run("file over defaults", func(t *testing.T) {
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.Solver.TopNum)
		assert.Equal(t, 100, cfg.Solver.Iterations)
		assert.False(t, cfg.Solver.SimpleMode)
		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, Default().Server.MaxBatch, cfg.Server.MaxBatch)
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("AUTOTILE_ITERATIONS", "42")
		t.Setenv("AUTOTILE_PORT", "9100")
		t.Setenv("AUTOTILE_SIMPLE_MODE", "true")
		t.Setenv("AUTOTILE_LOG_LEVEL", "warn")
		t.Setenv("AUTOTILE_CACHE_TTL", "1h")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 42, cfg.Solver.Iterations)
		assert.Equal(t, 9100, cfg.Server.Port)
		assert.True(t, cfg.Solver.SimpleMode)
		assert.Equal(t, "warn", cfg.Logging.Level)
		assert.Equal(t, time.Hour, cfg.Cache.TTL)
		assert.Equal(t, 3, cfg.Solver.TopNum)
	})

	t.Run("malformed env ignored", func(t *testing.T) {
		t.Setenv("AUTOTILE_ITERATIONS", "many")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 100, cfg.Solver.Iterations)
	})
}

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autotile.json")
	writeFile(t, path, `{"service": {"max_concurrency": 9}, "cache": {"enabled": false}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Service.MaxConcurrency)
	assert.False(t, cfg.Cache.Enabled)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad port", "server:\n  port: 70000\n"},
		{"bad exporter", "telemetry:\n  trace_exporter: zipkin\n"},
		{"otlp without endpoint", "telemetry:\n  trace_exporter: otlp\n"},
		{"bad momentum", "solver:\n  momentum_factor: 1.0\n"},
		{"zero iterations", "solver:\n  iterations: 0\n"},
		{"iterations above max", "solver:\n  iterations: 1125899999906842624\n"},
		{"top_num above max", "solver:\n  top_num: 2048\n"},
		{"bad level", "logging:\n  level: loud\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.yaml")
			writeFile(t, path, tt.content)
			_, err := Load(path)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad_Unparseable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	writeFile(t, path, "solver: [\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}

func TestWatcher_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "autotile.yaml")
	writeFile(t, path, "solver:\n  iterations: 10\n")

	initial, err := Load(path)
	require.NoError(t, err)

	reloaded := make(chan Config, 4)
	w, err := NewWatcher(path, initial, func(c Config) { reloaded <- c }, 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	// An invalid edit keeps the previous configuration.
	writeFile(t, path, "solver:\n  iterations: -1\n")
	select {
	case c := <-reloaded:
		t.Fatalf("invalid config was applied: %+v", c.Solver)
	case <-time.After(200 * time.Millisecond):
	}
	assert.Equal(t, 10, w.Current().Solver.Iterations)

	writeFile(t, path, "solver:\n  iterations: 77\n")
	select {
	case c := <-reloaded:
		assert.Equal(t, 77, c.Solver.Iterations)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
	assert.Equal(t, 77, w.Current().Solver.Iterations)

	w.Stop()
	w.Stop()
}
