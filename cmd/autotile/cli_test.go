// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianTile/pkg/ux"
	"github.com/AleutianAI/AleutianTile/services/autotile"
)

const testdata = "../../services/autotile/problems/testdata"

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func copyFile(t *testing.T, src, dst string) {
	t.Helper()
	data, err := os.ReadFile(src)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dst, data, 0o644))
}

func TestSolveCmd_JSON(t *testing.T) {
	out, _, err := runCLI(t, "solve", "-f", filepath.Join(testdata, "matmul.yaml"), "--json", "--no-cache", "--log-level", "error")
	require.NoError(t, err)

	var res autotile.SolveResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "matmul_512x512x256", res.Scenario)
	require.NotEmpty(t, res.Solutions)
	assert.True(t, res.Solutions[0].Feasible)
}

func TestSolveCmd_Text(t *testing.T) {
	out, _, err := runCLI(t, "solve", "-f", filepath.Join(testdata, "softmax.json"), "--no-cache", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "rank")
	assert.Contains(t, out, "row=")
	assert.Contains(t, out, "col=")
}

func TestSolveCmd_Errors(t *testing.T) {
	_, _, err := runCLI(t, "solve", "--log-level", "error")
	assert.ErrorContains(t, err, "--file is required")

	_, _, err = runCLI(t, "solve", "-f", "does-not-exist.yaml", "--log-level", "error")
	assert.Error(t, err)

	_, _, err = runCLI(t, "solve", "-f", filepath.Join(testdata, "matmul.yaml"), "--log-level", "loud")
	assert.Error(t, err)
}

func TestSolveCmd_UsesCacheDirFromConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "autotile.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"cache:\n  enabled: true\n  dir: "+filepath.Join(dir, "cache")+"\nlogging:\n  level: error\n"), 0o644))
	scenario := filepath.Join(testdata, "matmul.yaml")

	out, _, err := runCLI(t, "--config", cfgPath, "solve", "-f", scenario, "--json")
	require.NoError(t, err)
	var first autotile.SolveResult
	require.NoError(t, json.Unmarshal([]byte(out), &first))
	assert.False(t, first.Cached)

	out, _, err = runCLI(t, "--config", cfgPath, "solve", "-f", scenario, "--json")
	require.NoError(t, err)
	var second autotile.SolveResult
	require.NoError(t, json.Unmarshal([]byte(out), &second))
	assert.True(t, second.Cached)
	assert.Equal(t, first.Solutions, second.Solutions)
}

func TestBatchCmd(t *testing.T) {
	dir := t.TempDir()
	copyFile(t, filepath.Join(testdata, "matmul.yaml"), filepath.Join(dir, "a_matmul.yaml"))
	copyFile(t, filepath.Join(testdata, "softmax.json"), filepath.Join(dir, "b_softmax.json"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c_broken.yaml"), []byte("name: broken\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	out, _, err := runCLI(t, "batch", dir, "--json", "--no-cache", "--log-level", "error")
	assert.ErrorContains(t, err, "1 of 3 scenarios failed")

	var entries []batchEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, "a_matmul.yaml", filepath.Base(entries[0].File))
	assert.NotNil(t, entries[0].Result)
	assert.Equal(t, "b_softmax.json", filepath.Base(entries[1].File))
	assert.NotNil(t, entries[1].Result)
	assert.Nil(t, entries[2].Result)
	assert.Equal(t, "INVALID_SCENARIO", entries[2].Code)
}

func TestBatchCmd_EmptyDir(t *testing.T) {
	_, _, err := runCLI(t, "batch", t.TempDir(), "--log-level", "error")
	assert.ErrorContains(t, err, "no scenario files")
}

func TestRenderBatch_Plain(t *testing.T) {
	var out bytes.Buffer
	p := ux.NewPlainPrinter(&out, &out)
	renderBatch(p, []batchEntry{{File: "/tmp/x.yaml", Code: "NO_SOLUTION"}})
	assert.Contains(t, out.String(), "x.yaml")
	assert.Contains(t, out.String(), "NO_SOLUTION")
	assert.Contains(t, out.String(), "SUMMARY: succeeded=0 failed=1 total=1")
}

func TestFormatTiles(t *testing.T) {
	assert.Equal(t, "m=64 n=128", formatTiles([]string{"m", "n"}, []int64{64, 128}))
	assert.Equal(t, "m=64 1=8", formatTiles([]string{"m"}, []int64{64, 8}))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".autotile"), expandHome("~/.autotile"))
	assert.Equal(t, "/abs/path", expandHome("/abs/path"))
}
