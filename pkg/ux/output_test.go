// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTerminal_NonFile(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}

func TestIsTerminal_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, IsTerminal(nil))
}

func TestPrinter_PlainOutput(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPrinter(&out, &errOut)
	assert.True(t, p.Plain())

	p.Title("matmul")
	p.Success("done")
	p.Info("note")
	p.KeyValue("reason", "converged")
	p.Summary(2, 1, 3)
	p.Warning("careful")
	p.Error("broken")

	assert.Equal(t,
		"matmul\nOK: done\nnote\nreason:      converged\nSUMMARY: succeeded=2 failed=1 total=3\n",
		out.String())
	assert.Equal(t, "WARN: careful\nERROR: broken\n", errOut.String())
}

func TestPrinter_Table(t *testing.T) {
	var out bytes.Buffer
	p := NewPlainPrinter(&out, &out)

	p.Table([]string{"rank", "tiles"}, [][]string{
		{"1", "64x128"},
		{"2", "32x256x8"},
	})

	assert.Equal(t,
		"rank  tiles\n1     64x128\n2     32x256x8\n",
		out.String())
}

func TestIcon_Render(t *testing.T) {
	assert.Contains(t, IconSuccess.Render(), "✓")
	assert.Equal(t, "→", IconArrow.Render())
}
