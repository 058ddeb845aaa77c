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
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/AleutianAI/AleutianTile/pkg/ux"
	"github.com/AleutianAI/AleutianTile/services/autotile"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatTiles renders "m=64 n=128 k=32".
func formatTiles(axes []string, tiles []int64) string {
	parts := make([]string, len(tiles))
	for i, t := range tiles {
		name := strconv.Itoa(i)
		if i < len(axes) {
			name = axes[i]
		}
		parts[i] = fmt.Sprintf("%s=%d", name, t)
	}
	return strings.Join(parts, " ")
}

func renderResult(p *ux.Printer, res *autotile.SolveResult) {
	p.Title(res.Scenario)
	p.KeyValue("run", res.RunID)
	p.KeyValue("reason", res.Stats.Reason)
	p.KeyValue("iterations", res.Stats.Iterations)
	p.KeyValue("cached", res.Cached)
	p.KeyValue("duration", fmt.Sprintf("%.2fms", res.DurationMs))

	rows := make([][]string, len(res.Solutions))
	for i, sol := range res.Solutions {
		rows[i] = []string{
			strconv.Itoa(sol.Rank),
			formatTiles(res.Axes, sol.Tiles),
			strconv.FormatFloat(sol.Cycles, 'f', 0, 64),
			strconv.FormatFloat(sol.Margin, 'f', 3, 64),
			strconv.FormatInt(sol.TileCount, 10),
		}
	}
	p.Table([]string{"rank", "tiles", "cycles", "margin", "tiles#"}, rows)
}

func renderBatch(p *ux.Printer, entries []batchEntry) {
	rows := make([][]string, len(entries))
	succeeded := 0
	for i, e := range entries {
		name := filepath.Base(e.File)
		if e.Result == nil {
			rows[i] = []string{name, "-", "-", e.Code}
			continue
		}
		succeeded++
		best := e.Result.Best()
		rows[i] = []string{
			name,
			formatTiles(e.Result.Axes, best.Tiles),
			strconv.FormatFloat(best.Cycles, 'f', 0, 64),
			e.Result.Stats.Reason.String(),
		}
	}
	p.Table([]string{"file", "best tiles", "cycles", "status"}, rows)
	p.Summary(succeeded, len(entries)-succeeded, len(entries))
}
