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
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianTile/services/autotile"
	"github.com/AleutianAI/AleutianTile/services/autotile/problems"
)

// batchEntry is one scenario file and its outcome.
type batchEntry struct {
	File   string                `json:"file"`
	Result *autotile.SolveResult `json:"result,omitempty"`
	Error  string                `json:"error,omitempty"`
	Code   string                `json:"code,omitempty"`
}

func newBatchCmd(a *app) *cobra.Command {
	var noCache bool
	cmd := &cobra.Command{
		Use:   "batch DIR",
		Short: "Solve every scenario file in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := scenarioFiles(args[0])
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no scenario files in %s", args[0])
			}

			entries := make([]batchEntry, len(files))
			var scenarios []problems.Scenario
			var slots []int
			for i, f := range files {
				entries[i].File = f
				sc, err := problems.LoadScenario(f)
				if err != nil {
					entries[i].Error = err.Error()
					entries[i].Code = "INVALID_SCENARIO"
					continue
				}
				scenarios = append(scenarios, *sc)
				slots = append(slots, i)
			}

			if len(scenarios) > 0 {
				svc, cleanup := a.newService(!noCache, nil)
				defer cleanup()

				items, err := svc.SolveBatch(cmd.Context(), scenarios)
				if err != nil {
					return err
				}
				for j, item := range items {
					e := &entries[slots[j]]
					e.Result, e.Error, e.Code = item.Result, item.Error, item.Code
				}
			}

			failed := 0
			for _, e := range entries {
				if e.Result == nil {
					failed++
				}
			}

			if a.jsonOutput {
				if err := writeJSON(cmd.OutOrStdout(), entries); err != nil {
					return err
				}
			} else {
				renderBatch(a.printer, entries)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scenarios failed", failed, len(entries))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the solution cache")
	return cmd
}

// scenarioFiles lists the .yaml, .yml and .json files directly in dir,
// sorted by name.
func scenarioFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scenario directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml", ".json":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
