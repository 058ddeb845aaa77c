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
	"errors"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianTile/services/autotile/problems"
)

func newSolveCmd(a *app) *cobra.Command {
	var (
		file    string
		noCache bool
	)
	cmd := &cobra.Command{
		Use:   "solve -f scenario.yaml",
		Short: "Solve one scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errors.New("--file is required")
			}
			sc, err := problems.LoadScenario(file)
			if err != nil {
				return err
			}

			svc, cleanup := a.newService(!noCache, nil)
			defer cleanup()

			res, err := svc.Solve(cmd.Context(), sc)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			renderResult(a.printer, res)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Scenario file (YAML or JSON)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the solution cache")
	return cmd
}
