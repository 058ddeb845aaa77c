// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package problems provides solver.Problem implementations for tiling
// scenarios.
//
// A Scenario is loaded from YAML or JSON and turned into a TilingModel,
// whose variables are per-axis tile sizes in units of the axis alignment:
//
//	sc, err := problems.LoadScenario("matmul.yaml")
//	model, err := problems.NewTilingModel(sc)
//	ws, err := solver.NewWorkspace(model.VariableCount(), model.ConstraintCount(), cfg)
package problems
