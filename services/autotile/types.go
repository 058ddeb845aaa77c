// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package autotile

import (
	"maps"
	"slices"

	"github.com/AleutianAI/AleutianTile/services/autotile/problems"
	"github.com/AleutianAI/AleutianTile/services/autotile/solver"
)

// ServiceVersion is reported by the health endpoint.
const ServiceVersion = "0.1.0"

// =============================================================================
// Requests
// =============================================================================

// SolveRequest is the body of POST /v1/autotile/solve.
type SolveRequest struct {
	// Scenario is the tiling problem to solve.
	Scenario *problems.Scenario `json:"scenario" binding:"required"`
}

// BatchRequest is the body of POST /v1/autotile/batch.
type BatchRequest struct {
	// Scenarios are solved concurrently. Results keep this order.
	Scenarios []problems.Scenario `json:"scenarios" binding:"required"`
}

// =============================================================================
// Responses
// =============================================================================

// TileSolution is one ranked assignment with its evaluation.
type TileSolution struct {
	// Rank is 1 for the best solution.
	Rank int `json:"rank"`

	// Multipliers are the raw solver values (tile / align).
	Multipliers []int64 `json:"multipliers"`

	// Objective is the value the solver ranked by.
	Objective float64 `json:"objective"`

	problems.Evaluation
}

// SolveResult is the outcome of one solve.
type SolveResult struct {
	// RunID identifies this response. Cached results get a fresh id.
	RunID string `json:"run_id"`

	// Scenario is the scenario name.
	Scenario string `json:"scenario"`

	// Fingerprint is the cache key of scenario plus solver config.
	Fingerprint string `json:"fingerprint"`

	// Axes names the tile dimensions, in the order of every Tiles slice.
	Axes []string `json:"axes"`

	// Solutions are best first.
	Solutions []TileSolution `json:"solutions"`

	// Stats describes the search.
	Stats solver.Stats `json:"stats"`

	// Config is the effective solver configuration.
	Config solver.Config `json:"config"`

	// Cached is true when the result came from the solution cache.
	Cached bool `json:"cached"`

	// DurationMs is the wall time of the solve, or of the cache lookup.
	DurationMs float64 `json:"duration_ms"`
}

// Best returns the top solution, or nil.
func (r *SolveResult) Best() *TileSolution {
	if r == nil || len(r.Solutions) == 0 {
		return nil
	}
	return &r.Solutions[0]
}

// Clone returns a deep copy of r. Nil stays nil.
func (r *SolveResult) Clone() *SolveResult {
	if r == nil {
		return nil
	}
	out := *r
	out.Axes = slices.Clone(r.Axes)
	if r.Solutions != nil {
		out.Solutions = make([]TileSolution, len(r.Solutions))
		for i, sol := range r.Solutions {
			sol.Multipliers = slices.Clone(sol.Multipliers)
			sol.Tiles = slices.Clone(sol.Tiles)
			sol.Occupancy = maps.Clone(sol.Occupancy)
			out.Solutions[i] = sol
		}
	}
	return &out
}

// BatchItem is one entry of a batch response. Exactly one of Result and
// Error is set.
type BatchItem struct {
	Index  int          `json:"index"`
	Result *SolveResult `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
	Code   string       `json:"code,omitempty"`
}

// BatchResponse is the body returned by POST /v1/autotile/batch.
type BatchResponse struct {
	Results   []BatchItem `json:"results"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// HealthResponse is returned by GET /v1/autotile/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`

	// CacheEnabled reports whether a solution cache is attached.
	CacheEnabled bool `json:"cache_enabled"`
}

// ErrorResponse is the error body of every endpoint.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is the machine readable error code.
	Code string `json:"code,omitempty"`
}
