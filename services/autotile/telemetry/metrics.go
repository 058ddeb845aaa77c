// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics contains the autotile instruments. All names use the "autotile_"
// prefix.
//
// Thread Safety: Safe for concurrent use after creation.
type Metrics struct {
	// SolvesTotal counts solves by status (ok, cached, no_solution, error).
	SolvesTotal metric.Int64Counter

	// SolveDuration records wall time per solve in seconds.
	SolveDuration metric.Float64Histogram

	// SolverIterations records outer iterations per solve.
	SolverIterations metric.Int64Histogram

	// SolutionsFound records solutions returned per solve.
	SolutionsFound metric.Int64Histogram

	// CacheLookupsTotal counts cache lookups by result (hit, miss).
	CacheLookupsTotal metric.Int64Counter

	// BatchSize records scenarios per batch request.
	BatchSize metric.Int64Histogram

	// ErrorsTotal counts errors by component.
	ErrorsTotal metric.Int64Counter
}

// NewMetrics registers every instrument on meter.
//
// Outputs:
//
//	*Metrics - The instruments.
//	error - Non-nil if registration fails.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.SolvesTotal, err = meter.Int64Counter(
		"autotile_solves_total",
		metric.WithDescription("Total tile-size solves"),
		metric.WithUnit("{solve}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create solves_total: %w", err)
	}

	m.SolveDuration, err = meter.Float64Histogram(
		"autotile_solve_duration_seconds",
		metric.WithDescription("Solve duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5),
	)
	if err != nil {
		return nil, fmt.Errorf("create solve_duration: %w", err)
	}

	m.SolverIterations, err = meter.Int64Histogram(
		"autotile_solver_iterations",
		metric.WithDescription("Outer solver iterations per solve"),
		metric.WithUnit("{iteration}"),
		metric.WithExplicitBucketBoundaries(1, 2, 4, 8, 16, 32, 64, 128, 256, 512, 1024),
	)
	if err != nil {
		return nil, fmt.Errorf("create solver_iterations: %w", err)
	}

	m.SolutionsFound, err = meter.Int64Histogram(
		"autotile_solutions_found",
		metric.WithDescription("Solutions returned per solve"),
		metric.WithUnit("{solution}"),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 4, 8, 16),
	)
	if err != nil {
		return nil, fmt.Errorf("create solutions_found: %w", err)
	}

	m.CacheLookupsTotal, err = meter.Int64Counter(
		"autotile_cache_lookups_total",
		metric.WithDescription("Solution cache lookups"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create cache_lookups_total: %w", err)
	}

	m.BatchSize, err = meter.Int64Histogram(
		"autotile_batch_size",
		metric.WithDescription("Scenarios per batch"),
		metric.WithUnit("{scenario}"),
		metric.WithExplicitBucketBoundaries(1, 2, 4, 8, 16, 32, 64, 128),
	)
	if err != nil {
		return nil, fmt.Errorf("create batch_size: %w", err)
	}

	m.ErrorsTotal, err = meter.Int64Counter(
		"autotile_errors_total",
		metric.WithDescription("Total errors by component"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create errors_total: %w", err)
	}

	return m, nil
}

// RecordSolve records the outcome of one solve.
func (m *Metrics) RecordSolve(ctx context.Context, status string, seconds float64, iterations, solutions int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.SolvesTotal.Add(ctx, 1, attrs)
	m.SolveDuration.Record(ctx, seconds, attrs)
	m.SolverIterations.Record(ctx, int64(iterations))
	m.SolutionsFound.Record(ctx, int64(solutions))
}

// RecordCacheLookup records a cache hit or miss.
func (m *Metrics) RecordCacheLookup(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// RecordError counts an error for component.
func (m *Metrics) RecordError(ctx context.Context, component string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("component", component)))
}
