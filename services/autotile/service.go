// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package autotile serves the tile-size solver over HTTP and to the CLI.
//
// Service wraps one solve end to end: scenario validation, the solution
// cache, the search itself, and evaluation of every returned assignment.
// Handlers expose it under /v1/autotile.
package autotile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/AleutianAI/AleutianTile/services/autotile/cache"
	"github.com/AleutianAI/AleutianTile/services/autotile/problems"
	"github.com/AleutianAI/AleutianTile/services/autotile/solver"
	"github.com/AleutianAI/AleutianTile/services/autotile/telemetry"
)

// ServiceConfig configures the service.
type ServiceConfig struct {
	// Solver is the base solver configuration. Scenario overrides apply on top.
	Solver solver.Config

	// MaxConcurrency bounds concurrent solves within one batch.
	// Default: 4
	MaxConcurrency int

	// MaxBatch bounds the scenarios in one batch.
	// Default: 64
	MaxBatch int
}

// DefaultServiceConfig returns sensible defaults.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Solver:         solver.DefaultConfig(),
		MaxConcurrency: 4,
		MaxBatch:       64,
	}
}

// ServiceOption configures optional collaborators.
type ServiceOption func(*Service)

// WithCache attaches a solution cache.
func WithCache(c *cache.SolutionCache) ServiceOption {
	return func(s *Service) { s.cache = c }
}

// WithMetrics attaches metric instruments.
func WithMetrics(m *telemetry.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// Service solves tiling scenarios.
//
// Thread Safety:
//
//	Service is safe for concurrent use. Every solve builds its own
//	workspace and solver; identical concurrent solves are coalesced.
type Service struct {
	mu     sync.RWMutex
	config ServiceConfig

	cache   *cache.SolutionCache
	metrics *telemetry.Metrics
	logger  *slog.Logger
	flight  singleflight.Group

	// run performs one uncached solve. Tests replace it.
	run func(*problems.Scenario, solver.Config, *slog.Logger) (*SolveResult, error)
}

// NewService creates a service. Non-positive limits fall back to defaults.
func NewService(cfg ServiceConfig, opts ...ServiceOption) *Service {
	def := DefaultServiceConfig()
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = def.MaxConcurrency
	}
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = def.MaxBatch
	}
	s := &Service{config: cfg, logger: slog.Default(), run: runSolver}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("component", "autotile_service"))
	return s
}

// Config returns the current configuration.
func (s *Service) Config() ServiceConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// SetSolverConfig replaces the base solver configuration for later solves.
//
// Outputs:
//
//	error - Wraps solver.ErrInvalidConfig; the old config stays in effect.
func (s *Service) SetSolverConfig(cfg solver.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.config.Solver = cfg
	s.mu.Unlock()
	s.logger.Info("solver config updated",
		slog.Int("top_num", cfg.TopNum),
		slog.Int("iterations", cfg.Iterations),
		slog.Bool("simple_mode", cfg.SimpleMode),
	)
	return nil
}

// CacheEnabled reports whether a solution cache is attached.
func (s *Service) CacheEnabled() bool {
	return s.cache != nil
}

// Solve finds the best tile sizes for one scenario.
//
// Description:
//
//	Validates the scenario, applies its solver overrides to the base
//	config, and looks the fingerprint up in the cache. On a miss the
//	search runs (coalesced with identical in-flight solves) and the
//	result is cached.
//
// Inputs:
//
//	ctx - Cancels the solve before the search starts.
//	sc - The scenario. Must not be nil.
//
// Outputs:
//
//	*SolveResult - Ranked solutions with evaluations.
//	error - ErrNilScenario, a problems validation error, a wrapped
//	        solver.ErrInvalidConfig, or a wrapped solver.ErrNoSolution.
//
// Thread Safety: Safe for concurrent use.
func (s *Service) Solve(ctx context.Context, sc *problems.Scenario) (*SolveResult, error) {
	if sc == nil {
		return nil, ErrNilScenario
	}
	ctx, span := telemetry.StartSpan(ctx, "autotile.Service.Solve",
		trace.WithAttributes(attribute.String("scenario", sc.Name)),
	)
	defer span.End()
	start := time.Now()

	res, err := s.solve(ctx, sc)
	elapsed := time.Since(start)
	if err != nil {
		status := "error"
		if errors.Is(err, solver.ErrNoSolution) {
			status = "no_solution"
		}
		s.metrics.RecordSolve(ctx, status, elapsed.Seconds(), 0, 0)
		s.metrics.RecordError(ctx, "service")
		telemetry.RecordError(span, err)
		s.logger.Warn("solve failed", slog.String("scenario", sc.Name), slog.String("error", err.Error()))
		return nil, err
	}

	res.DurationMs = float64(elapsed.Microseconds()) / 1000
	status := "ok"
	if res.Cached {
		status = "cached"
	}
	s.metrics.RecordSolve(ctx, status, elapsed.Seconds(), res.Stats.Iterations, len(res.Solutions))
	span.SetAttributes(
		attribute.String("run_id", res.RunID),
		attribute.Bool("cached", res.Cached),
		attribute.Int("solutions", len(res.Solutions)),
	)
	telemetry.SetOK(span)
	s.logger.Info("solve completed",
		slog.String("run_id", res.RunID),
		slog.String("scenario", sc.Name),
		slog.Bool("cached", res.Cached),
		slog.Int("solutions", len(res.Solutions)),
		slog.String("reason", res.Stats.Reason.String()),
		slog.Float64("duration_ms", res.DurationMs),
	)
	return res, nil
}

func (s *Service) solve(ctx context.Context, sc *problems.Scenario) (*SolveResult, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	cfg := sc.SolverConfig(s.Config().Solver)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	fp, err := sc.Fingerprint(cfg)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		var cached SolveResult
		hit, err := s.cache.Get(ctx, fp, &cached)
		if err != nil {
			// A broken cache must not fail the solve.
			s.logger.Warn("cache lookup failed", slog.String("error", err.Error()))
			s.metrics.RecordError(ctx, "cache")
		}
		s.metrics.RecordCacheLookup(ctx, hit)
		if hit {
			cached.RunID = uuid.NewString()
			cached.Cached = true
			return &cached, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("solve %s: %w", sc.Name, err)
	}

	v, err, _ := s.flight.Do(fp, func() (interface{}, error) {
		res, err := s.runSolverSafe(sc, cfg)
		if err != nil {
			return nil, err
		}
		res.Fingerprint = fp
		if s.cache != nil {
			// Detached from ctx so one cancelled caller cannot drop the
			// entry for everyone sharing this flight.
			if err := s.cache.Put(context.Background(), fp, res); err != nil {
				s.logger.Warn("cache store failed", slog.String("error", err.Error()))
				s.metrics.RecordError(ctx, "cache")
			}
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}

	// Callers sharing a flight get their own copy and run id.
	out := v.(*SolveResult).Clone()
	out.RunID = uuid.NewString()
	return out, nil
}

// runSolverSafe runs s.run and turns a panic into ErrSolverPanic.
// Batch solves run in errgroup goroutines, which are not covered by the
// HTTP recovery middleware.
func (s *Service) runSolverSafe(sc *problems.Scenario, cfg solver.Config) (res *SolveResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			s.logger.Error("panic in solver",
				slog.String("scenario", sc.Name),
				slog.Any("panic", r),
				slog.String("stack", string(buf[:n])),
			)
			res, err = nil, fmt.Errorf("%w: scenario %s: %v", ErrSolverPanic, sc.Name, r)
		}
	}()
	return s.run(sc, cfg, s.logger)
}

// runSolver builds the model and solver for one scenario and runs it.
func runSolver(sc *problems.Scenario, cfg solver.Config, logger *slog.Logger) (*SolveResult, error) {
	model, err := problems.NewTilingModel(sc)
	if err != nil {
		return nil, err
	}
	ws, err := solver.NewWorkspace(model.VariableCount(), model.ConstraintCount(), cfg)
	if err != nil {
		return nil, fmt.Errorf("workspace for %s: %w", sc.Name, err)
	}
	sv, err := solver.New(cfg, model, ws, solver.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("solver for %s: %w", sc.Name, err)
	}
	if err := sv.Init(model.Input()); err != nil {
		return nil, fmt.Errorf("init solver for %s: %w", sc.Name, err)
	}

	out := solver.NewResultBuffer(cfg.TopNum, model.VariableCount())
	if _, err := sv.Run(out); err != nil {
		return nil, fmt.Errorf("solve %s: %w", sc.Name, err)
	}

	found := sv.Solutions()
	solutions := make([]TileSolution, len(found))
	for i, sol := range found {
		solutions[i] = TileSolution{
			Rank:        i + 1,
			Multipliers: sol.Values,
			Objective:   sol.Objective,
			Evaluation:  model.Evaluate(sol.Values),
		}
	}

	return &SolveResult{
		Scenario:  sc.Name,
		Axes:      model.AxisNames(),
		Solutions: solutions,
		Stats:     sv.Stats(),
		Config:    cfg,
	}, nil
}

// SolveBatch solves scenarios concurrently.
//
// Description:
//
//	At most MaxConcurrency solves run at once. A failing scenario is
//	reported in its own BatchItem and does not stop the others. Results
//	are in input order.
//
// Inputs:
//
//	ctx - Cancelling stops scenarios that have not started.
//	scenarios - One to MaxBatch scenarios.
//
// Outputs:
//
//	[]BatchItem - One per scenario, in input order.
//	error - ErrEmptyBatch, ErrBatchTooLarge, or the context error.
//
// Thread Safety: Safe for concurrent use.
func (s *Service) SolveBatch(ctx context.Context, scenarios []problems.Scenario) ([]BatchItem, error) {
	cfg := s.Config()
	if len(scenarios) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(scenarios) > cfg.MaxBatch {
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(scenarios), cfg.MaxBatch)
	}

	ctx, span := telemetry.StartSpan(ctx, "autotile.Service.SolveBatch",
		trace.WithAttributes(attribute.Int("batch_size", len(scenarios))),
	)
	defer span.End()
	if s.metrics != nil {
		s.metrics.BatchSize.Record(ctx, int64(len(scenarios)))
	}

	items := make([]BatchItem, len(scenarios))
	sem := semaphore.NewWeighted(int64(cfg.MaxConcurrency))
	g, gctx := errgroup.WithContext(ctx)

	for i := range scenarios {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			items[i].Index = i
			res, err := s.Solve(gctx, &scenarios[i])
			if err != nil {
				items[i].Error = err.Error()
				items[i].Code = errorCode(err)
				return nil
			}
			items[i].Result = res
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("batch: %w", err)
	}
	telemetry.SetOK(span)
	return items, nil
}
