// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package solver

import (
	"fmt"
	"log/slog"
)

// Upper bounds on the sizing fields of Config. Each one sizes a buffer that
// NewWorkspace allocates up front.
const (
	MaxTopNum       = 1024
	MaxSearchLength = 1 << 16
	MaxIterations   = 1 << 20
)

// Config holds every tunable of the general solver.
//
// Thread Safety: Safe to read concurrently. Not safe to modify after New.
type Config struct {
	// TopNum is the number of best feasible solutions retained.
	TopNum int `json:"top_num" yaml:"top_num" validate:"min=1,max=1024"`

	// SearchLength is the number of single-unit probes SearchLoc makes in one
	// direction, and the stride used when extending a harmless update in
	// high-performance mode.
	SearchLength int `json:"search_length" yaml:"search_length" validate:"min=1,max=65536"`

	// Iterations is the outer iteration budget. It also caps the VisitedSet.
	Iterations int `json:"iterations" yaml:"iterations" validate:"min=1,max=1048576"`

	// SimpleMode selects the cheaper search: negative tuning only when the
	// positive direction failed, doubling strides, Refuse ends a probe walk,
	// and no Other/Alternative candidates.
	SimpleMode bool `json:"simple_mode" yaml:"simple_mode"`

	// MomentumFactor weights the carried momentum against this iteration's
	// gain. Must be in [0, 1).
	MomentumFactor float64 `json:"momentum_factor" yaml:"momentum_factor" validate:"gte=0,lt=1"`

	// Tolerance is the relative tolerance for floating point equality of
	// objectives and margins, and the absolute slack for constraint values.
	Tolerance float64 `json:"tolerance" yaml:"tolerance" validate:"gte=0"`
}

// DefaultConfig returns the configuration used by the tiling driver.
//
// Outputs:
//   - Config: TopNum 5, SearchLength 8, Iterations 256, simple mode,
//     MomentumFactor 0.5, Tolerance 1e-9.
func DefaultConfig() Config {
	return Config{
		TopNum:         5,
		SearchLength:   8,
		Iterations:     256,
		SimpleMode:     true,
		MomentumFactor: 0.5,
		Tolerance:      1e-9,
	}
}

// Validate checks that the configuration is usable.
//
// Outputs:
//   - error: Wraps ErrInvalidConfig naming the offending field, or nil.
func (c Config) Validate() error {
	if c.TopNum < 1 || c.TopNum > MaxTopNum {
		return fmt.Errorf("%w: top_num must be in [1, %d], got %d", ErrInvalidConfig, MaxTopNum, c.TopNum)
	}
	if c.SearchLength < 1 || c.SearchLength > MaxSearchLength {
		return fmt.Errorf("%w: search_length must be in [1, %d], got %d", ErrInvalidConfig, MaxSearchLength, c.SearchLength)
	}
	if c.Iterations < 1 || c.Iterations > MaxIterations {
		return fmt.Errorf("%w: iterations must be in [1, %d], got %d", ErrInvalidConfig, MaxIterations, c.Iterations)
	}
	if c.MomentumFactor < 0 || c.MomentumFactor >= 1 {
		return fmt.Errorf("%w: momentum_factor must be in [0, 1), got %g", ErrInvalidConfig, c.MomentumFactor)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("%w: tolerance must be >= 0, got %g", ErrInvalidConfig, c.Tolerance)
	}
	return nil
}

// Option customises a Solver at construction.
type Option func(*Solver)

// WithLogger sets the logger used for run summaries. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Solver) {
		if logger != nil {
			s.logger = logger
		}
	}
}
