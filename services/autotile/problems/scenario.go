// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package problems

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/AleutianAI/AleutianTile/pkg/validation"
	"github.com/AleutianAI/AleutianTile/services/autotile/solver"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// scenarioValidate validates scenario struct tags.
var scenarioValidate = validator.New()

// -----------------------------------------------------------------------------
// Scenario types
// -----------------------------------------------------------------------------

// Scenario describes one kernel to tile: its loop axes, the on-chip buffers
// the kernel stages per tile, and the target hardware.
type Scenario struct {
	// Name identifies the kernel in logs and results.
	Name string `json:"name" yaml:"name" validate:"required"`

	// Axes are the tiled loop axes, one solver variable each.
	Axes []Axis `json:"axes" yaml:"axes" validate:"required,min=1,dive"`

	// Buffers are the tensors staged in on-chip memory per tile.
	Buffers []Buffer `json:"buffers,omitempty" yaml:"buffers,omitempty" validate:"dive"`

	// Hardware describes the target core.
	Hardware Hardware `json:"hardware" yaml:"hardware"`

	// Solver overrides selected solver settings for this scenario.
	Solver *SolverOverrides `json:"solver,omitempty" yaml:"solver,omitempty"`
}

// Axis is one loop axis of the kernel.
type Axis struct {
	// Name is unique within the scenario.
	Name string `json:"name" yaml:"name" validate:"required"`

	// Extent is the full trip count of the axis.
	Extent int64 `json:"extent" yaml:"extent" validate:"min=1"`

	// Align is the granularity of the tile size. 0 means 1.
	Align int64 `json:"align,omitempty" yaml:"align,omitempty" validate:"gte=0"`

	// MinTile is the smallest legal tile size. 0 means Align.
	MinTile int64 `json:"min_tile,omitempty" yaml:"min_tile,omitempty" validate:"gte=0"`

	// Initial is the starting tile size. 0 means the full extent.
	Initial int64 `json:"initial,omitempty" yaml:"initial,omitempty" validate:"gte=0"`

	// SolveLast defers the axis until no other axis can move.
	SolveLast bool `json:"solve_last,omitempty" yaml:"solve_last,omitempty"`

	// Parallel marks axes whose tiles are distributed across cores.
	Parallel bool `json:"parallel,omitempty" yaml:"parallel,omitempty"`
}

// Buffer is a tensor staged in on-chip memory. One tile of it spans the tile
// sizes of Axes.
type Buffer struct {
	Name string `json:"name" yaml:"name" validate:"required"`

	// Capacity is the on-chip space available to the buffer, in bytes.
	Capacity int64 `json:"capacity" yaml:"capacity" validate:"min=1"`

	// ElemBytes is the element size in bytes.
	ElemBytes int64 `json:"elem_bytes" yaml:"elem_bytes" validate:"min=1"`

	// Axes names the axes spanned by the buffer.
	Axes []string `json:"axes" yaml:"axes" validate:"required,min=1,dive,required"`
}

// Hardware is the cost model of the target core.
type Hardware struct {
	// Cores is the number of cores tiles are distributed over.
	Cores int64 `json:"cores" yaml:"cores" validate:"min=1"`

	// Bandwidth is the transfer rate between memory and buffers, in bytes
	// per cycle.
	Bandwidth float64 `json:"bandwidth" yaml:"bandwidth" validate:"gt=0"`

	// Overhead is the fixed cost of launching one tile, in cycles.
	Overhead float64 `json:"overhead" yaml:"overhead" validate:"gte=0"`
}

// SolverOverrides replaces individual solver settings. Nil fields keep the
// service defaults.
type SolverOverrides struct {
	TopNum         *int     `json:"top_num,omitempty" yaml:"top_num,omitempty"`
	SearchLength   *int     `json:"search_length,omitempty" yaml:"search_length,omitempty"`
	Iterations     *int     `json:"iterations,omitempty" yaml:"iterations,omitempty"`
	SimpleMode     *bool    `json:"simple_mode,omitempty" yaml:"simple_mode,omitempty"`
	MomentumFactor *float64 `json:"momentum_factor,omitempty" yaml:"momentum_factor,omitempty"`
}

// -----------------------------------------------------------------------------
// Loading
// -----------------------------------------------------------------------------

// LoadScenario reads a scenario from a YAML or JSON file and validates it.
//
// Inputs:
//   - path: File to read.
//
// Outputs:
//   - *Scenario: The parsed scenario.
//   - error: Read, parse or validation error.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return sc, nil
}

// ParseScenario decodes YAML, falling back to JSON, and validates the result.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		sc = Scenario{}
		if jsonErr := json.Unmarshal(data, &sc); jsonErr != nil {
			return nil, fmt.Errorf("%w (tried YAML and JSON): YAML error: %v, JSON error: %v",
				ErrParseScenario, err, jsonErr)
		}
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks struct tags and cross references.
//
// Outputs:
//   - error: Wraps ErrInvalidScenario, ErrDuplicateName or ErrUnknownAxis.
func (s *Scenario) Validate() error {
	if err := scenarioValidate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	names := make([]string, 0, 1+len(s.Axes)+len(s.Buffers))
	names = append(names, s.Name)
	for _, a := range s.Axes {
		names = append(names, a.Name)
	}
	for _, b := range s.Buffers {
		names = append(names, b.Name)
	}
	if err := validation.ValidateNames(names); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}

	axes := make(map[string]bool, len(s.Axes))
	for _, a := range s.Axes {
		if axes[a.Name] {
			return fmt.Errorf("%w: axis %q", ErrDuplicateName, a.Name)
		}
		axes[a.Name] = true
		align := a.align()
		if align > a.Extent {
			return fmt.Errorf("%w: axis %q align %d exceeds extent %d", ErrInvalidScenario, a.Name, align, a.Extent)
		}
		if a.MinTile > a.Extent {
			return fmt.Errorf("%w: axis %q min_tile %d exceeds extent %d", ErrInvalidScenario, a.Name, a.MinTile, a.Extent)
		}
		if a.Initial > a.Extent {
			return fmt.Errorf("%w: axis %q initial %d exceeds extent %d", ErrInvalidScenario, a.Name, a.Initial, a.Extent)
		}
	}

	buffers := make(map[string]bool, len(s.Buffers))
	for _, b := range s.Buffers {
		if buffers[b.Name] {
			return fmt.Errorf("%w: buffer %q", ErrDuplicateName, b.Name)
		}
		buffers[b.Name] = true
		for _, name := range b.Axes {
			if !axes[name] {
				return fmt.Errorf("%w: buffer %q spans %q", ErrUnknownAxis, b.Name, name)
			}
		}
	}

	if s.Solver != nil {
		if err := s.Solver.Apply(solver.DefaultConfig()).Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidScenario, err)
		}
	}
	return nil
}

// SolverConfig returns base with the scenario's overrides applied.
func (s *Scenario) SolverConfig(base solver.Config) solver.Config {
	if s.Solver == nil {
		return base
	}
	return s.Solver.Apply(base)
}

// Apply returns base with every non-nil override applied.
func (o *SolverOverrides) Apply(base solver.Config) solver.Config {
	if o == nil {
		return base
	}
	if o.TopNum != nil {
		base.TopNum = *o.TopNum
	}
	if o.SearchLength != nil {
		base.SearchLength = *o.SearchLength
	}
	if o.Iterations != nil {
		base.Iterations = *o.Iterations
	}
	if o.SimpleMode != nil {
		base.SimpleMode = *o.SimpleMode
	}
	if o.MomentumFactor != nil {
		base.MomentumFactor = *o.MomentumFactor
	}
	return base
}

// Fingerprint identifies the scenario solved under cfg. Equal fingerprints
// produce equal results.
//
// Outputs:
//   - string: Hex SHA-256 of the canonical JSON of the scenario and config.
//   - error: Marshal error.
func (s *Scenario) Fingerprint(cfg solver.Config) (string, error) {
	data, err := json.Marshal(struct {
		Scenario *Scenario     `json:"scenario"`
		Solver   solver.Config `json:"solver"`
	}{s, cfg})
	if err != nil {
		return "", fmt.Errorf("fingerprint scenario: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func (a Axis) align() int64 {
	if a.Align <= 0 {
		return 1
	}
	return a.Align
}
