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
	"fmt"
	"math"

	"github.com/AleutianAI/AleutianTile/services/autotile/solver"
)

// feasibilityTolerance is the slack LocallyFeasible grants constraint values.
const feasibilityTolerance = 1e-9

type axisModel struct {
	name      string
	extent    float64
	align     int64
	parallel  bool
	solveLast bool
}

type bufferModel struct {
	name      string
	capacity  float64
	elemBytes float64
	axes      []int
}

// TilingModel is the solver.Problem of one Scenario.
//
// Description:
//
//	Variable i is the tile size of axis i in units of the axis alignment,
//	so tile_i = vars[i] * align_i. Constraint b < len(buffers) keeps
//	buffer b within capacity as usage_b/capacity_b - 1 <= 0. When the
//	scenario has parallel axes and more than one core, a final constraint
//	requires at least one tile per core across the parallel axes.
//
//	The cost is the cycle count of the tiled kernel: every tile moves the
//	bytes of every buffer at the given bandwidth and pays a fixed launch
//	overhead, and tiles are spread over min(cores, parallel tiles) cores.
//	Objective counts tiles with ceil(extent/tile); SmoothedObjective uses
//	the real quotient.
//
// Thread Safety: Immutable after construction except for the trace hook;
// safe for concurrent solvers when the hook is.
type TilingModel struct {
	name      string
	axes      []axisModel
	buffers   []bufferModel
	parallel  []int
	cores     float64
	bandwidth float64
	overhead  float64

	// parallelCons is the index of the parallelism constraint, or -1.
	parallelCons int

	// touches lists the constraints each axis participates in.
	touches [][]int

	lower     []int64
	upper     []int64
	initial   []int64
	solveLast []bool

	trace func(vars []int64)
}

// Option customises a TilingModel.
type Option func(*TilingModel)

// WithTrace installs the hook called on every committed solver update.
func WithTrace(fn func(vars []int64)) Option {
	return func(m *TilingModel) { m.trace = fn }
}

// NewTilingModel builds the problem for a validated scenario.
//
// Inputs:
//   - sc: Scenario. Validated again here.
//   - opts: Optional settings.
//
// Outputs:
//   - *TilingModel: The problem.
//   - error: Validation error.
func NewTilingModel(sc *Scenario, opts ...Option) (*TilingModel, error) {
	if sc == nil {
		return nil, fmt.Errorf("%w: nil scenario", ErrInvalidScenario)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	n := len(sc.Axes)
	m := &TilingModel{
		name:         sc.Name,
		axes:         make([]axisModel, n),
		cores:        float64(sc.Hardware.Cores),
		bandwidth:    sc.Hardware.Bandwidth,
		overhead:     sc.Hardware.Overhead,
		parallelCons: -1,
		touches:      make([][]int, n),
		lower:        make([]int64, n),
		upper:        make([]int64, n),
		initial:      make([]int64, n),
		solveLast:    make([]bool, n),
	}

	index := make(map[string]int, n)
	for i, a := range sc.Axes {
		align := a.align()
		index[a.Name] = i
		m.axes[i] = axisModel{
			name:      a.Name,
			extent:    float64(a.Extent),
			align:     align,
			parallel:  a.Parallel,
			solveLast: a.SolveLast,
		}
		m.lower[i] = max(1, ceilDiv(a.MinTile, align))
		m.upper[i] = max(m.lower[i], a.Extent/align)
		m.initial[i] = m.upper[i]
		if a.Initial > 0 {
			m.initial[i] = min(max(a.Initial/align, m.lower[i]), m.upper[i])
		}
		m.solveLast[i] = a.SolveLast
		if a.Parallel {
			m.parallel = append(m.parallel, i)
		}
	}

	for j, b := range sc.Buffers {
		bm := bufferModel{
			name:      b.Name,
			capacity:  float64(b.Capacity),
			elemBytes: float64(b.ElemBytes),
			axes:      make([]int, 0, len(b.Axes)),
		}
		for _, name := range b.Axes {
			i := index[name]
			bm.axes = append(bm.axes, i)
			m.touches[i] = append(m.touches[i], j)
		}
		m.buffers = append(m.buffers, bm)
	}

	if len(m.parallel) > 0 && sc.Hardware.Cores > 1 {
		m.parallelCons = len(m.buffers)
		for _, i := range m.parallel {
			m.touches[i] = append(m.touches[i], m.parallelCons)
		}
	}

	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// -----------------------------------------------------------------------------
// Shape
// -----------------------------------------------------------------------------

// Name returns the scenario name.
func (m *TilingModel) Name() string { return m.name }

// VariableCount returns the number of solver variables.
func (m *TilingModel) VariableCount() int { return len(m.axes) }

// ConstraintCount returns the number of constraints.
func (m *TilingModel) ConstraintCount() int {
	if m.parallelCons >= 0 {
		return len(m.buffers) + 1
	}
	return len(m.buffers)
}

// Input returns the solver domains and starting point. The slices are copies.
func (m *TilingModel) Input() solver.Input {
	return solver.Input{
		Lower:     append([]int64(nil), m.lower...),
		Upper:     append([]int64(nil), m.upper...),
		Initial:   append([]int64(nil), m.initial...),
		SolveLast: append([]bool(nil), m.solveLast...),
	}
}

// AxisNames returns the axis names in variable order.
func (m *TilingModel) AxisNames() []string {
	names := make([]string, len(m.axes))
	for i, a := range m.axes {
		names[i] = a.name
	}
	return names
}

// Tiles converts solver values to tile sizes.
func (m *TilingModel) Tiles(vars []int64) []int64 {
	tiles := make([]int64, len(vars))
	for i, v := range vars {
		tiles[i] = v * m.axes[i].align
	}
	return tiles
}

// -----------------------------------------------------------------------------
// solver.Problem
// -----------------------------------------------------------------------------

// SmoothedObjective returns the cycle estimate with fractional tile counts.
func (m *TilingModel) SmoothedObjective(vars []int64) float64 {
	return m.cost(vars, true)
}

// Objective returns the cycle estimate with whole tile counts.
func (m *TilingModel) Objective(vars []int64) float64 {
	return m.cost(vars, false)
}

// BufferMargin returns the summed buffer occupancy. Lower leaves more room.
func (m *TilingModel) BufferMargin(vars []int64) float64 {
	var sum float64
	for b := range m.buffers {
		sum += m.usage(vars, b) / m.buffers[b].capacity
	}
	return sum
}

// Probe returns the weighted violation for ProbeConstraint and the weighted
// constraint values for ProbeBuffer.
func (m *TilingModel) Probe(vars []int64, kind solver.ProbeKind, weights []float64) float64 {
	var sum float64
	for j := range weights {
		if weights[j] == 0 {
			continue
		}
		c := m.constraint(vars, j)
		if kind == solver.ProbeConstraint && c < 0 {
			c = 0
		}
		sum += weights[j] * c
	}
	return sum
}

// RefreshConstraints recomputes the constraints axis changed participates
// in, or all of them for solver.AllVariables.
func (m *TilingModel) RefreshConstraints(vars []int64, changed int, out []float64) {
	if changed == solver.AllVariables {
		for j := range out {
			out[j] = m.constraint(vars, j)
		}
		return
	}
	if changed < 0 || changed >= len(m.touches) {
		return
	}
	for _, j := range m.touches[changed] {
		out[j] = m.constraint(vars, j)
	}
}

// LocallyFeasible reports whether the constraints axis idx participates in
// hold.
func (m *TilingModel) LocallyFeasible(constraints []float64, idx int) bool {
	if idx < 0 || idx >= len(m.touches) {
		return false
	}
	for _, j := range m.touches[idx] {
		if constraints[j] > feasibilityTolerance {
			return false
		}
	}
	return true
}

// TraceAssignment forwards to the hook installed with WithTrace.
func (m *TilingModel) TraceAssignment(vars []int64) {
	if m.trace != nil {
		m.trace(vars)
	}
}

// -----------------------------------------------------------------------------
// Evaluation
// -----------------------------------------------------------------------------

// Evaluation is a readable breakdown of one assignment.
type Evaluation struct {
	// Tiles holds the tile size per axis.
	Tiles []int64 `json:"tiles"`

	// Cycles is the discrete cost estimate.
	Cycles float64 `json:"cycles"`

	// Margin is the summed buffer occupancy.
	Margin float64 `json:"margin"`

	// Occupancy holds usage/capacity per buffer.
	Occupancy map[string]float64 `json:"occupancy"`

	// TileCount is the number of tiles launched.
	TileCount int64 `json:"tile_count"`

	// Feasible reports whether every constraint holds.
	Feasible bool `json:"feasible"`
}

// Evaluate describes an assignment.
func (m *TilingModel) Evaluate(vars []int64) Evaluation {
	ev := Evaluation{
		Tiles:     m.Tiles(vars),
		Cycles:    m.Objective(vars),
		Margin:    m.BufferMargin(vars),
		Occupancy: make(map[string]float64, len(m.buffers)),
		TileCount: 1,
		Feasible:  true,
	}
	for b, buf := range m.buffers {
		ev.Occupancy[buf.name] = m.usage(vars, b) / buf.capacity
	}
	for i := range m.axes {
		ev.TileCount *= int64(m.blocks(vars, i, false))
	}
	for j := 0; j < m.ConstraintCount(); j++ {
		if m.constraint(vars, j) > feasibilityTolerance {
			ev.Feasible = false
		}
	}
	return ev
}

// -----------------------------------------------------------------------------
// Internals
// -----------------------------------------------------------------------------

func (m *TilingModel) tile(vars []int64, i int) float64 {
	return float64(vars[i] * m.axes[i].align)
}

// blocks returns the number of tiles along axis i.
func (m *TilingModel) blocks(vars []int64, i int, smooth bool) float64 {
	q := m.axes[i].extent / m.tile(vars, i)
	if smooth {
		return q
	}
	return math.Ceil(q)
}

func (m *TilingModel) usage(vars []int64, b int) float64 {
	buf := &m.buffers[b]
	u := buf.elemBytes
	for _, i := range buf.axes {
		u *= m.tile(vars, i)
	}
	return u
}

// parallelTiles returns the number of tiles across the parallel axes.
func (m *TilingModel) parallelTiles(vars []int64, smooth bool) float64 {
	p := 1.0
	for _, i := range m.parallel {
		p *= m.blocks(vars, i, smooth)
	}
	return p
}

func (m *TilingModel) constraint(vars []int64, j int) float64 {
	if j == m.parallelCons {
		return (m.cores - m.parallelTiles(vars, false)) / m.cores
	}
	return m.usage(vars, j)/m.buffers[j].capacity - 1
}

func (m *TilingModel) cost(vars []int64, smooth bool) float64 {
	count := 1.0
	for i := range m.axes {
		count *= m.blocks(vars, i, smooth)
	}
	var traffic float64
	for b := range m.buffers {
		traffic += m.usage(vars, b)
	}
	cores := math.Max(1, math.Min(m.cores, m.parallelTiles(vars, smooth)))
	return count * (traffic/m.bandwidth + m.overhead) / cores
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}
