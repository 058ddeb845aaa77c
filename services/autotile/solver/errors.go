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

import "errors"

// Sentinel errors for the solver.
var (
	// ErrInvalidConfig indicates a Config field is out of range.
	ErrInvalidConfig = errors.New("invalid solver config")

	// ErrNilProblem indicates New was called without a Problem.
	ErrNilProblem = errors.New("problem must not be nil")

	// ErrNilWorkspace indicates New was called without a Workspace.
	ErrNilWorkspace = errors.New("workspace must not be nil")

	// ErrDimensionMismatch indicates input slices do not match the workspace size.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrInvalidBounds indicates a variable domain is empty, negative, or
	// does not contain its initial value.
	ErrInvalidBounds = errors.New("invalid variable bounds")

	// ErrNotInitialized indicates Run was called before Init.
	ErrNotInitialized = errors.New("solver not initialized")

	// ErrIndexOutOfRange indicates a variable or constraint index is out of range.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrNoSolution indicates Run finished without recording any feasible assignment.
	ErrNoSolution = errors.New("no feasible solution found")
)
