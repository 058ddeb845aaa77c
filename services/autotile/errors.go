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

import "errors"

var (
	// ErrNilScenario indicates Solve was called without a scenario.
	ErrNilScenario = errors.New("scenario must not be nil")

	// ErrEmptyBatch indicates a batch with no scenarios.
	ErrEmptyBatch = errors.New("batch must contain at least one scenario")

	// ErrBatchTooLarge indicates a batch above the configured limit.
	ErrBatchTooLarge = errors.New("batch exceeds maximum size")

	// ErrSolverPanic indicates a solve panicked. The panic is recovered and
	// reported for that scenario only.
	ErrSolverPanic = errors.New("solver panicked")
)
