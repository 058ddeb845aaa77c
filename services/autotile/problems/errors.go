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

import "errors"

var (
	// ErrInvalidScenario indicates a scenario failed validation.
	ErrInvalidScenario = errors.New("invalid scenario")

	// ErrUnknownAxis indicates a buffer references an axis that is not declared.
	ErrUnknownAxis = errors.New("unknown axis")

	// ErrDuplicateName indicates two axes or two buffers share a name.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrParseScenario indicates a scenario file is neither valid YAML nor JSON.
	ErrParseScenario = errors.New("parse scenario")
)
