// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command autotile finds tile sizes for accelerator kernels.
//
// Usage:
//
//	autotile solve -f scenario.yaml
//	autotile batch ./scenarios
//	autotile serve --port 8095
//
// Example request against a running server:
//
//	curl -X POST http://localhost:8095/v1/autotile/solve \
//	  -H "Content-Type: application/json" \
//	  -d @request.json
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}
