// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation for user-supplied names.
//
// Scenario, axis and buffer names end up in log attributes, metric
// labels, cache keys and terminal tables, so they are restricted to a
// conservative identifier alphabet.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidName indicates a name outside the identifier alphabet.
var ErrInvalidName = errors.New("invalid name")

// namePattern allows a letter or underscore, then up to 63 letters,
// digits, underscores, dots or hyphens.
var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.\-]{0,63}$`)

// ValidateName validates one name.
//
// Valid names:
//   - 1-64 characters
//   - Start with a letter or underscore
//   - Continue with letters, digits, '_', '.' or '-'
//
// Example:
//
//	if err := validation.ValidateName(axis.Name); err != nil {
//	    return fmt.Errorf("axis: %w", err)
//	}
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q (must be 1-64 chars: letters, digits, '_', '.', '-', starting with a letter or '_')",
			ErrInvalidName, name)
	}
	return nil
}

// ValidateNames validates several names and lists every invalid one.
func ValidateNames(names []string) error {
	var invalid []string
	for _, n := range names {
		if err := ValidateName(n); err != nil {
			invalid = append(invalid, n)
		}
	}
	if len(invalid) > 0 {
		return fmt.Errorf("%w: %q", ErrInvalidName, invalid)
	}
	return nil
}

// SanitizeName trims surrounding whitespace and validates the result.
func SanitizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if err := ValidateName(trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}
