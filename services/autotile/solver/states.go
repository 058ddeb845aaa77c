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

// -----------------------------------------------------------------------------
// Locality
// -----------------------------------------------------------------------------

// Locality classifies how close a candidate brings an infeasible assignment
// to the feasible region. Lower values are better.
type Locality int

const (
	// GlobalValid means every constraint is satisfied.
	GlobalValid Locality = iota

	// LocalValid means the constraints touching the variable are satisfied.
	LocalValid

	// CrossRegion means the update is still travelling across the infeasible
	// region towards the feasible boundary.
	CrossRegion

	// Invalid means no further local improvement exists for the variable.
	Invalid

	// Alternative is a peer solution on the opposite boundary of the same
	// variable. High-performance mode only.
	Alternative

	// Reject means the candidate returns to the previous outer iteration's
	// value.
	Reject

	// localityNone marks that no variable has reached any tier yet.
	localityNone
)

// String returns the tier name.
func (l Locality) String() string {
	switch l {
	case GlobalValid:
		return "global_valid"
	case LocalValid:
		return "local_valid"
	case CrossRegion:
		return "cross_region"
	case Invalid:
		return "invalid"
	case Alternative:
		return "alternative"
	case Reject:
		return "reject"
	default:
		return "none"
	}
}

// Better reports whether l ranks strictly above other.
func (l Locality) Better(other Locality) bool { return l < other }

// Valid reports whether l is GlobalValid or LocalValid.
func (l Locality) Valid() bool { return l <= LocalValid }

// -----------------------------------------------------------------------------
// TunePriority
// -----------------------------------------------------------------------------

// TunePriority classifies how much a candidate improves a feasible
// assignment. Lower values are better.
type TunePriority int

const (
	// Harmless means the objective strictly improves and the assignment
	// stays feasible.
	Harmless TunePriority = iota

	// Dilated means the objective is unchanged and the buffer margin
	// improves.
	Dilated

	// Normal means the update crosses the feasible boundary while keeping
	// the variable's own constraints satisfied and the objective no worse.
	Normal

	// Other means an infeasible but objective-improving update.
	// High-performance mode only.
	Other

	// Tabu means the update reverses the previous update of the variable.
	Tabu

	// Refuse means the update is strictly worse.
	Refuse

	// priorityNone marks that no variable has produced a candidate yet.
	priorityNone
)

// String returns the tier name.
func (p TunePriority) String() string {
	switch p {
	case Harmless:
		return "harmless"
	case Dilated:
		return "dilated"
	case Normal:
		return "normal"
	case Other:
		return "other"
	case Tabu:
		return "tabu"
	case Refuse:
		return "refuse"
	default:
		return "none"
	}
}

// Better reports whether p ranks strictly above other.
func (p TunePriority) Better(other TunePriority) bool { return p < other }

// Improving reports whether a candidate of this tier may be committed.
func (p TunePriority) Improving() bool { return p <= Other }

// -----------------------------------------------------------------------------
// Run state
// -----------------------------------------------------------------------------

// RunState is the state of the outer loop.
type RunState int

const (
	// StateInfeasible means the current assignment violates a constraint.
	StateInfeasible RunState = iota

	// StateFeasible means every constraint is satisfied.
	StateFeasible

	// StateTerminated means the loop has stopped.
	StateTerminated
)

// String returns the state name.
func (s RunState) String() string {
	switch s {
	case StateInfeasible:
		return "infeasible"
	case StateFeasible:
		return "feasible"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// TerminalReason records why Run stopped.
type TerminalReason int

const (
	// ReasonNone means Run has not finished.
	ReasonNone TerminalReason = iota

	// ReasonBudget means the iteration budget was exhausted.
	ReasonBudget

	// ReasonConverged means a feasible assignment was visited twice.
	ReasonConverged

	// ReasonLocateFailed means LocateRegion found no usable update.
	ReasonLocateFailed

	// ReasonTuneFailed means FineTune found no improving update.
	ReasonTuneFailed
)

// String returns the reason name.
func (r TerminalReason) String() string {
	switch r {
	case ReasonBudget:
		return "budget"
	case ReasonConverged:
		return "converged"
	case ReasonLocateFailed:
		return "locate_failed"
	case ReasonTuneFailed:
		return "tune_failed"
	default:
		return "none"
	}
}

// MarshalText encodes the reason by name.
func (r TerminalReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a reason name. Unknown names decode to ReasonNone.
func (r *TerminalReason) UnmarshalText(text []byte) error {
	switch string(text) {
	case "budget":
		*r = ReasonBudget
	case "converged":
		*r = ReasonConverged
	case "locate_failed":
		*r = ReasonLocateFailed
	case "tune_failed":
		*r = ReasonTuneFailed
	default:
		*r = ReasonNone
	}
	return nil
}
