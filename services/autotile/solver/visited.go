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

// VisitedSet is a sorted log of accepted feasible assignments.
//
// Description:
//
//	Entries are stored back to back in one flat buffer of capacity*width
//	values and kept in lexicographic order so lookups are a binary search.
//	Insertion shifts the tail. Once capacity entries are stored, further
//	inserts are ignored; lookups keep working.
type VisitedSet struct {
	width    int
	capacity int
	count    int
	buf      []int64
}

// NewVisitedSet allocates room for capacity assignments of width variables.
func NewVisitedSet(width, capacity int) *VisitedSet {
	if capacity < 0 {
		capacity = 0
	}
	return &VisitedSet{
		width:    width,
		capacity: capacity,
		buf:      make([]int64, width*capacity),
	}
}

// Len returns the number of stored assignments.
func (v *VisitedSet) Len() int { return v.count }

// Cap returns the maximum number of stored assignments.
func (v *VisitedSet) Cap() int { return v.capacity }

// Reset forgets every stored assignment.
func (v *VisitedSet) Reset() { v.count = 0 }

// SearchVars reports whether vars was stored before.
//
// Description:
//
//	Binary search over the sorted entries. When vars is absent, insert is
//	true and the set is below capacity, vars is inserted at its sorted
//	position. Calling it twice with insert=true and the same vars leaves
//	Len unchanged after the second call.
//
// Inputs:
//   - vars: Assignment to look up. Must have the set's width.
//   - insert: Whether to store vars when absent.
//
// Outputs:
//   - bool: True if vars was already present.
func (v *VisitedSet) SearchVars(vars []int64, insert bool) bool {
	if len(vars) != v.width {
		return false
	}
	lo, hi := 0, v.count
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		switch c := v.compare(mid, vars); {
		case c == 0:
			return true
		case c < 0:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	if insert && v.count < v.capacity {
		w := v.width
		copy(v.buf[(lo+1)*w:(v.count+1)*w], v.buf[lo*w:v.count*w])
		copy(v.buf[lo*w:(lo+1)*w], vars)
		v.count++
	}
	return false
}

// At copies entry i into dst.
func (v *VisitedSet) At(i int, dst []int64) bool {
	if i < 0 || i >= v.count || len(dst) < v.width {
		return false
	}
	copy(dst, v.buf[i*v.width:(i+1)*v.width])
	return true
}

// compare orders entry i against vars lexicographically.
func (v *VisitedSet) compare(i int, vars []int64) int {
	entry := v.buf[i*v.width : (i+1)*v.width]
	for k, x := range entry {
		switch {
		case x < vars[k]:
			return -1
		case x > vars[k]:
			return 1
		}
	}
	return 0
}
