// Copyright © 2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package bvh

import "slices"

// sort.go stably sorts triangle indices by their Morton key, producing
// the permutation PLOC's leaf initialization walks in order.

// sortedIndices returns a permutation of [0,len(keys)) such that
// keys[perm[i]] <= keys[perm[i+1]], breaking ties by triangle index so
// the result is deterministic for a given input regardless of the sort
// algorithm's internal pivoting.
func sortedIndices(keys []uint32) []int {
	perm := make([]int, len(keys))
	for i := range perm {
		perm[i] = i
	}
	slices.SortStableFunc(perm, func(a, b int) int {
		if keys[a] != keys[b] {
			if keys[a] < keys[b] {
				return -1
			}
			return 1
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	})
	return perm
}
