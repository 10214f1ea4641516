// Copyright © 2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package bvh

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// ploc.go is the PLOC (Parallel Locally-Ordered Clustering) core: it
// agglomerates a Morton-sorted leaf array into an implicit binary tree
// via bounded-radius nearest-neighbor merges, four data-parallel phases
// at a time, each separated by a hard barrier.
//
// The fan-out/join shape is adapted from eg/rt.go's image-row worker
// pool (sync.WaitGroup + runtime.NumCPU), but restructured: rt.go joins
// once at the very end of a single independent computation, while PLOC
// needs a fresh join after every phase since phase N+1 depends on the
// whole of phase N's output (the NN array, the prefix sum). parallelFor
// is that repeatable barrier.

// parallelFor partitions [0,n) into contiguous chunks, one per
// available processor, and runs fn on each chunk concurrently. It
// returns only once every chunk has finished - a structured barrier,
// not a fire-and-forget fan-out.
func parallelFor(n int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		fn(0, n)
		return
	}
	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}

// defaultSearchRadius is the PLOC nearest-neighbor window half-width
// used when Options doesn't override it; the source's compile-time
// constant.
const defaultSearchRadius = 16

// plocBuild runs the PLOC pipeline over the Morton-sorted triangle
// order perm, returning the root cluster id, the pool that holds every
// cluster created, and simple bookkeeping for BuildStats: the total
// number of mutual-NN merges performed, and the total number of
// nearest-neighbor searches that did not result in one (its candidate
// either fell outside the active set or was not mutual). Assumes
// len(perm) == n > 0; callers handle the n==0 and n==1 cases
// themselves.
func plocBuild(perm []int, boxes []AABB, radius uint32) (root uint32, pool *clusterPool, merges, pruned int) {
	n := len(perm)
	pool = newClusterPool(n)
	for i, t := range perm {
		pool.leaf(uint32(i), boxes[t], uint32(t))
	}
	pool.startAllocAt(uint32(n))

	cIn := make([]uint32, n)
	cOut := make([]uint32, n)
	nn := make([]uint32, n)
	prefix := make([]int, n)
	for i := range cIn {
		cIn[i] = uint32(i)
	}

	length := n
	r := int(radius)
	if r <= 0 {
		r = defaultSearchRadius
	}

	var mergeCount, prunedCount atomic.Int64

	for length > 1 {
		// Phase 1: nearest-neighbor search, bounded radius window.
		parallelFor(length, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				nn[i] = nearestNeighbor(pool, cIn, length, i, r)
			}
		})

		// Phase 2: mutual merge. Only the lower of a mutual pair
		// performs the merge; the mutual-NN rule guarantees slot j is
		// written by at most one i in this phase. Every i that doesn't
		// clear the mutual-NN check is a pruned non-merge: its search
		// found a candidate, but not one that merges back this round.
		parallelFor(length, func(lo, hi int) {
			var merged, pruned int
			for i := lo; i < hi; i++ {
				j := nn[i]
				if int(j) >= length || nn[j] != uint32(i) {
					pruned++
					continue
				}
				if uint32(i) >= j {
					// Upper slot of a mutual pair: its merge is done
					// by slot j, so it is neither merged nor pruned here.
					continue
				}
				a := pool.get(cIn[i])
				b := pool.get(cIn[j])
				box := Merge(a.Box, b.Box)
				id := pool.allocInternal(box, cIn[i], cIn[j])
				cIn[i] = id
				cIn[j] = clusterNone
				merged++
			}
			mergeCount.Add(int64(merged))
			prunedCount.Add(int64(pruned))
		})

		// Phase 3: exclusive prefix sum of "slot is still active".
		newLength := exclusivePrefixSum(cIn, length, prefix)

		// Phase 4: compaction - scatter surviving slots to their
		// prefix-summed position, then swap the in/out roles.
		parallelFor(length, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				if cIn[i] != clusterNone {
					cOut[prefix[i]] = cIn[i]
				}
			}
		})
		cIn, cOut = cOut, cIn
		length = newLength
	}
	return cIn[0], pool, int(mergeCount.Load()), int(prunedCount.Load())
}

// nearestNeighbor scans the window [max(0,i-r), min(length,i+r+1)) for
// the slot j minimizing the surface area of the merged box of i and j,
// breaking ties toward the lower j.
func nearestNeighbor(pool *clusterPool, cIn []uint32, length, i, r int) uint32 {
	lo := i - r
	if lo < 0 {
		lo = 0
	}
	hi := i + r + 1
	if hi > length {
		hi = length
	}
	boxI := pool.get(cIn[i]).Box

	best := clusterNone
	var bestArea float32
	for j := lo; j < hi; j++ {
		if j == i {
			continue
		}
		area := Merge(boxI, pool.get(cIn[j]).Box).SurfaceArea()
		if best == clusterNone || area < bestArea || (area == bestArea && uint32(j) < best) {
			best = uint32(j)
			bestArea = area
		}
	}
	return best
}

// exclusivePrefixSum fills prefix[0:length) with the count of active
// (non-clusterNone) slots before each index, and returns the new
// logical length: the total count of slots that survive into the next
// iteration. The source uses a Hillis-Steele scan; small lengths fall
// back to a plain sequential pass, which is both simpler and faster
// below the point where scan overhead dominates.
func exclusivePrefixSum(cIn []uint32, length int, prefix []int) int {
	const sequentialThreshold = 1024
	if length < sequentialThreshold {
		count := 0
		for i := 0; i < length; i++ {
			prefix[i] = count
			if cIn[i] != clusterNone {
				count++
			}
		}
		return count
	}
	return hillisSteeleScan(cIn, length, prefix)
}

// hillisSteeleScan computes the same exclusive prefix sum as
// exclusivePrefixSum's sequential path, using a parallel inclusive scan
// followed by a shift - the source's scan shape, generalized to run
// each doubling step as a parallelFor pass.
func hillisSteeleScan(cIn []uint32, length int, prefix []int) int {
	inclusive := make([]int, length)
	parallelFor(length, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			if cIn[i] != clusterNone {
				inclusive[i] = 1
			}
		}
	})
	tmp := make([]int, length)
	for offset := 1; offset < length; offset *= 2 {
		parallelFor(length, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				if i >= offset {
					tmp[i] = inclusive[i] + inclusive[i-offset]
				} else {
					tmp[i] = inclusive[i]
				}
			}
		})
		inclusive, tmp = tmp, inclusive
	}
	total := 0
	if length > 0 {
		total = inclusive[length-1]
	}
	parallelFor(length, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			if i == 0 {
				prefix[i] = 0
			} else {
				prefix[i] = inclusive[i-1]
			}
		}
	})
	return total
}
