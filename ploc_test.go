// Copyright © 2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package bvh

import (
	"sync"
	"testing"
)

func unitBox(x float32) AABB {
	return AABB{Min: vec3{x, x, x}, Max: vec3{x + 1, x + 1, x + 1}}
}

func TestPlocBuildSingleMerge(t *testing.T) {
	boxes := []AABB{unitBox(0), unitBox(100)}
	perm := []int{0, 1}
	root, pool, merges, _ := plocBuild(perm, boxes, defaultSearchRadius)
	rootCluster := pool.get(root)
	if rootCluster.isLeaf() {
		t.Fatal("two-leaf build should produce an internal root")
	}
	if pool.next.Load() != 3 {
		t.Errorf("expected 3 total clusters (2 leaves + 1 internal), got %d", pool.next.Load())
	}
	if merges != 1 {
		t.Errorf("merges = %d, want 1", merges)
	}
}

func TestPlocBuildClusterCountIsFull(t *testing.T) {
	n := 37
	boxes := make([]AABB, n)
	perm := make([]int, n)
	for i := range boxes {
		boxes[i] = unitBox(float32(i) * 2)
		perm[i] = i
	}
	_, pool, merges, _ := plocBuild(perm, boxes, defaultSearchRadius)
	want := uint32(2*n - 1)
	if pool.next.Load() != want {
		t.Errorf("total clusters = %d, want %d (2N-1)", pool.next.Load(), want)
	}
	if merges != n-1 {
		t.Errorf("merges = %d, want %d (n-1, a full binary tree over n leaves)", merges, n-1)
	}
}

func TestPlocMergesMatchInternalClusterCount(t *testing.T) {
	n := 64
	boxes := make([]AABB, n)
	perm := make([]int, n)
	for i := range boxes {
		boxes[i] = unitBox(float32(i))
		perm[i] = i
	}
	_, pool, merges, pruned := plocBuild(perm, boxes, defaultSearchRadius)
	internal := int(pool.next.Load()) - n
	if merges != internal {
		t.Errorf("merges = %d, want %d (one merge per internal cluster)", merges, internal)
	}
	if pruned < 0 {
		t.Errorf("pruned = %d, want >= 0", pruned)
	}
}

func TestPlocEveryLeafTriangleAppearsOnce(t *testing.T) {
	n := 50
	boxes := make([]AABB, n)
	perm := make([]int, n)
	for i := range boxes {
		boxes[i] = unitBox(float32(i))
		perm[i] = i
	}
	root, pool, _, _ := plocBuild(perm, boxes, 4)

	seen := make(map[uint32]bool)
	var walk func(id uint32)
	walk = func(id uint32) {
		c := pool.get(id)
		if c.isLeaf() {
			if seen[c.Triangle] {
				t.Fatalf("triangle %d appears in more than one leaf", c.Triangle)
			}
			seen[c.Triangle] = true
			return
		}
		walk(c.Left)
		walk(c.Right)
	}
	walk(root)
	if len(seen) != n {
		t.Errorf("saw %d distinct leaf triangles, want %d", len(seen), n)
	}
}

func TestPlocInternalBoxIsUnionOfChildren(t *testing.T) {
	n := 20
	boxes := make([]AABB, n)
	perm := make([]int, n)
	for i := range boxes {
		boxes[i] = unitBox(float32(i))
		perm[i] = i
	}
	root, pool, _, _ := plocBuild(perm, boxes, defaultSearchRadius)

	var check func(id uint32)
	check = func(id uint32) {
		c := pool.get(id)
		if c.isLeaf() {
			return
		}
		left := pool.get(c.Left)
		right := pool.get(c.Right)
		want := Merge(left.Box, right.Box)
		if c.Box != want {
			t.Errorf("cluster %d box %+v != union of children %+v", id, c.Box, want)
		}
		check(c.Left)
		check(c.Right)
	}
	check(root)
}

func TestParallelForCoversAllIndices(t *testing.T) {
	n := 1000
	seen := make([]int, n)
	var mu sync.Mutex
	parallelFor(n, func(lo, hi int) {
		mu.Lock()
		defer mu.Unlock()
		for i := lo; i < hi; i++ {
			seen[i]++
		}
	})
	for i, v := range seen {
		if v != 1 {
			t.Fatalf("index %d visited %d times, want exactly 1", i, v)
		}
	}
}

func TestExclusivePrefixSumSequential(t *testing.T) {
	cIn := []uint32{0, clusterNone, 1, clusterNone, clusterNone, 2}
	prefix := make([]int, len(cIn))
	got := exclusivePrefixSum(cIn, len(cIn), prefix)
	wantPrefix := []int{0, 1, 1, 2, 2, 2}
	for i, w := range wantPrefix {
		if prefix[i] != w {
			t.Errorf("prefix[%d] = %d, want %d", i, prefix[i], w)
		}
	}
	if got != 3 {
		t.Errorf("new length = %d, want 3", got)
	}
}

func TestHillisSteeleMatchesSequential(t *testing.T) {
	n := 2000 // above sequentialThreshold, forces the scan path.
	cIn := make([]uint32, n)
	for i := range cIn {
		if i%3 == 0 {
			cIn[i] = clusterNone
		} else {
			cIn[i] = uint32(i)
		}
	}
	got := make([]int, n)
	gotLen := exclusivePrefixSum(cIn, n, got)

	want := make([]int, n)
	count := 0
	for i := 0; i < n; i++ {
		want[i] = count
		if cIn[i] != clusterNone {
			count++
		}
	}
	if gotLen != count {
		t.Fatalf("scan length = %d, want %d", gotLen, count)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("prefix[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
