// Copyright © 2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package bvh

import (
	"testing"
	"unsafe"
)

func TestGpuNodeLayout(t *testing.T) {
	var n GpuNode
	if got := unsafe.Sizeof(n); got != 48 {
		t.Errorf("sizeof(GpuNode) = %d, want 48 (3 vec4-aligned 16-byte groups)", got)
	}
	if got := unsafe.Offsetof(n.BoxMax); got != 16 {
		t.Errorf("offsetof(BoxMax) = %d, want 16", got)
	}
	if got := unsafe.Offsetof(n.TriangleID); got != 32 {
		t.Errorf("offsetof(TriangleID) = %d, want 32", got)
	}
	if got := unsafe.Offsetof(n.LeftIndex); got != 36 {
		t.Errorf("offsetof(LeftIndex) = %d, want 36", got)
	}
	if got := unsafe.Offsetof(n.RightIndex); got != 40 {
		t.Errorf("offsetof(RightIndex) = %d, want 40", got)
	}
}

func TestLinearizeSingleLeaf(t *testing.T) {
	pool := newClusterPool(1)
	pool.leaf(0, AABB{Min: vec3{0, 0, 0}, Max: vec3{1, 1, 0}}, 0)
	out, err := linearize(pool, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if out[0].LeftIndex != 0 || out[0].RightIndex != 0 {
		t.Errorf("single leaf should have both child indices 0, got left=%d right=%d",
			out[0].LeftIndex, out[0].RightIndex)
	}
	if out[0].TriangleID != 0 {
		t.Errorf("TriangleID = %d, want 0", out[0].TriangleID)
	}
}

func TestLinearizeChildIndicesExceedParent(t *testing.T) {
	n := 30
	boxes := make([]AABB, n)
	perm := make([]int, n)
	for i := range boxes {
		boxes[i] = unitBox(float32(i))
		perm[i] = i
	}
	root, pool, _, _ := plocBuild(perm, boxes, defaultSearchRadius)
	out, err := linearize(pool, root, 2*n-1)
	if err != nil {
		t.Fatal(err)
	}
	for i, node := range out {
		isLeaf := node.LeftIndex == gpuSentinel && node.RightIndex == gpuSentinel
		if isLeaf {
			continue
		}
		if int(node.LeftIndex) <= i || int(node.RightIndex) <= i {
			t.Errorf("node %d has child indices (%d,%d) not both > parent index",
				i, node.LeftIndex, node.RightIndex)
		}
	}
}

func TestLinearizeLeafPredicateMatchesTriangleSet(t *testing.T) {
	n := 12
	boxes := make([]AABB, n)
	perm := make([]int, n)
	for i := range boxes {
		boxes[i] = unitBox(float32(i))
		perm[i] = i
	}
	root, pool, _, _ := plocBuild(perm, boxes, defaultSearchRadius)
	out, err := linearize(pool, root, 2*n-1)
	if err != nil {
		t.Fatal(err)
	}
	seenTriangles := make(map[uint32]bool)
	for _, node := range out {
		isLeaf := node.LeftIndex == gpuSentinel && node.RightIndex == gpuSentinel
		if isLeaf {
			if seenTriangles[node.TriangleID] {
				t.Errorf("triangle %d appears in more than one leaf", node.TriangleID)
			}
			seenTriangles[node.TriangleID] = true
		}
	}
	if len(seenTriangles) != n {
		t.Errorf("saw %d leaves, want %d", len(seenTriangles), n)
	}
}

func TestLinearizeRejectsMalformedCluster(t *testing.T) {
	pool := newClusterPool(1)
	// Neither a leaf (triangle unset) nor internal (children unset):
	// malformed on purpose to exercise the assertion.
	pool.clusters[0] = cluster{Triangle: clusterNone, Left: clusterNone, Right: clusterNone}
	_, err := linearize(pool, 0, 1)
	if err == nil {
		t.Fatal("expected ErrTreeInvariantViolated for a malformed cluster")
	}
	if _, ok := err.(*ErrTreeInvariantViolated); !ok {
		t.Errorf("err = %T, want *ErrTreeInvariantViolated", err)
	}
}
