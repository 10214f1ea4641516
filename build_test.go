// Copyright © 2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package bvh

import (
	"slices"
	"testing"

	"github.com/gazed/rtbvh/math/lin"
)

func tri(p0, p1, p2 lin.V3) Triangle { return Triangle{P0: p0, P1: p1, P2: p2, ModelID: 0} }

func TestBuildEmptyScene(t *testing.T) {
	out, err := Build(nil, Models{})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Errorf("len(out) = %d, want 0", len(out))
	}
}

func TestBuildSingleTriangle(t *testing.T) {
	tris := []Triangle{tri(lin3(0, 0, 0), lin3(1, 0, 0), lin3(0, 1, 0))}
	out, err := Build(tris, Models{0: identity()})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	n := out[0]
	if n.TriangleID != 0 || n.LeftIndex != 0 || n.RightIndex != 0 {
		t.Errorf("single-leaf node wrong shape: %+v", n)
	}
	if n.BoxMin != [3]float32{0, 0, 0} || n.BoxMax != [3]float32{1, 1, 0} {
		t.Errorf("box = min %v max %v, want min (0,0,0) max (1,1,0)", n.BoxMin, n.BoxMax)
	}
}

func TestBuildTwoDistantTriangles(t *testing.T) {
	tris := []Triangle{
		tri(lin3(0, 0, 0), lin3(1, 0, 0), lin3(0, 1, 0)),
		tri(lin3(100, 100, 100), lin3(101, 100, 100), lin3(100, 101, 100)),
	}
	out, err := Build(tris, Models{0: identity()})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 {
		t.Fatalf("len(out) = %d, want 3", len(out))
	}
	root := out[0]
	if root.BoxMin != [3]float32{0, 0, 0} || root.BoxMax != [3]float32{101, 101, 101} {
		t.Errorf("root box = min %v max %v, want min (0,0,0) max (101,101,101)", root.BoxMin, root.BoxMax)
	}
	left := out[root.LeftIndex]
	right := out[root.RightIndex]
	isLeaf := func(n GpuNode) bool { return n.LeftIndex == gpuSentinel && n.RightIndex == gpuSentinel }
	if !isLeaf(left) || !isLeaf(right) {
		t.Error("both children of the two-triangle root should be leaves")
	}
}

// unitCubeTriangles returns the 12 triangles (2 per face) of the
// [-1,1]^3 cube, mirroring the source's primitiveCube geometry.
func unitCubeTriangles() []Triangle {
	v := func(x, y, z float64) lin.V3 { return lin.V3{X: x, Y: y, Z: z} }
	corners := [8]lin.V3{
		v(-1, -1, -1), v(1, -1, -1), v(1, 1, -1), v(-1, 1, -1),
		v(-1, -1, 1), v(1, -1, 1), v(1, 1, 1), v(-1, 1, 1),
	}
	faces := [6][4]int{
		{0, 1, 2, 3}, // back  (-z)
		{4, 5, 6, 7}, // front (+z)
		{0, 1, 5, 4}, // bottom
		{3, 2, 6, 7}, // top
		{0, 3, 7, 4}, // left
		{1, 2, 6, 5}, // right
	}
	tris := make([]Triangle, 0, 12)
	for _, f := range faces {
		tris = append(tris, tri(corners[f[0]], corners[f[1]], corners[f[2]]))
		tris = append(tris, tri(corners[f[0]], corners[f[2]], corners[f[3]]))
	}
	return tris
}

func TestBuildUnitCube(t *testing.T) {
	tris := unitCubeTriangles()
	out, stats, err := BuildWithStats(tris, Models{0: identity()})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 23 {
		t.Fatalf("len(out) = %d, want 23 (2*12-1)", len(out))
	}
	if stats.Triangles != 12 || stats.Clusters != 23 {
		t.Errorf("stats = %+v, want Triangles=12 Clusters=23", stats)
	}
	root := out[0]
	if root.BoxMin != [3]float32{-1, -1, -1} || root.BoxMax != [3]float32{1, 1, 1} {
		t.Errorf("root box = min %v max %v, want min (-1,-1,-1) max (1,1,1)", root.BoxMin, root.BoxMax)
	}
	seen := make(map[uint32]bool)
	for _, n := range out {
		if n.LeftIndex == gpuSentinel && n.RightIndex == gpuSentinel {
			if n.TriangleID >= 12 {
				t.Errorf("leaf triangle id %d out of range [0,12)", n.TriangleID)
			}
			seen[n.TriangleID] = true
		}
	}
	if len(seen) != 12 {
		t.Errorf("saw %d distinct leaf triangles, want 12", len(seen))
	}
}

func TestBuildDegenerateSceneIdenticalTriangles(t *testing.T) {
	one := tri(lin3(2, 2, 2), lin3(2, 2, 2), lin3(2, 2, 2))
	tris := make([]Triangle, 8)
	for i := range tris {
		tris[i] = one
	}
	out, stats, err := BuildWithStats(tris, Models{0: identity()})
	if err != nil {
		t.Fatal(err)
	}
	if !stats.Degenerate {
		t.Error("expected Degenerate=true for a zero-extent scene")
	}
	if len(out) != 15 {
		t.Fatalf("len(out) = %d, want 15 (2*8-1)", len(out))
	}
	for _, n := range out {
		if n.BoxMin != [3]float32{2, 2, 2} || n.BoxMax != [3]float32{2, 2, 2} {
			t.Errorf("every box in a fully-degenerate scene should be the single point, got min %v max %v",
				n.BoxMin, n.BoxMax)
		}
	}
}

func TestBuildDeterministicForFixedOrder(t *testing.T) {
	tris := unitCubeTriangles()
	a, err := Build(tris, Models{0: identity()})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Build(tris, Models{0: identity()})
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != len(b) {
		t.Fatalf("len mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("node %d differs between runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

// leafBoxSet extracts the multiset of leaf boxes from a built buffer,
// sorted so two buffers built from differently-ordered input can be
// compared regardless of tree shape.
func leafBoxSet(out GpuNodeBuffer) [][2][3]float32 {
	boxes := make([][2][3]float32, 0, len(out))
	for _, n := range out {
		if n.LeftIndex == gpuSentinel && n.RightIndex == gpuSentinel {
			boxes = append(boxes, [2][3]float32{n.BoxMin, n.BoxMax})
		}
	}
	slices.SortFunc(boxes, func(a, b [2][3]float32) int {
		for k := 0; k < 2; k++ {
			for d := 0; d < 3; d++ {
				if a[k][d] != b[k][d] {
					if a[k][d] < b[k][d] {
						return -1
					}
					return 1
				}
			}
		}
		return 0
	})
	return boxes
}

func TestBuildLeafBoxesInvariantUnderTriangleShuffle(t *testing.T) {
	tris := unitCubeTriangles()
	original, err := Build(tris, Models{0: identity()})
	if err != nil {
		t.Fatal(err)
	}

	shuffled := make([]Triangle, len(tris))
	// A fixed, deliberately non-sorted reordering: reverse the list
	// then rotate it, so no triangle keeps its original position.
	for i, tr := range tris {
		shuffled[len(tris)-1-i] = tr
	}
	rotate := len(shuffled) / 3
	shuffled = append(shuffled[rotate:], shuffled[:rotate]...)

	rebuilt, err := Build(shuffled, Models{0: identity()})
	if err != nil {
		t.Fatal(err)
	}

	wantSet := leafBoxSet(original)
	gotSet := leafBoxSet(rebuilt)
	if len(gotSet) != len(wantSet) {
		t.Fatalf("leaf box count = %d, want %d", len(gotSet), len(wantSet))
	}
	for i := range wantSet {
		if gotSet[i] != wantSet[i] {
			t.Errorf("leaf box set differs at sorted position %d: got %v, want %v", i, gotSet[i], wantSet[i])
		}
	}
}

func TestBuildInputTooLarge(t *testing.T) {
	tris := make([]Triangle, 5)
	_, err := Build(tris, Models{0: identity()}, WithMaxTriangles(4))
	if err == nil {
		t.Fatal("expected ErrInputTooLarge")
	}
	if _, ok := err.(*ErrInputTooLarge); !ok {
		t.Errorf("err = %T, want *ErrInputTooLarge", err)
	}
}
