// Copyright © 2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package bvh

import "github.com/gazed/rtbvh/math/lin"

// morton.go maps triangle centroids to 30-bit Morton (Z-order) keys so
// that spatially nearby triangles land at nearby sorted positions -
// PLOC's locality assumption depends on this.

// sceneBox returns the merge of every triangle's world-space AABB.
func sceneBox(tris []Triangle, models Models) AABB {
	box := emptyAABB()
	for _, t := range tris {
		m := models[t.ModelID]
		box = Merge(box, FromTriangle(t, m))
	}
	return box
}

// circumscribingCube expands the two shorter axes of box so all three
// extents equal the longest, giving Morton quantization uniform
// resolution in every direction. Ties are broken by axis order X, Y, Z:
// a later axis replaces the current longest only when it is strictly
// longer, so among equal extents the first of X, Y, Z is kept.
func circumscribingCube(box AABB) AABB {
	size := box.Size()
	dx, dy, dz := size.x, size.y, size.z

	cx, cy, cz := (box.Min.x+box.Max.x)/2, (box.Min.y+box.Max.y)/2, (box.Min.z+box.Max.z)/2

	maxDist := dx
	if dy > maxDist {
		maxDist = dy
	}
	if dz > maxDist {
		maxDist = dz
	}

	half := maxDist / 2
	return AABB{
		Min: vec3{cx - half, cy - half, cz - half},
		Max: vec3{cx + half, cy + half, cz + half},
	}
}

// mortonKeys computes one 30-bit key per triangle, in input order,
// normalizing each triangle's world-space centroid against the scene's
// circumscribing cube. A zero-extent cube (every vertex of every
// triangle at one point) is a degenerate scene: every key collapses to 0, which is
// a valid (if unsorted) input to the key sorter and PLOC.
func mortonKeys(tris []Triangle, models Models) ([]uint32, bool) {
	keys := make([]uint32, len(tris))
	if len(tris) == 0 {
		return keys, false
	}
	box := sceneBox(tris, models)
	cube := circumscribingCube(box)
	extent := cube.Size()
	degenerate := extent.x == 0 && extent.y == 0 && extent.z == 0

	for i, t := range tris {
		if degenerate {
			keys[i] = 0
			continue
		}
		m := models[t.ModelID]
		c := centroidWorld(t, m)
		keys[i] = encodeMorton(normalize(c, cube))
	}
	return keys, degenerate
}

// centroidWorld is model·centroid projected to R3, dropping w after the
// multiply, exactly as the source computes a triangle's world centroid.
func centroidWorld(t Triangle, model *lin.M4) vec3 {
	c := t.centroid()
	hp := &lin.V4{X: c.X, Y: c.Y, Z: c.Z, W: 1}
	w := lin.NewV4().MultMv(model, hp)
	return toVec3(w)
}

// normalize maps c into [0,1]^3 relative to cube. A zero-extent axis
// (only possible here if the caller already special-cased the fully
// degenerate scene) would divide by zero; callers must not reach this
// with a zero-extent cube.
func normalize(c vec3, cube AABB) vec3 {
	ext := cube.Size()
	return vec3{
		(c.x - cube.Min.x) / ext.x,
		(c.y - cube.Min.y) / ext.y,
		(c.z - cube.Min.z) / ext.z,
	}
}

// encodeMorton quantizes a normalized [0,1]^3 point into 10 bits per
// axis and bit-interleaves the three coordinates into a 30-bit key.
func encodeMorton(p vec3) uint32 {
	x := quantize10(p.x)
	y := quantize10(p.y)
	z := quantize10(p.z)
	return (expandBits10(x) << 2) | (expandBits10(y) << 1) | expandBits10(z)
}

// quantize10 maps a [0,1] value to an integer in [0,1023].
func quantize10(v float32) uint32 {
	q := int32(v * 1024)
	if q < 0 {
		q = 0
	}
	if q > 1023 {
		q = 1023
	}
	return uint32(q)
}

// expandBits10 spreads the low 10 bits of x so there are two zero bits
// between each original bit, the standard three-way interleave used to
// build a 30-bit Morton code from three 10-bit coordinates.
func expandBits10(x uint32) uint32 {
	x &= 0x000003ff
	x = (x | (x << 16)) & 0xff0000ff
	x = (x | (x << 8)) & 0x0300f00f
	x = (x | (x << 4)) & 0x030c30c3
	x = (x | (x << 2)) & 0x09249249
	return x
}
