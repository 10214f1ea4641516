// Copyright © 2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package bvh

import (
	"math"

	"github.com/gazed/rtbvh/math/lin"
)

// aabb.go is the builder's bounding box algebra. Unlike math/lin, which
// is float64 throughout for precise caller-facing geometry, AABB is
// float32 end to end: it is merged thousands of times per build and its
// fields are sent to the GPU as-is, so doing the algebra in the same
// width it is stored avoids a double-rounding discrepancy between what
// PLOC computes and what the linearizer emits.

// vec3 is a float32 3-tuple, private to this package. It plays the same
// role render/lin.go's unexported v3 plays for the renderer: a
// GPU-width holder fed from precise float64 math at its boundary.
type vec3 struct {
	x, y, z float32
}

// AABB is an axis-aligned bounding box: the smallest box with sides
// parallel to the coordinate axes containing some set of points.
// The empty AABB (see emptyAABB) is the identity element for Merge.
type AABB struct {
	Min, Max vec3
}

// emptyAABB returns the empty-box sentinel: min=+inf, max=-inf. Merging
// it with any populated box yields that populated box.
func emptyAABB() AABB {
	return AABB{
		Min: vec3{math32Inf(1), math32Inf(1), math32Inf(1)},
		Max: vec3{math32Inf(-1), math32Inf(-1), math32Inf(-1)},
	}
}

func math32Inf(sign int) float32 { return float32(math.Inf(sign)) }

// FromTriangle builds the AABB of a triangle after it has been placed in
// world space by the given model matrix. Vertices are transformed at
// math/lin's native float64 precision, then the resulting box corners
// are cast once to float32; every subsequent Merge stays in float32.
func FromTriangle(tri Triangle, model *lin.M4) AABB {
	p0 := transformPoint(tri.P0, model)
	p1 := transformPoint(tri.P1, model)
	p2 := transformPoint(tri.P2, model)

	box := emptyAABB()
	for _, p := range [3]vec3{toVec3(p0), toVec3(p1), toVec3(p2)} {
		box.Min = vec3{fmin(box.Min.x, p.x), fmin(box.Min.y, p.y), fmin(box.Min.z, p.z)}
		box.Max = vec3{fmax(box.Max.x, p.x), fmax(box.Max.y, p.y), fmax(box.Max.z, p.z)}
	}
	return box
}

// transformPoint applies model to the homogeneous point p (w=1) and
// drops w, as the source does for triangle vertex transforms.
func transformPoint(p lin.V3, model *lin.M4) *lin.V4 {
	hp := &lin.V4{X: p.X, Y: p.Y, Z: p.Z, W: 1}
	return lin.NewV4().MultMv(model, hp)
}

func toVec3(v *lin.V4) vec3 {
	return vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

// Merge returns the smallest AABB containing both a and b. The empty
// AABB is the identity: Merge(a, empty) == a.
func Merge(a, b AABB) AABB {
	return AABB{
		Min: vec3{fmin(a.Min.x, b.Min.x), fmin(a.Min.y, b.Min.y), fmin(a.Min.z, b.Min.z)},
		Max: vec3{fmax(a.Max.x, b.Max.x), fmax(a.Max.y, b.Max.y), fmax(a.Max.z, b.Max.z)},
	}
}

// SurfaceArea returns 2*(dx*dy + dy*dz + dz*dx), the cluster-distance
// metric PLOC's nearest-neighbor search minimizes. Returns 0 for an
// empty or degenerate (inverted) box.
func (a AABB) SurfaceArea() float32 {
	dx := a.Max.x - a.Min.x
	dy := a.Max.y - a.Min.y
	dz := a.Max.z - a.Min.z
	if dx < 0 || dy < 0 || dz < 0 {
		return 0
	}
	return 2 * (dx*dy + dy*dz + dz*dx)
}

// Diagonal returns the Euclidean distance between Min and Max.
func (a AABB) Diagonal() float32 {
	dx := a.Max.x - a.Min.x
	dy := a.Max.y - a.Min.y
	dz := a.Max.z - a.Min.z
	return float32(math.Sqrt(float64(dx*dx + dy*dy + dz*dz)))
}

// Size returns the per-axis extents (Max - Min).
func (a AABB) Size() vec3 {
	return vec3{a.Max.x - a.Min.x, a.Max.y - a.Min.y, a.Max.z - a.Min.z}
}

// Overlaps returns true if a and b intersect on every axis. Touching
// along a single point, edge, or face does not count as overlapping.
// Not required by any PLOC operation; carried because the AABB type
// this is grounded on (physics.Abox) always has it, and it is useful
// for tests that check cluster disjointness.
func (a AABB) Overlaps(b AABB) bool {
	return a.Max.x > b.Min.x && a.Min.x < b.Max.x &&
		a.Max.y > b.Min.y && a.Min.y < b.Max.y &&
		a.Max.z > b.Min.z && a.Min.z < b.Max.z
}

func fmin(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func fmax(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
