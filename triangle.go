// Copyright © 2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package bvh

import "github.com/gazed/rtbvh/math/lin"

// triangle.go defines the builder's input data model: a stream of
// triangles addressed by a stable index, and a model-matrix table the
// builder reads but never mutates.

// Triangle is one input primitive: three homogeneous positions in model
// space plus the id of the model transform that places it in the
// scene. Triangles are immutable for the duration of one Build call.
type Triangle struct {
	P0, P1, P2 lin.V3
	ModelID    int
}

// centroid returns the model-space average of the triangle's vertices,
// matching the source's (P0+P1+P2)/3 before the model transform.
func (t Triangle) centroid() lin.V3 {
	return lin.V3{
		X: (t.P0.X + t.P1.X + t.P2.X) / 3,
		Y: (t.P0.Y + t.P1.Y + t.P2.Y) / 3,
		Z: (t.P0.Z + t.P1.Z + t.P2.Z) / 3,
	}
}

// Models maps a triangle's ModelID to the 4x4 matrix that places it in
// world space. The builder only reads this table.
type Models map[int]*lin.M4
