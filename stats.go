// Copyright © 2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package bvh

// stats.go adds the build-time bookkeeping srcCommon/scene/geometry/
// bvh.cpp keeps for its own logging, so a caller (or this package's own
// slog output) can see how much work a build did without re-walking
// the output tree.

// BuildStats summarizes one Build call.
type BuildStats struct {
	Triangles  int  // input triangle count.
	Clusters   int  // total clusters allocated (leaves + internal).
	Internal   int  // internal (merged) clusters; equals Merges.
	Merges     int  // total mutual-NN merges performed across every PLOC phase.
	Pruned     int  // nearest-neighbor searches that did not result in a merge.
	Degenerate bool // true if the scene collapsed to one Morton cell.
}
