// Copyright © 2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package bvh

import "fmt"

// errors.go replaces the source raytracer's exit(EXIT_FAILURE) control flow
// with typed results a caller can inspect and decide what to do with.

// ErrInputTooLarge is returned when the triangle count exceeds the
// configured MaxTriangles.
type ErrInputTooLarge struct {
	N   int // triangle count submitted.
	Max int // configured limit.
}

func (e *ErrInputTooLarge) Error() string {
	return fmt.Sprintf("bvh: %d triangles exceeds max of %d", e.N, e.Max)
}

// A degenerate scene (a scene box of zero extent: every vertex of every
// triangle at one point) is not an
// error: Build recovers locally by collapsing every Morton key to 0
// and proceeding. BuildStats.Degenerate and a slog warning surface
// this to a caller that cares; there is no typed error for it since
// Build does not fail.

// ErrTreeInvariantViolated is raised by the linearizer when it walks a
// cluster that is neither a well-formed leaf (triangle set, no children)
// nor a well-formed internal node (both children set, no triangle).
// This should be unreachable given a correct PLOC run; seeing it means
// a bug upstream, not a bad input.
type ErrTreeInvariantViolated struct {
	ClusterID uint32
	Reason    string
}

func (e *ErrTreeInvariantViolated) Error() string {
	return fmt.Sprintf("bvh: tree invariant violated at cluster %d: %s", e.ClusterID, e.Reason)
}
