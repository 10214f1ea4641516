// Copyright © 2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package bvh builds a flat, GPU-traversable Bounding Volume Hierarchy
// over a triangle soup using PLOC (Parallel Locally-Ordered Clustering):
// Morton-sort the triangles' world-space centroids, then agglomerate
// the sorted leaves into a full binary tree via bounded-radius
// nearest-neighbor merges, then linearize the tree into a contiguous
// array a GPU traversal shader can walk without a stack.
//
// This package is the CPU-side builder only. Window/context setup,
// shader and pipeline management, storage-buffer upload, mesh/material
// loading, and the traversal shader itself are out of scope - they are
// external collaborators that consume a GpuNodeBuffer.
package bvh

// build.go ties the five pipeline components together: AABB algebra
// (aabb.go) and the Morton encoder (morton.go) compute keys, the key
// sorter (sort.go) orders them, PLOC (ploc.go) builds the tree, and the
// linearizer (linearize.go) emits the GPU buffer. Validate-then-compute
// mirrors the shape of the NewEngine constructors it is grounded on.

// Build constructs a GpuNodeBuffer from triangles and their model
// transforms. len(result) is 2*len(triangles)-1 when there is at least
// one triangle, 0 when there are none.
func Build(triangles []Triangle, models Models, opts ...Option) (GpuNodeBuffer, error) {
	out, _, err := buildWithStats(triangles, models, opts)
	return out, err
}

// BuildWithStats is Build plus BuildStats, for callers that want build
// bookkeeping (triangle/cluster counts, whether the scene was
// degenerate) without re-deriving it from the output tree.
func BuildWithStats(triangles []Triangle, models Models, opts ...Option) (GpuNodeBuffer, BuildStats, error) {
	return buildWithStats(triangles, models, opts)
}

func buildWithStats(triangles []Triangle, models Models, opts []Option) (GpuNodeBuffer, BuildStats, error) {
	o := resolve(opts)
	n := len(triangles)
	stats := BuildStats{Triangles: n}

	if n > o.maxTriangles {
		return nil, stats, &ErrInputTooLarge{N: n, Max: o.maxTriangles}
	}
	if n == 0 {
		return GpuNodeBuffer{}, stats, nil
	}

	boxes := make([]AABB, n)
	for i, t := range triangles {
		boxes[i] = FromTriangle(t, models[t.ModelID])
	}

	if n == 1 {
		stats.Clusters = 1
		return GpuNodeBuffer{{
			BoxMin:     [3]float32{boxes[0].Min.x, boxes[0].Min.y, boxes[0].Min.z},
			BoxMax:     [3]float32{boxes[0].Max.x, boxes[0].Max.y, boxes[0].Max.z},
			TriangleID: 0,
			LeftIndex:  gpuSentinel,
			RightIndex: gpuSentinel,
		}}, stats, nil
	}

	keys, degenerate := mortonKeys(triangles, models)
	stats.Degenerate = degenerate
	if degenerate {
		o.logger.Warn("bvh: degenerate scene, all triangles share one Morton cell", "triangles", n)
	}
	perm := sortedIndices(keys)

	root, pool, merges, pruned := plocBuild(perm, boxes, o.searchRadius)
	stats.Clusters = int(pool.next.Load())
	stats.Internal = stats.Clusters - n
	stats.Merges = merges
	stats.Pruned = pruned

	out, err := linearize(pool, root, 2*n-1)
	if err != nil {
		return nil, stats, err
	}
	o.logger.Info("bvh: build complete",
		"triangles", n, "clusters", stats.Clusters, "merges", merges, "pruned", pruned, "degenerate", degenerate)
	return out, stats, nil
}
