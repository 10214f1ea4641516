// Copyright © 2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package bvh

// linearize.go walks the implicit cluster tree PLOC built and emits it
// as a dense, child-indexed GpuNode array: index 0 is the root, and
// every internal node's children sit at strictly greater indices, so a
// GPU traversal shader can walk the array stacklessly.

// gpuSentinel is the GPU-side "no child" value. The convention is
// "child == 0 then leaf"; linearize sets both child indices explicitly
// at construction time rather than relying on GpuNode's zero value.
const gpuSentinel = 0

// GpuNode is the bit-exact GPU node record: a 3-float min, a 3-float
// max each padded to 16 bytes, then the three uint32 fields, then tail
// padding to a 16-byte stride. The padding fields keep the struct's Go
// layout identical to the GLSL storage-buffer layout the shader side
// expects - see the layout assertion in linearize_test.go, which uses
// unsafe.Sizeof/Offsetof to verify it instead of trusting the field
// comments.
type GpuNode struct {
	BoxMin     [3]float32
	_          float32 // pad to vec4 alignment
	BoxMax     [3]float32
	_          float32 // pad to vec4 alignment
	TriangleID uint32
	LeftIndex  uint32
	RightIndex uint32
	_          float32 // tail pad to 16-byte stride
}

// Pointer exposes the node's first float as a raw pointer, for handing
// a contiguous []GpuNode to a storage-buffer upload call without a
// copy - the same purpose render/lin.go's m4.Pointer()/m3.Pointer()
// serve for their GPU-facing matrix types.
func (n *GpuNode) Pointer() *float32 { return &n.BoxMin[0] }

// GpuNodeBuffer is the builder's output: a dense sequence where V[0] is
// the root and a node is a leaf iff both child indices equal
// gpuSentinel.
type GpuNodeBuffer []GpuNode

// linearizeFrontier is one entry in the depth-first work list: the
// cluster to visit, and where in V to patch once it is placed.
type linearizeFrontier struct {
	clusterID  uint32
	parentIdx  int // index into V, or -1 for the root.
	isRightKid bool
}

// linearize depth-first walks the tree rooted at root, appending one
// GpuNode per visited cluster to V and patching each parent's child
// index once its child has been placed - the only way to guarantee
// child indices are always strictly greater than their parent's (I4).
func linearize(pool *clusterPool, root uint32, n int) (GpuNodeBuffer, error) {
	v := make(GpuNodeBuffer, 0, n)
	stack := []linearizeFrontier{{clusterID: root, parentIdx: -1}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		c := pool.get(top.clusterID)
		pos := len(v)
		if top.parentIdx >= 0 {
			if top.isRightKid {
				v[top.parentIdx].RightIndex = uint32(pos)
			} else {
				v[top.parentIdx].LeftIndex = uint32(pos)
			}
		}

		switch {
		case c.isLeaf() && c.Triangle != clusterNone:
			v = append(v, GpuNode{
				BoxMin:     [3]float32{c.Box.Min.x, c.Box.Min.y, c.Box.Min.z},
				BoxMax:     [3]float32{c.Box.Max.x, c.Box.Max.y, c.Box.Max.z},
				TriangleID: c.Triangle,
				LeftIndex:  gpuSentinel,
				RightIndex: gpuSentinel,
			})
		case !c.isLeaf() && c.Triangle == clusterNone:
			v = append(v, GpuNode{
				BoxMin: [3]float32{c.Box.Min.x, c.Box.Min.y, c.Box.Min.z},
				BoxMax: [3]float32{c.Box.Max.x, c.Box.Max.y, c.Box.Max.z},
			})
			// Push right then left so left is popped (and thus
			// visited, and placed at a lower index) first.
			stack = append(stack,
				linearizeFrontier{clusterID: c.Right, parentIdx: pos, isRightKid: true},
				linearizeFrontier{clusterID: c.Left, parentIdx: pos, isRightKid: false},
			)
		default:
			return nil, &ErrTreeInvariantViolated{
				ClusterID: top.clusterID,
				Reason:    "cluster is neither a well-formed leaf nor a well-formed internal node",
			}
		}
	}
	return v, nil
}
