// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "github.com/vex3d/vex/math/lin"

// Mesh is a static triangle soup used for level geometry: large, immobile,
// never placed on a dynamic Body. Per-triangle queries are accelerated by
// a static aabbTree built once at NewMesh time and never mutated, reusing
// the broad-phase tree type instead of a second bespoke structure.
type Mesh struct {
	Vertices []lin.V3
	Indices  []int32 // triples of indices into Vertices.
	tree     *aabbTree
}

// NewMesh builds an immutable static mesh and its triangle query tree.
func NewMesh(vertices []lin.V3, indices []int32) (*Mesh, error) {
	if len(indices)%3 != 0 || len(indices) == 0 {
		return nil, wrapf(ErrInvalidShape, "mesh indices must be a non-empty multiple of 3")
	}
	m := &Mesh{Vertices: vertices, Indices: indices, tree: newAABBTree()}
	for tri := 0; tri < len(indices)/3; tri++ {
		a, b, c := m.Triangle(tri)
		box := aabbFromPoint(&a).Union(aabbFromPoint(&b)).Union(aabbFromPoint(&c))
		m.tree.CreateProxy(box, int32(tri))
	}
	return m, nil
}

// Triangle returns the three local-space vertices of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c lin.V3) {
	base := i * 3
	return m.Vertices[m.Indices[base]], m.Vertices[m.Indices[base+1]], m.Vertices[m.Indices[base+2]]
}

// QueryAABB visits every triangle index whose bounding box overlaps box.
func (m *Mesh) QueryAABB(box AABB, fn func(triIndex int32)) {
	m.tree.Query(box, func(data any) bool {
		fn(data.(int32))
		return true
	})
}
