// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"math"

	"github.com/vex3d/vex/math/lin"
)

// Hull is a convex polyhedron stored as a half-edge mesh. This package
// never derives a hull from an unordered point cloud itself: it is the
// consumer of a quickhull-style builder that lives outside this module's
// scope, and only assembles that builder's output (vertices plus wound
// face loops) into the half-edge form the narrow-phase wants. NewHull is
// that assembly step, not a hull algorithm.
type Hull struct {
	Vertices []lin.V3
	Faces    []HullFace
	Edges    []HullEdge

	centroid       lin.V3
	boundingRadius float64

	vertexEdges [][]int32 // one or more outgoing half-edges per vertex, for adjacency queries.
}

// HullFace is one planar face of the hull.
type HullFace struct {
	Edge   int32   // index into Edges of one half-edge bounding this face.
	Normal lin.V3  // outward unit normal, in local space.
}

// HullEdge is one directed half-edge. Twin points at the opposing
// half-edge on the neighbouring face; Next walks around Face in winding
// order.
type HullEdge struct {
	Origin int32 // index into Vertices.
	Twin   int32
	Next   int32
	Face   int32
}

// NewHull builds a half-edge hull from a vertex list and a set of
// counter-clockwise (outward-facing) wound face loops, each loop a list of
// vertex indices. Loops must already describe a closed, convex, manifold
// polyhedron: that invariant is the external hull builder's responsibility,
// not this function's.
func NewHull(vertices []lin.V3, faceLoops [][]int32) (*Hull, error) {
	if len(vertices) < 4 || len(faceLoops) < 4 {
		return nil, wrapf(ErrInvalidShape, "hull needs at least 4 vertices and 4 faces")
	}
	h := &Hull{Vertices: vertices}

	type edgeKey struct{ a, b int32 }
	halfEdgeOf := make(map[edgeKey]int32, len(vertices)*3)

	for fi, loop := range faceLoops {
		if len(loop) < 3 {
			return nil, wrapf(ErrInvalidShape, "hull face %d has fewer than 3 vertices", fi)
		}
		first := int32(len(h.Edges))
		for i := range loop {
			origin := loop[i]
			e := HullEdge{Origin: origin, Face: int32(fi), Twin: -1}
			idx := int32(len(h.Edges))
			h.Edges = append(h.Edges, e)
			halfEdgeOf[edgeKey{loop[i], loop[(i+1)%len(loop)]}] = idx
		}
		for i := range loop {
			h.Edges[int(first)+i].Next = first + int32((i+1)%len(loop))
		}
		a, b, c := vertices[loop[0]], vertices[loop[1]], vertices[loop[2]]
		ab := lin.NewV3().Sub(&b, &a)
		ac := lin.NewV3().Sub(&c, &a)
		normal := lin.NewV3().Cross(ab, ac).Unit()
		h.Faces = append(h.Faces, HullFace{Edge: first, Normal: *normal})
	}
	for key, idx := range halfEdgeOf {
		if twin, ok := halfEdgeOf[edgeKey{key.b, key.a}]; ok {
			h.Edges[idx].Twin = twin
		}
	}

	h.vertexEdges = make([][]int32, len(vertices))
	for i, e := range h.Edges {
		h.vertexEdges[e.Origin] = append(h.vertexEdges[e.Origin], int32(i))
	}

	var sum lin.V3
	for i := range vertices {
		sum.Add(&sum, &vertices[i])
	}
	sum.Scale(&sum, 1.0/float64(len(vertices)))
	h.centroid = sum
	for i := range vertices {
		if d := vertices[i].Dist(&sum); d > h.boundingRadius {
			h.boundingRadius = d
		}
	}
	return h, nil
}

// FaceVertices returns the vertex indices bounding face fi in winding order.
func (h *Hull) FaceVertices(fi int) []int32 {
	out := make([]int32, 0, 4)
	start := h.Faces[fi].Edge
	e := start
	for {
		out = append(out, h.Edges[e].Origin)
		e = h.Edges[e].Next
		if e == start {
			break
		}
	}
	return out
}

// supportVertex returns the index of the hull vertex with the largest dot
// product with dir, in hull-local space. Brute-force: hulls used by a
// real-time solver are small (tens of vertices), so a hill-climb over the
// half-edge adjacency buys little over a direct scan.
func (h *Hull) supportVertex(dir *lin.V3) int32 {
	best := int32(0)
	bestDot := h.Vertices[0].Dot(dir)
	for i := 1; i < len(h.Vertices); i++ {
		if d := h.Vertices[i].Dot(dir); d > bestDot {
			bestDot, best = d, int32(i)
		}
	}
	return best
}

func (h *Hull) worldAABB(t *lin.T) AABB {
	first := t.App(lin.NewV3().Set(&h.Vertices[0]))
	box := aabbFromPoint(first)
	for i := 1; i < len(h.Vertices); i++ {
		p := t.App(lin.NewV3().Set(&h.Vertices[i]))
		box = box.Union(aabbFromPoint(p))
	}
	return box
}

// volume approximates the hull's volume by summing tetrahedra formed from
// the centroid and each face's triangulated fan.
func (h *Hull) volume() float64 {
	vol := 0.0
	for fi := range h.Faces {
		verts := h.FaceVertices(fi)
		a := h.Vertices[verts[0]]
		for i := 1; i+1 < len(verts); i++ {
			b := h.Vertices[verts[i]]
			c := h.Vertices[verts[i+1]]
			ca := lin.NewV3().Sub(&a, &h.centroid)
			cb := lin.NewV3().Sub(&b, &h.centroid)
			cc := lin.NewV3().Sub(&c, &h.centroid)
			cross := lin.NewV3().Cross(cb, cc)
			vol += math.Abs(ca.Dot(cross)) / 6.0
		}
	}
	return vol
}

// inertia estimates the hull's inertia tensor diagonal as that of a solid
// sphere of the hull's bounding radius (0.4*m*r*r on each axis). It is a
// coarse but stable stand-in: it is not scaled by the hull's volume and does
// not compute polyhedral moments, and fixtures have no inertia override.
func (h *Hull) inertia(mass float64, out *lin.V3) *lin.V3 {
	r := h.boundingRadius
	e := 0.4 * mass * r * r
	return out.SetS(e, e, e)
}

// faceNeighbors returns, for each edge bounding face fi in winding order, the
// face on the other side of that edge. Replaces the original's precomputed
// face_to_neighbors array with a live walk across Twin links.
func (h *Hull) faceNeighbors(fi int) []int32 {
	out := make([]int32, 0, 4)
	start := h.Faces[fi].Edge
	e := start
	for {
		twin := h.Edges[e].Twin
		if twin >= 0 {
			out = append(out, h.Edges[twin].Face)
		}
		e = h.Edges[e].Next
		if e == start {
			break
		}
	}
	return out
}

// vertexFaces returns the distinct faces touching vertex v. Replaces the
// original's precomputed vertex_to_faces array.
func (h *Hull) vertexFaces(v int32) []int32 {
	out := make([]int32, 0, 4)
	for _, e := range h.vertexEdges[v] {
		f := h.Edges[e].Face
		dup := false
		for _, seen := range out {
			if seen == f {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, f)
		}
	}
	return out
}

// vertexNeighbors returns the vertices directly connected to v by an edge.
// Replaces the original's precomputed vertex_to_neighbors array.
func (h *Hull) vertexNeighbors(v int32) []int32 {
	out := make([]int32, 0, 4)
	for _, e := range h.vertexEdges[v] {
		out = append(out, h.Edges[h.Edges[e].Next].Origin)
	}
	return out
}

// edgeVertices returns the two endpoint vertex indices of half-edge e, in
// the direction e points.
func (h *Hull) edgeVertices(e int32) (a, b int32) {
	return h.Edges[e].Origin, h.Edges[h.Edges[e].Next].Origin
}
