// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"log/slog"
	"math"

	"github.com/vex3d/vex/math/lin"
)

// epaFace is one triangular face of the expanding polytope, referencing
// three vertex indices into epaState.verts.
type epaFace struct {
	a, b, c int
	normal  lin.V3
	dist    float64 // distance from the face's plane to the origin.
}

type epaEdge struct{ a, b int }

// epaResult carries everything the contact generator needs: the
// penetration normal (pointing from B to A) and depth, plus the closest
// points on each shape's surface at the point of deepest penetration.
type epaResult struct {
	normal     lin.V3
	penetration float64
	onA, onB   lin.V3
	converged  bool
}

const epaMaxIterations = 64
const epaTolerance = 1e-4

// epa runs the Expanding Polytope Algorithm starting from a GJK simplex
// that has already enclosed the origin (cache.num == 4), finding the
// minimum translation vector that separates shapeA from shapeB. Ported
// from the original polytope_from_gjk_simplex/epa pair, generalized from
// operating on a *collider to operating on a Shape+transform pair via
// minkowskiSupport, and extended to also recover closest surface points
// (the original only needed a penetration normal and depth).
func epa(shapeA *Shape, xfA *lin.T, shapeB *Shape, xfB *lin.T, cache *gjkSimplex) epaResult {
	verts := make([]gjkVertex, 4)
	copy(verts, cache.v[:4])

	faces := []epaFace{
		{0, 1, 2, lin.V3{}, 0},
		{0, 2, 3, lin.V3{}, 0},
		{0, 3, 1, lin.V3{}, 0},
		{1, 3, 2, lin.V3{}, 0},
	}
	for i := range faces {
		computeFacePlane(&faces[i], verts)
	}

	for iter := 0; iter < epaMaxIterations; iter++ {
		minIdx := 0
		minDist := math.MaxFloat64
		for i, f := range faces {
			if f.dist < minDist {
				minDist, minIdx = f.dist, i
			}
		}
		closest := faces[minIdx]

		support := worldMinkowski(shapeA, xfA, shapeB, xfB, closest.normal)
		d := closest.normal.Dot(&support.w)

		if d-minDist < epaTolerance {
			return finishEPA(closest, verts, true)
		}

		newIdx := len(verts)
		verts = append(verts, support)

		edges := make([]epaEdge, 0, 8)
		remaining := faces[:0]
		for _, f := range faces {
			centroid := triCentroid(verts[f.a].w, verts[f.b].w, verts[f.c].w)
			toSupport := lin.NewV3().Sub(&support.w, &centroid)
			if f.normal.Dot(toSupport) > 0 {
				edges = addEpaEdge(edges, epaEdge{f.a, f.b})
				edges = addEpaEdge(edges, epaEdge{f.b, f.c})
				edges = addEpaEdge(edges, epaEdge{f.c, f.a})
			} else {
				remaining = append(remaining, f)
			}
		}
		faces = remaining
		for _, e := range edges {
			nf := epaFace{a: e.a, b: e.b, c: newIdx}
			computeFacePlane(&nf, verts)
			faces = append(faces, nf)
		}
		if len(faces) == 0 {
			slog.Warn("physics: EPA lost all polytope faces, degenerate contact skipped")
			return epaResult{converged: false}
		}
	}
	slog.Warn("physics: EPA did not converge within iteration budget")
	minIdx := 0
	minDist := math.MaxFloat64
	for i, f := range faces {
		if f.dist < minDist {
			minDist, minIdx = f.dist, i
		}
	}
	return finishEPA(faces[minIdx], verts, false)
}

func worldMinkowski(shapeA *Shape, xfA *lin.T, shapeB *Shape, xfB *lin.T, dir lin.V3) gjkVertex {
	diff, onA, onB := minkowskiSupport(shapeA, xfA, shapeB, xfB, dir)
	return gjkVertex{w: diff, a: onA, b: onB}
}

// computeFacePlane fills in f.normal/f.dist for the triangle over verts,
// orienting the normal outward (away from the polytope interior, i.e. away
// from the origin) the way the original get_face_normal_and_distance_to_origin
// did, including its degenerate same-plane fallback.
func computeFacePlane(f *epaFace, verts []gjkVertex) {
	a, b, c := verts[f.a].w, verts[f.b].w, verts[f.c].w
	ab := lin.NewV3().Sub(&b, &a)
	ac := lin.NewV3().Sub(&c, &a)
	n := lin.NewV3().Cross(ab, ac)
	if n.LenSqr() < 1e-18 {
		f.normal, f.dist = lin.V3{}, 0
		return
	}
	n.Unit()
	dist := n.Dot(&a)
	if dist < 0 {
		n.Neg(n)
		dist = -dist
	}
	f.normal, f.dist = *n, dist
}

func triCentroid(a, b, c lin.V3) lin.V3 {
	return lin.V3{X: (a.X + b.X + c.X) / 3, Y: (a.Y + b.Y + c.Y) / 3, Z: (a.Z + b.Z + c.Z) / 3}
}

// addEpaEdge adds edge to edges, or removes its match if edge's reverse is
// already present (meaning it is shared by two faces being deleted and so
// is interior to the new hole, not on its horizon).
func addEpaEdge(edges []epaEdge, edge epaEdge) []epaEdge {
	for i, e := range edges {
		if e.a == edge.b && e.b == edge.a {
			return append(edges[:i], edges[i+1:]...)
		}
	}
	return append(edges, edge)
}

// finishEPA interpolates the closest points on shapeA/shapeB from the
// winning face's barycentric coordinates with respect to the origin's
// projection onto it.
func finishEPA(f epaFace, verts []gjkVertex, converged bool) epaResult {
	u, v, w := barycentric(verts[f.a].w, verts[f.b].w, verts[f.c].w)
	onA := combine3(verts[f.a].a, verts[f.b].a, verts[f.c].a, u, v, w)
	onB := combine3(verts[f.a].b, verts[f.b].b, verts[f.c].b, u, v, w)
	return epaResult{normal: f.normal, penetration: f.dist, onA: onA, onB: onB, converged: converged}
}
