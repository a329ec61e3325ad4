// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"math"

	"github.com/vex3d/vex/math/lin"
)

// satContact is one candidate contact point produced by hull-hull SAT, prior
// to persistence/point-matching against the previous step's manifold.
type satContact struct {
	onA, onB lin.V3
	normal   lin.V3 // world space, points from B toward A.
	depth    float64
}

// satPlane is a world-space plane used for clipping, ported from the
// original cPlane/is_point_in_plane/plane_edge_intersection trio.
type satPlane struct {
	normal lin.V3
	dist   float64 // signed distance of the origin to the plane along normal.
}

func planeFromPointNormal(p, n lin.V3) satPlane {
	return satPlane{normal: n, dist: n.Dot(&p)}
}

// signedDistance is positive on the side the normal points toward.
func (p satPlane) signedDistance(v lin.V3) float64 {
	return p.normal.Dot(&v) - p.dist
}

func worldVertex(v lin.V3, xf *lin.T) lin.V3 {
	x, y, z := xf.AppS(v.X, v.Y, v.Z)
	return lin.V3{X: x, Y: y, Z: z}
}

func worldDirection(v lin.V3, xf *lin.T) lin.V3 {
	x, y, z := lin.MultSQ(v.X, v.Y, v.Z, xf.Rot)
	return lin.V3{X: x, Y: y, Z: z}
}

func worldFaceNormal(h *Hull, fi int, xf *lin.T) lin.V3 {
	n := worldDirection(h.Faces[fi].Normal, xf)
	return *n.Unit()
}

// faceSeparation finds the face of hull with the largest separation from
// other, i.e. the best face-normal separating axis originating on hull's
// side. Ported from the role played by the original's per-axis SAT loop in
// convex_convex_contact_manifold, generalized from array-indexed faces to
// the half-edge Hull.
func faceSeparation(hull *Hull, xf *lin.T, other *Hull, otherXf *lin.T) (bestSep float64, bestFace int) {
	bestSep = -math.MaxFloat64
	for fi := range hull.Faces {
		n := worldFaceNormal(hull, fi, xf)
		v := worldVertex(hull.Vertices[hull.Faces[fi].Edge0Vertex(hull)], xf)
		negN := lin.V3{X: -n.X, Y: -n.Y, Z: -n.Z}
		support := worldSupportHull(other, otherXf, &negN)
		diff := lin.NewV3().Sub(&support, &v)
		sep := n.Dot(diff)
		if sep > bestSep {
			bestSep, bestFace = sep, fi
		}
	}
	return bestSep, bestFace
}

// Edge0Vertex returns the first vertex of face fi; a small convenience so
// faceSeparation reads close to the original's per-face loop.
func (f HullFace) Edge0Vertex(h *Hull) int32 { return h.Edges[f.Edge].Origin }

func worldSupportHull(h *Hull, xf *lin.T, worldDir *lin.V3) lin.V3 {
	localDir := rotateByInverse(xf, worldDir)
	local := h.Vertices[h.supportVertex(&localDir)]
	return worldVertex(local, xf)
}

// edgeSeparation tests every edge-pair cross-product axis between hullA and
// hullB, the analogue of the original's edge-vs-edge SAT pass (folded into
// get_edge_with_most_fitting_normal there; made explicit here since the
// half-edge Hull has no precomputed unique-edge list to iterate by face
// pairs the way the original's neighbor arrays did).
func edgeSeparation(hullA *Hull, xfA *lin.T, hullB *Hull, xfB *lin.T) (bestSep float64, bestA, bestB int32, bestAxis lin.V3) {
	bestSep = -math.MaxFloat64
	centroidA := worldVertex(hullA.centroid, xfA)
	for ea := range hullA.Edges {
		a0, a1 := hullA.edgeVertices(int32(ea))
		if a0 >= a1 {
			continue // visit each undirected edge once.
		}
		pa0 := worldVertex(hullA.Vertices[a0], xfA)
		pa1 := worldVertex(hullA.Vertices[a1], xfA)
		da := lin.NewV3().Sub(&pa1, &pa0)

		for eb := range hullB.Edges {
			b0, b1 := hullB.edgeVertices(int32(eb))
			if b0 >= b1 {
				continue
			}
			pb0 := worldVertex(hullB.Vertices[b0], xfB)
			pb1 := worldVertex(hullB.Vertices[b1], xfB)
			db := lin.NewV3().Sub(&pb1, &pb0)

			axis := lin.NewV3().Cross(da, db)
			if axis.LenSqr() < 1e-10 {
				continue // parallel edges, no useful axis.
			}
			axis.Unit()
			toB := lin.NewV3().Sub(&pb0, &pa0)
			if axis.Dot(toB) < 0 {
				axis.Neg(axis)
			}
			toCentroid := lin.NewV3().Sub(&centroidA, &pa0)
			if axis.Dot(toCentroid) > 0 {
				axis.Neg(axis) // keep axis pointing away from A's own interior.
			}

			sep := supportSeparationAlong(hullA, xfA, hullB, xfB, *axis)
			if sep > bestSep {
				bestSep, bestA, bestB, bestAxis = sep, int32(ea), int32(eb), *axis
			}
		}
	}
	return bestSep, bestA, bestB, bestAxis
}

func supportSeparationAlong(hullA *Hull, xfA *lin.T, hullB *Hull, xfB *lin.T, axis lin.V3) float64 {
	negAxis := lin.V3{X: -axis.X, Y: -axis.Y, Z: -axis.Z}
	supportA := worldSupportHull(hullA, xfA, &axis)
	supportB := worldSupportHull(hullB, xfB, &negAxis)
	diff := lin.NewV3().Sub(&supportB, &supportA)
	return axis.Dot(diff)
}

const satFaceBias = 0.005 // prefer a face axis over an equally-good edge axis, as the original did, to keep manifolds stable.

// satHullHull runs full SAT (face axes of both hulls, then edge-pair cross
// axes) and, for an overlapping pair, returns the contact manifold. Ported
// from the structure of convex_convex_contact_manifold: reference/incident
// face selection plus Sutherland-Hodgman clipping for face contacts, closest
// segment points for an edge contact. Returns found=false when the hulls are
// separated along some tested axis.
func satHullHull(hullA *Hull, xfA *lin.T, hullB *Hull, xfB *lin.T) (contacts []satContact, found bool) {
	sepA, faceA := faceSeparation(hullA, xfA, hullB, xfB)
	if sepA > 0 {
		return nil, false
	}
	sepB, faceB := faceSeparation(hullB, xfB, hullA, xfA)
	if sepB > 0 {
		return nil, false
	}
	sepE, edgeA, edgeB, axis := edgeSeparation(hullA, xfA, hullB, xfB)
	if sepE > 0 {
		return nil, false
	}

	if sepE > sepA+satFaceBias && sepE > sepB+satFaceBias {
		return edgeContactManifold(hullA, xfA, hullB, xfB, edgeA, edgeB, axis), true
	}
	if sepB > sepA+satFaceBias {
		return faceContactManifold(hullB, xfB, faceB, hullA, xfA, faceA, true), true
	}
	return faceContactManifold(hullA, xfA, faceA, hullB, xfB, faceB, false), true
}

// faceContactManifold clips the incident hull's nearest face against the
// reference face's side planes (Sutherland-Hodgman), then keeps the clipped
// points that lie behind the reference plane. Ported from
// convex_convex_contact_manifold's face-contact branch and build_boundary_planes,
// generalized from the original's neighbour-array lookup to faceNeighbors.
// When flip is true, refHull/refXf/refFace actually belong to "B" in the
// caller's naming, and the returned normal/onA/onB are swapped back so the
// contact always reads as pointing from B toward A.
func faceContactManifold(refHull *Hull, refXf *lin.T, refFace int, incHull *Hull, incXf *lin.T, incFaceHint int, flip bool) []satContact {
	refNormal := worldFaceNormal(refHull, refFace, refXf)
	refVerts := refHull.FaceVertices(refFace)
	refPoint := worldVertex(refHull.Vertices[refVerts[0]], refXf)
	refPlane := planeFromPointNormal(refPoint, refNormal)

	incFace := mostAntiParallelFace(incHull, incXf, refNormal)
	poly := worldFacePolygon(incHull, incXf, incFace)

	neighbors := refHull.faceNeighbors(refFace)
	for i, nf := range neighbors {
		sideNormal := worldFaceNormal(refHull, int(nf), refXf)
		v0 := refVerts[i]
		sidePoint := worldVertex(refHull.Vertices[v0], refXf)
		sidePlane := planeFromPointNormal(sidePoint, sideNormal)
		poly = clipPolygon(poly, sidePlane)
		if len(poly) == 0 {
			break
		}
	}

	out := make([]satContact, 0, len(poly))
	for _, p := range poly {
		d := refPlane.signedDistance(p)
		if d > linearSlop {
			continue // above the reference face, not actually penetrating.
		}
		onRef := lin.NewV3().Sub(&p, lin.NewV3().Scale(&refNormal, d))
		c := satContact{depth: -d}
		if flip {
			c.onA, c.onB, c.normal = p, *onRef, lin.V3{X: -refNormal.X, Y: -refNormal.Y, Z: -refNormal.Z}
		} else {
			c.onA, c.onB, c.normal = *onRef, p, refNormal
		}
		out = append(out, c)
	}
	return reduceFaceContacts(out)
}

func mostAntiParallelFace(h *Hull, xf *lin.T, dir lin.V3) int {
	best := 0
	bestDot := math.MaxFloat64
	for fi := range h.Faces {
		n := worldFaceNormal(h, fi, xf)
		if d := n.Dot(&dir); d < bestDot {
			bestDot, best = d, fi
		}
	}
	return best
}

func worldFacePolygon(h *Hull, xf *lin.T, fi int) []lin.V3 {
	idx := h.FaceVertices(fi)
	poly := make([]lin.V3, len(idx))
	for i, vi := range idx {
		poly[i] = worldVertex(h.Vertices[vi], xf)
	}
	return poly
}

// clipPolygon clips a convex polygon against a half-space (points with
// signedDistance <= 0 are kept), ported from sutherland_hodgman plus
// plane_edge_intersection/is_point_in_plane.
func clipPolygon(poly []lin.V3, plane satPlane) []lin.V3 {
	if len(poly) == 0 {
		return poly
	}
	out := make([]lin.V3, 0, len(poly)+1)
	prev := poly[len(poly)-1]
	prevIn := plane.signedDistance(prev) <= 0
	for _, cur := range poly {
		curIn := plane.signedDistance(cur) <= 0
		if curIn {
			if !prevIn {
				out = append(out, planeEdgeIntersection(prev, cur, plane))
			}
			out = append(out, cur)
		} else if prevIn {
			out = append(out, planeEdgeIntersection(prev, cur, plane))
		}
		prev, prevIn = cur, curIn
	}
	return out
}

func planeEdgeIntersection(a, b lin.V3, plane satPlane) lin.V3 {
	da := plane.signedDistance(a)
	db := plane.signedDistance(b)
	t := da / (da - db)
	return lin.V3{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t, Z: a.Z + (b.Z-a.Z)*t}
}

// reduceFaceContacts keeps at most maxManifoldPts of a clipped polygon's
// points, so a many-sided clip never grows the manifold past what the
// solver expects. Delegates to the same farthest-point/largest-area reducer
// cluster.go uses for mesh contacts.
func reduceFaceContacts(pts []satContact) []satContact {
	return reduceContactCluster(pts)
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// edgeContactManifold handles the edge-edge SAT case: a single contact at
// the closest points between the two supporting edge segments. Ported from
// collision_distance_between_skew_lines.
func edgeContactManifold(hullA *Hull, xfA *lin.T, hullB *Hull, xfB *lin.T, edgeA, edgeB int32, axis lin.V3) []satContact {
	a0i, a1i := hullA.edgeVertices(edgeA)
	b0i, b1i := hullB.edgeVertices(edgeB)
	pa0 := worldVertex(hullA.Vertices[a0i], xfA)
	pa1 := worldVertex(hullA.Vertices[a1i], xfA)
	pb0 := worldVertex(hullB.Vertices[b0i], xfB)
	pb1 := worldVertex(hullB.Vertices[b1i], xfB)

	onA, onB, sep := closestPointsBetweenSegments(pa0, pa1, pb0, pb1)
	return []satContact{{onA: onA, onB: onB, normal: axis, depth: -sep}}
}

// closestPointsBetweenSegments finds the closest points between two finite
// segments, ported from collision_distance_between_skew_lines, extended
// (the original only needed the infinite-line solution plus a manifold
// check) to clamp both parameters into [0,1].
func closestPointsBetweenSegments(a0, a1, b0, b1 lin.V3) (onA, onB lin.V3, separation float64) {
	d1 := lin.NewV3().Sub(&a1, &a0)
	d2 := lin.NewV3().Sub(&b1, &b0)
	r := lin.NewV3().Sub(&a0, &b0)

	aa := d1.Dot(d1)
	ee := d2.Dot(d2)
	f := d2.Dot(r)

	var s, t float64
	if aa <= lin.Epsilon && ee <= lin.Epsilon {
		s, t = 0, 0
	} else if aa <= lin.Epsilon {
		s = 0
		t = clamp01(f / ee)
	} else {
		c := d1.Dot(r)
		if ee <= lin.Epsilon {
			t = 0
			s = clamp01(-c / aa)
		} else {
			b := d1.Dot(d2)
			denom := aa*ee - b*b
			if denom != 0 {
				s = clamp01((b*f - c*ee) / denom)
			}
			t = (b*s + f) / ee
			if t < 0 {
				t = 0
				s = clamp01(-c / aa)
			} else if t > 1 {
				t = 1
				s = clamp01((b - c) / aa)
			}
		}
	}

	onA = lin.V3{X: a0.X + d1.X*s, Y: a0.Y + d1.Y*s, Z: a0.Z + d1.Z*s}
	onB = lin.V3{X: b0.X + d2.X*t, Y: b0.Y + d2.Y*t, Z: b0.Z + d2.Z*t}
	diff := lin.NewV3().Sub(&onA, &onB)
	return onA, onB, diff.Len()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
