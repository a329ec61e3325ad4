// Copyright © 2014-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

// raycast.go answers "what is under this ray", generalizing the original
// caster.go's ray-plane/ray-sphere pair (the only two shapes the original
// supported) to the full five-way Shape union, and adding the ray-hull and
// ray-mesh cases the original's FUTURE comment named but never implemented.

import (
	"math"

	"github.com/vex3d/vex/math/lin"
)

// RayCastInput is a ray expressed as an origin, a (not necessarily unit)
// direction, and a maximum fraction along that direction to search.
type RayCastInput struct {
	Origin    lin.V3
	Direction lin.V3
	MaxFraction float64
}

// RayCastOutput reports the nearest hit, if any, as a fraction along the
// input ray plus the world-space point and surface normal there.
type RayCastOutput struct {
	Hit      bool
	Fraction float64
	Point    lin.V3
	Normal   lin.V3
}

// rayCastShape dispatches on shape kind, the role the original's
// rayCastAlgorithms map played, generalized from a map-of-function-pointers
// keyed by a shape-type int to a direct switch over ShapeKind (consistent
// with how Shape itself replaced interface dispatch with a tagged union).
func rayCastShape(s *Shape, xf *lin.T, in RayCastInput) RayCastOutput {
	localOrigin := xf.Inv(lin.NewV3().Set(&in.Origin))
	localDir := rotateByInverse(xf, &in.Direction)

	var out RayCastOutput
	switch s.Kind {
	case ShapeSphere:
		out = rayCastSphere(*localOrigin, localDir, s.sphereRadius, in.MaxFraction)
	case ShapeCapsule:
		out = rayCastCapsule(*localOrigin, localDir, s.capP0, s.capP1, s.capRadius, in.MaxFraction)
	case ShapeTriangle:
		out = rayCastTriangle(*localOrigin, localDir, s.triA, s.triB, s.triC, in.MaxFraction)
	case ShapeHull:
		out = rayCastHull(*localOrigin, localDir, s.hull, in.MaxFraction)
	case ShapeMesh:
		out = rayCastMesh(*localOrigin, localDir, s.mesh, in.MaxFraction)
	}
	if !out.Hit {
		return out
	}
	out.Point = worldVertex(out.Point, xf)
	out.Normal = worldDirection(out.Normal, xf)
	return out
}

// rayCastSphere is ported from castRaySphere, generalized from a
// normalized-direction-only ray to one carrying a maxFraction and reporting
// a surface normal, and switched from a *body/*Body pair to plain vectors.
func rayCastSphere(origin, dir lin.V3, radius, maxFraction float64) RayCastOutput {
	sc := lin.NewV3().Scale(&origin, -1)
	d0 := dir.Dot(sc)
	if d0 < 0 {
		return RayCastOutput{}
	}
	radius2 := radius * radius
	d1 := sc.Dot(sc) - d0*d0
	if d1 > radius2 {
		return RayCastOutput{}
	}
	dlen := d0 - math.Sqrt(radius2-d1)
	if dlen < 0 || dlen > maxFraction {
		return RayCastOutput{}
	}
	point := lin.V3{X: dir.X*dlen + origin.X, Y: dir.Y*dlen + origin.Y, Z: dir.Z*dlen + origin.Z}
	normal := *lin.NewV3().Set(&point).Unit()
	return RayCastOutput{Hit: true, Fraction: dlen, Point: point, Normal: normal}
}

// rayCastCapsule tests the ray against the capsule's bounding cylinder and
// two end-cap spheres, keeping the nearest hit. New code (the original had
// no capsule support), grounded on the same sphere-intersection formula as
// rayCastSphere applied to the segment's closest approach.
func rayCastCapsule(origin, dir, p0, p1 lin.V3, radius, maxFraction float64) RayCastOutput {
	best := RayCastOutput{}
	bestFraction := maxFraction

	axis := lin.NewV3().Sub(&p1, &p0)
	axisLen := axis.Len()
	if axisLen > lin.Epsilon {
		unitAxis := lin.NewV3().Scale(axis, 1.0/axisLen)
		// Project the ray into the frame where the capsule axis is Y, radius
		// test against the infinite cylinder, then clip to the segment span.
		rel := lin.NewV3().Sub(&origin, &p0)
		relAxial := rel.Dot(unitAxis)
		dirAxial := dir.Dot(unitAxis)

		relPerp := lin.NewV3().Sub(rel, lin.NewV3().Scale(unitAxis, relAxial))
		dirPerp := lin.NewV3().Sub(&dir, lin.NewV3().Scale(unitAxis, dirAxial))

		a := dirPerp.Dot(dirPerp)
		if a > lin.Epsilon {
			b := 2 * relPerp.Dot(dirPerp)
			c := relPerp.Dot(relPerp) - radius*radius
			disc := b*b - 4*a*c
			if disc >= 0 {
				t := (-b - math.Sqrt(disc)) / (2 * a)
				if t >= 0 && t < bestFraction {
					axialAt := relAxial + t*dirAxial
					if axialAt >= 0 && axialAt <= axisLen {
						point := lin.V3{X: origin.X + dir.X*t, Y: origin.Y + dir.Y*t, Z: origin.Z + dir.Z*t}
						onAxis := lin.V3{X: p0.X + unitAxis.X*axialAt, Y: p0.Y + unitAxis.Y*axialAt, Z: p0.Z + unitAxis.Z*axialAt}
						normal := *lin.NewV3().Sub(&point, &onAxis).Unit()
						bestFraction = t
						best = RayCastOutput{Hit: true, Fraction: t, Point: point, Normal: normal}
					}
				}
			}
		}
	}

	if cap := rayCastSphere(*lin.NewV3().Sub(&origin, &p0), dir, radius, bestFraction); cap.Hit {
		cap.Point.X, cap.Point.Y, cap.Point.Z = cap.Point.X+p0.X, cap.Point.Y+p0.Y, cap.Point.Z+p0.Z
		bestFraction, best = cap.Fraction, cap
	}
	if cap := rayCastSphere(*lin.NewV3().Sub(&origin, &p1), dir, radius, bestFraction); cap.Hit {
		cap.Point.X, cap.Point.Y, cap.Point.Z = cap.Point.X+p1.X, cap.Point.Y+p1.Y, cap.Point.Z+p1.Z
		bestFraction, best = cap.Fraction, cap
	}
	return best
}

// rayCastTriangle is a Möller-Trumbore intersection, new code (the original
// had no triangle or mesh ray support at all).
func rayCastTriangle(origin, dir, a, b, c lin.V3, maxFraction float64) RayCastOutput {
	e1 := lin.NewV3().Sub(&b, &a)
	e2 := lin.NewV3().Sub(&c, &a)
	pvec := lin.NewV3().Cross(&dir, e2)
	det := e1.Dot(pvec)
	if math.Abs(det) < lin.Epsilon {
		return RayCastOutput{}
	}
	invDet := 1.0 / det
	tvec := lin.NewV3().Sub(&origin, &a)
	u := tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return RayCastOutput{}
	}
	qvec := lin.NewV3().Cross(tvec, e1)
	v := dir.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return RayCastOutput{}
	}
	t := e2.Dot(qvec) * invDet
	if t < 0 || t > maxFraction {
		return RayCastOutput{}
	}
	point := lin.V3{X: origin.X + dir.X*t, Y: origin.Y + dir.Y*t, Z: origin.Z + dir.Z*t}
	normal := *lin.NewV3().Cross(e1, e2).Unit()
	if normal.Dot(&dir) > 0 {
		normal.Neg(&normal)
	}
	return RayCastOutput{Hit: true, Fraction: t, Point: point, Normal: normal}
}

// rayCastHull clips the ray's parameter interval against every face's
// half-space in turn (the standard slab-clipping approach for a convex
// polyhedron), new code grounded in the same plane representation sat.go
// uses for face clipping.
func rayCastHull(origin, dir lin.V3, h *Hull, maxFraction float64) RayCastOutput {
	tMin, tMax := 0.0, maxFraction
	var hitNormal lin.V3
	found := false
	for fi := range h.Faces {
		n := h.Faces[fi].Normal
		p := h.Vertices[h.Edges[h.Faces[fi].Edge].Origin]
		plane := planeFromPointNormal(p, n)
		denom := n.Dot(&dir)
		dist := plane.dist - n.Dot(&origin)
		if math.Abs(denom) < lin.Epsilon {
			if dist < 0 {
				return RayCastOutput{} // parallel and outside this face: ray misses entirely.
			}
			continue
		}
		t := dist / denom
		if denom < 0 {
			if t > tMin {
				tMin, hitNormal, found = t, n, true
			}
		} else if t < tMax {
			tMax = t
		}
		if tMin > tMax {
			return RayCastOutput{}
		}
	}
	if !found || tMin > maxFraction {
		return RayCastOutput{}
	}
	point := lin.V3{X: origin.X + dir.X*tMin, Y: origin.Y + dir.Y*tMin, Z: origin.Z + dir.Z*tMin}
	return RayCastOutput{Hit: true, Fraction: tMin, Point: point, Normal: hitNormal}
}

// rayCastMesh narrows the mesh's AABB tree down to the triangles the ray's
// segment could plausibly hit, then tests each one directly.
func rayCastMesh(origin, dir lin.V3, m *Mesh, maxFraction float64) RayCastOutput {
	end := lin.V3{X: origin.X + dir.X*maxFraction, Y: origin.Y + dir.Y*maxFraction, Z: origin.Z + dir.Z*maxFraction}
	box := aabbFromPoint(&origin).Union(aabbFromPoint(&end))

	best := RayCastOutput{}
	bestFraction := maxFraction
	m.tree.Query(box, func(data any) bool {
		tri := data.(int32)
		a, b, c := m.Triangle(int(tri))
		if out := rayCastTriangle(origin, dir, a, b, c, bestFraction); out.Hit {
			bestFraction, best = out.Fraction, out
		}
		return true
	})
	return best
}
