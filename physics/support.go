// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "github.com/vex3d/vex/math/lin"

// localSupport returns the shape-local point furthest along localDir.
// Generalizes the original support_point, which only switched on
// CONVEX_HULL/SPHERE, to the full five-way shape union.
func localSupport(s *Shape, localDir *lin.V3) lin.V3 {
	switch s.Kind {
	case ShapeSphere:
		d := lin.NewV3().Set(localDir).Unit()
		return lin.V3{X: d.X * s.sphereRadius, Y: d.Y * s.sphereRadius, Z: d.Z * s.sphereRadius}
	case ShapeCapsule:
		var p lin.V3
		if s.capP0.Dot(localDir) > s.capP1.Dot(localDir) {
			p = s.capP0
		} else {
			p = s.capP1
		}
		d := lin.NewV3().Set(localDir).Unit()
		return lin.V3{X: p.X + d.X*s.capRadius, Y: p.Y + d.Y*s.capRadius, Z: p.Z + d.Z*s.capRadius}
	case ShapeTriangle:
		best := s.triA
		bestDot := s.triA.Dot(localDir)
		if d := s.triB.Dot(localDir); d > bestDot {
			best, bestDot = s.triB, d
		}
		if d := s.triC.Dot(localDir); d > bestDot {
			best = s.triC
		}
		return best
	case ShapeHull:
		idx := s.hull.supportVertex(localDir)
		return s.hull.Vertices[idx]
	default:
		return lin.V3{}
	}
}

// worldSupport returns the world-space support point of shape s (placed by
// xf) along the world-space direction worldDir.
func worldSupport(s *Shape, xf *lin.T, worldDir *lin.V3) lin.V3 {
	localDir := rotateByInverse(xf, worldDir)
	local := localSupport(s, &localDir)
	wx, wy, wz := xf.AppS(local.X, local.Y, local.Z)
	return lin.V3{X: wx, Y: wy, Z: wz}
}

// rotateByInverse rotates (but does not translate) worldDir by the
// inverse of xf's orientation, the correct way to pull a direction vector
// (as opposed to a point) into local space.
func rotateByInverse(xf *lin.T, worldDir *lin.V3) lin.V3 {
	inv := lin.NewQ().Inv(xf.Rot)
	x, y, z := lin.MultSQ(worldDir.X, worldDir.Y, worldDir.Z, inv)
	return lin.V3{X: x, Y: y, Z: z}
}

// minkowskiSupport returns the world-space Minkowski-difference support
// point of (shapeA, xfA) - (shapeB, xfB) along dir, along with the
// contributing support points on each shape (needed to recover closest
// points once GJK terminates).
func minkowskiSupport(shapeA *Shape, xfA *lin.T, shapeB *Shape, xfB *lin.T, dir lin.V3) (diff, onA, onB lin.V3) {
	onA = worldSupport(shapeA, xfA, &dir)
	negDir := lin.V3{X: -dir.X, Y: -dir.Y, Z: -dir.Z}
	onB = worldSupport(shapeB, xfB, &negDir)
	diff = lin.V3{X: onA.X - onB.X, Y: onA.Y - onB.Y, Z: onA.Z - onB.Z}
	return diff, onA, onB
}
