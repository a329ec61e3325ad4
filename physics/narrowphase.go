// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"log/slog"

	"github.com/vex3d/vex/math/lin"
)

// narrowphaseMargin is the distance, in world units, within which two
// non-overlapping shapes still generate a speculative contact point. This
// matches the original's "contact breaking threshold" idea from
// collideSphereBox, generalized to every shape pair.
const narrowphaseMargin = 0.05

// collideShapes computes the raw contact manifold between shapeA (placed by
// xfA) and shapeB (placed by xfB), dispatching on shape kind the way the
// original's collider.algorithms table dispatched on a fixed 2x2 grid of
// sphere/box algorithms. Mesh shapes are decomposed into per-triangle
// sub-dispatch rather than getting their own table entry. cache carries a
// GJK simplex warm-started across steps for the generic path.
func collideShapes(shapeA *Shape, xfA *lin.T, shapeB *Shape, xfB *lin.T, cache *gjkSimplex) []satContact {
	if shapeA.Kind == ShapeMesh {
		return collideAgainstMesh(shapeA, xfA, shapeB, xfB, cache, false)
	}
	if shapeB.Kind == ShapeMesh {
		return collideAgainstMesh(shapeB, xfB, shapeA, xfA, cache, true)
	}
	if shapeA.Kind == ShapeSphere && shapeB.Kind == ShapeSphere {
		return collideSphereSphere(shapeA, xfA, shapeB, xfB)
	}
	if shapeA.Kind == ShapeHull && shapeB.Kind == ShapeHull {
		contacts, found := satHullHull(shapeA.hull, xfA, shapeB.hull, xfB)
		if !found {
			cache.reset()
			return nil
		}
		return contacts
	}
	return collideGeneric(shapeA, xfA, shapeB, xfB, cache)
}

// collideSphereSphere is the analytic fast path, ported directly from the
// original collideSphereSphere.
func collideSphereSphere(shapeA *Shape, xfA *lin.T, shapeB *Shape, xfB *lin.T) []satContact {
	la := xfA.App(lin.NewV3())
	lb := xfB.App(lin.NewV3())
	diff := lin.NewV3().Sub(la, lb)
	separation := diff.Len()
	radiiSum := shapeA.sphereRadius + shapeB.sphereRadius
	if separation > radiiSum+narrowphaseMargin {
		return nil
	}
	normal := lin.V3{X: 1, Y: 0, Z: 0}
	if separation > lin.Epsilon {
		normal.Scale(diff, 1.0/separation)
	}
	onA := lin.V3{X: la.X - normal.X*shapeA.sphereRadius, Y: la.Y - normal.Y*shapeA.sphereRadius, Z: la.Z - normal.Z*shapeA.sphereRadius}
	onB := lin.V3{X: lb.X + normal.X*shapeB.sphereRadius, Y: lb.Y + normal.Y*shapeB.sphereRadius, Z: lb.Z + normal.Z*shapeB.sphereRadius}
	return []satContact{{onA: onA, onB: onB, normal: normal, depth: radiiSum - separation}}
}

// collideGeneric handles every shape pair that isn't sphere-sphere or
// hull-hull: GJK finds the closest points (or detects overlap), and EPA
// recovers a penetration manifold when GJK reports overlap. Produces a
// single contact point; multi-point manifolds for these pairs are built up
// over successive steps by the persistence layer in contact.go tracking the
// same feature, the way incremental manifold construction normally works
// for curved/non-polytope shape pairs.
func collideGeneric(shapeA *Shape, xfA *lin.T, shapeB *Shape, xfB *lin.T, cache *gjkSimplex) []satContact {
	result := gjkDistance(shapeA, xfA, shapeB, xfB, cache)
	if result.overlap {
		epaResult := epa(shapeA, xfA, shapeB, xfB, cache)
		if !epaResult.converged && epaResult.penetration == 0 {
			slog.Debug("physics: EPA produced a degenerate manifold, skipping contact")
			return nil
		}
		return []satContact{{onA: epaResult.onA, onB: epaResult.onB, normal: epaResult.normal, depth: epaResult.penetration}}
	}
	if result.distance > narrowphaseMargin {
		return nil
	}
	return []satContact{{onA: result.onA, onB: result.onB, normal: result.normal, depth: -result.distance}}
}

// collideAgainstMesh decomposes meshShape into the triangles whose AABB
// overlaps other's, colliding other against each one individually and
// concatenating the results. flip reports whether other was originally
// shapeA in the caller's pair ordering, so the returned contacts keep a
// consistent onA/onB/normal orientation relative to the caller's (shapeA,
// shapeB) order rather than the (mesh, other) order used internally.
func collideAgainstMesh(meshShape *Shape, meshXf *lin.T, other *Shape, otherXf *lin.T, cache *gjkSimplex, flip bool) []satContact {
	otherBox := other.AABB(otherXf, narrowphaseMargin)
	localBox := worldBoxToLocal(otherBox, meshXf)

	var out []satContact
	meshShape.mesh.QueryAABB(localBox, func(triIndex int32) {
		a, b, c := meshShape.mesh.Triangle(int(triIndex))
		tri := NewTriangleShape(a, b, c)
		var sub []satContact
		if other.Kind == ShapeHull {
			sub = collideGeneric(&tri, meshXf, other, otherXf, &gjkSimplex{})
		} else {
			sub = collideShapes(&tri, meshXf, other, otherXf, &gjkSimplex{})
		}
		out = append(out, sub...)
	})
	// Deliberately not reduced here: a shape can straddle two or more
	// differently-angled triangles at once, and collapsing that union down
	// to one manifold's worth of points now would throw away the distinct
	// normals Contact.update's clusterContactsByNormal pass needs to split
	// them back into separate manifolds.
	if flip {
		for i := range out {
			out[i].onA, out[i].onB = out[i].onB, out[i].onA
			out[i].normal = lin.V3{X: -out[i].normal.X, Y: -out[i].normal.Y, Z: -out[i].normal.Z}
		}
	}
	return out
}

// worldBoxToLocal conservatively maps a world-space AABB into the local
// space of xf by transforming its eight corners, used to query a mesh's
// triangle tree (which is stored in the mesh's own local space).
func worldBoxToLocal(box AABB, xf *lin.T) AABB {
	corners := [8]lin.V3{
		{X: box.Min.X, Y: box.Min.Y, Z: box.Min.Z},
		{X: box.Max.X, Y: box.Min.Y, Z: box.Min.Z},
		{X: box.Min.X, Y: box.Max.Y, Z: box.Min.Z},
		{X: box.Min.X, Y: box.Min.Y, Z: box.Max.Z},
		{X: box.Max.X, Y: box.Max.Y, Z: box.Min.Z},
		{X: box.Max.X, Y: box.Min.Y, Z: box.Max.Z},
		{X: box.Min.X, Y: box.Max.Y, Z: box.Max.Z},
		{X: box.Max.X, Y: box.Max.Y, Z: box.Max.Z},
	}
	inv := lin.NewQ().Inv(xf.Rot)
	first := localPoint(corners[0], xf, inv)
	out := aabbFromPoint(&first)
	for i := 1; i < len(corners); i++ {
		p := localPoint(corners[i], xf, inv)
		out = out.Union(aabbFromPoint(&p))
	}
	return out
}

func localPoint(p lin.V3, xf *lin.T, invRot *lin.Q) lin.V3 {
	rel := lin.NewV3().Sub(&p, xf.Loc)
	x, y, z := lin.MultSQ(rel.X, rel.Y, rel.Z, invRot)
	return lin.V3{X: x, Y: y, Z: z}
}
