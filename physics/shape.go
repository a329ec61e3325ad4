// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"math"

	"github.com/vex3d/vex/math/lin"
)

// ShapeKind enumerates the collision primitives a Fixture can be built
// from. Shapes do not allocate during simulation; Aabb/Inertia/Volume are
// given their output structures to fill in, matching the original
// no-allocation collision primitive contract.
type ShapeKind int

const (
	ShapeSphere ShapeKind = iota
	ShapeCapsule
	ShapeTriangle
	ShapeHull
	ShapeMesh
	numShapeKinds
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeSphere:
		return "sphere"
	case ShapeCapsule:
		return "capsule"
	case ShapeTriangle:
		return "triangle"
	case ShapeHull:
		return "hull"
	case ShapeMesh:
		return "mesh"
	}
	return "unknown"
}

// Shape is a tagged union over the collision primitives, replacing the
// original interface-dispatch Shape. Exactly one of the kind-specific
// fields is meaningful, selected by Kind; dispatch tables elsewhere
// (narrowphase.go) index directly on Kind instead of relying on a vtable.
type Shape struct {
	Kind ShapeKind

	sphereRadius float64

	capP0, capP1 lin.V3 // capsule segment endpoints, local space.
	capRadius    float64

	triA, triB, triC lin.V3 // triangle vertices, local space.

	hull *Hull // convex hull, read-only, produced externally.
	mesh *Mesh // static triangle soup, read-only, produced externally.
}

// NewSphereShape builds a sphere of the given radius centred at the origin.
func NewSphereShape(radius float64) Shape {
	return Shape{Kind: ShapeSphere, sphereRadius: math.Abs(radius)}
}

// NewCapsuleShape builds a capsule: the Minkowski sum of a segment from p0
// to p1 and a sphere of the given radius.
func NewCapsuleShape(p0, p1 lin.V3, radius float64) Shape {
	return Shape{Kind: ShapeCapsule, capP0: p0, capP1: p1, capRadius: math.Abs(radius)}
}

// NewTriangleShape builds a single, zero-thickness triangle. Used both
// standalone and as the element type yielded by Mesh queries.
func NewTriangleShape(a, b, c lin.V3) Shape {
	return Shape{Kind: ShapeTriangle, triA: a, triB: b, triC: c}
}

// NewHullShape wraps a convex Hull (built by an external, quickhull-style
// collaborator; this package never computes a hull from a raw point
// cloud) as a Shape.
func NewHullShape(h *Hull) Shape { return Shape{Kind: ShapeHull, hull: h} }

// NewMeshShape wraps a static triangle soup as a Shape.
func NewMeshShape(m *Mesh) Shape { return Shape{Kind: ShapeMesh, mesh: m} }

// Radius returns the sphere/capsule radius, or the hull's bounding-sphere
// radius. Triangles and meshes have no single radius and return 0.
func (s *Shape) Radius() float64 {
	switch s.Kind {
	case ShapeSphere:
		return s.sphereRadius
	case ShapeCapsule:
		return s.capRadius
	case ShapeHull:
		return s.hull.boundingRadius
	}
	return 0
}

// Volume returns an approximate volume used to derive mass from density.
func (s *Shape) Volume() float64 {
	switch s.Kind {
	case ShapeSphere:
		r := s.sphereRadius
		return 4.0 / 3.0 * math.Pi * r * r * r
	case ShapeCapsule:
		r := s.capRadius
		h := s.capP0.Dist(&s.capP1)
		return math.Pi*r*r*h + 4.0/3.0*math.Pi*r*r*r
	case ShapeTriangle:
		return 0 // zero-thickness, no volume.
	case ShapeHull:
		return s.hull.volume()
	case ShapeMesh:
		return 0 // meshes are treated as static, massless geometry.
	}
	return 0
}

// Inertia fills and returns out with the local-space inertia tensor
// diagonal for the given mass, assuming uniform density.
func (s *Shape) Inertia(mass float64, out *lin.V3) *lin.V3 {
	switch s.Kind {
	case ShapeSphere:
		e := 0.4 * mass * s.sphereRadius * s.sphereRadius
		return out.SetS(e, e, e)
	case ShapeCapsule:
		return capsuleInertia(mass, s.capP0.Dist(&s.capP1), s.capRadius, out)
	case ShapeHull:
		return s.hull.inertia(mass, out)
	default:
		// Triangles and meshes carry no mass and report zero inertia;
		// World.CreateFixture does not reject them on a dynamic body.
		return out.SetS(0, 0, 0)
	}
}

// capsuleInertia approximates a capsule as a cylinder of the segment
// length plus two capping hemispheres, combined with the parallel axis
// theorem. Axis is assumed aligned with the local Y for the cylinder term;
// callers place capsules so capP0/capP1 differ along Y.
func capsuleInertia(mass, height, r float64, out *lin.V3) *lin.V3 {
	if height < lin.Epsilon {
		e := 0.4 * mass * r * r
		return out.SetS(e, e, e)
	}
	cylVol := math.Pi * r * r * height
	capVol := 4.0 / 3.0 * math.Pi * r * r * r
	total := cylVol + capVol
	if total < lin.Epsilon {
		return out.SetS(0, 0, 0)
	}
	cylMass := mass * cylVol / total
	capMass := mass * capVol / total

	ixzCyl := cylMass * (3*r*r + height*height) / 12.0
	iyCyl := cylMass * r * r / 2.0

	d := height / 2.0
	capMassHalf := capMass / 2.0
	ixzCap := 2 * capMassHalf * (0.4*r*r + d*d)
	iyCap := 2 * capMassHalf * 0.4 * r * r

	out.SetS(ixzCyl+ixzCap, iyCyl+iyCap, ixzCyl+ixzCap)
	return out
}

// AABB returns the axis-aligned bounding box of the shape transformed by
// t, with an optional margin added on every side.
func (s *Shape) AABB(t *lin.T, margin float64) AABB {
	switch s.Kind {
	case ShapeSphere:
		c := t.App(lin.NewV3())
		return aabbFromSphere(c, s.sphereRadius+margin)
	case ShapeCapsule:
		p0 := t.App(lin.NewV3().Set(&s.capP0))
		p1 := t.App(lin.NewV3().Set(&s.capP1))
		box := aabbFromSphere(p0, s.capRadius+margin)
		return box.Union(aabbFromSphere(p1, s.capRadius+margin))
	case ShapeTriangle:
		a := t.App(lin.NewV3().Set(&s.triA))
		b := t.App(lin.NewV3().Set(&s.triB))
		c := t.App(lin.NewV3().Set(&s.triC))
		box := aabbFromPoint(a)
		box = box.Union(aabbFromPoint(b))
		box = box.Union(aabbFromPoint(c))
		return box.Fatten(margin)
	case ShapeHull:
		return s.hull.worldAABB(t).Fatten(margin)
	case ShapeMesh:
		return s.mesh.tree.root().box.Fatten(margin)
	}
	return AABB{}
}
