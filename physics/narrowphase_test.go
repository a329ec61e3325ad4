// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"testing"

	"github.com/vex3d/vex/math/lin"
)

func TestCollideShapesSphereSphereOverlap(t *testing.T) {
	a, b := NewSphereShape(1), NewSphereShape(1)
	cache := &gjkSimplex{}
	contacts := collideShapes(&a, identityTransform(lin.V3{}), &b, identityTransform(lin.V3{X: 1.5}), cache)
	if len(contacts) == 0 {
		t.Fatal("expected overlapping spheres to produce a contact")
	}
	if contacts[0].depth <= 0 {
		t.Errorf("expected positive penetration depth, got %f", contacts[0].depth)
	}
}

func TestCollideShapesSphereSphereSeparated(t *testing.T) {
	a, b := NewSphereShape(1), NewSphereShape(1)
	cache := &gjkSimplex{}
	contacts := collideShapes(&a, identityTransform(lin.V3{}), &b, identityTransform(lin.V3{X: 10}), cache)
	if len(contacts) != 0 {
		t.Errorf("expected far-apart spheres to produce no contact, got %d", len(contacts))
	}
}

func TestCollideShapesSphereCapsuleGeneric(t *testing.T) {
	sphere := NewSphereShape(0.5)
	capsule := NewCapsuleShape(lin.V3{Y: -1}, lin.V3{Y: 1}, 0.5)
	cache := &gjkSimplex{}
	contacts := collideShapes(&sphere, identityTransform(lin.V3{X: 0.8}), &capsule, identityTransform(lin.V3{}), cache)
	if len(contacts) == 0 {
		t.Fatal("expected an overlapping sphere-capsule pair to produce a contact via the generic GJK/EPA path")
	}
}

func TestCollideShapesMeshDispatchesPerTriangle(t *testing.T) {
	verts := []lin.V3{
		{X: -10, Y: 0, Z: -10},
		{X: 10, Y: 0, Z: -10},
		{X: 0, Y: 0, Z: 10},
	}
	mesh, err := NewMesh(verts, []int32{0, 1, 2})
	if err != nil {
		t.Fatalf("unexpected error building mesh: %v", err)
	}
	meshShape := NewMeshShape(mesh)
	sphere := NewSphereShape(0.5)
	cache := &gjkSimplex{}

	contacts := collideShapes(&meshShape, identityTransform(lin.V3{}), &sphere, identityTransform(lin.V3{Y: 0.3}), cache)
	if len(contacts) == 0 {
		t.Fatal("expected a sphere resting on the mesh plane to produce a contact")
	}
}
