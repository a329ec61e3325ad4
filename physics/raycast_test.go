// Copyright © 2014-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"testing"

	"github.com/vex3d/vex/math/lin"
)

func TestRayCastSphereHitsFromOutside(t *testing.T) {
	out := rayCastSphere(lin.V3{X: -5}, lin.V3{X: 1}, 1, 10)
	if !out.Hit {
		t.Fatal("expected a ray through the sphere's center to hit")
	}
	if out.Fraction <= 0 || out.Fraction >= 10 {
		t.Errorf("expected the hit fraction to land on the near side of the sphere, got %f", out.Fraction)
	}
}

func TestRayCastSphereMissesWhenPastMaxFraction(t *testing.T) {
	out := rayCastSphere(lin.V3{X: -5}, lin.V3{X: 1}, 1, 2)
	if out.Hit {
		t.Error("expected the ray to be clipped before reaching the sphere")
	}
}

func TestRayCastSphereMissesWhenFacingAway(t *testing.T) {
	out := rayCastSphere(lin.V3{X: -5}, lin.V3{X: -1}, 1, 10)
	if out.Hit {
		t.Error("expected a ray pointing away from the sphere to miss")
	}
}

func TestRayCastCapsuleHitsCylinderBody(t *testing.T) {
	// capsule segment runs along Y from -1 to 1, radius 0.5; ray crosses it
	// perpendicular to the axis at the segment's midpoint.
	out := rayCastCapsule(lin.V3{X: -5}, lin.V3{X: 1}, lin.V3{Y: -1}, lin.V3{Y: 1}, 0.5, 10)
	if !out.Hit {
		t.Fatal("expected a ray crossing the capsule's cylindrical body to hit")
	}
}

func TestRayCastCapsuleHitsEndCap(t *testing.T) {
	// ray fired straight down the axis should land on the near end cap.
	out := rayCastCapsule(lin.V3{Y: -5}, lin.V3{Y: 1}, lin.V3{Y: -1}, lin.V3{Y: 1}, 0.5, 10)
	if !out.Hit {
		t.Fatal("expected a ray fired along the capsule's axis to hit an end cap")
	}
}

func TestRayCastCapsuleMissesWhenOffsetBeyondRadius(t *testing.T) {
	out := rayCastCapsule(lin.V3{X: -5, Z: 5}, lin.V3{X: 1}, lin.V3{Y: -1}, lin.V3{Y: 1}, 0.5, 10)
	if out.Hit {
		t.Error("expected a ray offset well beyond the capsule's radius to miss")
	}
}

func TestRayCastTriangleHitsInteriorPoint(t *testing.T) {
	a := lin.V3{X: -1, Z: -1}
	b := lin.V3{X: 1, Z: -1}
	c := lin.V3{Z: 1}
	out := rayCastTriangle(lin.V3{Y: 5}, lin.V3{Y: -1}, a, b, c, 10)
	if !out.Hit {
		t.Fatal("expected a ray dropping straight down through the triangle's interior to hit")
	}
	if out.Fraction <= 0 {
		t.Errorf("expected a positive hit fraction, got %f", out.Fraction)
	}
}

func TestRayCastTriangleMissesOutsideEdges(t *testing.T) {
	a := lin.V3{X: -1, Z: -1}
	b := lin.V3{X: 1, Z: -1}
	c := lin.V3{Z: 1}
	out := rayCastTriangle(lin.V3{X: 5, Y: 5}, lin.V3{Y: -1}, a, b, c, 10)
	if out.Hit {
		t.Error("expected a ray well outside the triangle's footprint to miss")
	}
}

func TestRayCastHullHitsNearFaceFirst(t *testing.T) {
	h := boxHull(t, 0.5)
	out := rayCastHull(lin.V3{X: -5}, lin.V3{X: 1}, h, 10)
	if !out.Hit {
		t.Fatal("expected a ray through the box hull to hit")
	}
	want := -0.5
	if out.Point.X < want-0.01 || out.Point.X > want+0.01 {
		t.Errorf("expected the hit point on the near face at x=%f, got %v", want, out.Point)
	}
}

func TestRayCastHullMissesWhenOffsetOutsideExtent(t *testing.T) {
	h := boxHull(t, 0.5)
	out := rayCastHull(lin.V3{X: -5, Y: 5}, lin.V3{X: 1}, h, 10)
	if out.Hit {
		t.Error("expected a ray passing above the hull's extent to miss")
	}
}

func TestRayCastMeshDispatchesToNearestTriangle(t *testing.T) {
	verts := []lin.V3{
		{X: -10, Y: 0, Z: -10},
		{X: 10, Y: 0, Z: -10},
		{X: 0, Y: 0, Z: 10},
	}
	mesh, err := NewMesh(verts, []int32{0, 1, 2})
	if err != nil {
		t.Fatalf("unexpected error building mesh: %v", err)
	}

	out := rayCastMesh(lin.V3{Y: 5}, lin.V3{Y: -1}, mesh, 10)
	if !out.Hit {
		t.Fatal("expected a ray dropping through the mesh plane to hit")
	}
	if out.Fraction <= 4 || out.Fraction >= 6 {
		t.Errorf("expected the hit fraction near 5 (plane at y=0), got %f", out.Fraction)
	}
}

func TestRayCastMeshMissesOutsideCoveredArea(t *testing.T) {
	verts := []lin.V3{
		{X: -10, Y: 0, Z: -10},
		{X: 10, Y: 0, Z: -10},
		{X: 0, Y: 0, Z: 10},
	}
	mesh, err := NewMesh(verts, []int32{0, 1, 2})
	if err != nil {
		t.Fatalf("unexpected error building mesh: %v", err)
	}

	out := rayCastMesh(lin.V3{X: 100, Y: 5}, lin.V3{Y: -1}, mesh, 10)
	if out.Hit {
		t.Error("expected a ray far outside the mesh's footprint to miss")
	}
}

func TestRayCastShapeTransformsHitIntoWorldSpace(t *testing.T) {
	sphere := NewSphereShape(1)
	xf := identityTransform(lin.V3{X: 5})

	out := rayCastShape(&sphere, xf, RayCastInput{
		Origin:      lin.V3{X: -5},
		Direction:   lin.V3{X: 1},
		MaxFraction: 20,
	})
	if !out.Hit {
		t.Fatal("expected the ray to hit the translated sphere")
	}
	if out.Point.X < 3.5 || out.Point.X > 4.5 {
		t.Errorf("expected the hit point near the sphere's near surface at x=4, got %v", out.Point)
	}
}
