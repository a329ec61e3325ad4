// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"math"
	"testing"

	"github.com/vex3d/vex/math/lin"
)

func TestSphereVolume(t *testing.T) {
	s := NewSphereShape(1.25)
	want := 4.0 / 3.0 * math.Pi * 1.25 * 1.25 * 1.25
	if !lin.Aeq(s.Volume(), want) {
		t.Errorf("expected sphere volume %f, got %f", want, s.Volume())
	}
}

func TestSphereInertia(t *testing.T) {
	s, inertia := NewSphereShape(1), lin.NewV3()
	s.Inertia(1, inertia)
	if !lin.Aeq(inertia.X, 0.4) || !lin.Aeq(inertia.Y, 0.4) || !lin.Aeq(inertia.Z, 0.4) {
		t.Errorf("expected unit sphere inertia {0.4 0.4 0.4}, got %v", inertia)
	}
}

func TestSphereAABB(t *testing.T) {
	s := NewSphereShape(1)
	xf := lin.NewT().SetVQ(lin.NewV3(), lin.QI)
	box := s.AABB(xf, 0.01)
	if box.Min.X != -1.01 || box.Max.X != 1.01 {
		t.Errorf("expected fattened sphere bounds, got %v", box)
	}
}

func TestCapsuleVolume(t *testing.T) {
	c := NewCapsuleShape(lin.V3{}, lin.V3{Y: 2}, 0.5)
	cyl := math.Pi * 0.5 * 0.5 * 2
	cap := 4.0 / 3.0 * math.Pi * 0.5 * 0.5 * 0.5
	if !lin.Aeq(c.Volume(), cyl+cap) {
		t.Errorf("expected capsule volume %f, got %f", cyl+cap, c.Volume())
	}
}

func TestTriangleHasNoVolumeOrMass(t *testing.T) {
	tri := NewTriangleShape(lin.V3{}, lin.V3{X: 1}, lin.V3{Y: 1})
	if tri.Volume() != 0 {
		t.Error("expected zero-thickness triangle to have zero volume")
	}
	inertia := lin.NewV3()
	tri.Inertia(1, inertia)
	if inertia.X != 0 || inertia.Y != 0 || inertia.Z != 0 {
		t.Error("expected triangle inertia to be zero")
	}
}

func TestShapeKindString(t *testing.T) {
	cases := map[ShapeKind]string{
		ShapeSphere:   "sphere",
		ShapeCapsule:  "capsule",
		ShapeTriangle: "triangle",
		ShapeHull:     "hull",
		ShapeMesh:     "mesh",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	}
}
