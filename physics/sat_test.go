// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"testing"

	"github.com/vex3d/vex/math/lin"
)

// boxHull builds an axis-aligned half-extent cube with outward-facing
// winding, used as the simplest possible SAT test fixture.
func boxHull(t *testing.T, half float64) *Hull {
	t.Helper()
	v := []lin.V3{
		{X: -half, Y: -half, Z: -half}, // 0
		{X: half, Y: -half, Z: -half},  // 1
		{X: half, Y: half, Z: -half},   // 2
		{X: -half, Y: half, Z: -half},  // 3
		{X: -half, Y: -half, Z: half},  // 4
		{X: half, Y: -half, Z: half},   // 5
		{X: half, Y: half, Z: half},    // 6
		{X: -half, Y: half, Z: half},   // 7
	}
	faces := [][]int32{
		{0, 3, 2, 1}, // -Z
		{4, 5, 6, 7}, // +Z
		{0, 4, 7, 3}, // -X
		{1, 2, 6, 5}, // +X
		{0, 1, 5, 4}, // -Y
		{3, 7, 6, 2}, // +Y
	}
	h, err := NewHull(v, faces)
	if err != nil {
		t.Fatalf("unexpected error building a box hull: %v", err)
	}
	return h
}

func TestWorldVertexAppliesTransform(t *testing.T) {
	xf := identityTransform(lin.V3{X: 1, Y: 2, Z: 3})
	got := worldVertex(lin.V3{X: 1}, xf)
	want := lin.V3{X: 2, Y: 2, Z: 3}
	if !got.Eq(&want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestFaceSeparationOfOverlappingBoxesIsNegative(t *testing.T) {
	a := boxHull(t, 0.5)
	b := boxHull(t, 0.5)
	xfA := identityTransform(lin.V3{})
	xfB := identityTransform(lin.V3{X: 0.2})

	sep, _ := faceSeparation(a, xfA, b, xfB)
	if sep >= 0 {
		t.Errorf("expected overlapping boxes to report negative separation, got %f", sep)
	}
}

func TestFaceSeparationOfDisjointBoxesIsPositive(t *testing.T) {
	a := boxHull(t, 0.5)
	b := boxHull(t, 0.5)
	xfA := identityTransform(lin.V3{})
	xfB := identityTransform(lin.V3{X: 5})

	sep, _ := faceSeparation(a, xfA, b, xfB)
	if sep <= 0 {
		t.Errorf("expected disjoint boxes to report positive separation, got %f", sep)
	}
}

func TestSatHullHullFindsOverlappingBoxContact(t *testing.T) {
	a := boxHull(t, 0.5)
	b := boxHull(t, 0.5)
	xfA := identityTransform(lin.V3{})
	xfB := identityTransform(lin.V3{X: 0.9})

	contacts, found := satHullHull(a, xfA, b, xfB)
	if !found {
		t.Fatal("expected overlapping boxes to produce a SAT contact")
	}
	if len(contacts) == 0 {
		t.Error("expected at least one manifold point")
	}
}

func TestSatHullHullRejectsDisjointBoxes(t *testing.T) {
	a := boxHull(t, 0.5)
	b := boxHull(t, 0.5)
	xfA := identityTransform(lin.V3{})
	xfB := identityTransform(lin.V3{X: 5})

	_, found := satHullHull(a, xfA, b, xfB)
	if found {
		t.Error("expected disjoint boxes to report no SAT contact")
	}
}
