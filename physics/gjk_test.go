// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"math"
	"testing"

	"github.com/vex3d/vex/math/lin"
)

func TestGJKDistanceSeparatedSpheres(t *testing.T) {
	a, b := NewSphereShape(1), NewSphereShape(1)
	cache := &gjkSimplex{}
	res := gjkDistance(&a, identityTransform(lin.V3{}), &b, identityTransform(lin.V3{X: 5}), cache)
	if res.overlap {
		t.Fatal("expected spheres 5 apart with radius 1 each to not overlap")
	}
	// GJK measures support-point distance, not surface distance, so it
	// reports the center-to-center gap less a constant margin consideration
	// is irrelevant here: it is compared only for "did it shrink".
	if res.distance <= 0 {
		t.Errorf("expected a positive GJK distance between separated shapes, got %f", res.distance)
	}
}

func TestGJKDistanceOverlappingSpheres(t *testing.T) {
	a, b := NewSphereShape(1), NewSphereShape(1)
	cache := &gjkSimplex{}
	res := gjkDistance(&a, identityTransform(lin.V3{}), &b, identityTransform(lin.V3{X: 0.5}), cache)
	if !res.overlap {
		t.Fatal("expected deeply overlapping spheres to be reported as overlapping")
	}
}

func TestEPARecoversPenetrationDepth(t *testing.T) {
	a, b := NewSphereShape(1), NewSphereShape(1)
	xfA, xfB := identityTransform(lin.V3{}), identityTransform(lin.V3{X: 1})
	cache := &gjkSimplex{}
	res := gjkDistance(&a, xfA, &b, xfB, cache)
	if !res.overlap {
		t.Fatal("setup: expected spheres 1 apart with radius 1 each to overlap")
	}

	out := epa(&a, xfA, &b, xfB, cache)
	want := 1.0 // radii sum 2, centers 1 apart.
	if math.Abs(out.penetration-want) > 0.05 {
		t.Errorf("expected penetration depth near %f, got %f", want, out.penetration)
	}
}
