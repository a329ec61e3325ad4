// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"testing"

	"github.com/vex3d/vex/math/lin"
)

func TestComputeTOIHitsStationaryTarget(t *testing.T) {
	moving := NewSphereShape(0.5)
	target := NewSphereShape(0.5)
	startXf := identityTransform(lin.V3{X: -10})
	targetXf := identityTransform(lin.V3{})

	out := computeTOI(&moving, startXf, lin.V3{X: 20}, &target, targetXf)
	if !out.Hit {
		t.Fatal("expected a sphere swept straight through another to register a hit")
	}
	if out.T <= 0 || out.T >= 1 {
		t.Errorf("expected the time of impact fraction to land strictly within (0,1), got %f", out.T)
	}
}

func TestComputeTOIMissesWhenPathClears(t *testing.T) {
	moving := NewSphereShape(0.5)
	target := NewSphereShape(0.5)
	startXf := identityTransform(lin.V3{X: -10, Y: 20})
	targetXf := identityTransform(lin.V3{})

	out := computeTOI(&moving, startXf, lin.V3{X: 20}, &target, targetXf)
	if out.Hit {
		t.Error("expected a sweep that passes nowhere near the target to report no hit")
	}
	if out.T != 1 {
		t.Errorf("expected a miss to report T=1, got %f", out.T)
	}
}

func TestComputeTOIZeroDisplacementIsNoHit(t *testing.T) {
	moving := NewSphereShape(0.5)
	target := NewSphereShape(0.5)
	startXf := identityTransform(lin.V3{})
	targetXf := identityTransform(lin.V3{X: 5})

	out := computeTOI(&moving, startXf, lin.V3{}, &target, targetXf)
	if out.Hit || out.T != 1 {
		t.Error("expected zero displacement to be treated as an immediate non-hit")
	}
}
