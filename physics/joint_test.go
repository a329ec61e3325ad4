// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"math"
	"testing"

	"github.com/vex3d/vex/math/lin"
)

func newDynamicBody(pos lin.V3) *body {
	def := DefaultBodyDef()
	def.Position = pos
	b := newBodyState(BodyID{index: 0, generation: 1}, def)
	b.computeMass(nil)
	b.updateInvInertiaWorld()
	return b
}

func TestPointJointVelocitySolveZeroesAnchorSeparation(t *testing.T) {
	a := newDynamicBody(lin.V3{})
	b := newDynamicBody(lin.V3{X: 1})
	a.linVel = lin.V3{X: -1}
	b.linVel = lin.V3{X: 1}

	j := newJoint(JointID{index: 0, generation: 1}, JointDef{Kind: PointJoint})
	j.resolveBodies(a, b)

	beforeVel := relativeVelocity(a, b, lin.V3{}, lin.V3{})
	before := beforeVel.Len()
	j.prepare(1.0 / 60.0)
	j.solveVelocity()
	afterVel := relativeVelocity(a, b, lin.V3{}, lin.V3{})
	after := afterVel.Len()

	if after >= before {
		t.Errorf("expected the velocity solve to reduce anchor-relative speed, got before=%f after=%f", before, after)
	}
}

func TestPointJointPositionCorrectionReducesError(t *testing.T) {
	a := newDynamicBody(lin.V3{})
	b := newDynamicBody(lin.V3{X: 1})

	j := newJoint(JointID{index: 0, generation: 1}, JointDef{Kind: PointJoint})
	j.resolveBodies(a, b)

	initialErr := j.solvePosition()
	for i := 0; i < 50; i++ {
		j.solvePosition()
	}
	finalErr := j.solvePosition()

	if finalErr >= initialErr {
		t.Errorf("expected position error to shrink across iterations, got initial=%f final=%f", initialErr, finalErr)
	}
}

func TestDistanceJointMaintainsRestLength(t *testing.T) {
	a := newDynamicBody(lin.V3{})
	b := newDynamicBody(lin.V3{X: 2})

	j := newJoint(JointID{index: 0, generation: 1}, JointDef{Kind: DistanceJoint, Length: 1.0})
	j.resolveBodies(a, b)

	for i := 0; i < 200; i++ {
		j.solvePosition()
	}

	dist := lin.NewV3().Sub(a.xf.Loc, b.xf.Loc).Len()
	if math.Abs(dist-1.0) > 0.05 {
		t.Errorf("expected bodies to settle near rest length 1.0, got %f", dist)
	}
}

func TestMouseJointPullsBodyTowardTarget(t *testing.T) {
	a := newDynamicBody(lin.V3{})
	target := lin.V3{X: 5}

	j := newJoint(JointID{index: 0, generation: 1}, JointDef{Kind: MouseJoint, Target: target, Softness: 0.01})
	j.resolveBodies(a, nil)

	for i := 0; i < 60; i++ {
		j.prepare(1.0 / 60.0)
		j.solveVelocity()
	}

	if a.linVel.X <= 0 {
		t.Errorf("expected the mouse-joint body to accelerate toward its target, got linVel.X=%f", a.linVel.X)
	}
}
