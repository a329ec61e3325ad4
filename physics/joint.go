// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"math"

	"github.com/vex3d/vex/math/lin"
)

// JointKind enumerates the constraint types a Joint can express. Point-to-
// point anchor math is grounded in the original's
// calculate_positional_constraint_preprocessed_data/positional_constraint_apply
// pair; this package re-expresses it as a sequential-impulse velocity
// constraint (plus a position-bias pass) instead of the original's XPBD
// compliance/lambda formulation, per this engine's solver design.
type JointKind int

const (
	DistanceJoint JointKind = iota // fixed distance between two anchors; a rope is a chain of these.
	PointJoint                     // anchors coincide (a ball-and-socket).
	WeldJoint                      // anchors and orientations coincide.
	RevoluteJoint                  // anchors coincide, one relative rotation axis is free.
	MouseJoint                     // single dynamic body's anchor is softly pulled to a world target.
)

// JointDef is the parameter object passed to World.CreateJoint.
type JointDef struct {
	Kind JointKind

	BodyA, BodyB BodyID
	LocalAnchorA lin.V3
	LocalAnchorB lin.V3

	// RevoluteJoint: the hinge axis, in bodyA-local space.
	LocalAxisA lin.V3

	// DistanceJoint: rest length; zero means "compute from initial anchors".
	Length float64

	// MouseJoint: the body is pulled toward Target (world space). BodyB is
	// unused; BodyA is the controlled body.
	Target lin.V3

	// Softness: 0 is fully rigid. Read only by MouseJoint, whose prepare
	// step adds it to the diagonal of the effective-mass matrix K, trading
	// rigidity for stability. DistanceJoint does not read it.
	Softness float64

	UserData any
}

// Joint is the engine-internal live constraint. Kept separate from
// JointDef (which is just the immutable recipe) the way Fixture/FixtureDef
// split a definition from its runtime counterpart.
type Joint struct {
	id  JointID
	def JointDef

	bodyA, bodyB *body // resolved once per Step by resolveBodies before solving.

	// Accumulated impulses, carried across velocity iterations within a
	// step for warm starting the next step, the same role
	// ManifoldPoint.NormalImpulse plays for contacts.
	linearImpulse  lin.V3
	angularImpulse lin.V3

	rA, rB lin.V3 // world anchor offsets from each body's center, set in prepare.
	mass   lin.M3 // effective mass matrix for the linear part of the constraint.
}

func newJoint(id JointID, def JointDef) *Joint {
	return &Joint{id: id, def: def}
}

// resolveBodies binds the joint to this step's body pointers; must be
// called before prepare/warmStart/solveVelocity/solvePosition.
func (j *Joint) resolveBodies(bodyA, bodyB *body) {
	j.bodyA, j.bodyB = bodyA, bodyB
}

func (j *Joint) worldAnchorA() lin.V3 { return worldVertex(j.def.LocalAnchorA, &j.bodyA.xf) }
func (j *Joint) worldAnchorB() lin.V3 {
	if j.def.Kind == MouseJoint {
		return j.def.Target
	}
	return worldVertex(j.def.LocalAnchorB, &j.bodyB.xf)
}

// prepare computes this step's Jacobian/effective-mass data, ported from
// calculate_positional_constraint_preprocessed_data's role of caching
// r1_wc/r2_wc and the inverse inertia tensors once per solve rather than
// per iteration.
func (j *Joint) prepare(dt float64) {
	anchorA, anchorB := j.worldAnchorA(), j.worldAnchorB()
	j.rA = *lin.NewV3().Sub(&anchorA, j.bodyA.xf.Loc)
	if j.def.Kind != MouseJoint {
		j.rB = *lin.NewV3().Sub(&anchorB, j.bodyB.xf.Loc)
	}

	skewA := lin.NewM3().SetSkewSym(&j.rA)
	k := lin.NewM3().Mult(skewA, &j.bodyA.invInertiaWorld)
	k.Mult(k, skewA)
	k.Scale(-1)
	k.Xx += j.bodyA.invMass
	k.Yy += j.bodyA.invMass
	k.Zz += j.bodyA.invMass

	if j.def.Kind != MouseJoint {
		skewB := lin.NewM3().SetSkewSym(&j.rB)
		kb := lin.NewM3().Mult(skewB, &j.bodyB.invInertiaWorld)
		kb.Mult(kb, skewB)
		kb.Scale(-1)
		kb.Xx += j.bodyB.invMass
		kb.Yy += j.bodyB.invMass
		kb.Zz += j.bodyB.invMass
		k.Add(k, kb)
	}
	if j.def.Kind == MouseJoint && j.def.Softness > 0 {
		k.Xx += j.def.Softness
		k.Yy += j.def.Softness
		k.Zz += j.def.Softness
	}
	j.mass.Inv(k)
}

func (j *Joint) warmStart() {
	if j.def.Kind == MouseJoint {
		applyMouseImpulse(j, j.linearImpulse)
		return
	}
	applyContactImpulse(j.bodyA, j.bodyB, j.rA, j.rB, *lin.NewV3().Scale(&j.linearImpulse, -1))
}

// solveVelocity enforces zero relative velocity at the anchor points
// (DistanceJoint projects this onto the anchor separation axis instead of
// constraining all three components), the velocity-level analogue of
// positional_constraint_get_delta_lambda/positional_constraint_apply. Reuses
// relativeVelocity/applyContactImpulse so a joint impulse follows the exact
// same sign convention as a contact's normal impulse.
func (j *Joint) solveVelocity() {
	switch j.def.Kind {
	case DistanceJoint:
		j.solveDistanceVelocity()
	case MouseJoint:
		j.solveMouseVelocity()
	default:
		j.solvePointVelocity()
	}
}

func (j *Joint) solvePointVelocity() {
	cdot := relativeVelocity(j.bodyA, j.bodyB, j.rA, j.rB)
	impulse := lin.NewV3().MultMv(&j.mass, lin.NewV3().Scale(&cdot, -1))
	j.linearImpulse.Add(&j.linearImpulse, impulse)
	applyContactImpulse(j.bodyA, j.bodyB, j.rA, j.rB, *lin.NewV3().Scale(impulse, -1))
}

func (j *Joint) solveMouseVelocity() {
	vel := lin.NewV3().Cross(&j.bodyA.angVel, &j.rA)
	vel.Add(vel, &j.bodyA.linVel)
	impulse := lin.NewV3().MultMv(&j.mass, lin.NewV3().Scale(vel, -1))
	j.linearImpulse.Add(&j.linearImpulse, impulse)
	applyMouseImpulse(j, *impulse)
}

func applyMouseImpulse(j *Joint, impulse lin.V3) {
	if !j.bodyA.movable() {
		return
	}
	j.bodyA.linVel.X += impulse.X * j.bodyA.invMass
	j.bodyA.linVel.Y += impulse.Y * j.bodyA.invMass
	j.bodyA.linVel.Z += impulse.Z * j.bodyA.invMass
	angImpulse := lin.NewV3().Cross(&j.rA, &impulse)
	delta := lin.NewV3().MultMv(&j.bodyA.invInertiaWorld, angImpulse)
	j.bodyA.angVel.Add(&j.bodyA.angVel, delta)
}

func (j *Joint) solveDistanceVelocity() {
	anchorA, anchorB := j.worldAnchorA(), j.worldAnchorB()
	axis := lin.NewV3().Sub(&anchorA, &anchorB)
	length := axis.Len()
	if length < lin.Epsilon {
		return
	}
	axis.Scale(axis, 1.0/length)

	rv := relativeVelocity(j.bodyA, j.bodyB, j.rA, j.rB)
	cdot := rv.Dot(axis)
	mass := effectiveMass(j.bodyA, j.bodyB, j.rA, j.rB, *axis)
	lambda := -mass * cdot
	j.linearImpulse.Add(&j.linearImpulse, lin.NewV3().Scale(axis, lambda))
	impulse := lin.NewV3().Scale(axis, -lambda)
	applyContactImpulse(j.bodyA, j.bodyB, j.rA, j.rB, *impulse)
}

// solvePosition runs a single Gauss-Seidel position correction, ported from
// positional_constraint_apply's direct position/orientation nudging
// (generalized here from the original's XPBD delta_lambda accumulator to a
// plain Baumgarte-style fractional correction, consistent with how
// solveContactPosition in solver.go handles contacts instead of carrying a
// second split-impulse channel).
func (j *Joint) solvePosition() float64 {
	anchorA, anchorB := j.worldAnchorA(), j.worldAnchorB()
	switch j.def.Kind {
	case DistanceJoint:
		return j.solveDistancePosition(anchorA, anchorB)
	default:
		return j.solvePointPosition(anchorA, anchorB)
	}
}

func (j *Joint) solvePointPosition(anchorA, anchorB lin.V3) float64 {
	c := lin.NewV3().Sub(&anchorA, &anchorB)
	errLen := c.Len()
	if errLen < linearSlop {
		return errLen
	}
	rA := *lin.NewV3().Sub(&anchorA, j.bodyA.xf.Loc)
	var rB lin.V3
	if j.def.Kind != MouseJoint {
		rB = *lin.NewV3().Sub(&anchorB, j.bodyB.xf.Loc)
	}
	k := lin.NewM3().SetSkewSym(&rA)
	invA := lin.NewM3().Mult(k, &j.bodyA.invInertiaWorld)
	invA.Mult(invA, k)
	invA.Scale(-1)
	invA.Xx += j.bodyA.invMass
	invA.Yy += j.bodyA.invMass
	invA.Zz += j.bodyA.invMass
	if j.def.Kind != MouseJoint {
		kb := lin.NewM3().SetSkewSym(&rB)
		invB := lin.NewM3().Mult(kb, &j.bodyB.invInertiaWorld)
		invB.Mult(invB, kb)
		invB.Scale(-1)
		invB.Xx += j.bodyB.invMass
		invB.Yy += j.bodyB.invMass
		invB.Zz += j.bodyB.invMass
		invA.Add(invA, invB)
	}
	massMatrix := lin.NewM3().Inv(invA)
	// c = anchorA - anchorB; pushing A along +impulse and B along -impulse
	// shrinks c, matching solveContactPosition's bodyA+=/bodyB-= convention.
	impulse := lin.NewV3().MultMv(massMatrix, lin.NewV3().Scale(c, -baumgarte))

	if j.bodyA.movable() {
		j.bodyA.xf.Loc.X += impulse.X * j.bodyA.invMass
		j.bodyA.xf.Loc.Y += impulse.Y * j.bodyA.invMass
		j.bodyA.xf.Loc.Z += impulse.Z * j.bodyA.invMass
		rot := lin.NewV3().MultMv(&j.bodyA.invInertiaWorld, lin.NewV3().Cross(&rA, impulse))
		applyRotationCorrection(j.bodyA, rot)
	}
	if j.def.Kind != MouseJoint && j.bodyB.movable() {
		j.bodyB.xf.Loc.X -= impulse.X * j.bodyB.invMass
		j.bodyB.xf.Loc.Y -= impulse.Y * j.bodyB.invMass
		j.bodyB.xf.Loc.Z -= impulse.Z * j.bodyB.invMass
		rot := lin.NewV3().MultMv(&j.bodyB.invInertiaWorld, lin.NewV3().Cross(&rB, impulse))
		rot.Neg(rot)
		applyRotationCorrection(j.bodyB, rot)
	}
	return errLen
}

func (j *Joint) solveDistancePosition(anchorA, anchorB lin.V3) float64 {
	axis := lin.NewV3().Sub(&anchorA, &anchorB)
	length := axis.Len()
	target := j.def.Length
	errLen := math.Abs(length - target)
	if errLen < linearSlop || length < lin.Epsilon {
		return errLen
	}
	axis.Scale(axis, 1.0/length)
	c := length - target

	rA := *lin.NewV3().Sub(&anchorA, j.bodyA.xf.Loc)
	rB := *lin.NewV3().Sub(&anchorB, j.bodyB.xf.Loc)
	mass := effectiveMass(j.bodyA, j.bodyB, rA, rB, *axis)
	if mass == 0 {
		return errLen
	}
	impulse := lin.NewV3().Scale(axis, -baumgarte*c*mass)

	if j.bodyA.movable() {
		j.bodyA.xf.Loc.X += impulse.X * j.bodyA.invMass
		j.bodyA.xf.Loc.Y += impulse.Y * j.bodyA.invMass
		j.bodyA.xf.Loc.Z += impulse.Z * j.bodyA.invMass
		rot := lin.NewV3().MultMv(&j.bodyA.invInertiaWorld, lin.NewV3().Cross(&rA, impulse))
		applyRotationCorrection(j.bodyA, rot)
	}
	if j.bodyB.movable() {
		j.bodyB.xf.Loc.X -= impulse.X * j.bodyB.invMass
		j.bodyB.xf.Loc.Y -= impulse.Y * j.bodyB.invMass
		j.bodyB.xf.Loc.Z -= impulse.Z * j.bodyB.invMass
		rot := lin.NewV3().MultMv(&j.bodyB.invInertiaWorld, lin.NewV3().Cross(&rB, impulse))
		rot.Neg(rot)
		applyRotationCorrection(j.bodyB, rot)
	}
	return errLen
}
