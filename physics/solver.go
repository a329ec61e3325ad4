// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"math"

	"github.com/vex3d/vex/math/lin"
)

// jointConstraint is the interface solver.go needs from a joint so this
// file stays decoupled from joint.go's concrete types, the way the
// original's solverConstraint stayed decoupled from *contactPair.
type jointConstraint interface {
	prepare(dt float64)
	warmStart()
	solveVelocity()
	solvePosition() float64 // returns remaining positional error.
}

// contactVelocityConstraint is the per-point working state the velocity
// solver iterates over, generalizing the original solverConstraint (there
// one struct served both contact and friction rows; here normal and both
// tangent rows for a point live together since every contact now carries
// its own persistent ManifoldPoint rather than being pooled).
type contactVelocityConstraint struct {
	bodyA, bodyB *body
	point        *ManifoldPoint

	rA, rB lin.V3 // world-space offsets from each body's center to the contact point.

	normalMass    float64
	tangentMass   [2]float64
	velocityBias  float64 // restitution target relative normal speed.
}

// solveVelocityConstraints runs the sequential-impulse (Projected
// Gauss-Seidel) velocity pass over every touching, non-sensor contact plus
// every joint, for velocityIterations rounds, warm-starting from each
// point's carried-over impulse. Ported from the structure of the original
// solver.solve/solveIterations/solveSingleIteration, generalized from the
// original's pooled solverBody/solverConstraint arrays (rebuilt fresh every
// step from a fixed-size contact/friction pair) to building one
// contactVelocityConstraint per live ManifoldPoint plus whatever joints are
// passed in.
func solveVelocityConstraints(contacts []*Contact, bodyOf func(BodyID) *body, joints []jointConstraint, dt float64) {
	var vcs []contactVelocityConstraint
	for _, c := range contacts {
		if !c.Touching || c.IsSensor {
			continue
		}
		bodyA, bodyB := bodyOf(c.BodyA), bodyOf(c.BodyB)
		for m := range c.Manifolds {
			for i := range c.Manifolds[m].Points {
				vcs = append(vcs, prepareContactConstraint(bodyA, bodyB, &c.Manifolds[m].Points[i]))
			}
		}
	}
	for i := range vcs {
		warmStartContact(&vcs[i])
	}
	for _, j := range joints {
		j.prepare(dt)
		j.warmStart()
	}

	for iter := 0; iter < velocityIterations; iter++ {
		for _, j := range joints {
			j.solveVelocity()
		}
		for i := range vcs {
			solveFrictionConstraint(&vcs[i])
		}
		for i := range vcs {
			solveNormalConstraint(&vcs[i])
		}
	}
}

// solvePositionConstraints runs the pseudo-velocity (split-impulse) position
// pass: rather than biasing the velocity solve with Baumgarte stabilization
// (which injects energy), a small number of position-only correction passes
// directly nudge transforms apart along the contact normal, the role the
// original's resolveSplitPenetrationImpulse/pushVelocity/turnVelocity played
// via a separate pseudo-velocity accumulator layered under the same
// constraints; here it is simpler since it operates on transforms directly
// rather than a second velocity channel.
func solvePositionConstraints(contacts []*Contact, bodyOf func(BodyID) *body, joints []jointConstraint) {
	for iter := 0; iter < positionIterations; iter++ {
		for _, j := range joints {
			j.solvePosition()
		}
		for _, c := range contacts {
			if !c.Touching || c.IsSensor {
				continue
			}
			bodyA, bodyB := bodyOf(c.BodyA), bodyOf(c.BodyB)
			for m := range c.Manifolds {
				for i := range c.Manifolds[m].Points {
					solveContactPosition(bodyA, bodyB, &c.Manifolds[m].Points[i])
				}
			}
		}
	}
}

func prepareContactConstraint(bodyA, bodyB *body, point *ManifoldPoint) contactVelocityConstraint {
	vc := contactVelocityConstraint{bodyA: bodyA, bodyB: bodyB, point: point}
	vc.rA = *lin.NewV3().Sub(&point.WorldA, bodyA.xf.Loc)
	vc.rB = *lin.NewV3().Sub(&point.WorldB, bodyB.xf.Loc)

	vc.normalMass = effectiveMass(bodyA, bodyB, vc.rA, vc.rB, point.Normal)
	for k := 0; k < 2; k++ {
		vc.tangentMass[k] = effectiveMass(bodyA, bodyB, vc.rA, vc.rB, point.TangentDir[k])
	}

	relVel := relativeVelocity(bodyA, bodyB, vc.rA, vc.rB)
	closingSpeed := relVel.Dot(&point.Normal)
	if closingSpeed < -restitutionVMin {
		vc.velocityBias = -point.CombinedRestitution * closingSpeed
	}
	return vc
}

// effectiveMass computes 1/(mA^-1 + mB^-1 + angular terms) along dir, the
// same Jacobian-diagonal inverse the original's setupContactConstraint
// called jacDiagABInv.
func effectiveMass(bodyA, bodyB *body, rA, rB lin.V3, dir lin.V3) float64 {
	raXn := lin.NewV3().Cross(&rA, &dir)
	rbXn := lin.NewV3().Cross(&rB, &dir)
	angA := lin.NewV3().MultMv(&bodyA.invInertiaWorld, raXn).Dot(raXn)
	angB := lin.NewV3().MultMv(&bodyB.invInertiaWorld, rbXn).Dot(rbXn)
	denom := bodyA.invMass + bodyB.invMass + angA + angB
	if denom < lin.Epsilon {
		return 0
	}
	return 1.0 / denom
}

func relativeVelocity(bodyA, bodyB *body, rA, rB lin.V3) lin.V3 {
	va := lin.NewV3().Cross(&bodyA.angVel, &rA)
	va.Add(va, &bodyA.linVel)
	vb := lin.NewV3().Cross(&bodyB.angVel, &rB)
	vb.Add(vb, &bodyB.linVel)
	return *lin.NewV3().Sub(va, vb)
}

func warmStartContact(vc *contactVelocityConstraint) {
	impulse := lin.NewV3().Scale(&vc.point.Normal, vc.point.NormalImpulse)
	for k := 0; k < 2; k++ {
		t := lin.NewV3().Scale(&vc.point.TangentDir[k], vc.point.TangentImpulse[k])
		impulse.Add(impulse, t)
	}
	applyContactImpulse(vc.bodyA, vc.bodyB, vc.rA, vc.rB, *impulse)
}

// solveNormalConstraint is the PGS clamp-to-non-negative normal impulse
// update, ported from resolveSingleConstraint's non-friction branch.
func solveNormalConstraint(vc *contactVelocityConstraint) {
	if vc.normalMass == 0 {
		return
	}
	relVel := relativeVelocity(vc.bodyA, vc.bodyB, vc.rA, vc.rB)
	vn := relVel.Dot(&vc.point.Normal)
	lambda := vc.normalMass * (vc.velocityBias - vn)

	newImpulse := math.Max(vc.point.NormalImpulse+lambda, 0)
	delta := newImpulse - vc.point.NormalImpulse
	vc.point.NormalImpulse = newImpulse

	impulse := lin.NewV3().Scale(&vc.point.Normal, delta)
	applyContactImpulse(vc.bodyA, vc.bodyB, vc.rA, vc.rB, *impulse)
}

// solveFrictionConstraint clamps each tangent impulse to the Coulomb cone
// built from the current normal impulse, ported from
// resolveSingleConstraint's friction branch (which read lowerLimit/upperLimit
// from the paired contact constraint's accumulated impulse).
func solveFrictionConstraint(vc *contactVelocityConstraint) {
	maxFriction := vc.point.CombinedFriction * vc.point.NormalImpulse
	for k := 0; k < 2; k++ {
		if vc.tangentMass[k] == 0 {
			continue
		}
		relVel := relativeVelocity(vc.bodyA, vc.bodyB, vc.rA, vc.rB)
		vt := relVel.Dot(&vc.point.TangentDir[k])
		lambda := -vc.tangentMass[k] * vt

		old := vc.point.TangentImpulse[k]
		newImpulse := lin.Clamp(old+lambda, -maxFriction, maxFriction)
		delta := newImpulse - old
		vc.point.TangentImpulse[k] = newImpulse

		impulse := lin.NewV3().Scale(&vc.point.TangentDir[k], delta)
		applyContactImpulse(vc.bodyA, vc.bodyB, vc.rA, vc.rB, *impulse)
	}
}

func applyContactImpulse(bodyA, bodyB *body, rA, rB lin.V3, impulse lin.V3) {
	if bodyA.movable() {
		bodyA.linVel.X -= impulse.X * bodyA.invMass
		bodyA.linVel.Y -= impulse.Y * bodyA.invMass
		bodyA.linVel.Z -= impulse.Z * bodyA.invMass
		angImpulse := lin.NewV3().Cross(&rA, &impulse)
		delta := lin.NewV3().MultMv(&bodyA.invInertiaWorld, angImpulse)
		bodyA.angVel.Sub(&bodyA.angVel, delta)
	}
	if bodyB.movable() {
		bodyB.linVel.X += impulse.X * bodyB.invMass
		bodyB.linVel.Y += impulse.Y * bodyB.invMass
		bodyB.linVel.Z += impulse.Z * bodyB.invMass
		angImpulse := lin.NewV3().Cross(&rB, &impulse)
		delta := lin.NewV3().MultMv(&bodyB.invInertiaWorld, angImpulse)
		bodyB.angVel.Add(&bodyB.angVel, delta)
	}
}

// solveContactPosition applies one Baumgarte-free position correction,
// directly translating/rotating bodyA and bodyB apart along the contact
// normal by a fraction of the remaining penetration beyond linearSlop,
// capped at maxLinearCorr, the role the original's split-impulse
// pushVelocity/applyPushImpulse channel played while keeping true velocity
// untouched.
func solveContactPosition(bodyA, bodyB *body, point *ManifoldPoint) {
	rA := lin.NewV3().Sub(&point.WorldA, bodyA.xf.Loc)
	rB := lin.NewV3().Sub(&point.WorldB, bodyB.xf.Loc)
	worldA := lin.NewV3().Add(bodyA.xf.Loc, rA)
	worldB := lin.NewV3().Add(bodyB.xf.Loc, rB)
	separation := lin.NewV3().Sub(worldA, worldB).Dot(&point.Normal) - point.Depth

	c := lin.Clamp(baumgarte*(separation+linearSlop), -maxLinearCorr, 0)
	if c == 0 {
		return
	}
	mass := effectiveMass(bodyA, bodyB, *rA, *rB, point.Normal)
	if mass == 0 {
		return
	}
	impulse := lin.NewV3().Scale(&point.Normal, -c*mass)
	if bodyA.movable() {
		bodyA.xf.Loc.X += impulse.X * bodyA.invMass
		bodyA.xf.Loc.Y += impulse.Y * bodyA.invMass
		bodyA.xf.Loc.Z += impulse.Z * bodyA.invMass
		angImpulse := lin.NewV3().Cross(rA, impulse)
		rot := lin.NewV3().MultMv(&bodyA.invInertiaWorld, angImpulse)
		applyRotationCorrection(bodyA, rot)
	}
	if bodyB.movable() {
		bodyB.xf.Loc.X -= impulse.X * bodyB.invMass
		bodyB.xf.Loc.Y -= impulse.Y * bodyB.invMass
		bodyB.xf.Loc.Z -= impulse.Z * bodyB.invMass
		angImpulse := lin.NewV3().Cross(rB, impulse)
		rot := lin.NewV3().MultMv(&bodyB.invInertiaWorld, angImpulse)
		rot.Neg(rot)
		applyRotationCorrection(bodyB, rot)
	}
}

// applyRotationCorrection nudges a body's orientation by the small-angle
// quaternion corresponding to rot, clamping the magnitude the way the
// original capped a single-step split-impulse rotation via maxAngularCorr.
func applyRotationCorrection(b *body, rot *lin.V3) {
	if angle := rot.Len(); angle > maxAngularCorr {
		rot.Scale(rot, maxAngularCorr/angle)
	}
	dq := lin.Q{X: rot.X * 0.5, Y: rot.Y * 0.5, Z: rot.Z * 0.5, W: 0}
	sum := lin.NewQ().Mult(b.xf.Rot, &dq)
	b.xf.Rot.X += sum.X
	b.xf.Rot.Y += sum.Y
	b.xf.Rot.Z += sum.Z
	b.xf.Rot.W += sum.W
	b.xf.Rot.Unit()
	b.updateInvInertiaWorld()
}
