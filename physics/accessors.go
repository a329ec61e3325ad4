// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "github.com/vex3d/vex/math/lin"

// BodyTransform returns the body's current world transform.
func (w *World) BodyTransform(id BodyID) (lin.T, bool) {
	b := w.bodyPtr(id)
	if b == nil {
		return lin.T{}, false
	}
	return b.xf, true
}

// SetBodyTransform teleports a body to a new position/orientation, bypassing
// integration. Wakes the body and its fattened proxies follow on the next
// Step's moveProxies pass.
func (w *World) SetBodyTransform(id BodyID, position lin.V3, orientation lin.Q) bool {
	b := w.bodyPtr(id)
	if b == nil {
		return false
	}
	b.xf.SetVQ(&position, normalizedOrIdentity(orientation))
	b.prevXf.Set(&b.xf)
	b.updateInvInertiaWorld()
	w.WakeBody(id)
	return true
}

// BodyVelocity returns the body's current linear and angular velocity.
func (w *World) BodyVelocity(id BodyID) (linear, angular lin.V3, ok bool) {
	b := w.bodyPtr(id)
	if b == nil {
		return lin.V3{}, lin.V3{}, false
	}
	return b.linVel, b.angVel, true
}

// SetBodyVelocity overwrites a body's linear and angular velocity directly.
func (w *World) SetBodyVelocity(id BodyID, linear, angular lin.V3) bool {
	b := w.bodyPtr(id)
	if b == nil {
		return false
	}
	b.linVel, b.angVel = linear, angular
	return true
}

// ApplyForce adds a world-space force at the body's center of mass,
// accumulated until the next Step's clearForces.
func (w *World) ApplyForce(id BodyID, force lin.V3) bool {
	b := w.bodyPtr(id)
	if b == nil || !b.movable() {
		return false
	}
	b.force.Add(&b.force, &force)
	return true
}

// ApplyForceAtPoint adds a world-space force at a world-space point,
// contributing the resulting torque about the center of mass too.
func (w *World) ApplyForceAtPoint(id BodyID, force, point lin.V3) bool {
	b := w.bodyPtr(id)
	if b == nil || !b.movable() {
		return false
	}
	b.force.Add(&b.force, &force)
	r := lin.NewV3().Sub(&point, b.xf.Loc)
	torque := lin.NewV3().Cross(r, &force)
	b.torque.Add(&b.torque, torque)
	return true
}

// ApplyTorque adds a world-space torque, accumulated until the next Step.
func (w *World) ApplyTorque(id BodyID, torque lin.V3) bool {
	b := w.bodyPtr(id)
	if b == nil || !b.movable() {
		return false
	}
	b.torque.Add(&b.torque, &torque)
	return true
}

// ApplyLinearImpulse immediately changes a body's linear velocity by
// impulse/mass, the instantaneous counterpart to ApplyForce.
func (w *World) ApplyLinearImpulse(id BodyID, impulse lin.V3) bool {
	b := w.bodyPtr(id)
	if b == nil || !b.movable() {
		return false
	}
	b.linVel.X += impulse.X * b.invMass
	b.linVel.Y += impulse.Y * b.invMass
	b.linVel.Z += impulse.Z * b.invMass
	w.WakeBody(id)
	return true
}

// ApplyAngularImpulse immediately changes a body's angular velocity.
func (w *World) ApplyAngularImpulse(id BodyID, impulse lin.V3) bool {
	b := w.bodyPtr(id)
	if b == nil || !b.movable() {
		return false
	}
	delta := lin.NewV3().MultMv(&b.invInertiaWorld, &impulse)
	b.angVel.Add(&b.angVel, delta)
	w.WakeBody(id)
	return true
}

// IsAwake reports whether a body is currently participating in the solver.
func (w *World) IsAwake(id BodyID) bool {
	b := w.bodyPtr(id)
	return b != nil && b.awake
}

// WakeBody wakes a single body; it will be merged back into whichever
// island its contacts/joints belong to on the next Step.
func (w *World) WakeBody(id BodyID) bool {
	b := w.bodyPtr(id)
	if b == nil || b.typ == StaticBody {
		return false
	}
	b.awake = true
	b.sleepTime = 0
	return true
}

// SetAwake forces a body to sleep or wake on demand, bypassing the
// automatic island-quiescence check.
func (w *World) SetAwake(id BodyID, awake bool) bool {
	if awake {
		return w.WakeBody(id)
	}
	b := w.bodyPtr(id)
	if b == nil || !b.movable() {
		return false
	}
	b.awake = false
	b.linVel.SetS(0, 0, 0)
	b.angVel.SetS(0, 0, 0)
	return true
}

// GetFixture returns a read-only snapshot of a fixture's definition.
func (w *World) GetFixture(id FixtureID) (Fixture, bool) {
	f := w.fixturePtr(id)
	if f == nil {
		return Fixture{}, false
	}
	return Fixture{ID: f.id, Body: f.body, FixtureDef: f.def}, true
}

// GetJointDef returns the definition a joint was created with.
func (w *World) GetJointDef(id JointID) (JointDef, bool) {
	j := w.jointPtr(id)
	if j == nil {
		return JointDef{}, false
	}
	return j.def, true
}

// SetMouseTarget updates a live MouseJoint's world-space pull target.
func (w *World) SetMouseTarget(id JointID, target lin.V3) bool {
	j := w.jointPtr(id)
	if j == nil || j.def.Kind != MouseJoint {
		return false
	}
	j.def.Target = target
	w.WakeBody(j.def.BodyA)
	return true
}

// BodyFixtures returns the fixture handles attached to a body.
func (w *World) BodyFixtures(id BodyID) ([]FixtureID, bool) {
	b := w.bodyPtr(id)
	if b == nil {
		return nil, false
	}
	return append([]FixtureID(nil), b.fixtures...), true
}
