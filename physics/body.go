// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"math"

	"github.com/vex3d/vex/math/lin"
)

// BodyType controls how a Body participates in simulation.
type BodyType int

const (
	StaticBody    BodyType = iota // zero mass, never moves, can be touched.
	KinematicBody                 // zero mass, moved directly by the caller, pushes dynamics.
	DynamicBody                   // positive mass, moved by forces and constraints.
)

// BodyDef is the parameter object passed to World.CreateBody, generalizing
// the original newBody(shape)/SetMaterial(mass, bounciness) pair into a
// single options struct.
type BodyDef struct {
	Type            BodyType
	Position        lin.V3
	Orientation     lin.Q
	LinearVelocity  lin.V3
	AngularVelocity lin.V3
	LinearDamping   float64
	AngularDamping  float64
	GravityScale    float64
	FixedRotation   bool
	AllowSleep      bool
	Awake           bool
	UserData        any
}

// DefaultBodyDef returns a dynamic body definition at the origin with unit
// gravity scale, sleep allowed and starting awake.
func DefaultBodyDef() BodyDef {
	return BodyDef{
		Type:         DynamicBody,
		Orientation:  *lin.QI,
		GravityScale: 1.0,
		AllowSleep:   true,
		Awake:        true,
	}
}

// body is the engine-internal mutable state for a created Body. The
// exported surface is through World methods taking a BodyID, matching the
// handle-based ownership model: nothing outside World ever holds a *body.
type body struct {
	id  BodyID
	typ BodyType
	def BodyDef // retained for UserData and static tuning fields.

	xf     lin.T // current world transform.
	prevXf lin.T // transform at the start of the current step, used for TOI sweeps.

	linVel, angVel   lin.V3
	force, torque    lin.V3
	linDamp, angDamp float64
	gravityScale     float64

	mass, invMass   float64
	localInertia    lin.V3 // inertia tensor diagonal, body-local axes (not inverted).
	invInertiaLocal lin.V3
	invInertiaWorld lin.M3
	fixedRotation   bool

	fixtures []FixtureID

	islandIndex int32
	awake       bool
	allowSleep  bool
	sleepTime   float64
}

func newBodyState(id BodyID, def BodyDef) *body {
	b := &body{id: id, typ: def.Type, def: def, xf: *lin.NewT(), prevXf: *lin.NewT()}
	b.xf.SetVQ(&def.Position, normalizedOrIdentity(def.Orientation))
	b.prevXf.Set(&b.xf)
	b.linVel = def.LinearVelocity
	b.angVel = def.AngularVelocity
	b.linDamp, b.angDamp = def.LinearDamping, def.AngularDamping
	b.gravityScale = def.GravityScale
	if b.gravityScale == 0 && def.Type == DynamicBody {
		b.gravityScale = 1.0
	}
	b.fixedRotation = def.FixedRotation
	b.allowSleep = def.AllowSleep
	b.awake = def.Awake || def.Type != DynamicBody
	return b
}

func normalizedOrIdentity(q lin.Q) *lin.Q {
	if q.X == 0 && q.Y == 0 && q.Z == 0 && q.W == 0 {
		return lin.QI
	}
	return q.Unit()
}

func (b *body) movable() bool { return b.typ == DynamicBody }

// computeMass recomputes mass, inverse mass and local inertia from the
// shapes and materials of the given fixtures, summing per-fixture
// contributions. Static and kinematic bodies always carry zero mass and
// infinite effective inertia.
func (b *body) computeMass(fixtures []*fixture) {
	b.mass, b.invMass = 0, 0
	b.localInertia.SetS(0, 0, 0)
	b.invInertiaLocal.SetS(0, 0, 0)
	if b.typ != DynamicBody {
		return
	}

	var totalMass float64
	var inertia lin.V3
	for _, f := range fixtures {
		if f.def.IsSensor {
			continue
		}
		vol := f.def.Shape.Volume()
		m := f.def.Material.Density * vol
		if vol == 0 {
			m = f.def.Material.Density // zero-volume shapes: density read directly as mass.
		}
		totalMass += m
		var fi lin.V3
		f.def.Shape.Inertia(m, &fi)
		inertia.Add(&inertia, &fi)
	}
	if totalMass <= 0 {
		totalMass = 1.0 // a dynamic body with no mass-bearing fixture still needs to move.
	}
	b.mass = totalMass
	b.invMass = 1.0 / totalMass
	b.localInertia = inertia
	if b.fixedRotation {
		b.invInertiaLocal.SetS(0, 0, 0)
		return
	}
	b.invInertiaLocal.SetS(safeInv(inertia.X), safeInv(inertia.Y), safeInv(inertia.Z))
}

func safeInv(v float64) float64 {
	if v <= lin.Epsilon {
		return 0
	}
	return 1.0 / v
}

// updateInvInertiaWorld rotates the local diagonal inverse-inertia tensor
// into world space: I_w^-1 = R * I_l^-1 * R^T. Generalized from the
// original updateInertiaTensor, which read from a single precomputed iit
// matrix rather than a diagonal recomputed per fixture set.
func (b *body) updateInvInertiaWorld() {
	if b.invMass == 0 {
		b.invInertiaWorld = lin.M3{}
		return
	}
	r := lin.NewM3().SetQ(b.xf.Rot)
	diag := lin.NewM3().SetS(
		b.invInertiaLocal.X, 0, 0,
		0, b.invInertiaLocal.Y, 0,
		0, 0, b.invInertiaLocal.Z)
	rt := lin.NewM3().Transpose(r)
	tmp := lin.NewM3().Mult(r, diag)
	b.invInertiaWorld.Mult(tmp, rt)
}

// applyGravity adds the per-step gravity impulse to the accumulated force,
// scaled by the body's gravity scale and mass (force, not acceleration, so
// it composes with other accumulated forces before integrateVelocities).
func (b *body) applyGravity(gravity *lin.V3) {
	if !b.movable() || !b.awake {
		return
	}
	b.force.X += gravity.X * b.mass * b.gravityScale
	b.force.Y += gravity.Y * b.mass * b.gravityScale
	b.force.Z += gravity.Z * b.mass * b.gravityScale
}

// integrateVelocities applies accumulated force/torque for one step,
// clamping angular velocity the way the original semi-implicit integrator
// did to keep a single step's rotation bounded.
func (b *body) integrateVelocities(dt float64) {
	if !b.movable() {
		return
	}
	b.linVel.X += b.force.X * b.invMass * dt
	b.linVel.Y += b.force.Y * b.invMass * dt
	b.linVel.Z += b.force.Z * b.invMass * dt

	angAccel := lin.NewV3().MultMv(&b.invInertiaWorld, &b.torque)
	b.angVel.X += angAccel.X * dt
	b.angVel.Y += angAccel.Y * dt
	b.angVel.Z += angAccel.Z * dt

	if angSpeed := b.angVel.Len(); angSpeed*dt > maxRotation {
		b.angVel.Scale(&b.angVel, maxRotation/(dt*angSpeed))
	}
}

// applyDamping decays velocity with the implicit Padé approximation
// v = v / (1 + dt*damp), which stays stable for any step size.
func (b *body) applyDamping(dt float64) {
	if !b.movable() {
		return
	}
	b.linVel.Scale(&b.linVel, 1.0/(1.0+dt*b.linDamp))
	b.angVel.Scale(&b.angVel, 1.0/(1.0+dt*b.angDamp))
}

// integrateGyroscopic applies the implicit gyroscopic torque term for an
// asymmetric rigid body (the Dzhanibekov-effect stabilization term), by
// solving one Newton iteration of body-axis Euler's equations
//
//	I w' = I w + dt * w' x (I w')
//
// about the body's own principal axes, where the un-inverted inertia
// tensor Ib is diagonal. One Newton-Raphson iteration solves
//
//	J * dw = -h * (w x Ib*w),  J = Ib + h*(Skew(w)*Ib - Skew(Ib*w))
//
// for the local angular velocity w, matching b3SolveGyro exactly: the
// Jacobian's off-diagonal coupling terms are built and inverted as a real
// 3x3 system rather than approximated axis-by-axis. Skipped for bodies
// with isotropic inertia, where the correction term vanishes identically.
func (b *body) integrateGyroscopic(dt float64) {
	if !b.movable() || b.fixedRotation {
		return
	}
	ix, iy, iz := b.localInertia.X, b.localInertia.Y, b.localInertia.Z
	if math.Abs(ix-iy) < lin.Epsilon && math.Abs(iy-iz) < lin.Epsilon {
		return
	}

	rInv := lin.NewM3().SetQ(b.xf.Rot)
	rInv.Transpose(rInv)
	w1 := *lin.NewV3().MultMv(rInv, &b.angVel)

	ib := lin.NewM3().SetS(ix, 0, 0, 0, iy, 0, 0, 0, iz)
	ibw := lin.NewV3().MultMv(ib, &w1)

	f := lin.NewV3().Cross(&w1, ibw)
	f.Scale(f, dt)

	j := lin.NewM3().Mult(lin.NewM3().SetSkewSym(&w1), ib)
	j.Sub(j, lin.NewM3().SetSkewSym(ibw))
	j.Scale(dt)
	j.Add(j, ib)

	jInv := lin.NewM3().Inv(j)
	dw := lin.NewV3().MultMv(jInv, f)
	w1.Sub(&w1, dw)

	r := lin.NewM3().SetQ(b.xf.Rot)
	b.angVel.MultMv(r, &w1)
}

// integrateTransform advances position and orientation by dt using the
// current velocities, via the original engine's semi-implicit-Euler plus
// quaternion-exponential-map transform integration.
func (b *body) integrateTransform(dt float64) {
	if b.typ == StaticBody {
		return
	}
	b.prevXf.Set(&b.xf)
	next := lin.NewT().Integrate(&b.xf, &b.linVel, &b.angVel, dt)
	b.xf.Set(next)
}

// velocityAtLocalPoint returns the linear velocity of the material point
// at localPoint (body-local space) due to both linear and angular motion.
func (b *body) velocityAtLocalPoint(localPoint *lin.V3, out *lin.V3) *lin.V3 {
	out.Cross(&b.angVel, localPoint)
	out.Add(out, &b.linVel)
	return out
}

func (b *body) clearForces() {
	b.force.SetS(0, 0, 0)
	b.torque.SetS(0, 0, 0)
}

// belowSleepThreshold reports whether the body's current velocities are
// under the sleep thresholds; the island builder accumulates sleepTime
// across consecutive quiet steps for a whole island, not per body.
func (b *body) belowSleepThreshold() bool {
	if !b.allowSleep || b.typ != DynamicBody {
		return false
	}
	return b.linVel.LenSqr() < sleepLinTol*sleepLinTol && b.angVel.LenSqr() < sleepAngTol*sleepAngTol
}
