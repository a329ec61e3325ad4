// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "github.com/vex3d/vex/math/lin"

// Numerical tuning constants shared by the broad-phase, narrow-phase,
// solver and island builder. Values mirror the ranges a sequential-impulse
// engine of this shape is tuned to; changing them changes solver behaviour
// more than it changes correctness.
const (
	linearSlop       = 0.005 // allowed interpenetration before correction kicks in.
	angularSlopDeg   = 2.0   // degrees, allowed angular error before correction.
	maxManifoldPts   = 4     // points kept per contact manifold.
	maxManifolds     = 3     // manifolds retained per contact pair (mesh clustering).
	maxTranslation   = 2.0   // metres/step, integration clamp.
	maxLinearCorr    = 0.2   // metres, position solver clamp.
	maxAngularCorrDeg = 8.0  // degrees, position solver clamp.
	baumgarte        = 0.1   // velocity-bias fraction for penetration recovery.
	restitutionVMin  = 1.0   // m/s below which restitution is not applied.
	sleepLinTol      = 0.01  // m/s, below this a body is a sleep candidate.
	sleepAngTolDeg   = 2.0   // degrees/s, below this a body is a sleep candidate.
	sleepTime        = 0.2   // seconds a whole island must be quiet before sleeping.
	broadphaseSlack  = 0.2   // metres, fat AABB margin used by the broad-phase tree.
	motionMultiplier = 2.0   // fat-AABB displacement prediction multiplier.

	velocityIterations = 8 // sequential-impulse passes per step.
	positionIterations  = 3 // pseudo-velocity position passes per step.
)

// Radian forms of the degree constants above. Var, not const, since they
// depend on lin.DegRad which is itself derived from math.Pi.
var (
	maxRotation    = lin.HalfPi
	maxAngularCorr = maxAngularCorrDeg * lin.DegRad
	angularSlop    = angularSlopDeg * lin.DegRad
	sleepAngTol    = sleepAngTolDeg * lin.DegRad
)
