// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "github.com/vex3d/vex/math/lin"

const maxFriction = 10.0

// Material holds the per-fixture surface properties used to derive mass
// and combined contact coefficients.
type Material struct {
	Density     float64 // kg/m^3 (or kg for zero-volume shapes, treated directly as mass).
	Friction    float64 // Coulomb friction coefficient.
	Restitution float64 // bounce coefficient, 0 (inelastic) .. 1 (elastic).
}

// DefaultMaterial mirrors the original engine's defaults: light friction,
// no bounce, unit density.
func DefaultMaterial() Material {
	return Material{Density: 1.0, Friction: 0.5, Restitution: 0.0}
}

// combinedFriction returns the product of the two surfaces' friction
// coefficients, clamped to a sane range.
func combinedFriction(a, b Material) float64 {
	return lin.Clamp(a.Friction*b.Friction, -maxFriction, maxFriction)
}

// combinedRestitution returns the product of the two surfaces'
// restitution coefficients.
func combinedRestitution(a, b Material) float64 {
	return a.Restitution * b.Restitution
}
