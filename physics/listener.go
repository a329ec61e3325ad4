// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "github.com/vex3d/vex/math/lin"

// ContactListener receives contact lifecycle notifications during World.Step,
// the same begin/end/persist shape the original exposed through its
// collision callback registration, generalized from a single OnCollide
// function pointer to three named events so a caller can tell a new touch
// from a continuing one without diffing state itself.
type ContactListener interface {
	// BeginContact is called the step a fixture pair starts touching.
	BeginContact(c *Contact)
	// EndContact is called the step a previously-touching pair stops.
	EndContact(c *Contact)
	// PreSolve is called every step a pair is touching, before the velocity
	// solver runs, letting a listener inspect (but not alter) the manifold.
	PreSolve(c *Contact)
}

// DebugDrawer receives per-step draw calls, generalizing the original's
// OpenGL immediate-mode debug renderer (explicitly out of scope here) into
// a renderer-agnostic interface a host application implements however it
// draws lines and shapes.
type DebugDrawer interface {
	DrawSegment(a, b lin.V3)
	DrawAABB(box AABB)
	DrawPoint(p lin.V3, size float64)
	DrawTransform(xf *lin.T)
}

// baseContactListener is the zero-value listener World falls back to when
// none is registered, so Step never needs a nil check at each call site.
type baseContactListener struct{}

func (baseContactListener) BeginContact(*Contact) {}
func (baseContactListener) EndContact(*Contact)   {}
func (baseContactListener) PreSolve(*Contact)     {}
