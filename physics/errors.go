// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "fmt"

// ErrNotFound is returned when a BodyID/FixtureID/JointID no longer refers
// to a live object, either because it was destroyed or never existed.
var ErrNotFound = fmt.Errorf("physics: handle not found")

// ErrInvalidShape is returned when a shape definition fails basic validity
// checks (negative radius, degenerate hull, zero-length mesh, ...).
var ErrInvalidShape = fmt.Errorf("physics: invalid shape definition")

// ErrInvalidJoint is returned when a JointDef references bodies that are
// not both live in the same World, or are the same body twice.
var ErrInvalidJoint = fmt.Errorf("physics: invalid joint definition")

// assertf panics with a formatted message. Reserved for precondition
// violations that indicate a programming error in the caller, never for
// conditions reachable through documented, valid API use (those return an
// error instead). Kept as a named helper so these call sites read as
// intentional rather than stray panics.
func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}

func wrapf(err error, format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, err)...)
}
