// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"math"

	"github.com/vex3d/vex/math/lin"
)

// AABB is an axis aligned bounding box, renamed and generalized from the
// original Abox but keeping its shape: two corner points rather than a
// centre/extent pair, which is what Overlaps/Union want to compare.
type AABB struct {
	Min, Max lin.V3
}

// Overlaps returns true if a and b intersect. Two boxes that only touch
// along a point, edge or face are not considered overlapping.
func (a AABB) Overlaps(b AABB) bool {
	return a.Max.X > b.Min.X && a.Min.X < b.Max.X &&
		a.Max.Y > b.Min.Y && a.Min.Y < b.Max.Y &&
		a.Max.Z > b.Min.Z && a.Min.Z < b.Max.Z
}

// Contains returns true if b is entirely inside a.
func (a AABB) Contains(b AABB) bool {
	return a.Min.X <= b.Min.X && a.Min.Y <= b.Min.Y && a.Min.Z <= b.Min.Z &&
		a.Max.X >= b.Max.X && a.Max.Y >= b.Max.Y && a.Max.Z >= b.Max.Z
}

// Union returns the smallest box containing both a and b.
func (a AABB) Union(b AABB) AABB {
	return AABB{
		Min: lin.V3{X: math.Min(a.Min.X, b.Min.X), Y: math.Min(a.Min.Y, b.Min.Y), Z: math.Min(a.Min.Z, b.Min.Z)},
		Max: lin.V3{X: math.Max(a.Max.X, b.Max.X), Y: math.Max(a.Max.Y, b.Max.Y), Z: math.Max(a.Max.Z, b.Max.Z)},
	}
}

// Fatten grows the box by margin on every side. A zero or negative margin
// leaves the box unchanged.
func (a AABB) Fatten(margin float64) AABB {
	if margin <= 0 {
		return a
	}
	return AABB{
		Min: lin.V3{X: a.Min.X - margin, Y: a.Min.Y - margin, Z: a.Min.Z - margin},
		Max: lin.V3{X: a.Max.X + margin, Y: a.Max.Y + margin, Z: a.Max.Z + margin},
	}
}

// Perimeter returns twice the sum of edge lengths, used as the tree-cost
// surrogate for the surface-area heuristic in the broad-phase tree.
func (a AABB) Perimeter() float64 {
	d := lin.V3{X: a.Max.X - a.Min.X, Y: a.Max.Y - a.Min.Y, Z: a.Max.Z - a.Min.Z}
	return 2.0 * (d.X + d.Y + d.Z)
}

// Center returns the midpoint of the box.
func (a AABB) Center() lin.V3 {
	return lin.V3{X: (a.Min.X + a.Max.X) / 2, Y: (a.Min.Y + a.Max.Y) / 2, Z: (a.Min.Z + a.Max.Z) / 2}
}

func aabbFromPoint(p *lin.V3) AABB { return AABB{Min: *p, Max: *p} }

func aabbFromSphere(c *lin.V3, r float64) AABB {
	return AABB{
		Min: lin.V3{X: c.X - r, Y: c.Y - r, Z: c.Z - r},
		Max: lin.V3{X: c.X + r, Y: c.Y + r, Z: c.Z + r},
	}
}
