// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"math"

	"github.com/vex3d/vex/math/lin"
)

// contactBreakingLimit is how far a persisted contact point may drift
// (either along its normal or orthogonal to it) before it is dropped,
// matching the original contactPair.breakingLimit default.
const contactBreakingLimit = 0.02

// ManifoldPoint is one persistent point in a Contact's manifold. Local
// coordinates are cached so the point survives body motion between steps
// and carries its accumulated impulses for warm starting, generalizing the
// original's pointOfContact+solverPoint pair into a single value type (the
// solver no longer needs a separate pooled solverPoint: Contact itself owns
// the slice).
type ManifoldPoint struct {
	LocalA, LocalB lin.V3
	WorldA, WorldB lin.V3
	Normal         lin.V3 // world space, points from B toward A.
	Depth          float64

	NormalImpulse                         float64
	TangentImpulse                        [2]float64
	TangentDir                            [2]lin.V3
	CombinedFriction, CombinedRestitution float64
}

// Manifold is one cluster's worth of persistent contact points, all sharing
// roughly the same contact normal. A Contact keeps up to maxManifolds of
// these, the B3_MAX_MANIFOLDS split spec.md's Contact definition calls for:
// a single fixture pair can straddle two differently-angled mesh triangles
// (or two separate hull faces) at once, and collapsing those into one
// 4-point manifold would average away a contact normal that should stay
// distinct.
type Manifold struct {
	Points []ManifoldPoint
}

// Contact tracks the persistent relationship between two fixtures that are
// close enough to generate contact points, the role the original's
// contactPair played, generalized from two raw *body pointers to
// FixtureID/BodyID handles so Contact can outlive any one World lookup.
type Contact struct {
	FixtureA, FixtureB FixtureID
	BodyA, BodyB       BodyID
	Manifolds          []Manifold
	IsSensor           bool
	Touching           bool
	gjkCache           gjkSimplex
}

func newContact(fixtureA, fixtureB FixtureID, bodyA, bodyB BodyID, isSensor bool) *Contact {
	return &Contact{FixtureA: fixtureA, FixtureB: fixtureB, BodyA: bodyA, BodyB: bodyB, IsSensor: isSensor}
}

// AllPoints flattens every manifold's points into one slice, for callers
// (debug draw, introspection) that only want "every point currently in
// contact" and don't care which manifold a point belongs to.
func (c *Contact) AllPoints() []ManifoldPoint {
	if len(c.Manifolds) == 0 {
		return nil
	}
	out := make([]ManifoldPoint, 0, len(c.Manifolds)*maxManifoldPts)
	for _, m := range c.Manifolds {
		out = append(out, m.Points...)
	}
	return out
}

// update runs narrow phase for the contact's current shapes/transforms,
// partitions the resulting raw points into up to maxManifolds groups by
// contact normal (clusterContactsByNormal), reduces each group to at most
// maxManifoldPts points (reduceContactCluster), and merges each reduced
// group against the previously persisted points so warm-start impulses
// survive. Ported from the role of refreshContacts+mergeContacts together:
// the original did these as two separate passes (refresh existing, then
// merge new) over a single manifold; here the same two passes run once per
// normal-cluster since collideShapes is already cheap enough not to need
// incremental refresh of stale points first.
func (c *Contact) update(shapeA *Shape, xfA *lin.T, matA Material, shapeB *Shape, xfB *lin.T, matB Material) {
	raw := collideShapes(shapeA, xfA, shapeB, xfB, &c.gjkCache)
	c.Touching = len(raw) > 0
	if len(raw) == 0 {
		c.Manifolds = c.Manifolds[:0]
		return
	}

	friction := combinedFriction(matA, matB)
	restitution := combinedRestitution(matA, matB)
	old := c.AllPoints()

	groups := clusterContactsByNormal(raw)
	manifolds := make([]Manifold, 0, len(groups))
	for _, g := range groups {
		reduced := reduceContactCluster(g)
		fresh := make([]ManifoldPoint, len(reduced))
		for i, r := range reduced {
			fresh[i] = ManifoldPoint{
				WorldA: r.onA, WorldB: r.onB, Normal: r.normal, Depth: r.depth,
				LocalA: *xfA.Inv(lin.NewV3().Set(&r.onA)),
				LocalB: *xfB.Inv(lin.NewV3().Set(&r.onB)),
				CombinedFriction: friction, CombinedRestitution: restitution,
			}
			setTangentBasis(&fresh[i])
		}
		manifolds = append(manifolds, Manifold{Points: mergeManifoldPoints(old, fresh)})
	}
	c.Manifolds = manifolds
}

// mergeManifoldPoints matches each fresh point against the closest existing
// point (in body-A local space, within contactBreakingLimit) to carry over
// its warm-start impulse; unmatched slots beyond four are resolved by
// largest-area replacement. Ported from contactPair.mergeContacts,
// contactPair.closestPoint and contactPair.largestArea, generalized from
// *pointOfContact to ManifoldPoint.
func mergeManifoldPoints(old, fresh []ManifoldPoint) []ManifoldPoint {
	out := make([]ManifoldPoint, 0, maxManifoldPts)
	for _, f := range fresh {
		if idx := closestExistingPoint(old, f); idx >= 0 {
			f.NormalImpulse = old[idx].NormalImpulse
			f.TangentImpulse = old[idx].TangentImpulse
		}
		switch {
		case len(out) < maxManifoldPts:
			out = append(out, f)
		default:
			idx := largestAreaReplace(out, f)
			out[idx] = f
		}
	}
	return out
}

func closestExistingPoint(old []ManifoldPoint, point ManifoldPoint) int {
	best := -1
	bestDist := contactBreakingLimit * contactBreakingLimit
	for i, o := range old {
		if d := o.LocalA.DistSqr(&point.LocalA); d < bestDist {
			bestDist, best = d, i
		}
	}
	return best
}

// largestAreaReplace picks which of four existing points to evict in favor
// of candidate, by testing which substitution keeps the largest contact
// patch area. Ported from contactPair.largestArea/area.
func largestAreaReplace(existing []ManifoldPoint, candidate ManifoldPoint) int {
	areas := make([]float64, len(existing))
	for i := range existing {
		areas[i] = quadAreaOf(candidate.WorldA, skip(existing, i))
	}
	best, bestArea := 0, areas[0]
	for i, a := range areas {
		if a > bestArea {
			bestArea, best = a, i
		}
	}
	return best
}

func skip(pts []ManifoldPoint, skipIdx int) [3]lin.V3 {
	var out [3]lin.V3
	j := 0
	for i, p := range pts {
		if i == skipIdx {
			continue
		}
		out[j] = p.WorldA
		j++
	}
	return out
}

func quadAreaOf(p0 lin.V3, rest [3]lin.V3) float64 {
	p1, p2, p3 := rest[0], rest[1], rest[2]
	e0a, e0b := lin.NewV3().Sub(&p0, &p1), lin.NewV3().Sub(&p2, &p3)
	e1a, e1b := lin.NewV3().Sub(&p0, &p2), lin.NewV3().Sub(&p1, &p3)
	e2a, e2b := lin.NewV3().Sub(&p0, &p3), lin.NewV3().Sub(&p1, &p2)
	l0 := lin.NewV3().Cross(e0a, e0b).LenSqr()
	l1 := lin.NewV3().Cross(e1a, e1b).LenSqr()
	l2 := lin.NewV3().Cross(e2a, e2b).LenSqr()
	return math.Max(math.Max(l0, l1), l2)
}

// setTangentBasis builds two orthogonal friction directions in the contact
// plane, the pair the original solver recomputed each step rather than
// persisting (lateralFrictionDir there).
func setTangentBasis(p *ManifoldPoint) {
	n := p.Normal
	var t0 lin.V3
	if math.Abs(n.X) >= 0.57735 {
		t0 = lin.V3{X: n.Y, Y: -n.X, Z: 0}
	} else {
		t0 = lin.V3{X: 0, Y: n.Z, Z: -n.Y}
	}
	t0.Unit()
	t1 := lin.NewV3().Cross(&n, &t0)
	p.TangentDir[0] = t0
	p.TangentDir[1] = *t1
}
