// Copyright © 2024 Galvanized Logic Inc.

package physics

import "github.com/vex3d/vex/math/lin"

// toi.go implements the engine's one form of continuous collision handling:
// an on-demand conservative-advancement sweep a caller can query before
// committing a large per-step displacement (a bullet, a fast-thrown prop).
// This is deliberately the "opportunistic TOI" the spec calls for rather
// than full per-step CCD: Step never calls this itself, nothing here
// prevents tunneling that a caller doesn't explicitly sweep for. Grounded on
// the same GJK distance iteration gjk.go already provides for narrow phase,
// the standard conservative-advancement technique (Bullet's
// btConvexCast/btGjkEpa lineage) applied to the original's shape union
// instead of its convex-hull-only collider.
const (
	toiMaxIterations = 20
	toiTolerance      = linearSlop
)

// TOIOutput is the result of a ShapeCast sweep: the fraction along the
// requested displacement at which contact begins, plus the point and normal
// on the target shape at that fraction.
type TOIOutput struct {
	Hit    bool
	T      float64 // in [0,1]; 1 with Hit=false means "no contact over the whole sweep".
	Point  lin.V3
	Normal lin.V3
}

// computeTOI advances shapeA (starting at startXf, translating by
// displacement over t in [0,1]) toward shapeB (static, at xfB), stopping at
// the first t where their separation drops to toiTolerance. Rotation is not
// swept: a body tumbling fast enough to tunnel despite a correct linear TOI
// is the kind of case full per-step CCD would catch and this opportunistic
// form deliberately does not.
func computeTOI(shapeA *Shape, startXf *lin.T, displacement lin.V3, shapeB *Shape, xfB *lin.T) TOIOutput {
	speed := displacement.Len()
	if speed < lin.Epsilon {
		return TOIOutput{T: 1}
	}

	xf := lin.NewT().Set(startXf)
	var cache gjkSimplex
	t := 0.0

	for iter := 0; iter < toiMaxIterations; iter++ {
		res := gjkDistance(shapeA, xf, shapeB, xfB, &cache)
		if res.overlap || res.distance < toiTolerance {
			normal := *lin.NewV3().Sub(&res.onA, &res.onB)
			if normal.LenSqr() > lin.Epsilon {
				normal.Unit()
			} else {
				normal = lin.V3{X: 0, Y: 1, Z: 0}
			}
			return TOIOutput{Hit: true, T: t, Point: res.onB, Normal: normal}
		}

		dt := res.distance / speed
		t += dt
		if t >= 1 {
			return TOIOutput{T: 1}
		}
		advanced := lin.NewV3().Scale(&displacement, t)
		advanced.Add(advanced, startXf.Loc)
		xf.Loc.Set(advanced)
		cache.reset() // the simplex is only valid for the transform it was built at.
	}
	return TOIOutput{T: 1} // ran out of iterations short of contact: treat as a conservative miss.
}
