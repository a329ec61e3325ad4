// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"math"

	"github.com/vex3d/vex/math/lin"
)

// gjkVertex is one support point carried in a GJK simplex: the Minkowski
// difference point plus the two shape-space points that produced it, kept
// so a terminated simplex can be barycentrically interpolated back into
// closest points on each shape.
type gjkVertex struct {
	w    lin.V3 // support(dir) - support(-dir), i.e. the point on the difference.
	a, b lin.V3 // the contributing support points on shape A and shape B.
}

// gjkSimplex is the evolving point/segment/triangle/tetrahedron used by
// GJK. Generalizes the original gjk_Simplex (which tracked only points,
// for a yes/no overlap test) by also tracking onA/onB, and is kept across
// calls by the caller as a warm-start cache, mirroring the original
// simplex_cache parameter to gjk_collides.
type gjkSimplex struct {
	v   [4]gjkVertex
	num int
}

// reset clears the simplex to empty, used when a warm-started cache turns
// out to be stale (bodies moved too far for the previous simplex to help).
func (s *gjkSimplex) reset() { s.num = 0 }

// gjkResult is what a distance query needs from GJK: the separation
// distance (0 when the shapes are touching or overlapping), the closest
// points on each shape in world space, and whether the shapes overlap (in
// which case EPA must be run for depth and normal).
type gjkResult struct {
	distance  float64
	onA, onB  lin.V3
	normal    lin.V3 // onA - onB, normalized; meaningless when overlap is true.
	overlap   bool
}

const gjkMaxIterations = 32
const gjkEpsilon = 1e-8

// gjkDistance computes the distance between shapeA (at xfA) and shapeB (at
// xfB), reusing and updating cache as a warm-start simplex. When the
// shapes are found to overlap, distance is 0 and overlap is true; the
// simplex in cache is left as a valid GJK-terminated tetrahedron suitable
// as EPA's starting polytope.
func gjkDistance(shapeA *Shape, xfA *lin.T, shapeB *Shape, xfB *lin.T, cache *gjkSimplex) gjkResult {
	if cache.num == 0 {
		d := lin.V3{X: xfB.Loc.X - xfA.Loc.X, Y: xfB.Loc.Y - xfA.Loc.Y, Z: xfB.Loc.Z - xfA.Loc.Z}
		if d.LenSqr() < gjkEpsilon {
			d = lin.V3{X: 1, Y: 0, Z: 0}
		}
		addSupport(cache, shapeA, xfA, shapeB, xfB, d)
	}

	dir := negateSimplexDirection(cache)
	lastDist := math.MaxFloat64

	for iter := 0; iter < gjkMaxIterations; iter++ {
		if dir.LenSqr() < gjkEpsilon {
			return gjkOverlapResult(cache)
		}
		support := addSupport(cache, shapeA, xfA, shapeB, xfB, dir)
		d := support.Dot(&dir)
		// No progress: the current simplex is already (nearly) as close
		// as this direction search will get.
		if d < 0 {
			cache.num--
			return closestPointsFromSimplex(cache)
		}

		reduceSimplex(cache)
		if cache.num == 4 {
			return gjkOverlapResult(cache)
		}

		newDir, distSqr := closestToOriginDirection(cache)
		if distSqr < gjkEpsilon {
			return gjkOverlapResult(cache)
		}
		if distSqr >= lastDist-gjkEpsilon {
			return closestPointsFromSimplex(cache)
		}
		lastDist = distSqr
		dir = newDir
	}
	return closestPointsFromSimplex(cache)
}

func negateSimplexDirection(cache *gjkSimplex) lin.V3 {
	if cache.num == 0 {
		return lin.V3{X: 1}
	}
	w := cache.v[cache.num-1].w
	return lin.V3{X: -w.X, Y: -w.Y, Z: -w.Z}
}

// addSupport appends the Minkowski-difference support point along dir to
// the simplex and returns it.
func addSupport(cache *gjkSimplex, shapeA *Shape, xfA *lin.T, shapeB *Shape, xfB *lin.T, dir lin.V3) lin.V3 {
	diff, onA, onB := minkowskiSupport(shapeA, xfA, shapeB, xfB, dir)
	cache.v[cache.num] = gjkVertex{w: diff, a: onA, b: onB}
	cache.num++
	return diff
}

// gjkOverlapResult is returned once GJK has found the origin enclosed (or
// effectively coincident with) the simplex: the shapes overlap and EPA is
// needed for depth/normal.
func gjkOverlapResult(cache *gjkSimplex) gjkResult {
	return gjkResult{overlap: true}
}

// reduceSimplex discards vertices that do not contribute to the feature of
// the simplex closest to the origin, mirroring the role of the original
// do_simplex_2/3/4 Voronoi-region tests but expressed via Ericson-style
// closest-point-on-tetrahedron signed volume tests, which let the same
// code path handle point/segment/triangle/tetrahedron uniformly.
func reduceSimplex(cache *gjkSimplex) {
	switch cache.num {
	case 2:
		reduceSegment(cache)
	case 3:
		reduceTriangle(cache)
	case 4:
		reduceTetrahedron(cache)
	}
}

func reduceSegment(cache *gjkSimplex) {
	a, b := cache.v[1].w, cache.v[0].w // a is the newest point.
	ab := lin.NewV3().Sub(&b, &a)
	ao := lin.NewV3().Neg(&a)
	if ab.Dot(ao) <= 0 {
		cache.v[0] = cache.v[1]
		cache.num = 1
	}
	// else both points remain; the segment is already the closest feature.
}

func reduceTriangle(cache *gjkSimplex) {
	a, b, c := cache.v[2].w, cache.v[1].w, cache.v[0].w
	ab := lin.NewV3().Sub(&b, &a)
	ac := lin.NewV3().Sub(&c, &a)
	ao := lin.NewV3().Neg(&a)
	abc := lin.NewV3().Cross(ab, ac)

	if lin.NewV3().Cross(abc, ac).Dot(ao) > 0 {
		if ac.Dot(ao) > 0 {
			cache.v[0] = cache.v[2]
			cache.num = 1
			reduceSegmentAC(cache, a, c)
			return
		}
		keepEdge(cache, a, b)
		return
	}
	if lin.NewV3().Cross(ab, abc).Dot(ao) > 0 {
		keepEdge(cache, a, b)
		return
	}
	// origin projects inside the triangle; keep all three, oriented
	// towards the origin for EPA's benefit.
	cache.v[0], cache.v[1], cache.v[2] = cache.v[2], cache.v[1], cache.v[0]
	if abc.Dot(ao) < 0 {
		cache.v[1], cache.v[2] = cache.v[2], cache.v[1]
	}
}

func reduceSegmentAC(cache *gjkSimplex, a, c lin.V3) {
	ac := lin.NewV3().Sub(&c, &a)
	ao := lin.NewV3().Neg(&a)
	if ac.Dot(ao) <= 0 {
		cache.num = 1
		return
	}
	cache.v[1] = cache.v[0]
	cache.v[0] = gjkVertex{w: a}
	cache.num = 2
}

func keepEdge(cache *gjkSimplex, a, b lin.V3) {
	ab := lin.NewV3().Sub(&b, &a)
	ao := lin.NewV3().Neg(&a)
	if ab.Dot(ao) <= 0 {
		cache.v[0] = gjkVertex{w: a}
		cache.num = 1
		return
	}
	cache.v[0] = gjkVertex{w: b}
	cache.v[1] = gjkVertex{w: a}
	cache.num = 2
}

// reduceTetrahedron checks which of the tetrahedron's four faces the
// origin is outside of; if none, the origin is enclosed and the shapes
// overlap. Otherwise collapses to the nearest face and re-runs the
// triangle case.
func reduceTetrahedron(cache *gjkSimplex) {
	a, b, c, d := cache.v[3].w, cache.v[2].w, cache.v[1].w, cache.v[0].w
	faces := [4][3]lin.V3{{a, b, c}, {a, c, d}, {a, d, b}, {b, d, c}}
	verts := [4][3]gjkVertex{
		{cache.v[3], cache.v[2], cache.v[1]},
		{cache.v[3], cache.v[1], cache.v[0]},
		{cache.v[3], cache.v[0], cache.v[2]},
		{cache.v[2], cache.v[0], cache.v[1]},
	}
	for i, f := range faces {
		ab := lin.NewV3().Sub(&f[1], &f[0])
		ac := lin.NewV3().Sub(&f[2], &f[0])
		n := lin.NewV3().Cross(ab, ac)
		ao := lin.NewV3().Neg(&f[0])
		if n.Dot(ao) > gjkEpsilon {
			cache.v[0], cache.v[1], cache.v[2] = verts[i][2], verts[i][1], verts[i][0]
			cache.num = 3
			reduceTriangle(cache)
			return
		}
	}
	cache.num = 4 // origin enclosed: overlap.
}

// closestToOriginDirection returns the direction from the current
// simplex's closest point towards the origin, and that closest point's
// squared distance, used both to pick the next search direction and to
// detect stalled progress.
func closestToOriginDirection(cache *gjkSimplex) (lin.V3, float64) {
	switch cache.num {
	case 1:
		p := cache.v[0].w
		return lin.V3{X: -p.X, Y: -p.Y, Z: -p.Z}, p.LenSqr()
	case 2:
		a, b := cache.v[1].w, cache.v[0].w
		ab := lin.NewV3().Sub(&b, &a)
		t := lin.Clamp(-a.Dot(ab)/math.Max(ab.LenSqr(), gjkEpsilon), 0, 1)
		closest := lin.V3{X: a.X + ab.X*t, Y: a.Y + ab.Y*t, Z: a.Z + ab.Z*t}
		return lin.V3{X: -closest.X, Y: -closest.Y, Z: -closest.Z}, closest.LenSqr()
	case 3:
		a, b, c := cache.v[2].w, cache.v[1].w, cache.v[0].w
		ab := lin.NewV3().Sub(&b, &a)
		ac := lin.NewV3().Sub(&c, &a)
		n := lin.NewV3().Cross(ab, ac)
		nLenSqr := n.LenSqr()
		if nLenSqr < gjkEpsilon {
			return lin.V3{X: -a.X, Y: -a.Y, Z: -a.Z}, a.LenSqr()
		}
		dist := a.Dot(n) / math.Sqrt(nLenSqr)
		closest := lin.V3{X: n.X * -dist / math.Sqrt(nLenSqr), Y: n.Y * -dist / math.Sqrt(nLenSqr), Z: n.Z * -dist / math.Sqrt(nLenSqr)}
		return lin.V3{X: -closest.X, Y: -closest.Y, Z: -closest.Z}, closest.LenSqr()
	}
	return lin.V3{}, 0
}

// closestPointsFromSimplex interpolates the contributing support points on
// each shape using the final simplex's barycentric weights with respect to
// the origin's projection onto it.
func closestPointsFromSimplex(cache *gjkSimplex) gjkResult {
	var onA, onB lin.V3
	switch cache.num {
	case 1:
		onA, onB = cache.v[0].a, cache.v[0].b
	case 2:
		a, b := cache.v[1].w, cache.v[0].w
		ab := lin.NewV3().Sub(&b, &a)
		t := lin.Clamp(-a.Dot(ab)/math.Max(ab.LenSqr(), gjkEpsilon), 0, 1)
		onA = lerp3(cache.v[1].a, cache.v[0].a, t)
		onB = lerp3(cache.v[1].b, cache.v[0].b, t)
	case 3:
		u, v, w := barycentric(cache.v[2].w, cache.v[1].w, cache.v[0].w)
		onA = combine3(cache.v[2].a, cache.v[1].a, cache.v[0].a, u, v, w)
		onB = combine3(cache.v[2].b, cache.v[1].b, cache.v[0].b, u, v, w)
	default:
		onA, onB = cache.v[0].a, cache.v[0].b
	}
	sep := lin.V3{X: onA.X - onB.X, Y: onA.Y - onB.Y, Z: onA.Z - onB.Z}
	dist := sep.Len()
	normal := sep
	if dist > gjkEpsilon {
		normal = lin.V3{X: sep.X / dist, Y: sep.Y / dist, Z: sep.Z / dist}
	}
	return gjkResult{distance: dist, onA: onA, onB: onB, normal: normal}
}

func lerp3(a, b lin.V3, t float64) lin.V3 {
	return lin.V3{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t, Z: a.Z + (b.Z-a.Z)*t}
}

// barycentric returns the barycentric weights of the origin's projection
// onto triangle (a, b, c).
func barycentric(a, b, c lin.V3) (u, v, w float64) {
	ab := lin.NewV3().Sub(&b, &a)
	ac := lin.NewV3().Sub(&c, &a)
	ap := lin.NewV3().Neg(&a)
	d00 := ab.Dot(ab)
	d01 := ab.Dot(ac)
	d11 := ac.Dot(ac)
	d20 := ap.Dot(ab)
	d21 := ap.Dot(ac)
	denom := d00*d11 - d01*d01
	if math.Abs(denom) < gjkEpsilon {
		return 1.0 / 3, 1.0 / 3, 1.0 / 3
	}
	v = (d11*d20 - d01*d21) / denom
	w = (d00*d21 - d01*d20) / denom
	u = 1 - v - w
	return u, v, w
}

func combine3(a, b, c lin.V3, u, v, w float64) lin.V3 {
	return lin.V3{
		X: a.X*u + b.X*v + c.X*w,
		Y: a.Y*u + b.Y*v + c.Y*w,
		Z: a.Z*u + b.Z*v + c.Z*w,
	}
}
