// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "github.com/vex3d/vex/math/lin"

// clusterContactsByNormal partitions an arbitrary set of candidate contact
// points into up to maxManifolds groups by contact normal, the
// B3_MAX_MANIFOLDS split spec.md §4.4 calls for: a shape resting across two
// differently-angled mesh triangles (or two hull faces at once) should keep
// two distinct manifolds rather than being flattened into one, since a
// single manifold's normal only makes sense when every point in it shares
// roughly the same normal.
//
// This is k-means in normal-space: centroids are seeded farthest-point style
// (same rationale reduceContactCluster uses for its own point seeding,
// applied one level up to whole clusters), then points are repeatedly
// reassigned to their nearest centroid by normal similarity and centroids
// re-averaged, for at most 20 rounds or until assignment stops changing.
func clusterContactsByNormal(points []satContact) [][]satContact {
	if len(points) == 0 {
		return nil
	}
	k := maxManifolds
	if k > len(points) {
		k = len(points)
	}

	seed := 0
	for i, p := range points {
		if p.depth > points[seed].depth {
			seed = i
		}
	}
	centroids := make([]lin.V3, 0, k)
	centroids = append(centroids, points[seed].normal)
	for len(centroids) < k {
		worst, worstSim := -1, 2.0
		for i := range points {
			sim := closestNormalSimilarity(points[i].normal, centroids)
			if sim < worstSim {
				worstSim, worst = sim, i
			}
		}
		centroids = append(centroids, points[worst].normal)
	}

	assign := make([]int, len(points))
	for i, p := range points {
		assign[i] = nearestCentroid(p.normal, centroids)
	}
	for iter := 0; iter < 20; iter++ {
		for c := range centroids {
			var sum lin.V3
			n := 0
			for i, p := range points {
				if assign[i] != c {
					continue
				}
				sum.X, sum.Y, sum.Z = sum.X+p.normal.X, sum.Y+p.normal.Y, sum.Z+p.normal.Z
				n++
			}
			if n > 0 {
				centroids[c] = *lin.NewV3().Scale(&sum, 1.0/float64(n)).Unit()
			}
		}
		changed := false
		for i, p := range points {
			c := nearestCentroid(p.normal, centroids)
			if c != assign[i] {
				assign[i], changed = c, true
			}
		}
		if !changed {
			break
		}
	}

	groups := make([][]satContact, k)
	for i, p := range points {
		groups[assign[i]] = append(groups[assign[i]], p)
	}
	out := groups[:0]
	for _, g := range groups {
		if len(g) > 0 {
			out = append(out, g)
		}
	}
	return out
}

// nearestCentroid returns the index of the centroid whose normal is most
// similar (highest dot product) to n.
func nearestCentroid(n lin.V3, centroids []lin.V3) int {
	best, bestSim := 0, -2.0
	for i, c := range centroids {
		if sim := n.Dot(&c); sim > bestSim {
			bestSim, best = sim, i
		}
	}
	return best
}

// closestNormalSimilarity is the highest dot product between n and any
// already-chosen centroid; farthest-point seeding picks the point that
// minimizes this.
func closestNormalSimilarity(n lin.V3, centroids []lin.V3) float64 {
	best := -2.0
	for _, c := range centroids {
		if sim := n.Dot(&c); sim > best {
			best = sim
		}
	}
	return best
}

// reduceContactCluster collapses an arbitrary set of candidate contact
// points (as produced by, for example, colliding a dynamic shape against
// every mesh triangle it overlaps) down to at most maxManifoldPts points
// that best represent the contact region's extent and depth.
//
// Seeding is farthest-point: start from the deepest point (the one most
// likely to matter to the solver), then repeatedly add whichever remaining
// point is farthest from the points already chosen. The final point is
// picked differently, by largest quadrilateral area, reusing the original
// largestArea/area logic from contactPair's manifold-replacement policy
// (there applied incrementally, one new point at a time; here applied once
// over a batch).
func reduceContactCluster(points []satContact) []satContact {
	if len(points) <= maxManifoldPts {
		return points
	}

	deepest := 0
	for i, p := range points {
		if p.depth > points[deepest].depth {
			deepest = i
		}
	}
	chosen := []int{deepest}

	for len(chosen) < maxManifoldPts-1 {
		next, nextDist := -1, -1.0
		for i := range points {
			if containsInt(chosen, i) {
				continue
			}
			d := minDistToSet(points, i, chosen)
			if d > nextDist {
				nextDist, next = d, i
			}
		}
		chosen = append(chosen, next)
	}

	if len(chosen) < maxManifoldPts && len(points) > len(chosen) {
		best, bestArea := -1, -1.0
		for i := range points {
			if containsInt(chosen, i) {
				continue
			}
			a := quadArea(points, chosen, i)
			if a > bestArea {
				bestArea, best = a, i
			}
		}
		chosen = append(chosen, best)
	}

	out := make([]satContact, len(chosen))
	for i, idx := range chosen {
		out[i] = points[idx]
	}
	return out
}

func minDistToSet(points []satContact, candidate int, set []int) float64 {
	best := -1.0
	for _, s := range set {
		if d := points[candidate].onA.DistSqr(&points[s].onA); best < 0 || d < best {
			best = d
		}
	}
	return best
}

// quadArea mirrors contactPair.area/largestArea: the largest of the three
// possible cross-product areas formed by the four points, used to judge
// how much contact-patch coverage adding candidate would contribute.
func quadArea(points []satContact, chosen []int, candidate int) float64 {
	if len(chosen) < 3 {
		return 0
	}
	p0 := points[candidate].onA
	p1, p2, p3 := points[chosen[0]].onA, points[chosen[1]].onA, points[chosen[2]].onA

	e0a, e0b := lin.NewV3().Sub(&p0, &p1), lin.NewV3().Sub(&p2, &p3)
	e1a, e1b := lin.NewV3().Sub(&p0, &p2), lin.NewV3().Sub(&p1, &p3)
	e2a, e2b := lin.NewV3().Sub(&p0, &p3), lin.NewV3().Sub(&p1, &p2)

	l0 := lin.NewV3().Cross(e0a, e0b).LenSqr()
	l1 := lin.NewV3().Cross(e1a, e1b).LenSqr()
	l2 := lin.NewV3().Cross(e2a, e2b).LenSqr()

	max := l0
	if l1 > max {
		max = l1
	}
	if l2 > max {
		max = l2
	}
	return max
}
