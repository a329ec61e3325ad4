// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"testing"

	"github.com/vex3d/vex/math/lin"
)

func TestReduceContactClusterPassesSmallSetsThrough(t *testing.T) {
	points := []satContact{
		{onA: lin.V3{X: 0}, depth: 0.1},
		{onA: lin.V3{X: 1}, depth: 0.2},
	}
	out := reduceContactCluster(points)
	if len(out) != len(points) {
		t.Fatalf("expected a set at or below maxManifoldPts to pass through unchanged, got %d points", len(out))
	}
}

func TestReduceContactClusterKeepsDeepestPoint(t *testing.T) {
	points := make([]satContact, 0, 12)
	for i := 0; i < 12; i++ {
		points = append(points, satContact{
			onA:   lin.V3{X: float64(i), Y: 0, Z: 0},
			depth: 0.01,
		})
	}
	deepIdx := 6
	points[deepIdx].depth = 5.0

	out := reduceContactCluster(points)
	if len(out) > maxManifoldPts {
		t.Fatalf("expected at most %d points, got %d", maxManifoldPts, len(out))
	}

	found := false
	for _, p := range out {
		if p.depth == 5.0 {
			found = true
		}
	}
	if !found {
		t.Error("expected the deepest point to survive cluster reduction")
	}
}

func TestReduceContactClusterSpreadsAcrossExtent(t *testing.T) {
	// four clustered points plus four far corners: reduction should prefer
	// spreading the retained set across the cluster's extent, not just
	// picking the first few candidates in order.
	points := []satContact{
		{onA: lin.V3{X: 0, Y: 0}, depth: 0.05},
		{onA: lin.V3{X: 0.01, Y: 0}, depth: 0.05},
		{onA: lin.V3{X: 10, Y: 0}, depth: 1.0},
		{onA: lin.V3{X: 0, Y: 10}, depth: 0.05},
		{onA: lin.V3{X: 10, Y: 10}, depth: 0.05},
	}
	out := reduceContactCluster(points)
	if len(out) != maxManifoldPts {
		t.Fatalf("expected exactly %d points, got %d", maxManifoldPts, len(out))
	}

	seenFar := false
	for _, p := range out {
		if p.onA.X == 10 && p.onA.Y == 0 {
			seenFar = true
		}
	}
	if !seenFar {
		t.Error("expected the deepest far corner to be retained by farthest-point seeding")
	}
}

func TestClusterContactsByNormalSplitsOpposingNormals(t *testing.T) {
	points := []satContact{
		{onA: lin.V3{X: 0}, normal: lin.V3{Y: 1}, depth: 0.1},
		{onA: lin.V3{X: 1}, normal: lin.V3{Y: 1}, depth: 0.1},
		{onA: lin.V3{X: 2}, normal: lin.V3{Y: 1}, depth: 0.1},
		{onA: lin.V3{X: 10}, normal: lin.V3{X: 1}, depth: 0.1},
		{onA: lin.V3{X: 11}, normal: lin.V3{X: 1}, depth: 0.1},
		{onA: lin.V3{X: 12}, normal: lin.V3{X: 1}, depth: 0.1},
	}

	groups := clusterContactsByNormal(points)
	if len(groups) != 2 {
		t.Fatalf("expected two distinct manifolds for two unrelated contact normals, got %d", len(groups))
	}
	for _, g := range groups {
		first := g[0].normal
		for _, p := range g[1:] {
			if p.normal != first {
				t.Errorf("expected every point in a cluster to share its group's normal, got %v and %v", first, p.normal)
			}
		}
	}
}

func TestClusterContactsByNormalKeepsAlignedNormalsTogether(t *testing.T) {
	points := []satContact{
		{onA: lin.V3{X: 0}, normal: lin.V3{Y: 1}, depth: 0.1},
		{onA: lin.V3{X: 1}, normal: lin.V3{Y: 1}, depth: 0.2},
		{onA: lin.V3{X: 2}, normal: lin.V3{Y: 1}, depth: 0.05},
	}

	groups := clusterContactsByNormal(points)
	if len(groups) != 1 {
		t.Fatalf("expected a single manifold when every point shares one normal, got %d", len(groups))
	}
	if len(groups[0]) != len(points) {
		t.Errorf("expected the single cluster to contain every point, got %d of %d", len(groups[0]), len(points))
	}
}

func TestClusterContactsByNormalCapsAtMaxManifolds(t *testing.T) {
	points := []satContact{
		{onA: lin.V3{X: 0}, normal: lin.V3{X: 1}, depth: 0.1},
		{onA: lin.V3{X: 1}, normal: lin.V3{Y: 1}, depth: 0.1},
		{onA: lin.V3{X: 2}, normal: lin.V3{Z: 1}, depth: 0.1},
		{onA: lin.V3{X: 3}, normal: lin.V3{X: -1}, depth: 0.1},
	}

	groups := clusterContactsByNormal(points)
	if len(groups) > maxManifolds {
		t.Fatalf("expected at most %d manifolds, got %d", maxManifolds, len(groups))
	}
}
