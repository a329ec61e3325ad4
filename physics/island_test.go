// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allMovable(i int32) bool { return true }

func TestBuildIslandsMergesConnectedBodies(t *testing.T) {
	edges := []islandEdge{{a: 0, b: 1}, {a: 1, b: 2}}
	islands := buildIslands(4, allMovable, edges)
	require.Len(t, islands, 2, "expected bodies {0,1,2} in one island and body 3 alone")

	sizes := map[int]int{}
	for _, island := range islands {
		sizes[len(island)]++
	}
	assert.Equal(t, 1, sizes[3], "expected exactly one island of size 3")
	assert.Equal(t, 1, sizes[1], "expected exactly one island of size 1")
}

func TestBuildIslandsSkipsStaticBodies(t *testing.T) {
	movable := func(i int32) bool { return i != 1 }
	edges := []islandEdge{{a: 0, b: 1}, {a: 1, b: 2}}
	islands := buildIslands(3, movable, edges)

	require.Len(t, islands, 2, "a static body must not merge the islands on either side of it")
	for _, island := range islands {
		assert.Len(t, island, 1)
	}
}

func TestBuildIslandsAcceptsMultipleEdgeSets(t *testing.T) {
	contacts := []islandEdge{{a: 0, b: 1}}
	joints := []islandEdge{{a: 2, b: 3}}
	islands := buildIslands(4, allMovable, contacts, joints)
	assert.Len(t, islands, 2, "expected contacts and joints to both contribute edges")
}

func TestUnionFindPathCompression(t *testing.T) {
	uf := newUnionFind(5)
	uf.union(0, 1)
	uf.union(1, 2)
	uf.union(2, 3)
	require.Equal(t, uf.find(0), uf.find(3), "expected a chain of unions to collapse to one root")
	assert.NotEqual(t, uf.find(0), uf.find(4), "expected body 4 to remain in its own set")
}
