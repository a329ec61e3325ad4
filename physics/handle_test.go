// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "testing"

func TestArenaInsertGetRemove(t *testing.T) {
	a := newArena[int]()
	i1, g1 := a.insert(10)
	i2, g2 := a.insert(20)

	if v, ok := a.get(i1, g1); !ok || *v != 10 {
		t.Fatalf("expected to find 10 at (%d,%d), got %v ok=%v", i1, g1, v, ok)
	}
	if v, ok := a.get(i2, g2); !ok || *v != 20 {
		t.Fatalf("expected to find 20 at (%d,%d), got %v ok=%v", i2, g2, v, ok)
	}

	if !a.remove(i1, g1) {
		t.Fatal("expected remove to succeed on a live handle")
	}
	if _, ok := a.get(i1, g1); ok {
		t.Fatal("expected a removed handle to no longer resolve")
	}
}

func TestArenaReusesSlotsWithBumpedGeneration(t *testing.T) {
	a := newArena[int]()
	i1, g1 := a.insert(1)
	a.remove(i1, g1)
	i2, g2 := a.insert(2)

	if i1 != i2 {
		t.Fatalf("expected the freed slot to be reused, got %d then %d", i1, i2)
	}
	if g2 <= g1 {
		t.Fatalf("expected generation to increase on reuse, got %d then %d", g1, g2)
	}
	if _, ok := a.get(i1, g1); ok {
		t.Fatal("expected the stale generation to no longer resolve")
	}
}

func TestArenaGetByIndexIgnoresGeneration(t *testing.T) {
	a := newArena[int]()
	i, _ := a.insert(42)
	v, ok := a.getByIndex(i)
	if !ok || *v != 42 {
		t.Fatalf("expected getByIndex to find the live value, got %v ok=%v", v, ok)
	}

	a.remove(i, a.slots[i].generation)
	if _, ok := a.getByIndex(i); ok {
		t.Fatal("expected getByIndex to report a freed slot as absent")
	}
}

func TestArenaEachSkipsFreedSlots(t *testing.T) {
	a := newArena[int]()
	i1, g1 := a.insert(1)
	a.insert(2)
	a.remove(i1, g1)

	seen := 0
	a.each(func(index uint32, v *int) { seen++ })
	if seen != 1 {
		t.Fatalf("expected each to visit exactly one live slot, visited %d", seen)
	}
	if a.len() != 1 {
		t.Fatalf("expected len() == 1, got %d", a.len())
	}
}

func TestHandleValidity(t *testing.T) {
	var zero BodyID
	if zero.Valid() {
		t.Error("expected the zero-value BodyID to be invalid")
	}
	live := BodyID{index: 0, generation: 1}
	if !live.Valid() {
		t.Error("expected a handle with a nonzero generation to be valid")
	}
}
