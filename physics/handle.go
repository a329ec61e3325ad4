// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

// Handles replace the original engine's intrusive pointers and cgo-backed
// ids. A handle pairs a slot index with a generation counter so that a
// handle captured before a slot was freed and reused reads as stale rather
// than silently aliasing new data.

// BodyID identifies a Body created by a World.
type BodyID struct{ index, generation uint32 }

// FixtureID identifies a Fixture attached to a Body.
type FixtureID struct{ index, generation uint32 }

// JointID identifies a Joint created by a World.
type JointID struct{ index, generation uint32 }

// Valid reports whether the handle was ever assigned, i.e. is not the
// zero-value handle returned by a failed lookup.
func (id BodyID) Valid() bool    { return id.generation != 0 }
func (id FixtureID) Valid() bool { return id.generation != 0 }
func (id JointID) Valid() bool   { return id.generation != 0 }

// slot is one entry of a generational arena. freeNext chains free slots
// together; it is meaningless while the slot is live.
type slot[T any] struct {
	value      T
	generation uint32
	live       bool
	freeNext   int
}

// arena is a generational, free-list backed slab allocator. It plays the
// role the original library gave a per-step block allocator, except that
// slots here live for as long as the owning object does rather than for a
// single step; step-scoped buffers, such as the solver's constraint slice,
// are local slices built fresh on each Step.
type arena[T any] struct {
	slots    []slot[T]
	freeHead int // -1 when empty.
}

func newArena[T any]() *arena[T] { return &arena[T]{freeHead: -1} }

// insert stores v in a free or new slot and returns a handle to it.
func (a *arena[T]) insert(v T) (index, generation uint32) {
	if a.freeHead >= 0 {
		i := a.freeHead
		a.freeHead = a.slots[i].freeNext
		a.slots[i].value = v
		a.slots[i].live = true
		if a.slots[i].generation == 0 {
			a.slots[i].generation = 1
		}
		return uint32(i), a.slots[i].generation
	}
	a.slots = append(a.slots, slot[T]{value: v, generation: 1, live: true})
	return uint32(len(a.slots) - 1), 1
}

// get returns the stored value and whether (index, generation) is still live.
func (a *arena[T]) get(index, generation uint32) (*T, bool) {
	if int(index) >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[index]
	if !s.live || s.generation != generation {
		return nil, false
	}
	return &s.value, true
}

// remove frees the slot, bumping its generation so outstanding handles
// become invalid.
func (a *arena[T]) remove(index, generation uint32) bool {
	if int(index) >= len(a.slots) {
		return false
	}
	s := &a.slots[index]
	if !s.live || s.generation != generation {
		return false
	}
	s.live = false
	s.generation++
	s.freeNext = a.freeHead
	a.freeHead = int(index)
	return true
}

// getByIndex returns the slot's value regardless of generation, used by
// island partitioning which addresses bodies by raw arena index rather than
// a caller-held handle.
func (a *arena[T]) getByIndex(index uint32) (*T, bool) {
	if int(index) >= len(a.slots) || !a.slots[index].live {
		return nil, false
	}
	return &a.slots[index].value, true
}

// slotCount returns the number of slots ever allocated, live or free; the
// upper bound an index-addressed pass (e.g. island partitioning) must size
// its arrays to.
func (a *arena[T]) slotCount() int { return len(a.slots) }

// each calls fn for every live slot, in slot order.
func (a *arena[T]) each(fn func(index uint32, v *T)) {
	for i := range a.slots {
		if a.slots[i].live {
			fn(uint32(i), &a.slots[i].value)
		}
	}
}

// len returns the number of live slots.
func (a *arena[T]) len() int {
	n := 0
	for i := range a.slots {
		if a.slots[i].live {
			n++
		}
	}
	return n
}
