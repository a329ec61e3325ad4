// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/vex3d/vex/math/lin"
)

// Stats reports per-step counters for profiling and testbed overlays,
// generalizing the original's single frame-time readout into the set of
// counts a caller would want logged alongside it.
type Stats struct {
	Bodies          int
	AwakeBodies     int
	Fixtures        int
	Joints          int
	Contacts        int
	TouchingContacts int
	Islands         int
}

// World owns every body, fixture and joint and is the sole entry point for
// stepping the simulation, the same role the original's top-level
// simulation struct played. Unlike the original, all storage goes through
// generational arenas (handle.go) rather than raw slices of pointers, so
// handles captured across a Step remain safe to validate.
type World struct {
	id string // stable identifier for log correlation across multiple concurrent worlds.

	gravity lin.V3

	bodies   *arena[body]
	fixtures *arena[fixture]
	joints   *arena[Joint]

	tree  *aabbTree
	pairs map[contactKey]*Contact

	listener ContactListener
	drawer   DebugDrawer

	stats Stats
}

// NewWorld creates an empty World with the given gravity vector.
func NewWorld(gravity lin.V3) *World {
	w := &World{
		id:       uuid.NewString(),
		gravity:  gravity,
		bodies:   newArena[body](),
		fixtures: newArena[fixture](),
		joints:   newArena[Joint](),
		tree:     newAABBTree(),
		pairs:    make(map[contactKey]*Contact),
		listener: baseContactListener{},
	}
	slog.Debug("physics: world created", "world", w.id)
	return w
}

// ID returns the world's stable identifier, useful for correlating log
// lines and listener callbacks when a process runs more than one World.
func (w *World) ID() string { return w.id }

// SetContactListener installs the listener Step reports contact lifecycle
// events to; passing nil restores the no-op default.
func (w *World) SetContactListener(l ContactListener) {
	if l == nil {
		l = baseContactListener{}
	}
	w.listener = l
}

// SetDebugDrawer installs the drawer Step uses for DrawSegment/DrawAABB/etc
// calls; nil disables drawing.
func (w *World) SetDebugDrawer(d DebugDrawer) { w.drawer = d }

func (w *World) bodyPtr(id BodyID) *body {
	v, ok := w.bodies.get(id.index, id.generation)
	if !ok {
		return nil
	}
	return v
}

func (w *World) fixturePtr(id FixtureID) *fixture {
	v, ok := w.fixtures.get(id.index, id.generation)
	if !ok {
		return nil
	}
	return v
}

func (w *World) jointPtr(id JointID) *Joint {
	v, ok := w.joints.get(id.index, id.generation)
	if !ok {
		return nil
	}
	return v
}

// CreateBody adds a new Body to the World and returns a handle to it.
func (w *World) CreateBody(def BodyDef) BodyID {
	index, gen := w.bodies.insert(body{})
	id := BodyID{index: index, generation: gen}
	*w.bodyPtr(id) = *newBodyState(id, def)
	w.bodyPtr(id).updateInvInertiaWorld()
	return id
}

// DestroyBody removes a body along with every fixture and joint attached to
// it, matching the original's body teardown order: fixtures (and their
// broad-phase proxies) go first, then incident joints, then the body.
func (w *World) DestroyBody(id BodyID) error {
	b := w.bodyPtr(id)
	if b == nil {
		return ErrNotFound
	}
	for _, fid := range append([]FixtureID(nil), b.fixtures...) {
		w.DestroyFixture(fid)
	}
	w.joints.each(func(_ uint32, j *Joint) {
		if j.def.BodyA == id || j.def.BodyB == id {
			w.DestroyJoint(j.id)
		}
	})
	for key, c := range w.pairs {
		if c.BodyA == id || c.BodyB == id {
			delete(w.pairs, key)
		}
	}
	w.bodies.remove(id.index, id.generation)
	return nil
}

// CreateFixture attaches a shape to a body, creates its broad-phase proxy
// and recomputes the body's mass properties, the role the original's
// Body.CreateFixture/computeMassData pair played together.
func (w *World) CreateFixture(bodyID BodyID, def FixtureDef) (FixtureID, error) {
	b := w.bodyPtr(bodyID)
	if b == nil {
		return FixtureID{}, ErrNotFound
	}
	if def.Material == (Material{}) {
		def.Material = DefaultMaterial()
	}
	index, gen := w.fixtures.insert(fixture{})
	id := FixtureID{index: index, generation: gen}
	box := def.Shape.AABB(&b.xf, broadphaseSlack)
	f := fixture{id: id, body: bodyID, def: def}
	f.proxy = w.tree.CreateProxy(box, id)
	*w.fixturePtr(id) = f
	b.fixtures = append(b.fixtures, id)
	w.recomputeMass(b)
	return id, nil
}

// DestroyFixture removes a fixture, its broad-phase proxy, any contacts it
// participates in, and recomputes the owning body's mass.
func (w *World) DestroyFixture(id FixtureID) error {
	f := w.fixturePtr(id)
	if f == nil {
		return ErrNotFound
	}
	w.tree.DestroyProxy(f.proxy)
	for key, c := range w.pairs {
		if c.FixtureA == id || c.FixtureB == id {
			delete(w.pairs, key)
		}
	}
	if b := w.bodyPtr(f.body); b != nil {
		for i, fid := range b.fixtures {
			if fid == id {
				b.fixtures = append(b.fixtures[:i], b.fixtures[i+1:]...)
				break
			}
		}
		w.recomputeMass(b)
	}
	w.fixtures.remove(id.index, id.generation)
	return nil
}

func (w *World) recomputeMass(b *body) {
	fixtures := make([]*fixture, 0, len(b.fixtures))
	for _, fid := range b.fixtures {
		if f := w.fixturePtr(fid); f != nil {
			fixtures = append(fixtures, f)
		}
	}
	b.computeMass(fixtures)
	b.updateInvInertiaWorld()
}

// CreateJoint adds a constraint between two bodies (or, for a MouseJoint,
// a single body and a moving world-space target).
func (w *World) CreateJoint(def JointDef) (JointID, error) {
	if w.bodyPtr(def.BodyA) == nil {
		return JointID{}, ErrInvalidJoint
	}
	if def.Kind != MouseJoint {
		if w.bodyPtr(def.BodyB) == nil || def.BodyA == def.BodyB {
			return JointID{}, ErrInvalidJoint
		}
	}
	index, gen := w.joints.insert(Joint{})
	id := JointID{index: index, generation: gen}
	*w.jointPtr(id) = *newJoint(id, def)
	return id, nil
}

// DestroyJoint removes a previously created joint.
func (w *World) DestroyJoint(id JointID) error {
	if w.jointPtr(id) == nil {
		return ErrNotFound
	}
	w.joints.remove(id.index, id.generation)
	return nil
}

// contactKey identifies an unordered fixture pair for the w.pairs map,
// ordered by raw index so (a,b) and (b,a) collide to the same entry.
type contactKey struct{ lo, hi FixtureID }

func makeContactKey(a, b FixtureID) contactKey {
	if a.index > b.index {
		a, b = b, a
	}
	return contactKey{lo: a, hi: b}
}

// Step advances the simulation by dt: applies forces, runs broad and narrow
// phase, solves velocity and position constraints, integrates motion and
// updates sleeping, in the same overall order as the original's
// world_Step (gravity -> integrate velocities -> collide -> solve ->
// integrate transforms -> sleep), generalized to the arena/handle model and
// to joints participating in the solver alongside contacts.
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}

	w.bodies.each(func(_ uint32, b *body) {
		b.applyGravity(&w.gravity)
		b.integrateVelocities(dt)
		b.integrateGyroscopic(dt)
		b.applyDamping(dt)
	})

	w.updatePairs()
	contacts := w.refreshContacts()

	bodyOf := func(id BodyID) *body { return w.bodyPtr(id) }

	var jointList []jointConstraint
	w.joints.each(func(_ uint32, j *Joint) {
		bodyA, bodyB := bodyOf(j.def.BodyA), bodyOf(j.def.BodyB)
		if bodyA == nil || (j.def.Kind != MouseJoint && bodyB == nil) {
			return
		}
		j.resolveBodies(bodyA, bodyB)
		jointList = append(jointList, j)
	})

	solveVelocityConstraints(contacts, bodyOf, jointList, dt)

	w.bodies.each(func(_ uint32, b *body) {
		if b.movable() && b.awake {
			b.integrateTransform(dt)
		}
	})

	solvePositionConstraints(contacts, bodyOf, jointList)

	w.moveProxies(dt)
	w.updateSleeping(dt, contacts)

	w.bodies.each(func(_ uint32, b *body) {
		if b.awake {
			b.clearForces()
		}
	})

	w.notifyListeners(contacts)
	w.updateStats(contacts)
}

// updatePairs queries the broad-phase tree for every fixture's fattened box
// against the tree, creating a Contact for any newly-overlapping pair that
// passes group-mask filtering, the role the original's
// broad_get_collision_pairs played before the dynamic tree replaced its
// O(n^2) sweep.
func (w *World) updatePairs() {
	w.fixtures.each(func(_ uint32, f *fixture) {
		bodyA := w.bodyPtr(f.body)
		box := f.def.Shape.AABB(&bodyA.xf, broadphaseSlack)
		w.tree.Query(box, func(data any) bool {
			otherID := data.(FixtureID)
			if otherID == f.id {
				return true
			}
			other := w.fixturePtr(otherID)
			if other == nil {
				return true
			}
			if !shouldCollide(f, other) {
				return true
			}
			key := makeContactKey(f.id, otherID)
			if _, ok := w.pairs[key]; ok {
				return true
			}
			isSensor := f.def.IsSensor || other.def.IsSensor
			w.pairs[key] = newContact(f.id, otherID, f.body, other.body, isSensor)
			return true
		})
	})
}

func shouldCollide(a, b *fixture) bool {
	if a.body == b.body {
		return false
	}
	if a.def.GroupMask != 0 && b.def.GroupMask != 0 && a.def.GroupMask&b.def.GroupMask == 0 {
		return false
	}
	return true
}

// refreshContacts runs narrow phase on every live pair, drops pairs whose
// fixtures no longer exist or whose fattened AABBs no longer overlap, and
// returns the remaining live contacts for the solver.
func (w *World) refreshContacts() []*Contact {
	out := make([]*Contact, 0, len(w.pairs))
	for key, c := range w.pairs {
		fa, fb := w.fixturePtr(c.FixtureA), w.fixturePtr(c.FixtureB)
		if fa == nil || fb == nil {
			delete(w.pairs, key)
			continue
		}
		bodyA, bodyB := w.bodyPtr(c.BodyA), w.bodyPtr(c.BodyB)
		if bodyA == nil || bodyB == nil {
			delete(w.pairs, key)
			continue
		}
		boxA := fa.def.Shape.AABB(&bodyA.xf, 0)
		boxB := fb.def.Shape.AABB(&bodyB.xf, 0)
		if !boxA.Fatten(linearSlop).Overlaps(boxB.Fatten(linearSlop)) {
			if c.Touching {
				c.Touching = false
				c.Manifolds = c.Manifolds[:0]
				w.listener.EndContact(c)
			}
			continue
		}
		if !bodyA.awake && !bodyB.awake {
			out = append(out, c)
			continue
		}
		wasTouching := c.Touching
		c.update(&fa.def.Shape, &bodyA.xf, fa.def.Material, &fb.def.Shape, &bodyB.xf, fb.def.Material)
		if c.Touching && !wasTouching {
			w.listener.BeginContact(c)
		} else if !c.Touching && wasTouching {
			w.listener.EndContact(c)
		}
		out = append(out, c)
	}
	return out
}

func (w *World) notifyListeners(contacts []*Contact) {
	for _, c := range contacts {
		if c.Touching && !c.IsSensor {
			w.listener.PreSolve(c)
		}
	}
}

// moveProxies re-inserts any fixture proxy whose tight AABB has escaped its
// stored fattened box, the broad-phase's lazy-update half of the original's
// per-step bounds refresh.
func (w *World) moveProxies(dt float64) {
	w.fixtures.each(func(_ uint32, f *fixture) {
		b := w.bodyPtr(f.body)
		if b == nil || !b.awake {
			return
		}
		box := f.def.Shape.AABB(&b.xf, 0)
		disp := *lin.NewV3().Scale(&b.linVel, dt)
		w.tree.MoveProxy(f.proxy, box, disp)
	})
}

// updateSleeping partitions movable bodies into islands via contacts and
// joints, and puts an entire island to sleep once every body in it has been
// below the velocity thresholds for sleepTime seconds, mirroring the
// original's island-wide (not per-body) sleep bookkeeping.
func (w *World) updateSleeping(dt float64, contacts []*Contact) {
	n := w.bodies.slotCount()
	movable := func(i int32) bool {
		b := w.bodySlot(i)
		return b != nil && b.movable()
	}

	var contactEdges []islandEdge
	for _, c := range contacts {
		if !c.Touching || c.IsSensor {
			continue
		}
		ai, bi := w.bodyIndex(c.BodyA), w.bodyIndex(c.BodyB)
		if ai >= 0 && bi >= 0 {
			contactEdges = append(contactEdges, islandEdge{a: ai, b: bi})
		}
	}
	var jointEdges []islandEdge
	w.joints.each(func(_ uint32, j *Joint) {
		if j.def.Kind == MouseJoint {
			return
		}
		ai, bi := w.bodyIndex(j.def.BodyA), w.bodyIndex(j.def.BodyB)
		if ai >= 0 && bi >= 0 {
			jointEdges = append(jointEdges, islandEdge{a: ai, b: bi})
		}
	})

	islands := buildIslands(n, movable, contactEdges, jointEdges)
	w.stats.Islands = len(islands)

	for _, island := range islands {
		quiet := true
		anyAllowSleep := true
		for _, idx := range island {
			b := w.bodySlot(idx)
			if !b.allowSleep {
				anyAllowSleep = false
			}
			if !b.belowSleepThreshold() {
				quiet = false
			}
		}
		minSleepTime := sleepTime + 1
		for _, idx := range island {
			b := w.bodySlot(idx)
			if quiet && anyAllowSleep {
				b.sleepTime += dt
			} else {
				b.sleepTime = 0
			}
			if b.sleepTime < minSleepTime {
				minSleepTime = b.sleepTime
			}
		}
		if anyAllowSleep && minSleepTime >= sleepTime {
			for _, idx := range island {
				b := w.bodySlot(idx)
				b.awake = false
				b.linVel.SetS(0, 0, 0)
				b.angVel.SetS(0, 0, 0)
			}
		}
	}
}

func (w *World) bodyIndex(id BodyID) int32 {
	if w.bodyPtr(id) == nil {
		return -1
	}
	return int32(id.index)
}

func (w *World) bodySlot(i int32) *body {
	v, ok := w.bodies.getByIndex(uint32(i))
	if !ok {
		return nil
	}
	return v
}

func (w *World) updateStats(contacts []*Contact) {
	touching := 0
	for _, c := range contacts {
		if c.Touching {
			touching++
		}
	}
	awake := 0
	w.bodies.each(func(_ uint32, b *body) {
		if b.awake {
			awake++
		}
	})
	w.stats = Stats{
		Bodies:           w.bodies.len(),
		AwakeBodies:      awake,
		Fixtures:         w.fixtures.len(),
		Joints:           w.joints.len(),
		Contacts:         len(w.pairs),
		TouchingContacts: touching,
		Islands:          w.stats.Islands,
	}
}

// Stats returns the counters computed by the most recent Step.
func (w *World) Stats() Stats { return w.stats }

// QueryAABB visits every fixture whose broad-phase proxy overlaps box.
func (w *World) QueryAABB(box AABB, fn func(FixtureID) bool) {
	w.tree.Query(box, func(data any) bool { return fn(data.(FixtureID)) })
}

// RayCastClosest returns the nearest fixture hit by the ray, if any, using
// the broad-phase tree to prune fixtures before running narrow-phase ray
// casts, the same coarse-then-fine structure as the original's
// caster.go (there hardcoded to a flat list instead of a tree).
func (w *World) RayCastClosest(input RayCastInput) (FixtureID, RayCastOutput) {
	var bestID FixtureID
	var best RayCastOutput
	maxFraction := input.MaxFraction
	w.tree.RayCast(input.Origin, input.Direction, maxFraction, func(data any, _ AABB) float64 {
		id := data.(FixtureID)
		f := w.fixturePtr(id)
		if f == nil {
			return maxFraction
		}
		b := w.bodyPtr(f.body)
		if b == nil {
			return maxFraction
		}
		in := RayCastInput{Origin: input.Origin, Direction: input.Direction, MaxFraction: maxFraction}
		out := rayCastShape(&f.def.Shape, &b.xf, in)
		if out.Hit && out.Fraction < maxFraction {
			maxFraction = out.Fraction
			best, bestID = out, id
		}
		return maxFraction
	})
	return bestID, best
}

// ShapeCast sweeps a free-standing shape from startXf along displacement and
// reports the first fixture it would touch, built on the conservative
// advancement TOI in toi.go. The spec's "opportunistic TOI" scope: this is a
// single forward sweep queried on demand, not continuous per-step CCD.
func (w *World) ShapeCast(shape *Shape, startXf lin.T, displacement lin.V3) (FixtureID, TOIOutput) {
	box := shape.AABB(&startXf, 0)
	endLoc := *lin.NewV3().Add(startXf.Loc, &displacement)
	sweepBox := box.Union(AABB{Min: endLoc, Max: endLoc}.Fatten(shape.Radius() + broadphaseSlack))

	var bestID FixtureID
	best := TOIOutput{T: 1}
	found := false
	w.QueryAABB(sweepBox, func(id FixtureID) bool {
		f := w.fixturePtr(id)
		if f == nil {
			return true
		}
		b := w.bodyPtr(f.body)
		if b == nil {
			return true
		}
		out := computeTOI(shape, &startXf, displacement, &f.def.Shape, &b.xf)
		if out.Hit && out.T < best.T {
			best, bestID, found = out, id, true
		}
		return true
	})
	if !found {
		return FixtureID{}, TOIOutput{T: 1}
	}
	return bestID, best
}
