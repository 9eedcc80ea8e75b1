package collision

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/jakecoffman/cp"
	"golang.org/x/sync/errgroup"

	"github.com/plus3/quadphys/ecs"
)

const (
	DefaultLevel             = 4
	DefaultParallelThreshold = 64
)

// DefaultBounds is the playfield covered by the quadtree when Options.Bounds is empty.
var DefaultBounds = cp.BB{L: 0, B: 0, R: 640, T: 480}

// Options configures a CollisionSystem. Zero values select the defaults.
type Options struct {
	// Level is the quadtree depth.
	Level int
	// Bounds is the region covered by the quadtree. Boxes outside it are still
	// detected, they just share the edge cells.
	Bounds cp.BB
	// ParallelThreshold is the candidate count from which a tag pair's narrow
	// phase is split across goroutines.
	ParallelThreshold int
	// Workers bounds the goroutines used by the narrow phase. 0 means GOMAXPROCS,
	// 1 keeps everything on the calling goroutine.
	Workers int
	// SpeedCap is the per-axis velocity limit used by the RigidbodySystem built by Install.
	SpeedCap float64
	Logger   *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Level <= 0 {
		o.Level = DefaultLevel
	}
	if o.Bounds.R <= o.Bounds.L || o.Bounds.T <= o.Bounds.B {
		o.Bounds = DefaultBounds
	}
	if o.ParallelThreshold <= 0 {
		o.ParallelThreshold = DefaultParallelThreshold
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.SpeedCap <= 0 {
		o.SpeedCap = DefaultSpeedCap
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// body is the per-frame snapshot of one collider entity.
type body struct {
	entity    ecs.Entity
	collider  RectCollider
	position  cp.Vector
	transform *Transform
	result    *ColliderResult
}

// candidate is the quadtree payload: a body slot and which side of the tag pair it is on.
type candidate struct {
	slot  int32
	sideA bool
}

// CollisionSystem detects overlapping colliders once per frame, records trigger
// partners and penetration corrections in each entity's ColliderResult, and
// applies the collision response to entities that have a Rigidbody.
type CollisionSystem struct {
	Stores

	matrix *TagMatrix
	pairs  []TagPair
	opts   Options
	logger *slog.Logger
	grid   *QuadTreeGrid[candidate]

	bodies      []body
	corrections []correction
	byTag       map[string][]int32
	candidates  []pairRef
	batches     []batch
	stats       FrameStats
}

// NewCollisionSystem creates the collision pass for the given stores.
// The matrix must not be modified afterwards.
func NewCollisionSystem(stores Stores, matrix *TagMatrix, opts Options) *CollisionSystem {
	opts = opts.withDefaults()
	bounds := opts.Bounds

	s := &CollisionSystem{
		Stores: stores,
		matrix: matrix,
		pairs:  matrix.Pairs(),
		opts:   opts,
		logger: opts.Logger,
		grid:   NewQuadTreeGrid[candidate](opts.Level, bounds.L, bounds.B, bounds.R-bounds.L, bounds.T-bounds.B),
		byTag:  make(map[string][]int32),
	}
	for _, tag := range matrix.Tags() {
		s.byTag[tag] = nil
	}
	return s
}

// Matrix returns the tag matrix the system was built with.
func (s *CollisionSystem) Matrix() *TagMatrix {
	return s.matrix
}

// Stats returns the counters of the most recent pass. The same value is
// published as the world's FrameStats singleton.
func (s *CollisionSystem) Stats() FrameStats {
	return s.stats
}

// Grid returns the quadtree geometry used for broad phase.
func (s *CollisionSystem) Grid() (level int, bounds cp.BB) {
	return s.opts.Level, s.opts.Bounds
}

func (s *CollisionSystem) Execute(frame *ecs.UpdateFrame) {
	s.stats = FrameStats{Tick: frame.Tick}

	s.collect()

	for _, pair := range s.pairs {
		s.evaluate(pair)
	}

	s.resolve()

	if frame.World != nil {
		*ecs.NewSingleton[FrameStats](frame.World).Get() = s.stats
	}
	s.logger.Debug("collision pass", "stats", s.stats)
}

// collect resets every ColliderResult and snapshots collider entities into per-tag slot lists.
func (s *CollisionSystem) collect() {
	s.bodies = s.bodies[:0]
	for tag, slots := range s.byTag {
		s.byTag[tag] = slots[:0]
	}

	for e, collider := range s.Colliders.Iter() {
		result := s.Results.Get(e)
		if result == nil {
			result = s.Results.Add(e, ColliderResult{})
		} else {
			result.reset()
		}

		transform := s.Transforms.Get(e)
		if transform == nil {
			s.skip(e, fmt.Errorf("%w: Transform", ErrMissingComponent))
			continue
		}
		if !(collider.Width > 0) || !(collider.Height > 0) {
			s.skip(e, fmt.Errorf("%w: %q has size %gx%g", ErrInvalidCollider, collider.Tag, collider.Width, collider.Height))
			continue
		}

		slots, known := s.byTag[collider.Tag]
		if !known {
			continue
		}

		slot := int32(len(s.bodies))
		s.bodies = append(s.bodies, body{
			entity:    e,
			collider:  *collider,
			position:  transform.Position,
			transform: transform,
			result:    result,
		})
		s.byTag[collider.Tag] = append(slots, slot)
	}

	s.stats.Colliders = len(s.bodies)

	if cap(s.corrections) < len(s.bodies) {
		s.corrections = make([]correction, len(s.bodies))
	} else {
		s.corrections = s.corrections[:len(s.bodies)]
		for i := range s.corrections {
			s.corrections[i].x.bits.Store(0)
			s.corrections[i].y.bits.Store(0)
		}
	}
}

func (s *CollisionSystem) skip(e ecs.Entity, err error) {
	s.stats.Skipped++
	s.logger.Warn("collision: skipping entity", "entity", e, "tick", s.stats.Tick, "err", err)
}

func (s *CollisionSystem) insert(slots []int32, sideA bool) {
	for _, slot := range slots {
		b := &s.bodies[slot]
		box := b.collider.Bounds(b.position)
		s.grid.AddEntity(box.L, box.B, box.R-box.L, box.T-box.B, candidate{slot: slot, sideA: sideA})
	}
}

// evaluate runs broad and narrow phase for one tag pair.
func (s *CollisionSystem) evaluate(pair TagPair) {
	slotsA := s.byTag[pair.A]
	slotsB := s.byTag[pair.B]
	self := pair.A == pair.B
	if len(slotsA) == 0 || len(slotsB) == 0 || (self && len(slotsA) < 2) {
		return
	}
	s.stats.TagPairs++

	s.insert(slotsA, true)
	if !self {
		s.insert(slotsB, false)
	}

	s.candidates = s.candidates[:0]
	s.grid.IterEntityPair(func(x, y candidate) {
		switch {
		case self:
			s.candidates = append(s.candidates, pairRef{a: x.slot, b: y.slot})
		case x.sideA == y.sideA:
		case x.sideA:
			s.candidates = append(s.candidates, pairRef{a: x.slot, b: y.slot})
		default:
			s.candidates = append(s.candidates, pairRef{a: y.slot, b: x.slot})
		}
	})
	s.stats.Candidates += len(s.candidates)
	if len(s.candidates) == 0 {
		return
	}

	batches := s.runNarrowPhase(pair)
	for i := range batches {
		b := &batches[i]
		s.stats.Overlaps += b.overlaps
		s.stats.Contacts += b.contacts
		for _, ev := range b.events {
			s.recordTrigger(ev)
		}
	}
}

// runNarrowPhase tests every candidate. Large candidate lists are split into
// chunks evaluated concurrently; trigger events come back per chunk, in chunk order.
func (s *CollisionSystem) runNarrowPhase(pair TagPair) []batch {
	n := len(s.candidates)
	workers := s.opts.Workers
	if n < s.opts.ParallelThreshold || workers <= 1 {
		batches := s.resizeBatches(1)
		s.narrow(pair, s.candidates, &batches[0])
		return batches
	}

	chunkSize := (n + workers - 1) / workers
	numChunks := (n + chunkSize - 1) / chunkSize
	batches := s.resizeBatches(numChunks)

	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < numChunks; i++ {
		start := i * chunkSize
		end := min(start+chunkSize, n)
		out := &batches[i]
		g.Go(func() error {
			s.narrow(pair, s.candidates[start:end], out)
			return nil
		})
	}
	_ = g.Wait()

	s.stats.Batches += numChunks
	return batches
}

func (s *CollisionSystem) resizeBatches(n int) []batch {
	for len(s.batches) < n {
		s.batches = append(s.batches, batch{})
	}
	batches := s.batches[:n]
	for i := range batches {
		batches[i].reset()
	}
	return batches
}

// narrow reads body snapshots and writes only to the atomic corrections and its own batch,
// so several calls may run at once.
func (s *CollisionSystem) narrow(pair TagPair, candidates []pairRef, out *batch) {
	for _, ref := range candidates {
		a := &s.bodies[ref.a]
		b := &s.bodies[ref.b]

		p := Penetrate(a.position, a.collider, b.position, b.collider)
		if !p.Overlaps() {
			continue
		}
		out.overlaps++

		if pair.Trigger {
			out.events = append(out.events, triggerEvent(ref))
		}

		if pair.Collide {
			c := p.Correction()
			s.corrections[ref.a].x.offer(c.X)
			s.corrections[ref.a].y.offer(c.Y)
			s.corrections[ref.b].x.offer(-c.X)
			s.corrections[ref.b].y.offer(-c.Y)
			out.contacts++
		}
	}
}

func (s *CollisionSystem) recordTrigger(ev triggerEvent) {
	a := &s.bodies[ev.a]
	b := &s.bodies[ev.b]
	a.result.Collided = append(a.result.Collided, Collided{Entity: b.entity, Tag: b.collider.Tag})
	b.result.Collided = append(b.result.Collided, Collided{Entity: a.entity, Tag: a.collider.Tag})
	s.stats.Triggers++
}

// resolve publishes the corrections and applies the response to bodies with a Rigidbody.
func (s *CollisionSystem) resolve() {
	for slot := range s.bodies {
		b := &s.bodies[slot]
		c := cp.Vector{X: s.corrections[slot].x.load(), Y: s.corrections[slot].y.load()}
		b.result.Collision = c

		if c.X == 0 && c.Y == 0 {
			continue
		}

		rb := s.Rigidbodies.Get(b.entity)
		if rb == nil {
			continue
		}
		ApplyResponse(rb, b.transform, c)
		s.stats.Responses++
	}
}

// Install registers a RigidbodySystem and a CollisionSystem on the scheduler,
// in that order. Systems that read ColliderResult must be registered afterwards.
func Install(scheduler *ecs.Scheduler, matrix *TagMatrix, opts Options) (*RigidbodySystem, *CollisionSystem) {
	opts = opts.withDefaults()
	stores := RegisterStores(scheduler.World())

	rigidbodies := NewRigidbodySystem(stores, opts.SpeedCap, opts.Logger)
	collisions := NewCollisionSystem(stores, matrix, opts)

	scheduler.Register(rigidbodies)
	scheduler.Register(collisions)
	return rigidbodies, collisions
}
