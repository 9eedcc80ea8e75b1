package main

import (
	"math/rand/v2"

	"github.com/jakecoffman/cp"

	"github.com/plus3/quadphys/collision"
	"github.com/plus3/quadphys/ecs"
)

const wallThickness = 16

// arena spawns and respawns the stress population inside the playfield.
type arena struct {
	stores collision.Stores
	bounds cp.BB
	rng    *rand.Rand
}

func (a *arena) randomPoint() cp.Vector {
	return cp.Vector{
		X: a.bounds.L + a.rng.Float64()*(a.bounds.R-a.bounds.L),
		Y: a.bounds.B + a.rng.Float64()*(a.bounds.T-a.bounds.B),
	}
}

func (a *arena) addBody(w *ecs.World, e ecs.Entity, tag string, size float64, rb *collision.Rigidbody) {
	a.stores.Transforms.Add(e, collision.Transform{Position: a.randomPoint()})
	a.stores.Colliders.Add(e, collision.RectCollider{Tag: tag, Width: size, Height: size})
	if rb != nil {
		a.stores.Rigidbodies.Add(e, *rb)
	}
}

// spawnWalls encloses the playfield and scatters a few static obstacles inside it.
func (a *arena) spawnWalls(w *ecs.World, obstacles int) {
	b := a.bounds
	width, height := b.R-b.L, b.T-b.B
	border := []struct {
		pos  cp.Vector
		w, h float64
	}{
		{cp.Vector{X: b.L + width/2, Y: b.B - wallThickness/2}, width + 2*wallThickness, wallThickness},
		{cp.Vector{X: b.L + width/2, Y: b.T + wallThickness/2}, width + 2*wallThickness, wallThickness},
		{cp.Vector{X: b.L - wallThickness/2, Y: b.B + height/2}, wallThickness, height},
		{cp.Vector{X: b.R + wallThickness/2, Y: b.B + height/2}, wallThickness, height},
	}
	for _, wall := range border {
		e := w.Spawn()
		a.stores.Transforms.Add(e, collision.Transform{Position: wall.pos})
		a.stores.Colliders.Add(e, collision.RectCollider{Tag: "Wall", Width: wall.w, Height: wall.h})
	}

	for i := 0; i < obstacles; i++ {
		e := w.Spawn()
		a.stores.Transforms.Add(e, collision.Transform{Position: a.randomPoint()})
		a.stores.Colliders.Add(e, collision.RectCollider{
			Tag:    "Wall",
			Width:  16 + a.rng.Float64()*48,
			Height: 16 + a.rng.Float64()*48,
		})
	}
}

func (a *arena) spawnPlayer(w *ecs.World, e ecs.Entity) {
	a.addBody(w, e, "Player", 12, &collision.Rigidbody{
		Drag:       0.05,
		Bounciness: 0.5,
		Friction:   0.1,
		AutoRotate: true,
	})
}

func (a *arena) spawnBullet(w *ecs.World, e ecs.Entity) {
	a.addBody(w, e, "Bullet", 4, &collision.Rigidbody{
		Velocity: cp.Vector{X: a.rng.Float64()*10 - 5, Y: a.rng.Float64()*10 - 5},
	})
}

func (a *arena) spawnItem(w *ecs.World, e ecs.Entity) {
	a.addBody(w, e, "Item", 8, nil)
}

// populate spawns n movable entities split between players, bullets and items.
func (a *arena) populate(w *ecs.World, n int) {
	for i := 0; i < n; i++ {
		e := w.Spawn()
		switch i % 4 {
		case 0, 1:
			a.spawnPlayer(w, e)
		case 2:
			a.spawnBullet(w, e)
		default:
			a.spawnItem(w, e)
		}
	}
}

// wanderSystem nudges every player in a random direction each frame.
type wanderSystem struct {
	stores collision.Stores
	rng    *rand.Rand
}

func (s *wanderSystem) Execute(frame *ecs.UpdateFrame) {
	for e, rb := range s.stores.Rigidbodies.Iter() {
		c := s.stores.Colliders.Get(e)
		if c == nil || c.Tag != "Player" {
			continue
		}
		rb.Acceleration = cp.Vector{X: s.rng.Float64() - 0.5, Y: s.rng.Float64() - 0.5}
	}
}

// lifecycleSystem consumes the collision results: bullets die on walls, items are
// picked up by players. Every removed entity is replaced so the population stays constant.
type lifecycleSystem struct {
	arena *arena

	BulletsSpent int
	ItemsTaken   int
}

func (s *lifecycleSystem) Execute(frame *ecs.UpdateFrame) {
	stores := s.arena.stores
	for e, result := range stores.Results.Iter() {
		c := stores.Colliders.Get(e)
		if c == nil {
			continue
		}

		switch {
		case c.Tag == "Bullet" && result.HasCollided("Wall"):
			s.BulletsSpent++
			frame.Commands.Despawn(e)
			frame.Commands.Spawn(s.arena.spawnBullet)
		case c.Tag == "Item" && result.HasCollided("Player"):
			s.ItemsTaken++
			frame.Commands.Despawn(e)
			frame.Commands.Spawn(s.arena.spawnItem)
		}
	}
}
