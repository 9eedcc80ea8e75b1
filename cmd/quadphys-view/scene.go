package main

import (
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/jakecoffman/cp"

	"github.com/plus3/quadphys/collision"
	"github.com/plus3/quadphys/ecs"
)

const playerAcceleration = 0.6

type scene struct {
	stores collision.Stores
	bounds cp.BB
	rng    *rand.Rand
}

func (s *scene) randomPoint() cp.Vector {
	return cp.Vector{
		X: s.bounds.L + s.rng.Float64()*(s.bounds.R-s.bounds.L),
		Y: s.bounds.B + s.rng.Float64()*(s.bounds.T-s.bounds.B),
	}
}

func (s *scene) add(e ecs.Entity, pos cp.Vector, tag string, w, h float64) {
	s.stores.Transforms.Add(e, collision.Transform{Position: pos})
	s.stores.Colliders.Add(e, collision.RectCollider{Tag: tag, Width: w, Height: h})
}

func (s *scene) spawnBullet(w *ecs.World, e ecs.Entity) {
	s.add(e, s.randomPoint(), "Bullet", 4, 4)
	s.stores.Rigidbodies.Add(e, collision.Rigidbody{
		Velocity: cp.Vector{X: s.rng.Float64()*6 - 3, Y: s.rng.Float64()*6 - 3},
	})
}

func (s *scene) spawnItem(w *ecs.World, e ecs.Entity) {
	s.add(e, s.randomPoint(), "Item", 8, 8)
}

// populate builds the border, some obstacles, bullets and items, and returns the player.
func (s *scene) populate(w *ecs.World, n int) ecs.Entity {
	b := s.bounds
	width, height := b.R-b.L, b.T-b.B
	const thick = 12
	s.add(w.Spawn(), cp.Vector{X: b.L + width/2, Y: b.B - thick/2}, "Wall", width+2*thick, thick)
	s.add(w.Spawn(), cp.Vector{X: b.L + width/2, Y: b.T + thick/2}, "Wall", width+2*thick, thick)
	s.add(w.Spawn(), cp.Vector{X: b.L - thick/2, Y: b.B + height/2}, "Wall", thick, height)
	s.add(w.Spawn(), cp.Vector{X: b.R + thick/2, Y: b.B + height/2}, "Wall", thick, height)

	for i := 0; i < 12; i++ {
		s.add(w.Spawn(), s.randomPoint(), "Wall", 16+s.rng.Float64()*48, 16+s.rng.Float64()*48)
	}

	for i := 0; i < n; i++ {
		if i%3 == 0 {
			s.spawnItem(w, w.Spawn())
		} else {
			s.spawnBullet(w, w.Spawn())
		}
	}

	player := w.Spawn()
	s.add(player, cp.Vector{X: b.L + width/2, Y: b.B + height/2}, "Player", 14, 14)
	s.stores.Rigidbodies.Add(player, collision.Rigidbody{
		Drag:       0.15,
		Bounciness: 0.3,
		AutoRotate: true,
	})
	return player
}

// controlSystem turns arrow keys into player acceleration.
type controlSystem struct {
	stores collision.Stores
	player ecs.Entity
}

func (s *controlSystem) Execute(frame *ecs.UpdateFrame) {
	rb := s.stores.Rigidbodies.Get(s.player)
	if rb == nil {
		return
	}

	var a cp.Vector
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		a.X -= playerAcceleration
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		a.X += playerAcceleration
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		a.Y -= playerAcceleration
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		a.Y += playerAcceleration
	}
	rb.Acceleration = a
}

// respawnSystem replaces bullets that hit a wall and items the player picks up.
type respawnSystem struct {
	scene *scene
}

func (s *respawnSystem) Execute(frame *ecs.UpdateFrame) {
	stores := s.scene.stores
	for e, result := range stores.Results.Iter() {
		c := stores.Colliders.Get(e)
		if c == nil {
			continue
		}
		switch {
		case c.Tag == "Bullet" && result.HasCollided("Wall"):
			frame.Commands.Despawn(e)
			frame.Commands.Spawn(s.scene.spawnBullet)
		case c.Tag == "Item" && result.HasCollided("Player"):
			frame.Commands.Despawn(e)
			frame.Commands.Spawn(s.scene.spawnItem)
		}
	}
}

// reloadableCollisions lets the viewer swap in a collision system built from a
// reloaded config between frames.
type reloadableCollisions struct {
	current *collision.CollisionSystem
}

func (r *reloadableCollisions) Execute(frame *ecs.UpdateFrame) {
	r.current.Execute(frame)
}
