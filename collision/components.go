// Package collision implements axis-aligned box collision for entities in an ecs.World:
// a Morton-ordered quadtree broad phase, a penetration-depth narrow phase, tag based
// collide/trigger policy, and a small rigidbody integrator that consumes the result.
package collision

import (
	"errors"
	"fmt"

	"github.com/jakecoffman/cp"

	"github.com/plus3/quadphys/ecs"
)

var (
	ErrMissingComponent = errors.New("collision: missing component")
	ErrInvalidCollider  = errors.New("collision: invalid collider")
)

// Transform is the position and orientation of an entity.
// Colliders are centered on Position.
type Transform struct {
	Position cp.Vector
	Rotation float64
}

// Rigidbody carries the per-entity motion state integrated by RigidbodySystem
// and mutated by the collision response.
type Rigidbody struct {
	Velocity     cp.Vector
	Acceleration cp.Vector
	Drag         float64 // fraction of velocity removed per frame, in [0,1]
	Bounciness   float64 // restitution along the contact normal, >= 0
	Friction     float64 // fraction of remaining velocity removed on contact, in [0,1]
	AutoRotate   bool
}

// RectCollider is an axis-aligned box centered on the entity's Transform.
type RectCollider struct {
	Tag    string
	Width  float64
	Height float64
}

// NewRectCollider validates the box dimensions.
func NewRectCollider(tag string, width, height float64) (RectCollider, error) {
	if !(width > 0) || !(height > 0) {
		return RectCollider{}, fmt.Errorf("%w: %q has size %gx%g", ErrInvalidCollider, tag, width, height)
	}
	return RectCollider{Tag: tag, Width: width, Height: height}, nil
}

// Bounds returns the box in world space for a collider centered at pos.
func (c RectCollider) Bounds(pos cp.Vector) cp.BB {
	return cp.NewBBForExtents(pos, c.Width/2, c.Height/2)
}

// Collided is one trigger partner recorded in a ColliderResult.
type Collided struct {
	Entity ecs.Entity
	Tag    string
}

// ColliderResult is rebuilt every frame for each entity with a RectCollider.
// Collision holds the deepest penetration correction seen on each axis;
// Collided lists every trigger partner in discovery order.
type ColliderResult struct {
	Collided  []Collided
	Collision cp.Vector
}

func (r *ColliderResult) reset() {
	r.Collided = r.Collided[:0]
	r.Collision = cp.Vector{}
}

// HasCollided reports whether any trigger partner carries the tag.
func (r *ColliderResult) HasCollided(tag string) bool {
	for _, c := range r.Collided {
		if c.Tag == tag {
			return true
		}
	}
	return false
}

// CollidedWith returns the trigger partners carrying the tag.
func (r *ColliderResult) CollidedWith(tag string) []ecs.Entity {
	var out []ecs.Entity
	for _, c := range r.Collided {
		if c.Tag == tag {
			out = append(out, c.Entity)
		}
	}
	return out
}

// Stores groups the component stores the collision systems read and write.
type Stores struct {
	Transforms  *ecs.Store[Transform]
	Colliders   *ecs.Store[RectCollider]
	Rigidbodies *ecs.Store[Rigidbody]
	Results     *ecs.Store[ColliderResult]
}

// RegisterStores registers the collision components with the world.
func RegisterStores(w *ecs.World) Stores {
	return Stores{
		Transforms:  ecs.RegisterComponent[Transform](w),
		Colliders:   ecs.RegisterComponent[RectCollider](w),
		Rigidbodies: ecs.RegisterComponent[Rigidbody](w),
		Results:     ecs.RegisterComponent[ColliderResult](w),
	}
}
