package collision

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Penetration is the overlap of two centered boxes on each axis.
// Delta points from the center of the first box to the center of the second.
type Penetration struct {
	Delta cp.Vector
	X, Y  float64
}

// Penetrate computes the per-axis sinking of box b into box a.
// The result depends only on the two centers and sizes.
func Penetrate(posA cp.Vector, a RectCollider, posB cp.Vector, b RectCollider) Penetration {
	delta := posB.Sub(posA)
	return Penetration{
		Delta: delta,
		X:     (a.Width+b.Width)/2 - math.Abs(delta.X),
		Y:     (a.Height+b.Height)/2 - math.Abs(delta.Y),
	}
}

// Overlaps reports whether the boxes intersect with positive area.
// Touching edges do not overlap.
func (p Penetration) Overlaps() bool {
	return p.X > 0 && p.Y > 0
}

// Correction is the minimum translation that moves the first box out of the second.
// The second box needs the negated vector. The shallower axis is chosen; equal
// depths resolve on Y.
func (p Penetration) Correction() cp.Vector {
	if p.X < p.Y {
		if p.Delta.X > 0 {
			return cp.Vector{X: -p.X}
		}
		return cp.Vector{X: p.X}
	}
	if p.Delta.Y > 0 {
		return cp.Vector{Y: -p.Y}
	}
	return cp.Vector{Y: p.Y}
}

// normalize returns the unit vector along v, or the zero vector when v has no length.
func normalize(v cp.Vector) cp.Vector {
	length := v.Length()
	if length == 0 {
		return cp.Vector{}
	}
	return cp.Vector{X: v.X / length, Y: v.Y / length}
}

// ApplyResponse removes the velocity component along the correction normal,
// scaled by (1 + Bounciness), damps the rest by Friction, and pushes the
// transform out of penetration by the correction.
func ApplyResponse(rb *Rigidbody, tr *Transform, correction cp.Vector) {
	normal := normalize(correction)
	rb.Velocity = rb.Velocity.Sub(normal.Mult(rb.Velocity.Dot(normal) * (1 + rb.Bounciness)))
	rb.Velocity = rb.Velocity.Mult(1 - rb.Friction)
	tr.Position = tr.Position.Add(correction)
}
