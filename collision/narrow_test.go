package collision_test

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"

	"github.com/plus3/quadphys/collision"
)

func box(tag string, w, h float64) collision.RectCollider {
	return collision.RectCollider{Tag: tag, Width: w, Height: h}
}

func TestPenetrate(t *testing.T) {
	tests := []struct {
		name       string
		posA, posB cp.Vector
		a, b       collision.RectCollider
		sinkX      float64
		sinkY      float64
		overlaps   bool
		correction cp.Vector
	}{
		{
			name: "shallow on x",
			posA: cp.Vector{}, posB: cp.Vector{X: 10},
			a: box("Player", 16, 16), b: box("Wall", 16, 16),
			sinkX: 6, sinkY: 16, overlaps: true,
			correction: cp.Vector{X: -6},
		},
		{
			name: "b on the left",
			posA: cp.Vector{}, posB: cp.Vector{X: -10},
			a: box("Player", 16, 16), b: box("Wall", 16, 16),
			sinkX: 6, sinkY: 16, overlaps: true,
			correction: cp.Vector{X: 6},
		},
		{
			name: "shallow on y",
			posA: cp.Vector{}, posB: cp.Vector{X: 1, Y: 12},
			a: box("Player", 16, 16), b: box("Wall", 16, 16),
			sinkX: 15, sinkY: 4, overlaps: true,
			correction: cp.Vector{Y: -4},
		},
		{
			name: "tie resolves on y",
			posA: cp.Vector{}, posB: cp.Vector{X: 10, Y: 10},
			a: box("Player", 16, 16), b: box("Wall", 16, 16),
			sinkX: 6, sinkY: 6, overlaps: true,
			correction: cp.Vector{Y: -6},
		},
		{
			name: "tie with b above",
			posA: cp.Vector{}, posB: cp.Vector{X: -10, Y: -10},
			a: box("Player", 16, 16), b: box("Wall", 16, 16),
			sinkX: 6, sinkY: 6, overlaps: true,
			correction: cp.Vector{Y: 6},
		},
		{
			name: "touching edges",
			posA: cp.Vector{}, posB: cp.Vector{X: 16},
			a: box("Player", 16, 16), b: box("Wall", 16, 16),
			sinkX: 0, sinkY: 16, overlaps: false,
		},
		{
			name: "separated",
			posA: cp.Vector{}, posB: cp.Vector{X: 5, Y: 40},
			a: box("Player", 16, 16), b: box("Wall", 16, 16),
			sinkX: 11, sinkY: -24, overlaps: false,
		},
		{
			name: "different sizes",
			posA: cp.Vector{X: 100, Y: 100}, posB: cp.Vector{X: 100, Y: 118},
			a: box("Player", 8, 32), b: box("Wall", 64, 8),
			sinkX: 36, sinkY: 2, overlaps: true,
			correction: cp.Vector{Y: -2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := collision.Penetrate(tt.posA, tt.a, tt.posB, tt.b)
			assert.Equal(t, tt.sinkX, p.X)
			assert.Equal(t, tt.sinkY, p.Y)
			assert.Equal(t, tt.overlaps, p.Overlaps())
			if tt.overlaps {
				assert.Equal(t, tt.correction, p.Correction())
			}
		})
	}
}

func TestPenetrateIsSymmetric(t *testing.T) {
	a, b := box("Player", 16, 16), box("Wall", 20, 10)
	posA, posB := cp.Vector{X: 3, Y: 4}, cp.Vector{X: 12, Y: -2}

	ab := collision.Penetrate(posA, a, posB, b)
	ba := collision.Penetrate(posB, b, posA, a)

	assert.Equal(t, ab.X, ba.X)
	assert.Equal(t, ab.Y, ba.Y)
	assert.Equal(t, ab.Correction(), ba.Correction().Neg())

	// repeated evaluation gives the same answer
	assert.Equal(t, ab, collision.Penetrate(posA, a, posB, b))
}

func TestApplyResponse(t *testing.T) {
	tests := []struct {
		name       string
		rb         collision.Rigidbody
		correction cp.Vector
		velocity   cp.Vector
		position   cp.Vector
	}{
		{
			name:       "elastic reflection",
			rb:         collision.Rigidbody{Velocity: cp.Vector{X: 2}, Bounciness: 1},
			correction: cp.Vector{X: -1},
			velocity:   cp.Vector{X: -2},
			position:   cp.Vector{X: -1},
		},
		{
			name:       "inelastic stop",
			rb:         collision.Rigidbody{Velocity: cp.Vector{X: 2}},
			correction: cp.Vector{X: -1},
			velocity:   cp.Vector{},
			position:   cp.Vector{X: -1},
		},
		{
			name:       "tangential motion is kept",
			rb:         collision.Rigidbody{Velocity: cp.Vector{X: 3, Y: 2}},
			correction: cp.Vector{Y: -4},
			velocity:   cp.Vector{X: 3},
			position:   cp.Vector{Y: -4},
		},
		{
			name:       "friction damps what is left",
			rb:         collision.Rigidbody{Velocity: cp.Vector{X: 4, Y: 2}, Friction: 0.5},
			correction: cp.Vector{Y: -1},
			velocity:   cp.Vector{X: 2},
			position:   cp.Vector{Y: -1},
		},
		{
			name:       "zero correction only applies friction",
			rb:         collision.Rigidbody{Velocity: cp.Vector{X: 4, Y: 2}, Friction: 0.25},
			correction: cp.Vector{},
			velocity:   cp.Vector{X: 3, Y: 1.5},
			position:   cp.Vector{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rb := tt.rb
			tr := collision.Transform{}
			collision.ApplyResponse(&rb, &tr, tt.correction)
			assert.InDelta(t, tt.velocity.X, rb.Velocity.X, 1e-12)
			assert.InDelta(t, tt.velocity.Y, rb.Velocity.Y, 1e-12)
			assert.Equal(t, tt.position, tr.Position)
		})
	}
}

func TestNewRectCollider(t *testing.T) {
	c, err := collision.NewRectCollider("Player", 16, 8)
	assert.NoError(t, err)
	assert.Equal(t, box("Player", 16, 8), c)

	_, err = collision.NewRectCollider("Player", 0, 8)
	assert.ErrorIs(t, err, collision.ErrInvalidCollider)

	_, err = collision.NewRectCollider("Player", 16, -1)
	assert.ErrorIs(t, err, collision.ErrInvalidCollider)
}

func TestRectColliderBounds(t *testing.T) {
	bb := box("Player", 16, 8).Bounds(cp.Vector{X: 10, Y: 20})
	assert.Equal(t, cp.BB{L: 2, B: 16, R: 18, T: 24}, bb)
}
