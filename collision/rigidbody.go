package collision

import (
	"log/slog"
	"math"

	"github.com/jakecoffman/cp"

	"github.com/plus3/quadphys/ecs"
)

// DefaultSpeedCap is the per-axis velocity limit, in units per frame.
const DefaultSpeedCap = 5.0

// RigidbodySystem integrates every Rigidbody once per frame. It must run
// before CollisionSystem. Acceleration is left untouched; whatever controls
// the entity is expected to set it each frame.
type RigidbodySystem struct {
	Transforms  *ecs.Store[Transform]
	Rigidbodies *ecs.Store[Rigidbody]
	SpeedCap    float64

	logger *slog.Logger
}

func NewRigidbodySystem(stores Stores, speedCap float64, logger *slog.Logger) *RigidbodySystem {
	if speedCap <= 0 {
		speedCap = DefaultSpeedCap
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RigidbodySystem{
		Transforms:  stores.Transforms,
		Rigidbodies: stores.Rigidbodies,
		SpeedCap:    speedCap,
		logger:      logger,
	}
}

func (s *RigidbodySystem) Execute(frame *ecs.UpdateFrame) {
	for e, rb := range s.Rigidbodies.Iter() {
		tr := s.Transforms.Get(e)
		if tr == nil {
			s.logger.Warn("rigidbody: skipping entity", "entity", e, "tick", frame.Tick, "err", ErrMissingComponent)
			continue
		}
		Integrate(rb, tr, s.SpeedCap)
	}
}

// Integrate advances one body by a single semi-implicit Euler step.
func Integrate(rb *Rigidbody, tr *Transform, speedCap float64) {
	rb.Velocity = rb.Velocity.Add(rb.Acceleration)
	rb.Velocity = cp.Vector{
		X: clampAxis(rb.Velocity.X, speedCap),
		Y: clampAxis(rb.Velocity.Y, speedCap),
	}
	tr.Position = tr.Position.Add(rb.Velocity)
	rb.Velocity = rb.Velocity.Sub(rb.Velocity.Mult(rb.Drag))

	if rb.AutoRotate {
		if rb.Velocity.X == 0 && rb.Velocity.Y == 0 {
			tr.Rotation = 0
		} else {
			tr.Rotation = rb.Velocity.ToAngle()
		}
	}
}

func clampAxis(v, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, v))
}
