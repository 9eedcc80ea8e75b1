package ecs_test

import "github.com/plus3/quadphys/ecs"

// Common test component types
type Position struct {
	X, Y float64
}

type Velocity struct {
	DX, DY float64
}

type Name struct {
	Value string
}

type Health struct {
	Current int
	Max     int
}

type Score int32

type testStores struct {
	positions  *ecs.Store[Position]
	velocities *ecs.Store[Velocity]
	names      *ecs.Store[Name]
	health     *ecs.Store[Health]
}

func newTestWorld() (*ecs.World, testStores) {
	world := ecs.NewWorld()
	return world, testStores{
		positions:  ecs.RegisterComponent[Position](world),
		velocities: ecs.RegisterComponent[Velocity](world),
		names:      ecs.RegisterComponent[Name](world),
		health:     ecs.RegisterComponent[Health](world),
	}
}
