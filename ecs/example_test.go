package ecs_test

import (
	"fmt"

	"github.com/plus3/quadphys/ecs"
)

type Hitpoints struct {
	Current, Max int
}

type poisonSystem struct {
	Hitpoints *ecs.Store[Hitpoints]
}

func (s *poisonSystem) Execute(frame *ecs.UpdateFrame) {
	for e, hp := range s.Hitpoints.Iter() {
		hp.Current -= 40
		if hp.Current <= 0 {
			frame.Commands.Despawn(e)
		}
	}
}

// ExampleWorld shows entity handles going stale once their entity is despawned.
func ExampleWorld() {
	world := ecs.NewWorld()
	names := ecs.RegisterComponent[Name](world)

	e := world.Spawn()
	names.Add(e, Name{Value: "crate"})
	fmt.Println(names.Get(e).Value, world.IsAlive(e))

	world.Despawn(e)
	reused := world.Spawn()
	fmt.Println(world.IsAlive(e), names.Get(e) == nil)
	fmt.Println(reused.Index() == e.Index(), reused.Generation())

	// Output:
	// crate true
	// false true
	// true 2
}

// ExampleScheduler runs a system for a few frames. Despawns queued on
// frame.Commands take effect once every system has run.
func ExampleScheduler() {
	world := ecs.NewWorld()
	hitpoints := ecs.RegisterComponent[Hitpoints](world)
	scheduler := ecs.NewScheduler(world)
	scheduler.Register(&poisonSystem{Hitpoints: hitpoints})

	hitpoints.Add(world.Spawn(), Hitpoints{Current: 100, Max: 100})
	hitpoints.Add(world.Spawn(), Hitpoints{Current: 50, Max: 100})

	for i := 0; i < 3; i++ {
		scheduler.Once(1.0 / 60)
		fmt.Printf("tick %d: %d alive\n", scheduler.GetStats().Ticks, world.Len())
	}

	// Output:
	// tick 1: 2 alive
	// tick 2: 1 alive
	// tick 3: 0 alive
}
