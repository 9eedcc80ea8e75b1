package ecs

type UpdateFrame struct {
	Tick      uint64
	DeltaTime float64
	Commands  *Commands
	World     *World
}

func newUpdateFrame(tick uint64, dt float64, world *World) *UpdateFrame {
	return &UpdateFrame{
		Tick:      tick,
		DeltaTime: dt,
		Commands:  newCommands(),
		World:     world,
	}
}
