package ecs

// System represents a behavior that runs once per frame over the world.
// Systems keep their stores and any state that persists between frames as fields.
type System interface {
	Execute(frame *UpdateFrame)
}
