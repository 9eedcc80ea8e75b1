package ecs

// Commands provides a buffer for deferred world operations that are executed at the end of a frame.
// Systems that react to collision results queue despawns here so that later systems in the same
// frame still see a consistent world.
type Commands struct {
	spawns   []func(w *World, e Entity)
	despawns []Entity
	defers   []func()
}

func newCommands() *Commands {
	return &Commands{}
}

// Spawn queues the creation of an entity. The init callback receives the new handle
// and is expected to attach components to it.
func (c *Commands) Spawn(init func(w *World, e Entity)) {
	c.spawns = append(c.spawns, init)
}

// Despawn queues an entity removal.
func (c *Commands) Despawn(e Entity) {
	c.despawns = append(c.despawns, e)
}

// Defer queues a function execution operation.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Len returns the number of queued operations.
func (c *Commands) Len() int {
	return len(c.spawns) + len(c.despawns) + len(c.defers)
}

// Flush applies all queued commands to the world, reseting the buffer state.
// Despawning an entity twice, or one that is already gone, is a no-op.
func (c *Commands) Flush(w *World) {
	for _, e := range c.despawns {
		w.Despawn(e)
	}

	for _, init := range c.spawns {
		e := w.Spawn()
		if init != nil {
			init(w, e)
		}
	}

	for _, fn := range c.defers {
		fn()
	}

	c.spawns = c.spawns[:0]
	c.despawns = c.despawns[:0]
	c.defers = c.defers[:0]
}
