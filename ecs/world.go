package ecs

import (
	"iter"
	"reflect"
)

// World owns entity handles and the component stores registered against it.
type World struct {
	generations []uint32
	alive       []bool
	free        []uint32
	liveCount   int

	stores     map[reflect.Type]componentStore
	storeOrder []componentStore
	singletons map[reflect.Type]any
}

// NewWorld creates an empty world with no registered components.
func NewWorld() *World {
	return &World{
		stores:     make(map[reflect.Type]componentStore),
		singletons: make(map[reflect.Type]any),
	}
}

// RegisterComponent returns the world's store for T, creating it on first use.
func RegisterComponent[T any](w *World) *Store[T] {
	t := reflect.TypeFor[T]()
	if existing, ok := w.stores[t]; ok {
		return existing.(*Store[T])
	}

	store := newStore[T]()
	w.stores[t] = store
	w.storeOrder = append(w.storeOrder, store)
	return store
}

// ReadComponent returns the entity's T component, or nil if T was never
// registered or the entity does not have one.
func ReadComponent[T any](w *World, e Entity) *T {
	existing, ok := w.stores[reflect.TypeFor[T]()]
	if !ok {
		return nil
	}
	return existing.(*Store[T]).Get(e)
}

// Spawn allocates a new entity. Indices of despawned entities are reused
// with a bumped generation.
func (w *World) Spawn() Entity {
	var index uint32
	if len(w.free) > 0 {
		index = w.free[len(w.free)-1]
		w.free = w.free[:len(w.free)-1]
	} else {
		index = uint32(len(w.generations))
		w.generations = append(w.generations, 1)
		w.alive = append(w.alive, false)
	}

	w.alive[index] = true
	w.liveCount++
	return NewEntity(index, w.generations[index])
}

// Despawn removes the entity and all of its components.
// Returns false if the entity was not alive.
func (w *World) Despawn(e Entity) bool {
	if !w.IsAlive(e) {
		return false
	}

	for _, store := range w.storeOrder {
		store.remove(e)
	}

	index := e.Index()
	w.generations[index]++
	if w.generations[index] == 0 {
		w.generations[index] = 1
	}
	w.alive[index] = false
	w.free = append(w.free, index)
	w.liveCount--
	return true
}

// IsAlive reports whether the handle refers to a live entity.
func (w *World) IsAlive(e Entity) bool {
	index := e.Index()
	if e == 0 || int(index) >= len(w.generations) {
		return false
	}
	return w.alive[index] && w.generations[index] == e.Generation()
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return w.liveCount
}

// Entities iterates over every live entity in index order.
func (w *World) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for index, alive := range w.alive {
			if !alive {
				continue
			}
			if !yield(NewEntity(uint32(index), w.generations[index])) {
				return
			}
		}
	}
}

// StoreStats describes one registered component store.
type StoreStats struct {
	Type  string
	Count int
}

// CollectStats returns the component count of every registered store, in registration order.
func (w *World) CollectStats() []StoreStats {
	stats := make([]StoreStats, 0, len(w.storeOrder))
	for _, store := range w.storeOrder {
		stats = append(stats, StoreStats{
			Type:  store.componentType().String(),
			Count: store.count(),
		})
	}
	return stats
}
