package ecs

import "reflect"

// Singleton provides access to a single value that is not associated with any
// entity. Use this for global state, configuration, or per-frame summaries that
// several systems read.
type Singleton[T any] struct {
	value *T
}

// NewSingleton returns the world's singleton of type T.
// If it does not exist yet it is created with the initializer value, or the zero
// value when none is given. An existing singleton is never overwritten.
func NewSingleton[T any](w *World, initializer ...T) *Singleton[T] {
	t := reflect.TypeFor[T]()
	if existing, ok := w.singletons[t]; ok {
		return &Singleton[T]{value: existing.(*T)}
	}

	value := new(T)
	if len(initializer) > 0 {
		*value = initializer[0]
	}
	w.singletons[t] = value
	return &Singleton[T]{value: value}
}

// Get returns a pointer to the singleton value. The pointer stays valid for the
// lifetime of the world.
func (s *Singleton[T]) Get() *T {
	return s.value
}

// ReadSingleton returns the world's singleton of type T, or nil if none was created.
func ReadSingleton[T any](w *World) *T {
	existing, ok := w.singletons[reflect.TypeFor[T]()]
	if !ok {
		return nil
	}
	return existing.(*T)
}
