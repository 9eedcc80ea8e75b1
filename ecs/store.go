package ecs

import (
	"iter"
	"reflect"

	"github.com/kamstrup/intmap"
)

const (
	storeBlockSize = 64
)

// componentStore is the type-erased side of a Store, used by the World
// to drop every component of a despawned entity.
type componentStore interface {
	remove(e Entity) bool
	count() int
	componentType() reflect.Type
}

// Store holds every component of type T, in blocks of fixed size.
// Entities map to their slot through an intmap keyed by entity index, and each
// slot remembers the exact Entity that owns it so stale handles never resolve.
// Pointers returned by Add, Get and Iter stay valid until the component is
// removed or the store is compacted.
type Store[T any] struct {
	slots     *intmap.Map[uint32, int]
	blocks    []*[storeBlockSize]T
	owners    []*[storeBlockSize]Entity
	freeSlots []int
	nextSlot  int
	size      int
}

func newStore[T any]() *Store[T] {
	return &Store[T]{
		slots: intmap.New[uint32, int](256),
	}
}

// Add attaches a component to the entity and returns a pointer to the stored copy.
// Adding to an entity that already has a T overwrites it in place.
func (s *Store[T]) Add(e Entity, value T) *T {
	if slot, ok := s.slots.Get(e.Index()); ok {
		blockIdx := slot / storeBlockSize
		slotIdx := slot % storeBlockSize
		s.blocks[blockIdx][slotIdx] = value
		s.owners[blockIdx][slotIdx] = e
		return &s.blocks[blockIdx][slotIdx]
	}

	var slot int
	if len(s.freeSlots) > 0 {
		slot = s.freeSlots[len(s.freeSlots)-1]
		s.freeSlots = s.freeSlots[:len(s.freeSlots)-1]
	} else {
		slot = s.nextSlot
		s.nextSlot++
	}

	blockIdx := slot / storeBlockSize
	slotIdx := slot % storeBlockSize

	if blockIdx >= len(s.blocks) {
		s.blocks = append(s.blocks, new([storeBlockSize]T))
		s.owners = append(s.owners, new([storeBlockSize]Entity))
	}

	s.blocks[blockIdx][slotIdx] = value
	s.owners[blockIdx][slotIdx] = e
	s.slots.Put(e.Index(), slot)
	s.size++
	return &s.blocks[blockIdx][slotIdx]
}

// Get returns a pointer to the entity's component, or nil if it has none
// or the handle is stale.
func (s *Store[T]) Get(e Entity) *T {
	slot, ok := s.slots.Get(e.Index())
	if !ok {
		return nil
	}

	blockIdx := slot / storeBlockSize
	slotIdx := slot % storeBlockSize
	if s.owners[blockIdx][slotIdx] != e {
		return nil
	}
	return &s.blocks[blockIdx][slotIdx]
}

// Has checks if the entity has a component in this store.
func (s *Store[T]) Has(e Entity) bool {
	return s.Get(e) != nil
}

// Remove detaches the entity's component. Returns false if there was none.
func (s *Store[T]) Remove(e Entity) bool {
	slot, ok := s.slots.Get(e.Index())
	if !ok {
		return false
	}

	blockIdx := slot / storeBlockSize
	slotIdx := slot % storeBlockSize
	if s.owners[blockIdx][slotIdx] != e {
		return false
	}

	var zero T
	s.blocks[blockIdx][slotIdx] = zero
	s.owners[blockIdx][slotIdx] = 0
	s.freeSlots = append(s.freeSlots, slot)
	s.slots.Del(e.Index())
	s.size--
	return true
}

// Len returns the number of stored components.
func (s *Store[T]) Len() int {
	return s.size
}

// Iter yields every entity in the store together with a pointer to its component.
// Order is slot order, which is stable as long as the store is not modified.
func (s *Store[T]) Iter() iter.Seq2[Entity, *T] {
	return func(yield func(Entity, *T) bool) {
		for slot := 0; slot < s.nextSlot; slot++ {
			blockIdx := slot / storeBlockSize
			slotIdx := slot % storeBlockSize

			owner := s.owners[blockIdx][slotIdx]
			if owner == 0 {
				continue
			}
			if !yield(owner, &s.blocks[blockIdx][slotIdx]) {
				return
			}
		}
	}
}

// Compact moves components down to fill empty slots.
// Pointers previously returned by Add or Get are invalidated.
func (s *Store[T]) Compact() {
	if s.size == 0 {
		s.blocks = nil
		s.owners = nil
		s.freeSlots = nil
		s.nextSlot = 0
		s.slots.Clear()
		return
	}

	numBlocks := (s.size + storeBlockSize - 1) / storeBlockSize
	newBlocks := make([]*[storeBlockSize]T, numBlocks)
	newOwners := make([]*[storeBlockSize]Entity, numBlocks)
	for i := range newBlocks {
		newBlocks[i] = new([storeBlockSize]T)
		newOwners[i] = new([storeBlockSize]Entity)
	}

	writePos := 0
	for readPos := 0; readPos < s.nextSlot; readPos++ {
		readBlock := readPos / storeBlockSize
		readSlot := readPos % storeBlockSize

		owner := s.owners[readBlock][readSlot]
		if owner == 0 {
			continue
		}

		writeBlock := writePos / storeBlockSize
		writeSlot := writePos % storeBlockSize
		newBlocks[writeBlock][writeSlot] = s.blocks[readBlock][readSlot]
		newOwners[writeBlock][writeSlot] = owner
		s.slots.Put(owner.Index(), writePos)
		writePos++
	}

	s.blocks = newBlocks
	s.owners = newOwners
	s.freeSlots = nil
	s.nextSlot = writePos
}

func (s *Store[T]) remove(e Entity) bool {
	return s.Remove(e)
}

func (s *Store[T]) count() int {
	return s.size
}

func (s *Store[T]) componentType() reflect.Type {
	return reflect.TypeFor[T]()
}
