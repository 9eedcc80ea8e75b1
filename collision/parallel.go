package collision

import (
	"math"
	"sync/atomic"
)

// axisMax holds the signed value with the largest magnitude offered so far.
// Offers from several goroutines are safe; a value replaces the current one
// only if its magnitude is strictly larger.
type axisMax struct {
	bits atomic.Uint64
}

func (m *axisMax) offer(v float64) {
	for {
		old := m.bits.Load()
		if !(math.Abs(math.Float64frombits(old)) < math.Abs(v)) {
			return
		}
		if m.bits.CompareAndSwap(old, math.Float64bits(v)) {
			return
		}
	}
}

func (m *axisMax) load() float64 {
	return math.Float64frombits(m.bits.Load())
}

type correction struct {
	x, y axisMax
}

// pairRef is a candidate pair of body slots, side A first.
type pairRef struct {
	a, b int32
}

// triggerEvent is an overlapping trigger pair waiting to be merged into results.
type triggerEvent struct {
	a, b int32
}

// batch is the output of one narrow-phase chunk.
type batch struct {
	events   []triggerEvent
	overlaps int
	contacts int
}

func (b *batch) reset() {
	b.events = b.events[:0]
	b.overlaps = 0
	b.contacts = 0
}
