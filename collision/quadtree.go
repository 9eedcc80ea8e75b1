package collision

import (
	"fmt"
	"math"
)

// MaxQuadTreeLevel bounds the depth of a QuadTreeGrid. Cell coordinates are
// interleaved 16 bits at a time, and deeper trees would allocate billions of buckets anyway.
const MaxQuadTreeLevel = 12

// bitSeparate spreads the low 16 bits of n so that bit i lands on bit 2i.
func bitSeparate(n uint32) uint32 {
	n = (n | (n << 8)) & 0x00ff00ff
	n = (n | (n << 4)) & 0x0f0f0f0f
	n = (n | (n << 2)) & 0x33333333
	return (n | (n << 1)) & 0x55555555
}

// levelBias is the number of nodes in all levels shallower than level,
// i.e. the offset of the first node of level in the flat bucket array.
func levelBias(level int) int {
	return ((1 << (2 * level)) - 1) / 3
}

// QuadTreeGrid is a fixed-depth linear quadtree over a bounded region.
// Nodes are stored breadth first, each level in Morton order, so the children of
// node i at level l are nodes 4i..4i+3 at level l+1. A box is stored in the
// deepest node that fully contains it.
type QuadTreeGrid[T any] struct {
	level  int
	x, y   float64
	width  float64
	height float64

	buckets   [][]T
	ancestors []T
	visits    []quadVisit
	size      int
}

type quadVisit struct {
	level   int
	index   int
	mark    int
	entered bool
}

// NewQuadTreeGrid creates a grid with 4^level leaf cells covering the rectangle
// at (x, y) with the given size. Panics on a level outside [0, MaxQuadTreeLevel]
// or a non-positive size.
func NewQuadTreeGrid[T any](level int, x, y, width, height float64) *QuadTreeGrid[T] {
	if level < 0 || level > MaxQuadTreeLevel {
		panic(fmt.Sprintf("quadtree level %d out of range [0, %d]", level, MaxQuadTreeLevel))
	}
	if !(width > 0) || !(height > 0) {
		panic(fmt.Sprintf("quadtree bounds must be positive, got %gx%g", width, height))
	}

	return &QuadTreeGrid[T]{
		level:   level,
		x:       x,
		y:       y,
		width:   width,
		height:  height,
		buckets: make([][]T, levelBias(level)+(1<<(2*level))),
	}
}

// Level returns the depth of the finest level.
func (q *QuadTreeGrid[T]) Level() int {
	return q.level
}

// Bounds returns the covered region.
func (q *QuadTreeGrid[T]) Bounds() (x, y, width, height float64) {
	return q.x, q.y, q.width, q.height
}

// Len returns the number of entries waiting to be enumerated.
func (q *QuadTreeGrid[T]) Len() int {
	return q.size
}

// Clear drops every entry without enumerating.
func (q *QuadTreeGrid[T]) Clear() {
	for i := range q.buckets {
		clear(q.buckets[i])
		q.buckets[i] = q.buckets[i][:0]
	}
	q.size = 0
}

// gridPosition maps a point to its finest-level cell. Points outside the
// region are clamped to the nearest edge cell.
func (q *QuadTreeGrid[T]) gridPosition(x, y float64) (uint32, uint32) {
	gridSize := 1 << q.level
	cellWidth := q.width / float64(gridSize)
	cellHeight := q.height / float64(gridSize)
	return clampCell((x-q.x)/cellWidth, gridSize), clampCell((y-q.y)/cellHeight, gridSize)
}

func clampCell(v float64, gridSize int) uint32 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v >= float64(gridSize) {
		return uint32(gridSize - 1)
	}
	return uint32(v)
}

func (q *QuadTreeGrid[T]) mortonOrder(x, y float64) uint32 {
	cx, cy := q.gridPosition(x, y)
	return bitSeparate(cx) | (bitSeparate(cy) << 1)
}

// bucketIndex finds the smallest node containing the box.
func (q *QuadTreeGrid[T]) bucketIndex(x, y, width, height float64) int {
	topLeft := q.mortonOrder(x, y)
	bottomRight := q.mortonOrder(x+width, y+height)

	level := q.level
	for diff := topLeft ^ bottomRight; diff != 0; diff >>= 2 {
		level--
	}

	space := int(bottomRight >> (2 * (q.level - level)))
	return levelBias(level) + space
}

// AddEntity inserts a box given by its top-left corner and size.
func (q *QuadTreeGrid[T]) AddEntity(x, y, width, height float64, entity T) {
	index := q.bucketIndex(x, y, width, height)
	q.buckets[index] = append(q.buckets[index], entity)
	q.size++
}

// IterEntityPair calls f once for every pair of entries that share a node or
// where one node is an ancestor of the other. These are the only pairs whose
// boxes can overlap; f still has to test the actual geometry.
// The grid is empty afterwards and can be refilled.
func (q *QuadTreeGrid[T]) IterEntityPair(f func(a, b T)) {
	q.ancestors = q.ancestors[:0]
	q.visits = append(q.visits[:0], quadVisit{})

	for len(q.visits) > 0 {
		top := len(q.visits) - 1
		v := q.visits[top]

		if v.entered {
			q.visits = q.visits[:top]
			clear(q.ancestors[v.mark:])
			q.ancestors = q.ancestors[:v.mark]
			continue
		}

		bucketPtr := levelBias(v.level) + v.index
		bucket := q.buckets[bucketPtr]
		for i := range bucket {
			for j := i + 1; j < len(bucket); j++ {
				f(bucket[i], bucket[j])
			}
			for _, stacked := range q.ancestors {
				f(bucket[i], stacked)
			}
		}

		q.size -= len(bucket)

		if v.level == q.level {
			q.visits = q.visits[:top]
			clear(bucket)
			q.buckets[bucketPtr] = bucket[:0]
			continue
		}

		q.visits[top].entered = true
		q.visits[top].mark = len(q.ancestors)
		q.ancestors = append(q.ancestors, bucket...)
		clear(bucket)
		q.buckets[bucketPtr] = bucket[:0]

		// pushed in reverse so child 0 is visited first
		for child := 3; child >= 0; child-- {
			q.visits = append(q.visits, quadVisit{
				level: v.level + 1,
				index: v.index*4 + child,
			})
		}
	}
}
