package collision

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitSeparate(t *testing.T) {
	tests := []struct {
		in   uint32
		want uint32
	}{
		{0, 0},
		{1, 0b1},
		{0b11, 0b101},
		{0b101, 0b10001},
		{0xFFFF, 0x55555555},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%b", tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, bitSeparate(tt.in))
		})
	}
}

func TestLevelBias(t *testing.T) {
	assert.Equal(t, 0, levelBias(0))
	assert.Equal(t, 1, levelBias(1))
	assert.Equal(t, 5, levelBias(2))
	assert.Equal(t, 21, levelBias(3))
	assert.Equal(t, 85, levelBias(4))
}

func TestNewQuadTreeGrid(t *testing.T) {
	q := NewQuadTreeGrid[int](3, 0, 0, 64, 64)
	assert.Equal(t, 3, q.Level())
	assert.Len(t, q.buckets, 1+4+16+64)

	x, y, w, h := q.Bounds()
	assert.Equal(t, []float64{0, 0, 64, 64}, []float64{x, y, w, h})

	assert.Panics(t, func() { NewQuadTreeGrid[int](-1, 0, 0, 64, 64) })
	assert.Panics(t, func() { NewQuadTreeGrid[int](MaxQuadTreeLevel+1, 0, 0, 64, 64) })
	assert.Panics(t, func() { NewQuadTreeGrid[int](2, 0, 0, 0, 64) })
	assert.Panics(t, func() { NewQuadTreeGrid[int](2, 0, 0, 64, math.NaN()) })
}

func TestGridPositionClamps(t *testing.T) {
	q := NewQuadTreeGrid[int](2, 0, 0, 4, 4)

	tests := []struct {
		name   string
		x, y   float64
		cx, cy uint32
	}{
		{"inside", 1.5, 2.5, 1, 2},
		{"origin", 0, 0, 0, 0},
		{"negative", -5, -0.1, 0, 0},
		{"far edge", 4, 4, 3, 3},
		{"beyond", 100, 1, 3, 1},
		{"nan", math.NaN(), 1, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cx, cy := q.gridPosition(tt.x, tt.y)
			assert.Equal(t, tt.cx, cx)
			assert.Equal(t, tt.cy, cy)
		})
	}
}

func TestBucketIndex(t *testing.T) {
	// level 2 over a 4x4 square: one unit per leaf cell
	q := NewQuadTreeGrid[int](2, 0, 0, 4, 4)

	tests := []struct {
		name          string
		x, y, w, h    float64
		expectedIndex int
	}{
		{"single leaf", 0.2, 0.2, 0.5, 0.5, levelBias(2) + 0},
		{"last leaf", 3.1, 3.1, 0.5, 0.5, levelBias(2) + 15},
		{"straddles four leaves", 0.5, 0.5, 1, 1, levelBias(1) + 0},
		{"second quadrant", 3, 0, 0.5, 1.5, levelBias(1) + 1},
		{"whole region", 0, 0, 4, 4, 0},
		{"crosses the center", 1.5, 1.5, 1, 1, 0},
		{"outside is clamped", -10, -10, 2, 2, levelBias(2) + 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedIndex, q.bucketIndex(tt.x, tt.y, tt.w, tt.h))
		})
	}
}

type testBox struct {
	id  int
	pos cp.Vector
	box RectCollider
}

func randomBoxes(r *rand.Rand, n int, span float64) []testBox {
	boxes := make([]testBox, n)
	for i := range boxes {
		boxes[i] = testBox{
			id:  i,
			pos: cp.Vector{X: r.Float64()*(span+40) - 20, Y: r.Float64()*(span+40) - 20},
			box: RectCollider{Tag: "box", Width: 2 + r.Float64()*30, Height: 2 + r.Float64()*30},
		}
	}
	return boxes
}

func orderedPair(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func TestIterEntityPairFindsEveryOverlap(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))

	for _, level := range []int{0, 1, 3, 5} {
		t.Run(fmt.Sprintf("level=%d", level), func(t *testing.T) {
			q := NewQuadTreeGrid[int](level, 0, 0, 256, 256)
			boxes := randomBoxes(r, 200, 256)

			for _, b := range boxes {
				bb := b.box.Bounds(b.pos)
				q.AddEntity(bb.L, bb.B, bb.R-bb.L, bb.T-bb.B, b.id)
			}
			require.Equal(t, len(boxes), q.Len())

			seen := make(map[[2]int]int)
			q.IterEntityPair(func(a, b int) {
				assert.NotEqual(t, a, b, "entity paired with itself")
				seen[orderedPair(a, b)]++
			})

			for pair, count := range seen {
				assert.Equal(t, 1, count, "pair %v reported more than once", pair)
			}

			overlapping := 0
			for i := range boxes {
				for j := i + 1; j < len(boxes); j++ {
					p := Penetrate(boxes[i].pos, boxes[i].box, boxes[j].pos, boxes[j].box)
					if !p.Overlaps() {
						continue
					}
					overlapping++
					assert.Contains(t, seen, orderedPair(i, j), "overlapping pair missed")
				}
			}
			assert.Positive(t, overlapping)
			assert.Equal(t, 0, q.Len())
		})
	}
}

func TestIterEntityPairSkipsDisjointLeaves(t *testing.T) {
	q := NewQuadTreeGrid[string](3, 0, 0, 64, 64)
	q.AddEntity(1, 1, 2, 2, "top-left")
	q.AddEntity(60, 60, 2, 2, "bottom-right")
	q.AddEntity(1, 60, 2, 2, "bottom-left")

	calls := 0
	q.IterEntityPair(func(a, b string) { calls++ })
	assert.Equal(t, 0, calls)
}

func TestIterEntityPairSharedBucket(t *testing.T) {
	q := NewQuadTreeGrid[string](2, 0, 0, 64, 64)
	q.AddEntity(1, 1, 2, 2, "a")
	q.AddEntity(2, 2, 2, 2, "b")
	q.AddEntity(3, 3, 2, 2, "c")
	q.AddEntity(0, 0, 64, 64, "root")

	var pairs [][2]string
	q.IterEntityPair(func(a, b string) {
		if a > b {
			a, b = b, a
		}
		pairs = append(pairs, [2]string{a, b})
	})

	assert.ElementsMatch(t, [][2]string{
		{"a", "b"}, {"a", "c"}, {"b", "c"},
		{"a", "root"}, {"b", "root"}, {"c", "root"},
	}, pairs)
}

func TestIterEntityPairEmptiesGrid(t *testing.T) {
	q := NewQuadTreeGrid[int](3, 0, 0, 64, 64)
	q.AddEntity(1, 1, 2, 2, 1)
	q.AddEntity(1, 1, 2, 2, 2)

	calls := 0
	q.IterEntityPair(func(a, b int) { calls++ })
	assert.Equal(t, 1, calls)

	for i, bucket := range q.buckets {
		assert.Empty(t, bucket, "bucket %d not cleared", i)
	}

	calls = 0
	q.IterEntityPair(func(a, b int) { calls++ })
	assert.Equal(t, 0, calls)

	q.AddEntity(10, 10, 2, 2, 3)
	q.AddEntity(11, 11, 2, 2, 4)
	q.IterEntityPair(func(a, b int) {
		calls++
		assert.Equal(t, orderedPair(3, 4), orderedPair(a, b))
	})
	assert.Equal(t, 1, calls)
}

func TestClear(t *testing.T) {
	q := NewQuadTreeGrid[int](2, 0, 0, 64, 64)
	q.AddEntity(1, 1, 2, 2, 1)
	q.AddEntity(1, 1, 2, 2, 2)
	q.Clear()
	assert.Equal(t, 0, q.Len())

	calls := 0
	q.IterEntityPair(func(a, b int) { calls++ })
	assert.Equal(t, 0, calls)
}

func BenchmarkQuadTreeGrid(b *testing.B) {
	r := rand.New(rand.NewPCG(1, 2))
	boxes := randomBoxes(r, 1000, 640)
	q := NewQuadTreeGrid[int](5, 0, 0, 640, 640)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, box := range boxes {
			bb := box.box.Bounds(box.pos)
			q.AddEntity(bb.L, bb.B, bb.R-bb.L, bb.T-bb.B, box.id)
		}
		q.IterEntityPair(func(a, b int) {})
	}
}
