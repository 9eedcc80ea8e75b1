package collision

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAxisMax(t *testing.T) {
	tests := []struct {
		name   string
		offers []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"largest magnitude wins", []float64{1, 3, 2}, 3},
		{"sign is kept", []float64{1, -3, 2}, -3},
		{"equal magnitude keeps first", []float64{3, -3}, 3},
		{"equal magnitude keeps first negative", []float64{-3, 3}, -3},
		{"zero never replaces", []float64{0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m axisMax
			for _, v := range tt.offers {
				m.offer(v)
			}
			assert.Equal(t, tt.want, m.load())
		})
	}
}

func TestAxisMaxConcurrentOffers(t *testing.T) {
	var m axisMax
	var wg sync.WaitGroup

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				m.offer(float64(i%97) * 0.5)
				m.offer(-float64(g))
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 48.0, m.load())
}
