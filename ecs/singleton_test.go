package ecs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/quadphys/ecs"
)

type GameTime struct {
	Elapsed float64
}

func TestSingleton(t *testing.T) {
	world := ecs.NewWorld()

	assert.Nil(t, ecs.ReadSingleton[GameTime](world))

	clock := ecs.NewSingleton(world, GameTime{Elapsed: 1.5})
	require.NotNil(t, clock.Get())
	assert.Equal(t, 1.5, clock.Get().Elapsed)

	clock.Get().Elapsed += 1
	assert.Equal(t, 2.5, ecs.ReadSingleton[GameTime](world).Elapsed)
}

func TestSingletonIsNeverOverwritten(t *testing.T) {
	world := ecs.NewWorld()

	first := ecs.NewSingleton(world, GameTime{Elapsed: 3})
	second := ecs.NewSingleton(world, GameTime{Elapsed: 10})

	assert.Same(t, first.Get(), second.Get())
	assert.Equal(t, 3.0, second.Get().Elapsed)
}

func TestSingletonZeroValue(t *testing.T) {
	world := ecs.NewWorld()

	score := ecs.NewSingleton[Score](world)
	assert.Equal(t, Score(0), *score.Get())
}
