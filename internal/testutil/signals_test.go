package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicSine(t *testing.T) {
	s := DeterministicSine(1000, 48000, 1.0, 48)
	require.Len(t, s, 48)
	assert.InDelta(t, 0, s[0], 1e-15)
	for _, v := range s {
		assert.LessOrEqual(t, math.Abs(v), 1.0)
	}
}

func TestDeterministicNoiseReproducible(t *testing.T) {
	assert.Equal(t, DeterministicNoise(7, 0.5, 64), DeterministicNoise(7, 0.5, 64))
	assert.NotEqual(t, DeterministicNoise(7, 0.5, 64), DeterministicNoise(8, 0.5, 64))
}

func TestFreeDecay(t *testing.T) {
	s := FreeDecay(5, 0.02, 100, 1, 400, 100)
	for i := 0; i <= 100; i++ {
		assert.Zero(t, s[i])
	}
	// quarter period after onset the response is close to the undamped peak
	assert.InDelta(t, math.Exp(-0.02*2*math.Pi*5*0.05), s[105], 1e-3)
}

func TestSum(t *testing.T) {
	assert.Equal(t, []float64{4, 6}, Sum([]float64{1, 2, 3}, []float64{3, 4}))
	assert.Nil(t, Sum())
}
