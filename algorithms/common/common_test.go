package common

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveMean(t *testing.T) {
	in := []float64{1, 2, 3, 6}
	out := RemoveMean(in)

	assert.Equal(t, []float64{1, 2, 3, 6}, in)
	assert.InDeltaSlice(t, []float64{-2, -1, 0, 3}, out, 1e-12)
	assert.Empty(t, RemoveMean(nil))
}

func TestAllFinite(t *testing.T) {
	assert.True(t, AllFinite([]float64{0, -1, 1e300}))
	assert.False(t, AllFinite([]float64{0, math.NaN()}))
	assert.False(t, AllFinite([]float64{math.Inf(-1)}))
}

func TestArgMaxAndRound(t *testing.T) {
	assert.Equal(t, -1, ArgMax(nil))
	assert.Equal(t, 1, ArgMax([]float64{1, 5, 5, 2}))
	assert.Equal(t, 1.23, Round(1.2349, 2))
	assert.Equal(t, 2.01, Round(2.006, 2))
	assert.Equal(t, -0.5, Round(-0.504, 2))
}

func TestInterpolateAt(t *testing.T) {
	y := []float64{0, 10, 30}

	assert.Equal(t, 0.0, Clamp(-1, 0, 2))
	assert.Equal(t, 2.0, Clamp(5, 0, 2))
	assert.Equal(t, 1.5, Clamp(1.5, 0, 2))

	v, ok := InterpolateAt(y, 1.25)
	require.True(t, ok)
	assert.InDelta(t, 15, v, 1e-12)

	v, ok = InterpolateAt(y, 2)
	require.True(t, ok)
	assert.InDelta(t, 30, v, 1e-12)

	_, ok = InterpolateAt(y, 2.01)
	assert.False(t, ok)
}

func TestErrorCategories(t *testing.T) {
	cfgErr := NewConfigurationError("windowing", 0, "must be positive")
	assert.True(t, errors.Is(cfgErr, ErrConfiguration))
	assert.False(t, errors.Is(cfgErr, ErrComputation))
	assert.Contains(t, cfgErr.Error(), "windowing")

	wrapped := fmt.Errorf("spectral averaging: %w", cfgErr)
	var target *ConfigurationError
	require.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "windowing", target.Param)

	cause := errors.New("fft failed")
	compErr := &ComputationError{Op: "integrate", Reason: "transform", Err: cause}
	assert.True(t, errors.Is(compErr, ErrComputation))
	assert.True(t, errors.Is(compErr, cause))
	assert.Equal(t, "integrate: transform: fft failed", compErr.Error())
}
