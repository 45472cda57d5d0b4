package integration

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-modal/algorithms/common"
	"github.com/RyanBlaney/sonido-modal/internal/testutil"
	"github.com/RyanBlaney/sonido-modal/timeseries"
)

func maxAbs(x []float64) float64 {
	return math.Max(floats.Max(x), -floats.Min(x))
}

func TestIntegrateSineAmplitudeAndPhase(t *testing.T) {
	const (
		fs = 200.0
		f0 = 5.0
		a  = 3.0
	)
	signal := testutil.DeterministicSine(f0, fs, a, 2000)

	out, err := NewIntegrator().Integrate(signal, fs, 2)
	require.NoError(t, err)
	require.Len(t, out, len(signal))

	w := 2 * math.Pi * f0
	want := a / (w * w)
	assert.InEpsilon(t, want, maxAbs(out), 0.01)

	// two integrations flip the sign of a sine
	for i := range out {
		assert.InDelta(t, -signal[i]/(w*w), out[i], want*0.01)
	}
}

func TestIntegrateOnceGivesNegativeCosine(t *testing.T) {
	const fs = 100.0
	signal := testutil.DeterministicSine(2, fs, 1, 1000)

	out, err := NewIntegrator().Integrate(signal, fs, 1)
	require.NoError(t, err)

	w := 2 * math.Pi * 2
	for i := range out {
		want := -math.Cos(w*float64(i)/fs) / w
		assert.InDelta(t, want, out[i], 1e-3/w)
	}
}

func TestIntegrateZeroMeanAndLinear(t *testing.T) {
	signal := testutil.Sum(
		testutil.DeterministicSine(3, 100, 1, 1500),
		testutil.DeterministicNoise(4, 0.2, 1500),
		testutil.DC(0.7, 1500),
	)
	in := NewIntegrator()

	out, err := in.Integrate(signal, 100, 2)
	require.NoError(t, err)
	assert.InDelta(t, 0, common.Mean(out), 1e-9)

	other := testutil.Sum(
		testutil.DeterministicSine(11, 100, 0.4, 1500),
		testutil.DeterministicNoise(8, 0.3, 1500),
	)
	outOther, err := in.Integrate(other, 100, 2)
	require.NoError(t, err)

	// integrate(a*x + b*y) == a*integrate(x) + b*integrate(y)
	const a, b = -2.5, 1.75
	combined := make([]float64, len(signal))
	floats.ScaleTo(combined, a, signal)
	floats.AddScaled(combined, b, other)
	outCombined, err := in.Integrate(combined, 100, 2)
	require.NoError(t, err)

	for i := range out {
		assert.InDelta(t, a*out[i]+b*outOther[i], outCombined[i], 1e-9)
	}
}

func TestIntegrateDCOnlyReturnsZeros(t *testing.T) {
	out, err := NewIntegrator().Integrate(testutil.DC(4.2, 64), 50, 2)
	require.NoError(t, err)
	assert.InDelta(t, 0, maxAbs(out), 1e-9)
}

func TestIntegrateErrors(t *testing.T) {
	in := NewIntegrator()

	_, err := in.Integrate([]float64{1}, 100, 2)
	assert.True(t, errors.Is(err, common.ErrComputation))

	_, err = in.Integrate([]float64{1, math.Inf(1), 3}, 100, 2)
	assert.True(t, errors.Is(err, common.ErrComputation))

	_, err = in.Integrate([]float64{1, 2, 3}, 0, 2)
	assert.True(t, errors.Is(err, common.ErrComputation))

	_, err = in.Integrate([]float64{1, 2, 3}, 100, 0)
	assert.True(t, errors.Is(err, common.ErrConfiguration))
}

func TestDisplacementOfOneG(t *testing.T) {
	const fs = 200.0
	accel, err := timeseries.New(testutil.DeterministicSine(5, fs, 1, 2000), fs, 0)
	require.NoError(t, err)

	disp, err := NewIntegrator().Displacement(accel)
	require.NoError(t, err)

	// 980.665 / (2*pi*5)^2 = 0.9936 cm
	assert.InEpsilon(t, 0.9936, maxAbs(disp.Values), 0.05)
	assert.Equal(t, accel.Times, disp.Times)
	assert.InDelta(t, 1, maxAbs(accel.Values), 1e-9)
}
