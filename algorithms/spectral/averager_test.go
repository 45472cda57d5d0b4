package spectral

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-modal/algorithms/common"
	"github.com/RyanBlaney/sonido-modal/algorithms/windowing"
	"github.com/RyanBlaney/sonido-modal/internal/testutil"
)

func TestAverageBinLayout(t *testing.T) {
	signal := testutil.DeterministicNoise(1, 1, 2000)
	avg := NewAverager(AveragerConfig{WindowSize: 1024, Overlap: 0.66})

	spec, err := avg.Average(signal, 200)
	require.NoError(t, err)

	assert.Equal(t, 513, spec.Len())
	assert.Len(t, spec.Frequencies, 513)
	assert.InDelta(t, 0, spec.Frequencies[0], 1e-12)
	assert.InDelta(t, 100, spec.Frequencies[512], 1e-9)
	assert.InDelta(t, 200.0/1024, spec.Resolution, 1e-12)

	// noverlap = round(1024*0.66) = 676, hop = 348, (2000-1024)/348+1 = 3
	assert.Equal(t, 348, spec.HopSize)
	assert.Equal(t, 3, spec.Segments)

	for i := 1; i < spec.Len(); i++ {
		assert.Greater(t, spec.Frequencies[i], spec.Frequencies[i-1])
	}
	for _, m := range spec.Magnitudes {
		assert.GreaterOrEqual(t, m, 0.0)
	}
}

func TestAverageMagnitudeScalingRecoversAmplitude(t *testing.T) {
	const (
		fs = 100.0
		m  = 1000
	)
	// 12.5 Hz sits exactly on bin 125 and every segment holds whole cycles
	signal := testutil.DeterministicSine(12.5, fs, 2.0, 4000)

	avg := NewAverager(AveragerConfig{WindowSize: m, Overlap: 0.5, Scaling: ScalingMagnitude})
	spec, err := avg.Average(signal, fs)
	require.NoError(t, err)

	peak := common.ArgMax(spec.Magnitudes)
	assert.Equal(t, 125, peak)
	assert.InDelta(t, 2.0, spec.Magnitudes[peak], 0.02)
	assert.Equal(t, 125, spec.BinOf(12.5))
}

func TestAverageDensityIntegratesToVariance(t *testing.T) {
	const fs = 50.0
	rng := rand.New(rand.NewSource(3))
	signal := make([]float64, 40000)
	for i := range signal {
		signal[i] = rng.NormFloat64() * 0.5
	}

	avg := NewAverager(AveragerConfig{WindowSize: 256, Overlap: 0.5, Window: windowing.TypeHann})
	spec, err := avg.Average(signal, fs)
	require.NoError(t, err)

	power := 0.0
	for _, p := range spec.Magnitudes {
		power += p * spec.Resolution
	}
	assert.InEpsilon(t, 0.25, power, 0.05)
}

func TestAverageZeroPadding(t *testing.T) {
	const (
		fs = 100.0
		m  = 1000
	)
	signal := testutil.DeterministicSine(12.5, fs, 2.0, 4000)

	avg := NewAverager(AveragerConfig{WindowSize: m, Overlap: 0.5, Scaling: ScalingMagnitude, FFTSize: 4 * m})
	spec, err := avg.Average(signal, fs)
	require.NoError(t, err)

	assert.Equal(t, 2001, spec.Len())
	assert.Equal(t, m, spec.WindowSize)
	assert.Equal(t, 4*m, spec.FFTSize)
	assert.InDelta(t, fs/(4*m), spec.Resolution, 1e-12)

	// padding interpolates between bins without moving or scaling the peak
	peak := common.ArgMax(spec.Magnitudes)
	assert.Equal(t, 500, peak)
	assert.InDelta(t, 2.0, spec.Magnitudes[peak], 0.02)
}

func TestAverageDensityWithPaddingIntegratesToVariance(t *testing.T) {
	const fs = 50.0
	rng := rand.New(rand.NewSource(5))
	signal := make([]float64, 20000)
	for i := range signal {
		signal[i] = rng.NormFloat64() * 0.5
	}

	avg := NewAverager(AveragerConfig{WindowSize: 256, Overlap: 0.5, Window: windowing.TypeRectangular, FFTSize: 2048})
	spec, err := avg.Average(signal, fs)
	require.NoError(t, err)

	power := 0.0
	for _, p := range spec.Magnitudes {
		power += p * spec.Resolution
	}
	assert.InEpsilon(t, 0.25, power, 0.05)
}

func TestAverageRemovesSegmentMean(t *testing.T) {
	signal := testutil.DC(3.0, 512)
	spec, err := NewAverager(AveragerConfig{WindowSize: 128, Overlap: 0}).Average(signal, 10)
	require.NoError(t, err)

	assert.InDelta(t, 0, spec.Max(), 1e-20)
}

func TestAverageDeterministic(t *testing.T) {
	signal := testutil.DeterministicNoise(9, 1, 30000)
	avg := NewAverager(AveragerConfig{WindowSize: 512, Overlap: 0.66})

	a, err := avg.Average(signal, 100)
	require.NoError(t, err)
	b, err := avg.Average(signal, 100)
	require.NoError(t, err)

	assert.Equal(t, a.Magnitudes, b.Magnitudes)
}

func TestAverageErrors(t *testing.T) {
	signal := testutil.DeterministicNoise(1, 1, 100)

	tests := []struct {
		name   string
		config AveragerConfig
		signal []float64
		param  string
	}{
		{"window longer than signal", AveragerConfig{WindowSize: 128}, signal, "windowing"},
		{"zero window", AveragerConfig{WindowSize: 0}, signal, "windowing"},
		{"overlap of one", AveragerConfig{WindowSize: 64, Overlap: 1}, signal, "overlap"},
		{"negative overlap", AveragerConfig{WindowSize: 64, Overlap: -0.1}, signal, "overlap"},
		{"no hop left", AveragerConfig{WindowSize: 4, Overlap: 0.9}, signal, "overlap"},
		{"transform shorter than window", AveragerConfig{WindowSize: 64, FFTSize: 32}, signal, "fft_size"},
		{"negative transform", AveragerConfig{WindowSize: 64, FFTSize: -1}, signal, "fft_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAverager(tt.config).Average(tt.signal, 100)
			require.Error(t, err)

			var cfgErr *common.ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.param, cfgErr.Param)
		})
	}

	bad := append([]float64{}, signal...)
	bad[10] = math.NaN()
	_, err := NewAverager(AveragerConfig{WindowSize: 64}).Average(bad, 100)
	assert.True(t, errors.Is(err, common.ErrComputation))

	_, err = NewAverager(AveragerConfig{WindowSize: 64}).Average(signal, 0)
	assert.True(t, errors.Is(err, common.ErrConfiguration))
}

func TestBinFrequency(t *testing.T) {
	assert.InDelta(t, 25, BinFrequency(2, 8, 100), 1e-12)
	assert.InDelta(t, 50, BinFrequency(4, 8, 100), 1e-12)
	assert.InDelta(t, -37.5, BinFrequency(5, 8, 100), 1e-12)
	assert.Equal(t, 5, OneSidedBins(8))
	assert.Equal(t, 5, OneSidedBins(9))
}

func TestParseScaling(t *testing.T) {
	s, err := ParseScaling("Magnitude")
	require.NoError(t, err)
	assert.Equal(t, ScalingMagnitude, s)

	s, err = ParseScaling("")
	require.NoError(t, err)
	assert.Equal(t, ScalingDensity, s)

	_, err = ParseScaling("db")
	assert.Error(t, err)
}
