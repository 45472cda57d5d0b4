package damping

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-modal/algorithms/common"
	"github.com/RyanBlaney/sonido-modal/algorithms/spectral"
	"github.com/RyanBlaney/sonido-modal/internal/testutil"
	"github.com/RyanBlaney/sonido-modal/timeseries"
)

func sdofSeries(t *testing.T) *timeseries.TimeSeries {
	t.Helper()
	series, err := timeseries.New(testutil.FreeDecay(5, 0.02, 50, 1, 2048, 1024), 50, 0)
	require.NoError(t, err)
	return series
}

func sdofConfig() Config {
	cfg := DefaultConfig()
	cfg.WindowSize = 2048
	return cfg
}

func TestBands(t *testing.T) {
	bands := Bands([]float64{2, 9}, 0.3, 12.5)
	require.Len(t, bands, 2)
	assert.InDelta(t, 1.7, bands[0].Low, 1e-12)
	assert.InDelta(t, 2.3, bands[0].High, 1e-12)
	assert.InDelta(t, 7.65, bands[1].Low, 1e-12)
	assert.InDelta(t, 10.35, bands[1].High, 1e-12)

	// close neighbours clip at the midpoint
	near := Bands([]float64{10, 11}, 0.3, 50)
	assert.InDelta(t, 10.5, near[0].High, 1e-12)
	assert.InDelta(t, 10.5, near[1].Low, 1e-12)
	assert.InDelta(t, 8.5, near[0].Low, 1e-12)

	// nyquist clips the upper edge
	edge := Bands([]float64{24}, 0.3, 25)
	assert.InDelta(t, 25, edge[0].High, 1e-12)
	assert.True(t, edge[0].Contains(24))
	assert.InDelta(t, 25-20.4, edge[0].Width(), 1e-12)
}

func TestEstimateSingleDegreeOfFreedom(t *testing.T) {
	series := sdofSeries(t)

	estimates, err := NewEstimator(sdofConfig()).Estimate(series, []float64{5})
	require.NoError(t, err)
	require.Len(t, estimates, 1)

	est := estimates[0]
	require.NoError(t, est.HalfErr)
	require.NoError(t, est.LogErr)
	require.NotNil(t, est.HalfPower)
	require.NotNil(t, est.LogDecrement)

	assert.InEpsilon(t, 2.0, *est.HalfPower, 0.2)
	assert.InEpsilon(t, 2.0, *est.LogDecrement, 0.2)
}

func TestEstimateDecayFromFirstSample(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate float64
		length     int
		windowSize int
	}{
		{"default window, several segments", 50, 4096, 1024},
		{"long record", 200, 8192, 4096},
		{"single segment", 50, 2048, 2048},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series, err := timeseries.New(testutil.FreeDecay(5, 0.02, tt.sampleRate, 1, tt.length, 0), tt.sampleRate, 0)
			require.NoError(t, err)

			cfg := DefaultConfig()
			cfg.WindowSize = tt.windowSize
			estimates, err := NewEstimator(cfg).Estimate(series, []float64{5})
			require.NoError(t, err)
			require.Len(t, estimates, 1)

			est := estimates[0]
			require.NoError(t, est.HalfErr)
			require.NoError(t, est.LogErr)
			assert.InEpsilon(t, 2.0, *est.HalfPower, 0.2)
			assert.InEpsilon(t, 2.0, *est.LogDecrement, 0.2)
		})
	}
}

func TestLogDecrementSamplesOncePerCycle(t *testing.T) {
	series := sdofSeries(t)
	cfg := sdofConfig()

	result, err := LogDecrement(series.Values, series.SampleRate, 5, Band{Low: 4.25, High: 5.75}, cfg)
	require.NoError(t, err)

	assert.Greater(t, result.Start, 1024)
	assert.GreaterOrEqual(t, len(result.Amplitudes), 2)
	for i := 1; i < len(result.Amplitudes); i++ {
		assert.LessOrEqual(t, result.Amplitudes[i], result.Amplitudes[i-1])
		assert.GreaterOrEqual(t, result.Amplitudes[i], cfg.DecayFloor*result.Amplitudes[0])
	}
	assert.InDelta(t, result.Decrement/(2*math.Pi)*100, result.Percent, 1e-12)

	cfg.MaxCycles = 3
	capped, err := LogDecrement(series.Values, series.SampleRate, 5, Band{Low: 4.25, High: 5.75}, cfg)
	require.NoError(t, err)
	assert.Len(t, capped.Amplitudes, 3)
}

func TestLogDecrementMissing(t *testing.T) {
	cfg := DefaultConfig()

	// the settle time runs past the end of a short record
	short := testutil.DeterministicSine(5, 50, 1, 40)
	_, err := LogDecrement(short, 50, 5, Band{Low: 4.25, High: 5.75}, cfg)
	assert.True(t, errors.Is(err, ErrInsufficientDecayPeaks))

	_, err = LogDecrement(short, 50, 5, Band{Low: 5, High: 5.75}, cfg)
	assert.True(t, errors.Is(err, ErrInsufficientDecayPeaks))
}

func TestHalfPowerOnLorentzian(t *testing.T) {
	const (
		res  = 0.01
		f0   = 3.0
		zeta = 0.02
	)
	mags := make([]float64, 1001)
	freqs := make([]float64, len(mags))
	for i := range mags {
		f := float64(i) * res
		freqs[i] = f
		// |H(f)|^2 of a lightly damped oscillator
		r := f / f0
		mags[i] = 1 / ((1-r*r)*(1-r*r) + (2*zeta*r)*(2*zeta*r))
	}
	spec := &spectral.Spectrum{Frequencies: freqs, Magnitudes: mags, Resolution: res}

	result, err := HalfPower(spec, Band{Low: 2.55, High: 3.45})
	require.NoError(t, err)
	assert.InDelta(t, f0, result.Peak, 2*res)
	assert.InEpsilon(t, 2.0, result.Percent, 0.05)
	assert.Less(t, result.Lower, result.Peak)
	assert.Greater(t, result.Upper, result.Peak)
}

func TestHalfPowerMissing(t *testing.T) {
	spec := &spectral.Spectrum{
		Magnitudes: []float64{0, 1, 2, 3, 4, 3.5, 3, 2.9, 2.8, 2.7},
		Resolution: 1,
	}

	// never drops to half power on the right before the band edge
	_, err := HalfPower(spec, Band{Low: 1, High: 9})
	assert.True(t, errors.Is(err, ErrNoHalfPowerCrossing))

	// the band maximum sits on its edge
	_, err = HalfPower(spec, Band{Low: 4, High: 9})
	assert.True(t, errors.Is(err, ErrNoHalfPowerCrossing))

	// too narrow to hold a peak
	_, err = HalfPower(spec, Band{Low: 3.5, High: 4.5})
	assert.True(t, errors.Is(err, ErrNoHalfPowerCrossing))
}

func TestHalfPowerMagnitudeLevel(t *testing.T) {
	spec := &spectral.Spectrum{
		Magnitudes: []float64{0, 0.5, 1, 0.5, 0},
		Resolution: 1,
		Scaling:    spectral.ScalingMagnitude,
	}
	result, err := HalfPower(spec, Band{Low: 0, High: 4})
	require.NoError(t, err)

	// crossings at 1/sqrt2 of the peak, interpolated linearly
	frac := (1/math.Sqrt2 - 0.5) / 0.5
	assert.InDelta(t, 1+frac, result.Lower, 1e-12)
	assert.InDelta(t, 3-frac, result.Upper, 1e-12)
	assert.InDelta(t, 2, result.Peak, 1e-12)
}

func TestEstimateKeepsCandidateOrder(t *testing.T) {
	series := sdofSeries(t)
	estimates, err := NewEstimator(sdofConfig()).Estimate(series, []float64{5, 20})
	require.NoError(t, err)
	require.Len(t, estimates, 2)
	assert.Equal(t, 5.0, estimates[0].Frequency)
	assert.Equal(t, 20.0, estimates[1].Frequency)

	// nothing rings at 20 Hz: whatever the methods report must be explained
	if estimates[1].HalfPower == nil {
		assert.Error(t, estimates[1].HalfErr)
	}
	if estimates[1].LogDecrement == nil {
		assert.Error(t, estimates[1].LogErr)
	}
}

func TestEstimateErrors(t *testing.T) {
	series := sdofSeries(t)

	cfg := sdofConfig()
	cfg.BandFraction = 0
	_, err := NewEstimator(cfg).Estimate(series, []float64{5})
	var cfgErr *common.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "damping.band_fraction", cfgErr.Param)

	cfg = sdofConfig()
	cfg.WindowSize = 4096
	_, err = NewEstimator(cfg).Estimate(series, []float64{5})
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "windowing", cfgErr.Param)

	_, err = NewEstimator(sdofConfig()).Estimate(series, []float64{30})
	assert.True(t, errors.Is(err, common.ErrComputation))

	estimates, err := NewEstimator(sdofConfig()).Estimate(series, nil)
	require.NoError(t, err)
	assert.Empty(t, estimates)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		param  string
	}{
		{"decay floor", func(c *Config) { c.DecayFloor = 1 }, "damping.decay_floor"},
		{"max cycles", func(c *Config) { c.MaxCycles = 1 }, "damping.max_cycles"},
		{"settle", func(c *Config) { c.SettleTimeConstants = -1 }, "damping.settle_time_constants"},
		{"overlap", func(c *Config) { c.Overlap = 1 }, "overlap"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			var cfgErr *common.ConfigurationError
			require.True(t, errors.As(cfg.Validate(), &cfgErr))
			assert.Equal(t, tt.param, cfgErr.Param)
		})
	}
}
