// Package timeseries holds the uniformly sampled signal type shared by every
// stage of the modal analysis pipeline, together with the unit conversion
// constants used when loading and integrating accelerations.
package timeseries

import (
	"fmt"
	"math"
)

// Unit conversion constants.
const (
	// GToCmPerS2 converts acceleration in g to cm/s².
	GToCmPerS2 = 980.665

	// CountGravityMPerS2 is the gravity value (m/s²) used when converting
	// digitizer counts to g together with the sensor calibration count.
	CountGravityMPerS2 = 9.81

	// MPerS2ToG converts acceleration in m/s² to g.
	MPerS2ToG = 0.101972
)

// UniformityTolerance is the relative deviation from the nominal sample
// interval accepted when building a series from explicit timestamps.
const UniformityTolerance = 0.01

// TimeSeries is an ordered sequence of uniformly spaced samples
type TimeSeries struct {
	Times      []float64 `json:"times"`       // seconds
	Values     []float64 `json:"values"`      // unit depends on the producer
	SampleRate float64   `json:"sample_rate"` // Hz
}

// New builds a series from values sampled at sampleRate, starting at start seconds.
func New(values []float64, sampleRate, start float64) (*TimeSeries, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("invalid sample rate: %v", sampleRate)
	}

	dt := 1.0 / sampleRate
	times := make([]float64, len(values))
	for i := range times {
		times[i] = start + float64(i)*dt
	}

	vals := make([]float64, len(values))
	copy(vals, values)

	return &TimeSeries{Times: times, Values: vals, SampleRate: sampleRate}, nil
}

// FromSamples builds a series from explicit (time, value) pairs. The time axis
// must be strictly increasing with a uniform step.
func FromSamples(times, values []float64) (*TimeSeries, error) {
	if len(times) != len(values) {
		return nil, fmt.Errorf("times and values length mismatch: %d vs %d", len(times), len(values))
	}
	if len(times) < 2 {
		return nil, fmt.Errorf("at least 2 samples required to infer the sample interval, got %d", len(times))
	}

	dt := (times[len(times)-1] - times[0]) / float64(len(times)-1)
	if !(dt > 0) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("time axis must be strictly increasing")
	}

	for i := 1; i < len(times); i++ {
		step := times[i] - times[i-1]
		if math.Abs(step-dt) > UniformityTolerance*dt {
			return nil, fmt.Errorf("non-uniform sampling at index %d: step %g s, expected %g s", i, step, dt)
		}
	}

	ts := &TimeSeries{
		Times:      make([]float64, len(times)),
		Values:     make([]float64, len(values)),
		SampleRate: 1.0 / dt,
	}
	copy(ts.Times, times)
	copy(ts.Values, values)
	return ts, nil
}

// Len returns the number of samples
func (ts *TimeSeries) Len() int {
	return len(ts.Values)
}

// Interval returns the sample interval in seconds
func (ts *TimeSeries) Interval() float64 {
	return 1.0 / ts.SampleRate
}

// Duration returns the time spanned by the samples
func (ts *TimeSeries) Duration() float64 {
	if len(ts.Values) == 0 {
		return 0
	}
	return float64(len(ts.Values)) / ts.SampleRate
}

// Clone returns a deep copy
func (ts *TimeSeries) Clone() *TimeSeries {
	return ts.WithValues(ts.Values)
}

// WithValues returns a new series on the same time axis carrying a copy of values.
// values must have the same length as the series.
func (ts *TimeSeries) WithValues(values []float64) *TimeSeries {
	out := &TimeSeries{
		Times:      make([]float64, len(ts.Times)),
		Values:     make([]float64, len(values)),
		SampleRate: ts.SampleRate,
	}
	copy(out.Times, ts.Times)
	copy(out.Values, values)
	return out
}

// Scale returns a new series with every value multiplied by factor
func (ts *TimeSeries) Scale(factor float64) *TimeSeries {
	out := ts.Clone()
	for i := range out.Values {
		out.Values[i] *= factor
	}
	return out
}

// Validate checks the structural invariants of the series
func (ts *TimeSeries) Validate() error {
	if ts == nil {
		return fmt.Errorf("nil time series")
	}
	if ts.SampleRate <= 0 || math.IsNaN(ts.SampleRate) || math.IsInf(ts.SampleRate, 0) {
		return fmt.Errorf("invalid sample rate: %v", ts.SampleRate)
	}
	if len(ts.Times) != len(ts.Values) {
		return fmt.Errorf("times and values length mismatch: %d vs %d", len(ts.Times), len(ts.Values))
	}
	return nil
}
