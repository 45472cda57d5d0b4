// Package integration integrates sampled signals in the frequency domain.
package integration

import (
	"math"

	"github.com/RyanBlaney/sonido-modal/algorithms/common"
	"github.com/RyanBlaney/sonido-modal/algorithms/spectral"
	"github.com/RyanBlaney/sonido-modal/logging"
	"github.com/RyanBlaney/sonido-modal/timeseries"
)

// Integrator performs repeated integration by division with (iω) in the
// frequency domain. The DC bin is zeroed at every step, so the output carries
// no drift and no constant of integration.
type Integrator struct {
	fft    *spectral.FFT
	logger logging.Logger
}

// NewIntegrator creates a frequency-domain integrator
func NewIntegrator() *Integrator {
	return &Integrator{
		fft: spectral.NewFFT(),
		logger: logging.WithFields(logging.Fields{
			"component": "frequency_integrator",
		}),
	}
}

// Integrate integrates values sampled at sampleRate times times and returns
// the mean-removed result.
func (in *Integrator) Integrate(values []float64, sampleRate float64, times int) ([]float64, error) {
	if times < 1 {
		return nil, common.NewConfigurationError("times", times, "at least one integration is required")
	}
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, common.NewComputationError("integrate", "sample rate must be positive")
	}
	if len(values) < 2 {
		return nil, common.NewComputationError("integrate", "at least 2 samples are required")
	}
	if !common.AllFinite(values) {
		return nil, common.NewComputationError("integrate", "signal contains non-finite values")
	}

	n := len(values)
	spectrum := in.fft.Compute(values)

	for step := 0; step < times; step++ {
		spectrum[0] = 0
		for k := 1; k < n; k++ {
			omega := 2 * math.Pi * spectral.BinFrequency(k, n, sampleRate)
			spectrum[k] /= complex(0, omega)
		}
	}

	out := in.fft.ComputeInverseReal(spectrum)
	out = common.RemoveMean(out)

	in.logger.Debug("Integrated signal", logging.Fields{
		"samples": n,
		"times":   times,
	})
	return out, nil
}

// IntegrateSeries integrates a series and returns a new series on the same time base
func (in *Integrator) IntegrateSeries(series *timeseries.TimeSeries, times int) (*timeseries.TimeSeries, error) {
	if err := series.Validate(); err != nil {
		return nil, &common.ComputationError{Op: "integrate", Reason: "invalid series", Err: err}
	}
	values, err := in.Integrate(series.Values, series.SampleRate, times)
	if err != nil {
		return nil, err
	}
	return series.WithValues(values), nil
}

// Displacement converts an acceleration series in g to cm/s² and integrates
// it twice, yielding displacement in cm.
func (in *Integrator) Displacement(accelG *timeseries.TimeSeries) (*timeseries.TimeSeries, error) {
	if err := accelG.Validate(); err != nil {
		return nil, &common.ComputationError{Op: "integrate", Reason: "invalid series", Err: err}
	}
	return in.IntegrateSeries(accelG.Scale(timeseries.GToCmPerS2), 2)
}
