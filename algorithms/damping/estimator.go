// Package damping estimates modal damping ratios with two independent
// methods: the half-power bandwidth of the spectral peak and the
// logarithmic decrement of the isolated free decay.
package damping

import (
	"math"

	"github.com/RyanBlaney/sonido-modal/algorithms/common"
	"github.com/RyanBlaney/sonido-modal/algorithms/spectral"
	"github.com/RyanBlaney/sonido-modal/logging"
	"github.com/RyanBlaney/sonido-modal/timeseries"
)

// Estimate holds both damping ratios of one candidate mode, in percent.
// A nil ratio means the method could not produce a value, and the matching
// error says why.
type Estimate struct {
	Frequency    float64  `json:"frequency"`
	Band         Band     `json:"band"`
	LogDecrement *float64 `json:"log_decrement,omitempty"`
	HalfPower    *float64 `json:"half_power,omitempty"`
	LogErr       error    `json:"-"`
	HalfErr      error    `json:"-"`
}

// Estimator computes damping estimates for a set of candidate frequencies
type Estimator struct {
	config Config
	logger logging.Logger
}

// NewEstimator creates a damping estimator
func NewEstimator(config Config) *Estimator {
	return &Estimator{
		config: config,
		logger: logging.WithFields(logging.Fields{
			"component": "damping_estimator",
		}),
	}
}

// Estimate computes the averaged power spectral density of the series with
// the configured segmenting and returns one estimate per candidate, in
// candidate order.
func (e *Estimator) Estimate(series *timeseries.TimeSeries, candidates []float64) ([]Estimate, error) {
	if err := e.config.Validate(); err != nil {
		return nil, err
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}

	spectrum, err := spectral.NewAverager(e.config.averagerConfig()).Average(series.Values, series.SampleRate)
	if err != nil {
		return nil, err
	}
	return e.EstimateWithSpectrum(series, spectrum, candidates)
}

// EstimateWithSpectrum is Estimate with a spectrum already computed from the
// same series.
func (e *Estimator) EstimateWithSpectrum(series *timeseries.TimeSeries, spectrum *spectral.Spectrum, candidates []float64) ([]Estimate, error) {
	if err := e.config.Validate(); err != nil {
		return nil, err
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}

	nyquist := series.SampleRate / 2
	for _, f := range candidates {
		if !(f > 0) || f >= nyquist || math.IsInf(f, 0) {
			return nil, common.NewComputationError("damping estimation",
				"candidate frequency outside (0, Nyquist)")
		}
	}

	bands := Bands(candidates, e.config.BandFraction, nyquist)
	estimates := make([]Estimate, len(candidates))

	for i, f0 := range candidates {
		est := Estimate{Frequency: f0, Band: bands[i]}

		if hp, err := HalfPower(spectrum, bands[i]); err != nil {
			est.HalfErr = err
		} else {
			est.HalfPower = &hp.Percent
		}

		if ld, err := LogDecrement(series.Values, series.SampleRate, f0, bands[i], e.config); err != nil {
			est.LogErr = err
		} else {
			est.LogDecrement = &ld.Percent
		}

		fields := logging.Fields{
			"frequency": f0,
			"band_low":  bands[i].Low,
			"band_high": bands[i].High,
		}
		if est.HalfErr != nil {
			fields["half_power_error"] = est.HalfErr.Error()
		}
		if est.LogErr != nil {
			fields["log_decrement_error"] = est.LogErr.Error()
		}
		e.logger.Debug("Estimated mode damping", fields)

		estimates[i] = est
	}

	return estimates, nil
}
