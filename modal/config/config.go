package config

import (
	"math"

	"github.com/RyanBlaney/sonido-modal/algorithms/common"
	"github.com/RyanBlaney/sonido-modal/algorithms/damping"
	"github.com/RyanBlaney/sonido-modal/algorithms/peaks"
	"github.com/RyanBlaney/sonido-modal/algorithms/spectral"
	"github.com/RyanBlaney/sonido-modal/algorithms/windowing"
)

// AnalysisConfig holds every caller-supplied parameter of a modal analysis
type AnalysisConfig struct {
	// SampleRate in Hz, used only when the input does not describe its own sampling
	SampleRate float64 `json:"sample_rate" mapstructure:"sample_rate"`

	// Spectral Analysis
	Windowing  int     `json:"windowing" mapstructure:"windowing"` // window length M
	Overlap    float64 `json:"overlap" mapstructure:"overlap"`     // [0, 1)
	WindowType string  `json:"window_type" mapstructure:"window_type"`
	Scaling    string  `json:"scaling" mapstructure:"scaling"` // "density", "magnitude"

	// Peak detection: minimum prominence as a fraction of the spectrum maximum
	Threshold float64 `json:"threshold" mapstructure:"threshold"`

	Damping DampingConfig `json:"damping" mapstructure:"damping"`
}

// DampingConfig tunes the damping estimator
type DampingConfig struct {
	BandFraction        float64 `json:"band_fraction" mapstructure:"band_fraction"`
	SettleTimeConstants float64 `json:"settle_time_constants" mapstructure:"settle_time_constants"`
	DecayFloor          float64 `json:"decay_floor" mapstructure:"decay_floor"`
	MaxCycles           int     `json:"max_cycles" mapstructure:"max_cycles"`
}

// DefaultAnalysisConfig returns the default analysis parameters
func DefaultAnalysisConfig() *AnalysisConfig {
	d := damping.DefaultConfig()
	return &AnalysisConfig{
		SampleRate: 200,
		Windowing:  1024,
		Overlap:    0.66,
		WindowType: windowing.TypeHamming.String(),
		Scaling:    spectral.ScalingDensity.String(),
		Threshold:  0.66,
		Damping: DampingConfig{
			BandFraction:        d.BandFraction,
			SettleTimeConstants: d.SettleTimeConstants,
			DecayFloor:          d.DecayFloor,
			MaxCycles:           d.MaxCycles,
		},
	}
}

// Validate checks every parameter that can be checked without a signal.
// The first offending parameter is reported as a *common.ConfigurationError.
func (c *AnalysisConfig) Validate() error {
	if !(c.SampleRate > 0) || math.IsInf(c.SampleRate, 0) {
		return common.NewConfigurationError("sample_rate", c.SampleRate, "sample rate must be positive")
	}
	averager, err := c.AveragerConfig()
	if err != nil {
		return err
	}
	if err := averager.Validate(); err != nil {
		return err
	}
	if err := peaks.ValidateThreshold(c.Threshold); err != nil {
		return err
	}
	return c.EstimatorConfig().Validate()
}

// AveragerConfig converts the spectral parameters for the averager
func (c *AnalysisConfig) AveragerConfig() (spectral.AveragerConfig, error) {
	windowType, err := windowing.ParseType(c.WindowType)
	if err != nil {
		return spectral.AveragerConfig{}, common.NewConfigurationError("window_type", c.WindowType, err.Error())
	}
	scaling, err := spectral.ParseScaling(c.Scaling)
	if err != nil {
		return spectral.AveragerConfig{}, common.NewConfigurationError("scaling", c.Scaling, err.Error())
	}
	return spectral.AveragerConfig{
		WindowSize: c.Windowing,
		Overlap:    c.Overlap,
		Window:     windowType,
		Scaling:    scaling,
	}, nil
}

// EstimatorConfig converts the damping parameters for the estimator. The
// half-power spectrum uses the segment length and overlap of the analysis;
// its window and padding are fixed by the estimator.
func (c *AnalysisConfig) EstimatorConfig() damping.Config {
	return damping.Config{
		WindowSize:          c.Windowing,
		Overlap:             c.Overlap,
		BandFraction:        c.Damping.BandFraction,
		SettleTimeConstants: c.Damping.SettleTimeConstants,
		DecayFloor:          c.Damping.DecayFloor,
		MaxCycles:           c.Damping.MaxCycles,
	}
}
