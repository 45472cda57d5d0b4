package damping

import (
	"math"

	"github.com/RyanBlaney/sonido-modal/algorithms/common"
	"github.com/RyanBlaney/sonido-modal/algorithms/spectral"
	"github.com/RyanBlaney/sonido-modal/algorithms/windowing"
)

// Config controls how each candidate mode is isolated and measured
type Config struct {
	// Segmenting of the half-power spectrum
	WindowSize int     `json:"window_size"`
	Overlap    float64 `json:"overlap"`

	// BandFraction is the width of a mode's isolation band relative to its
	// frequency, before clipping at the midpoints to neighbouring modes.
	BandFraction float64 `json:"band_fraction"`

	// SettleTimeConstants is the number of band-pass filter time constants
	// (1/(pi*bandwidth)) skipped after the envelope maximum.
	SettleTimeConstants float64 `json:"settle_time_constants"`

	// DecayFloor stops decay sampling once the envelope falls below this
	// fraction of the first sample.
	DecayFloor float64 `json:"decay_floor"`

	// MaxCycles caps the number of decay samples
	MaxCycles int `json:"max_cycles"`
}

// DefaultConfig returns the default estimator configuration
func DefaultConfig() Config {
	return Config{
		WindowSize:          1024,
		Overlap:             0.66,
		BandFraction:        0.3,
		SettleTimeConstants: 4,
		DecayFloor:          0.05,
		MaxCycles:           200,
	}
}

// Validate checks the estimator parameters
func (c Config) Validate() error {
	if err := c.averagerConfig().Validate(); err != nil {
		return err
	}
	if math.IsNaN(c.BandFraction) || c.BandFraction <= 0 || c.BandFraction >= 2 {
		return common.NewConfigurationError("damping.band_fraction", c.BandFraction, "must be in (0, 2)")
	}
	if math.IsNaN(c.SettleTimeConstants) || c.SettleTimeConstants < 0 {
		return common.NewConfigurationError("damping.settle_time_constants", c.SettleTimeConstants, "must not be negative")
	}
	if math.IsNaN(c.DecayFloor) || c.DecayFloor <= 0 || c.DecayFloor >= 1 {
		return common.NewConfigurationError("damping.decay_floor", c.DecayFloor, "must be in (0, 1)")
	}
	if c.MaxCycles < 2 {
		return common.NewConfigurationError("damping.max_cycles", c.MaxCycles, "at least two cycles are required")
	}
	return nil
}

// halfPowerPadding is the zero-padding factor of the half-power spectrum
const halfPowerPadding = 8

// averagerConfig describes the spectrum the half-power method reads. Segments
// are left untapered so a decay starting at the first sample keeps its full
// weight, and zero-padded so the -3 dB crossings of a narrow peak fall on
// several bins.
func (c Config) averagerConfig() spectral.AveragerConfig {
	return spectral.AveragerConfig{
		WindowSize: c.WindowSize,
		Overlap:    c.Overlap,
		Window:     windowing.TypeRectangular,
		Scaling:    spectral.ScalingDensity,
		FFTSize:    halfPowerPadding * c.WindowSize,
	}
}
