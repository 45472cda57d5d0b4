package spectral

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Scaling selects how segment spectra are scaled before averaging
type Scaling int

const (
	// ScalingDensity yields a one-sided power spectral density (unit²/Hz)
	ScalingDensity Scaling = iota
	// ScalingMagnitude yields a one-sided amplitude spectrum (unit)
	ScalingMagnitude
)

func (s Scaling) String() string {
	switch s {
	case ScalingDensity:
		return "density"
	case ScalingMagnitude:
		return "magnitude"
	default:
		return "unknown"
	}
}

// ParseScaling maps a scaling name to its value
func ParseScaling(name string) (Scaling, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "density", "psd":
		return ScalingDensity, nil
	case "magnitude", "amplitude":
		return ScalingMagnitude, nil
	default:
		return 0, fmt.Errorf("unknown spectrum scaling %q", name)
	}
}

// Spectrum is a one-sided averaged spectrum with FFTSize/2+1 bins spaced
// SampleRate/FFTSize apart, from DC up to Nyquist. FFTSize equals
// WindowSize unless the segments were zero-padded.
type Spectrum struct {
	Frequencies []float64 `json:"frequencies"` // Hz, strictly ascending
	Magnitudes  []float64 `json:"magnitudes"`  // non-negative, unit depends on Scaling
	SampleRate  float64   `json:"sample_rate"`
	WindowSize  int       `json:"window_size"`
	FFTSize     int       `json:"fft_size"`
	HopSize     int       `json:"hop_size"`
	Segments    int       `json:"segments"`
	Resolution  float64   `json:"resolution"` // Hz per bin
	Scaling     Scaling   `json:"-"`
}

// Len returns the number of bins
func (s *Spectrum) Len() int {
	return len(s.Magnitudes)
}

// Max returns the largest magnitude
func (s *Spectrum) Max() float64 {
	if len(s.Magnitudes) == 0 {
		return 0
	}
	return floats.Max(s.Magnitudes)
}

// BinOf returns the bin closest to freq, clamped to the valid range
func (s *Spectrum) BinOf(freq float64) int {
	if len(s.Magnitudes) == 0 || s.Resolution <= 0 {
		return 0
	}
	bin := int(math.Round(freq / s.Resolution))
	if bin < 0 {
		return 0
	}
	if bin >= len(s.Magnitudes) {
		return len(s.Magnitudes) - 1
	}
	return bin
}
