package windowing

import (
	"fmt"
)

// Rectangular is the boxcar window. It leaves transients at the segment
// start untouched.
type Rectangular struct {
	size         int
	coefficients []float64
}

// NewRectangular creates a rectangular window
func NewRectangular(size int) *Rectangular {
	r := &Rectangular{size: size}
	r.coefficients = make([]float64, size)
	for i := range r.coefficients {
		r.coefficients[i] = 1.0
	}
	return r
}

// Apply returns a copy of signal
func (r *Rectangular) Apply(signal []float64) []float64 {
	if len(signal) != r.size {
		return nil
	}
	windowed := make([]float64, r.size)
	copy(windowed, signal)
	return windowed
}

// ApplyInPlace only checks the length; the signal is unchanged
func (r *Rectangular) ApplyInPlace(signal []float64) error {
	if len(signal) != r.size {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), r.size)
	}
	return nil
}

// GetCoefficients returns a copy of the window coefficients
func (r *Rectangular) GetCoefficients() []float64 {
	coeffs := make([]float64, len(r.coefficients))
	copy(coeffs, r.coefficients)
	return coeffs
}

// GetSize returns the window size
func (r *Rectangular) GetSize() int {
	return r.size
}

// GetType returns the window type
func (r *Rectangular) GetType() string {
	return TypeRectangular.String()
}
