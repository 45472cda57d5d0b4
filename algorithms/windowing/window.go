package windowing

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Type selects a window function
type Type int

const (
	TypeHamming Type = iota
	TypeHann
	TypeRectangular
)

func (t Type) String() string {
	switch t {
	case TypeHamming:
		return "hamming"
	case TypeHann:
		return "hann"
	case TypeRectangular:
		return "rectangular"
	default:
		return "unknown"
	}
}

// ParseType maps a window name to its Type
func ParseType(name string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "hamming":
		return TypeHamming, nil
	case "hann", "hanning":
		return TypeHann, nil
	case "rectangular", "boxcar":
		return TypeRectangular, nil
	default:
		return 0, fmt.Errorf("unknown window type %q", name)
	}
}

// Window is a tapering function applied to fixed-length frames
type Window interface {
	Apply(signal []float64) []float64
	ApplyInPlace(signal []float64) error
	GetCoefficients() []float64
	GetSize() int
	GetType() string
}

// New creates a symmetric window of the given type and size
func New(t Type, size int) (Window, error) {
	if size <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", size)
	}
	switch t {
	case TypeHamming:
		return NewHamming(size, true), nil
	case TypeHann:
		return NewHann(size, true), nil
	case TypeRectangular:
		return NewRectangular(size), nil
	default:
		return nil, fmt.Errorf("unsupported window type %d", int(t))
	}
}

// Sum returns the sum of the window coefficients (coherent gain times size)
func Sum(w Window) float64 {
	return floats.Sum(w.GetCoefficients())
}

// SumSquares returns the sum of squared coefficients (window power)
func SumSquares(w Window) float64 {
	c := w.GetCoefficients()
	return floats.Dot(c, c)
}

func applyCoefficients(coefficients, signal []float64) []float64 {
	if len(signal) != len(coefficients) {
		return nil
	}
	windowed := make([]float64, len(signal))
	floats.MulTo(windowed, signal, coefficients)
	return windowed
}

func applyCoefficientsInPlace(coefficients, signal []float64) error {
	if len(signal) != len(coefficients) {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), len(coefficients))
	}
	floats.Mul(signal, coefficients)
	return nil
}

// denominator returns the cosine period for a window of the given size,
// using size-1 as the period for symmetric windows.
func denominator(size int, symmetric bool) float64 {
	if symmetric && size > 1 {
		return float64(size - 1)
	}
	return float64(size)
}
