package spectral

import (
	"math/cmplx"
)

// PowerSpectrum converts the positive half of a windowed segment transform
// into a scaled one-sided spectrum.
type PowerSpectrum struct {
	scaling Scaling
	fftSize int
	// density: 1/(fs*sum(w^2)); magnitude: 1/sum(w)
	norm float64
}

// NewPowerSpectrum creates a scaler for transforms of fftSize points.
// windowSum and windowSumSquares are the sum and the sum of squares of the
// window coefficients.
func NewPowerSpectrum(scaling Scaling, fftSize int, sampleRate, windowSum, windowSumSquares float64) *PowerSpectrum {
	ps := &PowerSpectrum{scaling: scaling, fftSize: fftSize}
	switch scaling {
	case ScalingMagnitude:
		ps.norm = 1.0 / windowSum
	default:
		ps.norm = 1.0 / (sampleRate * windowSumSquares)
	}
	return ps
}

// ComputeInto writes the one-sided scaled spectrum of fftResult into dst,
// which must hold fftSize/2+1 values. Interior bins are doubled to
// account for the folded negative frequencies; DC and (for even sizes)
// Nyquist are not.
func (ps *PowerSpectrum) ComputeInto(dst []float64, fftResult []complex128) {
	bins := OneSidedBins(ps.fftSize)
	for k := 0; k < bins; k++ {
		mag := cmplx.Abs(fftResult[k])

		var v float64
		if ps.scaling == ScalingMagnitude {
			v = mag * ps.norm
		} else {
			v = mag * mag * ps.norm
		}

		if ps.isFolded(k) {
			v *= 2
		}
		dst[k] = v
	}
}

func (ps *PowerSpectrum) isFolded(k int) bool {
	if k == 0 {
		return false
	}
	if ps.fftSize%2 == 0 && k == ps.fftSize/2 {
		return false
	}
	return true
}
