package temporal

import (
	"math/cmplx"

	"github.com/RyanBlaney/sonido-modal/algorithms/spectral"
)

// Envelope computes amplitude envelopes of oscillating signals
type Envelope struct {
	fft *spectral.FFT
}

// NewEnvelope creates a new envelope calculator
func NewEnvelope() *Envelope {
	return &Envelope{fft: spectral.NewFFT()}
}

// Analytic returns the analytic signal x + j*H{x}, computed by zeroing the
// negative frequencies of the transform and doubling the positive ones.
func (e *Envelope) Analytic(signal []float64) []complex128 {
	n := len(signal)
	if n == 0 {
		return []complex128{}
	}

	spectrum := e.fft.Compute(signal)
	for k := 1; k < n; k++ {
		switch {
		case 2*k < n:
			spectrum[k] *= 2
		case 2*k == n:
			// Nyquist bin is kept as is
		default:
			spectrum[k] = 0
		}
	}
	return e.fft.ComputeInverse(spectrum)
}

// ComputeHilbert computes the instantaneous amplitude |x + j*H{x}|
func (e *Envelope) ComputeHilbert(signal []float64) []float64 {
	analytic := e.Analytic(signal)
	envelope := make([]float64, len(analytic))
	for i, v := range analytic {
		envelope[i] = cmplx.Abs(v)
	}
	return envelope
}
