package filters

import (
	"fmt"
	"math"
	"slices"
)

// BandpassFilter implements a digital bandpass filter using biquad topology.
//
// This implementation uses the cookbook formulas from Robert Bristow-Johnson's
// "Cookbook formulae for audio EQ biquad filter coefficients" (constant 0 dB
// peak gain variant).
// Reference: https://webaudio.github.io/Audio-EQ-Cookbook/audio-eq-cookbook.html
type BandpassFilter struct {
	sampleRate float64
	centerFreq float64 // Center frequency in Hz
	bandwidth  float64 // Bandwidth in Hz
	qFactor    float64 // Quality factor (centerFreq/bandwidth)

	// Biquad coefficients
	b0, b1, b2 float64 // Numerator coefficients
	a0, a1, a2 float64 // Denominator coefficients

	// State variables for direct form II implementation
	w1, w2 float64
}

// NewBandpassFilter creates a new bandpass filter with specified parameters.
//
// Parameters:
//   - sampleRate: Sample rate in Hz
//   - centerFreq: Center frequency in Hz, strictly between 0 and Nyquist
//   - bandwidth: Bandwidth in Hz
//
// The Q factor is calculated as centerFreq/bandwidth.
// Higher Q values create narrower, more selective filters.
func NewBandpassFilter(sampleRate, centerFreq, bandwidth float64) (*BandpassFilter, error) {
	if bandwidth <= 0 || math.IsNaN(bandwidth) {
		return nil, fmt.Errorf("bandwidth must be positive, got %v", bandwidth)
	}
	return NewBandpassFilterWithQ(sampleRate, centerFreq, centerFreq/bandwidth)
}

// NewBandpassFilterWithQ creates a bandpass filter with explicit Q factor.
func NewBandpassFilterWithQ(sampleRate, centerFreq, qFactor float64) (*BandpassFilter, error) {
	if !(sampleRate > 0) {
		return nil, fmt.Errorf("sample rate must be positive, got %v", sampleRate)
	}
	if !(centerFreq > 0) || centerFreq >= sampleRate/2 {
		return nil, fmt.Errorf("center frequency must be between 0 and Nyquist frequency (%g Hz), got %v", sampleRate/2, centerFreq)
	}
	if !(qFactor > 0) || math.IsInf(qFactor, 0) {
		return nil, fmt.Errorf("Q factor must be positive, got %v", qFactor)
	}

	bf := &BandpassFilter{
		sampleRate: sampleRate,
		centerFreq: centerFreq,
		qFactor:    qFactor,
		bandwidth:  centerFreq / qFactor,
	}
	bf.computeCoefficients()
	return bf, nil
}

// computeCoefficients calculates the biquad coefficients using the cookbook formula.
func (bf *BandpassFilter) computeCoefficients() {
	// w0 = 2*pi*f0/Fs
	w0 := 2.0 * math.Pi * bf.centerFreq / bf.sampleRate

	cosW0 := math.Cos(w0)
	sinW0 := math.Sin(w0)

	// alpha = sin(w0)/(2*Q)
	alpha := sinW0 / (2.0 * bf.qFactor)

	bf.b0 = alpha
	bf.b1 = 0.0
	bf.b2 = -alpha
	bf.a0 = 1.0 + alpha
	bf.a1 = -2.0 * cosW0
	bf.a2 = 1.0 - alpha

	// Normalize by a0
	bf.b0 /= bf.a0
	bf.b1 /= bf.a0
	bf.b2 /= bf.a0
	bf.a1 /= bf.a0
	bf.a2 /= bf.a0
	bf.a0 = 1.0
}

// Process applies the bandpass filter to a single sample.
//
// Direct Form II:
// w[n] = x[n] - a1*w[n-1] - a2*w[n-2]
// y[n] = b0*w[n] + b1*w[n-1] + b2*w[n-2]
func (bf *BandpassFilter) Process(input float64) float64 {
	w := input - bf.a1*bf.w1 - bf.a2*bf.w2
	output := bf.b0*w + bf.b1*bf.w1 + bf.b2*bf.w2

	bf.w2 = bf.w1
	bf.w1 = w

	return output
}

// ProcessBuffer applies the bandpass filter to an entire buffer of samples.
func (bf *BandpassFilter) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	for i, sample := range input {
		output[i] = bf.Process(sample)
	}
	return output
}

// ProcessZeroPhase filters input forward and then backward, which squares
// the magnitude response and cancels the phase shift. The input is extended
// at both ends by odd reflection over three periods of the center frequency
// to soften start-up transients. Filter state is reset before and after.
func (bf *BandpassFilter) ProcessZeroPhase(input []float64) []float64 {
	n := len(input)
	if n == 0 {
		return []float64{}
	}

	padLen := min(n-1, int(math.Ceil(3*bf.sampleRate/bf.centerFreq)))
	padded := make([]float64, 0, n+2*padLen)
	for i := padLen; i >= 1; i-- {
		padded = append(padded, 2*input[0]-input[i])
	}
	padded = append(padded, input...)
	for i := 1; i <= padLen; i++ {
		padded = append(padded, 2*input[n-1]-input[n-1-i])
	}

	bf.Reset()
	forward := bf.ProcessBuffer(padded)
	slices.Reverse(forward)

	bf.Reset()
	backward := bf.ProcessBuffer(forward)
	slices.Reverse(backward)
	bf.Reset()

	out := make([]float64, n)
	copy(out, backward[padLen:padLen+n])
	return out
}

// Reset clears the filter's internal state (delay line).
func (bf *BandpassFilter) Reset() {
	bf.w1, bf.w2 = 0.0, 0.0
}
