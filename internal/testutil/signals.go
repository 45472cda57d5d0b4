// Package testutil provides deterministic synthetic signals for tests.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates uniform white noise in [-amplitude, amplitude)
// with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// FreeDecay generates the free response of a single degree of freedom
// oscillator, amplitude*exp(-zeta*wn*t)*sin(wd*t), starting at sample start.
// Samples before start are zero.
func FreeDecay(freqHz, zeta, sampleRate, amplitude float64, length, start int) []float64 {
	out := make([]float64, length)
	wn := 2 * math.Pi * freqHz
	wd := wn * math.Sqrt(1-zeta*zeta)
	for i := start; i < length; i++ {
		t := float64(i-start) / sampleRate
		out[i] = amplitude * math.Exp(-zeta*wn*t) * math.Sin(wd*t)
	}
	return out
}

// Sum adds signals sample by sample. The result has the length of the
// shortest input.
func Sum(signals ...[]float64) []float64 {
	if len(signals) == 0 {
		return nil
	}
	n := len(signals[0])
	for _, s := range signals[1:] {
		n = min(n, len(s))
	}
	out := make([]float64, n)
	for _, s := range signals {
		for i := range out {
			out[i] += s[i]
		}
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}
