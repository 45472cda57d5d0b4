package damping

import (
	"errors"
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-modal/algorithms/common"
	"github.com/RyanBlaney/sonido-modal/algorithms/filters"
	"github.com/RyanBlaney/sonido-modal/algorithms/temporal"
)

// ErrInsufficientDecayPeaks is reported when fewer than two decay
// amplitudes could be read from the isolated mode.
var ErrInsufficientDecayPeaks = errors.New("fewer than two decay peaks after isolating the mode")

// DecayResult is the outcome of the logarithmic decrement method
type DecayResult struct {
	Amplitudes []float64 // successive peak amplitudes, one per cycle
	Start      int       // sample index of the first amplitude
	Decrement  float64   // delta = ln(x1/xn)/(n-1)
	Percent    float64   // delta/(2*pi)*100
}

// LogDecrement estimates the damping ratio of the mode at freq from the
// free decay of the signal after isolating band.
//
// The mode is isolated with a zero-phase band-pass centred on freq whose
// bandwidth is the band's width about freq (twice the nearer edge
// distance). Peak amplitudes are read from the Hilbert envelope of the
// isolated signal, once per period 1/freq, starting at the envelope maximum
// plus SettleTimeConstants filter time constants 1/(pi*bandwidth).
// Sampling stops when an amplitude drops below DecayFloor times the first
// one, when an amplitude rises above its predecessor, at the end of the
// signal, or after MaxCycles amplitudes.
func LogDecrement(signal []float64, sampleRate, freq float64, band Band, config Config) (DecayResult, error) {
	halfWidth := math.Min(freq-band.Low, band.High-freq)
	if !(halfWidth > 0) {
		return DecayResult{}, fmt.Errorf("%w: empty band around %.4g Hz", ErrInsufficientDecayPeaks, freq)
	}
	bandwidth := 2 * halfWidth

	bp, err := filters.NewBandpassFilter(sampleRate, freq, bandwidth)
	if err != nil {
		return DecayResult{}, fmt.Errorf("isolating mode at %.4g Hz: %w", freq, err)
	}

	env := temporal.NewEnvelope().ComputeHilbert(bp.ProcessZeroPhase(signal))
	peakIdx := common.ArgMax(env)
	if peakIdx < 0 {
		return DecayResult{}, ErrInsufficientDecayPeaks
	}

	settle := config.SettleTimeConstants / (math.Pi * bandwidth) * sampleRate
	start := float64(peakIdx) + settle
	period := sampleRate / freq

	first, ok := common.InterpolateAt(env, start)
	if !ok || !(first > 0) {
		return DecayResult{}, ErrInsufficientDecayPeaks
	}

	amplitudes := []float64{first}
	floor := config.DecayFloor * first
	for k := 1; len(amplitudes) < config.MaxCycles; k++ {
		v, ok := common.InterpolateAt(env, start+float64(k)*period)
		if !ok || v < floor || v > amplitudes[len(amplitudes)-1] {
			break
		}
		amplitudes = append(amplitudes, v)
	}

	n := len(amplitudes)
	if n < 2 {
		return DecayResult{}, ErrInsufficientDecayPeaks
	}

	delta := math.Log(amplitudes[0]/amplitudes[n-1]) / float64(n-1)
	return DecayResult{
		Amplitudes: amplitudes,
		Start:      int(math.Round(start)),
		Decrement:  delta,
		Percent:    delta / (2 * math.Pi) * 100,
	}, nil
}
