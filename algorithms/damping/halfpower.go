package damping

import (
	"errors"
	"math"

	"github.com/RyanBlaney/sonido-modal/algorithms/peaks"
	"github.com/RyanBlaney/sonido-modal/algorithms/spectral"
)

// ErrNoHalfPowerCrossing is reported when the spectrum does not fall to the
// half-power level on both sides of the peak before the band edge.
var ErrNoHalfPowerCrossing = errors.New("half-power crossing not found inside the mode band")

// HalfPowerResult carries the frequencies the half-power ratio was taken from
type HalfPowerResult struct {
	Peak    float64 // refined peak frequency
	Lower   float64 // f1
	Upper   float64 // f2
	Percent float64 // (f2-f1)/(2*peak)*100
}

// HalfPower estimates the damping ratio of the mode inside band from the
// width of its spectral peak at half power. Density spectra are cut at half
// the peak value, magnitude spectra at 1/sqrt(2) of it.
//
// Starting from the largest bin inside the band, the walk outward stops at
// the first bin at or below the cut level and the crossing is interpolated
// linearly between that bin and its inner neighbour. If the band edge is
// reached first, or the band maximum sits on the edge, the estimate is
// missing.
func HalfPower(spectrum *spectral.Spectrum, band Band) (HalfPowerResult, error) {
	mags := spectrum.Magnitudes
	res := spectrum.Resolution
	if len(mags) < 3 || !(res > 0) {
		return HalfPowerResult{}, ErrNoHalfPowerCrossing
	}

	lo := max(int(math.Ceil(band.Low/res)), 0)
	hi := min(int(math.Floor(band.High/res)), len(mags)-1)
	if hi-lo < 2 {
		return HalfPowerResult{}, ErrNoHalfPowerCrossing
	}

	peak := lo
	for i := lo + 1; i <= hi; i++ {
		if mags[i] > mags[peak] {
			peak = i
		}
	}
	if peak == lo || peak == hi || mags[peak] <= 0 {
		return HalfPowerResult{}, ErrNoHalfPowerCrossing
	}

	position, value := peaks.RefineParabolic(mags, peak)
	level := value / 2
	if spectrum.Scaling == spectral.ScalingMagnitude {
		level = value / math.Sqrt2
	}

	lower := -1.0
	for i := peak - 1; i >= lo; i-- {
		if mags[i] <= level {
			lower = float64(i) + (level-mags[i])/(mags[i+1]-mags[i])
			break
		}
	}

	upper := -1.0
	for i := peak + 1; i <= hi; i++ {
		if mags[i] <= level {
			upper = float64(i-1) + (mags[i-1]-level)/(mags[i-1]-mags[i])
			break
		}
	}

	if lower < 0 || upper < 0 {
		return HalfPowerResult{}, ErrNoHalfPowerCrossing
	}

	result := HalfPowerResult{
		Peak:  position * res,
		Lower: lower * res,
		Upper: upper * res,
	}
	result.Percent = (result.Upper - result.Lower) / (2 * result.Peak) * 100
	return result, nil
}
