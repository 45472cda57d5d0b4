package damping

import (
	"math"

	"github.com/RyanBlaney/sonido-modal/algorithms/common"
)

// Band is the frequency interval attributed to one mode
type Band struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Width returns High - Low
func (b Band) Width() float64 {
	return b.High - b.Low
}

// Contains reports whether f lies inside the band
func (b Band) Contains(f float64) bool {
	return f >= b.Low && f <= b.High
}

// Bands assigns an isolation band to every candidate frequency.
//
// Each candidate f0 starts from [f0*(1-fraction/2), f0*(1+fraction/2)]. The
// band is then clipped at the midpoint between f0 and its nearest lower and
// upper neighbours, so adjacent bands never overlap, and at nyquist.
func Bands(candidates []float64, fraction, nyquist float64) []Band {
	bands := make([]Band, len(candidates))
	for i, f0 := range candidates {
		low := f0 * (1 - fraction/2)
		high := f0 * (1 + fraction/2)

		for j, other := range candidates {
			if j == i || other == f0 {
				continue
			}
			mid := (f0 + other) / 2
			if other < f0 {
				low = math.Max(low, mid)
			} else {
				high = math.Min(high, mid)
			}
		}

		bands[i] = Band{
			Low:  common.Clamp(low, 0, nyquist),
			High: common.Clamp(high, 0, nyquist),
		}
	}
	return bands
}
