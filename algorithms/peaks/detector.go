package peaks

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-modal/algorithms/common"
	"github.com/RyanBlaney/sonido-modal/algorithms/spectral"
	"github.com/RyanBlaney/sonido-modal/logging"
)

// Detector selects spectrum peaks by prominence. A local maximum qualifies
// when its prominence is at least threshold times the spectrum maximum.
type Detector struct {
	threshold float64
	logger    logging.Logger
}

// NewDetector creates a prominence-based peak detector
func NewDetector(threshold float64) *Detector {
	return &Detector{
		threshold: threshold,
		logger: logging.WithFields(logging.Fields{
			"component": "peak_detector",
		}),
	}
}

// ValidateThreshold checks that threshold lies in (0, 1]
func ValidateThreshold(threshold float64) error {
	if math.IsNaN(threshold) || threshold <= 0 || threshold > 1 {
		return common.NewConfigurationError("threshold", threshold, "threshold must be in (0, 1]")
	}
	return nil
}

// Detect returns the qualifying peaks of spectrum in ascending frequency.
// An empty set is a normal outcome.
func (d *Detector) Detect(spectrum *spectral.Spectrum) (ModalPeakSet, error) {
	if err := ValidateThreshold(d.threshold); err != nil {
		return nil, err
	}
	if spectrum == nil || len(spectrum.Magnitudes) != len(spectrum.Frequencies) {
		return nil, common.NewComputationError("peak detection", "malformed spectrum")
	}
	if !common.AllFinite(spectrum.Magnitudes) {
		return nil, common.NewComputationError("peak detection", "spectrum contains non-finite values")
	}

	mags := spectrum.Magnitudes
	globalMax := spectrum.Max()
	if globalMax <= 0 {
		return ModalPeakSet{}, nil
	}
	minProminence := d.threshold * globalMax

	candidates := LocalMaxima(mags)
	prominences := Prominences(mags, candidates)

	set := ModalPeakSet{}
	seen := make(map[int]bool, len(candidates))
	for i, bin := range candidates {
		if prominences[i] < minProminence || seen[bin] {
			continue
		}
		seen[bin] = true
		set = append(set, Peak{
			Frequency:  spectrum.Frequencies[bin],
			Magnitude:  mags[bin],
			Prominence: prominences[i],
			Bin:        bin,
		})
	}

	// threshold 1 can only be met by the global maximum; ties keep the first
	if d.threshold >= 1 && len(set) > 1 {
		set = set[:1]
	}

	d.logger.Debug("Detected spectral peaks", logging.Fields{
		"local_maxima":   len(candidates),
		"peaks":          len(set),
		"min_prominence": minProminence,
		"frequencies":    fmt.Sprint(set.Frequencies()),
	})
	return set, nil
}

// LocalMaxima returns the indices of samples larger than both neighbours.
// A flat top counts once, at its middle sample (rounded down); the first and
// last samples are never maxima.
func LocalMaxima(x []float64) []int {
	var out []int
	i := 1
	last := len(x) - 1
	for i < last {
		if x[i-1] < x[i] {
			ahead := i + 1
			for ahead < last && x[ahead] == x[i] {
				ahead++
			}
			if x[ahead] < x[i] {
				out = append(out, (i+ahead-1)/2)
				i = ahead
			}
		}
		i++
	}
	return out
}

// Prominences computes the prominence of each peak. On each side the base is
// the minimum between the peak and the nearest strictly higher sample (or the
// edge); the prominence is the peak height above the higher base.
func Prominences(x []float64, peaks []int) []float64 {
	out := make([]float64, len(peaks))
	for n, p := range peaks {
		height := x[p]

		leftMin := height
		for i := p; i >= 0 && x[i] <= height; i-- {
			leftMin = math.Min(leftMin, x[i])
		}

		rightMin := height
		for i := p; i < len(x) && x[i] <= height; i++ {
			rightMin = math.Min(rightMin, x[i])
		}

		out[n] = height - math.Max(leftMin, rightMin)
	}
	return out
}
