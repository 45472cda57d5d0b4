// Package peaks picks modal candidates out of an averaged spectrum.
package peaks

// Peak represents a detected spectral peak
type Peak struct {
	Frequency  float64 `json:"frequency"`  // Hz
	Magnitude  float64 `json:"magnitude"`  // spectrum value at the peak
	Prominence float64 `json:"prominence"` // height above the higher of the two bases
	Bin        int     `json:"bin"`        // index into the spectrum
}

// ModalPeakSet is a set of candidate modal peaks in ascending frequency order
// with at most one peak per bin.
type ModalPeakSet []Peak

// Frequencies returns the candidate frequencies in ascending order
func (s ModalPeakSet) Frequencies() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Frequency
	}
	return out
}

// Empty reports whether no candidate was found
func (s ModalPeakSet) Empty() bool {
	return len(s) == 0
}
