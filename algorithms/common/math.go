package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/stat"
)

// Basic numerical helpers used across algorithms, backed by gonum

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// RemoveMean returns a copy of data with its mean subtracted
func RemoveMean(data []float64) []float64 {
	out := make([]float64, len(data))
	copy(out, data)
	if len(out) > 0 {
		floats.AddConst(-Mean(out), out)
	}
	return out
}

// AllFinite reports whether every value is neither NaN nor infinite
func AllFinite(data []float64) bool {
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// ArgMax returns the index of the first maximum, or -1 for empty input
func ArgMax(data []float64) int {
	if len(data) == 0 {
		return -1
	}
	return floats.MaxIdx(data)
}

// Round rounds to the given number of decimal places
func Round(value float64, decimals int) float64 {
	return scalar.Round(value, decimals)
}

// InterpolateAt samples data at a fractional index with linear interpolation.
// ok is false when index lies outside [0, len(data)-1].
func InterpolateAt(data []float64, index float64) (value float64, ok bool) {
	if len(data) == 0 || index < 0 || index > float64(len(data)-1) {
		return 0, false
	}
	i := int(math.Floor(index))
	if i >= len(data)-1 {
		return data[len(data)-1], true
	}
	return Lerp(data[i], data[i+1], index-float64(i)), true
}

// Clamp constrains a value to [lo, hi]
func Clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// Lerp performs linear interpolation between two values
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}
