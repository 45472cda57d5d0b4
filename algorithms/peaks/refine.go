package peaks

import "math"

// ParabolicVertex fits a parabola through (-1, y1), (0, y2), (1, y3) and
// returns the vertex offset from the centre sample and the value there.
// ok is false when the three points are collinear.
func ParabolicVertex(y1, y2, y3 float64) (offset, value float64, ok bool) {
	denom := 2.0 * (2.0*y2 - y1 - y3)
	if math.Abs(denom) <= 1e-300 {
		return 0, y2, false
	}
	offset = (y3 - y1) / denom

	a := 0.5 * (y1 - 2.0*y2 + y3)
	b := 0.5 * (y3 - y1)
	value = y2 + a*offset*offset + b*offset
	return offset, value, true
}

// RefineParabolic refines a peak at bin of data using parabolic interpolation
// for sub-bin accuracy. It returns the fractional bin position and the
// interpolated value; edge bins are returned unchanged.
func RefineParabolic(data []float64, bin int) (position, value float64) {
	if bin <= 0 || bin >= len(data)-1 {
		if bin >= 0 && bin < len(data) {
			return float64(bin), data[bin]
		}
		return float64(bin), 0
	}

	offset, v, ok := ParabolicVertex(data[bin-1], data[bin], data[bin+1])
	if !ok || math.Abs(offset) > 1 {
		return float64(bin), data[bin]
	}
	return float64(bin) + offset, v
}
