// Package interp provides point sampling over 1-D coordinate axes and the
// 2-D planes they span: nearest-index lookup for cursor readouts and
// bilinear interpolation for smooth probing.
package interp

import (
	"fmt"
	"math"
)

// NearestIndex returns the index of the coordinate value closest to v,
// by absolute distance. Works for ascending and descending axes.
// Returns -1 for an empty axis.
func NearestIndex(coords []float64, v float64) int {
	best := -1
	bestDist := math.Inf(1)
	for i, c := range coords {
		d := math.Abs(c - v)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// bracket finds indices (i, i+1) such that v lies between coords[i] and
// coords[i+1]. The axis may be ascending or descending but must be
// monotonic.
func bracket(coords []float64, v float64) (int, error) {
	for i := 0; i < len(coords)-1; i++ {
		lo, hi := coords[i], coords[i+1]
		if lo > hi {
			lo, hi = hi, lo
		}
		if v >= lo && v <= hi {
			return i, nil
		}
	}
	return 0, fmt.Errorf("value %g outside axis range [%g, %g]", v, coords[0], coords[len(coords)-1])
}

// Bilinear interpolates the plane at (x, y). values is indexed
// values[row][col] with rows following the y axis and columns the x axis.
// A NaN at any surrounding corner makes the result NaN, so masked cells
// stay masked rather than bleeding averages.
func Bilinear(xs, ys []float64, values [][]float64, x, y float64) (float64, error) {
	if len(xs) < 2 || len(ys) < 2 {
		return 0, fmt.Errorf("bilinear interpolation needs at least a 2x2 grid")
	}
	j, err := bracket(xs, x)
	if err != nil {
		return 0, fmt.Errorf("x: %w", err)
	}
	i, err := bracket(ys, y)
	if err != nil {
		return 0, fmt.Errorf("y: %w", err)
	}

	x0, x1 := xs[j], xs[j+1]
	y0, y1 := ys[i], ys[i+1]
	v00 := values[i][j]
	v10 := values[i][j+1]
	v01 := values[i+1][j]
	v11 := values[i+1][j+1]
	if math.IsNaN(v00) || math.IsNaN(v10) || math.IsNaN(v01) || math.IsNaN(v11) {
		return math.NaN(), nil
	}

	t := 0.0
	if x1 != x0 {
		t = (x - x0) / (x1 - x0)
	}
	u := 0.0
	if y1 != y0 {
		u = (y - y0) / (y1 - y0)
	}
	t = math.Max(0, math.Min(1, t))
	u = math.Max(0, math.Min(1, u))

	return (1-t)*(1-u)*v00 + t*(1-u)*v10 + (1-t)*u*v01 + t*u*v11, nil
}
