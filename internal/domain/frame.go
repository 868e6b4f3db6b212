package domain

import (
	"fmt"
	"math"

	"github.com/ctessum/sparse"

	"go.geoview.io/geoview/internal/interp"
)

// Frame is one rendered view of the data: the 2-D plane (rows follow Y,
// columns follow X, after any orientation transpose), its coordinate
// arrays and the display metadata. Frames are ephemeral; a new one is
// derived from the dataset on every render.
type Frame struct {
	Variable string

	// Data is indexed (row, col) = (y, x).
	Data *sparse.DenseArray
	X    []float64
	Y    []float64

	Title         string
	ColorbarLabel string

	// Step-axis state. NavLabel is empty when the plan has no step axis.
	NavDim      string
	NavLabel    string
	PrevEnabled bool
	NextEnabled bool
}

// NX returns the number of columns (X axis length).
func (f *Frame) NX() int { return f.Data.Shape[1] }

// NY returns the number of rows (Y axis length).
func (f *Frame) NY() int { return f.Data.Shape[0] }

// Rows returns the plane as a row-major [NY][NX] slice-of-slices view.
// The rows share the frame's backing storage.
func (f *Frame) Rows() [][]float64 {
	ny, nx := f.NY(), f.NX()
	rows := make([][]float64, ny)
	for i := 0; i < ny; i++ {
		rows[i] = f.Data.Elements[i*nx : (i+1)*nx]
	}
	return rows
}

// ProbeResult is the cursor readout at one geographic position.
type ProbeResult struct {
	Lon, Lat float64
	Row, Col int
	Value    float64
	Masked   bool
	InBounds bool
}

// String formats the readout the way the status bar shows it.
func (p ProbeResult) String() string {
	switch {
	case !p.InBounds:
		return fmt.Sprintf("lon: %.4f, lat: %.4f, value: N/A (out of bounds)", p.Lon, p.Lat)
	case p.Masked:
		return fmt.Sprintf("lon: %.4f, lat: %.4f, value: N/A (masked)", p.Lon, p.Lat)
	default:
		return fmt.Sprintf("lon: %.4f, lat: %.4f, value: %.4f", p.Lon, p.Lat, p.Value)
	}
}

// Probe reports the data value nearest to the given position, found by
// distance minimization over the coordinate arrays. Positions outside the
// coordinate extent are flagged out of bounds; NaN cells are masked.
func (f *Frame) Probe(lon, lat float64) ProbeResult {
	p := ProbeResult{Lon: lon, Lat: lat, Row: -1, Col: -1}
	if !within(f.X, lon) || !within(f.Y, lat) {
		return p
	}
	p.InBounds = true
	p.Col = interp.NearestIndex(f.X, lon)
	p.Row = interp.NearestIndex(f.Y, lat)
	v := f.Data.Get(p.Row, p.Col)
	if math.IsNaN(v) {
		p.Masked = true
		return p
	}
	p.Value = v
	return p
}

// ProbeInterpolated is like Probe but samples the plane bilinearly
// instead of snapping to the nearest cell.
func (f *Frame) ProbeInterpolated(lon, lat float64) ProbeResult {
	p := f.Probe(lon, lat)
	if !p.InBounds || p.Masked {
		return p
	}
	v, err := interp.Bilinear(f.X, f.Y, f.Rows(), lon, lat)
	if err != nil {
		return p // fall back to the nearest-cell value
	}
	if math.IsNaN(v) {
		p.Masked = true
		p.Value = 0
		return p
	}
	p.Value = v
	return p
}

func within(coords []float64, v float64) bool {
	if len(coords) == 0 {
		return false
	}
	lo, hi := coords[0], coords[len(coords)-1]
	if lo > hi {
		lo, hi = hi, lo
	}
	return v >= lo && v <= hi
}
