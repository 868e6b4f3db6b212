package dataset

import (
	"fmt"
	"math"

	"github.com/ctessum/sparse"
	"github.com/fhs/go-netcdf/netcdf"
)

// Coord reads a 1-D coordinate variable as float64 values. The variable
// must exist and have exactly one dimension.
func (d *Dataset) Coord(name string) ([]float64, error) {
	nv, err := d.nc.Var(name)
	if err != nil {
		return nil, fmt.Errorf("no variable %q: %w", name, err)
	}
	dims, err := nv.Dims()
	if err != nil {
		return nil, fmt.Errorf("dimensions of %q: %w", name, err)
	}
	if len(dims) != 1 {
		return nil, fmt.Errorf("coordinate variable %q has rank %d, expected 1", name, len(dims))
	}
	length, err := dims[0].Len()
	if err != nil {
		return nil, fmt.Errorf("length of %q: %w", name, err)
	}

	t, err := nv.Type()
	if err != nil {
		return nil, fmt.Errorf("type of %q: %w", name, err)
	}
	out, err := readAll(nv, t, int(length))
	if err != nil {
		return nil, fmt.Errorf("read coordinate %q: %w", name, err)
	}
	return out, nil
}

// ReadPlane reads a hyperslab of the named variable as float64 values.
// start and count have one entry per variable dimension. Packed integer
// data is unpacked via scale_factor and add_offset, and fill or missing
// cells become NaN so downstream code has a single mask convention.
func (d *Dataset) ReadPlane(name string, start, count []int) (*sparse.DenseArray, error) {
	nv, err := d.nc.Var(name)
	if err != nil {
		return nil, fmt.Errorf("no variable %q: %w", name, err)
	}
	v, ok := d.Variable(name)
	if !ok {
		return nil, fmt.Errorf("no variable %q", name)
	}
	if len(start) != v.Rank() || len(count) != v.Rank() {
		return nil, fmt.Errorf("variable %q has rank %d, got start/count of length %d/%d",
			name, v.Rank(), len(start), len(count))
	}

	total := 1
	ustart := make([]uint64, len(start))
	ucount := make([]uint64, len(count))
	for i := range start {
		if start[i] < 0 || count[i] < 1 || start[i]+count[i] > v.Shape[i] {
			return nil, fmt.Errorf("hyperslab [%d, %d) out of range for dimension %s (size %d)",
				start[i], start[i]+count[i], v.Dims[i], v.Shape[i])
		}
		ustart[i] = uint64(start[i])
		ucount[i] = uint64(count[i])
		total *= count[i]
	}

	t, err := nv.Type()
	if err != nil {
		return nil, fmt.Errorf("type of %q: %w", name, err)
	}
	flat, err := readSlab(nv, t, total, ustart, ucount)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", name, err)
	}

	// Mask fill values before unpacking: _FillValue matches the packed
	// representation, not the scaled one.
	if fv, ok := fillValue(nv); ok {
		for i, val := range flat {
			if val == fv {
				flat[i] = math.NaN()
			}
		}
	}
	applyPacking(nv, flat)

	out := sparse.ZerosDense(count...)
	copy(out.Elements, flat)
	return out, nil
}

// readAll reads a whole variable of a known element count.
func readAll(v netcdf.Var, t netcdf.Type, total int) ([]float64, error) {
	switch t {
	case netcdf.DOUBLE:
		out := make([]float64, total)
		if err := v.ReadFloat64s(out); err != nil {
			return nil, err
		}
		return out, nil
	case netcdf.FLOAT:
		tmp := make([]float32, total)
		if err := v.ReadFloat32s(tmp); err != nil {
			return nil, err
		}
		return widenFloat32(tmp), nil
	case netcdf.INT:
		tmp := make([]int32, total)
		if err := v.ReadInt32s(tmp); err != nil {
			return nil, err
		}
		return widenInt32(tmp), nil
	case netcdf.SHORT:
		tmp := make([]int16, total)
		if err := v.ReadInt16s(tmp); err != nil {
			return nil, err
		}
		return widenInt16(tmp), nil
	default:
		return nil, fmt.Errorf("unsupported variable type: %v", t)
	}
}

// readSlab reads a hyperslab of a variable.
func readSlab(v netcdf.Var, t netcdf.Type, total int, start, count []uint64) ([]float64, error) {
	switch t {
	case netcdf.DOUBLE:
		out := make([]float64, total)
		if err := v.ReadFloat64Slice(out, start, count); err != nil {
			return nil, err
		}
		return out, nil
	case netcdf.FLOAT:
		tmp := make([]float32, total)
		if err := v.ReadFloat32Slice(tmp, start, count); err != nil {
			return nil, err
		}
		return widenFloat32(tmp), nil
	case netcdf.INT:
		tmp := make([]int32, total)
		if err := v.ReadInt32Slice(tmp, start, count); err != nil {
			return nil, err
		}
		return widenInt32(tmp), nil
	case netcdf.SHORT:
		tmp := make([]int16, total)
		if err := v.ReadInt16Slice(tmp, start, count); err != nil {
			return nil, err
		}
		return widenInt16(tmp), nil
	default:
		return nil, fmt.Errorf("unsupported variable type: %v", t)
	}
}

// fillValue returns the _FillValue or missing_value attribute as float64.
func fillValue(v netcdf.Var) (float64, bool) {
	for _, name := range []string{"_FillValue", "missing_value"} {
		a := v.Attr(name)
		n, err := a.Len()
		if err != nil || n == 0 {
			continue
		}
		buf64 := make([]float64, 1)
		if err := a.ReadFloat64s(buf64); err == nil {
			return buf64[0], true
		}
		buf32 := make([]float32, 1)
		if err := a.ReadFloat32s(buf32); err == nil {
			return float64(buf32[0]), true
		}
		bufi := make([]int32, 1)
		if err := a.ReadInt32s(bufi); err == nil {
			return float64(bufi[0]), true
		}
		bufs := make([]int16, 1)
		if err := a.ReadInt16s(bufs); err == nil {
			return float64(bufs[0]), true
		}
	}
	return 0, false
}

// applyPacking unpacks CF packed data in place: value*scale_factor+add_offset.
// NaN cells stay NaN.
func applyPacking(v netcdf.Var, data []float64) {
	scale, hasScale := numericAttr(v, "scale_factor")
	offset, hasOffset := numericAttr(v, "add_offset")
	if !hasScale && !hasOffset {
		return
	}
	if !hasScale {
		scale = 1
	}
	for i, val := range data {
		if math.IsNaN(val) {
			continue
		}
		data[i] = val*scale + offset
	}
}

func numericAttr(v netcdf.Var, name string) (float64, bool) {
	a := v.Attr(name)
	n, err := a.Len()
	if err != nil || n == 0 {
		return 0, false
	}
	buf64 := make([]float64, 1)
	if err := a.ReadFloat64s(buf64); err == nil {
		return buf64[0], true
	}
	buf32 := make([]float32, 1)
	if err := a.ReadFloat32s(buf32); err == nil {
		return float64(buf32[0]), true
	}
	bufi := make([]int32, 1)
	if err := a.ReadInt32s(bufi); err == nil {
		return float64(bufi[0]), true
	}
	return 0, false
}

func widenFloat32(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

func widenInt32(in []int32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

func widenInt16(in []int16) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
