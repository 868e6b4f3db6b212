// Package dataset provides read-only access to gridded NetCDF files:
// metadata enumeration, 1-D coordinate reads and hyperslab plane reads.
// It is the only package that talks to the NetCDF library.
package dataset

import (
	"fmt"
	"strings"

	"github.com/fhs/go-netcdf/netcdf"

	"go.geoview.io/geoview/internal/domain"
)

// Dimension is a named axis with a fixed size for the open file.
type Dimension struct {
	Name string
	Len  int
}

// Dataset is one open NetCDF file. It is exclusively owned by the session
// for its lifetime; Open and Close are paired.
type Dataset struct {
	path     string
	nc       netcdf.Dataset
	attrs    []domain.Attr
	dims     []Dimension
	vars     []domain.Variable
	varIndex map[string]int
}

// Open opens a NetCDF file read-only and enumerates its structure.
func Open(path string) (*Dataset, error) {
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("open NetCDF file %s: %w", path, err)
	}

	d := &Dataset{path: path, nc: nc, varIndex: make(map[string]int)}
	if err := d.enumerate(); err != nil {
		_ = nc.Close()
		return nil, fmt.Errorf("read NetCDF structure of %s: %w", path, err)
	}
	return d, nil
}

// Close releases the file handle.
func (d *Dataset) Close() error {
	return d.nc.Close()
}

// Path returns the file path the dataset was opened from.
func (d *Dataset) Path() string { return d.path }

// GlobalAttrs returns the file's global attributes in file order.
func (d *Dataset) GlobalAttrs() []domain.Attr { return d.attrs }

// Dimensions returns every dimension used by a variable, ordered by first
// appearance. The NetCDF API exposes dimensions per variable, so the file
// set is reconstructed from them.
func (d *Dataset) Dimensions() []Dimension { return d.dims }

// Variables returns every variable in file order.
func (d *Dataset) Variables() []domain.Variable { return d.vars }

// Variable looks a variable up by name.
func (d *Dataset) Variable(name string) (domain.Variable, bool) {
	i, ok := d.varIndex[name]
	if !ok {
		return domain.Variable{}, false
	}
	return d.vars[i], true
}

// PlottableVariables returns the variables of rank >= 2, the ones the
// variable list offers for plotting.
func (d *Dataset) PlottableVariables() []domain.Variable {
	var out []domain.Variable
	for _, v := range d.vars {
		if v.Rank() >= 2 {
			out = append(out, v)
		}
	}
	return out
}

func (d *Dataset) enumerate() error {
	nattrs, err := d.nc.NAttrs()
	if err != nil {
		return fmt.Errorf("count global attributes: %w", err)
	}
	for i := 0; i < nattrs; i++ {
		a, err := d.nc.AttrN(i)
		if err != nil {
			return fmt.Errorf("global attribute %d: %w", i, err)
		}
		d.attrs = append(d.attrs, domain.Attr{Key: a.Name(), Value: attrValue(a)})
	}

	nvars, err := d.nc.NVars()
	if err != nil {
		return fmt.Errorf("count variables: %w", err)
	}
	seenDims := make(map[string]bool)
	for i := 0; i < nvars; i++ {
		nv := d.nc.VarN(i)
		name, err := nv.Name()
		if err != nil {
			return fmt.Errorf("variable %d name: %w", i, err)
		}

		dims, err := nv.Dims()
		if err != nil {
			return fmt.Errorf("variable %s dimensions: %w", name, err)
		}
		v := domain.Variable{Name: name}
		for _, dim := range dims {
			dname, err := dim.Name()
			if err != nil {
				return fmt.Errorf("variable %s dimension name: %w", name, err)
			}
			dlen, err := dim.Len()
			if err != nil {
				return fmt.Errorf("dimension %s length: %w", dname, err)
			}
			v.Dims = append(v.Dims, dname)
			v.Shape = append(v.Shape, int(dlen))
			if !seenDims[dname] {
				seenDims[dname] = true
				d.dims = append(d.dims, Dimension{Name: dname, Len: int(dlen)})
			}
		}

		if t, err := nv.Type(); err == nil {
			v.Type = typeName(t)
		}

		na, err := nv.NAttrs()
		if err != nil {
			return fmt.Errorf("variable %s attribute count: %w", name, err)
		}
		for j := 0; j < na; j++ {
			a, err := nv.AttrN(j)
			if err != nil {
				return fmt.Errorf("variable %s attribute %d: %w", name, j, err)
			}
			v.Attrs = append(v.Attrs, domain.Attr{Key: a.Name(), Value: attrValue(a)})
		}

		d.varIndex[name] = len(d.vars)
		d.vars = append(d.vars, v)
	}
	return nil
}

// MetadataText builds the structural summary shown in the metadata pane.
func (d *Dataset) MetadataText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\n\n", d.path)

	b.WriteString("Global attributes:\n")
	if len(d.attrs) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, a := range d.attrs {
		fmt.Fprintf(&b, "  %s: %s\n", a.Key, a.Value)
	}

	b.WriteString("\nDimensions:\n")
	for _, dim := range d.dims {
		fmt.Fprintf(&b, "  %s: size = %d\n", dim.Name, dim.Len)
	}

	b.WriteString("\nVariables:\n")
	for _, v := range d.vars {
		fmt.Fprintf(&b, "  %s: dims=(%s), shape=%v, type=%s\n",
			v.Name, strings.Join(v.Dims, ", "), v.Shape, v.Type)
		for _, a := range v.Attrs {
			fmt.Fprintf(&b, "    %s: %s\n", a.Key, a.Value)
		}
	}
	return b.String()
}

func typeName(t netcdf.Type) string {
	switch t {
	case netcdf.DOUBLE:
		return "double"
	case netcdf.FLOAT:
		return "float"
	case netcdf.INT:
		return "int"
	case netcdf.SHORT:
		return "short"
	case netcdf.BYTE:
		return "byte"
	case netcdf.UBYTE:
		return "ubyte"
	case netcdf.CHAR:
		return "char"
	case netcdf.INT64:
		return "int64"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// attrValue renders an attribute as display text. Character attributes
// become strings; numeric attributes are printed as their values.
func attrValue(a netcdf.Attr) string {
	t, err := a.Type()
	if err != nil {
		return ""
	}
	n, err := a.Len()
	if err != nil {
		return ""
	}
	switch t {
	case netcdf.CHAR:
		buf := make([]byte, n)
		if err := a.ReadChars(buf); err != nil {
			return ""
		}
		return strings.TrimRight(string(buf), "\x00")
	case netcdf.DOUBLE:
		buf := make([]float64, n)
		if err := a.ReadFloat64s(buf); err != nil {
			return ""
		}
		return joinFloats(buf)
	case netcdf.FLOAT:
		buf := make([]float32, n)
		if err := a.ReadFloat32s(buf); err != nil {
			return ""
		}
		f := make([]float64, len(buf))
		for i, v := range buf {
			f[i] = float64(v)
		}
		return joinFloats(f)
	case netcdf.INT:
		buf := make([]int32, n)
		if err := a.ReadInt32s(buf); err != nil {
			return ""
		}
		return joinInts(buf)
	case netcdf.SHORT:
		buf := make([]int16, n)
		if err := a.ReadInt16s(buf); err != nil {
			return ""
		}
		parts := make([]string, len(buf))
		for i, v := range buf {
			parts[i] = fmt.Sprintf("%d", v)
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("(%s, %d values)", typeName(t), n)
	}
}

func joinFloats(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return strings.Join(parts, ", ")
}

func joinInts(vals []int32) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ", ")
}
