// Package domain contains the core slice-navigation model: variables,
// slice plans, the navigator state machine, coordinate resolution and
// rendered frames. It performs no I/O of its own; data access goes
// through the DataSource interface.
package domain

import (
	"fmt"
	"strings"

	"github.com/ctessum/sparse"
)

// Attr is a single metadata attribute. Attributes are kept as an ordered
// list rather than a map so that they display in file order.
type Attr struct {
	Key   string
	Value string
}

// Variable describes a gridded variable: its dimension names in storage
// order, the size of each dimension, the element type and its attributes.
// Variables are read-only for the lifetime of the open dataset.
type Variable struct {
	Name  string
	Dims  []string
	Shape []int
	Type  string
	Attrs []Attr
}

// Rank returns the number of dimensions.
func (v Variable) Rank() int {
	return len(v.Dims)
}

// Attr returns the value of the named attribute, if present.
func (v Variable) Attr(key string) (string, bool) {
	for _, a := range v.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// DimIndex returns the position of the named dimension, or -1.
func (v Variable) DimIndex(name string) int {
	for i, d := range v.Dims {
		if d == name {
			return i
		}
	}
	return -1
}

// HasDim reports whether the variable has the named dimension.
func (v Variable) HasDim(name string) bool {
	return v.DimIndex(name) >= 0
}

// Label returns the display label used in variable lists, e.g.
// "t2m (12, 180, 360)".
func (v Variable) Label() string {
	sizes := make([]string, len(v.Shape))
	for i, s := range v.Shape {
		sizes[i] = fmt.Sprintf("%d", s)
	}
	return fmt.Sprintf("%s (%s)", v.Name, strings.Join(sizes, ", "))
}

// DataSource is the read-only contract the navigator requires from an open
// gridded dataset. Implementations own the underlying file handle; the
// navigator only borrows it per render.
type DataSource interface {
	// Variables lists every variable in the dataset, in file order.
	Variables() []Variable

	// Variable looks a variable up by name.
	Variable(name string) (Variable, bool)

	// Coord reads the named 1-D coordinate variable. It fails if the
	// variable is absent or not one-dimensional.
	Coord(name string) ([]float64, error)

	// ReadPlane reads the hyperslab described by start and count (one
	// entry per dimension, in storage order) from the named variable.
	// The returned array has shape equal to count.
	ReadPlane(name string, start, count []int) (*sparse.DenseArray, error)
}
