package domain

import "fmt"

// SlicePlan describes how a variable of rank N is carved down to a 2-D
// plane: every dimension is either free (mapped to the X or Y plot axis)
// or fixed to a concrete index, and at most one fixed dimension is the
// step ("navigation") axis whose index can be moved without rebuilding
// the plan.
//
// Index entries for the X and Y dimensions are ignored when slicing; they
// become "take all".
type SlicePlan struct {
	IndexMap map[string]int
	XDim     string
	YDim     string
	NavDim   string // empty when no step axis exists
}

// NewSlicePlan validates the user's dimension selection against the
// variable and returns a plan. The index map is copied; callers keep
// ownership of their argument.
func NewSlicePlan(v Variable, indexMap map[string]int, xDim, yDim, navDim string) (SlicePlan, error) {
	if xDim == yDim {
		return SlicePlan{}, ErrInvalidDimensionChoice
	}
	if !v.HasDim(xDim) {
		return SlicePlan{}, fmt.Errorf("variable %s has no dimension %q", v.Name, xDim)
	}
	if !v.HasDim(yDim) {
		return SlicePlan{}, fmt.Errorf("variable %s has no dimension %q", v.Name, yDim)
	}
	if navDim != "" {
		if navDim == xDim || navDim == yDim {
			return SlicePlan{}, fmt.Errorf("navigation dimension %q is already a plot axis", navDim)
		}
		if !v.HasDim(navDim) {
			return SlicePlan{}, fmt.Errorf("variable %s has no dimension %q", v.Name, navDim)
		}
	}

	m := make(map[string]int, len(v.Dims))
	for i, d := range v.Dims {
		if d == xDim || d == yDim {
			continue
		}
		idx, ok := indexMap[d]
		if !ok {
			return SlicePlan{}, fmt.Errorf("no index selected for dimension %q", d)
		}
		if idx < 0 || idx >= v.Shape[i] {
			return SlicePlan{}, fmt.Errorf("index %d out of range [0, %d) for dimension %q", idx, v.Shape[i], d)
		}
		m[d] = idx
	}

	return SlicePlan{IndexMap: m, XDim: xDim, YDim: yDim, NavDim: navDim}, nil
}

// NavCandidates returns the dimensions that may serve as the step axis
// for the given X/Y choice, in the variable's dimension order. It must be
// recomputed whenever the axis choice changes.
func NavCandidates(v Variable, xDim, yDim string) []string {
	out := make([]string, 0, len(v.Dims))
	for _, d := range v.Dims {
		if d != xDim && d != yDim {
			out = append(out, d)
		}
	}
	return out
}

// DefaultAxes suggests X and Y dimensions for the selection dialog: the
// first dimension name-matching a longitude name and the first matching a
// latitude name. Either result may be empty when nothing matches.
func DefaultAxes(v Variable) (xDim, yDim string) {
	xDim = firstNameMatch(v.Dims, lonNames)
	yDim = firstNameMatch(v.Dims, latNames)
	return xDim, yDim
}
