package domain

import (
	"fmt"
	"strings"

	"github.com/ctessum/sparse"
)

// Navigator is the slice-navigation state machine. It is either Empty
// (nothing to render) or Active with a confirmed slice plan. All state
// transitions go through Activate, Step and Clear; a failed render always
// returns the navigator to Empty so a later step can never operate on a
// half-updated plan.
type Navigator struct {
	src      DataSource
	variable Variable
	plan     SlicePlan
	coords   *CoordPair // resolver-supplied axes for the rank-2 path
	active   bool
}

// NewNavigator returns an Empty navigator borrowing the given source.
// The navigator never closes the source and must not outlive it.
func NewNavigator(src DataSource) *Navigator {
	return &Navigator{src: src}
}

// Active reports whether a plan is live.
func (n *Navigator) Active() bool { return n.active }

// Plan returns a copy of the live plan.
func (n *Navigator) Plan() (SlicePlan, bool) {
	if !n.active {
		return SlicePlan{}, false
	}
	m := make(map[string]int, len(n.plan.IndexMap))
	for k, v := range n.plan.IndexMap {
		m[k] = v
	}
	p := n.plan
	p.IndexMap = m
	return p, true
}

// Clear drops the plan, returning to Empty.
func (n *Navigator) Clear() {
	n.active = false
	n.plan = SlicePlan{}
	n.variable = Variable{}
	n.coords = nil
}

// Activate installs a plan for the named variable and renders the first
// frame. On any failure the navigator is left Empty.
func (n *Navigator) Activate(varName string, plan SlicePlan) (*Frame, error) {
	n.Clear()
	v, ok := n.src.Variable(varName)
	if !ok {
		return nil, fmt.Errorf("no such variable %q", varName)
	}
	n.variable = v
	n.plan = plan
	n.active = true
	return n.Render()
}

// ActivateRank2 installs a synthetic plan for a rank-2 variable: both
// dimensions are implicitly the plot axes and no step axis exists. The
// coordinate resolver decides which dimension is X and which is Y; if it
// cannot, the selection fails and the navigator stays Empty.
func (n *Navigator) ActivateRank2(varName string) (*Frame, error) {
	n.Clear()
	v, ok := n.src.Variable(varName)
	if !ok {
		return nil, fmt.Errorf("no such variable %q", varName)
	}
	if v.Rank() != 2 {
		return nil, fmt.Errorf("variable %s has rank %d, expected 2", v.Name, v.Rank())
	}

	pair, err := ResolveCoords(v, n.src)
	if err != nil {
		return nil, err
	}
	xDim, yDim := pair.XName, pair.YName
	if !v.HasDim(xDim) || !v.HasDim(yDim) {
		// Coordinates resolved from dataset-wide variable names rather
		// than the variable's own dimensions; the plan's free axes fall
		// back to storage order, (row=Y, col=X).
		yDim, xDim = v.Dims[0], v.Dims[1]
	}
	plan, err := NewSlicePlan(v, nil, xDim, yDim, "")
	if err != nil {
		return nil, err
	}
	n.variable = v
	n.plan = plan
	// The resolver's arrays are the plot axes; render must not re-derive
	// them from the dimension names, which in the fallback case are not
	// coordinate variables at all.
	n.coords = &pair
	n.active = true
	return n.Render()
}

// Step moves the step-axis index by direction (+1 or -1) and re-renders.
// It is a no-op when the plan has no step axis. No clamping happens here;
// bounds are enforced by the prev/next enabled flags emitted with every
// frame, and an out-of-range index fails the render.
func (n *Navigator) Step(direction int) (*Frame, error) {
	if !n.active {
		return nil, fmt.Errorf("nothing is plotted")
	}
	if n.plan.NavDim == "" {
		return nil, nil
	}
	n.plan.IndexMap[n.plan.NavDim] += direction
	return n.Render()
}

// Render derives a fresh frame from the dataset and the live plan.
// On failure the navigator resets to Empty and the error carries a
// tagged reason where one applies.
func (n *Navigator) Render() (*Frame, error) {
	f, err := n.render()
	if err != nil {
		n.Clear()
		return nil, err
	}
	return f, nil
}

func (n *Navigator) render() (*Frame, error) {
	// Build the per-dimension hyperslab: full extent on the free
	// dimensions, a single index everywhere else.
	variable := n.variable
	start := make([]int, variable.Rank())
	count := make([]int, variable.Rank())
	for i, d := range variable.Dims {
		if d == n.plan.XDim || d == n.plan.YDim {
			start[i], count[i] = 0, variable.Shape[i]
			continue
		}
		idx := n.plan.IndexMap[d]
		if idx < 0 || idx >= variable.Shape[i] {
			return nil, fmt.Errorf("dimension %q index %d out of range [0, %d)", d, idx, variable.Shape[i])
		}
		start[i], count[i] = idx, 1
	}

	data, err := n.src.ReadPlane(variable.Name, start, count)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", variable.Name, err)
	}

	plane, err := squeeze(data)
	if err != nil {
		return nil, err
	}

	// The rank-2 path carries the resolver's coordinate arrays; for a
	// confirmed plan the axes are known dimension names and coordinates
	// come from a direct dataset lookup instead.
	var x, y []float64
	if n.coords != nil {
		x, y = n.coords.X, n.coords.Y
	} else {
		if x, err = n.src.Coord(n.plan.XDim); err != nil {
			return nil, renderErrorf(MissingCoordinates, "no coordinate variable for x axis %q", n.plan.XDim)
		}
		if y, err = n.src.Coord(n.plan.YDim); err != nil {
			return nil, renderErrorf(MissingCoordinates, "no coordinate variable for y axis %q", n.plan.YDim)
		}
	}

	// Orientation reconciliation: (row=Y, col=X) is standard; the
	// swapped layout is recovered by a transpose; anything else is a
	// hard error.
	switch {
	case plane.Shape[0] == len(y) && plane.Shape[1] == len(x):
		// Standard orientation.
	case plane.Shape[0] == len(x) && plane.Shape[1] == len(y):
		plane = transpose(plane)
	default:
		return nil, renderErrorf(AxisMismatch,
			"data shape (%d, %d) does not match coordinate lengths (Y=%d, X=%d)",
			plane.Shape[0], plane.Shape[1], len(y), len(x))
	}

	f := &Frame{
		Variable:      variable.Name,
		Data:          plane,
		X:             x,
		Y:             y,
		Title:         frameTitle(variable, n.plan),
		ColorbarLabel: colorbarLabel(variable),
	}

	if nav := n.plan.NavDim; nav != "" {
		pos := variable.DimIndex(nav)
		max := variable.Shape[pos]
		cur := n.plan.IndexMap[nav]
		f.NavDim = nav
		f.NavLabel = fmt.Sprintf("%s: %d / %d", nav, cur+1, max)
		f.PrevEnabled = cur > 0
		f.NextEnabled = cur < max-1
	}

	return f, nil
}

// squeeze removes all size-1 axes. Element order is unchanged because
// dropping unit axes preserves the row-major layout. The result must be
// exactly 2-D.
func squeeze(a *sparse.DenseArray) (*sparse.DenseArray, error) {
	var shape []int
	for _, s := range a.Shape {
		if s > 1 {
			shape = append(shape, s)
		}
	}
	if len(shape) != 2 {
		return nil, renderErrorf(ShapeMismatch,
			"slice reduces to %d axes of length > 1, expected 2 (shape %v)", len(shape), a.Shape)
	}
	out := sparse.ZerosDense(shape...)
	copy(out.Elements, a.Elements)
	return out, nil
}

// transpose swaps the two axes of a 2-D array.
func transpose(a *sparse.DenseArray) *sparse.DenseArray {
	out := sparse.ZerosDense(a.Shape[1], a.Shape[0])
	for i := 0; i < a.Shape[0]; i++ {
		for j := 0; j < a.Shape[1]; j++ {
			out.Set(a.Get(i, j), j, i)
		}
	}
	return out
}

// frameTitle is the variable name plus every fixed dimension index, the
// step axis excluded (it has its own label), e.g. "t2m (level=3)".
func frameTitle(v Variable, p SlicePlan) string {
	var fixed []string
	for _, d := range v.Dims {
		if d == p.XDim || d == p.YDim || d == p.NavDim {
			continue
		}
		fixed = append(fixed, fmt.Sprintf("%s=%d", d, p.IndexMap[d]))
	}
	if len(fixed) == 0 {
		return v.Name
	}
	return fmt.Sprintf("%s (%s)", v.Name, strings.Join(fixed, ", "))
}

// colorbarLabel is "name (units)", with an empty units string when the
// attribute is absent.
func colorbarLabel(v Variable) string {
	units, _ := v.Attr("units")
	return fmt.Sprintf("%s (%s)", v.Name, units)
}
