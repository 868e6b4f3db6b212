package domain

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/ctessum/sparse"
	"github.com/google/go-cmp/cmp"
)

// fakeSource is an in-memory DataSource for exercising the navigator
// without touching the NetCDF layer.
type fakeSource struct {
	vars   []Variable
	coords map[string][]float64
	data   map[string]*sparse.DenseArray
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		coords: make(map[string][]float64),
		data:   make(map[string]*sparse.DenseArray),
	}
}

func (s *fakeSource) addCoord(name string, values []float64) {
	s.coords[name] = values
	s.vars = append(s.vars, Variable{
		Name: name, Dims: []string{name}, Shape: []int{len(values)}, Type: "double",
	})
}

func (s *fakeSource) addVar(name string, dims []string, arr *sparse.DenseArray) {
	s.vars = append(s.vars, Variable{
		Name: name, Dims: dims, Shape: arr.Shape, Type: "double",
	})
	s.data[name] = arr
}

func (s *fakeSource) Variables() []Variable { return s.vars }

func (s *fakeSource) Variable(name string) (Variable, bool) {
	for _, v := range s.vars {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

func (s *fakeSource) Coord(name string) ([]float64, error) {
	c, ok := s.coords[name]
	if !ok {
		return nil, fmt.Errorf("no coordinate %q", name)
	}
	return c, nil
}

func (s *fakeSource) ReadPlane(name string, start, count []int) (*sparse.DenseArray, error) {
	arr, ok := s.data[name]
	if !ok {
		return nil, fmt.Errorf("no variable %q", name)
	}
	out := sparse.ZerosDense(count...)
	idx := make([]int, len(start))
	var walk func(depth, flat int)
	flat := 0
	walk = func(depth, _ int) {
		if depth == len(start) {
			out.Elements[flat] = arr.Get(idx...)
			flat++
			return
		}
		for i := start[depth]; i < start[depth]+count[depth]; i++ {
			idx[depth] = i
			walk(depth+1, 0)
		}
	}
	walk(0, 0)
	return out, nil
}

// gridSource builds a source with t2m(time=3, lat=4, lon=5) where each
// cell value encodes its indices as 100*t + 10*i + j.
func gridSource() *fakeSource {
	src := newFakeSource()
	src.addCoord("lat", []float64{10, 20, 30, 40})
	src.addCoord("lon", []float64{0, 1, 2, 3, 4})
	src.addCoord("time", []float64{0, 1, 2})

	arr := sparse.ZerosDense(3, 4, 5)
	for t := 0; t < 3; t++ {
		for i := 0; i < 4; i++ {
			for j := 0; j < 5; j++ {
				arr.Set(float64(100*t+10*i+j), t, i, j)
			}
		}
	}
	src.addVar("t2m", []string{"time", "lat", "lon"}, arr)
	return src
}

func mustPlan(t *testing.T, src *fakeSource, variable string, indexMap map[string]int, x, y, nav string) SlicePlan {
	t.Helper()
	v, ok := src.Variable(variable)
	if !ok {
		t.Fatalf("no variable %q in fake source", variable)
	}
	plan, err := NewSlicePlan(v, indexMap, x, y, nav)
	if err != nil {
		t.Fatalf("NewSlicePlan: %v", err)
	}
	return plan
}

func TestNavigator_ActivateStandardOrientation(t *testing.T) {
	src := gridSource()
	nav := NewNavigator(src)

	plan := mustPlan(t, src, "t2m", map[string]int{"time": 1}, "lon", "lat", "time")
	f, err := nav.Activate("t2m", plan)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}

	if diff := cmp.Diff([]int{4, 5}, f.Data.Shape); diff != "" {
		t.Errorf("frame shape mismatch (-want +got):\n%s", diff)
	}
	// Rows follow lat, columns follow lon, time fixed at 1.
	for i := 0; i < 4; i++ {
		for j := 0; j < 5; j++ {
			want := float64(100 + 10*i + j)
			if got := f.Data.Get(i, j); got != want {
				t.Fatalf("cell (%d,%d) = %v, want %v", i, j, got, want)
			}
		}
	}

	if f.Title != "t2m" {
		t.Errorf("title = %q, want %q (step axis excluded from title)", f.Title, "t2m")
	}
	if f.NavLabel != "time: 2 / 3" {
		t.Errorf("nav label = %q, want %q", f.NavLabel, "time: 2 / 3")
	}
	if !f.PrevEnabled || !f.NextEnabled {
		t.Errorf("prev/next = (%v, %v), want both enabled at the middle index", f.PrevEnabled, f.NextEnabled)
	}
}

func TestNavigator_EnabledFlagsAtBounds(t *testing.T) {
	tests := []struct {
		timeIdx  int
		label    string
		wantPrev bool
		wantNext bool
	}{
		{0, "time: 1 / 3", false, true},
		{1, "time: 2 / 3", true, true},
		{2, "time: 3 / 3", true, false},
	}

	src := gridSource()
	for _, tt := range tests {
		nav := NewNavigator(src)
		plan := mustPlan(t, src, "t2m", map[string]int{"time": tt.timeIdx}, "lon", "lat", "time")
		f, err := nav.Activate("t2m", plan)
		if err != nil {
			t.Fatalf("Activate at index %d: %v", tt.timeIdx, err)
		}
		if f.NavLabel != tt.label {
			t.Errorf("index %d: label = %q, want %q", tt.timeIdx, f.NavLabel, tt.label)
		}
		if f.PrevEnabled != tt.wantPrev || f.NextEnabled != tt.wantNext {
			t.Errorf("index %d: prev/next = (%v, %v), want (%v, %v)",
				tt.timeIdx, f.PrevEnabled, f.NextEnabled, tt.wantPrev, tt.wantNext)
		}
	}
}

func TestNavigator_StepRoundTrip(t *testing.T) {
	src := gridSource()
	nav := NewNavigator(src)

	plan := mustPlan(t, src, "t2m", map[string]int{"time": 1}, "lon", "lat", "time")
	first, err := nav.Activate("t2m", plan)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}

	if _, err := nav.Step(1); err != nil {
		t.Fatalf("Step(+1): %v", err)
	}
	back, err := nav.Step(-1)
	if err != nil {
		t.Fatalf("Step(-1): %v", err)
	}

	if diff := cmp.Diff(first.Data.Elements, back.Data.Elements); diff != "" {
		t.Errorf("round-trip data mismatch (-first +back):\n%s", diff)
	}
	if first.NavLabel != back.NavLabel {
		t.Errorf("round-trip label mismatch: %q vs %q", first.NavLabel, back.NavLabel)
	}
}

func TestNavigator_StepPastEndFailsAndClears(t *testing.T) {
	src := gridSource()
	nav := NewNavigator(src)

	plan := mustPlan(t, src, "t2m", map[string]int{"time": 2}, "lon", "lat", "time")
	if _, err := nav.Activate("t2m", plan); err != nil {
		t.Fatalf("Activate: %v", err)
	}

	if _, err := nav.Step(1); err == nil {
		t.Fatal("Step past the last index should fail")
	}
	if nav.Active() {
		t.Error("navigator should be empty after a failed render")
	}
	if _, err := nav.Step(1); err == nil {
		t.Error("stepping an empty navigator should fail")
	}
}

func TestNavigator_StepWithoutNavDim(t *testing.T) {
	src := gridSource()
	nav := NewNavigator(src)

	plan := mustPlan(t, src, "t2m", map[string]int{"time": 0}, "lon", "lat", "")
	if _, err := nav.Activate("t2m", plan); err != nil {
		t.Fatalf("Activate: %v", err)
	}

	f, err := nav.Step(1)
	if err != nil {
		t.Fatalf("Step without a step axis: %v", err)
	}
	if f != nil {
		t.Error("Step without a step axis should be a no-op")
	}
	if !nav.Active() {
		t.Error("no-op step should leave the navigator active")
	}
}

func TestNavigator_PlanIndicesNotMutatedByAxes(t *testing.T) {
	src := gridSource()
	nav := NewNavigator(src)

	indexMap := map[string]int{"time": 1}
	plan := mustPlan(t, src, "t2m", indexMap, "lon", "lat", "time")
	if _, err := nav.Activate("t2m", plan); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if _, err := nav.Step(1); err != nil {
		t.Fatalf("Step: %v", err)
	}

	// The caller's map must be untouched; the plan copies it.
	if indexMap["time"] != 1 {
		t.Errorf("caller's index map mutated: time = %d, want 1", indexMap["time"])
	}
	p, ok := nav.Plan()
	if !ok {
		t.Fatal("expected a live plan")
	}
	if p.IndexMap["time"] != 2 {
		t.Errorf("live plan time index = %d, want 2", p.IndexMap["time"])
	}
}

func TestNavigator_ActivateRank2Transpose(t *testing.T) {
	// Data stored (lon, lat): the frame must come back transposed so
	// rows follow latitude.
	src := newFakeSource()
	src.addCoord("lat", []float64{10, 20, 30, 40})
	src.addCoord("lon", []float64{0, 1, 2, 3, 4})

	arr := sparse.ZerosDense(5, 4) // (lon, lat)
	for j := 0; j < 5; j++ {
		for i := 0; i < 4; i++ {
			arr.Set(float64(10*i+j), j, i)
		}
	}
	src.addVar("elev", []string{"lon", "lat"}, arr)

	nav := NewNavigator(src)
	f, err := nav.ActivateRank2("elev")
	if err != nil {
		t.Fatalf("ActivateRank2: %v", err)
	}

	if diff := cmp.Diff([]int{4, 5}, f.Data.Shape); diff != "" {
		t.Fatalf("frame shape mismatch (-want +got):\n%s", diff)
	}
	for i := 0; i < 4; i++ {
		for j := 0; j < 5; j++ {
			want := float64(10*i + j)
			if got := f.Data.Get(i, j); got != want {
				t.Fatalf("cell (%d,%d) = %v, want %v", i, j, got, want)
			}
		}
	}
}

func TestNavigator_ActivateRank2FallbackCoords(t *testing.T) {
	// Dimension names carry no lon/lat hint, so the coordinates resolve
	// through the dataset-wide variable scan. The frame must plot against
	// those arrays instead of looking coordinates up by dimension name.
	src := newFakeSource()
	src.addCoord("latitude", []float64{10, 20, 30, 40})
	src.addCoord("longitude", []float64{0, 1, 2, 3, 4})

	arr := sparse.ZerosDense(4, 5) // (nj, ni) = (row, col)
	for i := 0; i < 4; i++ {
		for j := 0; j < 5; j++ {
			arr.Set(float64(10*i+j), i, j)
		}
	}
	src.addVar("zeta", []string{"nj", "ni"}, arr)

	nav := NewNavigator(src)
	f, err := nav.ActivateRank2("zeta")
	if err != nil {
		t.Fatalf("ActivateRank2: %v", err)
	}

	if diff := cmp.Diff([]int{4, 5}, f.Data.Shape); diff != "" {
		t.Fatalf("frame shape mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{0, 1, 2, 3, 4}, f.X); diff != "" {
		t.Errorf("frame X axis mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{10, 20, 30, 40}, f.Y); diff != "" {
		t.Errorf("frame Y axis mismatch (-want +got):\n%s", diff)
	}
	if got := f.Data.Get(2, 3); got != 23 {
		t.Errorf("cell (2,3) = %v, want 23", got)
	}

	// A later selection must not inherit the fallback arrays.
	nav.Clear()
	if nav.coords != nil {
		t.Error("Clear must drop the resolver-supplied coordinates")
	}
}

func TestNavigator_ActivateRank2FallbackTranspose(t *testing.T) {
	// Fallback coordinates with the data stored column-major relative to
	// them: the orientation check must transpose, same as the dim-named
	// path.
	src := newFakeSource()
	src.addCoord("latitude", []float64{10, 20, 30, 40})
	src.addCoord("longitude", []float64{0, 1, 2, 3, 4})

	arr := sparse.ZerosDense(5, 4) // (ni, nj) = (x, y)
	for j := 0; j < 5; j++ {
		for i := 0; i < 4; i++ {
			arr.Set(float64(10*i+j), j, i)
		}
	}
	src.addVar("zeta", []string{"ni", "nj"}, arr)

	nav := NewNavigator(src)
	f, err := nav.ActivateRank2("zeta")
	if err != nil {
		t.Fatalf("ActivateRank2: %v", err)
	}
	if diff := cmp.Diff([]int{4, 5}, f.Data.Shape); diff != "" {
		t.Fatalf("frame shape mismatch (-want +got):\n%s", diff)
	}
	if got := f.Data.Get(1, 2); got != 12 {
		t.Errorf("cell (1,2) = %v, want 12", got)
	}
}

func TestNavigator_ActivateRank2WrongRank(t *testing.T) {
	src := gridSource()
	nav := NewNavigator(src)
	if _, err := nav.ActivateRank2("t2m"); err == nil {
		t.Error("ActivateRank2 on a rank-3 variable should fail")
	}
}

func TestNavigator_AxisMismatch(t *testing.T) {
	// Coordinates exist but neither orientation matches the data shape.
	src := newFakeSource()
	src.addCoord("lat", []float64{10, 20, 30})
	src.addCoord("lon", []float64{0, 1, 2, 3, 4, 5})
	src.addVar("v", []string{"lat", "lon"}, sparse.ZerosDense(4, 5))

	nav := NewNavigator(src)
	v, _ := src.Variable("v")
	plan, err := NewSlicePlan(v, nil, "lon", "lat", "")
	if err != nil {
		t.Fatalf("NewSlicePlan: %v", err)
	}

	_, err = nav.Activate("v", plan)
	var rerr *RenderError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected a RenderError, got %v", err)
	}
	if rerr.Reason != AxisMismatch {
		t.Errorf("reason = %v, want AxisMismatch", rerr.Reason)
	}
	if nav.Active() {
		t.Error("navigator should be empty after a failed render")
	}
}

func TestNavigator_MissingCoordinates(t *testing.T) {
	src := newFakeSource()
	src.addVar("v", []string{"lat", "lon"}, sparse.ZerosDense(4, 5))

	nav := NewNavigator(src)
	v, _ := src.Variable("v")
	plan, err := NewSlicePlan(v, nil, "lon", "lat", "")
	if err != nil {
		t.Fatalf("NewSlicePlan: %v", err)
	}

	_, err = nav.Activate("v", plan)
	var rerr *RenderError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected a RenderError, got %v", err)
	}
	if rerr.Reason != MissingCoordinates {
		t.Errorf("reason = %v, want MissingCoordinates", rerr.Reason)
	}
}

func TestFrameProbe(t *testing.T) {
	src := gridSource()
	nav := NewNavigator(src)
	plan := mustPlan(t, src, "t2m", map[string]int{"time": 0}, "lon", "lat", "")
	f, err := nav.Activate("t2m", plan)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}

	p := f.Probe(2.2, 19.0) // nearest lon index 2, nearest lat index 1
	if !p.InBounds || p.Masked {
		t.Fatalf("probe state = %+v, want in bounds and unmasked", p)
	}
	if p.Value != 12 {
		t.Errorf("probe value = %v, want 12", p.Value)
	}

	if p := f.Probe(99, 19); p.InBounds {
		t.Error("probe outside the longitude extent should be out of bounds")
	}

	f.Data.Set(math.NaN(), 1, 2)
	if p := f.Probe(2.2, 19.0); !p.Masked {
		t.Error("probe of a NaN cell should be masked")
	}
}
