package domain

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testVariable() Variable {
	return Variable{
		Name:  "t2m",
		Dims:  []string{"time", "level", "lat", "lon"},
		Shape: []int{12, 3, 180, 360},
	}
}

func TestNewSlicePlan(t *testing.T) {
	v := testVariable()

	tests := []struct {
		name     string
		indexMap map[string]int
		x, y     string
		nav      string
		wantErr  bool
	}{
		{
			name:     "valid with step axis",
			indexMap: map[string]int{"time": 0, "level": 2},
			x:        "lon", y: "lat", nav: "time",
		},
		{
			name:     "valid without step axis",
			indexMap: map[string]int{"time": 5, "level": 0},
			x:        "lon", y: "lat",
		},
		{
			name:     "same dimension for both axes",
			indexMap: map[string]int{"time": 0, "level": 0},
			x:        "lon", y: "lon",
			wantErr: true,
		},
		{
			name:     "unknown x dimension",
			indexMap: map[string]int{"time": 0, "level": 0},
			x:        "depth", y: "lat",
			wantErr: true,
		},
		{
			name:     "step axis is a plot axis",
			indexMap: map[string]int{"time": 0, "level": 0},
			x:        "lon", y: "lat", nav: "lat",
			wantErr: true,
		},
		{
			name:     "missing index for fixed dimension",
			indexMap: map[string]int{"time": 0},
			x:        "lon", y: "lat",
			wantErr: true,
		},
		{
			name:     "index out of range",
			indexMap: map[string]int{"time": 12, "level": 0},
			x:        "lon", y: "lat",
			wantErr: true,
		},
		{
			name:     "negative index",
			indexMap: map[string]int{"time": -1, "level": 0},
			x:        "lon", y: "lat",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSlicePlan(v, tt.indexMap, tt.x, tt.y, tt.nav)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewSlicePlan error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewSlicePlan_SameAxisError(t *testing.T) {
	v := testVariable()
	_, err := NewSlicePlan(v, map[string]int{"time": 0, "level": 0}, "lat", "lat", "")
	if !errors.Is(err, ErrInvalidDimensionChoice) {
		t.Errorf("expected ErrInvalidDimensionChoice, got %v", err)
	}
}

func TestNewSlicePlan_CopiesIndexMap(t *testing.T) {
	v := testVariable()
	m := map[string]int{"time": 1, "level": 2}
	plan, err := NewSlicePlan(v, m, "lon", "lat", "time")
	if err != nil {
		t.Fatalf("NewSlicePlan: %v", err)
	}
	m["time"] = 9
	if plan.IndexMap["time"] != 1 {
		t.Errorf("plan index map aliases the caller's map")
	}
}

func TestNavCandidates(t *testing.T) {
	v := testVariable()

	got := NavCandidates(v, "lon", "lat")
	want := []string{"time", "level"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NavCandidates mismatch (-want +got):\n%s", diff)
	}

	// Changing the axis choice changes the candidates.
	got = NavCandidates(v, "time", "level")
	want = []string{"lat", "lon"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NavCandidates after axis change (-want +got):\n%s", diff)
	}
}
