// Package usecase coordinates the viewer session: one open file, the
// slice navigator, rendering and the recent-file history.
package usecase

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"go.geoview.io/geoview/internal/adapter/dataset"
	"go.geoview.io/geoview/internal/adapter/feature"
	"go.geoview.io/geoview/internal/adapter/history"
	"go.geoview.io/geoview/internal/adapter/render"
	"go.geoview.io/geoview/internal/domain"
)

// ErrUnsupportedType is returned for files that are neither NetCDF nor
// shapefiles.
var ErrUnsupportedType = errors.New("unsupported file type")

// ErrNothingOpen is returned when an operation needs an open file.
var ErrNothingOpen = errors.New("no file is open")

// ErrNothingPlotted is returned when an operation needs a live frame.
var ErrNothingPlotted = errors.New("nothing is plotted")

// Kind identifies what the session currently has open.
type Kind string

const (
	KindNone    Kind = "none"
	KindGrid    Kind = "grid"
	KindFeature Kind = "feature"
)

// FrameState is the frame metadata the UI needs; pixels are fetched
// separately. The extent lets the UI map cursor positions back to
// geographic coordinates.
type FrameState struct {
	Variable    string  `json:"variable"`
	Title       string  `json:"title"`
	NavLabel    string  `json:"nav_label,omitempty"`
	PrevEnabled bool    `json:"prev_enabled"`
	NextEnabled bool    `json:"next_enabled"`
	West        float64 `json:"west"`
	East        float64 `json:"east"`
	South       float64 `json:"south"`
	North       float64 `json:"north"`
}

// DimInfo describes one dimension offered in the slice dialog.
type DimInfo struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// PlanDialog carries everything the slice dialog needs for a variable of
// rank three or more: the dimensions to choose from, the suggested plot
// axes and the dimensions eligible as the step axis.
type PlanDialog struct {
	Variable      string    `json:"variable"`
	Dims          []DimInfo `json:"dims"`
	DefaultX      string    `json:"default_x"`
	DefaultY      string    `json:"default_y"`
	NavCandidates []string  `json:"nav_candidates"`
}

// SelectResult is the outcome of choosing a variable: either a rendered
// frame (rank 2) or a dialog to fill in (rank 3+).
type SelectResult struct {
	Frame  *FrameState `json:"frame,omitempty"`
	Dialog *PlanDialog `json:"dialog,omitempty"`
}

// Session is the single viewer session. All methods are safe for
// concurrent use; the HTTP layer calls them from multiple handlers.
type Session struct {
	mu       sync.Mutex
	renderer *render.Renderer
	hist     *history.Store

	kind  Kind
	ds    *dataset.Dataset
	fc    *feature.Collection
	nav   *domain.Navigator
	frame *domain.Frame
}

// NewSession creates a session with the given renderer and history store.
func NewSession(r *render.Renderer, hist *history.Store) *Session {
	return &Session{renderer: r, hist: hist, kind: KindNone}
}

// OpenFile opens a NetCDF or shapefile path, replacing whatever was open
// before. The path is recorded in the history only after a successful
// open.
func (s *Session) OpenFile(path string) (Kind, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".nc":
		ds, err := dataset.Open(path)
		if err != nil {
			return KindNone, err
		}
		s.closeCurrent()
		s.ds = ds
		s.nav = domain.NewNavigator(ds)
		s.kind = KindGrid
	case ".shp":
		fc, err := feature.Open(path)
		if err != nil {
			return KindNone, err
		}
		s.closeCurrent()
		s.fc = fc
		s.kind = KindFeature
	default:
		return KindNone, fmt.Errorf("%w: %s", ErrUnsupportedType, path)
	}

	s.hist.Add(path)
	log.WithFields(log.Fields{"path": path, "kind": s.kind}).Info("opened file")
	return s.kind, nil
}

// Kind reports what is currently open.
func (s *Session) Kind() Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kind
}

// MetadataText returns the structural summary of the open file.
func (s *Session) MetadataText() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.kind {
	case KindGrid:
		return s.ds.MetadataText(), nil
	case KindFeature:
		return s.fc.InfoText(), nil
	default:
		return "", ErrNothingOpen
	}
}

// Variables lists the plottable variables of the open dataset.
func (s *Session) Variables() ([]domain.Variable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kind != KindGrid {
		return nil, ErrNothingOpen
	}
	return s.ds.PlottableVariables(), nil
}

// SelectVariable starts plotting the named variable. Rank-2 variables
// render immediately; higher ranks return the slice dialog contents.
func (s *Session) SelectVariable(name string) (*SelectResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kind != KindGrid {
		return nil, ErrNothingOpen
	}
	v, ok := s.ds.Variable(name)
	if !ok {
		return nil, fmt.Errorf("no such variable %q", name)
	}
	if v.Rank() < 2 {
		return nil, fmt.Errorf("variable %s has rank %d; only variables of rank 2 or more can be plotted", name, v.Rank())
	}

	if v.Rank() == 2 {
		f, err := s.nav.Apply(domain.Command{Kind: domain.CmdActivate, Variable: name})
		if err != nil {
			s.frame = nil
			return nil, err
		}
		s.frame = f
		return &SelectResult{Frame: frameState(f)}, nil
	}

	xDim, yDim := domain.DefaultAxes(v)
	dlg := &PlanDialog{
		Variable:      name,
		DefaultX:      xDim,
		DefaultY:      yDim,
		NavCandidates: domain.NavCandidates(v, xDim, yDim),
	}
	for i, d := range v.Dims {
		dlg.Dims = append(dlg.Dims, DimInfo{Name: d, Size: v.Shape[i]})
	}
	return &SelectResult{Dialog: dlg}, nil
}

// ConfirmPlan applies a filled-in slice dialog and renders the first
// frame.
func (s *Session) ConfirmPlan(variable string, indexMap map[string]int, xDim, yDim, navDim string) (*FrameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kind != KindGrid {
		return nil, ErrNothingOpen
	}
	v, ok := s.ds.Variable(variable)
	if !ok {
		return nil, fmt.Errorf("no such variable %q", variable)
	}
	plan, err := domain.NewSlicePlan(v, indexMap, xDim, yDim, navDim)
	if err != nil {
		return nil, err
	}
	f, err := s.nav.Apply(domain.Command{Kind: domain.CmdActivate, Variable: variable, Plan: &plan})
	if err != nil {
		s.frame = nil
		return nil, err
	}
	s.frame = f
	return frameState(f), nil
}

// Step moves the step axis by direction (+1 or -1) and renders.
func (s *Session) Step(direction int) (*FrameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kind != KindGrid {
		return nil, ErrNothingOpen
	}
	f, err := s.nav.Apply(domain.Command{Kind: domain.CmdStep, Direction: direction})
	if err != nil {
		s.frame = nil
		return nil, err
	}
	if f == nil {
		// No step axis; the current frame stands.
		if s.frame == nil {
			return nil, ErrNothingPlotted
		}
		return frameState(s.frame), nil
	}
	s.frame = f
	return frameState(f), nil
}

// Home clears the plot but keeps the file open, returning the UI to the
// metadata view.
func (s *Session) Home() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nav != nil {
		s.nav.Apply(domain.Command{Kind: domain.CmdClear})
	}
	s.frame = nil
}

// History returns the recently opened paths, most recent first.
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.Entries()
}

// Probe reports the data value at a geographic position on the current
// frame.
func (s *Session) Probe(lon, lat float64) (domain.ProbeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frame == nil {
		return domain.ProbeResult{}, ErrNothingPlotted
	}
	return s.frame.Probe(lon, lat), nil
}

// FramePNG writes the current frame's map image.
func (s *Session) FramePNG(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.kind == KindFeature:
		return s.renderer.FeaturePNG(s.fc, w)
	case s.frame != nil:
		return s.renderer.GridPNG(s.frame, w)
	default:
		return ErrNothingPlotted
	}
}

// LegendPNG writes the current frame's colorbar image.
func (s *Session) LegendPNG(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frame == nil {
		return ErrNothingPlotted
	}
	return s.renderer.LegendPNG(s.frame, w)
}

// Close releases the open file, if any.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeCurrent()
}

func (s *Session) closeCurrent() error {
	var err error
	if s.ds != nil {
		err = s.ds.Close()
		s.ds = nil
	}
	s.fc = nil
	s.nav = nil
	s.frame = nil
	s.kind = KindNone
	return err
}

func frameState(f *domain.Frame) *FrameState {
	return &FrameState{
		Variable:    f.Variable,
		Title:       f.Title,
		NavLabel:    f.NavLabel,
		PrevEnabled: f.PrevEnabled,
		NextEnabled: f.NextEnabled,
		West:        floats.Min(f.X),
		East:        floats.Max(f.X),
		South:       floats.Min(f.Y),
		North:       floats.Max(f.Y),
	}
}
