// Package render turns frames and feature collections into PNG maps.
// Grid frames become pseudo-color rasters with an optional coastline
// overlay and a graticule; the colorbar is served as a separate legend
// image so the two can be laid out independently.
package render

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"sync"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/carto"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/proj"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	vgdraw "gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"go.geoview.io/geoview/internal/adapter/feature"
	"go.geoview.io/geoview/internal/domain"
	"go.geoview.io/geoview/internal/interp"
)

const (
	// legendWidth and legendHeight size the colorbar strip.
	legendWidth  = 6.2 * vg.Inch
	legendHeight = legendWidth * 0.1067
)

var (
	maskColor      = color.NRGBA{R: 235, G: 235, B: 235, A: 255}
	coastColor     = color.NRGBA{R: 40, G: 40, B: 40, A: 255}
	graticuleColor = color.NRGBA{R: 120, G: 120, B: 120, A: 90}
	transparent    = color.NRGBA{}
)

// Renderer draws map images at a fixed raster width. A zero-value
// coastline means grid maps are drawn without an overlay.
type Renderer struct {
	width       int
	coast       []geom.Geom
	noCoastOnce sync.Once
}

// New returns a renderer producing rasters width pixels across.
func New(width int) *Renderer {
	return &Renderer{width: width}
}

// LoadCoastline reads a shapefile of coastlines and reprojects it to
// geographic coordinates for overlay on lon/lat grids.
func (r *Renderer) LoadCoastline(path string) error {
	const longlatProj = "+proj=longlat +datum=WGS84 +no_defs"

	d, err := shp.NewDecoder(path)
	if err != nil {
		return fmt.Errorf("open coastline %s: %w", path, err)
	}
	defer d.Close()

	srcSR, err := d.SR()
	if err != nil {
		return fmt.Errorf("coastline %s spatial reference: %w", path, err)
	}
	longlatSR, err := proj.Parse(longlatProj)
	if err != nil {
		return fmt.Errorf("parse longlat definition: %w", err)
	}
	ct, err := srcSR.NewTransform(longlatSR)
	if err != nil {
		return fmt.Errorf("create coastline transform: %w", err)
	}

	var geoms []geom.Geom
	for {
		g, _, more := d.DecodeRowFields()
		if !more {
			break
		}
		gt, err := g.Transform(ct)
		if err != nil {
			return fmt.Errorf("reproject coastline feature: %w", err)
		}
		geoms = append(geoms, gt)
	}
	if err := d.Error(); err != nil {
		return fmt.Errorf("read coastline %s: %w", path, err)
	}
	r.coast = geoms
	return nil
}

// GridPNG renders a frame as a pseudo-color map. Each output pixel takes
// the color of the nearest grid cell, which handles non-uniform and
// descending coordinate axes without resampling the data.
func (r *Renderer) GridPNG(f *domain.Frame, w io.Writer) error {
	if len(f.X) < 2 || len(f.Y) < 2 {
		return fmt.Errorf("grid must be at least 2x2, got %dx%d", len(f.X), len(f.Y))
	}
	west, east := floats.Min(f.X), floats.Max(f.X)
	south, north := floats.Min(f.Y), floats.Max(f.Y)

	cmap, err := colorMap(f)
	if err != nil {
		return err
	}

	m := carto.NewRasterMap(north, south, east, west, r.width)
	height := m.I.Bounds().Dy()
	width := m.I.Bounds().Dx()

	// Precompute the pixel -> grid cell mapping per axis.
	cols := make([]int, width)
	for i := range cols {
		xc := west + (float64(i)+0.5)*(east-west)/float64(width)
		cols[i] = interp.NearestIndex(f.X, xc)
	}
	rows := make([]int, height)
	for j := range rows {
		// Image row 0 is the north edge.
		yc := north - (float64(j)+0.5)*(north-south)/float64(height)
		rows[j] = interp.NearestIndex(f.Y, yc)
	}

	for j := 0; j < height; j++ {
		for i := 0; i < width; i++ {
			v := f.Data.Get(rows[j], cols[i])
			if math.IsNaN(v) {
				m.I.Set(i, j, maskColor)
			} else {
				m.I.Set(i, j, cmap.GetColor(v))
			}
		}
	}

	if len(r.coast) == 0 {
		r.noCoastOnce.Do(func() {
			log.Info("no coastline shapefile loaded; grid maps are drawn without a coastline overlay")
		})
	}
	coastStyle := vgdraw.LineStyle{Width: 0.2 * vg.Millimeter, Color: coastColor}
	var glyph vgdraw.GlyphStyle
	for _, g := range r.coast {
		if err := m.DrawVector(g, transparent, coastStyle, glyph); err != nil {
			return fmt.Errorf("draw coastline: %w", err)
		}
	}

	if err := drawGraticule(m, west, east, south, north); err != nil {
		return err
	}
	if err := drawTitle(m, f); err != nil {
		return err
	}

	if err := m.WriteTo(w); err != nil {
		return fmt.Errorf("encode grid map: %w", err)
	}
	return nil
}

// LegendPNG renders the frame's colorbar as a standalone strip.
func (r *Renderer) LegendPNG(f *domain.Frame, w io.Writer) error {
	cmap, err := colorMap(f)
	if err != nil {
		return err
	}
	cmap.LegendWidth = legendWidth
	cmap.LegendHeight = legendHeight
	cmap.LineWidth = 0.5
	cmap.FontSize = 8

	c := vgimg.New(legendWidth, legendHeight)
	dc := vgdraw.New(c)
	if err := cmap.Legend(&dc, f.ColorbarLabel); err != nil {
		return fmt.Errorf("draw legend: %w", err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(w); err != nil {
		return fmt.Errorf("encode legend: %w", err)
	}
	return nil
}

// FeaturePNG renders a shapefile layer on the web map plane.
func (r *Renderer) FeaturePNG(c *feature.Collection, w io.Writer) error {
	b := c.Bounds()
	west, east := b.Min.X, b.Max.X
	south, north := b.Min.Y, b.Max.Y

	// Pad the extent so edge features stay visible, with a floor for
	// degenerate (single point) layers.
	padX := (east - west) * 0.05
	padY := (north - south) * 0.05
	if padX <= 0 {
		padX = 1000
	}
	if padY <= 0 {
		padY = 1000
	}
	west, east = west-padX, east+padX
	south, north = south-padY, north+padY

	m := carto.NewRasterMap(north, south, east, west, r.width)
	bounds := m.I.Bounds()
	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			m.I.Set(i, j, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}

	fill := color.NRGBA{R: 70, G: 130, B: 180, A: 120}
	stroke := vgdraw.LineStyle{Width: 0.3 * vg.Millimeter, Color: color.NRGBA{R: 25, G: 60, B: 90, A: 255}}
	glyph := vgdraw.GlyphStyle{
		Color:  color.NRGBA{R: 25, G: 60, B: 90, A: 255},
		Radius: vg.Points(2),
		Shape:  vgdraw.RingGlyph{},
	}
	for _, g := range c.Geoms() {
		if err := m.DrawVector(g, fill, stroke, glyph); err != nil {
			return fmt.Errorf("draw feature: %w", err)
		}
	}

	if err := m.WriteTo(w); err != nil {
		return fmt.Errorf("encode feature map: %w", err)
	}
	return nil
}

// colorMap builds the frame's color scale from its unmasked values.
func colorMap(f *domain.Frame) (*carto.ColorMap, error) {
	valid := make([]float64, 0, len(f.Data.Elements))
	for _, v := range f.Data.Elements {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("frame for %s has no unmasked values", f.Variable)
	}
	cmap := carto.NewColorMap(carto.LinCutoff)
	cmap.AddArray(valid)
	cmap.Set()
	return cmap, nil
}

// drawTitle writes the frame title centered along the top edge.
func drawTitle(m *carto.RasterMap, f *domain.Frame) error {
	font, err := vg.MakeFont(plot.DefaultFont, vg.Points(10))
	if err != nil {
		return fmt.Errorf("load title font: %w", err)
	}
	ts := vgdraw.TextStyle{
		Color:  color.Black,
		Font:   font,
		XAlign: -0.5,
		YAlign: -1,
	}
	m.FillText(ts, vg.Point{X: m.X(0.5), Y: m.Max.Y - 0.05*vg.Inch}, f.Title)
	return nil
}

// drawGraticule draws meridian and parallel lines with edge labels.
func drawGraticule(m *carto.RasterMap, west, east, south, north float64) error {
	font, err := vg.MakeFont(plot.DefaultFont, vg.Points(7))
	if err != nil {
		return fmt.Errorf("load graticule font: %w", err)
	}
	style := vgdraw.LineStyle{Width: 0.1 * vg.Millimeter, Color: graticuleColor}
	var glyph vgdraw.GlyphStyle

	lonTS := vgdraw.TextStyle{Color: color.Black, Font: font, XAlign: -0.5, YAlign: 0}
	latTS := vgdraw.TextStyle{Color: color.Black, Font: font, XAlign: 0, YAlign: -0.5}

	toX := func(lon float64) vg.Length {
		return m.Min.X + vg.Length((lon-west)/(east-west))*(m.Max.X-m.Min.X)
	}
	toY := func(lat float64) vg.Length {
		return m.Min.Y + vg.Length((lat-south)/(north-south))*(m.Max.Y-m.Min.Y)
	}

	lonStep := niceStep(east - west)
	for lon := math.Ceil(west/lonStep) * lonStep; lon <= east; lon += lonStep {
		line := geom.LineString{{X: lon, Y: south}, {X: lon, Y: north}}
		if err := m.DrawVector(line, transparent, style, glyph); err != nil {
			return fmt.Errorf("draw meridian: %w", err)
		}
		m.FillText(lonTS, vg.Point{X: toX(lon), Y: m.Min.Y + 2*vg.Points(1)}, fmt.Sprintf("%g", lon))
	}

	latStep := niceStep(north - south)
	for lat := math.Ceil(south/latStep) * latStep; lat <= north; lat += latStep {
		line := geom.LineString{{X: west, Y: lat}, {X: east, Y: lat}}
		if err := m.DrawVector(line, transparent, style, glyph); err != nil {
			return fmt.Errorf("draw parallel: %w", err)
		}
		m.FillText(latTS, vg.Point{X: m.Min.X + 2*vg.Points(1), Y: toY(lat)}, fmt.Sprintf("%g", lat))
	}
	return nil
}

// niceStep picks a 1/2/5-series interval giving roughly six divisions.
func niceStep(span float64) float64 {
	if span <= 0 {
		return 1
	}
	raw := span / 6
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch {
	case raw/mag < 1.5:
		return mag
	case raw/mag < 3.5:
		return 2 * mag
	case raw/mag < 7.5:
		return 5 * mag
	default:
		return 10 * mag
	}
}
