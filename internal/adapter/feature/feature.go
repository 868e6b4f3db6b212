// Package feature loads shapefile vector layers for display. Geometries
// are reprojected from the file's native reference system to Web Mercator
// so every layer lands on the same map plane.
package feature

import (
	"fmt"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/proj"
)

// webMapProj is the spatial reference definition for web mapping.
const webMapProj = "+proj=merc +a=6378137 +b=6378137 +lat_ts=0.0 +lon_0=0.0 +x_0=0.0 +y_0=0 +k=1.0 +units=m +nadgrids=@null +no_defs"

// Collection is one fully loaded shapefile layer, reprojected to the web
// map plane. The source files are closed once loading finishes.
type Collection struct {
	path    string
	crsName string
	geoms   []geom.Geom
	fields  []string
	types   map[string]int
	bounds  *geom.Bounds
}

// Open reads an entire shapefile and reprojects it to Web Mercator.
// The sidecar .prj file is required; without it the geometry cannot be
// placed on the map and the load fails.
func Open(path string) (*Collection, error) {
	d, err := shp.NewDecoder(path)
	if err != nil {
		return nil, fmt.Errorf("open shapefile %s: %w", path, err)
	}
	defer d.Close()

	srcSR, err := d.SR()
	if err != nil {
		return nil, fmt.Errorf("shapefile %s has no usable spatial reference (.prj): %w", path, err)
	}
	webMapSR, err := proj.Parse(webMapProj)
	if err != nil {
		return nil, fmt.Errorf("parse web mercator definition: %w", err)
	}
	ct, err := srcSR.NewTransform(webMapSR)
	if err != nil {
		return nil, fmt.Errorf("create transform for %s: %w", path, err)
	}

	c := &Collection{
		path:    path,
		crsName: srcSR.Name,
		types:   make(map[string]int),
		bounds:  geom.NewBounds(),
	}
	for _, f := range d.Reader.Fields() {
		c.fields = append(c.fields, f.String())
	}

	for {
		g, _, more := d.DecodeRowFields()
		if !more {
			break
		}
		gt, err := g.Transform(ct)
		if err != nil {
			return nil, fmt.Errorf("reproject feature %d of %s: %w", len(c.geoms), path, err)
		}
		c.geoms = append(c.geoms, gt)
		c.types[geomTypeName(gt)]++
		c.bounds.Extend(gt.Bounds())
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("read shapefile %s: %w", path, err)
	}
	if len(c.geoms) == 0 {
		return nil, fmt.Errorf("shapefile %s contains no features", path)
	}
	return c, nil
}

// Path returns the file path the collection was loaded from.
func (c *Collection) Path() string { return c.path }

// Geoms returns the reprojected geometries in file order.
func (c *Collection) Geoms() []geom.Geom { return c.geoms }

// Count returns the number of features.
func (c *Collection) Count() int { return len(c.geoms) }

// Bounds returns the extent of the layer on the web map plane.
func (c *Collection) Bounds() *geom.Bounds { return c.bounds }

// InfoText builds the layer summary shown in the metadata pane.
func (c *Collection) InfoText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\n\n", c.path)
	fmt.Fprintf(&b, "Features: %d\n", len(c.geoms))
	fmt.Fprintf(&b, "CRS: %s (displayed in Web Mercator)\n", c.crsName)

	b.WriteString("\nGeometry types:\n")
	for name, count := range c.types {
		fmt.Fprintf(&b, "  %s: %d\n", name, count)
	}

	if len(c.fields) > 0 {
		fmt.Fprintf(&b, "\nAttribute fields:\n  %s\n", strings.Join(c.fields, ", "))
	}

	fmt.Fprintf(&b, "\nBounds (web mercator meters):\n  x: [%.1f, %.1f]\n  y: [%.1f, %.1f]\n",
		c.bounds.Min.X, c.bounds.Max.X, c.bounds.Min.Y, c.bounds.Max.Y)
	return b.String()
}

func geomTypeName(g geom.Geom) string {
	switch g.(type) {
	case geom.Point, *geom.Point:
		return "Point"
	case geom.MultiPoint, *geom.MultiPoint:
		return "MultiPoint"
	case geom.LineString, *geom.LineString:
		return "LineString"
	case geom.MultiLineString, *geom.MultiLineString:
		return "MultiLineString"
	case geom.Polygon, *geom.Polygon:
		return "Polygon"
	case geom.MultiPolygon, *geom.MultiPolygon:
		return "MultiPolygon"
	default:
		return fmt.Sprintf("%T", g)
	}
}
