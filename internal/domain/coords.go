package domain

import "strings"

// Longitude and latitude name fragments, matched case-insensitively as
// substrings. This is a best-effort heuristic, not a CF-convention parser.
var (
	lonNames = []string{"lon", "longitude", "x"}
	latNames = []string{"lat", "latitude", "y"}
)

// firstNameMatch returns the first candidate containing any of the name
// fragments, or "". The outer loop is over candidates so that earlier
// dimensions win, matching the order coordinates appear in the file.
func firstNameMatch(candidates []string, fragments []string) string {
	for _, c := range candidates {
		lower := strings.ToLower(c)
		for _, f := range fragments {
			if strings.Contains(lower, f) {
				return c
			}
		}
	}
	return ""
}

// CoordPair is a resolved pair of 1-D coordinate arrays together with the
// variable names they were read from.
type CoordPair struct {
	XName string
	YName string
	X     []float64
	Y     []float64
}

// ResolveCoords locates longitude and latitude coordinate arrays for a
// variable. Dimension names are scanned first, so coordinates tied to the
// variable's own axes win over same-named globals; only when that fails is
// every variable name in the dataset scanned. Returns
// ErrCoordinatesNotFound when either axis cannot be resolved to a 1-D
// array.
func ResolveCoords(v Variable, src DataSource) (CoordPair, error) {
	xName := firstNameMatch(v.Dims, lonNames)
	yName := firstNameMatch(v.Dims, latNames)

	if xName != "" && yName != "" {
		x, errX := src.Coord(xName)
		y, errY := src.Coord(yName)
		if errX == nil && errY == nil {
			return CoordPair{XName: xName, YName: yName, X: x, Y: y}, nil
		}
	}

	// Fall back to scanning all variable names in the dataset.
	var names []string
	for _, dv := range src.Variables() {
		names = append(names, dv.Name)
	}
	xName = firstNameMatch(names, lonNames)
	yName = firstNameMatch(names, latNames)
	if xName == "" || yName == "" {
		return CoordPair{}, ErrCoordinatesNotFound
	}
	x, err := src.Coord(xName)
	if err != nil {
		return CoordPair{}, ErrCoordinatesNotFound
	}
	y, err := src.Coord(yName)
	if err != nil {
		return CoordPair{}, ErrCoordinatesNotFound
	}
	return CoordPair{XName: xName, YName: yName, X: x, Y: y}, nil
}
