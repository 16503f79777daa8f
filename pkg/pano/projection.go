package pano

import (
	"fmt"
	"strings"
)

// Projection identifies how a sphere of view directions is flattened onto
// an image, for both source images and the output canvas.
type Projection int

const (
	Rectilinear Projection = iota
	Cylindrical
	Equirectangular
	Fisheye // equidistant
	Stereographic
	Mercator
)

var projectionNames = map[Projection]string{
	Rectilinear:     "rectilinear",
	Cylindrical:     "cylindrical",
	Equirectangular: "equirectangular",
	Fisheye:         "fisheye",
	Stereographic:   "stereographic",
	Mercator:        "mercator",
}

func (p Projection) String() string {
	if name, exists := projectionNames[p]; exists {
		return name
	}
	return fmt.Sprintf("projection(%d)", int(p))
}

func (p Projection) Valid() bool {
	_, exists := projectionNames[p]
	return exists
}

// ParseProjection maps a projection name (case insensitive) onto a
// Projection.
func ParseProjection(name string) (Projection, error) {
	for p, n := range projectionNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("projection %q: %w", name, ErrUnsupported)
}

// MaxHFOV is the widest horizontal field of view, in degrees, that the
// projection can represent.
func (p Projection) MaxHFOV() float64 {
	switch p {
	case Rectilinear:
		return 179.9 // tan() blows up at 180
	case Stereographic:
		return 359.9
	default:
		return 360
	}
}
