package ptransform

import (
	"math"

	"github.com/abworrall/panostitch/pkg/emath"
	"github.com/abworrall/panostitch/pkg/pano"
)

// A projection flattens view directions onto a plane, and back. Plane
// coordinates are dimensionless (radians for the angular projections);
// u grows to the right and v grows downwards. Directions have x right,
// y down and z ahead, and need not be normalised on the way in.
type projection interface {
	toPlane(d emath.Vec3) (u, v float64, ok bool)
	toSphere(u, v float64) (d emath.Vec3, ok bool)
	halfWidth(hfovRad float64) float64
}

func projectionFor(p pano.Projection) projection {
	switch p {
	case pano.Rectilinear:
		return rectilinear{}
	case pano.Cylindrical:
		return cylindrical{}
	case pano.Equirectangular:
		return equirectangular{}
	case pano.Fisheye:
		return fisheye{}
	case pano.Stereographic:
		return stereographic{}
	case pano.Mercator:
		return mercator{}
	}
	return nil
}

func lonLat(d emath.Vec3) (lon, lat float64) {
	return math.Atan2(d[0], d[2]), math.Atan2(-d[1], math.Hypot(d[0], d[2]))
}

func fromLonLat(lon, lat float64) emath.Vec3 {
	sLon, cLon := math.Sincos(lon)
	sLat, cLat := math.Sincos(lat)
	return emath.Vec3{cLat * sLon, -sLat, cLat * cLon}
}

// offAxis returns the angle between d and the optical axis, plus the unit
// direction of d in the image plane.
func offAxis(d emath.Vec3) (theta, ux, uy float64) {
	rho := math.Hypot(d[0], d[1])
	theta = math.Atan2(rho, d[2])
	if rho < 1e-15 {
		return theta, 0, 0
	}
	return theta, d[0] / rho, d[1] / rho
}

func fromOffAxis(theta, u, v, r float64) emath.Vec3 {
	if r < 1e-15 {
		return emath.Vec3{0, 0, 1}
	}
	s, c := math.Sincos(theta)
	return emath.Vec3{s * u / r, s * v / r, c}
}

type rectilinear struct{}

func (rectilinear) toPlane(d emath.Vec3) (float64, float64, bool) {
	if d[2] <= 1e-12 {
		return 0, 0, false
	}
	return d[0] / d[2], d[1] / d[2], true
}

func (rectilinear) toSphere(u, v float64) (emath.Vec3, bool) {
	return emath.Vec3{u, v, 1}, true
}

func (rectilinear) halfWidth(hfov float64) float64 { return math.Tan(hfov / 2) }

type cylindrical struct{}

func (cylindrical) toPlane(d emath.Vec3) (float64, float64, bool) {
	rho := math.Hypot(d[0], d[2])
	if rho < 1e-12 {
		return 0, 0, false
	}
	return math.Atan2(d[0], d[2]), d[1] / rho, true
}

func (cylindrical) toSphere(u, v float64) (emath.Vec3, bool) {
	if math.Abs(u) > math.Pi {
		return emath.Vec3{}, false
	}
	s, c := math.Sincos(u)
	return emath.Vec3{s, v, c}, true
}

func (cylindrical) halfWidth(hfov float64) float64 { return hfov / 2 }

type equirectangular struct{}

func (equirectangular) toPlane(d emath.Vec3) (float64, float64, bool) {
	lon, lat := lonLat(d)
	return lon, -lat, true
}

func (equirectangular) toSphere(u, v float64) (emath.Vec3, bool) {
	if math.Abs(u) > math.Pi || math.Abs(v) > math.Pi/2 {
		return emath.Vec3{}, false
	}
	return fromLonLat(u, -v), true
}

func (equirectangular) halfWidth(hfov float64) float64 { return hfov / 2 }

type fisheye struct{}

func (fisheye) toPlane(d emath.Vec3) (float64, float64, bool) {
	theta, ux, uy := offAxis(d)
	return theta * ux, theta * uy, true
}

func (fisheye) toSphere(u, v float64) (emath.Vec3, bool) {
	r := math.Hypot(u, v)
	if r > math.Pi {
		return emath.Vec3{}, false
	}
	return fromOffAxis(r, u, v, r), true
}

func (fisheye) halfWidth(hfov float64) float64 { return hfov / 2 }

type stereographic struct{}

func (stereographic) toPlane(d emath.Vec3) (float64, float64, bool) {
	theta, ux, uy := offAxis(d)
	if theta >= math.Pi-1e-9 {
		return 0, 0, false
	}
	r := 2 * math.Tan(theta/2)
	return r * ux, r * uy, true
}

func (stereographic) toSphere(u, v float64) (emath.Vec3, bool) {
	r := math.Hypot(u, v)
	return fromOffAxis(2*math.Atan(r/2), u, v, r), true
}

func (stereographic) halfWidth(hfov float64) float64 { return 2 * math.Tan(hfov/4) }

type mercator struct{}

func (mercator) toPlane(d emath.Vec3) (float64, float64, bool) {
	lon, lat := lonLat(d)
	if math.Cos(lat) < 1e-12 {
		return 0, 0, false
	}
	return lon, -math.Log(math.Tan(math.Pi/4 + lat/2)), true
}

func (mercator) toSphere(u, v float64) (emath.Vec3, bool) {
	if math.Abs(u) > math.Pi {
		return emath.Vec3{}, false
	}
	return fromLonLat(u, math.Atan(math.Sinh(-v))), true
}

func (mercator) halfWidth(hfov float64) float64 { return hfov / 2 }
