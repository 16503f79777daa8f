package ptransform

import (
	"fmt"
	"math"

	"github.com/abworrall/panostitch/pkg/emath"
	"github.com/abworrall/panostitch/pkg/pano"
)

// A Mapper takes a pixel position in panorama output space to a continuous
// position in one source image. ok is false when the output pixel has no
// counterpart at all (e.g. it looks behind a rectilinear camera). A
// position outside the source bounds is still ok; callers bounds-check.
//
// Mappers are read-only once built and safe for concurrent use.
type Mapper interface {
	ToSource(x, y float64) (sx, sy float64, ok bool)
}

// plane is one side of a transform: an image of some size and projection,
// centred at (cx,cy), with scale pixels per unit of projection plane.
type plane struct {
	proj   projection
	cx, cy float64
	scale  float64
}

func newPlane(p pano.Projection, w, h int, hfovDeg float64) plane {
	proj := projectionFor(p)
	return plane{
		proj:  proj,
		cx:    float64(w-1) / 2,
		cy:    float64(h-1) / 2,
		scale: (float64(w) / 2) / proj.halfWidth(hfovDeg*math.Pi/180),
	}
}

// geometry holds everything needed to go between output pixels and source
// pixels for one image.
type geometry struct {
	out, src   plane
	worldToCam emath.Mat3
	camToWorld emath.Mat3
	lens       pano.Lens
	radialD    float64 // implied 4th radial coefficient
	lensNorm   float64 // pixels per unit of normalised lens radius
	distorted  bool
}

func newGeometry(desc pano.ImageDescriptor, opts pano.Options, pose pano.Pose) (*geometry, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	g := geometry{
		out:        newPlane(opts.Projection, opts.Width, opts.Height, opts.HFOV),
		src:        newPlane(desc.Projection, desc.Width, desc.Height, desc.HFOV),
		worldToCam: emath.WorldToCamera(pose.Yaw, pose.Pitch, pose.Roll),
		camToWorld: emath.CameraToWorld(pose.Yaw, pose.Pitch, pose.Roll),
		lens:       desc.Lens,
		radialD:    1 - desc.Lens.A - desc.Lens.B - desc.Lens.C,
		lensNorm:   float64(minInt(desc.Width, desc.Height)) / 2,
	}
	g.distorted = desc.Lens.A != 0 || desc.Lens.B != 0 || desc.Lens.C != 0

	if det := 1 - desc.Lens.ShearX*desc.Lens.ShearY; math.Abs(det) < 1e-9 {
		return nil, fmt.Errorf("image %q: degenerate shear (%g,%g): %w",
			desc.Name, desc.Lens.ShearX, desc.Lens.ShearY, pano.ErrUnsupported)
	}
	return &g, nil
}

func (g *geometry) radial(r float64) float64 {
	l := g.lens
	return ((l.A*r+l.B)*r+l.C)*r + g.radialD
}

// distort takes ideal, centred source pixel offsets to the position
// actually recorded by the lens.
func (g *geometry) distort(px, py float64) (float64, float64) {
	if g.distorted {
		f := g.radial(math.Hypot(px, py) / g.lensNorm)
		px, py = px*f, py*f
	}
	return px + g.lens.ShearX*py, py + g.lens.ShearY*px
}

// undistort is the inverse of distort; the radial part is solved with a
// few Newton steps.
func (g *geometry) undistort(px, py float64) (float64, float64) {
	det := 1 - g.lens.ShearX*g.lens.ShearY
	px, py = (px-g.lens.ShearX*py)/det, (py-g.lens.ShearY*px)/det
	if !g.distorted {
		return px, py
	}

	rd := math.Hypot(px, py) / g.lensNorm
	if rd < 1e-12 {
		return px, py
	}
	l := g.lens
	r := rd
	for i := 0; i < 20; i++ {
		f := r*g.radial(r) - rd
		df := ((4*l.A*r+3*l.B)*r+2*l.C)*r + g.radialD
		if math.Abs(df) < 1e-12 {
			break
		}
		step := f / df
		r -= step
		if math.Abs(step) < 1e-12 {
			break
		}
	}
	return px * r / rd, py * r / rd
}

func (g *geometry) toSource(x, y float64) (float64, float64, bool) {
	d, ok := g.out.proj.toSphere((x-g.out.cx)/g.out.scale, (y-g.out.cy)/g.out.scale)
	if !ok {
		return 0, 0, false
	}
	u, v, ok := g.src.proj.toPlane(g.worldToCam.Apply(d))
	if !ok {
		return 0, 0, false
	}
	px, py := g.distort(u*g.src.scale, v*g.src.scale)
	return g.src.cx + g.lens.ShiftX + px, g.src.cy + g.lens.ShiftY + py, true
}

func (g *geometry) toOutput(sx, sy float64) (float64, float64, bool) {
	px, py := g.undistort(sx-g.src.cx-g.lens.ShiftX, sy-g.src.cy-g.lens.ShiftY)
	d, ok := g.src.proj.toSphere(px/g.src.scale, py/g.src.scale)
	if !ok {
		return 0, 0, false
	}
	u, v, ok := g.out.proj.toPlane(g.camToWorld.Apply(d))
	if !ok {
		return 0, 0, false
	}
	return g.out.cx + u*g.out.scale, g.out.cy + v*g.out.scale, true
}

// A Transform maps panorama pixels into one source image, accounting for
// both projections, the camera pose and the lens.
type Transform struct {
	g *geometry
}

// New builds the transform for one source image. Unrepresentable
// combinations fail with pano.ErrUnsupported.
func New(desc pano.ImageDescriptor, opts pano.Options) (*Transform, error) {
	g, err := newGeometry(desc, opts, desc.Pose)
	if err != nil {
		return nil, err
	}
	return &Transform{g: g}, nil
}

func (t *Transform) ToSource(x, y float64) (float64, float64, bool) { return t.g.toSource(x, y) }

// An Inverse maps source pixels onto the panorama; it is used by
// interactive tools, e.g. to draw image outlines.
type Inverse struct {
	g *geometry
}

// NewInverse builds the source-to-output transform. With nullifyRoll the
// image's roll is ignored, which is what orientation editors want when
// they let the user drag the horizon.
func NewInverse(desc pano.ImageDescriptor, opts pano.Options, nullifyRoll bool) (*Inverse, error) {
	pose := desc.Pose
	if nullifyRoll {
		pose.Roll = 0
	}
	g, err := newGeometry(desc, opts, pose)
	if err != nil {
		return nil, err
	}
	return &Inverse{g: g}, nil
}

func (t *Inverse) ToOutput(sx, sy float64) (float64, float64, bool) { return t.g.toOutput(sx, sy) }

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
