package ptransform

// Small planar mappers, used by tests, by flat (scanner) mosaics and by
// the interactive orientation tools.

import (
	"github.com/abworrall/panostitch/pkg/emath"
	"github.com/abworrall/panostitch/pkg/pano"
)

// Affine maps output pixels to source pixels with a fixed affine matrix.
type Affine struct {
	OutToSrc emath.Aff3
}

// NewAffine takes the matrix placing the source image on the canvas (the
// direction image editors think in) and inverts it.
func NewAffine(srcToOut emath.Aff3) (*Affine, error) {
	inv, err := srcToOut.Invert()
	if err != nil {
		return nil, err
	}
	return &Affine{OutToSrc: inv}, nil
}

// Placement positions a source image on the canvas with its upper left
// pixel at (x,y).
func Placement(x, y float64) *Affine {
	return &Affine{OutToSrc: emath.Identity().Translate(-x, -y)}
}

func (a *Affine) ToSource(x, y float64) (float64, float64, bool) {
	sx, sy := a.OutToSrc.Apply(x, y)
	return sx, sy, true
}

// ImageToCartesian shifts image pixel coordinates of a w x h image so the
// origin is the image centre and y points up.
func ImageToCartesian(w, h int) emath.Aff3 {
	return emath.Identity().Scale(1, -1).Translate(-float64(w-1)/2, -float64(h-1)/2)
}

// CartesianToImage is the inverse of ImageToCartesian.
func CartesianToImage(w, h int) emath.Aff3 {
	return emath.Identity().Translate(float64(w-1)/2, float64(h-1)/2).Scale(1, -1)
}

// Rotation reorients a full equirectangular panorama: ToSource gives the
// position in the unrotated w x h panorama of an output pixel after the
// view is turned by pose.
type Rotation struct {
	g *geometry
}

func NewRotation(w, h int, pose pano.Pose) (*Rotation, error) {
	desc := pano.ImageDescriptor{
		Name:       "rotation",
		Width:      w,
		Height:     h,
		Projection: pano.Equirectangular,
		HFOV:       360,
	}
	opts := pano.Options{Width: w, Height: h, Projection: pano.Equirectangular, HFOV: 360}
	g, err := newGeometry(desc, opts, pose)
	if err != nil {
		return nil, err
	}
	return &Rotation{g: g}, nil
}

func (r *Rotation) ToSource(x, y float64) (float64, float64, bool) { return r.g.toSource(x, y) }
