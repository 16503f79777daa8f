// Package compose folds remapped images, one at a time, into a single
// panorama.
package compose

import (
	"github.com/mdouchement/hdr/hdrcolor"

	"github.com/abworrall/panostitch/pkg/pano"
	"github.com/abworrall/panostitch/pkg/remap"
	"github.com/abworrall/panostitch/pkg/roi"
)

// An Accumulator is the panorama being built. Image and Alpha cover the
// whole output region; ROI is the union of the footprints placed so far,
// and stays empty until something lands. Pixels nothing covered keep the
// background colour and an invalid alpha.
type Accumulator struct {
	Image *pano.Image
	Alpha *pano.Mask
	ROI   roi.Rect
}

func NewAccumulator(r roi.Rect, background hdrcolor.RGB, maxPixels int) (*Accumulator, error) {
	img, err := pano.NewImageLimit(r, maxPixels)
	if err != nil {
		return nil, err
	}
	alpha, err := pano.NewMaskLimit(r, maxPixels)
	if err != nil {
		return nil, err
	}
	img.Fill(background)
	return &Accumulator{Image: img, Alpha: alpha}, nil
}

func (acc *Accumulator) Bounds() roi.Rect { return acc.Image.Rect }

// Empty means nothing was stitched.
func (acc *Accumulator) Empty() bool { return acc.ROI.Empty() }

// place copies the pixels of r inside area into the accumulator. Only the
// pixels set in mask are written; a nil mask means r's own alpha.
func (acc *Accumulator) place(r *remap.Remapped, area roi.Rect, mask *pano.Mask) {
	area = area.Intersect(r.ROI).Intersect(acc.Bounds())
	if mask != nil {
		area = area.Intersect(mask.Rect)
	}

	for y := area.Top; y < area.Bottom; y++ {
		for x := area.Left; x < area.Right; x++ {
			if mask != nil && !mask.Valid(x, y) {
				continue
			} else if !r.Alpha.Valid(x, y) {
				continue
			}
			acc.Image.SetRGB(x, y, r.Image.RGBAt(x, y))
			acc.Alpha.Set(x, y, true)
		}
	}
}
