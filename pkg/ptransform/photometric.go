package ptransform

import (
	"math"

	"github.com/mdouchement/hdr/hdrcolor"

	"github.com/abworrall/panostitch/pkg/pano"
)

// Photometric brings a source pixel to the output exposure, undoing the
// lens vignetting on the way.
type Photometric struct {
	scale  float64
	vig    pano.Vignetting
	cx, cy float64
	norm   float64
}

// NewPhotometric returns nil when the correction would be the identity.
func NewPhotometric(desc pano.ImageDescriptor, opts pano.Options) *Photometric {
	if desc.ExposureValue == opts.ExposureValue && desc.Vignetting.IsZero() {
		return nil
	}
	w, h := float64(desc.Width), float64(desc.Height)
	return &Photometric{
		scale: math.Exp2(opts.ExposureValue - desc.ExposureValue),
		vig:   desc.Vignetting,
		cx:    (w-1)/2 + desc.Lens.ShiftX,
		cy:    (h-1)/2 + desc.Lens.ShiftY,
		norm:  math.Hypot(w, h) / 2,
	}
}

// Correct adjusts c, which was sampled at source position (sx,sy). A nil
// Photometric leaves c alone.
func (p *Photometric) Correct(sx, sy float64, c hdrcolor.RGB) hdrcolor.RGB {
	if p == nil {
		return c
	}
	f := p.scale
	if !p.vig.IsZero() {
		dx, dy := (sx-p.cx)/p.norm, (sy-p.cy)/p.norm
		r2 := dx*dx + dy*dy
		if v := 1 + r2*(p.vig.B+r2*(p.vig.C+r2*p.vig.D)); v > 1e-6 {
			f /= v
		}
	}
	return hdrcolor.RGB{R: c.R * f, G: c.G * f, B: c.B * f}
}
