package pano

import (
	"image"

	"github.com/mdouchement/hdr/hdrcolor"

	"github.com/abworrall/panostitch/pkg/roi"
)

// A Source is the read-only pixel data of one input image, with its
// origin at (0,0). Alpha is nil when every pixel is valid.
type Source struct {
	*Image
	Alpha *Mask
}

func (s *Source) Width() int  { return s.Image.Rect.Width() }
func (s *Source) Height() int { return s.Image.Rect.Height() }

// NewSource converts a decoded image into a Source. Channels are scaled to
// [0,1]. Only fully opaque pixels count as valid; the alpha mask is
// dropped when nothing is transparent.
func NewSource(img image.Image) (*Source, error) {
	b := img.Bounds()
	r := roi.Sized(0, 0, b.Dx(), b.Dy())

	pix, err := NewImage(r)
	if err != nil {
		return nil, err
	}
	alpha, err := NewMask(r)
	if err != nil {
		return nil, err
	}

	opaque := true
	for y := 0; y < r.Height(); y++ {
		for x := 0; x < r.Width(); x++ {
			cr, cg, cb, ca := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			if ca != 0xFFFF {
				opaque = false
				if ca == 0 {
					continue
				}
				// un-premultiply what little colour there is
				cr, cg, cb = cr*0xFFFF/ca, cg*0xFFFF/ca, cb*0xFFFF/ca
			} else {
				alpha.Set(x, y, true)
			}
			pix.SetRGB(x, y, hdrcolor.RGB{
				R: float64(cr) / float64(0xFFFF),
				G: float64(cg) / float64(0xFFFF),
				B: float64(cb) / float64(0xFFFF),
			})
		}
	}

	if opaque {
		alpha = nil
	}
	return &Source{Image: pix, Alpha: alpha}, nil
}

// Opaque reports whether the source pixel at (x,y) may be sampled.
func (s *Source) Opaque(x, y int) bool {
	return s.Alpha == nil || s.Alpha.Valid(x, y)
}
