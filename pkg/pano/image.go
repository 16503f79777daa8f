package pano

import (
	"fmt"
	"image"
	"image/color"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/hdrcolor"

	"github.com/abworrall/panostitch/pkg/emath"
	"github.com/abworrall/panostitch/pkg/roi"
)

// An Image is a float RGB pixel buffer that sits at Rect in panorama (or
// source) pixel coordinates. It implements image.Image and hdr.Image, so
// it can go straight to the rgbe encoder.
type Image struct {
	Rect roi.Rect
	Pix  []hdrcolor.RGB
}

func NewImage(r roi.Rect) (*Image, error) { return NewImageLimit(r, 0) }

// NewImageLimit is NewImage with a cap on the buffer size; 0 means
// DefaultMaxPixels.
func NewImageLimit(r roi.Rect, maxPixels int) (*Image, error) {
	if r.Empty() {
		return &Image{}, nil
	}
	if r.Area() > limit(maxPixels) {
		return nil, fmt.Errorf("image %s: %w", r, ErrCanvasTooLarge)
	}
	return &Image{Rect: r, Pix: make([]hdrcolor.RGB, r.Area())}, nil
}

// Implement image.Image
func (im *Image) ColorModel() color.Model { return hdrcolor.RGBModel }
func (im *Image) Bounds() image.Rectangle { return im.Rect.Image() }
func (im *Image) At(x, y int) color.Color { return im.RGBAt(x, y) }

// Implement hdr.Image, in absolute coordinates; see ZeroOrigin
func (im *Image) HDRAt(x, y int) hdrcolor.Color { return im.RGBAt(x, y) }
func (im *Image) Size() int                     { return im.Rect.Area() }

func (im *Image) offset(x, y int) int {
	return (y-im.Rect.Top)*im.Rect.Width() + (x - im.Rect.Left)
}

// Pixel access; coordinates are absolute, and must lie inside Rect.
func (im *Image) RGBAt(x, y int) hdrcolor.RGB     { return im.Pix[im.offset(x, y)] }
func (im *Image) SetRGB(x, y int, c hdrcolor.RGB) { im.Pix[im.offset(x, y)] = c }

func (im *Image) Fill(c hdrcolor.RGB) {
	for i := range im.Pix {
		im.Pix[i] = c
	}
}

// Crop copies out the pixels in r, which must lie inside im.Rect.
func (im *Image) Crop(r roi.Rect) *Image {
	out := &Image{Rect: r, Pix: make([]hdrcolor.RGB, r.Area())}
	for y := r.Top; y < r.Bottom; y++ {
		copy(out.Pix[out.offset(r.Left, y):out.offset(r.Right, y)], im.Pix[im.offset(r.Left, y):im.offset(r.Right, y)])
	}
	return out
}

// ToNRGBA64 converts to a 16-bit image for PNG/TIFF output. Channels are
// clipped to [0,1]; pixels not set in alpha (if given) become transparent.
func (im *Image) ToNRGBA64(alpha *Mask) *image.NRGBA64 {
	out := image.NewNRGBA64(im.Bounds())
	for y := im.Rect.Top; y < im.Rect.Bottom; y++ {
		for x := im.Rect.Left; x < im.Rect.Right; x++ {
			c := im.RGBAt(x, y)
			a := uint16(0xFFFF)
			if alpha != nil && !alpha.Valid(x, y) {
				a = 0
			}
			out.SetNRGBA64(x, y, color.NRGBA64{
				R: uint16(emath.Clamp01(c.R) * 0xFFFF),
				G: uint16(emath.Clamp01(c.G) * 0xFFFF),
				B: uint16(emath.Clamp01(c.B) * 0xFFFF),
				A: a,
			})
		}
	}
	return out
}

// ZeroOrigin returns a view of im with bounds starting at (0,0). The rgbe
// encoder and the tmo operators walk 0..Dx x 0..Dy whatever the bounds say.
func (im *Image) ZeroOrigin() hdr.Image { return zeroOrigin{im} }

type zeroOrigin struct {
	im *Image
}

func (z zeroOrigin) ColorModel() color.Model { return hdrcolor.RGBModel }

func (z zeroOrigin) Bounds() image.Rectangle {
	return image.Rect(0, 0, z.im.Rect.Width(), z.im.Rect.Height())
}

func (z zeroOrigin) HDRAt(x, y int) hdrcolor.Color {
	return z.im.RGBAt(x+z.im.Rect.Left, y+z.im.Rect.Top)
}

func (z zeroOrigin) At(x, y int) color.Color { return z.HDRAt(x, y) }
func (z zeroOrigin) Size() int               { return z.im.Size() }
