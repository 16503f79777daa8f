package compose

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/abworrall/panostitch/pkg/pano"
)

var (
	keepColour = colorful.Hsv(210, 0.6, 0.9)
	takeColour = colorful.Hsv(30, 0.8, 0.95)
)

// dumpSeam writes a PNG showing which image won each pixel of an overlap.
func dumpSeam(dir string, n int, name string, keep, take *pano.Mask) error {
	r := keep.Rect
	img := image.NewNRGBA(image.Rect(0, 0, r.Width(), r.Height()))
	for y := r.Top; y < r.Bottom; y++ {
		for x := r.Left; x < r.Right; x++ {
			var c colorful.Color
			switch {
			case keep.Valid(x, y):
				c = keepColour
			case take.Valid(x, y):
				c = takeColour
			default:
				continue
			}
			cr, cg, cb := c.RGB255()
			img.SetNRGBA(x-r.Left, y-r.Top, color.NRGBA{cr, cg, cb, 0xFF})
		}
	}

	dc := gg.NewContextForImage(img)
	dc.SetRGB(0, 0, 0)
	dc.DrawString(fmt.Sprintf("seam %d: %s at %s", n, name, r), 10, 20)

	filename := filepath.Join(dir, fmt.Sprintf("seam-%03d.png", n))
	if err := dc.SavePNG(filename); err != nil {
		return fmt.Errorf("save '%s': %v", filename, err)
	}
	return nil
}
