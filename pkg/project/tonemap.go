package project

import (
	"fmt"
	"image"
	"image/color"

	"github.com/mdouchement/hdr/tmo"

	"github.com/abworrall/panostitch/pkg/pano"
)

var (
	Tonemappers = []string{"clip", "drago03", "durand", "icam06", "linear", "reinhard05"}
)

func ListTonemappers() string {
	return fmt.Sprintf("%v", Tonemappers)
}

// Tonemap squeezes the panorama into displayable range with the named
// operator. "clip" (or "") just clips each channel to [0,1]. Pixels not
// set in alpha come out transparent.
func Tonemap(name string, img *pano.Image, alpha *pano.Mask) (*image.NRGBA64, error) {
	var op tmo.ToneMappingOperator
	view := img.ZeroOrigin()

	switch name {
	case "", "clip":
		return img.ToNRGBA64(alpha), nil

	case "drago03":
		drago := tmo.NewDefaultDrago03(view)
		drago.Bias = 1.0 // the default blows out bright skies
		op = drago

	case "durand":
		op = tmo.NewDefaultDurand(view)

	case "icam06":
		icam := tmo.NewDefaultICam06(view)
		icam.Contrast = 0.65
		op = icam

	case "linear":
		op = tmo.NewLinear(view)

	case "reinhard05":
		op = tmo.NewDefaultReinhard05(view)

	default:
		return nil, fmt.Errorf("tonemapper %q (want one of %s): %w", name, ListTonemappers(), pano.ErrUnsupported)
	}

	// The operators work on the zero origin view; shift back to img's place
	mapped := op.Perform()
	mb := mapped.Bounds()
	out := image.NewNRGBA64(img.Bounds())
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBA64Model.Convert(mapped.At(mb.Min.X+x-b.Min.X, mb.Min.Y+y-b.Min.Y)).(color.NRGBA64)
			if alpha != nil && !alpha.Valid(x, y) {
				c.A = 0
			} else {
				c.A = 0xFFFF
			}
			out.SetNRGBA64(x, y, c)
		}
	}
	return out, nil
}
