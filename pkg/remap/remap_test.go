package remap

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/panostitch/pkg/emath"
	"github.com/abworrall/panostitch/pkg/interp"
	"github.com/abworrall/panostitch/pkg/pano"
	"github.com/abworrall/panostitch/pkg/ptransform"
	"github.com/abworrall/panostitch/pkg/roi"
)

// patternSource builds a w x h opaque source with a colour that varies
// per pixel, so misplaced samples show up.
func patternSource(t *testing.T, w, h int) *pano.Source {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{uint8(x * 5), uint8(y * 5), uint8((x + y) % 256), 255})
		}
	}
	src, err := pano.NewSource(img)
	require.NoError(t, err)
	return src
}

func mustKernel(t *testing.T, k interp.Kind) interp.Kernel {
	kern, err := interp.New(k)
	require.NoError(t, err)
	return kern
}

func TestRemapPlacement(t *testing.T) {
	src := patternSource(t, 20, 10)
	out, err := Remap(src, ptransform.Placement(10, 5), mustKernel(t, interp.Nearest), roi.New(0, 0, 50, 30), Options{})
	require.NoError(t, err)

	assert.Equal(t, roi.New(10, 5, 30, 15), out.ROI)
	assert.Equal(t, out.ROI, out.Image.Rect)
	assert.Equal(t, out.ROI, out.Alpha.Rect)
	assert.Equal(t, 200, out.Alpha.Count())

	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			assert.Equal(t, src.RGBAt(x, y), out.Image.RGBAt(x+10, y+5))
		}
	}
	assert.False(t, out.Valid(9, 5))
	assert.False(t, out.Valid(30, 14))
	assert.True(t, out.Valid(29, 14))
}

func TestRemapInvalidRegionAllKernels(t *testing.T) {
	const w, h = 48, 40
	src := patternSource(t, w, h)

	srcToOut := emath.Identity().Translate(30, 20).Mult(emath.RotateAbout(20, w/2, h/2)).Scale(1.3, 1.3)
	mapper, err := ptransform.NewAffine(srcToOut)
	require.NoError(t, err)
	outROI := roi.New(0, 0, 120, 100)

	for k := interp.Nearest; k <= interp.Sinc1024; k++ {
		t.Run(k.String(), func(t *testing.T) {
			kern := mustKernel(t, k)
			out, err := Remap(src, mapper, kern, outROI, Options{Workers: 3})
			require.NoError(t, err)

			margin := float64(kern.Size() / 2)
			for y := outROI.Top; y < outROI.Bottom; y++ {
				for x := outROI.Left; x < outROI.Right; x++ {
					sx, sy, _ := mapper.ToSource(float64(x), float64(y))
					inside := sx >= margin && sy >= margin && sx < w-margin && sy < h-margin
					if !assert.Equal(t, inside, out.Valid(x, y), "pixel (%d,%d) maps to (%.2f,%.2f)", x, y, sx, sy) {
						return
					}
				}
			}
		})
	}
}

func TestRemapSourceAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			a := uint8(255)
			if x >= 6 {
				a = 0
			}
			img.Set(x, y, color.NRGBA{100, 100, 100, a})
		}
	}
	src, err := pano.NewSource(img)
	require.NoError(t, err)

	// Half a pixel off the grid, so bilinear reads two columns
	mapper := &ptransform.Affine{OutToSrc: emath.Identity().Translate(0.5, 0)}
	outROI := roi.New(0, 0, 10, 10)
	kern := mustKernel(t, interp.Bilinear)

	aware, err := Remap(src, mapper, kern, outROI, Options{UseSourceAlpha: true})
	require.NoError(t, err)
	plain, err := Remap(src, mapper, kern, outROI, Options{})
	require.NoError(t, err)

	// (5,y) samples at 5.5, reading columns 5 and 6
	assert.True(t, aware.Valid(4, 3))
	assert.False(t, aware.Valid(5, 3))
	assert.True(t, plain.Valid(5, 3))

	// Rows 0 and 9 sit inside the bilinear margin, so only [1,9) survives
	assert.False(t, aware.Valid(3, 0))
	assert.False(t, plain.Valid(3, 9))
	assert.Equal(t, roi.New(1, 1, 5, 9), aware.ROI)
}

func TestRemapNothingVisible(t *testing.T) {
	src := patternSource(t, 10, 10)
	kern := mustKernel(t, interp.Cubic)

	out, err := Remap(src, ptransform.Placement(500, 500), kern, roi.New(0, 0, 50, 50), Options{})
	require.NoError(t, err)
	assert.True(t, out.Empty())
	assert.False(t, out.Valid(0, 0))

	// A fully transparent source gives an all-invalid remap, not an error
	clear, err := pano.NewSource(image.NewNRGBA(image.Rect(0, 0, 10, 10)))
	require.NoError(t, err)
	out, err = Remap(clear, ptransform.Placement(0, 0), kern, roi.New(0, 0, 10, 10), Options{UseSourceAlpha: true})
	require.NoError(t, err)
	assert.True(t, out.Empty())

	out, err = Remap(src, ptransform.Placement(0, 0), kern, roi.Rect{}, Options{})
	require.NoError(t, err)
	assert.True(t, out.Empty())
}

func TestRemapPhotometric(t *testing.T) {
	src := patternSource(t, 10, 10)
	desc := pano.ImageDescriptor{Width: 10, Height: 10, ExposureValue: 1}
	opts := pano.Options{ExposureValue: 2}

	out, err := Remap(src, ptransform.Placement(0, 0), mustKernel(t, interp.Nearest), roi.New(0, 0, 10, 10),
		Options{Photometric: ptransform.NewPhotometric(desc, opts)})
	require.NoError(t, err)
	assert.InDelta(t, 2*src.RGBAt(3, 4).R, out.Image.RGBAt(3, 4).R, 1e-9)
	assert.InDelta(t, 2*src.RGBAt(3, 4).G, out.Image.RGBAt(3, 4).G, 1e-9)
}

func TestRemapTooLarge(t *testing.T) {
	src := patternSource(t, 5, 5)
	_, err := Remap(src, ptransform.Placement(0, 0), mustKernel(t, interp.Nearest), roi.New(0, 0, 20, 20), Options{MaxPixels: 100})
	assert.True(t, errors.Is(err, pano.ErrCanvasTooLarge))
}
