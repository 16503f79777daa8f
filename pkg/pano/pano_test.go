package pano

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/mdouchement/hdr/hdrcolor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/panostitch/pkg/roi"
)

func TestNewSourceOpaque(t *testing.T) {
	img := image.NewNRGBA(image.Rect(10, 10, 14, 13))
	for y := 10; y < 13; y++ {
		for x := 10; x < 14; x++ {
			img.Set(x, y, color.NRGBA{255, 0, 51, 255})
		}
	}

	src, err := NewSource(img)
	require.NoError(t, err)
	assert.Nil(t, src.Alpha)
	assert.Equal(t, 4, src.Width())
	assert.Equal(t, 3, src.Height())
	assert.True(t, src.Opaque(0, 0))

	c := src.RGBAt(3, 2)
	assert.InDelta(t, 1.0, c.R, 1e-9)
	assert.InDelta(t, 0.0, c.G, 1e-9)
	assert.InDelta(t, 0.2, c.B, 1e-9)
}

func TestNewSourceTransparency(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	img.Set(0, 0, color.NRGBA{100, 100, 100, 255})
	img.Set(1, 0, color.NRGBA{100, 100, 100, 128})
	img.Set(2, 0, color.NRGBA{100, 100, 100, 0})

	src, err := NewSource(img)
	require.NoError(t, err)
	require.NotNil(t, src.Alpha)
	assert.True(t, src.Opaque(0, 0))
	assert.False(t, src.Opaque(1, 0), "partially transparent pixels are invalid")
	assert.False(t, src.Opaque(2, 0))
}

func TestMaskValidBounds(t *testing.T) {
	m, err := NewMask(roi.New(5, 5, 15, 15))
	require.NoError(t, err)
	assert.True(t, m.ValidBounds().Empty())

	m.Set(7, 8, true)
	m.Set(11, 12, true)
	assert.Equal(t, roi.New(7, 8, 12, 13), m.ValidBounds())
	assert.Equal(t, 2, m.Count())

	c := m.Crop(roi.New(6, 6, 9, 9))
	assert.Equal(t, 1, c.Count())
	assert.True(t, c.Valid(7, 8))
	assert.Equal(t, color.Alpha{A: Valid}, m.At(7, 8))
	assert.Equal(t, color.Alpha{}, m.At(100, 100))
}

func TestImageCropAndConvert(t *testing.T) {
	im, err := NewImage(roi.New(-2, -2, 2, 2))
	require.NoError(t, err)
	im.Fill(hdrcolor.RGB{R: 0.5, G: 2, B: -1})
	im.SetRGB(0, 0, hdrcolor.RGB{R: 1})

	c := im.Crop(roi.New(0, 0, 1, 1))
	assert.Equal(t, hdrcolor.RGB{R: 1}, c.RGBAt(0, 0))
	assert.Equal(t, 16, im.Size())

	alpha, _ := NewMask(im.Rect)
	alpha.Set(-1, -1, true)
	out := im.ToNRGBA64(alpha)
	px := out.NRGBA64At(-1, -1)
	assert.Equal(t, uint16(0xFFFF), px.A)
	assert.Equal(t, uint16(0xFFFF), px.G, "clipped to 1.0")
	assert.Equal(t, uint16(0), px.B, "clipped to 0.0")
	assert.Equal(t, uint16(0), out.NRGBA64At(1, 1).A)
}

func TestBufferLimit(t *testing.T) {
	_, err := NewImageLimit(roi.New(0, 0, 20, 20), 100)
	assert.True(t, errors.Is(err, ErrCanvasTooLarge))
	_, err = NewMaskLimit(roi.New(0, 0, 20, 20), 100)
	assert.True(t, errors.Is(err, ErrCanvasTooLarge))

	_, err = NewImageLimit(roi.New(0, 0, 10, 10), 100)
	assert.NoError(t, err)

	opts := Options{Width: 20, Height: 20, Projection: Equirectangular, HFOV: 360, MaxPixels: 100}
	assert.True(t, errors.Is(opts.Validate(), ErrCanvasTooLarge))
	assert.Equal(t, DefaultMaxPixels, Options{MaxPixels: DefaultMaxPixels * 2}.PixelLimit())
}

func TestZeroOrigin(t *testing.T) {
	im, err := NewImage(roi.New(10, 10, 20, 15))
	require.NoError(t, err)
	im.SetRGB(10, 10, hdrcolor.RGB{R: 1})
	im.SetRGB(19, 14, hdrcolor.RGB{B: 1})

	z := im.ZeroOrigin()
	assert.Equal(t, image.Rect(0, 0, 10, 5), z.Bounds())
	assert.Equal(t, 50, z.Size())
	assert.Equal(t, hdrcolor.RGB{R: 1}, z.HDRAt(0, 0))
	assert.Equal(t, hdrcolor.RGB{B: 1}, z.HDRAt(9, 4))
}

func TestOptionsValidate(t *testing.T) {
	good := Options{Width: 100, Height: 50, Projection: Equirectangular, HFOV: 360}
	require.NoError(t, good.Validate())
	assert.Equal(t, roi.New(0, 0, 100, 50), good.OutputROI())

	good.ROI = roi.New(50, 0, 200, 10)
	assert.Equal(t, roi.New(50, 0, 100, 10), good.OutputROI())

	tests := []struct {
		name string
		mod  func(*Options)
	}{
		{"no width", func(o *Options) { o.Width = 0 }},
		{"rectilinear 180", func(o *Options) { o.Projection = Rectilinear; o.HFOV = 180 }},
		{"bad projection", func(o *Options) { o.Projection = Projection(99) }},
		{"bad blend", func(o *Options) { o.Blend = BlendMode(7) }},
		{"roi outside", func(o *Options) { o.ROI = roi.New(500, 500, 600, 600) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := good
			tt.mod(&o)
			assert.True(t, errors.Is(o.Validate(), ErrUnsupported))
		})
	}
}

func TestParseNames(t *testing.T) {
	p, err := ParseProjection(" Equirectangular")
	require.NoError(t, err)
	assert.Equal(t, Equirectangular, p)
	assert.Equal(t, "equirectangular", p.String())

	_, err = ParseProjection("hammer")
	assert.True(t, errors.Is(err, ErrUnsupported))

	b, err := ParseBlendMode("")
	require.NoError(t, err)
	assert.Equal(t, BlendSeam, b)
	_, err = ParseBlendMode("multiband")
	assert.Error(t, err)
}
