package interp

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/panostitch/pkg/pano"
)

func allKernels(t *testing.T) []Kernel {
	kernels := []Kernel{}
	for k := Nearest; k <= Sinc1024; k++ {
		kern, err := New(k)
		require.NoError(t, err)
		kernels = append(kernels, kern)
	}
	return kernels
}

func TestKernelShapes(t *testing.T) {
	wantSizes := map[Kind]int{
		Nearest: 1, Bilinear: 2, Cubic: 4, Spline16: 4, Spline36: 6, Spline64: 8, Sinc256: 16, Sinc1024: 32,
	}

	for _, k := range allKernels(t) {
		t.Run(k.Kind().String(), func(t *testing.T) {
			assert.Equal(t, wantSizes[k.Kind()], k.Size())
			assert.InDelta(t, 1.0, k.Weight(0), 1e-9)

			// Zero at the other integer offsets, and outside the support
			for i := 1; i <= k.Size(); i++ {
				assert.InDelta(t, 0.0, k.Weight(float64(i)), 1e-9, "w(%d)", i)
				assert.InDelta(t, 0.0, k.Weight(float64(-i)), 1e-9, "w(-%d)", i)
			}
			assert.Equal(t, 0.0, k.Weight(float64(k.Size())/2+0.01))

			// Weights roughly partition unity at fractional offsets too
			sum := 0.0
			for i := -k.Size(); i <= k.Size(); i++ {
				sum += k.Weight(0.3 + float64(i))
			}
			assert.InDelta(t, 1.0, sum, 0.05)
		})
	}
}

func TestUnknownKernel(t *testing.T) {
	_, err := New(Kind(99))
	assert.True(t, errors.Is(err, pano.ErrUnsupported))

	_, err = Lookup("lanczos9")
	assert.True(t, errors.Is(err, pano.ErrUnsupported))

	k, err := Lookup(" Spline36 ")
	require.NoError(t, err)
	assert.Equal(t, Spline36, k.Kind())

	k, err = Lookup("")
	require.NoError(t, err)
	assert.Equal(t, Cubic, k.Kind())
}

// gradientSource is 16x16, with red = x/16 and green = y/16.
func gradientSource(t *testing.T) *pano.Source {
	img := image.NewNRGBA64(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.NRGBA64{uint16(x * 0x1000), uint16(y * 0x1000), 0, 0xFFFF})
		}
	}
	src, err := pano.NewSource(img)
	require.NoError(t, err)
	return src
}

func TestSampleAtPixelCentres(t *testing.T) {
	src := gradientSource(t)
	for _, k := range allKernels(t) {
		s := NewSampler(k, src, false)
		c, ok := s.Sample(7, 9)
		require.True(t, ok)
		assert.InDelta(t, src.RGBAt(7, 9).R, c.R, 1e-6, k.Kind().String())
		assert.InDelta(t, src.RGBAt(7, 9).G, c.G, 1e-6, k.Kind().String())
	}
}

func TestBilinearSample(t *testing.T) {
	src := gradientSource(t)
	k, _ := New(Bilinear)
	s := NewSampler(k, src, false)
	assert.Equal(t, 1, s.Margin())

	c, ok := s.Sample(4.25, 6.5)
	require.True(t, ok)
	assert.InDelta(t, 4.25*0x1000/65535.0, c.R, 1e-6)
	assert.InDelta(t, 6.5*0x1000/65535.0, c.G, 1e-6)

	n, _ := New(Nearest)
	s = NewSampler(n, src, false)
	assert.Equal(t, 0, s.Margin())
	c, _ = s.Sample(4.6, 6.4)
	assert.Equal(t, src.RGBAt(5, 6), c)

	// Off the edge, taps clamp rather than panic
	c, _ = s.Sample(15.8, 0)
	assert.Equal(t, src.RGBAt(15, 0), c)
}

func TestAlphaAwareSampling(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			a := uint8(255)
			if x == 5 {
				a = 0
			}
			img.Set(x, y, color.NRGBA{200, 100, 50, a})
		}
	}
	src, err := pano.NewSource(img)
	require.NoError(t, err)

	k, _ := New(Bilinear)
	aware := NewSampler(k, src, true)
	plain := NewSampler(k, src, false)

	_, ok := aware.Sample(2.5, 3.5)
	assert.True(t, ok)
	_, ok = aware.Sample(4.5, 3.5)
	assert.False(t, ok, "neighbourhood touches a transparent column")
	_, ok = plain.Sample(4.5, 3.5)
	assert.True(t, ok)
}
