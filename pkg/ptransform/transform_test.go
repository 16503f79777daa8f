package ptransform

import (
	"errors"
	"math"
	"testing"

	"github.com/mdouchement/hdr/hdrcolor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/panostitch/pkg/emath"
	"github.com/abworrall/panostitch/pkg/pano"
)

const tolerance = 1e-6

func equirectOptions(w, h int) pano.Options {
	return pano.Options{Width: w, Height: h, Projection: pano.Equirectangular, HFOV: 360}
}

func TestEquirectIdentity(t *testing.T) {
	desc := pano.ImageDescriptor{Name: "same", Width: 360, Height: 180, Projection: pano.Equirectangular, HFOV: 360}
	xf, err := New(desc, equirectOptions(360, 180))
	require.NoError(t, err)

	for _, p := range [][2]float64{{0, 0}, {10.5, 20}, {179.5, 89.5}, {300, 170}} {
		sx, sy, ok := xf.ToSource(p[0], p[1])
		require.True(t, ok)
		assert.InDelta(t, p[0], sx, tolerance)
		assert.InDelta(t, p[1], sy, tolerance)
	}
}

func TestYawPlacesImageCentre(t *testing.T) {
	desc := pano.ImageDescriptor{
		Name: "right", Width: 100, Height: 80, Projection: pano.Rectilinear, HFOV: 50,
		Pose: pano.Pose{Yaw: 90},
	}
	opts := equirectOptions(360, 180)

	inv, err := NewInverse(desc, opts, false)
	require.NoError(t, err)
	x, y, ok := inv.ToOutput(49.5, 39.5)
	require.True(t, ok)
	assert.InDelta(t, 269.5, x, tolerance) // a quarter turn right of the centre
	assert.InDelta(t, 89.5, y, tolerance)

	xf, err := New(desc, opts)
	require.NoError(t, err)
	sx, sy, ok := xf.ToSource(269.5, 89.5)
	require.True(t, ok)
	assert.InDelta(t, 49.5, sx, tolerance)
	assert.InDelta(t, 39.5, sy, tolerance)

	// Looking the other way, there is nothing to see
	_, _, ok = xf.ToSource(89.5, 89.5)
	assert.False(t, ok)
}

func TestRoundTripAllProjections(t *testing.T) {
	projections := []pano.Projection{
		pano.Rectilinear, pano.Cylindrical, pano.Equirectangular,
		pano.Fisheye, pano.Stereographic, pano.Mercator,
	}

	for _, srcProj := range projections {
		for _, outProj := range projections {
			t.Run(srcProj.String()+"-to-"+outProj.String(), func(t *testing.T) {
				desc := pano.ImageDescriptor{
					Name: "lens", Width: 300, Height: 200, Projection: srcProj, HFOV: 60,
					Pose: pano.Pose{Yaw: 12, Pitch: -7, Roll: 3},
					Lens: pano.Lens{A: 0.01, B: -0.03, C: 0.02, ShiftX: 4, ShiftY: -2, ShearX: 0.001, ShearY: -0.002},
				}
				opts := pano.Options{Width: 800, Height: 600, Projection: outProj, HFOV: 120}

				xf, err := New(desc, opts)
				require.NoError(t, err)
				inv, err := NewInverse(desc, opts, false)
				require.NoError(t, err)

				for _, p := range [][2]float64{{150, 100}, {20, 30}, {280, 180}} {
					x, y, ok := inv.ToOutput(p[0], p[1])
					require.True(t, ok)
					sx, sy, ok := xf.ToSource(x, y)
					require.True(t, ok)
					assert.InDelta(t, p[0], sx, 1e-5)
					assert.InDelta(t, p[1], sy, 1e-5)
				}
			})
		}
	}
}

func TestNullifiedRoll(t *testing.T) {
	desc := pano.ImageDescriptor{
		Name: "tilted", Width: 100, Height: 100, Projection: pano.Rectilinear, HFOV: 40,
		Pose: pano.Pose{Yaw: 10, Pitch: 5, Roll: 30},
	}
	opts := equirectOptions(720, 360)

	nulled, err := NewInverse(desc, opts, true)
	require.NoError(t, err)

	flat := desc
	flat.Roll = 0
	want, err := NewInverse(flat, opts, false)
	require.NoError(t, err)

	x1, y1, _ := nulled.ToOutput(10, 90)
	x2, y2, _ := want.ToOutput(10, 90)
	assert.InDelta(t, x2, x1, tolerance)
	assert.InDelta(t, y2, y1, tolerance)
}

func TestUnsupportedConfigurations(t *testing.T) {
	opts := equirectOptions(360, 180)
	tests := []struct {
		name string
		desc pano.ImageDescriptor
		opts pano.Options
	}{
		{"wide rectilinear", pano.ImageDescriptor{Width: 10, Height: 10, Projection: pano.Rectilinear, HFOV: 200}, opts},
		{"no size", pano.ImageDescriptor{Projection: pano.Fisheye, HFOV: 180}, opts},
		{"unknown projection", pano.ImageDescriptor{Width: 10, Height: 10, Projection: 42, HFOV: 50}, opts},
		{"degenerate shear", pano.ImageDescriptor{Width: 10, Height: 10, Projection: pano.Fisheye, HFOV: 50,
			Lens: pano.Lens{ShearX: 1, ShearY: 1}}, opts},
		{"bad output", pano.ImageDescriptor{Width: 10, Height: 10, Projection: pano.Fisheye, HFOV: 50},
			pano.Options{Width: 10, Height: 10, Projection: pano.Rectilinear, HFOV: 180}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.desc, tt.opts)
			assert.True(t, errors.Is(err, pano.ErrUnsupported), "got %v", err)
		})
	}
}

func TestRotationTool(t *testing.T) {
	r, err := NewRotation(360, 180, pano.Pose{Yaw: 90})
	require.NoError(t, err)

	sx, sy, ok := r.ToSource(269.5, 89.5)
	require.True(t, ok)
	assert.InDelta(t, 179.5, sx, tolerance)
	assert.InDelta(t, 89.5, sy, tolerance)
}

func TestAffineTools(t *testing.T) {
	p := Placement(100, 20)
	sx, sy, ok := p.ToSource(105, 27)
	assert.True(t, ok)
	assert.Equal(t, 5.0, sx)
	assert.Equal(t, 7.0, sy)

	a, err := NewAffine(emath.Identity().Translate(100, 20))
	require.NoError(t, err)
	sx, sy, _ = a.ToSource(105, 27)
	assert.InDelta(t, 5.0, sx, tolerance)
	assert.InDelta(t, 7.0, sy, tolerance)

	_, err = NewAffine(emath.Aff3{})
	assert.Error(t, err)

	x, y := ImageToCartesian(11, 5).Apply(0, 0)
	assert.InDelta(t, -5.0, x, tolerance)
	assert.InDelta(t, 2.0, y, tolerance)
	bx, by := CartesianToImage(11, 5).Apply(x, y)
	assert.InDelta(t, 0.0, bx, tolerance)
	assert.InDelta(t, 0.0, by, tolerance)
}

func TestPhotometric(t *testing.T) {
	desc := pano.ImageDescriptor{Width: 100, Height: 100, ExposureValue: 1}
	opts := pano.Options{ExposureValue: 2}
	assert.Nil(t, NewPhotometric(pano.ImageDescriptor{Width: 10, Height: 10}, pano.Options{}))

	p := NewPhotometric(desc, opts)
	c := p.Correct(49.5, 49.5, hdrcolor.RGB{R: 0.25, G: 0.5, B: 0})
	assert.InDelta(t, 0.5, c.R, tolerance)
	assert.InDelta(t, 1.0, c.G, tolerance)

	desc.ExposureValue = 2
	desc.Vignetting = pano.Vignetting{B: -0.5}
	p = NewPhotometric(desc, opts)
	centre := p.Correct(49.5, 49.5, hdrcolor.RGB{R: 0.5})
	corner := p.Correct(-0.5, -0.5, hdrcolor.RGB{R: 0.5})
	assert.InDelta(t, 0.5, centre.R, tolerance)
	assert.InDelta(t, 1.0, corner.R, tolerance) // v(1) = 0.5
	assert.False(t, math.IsNaN(corner.G))
}
