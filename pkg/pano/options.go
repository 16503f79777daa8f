package pano

import (
	"fmt"
	"strings"

	"github.com/mdouchement/hdr/hdrcolor"

	"github.com/abworrall/panostitch/pkg/roi"
)

// BlendMode picks how overlapping images are combined on the canvas.
type BlendMode int

const (
	BlendSeam   BlendMode = iota // nearest-feature seam between images
	BlendDirect                  // later images simply overwrite earlier ones
)

func (b BlendMode) String() string {
	switch b {
	case BlendSeam:
		return "seam"
	case BlendDirect:
		return "direct"
	}
	return fmt.Sprintf("blend(%d)", int(b))
}

func ParseBlendMode(name string) (BlendMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "seam":
		return BlendSeam, nil
	case "direct":
		return BlendDirect, nil
	}
	return 0, fmt.Errorf("blend mode %q: %w", name, ErrUnsupported)
}

// Options describe the output panorama.
type Options struct {
	Width      int
	Height     int
	Projection Projection
	HFOV       float64
	ROI        roi.Rect // empty means the whole canvas

	Blend          BlendMode
	Interpolator   string  // see interp.Lookup
	ExposureValue  float64 // the EV the output is normalised to
	Background     hdrcolor.RGB
	UseSourceAlpha bool // only sample where the source neighbourhood is fully opaque

	Workers   int // remap worker goroutines; 0 means runtime.NumCPU
	MaxPixels int // cap on any one buffer; 0 means DefaultMaxPixels
	Verbosity int
}

// PixelLimit is the effective cap on buffer sizes.
func (o Options) PixelLimit() int { return limit(o.MaxPixels) }

func (o Options) Canvas() roi.Rect { return roi.Sized(0, 0, o.Width, o.Height) }

// OutputROI is the part of the canvas that gets rendered.
func (o Options) OutputROI() roi.Rect {
	if o.ROI.Empty() {
		return o.Canvas()
	}
	return o.ROI.Intersect(o.Canvas())
}

// Validate checks whole-operation preconditions, so that a stitch never
// fails halfway through for configuration reasons.
func (o Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("canvas %dx%d: %w", o.Width, o.Height, ErrUnsupported)
	}
	if o.Width*o.Height > o.PixelLimit() {
		return fmt.Errorf("canvas %dx%d: %w", o.Width, o.Height, ErrCanvasTooLarge)
	}
	if !o.Projection.Valid() {
		return fmt.Errorf("output: %v: %w", o.Projection, ErrUnsupported)
	}
	if o.HFOV <= 0 || o.HFOV > o.Projection.MaxHFOV() {
		return fmt.Errorf("output hfov %.1f for %s: %w", o.HFOV, o.Projection, ErrUnsupported)
	}
	if o.Blend != BlendSeam && o.Blend != BlendDirect {
		return fmt.Errorf("output: %v: %w", o.Blend, ErrUnsupported)
	}
	if !o.ROI.Empty() && o.OutputROI().Empty() {
		return fmt.Errorf("output roi %s lies outside the canvas: %w", o.ROI, ErrUnsupported)
	}
	return nil
}
