// Package project reads a stitching project (YAML plus image files) and
// writes the results out.
package project

import (
	"fmt"
	"io/ioutil"
	"log"
	"path/filepath"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mdouchement/hdr/hdrcolor"
	"gopkg.in/yaml.v2"

	"github.com/abworrall/panostitch/pkg/pano"
	"github.com/abworrall/panostitch/pkg/roi"
)

// Output modes
const (
	ModeCanvas   = "canvas"   // one stitched image
	ModePerImage = "perimage" // one file per remapped image
	ModeLayers   = "layers"   // one masked layer per image, all the same size
)

type OutputConfig struct {
	Width          int
	Height         int
	Projection     string
	HFOV           float64
	ROI            []int `yaml:",flow"` // left, top, right, bottom; empty for the whole canvas
	Blend          string
	Mode           string
	Interpolator   string
	ExposureValue  float64
	Background     string // #rrggbb
	UseSourceAlpha bool
	Workers        int

	Filename     string // extension picks the format: .png, .tif, .hdr
	PreviewWidth int    // if >0, also write a scaled down PNG
	Tonemapper   string // how the preview squeezes HDR values into range; see ListTonemappers
	CropToROI    bool   // write only the part of the canvas that got covered
	DebugDir     string
}

type ImageConfig struct {
	Filename      string
	Projection    string
	HFOV          float64 // 0 means work it out from EXIF
	Yaw           float64
	Pitch         float64
	Roll          float64
	Lens          pano.Lens
	Vignetting    pano.Vignetting
	ExposureValue float64
	Offset        []float64 `yaml:",flow"` // if set, x,y placement on a flat canvas; no projection at all
}

type Config struct {
	Verbosity int
	Output    OutputConfig
	Images    []ImageConfig

	BaseDir string `yaml:"-"` // relative image filenames are relative to this
}

func NewConfig() Config {
	return Config{
		Output: OutputConfig{
			Projection: "equirectangular",
			HFOV:       360,
			Mode:       ModeCanvas,
			Filename:   "pano.png",
		},
	}
}

func NewConfigFromYaml(b []byte) (Config, error) {
	c := NewConfig()
	err := yaml.Unmarshal(b, &c)
	return c, err
}

func LoadConfig(filename string) (Config, error) {
	contents, err := ioutil.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("config read %s: %v", filename, err)
	}
	c, err := NewConfigFromYaml(contents)
	if err != nil {
		return Config{}, fmt.Errorf("config parse %s: %v", filename, err)
	}
	c.BaseDir = filepath.Dir(filename)
	return c, nil
}

func (c Config) AsYaml() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		log.Fatalf("Can't marshal config yaml: %v\n", err)
	}
	return string(b)
}

// Options turns the output section into engine options.
func (c Config) Options() (pano.Options, error) {
	o := c.Output
	opts := pano.Options{
		Width:          o.Width,
		Height:         o.Height,
		HFOV:           o.HFOV,
		Interpolator:   o.Interpolator,
		ExposureValue:  o.ExposureValue,
		UseSourceAlpha: o.UseSourceAlpha,
		Workers:        o.Workers,
		Verbosity:      c.Verbosity,
	}

	var err error
	if opts.Projection, err = pano.ParseProjection(o.Projection); err != nil {
		return opts, fmt.Errorf("output: %w", err)
	}
	if opts.Blend, err = pano.ParseBlendMode(o.Blend); err != nil {
		return opts, fmt.Errorf("output: %w", err)
	}
	if opts.Background, err = ParseColour(o.Background); err != nil {
		return opts, fmt.Errorf("output: %w", err)
	}

	switch len(o.ROI) {
	case 0:
	case 4:
		opts.ROI = roi.New(o.ROI[0], o.ROI[1], o.ROI[2], o.ROI[3])
	default:
		return opts, fmt.Errorf("output roi %v wants left,top,right,bottom: %w", o.ROI, pano.ErrUnsupported)
	}

	switch o.Mode {
	case "", ModeCanvas, ModePerImage, ModeLayers:
	default:
		return opts, fmt.Errorf("output mode %q: %w", o.Mode, pano.ErrUnsupported)
	}

	knownTonemapper := o.Tonemapper == ""
	for _, name := range Tonemappers {
		knownTonemapper = knownTonemapper || name == o.Tonemapper
	}
	if !knownTonemapper {
		return opts, fmt.Errorf("tonemapper %q: %w", o.Tonemapper, pano.ErrUnsupported)
	}

	return opts, opts.Validate()
}

// ParseColour reads a #rrggbb colour into linear RGB; the empty string
// is black.
func ParseColour(s string) (hdrcolor.RGB, error) {
	if s == "" {
		return hdrcolor.RGB{}, nil
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return hdrcolor.RGB{}, fmt.Errorf("colour %q: %v: %w", s, err, pano.ErrUnsupported)
	}
	r, g, b := c.LinearRgb()
	return hdrcolor.RGB{R: r, G: g, B: b}, nil
}

// Descriptor builds the descriptor for an image whose pixels are w x h.
func (ic ImageConfig) Descriptor(w, h int) (pano.ImageDescriptor, error) {
	d := pano.ImageDescriptor{
		Name:          filepath.Base(ic.Filename),
		Width:         w,
		Height:        h,
		HFOV:          ic.HFOV,
		Pose:          pano.Pose{Yaw: ic.Yaw, Pitch: ic.Pitch, Roll: ic.Roll},
		Lens:          ic.Lens,
		Vignetting:    ic.Vignetting,
		ExposureValue: ic.ExposureValue,
	}
	if ic.Projection == "" {
		d.Projection = pano.Rectilinear
	} else {
		p, err := pano.ParseProjection(ic.Projection)
		if err != nil {
			return d, fmt.Errorf("image %s: %w", ic.Filename, err)
		}
		d.Projection = p
	}
	return d, nil
}
