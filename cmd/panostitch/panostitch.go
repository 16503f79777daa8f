package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/abworrall/panostitch/pkg/compose"
	"github.com/abworrall/panostitch/pkg/interp"
	"github.com/abworrall/panostitch/pkg/project"
)

var (
	fVerbosity      int
	fWidth          int
	fHeight         int
	fProjection     string
	fHFOV           float64
	fBlend          string
	fMode           string
	fInterpolator   string
	fOutput         string
	fPreviewWidth   int
	fTonemapper     string
	fCropToROI      bool
	fUseSourceAlpha bool
	fWorkers        int
	fDebugDir       string
)

func init() {
	flag.IntVar(&fVerbosity, "v", 0, "how verbose to get (2 dumps debug images)")
	flag.IntVar(&fWidth, "width", 0, "width of the output canvas, in pixels")
	flag.IntVar(&fHeight, "height", 0, "height of the output canvas, in pixels")
	flag.StringVar(&fProjection, "projection", "", "output projection: rectilinear, cylindrical, equirectangular, fisheye, stereographic, mercator")
	flag.Float64Var(&fHFOV, "hfov", 0, "horizontal field of view of the output, in degrees")
	flag.StringVar(&fBlend, "blend", "", "how to combine overlapping images: seam, direct")
	flag.StringVar(&fMode, "mode", "", "what to write: canvas, perimage, layers")
	flag.StringVar(&fInterpolator, "interp", "", "interpolation kernel: "+interp.ListKernels())
	flag.StringVar(&fOutput, "o", "", "output filename (.png, .tif, .hdr)")
	flag.IntVar(&fPreviewWidth, "preview", 0, "also write a preview PNG this many pixels wide")
	flag.StringVar(&fTonemapper, "tonemapper", "", "how to tonemap the preview: "+project.ListTonemappers())
	flag.BoolVar(&fCropToROI, "crop", false, "crop the canvas to the area covered by images")
	flag.BoolVar(&fUseSourceAlpha, "alpha", false, "respect the alpha channel of the source images")
	flag.IntVar(&fWorkers, "workers", 0, "remap goroutines (0 means one per CPU)")
	flag.StringVar(&fDebugDir, "debugdir", "", "where to write debug images")
	flag.Parse()

	log.Printf("panostitch starting\n")
}

// applyFlags copies over the flags that were given on the command line,
// so they override the project file.
func applyFlags(c *project.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "v":
			c.Verbosity = fVerbosity
		case "width":
			c.Output.Width = fWidth
		case "height":
			c.Output.Height = fHeight
		case "projection":
			c.Output.Projection = fProjection
		case "hfov":
			c.Output.HFOV = fHFOV
		case "blend":
			c.Output.Blend = fBlend
		case "mode":
			c.Output.Mode = fMode
		case "interp":
			c.Output.Interpolator = fInterpolator
		case "o":
			c.Output.Filename = fOutput
		case "preview":
			c.Output.PreviewWidth = fPreviewWidth
		case "tonemapper":
			c.Output.Tonemapper = fTonemapper
		case "crop":
			c.Output.CropToROI = fCropToROI
		case "alpha":
			c.Output.UseSourceAlpha = fUseSourceAlpha
		case "workers":
			c.Output.Workers = fWorkers
		case "debugdir":
			c.Output.DebugDir = fDebugDir
		}
	})
}

func main() {
	cfg := project.NewConfig()
	if err := cfg.LoadFilesAndDirs(flag.Args()...); err != nil {
		log.Fatal(err)
	}
	applyFlags(&cfg)

	if cfg.Verbosity > 0 {
		log.Printf("Final configuration:-\n\n%s\n", cfg.AsYaml())
	}

	opts, err := cfg.Options()
	if err != nil {
		log.Fatalf("bad configuration: %v", err)
	}
	if cfg.Output.DebugDir != "" {
		if err := os.MkdirAll(cfg.Output.DebugDir, 0755); err != nil {
			log.Fatal(err)
		}
	}

	inputs, err := cfg.LoadInputs(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	e := compose.Engine{
		Options:  opts,
		Progress: compose.LogProgress{Prefix: "stitch"},
		DebugDir: cfg.Output.DebugDir,
	}

	var layers *compose.Layers
	switch cfg.Output.Mode {
	case project.ModePerImage:
		e.Strategy = &compose.PerImage{Emit: cfg.Output.PerImageWriter()}
	case project.ModeLayers:
		layers = &compose.Layers{}
		e.Strategy = layers
	}

	acc, err := e.Stitch(inputs)
	if err != nil {
		log.Fatalf("stitch failed: %v", err)
	}
	if acc.Empty() {
		log.Printf("none of the %d images landed on the canvas\n", len(inputs))
	}

	switch cfg.Output.Mode {
	case project.ModePerImage:
		// already written, one by one
	case project.ModeLayers:
		err = cfg.Output.WriteLayers(layers.Layers, acc.Bounds())
	default:
		err = cfg.Output.WriteCanvas(acc)
	}
	if err != nil {
		log.Fatal(err)
	}
}
