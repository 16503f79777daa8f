package compose

import (
	"fmt"
	"image"
	"log"
	"path/filepath"
	"time"

	"github.com/abworrall/panostitch/pkg/emath"
	"github.com/abworrall/panostitch/pkg/interp"
	"github.com/abworrall/panostitch/pkg/pano"
	"github.com/abworrall/panostitch/pkg/ptransform"
	"github.com/abworrall/panostitch/pkg/remap"
)

// An Input is one image to stitch.
type Input struct {
	Desc   pano.ImageDescriptor
	Source *pano.Source
	Mapper ptransform.Mapper // if nil, built from Desc and the output options
}

// Engine runs a stitch. Everything but Options is optional.
type Engine struct {
	Options  pano.Options
	Strategy Strategy     // nil picks one from Options.Blend
	Progress ProgressSink // may be nil
	Order    []int        // nil means EstimateBlendOrder
	DebugDir string       // where Verbosity>1 debug images go

	Stats *Stats // filled in by Stitch
}

type prepared struct {
	inputs   []Input
	mappers  []ptransform.Mapper
	photo    []*ptransform.Photometric
	kernel   interp.Kernel
	strategy Strategy
}

// prepare checks everything that could make the stitch fail for
// configuration reasons, before any pixel gets touched.
func (e *Engine) prepare(inputs []Input) (*prepared, error) {
	opts := e.Options
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	p := &prepared{inputs: inputs, strategy: e.Strategy}
	var err error
	if p.kernel, err = interp.Lookup(opts.Interpolator); err != nil {
		return nil, err
	}
	if p.strategy == nil {
		debugDir := ""
		if opts.Verbosity > 1 {
			debugDir = e.DebugDir
		}
		if p.strategy, err = NewStrategy(opts.Blend, debugDir); err != nil {
			return nil, err
		}
	}

	for i, in := range inputs {
		if in.Source == nil {
			return nil, fmt.Errorf("image %d (%s) has no pixels: %w", i, in.Desc.Name, pano.ErrUnsupported)
		}
		m := in.Mapper
		if m == nil {
			if in.Desc.Width != in.Source.Width() || in.Desc.Height != in.Source.Height() {
				return nil, fmt.Errorf("image %s is %dx%d, but its descriptor says %dx%d: %w", in.Desc.Name,
					in.Source.Width(), in.Source.Height(), in.Desc.Width, in.Desc.Height, pano.ErrUnsupported)
			}
			xf, err := ptransform.New(in.Desc, opts)
			if err != nil {
				return nil, fmt.Errorf("image %s: %w", in.Desc.Name, err)
			}
			m = xf
		}
		p.mappers = append(p.mappers, m)
		p.photo = append(p.photo, ptransform.NewPhotometric(in.Desc, opts))
	}

	if e.Order != nil {
		if err := checkOrder(e.Order, len(inputs)); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func checkOrder(order []int, n int) error {
	seen := make([]bool, n)
	for _, i := range order {
		if i < 0 || i >= n || seen[i] {
			return fmt.Errorf("blend order %v for %d images: %w", order, n, pano.ErrUnsupported)
		}
		seen[i] = true
	}
	if len(order) != n {
		return fmt.Errorf("blend order %v for %d images: %w", order, n, pano.ErrUnsupported)
	}
	return nil
}

// Stitch remaps every input and folds it into a new accumulator. An empty
// accumulator ROI afterwards means nothing landed on the canvas, which is
// not an error. Any error aborts the whole stitch, and no accumulator is
// returned.
func (e *Engine) Stitch(inputs []Input) (*Accumulator, error) {
	p, err := e.prepare(inputs)
	if err != nil {
		return nil, err
	}
	opts := e.Options
	outROI := opts.OutputROI()

	acc, err := NewAccumulator(outROI, opts.Background, opts.PixelLimit())
	if err != nil {
		return nil, fmt.Errorf("panorama: %w", err)
	}
	e.Stats = NewStats()

	order := e.Order
	if order == nil {
		sizes := []image.Point{}
		for _, in := range inputs {
			sizes = append(sizes, image.Point{in.Source.Width(), in.Source.Height()})
		}
		var counts *emath.FloatGrid
		order, counts = EstimateBlendOrder(p.mappers, sizes, outROI)
		if opts.Verbosity > 1 && e.DebugDir != "" && counts != nil {
			if err := counts.ToImg("images per cell", filepath.Join(e.DebugDir, "coverage.png")); err != nil {
				log.Printf("coverage dump: %v\n", err)
			}
		}
	}
	if opts.Verbosity > 0 {
		log.Printf("stitch: %d images onto %s, blend order %v\n", len(inputs), outROI, order)
	}

	ropts := remap.Options{Workers: opts.Workers, UseSourceAlpha: opts.UseSourceAlpha, MaxPixels: opts.PixelLimit()}
	for n, i := range order {
		in := inputs[i]
		ropts.Photometric = p.photo[i]

		tStart := time.Now()
		r, err := remap.Remap(in.Source, p.mappers[i], p.kernel, outROI, ropts)
		if err != nil {
			return nil, fmt.Errorf("remap %s: %w", in.Desc.Name, err)
		}
		r.Name = in.Desc.Name
		valid := 0
		if !r.Empty() {
			valid = r.Alpha.Count()
		}
		e.Stats.recordRemap(time.Since(tStart), valid)

		if opts.Verbosity > 0 {
			log.Printf("stitch: [%d/%d] %s -> %s (%d valid pixels, %s)\n", n+1, len(order), in.Desc.Name,
				r.ROI, valid, time.Since(tStart))
		}

		if err := p.strategy.Accept(r, acc); err != nil {
			return nil, err
		}
		report(e.Progress, float64(n+1)/float64(len(order)))
	}
	if len(order) == 0 {
		report(e.Progress, 1)
	}

	if b, ok := p.strategy.(*Blended); ok {
		e.Stats.Seams = b.nSeams
	}
	if outROI.Area() > 0 {
		e.Stats.Coverage = float64(acc.Alpha.Count()) / float64(outROI.Area())
	}
	if opts.Verbosity > 0 {
		log.Printf("stitch: %s\n", e.Stats)
	}

	return acc, nil
}
