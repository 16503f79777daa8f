// Package remap resamples one source image onto a region of the panorama
// canvas, producing pixels plus a validity mask.
package remap

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/abworrall/panostitch/pkg/interp"
	"github.com/abworrall/panostitch/pkg/pano"
	"github.com/abworrall/panostitch/pkg/ptransform"
	"github.com/abworrall/panostitch/pkg/roi"
)

type Options struct {
	Workers        int  // 0 means runtime.NumCPU
	UseSourceAlpha bool // require a fully opaque neighbourhood in the source
	Photometric    *ptransform.Photometric
	MaxPixels      int // 0 means pano.DefaultMaxPixels
}

// Remapped is one source image rendered in panorama coordinates. ROI is
// the bounding box of its valid pixels, and is empty when nothing of the
// source landed in the requested region.
type Remapped struct {
	Name  string
	Image *pano.Image
	Alpha *pano.Mask
	ROI   roi.Rect
}

// Valid reports whether the remapped image holds a pixel at canvas
// position (x,y).
func (r *Remapped) Valid(x, y int) bool {
	return r.ROI.ContainsPoint(x, y) && r.Alpha.Valid(x, y)
}

func (r *Remapped) Empty() bool { return r.ROI.Empty() }

type rowJob struct {
	Y int
}

// Remap renders src over outROI. A pixel is valid when the mapper lands
// it at least the kernel's half-support inside the source (and, with
// UseSourceAlpha, the sampled neighbourhood is opaque). Pixels off the
// source are simply invalid; the only errors are oversized buffers.
func Remap(src *pano.Source, m ptransform.Mapper, k interp.Kernel, outROI roi.Rect, opts Options) (*Remapped, error) {
	out := &Remapped{}
	if outROI.Empty() || src == nil || src.Width() == 0 || src.Height() == 0 {
		return out, nil
	}

	img, err := pano.NewImageLimit(outROI, opts.MaxPixels)
	if err != nil {
		return nil, fmt.Errorf("remap: %w", err)
	}
	alpha, err := pano.NewMaskLimit(outROI, opts.MaxPixels)
	if err != nil {
		return nil, fmt.Errorf("remap: %w", err)
	}

	sampler := interp.NewSampler(k, src, opts.UseSourceAlpha)
	margin := float64(sampler.Margin())
	maxX := float64(src.Width()) - margin
	maxY := float64(src.Height()) - margin

	// Each worker owns whole rows, so there is nothing to lock
	renderRow := func(y int) {
		for x := outROI.Left; x < outROI.Right; x++ {
			sx, sy, ok := m.ToSource(float64(x), float64(y))
			if !ok || sx < margin || sy < margin || sx >= maxX || sy >= maxY {
				continue
			}
			c, ok := sampler.Sample(sx, sy)
			if !ok {
				continue
			}
			img.SetRGB(x, y, opts.Photometric.Correct(sx, sy, c))
			alpha.Set(x, y, true)
		}
	}

	nWorkers := opts.Workers
	if nWorkers <= 0 {
		nWorkers = runtime.NumCPU()
	}

	var wg sync.WaitGroup
	jobsChan := make(chan rowJob, outROI.Height())
	for i := 0; i < nWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobsChan {
				renderRow(job.Y)
			}
		}()
	}
	for y := outROI.Top; y < outROI.Bottom; y++ {
		jobsChan <- rowJob{Y: y}
	}
	close(jobsChan)
	wg.Wait()

	out.ROI = alpha.ValidBounds()
	if out.ROI.Empty() {
		return out, nil
	}
	if out.ROI == outROI {
		out.Image, out.Alpha = img, alpha
	} else {
		out.Image, out.Alpha = img.Crop(out.ROI), alpha.Crop(out.ROI)
	}
	return out, nil
}
