package compose

import (
	"fmt"
	"log"

	"github.com/abworrall/panostitch/pkg/pano"
	"github.com/abworrall/panostitch/pkg/remap"
	"github.com/abworrall/panostitch/pkg/roi"
	"github.com/abworrall/panostitch/pkg/seam"
)

// A Strategy decides what happens to each remapped image. Images arrive
// in blend order, and a strategy may read and write the accumulator.
type Strategy interface {
	Accept(r *remap.Remapped, acc *Accumulator) error
}

// NewStrategy returns the canvas strategy for a blend mode.
func NewStrategy(mode pano.BlendMode, debugDir string) (Strategy, error) {
	switch mode {
	case pano.BlendSeam:
		return &Blended{DebugDir: debugDir}, nil
	case pano.BlendDirect:
		return Direct{}, nil
	}
	return nil, fmt.Errorf("strategy for %v: %w", mode, pano.ErrUnsupported)
}

// Blended places a seam through each overlap, so every canvas pixel comes
// from exactly one image.
type Blended struct {
	DebugDir string // if set, each seam gets dumped there

	nSeams int
}

func (b *Blended) Accept(r *remap.Remapped, acc *Accumulator) error {
	if r.Empty() {
		return nil
	}
	imgROI := r.ROI
	defer func() { acc.ROI = acc.ROI.Unite(imgROI) }()

	isect := imgROI.Intersect(acc.ROI)
	if isect.Empty() || !overlaps(acc.Alpha, r.Alpha, isect) {
		acc.place(r, imgROI, nil)
		return nil
	}

	keep, take, err := seam.Transform(acc.Alpha.Crop(isect), r.Alpha.Crop(isect))
	if err != nil {
		return fmt.Errorf("seam for %s over %s: %w", r.Name, isect, err)
	}
	b.nSeams++
	if b.DebugDir != "" {
		if err := dumpSeam(b.DebugDir, b.nSeams, r.Name, keep, take); err != nil {
			log.Printf("seam dump: %v\n", err)
		}
	}

	// The pixels the accumulator keeps are already in place
	acc.place(r, isect, take)
	for _, strip := range roi.Borders(imgROI, isect) {
		acc.place(r, strip, nil)
	}
	return nil
}

// overlaps reports whether both masks hold a valid pixel somewhere in r.
func overlaps(a, b *pano.Mask, r roi.Rect) bool {
	for y := r.Top; y < r.Bottom; y++ {
		for x := r.Left; x < r.Right; x++ {
			if a.Valid(x, y) && b.Valid(x, y) {
				return true
			}
		}
	}
	return false
}

// Direct copies each image over the canvas; later images win.
type Direct struct{}

func (Direct) Accept(r *remap.Remapped, acc *Accumulator) error {
	if r.Empty() {
		return nil
	}
	acc.place(r, r.ROI, nil)
	acc.ROI = acc.ROI.Unite(r.ROI)
	return nil
}

// PerImage hands each remapped image to Emit (typically a file writer)
// rather than merging them. The accumulator only tracks the footprint.
type PerImage struct {
	Emit func(index int, r *remap.Remapped) error

	n int
}

func (p *PerImage) Accept(r *remap.Remapped, acc *Accumulator) error {
	p.n++
	if r.Empty() {
		return nil
	}
	if err := p.Emit(p.n-1, r); err != nil {
		return fmt.Errorf("emit %s: %w", r.Name, err)
	}
	acc.ROI = acc.ROI.Unite(r.ROI)
	return nil
}

// Layers keeps every remapped image, each with its own mask, for layered
// output. Empty remaps are kept too, so Layers lines up with blend order.
type Layers struct {
	Layers []*remap.Remapped
}

func (l *Layers) Accept(r *remap.Remapped, acc *Accumulator) error {
	l.Layers = append(l.Layers, r)
	acc.ROI = acc.ROI.Unite(r.ROI)
	return nil
}
