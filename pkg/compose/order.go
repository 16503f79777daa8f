package compose

import (
	"image"

	"github.com/abworrall/panostitch/pkg/emath"
	"github.com/abworrall/panostitch/pkg/ptransform"
	"github.com/abworrall/panostitch/pkg/roi"
)

// The coverage grids used for ordering are at most this many cells wide.
const orderGridCells = 128

// coverage samples, on a coarse grid over r, which cells each image
// lands on.
func coverage(mappers []ptransform.Mapper, sizes []image.Point, r roi.Rect) (grids []emath.FloatGrid, step int) {
	step = r.Width() / orderGridCells
	if h := r.Height() / orderGridCells; h > step {
		step = h
	}
	if step < 1 {
		step = 1
	}
	gw, gh := (r.Width()+step-1)/step, (r.Height()+step-1)/step

	for i, m := range mappers {
		g := emath.NewFloatGrid(gw, gh)
		w, h := float64(sizes[i].X), float64(sizes[i].Y)
		for gy := 0; gy < gh; gy++ {
			for gx := 0; gx < gw; gx++ {
				x := r.Left + gx*step + step/2
				y := r.Top + gy*step + step/2
				if sx, sy, ok := m.ToSource(float64(x), float64(y)); ok && sx >= 0 && sy >= 0 && sx < w && sy < h {
					g.Set(gx, gy, 1)
				}
			}
		}
		grids = append(grids, g)
	}
	return grids, step
}

// EstimateBlendOrder picks the order images get folded into the panorama:
// image 0 first, then repeatedly whichever remaining image overlaps the
// images already placed the most (lowest index on a tie). It also returns
// the coarse grid of how many images cover each cell.
func EstimateBlendOrder(mappers []ptransform.Mapper, sizes []image.Point, r roi.Rect) ([]int, *emath.FloatGrid) {
	if len(mappers) == 0 {
		return nil, nil
	}
	grids, _ := coverage(mappers, sizes, r)

	count := grids[0].NewFromThis()
	for _, g := range grids {
		for y := 0; y < g.Dy(); y++ {
			for x := 0; x < g.Dx(); x++ {
				count.Add(x, y, g.Get(x, y))
			}
		}
	}

	placed := grids[0].Copy()
	order := []int{0}
	used := make([]bool, len(grids))
	used[0] = true

	for len(order) < len(grids) {
		best, bestOverlap := -1, -1.0
		for i, g := range grids {
			if used[i] {
				continue
			}
			overlap := 0.0
			for y := 0; y < g.Dy(); y++ {
				for x := 0; x < g.Dx(); x++ {
					overlap += g.Get(x, y) * placed.Get(x, y)
				}
			}
			if overlap > bestOverlap {
				best, bestOverlap = i, overlap
			}
		}

		order = append(order, best)
		used[best] = true
		g := grids[best]
		for y := 0; y < g.Dy(); y++ {
			for x := 0; x < g.Dx(); x++ {
				if g.Get(x, y) > 0 {
					placed.Set(x, y, 1)
				}
			}
		}
	}

	return order, &count
}
