// Package seam splits the overlap of two images between them, giving
// each pixel to whichever image has the nearer exclusive pixel.
//
// The exclusive pixels (valid in one mask but not the other) are the
// features. A squared Euclidean distance transform runs in four passes:
// down and up each column, then left and right along each row over a
// lower envelope of parabolas. Every pixel ends up coloured with the
// owner of its nearest feature.
package seam

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/abworrall/panostitch/pkg/emath"
	"github.com/abworrall/panostitch/pkg/pano"
)

const (
	none uint8 = iota // no feature anywhere in the rectangle
	ownerA
	ownerB
)

// A field is the working state of one transform.
type field struct {
	w, h   int
	dist   emath.FloatGrid // squared distance to the nearest feature found so far
	colour []uint8
}

// Transform splits the pixels of a and b, which must share a rectangle,
// into two disjoint masks whose union is the union of a and b. Ties go to
// the feature above, then to the feature on the left; if the masks agree
// everywhere the whole overlap goes to a.
func Transform(a, b *pano.Mask) (outA, outB *pano.Mask, err error) {
	f, err := run(a, b)
	if err != nil {
		return nil, nil, err
	}

	if outA, err = pano.NewMask(a.Rect); err != nil {
		return nil, nil, err
	}
	if outB, err = pano.NewMask(a.Rect); err != nil {
		return nil, nil, err
	}
	for i, c := range f.colour {
		// Only keep pixels the image really covers
		switch {
		case c != ownerB && a.Pix[i] != pano.Invalid:
			outA.Pix[i] = pano.Valid
		case c == ownerB && b.Pix[i] != pano.Invalid:
			outB.Pix[i] = pano.Valid
		}
	}
	return outA, outB, nil
}

// Distances returns the squared distance from every pixel to the nearest
// feature, +Inf when there are none. Handy for looking at a seam.
func Distances(a, b *pano.Mask) (*emath.FloatGrid, error) {
	f, err := run(a, b)
	if err != nil {
		return nil, err
	}
	return &f.dist, nil
}

func run(a, b *pano.Mask) (*field, error) {
	if a.Rect != b.Rect {
		return nil, fmt.Errorf("seam: masks cover %s and %s: %w", a.Rect, b.Rect, pano.ErrUnsupported)
	}
	w, h := a.Rect.Width(), a.Rect.Height()
	if w*h > pano.DefaultMaxPixels {
		return nil, fmt.Errorf("seam %s: %w", a.Rect, pano.ErrCanvasTooLarge)
	}

	f := &field{w: w, h: h, dist: emath.NewFloatGrid(w, h), colour: make([]uint8, w*h)}
	if w == 0 || h == 0 {
		return f, nil
	}

	// Passes 1 and 2 only look along a column, passes 3 and 4 only along a
	// row, so each pair can run in parallel across its lines.
	parallel(w, func(x int) { f.columnPasses(a, b, x) })
	parallel(h, func(y int) { f.rowPasses(y) })
	return f, nil
}

func (f *field) columnPasses(a, b *pano.Mask, x int) {
	inf := math.Inf(1)

	// Pass 1, top down: distance to the nearest feature above
	last, lastColour := -1, none
	for y := 0; y < f.h; y++ {
		i := y*f.w + x
		va, vb := a.Pix[i] != pano.Invalid, b.Pix[i] != pano.Invalid
		if va != vb {
			last, lastColour = y, ownerB
			if va {
				lastColour = ownerA
			}
		}
		if last < 0 {
			f.dist.Set(x, y, inf)
			continue
		}
		d := float64(y - last)
		f.dist.Set(x, y, d*d)
		f.colour[i] = lastColour
	}

	// Pass 2, bottom up: a feature below only wins when strictly closer
	last = -1
	for y := f.h - 1; y >= 0; y-- {
		i := y*f.w + x
		va, vb := a.Pix[i] != pano.Invalid, b.Pix[i] != pano.Invalid
		if va != vb {
			last, lastColour = y, ownerB
			if va {
				lastColour = ownerA
			}
		}
		if last < 0 {
			continue
		}
		d := float64(last - y)
		if d*d < f.dist.Get(x, y) {
			f.dist.Set(x, y, d*d)
			f.colour[i] = lastColour
		}
	}
}

func (f *field) rowPasses(y int) {
	n := f.w
	col := make([]float64, n)
	colColour := make([]uint8, n)
	for x := 0; x < n; x++ {
		col[x] = f.dist.Get(x, y)
		colColour[x] = f.colour[y*n+x]
	}

	// Pass 3, left to right over candidates at or left of x
	env := newEnvelope(n)
	for x := 0; x < n; x++ {
		env.add(x, col[x])
		q, d := env.nearest(x)
		if q < 0 {
			f.dist.Set(x, y, math.Inf(1))
			continue
		}
		f.dist.Set(x, y, d)
		f.colour[y*n+x] = colColour[q]
	}

	// Pass 4, right to left over candidates at or right of x, working in
	// mirrored coordinates
	env.reset()
	for x := n - 1; x >= 0; x-- {
		m := n - 1 - x
		env.add(m, col[x])
		q, d := env.nearest(m)
		if q < 0 {
			continue
		}
		if d < f.dist.Get(x, y) {
			f.dist.Set(x, y, d)
			f.colour[y*n+x] = colColour[n-1-q]
		}
	}
}

// An envelope is the lower envelope of the parabolas (x-q)^2 + h[q] for the
// candidates q added so far. Candidates arrive in increasing q and queries
// in increasing x, so both ends only move forward. It never holds more
// than one entry per position, so its size is bounded by the row width.
type envelope struct {
	q []int     // candidate positions on the envelope
	h []float64 // their column distances
	z []float64 // z[k] is where candidate k starts to win
	k int       // query cursor
}

func newEnvelope(n int) *envelope {
	return &envelope{q: make([]int, 0, n), h: make([]float64, 0, n), z: make([]float64, 0, n)}
}

func (e *envelope) reset() {
	e.q, e.h, e.z, e.k = e.q[:0], e.h[:0], e.z[:0], 0
}

func (e *envelope) add(q int, h float64) {
	if math.IsInf(h, 1) {
		return
	}
	s := math.Inf(-1)
	for len(e.q) > 0 {
		top := len(e.q) - 1
		p := e.q[top]
		s = ((h + float64(q*q)) - (e.h[top] + float64(p*p))) / float64(2*(q-p))
		if s > e.z[top] {
			break
		}
		e.q, e.h, e.z = e.q[:top], e.h[:top], e.z[:top]
		s = math.Inf(-1)
	}
	e.q = append(e.q, q)
	e.h = append(e.h, h)
	e.z = append(e.z, s)
	if e.k >= len(e.q) {
		e.k = len(e.q) - 1
	}
}

// nearest returns the candidate closest to x and its squared distance, or
// -1 when there are no candidates. On a tie the earlier candidate wins.
func (e *envelope) nearest(x int) (int, float64) {
	if len(e.q) == 0 {
		return -1, 0
	}
	for e.k < len(e.q)-1 && e.z[e.k+1] < float64(x) {
		e.k++
	}
	dx := float64(x - e.q[e.k])
	return e.q[e.k], dx*dx + e.h[e.k]
}

// parallel calls fn for every line in [0,n), spread across a pool of
// goroutines.
func parallel(n int, fn func(i int)) {
	nWorkers := runtime.NumCPU()
	if nWorkers > n {
		nWorkers = n
	}

	var wg sync.WaitGroup
	jobsChan := make(chan int, n)
	for i := 0; i < nWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for line := range jobsChan {
				fn(line)
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobsChan <- i
	}
	close(jobsChan)
	wg.Wait()
}
