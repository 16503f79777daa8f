package roi

// Integer rectangle arithmetic for regions of interest on the panorama
// canvas. Right and Bottom are exclusive, so a Rect with zero width or
// height holds no pixels.

import (
	"fmt"
	"image"
)

type Rect struct {
	Left, Top, Right, Bottom int
}

// New returns the rectangle spanning [left,right) x [top,bottom). Swapped
// corners are put back in order.
func New(left, top, right, bottom int) Rect {
	if right < left {
		left, right = right, left
	}
	if bottom < top {
		top, bottom = bottom, top
	}
	return Rect{Left: left, Top: top, Right: right, Bottom: bottom}
}

// Sized returns the w x h rectangle whose upper left corner is (x, y).
func Sized(x, y, w, h int) Rect { return New(x, y, x+w, y+h) }

func FromImage(r image.Rectangle) Rect { return New(r.Min.X, r.Min.Y, r.Max.X, r.Max.Y) }

func (r Rect) Image() image.Rectangle { return image.Rect(r.Left, r.Top, r.Right, r.Bottom) }

func (r Rect) Width() int  { return r.Right - r.Left }
func (r Rect) Height() int { return r.Bottom - r.Top }

func (r Rect) Size() image.Point       { return image.Point{r.Width(), r.Height()} }
func (r Rect) UpperLeft() image.Point  { return image.Point{r.Left, r.Top} }
func (r Rect) LowerRight() image.Point { return image.Point{r.Right, r.Bottom} }
func (r Rect) Area() int               { return r.Width() * r.Height() }

func (r Rect) Empty() bool { return r.Left >= r.Right || r.Top >= r.Bottom }

func (r Rect) String() string {
	return fmt.Sprintf("[%d,%d -> %d,%d (%dx%d)]", r.Left, r.Top, r.Right, r.Bottom, r.Width(), r.Height())
}

// Translate moves the rectangle by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	return Rect{r.Left + dx, r.Top + dy, r.Right + dx, r.Bottom + dy}
}

// Intersect returns the overlap of r and s. Disjoint rectangles give the
// zero Rect.
func (r Rect) Intersect(s Rect) Rect {
	out := Rect{
		Left:   maxInt(r.Left, s.Left),
		Top:    maxInt(r.Top, s.Top),
		Right:  minInt(r.Right, s.Right),
		Bottom: minInt(r.Bottom, s.Bottom),
	}
	if out.Empty() {
		return Rect{}
	}
	return out
}

// Unite returns the smallest rectangle holding both r and s. Empty
// rectangles do not contribute, wherever they sit.
func (r Rect) Unite(s Rect) Rect {
	switch {
	case r.Empty():
		return s
	case s.Empty():
		return r
	}
	return Rect{
		Left:   minInt(r.Left, s.Left),
		Top:    minInt(r.Top, s.Top),
		Right:  maxInt(r.Right, s.Right),
		Bottom: maxInt(r.Bottom, s.Bottom),
	}
}

// Contains reports whether every pixel of s lies in r. The empty rectangle
// is contained by everything.
func (r Rect) Contains(s Rect) bool {
	if s.Empty() {
		return true
	}
	return s.Left >= r.Left && s.Top >= r.Top && s.Right <= r.Right && s.Bottom <= r.Bottom
}

func (r Rect) ContainsPoint(x, y int) bool {
	return x >= r.Left && x < r.Right && y >= r.Top && y < r.Bottom
}

// Borders returns the parts of outer not covered by inner, as up to four
// non-overlapping strips: above, left, right, below. inner is clipped to
// outer first.
func Borders(outer, inner Rect) []Rect {
	inner = outer.Intersect(inner)
	if inner.Empty() {
		if outer.Empty() {
			return nil
		}
		return []Rect{outer}
	}

	candidates := []Rect{
		{outer.Left, outer.Top, outer.Right, inner.Top},       // above
		{outer.Left, inner.Top, inner.Left, inner.Bottom},     // left
		{inner.Right, inner.Top, outer.Right, inner.Bottom},   // right
		{outer.Left, inner.Bottom, outer.Right, outer.Bottom}, // below
	}

	strips := []Rect{}
	for _, c := range candidates {
		if !c.Empty() {
			strips = append(strips, c)
		}
	}
	return strips
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
