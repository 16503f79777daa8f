package pano

import (
	"fmt"
	"image"
	"image/color"

	"github.com/abworrall/panostitch/pkg/roi"
)

const (
	Invalid uint8 = 0
	Valid   uint8 = 0xFF
)

// A Mask is an 8-bit validity channel located at Rect. Any non-zero value
// counts as valid.
type Mask struct {
	Rect roi.Rect
	Pix  []uint8
}

func NewMask(r roi.Rect) (*Mask, error) { return NewMaskLimit(r, 0) }

// NewMaskLimit is NewMask with a cap on the buffer size; 0 means
// DefaultMaxPixels.
func NewMaskLimit(r roi.Rect, maxPixels int) (*Mask, error) {
	if r.Empty() {
		return &Mask{}, nil
	}
	if r.Area() > limit(maxPixels) {
		return nil, fmt.Errorf("mask %s: %w", r, ErrCanvasTooLarge)
	}
	return &Mask{Rect: r, Pix: make([]uint8, r.Area())}, nil
}

// Implement image.Image, so masks can be used with image/draw
func (m *Mask) ColorModel() color.Model { return color.AlphaModel }
func (m *Mask) Bounds() image.Rectangle { return m.Rect.Image() }
func (m *Mask) At(x, y int) color.Color {
	if !m.Rect.ContainsPoint(x, y) {
		return color.Alpha{}
	}
	return color.Alpha{A: m.Pix[m.offset(x, y)]}
}

func (m *Mask) offset(x, y int) int {
	return (y-m.Rect.Top)*m.Rect.Width() + (x - m.Rect.Left)
}

func (m *Mask) Valid(x, y int) bool { return m.Pix[m.offset(x, y)] != Invalid }

func (m *Mask) Set(x, y int, valid bool) {
	v := Invalid
	if valid {
		v = Valid
	}
	m.Pix[m.offset(x, y)] = v
}

func (m *Mask) Fill(valid bool) {
	v := Invalid
	if valid {
		v = Valid
	}
	for i := range m.Pix {
		m.Pix[i] = v
	}
}

// Crop copies out the mask values in r, which must lie inside m.Rect.
func (m *Mask) Crop(r roi.Rect) *Mask {
	out := &Mask{Rect: r, Pix: make([]uint8, r.Area())}
	for y := r.Top; y < r.Bottom; y++ {
		copy(out.Pix[out.offset(r.Left, y):out.offset(r.Right, y)], m.Pix[m.offset(r.Left, y):m.offset(r.Right, y)])
	}
	return out
}

// Count returns how many pixels are valid.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v != Invalid {
			n++
		}
	}
	return n
}

// ValidBounds returns the bounding box of the valid pixels, which is empty
// when there are none.
func (m *Mask) ValidBounds() roi.Rect {
	bounds := roi.Rect{}
	for y := m.Rect.Top; y < m.Rect.Bottom; y++ {
		row := m.Pix[m.offset(m.Rect.Left, y) : m.offset(m.Rect.Left, y)+m.Rect.Width()]
		first, last := -1, -1
		for i, v := range row {
			if v != Invalid {
				if first < 0 {
					first = i
				}
				last = i
			}
		}
		if first >= 0 {
			bounds = bounds.Unite(roi.New(m.Rect.Left+first, y, m.Rect.Left+last+1, y+1))
		}
	}
	return bounds
}
