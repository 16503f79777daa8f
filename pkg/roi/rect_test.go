package roi

import (
	"image"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomRect(r *rand.Rand) Rect {
	x, y := r.Intn(200)-100, r.Intn(200)-100
	return Sized(x, y, r.Intn(80), r.Intn(80))
}

func TestIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want Rect
	}{
		{"overlap", New(0, 0, 10, 10), New(5, 5, 20, 20), New(5, 5, 10, 10)},
		{"contained", New(0, 0, 10, 10), New(2, 3, 4, 5), New(2, 3, 4, 5)},
		{"touching", New(0, 0, 100, 100), New(100, 0, 200, 100), Rect{}},
		{"disjoint", New(0, 0, 10, 10), New(50, 50, 60, 60), Rect{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Intersect(tt.b)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.Empty(), got.Area() == 0)
		})
	}
}

func TestRectProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		a, b := randomRect(rng), randomRect(rng)

		assert.Equal(t, a.Intersect(b), b.Intersect(a))

		u := a.Unite(b)
		assert.True(t, u.Contains(a), "%s should contain %s", u, a)
		assert.True(t, u.Contains(b), "%s should contain %s", u, b)

		// Compare against the standard library's rectangle maths
		want := a.Image().Intersect(b.Image())
		got := a.Intersect(b)
		if want.Empty() {
			assert.True(t, got.Empty())
		} else {
			assert.Equal(t, FromImage(want), got)
		}
	}
}

func TestUniteIgnoresEmpty(t *testing.T) {
	a := New(10, 10, 20, 20)
	assert.Equal(t, a, a.Unite(Rect{}))
	assert.Equal(t, a, Rect{}.Unite(a))
	assert.Equal(t, a, a.Unite(New(500, 500, 500, 600)))
}

func TestNewOrdersCorners(t *testing.T) {
	r := New(10, 20, 0, 5)
	assert.Equal(t, Rect{0, 5, 10, 20}, r)
	assert.Equal(t, image.Point{10, 15}, r.Size())
	assert.Equal(t, image.Point{0, 5}, r.UpperLeft())
	assert.Equal(t, image.Point{10, 20}, r.LowerRight())
}

func TestBorders(t *testing.T) {
	outer := New(0, 0, 10, 10)
	inner := New(3, 4, 6, 8)

	strips := Borders(outer, inner)
	require.Len(t, strips, 4)
	assert.Equal(t, New(0, 0, 10, 4), strips[0])
	assert.Equal(t, New(0, 4, 3, 8), strips[1])
	assert.Equal(t, New(6, 4, 10, 8), strips[2])
	assert.Equal(t, New(0, 8, 10, 10), strips[3])

	// Every pixel of outer is in exactly one of inner + strips
	for y := outer.Top; y < outer.Bottom; y++ {
		for x := outer.Left; x < outer.Right; x++ {
			n := 0
			if inner.ContainsPoint(x, y) {
				n++
			}
			for _, s := range strips {
				if s.ContainsPoint(x, y) {
					n++
				}
			}
			assert.Equal(t, 1, n, "pixel (%d,%d)", x, y)
		}
	}
}

func TestBordersEdgeCases(t *testing.T) {
	outer := New(0, 0, 10, 10)
	assert.Empty(t, Borders(outer, outer))
	assert.Equal(t, []Rect{outer}, Borders(outer, New(20, 20, 30, 30)))
	assert.Equal(t, []Rect{New(5, 0, 10, 10)}, Borders(outer, New(-5, -5, 5, 15)))
	assert.Nil(t, Borders(Rect{}, Rect{}))
}
