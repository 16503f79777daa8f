package interp

import (
	"math"

	"github.com/mdouchement/hdr/hdrcolor"

	"github.com/abworrall/panostitch/pkg/pano"
)

const maxSize = 32

// A Sampler reads a source image at continuous coordinates. Integer
// coordinates are pixel centres. It only reads the source, so one Sampler
// can serve many goroutines.
type Sampler struct {
	kernel     Kernel
	src        *pano.Source
	size       int
	alphaAware bool
}

// NewSampler pairs a kernel with a source. With alphaAware, a sample is
// only valid when every pixel of its neighbourhood is opaque.
func NewSampler(k Kernel, src *pano.Source, alphaAware bool) *Sampler {
	return &Sampler{
		kernel:     k,
		src:        src,
		size:       k.Size(),
		alphaAware: alphaAware && src.Alpha != nil,
	}
}

// Margin is how far inside the source bounds a sample point must be for
// the whole kernel neighbourhood to be inside the image.
func (s *Sampler) Margin() int { return s.size / 2 }

// taps works out the first source index of the neighbourhood around x,
// and fills in the weight of each tap.
func (s *Sampler) taps(x float64, w *[maxSize]float64) int {
	start := int(math.Ceil(x - float64(s.size)/2))
	for i := 0; i < s.size; i++ {
		w[i] = s.kernel.Weight(x - float64(start+i))
	}
	return start
}

// Sample returns the kernel-weighted colour at (x,y). ok is false when
// the sampler is alpha aware and the neighbourhood is not fully opaque.
// Taps that fall off the image repeat the edge pixels.
func (s *Sampler) Sample(x, y float64) (hdrcolor.RGB, bool) {
	var wx, wy [maxSize]float64
	x0 := s.taps(x, &wx)
	y0 := s.taps(y, &wy)
	w, h := s.src.Width(), s.src.Height()

	if s.alphaAware {
		for j := 0; j < s.size; j++ {
			for i := 0; i < s.size; i++ {
				sx, sy := x0+i, y0+j
				if sx < 0 || sy < 0 || sx >= w || sy >= h || !s.src.Opaque(sx, sy) {
					return hdrcolor.RGB{}, false
				}
			}
		}
	}

	var r, g, b, total float64
	for j := 0; j < s.size; j++ {
		if wy[j] == 0 {
			continue
		}
		sy := clamp(y0+j, h)
		for i := 0; i < s.size; i++ {
			weight := wx[i] * wy[j]
			if weight == 0 {
				continue
			}
			c := s.src.RGBAt(clamp(x0+i, w), sy)
			r += weight * c.R
			g += weight * c.G
			b += weight * c.B
			total += weight
		}
	}

	if total != 0 && total != 1 {
		r, g, b = r/total, g/total, b/total
	}
	return hdrcolor.RGB{R: r, G: g, B: b}, true
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	} else if i >= n {
		return n - 1
	}
	return i
}
