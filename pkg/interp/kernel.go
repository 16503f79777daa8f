package interp

import (
	"fmt"
	"math"
	"strings"

	"github.com/abworrall/panostitch/pkg/pano"
)

// Kind is the closed set of resampling kernels. The spline and sinc names
// refer to the area of the neighbourhood they read (e.g. spline36 reads
// 6x6 source pixels).
type Kind int

const (
	Nearest Kind = iota
	Bilinear
	Cubic
	Spline16
	Spline36
	Spline64
	Sinc256
	Sinc1024
)

// A Kernel has a fixed support of Size() taps per axis, and a weight
// function that is zero for |dx| >= Size()/2.
type Kernel interface {
	Kind() Kind
	Size() int
	Weight(dx float64) float64
}

var kernelNames = map[Kind]string{
	Nearest:  "nearest",
	Bilinear: "bilinear",
	Cubic:    "cubic",
	Spline16: "spline16",
	Spline36: "spline36",
	Spline64: "spline64",
	Sinc256:  "sinc256",
	Sinc1024: "sinc1024",
}

func (k Kind) String() string {
	if name, exists := kernelNames[k]; exists {
		return name
	}
	return fmt.Sprintf("kernel(%d)", int(k))
}

// ListKernels is for help text.
func ListKernels() string {
	names := []string{}
	for k := Nearest; k <= Sinc1024; k++ {
		names = append(names, k.String())
	}
	return strings.Join(names, ", ")
}

// New returns the kernel for k. Values outside the enumeration are a
// configuration error, not something to quietly fall back from.
func New(k Kind) (Kernel, error) {
	switch k {
	case Nearest:
		return nearest{}, nil
	case Bilinear:
		return bilinear{}, nil
	case Cubic:
		return cubic{a: -0.75}, nil
	case Spline16:
		return spline16{}, nil
	case Spline36:
		return spline36{}, nil
	case Spline64:
		return spline64{}, nil
	case Sinc256:
		return windowedSinc{kind: Sinc256, half: 8}, nil
	case Sinc1024:
		return windowedSinc{kind: Sinc1024, half: 16}, nil
	}
	return nil, fmt.Errorf("interpolator %v: %w", k, pano.ErrUnsupported)
}

// Lookup finds a kernel by name; the empty name means cubic.
func Lookup(name string) (Kernel, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return New(Cubic)
	}
	for k, n := range kernelNames {
		if n == name {
			return New(k)
		}
	}
	return nil, fmt.Errorf("interpolator %q (want one of %s): %w", name, ListKernels(), pano.ErrUnsupported)
}

type nearest struct{}

func (nearest) Kind() Kind { return Nearest }
func (nearest) Size() int  { return 1 }
func (nearest) Weight(dx float64) float64 {
	if -0.5 < dx && dx <= 0.5 {
		return 1
	}
	return 0
}

type bilinear struct{}

func (bilinear) Kind() Kind { return Bilinear }
func (bilinear) Size() int  { return 2 }
func (bilinear) Weight(dx float64) float64 {
	dx = math.Abs(dx)
	if dx < 1 {
		return 1 - dx
	}
	return 0
}

// cubic is the Keys cubic convolution kernel, with the PanoTools choice of
// a = -0.75.
type cubic struct{ a float64 }

func (cubic) Kind() Kind { return Cubic }
func (cubic) Size() int  { return 4 }
func (c cubic) Weight(dx float64) float64 {
	x := math.Abs(dx)
	a := c.a
	switch {
	case x < 1:
		return ((a+2)*x-(a+3))*x*x + 1
	case x < 2:
		return ((a*x-5*a)*x+8*a)*x - 4*a
	}
	return 0
}

// The spline kernels are Helmut Dersch's piecewise cubics.

type spline16 struct{}

func (spline16) Kind() Kind { return Spline16 }
func (spline16) Size() int  { return 4 }
func (spline16) Weight(dx float64) float64 {
	x := math.Abs(dx)
	switch {
	case x < 1:
		return ((x-9.0/5.0)*x-1.0/5.0)*x + 1
	case x < 2:
		x--
		return ((-1.0/3.0*x+4.0/5.0)*x - 7.0/15.0) * x
	}
	return 0
}

type spline36 struct{}

func (spline36) Kind() Kind { return Spline36 }
func (spline36) Size() int  { return 6 }
func (spline36) Weight(dx float64) float64 {
	x := math.Abs(dx)
	switch {
	case x < 1:
		return ((13.0/11.0*x-453.0/209.0)*x-3.0/209.0)*x + 1
	case x < 2:
		x--
		return ((-6.0/11.0*x+270.0/209.0)*x - 156.0/209.0) * x
	case x < 3:
		x -= 2
		return ((1.0/11.0*x-45.0/209.0)*x + 26.0/209.0) * x
	}
	return 0
}

type spline64 struct{}

func (spline64) Kind() Kind { return Spline64 }
func (spline64) Size() int  { return 8 }
func (spline64) Weight(dx float64) float64 {
	x := math.Abs(dx)
	switch {
	case x < 1:
		return ((49.0/41.0*x-6387.0/2911.0)*x-3.0/2911.0)*x + 1
	case x < 2:
		x--
		return ((-24.0/41.0*x+4032.0/2911.0)*x - 2328.0/2911.0) * x
	case x < 3:
		x -= 2
		return ((6.0/41.0*x-1008.0/2911.0)*x + 582.0/2911.0) * x
	case x < 4:
		x -= 3
		return ((-1.0/41.0*x+168.0/2911.0)*x - 97.0/2911.0) * x
	}
	return 0
}

// windowedSinc is a Lanczos kernel: sinc(x) * sinc(x/half).
type windowedSinc struct {
	kind Kind
	half int
}

func (s windowedSinc) Kind() Kind { return s.kind }
func (s windowedSinc) Size() int  { return 2 * s.half }
func (s windowedSinc) Weight(dx float64) float64 {
	x := math.Abs(dx)
	w := float64(s.half)
	if x >= w {
		return 0
	}
	return sinc(x) * sinc(x/w)
}

func sinc(f float64) float64 {
	f *= math.Pi
	if f < 0.01 && f > -0.01 {
		// Taylor expansion
		return 1.0 + f*f*(-1.0/6.0+f*f*1.0/120.0)
	}
	return math.Sin(f) / f
}
