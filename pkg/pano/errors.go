package pano

import "errors"

var (
	// ErrUnsupported marks a configuration the engine cannot represent:
	// unknown interpolator or projection names, impossible fields of view.
	ErrUnsupported = errors.New("unsupported configuration")

	// ErrCanvasTooLarge is returned instead of attempting an allocation
	// bigger than the pixel cap.
	ErrCanvasTooLarge = errors.New("buffer too large")
)

// DefaultMaxPixels caps the size of any one pixel buffer. Callers may ask
// for a lower cap; a higher one is ignored.
const DefaultMaxPixels = 1 << 28

func limit(maxPixels int) int {
	if maxPixels <= 0 || maxPixels > DefaultMaxPixels {
		return DefaultMaxPixels
	}
	return maxPixels
}
