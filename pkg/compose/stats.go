package compose

import (
	"fmt"
	"time"

	"github.com/codahale/hdrhistogram"
)

// Stats collects per-image numbers over a stitch.
type Stats struct {
	Images   int
	Empty    int // images that landed nowhere in the output
	Seams    int
	Coverage float64 // fraction of the output with a valid pixel

	remapMicros *hdrhistogram.Histogram
	validPixels *hdrhistogram.Histogram
}

func NewStats() *Stats {
	return &Stats{
		remapMicros: hdrhistogram.New(1, int64(time.Hour/time.Microsecond), 3),
		validPixels: hdrhistogram.New(1, 1<<40, 3),
	}
}

func (s *Stats) recordRemap(d time.Duration, valid int) {
	s.Images++
	if valid == 0 {
		s.Empty++
	}
	s.remapMicros.RecordValue(clampRecord(int64(d/time.Microsecond), s.remapMicros))
	if valid > 0 {
		s.validPixels.RecordValue(clampRecord(int64(valid), s.validPixels))
	}
}

func clampRecord(v int64, h *hdrhistogram.Histogram) int64 {
	if v < 1 {
		return 1
	} else if v > h.HighestTrackableValue() {
		return h.HighestTrackableValue()
	}
	return v
}

// RemapTime returns the given percentile (0-100) of per-image remap time.
func (s *Stats) RemapTime(percentile float64) time.Duration {
	return time.Duration(s.remapMicros.ValueAtQuantile(percentile)) * time.Microsecond
}

func (s *Stats) String() string {
	str := fmt.Sprintf("%d images (%d empty), %d seams, %.1f%% covered", s.Images, s.Empty, s.Seams, s.Coverage*100)
	if s.remapMicros.TotalCount() > 0 {
		str += fmt.Sprintf("; remap p50=%s p99=%s max=%s", s.RemapTime(50), s.RemapTime(99),
			time.Duration(s.remapMicros.Max())*time.Microsecond)
	}
	if s.validPixels.TotalCount() > 0 {
		str += fmt.Sprintf("; valid px/image min=%d mean=%.0f max=%d",
			s.validPixels.Min(), s.validPixels.Mean(), s.validPixels.Max())
	}
	return str
}
