package compose

import "log"

// A ProgressSink hears how far through a stitch we are, as a fraction in
// [0,1]. Calls come from the stitching goroutine, once per image.
type ProgressSink interface {
	Progress(fraction float64)
}

// LogProgress logs each update.
type LogProgress struct {
	Prefix string
}

func (lp LogProgress) Progress(fraction float64) {
	log.Printf("%s: %3.0f%%\n", lp.Prefix, fraction*100)
}

// report tolerates a nil sink.
func report(sink ProgressSink, fraction float64) {
	if sink != nil {
		sink.Progress(fraction)
	}
}
