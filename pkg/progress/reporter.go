// Package progress prints rate-limited transfer progress.
package progress

import (
	"fmt"
	"io"
	"time"
)

// DefaultInterval is the minimum interval between two printed reports.
const DefaultInterval = 100 * time.Millisecond

// Reporter prints "Progress: current / total" lines, at most once per
// Interval except for the first and last report which are always printed.
type Reporter struct {
	Out      io.Writer
	Interval time.Duration
	// Now is the clock, time.Now if nil.
	Now func() time.Time

	last time.Time
}

// New creates a Reporter writing to out.
func New(out io.Writer) *Reporter {
	return &Reporter{Out: out, Interval: DefaultInterval}
}

// Report prints the progress if due. Both numbers are 0-based indices,
// printed 1-based.
func (r *Reporter) Report(current, total int) {
	now := r.now()
	if current != 0 && current != total && now.Sub(r.last) <= r.Interval {
		return
	}
	r.last = now
	fmt.Fprintf(r.Out, "\rProgress: %d / %d", current+1, total+1)
	if current == total {
		fmt.Fprintln(r.Out)
	}
}

func (r *Reporter) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}
