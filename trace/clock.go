package trace

import "time"

// A Clock tells the current time as nanoseconds on a monotonic timeline.
type Clock interface {
	Now() int64
}

// NewClock returns a Clock that reports nanoseconds elapsed since the clock
// was created.
func NewClock() Clock {
	return &monotonicClock{start: time.Now()}
}

type monotonicClock struct {
	start time.Time
}

func (c *monotonicClock) Now() int64 {
	return int64(time.Since(c.start))
}
