package trace

import "sync"

// A Sink consumes completed trace events. Collect is called synchronously
// from the goroutine that produced the event. A sink must not re-enter the
// tracer from within Collect.
type Sink interface {
	Collect(e TraceEvent)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(e TraceEvent)

// Collect calls the function itself.
func (f SinkFunc) Collect(e TraceEvent) {
	f(e)
}

// MultiSink fans one event stream out to several sinks, in registration
// order.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink creates a MultiSink over the given sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Add registers one more sink.
func (m *MultiSink) Add(s Sink) {
	m.sinks = append(m.sinks, s)
}

// Collect forwards the event to every registered sink.
func (m *MultiSink) Collect(e TraceEvent) {
	for _, s := range m.sinks {
		s.Collect(e)
	}
}

// CaptureSink records every event in memory. It is mainly useful in tests
// and for short-lived captures.
type CaptureSink struct {
	lock   sync.Mutex
	events []TraceEvent
}

// NewCaptureSink creates an empty CaptureSink.
func NewCaptureSink() *CaptureSink {
	return &CaptureSink{}
}

// Collect appends the event.
func (c *CaptureSink) Collect(e TraceEvent) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.events = append(c.events, e)
}

// Events returns a copy of everything collected so far.
func (c *CaptureSink) Events() []TraceEvent {
	c.lock.Lock()
	defer c.lock.Unlock()

	out := make([]TraceEvent, len(c.events))
	copy(out, c.events)

	return out
}

// Reset discards everything collected so far.
func (c *CaptureSink) Reset() {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.events = nil
}

// RingSink keeps the most recent events in a fixed-size ring. Older events
// are overwritten once the capacity is reached. It backs the live monitor.
type RingSink struct {
	lock     sync.Mutex
	events   []TraceEvent
	next     int
	wrapped  bool
	capacity int
}

// NewRingSink creates a RingSink that retains up to capacity events.
func NewRingSink(capacity int) *RingSink {
	if capacity <= 0 {
		panic("ring capacity must be positive")
	}

	return &RingSink{
		events:   make([]TraceEvent, capacity),
		capacity: capacity,
	}
}

// Collect stores the event, overwriting the oldest one when full.
func (r *RingSink) Collect(e TraceEvent) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.events[r.next] = e
	r.next++

	if r.next == r.capacity {
		r.next = 0
		r.wrapped = true
	}
}

// Snapshot returns the retained events in collection order.
func (r *RingSink) Snapshot() []TraceEvent {
	r.lock.Lock()
	defer r.lock.Unlock()

	if !r.wrapped {
		out := make([]TraceEvent, r.next)
		copy(out, r.events[:r.next])

		return out
	}

	out := make([]TraceEvent, 0, r.capacity)
	out = append(out, r.events[r.next:]...)
	out = append(out, r.events[:r.next]...)

	return out
}
