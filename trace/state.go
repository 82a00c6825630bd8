package trace

// State is the trace context of one driver goroutine. It tracks the span the
// calling context believes it is inside, stamps events with a monotonic
// clock, and hands completed events to a sink.
//
// A State belongs to exactly one goroutine and is never synchronized. Every
// event is emitted from the goroutine on which it causally happened.
//
// Invariant: whenever control returns from a poll call back to its caller,
// the current span must equal the value it held before the call was made.
// An instrumented future that fails to restore it is a bug, and the wrapper
// panics when it detects the breach.
type State struct {
	clock Clock
	sink  Sink

	currentSpan   SpanID
	threadSpan    SpanID
	loggingWakeup bool
}

// NewState creates the trace context for one driver goroutine and emits its
// ThreadStart event. The name labels the driver in the trace.
func NewState(name string, clock Clock, sink Sink) *State {
	if clock == nil {
		panic("clock must not be nil")
	}

	if sink == nil {
		panic("sink must not be nil")
	}

	s := &State{
		clock:      clock,
		sink:       sink,
		threadSpan: NewSpanID(),
	}
	s.Emit(ThreadStart(s.threadSpan, name, s.Now()))

	return s
}

// Now returns the current time on the trace timeline.
func (s *State) Now() int64 {
	return s.clock.Now()
}

// Emit hands a pre-stamped event to the sink, synchronously.
func (s *State) Emit(e TraceEvent) {
	s.sink.Collect(e)
}

// CurrentSpan returns the span the calling context is inside, or NoSpan.
func (s *State) CurrentSpan() SpanID {
	return s.currentSpan
}

// SetCurrentSpan is mutated directly by the instrumentation wrappers when
// entering and leaving a span. Callers must restore the previous value.
func (s *State) SetCurrentSpan(id SpanID) {
	s.currentSpan = id
}

// LoggingWakeup reports whether a wakeup is already being logged on this
// driver. It guards against notification chains emitting cascades of Wakeup
// events.
func (s *State) LoggingWakeup() bool {
	return s.loggingWakeup
}

// SetLoggingWakeup is mutated directly by the wakeup relay.
func (s *State) SetLoggingWakeup(v bool) {
	s.loggingWakeup = v
}

// Scope runs fn inside a synchronous span. It emits SyncStart, makes the new
// span current for the duration of fn, then restores the enclosing span and
// emits SyncEnd. The returned error is fn's, unchanged.
//
// A top-level Scope is how a driver establishes the root span that
// instrumented futures require before their first poll.
func (s *State) Scope(name string, fn func() error) error {
	id := NewSpanID()
	parent := s.currentSpan

	s.Emit(SyncStart(id, parent, name, s.Now()))
	s.currentSpan = id

	completed := false
	var fnErr error

	defer func() {
		if s.currentSpan != id {
			panic("child span leaked into enclosing scope")
		}

		s.currentSpan = parent

		switch {
		case !completed:
			s.Emit(SyncEnd(id, s.Now(), OutcomeError, "panic"))
		case fnErr != nil:
			s.Emit(SyncEnd(id, s.Now(), OutcomeError, fnErr.Error()))
		default:
			s.Emit(SyncEnd(id, s.Now(), OutcomeSuccess, ""))
		}
	}()

	fnErr = fn()
	completed = true

	return fnErr
}

// Close emits the ThreadEnd event. It panics if a span is still open, which
// indicates an unbalanced enter/leave somewhere on this driver.
func (s *State) Close() {
	if s.currentSpan != NoSpan {
		panic("trace context closed with a span still open")
	}

	s.Emit(ThreadEnd(s.threadSpan, s.Now()))
}
