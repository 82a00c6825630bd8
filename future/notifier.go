package future

import "github.com/spanlab/asyncspan/trace"

// A Notifier relays wakeup signals to the driver of one suspended future.
// One Notifier is created per poll attempt; the wrapper parks the driver's
// waker into it before polling the inner computation, and the inner
// computation registers the Notifier wherever its resumption will come from.
//
// Wake is safe to call from any goroutine, any number of times,
// concurrently with itself.
type Notifier struct {
	slot       AtomicTask
	parkedSpan trace.SpanID
}

// NewNotifier creates a Notifier for the given parked span.
func NewNotifier(parked trace.SpanID) *Notifier {
	return &Notifier{parkedSpan: parked}
}

// Wake emits a Wakeup event correlating the waking span with the parked one,
// then forwards the signal into the slot. The forward happens exactly once
// per call regardless of whether an event was emitted.
//
// The re-entrancy guard on the waking context keeps notification chains from
// emitting one Wakeup per link: only the outermost wake on a given driver
// logs, the rest just relay.
func (n *Notifier) Wake(st *trace.State) {
	shouldLog := false

	if st != nil && !st.LoggingWakeup() {
		// The guard is taken before emitting so that a wake triggered from
		// inside the sink cannot log a second Wakeup.
		st.SetLoggingWakeup(true)
		shouldLog = true

		if current := st.CurrentSpan(); current != trace.NoSpan {
			st.Emit(trace.Wakeup(current, n.parkedSpan, st.Now()))
		}
	}

	n.slot.Notify(st)

	if shouldLog {
		st.SetLoggingWakeup(false)
	}
}
