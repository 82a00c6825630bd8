package future

import "github.com/spanlab/asyncspan/trace"

type wrapperState int

const (
	stateCreated wrapperState = iota
	stateExecuting
	stateResolved
	statePoisoned
)

// A TracedFuture wraps an asynchronous computation so that each poll opens
// or continues a span and closes it on completion, error, or continued
// suspension. It implements the same poll contract as the wrapped
// computation and is a transparent drop-in replacement: values and errors
// pass through unchanged.
//
// A TracedFuture owns exactly one span, allocated at its first poll. The
// first poll must happen inside some ancestor span on the driver, typically
// a root scope established with trace.State.Scope.
type TracedFuture[T any] struct {
	state  wrapperState
	name   string
	detail any

	parent trace.SpanID
	id     trace.SpanID

	inner Future[T]
}

// Trace wraps f under the given display name.
func Trace[T any](f Future[T], name string) *TracedFuture[T] {
	if f == nil {
		panic("future must not be nil")
	}

	if name == "" {
		panic("name must not be empty")
	}

	return &TracedFuture[T]{inner: f, name: name}
}

// WithDetail attaches metadata to the AsyncStart event. It must be called
// before the first poll.
func (f *TracedFuture[T]) WithDetail(detail any) *TracedFuture[T] {
	if f.state != stateCreated {
		panic("detail must be attached before the first poll")
	}

	f.detail = detail

	return f
}

// Inner returns the wrapped computation.
func (f *TracedFuture[T]) Inner() Future[T] {
	return f.inner
}

// SpanID returns the span owned by this future, or trace.NoSpan before the
// first poll.
func (f *TracedFuture[T]) SpanID() trace.SpanID {
	return f.id
}

// Poll drives the wrapped computation one step, bracketed by trace events.
//
// If the inner poll panics, the future is left poisoned and the panic
// propagates unchanged; any later poll panics with "polled after panic"
// instead of silently corrupting span state.
func (f *TracedFuture[T]) Poll(cx *Context) (T, bool, error) {
	st := cx.State()

	// Poison on entry; only a clean exit path writes a live state back.
	entry := f.state
	f.state = statePoisoned

	switch entry {
	case stateCreated:
		parent := st.CurrentSpan()
		if parent == trace.NoSpan {
			panic("missing parent span")
		}

		f.id = trace.NewSpanID()
		f.parent = parent
		st.Emit(trace.AsyncStart(f.id, parent, f.name, st.Now(), f.detail))
	case stateExecuting:
		if st.CurrentSpan() != f.parent {
			panic("parent span changed across execution")
		}
	case stateResolved:
		panic("polled after resolved")
	case statePoisoned:
		panic("polled after panic")
	}

	st.Emit(trace.AsyncOnCPU(f.id, st.Now()))
	st.SetCurrentSpan(f.id)

	// The notifier built for this attempt is the sole channel through which
	// the computation can be resumed if it suspends.
	notifier := NewNotifier(f.id)
	notifier.slot.Park(cx.Waker())

	value, ready, err := f.inner.Poll(cx.withWaker(notifier))

	st.SetCurrentSpan(f.parent)
	st.Emit(trace.AsyncOffCPU(f.id, st.Now()))

	switch {
	case err != nil:
		f.state = stateResolved
		st.Emit(trace.AsyncEnd(f.id, st.Now(), trace.OutcomeError, err.Error()))
	case ready:
		f.state = stateResolved
		st.Emit(trace.AsyncEnd(f.id, st.Now(), trace.OutcomeSuccess, ""))
	default:
		f.state = stateExecuting
	}

	return value, ready, err
}
