// Package future implements the instrumentation engine for poll-driven
// asynchronous computations. A TracedFuture wraps any Future so that every
// suspension, resumption, and cross-goroutine wakeup is recorded as a
// timestamped, causally-linked trace event, without altering the
// computation's result or its scheduling.
//
// The package does not schedule anything itself. An external driver polls a
// future, parks on its Task when the future is not ready, and is resumed
// when some producer invokes the waker the future registered.
package future

import "github.com/spanlab/asyncspan/trace"

// A Future is a poll-driven asynchronous computation producing a value of
// type T.
//
// Poll drives the computation one step. It returns ready=false with a nil
// error when the computation is suspended; in that case the future must have
// arranged for the context's waker to be invoked once progress is possible.
// A non-nil error is terminal. At most one driver may poll a given future at
// any instant.
type Future[T any] interface {
	Poll(cx *Context) (value T, ready bool, err error)
}

// FutureFunc adapts a function to the Future interface.
type FutureFunc[T any] func(cx *Context) (T, bool, error)

// Poll calls the function itself.
func (f FutureFunc[T]) Poll(cx *Context) (T, bool, error) {
	return f(cx)
}

// A Waker resumes a suspended driver. Wake may be called from any goroutine,
// any number of times, concurrently with itself.
//
// The st argument is the trace context of the goroutine invoking the wake,
// used to attribute the wakeup to the span that caused it. It may be nil
// when the waking site has no trace context (a timer thread, for example);
// the wake still happens, only unattributed.
type Waker interface {
	Wake(st *trace.State)
}

// A Context carries what a poll call needs: the driver's trace context and
// the waker to register for resumption.
type Context struct {
	state *trace.State
	waker Waker
}

// NewContext creates the poll context of one driver.
func NewContext(st *trace.State, w Waker) *Context {
	if st == nil {
		panic("state must not be nil")
	}

	if w == nil {
		panic("waker must not be nil")
	}

	return &Context{state: st, waker: w}
}

// State returns the driver's trace context.
func (c *Context) State() *trace.State {
	return c.state
}

// Waker returns the waker a suspending computation must register.
func (c *Context) Waker() Waker {
	return c.waker
}

func (c *Context) withWaker(w Waker) *Context {
	return &Context{state: c.state, waker: w}
}
