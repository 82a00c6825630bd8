package future

import (
	"context"

	"github.com/spanlab/asyncspan/trace"
)

// BlockOn drives f to completion on the calling goroutine, parking between
// polls and resuming on wakes. It is the minimal driver; anything more
// elaborate (work stealing, fairness, timers) belongs to an external
// executor.
func BlockOn[T any](st *trace.State, f Future[T]) (T, error) {
	task := NewTask()
	cx := NewContext(st, task)

	for {
		value, ready, err := f.Poll(cx)
		if ready || err != nil {
			return value, err
		}

		task.Wait()
	}
}

// BlockOnContext is BlockOn with cancellation. When ctx is done, driving
// stops between polls and the context's error is returned; the future is
// simply abandoned mid-flight, so its trace will show no terminal event.
func BlockOnContext[T any](
	ctx context.Context,
	st *trace.State,
	f Future[T],
) (T, error) {
	task := NewTask()
	cx := NewContext(st, task)

	for {
		value, ready, err := f.Poll(cx)
		if ready || err != nil {
			return value, err
		}

		err = task.WaitContext(ctx)
		if err != nil {
			var zero T
			return zero, err
		}
	}
}
