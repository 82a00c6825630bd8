package future

import (
	"context"

	"github.com/spanlab/asyncspan/trace"
)

// Task is the wait handle of one driver goroutine. The driver blocks on Wait
// between polls; any goroutine may call Wake to unblock it.
//
// Wakes are level-triggered: waking an already-woken task is a no-op, and a
// single Wait consumes the pending wake. Spurious wakeups are possible and
// drivers must tolerate them by polling again.
type Task struct {
	ch chan struct{}
}

// NewTask creates a new wait handle.
func NewTask() *Task {
	return &Task{ch: make(chan struct{}, 1)}
}

// Wake unblocks the task's driver. The st argument is ignored; a Task is a
// terminal wake target, not a relay.
func (t *Task) Wake(_ *trace.State) {
	select {
	case t.ch <- struct{}{}:
	default:
	}
}

// Wait blocks until the task is woken.
func (t *Task) Wait() {
	<-t.ch
}

// WaitContext blocks until the task is woken or the context is done.
func (t *Task) WaitContext(ctx context.Context) error {
	select {
	case <-t.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
