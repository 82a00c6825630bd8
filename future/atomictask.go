package future

import (
	"sync"

	"github.com/spanlab/asyncspan/trace"
)

// AtomicTask is an atomic slot holding at most one parked waker.
//
// Note that this only parks at most one waiter: if a data structure needs to
// wake up potentially many drivers, parking them all into a single
// AtomicTask will deadlock all but the last one to park. This is a deliberate
// trade-off for a zero-overhead single-consumer relay, not a general-purpose
// synchronization primitive. Do not reuse it for fan-out wakeups.
type AtomicTask struct {
	lock  sync.Mutex
	waker Waker
}

// Park records w as the waker to notify next. If the recorded waker already
// wakes the same driver, the slot is left untouched, so a driver that polls
// repeatedly without being notified does not churn the slot.
func (a *AtomicTask) Park(w Waker) {
	a.lock.Lock()
	defer a.lock.Unlock()

	if a.waker == w {
		return
	}

	a.waker = w
}

// Notify atomically takes the recorded waker, if any, and wakes it. After
// Notify returns, the slot is empty; a second Notify with no intervening
// Park is a no-op. The st argument is forwarded to the woken waker.
func (a *AtomicTask) Notify(st *trace.State) {
	a.lock.Lock()
	w := a.waker
	a.waker = nil
	a.lock.Unlock()

	if w != nil {
		w.Wake(st)
	}
}
