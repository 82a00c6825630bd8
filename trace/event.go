// Package trace defines the span and event model of the execution trace, the
// per-driver trace context, and the writers that persist emitted events.
package trace

// EventKind enumerates the kinds of records the engine can emit.
type EventKind string

// The async kinds bracket the lifetime of one instrumented future. The sync
// and thread kinds are produced by the synchronous instrumentation points and
// share the same record schema.
const (
	KindAsyncStart  EventKind = "async_start"
	KindAsyncOnCPU  EventKind = "async_on_cpu"
	KindAsyncOffCPU EventKind = "async_off_cpu"
	KindAsyncEnd    EventKind = "async_end"
	KindWakeup      EventKind = "wakeup"
	KindSyncStart   EventKind = "sync_start"
	KindSyncEnd     EventKind = "sync_end"
	KindThreadStart EventKind = "thread_start"
	KindThreadEnd   EventKind = "thread_end"
)

// Outcome describes how an instrumented computation finished. It is recorded
// and never used to alter control flow.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
)

// A TraceEvent is one record of the execution trace. Events are immutable
// once emitted and each one serializes independently to a single JSON line.
// Timestamps are nanoseconds on the emitting driver's monotonic timeline.
type TraceEvent struct {
	Kind       EventKind `json:"kind"`
	ID         SpanID    `json:"id,omitempty"`
	ParentID   SpanID    `json:"parent_id,omitempty"`
	Name       string    `json:"name,omitempty"`
	Time       int64     `json:"ts"`
	Outcome    Outcome   `json:"outcome,omitempty"`
	Error      string    `json:"error,omitempty"`
	WakingSpan SpanID    `json:"waking_span,omitempty"`
	ParkedSpan SpanID    `json:"parked_span,omitempty"`
	Detail     any       `json:"-"`
}

// AsyncStart records the first poll of an instrumented future.
func AsyncStart(id, parent SpanID, name string, ts int64, detail any) TraceEvent {
	return TraceEvent{
		Kind:     KindAsyncStart,
		ID:       id,
		ParentID: parent,
		Name:     name,
		Time:     ts,
		Detail:   detail,
	}
}

// AsyncOnCPU records that the wrapped computation's own poll is entered.
func AsyncOnCPU(id SpanID, ts int64) TraceEvent {
	return TraceEvent{Kind: KindAsyncOnCPU, ID: id, Time: ts}
}

// AsyncOffCPU records that the wrapped computation's own poll returned.
func AsyncOffCPU(id SpanID, ts int64) TraceEvent {
	return TraceEvent{Kind: KindAsyncOffCPU, ID: id, Time: ts}
}

// AsyncEnd records the terminal event of an instrumented future. The error
// description is only meaningful when the outcome is OutcomeError.
func AsyncEnd(id SpanID, ts int64, outcome Outcome, errDesc string) TraceEvent {
	return TraceEvent{
		Kind:    KindAsyncEnd,
		ID:      id,
		Time:    ts,
		Outcome: outcome,
		Error:   errDesc,
	}
}

// Wakeup correlates the span that triggered a resumption with the span that
// was parked waiting for it.
func Wakeup(waking, parked SpanID, ts int64) TraceEvent {
	return TraceEvent{
		Kind:       KindWakeup,
		WakingSpan: waking,
		ParkedSpan: parked,
		Time:       ts,
	}
}

// SyncStart records the entry of a synchronous span.
func SyncStart(id, parent SpanID, name string, ts int64) TraceEvent {
	return TraceEvent{
		Kind:     KindSyncStart,
		ID:       id,
		ParentID: parent,
		Name:     name,
		Time:     ts,
	}
}

// SyncEnd records the exit of a synchronous span.
func SyncEnd(id SpanID, ts int64, outcome Outcome, errDesc string) TraceEvent {
	return TraceEvent{
		Kind:    KindSyncEnd,
		ID:      id,
		Time:    ts,
		Outcome: outcome,
		Error:   errDesc,
	}
}

// ThreadStart records the creation of a driver's trace context.
func ThreadStart(id SpanID, name string, ts int64) TraceEvent {
	return TraceEvent{Kind: KindThreadStart, ID: id, Name: name, Time: ts}
}

// ThreadEnd records the close of a driver's trace context.
func ThreadEnd(id SpanID, ts int64) TraceEvent {
	return TraceEvent{Kind: KindThreadEnd, ID: id, Time: ts}
}
