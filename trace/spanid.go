package trace

import "sync/atomic"

// A SpanID identifies one instrumented execution of one logical operation.
// IDs are unique within the process and strictly increasing in allocation
// order. They are never reused.
type SpanID uint64

// NoSpan is the zero SpanID. It marks the absence of an active span.
const NoSpan SpanID = 0

var nextSpanID atomic.Uint64

// NewSpanID allocates the next SpanID.
func NewSpanID() SpanID {
	return SpanID(nextSpanID.Add(1))
}
