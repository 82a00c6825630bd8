package monitoring

import (
	"sort"

	"github.com/spanlab/asyncspan/trace"
)

// A SpanSummary is one span's execution interval reconstructed from the
// event stream: a start-class event paired with its terminal event, with
// on/off-CPU pairs folded into the time actually spent executing.
type SpanSummary struct {
	ID       trace.SpanID  `json:"id"`
	ParentID trace.SpanID  `json:"parent_id,omitempty"`
	Name     string        `json:"name,omitempty"`
	Kind     string        `json:"kind"`
	Start    int64         `json:"start"`
	End      int64         `json:"end,omitempty"`
	Ended    bool          `json:"ended"`
	OnCPU    int64         `json:"on_cpu"`
	Polls    int           `json:"polls"`
	Wakeups  int           `json:"wakeups"`
	Outcome  trace.Outcome `json:"outcome,omitempty"`
}

// summarize folds an event stream into per-span summaries, ordered by span
// ID. Spans whose start fell outside the stream are dropped; spans with no
// terminal event (still running, or dropped mid-flight) are reported with
// Ended=false.
func summarize(events []trace.TraceEvent) []SpanSummary {
	spans := make(map[trace.SpanID]*SpanSummary)
	lastOnCPU := make(map[trace.SpanID]int64)

	for _, e := range events {
		switch e.Kind {
		case trace.KindAsyncStart, trace.KindSyncStart, trace.KindThreadStart:
			spans[e.ID] = &SpanSummary{
				ID:       e.ID,
				ParentID: e.ParentID,
				Name:     e.Name,
				Kind:     startKind(e.Kind),
				Start:    e.Time,
			}
		case trace.KindAsyncOnCPU:
			if s, ok := spans[e.ID]; ok {
				s.Polls++
				lastOnCPU[e.ID] = e.Time
			}
		case trace.KindAsyncOffCPU:
			if s, ok := spans[e.ID]; ok {
				if on, seen := lastOnCPU[e.ID]; seen {
					s.OnCPU += e.Time - on
					delete(lastOnCPU, e.ID)
				}
			}
		case trace.KindAsyncEnd, trace.KindSyncEnd, trace.KindThreadEnd:
			if s, ok := spans[e.ID]; ok {
				s.End = e.Time
				s.Ended = true
				s.Outcome = e.Outcome
			}
		case trace.KindWakeup:
			if s, ok := spans[e.ParkedSpan]; ok {
				s.Wakeups++
			}
		}
	}

	out := make([]SpanSummary, 0, len(spans))
	for _, s := range spans {
		out = append(out, *s)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})

	return out
}

func startKind(k trace.EventKind) string {
	switch k {
	case trace.KindAsyncStart:
		return "async"
	case trace.KindSyncStart:
		return "sync"
	default:
		return "thread"
	}
}
