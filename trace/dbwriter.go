package trace

import (
	"sync"

	"github.com/spanlab/asyncspan/recording"
)

type eventTableEntry struct {
	Kind       string `asyncspan_data:"index"`
	ID         uint64 `asyncspan_data:"index"`
	ParentID   uint64 `asyncspan_data:"index"`
	Name       string
	Time       int64 `asyncspan_data:"index"`
	Outcome    string
	Error      string
	WakingSpan uint64
	ParkedSpan uint64
}

// DBWriter is a sink that stores events through a recording backend, one row
// per event in an indexed trace table.
type DBWriter struct {
	lock    sync.Mutex
	backend recording.Recorder
}

// NewDBWriter creates a DBWriter over the given backend and creates the
// trace table.
func NewDBWriter(backend recording.Recorder) *DBWriter {
	w := &DBWriter{backend: backend}
	backend.CreateTable("trace", eventTableEntry{})

	return w
}

// Collect stores one event.
func (w *DBWriter) Collect(e TraceEvent) {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.backend.InsertData("trace", eventTableEntry{
		Kind:       string(e.Kind),
		ID:         uint64(e.ID),
		ParentID:   uint64(e.ParentID),
		Name:       e.Name,
		Time:       e.Time,
		Outcome:    string(e.Outcome),
		Error:      e.Error,
		WakingSpan: uint64(e.WakingSpan),
		ParkedSpan: uint64(e.ParkedSpan),
	})
}

// Flush writes all buffered events to the database.
func (w *DBWriter) Flush() {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.backend.Flush()
}
