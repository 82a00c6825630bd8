package trace

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// CSVWriter is a sink that stores events in a CSV file.
type CSVWriter struct {
	path string
	file *os.File

	lock       sync.Mutex
	events     []TraceEvent
	bufferSize int
}

// NewCSVWriter creates a new CSVWriter. The Init function must be called
// before using the writer.
func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{
		path:       path,
		bufferSize: 1000,
	}
}

// Init creates the trace file. It panics if the file already exists.
func (w *CSVWriter) Init() {
	if w.path == "" {
		w.path = "asyncspan_trace_" + xid.New().String()
	}

	filename := w.path + ".csv"
	_, err := os.Stat(filename)
	if err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	file, err := os.Create(filename)
	if err != nil {
		panic(err)
	}
	w.file = file

	fmt.Fprintf(file,
		"Kind, ID, ParentID, Name, Time, Outcome, Error, WakingSpan, ParkedSpan\n")

	atexit.Register(func() {
		w.Flush()

		err := w.file.Close()
		if err != nil {
			panic(err)
		}
	})
}

// Collect buffers an event, flushing once the buffer fills up.
func (w *CSVWriter) Collect(e TraceEvent) {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.events = append(w.events, e)
	if len(w.events) >= w.bufferSize {
		w.flushLocked()
	}
}

// Flush writes all buffered events to the file.
func (w *CSVWriter) Flush() {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.flushLocked()
}

func (w *CSVWriter) flushLocked() {
	for _, e := range w.events {
		fmt.Fprintf(w.file, "%s, %d, %d, %s, %d, %s, %s, %d, %d\n",
			e.Kind,
			e.ID,
			e.ParentID,
			e.Name,
			e.Time,
			e.Outcome,
			e.Error,
			e.WakingSpan,
			e.ParkedSpan,
		)
	}

	w.events = nil
}
