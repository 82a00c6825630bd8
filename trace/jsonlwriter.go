package trace

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// JSONLWriter is a sink that stores events as newline-delimited JSON
// records, one independently-parseable record per event.
type JSONLWriter struct {
	path string
	file *os.File

	lock       sync.Mutex
	events     []TraceEvent
	bufferSize int
}

// NewJSONLWriter creates a new JSONLWriter. The Init function must be called
// before using the writer.
func NewJSONLWriter(path string) *JSONLWriter {
	return &JSONLWriter{
		path:       path,
		bufferSize: 1000,
	}
}

// Init creates the trace file. It panics if the file already exists.
func (w *JSONLWriter) Init() {
	if w.path == "" {
		w.path = "asyncspan_trace_" + xid.New().String()
	}

	filename := w.path + ".jsonl"
	_, err := os.Stat(filename)
	if err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	file, err := os.Create(filename)
	if err != nil {
		panic(err)
	}
	w.file = file

	atexit.Register(func() {
		w.Flush()

		err := w.file.Close()
		if err != nil {
			panic(err)
		}
	})
}

// Collect buffers an event, flushing once the buffer fills up.
func (w *JSONLWriter) Collect(e TraceEvent) {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.events = append(w.events, e)
	if len(w.events) >= w.bufferSize {
		w.flushLocked()
	}
}

// Flush writes all buffered events to the file.
func (w *JSONLWriter) Flush() {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.flushLocked()
}

func (w *JSONLWriter) flushLocked() {
	for _, e := range w.events {
		b, err := json.Marshal(e)
		if err != nil {
			panic(err)
		}

		_, err = fmt.Fprintf(w.file, "%s\n", b)
		if err != nil {
			panic(err)
		}
	}

	w.events = nil
}
