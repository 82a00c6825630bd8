// Package monitoring provides an HTTP monitor over a live trace. It serves
// the most recent events from a ring buffer and reconstructs per-span
// summaries from them, so a capture can be inspected while the instrumented
// program is still running.
package monitoring

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/shirou/gopsutil/process"

	"github.com/spanlab/asyncspan/trace"
)

// Monitor serves recent trace events and derived span summaries over HTTP.
type Monitor struct {
	buf        *trace.RingSink
	clock      trace.Clock
	portNumber int
}

// New creates a Monitor. The port is read from ASYNCSPAN_MONITOR_PORT,
// optionally seeded from a .env file; ports not greater than 1000 let the OS
// pick one.
func New() *Monitor {
	m := &Monitor{}

	_ = godotenv.Load()

	portString := os.Getenv("ASYNCSPAN_MONITOR_PORT")
	if portString != "" {
		port, err := strconv.Atoi(portString)
		dieOnErr(err)
		m.portNumber = port
	}

	return m
}

// WithPortNumber overrides the port to serve on.
func (m *Monitor) WithPortNumber(port int) *Monitor {
	m.portNumber = port
	return m
}

// RegisterBuffer registers the ring buffer the monitor reads events from.
func (m *Monitor) RegisterBuffer(buf *trace.RingSink) {
	m.buf = buf
}

// RegisterClock registers the clock that defines "now" for the monitor.
func (m *Monitor) RegisterClock(c trace.Clock) {
	m.clock = c
}

// StartServer starts the monitor as a web server.
func (m *Monitor) StartServer() {
	if m.buf == nil {
		panic("a buffer must be registered before starting the server")
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/events", m.listEvents)
	r.HandleFunc("/api/spans", m.listSpans)
	r.HandleFunc("/api/resource", m.listResources)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	fmt.Fprintf(
		os.Stderr,
		"Monitoring trace with http://localhost:%d\n",
		listener.Addr().(*net.TCPAddr).Port)

	go func() {
		err = http.Serve(listener, r)
		dieOnErr(err)
	}()
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	var ts int64
	if m.clock != nil {
		ts = m.clock.Now()
	}

	fmt.Fprintf(w, "{\"now\":%d}", ts)
}

func (m *Monitor) listEvents(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := listParseParams(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, err.Error())

		return
	}

	events := m.buf.Snapshot()

	if offset > len(events) {
		offset = len(events)
	}
	events = events[offset:]

	if limit > 0 && limit < len(events) {
		events = events[:limit]
	}

	rsp, err := json.Marshal(events)
	dieOnErr(err)

	_, err = w.Write(rsp)
	dieOnErr(err)
}

func (m *Monitor) listSpans(w http.ResponseWriter, _ *http.Request) {
	summaries := summarize(m.buf.Snapshot())

	rsp, err := json.Marshal(summaries)
	dieOnErr(err)

	_, err = w.Write(rsp)
	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	RSS        uint64  `json:"rss"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	proc, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memoryInfo, err := proc.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		RSS:        memoryInfo.RSS,
	}

	b, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(b)
	dieOnErr(err)
}

func listParseParams(r *http.Request) (limit, offset int, err error) {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		limitStr = "0"
	}
	limit, err = strconv.Atoi(limitStr)
	if err != nil {
		return 0, 0, err
	}

	offsetStr := r.URL.Query().Get("offset")
	if offsetStr == "" {
		offsetStr = "0"
	}
	offset, err = strconv.Atoi(offsetStr)
	if err != nil {
		return limit, 0, err
	}

	return limit, offset, nil
}

func dieOnErr(err error) {
	if err != nil {
		panic(err)
	}
}
