package trace

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/spanlab/asyncspan/recording"
)

// NewWriterFromEnv builds a trace writer from the environment, optionally
// seeded from a .env file in the working directory. Recognized variables:
//
//	ASYNCSPAN_TRACE_FORMAT  jsonl (default), csv, or sqlite
//	ASYNCSPAN_TRACE_PATH    output path without extension; empty picks a
//	                        unique name
func NewWriterFromEnv() Sink {
	_ = godotenv.Load()

	format := os.Getenv("ASYNCSPAN_TRACE_FORMAT")
	if format == "" {
		format = "jsonl"
	}

	path := os.Getenv("ASYNCSPAN_TRACE_PATH")

	switch format {
	case "jsonl":
		w := NewJSONLWriter(path)
		w.Init()

		return w
	case "csv":
		w := NewCSVWriter(path)
		w.Init()

		return w
	case "sqlite":
		return NewDBWriter(recording.New(path))
	default:
		panic(fmt.Errorf("unknown trace format %s", format))
	}
}
