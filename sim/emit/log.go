package emit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// LogEmitter implements Emitter by writing structured output to a writer.
//
// Two output modes are supported:
//   - Text mode (default): human-readable lines with key=value pairs.
//   - JSON mode: one JSON object per line (JSONL), machine-readable.
//
// Example text output:
//
//	[task_start] t=30.0 run=run-001 engine=2 step=S003
//
// Example JSON output:
//
//	{"runID":"run-001","engineID":2,"stepID":"S003","time":30,"msg":"task_start","meta":null}
//
// Usage:
//
//	// Text output to stderr.
//	emitter := emit.NewLogEmitter(os.Stderr, false)
//
//	// JSONL output to a file.
//	f, _ := os.Create("events.jsonl")
//	defer func() { _ = f.Close() }()
//	emitter := emit.NewLogEmitter(f, true)
type LogEmitter struct {
	writer   io.Writer
	jsonMode bool
}

// NewLogEmitter creates a LogEmitter writing to the given writer (stdout
// when nil), in JSON mode when jsonMode is true.
func NewLogEmitter(writer io.Writer, jsonMode bool) *LogEmitter {
	if writer == nil {
		writer = os.Stdout
	}
	return &LogEmitter{writer: writer, jsonMode: jsonMode}
}

// Emit writes one event in the configured format.
func (l *LogEmitter) Emit(event Event) {
	if l.jsonMode {
		l.emitJSON(event)
	} else {
		l.emitText(event)
	}
}

func (l *LogEmitter) emitJSON(event Event) {
	data, err := json.Marshal(struct {
		RunID    string                 `json:"runID"`
		EngineID int                    `json:"engineID"`
		StepID   string                 `json:"stepID"`
		Time     float64                `json:"time"`
		Msg      string                 `json:"msg"`
		Meta     map[string]interface{} `json:"meta"`
	}{
		RunID:    event.RunID,
		EngineID: event.EngineID,
		StepID:   event.StepID,
		Time:     event.Time,
		Msg:      event.Msg,
		Meta:     event.Meta,
	})
	if err != nil {
		_, _ = fmt.Fprintf(l.writer, "{\"error\":\"failed to marshal event: %v\"}\n", err)
		return
	}
	_, _ = fmt.Fprintf(l.writer, "%s\n", data)
}

func (l *LogEmitter) emitText(event Event) {
	_, _ = fmt.Fprintf(l.writer, "[%s] t=%.1f run=%s engine=%d step=%s",
		event.Msg, event.Time, event.RunID, event.EngineID, event.StepID)
	if len(event.Meta) > 0 {
		metaJSON, err := json.Marshal(event.Meta)
		if err == nil {
			_, _ = fmt.Fprintf(l.writer, " meta=%s", metaJSON)
		} else {
			_, _ = fmt.Fprintf(l.writer, " meta=%v", event.Meta)
		}
	}
	_, _ = fmt.Fprint(l.writer, "\n")
}

// EmitBatch writes the events in order, in the configured format.
func (l *LogEmitter) EmitBatch(_ context.Context, events []Event) error {
	for _, event := range events {
		l.Emit(event)
	}
	return nil
}

// Flush is a no-op: LogEmitter writes directly to the underlying writer,
// which handles its own buffering. Wrap the writer with bufio.Writer and
// flush it directly if buffered writes are needed.
func (l *LogEmitter) Flush(context.Context) error {
	return nil
}
