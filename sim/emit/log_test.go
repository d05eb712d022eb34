package emit

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLogEmitterText(t *testing.T) {
	var buf bytes.Buffer
	emitter := NewLogEmitter(&buf, false)

	emitter.Emit(Event{
		RunID:    "run-001",
		EngineID: 2,
		StepID:   "S003",
		Time:     30,
		Msg:      "task_start",
	})

	out := buf.String()
	if !strings.HasPrefix(out, "[task_start]") {
		t.Errorf("expected [task_start] prefix, got %q", out)
	}
	for _, want := range []string{"run=run-001", "engine=2", "step=S003", "t=30.0"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got %q", want, out)
		}
	}
}

func TestLogEmitterJSON(t *testing.T) {
	var buf bytes.Buffer
	emitter := NewLogEmitter(&buf, true)

	emitter.Emit(Event{
		RunID: "run-001",
		Msg:   "sim_complete",
		Meta:  map[string]interface{}{"engines_completed": 3},
	})

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["msg"] != "sim_complete" || decoded["runID"] != "run-001" {
		t.Errorf("unexpected payload: %v", decoded)
	}
}

func TestLogEmitterBatch(t *testing.T) {
	var buf bytes.Buffer
	emitter := NewLogEmitter(&buf, true)

	events := []Event{
		{RunID: "r", Msg: "engine_start", EngineID: 1},
		{RunID: "r", Msg: "engine_complete", EngineID: 1},
	}
	if err := emitter.EmitBatch(context.Background(), events); err != nil {
		t.Fatalf("EmitBatch failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Errorf("expected 2 JSONL lines, got %d", len(lines))
	}
}
