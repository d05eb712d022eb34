// Package emit provides event emission and observability for simulation
// runs.
package emit

import "context"

// Emitter receives and processes observability events from a simulation run.
//
// Emitters enable pluggable observability backends:
//   - Logging: stdout, files, JSONL streams.
//   - Distributed tracing: OpenTelemetry.
//   - In-memory capture for tests and dashboards.
//
// Implementations should be:
//   - Non-blocking: avoid slowing down the run.
//   - Resilient: handle backend failures without crashing the run.
//
// The engine emits from inside its cooperative kernel, so calls arrive
// strictly sequenced; implementations that are also used from other
// goroutines (e.g. a dashboard reading a buffer) must synchronize
// themselves.
type Emitter interface {
	// Emit sends one event to the configured backend. Emit must not panic;
	// errors should be handled internally.
	Emit(event Event)

	// EmitBatch sends multiple events in a single operation, preserving
	// order. Returns an error only on catastrophic failure; per-event
	// problems are handled internally.
	EmitBatch(ctx context.Context, events []Event) error

	// Flush ensures all buffered events have reached the backend. Call it
	// before shutdown or after a run completes. Safe to call repeatedly.
	Flush(ctx context.Context) error
}
