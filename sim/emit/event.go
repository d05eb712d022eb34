package emit

// Event is an observability event emitted during a simulation run.
//
// These are lifecycle notifications (run start/complete, engine admission
// and completion, task execution, waits, rework, rest), distinct from the
// timeline events the engine collects for its result. They exist so a
// backend (log stream, tracer, dashboard) can watch a run as it happens.
type Event struct {
	// RunID identifies the simulation run that emitted this event.
	RunID string

	// EngineID is the product unit the event concerns, or zero for
	// run-level events.
	EngineID int

	// StepID identifies the process step, when the event concerns one.
	StepID string

	// Time is the simulated clock in minutes at emission.
	Time float64

	// Msg is a short machine-friendly description, e.g. "task_start",
	// "engine_complete", "worker_rest".
	Msg string

	// Meta carries additional structured data specific to this event.
	// Common keys:
	//   - "duration": simulated minutes of a completed segment
	//   - "wait_minutes": length of a resource wait
	//   - "rest_minutes": length of a rest period
	//   - "cycle_time": a completed unit's cycle time
	//   - "rework_count": rework iteration of a task segment
	Meta map[string]interface{}
}
