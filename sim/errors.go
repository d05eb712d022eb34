package sim

import (
	"errors"
	"fmt"
)

// ErrEmptyProcess indicates a process definition with no nodes. An empty
// graph cannot be simulated and is rejected before the kernel starts.
var ErrEmptyProcess = errors.New("process definition has no nodes")

// ConfigError reports an invalid run configuration value. Configuration
// errors short-circuit the run to a FAILED result before the kernel starts.
type ConfigError struct {
	// Field is the configuration field that failed validation.
	Field string

	// Message is the human-readable description of the violation.
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// GraphError reports a structural problem in the process graph: a dependency
// cycle, an unresolved predecessor reference, or a node parameter that would
// make the simulation diverge. Graph errors short-circuit the run to a
// FAILED result before the kernel starts.
type GraphError struct {
	// Code is a machine-readable error code for programmatic handling.
	Code string

	// StepID identifies the offending node, when one can be named.
	StepID string

	// Message is the human-readable error description.
	Message string
}

// Graph error codes.
const (
	// GraphErrCycle indicates the predecessor relation contains a cycle.
	GraphErrCycle = "CYCLE"

	// GraphErrUnknownPredecessor indicates a predecessor reference that does
	// not resolve to a declared step.
	GraphErrUnknownPredecessor = "UNKNOWN_PREDECESSOR"

	// GraphErrDuplicateStep indicates two nodes declared the same step id.
	GraphErrDuplicateStep = "DUPLICATE_STEP"

	// GraphErrReworkDivergence indicates an inspection node whose rework
	// probability is 1 or greater, which would rework forever.
	GraphErrReworkDivergence = "REWORK_DIVERGENCE"

	// GraphErrInvalidNode indicates a node parameter outside its legal range.
	GraphErrInvalidNode = "INVALID_NODE"
)

// Error implements the error interface.
func (e *GraphError) Error() string {
	if e.StepID != "" {
		return fmt.Sprintf("graph: %s: step %s: %s", e.Code, e.StepID, e.Message)
	}
	return fmt.Sprintf("graph: %s: %s", e.Code, e.Message)
}
