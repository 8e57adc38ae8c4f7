package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidGoal is returned by Run for empty or whitespace-only goals.
	// No state is created when it is returned.
	ErrInvalidGoal = errors.New("invalid goal: goal must not be blank")

	// ErrToolNotFound marks a dispatch to an unregistered tool name. It is
	// never fatal: dispatch renders it as a diagnostic string.
	ErrToolNotFound = errors.New("tool not found")
)

// ReasoningError wraps a failure of the reasoning provider at a given step.
type ReasoningError struct {
	Provider string // Provider identification (type name or configured name)
	Step     int    // Step at which the call failed
	Err      error  // Underlying cause
}

func (e *ReasoningError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("reasoning provider %s failed at step %d: %v", e.Provider, e.Step, e.Err)
	}
	return fmt.Sprintf("reasoning failed at step %d: %v", e.Step, e.Err)
}

func (e *ReasoningError) Unwrap() error { return e.Err }

// RunError is the failure outcome of an agent run. Partial holds the report
// accumulated up to the failing step; its Results never contain the error.
type RunError struct {
	RunID   string
	Agent   string
	Step    int
	Err     error
	Partial *RunReport
}

func (e *RunError) Error() string {
	return fmt.Sprintf("agent %s run %s aborted at step %d: %v", e.Agent, e.RunID, e.Step, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }
