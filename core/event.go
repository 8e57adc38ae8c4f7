package core

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates the run lifecycle notifications.
type EventType string

const (
	EventRunStarted   EventType = "run_started"
	EventThought      EventType = "thought"
	EventAction       EventType = "action"
	EventRunCompleted EventType = "run_completed"
	EventRunFailed    EventType = "run_failed"
)

// Event is a run lifecycle notification delivered to an Observer. After
// emission it should be treated as immutable. Thought is set for thought
// events, Action and Result for action events, Error for failures.
type Event struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	Agent     string    `json:"agent"`
	Type      EventType `json:"type"`
	Step      int       `json:"step"`
	Timestamp time.Time `json:"timestamp"`
	Thought   *Thought  `json:"thought,omitempty"`
	Action    *Action   `json:"action,omitempty"`
	Result    string    `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// NewEvent creates a bare event bound to a run.
func NewEvent(runID, agent string, typ EventType, step int) Event {
	return Event{
		ID:        NewID(),
		RunID:     runID,
		Agent:     agent,
		Type:      typ,
		Step:      step,
		Timestamp: time.Now().UTC(),
	}
}

// NewThoughtEvent records the reasoning output of a step.
func NewThoughtEvent(runID, agent string, step int, t Thought) Event {
	e := NewEvent(runID, agent, EventThought, step)
	e.Thought = &t
	return e
}

// NewActionEvent records the selected action and its outcome.
func NewActionEvent(runID, agent string, step int, a Action, result string) Event {
	e := NewEvent(runID, agent, EventAction, step)
	e.Action = &a
	e.Result = result
	return e
}

// NewFailureEvent records a loop-level failure.
func NewFailureEvent(runID, agent string, step int, err error) Event {
	e := NewEvent(runID, agent, EventRunFailed, step)
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// NewID generates a new unique identifier for runs and events.
func NewID() string { return uuid.NewString() }

// Observer receives run lifecycle events. Implementations are called
// synchronously from the run loop and should return quickly.
type Observer interface {
	OnEvent(e Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(e Event)

// OnEvent implements Observer.
func (f ObserverFunc) OnEvent(e Event) { f(e) }
