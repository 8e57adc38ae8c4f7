package core

import (
	"errors"
	"testing"
)

func TestEvent_Constructors(t *testing.T) {
	e := NewEvent("run-1", "bot", EventRunStarted, 0)
	if e.RunID != "run-1" || e.Agent != "bot" || e.ID == "" || e.Timestamp.IsZero() {
		t.Fatalf("NewEvent did not initialize fields correctly: %+v", e)
	}

	th := NewThoughtEvent("run-1", "bot", 2, Thought{Analysis: "a", Confidence: 0.5})
	if th.Type != EventThought || th.Thought == nil || th.Thought.Analysis != "a" || th.Step != 2 {
		t.Fatalf("NewThoughtEvent malformed: %+v", th)
	}

	act := NewActionEvent("run-1", "bot", 3, Action{Name: ActionRespond}, "done")
	if act.Type != EventAction || act.Action == nil || act.Result != "done" {
		t.Fatalf("NewActionEvent malformed: %+v", act)
	}

	fail := NewFailureEvent("run-1", "bot", 4, errors.New("boom"))
	if fail.Type != EventRunFailed || fail.Error != "boom" {
		t.Fatalf("NewFailureEvent malformed: %+v", fail)
	}

	if NewID() == NewID() {
		t.Error("expected unique ids")
	}
}

func TestObserverFunc(t *testing.T) {
	var got []EventType
	var o Observer = ObserverFunc(func(e Event) { got = append(got, e.Type) })
	o.OnEvent(NewEvent("r", "a", EventRunStarted, 0))
	o.OnEvent(NewEvent("r", "a", EventRunCompleted, 1))
	if len(got) != 2 || got[0] != EventRunStarted || got[1] != EventRunCompleted {
		t.Fatalf("unexpected events: %v", got)
	}
}

func TestErrors_Unwrap(t *testing.T) {
	cause := errors.New("auth failed")
	re := &ReasoningError{Provider: "openai", Step: 3, Err: cause}
	runErr := &RunError{RunID: "r", Agent: "a", Step: 3, Err: re}

	if !errors.Is(runErr, cause) {
		t.Error("RunError should unwrap to the root cause")
	}
	var target *ReasoningError
	if !errors.As(runErr, &target) || target.Provider != "openai" {
		t.Error("RunError should unwrap to ReasoningError")
	}
	if (Thought{Confidence: 1.2}).Validate() == nil {
		t.Error("expected confidence validation error")
	}
	if (Thought{Confidence: 0}).Validate() != nil {
		t.Error("zero confidence is valid")
	}
}
