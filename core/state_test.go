package core

import (
	"testing"
	"time"
)

func fixedClock() Clock {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return func() time.Time { return ts }
}

func TestState_HistoryAndToolLog(t *testing.T) {
	s := NewState("find docs", fixedClock())

	s.AppendHistory("user", "find docs")
	s.AppendHistory("assistant", "thinking")
	s.RecordToolUse("search", NewArgs("find docs"), "results")

	history := s.History()
	if len(history) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(history))
	}
	if history[0].Role != "user" || history[1].Role != "assistant" {
		t.Fatalf("history order not preserved: %+v", history)
	}
	if !history[0].Timestamp.Equal(fixedClock()()) {
		t.Errorf("expected injected clock timestamp, got %v", history[0].Timestamp)
	}

	history[0].Content = "changed"
	if s.History()[0].Content != "find docs" {
		t.Error("history slice should be copied on read")
	}

	log := s.ToolLog()
	if len(log) != 1 || log[0].ToolName != "search" || log[0].Result != "results" {
		t.Fatalf("unexpected tool log: %+v", log)
	}
	if log[0].Args.String(0, "query") != "find docs" {
		t.Errorf("tool args not recorded: %+v", log[0].Args)
	}
}

func TestState_Memory(t *testing.T) {
	s := NewState("g", nil)

	if v := s.GetMemory("missing"); v != nil {
		t.Fatalf("expected nil for missing key, got %v", v)
	}

	s.SetMemory("goal", "g")
	if s.GetMemory("goal") != "g" {
		t.Fatalf("memory not stored")
	}

	snap := s.Memory()
	snap["goal"] = "mutated"
	if s.GetMemory("goal") != "g" {
		t.Error("memory snapshot should be isolated")
	}
}

func TestState_Advance(t *testing.T) {
	s := NewState("g", nil)
	if s.Step() != 0 {
		t.Fatalf("expected initial step 0, got %d", s.Step())
	}
	s.Advance()
	s.Advance()
	if s.Step() != 2 {
		t.Fatalf("expected step 2, got %d", s.Step())
	}
	if s.Goal() != "g" {
		t.Fatalf("goal changed: %q", s.Goal())
	}
}

func TestArgs_ValueFallback(t *testing.T) {
	a := NewArgs("store", "k").With("value", 42)

	if a.String(0, "action") != "store" {
		t.Errorf("positional lookup failed")
	}
	if v, ok := a.Value(2, "value"); !ok || v != 42 {
		t.Errorf("named fallback failed: %v %v", v, ok)
	}
	if a.String(5, "missing") != "" {
		t.Errorf("missing value should render empty")
	}
	if a.Len() != 3 {
		t.Errorf("expected 3 args, got %d", a.Len())
	}

	c := a.Clone()
	c.Positional[0] = "retrieve"
	c.Named["value"] = 0
	if a.Positional[0] != "store" || a.Named["value"] != 42 {
		t.Error("Clone should deep copy slices and maps")
	}
}
