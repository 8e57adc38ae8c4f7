package testutil

import (
	"time"

	"github.com/hupe1980/agentcore/core"
)

// FixedTime is the timestamp produced by FixedClock.
var FixedTime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

// FixedClock returns a clock that always reports FixedTime.
func FixedClock() core.Clock { return func() time.Time { return FixedTime } }

// StateBuilder provides a fluent helper for constructing run states in tests.
//
//	s := NewStateBuilder("find docs").Memory("goal", "find docs").Steps(1).Build()
type StateBuilder struct {
	goal    string
	steps   int
	turns   []core.Turn
	memory  map[string]any
	records []core.ToolRecord
}

// NewStateBuilder creates a builder for goal.
func NewStateBuilder(goal string) *StateBuilder {
	return &StateBuilder{goal: goal, memory: map[string]any{}}
}

// Steps marks n steps as completed (chainable).
func (b *StateBuilder) Steps(n int) *StateBuilder { b.steps = n; return b }

// Turn appends a history turn (chainable).
func (b *StateBuilder) Turn(role, content string) *StateBuilder {
	b.turns = append(b.turns, core.Turn{Role: role, Content: content})
	return b
}

// Memory sets a state memory value (chainable).
func (b *StateBuilder) Memory(key string, value any) *StateBuilder {
	b.memory[key] = value
	return b
}

// ToolUse appends a tool log record (chainable).
func (b *StateBuilder) ToolUse(name string, args core.Args, result string) *StateBuilder {
	b.records = append(b.records, core.ToolRecord{ToolName: name, Args: args, Result: result})
	return b
}

// Build constructs the state using FixedClock.
func (b *StateBuilder) Build() *core.State {
	s := core.NewState(b.goal, FixedClock())
	for _, t := range b.turns {
		s.AppendHistory(t.Role, t.Content)
	}
	for k, v := range b.memory {
		s.SetMemory(k, v)
	}
	for _, r := range b.records {
		s.RecordToolUse(r.ToolName, r.Args, r.Result)
	}
	for i := 0; i < b.steps; i++ {
		s.Advance()
	}
	return s
}
