package core

import (
	"sync"
	"time"
)

// Clock returns the current time. Tests inject fixed clocks to make
// timestamps deterministic.
type Clock func() time.Time

// History roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Turn is a single conversational record appended to the run history.
type Turn struct {
	Role      string    `json:"role" yaml:"role"`
	Content   string    `json:"content" yaml:"content"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// ToolRecord captures one resolved tool dispatch and its (string) outcome.
type ToolRecord struct {
	ToolName  string    `json:"tool" yaml:"tool"`
	Args      Args      `json:"args" yaml:"args"`
	Result    string    `json:"result" yaml:"result"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// State is the mutable record of a single agent run: goal, step counter,
// conversation history, key/value memory and the tool invocation log. It is
// safe for concurrent access.
//
// Contract:
//   - Goal never changes after NewState
//   - History and ToolLog are append-only; insertion order is meaningful
//   - Memory is only mutated through SetMemory (driven by the remember action)
//   - Snapshot accessors return copies to avoid external mutation
//
// A State is owned by exactly one run and must not be shared between runs.
type State struct {
	goal    string
	step    int
	history []Turn
	memory  map[string]any
	toolLog []ToolRecord
	now     Clock
	mu      sync.RWMutex
}

// NewState creates a fresh run state for the given goal. A nil clock falls
// back to time.Now.
func NewState(goal string, clock Clock) *State {
	if clock == nil {
		clock = time.Now
	}
	return &State{goal: goal, history: []Turn{}, memory: map[string]any{}, toolLog: []ToolRecord{}, now: clock}
}

// Goal returns the goal the run was started with.
func (s *State) Goal() string { return s.goal }

// Step returns the index of the current step (equal to the number of
// completed iterations).
func (s *State) Step() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.step
}

// Advance marks the current step as completed.
func (s *State) Advance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step++
}

// AppendHistory appends a turn stamped with the state's clock.
func (s *State) AppendHistory(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, Turn{Role: role, Content: content, Timestamp: s.now().UTC()})
}

// RecordToolUse appends a tool log entry. It never fails; tool failures are
// carried inside result.
func (s *State) RecordToolUse(name string, args Args, result string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toolLog = append(s.toolLog, ToolRecord{ToolName: name, Args: args.Clone(), Result: result, Timestamp: s.now().UTC()})
}

// SetMemory stores a value under key.
func (s *State) SetMemory(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory[key] = value
}

// GetMemory returns the value stored under key or nil if the key is missing.
func (s *State) GetMemory(key string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.memory[key]
}

// History returns a defensive copy of the conversation history.
func (s *State) History() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

// ToolLog returns a defensive copy of the tool invocation log.
func (s *State) ToolLog() []ToolRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ToolRecord, len(s.toolLog))
	copy(out, s.toolLog)
	return out
}

// Memory returns a shallow copy of the key/value memory.
func (s *State) Memory() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.memory))
	for k, v := range s.memory {
		out[k] = v
	}
	return out
}
