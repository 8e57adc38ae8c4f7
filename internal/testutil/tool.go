package testutil

import (
	"context"
	"sync"

	"github.com/hupe1980/agentcore/core"
)

// StubTool returns a fixed result and records the arguments it was called with.
type StubTool struct {
	ToolName string
	Result   string
	// Panic makes Execute panic with this value when non-nil.
	Panic any

	mu   sync.Mutex
	args []core.Args
}

// NewStubTool creates a stub named name answering result.
func NewStubTool(name, result string) *StubTool {
	return &StubTool{ToolName: name, Result: result}
}

// Name implements tool.Tool.
func (s *StubTool) Name() string { return s.ToolName }

// Description implements tool.Tool.
func (s *StubTool) Description() string { return "stub " + s.ToolName }

// Execute implements tool.Tool.
func (s *StubTool) Execute(_ context.Context, args core.Args) string {
	s.mu.Lock()
	s.args = append(s.args, args.Clone())
	s.mu.Unlock()
	if s.Panic != nil {
		panic(s.Panic)
	}
	return s.Result
}

// Calls returns the recorded argument sets.
func (s *StubTool) Calls() []core.Args {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Args(nil), s.args...)
}
