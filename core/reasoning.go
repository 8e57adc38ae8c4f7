package core

import (
	"context"
	"fmt"
)

// ReasoningContext is the input handed to a ReasoningProvider for one step.
// History and Memory are snapshots; providers must not retain them across
// calls expecting live updates.
type ReasoningContext struct {
	RunID   string
	Goal    string
	Step    int
	Prompt  string
	History []Turn
	Memory  map[string]any
}

// ReasoningProvider produces a Thought from the current run context.
//
// Implementations may perform network I/O (LLM APIs) and should honour
// context cancellation. Errors are fatal to the current run; providers must
// never fabricate a Thought to paper over a failure.
type ReasoningProvider interface {
	Think(ctx context.Context, rc ReasoningContext) (Thought, error)
}

// ReasoningProviderFunc adapts a plain function to ReasoningProvider.
type ReasoningProviderFunc func(ctx context.Context, rc ReasoningContext) (Thought, error)

// Think implements ReasoningProvider.
func (f ReasoningProviderFunc) Think(ctx context.Context, rc ReasoningContext) (Thought, error) {
	return f(ctx, rc)
}

type runIDKey struct{}

// WithRunID returns a context carrying the id of the active run.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFromContext extracts the run id stored by WithRunID.
func RunIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runIDKey{}).(string)
	return id, ok && id != ""
}

// ProviderName returns the name a provider reports through a Name() string
// method, or its dynamic type otherwise.
func ProviderName(p ReasoningProvider) string {
	if n, ok := p.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", p)
}
