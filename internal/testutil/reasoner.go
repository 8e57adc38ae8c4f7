package testutil

import (
	"context"
	"sync"

	"github.com/hupe1980/agentcore/core"
)

// ScriptedReasoner returns queued thoughts (or errors) in order. When the
// script is exhausted it repeats Default. It records every context it sees.
type ScriptedReasoner struct {
	Default core.Thought

	mu     sync.Mutex
	script []scripted
	calls  []core.ReasoningContext
}

type scripted struct {
	thought core.Thought
	err     error
}

// NewScriptedReasoner creates a reasoner answering with def once its script
// is empty.
func NewScriptedReasoner(def core.Thought) *ScriptedReasoner {
	return &ScriptedReasoner{Default: def}
}

// Then queues a thought (chainable).
func (r *ScriptedReasoner) Then(t core.Thought) *ScriptedReasoner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.script = append(r.script, scripted{thought: t})
	return r
}

// Fail queues an error (chainable).
func (r *ScriptedReasoner) Fail(err error) *ScriptedReasoner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.script = append(r.script, scripted{err: err})
	return r
}

// Name identifies the reasoner in errors.
func (r *ScriptedReasoner) Name() string { return "scripted" }

// Think implements core.ReasoningProvider.
func (r *ScriptedReasoner) Think(ctx context.Context, rc core.ReasoningContext) (core.Thought, error) {
	if err := ctx.Err(); err != nil {
		return core.Thought{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, rc)
	if len(r.script) == 0 {
		return r.Default, nil
	}
	next := r.script[0]
	r.script = r.script[1:]
	return next.thought, next.err
}

// Calls returns the contexts received so far.
func (r *ScriptedReasoner) Calls() []core.ReasoningContext {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.ReasoningContext(nil), r.calls...)
}
