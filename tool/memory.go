package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hupe1980/agentcore/core"
)

// InvalidActionResult is returned by the memory tool for unknown actions.
const InvalidActionResult = "Invalid action"

// Memory tool actions.
const (
	MemoryStore    = "store"
	MemoryRetrieve = "retrieve"
)

// MemoryScope selects how the memory tool partitions its store.
type MemoryScope int

const (
	// ScopeAgent shares keys between all runs using the same tool instance.
	ScopeAgent MemoryScope = iota
	// ScopeRun isolates keys per run using the run id carried by the context.
	ScopeRun
)

// MemoryToolOptions configures a MemoryTool.
type MemoryToolOptions struct {
	// Namespace partitions the backing store (typically the agent name).
	Namespace string
	Scope     MemoryScope
}

// MemoryTool stores and retrieves values in a constructor-injected
// core.MemoryStore. Its keys are independent from core.State memory.
//
// With ScopeAgent (default) concurrent runs sharing the tool also share keys.
// Use ScopeRun when runs must not observe each other's values.
type MemoryTool struct {
	store core.MemoryStore
	opts  MemoryToolOptions
}

// NewMemoryTool creates a memory tool backed by store.
func NewMemoryTool(store core.MemoryStore, optFns ...func(o *MemoryToolOptions)) *MemoryTool {
	opts := MemoryToolOptions{Namespace: "default", Scope: ScopeAgent}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &MemoryTool{store: store, opts: opts}
}

// Name returns the default registration name.
func (t *MemoryTool) Name() string { return "memory" }

// Description returns the tool description.
func (t *MemoryTool) Description() string {
	return "Store or retrieve values by key. Arguments: action (store|retrieve), key (string), value (any, store only)."
}

// Parameters returns the JSON schema for tool parameters.
func (t *MemoryTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type":        "string",
				"enum":        []string{MemoryStore, MemoryRetrieve},
				"description": "The memory operation to perform",
			},
			"key": map[string]any{
				"type":        "string",
				"description": "Memory key",
			},
			"value": map[string]any{
				"description": "Value for store operations (any type)",
			},
		},
		"required": []string{"action"},
	}
}

// Execute implements the store/retrieve protocol:
//
//	store    -> "Stored: <key>"
//	retrieve -> JSON encoding of the value, "null" when absent
//	other    -> "Invalid action"
func (t *MemoryTool) Execute(ctx context.Context, args core.Args) string {
	action := args.String(0, "action")
	key := args.String(1, "key")
	ns := t.namespace(ctx)

	switch action {
	case MemoryStore:
		value, _ := args.Value(2, "value")
		if err := t.store.Put(ctx, ns, key, value); err != nil {
			return NewToolError(t.Name(), fmt.Sprintf("store %q: %v", key, err), CodeExecution).Render()
		}
		return "Stored: " + key
	case MemoryRetrieve:
		value, ok, err := t.store.Get(ctx, ns, key)
		if err != nil {
			return NewToolError(t.Name(), fmt.Sprintf("retrieve %q: %v", key, err), CodeExecution).Render()
		}
		if !ok {
			return "null"
		}
		data, err := json.Marshal(value)
		if err != nil {
			return NewToolError(t.Name(), fmt.Sprintf("encode %q: %v", key, err), CodeExecution).Render()
		}
		return string(data)
	default:
		return InvalidActionResult
	}
}

func (t *MemoryTool) namespace(ctx context.Context) string {
	if t.opts.Scope == ScopeRun {
		if id, ok := core.RunIDFromContext(ctx); ok {
			return t.opts.Namespace + "/" + id
		}
	}
	return t.opts.Namespace
}

// Builtins returns the default tool set: search (mock backend), calculator and
// memory bound to store under namespace.
func Builtins(store core.MemoryStore, namespace string) []Tool {
	return []Tool{
		NewSearchTool(nil),
		NewCalculatorTool(),
		NewMemoryTool(store, func(o *MemoryToolOptions) { o.Namespace = namespace }),
	}
}
