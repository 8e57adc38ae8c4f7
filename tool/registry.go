package tool

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/agentcore/core"
)

// Registry maps names to tools. Registration is last-write-wins so a built-in
// can be overridden by registering a replacement under the same name.
//
// A Registry is safe for concurrent use, but a run should dispatch through a
// Snapshot so registrations made while it is in flight do not affect it.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates a registry pre-populated with tools under their
// default names.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		r.tools[t.Name()] = t
	}
	return r
}

// Register inserts or overwrites the tool stored under name.
func (r *Registry) Register(name string, t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[name] = t
}

// Resolve returns the tool registered under name. The error wraps
// core.ErrToolNotFound.
func (r *Registry) Resolve(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrToolNotFound, name)
	}
	return t, nil
}

// Dispatch resolves and executes a tool. It never panics and never fails:
// an unknown name yields "Tool '<name>' not found" and a panicking tool is
// rendered as an "Error: ..." result.
func (r *Registry) Dispatch(ctx context.Context, name string, args core.Args) string {
	t, err := r.Resolve(name)
	if err != nil {
		return NotFoundResult(name)
	}
	return SafeExecute(ctx, name, t, args)
}

// SafeExecute runs t, converting a panic into an error result.
func SafeExecute(ctx context.Context, name string, t Tool, args core.Args) (result string) {
	defer func() {
		if p := recover(); p != nil {
			result = NewToolError(name, fmt.Sprintf("tool panicked: %v", p), CodePanic).Render()
		}
	}()
	return t.Execute(ctx, args)
}

// NotFoundResult is the dispatch result for an unregistered tool name.
func NotFoundResult(name string) string {
	return fmt.Sprintf("Tool '%s' not found", name)
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for n := range r.tools {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Snapshot returns an independent copy of the registry.
func (r *Registry) Snapshot() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c := &Registry{tools: make(map[string]Tool, len(r.tools))}
	for n, t := range r.tools {
		c.tools[n] = t
	}
	return c
}

// Info describes a registered tool.
type Info struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Parameters  map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// Describe lists the registered tools sorted by name.
func (r *Registry) Describe() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, 0, len(r.tools))
	for n, t := range r.tools {
		info := Info{Name: n, Description: t.Description()}
		if ps, ok := t.(ParameterSchema); ok {
			info.Parameters = ps.Parameters()
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
