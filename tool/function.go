package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/agentcore/core"
	"github.com/hupe1980/agentcore/internal/util"
	"github.com/hupe1980/agentcore/logging"
)

// FunctionTool is a generic adapter that exposes a plain Go function as a Tool.
//
// Responsibilities:
//   - Holds a lightweight JSON-Schema-like parameter schema (parameters)
//   - Maps positional arguments onto parameter names (see WithPositional)
//   - Validates supplied arguments against that schema before execution
//   - Renders the outcome as a string: strings verbatim, other values as JSON,
//     failures as "Error: ..." (VALIDATION_ERROR / EXECUTION_ERROR ToolErrors)
//
// Concurrency:
//
//	A FunctionTool has no internal mutable state after construction and is safe for
//	concurrent use by multiple goroutines.
type FunctionTool struct {
	// Tool identifier (snake_case recommended)
	name string
	// Human-readable description shown to models
	description string
	// JSON schema describing accepted arguments
	parameters map[string]any
	// Parameter names positional arguments bind to, in order
	positional []string
	// User supplied implementation
	fn     func(ctx context.Context, args map[string]any) (any, error)
	logger logging.Logger
}

// NewFunctionTool constructs a FunctionTool from explicit schema and function.
//
// Example:
//
//	sumTool := NewFunctionTool(
//	  "calculate_sum",
//	  "Calculate the sum of two numbers",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "a": map[string]any{"type": "number"},
//	      "b": map[string]any{"type": "number"},
//	    },
//	    "required": []string{"a", "b"},
//	  },
//	  func(_ context.Context, args map[string]any) (any, error) {
//	    return args["a"].(float64) + args["b"].(float64), nil
//	  },
//	).WithPositional("a", "b")
func NewFunctionTool(
	name, description string,
	parameters map[string]any,
	fn func(ctx context.Context, args map[string]any) (any, error),
) *FunctionTool {
	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
		logger:      logging.NoOpLogger{},
	}
}

// NewFunctionToolFromStruct derives the parameter schema from a struct using reflection.
// Positional arguments bind to the struct's fields in declaration order.
func NewFunctionToolFromStruct(
	name, description string,
	structType any,
	fn func(ctx context.Context, args map[string]any) (any, error),
) *FunctionTool {
	schema := util.CreateSchema(structType)
	t := NewFunctionTool(name, description, schema, fn)
	t.positional = util.FieldNames(structType)
	return t
}

// WithPositional declares which parameter names positional arguments bind to.
func (t *FunctionTool) WithPositional(names ...string) *FunctionTool {
	t.positional = append([]string(nil), names...)
	return t
}

// WithLogger attaches a logger used for call tracing.
func (t *FunctionTool) WithLogger(l logging.Logger) *FunctionTool {
	if l != nil {
		t.logger = l
	}
	return t
}

// Name returns the unique tool name.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the short natural language description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the (minimal) JSON schema describing expected arguments.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Execute binds the arguments, validates them against the declared schema and
// invokes the underlying function.
func (t *FunctionTool) Execute(ctx context.Context, args core.Args) string {
	start := time.Now()
	t.logger.Debug("tool.call.start", "tool", t.name)

	params := t.bind(args)
	if err := util.ValidateParameters(params, t.parameters, t.positional...); err != nil {
		t.logger.Warn("tool.call.validation_failed", "tool", t.name, "error", err.Error())
		return (&ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    CodeValidation,
			Details: err,
		}).Render()
	}

	result, err := t.fn(ctx, params)
	if err != nil {
		var toolErr *ToolError
		if !errors.As(err, &toolErr) {
			toolErr = &ToolError{Tool: t.name, Message: err.Error(), Code: CodeExecution}
		}
		t.logger.Error("tool.call.error", "tool", t.name, "error", toolErr.Message)
		return toolErr.Render()
	}

	t.logger.Info("tool.call.success", "tool", t.name, "duration_ms", time.Since(start).Milliseconds())
	return render(result)
}

func (t *FunctionTool) bind(args core.Args) map[string]any {
	params := make(map[string]any, args.Len())
	for i, v := range args.Positional {
		if i < len(t.positional) {
			params[t.positional[i]] = v
		}
	}
	for k, v := range args.Named {
		params[k] = v
	}
	return params
}

func render(v any) string {
	switch r := v.(type) {
	case nil:
		return "null"
	case string:
		return r
	case fmt.Stringer:
		return r.String()
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
