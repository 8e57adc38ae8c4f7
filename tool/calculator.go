package tool

import (
	"context"

	"github.com/hupe1980/agentcore/core"
	"github.com/hupe1980/agentcore/internal/arith"
)

// CalculatorTool evaluates arithmetic expressions. Only numeric literals,
// unary +/-, the binary operators + - * / and parentheses are accepted;
// identifiers and calls are rejected without being evaluated.
type CalculatorTool struct{}

// NewCalculatorTool creates a calculator tool.
func NewCalculatorTool() *CalculatorTool { return &CalculatorTool{} }

// Name returns the default registration name.
func (t *CalculatorTool) Name() string { return "calculator" }

// Description returns the tool description.
func (t *CalculatorTool) Description() string {
	return "Evaluate an arithmetic expression using numbers, + - * / and parentheses. Arguments: expression (string)."
}

// Parameters returns the JSON schema for tool parameters.
func (t *CalculatorTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"expression": map[string]any{"type": "string", "description": "Arithmetic expression, e.g. (2+3)*4"},
		},
		"required": []string{"expression"},
	}
}

// Execute evaluates the expression and returns "Result: <n>" or "Error: <reason>".
func (t *CalculatorTool) Execute(_ context.Context, args core.Args) string {
	n, err := arith.Eval(args.String(0, "expression"))
	if err != nil {
		return NewToolError(t.Name(), err.Error(), CodeExecution).Render()
	}
	return "Result: " + n.String()
}
