// Package tool implements the capability subsystem of the agent: the Tool
// contract, the name-keyed Registry used for dispatch, and the built-in
// search, calculator and memory tools.
package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/agentcore/core"
	"github.com/hupe1980/agentcore/internal/util"
)

// Tool is a named capability the agent can dispatch to.
//
// Execute must never panic or return an error to the caller: any internal
// failure is caught and rendered as a descriptive string result. The core
// records that string verbatim, so failures and successes share one shape.
//
// Tool implementations should:
//   - Provide clear, descriptive names and descriptions
//   - Read arguments positionally, falling back to named arguments
//   - Render failures as "Error: ..." strings
//   - Be safe for concurrent use if shared between runs
type Tool interface {
	// Name returns the default registration name for this tool.
	Name() string

	// Description returns a human-readable description of what this tool does.
	// It is surfaced to model-backed reasoning providers and the CLI.
	Description() string

	// Execute runs the tool with the given arguments and returns its result.
	Execute(ctx context.Context, args core.Args) string
}

// ParameterSchema is implemented by tools that publish a JSON-schema-like
// description of their named parameters.
type ParameterSchema interface {
	Parameters() map[string]any
}

// ToolError represents errors that occur during tool execution. It never
// escapes a tool; Render turns it into the string result.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

// Error codes used by ToolError.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeExecution  = "EXECUTION_ERROR"
	CodePanic      = "PANIC"
)

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// Render returns the string result form of the error.
func (e *ToolError) Render() string { return "Error: " + e.Message }

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}

// IsFailure reports whether a tool result carries a failure. Built-in tools
// prefix failures with "Error" (e.g. "Error: ...", "Error searching: ...")
// and the memory tool answers "Invalid action" to unknown actions.
func IsFailure(result string) bool {
	return strings.HasPrefix(result, "Error") || result == InvalidActionResult
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError
