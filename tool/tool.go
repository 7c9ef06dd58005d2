// Package tool implements the function calling subsystem that lets agents
// invoke structured capabilities with schema validated arguments and uniform
// error handling. Besides plain functions it can wrap a whole agent, so one
// agent can delegate work to another through an ordinary tool call.
package tool

import (
	"fmt"

	"github.com/hupe1980/agentflow/core"
	"github.com/hupe1980/agentflow/internal/util"
)

// Tool is a callable capability declared on an agent. The agent advertises
// the tool's name, description and parameter schema to the model; when the
// model requests a call, the agent dispatches it here with decoded arguments
// and a ToolContext for session state access and call correlation.
//
// Implementations must be safe for concurrent use since parallel branches
// may call them simultaneously, and should propagate failures instead of
// swallowing them so the caller's retry policy can classify the cause.
type Tool interface {
	// Name returns the unique identifier for this tool, snake_case
	// recommended.
	Name() string

	// Description tells the model what the tool does and when to use it.
	Description() string

	// Parameters returns a JSON schema describing the accepted arguments.
	Parameters() map[string]any

	// Call executes the tool. Arguments were decoded from the model's
	// function call JSON and validated against the parameter schema.
	Call(toolCtx *core.ToolContext, args map[string]any) (any, error)
}

// ValidationError reports an argument that failed schema validation.
type ValidationError = util.ValidationError

// ToolError represents errors that occur during tool execution. It preserves
// the underlying cause, so a transient failure inside a tool keeps its
// classification when the caller's retry policy inspects the chain.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
	Err     error  `json:"-"`                 // Underlying cause, may be nil
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ToolError) Unwrap() error { return e.Err }

// NewToolError creates a new ToolError with the given code.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}
