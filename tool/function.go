package tool

import (
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/agentflow/core"
	"github.com/hupe1980/agentflow/internal/util"
)

// Func is the implementation signature wrapped by FunctionTool. Arguments
// arrive schema validated; the tool context gives access to session state,
// logging and the function call ID.
type Func func(toolCtx *core.ToolContext, args map[string]any) (any, error)

// FunctionTool adapts a plain Go function into a Tool. It validates model
// supplied arguments against a declared JSON schema before invoking the
// function and normalizes failures into *ToolError, so every tool reports
// errors the same way:
//
//	validation failure           -> Code "VALIDATION_ERROR"
//	function returned an error   -> Code "EXECUTION_ERROR", cause preserved
//	function returned *ToolError -> forwarded unchanged
//
// A FunctionTool holds no mutable state after construction; parallel branches
// may call it concurrently. The returned value must be JSON-serializable.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          Func
}

// NewFunctionTool constructs a FunctionTool from an explicit schema.
//
//	sum := tool.NewFunctionTool("calculate_sum", "Add two numbers.",
//		map[string]any{
//			"type": "object",
//			"properties": map[string]any{
//				"a": map[string]any{"type": "number"},
//				"b": map[string]any{"type": "number"},
//			},
//			"required": []string{"a", "b"},
//		},
//		func(_ *core.ToolContext, args map[string]any) (any, error) {
//			return args["a"].(float64) + args["b"].(float64), nil
//		})
func NewFunctionTool(name, description string, parameters map[string]any, fn Func) *FunctionTool {
	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// NewFunctionToolFromStruct derives the parameter schema from an argument
// struct via util.SchemaFor. Convenient for simple argument containers:
//
//	type SumArgs struct {
//		A float64 `json:"a" description:"First addend"`
//		B float64 `json:"b" description:"Second addend"`
//	}
//
//	sum := tool.NewFunctionToolFromStruct("calculate_sum", "Add two numbers.",
//		SumArgs{},
//		func(_ *core.ToolContext, args map[string]any) (any, error) {
//			return args["a"].(float64) + args["b"].(float64), nil
//		})
func NewFunctionToolFromStruct(name, description string, argsType any, fn Func) *FunctionTool {
	return NewFunctionTool(name, description, util.SchemaFor(argsType), fn)
}

// Name returns the tool identifier used in function declarations and routing.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the natural language description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the JSON schema describing accepted arguments.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call validates args against the declared schema and invokes the wrapped
// function. Failures keep their cause in the error chain, so transient
// classifications survive for the caller's retry policy.
func (t *FunctionTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	logger := toolCtx.Logger()
	start := time.Now()

	logger.Debug("tool.call.start", "tool", t.name, "fc_id", toolCtx.FunctionCallID())

	if err := util.ValidateArgs(args, t.parameters); err != nil {
		logger.Warn("tool.call.validation_failed", "tool", t.name, "error", err.Error())

		return nil, &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    "VALIDATION_ERROR",
			Details: err,
		}
	}

	result, err := t.fn(toolCtx, args)
	if err != nil {
		var toolErr *ToolError
		if errors.As(err, &toolErr) {
			logger.Error("tool.call.error", "tool", t.name, "error", toolErr.Message)
			return nil, toolErr
		}

		logger.Error("tool.call.error", "tool", t.name, "error", err.Error())

		return nil, &ToolError{
			Tool:    t.name,
			Message: err.Error(),
			Code:    "EXECUTION_ERROR",
			Err:     err,
		}
	}

	logger.Info("tool.call.success", "tool", t.name, "duration_ms", time.Since(start).Milliseconds())

	return result, nil
}
