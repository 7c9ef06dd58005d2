package core

import "context"

// ToolContext provides a constrained surface for tool implementations invoked
// by an agent. Tools read and write state through the invoking run context,
// so their writes follow the same direct or isolated visibility rules as the
// agent that requested the call.
type ToolContext struct {
	runCtx         *RunContext
	agentName      string
	functionCallID string

	*loggerAdapter
}

// NewToolContext constructs a tool context bound to a parent RunContext, the
// calling agent and a unique functionCallID.
func NewToolContext(runCtx *RunContext, agentName, functionCallID string) *ToolContext {
	return &ToolContext{
		runCtx:         runCtx,
		agentName:      agentName,
		functionCallID: functionCallID,
		loggerAdapter:  newLoggerAdapter(runCtx.Logger()),
	}
}

// Context returns the context associated with the tool invocation.
func (tc *ToolContext) Context() context.Context { return tc.runCtx.Context }

// SessionID returns the session ID associated with the tool invocation.
func (tc *ToolContext) SessionID() string { return tc.runCtx.SessionID }

// RunID returns the run ID associated with the tool invocation.
func (tc *ToolContext) RunID() string { return tc.runCtx.RunID }

// FunctionCallID returns the function call ID associated with the tool invocation.
func (tc *ToolContext) FunctionCallID() string { return tc.functionCallID }

// AgentName returns the name of the agent that requested the call.
func (tc *ToolContext) AgentName() string { return tc.agentName }

// RunContext returns the invoking run context. Tools that execute nested
// components (agent-as-tool) fork it instead of mutating it.
func (tc *ToolContext) RunContext() *RunContext { return tc.runCtx }

// GetState retrieves the state associated with the given key.
func (tc *ToolContext) GetState(k string) (any, bool) { return tc.runCtx.GetState(k) }

// SetState records a state mutation through the invoking run context.
func (tc *ToolContext) SetState(k string, v any) { tc.runCtx.SetState(k, v) }
