package tool

import (
	"fmt"
	"time"

	"github.com/hupe1980/agentflow/core"
)

// AgentTool exposes a Component (a single agent or a whole workflow) as a
// callable tool, letting an orchestrating agent delegate work mid
// conversation. The wrapped component executes synchronously inside the
// caller's run scope: it reads and writes the caller's shared state, so a
// declared output key becomes visible to later agents of the enclosing
// workflow.
//
// AgentTool holds a read-only reference to the component; wrapping never
// copies or mutates it. Circular references (agent A wraps B wraps A) are a
// configuration error rejected at workflow construction time.
type AgentTool struct {
	component   core.Component
	description string
}

// NewAgentTool wraps a component for use in an agent's tool list. The tool
// name is the component's name, which therefore must be unique within the
// workflow.
func NewAgentTool(component core.Component) *AgentTool {
	return &AgentTool{
		component:   component,
		description: component.Description(),
	}
}

// Name returns the wrapped component's name.
func (t *AgentTool) Name() string { return t.component.Name() }

// Description returns the wrapped component's description, falling back to a
// generic delegation hint when the component has none.
func (t *AgentTool) Description() string {
	if t.description != "" {
		return t.description
	}
	return fmt.Sprintf("Delegate a request to the %s agent and return its answer.", t.component.Name())
}

// Parameters returns the fixed schema of the bridge: one required request string.
func (t *AgentTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"request": map[string]any{
				"type":        "string",
				"description": "The request to hand to the agent.",
			},
		},
		"required": []string{"request"},
	}
}

// Component returns the wrapped component. Workflow validation descends
// through it to reject circular agent-as-tool references.
func (t *AgentTool) Component() core.Component { return t.component }

// Call runs the wrapped component to completion with the request as its user
// input and returns its final text. The sub-run shares the caller's state
// visibility; failures propagate with their cause chain intact so the
// caller's retry policy can still classify them.
func (t *AgentTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	request, _ := args["request"].(string)
	if request == "" {
		return nil, &ToolError{
			Tool:    t.Name(),
			Message: "missing required argument \"request\"",
			Code:    "VALIDATION_ERROR",
		}
	}

	rc := toolCtx.RunContext()
	sub := rc.WithBranch(joinBranch(rc.Branch, t.Name())).WithUserInput(request)

	logger := toolCtx.Logger()
	start := time.Now()

	logger.Debug("tool.agent.start", "tool", t.Name(), "fc_id", toolCtx.FunctionCallID())

	content, err := t.component.Run(sub)
	if err != nil {
		logger.Error("tool.agent.error", "tool", t.Name(), "error", err.Error())

		return nil, &ToolError{
			Tool:    t.Name(),
			Message: err.Error(),
			Code:    "EXECUTION_ERROR",
			Err:     err,
		}
	}

	logger.Info("tool.agent.success", "tool", t.Name(), "duration_ms", time.Since(start).Milliseconds())

	return content.Text(), nil
}

// joinBranch appends a child label to a dotted branch path.
func joinBranch(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}
