package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/agentflow/core"
	"github.com/hupe1980/agentflow/model"
	"github.com/hupe1980/agentflow/retry"
	"github.com/hupe1980/agentflow/tool"
)

// DefaultMaxToolIterations bounds the tool-call loop when no explicit limit
// is configured.
const DefaultMaxToolIterations = 10

// Options configures an Agent instance.
//
// Use functional option mutators with New to override defaults.
type Options struct {
	// Description summarizes the agent's purpose. It is exposed to calling
	// models when the agent is wrapped as a tool.
	Description string

	// Instruction is the system prompt template; `{key}` placeholders are
	// substituted with shared state values at run time.
	Instruction Instruction

	// OutputKey names the shared state key receiving the agent's final text.
	// Empty means the result flows only to the caller, never to the store.
	OutputKey string

	// Tools lists the callable capabilities declared to the model, in the
	// order they are presented.
	Tools []tool.Tool

	// RetryPolicy wraps every model and tool invocation. Nil selects
	// retry.DefaultPolicy.
	RetryPolicy *retry.Policy

	// MaxToolIterations bounds the number of tool-call rounds in one run.
	// Zero or negative selects DefaultMaxToolIterations.
	MaxToolIterations int
}

// Agent is the atomic execution unit: it renders its instruction against
// shared state, invokes the model (optionally looping over tool calls) and
// writes its final text under the declared output key.
//
// An Agent is immutable after construction and safe for concurrent use; the
// same instance may appear in several workflows or be wrapped as a tool via
// tool.NewAgentTool.
type Agent struct {
	BaseAgent
	llm               model.Model            // Language model backing this agent
	instruction       Instruction            // System prompt template
	outputKey         string                 // Shared state key for the final text
	tools             []tool.Tool            // Declared tools, in declaration order
	toolIndex         map[string]tool.Tool   // Name -> tool lookup for dispatch
	toolDefs          []model.ToolDefinition // Pre-built model-facing declarations
	retryPolicy       *retry.Policy          // Wraps model and tool invocations
	maxToolIterations int                    // Tool-call round bound
}

// New creates a model-backed agent with sensible defaults.
//
// The agent is initialized with:
//   - A generic assistant instruction (override via Options.Instruction)
//   - No tools and no output key
//   - retry.DefaultPolicy around model and tool invocations
//   - DefaultMaxToolIterations as the tool loop bound
//
// Example:
//
//	writer := agent.New("writer", llm, func(o *agent.Options) {
//	  o.Instruction = agent.NewInstructionFromText(
//	    "Write a blog post following this outline strictly: {blog_outline}")
//	  o.OutputKey = "blog_draft"
//	})
func New(name string, llm model.Model, optFns ...func(o *Options)) *Agent {
	opts := Options{
		Instruction:       NewInstructionFromText(fmt.Sprintf("You are %s, a helpful AI assistant.", name)),
		RetryPolicy:       retry.DefaultPolicy,
		MaxToolIterations: DefaultMaxToolIterations,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.RetryPolicy == nil {
		opts.RetryPolicy = retry.DefaultPolicy
	}
	if opts.MaxToolIterations <= 0 {
		opts.MaxToolIterations = DefaultMaxToolIterations
	}

	a := &Agent{
		BaseAgent:         NewBaseAgent(name),
		llm:               llm,
		instruction:       opts.Instruction,
		outputKey:         opts.OutputKey,
		tools:             opts.Tools,
		toolIndex:         make(map[string]tool.Tool, len(opts.Tools)),
		toolDefs:          buildToolDefinitions(opts.Tools),
		retryPolicy:       opts.RetryPolicy,
		maxToolIterations: opts.MaxToolIterations,
	}

	if opts.Description != "" {
		a.SetDescription(opts.Description)
	}
	for _, t := range opts.Tools {
		a.toolIndex[t.Name()] = t
	}

	return a
}

// Model returns the language model backing this agent.
func (a *Agent) Model() model.Model { return a.llm }

// OutputKey returns the shared state key receiving the agent's final text.
func (a *Agent) OutputKey() string { return a.outputKey }

// Tools returns a copy of the declared tool list in declaration order.
func (a *Agent) Tools() []tool.Tool {
	out := make([]tool.Tool, len(a.tools))
	copy(out, a.tools)
	return out
}

// Run implements core.Component. It renders the instruction, invokes the
// model under the retry policy, dispatches requested tool calls (each under
// the same policy) until the model answers with text, then writes the final
// text under the output key.
//
// Failures propagate with the agent's name prefixed; the agent never
// partially succeeds, and a failed run writes nothing to shared state.
func (a *Agent) Run(rc *core.RunContext) (*core.Content, error) {
	rc.LogDebug("agent.run.start", "agent", a.Name(), "run", rc.RunID, "branch", rc.Branch)

	instructions, err := a.instruction.Render(rc)
	if err != nil {
		var mv *MissingVariableError
		if errors.As(err, &mv) && mv.Agent == "" {
			mv.Agent = a.Name()
		}
		rc.LogError("agent.render.error", "agent", a.Name(), "error", err.Error())

		return nil, fmt.Errorf("agent %s: %w", a.Name(), err)
	}

	var contents []*core.Content
	if rc.UserInput != "" {
		contents = append(contents, core.NewUserContent(rc.UserInput))
	}

	toolRounds := 0
	for {
		resp, err := a.invokeModel(rc, instructions, contents)
		if err != nil {
			return nil, fmt.Errorf("agent %s: %w", a.Name(), err)
		}

		calls := resp.Content.FunctionCalls()
		if len(calls) == 0 {
			text := resp.Content.Text()
			if a.outputKey != "" {
				rc.SetState(a.outputKey, text)
			}

			rc.LogInfo("agent.run.complete",
				"agent", a.Name(),
				"tool_rounds", toolRounds,
				"output_key", a.outputKey,
			)

			return resp.Content, nil
		}

		if toolRounds >= a.maxToolIterations {
			rc.LogError("agent.tool_loop.exceeded", "agent", a.Name(), "limit", a.maxToolIterations)

			return nil, fmt.Errorf("agent %s: %w after %d rounds", a.Name(), ErrToolLoopExceeded, toolRounds)
		}
		toolRounds++

		contents = append(contents, resp.Content)

		responses := &core.Content{Role: core.RoleTool}
		for _, call := range calls {
			result, err := a.dispatchTool(rc, call)
			if err != nil {
				return nil, fmt.Errorf("agent %s: %w", a.Name(), err)
			}
			responses.Parts = append(responses.Parts, core.FunctionResponsePart{
				FunctionResponse: core.FunctionResponse{
					ID:       call.ID,
					Name:     call.Name,
					Response: result,
				},
			})
		}
		contents = append(contents, responses)
	}
}

// invokeModel performs one logical model invocation wrapped by the retry
// policy. Attempt accounting feeds the structured log line.
func (a *Agent) invokeModel(rc *core.RunContext, instructions string, contents []*core.Content) (*model.Response, error) {
	req := &model.Request{
		Instructions: instructions,
		Contents:     contents,
		Tools:        a.toolDefs,
	}

	var resp *model.Response
	attempts := 0
	start := time.Now()

	err := a.retryPolicy.Do(rc.Context, func() error {
		attempts++
		r, err := a.llm.Generate(rc.Context, req)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		rc.LogError("agent.model.error",
			"agent", a.Name(),
			"model", a.llm.Info().Name,
			"attempts", attempts,
			"error", err.Error(),
		)

		return nil, fmt.Errorf("model invocation: %w", err)
	}

	rc.LogDebug("agent.model.call",
		"agent", a.Name(),
		"model", a.llm.Info().Name,
		"attempts", attempts,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return resp, nil
}

// dispatchTool resolves one requested tool call and executes it under the
// retry policy, so transient tool failures get the same backoff treatment as
// model calls.
func (a *Agent) dispatchTool(rc *core.RunContext, call core.FunctionCall) (any, error) {
	t, ok := a.toolIndex[call.Name]
	if !ok {
		return nil, fmt.Errorf("model requested unknown tool %q", call.Name)
	}

	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return nil, fmt.Errorf("tool %s: malformed arguments: %w", call.Name, err)
		}
	}

	toolCtx := core.NewToolContext(rc, a.Name(), call.ID)

	var result any
	err := a.retryPolicy.Do(rc.Context, func() error {
		r, err := t.Call(toolCtx, args)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", call.Name, err)
	}

	return result, nil
}

// buildToolDefinitions converts the tool list into model-facing declarations.
func buildToolDefinitions(tools []tool.Tool) []model.ToolDefinition {
	if len(tools) == 0 {
		return nil
	}
	defs := make([]model.ToolDefinition, len(tools))
	for i, t := range tools {
		defs[i] = model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		}
	}
	return defs
}
