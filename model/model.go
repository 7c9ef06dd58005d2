package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/agentflow/core"
)

// Model is the minimal surface an agent needs from a language model.
// Generate performs exactly one provider invocation and blocks until the
// provider answers or fails; it never sleeps or retries on its own.
// Implementations classify transport failures as core.TransientError so the
// caller's retry policy can decide what to do with them.
type Model interface {
	// Generate executes a single model invocation.
	Generate(ctx context.Context, req *Request) (*Response, error)

	// Info returns metadata about the model implementation.
	Info() Info
}

// Request carries everything a provider needs for one invocation.
type Request struct {
	// Instructions is the system prompt, already rendered against session
	// state by the caller.
	Instructions string

	// Contents is the conversation so far, oldest first. Function call and
	// function response parts from earlier tool turns are included here.
	Contents []*core.Content

	// Tools lists the callable tools the model may request. Empty means
	// plain text generation.
	Tools []ToolDefinition
}

// Response is the final output of one model invocation.
type Response struct {
	// Content holds the assistant turn: text parts and/or function call parts.
	Content *core.Content

	// FinishReason reports why generation stopped ("stop", "tool_calls",
	// "max_tokens", ...). Provider specific values pass through untranslated.
	FinishReason string

	// Usage reports token accounting when the provider supplies it.
	Usage *TokenUsage
}

// TokenUsage captures token accounting for a single invocation.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// ToolDefinition describes a tool made available to the model.
type ToolDefinition struct {
	// Type is the kind of tool (usually "function").
	Type string `json:"type"`

	// Function holds the function schema.
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes a callable function exposed to the model.
type FunctionDefinition struct {
	// Name is the function name.
	Name string `json:"name"`

	// Description explains when the model should call the function.
	Description string `json:"description"`

	// Parameters is the JSON schema describing the arguments.
	Parameters map[string]interface{} `json:"parameters"`
}

// Info provides metadata about a model implementation.
type Info struct {
	// Name of the model (e.g. "gpt-4o-mini").
	Name string

	// Provider of the model (e.g. "openai", "anthropic", "google", "mock").
	Provider string

	// SupportsTools reports whether the model can request tool calls.
	SupportsTools bool
}

// scripted is one pre-arranged MockModel turn: either a response or an error.
type scripted struct {
	resp *Response
	err  error
}

// MockModel is an in-memory Model for tests and examples. Two modes combine:
// scripted turns queued with Enqueue* are consumed first, in order; once the
// queue is empty, prompts registered via AddResponse answer by exact match on
// the latest content's text, and anything else gets a deterministic echo.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	responses map[string]string
	script    []scripted
	requests  []*Request
}

// NewMockModel creates a mock model with sensible defaults.
func NewMockModel() *MockModel {
	return &MockModel{
		info: Info{
			Name:          "mock-model",
			Provider:      "mock",
			SupportsTools: true,
		},
		responses: make(map[string]string),
	}
}

// AddResponse registers a canned text response for an exact prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// Enqueue appends a pre-built response to the scripted queue.
func (m *MockModel) Enqueue(resp *Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, scripted{resp: resp})
}

// EnqueueText appends a plain text turn to the scripted queue.
func (m *MockModel) EnqueueText(text string) {
	m.Enqueue(&Response{
		Content:      core.NewAssistantContent(text),
		FinishReason: "stop",
	})
}

// EnqueueFunctionCall appends a turn that requests a single tool call.
func (m *MockModel) EnqueueFunctionCall(id, name, arguments string) {
	m.Enqueue(&Response{
		Content: &core.Content{
			Role: core.RoleAssistant,
			Parts: []core.Part{core.FunctionCallPart{
				FunctionCall: core.FunctionCall{ID: id, Name: name, Arguments: arguments},
			}},
		},
		FinishReason: "tool_calls",
	})
}

// EnqueueError appends a failing turn to the scripted queue.
func (m *MockModel) EnqueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, scripted{err: err})
}

// Requests returns a copy of every request Generate has seen, in order.
func (m *MockModel) Requests() []*Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Generate implements Model.
func (m *MockModel) Generate(_ context.Context, req *Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	if len(m.script) > 0 {
		next := m.script[0]
		m.script = m.script[1:]
		if next.err != nil {
			return nil, next.err
		}
		return next.resp, nil
	}

	prompt := ""
	if len(req.Contents) > 0 {
		prompt = req.Contents[len(req.Contents)-1].Text()
	}

	text, ok := m.responses[prompt]
	if !ok {
		text = fmt.Sprintf("Mock response to: %s", prompt)
	}

	return &Response{
		Content:      core.NewAssistantContent(text),
		FinishReason: "stop",
	}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info {
	return m.info
}
