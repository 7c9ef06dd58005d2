package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/agentflow/core"
	"github.com/hupe1980/agentflow/internal/util"
	"github.com/hupe1980/agentflow/logging"
	"github.com/stretchr/testify/assert"
)

func testRunContext() *core.RunContext {
	sess := core.NewSession("sess-1")
	return core.NewRunContext(context.Background(), sess, "run-1", "", logging.NoOpLogger{})
}

// -------------------- Schema & Validation Tests --------------------

type sampleSchema struct {
	A string `json:"a" description:"Field A"`
	B *int   `json:"b" description:"Optional pointer field"`
	C int    `json:"c,omitempty" description:"Omit empty field"`
}

func TestSchemaFor(t *testing.T) {
	schema := util.SchemaFor(sampleSchema{})
	props, ok := schema["properties"].(map[string]any)
	assert.True(t, ok)
	assert.Contains(t, props, "a")
	assert.Contains(t, props, "b")
	assert.Contains(t, props, "c")
	// Required only includes non-pointer, non-omitempty exported fields
	req, _ := schema["required"].([]string)
	assert.ElementsMatch(t, []string{"a"}, req)
}

func TestValidateArgs(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x": map[string]any{"type": "integer"},
		},
		// Use []any to mirror a JSON decoded schema shape
		"required": []any{"x"},
	}

	// Success
	err := util.ValidateArgs(map[string]any{"x": 5}, schema)
	assert.NoError(t, err)

	// Missing required
	err = util.ValidateArgs(map[string]any{}, schema)
	assert.Error(t, err)
	if vErr, ok := err.(*ValidationError); ok {
		assert.Equal(t, "x", vErr.Field)
	} else {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	// Wrong type
	err = util.ValidateArgs(map[string]any{"x": "not-int"}, schema)
	assert.Error(t, err)
	if vErr, ok := err.(*ValidationError); ok {
		assert.Contains(t, vErr.Message, "expected type integer")
	} else {
		t.Fatalf("expected ValidationError, got %T", err)
	}
}

func TestValidateArgsStringRequired(t *testing.T) {
	// Locally built schemas carry required as []string
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string"},
		},
		"required": []string{"query"},
	}

	err := util.ValidateArgs(map[string]any{}, schema)
	assert.Error(t, err)

	err = util.ValidateArgs(map[string]any{"query": "go"}, schema)
	assert.NoError(t, err)
}

// -------------------- FunctionTool Tests --------------------

func TestFunctionTool_Success(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
			"b": map[string]any{"type": "number"},
		},
		"required": []string{"a", "b"},
	}

	sumTool := NewFunctionTool("sum", "Add numbers", params, func(_ *core.ToolContext, args map[string]any) (any, error) {
		a := args["a"].(float64)
		b := args["b"].(float64)
		return a + b, nil
	})

	tc := core.NewToolContext(testRunContext(), "Agent", "fc1")
	result, err := sumTool.Call(tc, map[string]any{"a": 2.0, "b": 3.0})
	assert.NoError(t, err)
	assert.Equal(t, 5.0, result)
}

func TestFunctionToolFromStruct(t *testing.T) {
	type lookupArgs struct {
		City  string `json:"city" description:"City to look up"`
		Units string `json:"units,omitempty" description:"Unit system"`
	}

	weather := NewFunctionToolFromStruct("get_weather", "Look up the weather", lookupArgs{},
		func(_ *core.ToolContext, args map[string]any) (any, error) {
			return "sunny in " + args["city"].(string), nil
		})

	props, ok := weather.Parameters()["properties"].(map[string]any)
	assert.True(t, ok)
	assert.Contains(t, props, "city")
	assert.Contains(t, props, "units")

	tc := core.NewToolContext(testRunContext(), "Agent", "fc6")

	// Omitting the required field fails validation before the function runs.
	_, err := weather.Call(tc, map[string]any{"units": "metric"})
	assert.Error(t, err)
	toolErr, ok := err.(*ToolError)
	assert.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)

	result, err := weather.Call(tc, map[string]any{"city": "Berlin"})
	assert.NoError(t, err)
	assert.Equal(t, "sunny in Berlin", result)
}

func TestFunctionTool_ValidationError(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
		},
		"required": []any{"a"},
	}
	tTool := NewFunctionTool("test", "Test", params, func(_ *core.ToolContext, _ map[string]any) (any, error) {
		return 0, nil
	})
	tc := core.NewToolContext(testRunContext(), "Agent", "fc2")
	_, err := tTool.Call(tc, map[string]any{})
	assert.Error(t, err)
	toolErr, ok := err.(*ToolError)
	assert.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
}

func TestFunctionTool_ExecutionError(t *testing.T) {
	params := map[string]any{"type": "object", "properties": map[string]any{}}
	execTool := NewFunctionTool("fail", "Fails", params, func(_ *core.ToolContext, _ map[string]any) (any, error) {
		return nil, errors.New("boom")
	})
	tc := core.NewToolContext(testRunContext(), "Agent", "fc3")
	_, err := execTool.Call(tc, map[string]any{})
	assert.Error(t, err)
	toolErr, ok := err.(*ToolError)
	assert.True(t, ok)
	assert.Equal(t, "EXECUTION_ERROR", toolErr.Code)
}

func TestFunctionTool_PreservesTransientCause(t *testing.T) {
	params := map[string]any{"type": "object", "properties": map[string]any{}}
	throttled := NewFunctionTool("throttled", "Fails transiently", params, func(_ *core.ToolContext, _ map[string]any) (any, error) {
		return nil, core.NewStatusError(429, "search quota hit")
	})

	tc := core.NewToolContext(testRunContext(), "Agent", "fc4")
	_, err := throttled.Call(tc, map[string]any{})
	assert.Error(t, err)

	class, ok := core.FailureClassOf(err)
	assert.True(t, ok, "transient classification must survive ToolError wrapping")
	assert.Equal(t, core.FailureRateLimited, class)
}

func TestFunctionTool_StateAccess(t *testing.T) {
	params := map[string]any{"type": "object", "properties": map[string]any{}}
	recall := NewFunctionTool("recall", "Reads and writes state", params, func(tc *core.ToolContext, _ map[string]any) (any, error) {
		v, _ := tc.GetState("topic")
		tc.SetState("seen_topic", v)
		return v, nil
	})

	rc := testRunContext()
	rc.SetState("topic", "golang")

	tc := core.NewToolContext(rc, "Agent", "fc5")
	result, err := recall.Call(tc, map[string]any{})
	assert.NoError(t, err)
	assert.Equal(t, "golang", result)

	seen, ok := rc.GetState("seen_topic")
	assert.True(t, ok)
	assert.Equal(t, "golang", seen)
}

// -------------------- AgentTool Tests --------------------

type stubComponent struct {
	name string
	fn   func(rc *core.RunContext) (*core.Content, error)
}

func (c *stubComponent) Name() string        { return c.name }
func (c *stubComponent) Description() string { return "stub component" }
func (c *stubComponent) Run(rc *core.RunContext) (*core.Content, error) {
	return c.fn(rc)
}

func TestAgentTool_RunsComponentWithRequest(t *testing.T) {
	var gotInput, gotBranch string
	child := &stubComponent{
		name: "researcher",
		fn: func(rc *core.RunContext) (*core.Content, error) {
			gotInput = rc.UserInput
			gotBranch = rc.Branch
			rc.SetState("research_notes", "notes on "+rc.UserInput)
			return core.NewAssistantContent("research complete"), nil
		},
	}

	at := NewAgentTool(child)
	assert.Equal(t, "researcher", at.Name())

	rc := testRunContext()
	tc := core.NewToolContext(rc, "Coordinator", "fc-delegate")

	result, err := at.Call(tc, map[string]any{"request": "quantum computing"})
	assert.NoError(t, err)
	assert.Equal(t, "research complete", result)
	assert.Equal(t, "quantum computing", gotInput)
	assert.Equal(t, "researcher", gotBranch)
	assert.Empty(t, rc.Branch, "caller's context must stay untouched")

	// The sub-run shares the caller's state store.
	notes, ok := rc.GetState("research_notes")
	assert.True(t, ok)
	assert.Equal(t, "notes on quantum computing", notes)
}

func TestAgentTool_MissingRequest(t *testing.T) {
	at := NewAgentTool(&stubComponent{name: "researcher", fn: func(_ *core.RunContext) (*core.Content, error) {
		return core.NewAssistantContent("unused"), nil
	}})

	tc := core.NewToolContext(testRunContext(), "Coordinator", "fc-bad")
	_, err := at.Call(tc, map[string]any{})
	assert.Error(t, err)
	toolErr, ok := err.(*ToolError)
	assert.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
}

func TestAgentTool_PropagatesFailure(t *testing.T) {
	cause := core.NewStatusError(503, "model overloaded")
	at := NewAgentTool(&stubComponent{name: "flaky", fn: func(_ *core.RunContext) (*core.Content, error) {
		return nil, cause
	}})

	tc := core.NewToolContext(testRunContext(), "Coordinator", "fc-fail")
	_, err := at.Call(tc, map[string]any{"request": "anything"})
	assert.Error(t, err)

	toolErr, ok := err.(*ToolError)
	assert.True(t, ok)
	assert.Equal(t, "EXECUTION_ERROR", toolErr.Code)
	assert.ErrorIs(t, err, cause)
}

// -------------------- ToolError Formatting --------------------

func TestToolErrorFormatting(t *testing.T) {
	err := NewToolError("demo", "something failed", "E123")
	assert.Contains(t, err.Error(), "E123")
	assert.Contains(t, err.Error(), "demo")
}
