package core

import "testing"

func TestContent_Text(t *testing.T) {
	c := &Content{Role: RoleAssistant, Parts: []Part{
		TextPart{Text: "hello "},
		DataPart{Data: map[string]any{"skip": true}},
		TextPart{Text: "world"},
	}}

	if got := c.Text(); got != "hello world" {
		t.Fatalf("unexpected text %q", got)
	}

	var nilContent *Content
	if nilContent.Text() != "" {
		t.Error("nil content should stringify empty")
	}
}

func TestContent_FunctionCalls(t *testing.T) {
	c := &Content{Role: RoleAssistant, Parts: []Part{
		TextPart{Text: "calling"},
		FunctionCallPart{FunctionCall: FunctionCall{ID: "1", Name: "search", Arguments: `{"query":"go"}`}},
		FunctionCallPart{FunctionCall: FunctionCall{ID: "2", Name: "summarize"}},
	}}

	calls := c.FunctionCalls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	if calls[0].Name != "search" || calls[1].Name != "summarize" {
		t.Errorf("unexpected call order: %+v", calls)
	}

	if got := NewUserContent("hi").Text(); got != "hi" {
		t.Errorf("unexpected user text %q", got)
	}
}
