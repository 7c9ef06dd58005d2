package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/agentflow/core"
	"github.com/hupe1980/agentflow/logging"
)

type mockProvider struct {
	text string
	err  error
}

func (m mockProvider) Instruction(*core.RunContext) (string, error) { return m.text, m.err }

func newTestRunContext() *core.RunContext {
	sess := core.NewSession("test-session")
	return core.NewRunContext(context.Background(), sess, "run-id", "hello", logging.NoOpLogger{})
}

func TestInstruction_Static(t *testing.T) {
	inst := NewInstructionFromText("static instruction")
	if !inst.IsStatic() {
		t.Fatalf("expected static instruction")
	}
	got, err := inst.Resolve(newTestRunContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "static instruction" {
		t.Fatalf("expected 'static instruction', got %q", got)
	}
}

func TestInstruction_NewInstructionFromFunc(t *testing.T) {
	inst := NewInstructionFromFunc(func(_ *core.RunContext) (string, error) { return "dynamic via func", nil })
	if inst.IsStatic() {
		t.Fatalf("expected dynamic instruction")
	}
	got, err := inst.Resolve(newTestRunContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "dynamic via func" {
		t.Fatalf("expected 'dynamic via func', got %q", got)
	}
}

func TestInstruction_NewInstructionFromProvider(t *testing.T) {
	inst := NewInstructionFromProvider(mockProvider{text: "provider text"})
	if inst.IsStatic() {
		t.Fatalf("expected dynamic instruction")
	}
	got, err := inst.Resolve(newTestRunContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "provider text" {
		t.Fatalf("expected 'provider text', got %q", got)
	}
}

func TestInstruction_ErrorPropagation(t *testing.T) {
	expectedErr := errors.New("boom")
	inst := NewInstructionFromProvider(mockProvider{err: expectedErr})
	_, err := inst.Resolve(newTestRunContext())
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !errors.Is(err, expectedErr) {
		t.Fatalf("expected error %v, got %v", expectedErr, err)
	}
}

func TestInstruction_RenderSubstitutesState(t *testing.T) {
	rc := newTestRunContext()
	rc.SetState("topic", "container networking")
	rc.SetState("tone", "casual")

	inst := NewInstructionFromText("Write about {topic} in a {tone} tone.")
	got, err := inst.Render(rc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Write about container networking in a casual tone." {
		t.Fatalf("unexpected render: %q", got)
	}
}

func TestInstruction_RenderIdempotent(t *testing.T) {
	rc := newTestRunContext()
	rc.SetState("topic", "container networking")

	inst := NewInstructionFromText("Write about {topic}.")

	first, err := inst.Render(rc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := inst.Render(rc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("render not idempotent over unchanged state: %q vs %q", first, second)
	}
}

func TestInstruction_RenderStringifiesValues(t *testing.T) {
	rc := newTestRunContext()
	rc.SetState("count", 42)
	rc.SetState("ok", true)

	inst := NewInstructionFromText("count={count} ok={ok}")
	got, err := inst.Render(rc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "count=42 ok=true" {
		t.Fatalf("unexpected render: %q", got)
	}
}

func TestInstruction_RenderMissingVariable(t *testing.T) {
	rc := newTestRunContext()

	inst := NewInstructionFromText("Use {never_set} here")
	_, err := inst.Render(rc)
	if err == nil {
		t.Fatalf("expected error, got nil")
	}

	var mv *MissingVariableError
	if !errors.As(err, &mv) {
		t.Fatalf("expected *MissingVariableError, got %T", err)
	}
	if mv.Variable != "never_set" {
		t.Fatalf("expected variable 'never_set', got %q", mv.Variable)
	}
}

func TestInstruction_RenderSinglePass(t *testing.T) {
	rc := newTestRunContext()
	rc.SetState("outer", "{inner}")
	rc.SetState("inner", "surprise")

	// Substituted values are never re-scanned for placeholders.
	inst := NewInstructionFromText("value: {outer}")
	got, err := inst.Render(rc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "value: {inner}" {
		t.Fatalf("expected single-pass render, got %q", got)
	}
}

func TestInstruction_RenderIgnoresMalformedPlaceholders(t *testing.T) {
	rc := newTestRunContext()

	inst := NewInstructionFromText("JSON braces {not valid} and {123} stay literal")
	got, err := inst.Render(rc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "JSON braces {not valid} and {123} stay literal" {
		t.Fatalf("unexpected render: %q", got)
	}
}

func TestInstruction_RenderDynamicProvider(t *testing.T) {
	rc := newTestRunContext()
	rc.SetState("name", "Ada")

	inst := NewInstructionFromFunc(func(_ *core.RunContext) (string, error) {
		return "Hello {name}", nil
	})
	got, err := inst.Render(rc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Hello Ada" {
		t.Fatalf("unexpected render: %q", got)
	}
}
