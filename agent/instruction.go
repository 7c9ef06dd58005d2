package agent

import (
	"fmt"
	"regexp"

	"github.com/hupe1980/agentflow/core"
)

// Provider supplies dynamic instruction text at runtime.
// Implementations can derive instructions from session state, environment, etc.
type Provider interface {
	Instruction(*core.RunContext) (string, error)
}

// Func is a functional adapter to allow ordinary functions to be used as Providers.
type Func func(*core.RunContext) (string, error)

// Instruction implements Provider.
func (f Func) Instruction(rc *core.RunContext) (string, error) { return f(rc) }

// Instruction represents either a static instruction template or a dynamic
// provider. This mirrors a union of string | provider in a Go-idiomatic way.
//
// Static templates may contain `{key}` placeholders that are substituted
// with shared state values when the agent runs. Provider-sourced text is
// rendered the same way after resolution.
type Instruction struct {
	text     string
	provider Provider
}

// NewInstructionFromText creates an Instruction from a static template string.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p Provider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(*core.RunContext) (string, error)) Instruction {
	return Instruction{provider: Func(f)}
}

// IsStatic returns true if the instruction is backed by a static string.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// Resolve returns the raw instruction text, invoking the provider if needed.
// Placeholders are still unexpanded; Render performs the substitution.
func (i Instruction) Resolve(rc *core.RunContext) (string, error) {
	if i.provider != nil {
		return i.provider.Instruction(rc)
	}
	return i.text, nil
}

// Render resolves the instruction and substitutes every `{key}` placeholder
// with the value stored under that key in the state visible to rc. Values are
// stringified with %v. A placeholder without a stored value fails with
// *MissingVariableError; rendering never invents defaults.
//
// Substitution is a single pass: braces inside substituted values are left
// alone, so rendering already-rendered text cannot expand further.
func (i Instruction) Render(rc *core.RunContext) (string, error) {
	text, err := i.Resolve(rc)
	if err != nil {
		return "", err
	}
	return renderTemplate(text, rc.StateView())
}

// placeholderPattern matches `{identifier}` occurrences. Identifiers follow
// Go naming: a letter or underscore followed by letters, digits or
// underscores. Anything else between braces is left untouched.
var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// renderTemplate substitutes placeholders in a single pass against the given
// state view. The first missing key aborts the render.
func renderTemplate(text string, state map[string]any) (string, error) {
	var missing *MissingVariableError

	rendered := placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		if missing != nil {
			return match
		}
		key := match[1 : len(match)-1]
		value, ok := state[key]
		if !ok {
			missing = &MissingVariableError{Variable: key}
			return match
		}
		return fmt.Sprintf("%v", value)
	})
	if missing != nil {
		return "", missing
	}
	return rendered, nil
}
