package agent

import (
	"errors"
	"fmt"
	"strings"
)

// ErrToolLoopExceeded signals that the model kept requesting tool calls past
// the agent's iteration bound. It is fatal and never retried.
var ErrToolLoopExceeded = errors.New("tool loop iteration limit exceeded")

// MissingVariableError reports an instruction placeholder with no value in
// the shared state visible to the agent. It is a configuration failure:
// detected before any model call and never retried.
type MissingVariableError struct {
	Agent    string // agent whose instruction failed to render, may be empty
	Variable string // placeholder key that had no stored value
}

// Error implements the error interface.
func (e *MissingVariableError) Error() string {
	if e.Agent != "" {
		return fmt.Sprintf("instruction for agent %q references undefined variable {%s}", e.Agent, e.Variable)
	}
	return fmt.Sprintf("instruction references undefined variable {%s}", e.Variable)
}

// AggregateError is produced only by the Parallel composite. It wraps one
// failure per failed branch, in child declaration order, leaving each cause
// chain intact for errors.Is / errors.As.
type AggregateError struct {
	Group  string  // name of the parallel group
	Errors []error // one entry per failed branch
}

// Error implements the error interface.
func (e *AggregateError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("parallel group %q: %d branch(es) failed: %s",
		e.Group, len(e.Errors), strings.Join(msgs, "; "))
}

// Unwrap exposes the per-branch failures to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error { return e.Errors }
