package core

import (
	"context"
	"sort"

	"github.com/hupe1980/agentflow/logging"
)

// RunContext carries the execution scope handed to a Component's Run method:
// the ambient cancellation Context, identifiers (SessionID, RunID), the
// session owning shared state, the user input that seeded the run and the
// branch path for nested execution.
//
// State visibility follows the workflow ordering rules. In direct mode reads
// and writes go straight to the session, so a sequential child observes every
// write of its predecessors. Inside a parallel branch the context is
// isolated: reads consult the branch delta first and then the snapshot taken
// at fan-out time, while writes accumulate in the delta until the composite
// merges them back. Parallel siblings therefore never observe each other.
//
// A RunContext is confined to the goroutine executing its component; the
// Parallel composite hands every child its own isolated context.
type RunContext struct {
	Context   context.Context
	SessionID string
	RunID     string
	UserInput string
	Branch    string
	Session   *Session

	snapshot map[string]any // fan-out snapshot, non-nil inside a parallel branch
	delta    map[string]any // branch-local writes when isolated

	*loggerAdapter
}

// NewRunContext constructs a direct-mode RunContext bound to the session.
func NewRunContext(ctx context.Context, sess *Session, runID, userInput string, logger logging.Logger) *RunContext {
	return &RunContext{
		Context:       ctx,
		SessionID:     sess.ID,
		RunID:         runID,
		UserInput:     userInput,
		Session:       sess,
		loggerAdapter: newLoggerAdapter(logger),
	}
}

// Done returns a channel closed when the underlying context is cancelled.
func (rc *RunContext) Done() <-chan struct{} { return rc.Context.Done() }

// Err returns the cancellation error (if any) from the underlying context.
func (rc *RunContext) Err() error { return rc.Context.Err() }

// GetState returns the value visible to this context for a state key: the
// branch delta first, then the fan-out snapshot when isolated, otherwise the
// live session state.
func (rc *RunContext) GetState(k string) (any, bool) {
	if rc.delta != nil {
		if v, ok := rc.delta[k]; ok {
			return v, true
		}
		v, ok := rc.snapshot[k]
		return v, ok
	}
	return rc.Session.GetState(k)
}

// SetState writes a key/value pair to the store visible to this context.
func (rc *RunContext) SetState(k string, v any) {
	if rc.delta != nil {
		rc.delta[k] = v
		return
	}
	rc.Session.SetState(k, v)
}

// StateView returns a flattened copy of the state visible to this context,
// suitable for template rendering and for nested fan-out snapshots.
func (rc *RunContext) StateView() map[string]any {
	if rc.delta == nil {
		return rc.Session.Snapshot()
	}
	view := make(map[string]any, len(rc.snapshot)+len(rc.delta))
	for k, v := range rc.snapshot {
		view[k] = v
	}
	for k, v := range rc.delta {
		view[k] = v
	}
	return view
}

// StateDelta returns the branch-local write buffer, nil in direct mode. The
// Parallel composite collects it at fan-in.
func (rc *RunContext) StateDelta() map[string]any {
	return rc.delta
}

// MergeDeltas applies fan-in deltas in order to the store visible to this
// context: the live session in direct mode, the enclosing branch delta when
// isolated. Keys written by more than one delta are returned so the caller
// can surface the collision.
func (rc *RunContext) MergeDeltas(deltas []map[string]any) []string {
	if rc.delta == nil {
		return rc.Session.MergeState(deltas)
	}
	writes := map[string]int{}
	for _, delta := range deltas {
		for k, v := range delta {
			writes[k]++
			rc.delta[k] = v
		}
	}
	var collisions []string
	for k, n := range writes {
		if n > 1 {
			collisions = append(collisions, k)
		}
	}
	sort.Strings(collisions)
	return collisions
}

// WithBranch returns a copy sharing this context's visibility buffers with
// the branch label replaced. Used when descending into named children that
// must keep the caller's state visibility.
func (rc *RunContext) WithBranch(branch string) *RunContext {
	c := *rc
	c.Branch = branch
	return &c
}

// WithUserInput returns a copy sharing this context's visibility buffers
// with the user input replaced. The agent-as-tool adapter uses it to hand
// the calling model's request to the wrapped component.
func (rc *RunContext) WithUserInput(input string) *RunContext {
	c := *rc
	c.UserInput = input
	return &c
}

// Isolated derives a child context for one parallel branch: reads resolve
// against the given fan-out snapshot, writes collect in a fresh delta.
func (rc *RunContext) Isolated(branch string, snapshot map[string]any) *RunContext {
	c := *rc
	c.Branch = branch
	c.snapshot = snapshot
	c.delta = map[string]any{}
	return &c
}
