package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/agentflow/agent"
	"github.com/hupe1980/agentflow/core"
	"github.com/hupe1980/agentflow/logging"
	"github.com/hupe1980/agentflow/session"
)

// UserInputKey is the state key the runner seeds with the caller's input, so
// instruction templates can reference {user_input} directly.
const UserInputKey = "user_input"

// ErrTimeout is returned when a run exceeds the configured timeout. The
// in-flight work is abandoned, never cancelled: it completes on its own and
// its result is discarded.
var ErrTimeout = errors.New("run abandoned after timeout")

// Options holds dependency and configuration overrides passed to New.
type Options struct {
	// SessionStore manages the per-run sessions. Defaults to the in-memory
	// store.
	SessionStore core.SessionStore

	// Logger receives structured lifecycle logs. Defaults to NoOpLogger.
	Logger logging.Logger

	// Timeout bounds how long Run waits for the workflow. Zero waits
	// indefinitely.
	Timeout time.Duration
}

// Result is the outcome of one workflow run.
type Result struct {
	// Output is the root component's final content.
	Output *core.Content

	// State is a snapshot of the shared state at the end of the run,
	// including every output key the workflow's agents published.
	State map[string]any

	// SessionID identifies the session that backed the run. The session
	// itself is already deleted when Run returns.
	SessionID string

	// RunID identifies this invocation.
	RunID string

	// Duration is the wall-clock time of the run.
	Duration time.Duration
}

// Runner executes a workflow synchronously: one call, one session, one
// result. The zero setup path is
//
//	r, err := runner.New(pipeline)
//	result, err := r.Run(ctx, "multi-agent systems")
//
// A Runner is immutable after construction and safe for concurrent use; each
// Run gets its own session, so concurrent runs never share state.
type Runner struct {
	root         core.Component
	sessionStore core.SessionStore
	logger       logging.Logger
	timeout      time.Duration
}

// New validates the workflow rooted at root and constructs a Runner for it.
// Duplicate component names and circular agent-as-tool references are
// reported as *core.ConfigError here, before anything executes.
func New(root core.Component, optFns ...func(o *Options)) (*Runner, error) {
	opts := Options{
		SessionStore: session.NewInMemoryStore(),
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if err := agent.Validate(root); err != nil {
		return nil, err
	}

	return &Runner{
		root:         root,
		sessionStore: opts.SessionStore,
		logger:       opts.Logger,
		timeout:      opts.Timeout,
	}, nil
}

// Run executes the workflow to completion with the given user input and
// returns the root's final content plus a snapshot of the shared state.
//
// Each call creates a fresh session seeded only with UserInputKey and deletes
// it before returning, so no state or backoff timing leaks across runs. A
// failing workflow propagates its error unchanged; the component path is
// already part of it.
func (r *Runner) Run(ctx context.Context, input string) (*Result, error) {
	sessionID := core.NewID()
	runID := core.NewID()

	sess, err := r.sessionStore.Create(sessionID)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	sess.SetState(UserInputKey, input)

	rc := core.NewRunContext(ctx, sess, runID, input, r.logger)

	r.logger.Info("runner.run.start", "session", sessionID, "run", runID, "root", r.root.Name())
	start := time.Now()

	if r.timeout <= 0 {
		defer r.sessionStore.Delete(sessionID)

		content, err := r.root.Run(rc)
		return r.finish(sess, runID, start, content, err)
	}

	// Deadline layer: abandon the wait, never cancel in-flight work. The
	// goroutine keeps running after a timeout and cleans up its own session.
	type outcome struct {
		content *core.Content
		err     error
	}
	done := make(chan outcome, 1)

	go func() {
		defer r.sessionStore.Delete(sessionID)

		content, err := r.root.Run(rc)
		done <- outcome{content: content, err: err}
	}()

	select {
	case out := <-done:
		return r.finish(sess, runID, start, out.content, out.err)
	case <-time.After(r.timeout):
		r.logger.Warn("runner.run.abandoned", "run", runID, "timeout", r.timeout.String())

		return nil, fmt.Errorf("run %s: %w (%s)", runID, ErrTimeout, r.timeout)
	}
}

func (r *Runner) finish(sess *core.Session, runID string, start time.Time, content *core.Content, err error) (*Result, error) {
	duration := time.Since(start)

	if err != nil {
		r.logger.Error("runner.run.error", "run", runID, "duration_ms", duration.Milliseconds(), "error", err.Error())

		return nil, err
	}

	r.logger.Info("runner.run.complete", "run", runID, "duration_ms", duration.Milliseconds())

	return &Result{
		Output:    content,
		State:     sess.Snapshot(),
		SessionID: sess.ID,
		RunID:     runID,
		Duration:  duration,
	}, nil
}
