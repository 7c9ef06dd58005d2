// Package agentflow provides a high-level façade over the runner, session
// and workflow packages for building synchronous multi-agent pipelines.
// Most applications interact with this package by:
//  1. Creating an AgentFlow via New() around a composed root component, or
//     via Load() from a declarative YAML workflow file
//  2. Calling Run() with the user input and reading the result
//
// The façade delegates execution to runner.Runner while keeping setup
// ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply a structured logger and
// an exporter for run records.
package agentflow

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/agentflow/core"
	"github.com/hupe1980/agentflow/export"
	"github.com/hupe1980/agentflow/logging"
	"github.com/hupe1980/agentflow/model"
	"github.com/hupe1980/agentflow/runner"
	"github.com/hupe1980/agentflow/session"
	"github.com/hupe1980/agentflow/tool"
	"github.com/hupe1980/agentflow/workflow"
)

// Version is the current AgentFlow release.
const Version = "0.1.0"

// Options configures the AgentFlow instance.
type Options struct {
	// SessionStore holds per-run shared state (defaults to in-memory).
	SessionStore core.SessionStore

	// Logger receives structured execution logs (defaults to NoOp).
	Logger logging.Logger

	// Timeout bounds each run; zero means no limit. A run exceeding it is
	// abandoned, not cancelled.
	Timeout time.Duration

	// Exporter, when set, persists every successful run result.
	Exporter export.Exporter

	// Tools maps tool names used in workflow files to implementations.
	// Only consulted by Load.
	Tools map[string]tool.Tool

	// Models overrides configured models by name, e.g. with scripted mocks.
	// Only consulted by Load.
	Models map[string]model.Model
}

// AgentFlow is the high-level façade aggregating a workflow and the services
// it runs with.
type AgentFlow struct {
	opts   Options
	runner *runner.Runner
}

// New wraps an already composed root component. The workflow is validated
// here; a misconfigured tree never produces a usable instance.
func New(root core.Component, optFns ...func(o *Options)) (*AgentFlow, error) {
	opts := Options{
		SessionStore: session.NewInMemoryStore(),
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	r, err := runner.New(root, func(o *runner.Options) {
		o.SessionStore = opts.SessionStore
		o.Logger = opts.Logger
		o.Timeout = opts.Timeout
	})
	if err != nil {
		return nil, err
	}

	return &AgentFlow{opts: opts, runner: r}, nil
}

// Load reads a YAML workflow file, builds its component tree and wraps it.
// Tool and model implementations come from Options.Tools and Options.Models.
func Load(ctx context.Context, path string, optFns ...func(o *Options)) (*AgentFlow, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	cfg, err := workflow.Load(path)
	if err != nil {
		return nil, err
	}

	root, err := workflow.Build(ctx, cfg, func(o *workflow.BuildOptions) {
		o.Tools = opts.Tools
		o.Models = opts.Models
	})
	if err != nil {
		return nil, err
	}

	return New(root, optFns...)
}

// Run executes the workflow once with the given user input and blocks until
// it finished. When an exporter is configured, the result is persisted
// before returning; an export failure surfaces alongside the still-valid
// result.
func (f *AgentFlow) Run(ctx context.Context, input string) (*runner.Result, error) {
	res, err := f.runner.Run(ctx, input)
	if err != nil {
		return nil, err
	}

	if f.opts.Exporter != nil {
		if err := f.opts.Exporter.Export(res); err != nil {
			return res, fmt.Errorf("export run %s: %w", res.RunID, err)
		}
	}

	return res, nil
}
