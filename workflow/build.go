package workflow

import (
	"context"
	"strings"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/hupe1980/agentflow/agent"
	"github.com/hupe1980/agentflow/core"
	"github.com/hupe1980/agentflow/model"
	"github.com/hupe1980/agentflow/model/anthropic"
	"github.com/hupe1980/agentflow/model/google"
	"github.com/hupe1980/agentflow/model/openai"
	"github.com/hupe1980/agentflow/retry"
	"github.com/hupe1980/agentflow/tool"
)

// BuildOptions supplies what a config file cannot express: callable tool
// implementations and pre-built model instances.
type BuildOptions struct {
	// Tools maps the names used in agent tool lists to implementations.
	Tools map[string]tool.Tool

	// Models overrides entries of the models section by name, for example to
	// inject a scripted model.MockModel in tests.
	Models map[string]model.Model
}

// Build turns a config into a runnable component tree. Each configured agent
// is constructed once and shared across every position that references it,
// and agent-as-tool cycles are rejected.
func Build(ctx context.Context, cfg *Config, optFns ...func(o *BuildOptions)) (core.Component, error) {
	opts := BuildOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b := &builder{
		cfg:      cfg,
		models:   make(map[string]model.Model, len(cfg.Models)),
		policies: make(map[string]*retry.Policy, len(cfg.Retry)),
		tools:    opts.Tools,
		built:    make(map[string]*agent.Agent, len(cfg.Agents)),
		building: make(map[string]bool),
	}

	for name, m := range opts.Models {
		b.models[name] = m
	}
	for name, mc := range cfg.Models {
		if _, ok := b.models[name]; ok {
			continue
		}
		m, err := newProviderModel(ctx, name, mc)
		if err != nil {
			return nil, err
		}
		b.models[name] = m
	}

	for name, rc := range cfg.Retry {
		b.policies[name] = &retry.Policy{
			MaxAttempts:  rc.MaxAttempts,
			InitialDelay: time.Duration(rc.InitialDelay),
			Base:         rc.Base,
			Retryable:    retry.DefaultRetryable,
		}
	}

	root, err := b.node(cfg.Workflow)
	if err != nil {
		return nil, err
	}

	if err := agent.Validate(root); err != nil {
		return nil, err
	}
	return root, nil
}

type builder struct {
	cfg      *Config
	models   map[string]model.Model
	policies map[string]*retry.Policy
	tools    map[string]tool.Tool
	built    map[string]*agent.Agent
	building map[string]bool
}

func (b *builder) node(n *Node) (core.Component, error) {
	switch {
	case n.Agent != "":
		return b.agent(n.Agent)
	case n.Sequential != nil:
		children, err := b.children(n.Sequential.Children)
		if err != nil {
			return nil, err
		}
		return agent.NewSequentialAgent(n.Sequential.Name, children...), nil
	default:
		children, err := b.children(n.Parallel.Children)
		if err != nil {
			return nil, err
		}
		return agent.NewParallelAgent(n.Parallel.Name, children...), nil
	}
}

func (b *builder) children(nodes []Node) ([]core.Component, error) {
	children := make([]core.Component, 0, len(nodes))
	for i := range nodes {
		child, err := b.node(&nodes[i])
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

func (b *builder) agent(name string) (*agent.Agent, error) {
	if a, ok := b.built[name]; ok {
		return a, nil
	}
	if b.building[name] {
		return nil, core.NewConfigError(name, "circular agent tool reference")
	}

	spec, ok := b.cfg.Agents[name]
	if !ok {
		return nil, core.NewConfigError(name, "unknown agent")
	}

	b.building[name] = true
	defer delete(b.building, name)

	llm, ok := b.models[spec.Model]
	if !ok {
		return nil, core.NewConfigError(name, "agent references unknown model %q", spec.Model)
	}

	tools := make([]tool.Tool, 0, len(spec.Tools))
	for _, ref := range spec.Tools {
		if target, isAgent := agentToolRef(ref); isAgent {
			sub, err := b.agent(target)
			if err != nil {
				return nil, err
			}
			tools = append(tools, tool.NewAgentTool(sub))
			continue
		}

		t, registered := b.tools[ref]
		if !registered {
			return nil, core.NewConfigError(name, "no tool registered for %q", ref)
		}
		tools = append(tools, t)
	}

	a := agent.New(name, llm, func(o *agent.Options) {
		o.Description = spec.Description
		if spec.Instruction != "" {
			o.Instruction = agent.NewInstructionFromText(spec.Instruction)
		}
		o.OutputKey = spec.OutputKey
		o.Tools = tools
		if spec.Retry != "" {
			o.RetryPolicy = b.policies[spec.Retry]
		}
		o.MaxToolIterations = spec.MaxToolIterations
	})

	b.built[name] = a
	return a, nil
}

// agentToolRef extracts the target of an "agent:NAME" tool entry.
func agentToolRef(ref string) (string, bool) {
	return strings.CutPrefix(ref, "agent:")
}

func newProviderModel(ctx context.Context, name string, mc ModelConfig) (model.Model, error) {
	apiKey := mc.APIKey
	if apiKey == "" {
		apiKey = ProviderAPIKey(mc.Provider)
	}

	switch mc.Provider {
	case "google":
		return google.NewModel(ctx, func(o *google.Options) {
			if mc.Model != "" {
				o.Model = mc.Model
			}
			if apiKey != "" {
				o.APIKey = apiKey
			}
			if mc.Temperature != nil {
				o.Temperature = *mc.Temperature
			}
			if mc.MaxTokens > 0 {
				o.MaxOutputTokens = int32(mc.MaxTokens)
			}
		})
	case "openai":
		return openai.NewModel(func(o *openai.Options) {
			if mc.Model != "" {
				o.Model = mc.Model
			}
			if apiKey != "" {
				o.APIKey = apiKey
			}
			if mc.Temperature != nil {
				o.Temperature = *mc.Temperature
			}
			if mc.MaxTokens > 0 {
				o.MaxCompletionTokens = int64(mc.MaxTokens)
			}
		}), nil
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			if mc.Model != "" {
				o.Model = anthropicsdk.Model(mc.Model)
			}
			if apiKey != "" {
				o.APIKey = apiKey
			}
			if mc.Temperature != nil {
				o.Temperature = *mc.Temperature
			}
			if mc.MaxTokens > 0 {
				o.MaxTokens = int64(mc.MaxTokens)
			}
		}), nil
	case "mock":
		return model.NewMockModel(), nil
	default:
		return nil, core.NewConfigError(name, "unknown model provider %q", mc.Provider)
	}
}
