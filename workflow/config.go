package workflow

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/agentflow/core"
)

// Config is the declarative description of a workflow: the models and retry
// policies it draws on, the agents it runs, and the composition tree that
// arranges them. A Config is inert until passed to Build.
type Config struct {
	Models   map[string]ModelConfig `yaml:"models"`
	Retry    map[string]RetryConfig `yaml:"retry"`
	Agents   map[string]AgentConfig `yaml:"agents"`
	Workflow *Node                  `yaml:"workflow"`
}

// ModelConfig names a provider and its generation settings. A nil Temperature
// keeps the provider default.
type ModelConfig struct {
	Provider    string   `yaml:"provider"`
	Model       string   `yaml:"model"`
	APIKey      string   `yaml:"api_key"`
	Temperature *float64 `yaml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens"`
}

// RetryConfig describes a bounded exponential backoff policy.
type RetryConfig struct {
	MaxAttempts  int      `yaml:"max_attempts"`
	InitialDelay Duration `yaml:"initial_delay"`
	Base         float64  `yaml:"base"`
}

// AgentConfig describes a single LLM agent. Model refers to an entry in the
// models section, Retry to one in the retry section. Tool entries are either
// names registered through BuildOptions or "agent:NAME" references to other
// configured agents.
type AgentConfig struct {
	Model             string   `yaml:"model"`
	Description       string   `yaml:"description"`
	Instruction       string   `yaml:"instruction"`
	OutputKey         string   `yaml:"output_key"`
	Retry             string   `yaml:"retry"`
	MaxToolIterations int      `yaml:"max_tool_iterations"`
	Tools             []string `yaml:"tools"`
}

// Node is one position in the composition tree. Exactly one field must be
// set: a leaf agent reference, a sequential pipeline, or a parallel group.
type Node struct {
	Agent      string     `yaml:"agent,omitempty"`
	Sequential *Composite `yaml:"sequential,omitempty"`
	Parallel   *Composite `yaml:"parallel,omitempty"`
}

// Composite is a named interior node with an ordered list of children.
type Composite struct {
	Name     string `yaml:"name"`
	Children []Node `yaml:"children"`
}

// Duration decodes Go duration strings such as "500ms" or "2s" from YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}

	*d = Duration(parsed)
	return nil
}

// Validate checks the config for internal consistency: every reference must
// resolve within the config, every node must take exactly one form, and
// provider and retry settings must be well formed. External tool names are
// resolved later, at Build time.
func (c *Config) Validate() error {
	for name, mc := range c.Models {
		switch mc.Provider {
		case "google", "openai", "anthropic", "mock":
		case "":
			return core.NewConfigError(name, "model has no provider")
		default:
			return core.NewConfigError(name, "unknown model provider %q", mc.Provider)
		}
	}

	for name, rc := range c.Retry {
		if rc.MaxAttempts < 1 {
			return core.NewConfigError(name, "retry policy needs max_attempts >= 1, got %d", rc.MaxAttempts)
		}
		if rc.InitialDelay < 0 {
			return core.NewConfigError(name, "retry policy has negative initial_delay")
		}
		if rc.Base <= 0 {
			return core.NewConfigError(name, "retry policy needs base > 0, got %g", rc.Base)
		}
	}

	for name, ac := range c.Agents {
		if ac.Model == "" {
			return core.NewConfigError(name, "agent has no model")
		}
		if _, ok := c.Models[ac.Model]; !ok {
			return core.NewConfigError(name, "agent references unknown model %q", ac.Model)
		}
		if ac.Retry != "" {
			if _, ok := c.Retry[ac.Retry]; !ok {
				return core.NewConfigError(name, "agent references unknown retry policy %q", ac.Retry)
			}
		}
		if ac.MaxToolIterations < 0 {
			return core.NewConfigError(name, "agent has negative max_tool_iterations")
		}
		for _, ref := range ac.Tools {
			if target, ok := agentToolRef(ref); ok {
				if _, exists := c.Agents[target]; !exists {
					return core.NewConfigError(name, "agent references unknown agent tool %q", target)
				}
			}
		}
	}

	if c.Workflow == nil {
		return core.NewConfigError("workflow", "config has no workflow section")
	}
	return c.validateNode(c.Workflow)
}

func (c *Config) validateNode(n *Node) error {
	forms := 0
	if n.Agent != "" {
		forms++
	}
	if n.Sequential != nil {
		forms++
	}
	if n.Parallel != nil {
		forms++
	}
	if forms != 1 {
		return core.NewConfigError("workflow", "node must set exactly one of agent, sequential or parallel")
	}

	if n.Agent != "" {
		if _, ok := c.Agents[n.Agent]; !ok {
			return core.NewConfigError("workflow", "node references unknown agent %q", n.Agent)
		}
		return nil
	}

	composite := n.Sequential
	if composite == nil {
		composite = n.Parallel
	}
	if composite.Name == "" {
		return core.NewConfigError("workflow", "composite node has no name")
	}
	if len(composite.Children) == 0 {
		return core.NewConfigError(composite.Name, "composite node has no children")
	}
	for i := range composite.Children {
		if err := c.validateNode(&composite.Children[i]); err != nil {
			return err
		}
	}
	return nil
}
