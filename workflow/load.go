package workflow

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/agentflow/core"
)

// Load reads a workflow config from a YAML file. Environment references of
// the form ${VAR} and ${VAR:-default} are expanded before parsing, unknown
// fields are rejected, and the result is validated in full. Configs are read
// once; nothing is re-resolved later in a run.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workflow config: %w", err)
	}
	return LoadBytes(data)
}

// LoadBytes parses and validates raw YAML config data.
func LoadBytes(data []byte) (*Config, error) {
	expanded := expandEnv(string(data))

	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, core.NewConfigError("workflow", "config is empty")
		}
		return nil, core.NewConfigError("workflow", "invalid config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
