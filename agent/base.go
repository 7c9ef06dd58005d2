package agent

import "fmt"

// BaseAgent bundles the identity shared by every component implementation: a
// name unique within the workflow and a human-readable description. Embed it
// in concrete implementations and supply a Run method to satisfy
// core.Component.
//
// Unlike the rest of a component's configuration the description may be set
// after construction; everything execution-relevant is fixed at build time.
type BaseAgent struct {
	name        string // Unique name, doubles as tool identifier when adapted
	description string // Purpose summary, surfaced to models via AgentTool
}

// NewBaseAgent constructs a BaseAgent with a generated description
// (customizable via SetDescription).
func NewBaseAgent(name string) BaseAgent {
	return BaseAgent{
		name:        name,
		description: fmt.Sprintf("Agent %s", name),
	}
}

// Name returns the unique name for this component.
func (b *BaseAgent) Name() string { return b.name }

// Description returns a summary of this component's purpose.
func (b *BaseAgent) Description() string { return b.description }

// SetDescription updates the component's description. When the component is
// wrapped as a tool the description tells the calling model when to use it.
func (b *BaseAgent) SetDescription(desc string) { b.description = desc }
