package agent

import (
	"fmt"

	"github.com/hupe1980/agentflow/core"
)

// SequentialAgent runs its children one after another in declaration order.
//
// All children share the caller's run context, so state written by an
// earlier child is visible to every later one. The first failure aborts the
// chain; children after the failed one never start.
type SequentialAgent struct {
	BaseAgent
	children []core.Component
}

// NewSequentialAgent creates a pipeline over the given children.
//
// Example:
//
//	pipeline := agent.NewSequentialAgent("blog_pipeline", outliner, writer, editor)
func NewSequentialAgent(name string, children ...core.Component) *SequentialAgent {
	s := &SequentialAgent{
		BaseAgent: NewBaseAgent(name),
		children:  children,
	}
	s.SetDescription(fmt.Sprintf("Sequential pipeline %s with %d steps", name, len(children)))

	return s
}

// Children returns the pipeline steps in execution order.
func (s *SequentialAgent) Children() []core.Component {
	out := make([]core.Component, len(s.children))
	copy(out, s.children)
	return out
}

// Run implements core.Component. The result of the last child becomes the
// pipeline's result; an empty pipeline yields an empty assistant message.
func (s *SequentialAgent) Run(rc *core.RunContext) (*core.Content, error) {
	rc.LogDebug("sequential.run.start", "pipeline", s.Name(), "steps", len(s.children))

	result := core.NewAssistantContent("")
	for i, child := range s.children {
		rc.LogDebug("sequential.step.start",
			"pipeline", s.Name(),
			"step", i,
			"child", child.Name(),
		)

		content, err := child.Run(rc)
		if err != nil {
			rc.LogError("sequential.step.error",
				"pipeline", s.Name(),
				"step", i,
				"child", child.Name(),
				"error", err.Error(),
			)

			return nil, fmt.Errorf("%s: %w", s.Name(), err)
		}

		result = content
	}

	rc.LogInfo("sequential.run.complete", "pipeline", s.Name(), "steps", len(s.children))

	return result, nil
}
