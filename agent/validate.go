package agent

import (
	"github.com/hupe1980/agentflow/core"
	"github.com/hupe1980/agentflow/tool"
)

// Validate walks the component tree rooted at root and rejects wiring that
// cannot execute: circular agent-as-tool references, distinct components
// sharing one name and duplicate tool names within one agent.
//
// Reusing the same component instance in several places is legal; only true
// cycles and name clashes fail. The runner validates before the first run,
// so broken wiring surfaces at construction time instead of mid-run.
func Validate(root core.Component) error {
	v := &validator{
		byName: map[string]core.Component{},
		done:   map[core.Component]bool{},
		path:   map[core.Component]bool{},
	}
	return v.walk(root)
}

// validator tracks the walk by component identity: path holds the current
// descent (cycle detection), done the fully checked instances.
type validator struct {
	byName map[string]core.Component
	done   map[core.Component]bool
	path   map[core.Component]bool
}

func (v *validator) walk(c core.Component) error {
	if v.path[c] {
		return core.NewConfigError(c.Name(), "circular agent reference")
	}
	if v.done[c] {
		return nil
	}

	if prev, ok := v.byName[c.Name()]; ok && prev != c {
		return core.NewConfigError(c.Name(), "duplicate component name")
	}
	v.byName[c.Name()] = c

	v.path[c] = true
	defer delete(v.path, c)

	if composite, ok := c.(interface{ Children() []core.Component }); ok {
		for _, child := range composite.Children() {
			if err := v.walk(child); err != nil {
				return err
			}
		}
	}

	if withTools, ok := c.(interface{ Tools() []tool.Tool }); ok {
		seen := map[string]bool{}
		for _, t := range withTools.Tools() {
			if seen[t.Name()] {
				return core.NewConfigError(c.Name(), "duplicate tool name %q", t.Name())
			}
			seen[t.Name()] = true

			if wrapper, ok := t.(interface{ Component() core.Component }); ok {
				if err := v.walk(wrapper.Component()); err != nil {
					return err
				}
			}
		}
	}

	v.done[c] = true
	return nil
}
