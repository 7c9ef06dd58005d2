package agent

import (
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/agentflow/core"
)

// ParallelAgent runs all of its children concurrently against a state
// snapshot taken at fan-out time.
//
// Every child gets an isolated run context: reads resolve against the
// snapshot, writes collect in a branch-local delta. Deltas merge back in
// declaration order only when every child succeeded, so siblings never
// observe each other and a failed group leaves state untouched.
type ParallelAgent struct {
	BaseAgent
	children []core.Component
}

// NewParallelAgent creates a fan-out group over the given children.
//
// Example:
//
//	research := agent.NewParallelAgent("research", newsAgent, marketAgent, socialAgent)
func NewParallelAgent(name string, children ...core.Component) *ParallelAgent {
	p := &ParallelAgent{
		BaseAgent: NewBaseAgent(name),
		children:  children,
	}
	p.SetDescription(fmt.Sprintf("Parallel group %s with %d branches", name, len(children)))

	return p
}

// Children returns the group's branches in declaration order.
func (p *ParallelAgent) Children() []core.Component {
	out := make([]core.Component, len(p.children))
	copy(out, p.children)
	return out
}

// Run implements core.Component. It blocks until every branch finished,
// merges branch deltas on full success and reports every branch failure in
// one AggregateError otherwise.
//
// The group's result is a data part mapping each child name to the text of
// that child's result.
func (p *ParallelAgent) Run(rc *core.RunContext) (*core.Content, error) {
	rc.LogDebug("parallel.run.start", "group", p.Name(), "branches", len(p.children))

	start := time.Now()
	snapshot := rc.StateView()
	groupBranch := buildBranchPath(rc.Branch, p.Name())

	results := make([]*core.Content, len(p.children))
	errs := make([]error, len(p.children))
	deltas := make([]map[string]any, len(p.children))

	var wg sync.WaitGroup
	for i, child := range p.children {
		wg.Add(1)
		go func(i int, child core.Component) {
			defer wg.Done()

			branchCtx := rc.Isolated(buildBranchPath(groupBranch, child.Name()), snapshot)
			content, err := child.Run(branchCtx)
			if err != nil {
				errs[i] = fmt.Errorf("branch %s: %w", child.Name(), err)
				return
			}
			results[i] = content
			deltas[i] = branchCtx.StateDelta()
		}(i, child)
	}
	wg.Wait()

	var failed []error
	for _, err := range errs {
		if err != nil {
			failed = append(failed, err)
		}
	}
	if len(failed) > 0 {
		rc.LogError("parallel.run.error",
			"group", p.Name(),
			"failed", len(failed),
			"branches", len(p.children),
		)

		return nil, &AggregateError{Group: p.Name(), Errors: failed}
	}

	collisions := rc.MergeDeltas(deltas)
	for _, key := range collisions {
		rc.LogWarn("parallel.state.collision", "group", p.Name(), "key", key)
	}

	aggregated := make(map[string]any, len(p.children))
	for i, child := range p.children {
		aggregated[child.Name()] = results[i].Text()
	}

	rc.LogInfo("parallel.run.complete",
		"group", p.Name(),
		"branches", len(p.children),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &core.Content{
		Role:  core.RoleAssistant,
		Parts: []core.Part{core.DataPart{Data: aggregated}},
	}, nil
}
