// Package agent contains the agent implementations and composition
// primitives for building synchronous orchestration workflows in AgentFlow.
// The package covers three concerns:
//
//  1. Shared identity plumbing (BaseAgent)
//  2. The model-backed conversational / tool-calling unit (Agent)
//  3. Composition combinators (SequentialAgent, ParallelAgent)
//
// Design principles:
//   - Immutable wiring: agents and composites are fully configured at
//     construction and never mutated afterwards
//   - Composability: composites nest arbitrarily, and any component can be
//     exposed to another agent as a tool via tool.NewAgentTool
//   - Fail loudly: a component either fully succeeds or fully fails; errors
//     carry the component path down to the underlying cause
//
// Execution model:
//   - A component's Run receives a *core.RunContext and blocks until done
//   - SequentialAgent runs children one after another on the same context
//   - ParallelAgent is the only concurrency source: it fans children out on
//     isolated snapshot contexts and merges their writes at fan-in
//   - Workflows are checked by Validate before execution: duplicate names
//     and circular agent-as-tool references are construction-time errors
//
// The package intentionally keeps model specifics and tool abstractions in
// their respective packages to avoid cyclic deps.
package agent
