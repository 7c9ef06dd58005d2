// Package runner is the entry point for executing AgentFlow workflows.
//
// A Runner wraps one root component (a single agent or a composite tree),
// validates its wiring at construction and executes it synchronously: Run
// blocks until the workflow finished and returns the final content together
// with a snapshot of the shared state.
//
// # Responsibilities
//   - Workflow validation before first use (duplicate names, tool cycles)
//   - Session lifecycle: create per run, seed user input, delete afterwards
//   - Optional deadline layer that abandons (never cancels) slow runs
//
// The Runner deliberately has no streaming surface: a run is a function call.
package runner
