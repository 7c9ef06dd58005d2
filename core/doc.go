// Package core provides the foundational domain types and execution contexts
// used by AgentFlow. It defines the core abstractions for:
//
//   - Components (agents and the composites that group them)
//   - Sessions (the shared state scope of one top-level run)
//   - Content (role-tagged results built from a closed set of parts)
//   - RunContext (per-run execution scope with branch isolation)
//   - The failure taxonomy consumed by the retry policy
//
// The package intentionally keeps implementation concerns (concrete agents,
// model adapters, persistence) out of scope, exposing small interfaces to
// enable custom backends and extensions.
package core
