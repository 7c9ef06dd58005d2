// Package logging provides a minimal logging interface and adapters for
// AgentFlow.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the runner, agents and model adapters use for
// observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - AgentFlowLogger with contextual session/run/component attributes
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	r, err := runner.New(root, runner.WithLogger(logger))
//
// The design intentionally keeps the interface minimal to avoid vendor
// lock-in while supporting structured logging where available.
package logging
