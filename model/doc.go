// Package model defines the provider-agnostic abstractions for invoking
// language models inside AgentFlow.
//
// Core goals:
//   - One blocking Generate call per model turn; retries and backoff live
//     with the caller, not the provider adapter
//   - Normalize tool / function call representation (ToolDefinition)
//   - Keep request/response shapes minimal and transport independent
//   - Facilitate lightweight scripting for tests (MockModel)
//
// Providers (OpenAI, Anthropic, Google) implement the Model interface from
// this package so higher layers (agents, workflows) remain decoupled from
// vendor SDKs. Adapters translate vendor failures into core.TransientError
// values so callers can classify them without importing SDK types.
package model
