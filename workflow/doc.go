// Package workflow loads declarative AgentFlow workflow definitions from
// YAML and turns them into runnable component trees.
//
// A workflow file has four sections:
//
//	models:   named provider configurations (openai, anthropic, google, mock)
//	retry:    named backoff policies
//	agents:   the LLM agents, referencing models, policies and tools by name
//	workflow: the composition tree of agent, sequential and parallel nodes
//
// Loading is a one-shot affair: Load expands ${VAR} and ${VAR:-default}
// environment references, rejects unknown fields and validates every
// reference before any component exists. Build then constructs the tree,
// wiring shared agent instances, "agent:NAME" tool references and the tool
// and model implementations supplied through BuildOptions. Credentials fall
// back to the conventional provider environment variables; LoadEnv reads
// .env.local and .env for local development.
package workflow
