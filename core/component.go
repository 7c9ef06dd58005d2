package core

// Component is the contract shared by every runnable unit in a workflow:
// atomic agents and the Sequential / Parallel composites that group them.
//
// Run executes the component to completion against the provided RunContext
// and returns its final content. Implementations must:
//   - Read and write shared state only through the RunContext
//   - Either fully succeed or propagate their failure unchanged; no partial
//     results and no synthesized fallback values
//   - Leave fan-out to the Parallel composite; Run itself blocks
type Component interface {
	Name() string
	Description() string
	Run(rc *RunContext) (*Content, error)
}
