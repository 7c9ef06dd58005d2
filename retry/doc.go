// Package retry implements the bounded exponential backoff contract applied
// to every external call an agent makes (model invocations and tool
// dispatches). A Policy is immutable configuration shared by reference
// across agents; Do executes a call under it.
//
// Do is the only place in the module that sleeps. Components never retry
// themselves, and no backoff state survives a call to Do.
package retry
