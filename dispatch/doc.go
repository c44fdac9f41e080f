// Package dispatch implements the orchestration engine: per-request identity
// resolution, the demo replay short-circuit, and the LLM-driven
// dispatch-and-retry loop that executes at most one capability per oracle
// round within a bounded retry budget.
package dispatch
