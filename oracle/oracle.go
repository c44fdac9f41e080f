// Package oracle abstracts the hosted language-model function-calling
// service consumed by the dispatch loop. The engine treats the oracle as a
// black box: one Complete call per round, tools attached declaratively, at
// most one tool call honored per reply.
package oracle

import (
	"context"
	"fmt"

	"github.com/hupe1980/dispatchmesh/core"
)

// ErrUnavailable wraps transient provider failures (network errors, rate
// limits, 5xx). The dispatch loop retries these with backoff inside its
// bounded round budget; any other error is surfaced immediately.
var ErrUnavailable = fmt.Errorf("oracle unavailable")

// ToolCall represents a capability invocation request surfaced by a provider.
// Unified across vendors so downstream logic does not need per-provider branching.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string of arguments
}

// ToolDefinition declaratively exposes a callable capability to the model.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema
}

// Request captures the normalized oracle input produced by the orchestrator.
// Messages carry the conversation in chronological order; tool-role entries
// hold stringified capability results from earlier rounds.
type Request struct {
	Instructions string           `json:"instructions"`
	Messages     []core.Message   `json:"messages"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
}

// Response is the reply of one oracle round. ToolCall is nil when the model
// answered directly; Text may be empty when a tool call was issued.
type Response struct {
	Text     string    `json:"text"`
	ToolCall *ToolCall `json:"tool_call,omitempty"`
}

// Info contains metadata about an oracle implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Oracle is the minimal interface required by the orchestrator to drive one
// synchronous generation round.
type Oracle interface {
	Complete(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the oracle implementation.
	Info() Info
}
