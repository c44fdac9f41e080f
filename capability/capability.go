// Package capability implements the pluggable capability subsystem that lets
// the dispatch engine invoke structured functionality (lookups, computations,
// side-effects) with schema described arguments, consistent error handling
// and rich metadata for LLM guidance.
package capability

import (
	"fmt"
	"strings"
)

// Markers recognized inside capability results. A result carrying either one
// is treated as incomplete and triggers the orchestrator's bounded follow-up
// round instead of final synthesis.
const (
	// ErrorMarker prefixes results describing a recoverable failure.
	ErrorMarker = "ERROR:"
	// IncompleteMarker flags results that need another dispatch round.
	IncompleteMarker = "[INCOMPLETE]"
)

// IsIncomplete reports whether a capability result carries an explicit
// error/incomplete marker requiring a follow-up round.
func IsIncomplete(result string) bool {
	trimmed := strings.TrimSpace(result)
	return strings.HasPrefix(trimmed, ErrorMarker) || strings.Contains(trimmed, IncompleteMarker)
}

// Capability defines the interface for extending the engine with invocable functionality.
//
// Capabilities are registered with the Registry and exposed to the oracle as
// callable tools. Arguments arrive as a flat string map; missing or null
// values supplied by the oracle are substituted with the empty string before
// Perform is invoked, so implementations never see nil-like values.
//
// Capability implementations should:
//   - Provide clear, descriptive names and descriptions
//   - Define a proper JSON schema for parameters
//   - Handle errors gracefully (return a *CapabilityError for typed failures)
//   - Be safe for concurrent use across requests
type Capability interface {
	// Name returns the unique identifier for this capability.
	// Names should be descriptive and follow function naming conventions (snake_case recommended).
	Name() string

	// Description returns a human-readable description of what this capability does.
	// This description is provided to the oracle to help it understand when and how to invoke it.
	Description() string

	// Parameters returns a JSON schema describing the expected input format.
	Parameters() map[string]any

	// Perform executes the capability with string arguments and an invocation
	// scoped Context. The returned string may carry the dual-format delimiter
	// or an incomplete marker; the orchestrator interprets both.
	Perform(invCtx *Context, args map[string]string) (string, error)
}

// CapabilityError represents errors that occur during capability execution.
type CapabilityError struct {
	Capability string `json:"capability"`        // Name of the capability that failed
	Message    string `json:"message"`           // Error message
	Code       string `json:"code"`              // Error code for categorization
	Details    any    `json:"details,omitempty"` // Additional error details
}

func (e *CapabilityError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("capability error [%s] in %s: %s", e.Code, e.Capability, e.Message)
	}
	return fmt.Sprintf("capability error in %s: %s", e.Capability, e.Message)
}

// NewCapabilityError creates a new CapabilityError with the specified details.
func NewCapabilityError(capability, message, code string) *CapabilityError {
	return &CapabilityError{
		Capability: capability,
		Message:    message,
		Code:       code,
	}
}
