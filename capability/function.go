package capability

import (
	"fmt"
	"time"

	"github.com/hupe1980/dispatchmesh/internal/util"
)

// FunctionCapability is a generic adapter that exposes a plain Go function as
// a dispatch capability.
//
// Responsibilities:
//   - Holds a lightweight JSON-Schema-like parameter specification
//   - Validates oracle supplied arguments against that schema before execution
//   - Invokes the wrapped function with a *Context giving access to identity,
//     the blob store and logging
//   - Normalizes error handling so callers receive *CapabilityError with
//     consistent codes:
//     VALIDATION_ERROR  -> schema / argument mismatch
//     EXECUTION_ERROR   -> underlying function returned an error (non-CapabilityError)
//     (custom codes preserved if the function returns *CapabilityError directly)
//
// Concurrency:
//
//	A FunctionCapability has no internal mutable state after construction and
//	is safe for concurrent use by multiple goroutines.
type FunctionCapability struct {
	// Capability identifier (snake_case recommended)
	name string
	// Human-readable description shown to the oracle
	description string
	// JSON schema describing accepted arguments
	parameters map[string]any
	// User supplied implementation
	fn func(invCtx *Context, args map[string]string) (string, error)
}

// NewFunctionCapability constructs a FunctionCapability from explicit schema and function.
//
// Arguments:
//
//	name        - unique capability name (avoid collisions; snake_case suggested)
//	description - concise, imperative description ("Look up the ...")
//	parameters  - minimal JSON-Schema-like map describing the accepted arguments
//	fn          - implementation receiving a Context plus already-validated args
func NewFunctionCapability(
	name, description string,
	parameters map[string]any,
	fn func(invCtx *Context, args map[string]string) (string, error),
) *FunctionCapability {
	return &FunctionCapability{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// NewFunctionCapabilityFromStruct derives the parameter schema from a struct
// using reflection. It is a convenience for simple argument containers and
// produces a schema equivalent to util.CreateSchema(structType).
//
// Example:
//
//	type LookupArgs struct {
//	  Account string `json:"account" description:"Account name to look up"`
//	}
//
//	lookup := NewFunctionCapabilityFromStruct(
//	  "crm_lookup",
//	  "Look up an account in the CRM",
//	  LookupArgs{},
//	  func(invCtx *Context, args map[string]string) (string, error) {
//	    return fetchAccount(args["account"])
//	  },
//	)
func NewFunctionCapabilityFromStruct(
	name, description string,
	structType any,
	fn func(invCtx *Context, args map[string]string) (string, error),
) *FunctionCapability {
	schema := util.CreateSchema(structType)
	return NewFunctionCapability(name, description, schema, fn)
}

// Name returns the unique capability name used in tool declarations and routing.
func (c *FunctionCapability) Name() string { return c.name }

// Description returns the short natural language description exposed to the oracle.
func (c *FunctionCapability) Description() string { return c.description }

// Parameters returns the (minimal) JSON schema describing expected arguments.
func (c *FunctionCapability) Parameters() map[string]any { return c.parameters }

// Perform validates the provided args against the declared schema then
// invokes the underlying function. Validation or execution failures are
// wrapped (or passed through) as *CapabilityError for uniform downstream
// handling.
//
// Error Semantics:
//
//	*CapabilityError (returned directly) -> forwarded unchanged
//	validation failure                   -> *CapabilityError{Code: "VALIDATION_ERROR"}
//	other error                          -> *CapabilityError{Code: "EXECUTION_ERROR"}
func (c *FunctionCapability) Perform(invCtx *Context, args map[string]string) (string, error) {
	logger := invCtx.Logger()
	start := time.Now()

	logger.Debug("capability.perform.start", "capability", c.name, "invocation_id", invCtx.InvocationID())

	if err := util.ValidateParams(args, c.parameters); err != nil {
		logger.Warn("capability.perform.validation_failed", "capability", c.name, "error", err.Error())

		return "", &CapabilityError{
			Capability: c.name,
			Message:    fmt.Sprintf("parameter validation failed: %v", err),
			Code:       "VALIDATION_ERROR",
			Details:    err,
		}
	}

	result, err := c.fn(invCtx, args)
	if err != nil {
		if capErr, ok := err.(*CapabilityError); ok { // Already a CapabilityError -> just log and forward
			logger.Error("capability.perform.error", "capability", c.name, "error", capErr.Message)

			return "", capErr
		}

		logger.Error("capability.perform.error", "capability", c.name, "error", err.Error())

		return "", &CapabilityError{
			Capability: c.name,
			Message:    err.Error(),
			Code:       "EXECUTION_ERROR",
		}
	}

	logger.Info("capability.perform.success", "capability", c.name, "duration_ms", time.Since(start).Milliseconds())

	return result, nil
}
