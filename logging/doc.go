// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer DispatchLogger with contextual
// helpers (component, identity, invocation) and domain specific logging
// helpers for oracle calls and capability invocations.
package logging
