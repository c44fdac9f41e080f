// Package core provides the foundational domain types and interfaces used by
// DispatchMesh. It defines the core abstractions for:
//
//   - Messages (role-based conversation history entries)
//   - Requests / Responses (the external dispatch contract)
//   - Identity tokens (opaque per-user partition keys)
//   - The pluggable blob store consumed by loaders, memory and demo lookup
//
// The package intentionally keeps implementation concerns (persistence,
// orchestration, concrete capabilities) out of scope, exposing small
// interfaces to enable custom backends and extensions.
package core
