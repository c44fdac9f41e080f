// Package memory resolves the prompt memory context for a request: a shared,
// identity-independent blob set plus an identity-scoped blob set, with scoped
// information overriding shared on conflict.
package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/hupe1980/dispatchmesh/core"
	"github.com/hupe1980/dispatchmesh/logging"
)

const sharedPrefix = "memory/shared/"

// Context is the resolved memory context for one request. It is rebuilt per
// request and never cached: the store is the source of truth.
type Context struct {
	// Identity is the identity the scoped blobs were fetched for (the
	// fallback identity when the request carried none).
	Identity string
	// Shared holds the identity-independent memory, fetched with full recall.
	Shared string
	// Scoped holds the identity-partitioned memory. On conflict with Shared,
	// Scoped wins; both are surfaced so the prompt builder can synthesize
	// across them.
	Scoped string
}

// IsEmpty reports whether no memory was recovered at all.
func (c Context) IsEmpty() bool { return c.Shared == "" && c.Scoped == "" }

// PromptSection renders the context as a system prompt fragment with the
// precedence contract spelled out for the oracle.
func (c Context) PromptSection() string {
	if c.IsEmpty() {
		return ""
	}
	var b strings.Builder
	b.WriteString("Long-term memory. Entries under \"User context\" override \"Shared context\" when they conflict.\n")
	if c.Shared != "" {
		b.WriteString("\n## Shared context\n")
		b.WriteString(c.Shared)
		b.WriteString("\n")
	}
	if c.Scoped != "" {
		b.WriteString("\n## User context\n")
		b.WriteString(c.Scoped)
		b.WriteString("\n")
	}
	return b.String()
}

// Resolver loads memory contexts from the blob store.
type Resolver struct {
	store            core.BlobStore
	fallbackIdentity string
	logger           logging.Logger
}

// NewResolver constructs a Resolver. An empty fallback identity defaults to
// core.FallbackIdentity.
func NewResolver(store core.BlobStore, fallbackIdentity string, logger logging.Logger) *Resolver {
	if fallbackIdentity == "" {
		fallbackIdentity = core.FallbackIdentity
	}
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Resolver{store: store, fallbackIdentity: fallbackIdentity, logger: logger}
}

// Resolve builds the memory context for identity. The shared blobs are
// always fetched first, independent of identity and without truncation. An
// empty identity substitutes the well-known fallback before the scoped fetch.
// Store failures degrade to an empty section rather than failing the request.
func (r *Resolver) Resolve(ctx context.Context, identity string) Context {
	shared := r.collect(ctx, sharedPrefix)

	if identity == "" {
		identity = r.fallbackIdentity
	}
	scoped := r.collect(ctx, "memory/"+identity+"/")

	r.logger.Debug("memory.resolved", "identity", identity, "shared_bytes", len(shared), "scoped_bytes", len(scoped))

	return Context{Identity: identity, Shared: shared, Scoped: scoped}
}

// collect concatenates every blob under prefix in lexical path order.
func (r *Resolver) collect(ctx context.Context, prefix string) string {
	paths, err := r.store.List(ctx, prefix)
	if err != nil {
		r.logger.Warn("memory.list.unavailable", "prefix", prefix, "error", err.Error())
		return ""
	}
	sort.Strings(paths)

	parts := make([]string, 0, len(paths))
	for _, p := range paths {
		data, err := r.store.Get(ctx, p)
		if err != nil {
			r.logger.Warn("memory.blob.unavailable", "path", p, "error", err.Error())
			continue
		}
		if text := strings.TrimSpace(string(data)); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}
