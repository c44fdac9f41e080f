// Package dispatchmesh provides a high-level façade over the dispatch
// orchestrator and its collaborating services (capability loading, memory
// resolution, scripted demo replay & logging). Most applications interact
// with this package by:
//  1. Creating a DispatchMesh via New() with an oracle adapter (optionally
//     overriding the default in-memory store)
//  2. Seeding the blob store with memory, capability units and demo scripts
//  3. Calling Respond() once per user turn with the full conversation history
//
// The façade delegates per-request orchestration to dispatch.Orchestrator
// while keeping setup ergonomics concise. All defaults are safe for local
// development and testing; production deployments typically supply a durable
// store implementation and a structured logger.
package dispatchmesh

import (
	"context"

	"github.com/hupe1980/dispatchmesh/blob"
	"github.com/hupe1980/dispatchmesh/capability"
	"github.com/hupe1980/dispatchmesh/core"
	"github.com/hupe1980/dispatchmesh/demo"
	"github.com/hupe1980/dispatchmesh/dispatch"
	"github.com/hupe1980/dispatchmesh/logging"
	"github.com/hupe1980/dispatchmesh/memory"
	"github.com/hupe1980/dispatchmesh/oracle"
)

// Options configures the DispatchMesh instance.
type Options struct {
	// Store backs memory, capability units, demo scripts and per-identity
	// configuration. Defaults to an in-memory store.
	Store core.BlobStore

	// LocalBundle overrides the compiled-in capability set. When nil the
	// builtins plus the demo playback capability are registered.
	LocalBundle []capability.Capability

	// MaxRetries bounds oracle retries and dispatch rounds per request.
	MaxRetries int

	// FallbackIdentity scopes requests that carry no identity token.
	FallbackIdentity string

	// AssistantName is the persona presented in system instructions.
	AssistantName string

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// DispatchMesh is the high-level façade aggregating the orchestrator and services.
type DispatchMesh struct {
	opts         Options
	store        core.BlobStore
	orchestrator *dispatch.Orchestrator
}

// New creates a DispatchMesh over the given oracle with optional overrides.
// Any unset service is initialized with an in-memory implementation.
func New(o oracle.Oracle, optFns ...func(o *Options)) *DispatchMesh {
	opts := Options{
		Store:            blob.NewInMemoryStore(),
		MaxRetries:       dispatch.DefaultMaxRetries,
		FallbackIdentity: core.FallbackIdentity,
		AssistantName:    dispatch.DefaultAssistantName,
		Logger:           logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	demos := demo.NewEngine(opts.Store, opts.Logger)

	bundle := opts.LocalBundle
	if bundle == nil {
		bundle = append(capability.Builtins(), demo.NewPlaybackCapability(demos))
	}

	loader := capability.NewLoader(opts.Store, opts.Logger, func(lo *capability.LoaderOptions) {
		lo.LocalBundle = bundle
	})
	resolver := memory.NewResolver(opts.Store, opts.FallbackIdentity, opts.Logger)

	orchestrator := dispatch.NewOrchestrator(o, loader, resolver, demos, opts.Store, func(do *dispatch.Options) {
		do.MaxRetries = opts.MaxRetries
		do.FallbackIdentity = opts.FallbackIdentity
		do.AssistantName = opts.AssistantName
		do.Logger = opts.Logger
	})

	return &DispatchMesh{opts: opts, store: opts.Store, orchestrator: orchestrator}
}

// Respond executes one dispatch call. The caller owns the conversation
// history: append the returned Annotations (and the assistant turn) to it
// before the next call, or scripted replay state will not carry over.
func (m *DispatchMesh) Respond(ctx context.Context, req core.Request) (*core.Response, error) {
	return m.orchestrator.Respond(ctx, req)
}

// Store exposes the backing blob store for seeding and inspection.
func (m *DispatchMesh) Store() core.BlobStore { return m.store }
