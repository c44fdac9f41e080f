package demo

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/dispatchmesh/core"
	"github.com/hupe1980/dispatchmesh/logging"
)

const scriptPrefix = "demos/"

// Engine loads scripts from the blob store and answers trigger and lookup
// queries. Scripts are fetched per call; the store is the source of truth
// and nothing is cached across requests.
type Engine struct {
	store  core.BlobStore
	logger logging.Logger
}

// NewEngine constructs a script engine over the given store.
func NewEngine(store core.BlobStore, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Engine{store: store, logger: logger}
}

// Scripts returns every parseable script in store-listing order. Unparseable
// blobs are logged and skipped; a store failure degrades to no scripts
// rather than an error, so demo lookup never aborts a request.
func (e *Engine) Scripts(ctx context.Context) []*Script {
	paths, err := e.store.List(ctx, scriptPrefix)
	if err != nil {
		e.logger.Warn("demo.list.unavailable", "error", err.Error())
		return nil
	}

	scripts := make([]*Script, 0, len(paths))
	for _, p := range paths {
		if !strings.HasSuffix(p, ".json") {
			continue
		}
		data, err := e.store.Get(ctx, p)
		if err != nil {
			e.logger.Warn("demo.script.unavailable", "path", p, "error", err.Error())
			continue
		}
		s, err := ParseScript(p, data)
		if err != nil {
			e.logger.Warn("demo.script.malformed", "path", p, "error", err.Error())
			continue
		}
		scripts = append(scripts, s)
	}
	return scripts
}

// Script returns the script with the given id or an error when absent.
func (e *Engine) Script(ctx context.Context, id string) (*Script, error) {
	data, err := e.store.Get(ctx, scriptPrefix+id+".json")
	if err != nil {
		return nil, fmt.Errorf("load script %s: %w", id, err)
	}
	return ParseScript(scriptPrefix+id+".json", data)
}

// MatchTrigger returns the first script whose trigger phrases exactly match
// the user message (case-insensitive, whitespace-trimmed). Scripts are
// checked in store-listing order, not ranked; nil means no match.
func (e *Engine) MatchTrigger(ctx context.Context, userMessage string) *Script {
	for _, s := range e.Scripts(ctx) {
		if s.MatchesTrigger(userMessage) {
			return s
		}
	}
	return nil
}
