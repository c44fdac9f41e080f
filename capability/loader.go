package capability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"

	"github.com/hupe1980/dispatchmesh/core"
	"github.com/hupe1980/dispatchmesh/logging"
)

// LoadError records one capability unit that failed to load. Load failures
// are never fatal: the registry is the list of successes and the report keeps
// the failures for observability.
type LoadError struct {
	Unit string
	Err  error
}

func (e LoadError) Error() string { return fmt.Sprintf("load %s: %v", e.Unit, e.Err) }

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e LoadError) Unwrap() error { return e.Err }

// LoadReport summarizes one Load pass: which units made it into the registry
// and which were skipped with their per-unit errors.
type LoadReport struct {
	Loaded   []string
	Failures []LoadError
}

// LoaderOptions configure capability discovery.
type LoaderOptions struct {
	// LocalBundle is the fixed set of compiled-in capabilities registered
	// before any remote unit. Defaults to Builtins().
	LocalBundle []Capability
	// PrimaryPrefix is the store prefix holding per-deployment units.
	PrimaryPrefix string
	// CompositePrefix is the store prefix holding composite capability units.
	CompositePrefix string
}

// Loader discovers capability implementations from the local bundle, the
// primary remote unit store and the secondary composite-capability store,
// merging them into a Registry with an optional per-identity allow-list.
type Loader struct {
	store  core.BlobStore
	logger logging.Logger
	opts   LoaderOptions
}

// NewLoader constructs a Loader over the given blob store.
func NewLoader(store core.BlobStore, logger logging.Logger, optFns ...func(o *LoaderOptions)) *Loader {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	opts := LoaderOptions{
		LocalBundle:     Builtins(),
		PrimaryPrefix:   "capabilities/",
		CompositePrefix: "composite-capabilities/",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Loader{store: store, logger: logger, opts: opts}
}

// Load builds the merged registry for one request.
//
// Local bundle capabilities register first, then units from the primary
// prefix, then the composite prefix; later registrations overwrite earlier
// ones with the same declared name, so remote overrides local by load order.
// Any per-unit failure is recorded in the report and skipped; partial load is
// acceptable, never fatal. The returned registry must not be mutated.
func (l *Loader) Load(ctx context.Context, identity string) (*Registry, *LoadReport) {
	registry := NewRegistry(l.logger)
	report := &LoadReport{}

	for _, c := range l.opts.LocalBundle {
		if c == nil || c.Name() == "" {
			report.Failures = append(report.Failures, LoadError{Unit: "local", Err: fmt.Errorf("bundle entry missing a name")})
			continue
		}
		registry.Register(c)
		report.Loaded = append(report.Loaded, "local:"+c.Name())
	}

	if allowed := l.resolveAllowList(ctx, identity); allowed != nil {
		l.loadAllowed(ctx, allowed, registry, report)
	} else {
		for _, prefix := range []string{l.opts.PrimaryPrefix, l.opts.CompositePrefix} {
			for _, unitPath := range l.listUnits(ctx, prefix, report) {
				c, err := l.loadUnit(ctx, unitPath)
				if err != nil {
					l.logger.Warn("loader.unit.skipped", "unit", unitPath, "error", err.Error())
					report.Failures = append(report.Failures, LoadError{Unit: unitPath, Err: err})
					continue
				}
				registry.Register(c)
				report.Loaded = append(report.Loaded, unitPath)
			}
		}
	}

	l.logger.Info("loader.complete", "identity", identity, "loaded", len(report.Loaded), "failed", len(report.Failures))

	return registry, report
}

// resolveAllowList fetches the optional per-identity allow-list. A missing
// blob (or any store failure) means no restriction: all discoverable units load.
func (l *Loader) resolveAllowList(ctx context.Context, identity string) []string {
	if identity == "" {
		identity = core.FallbackIdentity
	}
	data, err := l.store.Get(ctx, "capability-config/"+identity+"/enabled.json")
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	if err != nil {
		l.logger.Warn("loader.allowlist.unavailable", "identity", identity, "error", err.Error())
		return nil
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		l.logger.Warn("loader.allowlist.malformed", "identity", identity, "error", err.Error())
		return nil
	}
	return names
}

// loadAllowed resolves each allow-listed name against both unit prefixes.
// Absence from one prefix is not an error; a listed name that resolves in
// neither prefix records a single failure.
func (l *Loader) loadAllowed(ctx context.Context, allowed []string, registry *Registry, report *LoadReport) {
	for _, name := range allowed {
		base := path.Base(name)
		found := false
		for _, prefix := range []string{l.opts.PrimaryPrefix, l.opts.CompositePrefix} {
			unitPath := prefix + base
			src, err := l.store.Get(ctx, unitPath)
			if errors.Is(err, core.ErrNotFound) {
				continue
			}
			found = true
			if err != nil {
				l.logger.Warn("loader.unit.skipped", "unit", unitPath, "error", err.Error())
				report.Failures = append(report.Failures, LoadError{Unit: unitPath, Err: fmt.Errorf("fetch unit: %w", err)})
				continue
			}
			c, err := MaterializeUnit(string(src))
			if err != nil {
				l.logger.Warn("loader.unit.skipped", "unit", unitPath, "error", err.Error())
				report.Failures = append(report.Failures, LoadError{Unit: unitPath, Err: err})
				continue
			}
			registry.Register(c)
			report.Loaded = append(report.Loaded, unitPath)
		}
		if !found {
			l.logger.Warn("loader.unit.missing", "unit", base)
			report.Failures = append(report.Failures, LoadError{Unit: base, Err: fmt.Errorf("enabled unit found in no prefix: %w", core.ErrNotFound)})
		}
	}
}

// listUnits enumerates every discoverable unit path under prefix.
func (l *Loader) listUnits(ctx context.Context, prefix string, report *LoadReport) []string {
	paths, err := l.store.List(ctx, prefix)
	if err != nil {
		l.logger.Warn("loader.list.unavailable", "prefix", prefix, "error", err.Error())
		report.Failures = append(report.Failures, LoadError{Unit: prefix, Err: err})
		return nil
	}
	return paths
}

// loadUnit fetches one unit source and materializes it in an isolated
// interpreter namespace.
func (l *Loader) loadUnit(ctx context.Context, unitPath string) (Capability, error) {
	src, err := l.store.Get(ctx, unitPath)
	if err != nil {
		return nil, fmt.Errorf("fetch unit: %w", err)
	}
	return MaterializeUnit(string(src))
}
