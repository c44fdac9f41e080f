package capability

import (
	"sort"

	"github.com/hupe1980/dispatchmesh/logging"
	"github.com/hupe1980/dispatchmesh/oracle"
)

// Registry maps capability names to implementations for one request's
// lifetime. It is populated by the Loader and never mutated after Load
// returns; lookups require no synchronization.
type Registry struct {
	capabilities map[string]Capability
	logger       logging.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Registry{capabilities: make(map[string]Capability), logger: logger}
}

// Register merges a capability keyed by its declared name. Later
// registrations overwrite earlier ones with the same name, so remote units
// override local ones by load order.
func (r *Registry) Register(c Capability) {
	name := c.Name()
	if _, exists := r.capabilities[name]; exists {
		r.logger.Debug("registry.override", "capability", name)
	}
	r.capabilities[name] = c
}

// Lookup returns the capability registered under name.
func (r *Registry) Lookup(name string) (Capability, bool) {
	c, ok := r.capabilities[name]
	return c, ok
}

// Names returns all registered capability names in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.capabilities))
	for name := range r.capabilities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len reports the number of registered capabilities.
func (r *Registry) Len() int { return len(r.capabilities) }

// ToolDefinitions renders the registry as oracle tool declarations in
// lexical name order so prompts are deterministic across requests.
func (r *Registry) ToolDefinitions() []oracle.ToolDefinition {
	defs := make([]oracle.ToolDefinition, 0, len(r.capabilities))
	for _, name := range r.Names() {
		c := r.capabilities[name]
		defs = append(defs, oracle.ToolDefinition{
			Name:        c.Name(),
			Description: c.Description(),
			Parameters:  c.Parameters(),
		})
	}
	return defs
}
