package capability

import (
	"context"
	"fmt"

	"github.com/hupe1980/dispatchmesh/core"
	"github.com/hupe1980/dispatchmesh/logging"
)

// Context provides a constrained, auditable surface for capability
// implementations invoked by the orchestrator. It scopes store access to the
// resolved identity and carries the invocation correlation id for logging.
type Context struct {
	ctx          context.Context
	identity     string
	invocationID string
	store        core.BlobStore
	logger       logging.Logger
}

// NewContext constructs a capability context bound to one invocation.
func NewContext(ctx context.Context, identity, invocationID string, store core.BlobStore, logger logging.Logger) *Context {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Context{
		ctx:          ctx,
		identity:     identity,
		invocationID: invocationID,
		store:        store,
		logger:       logger,
	}
}

// Context returns the ambient cancellation context of the invocation.
func (c *Context) Context() context.Context { return c.ctx }

// Identity returns the identity token resolved for this request.
func (c *Context) Identity() string { return c.identity }

// InvocationID returns the correlation id of the current dispatch call.
func (c *Context) InvocationID() string { return c.invocationID }

// Logger returns the logger associated with the invocation.
func (c *Context) Logger() logging.Logger { return c.logger }

// ReadBlob fetches raw bytes from the backing store.
func (c *Context) ReadBlob(path string) ([]byte, error) {
	if c.store == nil {
		return nil, fmt.Errorf("blob store not configured")
	}
	return c.store.Get(c.ctx, path)
}

// WriteBlob stores raw bytes in the backing store. The store offers no
// transactional guarantees; concurrent writers race with last-write-wins.
func (c *Context) WriteBlob(path string, data []byte) error {
	if c.store == nil {
		return fmt.Errorf("blob store not configured")
	}
	return c.store.Put(c.ctx, path, data)
}

// WriteScopedMemory appends a memory blob under the invocation's identity
// partition, substituting the fallback identity when none is set.
func (c *Context) WriteScopedMemory(key string, content string) error {
	identity := c.identity
	if identity == "" {
		identity = core.FallbackIdentity
	}
	return c.WriteBlob("memory/"+identity+"/"+key, []byte(content))
}
