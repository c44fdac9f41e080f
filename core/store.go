package core

import (
	"context"
	"fmt"
)

// ErrNotFound is returned when a blob for the given path does not exist in
// the underlying store.
var ErrNotFound = fmt.Errorf("blob not found")

// BlobStore is the key/path blob read-write service consumed by the engine.
//
// The engine treats the store as eventually consistent with no transactional
// guarantees: concurrent writers to the same path may interleave and
// last-write-wins is acceptable semantics. Implementations should be safe for
// concurrent use. Paths are slash-separated and case sensitive; the layout
// consumed by this module is:
//
//	memory/shared/*                            shared memory blobs
//	memory/{identity}/*                        identity-scoped memory blobs
//	capability-config/{identity}/enabled.json  optional allow-list (filenames)
//	capabilities/*                             remote capability source units
//	composite-capabilities/*                   composite capability units
//	demos/*.json                               demo scripts
type BlobStore interface {
	// Get returns the blob bytes at path or ErrNotFound.
	Get(ctx context.Context, path string) ([]byte, error)

	// Put stores (or overwrites) the blob bytes at path.
	Put(ctx context.Context, path string, data []byte) error

	// List returns all paths under the given prefix in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
}
