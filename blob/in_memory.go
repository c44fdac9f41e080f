package blob

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/hupe1980/dispatchmesh/core"
)

// InMemoryStore is a trivial in-process BlobStore implementation useful for
// tests, examples and single-process prototypes. It keeps all blobs in a flat
// map guarded by an RWMutex. Data is copied on put / get to avoid accidental
// external mutation of internal buffers.
//
// This implementation is intentionally minimal; it does not enforce retention
// limits, size quotas, or eviction. For production, prefer a durable
// implementation that survives process restarts.
type InMemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewInMemoryStore returns an empty in-memory blob store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{blobs: make(map[string][]byte)}
}

// Get returns a copy of the stored blob bytes or core.ErrNotFound.
func (s *InMemoryStore) Get(_ context.Context, path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[path]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// Put stores (or overwrites) the blob bytes at path. The input slice is
// copied before storage; the last writer wins.
func (s *InMemoryStore) Put(_ context.Context, path string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.blobs[path] = cp
	return nil
}

// List returns the paths stored under prefix in lexical order. The slice is
// a snapshot and safe for caller mutation.
func (s *InMemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0)
	for p := range s.blobs {
		if strings.HasPrefix(p, prefix) {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths, nil
}
