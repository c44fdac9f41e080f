package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hupe1980/dispatchmesh/core"
)

// FilesystemStore is a BlobStore backed by a directory tree rooted at Root.
// Blob paths map directly to relative file paths. Writes go through a
// temporary file plus rename so readers never observe partial content; there
// is no cross-process locking, concurrent writers to the same path race with
// last-write-wins semantics.
type FilesystemStore struct {
	root string
}

// NewFilesystemStore creates a store rooted at dir, creating it if needed.
func NewFilesystemStore(dir string) (*FilesystemStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store root: %w", err)
	}
	return &FilesystemStore{root: dir}, nil
}

// Get returns the blob bytes at path or core.ErrNotFound.
func (s *FilesystemStore) Get(_ context.Context, path string) ([]byte, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", path, err)
	}
	return data, nil
}

// Put stores the blob bytes at path, creating parent directories as needed.
func (s *FilesystemStore) Put(_ context.Context, path string, data []byte) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create blob dir: %w", err)
	}
	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write blob %s: %w", path, err)
	}
	if err := os.Rename(tmp, full); err != nil {
		return fmt.Errorf("commit blob %s: %w", path, err)
	}
	return nil
}

// List walks the tree under prefix returning blob paths in lexical order.
// A missing prefix directory yields an empty listing, not an error.
func (s *FilesystemStore) List(_ context.Context, prefix string) ([]string, error) {
	paths := make([]string, 0)
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || strings.HasSuffix(p, ".tmp") {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		blobPath := filepath.ToSlash(rel)
		if strings.HasPrefix(blobPath, prefix) {
			paths = append(paths, blobPath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list blobs %s: %w", prefix, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// resolve maps a blob path to an absolute file path rejecting traversal
// outside the store root.
func (s *FilesystemStore) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid blob path %q", path)
	}
	return filepath.Join(s.root, clean), nil
}
