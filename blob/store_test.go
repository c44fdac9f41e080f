package blob

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/dispatchmesh/core"
)

func TestInMemoryStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	assert.NoError(t, s.Put(ctx, "memory/shared/a.md", []byte("alpha")))

	data, err := s.Get(ctx, "memory/shared/a.md")
	assert.NoError(t, err)
	assert.Equal(t, "alpha", string(data))

	_, err = s.Get(ctx, "memory/shared/missing.md")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestInMemoryStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	assert.NoError(t, s.Put(ctx, "k", []byte("abc")))

	data, err := s.Get(ctx, "k")
	assert.NoError(t, err)
	data[0] = 'z'

	again, err := s.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestInMemoryStore_ListByPrefix(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	assert.NoError(t, s.Put(ctx, "demos/b.json", []byte("{}")))
	assert.NoError(t, s.Put(ctx, "demos/a.json", []byte("{}")))
	assert.NoError(t, s.Put(ctx, "memory/shared/a.md", []byte("x")))

	paths, err := s.List(ctx, "demos/")
	assert.NoError(t, err)
	assert.Equal(t, []string{"demos/a.json", "demos/b.json"}, paths)
}

func TestFilesystemStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewFilesystemStore(t.TempDir())
	assert.NoError(t, err)

	assert.NoError(t, s.Put(ctx, "memory/shared/a.md", []byte("alpha")))
	assert.NoError(t, s.Put(ctx, "memory/shared/b.md", []byte("beta")))

	data, err := s.Get(ctx, "memory/shared/a.md")
	assert.NoError(t, err)
	assert.Equal(t, "alpha", string(data))

	paths, err := s.List(ctx, "memory/shared/")
	assert.NoError(t, err)
	assert.Equal(t, []string{"memory/shared/a.md", "memory/shared/b.md"}, paths)

	_, err = s.Get(ctx, "memory/shared/missing.md")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestFilesystemStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	s, err := NewFilesystemStore(t.TempDir())
	assert.NoError(t, err)

	assert.NoError(t, s.Put(ctx, "k", []byte("one")))
	assert.NoError(t, s.Put(ctx, "k", []byte("two")))

	data, err := s.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestFilesystemStore_RejectsTraversal(t *testing.T) {
	ctx := context.Background()
	s, err := NewFilesystemStore(t.TempDir())
	assert.NoError(t, err)

	assert.Error(t, s.Put(ctx, "../outside", []byte("x")))
	_, err = s.Get(ctx, "/etc/hostname")
	assert.Error(t, err)
}
