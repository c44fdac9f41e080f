package capability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/dispatchmesh/blob"
)

func newTestContext(store *blob.InMemoryStore) *Context {
	return NewContext(context.Background(), "11111111-2222-3333-4444-555555555555", "inv-1", store, nil)
}

// -------------------- Marker Tests --------------------

func TestIsIncomplete(t *testing.T) {
	assert.True(t, IsIncomplete("ERROR: upstream timeout"))
	assert.True(t, IsIncomplete("  ERROR: leading whitespace"))
	assert.True(t, IsIncomplete("partial data so far [INCOMPLETE]"))
	assert.False(t, IsIncomplete("all done"))
	assert.False(t, IsIncomplete("the word error appears mid-sentence"))
}

// -------------------- FunctionCapability Tests --------------------

func TestFunctionCapability_Success(t *testing.T) {
	c := NewFunctionCapability(
		"greet",
		"Greet someone by name.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name": map[string]any{"type": "string"},
			},
			"required": []string{"name"},
		},
		func(_ *Context, args map[string]string) (string, error) {
			return "hello " + args["name"], nil
		},
	)

	result, err := c.Perform(newTestContext(blob.NewInMemoryStore()), map[string]string{"name": "ada"})
	assert.NoError(t, err)
	assert.Equal(t, "hello ada", result)
}

func TestFunctionCapability_ValidationError(t *testing.T) {
	c := NewFunctionCapability(
		"greet",
		"Greet someone by name.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name": map[string]any{"type": "string"},
			},
			"required": []string{"name"},
		},
		func(_ *Context, args map[string]string) (string, error) {
			return "hello " + args["name"], nil
		},
	)

	_, err := c.Perform(newTestContext(blob.NewInMemoryStore()), map[string]string{"name": ""})
	var capErr *CapabilityError
	assert.True(t, errors.As(err, &capErr))
	assert.Equal(t, "VALIDATION_ERROR", capErr.Code)
}

func TestFunctionCapability_ExecutionErrorWrapped(t *testing.T) {
	c := NewFunctionCapability(
		"fail",
		"Always fails.",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ *Context, _ map[string]string) (string, error) {
			return "", errors.New("boom")
		},
	)

	_, err := c.Perform(newTestContext(blob.NewInMemoryStore()), map[string]string{})
	var capErr *CapabilityError
	assert.True(t, errors.As(err, &capErr))
	assert.Equal(t, "EXECUTION_ERROR", capErr.Code)
	assert.Equal(t, "boom", capErr.Message)
}

func TestFunctionCapability_CustomErrorPassthrough(t *testing.T) {
	custom := NewCapabilityError("fail", "rate limited", "RATE_LIMITED")
	c := NewFunctionCapability(
		"fail",
		"Always fails.",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ *Context, _ map[string]string) (string, error) {
			return "", custom
		},
	)

	_, err := c.Perform(newTestContext(blob.NewInMemoryStore()), map[string]string{})
	var capErr *CapabilityError
	assert.True(t, errors.As(err, &capErr))
	assert.Equal(t, "RATE_LIMITED", capErr.Code)
}

// -------------------- Registry Tests --------------------

func TestRegistry_LaterRegistrationOverrides(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(NewFunctionCapability("echo", "local echo", map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ *Context, _ map[string]string) (string, error) { return "local", nil }))
	r.Register(NewFunctionCapability("echo", "remote echo", map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ *Context, _ map[string]string) (string, error) { return "remote", nil }))

	assert.Equal(t, 1, r.Len())
	c, ok := r.Lookup("echo")
	assert.True(t, ok)
	result, err := c.Perform(newTestContext(blob.NewInMemoryStore()), map[string]string{})
	assert.NoError(t, err)
	assert.Equal(t, "remote", result)
}

func TestRegistry_ToolDefinitionsLexical(t *testing.T) {
	r := NewRegistry(nil)
	for _, name := range []string{"zeta", "alpha", "mike"} {
		r.Register(NewFunctionCapability(name, name, map[string]any{"type": "object", "properties": map[string]any{}},
			func(_ *Context, _ map[string]string) (string, error) { return "", nil }))
	}

	defs := r.ToolDefinitions()
	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"alpha", "mike", "zeta"}, names)
}

// -------------------- Builtin Tests --------------------

func TestRememberCapability_WritesScopedMemory(t *testing.T) {
	store := blob.NewInMemoryStore()
	invCtx := newTestContext(store)

	var remember Capability
	for _, c := range Builtins() {
		if c.Name() == "remember" {
			remember = c
		}
	}
	assert.NotNil(t, remember)

	result, err := remember.Perform(invCtx, map[string]string{"key": "favorite-color", "content": "teal"})
	assert.NoError(t, err)
	assert.Contains(t, result, "favorite-color")

	data, err := store.Get(context.Background(), "memory/11111111-2222-3333-4444-555555555555/favorite-color")
	assert.NoError(t, err)
	assert.Equal(t, "teal", string(data))
}
