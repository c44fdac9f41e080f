package capability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/dispatchmesh/blob"
)

const upperUnit = `package main

import "strings"

func Name() string        { return "upper" }
func Description() string { return "Uppercase the supplied text." }

func Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"text": map[string]interface{}{"type": "string"},
		},
		"required": []string{"text"},
	}
}

func Perform(args map[string]string) (string, error) {
	return strings.ToUpper(args["text"]), nil
}
`

// echoOverrideUnit declares the same name as the builtin echo capability.
const echoOverrideUnit = `package main

func Name() string        { return "echo" }
func Description() string { return "Remote echo." }

func Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"text": map[string]interface{}{"type": "string"},
		},
		"required": []string{"text"},
	}
}

func Perform(args map[string]string) (string, error) {
	return "remote: " + args["text"], nil
}
`

func TestLoader_LocalBundleOnly(t *testing.T) {
	store := blob.NewInMemoryStore()
	loader := NewLoader(store, nil)

	registry, report := loader.Load(context.Background(), "")
	assert.Equal(t, len(Builtins()), registry.Len())
	assert.Empty(t, report.Failures)
	assert.Contains(t, report.Loaded, "local:echo")
}

func TestLoader_RemoteUnitsMerge(t *testing.T) {
	ctx := context.Background()
	store := blob.NewInMemoryStore()
	assert.NoError(t, store.Put(ctx, "capabilities/upper.go", []byte(upperUnit)))

	loader := NewLoader(store, nil)
	registry, report := loader.Load(ctx, "")

	assert.Empty(t, report.Failures)
	_, ok := registry.Lookup("upper")
	assert.True(t, ok)
}

func TestLoader_RemoteOverridesLocal(t *testing.T) {
	ctx := context.Background()
	store := blob.NewInMemoryStore()
	assert.NoError(t, store.Put(ctx, "capabilities/echo.go", []byte(echoOverrideUnit)))

	loader := NewLoader(store, nil)
	registry, _ := loader.Load(ctx, "")

	c, ok := registry.Lookup("echo")
	assert.True(t, ok)
	result, err := c.Perform(NewContext(ctx, "", "inv", store, nil), map[string]string{"text": "hi"})
	assert.NoError(t, err)
	assert.Equal(t, "remote: hi", result)
}

func TestLoader_PartialFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	store := blob.NewInMemoryStore()
	assert.NoError(t, store.Put(ctx, "capabilities/upper.go", []byte(upperUnit)))
	assert.NoError(t, store.Put(ctx, "capabilities/broken.go", []byte("package main\n\nfunc Name() string {")))

	loader := NewLoader(store, nil)
	registry, report := loader.Load(ctx, "")

	_, ok := registry.Lookup("upper")
	assert.True(t, ok)
	assert.Len(t, report.Failures, 1)
	assert.Equal(t, "capabilities/broken.go", report.Failures[0].Unit)
}

func TestLoader_AllowListRestrictsUnits(t *testing.T) {
	ctx := context.Background()
	identity := "11111111-2222-3333-4444-555555555555"
	store := blob.NewInMemoryStore()
	assert.NoError(t, store.Put(ctx, "capabilities/upper.go", []byte(upperUnit)))
	assert.NoError(t, store.Put(ctx, "capabilities/echo.go", []byte(echoOverrideUnit)))
	assert.NoError(t, store.Put(ctx, "capability-config/"+identity+"/enabled.json", []byte(`["upper.go"]`)))

	loader := NewLoader(store, nil)
	registry, report := loader.Load(ctx, identity)

	_, ok := registry.Lookup("upper")
	assert.True(t, ok)

	// echo stays the local builtin: the remote override was not allow-listed
	c, ok := registry.Lookup("echo")
	assert.True(t, ok)
	result, err := c.Perform(NewContext(ctx, identity, "inv", store, nil), map[string]string{"text": "hi"})
	assert.NoError(t, err)
	assert.Equal(t, "hi", result)

	// upper.go only exists under capabilities/; its absence from the
	// composite prefix is not a load failure
	assert.Empty(t, report.Failures)
	assert.Contains(t, report.Loaded, "capabilities/upper.go")
}

func TestLoader_AllowListedUnitMissingEverywhere(t *testing.T) {
	ctx := context.Background()
	identity := "11111111-2222-3333-4444-555555555555"
	store := blob.NewInMemoryStore()
	assert.NoError(t, store.Put(ctx, "capabilities/upper.go", []byte(upperUnit)))
	assert.NoError(t, store.Put(ctx, "capability-config/"+identity+"/enabled.json", []byte(`["upper.go","ghost.go"]`)))

	loader := NewLoader(store, nil)
	registry, report := loader.Load(ctx, identity)

	_, ok := registry.Lookup("upper")
	assert.True(t, ok)
	assert.Len(t, report.Failures, 1)
	assert.Equal(t, "ghost.go", report.Failures[0].Unit)
}

func TestLoader_MalformedAllowListMeansUnrestricted(t *testing.T) {
	ctx := context.Background()
	identity := "11111111-2222-3333-4444-555555555555"
	store := blob.NewInMemoryStore()
	assert.NoError(t, store.Put(ctx, "capabilities/upper.go", []byte(upperUnit)))
	assert.NoError(t, store.Put(ctx, "capability-config/"+identity+"/enabled.json", []byte("not json")))

	loader := NewLoader(store, nil)
	registry, _ := loader.Load(ctx, identity)

	_, ok := registry.Lookup("upper")
	assert.True(t, ok)
}
