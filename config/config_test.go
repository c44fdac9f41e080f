package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/dispatchmesh/logging"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, logging.LogLevelInfo, cfg.Level())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DISPATCHMESH_PROVIDER", "anthropic")
	t.Setenv("DISPATCHMESH_MODEL", "claude-sonnet-4-20250514")
	t.Setenv("DISPATCHMESH_MAX_RETRIES", "5")
	t.Setenv("DISPATCHMESH_LOG_LEVEL", "debug")
	t.Setenv("DISPATCHMESH_LOG_FORMAT", "text")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, logging.LogLevelDebug, cfg.Level())
}

func TestLoad_RejectsUnknownProvider(t *testing.T) {
	t.Setenv("DISPATCHMESH_PROVIDER", "carrier-pigeon")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsNonPositiveRetries(t *testing.T) {
	t.Setenv("DISPATCHMESH_MAX_RETRIES", "0")

	_, err := Load()
	assert.Error(t, err)
}
