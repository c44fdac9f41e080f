// Package config loads engine configuration from the environment. It only
// covers deployment wiring (provider selection, store location, retry budget);
// everything request-scoped arrives through core.Request.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/hupe1980/dispatchmesh/logging"
)

// Config is the environment-backed deployment configuration.
type Config struct {
	// Provider selects the oracle backend: "openai", "anthropic" or "mock".
	Provider string `env:"DISPATCHMESH_PROVIDER" envDefault:"openai"`
	// Model is the provider model identifier passed to the oracle adapter.
	Model string `env:"DISPATCHMESH_MODEL"`
	// StoreRoot is the filesystem store directory. Empty selects the
	// in-memory store.
	StoreRoot string `env:"DISPATCHMESH_STORE_ROOT"`
	// MaxRetries bounds oracle retries and dispatch rounds per request.
	MaxRetries int `env:"DISPATCHMESH_MAX_RETRIES" envDefault:"3"`
	// FallbackIdentity scopes requests without an identity token. Empty
	// selects the well-known zero identity.
	FallbackIdentity string `env:"DISPATCHMESH_FALLBACK_IDENTITY"`
	// AssistantName is the persona presented in system instructions.
	AssistantName string `env:"DISPATCHMESH_ASSISTANT_NAME" envDefault:"DispatchMesh"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"DISPATCHMESH_LOG_LEVEL" envDefault:"info"`
	// LogFormat is json or text.
	LogFormat string `env:"DISPATCHMESH_LOG_FORMAT" envDefault:"json"`
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enum-like fields.
func (c *Config) Validate() error {
	switch c.Provider {
	case "openai", "anthropic", "mock":
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("max retries must be positive, got %d", c.MaxRetries)
	}
	return nil
}

// Level maps the configured level string onto the logging enum.
func (c *Config) Level() logging.LogLevel {
	switch c.LogLevel {
	case "debug":
		return logging.LogLevelDebug
	case "warn":
		return logging.LogLevelWarn
	case "error":
		return logging.LogLevelError
	default:
		return logging.LogLevelInfo
	}
}
