package capability

import (
	"fmt"
	"time"
)

// Builtins returns the fixed local capability bundle registered before any
// remote unit. Deployments extend or replace the bundle through
// LoaderOptions.LocalBundle; remote units with matching names override these
// by load order.
func Builtins() []Capability {
	return []Capability{
		newEchoCapability(),
		newCurrentTimeCapability(),
		newRememberCapability(),
	}
}

func newEchoCapability() Capability {
	return NewFunctionCapability(
		"echo",
		"Echo the supplied text back to the conversation. Useful for confirmations and connectivity checks.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{
					"type":        "string",
					"description": "Text to echo back verbatim",
				},
			},
			"required": []string{"text"},
		},
		func(_ *Context, args map[string]string) (string, error) {
			return args["text"], nil
		},
	)
}

func newCurrentTimeCapability() Capability {
	return NewFunctionCapability(
		"current_time",
		"Report the current date and time in UTC.",
		map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		func(_ *Context, _ map[string]string) (string, error) {
			return time.Now().UTC().Format("Monday, 2 January 2006 15:04 MST"), nil
		},
	)
}

// newRememberCapability persists a note into the identity-scoped memory
// partition. The store is eventually consistent; racing writers to the same
// key resolve last-write-wins.
func newRememberCapability() Capability {
	return NewFunctionCapability(
		"remember",
		"Store a note in the user's long-term memory so future conversations can recall it.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"key": map[string]any{
					"type":        "string",
					"description": "Short slug identifying the note, e.g. 'preferred-greeting'",
				},
				"content": map[string]any{
					"type":        "string",
					"description": "The note to remember",
				},
			},
			"required": []string{"key", "content"},
		},
		func(invCtx *Context, args map[string]string) (string, error) {
			if err := invCtx.WriteScopedMemory(args["key"], args["content"]); err != nil {
				return "", fmt.Errorf("persist memory note: %w", err)
			}
			return fmt.Sprintf("Noted. I'll remember %q.", args["key"]), nil
		},
	)
}
