package demo

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"
)

// Step is one scripted exchange: the message the presenter is expected to
// say, and the response blocks played back verbatim when it matches.
type Step struct {
	Description         string   `json:"description"`
	ExpectedUserMessage string   `json:"expectedUserMessage"`
	ResponseBlocks      []string `json:"responseBlocks"`
}

// Script is a pre-scripted deterministic scenario loaded read-only from
// demos/*.json. The core never mutates scripts.
type Script struct {
	ID             string   `json:"id"`
	TriggerPhrases []string `json:"triggerPhrases"`
	Steps          []Step   `json:"steps"`
}

// ParseScript decodes a script blob. When the document carries no id the
// store filename (without extension) becomes the script id.
func ParseScript(blobPath string, data []byte) (*Script, error) {
	var s Script
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script %s: %w", blobPath, err)
	}
	if s.ID == "" {
		s.ID = strings.TrimSuffix(path.Base(blobPath), path.Ext(blobPath))
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("script %s has no steps", s.ID)
	}
	return &s, nil
}

// RenderStep joins the response blocks of step i for playback.
func (s *Script) RenderStep(i int) string {
	if i < 0 || i >= len(s.Steps) {
		return ""
	}
	return strings.Join(s.Steps[i].ResponseBlocks, "\n\n")
}

// MatchesTrigger reports whether msg equals one of the script's trigger
// phrases after trimming surrounding whitespace and folding case. Trigger
// matching is exact; fuzzy scoring is reserved for in-script step
// continuation.
func (s *Script) MatchesTrigger(msg string) bool {
	normalized := normalizePhrase(msg)
	for _, phrase := range s.TriggerPhrases {
		if normalizePhrase(phrase) == normalized {
			return true
		}
	}
	return false
}

func normalizePhrase(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
