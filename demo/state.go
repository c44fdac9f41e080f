package demo

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hupe1980/dispatchmesh/core"
)

// AnnotationMarker prefixes every typed demo annotation embedded in a
// system-role history entry. The payload after the marker is a JSON encoded
// Annotation, so state recovery is a typed decode rather than free-text
// pattern matching.
const AnnotationMarker = "[[demo-state]]"

// Annotation kinds. Exactly one kind, scanning history most-recent-first,
// determines the derived state.
const (
	KindActivated = "activated"
	KindStep      = "step"
	KindCompleted = "completed"
	KindExited    = "exited"
)

// Annotation is the typed orchestration record appended to history alongside
// scripted responses. StepIndex is zero-based.
type Annotation struct {
	Kind       string `json:"kind"`
	ScriptID   string `json:"scriptId,omitempty"`
	StepIndex  int    `json:"stepIndex,omitempty"`
	TotalSteps int    `json:"totalSteps,omitempty"`
}

// Message renders the annotation as the system-role history entry callers
// append to the conversation log.
func (a Annotation) Message() core.Message {
	payload, _ := json.Marshal(a)
	return core.NewSystemMessage(AnnotationMarker + " " + string(payload))
}

// ParseAnnotation decodes a typed annotation from a system entry's content.
// Content without the marker, with an undecodable payload, or with step data
// outside the script range is not an annotation. Range checking here keeps
// forged positions out of the derived state entirely.
func ParseAnnotation(content string) (Annotation, bool) {
	idx := strings.Index(content, AnnotationMarker)
	if idx < 0 {
		return Annotation{}, false
	}
	payload := strings.TrimSpace(content[idx+len(AnnotationMarker):])
	var a Annotation
	if err := json.Unmarshal([]byte(payload), &a); err != nil {
		return Annotation{}, false
	}
	switch a.Kind {
	case KindActivated, KindStep, KindCompleted, KindExited:
	default:
		return Annotation{}, false
	}
	if a.StepIndex < 0 || a.TotalSteps < 0 {
		return Annotation{}, false
	}
	if a.Kind == KindStep && a.TotalSteps > 0 && a.StepIndex >= a.TotalSteps {
		return Annotation{}, false
	}
	return a, true
}

// State is the derived replay position. It is never persisted: it is a pure
// function of the conversation history, so two identical histories always
// yield identical state.
type State struct {
	Active     bool
	ScriptID   string
	StepIndex  int
	TotalSteps int
}

// String implements fmt.Stringer for log output.
func (s State) String() string {
	if !s.Active {
		return "inactive"
	}
	return fmt.Sprintf("%s step %d of %d", s.ScriptID, s.StepIndex+1, s.TotalSteps)
}

// DetermineState scans history from most recent to oldest, inspecting only
// system-role entries. The first recognized annotation is authoritative:
// completion and exit yield inactive, a step record yields that exact
// position, activation yields step zero. Absence of any annotation means
// inactive.
func DetermineState(history []core.Message) State {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != core.RoleSystem {
			continue
		}
		a, ok := ParseAnnotation(history[i].Content)
		if !ok {
			continue
		}
		switch a.Kind {
		case KindCompleted, KindExited:
			return State{}
		case KindStep:
			return State{Active: true, ScriptID: a.ScriptID, StepIndex: a.StepIndex, TotalSteps: a.TotalSteps}
		case KindActivated:
			return State{Active: true, ScriptID: a.ScriptID, StepIndex: 0, TotalSteps: a.TotalSteps}
		}
	}
	return State{}
}
