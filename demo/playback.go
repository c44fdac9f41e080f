package demo

import (
	"fmt"
	"strconv"

	"github.com/hupe1980/dispatchmesh/capability"
)

// PlaybackCapabilityName is the registry key of the scripted playback
// capability the orchestrator delegates trigger and continuation turns to.
const PlaybackCapabilityName = "demo_playback"

// NewPlaybackCapability builds the capability specialized in scripted
// playback. It renders a script step's response blocks verbatim; the
// orchestrator (or the oracle, for ad-hoc replays) supplies the script id
// and zero-based step index.
func NewPlaybackCapability(engine *Engine) capability.Capability {
	return capability.NewFunctionCapability(
		PlaybackCapabilityName,
		"Play back one step of a scripted demo scenario verbatim.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"script_id": map[string]any{
					"type":        "string",
					"description": "Identifier of the demo script",
				},
				"step": map[string]any{
					"type":        "string",
					"description": "Zero-based step index, defaults to 0",
				},
			},
			"required": []string{"script_id"},
		},
		func(invCtx *capability.Context, args map[string]string) (string, error) {
			script, err := engine.Script(invCtx.Context(), args["script_id"])
			if err != nil {
				return "", err
			}
			step := 0
			if args["step"] != "" {
				step, err = strconv.Atoi(args["step"])
				if err != nil {
					return "", capability.NewCapabilityError(PlaybackCapabilityName,
						fmt.Sprintf("invalid step index %q", args["step"]), "VALIDATION_ERROR")
				}
			}
			if step < 0 || step >= len(script.Steps) {
				return "", capability.NewCapabilityError(PlaybackCapabilityName,
					fmt.Sprintf("step %d out of range for script %s (%d steps)", step, script.ID, len(script.Steps)),
					"VALIDATION_ERROR")
			}
			return script.RenderStep(step), nil
		},
	)
}
