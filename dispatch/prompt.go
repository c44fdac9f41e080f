package dispatch

import (
	"strings"

	"github.com/hupe1980/dispatchmesh/core"
	"github.com/hupe1980/dispatchmesh/demo"
	"github.com/hupe1980/dispatchmesh/internal/util"
	"github.com/hupe1980/dispatchmesh/memory"
)

// instructionTemplate is the base system prompt. The memory section carries
// its own precedence contract (scoped overrides shared on conflict).
const instructionTemplate = `You are {{.Name}}, a conversational assistant that can call capabilities to answer the user.

Answer directly when no capability is needed. Invoke at most one capability per turn.

Always end your reply with the literal token {{.Delimiter}} followed by a single short spoken sentence summarizing the answer for a voice surface.

{{.MemorySection}}`

// buildInstructions renders the system instructions for the live dispatch
// loop, splicing in the resolved memory context.
func buildInstructions(assistantName string, memCtx memory.Context) string {
	out, err := util.RenderTemplate(instructionTemplate, map[string]any{
		"Name":          assistantName,
		"Delimiter":     SpokenDelimiter,
		"MemorySection": memCtx.PromptSection(),
	})
	if err != nil {
		// degrade to bare instructions rather than failing the request
		return "You are " + assistantName + ", a conversational assistant. Always end your reply with " +
			SpokenDelimiter + " followed by a short spoken sentence."
	}
	return strings.TrimSpace(out)
}

// promptHistory filters the caller-supplied history for the oracle: typed
// demo annotations are orchestration records, not conversation, and are
// dropped; everything else passes through in order.
func promptHistory(history []core.Message) []core.Message {
	out := make([]core.Message, 0, len(history))
	for _, m := range history {
		if m.Role == core.RoleSystem {
			if _, ok := demo.ParseAnnotation(m.Content); ok {
				continue
			}
		}
		out = append(out, m)
	}
	return out
}
