package demo

import "strings"

// triggerBonus is added to every remaining step's score when one of the
// script's trigger phrases appears as a substring of the user message.
const triggerBonus = 2

// continuationThreshold is the minimum relevance score required to advance.
const continuationThreshold = 2

// RelevanceScore counts the distinct whitespace-delimited tokens shared
// between the user message and a step's expected message, case folded.
func RelevanceScore(userMessage, expected string) int {
	have := map[string]bool{}
	for _, tok := range strings.Fields(strings.ToLower(userMessage)) {
		have[tok] = true
	}
	score := 0
	seen := map[string]bool{}
	for _, tok := range strings.Fields(strings.ToLower(expected)) {
		if have[tok] && !seen[tok] {
			score++
			seen[tok] = true
		}
	}
	return score
}

// ContinueFrom scores the user message against every step after the current
// position and returns the index of the highest-scoring step when its score
// meets the threshold. Ties resolve to the earliest step. ok is false when
// no remaining step scores high enough, letting the caller fall back to its
// default behavior for the turn; exhausted is true when no steps remain at all.
func ContinueFrom(script *Script, state State, userMessage string) (next int, ok bool, exhausted bool) {
	start := state.StepIndex + 1
	if start >= len(script.Steps) {
		return 0, false, true
	}

	bonus := 0
	lowerMsg := strings.ToLower(userMessage)
	for _, phrase := range script.TriggerPhrases {
		if p := normalizePhrase(phrase); p != "" && strings.Contains(lowerMsg, p) {
			bonus = triggerBonus
			break
		}
	}

	bestIdx, bestScore := -1, 0
	for i := start; i < len(script.Steps); i++ {
		score := RelevanceScore(userMessage, script.Steps[i].ExpectedUserMessage) + bonus
		if score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	if bestIdx < 0 || bestScore < continuationThreshold {
		return 0, false, false
	}
	return bestIdx, true, false
}
