package demo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fiveStepScript() *Script {
	return &Script{
		ID:             "quarterly",
		TriggerPhrases: []string{"run the quarterly demo"},
		Steps: []Step{
			{ExpectedUserMessage: "kick off the quarterly review", ResponseBlocks: []string{"s0"}},
			{ExpectedUserMessage: "what does the open pipeline look like", ResponseBlocks: []string{"s1"}},
			{ExpectedUserMessage: "which deal is the biggest risk", ResponseBlocks: []string{"s2"}},
			{ExpectedUserMessage: "show the forecast for next quarter", ResponseBlocks: []string{"s3"}},
			{ExpectedUserMessage: "summarize the action items", ResponseBlocks: []string{"s4"}},
		},
	}
}

func TestRelevanceScore_DistinctSharedTokens(t *testing.T) {
	assert.Equal(t, 0, RelevanceScore("hello there", "completely different"))
	assert.Equal(t, 3, RelevanceScore("the biggest deal", "which deal is the biggest risk"))
	// repeated tokens count once
	assert.Equal(t, 1, RelevanceScore("risk risk risk", "which deal is the biggest risk"))
}

func TestContinueFrom_AdvancesToBestMatch(t *testing.T) {
	script := fiveStepScript()
	state := State{Active: true, ScriptID: "quarterly", StepIndex: 1, TotalSteps: 5}

	next, ok, exhausted := ContinueFrom(script, state, "so which deal is the biggest risk right now?")
	assert.True(t, ok)
	assert.False(t, exhausted)
	assert.Equal(t, 2, next)
}

func TestContinueFrom_SkipsAheadWhenLaterStepMatches(t *testing.T) {
	script := fiveStepScript()
	state := State{Active: true, ScriptID: "quarterly", StepIndex: 1, TotalSteps: 5}

	next, ok, _ := ContinueFrom(script, state, "summarize the action items for me")
	assert.True(t, ok)
	assert.Equal(t, 4, next)
}

func TestContinueFrom_NeverRevisitsEarlierSteps(t *testing.T) {
	script := fiveStepScript()
	state := State{Active: true, ScriptID: "quarterly", StepIndex: 2, TotalSteps: 5}

	// matches step 1 exactly, but replay only moves forward
	next, ok, exhausted := ContinueFrom(script, state, "what does the open pipeline look like")
	assert.False(t, exhausted)
	if ok {
		assert.Greater(t, next, 2)
	}
}

func TestContinueFrom_BelowThresholdNoMatch(t *testing.T) {
	script := fiveStepScript()
	state := State{Active: true, ScriptID: "quarterly", StepIndex: 0, TotalSteps: 5}

	_, ok, exhausted := ContinueFrom(script, state, "hello?")
	assert.False(t, ok)
	assert.False(t, exhausted)
}

func TestContinueFrom_TriggerPhraseBoostsScore(t *testing.T) {
	script := fiveStepScript()
	state := State{Active: true, ScriptID: "quarterly", StepIndex: 2, TotalSteps: 5}

	// the embedded trigger phrase adds its bonus on top of the token overlap
	next, ok, _ := ContinueFrom(script, state, "run the quarterly demo forecast")
	assert.True(t, ok)
	assert.Equal(t, 3, next)
}

func TestContinueFrom_ExhaustedAfterLastStep(t *testing.T) {
	script := fiveStepScript()
	state := State{Active: true, ScriptID: "quarterly", StepIndex: 4, TotalSteps: 5}

	_, ok, exhausted := ContinueFrom(script, state, "anything else?")
	assert.False(t, ok)
	assert.True(t, exhausted)
}
