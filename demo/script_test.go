package demo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/dispatchmesh/blob"
)

const pipelineScript = `{
  "id": "pipeline-review",
  "triggerPhrases": ["show me priorities", "show me the pipeline"],
  "steps": [
    {
      "description": "Open pipeline overview",
      "expectedUserMessage": "what does the open pipeline look like",
      "responseBlocks": ["## Pipeline", "| Account | Stage |"]
    },
    {
      "description": "Risk deep dive",
      "expectedUserMessage": "which deal is the biggest risk",
      "responseBlocks": ["Initech is the biggest risk."]
    }
  ]
}`

func TestParseScript_IDDefaultsToFilename(t *testing.T) {
	s, err := ParseScript("demos/quarterly.json", []byte(`{"steps":[{"responseBlocks":["hi"]}]}`))
	assert.NoError(t, err)
	assert.Equal(t, "quarterly", s.ID)
}

func TestParseScript_RejectsEmptySteps(t *testing.T) {
	_, err := ParseScript("demos/empty.json", []byte(`{"id":"empty"}`))
	assert.Error(t, err)
}

func TestRenderStep_JoinsBlocks(t *testing.T) {
	s, err := ParseScript("demos/p.json", []byte(pipelineScript))
	assert.NoError(t, err)
	assert.Equal(t, "## Pipeline\n\n| Account | Stage |", s.RenderStep(0))
	assert.Equal(t, "", s.RenderStep(5))
}

func TestMatchesTrigger_ExactCaseInsensitive(t *testing.T) {
	s, err := ParseScript("demos/p.json", []byte(pipelineScript))
	assert.NoError(t, err)

	assert.True(t, s.MatchesTrigger("show me priorities"))
	assert.True(t, s.MatchesTrigger("  Show Me Priorities  "))
	// near-misses never trigger
	assert.False(t, s.MatchesTrigger("show me my priorities"))
	assert.False(t, s.MatchesTrigger("please show me priorities"))
}

func TestEngine_ScriptsSkipsMalformed(t *testing.T) {
	ctx := context.Background()
	store := blob.NewInMemoryStore()
	assert.NoError(t, store.Put(ctx, "demos/good.json", []byte(pipelineScript)))
	assert.NoError(t, store.Put(ctx, "demos/bad.json", []byte("{broken")))
	assert.NoError(t, store.Put(ctx, "demos/readme.txt", []byte("not a script")))

	engine := NewEngine(store, nil)
	scripts := engine.Scripts(ctx)

	assert.Len(t, scripts, 1)
	assert.Equal(t, "pipeline-review", scripts[0].ID)
}

func TestEngine_MatchTrigger(t *testing.T) {
	ctx := context.Background()
	store := blob.NewInMemoryStore()
	assert.NoError(t, store.Put(ctx, "demos/pipeline-review.json", []byte(pipelineScript)))

	engine := NewEngine(store, nil)
	assert.NotNil(t, engine.MatchTrigger(ctx, "show me the pipeline"))
	assert.Nil(t, engine.MatchTrigger(ctx, "how are you"))
}

func TestEngine_ScriptLookup(t *testing.T) {
	ctx := context.Background()
	store := blob.NewInMemoryStore()
	assert.NoError(t, store.Put(ctx, "demos/pipeline-review.json", []byte(pipelineScript)))

	engine := NewEngine(store, nil)
	s, err := engine.Script(ctx, "pipeline-review")
	assert.NoError(t, err)
	assert.Len(t, s.Steps, 2)

	_, err = engine.Script(ctx, "missing")
	assert.Error(t, err)
}
