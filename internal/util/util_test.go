package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// -------------------- Schema Tests --------------------

type sampleArgs struct {
	Account string `json:"account" description:"Account name"`
	Region  string `json:"region,omitempty" description:"Optional region" enum:"eu|us"`
	hidden  string
}

func TestCreateSchema(t *testing.T) {
	schema := CreateSchema(sampleArgs{})

	props, ok := schema["properties"].(map[string]any)
	assert.True(t, ok)
	assert.Contains(t, props, "account")
	assert.Contains(t, props, "region")
	assert.NotContains(t, props, "hidden")

	account := props["account"].(map[string]any)
	assert.Equal(t, "string", account["type"])
	assert.Equal(t, "Account name", account["description"])

	region := props["region"].(map[string]any)
	assert.Equal(t, []any{"eu", "us"}, region["enum"])

	// omitempty fields are optional
	assert.Equal(t, []string{"account"}, schema["required"])
}

func TestValidateParams_Required(t *testing.T) {
	schema := CreateSchema(sampleArgs{})

	assert.NoError(t, ValidateParams(map[string]string{"account": "acme"}, schema))

	err := ValidateParams(map[string]string{"account": "  "}, schema)
	assert.Error(t, err)
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Equal(t, "account", vErr.Field)
}

func TestValidateParams_Enum(t *testing.T) {
	schema := CreateSchema(sampleArgs{})

	assert.NoError(t, ValidateParams(map[string]string{"account": "acme", "region": "eu"}, schema))
	assert.Error(t, ValidateParams(map[string]string{"account": "acme", "region": "mars"}, schema))
}

func TestValidateParams_RequiredAsAnySlice(t *testing.T) {
	// schemas decoded from JSON carry []any
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{"x": map[string]any{"type": "string"}},
		"required":   []any{"x"},
	}

	assert.Error(t, ValidateParams(map[string]string{}, schema))
	assert.NoError(t, ValidateParams(map[string]string{"x": "v"}, schema))
}

func TestValidateParams_ExtraFieldsAllowed(t *testing.T) {
	schema := CreateSchema(sampleArgs{})
	assert.NoError(t, ValidateParams(map[string]string{"account": "acme", "unknown": "ok"}, schema))
}

// -------------------- Template Tests --------------------

func TestRenderTemplate(t *testing.T) {
	out, err := RenderTemplate("Hello {{.Name}}, {{upper .Mood}}!", map[string]any{
		"Name": "Ada",
		"Mood": "great",
	})
	assert.NoError(t, err)
	assert.Equal(t, "Hello Ada, GREAT!", out)
}

func TestRenderTemplate_Invalid(t *testing.T) {
	_, err := RenderTemplate("{{.Broken", nil)
	assert.Error(t, err)
}
