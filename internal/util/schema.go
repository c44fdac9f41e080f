package util

import (
	"fmt"
	"reflect"
	"strings"
)

// ValidationError represents parameter validation errors with detailed information.
type ValidationError struct {
	Field   string `json:"field"`   // Field that failed validation
	Value   string `json:"value"`   // Value that was provided
	Message string `json:"message"` // Human-readable error message
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// CreateSchema creates a JSON schema from a Go struct using reflection.
// Capability arguments arrive as strings, so every property is declared as a
// string; a `description` tag becomes the property description and fields
// without `omitempty` are marked required.
func CreateSchema(structType any) map[string]any {
	t := reflect.TypeOf(structType)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}
	}

	properties := make(map[string]any)
	required := make([]string, 0)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		fieldName := field.Name
		if jsonTag != "" {
			parts := strings.Split(jsonTag, ",")
			if parts[0] != "" {
				fieldName = parts[0]
			}
		}

		fieldSchema := map[string]any{"type": "string"}
		if description := field.Tag.Get("description"); description != "" {
			fieldSchema["description"] = description
		}
		if enum := field.Tag.Get("enum"); enum != "" {
			vals := strings.Split(enum, "|")
			enumVals := make([]any, 0, len(vals))
			for _, v := range vals {
				enumVals = append(enumVals, strings.TrimSpace(v))
			}
			fieldSchema["enum"] = enumVals
		}

		properties[fieldName] = fieldSchema

		if !hasOmitEmpty(jsonTag) {
			required = append(required, fieldName)
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}

	if len(required) > 0 {
		schema["required"] = required
	}

	return schema
}

// ValidateParams validates string arguments against a JSON schema. Required
// fields must be present and non-empty; enum constrained fields must match
// one of the declared values. Extra fields are allowed.
func ValidateParams(args map[string]string, schema map[string]any) error {
	for _, fieldName := range requiredFields(schema) {
		if strings.TrimSpace(args[fieldName]) == "" {
			return &ValidationError{
				Field:   fieldName,
				Message: "required field is missing",
			}
		}
	}

	properties, _ := schema["properties"].(map[string]any)
	for fieldName, value := range args {
		propMap, ok := properties[fieldName].(map[string]any)
		if !ok {
			continue // Allow extra fields
		}
		enum, ok := propMap["enum"]
		if !ok {
			continue
		}
		if !enumContains(enum, value) {
			return &ValidationError{
				Field:   fieldName,
				Value:   value,
				Message: fmt.Sprintf("value %q not in enum", value),
			}
		}
	}

	return nil
}

// requiredFields extracts the required field names from either a []string or
// []any shaped schema entry (both occur after JSON round-trips).
func requiredFields(schema map[string]any) []string {
	switch req := schema["required"].(type) {
	case []string:
		return req
	case []any:
		fields := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				fields = append(fields, s)
			}
		}
		return fields
	default:
		return nil
	}
}

func enumContains(enum any, value string) bool {
	switch vals := enum.(type) {
	case []string:
		for _, v := range vals {
			if v == value {
				return true
			}
		}
	case []any:
		for _, v := range vals {
			if s, ok := v.(string); ok && s == value {
				return true
			}
		}
	}
	return false
}

// hasOmitEmpty checks if a JSON tag has the "omitempty" option.
func hasOmitEmpty(tag string) bool {
	parts := strings.Split(tag, ",")
	for _, part := range parts[1:] {
		if strings.TrimSpace(part) == "omitempty" {
			return true
		}
	}
	return false
}
