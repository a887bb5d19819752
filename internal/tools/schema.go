package tools

import (
	"fmt"
	"math"
	"strings"
)

// Input validation helpers. Tool inputs arrive as decoded JSON maps from
// the LLM, so every accessor both type-checks and range-checks, returning a
// *ValidationError before any remote call can happen.

func reqString(toolName string, input map[string]any, field string) (string, error) {
	value, ok := input[field].(string)
	if !ok || strings.TrimSpace(value) == "" {
		return "", &ValidationError{Tool: toolName, Field: field, Message: "a non-empty string is required"}
	}
	return value, nil
}

func optString(toolName string, input map[string]any, field string) (string, bool, error) {
	raw, present := input[field]
	if !present || raw == nil {
		return "", false, nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", false, &ValidationError{Tool: toolName, Field: field, Message: "must be a string"}
	}
	return value, true, nil
}

func reqEnum(toolName string, input map[string]any, field string, allowed ...string) (string, error) {
	value, err := reqString(toolName, input, field)
	if err != nil {
		return "", err
	}
	for _, candidate := range allowed {
		if value == candidate {
			return value, nil
		}
	}
	return "", &ValidationError{
		Tool:    toolName,
		Field:   field,
		Message: fmt.Sprintf("must be one of %s", strings.Join(allowed, ", ")),
	}
}

func optEnum(toolName string, input map[string]any, field string, allowed ...string) (string, bool, error) {
	value, present, err := optString(toolName, input, field)
	if err != nil || !present {
		return "", present, err
	}
	for _, candidate := range allowed {
		if value == candidate {
			return value, true, nil
		}
	}
	return "", false, &ValidationError{
		Tool:    toolName,
		Field:   field,
		Message: fmt.Sprintf("must be one of %s", strings.Join(allowed, ", ")),
	}
}

func numberValue(raw any) (float64, bool) {
	switch typed := raw.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	}
	return 0, false
}

func reqNumber(toolName string, input map[string]any, field string, min, max float64) (float64, error) {
	value, ok := numberValue(input[field])
	if !ok {
		return 0, &ValidationError{Tool: toolName, Field: field, Message: "a number is required"}
	}
	if value < min || value > max {
		return 0, &ValidationError{
			Tool:    toolName,
			Field:   field,
			Message: fmt.Sprintf("must be between %v and %v", min, max),
		}
	}
	return value, nil
}

func optNumber(toolName string, input map[string]any, field string, min, max float64) (float64, bool, error) {
	raw, present := input[field]
	if !present || raw == nil {
		return 0, false, nil
	}
	value, ok := numberValue(raw)
	if !ok {
		return 0, false, &ValidationError{Tool: toolName, Field: field, Message: "must be a number"}
	}
	if value < min || value > max {
		return 0, false, &ValidationError{
			Tool:    toolName,
			Field:   field,
			Message: fmt.Sprintf("must be between %v and %v", min, max),
		}
	}
	return value, true, nil
}

func reqInt(toolName string, input map[string]any, field string, min, max int) (int, error) {
	value, err := reqNumber(toolName, input, field, float64(min), float64(max))
	if err != nil {
		return 0, err
	}
	if value != math.Trunc(value) {
		return 0, &ValidationError{Tool: toolName, Field: field, Message: "must be an integer"}
	}
	return int(value), nil
}

func reqDiscreteNumber(toolName string, input map[string]any, field string, allowed ...float64) (float64, error) {
	value, ok := numberValue(input[field])
	if !ok {
		return 0, &ValidationError{Tool: toolName, Field: field, Message: "a number is required"}
	}
	for _, candidate := range allowed {
		if value == candidate {
			return value, nil
		}
	}
	labels := make([]string, 0, len(allowed))
	for _, candidate := range allowed {
		labels = append(labels, fmt.Sprintf("%v", candidate))
	}
	return 0, &ValidationError{
		Tool:    toolName,
		Field:   field,
		Message: fmt.Sprintf("must be exactly one of %s", strings.Join(labels, ", ")),
	}
}

func reqBool(toolName string, input map[string]any, field string) (bool, error) {
	value, ok := input[field].(bool)
	if !ok {
		return false, &ValidationError{Tool: toolName, Field: field, Message: "a boolean is required"}
	}
	return value, nil
}

func optBool(toolName string, input map[string]any, field string) (bool, bool, error) {
	raw, present := input[field]
	if !present || raw == nil {
		return false, false, nil
	}
	value, ok := raw.(bool)
	if !ok {
		return false, false, &ValidationError{Tool: toolName, Field: field, Message: "must be a boolean"}
	}
	return value, true, nil
}

func reqStringList(toolName string, input map[string]any, field string, minLen int) ([]string, error) {
	raw, ok := input[field].([]any)
	if !ok {
		return nil, &ValidationError{Tool: toolName, Field: field, Message: "an array of strings is required"}
	}
	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		value, ok := entry.(string)
		if !ok || strings.TrimSpace(value) == "" {
			return nil, &ValidationError{Tool: toolName, Field: field, Message: "entries must be non-empty strings"}
		}
		out = append(out, value)
	}
	if len(out) < minLen {
		return nil, &ValidationError{
			Tool:    toolName,
			Field:   field,
			Message: fmt.Sprintf("at least %d entries are required", minLen),
		}
	}
	return out, nil
}

// JSON schema construction helpers for Spec.InputSchema.

func schemaObject(required []string, properties map[string]any) map[string]any {
	schema := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func schemaString(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func schemaStringEnum(description string, values ...string) map[string]any {
	enum := make([]any, 0, len(values))
	for _, value := range values {
		enum = append(enum, value)
	}
	return map[string]any{"type": "string", "enum": enum, "description": description}
}

func schemaNumber(description string, min, max float64) map[string]any {
	return map[string]any{"type": "number", "minimum": min, "maximum": max, "description": description}
}

func schemaNumberMin(description string, min float64) map[string]any {
	return map[string]any{"type": "number", "minimum": min, "description": description}
}

func schemaNumberEnum(description string, values ...float64) map[string]any {
	enum := make([]any, 0, len(values))
	for _, value := range values {
		enum = append(enum, value)
	}
	return map[string]any{"type": "number", "enum": enum, "description": description}
}

func schemaInteger(description string, min, max int) map[string]any {
	return map[string]any{"type": "integer", "minimum": min, "maximum": max, "description": description}
}

func schemaBool(description string) map[string]any {
	return map[string]any{"type": "boolean", "description": description}
}

func schemaStringArray(description string, minItems int) map[string]any {
	schema := map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": description,
	}
	if minItems > 0 {
		schema["minItems"] = minItems
	}
	return schema
}
