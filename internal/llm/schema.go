package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// The pipeline speaks exactly two payload shapes, so both schemas are compiled
// once at package init instead of per call.
var (
	sentimentSchema   = mustCompileSchema("sentiment.json", BuildSentimentJSONSchema())
	actionItemsSchema = mustCompileSchema("action_items.json", BuildActionItemsJSONSchema())
)

func mustCompileSchema(name string, schemaMap map[string]any) *jsonschema.Schema {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		panic(fmt.Sprintf("marshal schema %s: %v", name, err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", name, err))
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("compile schema %s: %v", name, err))
	}
	return schema
}

// validatePayload checks a raw model payload against a compiled schema before
// any field of it is trusted.
func validatePayload(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("payload does not match schema: %w", err)
	}
	return nil
}

// BuildSentimentJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. The schema is deliberately permissive about missing keys —
// absent fields get defaults at decode time — but strict about field types,
// so a payload of the wrong shape is a hard failure.
func BuildSentimentJSONSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sentiment":       map[string]any{"type": "string"},
			"score":           map[string]any{"type": "number"},
			"key_topics":      stringListProp(),
			"risk_factors":    stringListProp(),
			"business_impact": map[string]any{"type": "string"},
		},
	}
}

// BuildActionItemsJSONSchema returns the schema for the action-item list shape.
func BuildActionItemsJSONSchema() map[string]any {
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"description":       map[string]any{"type": "string"},
				"priority":          nullableString(),
				"responsible_party": nullableString(),
				"due_date":          nullableString(),
				"status":            nullableString(),
				"dependencies":      stringListProp(),
				"risk_level":        nullableString(),
			},
		},
	}
}

func stringListProp() map[string]any {
	return map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}
}

func nullableString() map[string]any {
	return map[string]any{"type": []string{"string", "null"}}
}
