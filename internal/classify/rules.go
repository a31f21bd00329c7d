package classify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// rulesSchema constrains user-supplied rule tables: a non-empty array of
// {type, keywords[]} objects with at least MatchThreshold keywords each.
func rulesSchema() map[string]any {
	return map[string]any{
		"type":     "array",
		"minItems": 1,
		"items": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"type": map[string]any{"type": "string", "minLength": 1},
				"keywords": map[string]any{
					"type":     "array",
					"minItems": MatchThreshold,
					"items":    map[string]any{"type": "string", "minLength": 1},
				},
			},
			"required": []string{"type", "keywords"},
		},
	}
}

// LoadRules reads a JSON rule table from path and validates it against the
// embedded schema before use. Table order is priority order.
func LoadRules(path string) ([]TypeRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	if err := validateJSONAgainstSchema(rulesSchema(), data); err != nil {
		return nil, err
	}
	var rules []TypeRule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	return rules, nil
}

// validateJSONAgainstSchema validates "data" against "schemaMap".
func validateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("rules do not match schema: %w", err)
	}
	return nil
}
