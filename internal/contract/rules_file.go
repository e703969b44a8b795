package contract

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	yaml "gopkg.in/yaml.v3"
)

//go:embed rules.schema.json
var rulesSchema []byte

const rulesSchemaURL = "rules.schema.json"

// LoadRules reads a YAML (or JSON) rules file. Fields the file omits keep
// their DefaultRules value. The document is checked against the embedded
// schema before it is applied.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes and validates a rules document.
func ParseRules(data []byte) (Rules, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Rules{}, fmt.Errorf("decode rules: %w", err)
	}
	if doc == nil {
		return DefaultRules(), nil
	}
	if err := validateRules(doc); err != nil {
		return Rules{}, err
	}

	rules := DefaultRules()
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("decode rules: %w", err)
	}
	if _, err := compileRules(rules); err != nil {
		return Rules{}, fmt.Errorf("compile rules: %w", err)
	}
	return rules, nil
}

// validateRules checks a decoded YAML document against the rules schema. The
// document is round-tripped through JSON so the validator only sees JSON
// types.
func validateRules(doc any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal rules: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("unmarshal rules: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(rulesSchemaURL, bytes.NewReader(rulesSchema)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(rulesSchemaURL)
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("rules do not match schema: %w", err)
	}
	return nil
}
