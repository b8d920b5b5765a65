package model

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

// The dictionary form is the canonical external format. Output uses
// camelCase keys; snake_case keys are accepted everywhere on input and
// normalised before decoding.

// FromDict decodes a dictionary into a Document. Keys may be camelCase or
// snake_case at any nesting level. The date field, when present, is
// re-rendered as RFC 3339.
func FromDict(dict map[string]any) (*Document, error) {
	normalized := NormalizeDict(dict)
	data, err := json.Marshal(normalized)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	doc.NormalizeDate()
	return &doc, nil
}

// ToDict encodes the document as a dictionary with camelCase keys.
// Null-valued and empty optional fields are dropped.
func (d *Document) ToDict() (map[string]any, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var dict map[string]any
	if err := json.Unmarshal(data, &dict); err != nil {
		return nil, err
	}
	return dict, nil
}

// FromJSON decodes a JSON document, accepting both key spellings.
func FromJSON(data []byte) (*Document, error) {
	var dict map[string]any
	if err := json.Unmarshal(data, &dict); err != nil {
		return nil, err
	}
	return FromDict(dict)
}

// ToJSON encodes the document as indented JSON with camelCase keys.
func (d *Document) ToJSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// FromYAML decodes a YAML document, accepting both key spellings.
func FromYAML(data []byte) (*Document, error) {
	var dict map[string]any
	if err := yaml.Unmarshal(data, &dict); err != nil {
		return nil, err
	}
	return FromDict(dict)
}

// ToYAML encodes the document as YAML with camelCase keys.
func (d *Document) ToYAML() ([]byte, error) {
	dict, err := d.ToDict()
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(dict)
}

// NormalizeDict returns a copy of the dictionary with every snake_case key
// rewritten to camelCase, recursively, and null values dropped.
func NormalizeDict(dict map[string]any) map[string]any {
	out := make(map[string]any, len(dict))
	for k, v := range dict {
		if v == nil {
			continue
		}
		out[snakeToCamel(k)] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return NormalizeDict(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	default:
		return v
	}
}

// snakeToCamel converts keys like "hold_taps" to "holdTaps". Keys without
// underscores pass through unchanged.
func snakeToCamel(key string) string {
	if !strings.Contains(key, "_") {
		return key
	}
	parts := strings.Split(key, "_")
	var sb strings.Builder
	sb.WriteString(parts[0])
	for _, part := range parts[1:] {
		if part == "" {
			continue
		}
		sb.WriteString(strings.ToUpper(part[:1]))
		sb.WriteString(part[1:])
	}
	return sb.String()
}
