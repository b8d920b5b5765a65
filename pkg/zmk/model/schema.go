package model

import (
	"encoding/json"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"

	zmkerrors "github.com/sambeau/zmklayout/pkg/zmk/errors"
)

// JSONSchema returns the reflected JSON Schema of the dictionary form, for
// editors and external tooling.
func JSONSchema() ([]byte, error) {
	reflector := &jsonschema.Reflector{}
	schema := reflector.Reflect(&Document{})
	return json.MarshalIndent(schema, "", "  ")
}

// dictSchema is the shape check applied to incoming dictionaries before
// decoding. It is deliberately looser than the reflected schema: bindings
// may be strings or objects, and unknown keys are allowed.
const dictSchema = `{
  "type": "object",
  "required": ["keyboard", "title"],
  "properties": {
    "keyboard": {"type": "string", "minLength": 1},
    "title": {"type": "string"},
    "locale": {"type": "string"},
    "uuid": {"type": "string"},
    "parentUuid": {"type": "string"},
    "date": {"type": ["string", "integer"]},
    "creator": {"type": "string"},
    "notes": {"type": "string"},
    "tags": {"type": "array", "items": {"type": "string"}},
    "variables": {"type": "object"},
    "layerNames": {"type": "array", "items": {"type": "string"}},
    "layers": {
      "type": "array",
      "items": {
        "type": "array",
        "items": {"type": ["string", "object"]}
      }
    },
    "configParameters": {"type": "array", "items": {"type": "object"}},
    "holdTaps": {"type": "array", "items": {"type": "object", "required": ["name"]}},
    "combos": {"type": "array", "items": {"type": "object", "required": ["name"]}},
    "macros": {"type": "array", "items": {"type": "object", "required": ["name"]}},
    "tapDances": {"type": "array", "items": {"type": "object", "required": ["name"]}},
    "stickyKeys": {"type": "array", "items": {"type": "object", "required": ["name"]}},
    "capsWords": {"type": "array", "items": {"type": "object", "required": ["name"]}},
    "modMorphs": {"type": "array", "items": {"type": "object", "required": ["name"]}},
    "inputListeners": {"type": "array", "items": {"type": "object"}}
  }
}`

// ValidateDict checks an incoming dictionary against the shape schema.
// Keys are normalised first, so snake_case input validates the same as
// camelCase.
func ValidateDict(dict map[string]any) []*zmkerrors.LayoutError {
	normalized := NormalizeDict(dict)

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(dictSchema),
		gojsonschema.NewGoLoader(normalized),
	)
	if err != nil {
		return []*zmkerrors.LayoutError{
			zmkerrors.NewSimple(zmkerrors.ClassValidate, "schema validation failed: "+err.Error()),
		}
	}
	if result.Valid() {
		return nil
	}

	var errs []*zmkerrors.LayoutError
	for _, desc := range result.Errors() {
		msg := desc.String()
		msg = strings.TrimSpace(msg)
		errs = append(errs, zmkerrors.NewSimple(zmkerrors.ClassValidate, msg))
	}
	return errs
}
