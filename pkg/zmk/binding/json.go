package binding

import (
	"encoding/json"
	"strconv"
)

// The dictionary form stores bindings as {"value": "&kp", "params": [...]}
// objects, with parameter values appearing as either strings or integers.
// A bare binding string ("&kp A") is also accepted on input.

type jsonParam struct {
	Value  json.RawMessage `json:"value"`
	Params []Param         `json:"params,omitempty"`
}

type jsonBinding struct {
	Value  string  `json:"value"`
	Params []Param `json:"params,omitempty"`
}

// UnmarshalJSON accepts an object form or a plain binding string.
func (b *Binding) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := Parse(s)
		if err != nil {
			return err
		}
		*b = parsed
		return nil
	}

	var raw jsonBinding
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.Value = raw.Value
	b.Params = raw.Params
	return nil
}

// UnmarshalJSON accepts an object form, a plain string, or a bare number.
func (p *Param) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] != '{' {
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		p.Value = scalarString(v)
		p.Params = nil
		return nil
	}

	var raw jsonParam
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(raw.Value, &v); err != nil {
		return err
	}
	p.Value = scalarString(v)
	p.Params = raw.Params
	return nil
}

// MarshalJSON emits numeric parameter values as JSON numbers, everything
// else as strings, matching the established dictionary form.
func (p Param) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if n, err := strconv.ParseInt(p.Value, 10, 64); err == nil {
		out["value"] = n
	} else {
		out["value"] = p.Value
	}
	if len(p.Params) > 0 {
		out["params"] = p.Params
	}
	return json.Marshal(out)
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatInt(int64(t), 10)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case nil:
		return ""
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}
