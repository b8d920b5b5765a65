package binding

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestParseSimple(t *testing.T) {
	tests := []struct {
		input    string
		value    string
		params   []string
		expected string
	}{
		{"&kp A", "&kp", []string{"A"}, "&kp A"},
		{"&mt LCTRL ESC", "&mt", []string{"LCTRL", "ESC"}, "&mt LCTRL ESC"},
		{"&trans", "&trans", nil, "&trans"},
		{"&mo 1", "&mo", []string{"1"}, "&mo 1"},
		{"  &kp   SPACE  ", "&kp", []string{"SPACE"}, "&kp SPACE"},
	}

	for _, tt := range tests {
		b, err := Parse(tt.input)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tt.input, err)
		}
		if b.Value != tt.value {
			t.Errorf("Parse(%q) value wrong. expected=%q, got=%q", tt.input, tt.value, b.Value)
		}
		if len(b.Params) != len(tt.params) {
			t.Fatalf("Parse(%q) param count wrong. expected=%d, got=%d", tt.input, len(tt.params), len(b.Params))
		}
		for i, p := range tt.params {
			if b.Params[i].Value != p {
				t.Errorf("Parse(%q) param %d wrong. expected=%q, got=%q", tt.input, i, p, b.Params[i].Value)
			}
		}
		if b.String() != tt.expected {
			t.Errorf("format wrong. expected=%q, got=%q", tt.expected, b.String())
		}
	}
}

func TestParseNestedParams(t *testing.T) {
	b, err := Parse("&kp LC(LA(DEL))")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := Binding{
		Value: "&kp",
		Params: []Param{{
			Value: "LC",
			Params: []Param{{
				Value: "LA",
				Params: []Param{{
					Value: "DEL",
				}},
			}},
		}},
	}
	if !reflect.DeepEqual(b, expected) {
		t.Errorf("nested parse wrong: %#v", b)
	}

	if b.String() != "&kp LC(LA(DEL))" {
		t.Errorf("nested format wrong. expected=%q, got=%q", "&kp LC(LA(DEL))", b.String())
	}
}

func TestParseMultipleCallArgs(t *testing.T) {
	b, err := Parse("&macro_fn LC(A, B) X")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b.Params) != 2 {
		t.Fatalf("expected 2 top-level params, got %d", len(b.Params))
	}
	if len(b.Params[0].Params) != 2 {
		t.Fatalf("expected 2 call args, got %d", len(b.Params[0].Params))
	}
	if b.String() != "&macro_fn LC(A B) X" {
		t.Errorf("canonical form wrong: %q", b.String())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"",
		"kp A",
		"&",
		"&kp LC(A",
		"&kp )",
	}

	for _, input := range tests {
		if _, err := Parse(input); err == nil {
			t.Errorf("Parse(%q) should fail", input)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"&kp A",
		"&mt LCTRL ESC",
		"&kp LC(LS(TAB))",
		"&trans",
		"&lt 2 SPACE",
	}

	for _, input := range inputs {
		b, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", input, err)
		}
		b2, err := Parse(b.String())
		if err != nil {
			t.Fatalf("reparse of %q failed: %v", b.String(), err)
		}
		if !reflect.DeepEqual(b, b2) {
			t.Errorf("round trip changed %q: %#v vs %#v", input, b, b2)
		}
	}
}

func TestJSONObjectForm(t *testing.T) {
	data := []byte(`{"value": "&mo", "params": [{"value": 1}]}`)

	var b Binding
	if err := json.Unmarshal(data, &b); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if b.Value != "&mo" || len(b.Params) != 1 || b.Params[0].Value != "1" {
		t.Fatalf("object form decoded wrong: %#v", b)
	}

	out, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var roundTripped Binding
	if err := json.Unmarshal(out, &roundTripped); err != nil {
		t.Fatalf("round trip unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(b, roundTripped) {
		t.Errorf("json round trip changed binding: %#v vs %#v", b, roundTripped)
	}
}

func TestJSONStringForm(t *testing.T) {
	var b Binding
	if err := json.Unmarshal([]byte(`"&kp LC(A)"`), &b); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if b.Value != "&kp" || len(b.Params) != 1 || b.Params[0].Value != "LC" {
		t.Fatalf("string form decoded wrong: %#v", b)
	}
}

func TestBehavior(t *testing.T) {
	if MustParse("&kp A").Behavior() != "kp" {
		t.Error("Behavior() should strip the ampersand")
	}
	if !Transparent().IsTransparent() {
		t.Error("Transparent() should be transparent")
	}
	if MustParse("&kp A").IsTransparent() {
		t.Error("&kp A is not transparent")
	}
}
