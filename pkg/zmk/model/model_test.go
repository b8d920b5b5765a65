package model

import (
	"reflect"
	"testing"

	"github.com/sambeau/zmklayout/pkg/zmk/binding"
)

func sampleDocument() *Document {
	doc := New("corne", "My Layout")
	doc.LayerNames = []string{"base", "nav"}
	doc.Layers = [][]binding.Binding{
		{binding.MustParse("&kp A"), binding.MustParse("&kp B")},
		{binding.MustParse("&trans"), binding.MustParse("&mo 0")},
	}
	term := 200
	doc.HoldTaps = []HoldTap{{
		Name:          "hm",
		Bindings:      []string{"&kp", "&kp"},
		TappingTermMs: &term,
		Flavor:        "tap-preferred",
	}}
	timeout := 30
	doc.Combos = []Combo{{
		Name:         "combo_esc",
		Binding:      binding.MustParse("&kp ESC"),
		KeyPositions: []int{0, 1},
		TimeoutMs:    &timeout,
		Layers:       []int{0},
	}}
	return doc
}

func TestDictRoundTrip(t *testing.T) {
	doc := sampleDocument()

	dict, err := doc.ToDict()
	if err != nil {
		t.Fatalf("ToDict failed: %v", err)
	}

	doc2, err := FromDict(dict)
	if err != nil {
		t.Fatalf("FromDict failed: %v", err)
	}

	if !reflect.DeepEqual(doc, doc2) {
		t.Errorf("dict round trip changed document:\n%#v\nvs\n%#v", doc, doc2)
	}
}

func TestDictOutputUsesCamelCase(t *testing.T) {
	dict, err := sampleDocument().ToDict()
	if err != nil {
		t.Fatalf("ToDict failed: %v", err)
	}

	for _, key := range []string{"layerNames", "holdTaps", "combos"} {
		if _, ok := dict[key]; !ok {
			t.Errorf("output missing camelCase key %q: %v", key, dict)
		}
	}
	if _, ok := dict["layer_names"]; ok {
		t.Error("output should not contain snake_case keys")
	}
}

func TestFromDictAcceptsSnakeCase(t *testing.T) {
	dict := map[string]any{
		"keyboard":    "corne",
		"title":       "Snake",
		"layer_names": []any{"base"},
		"layers": []any{
			[]any{"&kp A"},
		},
		"hold_taps": []any{
			map[string]any{
				"name":            "hm",
				"bindings":        []any{"&kp", "&kp"},
				"tapping_term_ms": 200,
			},
		},
	}

	doc, err := FromDict(dict)
	if err != nil {
		t.Fatalf("FromDict failed: %v", err)
	}
	if len(doc.LayerNames) != 1 || doc.LayerNames[0] != "base" {
		t.Errorf("layer_names alias not accepted: %v", doc.LayerNames)
	}
	if len(doc.HoldTaps) != 1 || doc.HoldTaps[0].TappingTermMs == nil || *doc.HoldTaps[0].TappingTermMs != 200 {
		t.Errorf("hold_taps alias not accepted: %+v", doc.HoldTaps)
	}
	if doc.Layers[0][0].Value != "&kp" {
		t.Errorf("string binding not parsed: %+v", doc.Layers[0][0])
	}
}

func TestValidateInvariants(t *testing.T) {
	doc := sampleDocument()
	if errs := doc.Validate(42); len(errs) != 0 {
		t.Fatalf("valid document reported errors: %v", errs)
	}

	bad := sampleDocument()
	bad.LayerNames = append(bad.LayerNames, "extra")
	if errs := bad.Validate(42); len(errs) == 0 {
		t.Error("layer count mismatch not reported")
	}

	bad = sampleDocument()
	bad.LayerNames[1] = "base"
	if errs := bad.Validate(42); len(errs) == 0 {
		t.Error("duplicate layer name not reported")
	}

	bad = sampleDocument()
	bad.LayerNames[0] = "1bad-name"
	if errs := bad.Validate(42); len(errs) == 0 {
		t.Error("invalid identifier not reported")
	}

	bad = sampleDocument()
	bad.Combos[0].KeyPositions = []int{99}
	if errs := bad.Validate(42); len(errs) == 0 {
		t.Error("combo key position out of range not reported")
	}

	bad = sampleDocument()
	bad.Combos[0].Layers = []int{7}
	if errs := bad.Validate(42); len(errs) == 0 {
		t.Error("combo layer index out of range not reported")
	}

	bad = sampleDocument()
	bad.HoldTaps[0].Bindings = []string{"&kp"}
	if errs := bad.Validate(42); len(errs) == 0 {
		t.Error("hold-tap binding count not reported")
	}
}

func TestIsValidIdentifier(t *testing.T) {
	valid := []string{"base", "layer_1", "_x", "NavKeys"}
	invalid := []string{"", "1base", "nav-keys", "with space", "ünicode"}

	for _, name := range valid {
		if !IsValidIdentifier(name) {
			t.Errorf("%q should be valid", name)
		}
	}
	for _, name := range invalid {
		if IsValidIdentifier(name) {
			t.Errorf("%q should be invalid", name)
		}
	}
}

func TestCloneSetsLineage(t *testing.T) {
	doc := sampleDocument()
	doc.EnsureUUID()

	clone := doc.Clone()
	if clone.UUID == doc.UUID {
		t.Error("clone should get a fresh uuid")
	}
	if clone.ParentUUID != doc.UUID {
		t.Errorf("clone parentUuid wrong. expected=%q, got=%q", doc.UUID, clone.ParentUUID)
	}

	// the clone is independent
	clone.Layers[0][0] = binding.MustParse("&kp Z")
	if doc.Layers[0][0].String() != "&kp A" {
		t.Error("clone shares layer storage with original")
	}
}

func TestNormalizeDate(t *testing.T) {
	doc := New("corne", "")
	doc.Date = "March 3, 2024"
	doc.NormalizeDate()
	if doc.Date != "2024-03-03T00:00:00Z" {
		t.Errorf("date not normalised: %q", doc.Date)
	}

	doc.Date = "definitely-not-a-date"
	doc.NormalizeDate()
	if doc.Date != "definitely-not-a-date" {
		t.Errorf("unparseable date should be untouched: %q", doc.Date)
	}
}

func TestValidateLocale(t *testing.T) {
	doc := New("corne", "")
	doc.Locale = "en-US"
	if err := doc.ValidateLocale(); err != nil {
		t.Errorf("en-US should be valid: %v", err)
	}

	doc.Locale = "not_a_locale!!"
	if err := doc.ValidateLocale(); err == nil {
		t.Error("malformed locale should be reported")
	}
}

func TestValidateDict(t *testing.T) {
	good := map[string]any{
		"keyboard":   "corne",
		"title":      "ok",
		"layerNames": []any{"base"},
		"layers":     []any{[]any{"&kp A"}},
	}
	if errs := ValidateDict(good); len(errs) != 0 {
		t.Fatalf("valid dict reported errors: %v", errs)
	}

	missing := map[string]any{"title": "no keyboard"}
	if errs := ValidateDict(missing); len(errs) == 0 {
		t.Error("missing keyboard not reported")
	}

	wrongType := map[string]any{
		"keyboard":   "corne",
		"title":      "bad",
		"layerNames": "not-an-array",
	}
	if errs := ValidateDict(wrongType); len(errs) == 0 {
		t.Error("wrong layerNames type not reported")
	}
}

func TestJSONSchemaReflects(t *testing.T) {
	data, err := JSONSchema()
	if err != nil {
		t.Fatalf("JSONSchema failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty schema")
	}
}
