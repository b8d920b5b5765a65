package providers

import (
	"strings"
	"testing"
)

func TestDefaultsProfile(t *testing.T) {
	p := Defaults()

	if p.KeyCount != 42 {
		t.Errorf("default key count wrong: %d", p.KeyCount)
	}
	if p.Compatible.Keymap != "zmk,keymap" {
		t.Errorf("default keymap compatible wrong: %q", p.Compatible.Keymap)
	}

	found := false
	for _, b := range p.Behaviors {
		if b.Name == "kp" {
			found = true
		}
	}
	if !found {
		t.Error("default behaviors missing &kp")
	}
}

func TestLoadProfileOverrides(t *testing.T) {
	yaml := `
keyboard: glove80
key_count: 80
formatting:
  indent_size: 2
  key_gap: 2
  rows: [10, 10, 10, 10, 10, 10, 10, 10]
`
	p, err := LoadProfile([]byte(yaml))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if p.Keyboard != "glove80" || p.KeyCount != 80 {
		t.Errorf("overrides not applied: %q %d", p.Keyboard, p.KeyCount)
	}
	if p.Formatting.IndentSize != 2 || len(p.Formatting.Rows) != 8 {
		t.Errorf("formatting overrides not applied: %+v", p.Formatting)
	}

	// unset fields fall back to defaults
	if p.MaxLayers != 10 {
		t.Errorf("max layers default missing: %d", p.MaxLayers)
	}
	if p.Compatible.HoldTap != "zmk,behavior-hold-tap" {
		t.Errorf("compatible default missing: %q", p.Compatible.HoldTap)
	}
}

func TestLoadProfileBadYAML(t *testing.T) {
	if _, err := LoadProfile([]byte("key_count: [not an int]")); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestValidationRulesFromProfile(t *testing.T) {
	rules := DefaultConfiguration().ValidationRules()

	if rules.KeyCount != 42 {
		t.Errorf("key count wrong: %d", rules.KeyCount)
	}
	if len(rules.KeyPositions) != 42 || rules.KeyPositions[41] != 41 {
		t.Errorf("key positions wrong: %d entries", len(rules.KeyPositions))
	}
	if len(rules.AllowedBehaviors) == 0 {
		t.Error("allowed behaviors empty")
	}
}

func TestTemplateRenderer(t *testing.T) {
	r := NewTemplateRenderer()

	out, err := r.Render("hello {{.name}}", map[string]any{"name": "world"})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if out != "hello world" {
		t.Errorf("render wrong. expected=%q, got=%q", "hello world", out)
	}

	if !r.HasTemplateSyntax("{{.x}}") {
		t.Error("template syntax not detected")
	}
	if r.HasTemplateSyntax("/ { keymap { }; };") {
		t.Error("plain DTSI wrongly detected as template")
	}

	if _, err := r.Render("{{.broken", nil); err == nil {
		t.Error("malformed template should fail")
	}
}

func TestBufferedLogger(t *testing.T) {
	log := NewBufferedLogger()

	log.Info("parsed keymap", "layers", 3)
	log.Error("bad things")

	lines := log.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "INFO parsed keymap layers=3") {
		t.Errorf("line format wrong: %q", lines[0])
	}

	log.Reset()
	if len(log.Lines()) != 0 {
		t.Error("reset did not clear lines")
	}
}

func TestNullLoggerDiscards(t *testing.T) {
	// must not panic, whatever it is fed
	log := NullLogger()
	log.Debug("x")
	log.Info("y", "k", "v")
	log.Warning("z", "odd")
	log.Error("w", 1, 2, 3)
}

func TestDefaultBundle(t *testing.T) {
	p := Default()
	if p.Configuration == nil || p.Template == nil || p.Logger == nil {
		t.Fatal("default bundle has nil members")
	}
}
