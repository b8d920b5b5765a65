package generate

import (
	"strings"
	"testing"

	"github.com/sambeau/zmklayout/pkg/zmk/binding"
	zmkerrors "github.com/sambeau/zmklayout/pkg/zmk/errors"
	"github.com/sambeau/zmklayout/pkg/zmk/model"
	"github.com/sambeau/zmklayout/pkg/zmk/providers"
)

func testGenerator() *Generator {
	return New(providers.DefaultConfiguration(), providers.NullLogger())
}

func TestUpperSnake(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"default_layer", "DEFAULT_LAYER"},
		{"base", "BASE"},
		{"NavKeys", "NAV_KEYS"},
		{"layer1", "LAYER1"},
		{"HTTP", "HTTP"},
	}
	for _, tt := range tests {
		if got := UpperSnake(tt.input); got != tt.expected {
			t.Errorf("UpperSnake(%q) wrong. expected=%q, got=%q", tt.input, tt.expected, got)
		}
	}
}

func TestLayerDefines(t *testing.T) {
	out, err := testGenerator().LayerDefines([]string{"default_layer", "nav", "sym"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := "#define DEFAULT_LAYER 0\n#define NAV 1\n#define SYM 2"
	if out != expected {
		t.Errorf("defines wrong.\nexpected:\n%s\ngot:\n%s", expected, out)
	}
}

func TestLayerDefinesRejectsInvalidIdentifier(t *testing.T) {
	_, err := testGenerator().LayerDefines([]string{"bad-name"})
	if err == nil {
		t.Fatal("expected invalid identifier error")
	}
	le, ok := err.(*zmkerrors.LayoutError)
	if !ok || le.Class != zmkerrors.ClassIdentifier {
		t.Errorf("wrong error: %v", err)
	}
}

func TestBehaviorsDTSI(t *testing.T) {
	term := 200
	doc := model.New("corne", "")
	doc.HoldTaps = []model.HoldTap{{
		Name:          "hm",
		Bindings:      []string{"&kp", "&kp"},
		TappingTermMs: &term,
		Flavor:        "tap-preferred",
	}}

	out, err := testGenerator().BehaviorsDTSI(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"behaviors {",
		"hm: hm {",
		`compatible = "zmk,behavior-hold-tap";`,
		`label = "HM";`,
		"#binding-cells = <2>;",
		"tapping-term-ms = <200>;",
		`flavor = "tap-preferred";`,
		"bindings = <&kp>, <&kp>;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("behaviors output missing %q:\n%s", want, out)
		}
	}
}

func TestTapDancesDTSI(t *testing.T) {
	term := 250
	doc := model.New("corne", "")
	doc.TapDances = []model.TapDance{{
		Name:          "td0",
		TappingTermMs: &term,
		Bindings:      []binding.Binding{binding.MustParse("&kp N1"), binding.MustParse("&kp N2")},
	}}

	out, err := testGenerator().TapDancesDTSI(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"behaviors {",
		"td0: td0 {",
		`compatible = "zmk,behavior-tap-dance";`,
		"tapping-term-ms = <250>;",
		"bindings = <&kp N1>, <&kp N2>;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("tap dances output missing %q:\n%s", want, out)
		}
	}

	// tap dances no longer ride along in the main behaviors block
	main, err := testGenerator().BehaviorsDTSI(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if main != "" {
		t.Errorf("BehaviorsDTSI should be empty for a tap-dance-only document:\n%s", main)
	}
}

func TestCombosDTSI(t *testing.T) {
	timeout := 30
	doc := model.New("corne", "")
	doc.Combos = []model.Combo{{
		Name:         "combo_esc",
		Binding:      binding.MustParse("&kp ESC"),
		KeyPositions: []int{0, 1},
		TimeoutMs:    &timeout,
		Layers:       []int{0, 1},
	}}

	out, err := testGenerator().CombosDTSI(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		`compatible = "zmk,combos";`,
		"combo_esc {",
		"timeout-ms = <30>;",
		"key-positions = <0 1>;",
		"bindings = <&kp ESC>;",
		"layers = <0 1>;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("combos output missing %q:\n%s", want, out)
		}
	}
}

func TestMacrosDTSI(t *testing.T) {
	wait := 40
	doc := model.New("corne", "")
	doc.Macros = []model.Macro{{
		Name:     "email",
		WaitMs:   &wait,
		Bindings: []binding.Binding{binding.MustParse("&kp H"), binding.MustParse("&kp I")},
	}}

	out, err := testGenerator().MacrosDTSI(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"macros {",
		"email: email {",
		`compatible = "zmk,behavior-macro";`,
		"#binding-cells = <0>;",
		"wait-ms = <40>;",
		"bindings = <&kp H>, <&kp I>;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("macros output missing %q:\n%s", want, out)
		}
	}
}

func TestKeymapNodeGrid(t *testing.T) {
	profile := providers.Defaults()
	profile.Formatting.Rows = []int{2, 2}
	gen := New(providers.NewConfiguration(profile), nil)

	doc := model.New("corne", "")
	doc.LayerNames = []string{"base"}
	doc.Layers = [][]binding.Binding{{
		binding.MustParse("&kp A"),
		binding.MustParse("&mt LCTRL B"),
		binding.MustParse("&kp C"),
		binding.MustParse("&kp D"),
	}}

	out, err := gen.KeymapNode(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(out, "\n")
	var rows []string
	for _, line := range lines {
		if strings.HasPrefix(line, bindingRowIndent+"&") {
			rows = append(rows, line)
		}
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 grid rows, got %d:\n%s", len(rows), out)
	}

	// first row pads &kp A to the width of &mt LCTRL B plus the key gap
	expectedFirst := bindingRowIndent + "&kp A       &mt LCTRL B"
	if rows[0] != expectedFirst {
		t.Errorf("row 0 wrong.\nexpected: %q\ngot:      %q", expectedFirst, rows[0])
	}

	if !strings.Contains(out, `compatible = "zmk,keymap";`) {
		t.Errorf("keymap compatible missing:\n%s", out)
	}
	if !strings.Contains(out, "base {") {
		t.Errorf("layer node name should be verbatim:\n%s", out)
	}
}

func TestKconfig(t *testing.T) {
	doc := model.New("corne", "")
	doc.ConfigParameters = []model.ConfigParameter{
		{ParamName: "CONFIG_ZMK_SLEEP", Value: true},
		{ParamName: "ZMK_IDLE_SLEEP_TIMEOUT", Value: float64(60000)},
		{ParamName: "CONFIG_ZMK_RGB_UNDERGLOW", Value: false},
	}

	text, settings := testGenerator().Kconfig(doc)

	expected := "CONFIG_ZMK_SLEEP=y\nCONFIG_ZMK_IDLE_SLEEP_TIMEOUT=60000\nCONFIG_ZMK_RGB_UNDERGLOW=n"
	if text != expected {
		t.Errorf("kconfig wrong.\nexpected:\n%s\ngot:\n%s", expected, text)
	}
	if settings["CONFIG_ZMK_SLEEP"] != true {
		t.Errorf("settings map wrong: %v", settings)
	}
	if len(settings) != 3 {
		t.Errorf("expected 3 settings, got %d", len(settings))
	}
}

func TestKconfigDefaultFromProvider(t *testing.T) {
	doc := model.New("corne", "")
	doc.ConfigParameters = []model.ConfigParameter{
		{ParamName: "CONFIG_ZMK_IDLE_SLEEP_TIMEOUT"},
	}

	text, _ := testGenerator().Kconfig(doc)
	if text != "CONFIG_ZMK_IDLE_SLEEP_TIMEOUT=900000" {
		t.Errorf("provider default not applied: %q", text)
	}
}
