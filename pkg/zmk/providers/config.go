package providers

import (
	"gopkg.in/yaml.v3"

	zmkerrors "github.com/sambeau/zmklayout/pkg/zmk/errors"
)

// Profile is a keyboard profile as loaded from YAML. Zero fields fall back
// to the generic defaults, so a profile file only needs to state what
// differs from them.
type Profile struct {
	Keyboard        string                   `yaml:"keyboard"`
	KeyCount        int                      `yaml:"key_count"`
	MaxLayers       int                      `yaml:"max_layers"`
	Includes        []string                 `yaml:"includes"`
	Behaviors       []SystemBehavior         `yaml:"behaviors"`
	Kconfig         map[string]KconfigOption `yaml:"kconfig"`
	Formatting      FormattingOptions        `yaml:"formatting"`
	Compatible      CompatibleStrings        `yaml:"compatible"`
	TemplateContext map[string]any           `yaml:"template_context"`
}

// Defaults returns the generic keyboard profile: 42 keys, the standard ZMK
// behavior set, and the standard compatible strings.
func Defaults() *Profile {
	return &Profile{
		Keyboard:  "generic",
		KeyCount:  42,
		MaxLayers: 10,
		Includes: []string{
			"behaviors.dtsi",
			"dt-bindings/zmk/keys.h",
			"dt-bindings/zmk/bt.h",
		},
		Behaviors: []SystemBehavior{
			{Name: "kp", Description: "Key press", Params: 1},
			{Name: "kt", Description: "Key toggle", Params: 1},
			{Name: "mt", Description: "Mod-tap", Params: 2},
			{Name: "lt", Description: "Layer-tap", Params: 2},
			{Name: "mo", Description: "Momentary layer", Params: 1},
			{Name: "to", Description: "To layer", Params: 1},
			{Name: "tog", Description: "Toggle layer", Params: 1},
			{Name: "sk", Description: "Sticky key", Params: 1},
			{Name: "sl", Description: "Sticky layer", Params: 1},
			{Name: "trans", Description: "Transparent"},
			{Name: "none", Description: "None"},
			{Name: "gresc", Description: "Grave escape"},
			{Name: "caps_word", Description: "Caps word"},
			{Name: "key_repeat", Description: "Key repeat"},
			{Name: "bt", Description: "Bluetooth", Params: 1},
			{Name: "out", Description: "Output selection", Params: 1},
			{Name: "rgb_ug", Description: "RGB underglow", Params: 1},
			{Name: "ext_power", Description: "External power", Params: 1},
			{Name: "bootloader", Description: "Bootloader"},
			{Name: "sys_reset", Description: "System reset"},
			{Name: "mkp", Description: "Mouse key press", Params: 1},
			{Name: "msc", Description: "Mouse scroll", Params: 1},
			{Name: "mmv", Description: "Mouse move", Params: 1},
		},
		Kconfig: map[string]KconfigOption{
			"CONFIG_ZMK_SLEEP":                    {Name: "CONFIG_ZMK_SLEEP", Type: "bool", Default: false},
			"CONFIG_ZMK_IDLE_SLEEP_TIMEOUT":       {Name: "CONFIG_ZMK_IDLE_SLEEP_TIMEOUT", Type: "int", Default: 900000},
			"CONFIG_ZMK_COMBO_MAX_COMBOS_PER_KEY": {Name: "CONFIG_ZMK_COMBO_MAX_COMBOS_PER_KEY", Type: "int", Default: 5},
			"CONFIG_ZMK_COMBO_MAX_KEYS_PER_COMBO": {Name: "CONFIG_ZMK_COMBO_MAX_KEYS_PER_COMBO", Type: "int", Default: 4},
		},
		Formatting: FormattingOptions{
			IndentSize: 4,
			KeyGap:     1,
			Rows:       nil,
		},
		Compatible: CompatibleStrings{
			Keymap:        "zmk,keymap",
			HoldTap:       "zmk,behavior-hold-tap",
			Combos:        "zmk,combos",
			Macro:         "zmk,behavior-macro",
			TapDance:      "zmk,behavior-tap-dance",
			StickyKey:     "zmk,behavior-sticky-key",
			CapsWord:      "zmk,behavior-caps-word",
			ModMorph:      "zmk,behavior-mod-morph",
			InputListener: "zmk,input-listener",
		},
	}
}

// LoadProfile parses a YAML profile and fills unset fields from Defaults.
func LoadProfile(data []byte) (*Profile, error) {
	p := Defaults()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, zmkerrors.New("PROVIDER-0001", map[string]any{
			"Provider": "configuration",
			"Reason":   err.Error(),
		})
	}
	d := Defaults()
	if p.KeyCount <= 0 {
		p.KeyCount = d.KeyCount
	}
	if p.MaxLayers <= 0 {
		p.MaxLayers = d.MaxLayers
	}
	if p.Formatting.IndentSize <= 0 {
		p.Formatting.IndentSize = d.Formatting.IndentSize
	}
	if p.Formatting.KeyGap <= 0 {
		p.Formatting.KeyGap = d.Formatting.KeyGap
	}
	if p.Compatible == (CompatibleStrings{}) {
		p.Compatible = d.Compatible
	}
	if len(p.Behaviors) == 0 {
		p.Behaviors = d.Behaviors
	}
	return p, nil
}

// profileConfiguration adapts a Profile to the ConfigurationProvider
// interface.
type profileConfiguration struct {
	profile *Profile
}

// DefaultConfiguration returns the generic compiled-in provider.
func DefaultConfiguration() ConfigurationProvider {
	return &profileConfiguration{profile: Defaults()}
}

// NewConfiguration wraps a profile as a ConfigurationProvider.
func NewConfiguration(p *Profile) ConfigurationProvider {
	if p == nil {
		p = Defaults()
	}
	return &profileConfiguration{profile: p}
}

func (c *profileConfiguration) BehaviorDefinitions() []SystemBehavior {
	return c.profile.Behaviors
}

func (c *profileConfiguration) IncludeFiles() []string {
	return c.profile.Includes
}

func (c *profileConfiguration) ValidationRules() ValidationRules {
	positions := make([]int, c.profile.KeyCount)
	for i := range positions {
		positions[i] = i
	}
	allowed := make([]string, len(c.profile.Behaviors))
	for i, b := range c.profile.Behaviors {
		allowed[i] = b.Name
	}
	return ValidationRules{
		KeyCount:         c.profile.KeyCount,
		MaxLayers:        c.profile.MaxLayers,
		AllowedBehaviors: allowed,
		KeyPositions:     positions,
	}
}

func (c *profileConfiguration) TemplateContext() map[string]any {
	ctx := map[string]any{
		"keyboard":  c.profile.Keyboard,
		"key_count": c.profile.KeyCount,
	}
	for k, v := range c.profile.TemplateContext {
		ctx[k] = v
	}
	return ctx
}

func (c *profileConfiguration) KconfigOptions() map[string]KconfigOption {
	return c.profile.Kconfig
}

func (c *profileConfiguration) FormattingOptions() FormattingOptions {
	return c.profile.Formatting
}

func (c *profileConfiguration) CompatibleStrings() CompatibleStrings {
	return c.profile.Compatible
}
