// Package providers defines the narrow interfaces the core depends on for
// configuration, template rendering and logging, plus default
// implementations of each.
package providers

// SystemBehavior describes one built-in ZMK behavior the keyboard profile
// makes available (e.g. &kp, &mt, &lt).
type SystemBehavior struct {
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description,omitempty" json:"description,omitempty"`
	Params      int            `yaml:"params,omitempty" json:"params,omitempty"`
	Properties  map[string]any `yaml:"properties,omitempty" json:"properties,omitempty"`
}

// ValidationRules carries keyboard-specific limits used by validation.
type ValidationRules struct {
	KeyCount         int      `yaml:"key_count" json:"keyCount"`
	MaxLayers        int      `yaml:"max_layers" json:"maxLayers"`
	AllowedBehaviors []string `yaml:"allowed_behaviors,omitempty" json:"allowedBehaviors,omitempty"`
	KeyPositions     []int    `yaml:"key_positions,omitempty" json:"keyPositions,omitempty"`
}

// FormattingOptions carries formatting preferences for generated files.
// Rows lists how many bindings each visual row of the keymap grid holds;
// an empty Rows renders every layer as a single row.
type FormattingOptions struct {
	IndentSize int   `yaml:"indent_size" json:"indentSize"`
	KeyGap     int   `yaml:"key_gap" json:"keyGap"`
	Rows       []int `yaml:"rows,omitempty" json:"rows,omitempty"`
}

// KconfigOption describes one kconfig setting the profile understands.
type KconfigOption struct {
	Name        string `yaml:"name" json:"name"`
	Type        string `yaml:"type,omitempty" json:"type,omitempty"` // "bool" or "int"
	Default     any    `yaml:"default,omitempty" json:"default,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// CompatibleStrings maps behavior kinds to the devicetree 'compatible'
// strings that identify them during extraction.
type CompatibleStrings struct {
	Keymap        string `yaml:"keymap" json:"keymap"`
	HoldTap       string `yaml:"hold_tap" json:"holdTap"`
	Combos        string `yaml:"combos" json:"combos"`
	Macro         string `yaml:"macro" json:"macro"`
	TapDance      string `yaml:"tap_dance" json:"tapDance"`
	StickyKey     string `yaml:"sticky_key" json:"stickyKey"`
	CapsWord      string `yaml:"caps_word" json:"capsWord"`
	ModMorph      string `yaml:"mod_morph" json:"modMorph"`
	InputListener string `yaml:"input_listener" json:"inputListener"`
}

// ConfigurationProvider supplies keyboard-profile configuration to the
// core. Implementations live outside the core; DefaultConfiguration is a
// compiled-in generic profile.
type ConfigurationProvider interface {
	BehaviorDefinitions() []SystemBehavior
	IncludeFiles() []string
	ValidationRules() ValidationRules
	TemplateContext() map[string]any
	KconfigOptions() map[string]KconfigOption
	FormattingOptions() FormattingOptions
	CompatibleStrings() CompatibleStrings
}

// TemplateProvider renders keymap templates. The core only ever hands it a
// template string and a context dictionary.
type TemplateProvider interface {
	Render(template string, context map[string]any) (string, error)
	HasTemplateSyntax(content string) bool
}

// Logger accepts structured log records. Fields are alternating key/value
// pairs.
type Logger interface {
	Debug(message string, fields ...any)
	Info(message string, fields ...any)
	Warning(message string, fields ...any)
	Error(message string, fields ...any)
}

// Providers bundles the three collaborator interfaces.
type Providers struct {
	Configuration ConfigurationProvider
	Template      TemplateProvider
	Logger        Logger
}

// Default returns the compiled-in provider bundle: the generic keyboard
// profile, the text/template renderer, and a discard logger.
func Default() *Providers {
	return &Providers{
		Configuration: DefaultConfiguration(),
		Template:      NewTemplateRenderer(),
		Logger:        NullLogger(),
	}
}
