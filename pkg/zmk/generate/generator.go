// Package generate emits DTSI text and kconfig fragments from a
// LayoutDocument. Output is deterministic for a given document and
// formatting options.
package generate

import (
	"fmt"
	"strings"

	"github.com/sambeau/zmklayout/pkg/zmk/binding"
	zmkerrors "github.com/sambeau/zmklayout/pkg/zmk/errors"
	"github.com/sambeau/zmklayout/pkg/zmk/model"
	"github.com/sambeau/zmklayout/pkg/zmk/providers"
)

// Generator emits DTSI for one configuration provider.
type Generator struct {
	config providers.ConfigurationProvider
	logger providers.Logger
}

// New creates a generator. Nil arguments fall back to the defaults.
func New(config providers.ConfigurationProvider, logger providers.Logger) *Generator {
	if config == nil {
		config = providers.DefaultConfiguration()
	}
	if logger == nil {
		logger = providers.NullLogger()
	}
	return &Generator{config: config, logger: logger}
}

func (g *Generator) indent(depth int) string {
	size := g.config.FormattingOptions().IndentSize
	if size <= 0 {
		size = 4
	}
	return strings.Repeat(" ", size*depth)
}

// UpperSnake converts a layer or behavior name to the UPPER_SNAKE form used
// in #define lines and labels: "default_layer" becomes "DEFAULT_LAYER",
// "NavKeys" becomes "NAV_KEYS".
func UpperSnake(name string) string {
	var sb strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		if 'A' <= c && c <= 'Z' && i > 0 {
			prev := name[i-1]
			if 'a' <= prev && prev <= 'z' || '0' <= prev && prev <= '9' {
				sb.WriteByte('_')
			}
		}
		sb.WriteByte(c)
	}
	return strings.ToUpper(sb.String())
}

// LayerDefines emits one '#define NAME index' line per layer, in order.
// Names that are not valid C identifiers are rejected before emission.
func (g *Generator) LayerDefines(layerNames []string) (string, error) {
	var sb strings.Builder
	for i, name := range layerNames {
		if !model.IsValidIdentifier(name) {
			return "", zmkerrors.NewInvalidIdentifier(name)
		}
		sb.WriteString(fmt.Sprintf("#define %s %d\n", UpperSnake(name), i))
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

// BehaviorsDTSI emits the 'behaviors { ... };' block holding hold-taps,
// sticky keys, caps-words and mod-morphs, ready to be spliced into a root
// node. Tap-dances are emitted separately by TapDancesDTSI so they can be
// included or excluded on their own.
func (g *Generator) BehaviorsDTSI(doc *model.Document) (string, error) {
	if len(doc.HoldTaps)+len(doc.StickyKeys)+len(doc.CapsWords)+len(doc.ModMorphs) == 0 {
		return "", nil
	}
	compat := g.config.CompatibleStrings()

	var sb strings.Builder
	sb.WriteString(g.indent(1) + "behaviors {\n")

	for _, ht := range doc.HoldTaps {
		if err := g.holdTapNode(&sb, ht, compat.HoldTap); err != nil {
			return "", err
		}
	}
	for _, sk := range doc.StickyKeys {
		if err := g.stickyKeyNode(&sb, sk, compat.StickyKey); err != nil {
			return "", err
		}
	}
	for _, cw := range doc.CapsWords {
		if err := g.capsWordNode(&sb, cw, compat.CapsWord); err != nil {
			return "", err
		}
	}
	for _, mm := range doc.ModMorphs {
		if err := g.modMorphNode(&sb, mm, compat.ModMorph); err != nil {
			return "", err
		}
	}

	sb.WriteString(g.indent(1) + "};")
	return sb.String(), nil
}

// TapDancesDTSI emits a 'behaviors { ... };' block holding only the
// tap-dances, ready to be spliced into a root node.
func (g *Generator) TapDancesDTSI(doc *model.Document) (string, error) {
	if len(doc.TapDances) == 0 {
		return "", nil
	}
	compat := g.config.CompatibleStrings()

	var sb strings.Builder
	sb.WriteString(g.indent(1) + "behaviors {\n")
	for _, td := range doc.TapDances {
		if err := g.tapDanceNode(&sb, td, compat.TapDance); err != nil {
			return "", err
		}
	}
	sb.WriteString(g.indent(1) + "};")
	return sb.String(), nil
}

func (g *Generator) openBehavior(sb *strings.Builder, name string) error {
	if !model.IsValidIdentifier(name) {
		return zmkerrors.NewInvalidIdentifier(name)
	}
	sb.WriteString(fmt.Sprintf("%s%s: %s {\n", g.indent(2), name, name))
	return nil
}

func (g *Generator) prop(sb *strings.Builder, depth int, format string, args ...any) {
	sb.WriteString(g.indent(depth) + fmt.Sprintf(format, args...) + "\n")
}

func (g *Generator) holdTapNode(sb *strings.Builder, ht model.HoldTap, compatible string) error {
	if err := g.openBehavior(sb, ht.Name); err != nil {
		return err
	}
	g.prop(sb, 3, "compatible = %q;", compatible)
	g.prop(sb, 3, "label = %q;", UpperSnake(ht.Name))
	g.prop(sb, 3, "#binding-cells = <2>;")
	if ht.TappingTermMs != nil {
		g.prop(sb, 3, "tapping-term-ms = <%d>;", *ht.TappingTermMs)
	}
	if ht.QuickTapMs != nil {
		g.prop(sb, 3, "quick-tap-ms = <%d>;", *ht.QuickTapMs)
	}
	if ht.RequirePriorIdleMs != nil {
		g.prop(sb, 3, "require-prior-idle-ms = <%d>;", *ht.RequirePriorIdleMs)
	}
	if ht.Flavor != "" {
		g.prop(sb, 3, "flavor = %q;", ht.Flavor)
	}
	if len(ht.HoldTriggerKeyPositions) > 0 {
		g.prop(sb, 3, "hold-trigger-key-positions = <%s>;", joinInts(ht.HoldTriggerKeyPositions))
	}
	if ht.HoldTriggerOnRelease {
		g.prop(sb, 3, "hold-trigger-on-release;")
	}
	if ht.RetroTap {
		g.prop(sb, 3, "retro-tap;")
	}
	bindings := ht.Bindings
	if len(bindings) == 0 {
		bindings = []string{"&kp", "&kp"}
	}
	g.prop(sb, 3, "bindings = %s;", joinRefCells(bindings))
	sb.WriteString(g.indent(2) + "};\n")
	return nil
}

func (g *Generator) tapDanceNode(sb *strings.Builder, td model.TapDance, compatible string) error {
	if err := g.openBehavior(sb, td.Name); err != nil {
		return err
	}
	g.prop(sb, 3, "compatible = %q;", compatible)
	g.prop(sb, 3, "label = %q;", UpperSnake(td.Name))
	g.prop(sb, 3, "#binding-cells = <0>;")
	if td.TappingTermMs != nil {
		g.prop(sb, 3, "tapping-term-ms = <%d>;", *td.TappingTermMs)
	}
	g.prop(sb, 3, "bindings = %s;", joinBindingCells(td.Bindings))
	sb.WriteString(g.indent(2) + "};\n")
	return nil
}

func (g *Generator) stickyKeyNode(sb *strings.Builder, sk model.StickyKey, compatible string) error {
	if err := g.openBehavior(sb, sk.Name); err != nil {
		return err
	}
	g.prop(sb, 3, "compatible = %q;", compatible)
	g.prop(sb, 3, "label = %q;", UpperSnake(sk.Name))
	g.prop(sb, 3, "#binding-cells = <1>;")
	if sk.ReleaseAfterMs != nil {
		g.prop(sb, 3, "release-after-ms = <%d>;", *sk.ReleaseAfterMs)
	}
	if sk.QuickRelease {
		g.prop(sb, 3, "quick-release;")
	}
	if sk.Lazy {
		g.prop(sb, 3, "lazy;")
	}
	if sk.IgnoreModifiers {
		g.prop(sb, 3, "ignore-modifiers;")
	}
	bindings := sk.Bindings
	if len(bindings) == 0 {
		bindings = []string{"&kp"}
	}
	g.prop(sb, 3, "bindings = %s;", joinRefCells(bindings))
	sb.WriteString(g.indent(2) + "};\n")
	return nil
}

func (g *Generator) capsWordNode(sb *strings.Builder, cw model.CapsWord, compatible string) error {
	if err := g.openBehavior(sb, cw.Name); err != nil {
		return err
	}
	g.prop(sb, 3, "compatible = %q;", compatible)
	g.prop(sb, 3, "label = %q;", UpperSnake(cw.Name))
	g.prop(sb, 3, "#binding-cells = <0>;")
	if len(cw.ContinueList) > 0 {
		g.prop(sb, 3, "continue-list = <%s>;", strings.Join(cw.ContinueList, " "))
	}
	if cw.MouseKeys {
		g.prop(sb, 3, "mouse-keys;")
	}
	sb.WriteString(g.indent(2) + "};\n")
	return nil
}

func (g *Generator) modMorphNode(sb *strings.Builder, mm model.ModMorph, compatible string) error {
	if err := g.openBehavior(sb, mm.Name); err != nil {
		return err
	}
	g.prop(sb, 3, "compatible = %q;", compatible)
	g.prop(sb, 3, "label = %q;", UpperSnake(mm.Name))
	g.prop(sb, 3, "#binding-cells = <0>;")
	g.prop(sb, 3, "bindings = %s;", joinBindingCells(mm.Bindings))
	if mm.Mods != "" {
		g.prop(sb, 3, "mods = <%s>;", mm.Mods)
	}
	if mm.KeepMods != "" {
		g.prop(sb, 3, "keep-mods = <%s>;", mm.KeepMods)
	}
	sb.WriteString(g.indent(2) + "};\n")
	return nil
}

// CombosDTSI emits the full '/ { combos { ... }; };' block.
func (g *Generator) CombosDTSI(doc *model.Document) (string, error) {
	if len(doc.Combos) == 0 {
		return "", nil
	}
	compat := g.config.CompatibleStrings()

	var sb strings.Builder
	sb.WriteString("/ {\n")
	sb.WriteString(g.indent(1) + "combos {\n")
	g.prop(&sb, 2, "compatible = %q;", compat.Combos)

	for _, c := range doc.Combos {
		if !model.IsValidIdentifier(c.Name) {
			return "", zmkerrors.NewInvalidIdentifier(c.Name)
		}
		sb.WriteString(fmt.Sprintf("%s%s {\n", g.indent(2), c.Name))
		if c.TimeoutMs != nil {
			g.prop(&sb, 3, "timeout-ms = <%d>;", *c.TimeoutMs)
		}
		g.prop(&sb, 3, "key-positions = <%s>;", joinInts(c.KeyPositions))
		g.prop(&sb, 3, "bindings = <%s>;", c.Binding.String())
		if len(c.Layers) > 0 {
			g.prop(&sb, 3, "layers = <%s>;", joinInts(c.Layers))
		}
		if c.RequirePriorIdleMs != nil {
			g.prop(&sb, 3, "require-prior-idle-ms = <%d>;", *c.RequirePriorIdleMs)
		}
		sb.WriteString(g.indent(2) + "};\n")
	}

	sb.WriteString(g.indent(1) + "};\n")
	sb.WriteString("};")
	return sb.String(), nil
}

// MacrosDTSI emits the full '/ { macros { ... }; };' block.
func (g *Generator) MacrosDTSI(doc *model.Document) (string, error) {
	if len(doc.Macros) == 0 {
		return "", nil
	}
	compat := g.config.CompatibleStrings()

	var sb strings.Builder
	sb.WriteString("/ {\n")
	sb.WriteString(g.indent(1) + "macros {\n")

	for _, m := range doc.Macros {
		if !model.IsValidIdentifier(m.Name) {
			return "", zmkerrors.NewInvalidIdentifier(m.Name)
		}
		compatible := compat.Macro
		cells := 0
		switch m.ParamCount {
		case 1:
			compatible += "-one-param"
			cells = 1
		case 2:
			compatible += "-two-param"
			cells = 2
		}
		sb.WriteString(fmt.Sprintf("%s%s: %s {\n", g.indent(2), m.Name, m.Name))
		g.prop(&sb, 3, "compatible = %q;", compatible)
		g.prop(&sb, 3, "label = %q;", UpperSnake(m.Name))
		g.prop(&sb, 3, "#binding-cells = <%d>;", cells)
		if m.TapMs != nil {
			g.prop(&sb, 3, "tap-ms = <%d>;", *m.TapMs)
		}
		if m.WaitMs != nil {
			g.prop(&sb, 3, "wait-ms = <%d>;", *m.WaitMs)
		}
		if len(m.Bindings) > 0 {
			g.prop(&sb, 3, "bindings = %s;", joinBindingCells(m.Bindings))
		}
		sb.WriteString(g.indent(2) + "};\n")
	}

	sb.WriteString(g.indent(1) + "};\n")
	sb.WriteString("};")
	return sb.String(), nil
}

// InputListenersDTSI emits the input listener nodes.
func (g *Generator) InputListenersDTSI(doc *model.Document) (string, error) {
	if len(doc.InputListeners) == 0 {
		return "", nil
	}
	compat := g.config.CompatibleStrings()

	var sb strings.Builder
	sb.WriteString("/ {\n")
	for i, il := range doc.InputListeners {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%s%s {\n", g.indent(1), il.Code))
		g.prop(&sb, 2, "compatible = %q;", compat.InputListener)
		if len(il.InputProcessors) > 0 {
			g.prop(&sb, 2, "input-processors = %s;", joinProcessorCells(il.InputProcessors))
		}
		for _, node := range il.Nodes {
			sb.WriteString(fmt.Sprintf("%s%s {\n", g.indent(2), node.Code))
			if len(node.Layers) > 0 {
				g.prop(&sb, 3, "layers = <%s>;", joinInts(node.Layers))
			}
			if len(node.InputProcessors) > 0 {
				g.prop(&sb, 3, "input-processors = %s;", joinProcessorCells(node.InputProcessors))
			}
			sb.WriteString(g.indent(2) + "};\n")
		}
		sb.WriteString(g.indent(1) + "};\n")
	}
	sb.WriteString("};")
	return sb.String(), nil
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, " ")
}

// joinRefCells renders behavior refs as '<&kp>, <&kp>'.
func joinRefCells(refs []string) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = "<" + r + ">"
	}
	return strings.Join(parts, ", ")
}

// joinBindingCells renders bindings as '<&kp A>, <&kp B>'.
func joinBindingCells(bindings []binding.Binding) string {
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		parts[i] = "<" + b.String() + ">"
	}
	return strings.Join(parts, ", ")
}

func joinProcessorCells(procs []model.InputProcessor) string {
	parts := make([]string, len(procs))
	for i, p := range procs {
		cell := p.Code
		if len(p.Params) > 0 {
			cell += " " + strings.Join(p.Params, " ")
		}
		parts[i] = "<" + cell + ">"
	}
	return strings.Join(parts, ", ")
}
