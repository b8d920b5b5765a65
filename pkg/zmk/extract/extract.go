package extract

import (
	"github.com/sambeau/zmklayout/pkg/zmk/ast"
	"github.com/sambeau/zmklayout/pkg/zmk/binding"
	zmkerrors "github.com/sambeau/zmklayout/pkg/zmk/errors"
	"github.com/sambeau/zmklayout/pkg/zmk/model"
	"github.com/sambeau/zmklayout/pkg/zmk/providers"
)

// Options configures an extraction pass.
type Options struct {
	Compatibles providers.CompatibleStrings
	Logger      providers.Logger
}

// Result carries the lowered document plus everything that went wrong on
// the way. Per-behavior failures are warnings; a behavior that fails to
// lower is skipped, not fabricated.
type Result struct {
	Document *model.Document
	Warnings []*zmkerrors.LayoutError
}

// Extract lowers a parsed devicetree into a LayoutDocument. The document
// has no reference to the AST afterwards; extraction is a one-shot
// lowering.
func Extract(doc *ast.Document, opts Options) *Result {
	if opts.Compatibles == (providers.CompatibleStrings{}) {
		opts.Compatibles = providers.Defaults().Compatible
	}
	log := opts.Logger
	if log == nil {
		log = providers.NullLogger()
	}

	res := &Result{Document: &model.Document{
		LayerNames: []string{},
		Layers:     [][]binding.Binding{},
	}}
	out := res.Document
	defines := CollectDefines(doc)

	// Keymap layers first: combo layer references resolve against them.
	if keymap := firstCompatible(doc, opts.Compatibles.Keymap); keymap != nil {
		for _, layer := range keymap.Children {
			out.LayerNames = append(out.LayerNames, layer.Name)
			bindings := bindingsFromProperty(layer, "bindings", defines)
			if bindings == nil {
				bindings = []binding.Binding{}
			}
			out.Layers = append(out.Layers, bindings)
		}
		log.Debug("extracted keymap", "layers", len(out.Layers))
	} else {
		res.warn(zmkerrors.New("EXTRACT-0002", map[string]any{
			"Compatible": opts.Compatibles.Keymap,
		}))
	}

	for _, n := range ast.FindNodesCompatible(doc, opts.Compatibles.HoldTap) {
		ht, err := holdTapFromNode(n, defines)
		if err != nil {
			res.warn(err)
			continue
		}
		out.HoldTaps = append(out.HoldTaps, ht)
	}

	for _, n := range macroNodes(doc, opts.Compatibles.Macro) {
		out.Macros = append(out.Macros, macroFromNode(n, n.Compatible(), defines))
	}

	for _, combosNode := range combosNodes(doc, opts.Compatibles.Combos) {
		for _, n := range combosNode.Children {
			combo, err := comboFromNode(n, defines, out.LayerNames)
			if err != nil {
				res.warn(err)
				continue
			}
			out.Combos = append(out.Combos, combo)
		}
	}

	for _, n := range ast.FindNodesCompatible(doc, opts.Compatibles.TapDance) {
		out.TapDances = append(out.TapDances, tapDanceFromNode(n, defines))
	}
	for _, n := range ast.FindNodesCompatible(doc, opts.Compatibles.StickyKey) {
		out.StickyKeys = append(out.StickyKeys, stickyKeyFromNode(n, defines))
	}
	for _, n := range ast.FindNodesCompatible(doc, opts.Compatibles.CapsWord) {
		out.CapsWords = append(out.CapsWords, capsWordFromNode(n))
	}
	for _, n := range ast.FindNodesCompatible(doc, opts.Compatibles.ModMorph) {
		out.ModMorphs = append(out.ModMorphs, modMorphFromNode(n, defines))
	}
	for _, n := range ast.FindNodesCompatible(doc, opts.Compatibles.InputListener) {
		out.InputListeners = append(out.InputListeners, inputListenerFromNode(n, defines))
	}

	return res
}

func (r *Result) warn(err *zmkerrors.LayoutError) {
	r.Warnings = append(r.Warnings, err)
}

func firstCompatible(doc *ast.Document, compatible string) *ast.Node {
	nodes := ast.FindNodesCompatible(doc, compatible)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

// macroNodes matches the base macro compatible plus its -one-param and
// -two-param variants.
func macroNodes(doc *ast.Document, compatible string) []*ast.Node {
	return ast.FindNodesWhere(doc, func(n *ast.Node) bool {
		c := n.Compatible()
		return c == compatible || c == compatible+"-one-param" || c == compatible+"-two-param"
	})
}

// combosNodes matches by compatible, falling back to the conventional node
// name for sources that omit the compatible property.
func combosNodes(doc *ast.Document, compatible string) []*ast.Node {
	return ast.FindNodesWhere(doc, func(n *ast.Node) bool {
		if n.Compatible() == compatible {
			return true
		}
		return n.Name == "combos" && n.Compatible() == "" && len(n.Children) > 0
	})
}
