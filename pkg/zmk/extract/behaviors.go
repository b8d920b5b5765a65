package extract

import (
	"strconv"
	"strings"

	"github.com/sambeau/zmklayout/pkg/zmk/ast"
	zmkerrors "github.com/sambeau/zmklayout/pkg/zmk/errors"
	"github.com/sambeau/zmklayout/pkg/zmk/model"
)

// behaviorName prefers a node's label over its name: 'hm: homerow_mods'
// defines the behavior invoked as '&hm'.
func behaviorName(n *ast.Node) string {
	if n.Label != "" {
		return n.Label
	}
	return n.Name
}

// holdTapFromNode lowers a "zmk,behavior-hold-tap" node.
func holdTapFromNode(n *ast.Node, defines Defines) (model.HoldTap, *zmkerrors.LayoutError) {
	ht := model.HoldTap{Name: behaviorName(n)}

	ht.Bindings = propRefList(n, "bindings")
	if len(ht.Bindings) != 2 {
		return ht, zmkerrors.NewWithPosition("EXTRACT-0004", n.Line, n.Column, map[string]any{
			"Name": ht.Name, "Got": len(ht.Bindings),
		})
	}

	ht.TappingTermMs = propInt(n, "tapping-term-ms", defines)
	ht.QuickTapMs = propInt(n, "quick-tap-ms", defines)
	ht.RequirePriorIdleMs = propInt(n, "require-prior-idle-ms", defines)
	if flavor, ok := propString(n, "flavor"); ok {
		ht.Flavor = flavor
	}
	ht.HoldTriggerKeyPositions = propIntList(n, "hold-trigger-key-positions", defines)
	ht.HoldTriggerOnRelease = propBool(n, "hold-trigger-on-release")
	ht.RetroTap = propBool(n, "retro-tap")

	return ht, nil
}

// macroFromNode lowers a "zmk,behavior-macro" node. The one- and two-param
// compatible variants set ParamCount.
func macroFromNode(n *ast.Node, compatible string, defines Defines) model.Macro {
	m := model.Macro{Name: behaviorName(n)}

	switch {
	case strings.HasSuffix(compatible, "-one-param"):
		m.ParamCount = 1
	case strings.HasSuffix(compatible, "-two-param"):
		m.ParamCount = 2
	}

	m.Bindings = bindingsFromProperty(n, "bindings", defines)
	m.WaitMs = propInt(n, "wait-ms", defines)
	m.TapMs = propInt(n, "tap-ms", defines)

	return m
}

// comboFromNode lowers one child of the combos node. Combo layers are
// normalised to indices: numbers pass through, defined names resolve one
// level, and layer names map to their position in layerNames.
func comboFromNode(n *ast.Node, defines Defines, layerNames []string) (model.Combo, *zmkerrors.LayoutError) {
	c := model.Combo{Name: behaviorName(n)}

	c.KeyPositions = propIntList(n, "key-positions", defines)
	c.TimeoutMs = propInt(n, "timeout-ms", defines)
	c.RequirePriorIdleMs = propInt(n, "require-prior-idle-ms", defines)

	bindings := bindingsFromProperty(n, "bindings", defines)
	if len(bindings) == 0 {
		return c, zmkerrors.NewWithPosition("EXTRACT-0001", n.Line, n.Column, map[string]any{
			"Name": c.Name, "Property": "bindings",
		})
	}
	c.Binding = bindings[0]

	for _, v := range cells(n.Property("layers")) {
		if i, ok := intValue(v, defines); ok {
			c.Layers = append(c.Layers, i)
			continue
		}
		id, ok := v.(*ast.IdentValue)
		if !ok {
			continue
		}
		if idx := layerIndex(layerNames, id.Name); idx >= 0 {
			c.Layers = append(c.Layers, idx)
			continue
		}
		return c, zmkerrors.NewWithPosition("EXTRACT-0003", n.Line, n.Column, map[string]any{
			"Name": c.Name, "Layer": id.Name,
		})
	}

	return c, nil
}

func layerIndex(layerNames []string, name string) int {
	for i, n := range layerNames {
		if n == name {
			return i
		}
	}
	return -1
}

// tapDanceFromNode lowers a "zmk,behavior-tap-dance" node.
func tapDanceFromNode(n *ast.Node, defines Defines) model.TapDance {
	td := model.TapDance{Name: behaviorName(n)}
	td.TappingTermMs = propInt(n, "tapping-term-ms", defines)
	td.Bindings = bindingsFromProperty(n, "bindings", defines)
	return td
}

// stickyKeyFromNode lowers a "zmk,behavior-sticky-key" node.
func stickyKeyFromNode(n *ast.Node, defines Defines) model.StickyKey {
	sk := model.StickyKey{Name: behaviorName(n)}
	sk.Bindings = propRefList(n, "bindings")
	sk.ReleaseAfterMs = propInt(n, "release-after-ms", defines)
	sk.QuickRelease = propBool(n, "quick-release")
	sk.Lazy = propBool(n, "lazy")
	sk.IgnoreModifiers = propBool(n, "ignore-modifiers")
	return sk
}

// capsWordFromNode lowers a "zmk,behavior-caps-word" node. The
// continue-list is a set of key identifiers.
func capsWordFromNode(n *ast.Node) model.CapsWord {
	cw := model.CapsWord{Name: behaviorName(n)}
	cw.ContinueList = propIdentList(n, "continue-list")
	cw.MouseKeys = propBool(n, "mouse-keys")
	return cw
}

// modMorphFromNode lowers a "zmk,behavior-mod-morph" node. The modifier
// masks are kept as raw source text.
func modMorphFromNode(n *ast.Node, defines Defines) model.ModMorph {
	mm := model.ModMorph{Name: behaviorName(n)}
	mm.Bindings = bindingsFromProperty(n, "bindings", defines)
	mm.Mods = propRaw(n, "mods")
	mm.KeepMods = propRaw(n, "keep-mods")
	return mm
}

// inputListenerFromNode lowers a "zmk,input-listener" node and its
// per-layer children.
func inputListenerFromNode(n *ast.Node, defines Defines) model.InputListener {
	il := model.InputListener{Code: behaviorName(n)}
	il.InputProcessors = processorsFromProperty(n, defines)

	for _, child := range n.Children {
		node := model.InputListenerNode{Code: child.Name}
		node.Layers = propIntList(child, "layers", defines)
		node.InputProcessors = processorsFromProperty(child, defines)
		il.Nodes = append(il.Nodes, node)
	}
	return il
}

// processorsFromProperty reads 'input-processors = <&zip_xy_scaler 2 1>;'.
func processorsFromProperty(n *ast.Node, defines Defines) []model.InputProcessor {
	var out []model.InputProcessor
	var current *model.InputProcessor

	for _, v := range cells(n.Property("input-processors")) {
		if r, ok := v.(*ast.RefValue); ok {
			if current != nil {
				out = append(out, *current)
			}
			current = &model.InputProcessor{Code: "&" + r.Name}
			continue
		}
		if current == nil {
			continue
		}
		if i, ok := intValue(v, defines); ok {
			current.Params = append(current.Params, strconv.Itoa(i))
		} else if id, ok := v.(*ast.IdentValue); ok {
			current.Params = append(current.Params, defines.Resolve(id.Name))
		}
	}
	if current != nil {
		out = append(out, *current)
	}
	return out
}
