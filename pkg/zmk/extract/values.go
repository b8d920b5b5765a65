package extract

import (
	"strconv"

	"github.com/sambeau/zmklayout/pkg/zmk/ast"
	"github.com/sambeau/zmklayout/pkg/zmk/binding"
)

// Property readers. Devicetree wraps scalar property values in cell
// arrays ('tapping-term-ms = <200>;'), so readers flatten arrays first.

// cells flattens a property's values: array elements are spliced in place,
// other values pass through.
func cells(p *ast.Property) []ast.Value {
	if p == nil {
		return nil
	}
	var out []ast.Value
	for _, v := range p.Values {
		if arr, ok := v.(*ast.ArrayValue); ok {
			out = append(out, arr.Elements...)
			continue
		}
		out = append(out, v)
	}
	return out
}

// propString reads the first string value of the named property.
func propString(n *ast.Node, name string) (string, bool) {
	p := n.Property(name)
	if p == nil {
		return "", false
	}
	for _, v := range p.Values {
		if s, ok := v.(*ast.StringValue); ok {
			return s.Value, true
		}
	}
	return "", false
}

// propInt reads the first integer cell of the named property, applying
// define substitution to identifiers.
func propInt(n *ast.Node, name string, defines Defines) *int {
	for _, v := range cells(n.Property(name)) {
		if i, ok := intValue(v, defines); ok {
			return &i
		}
	}
	return nil
}

// propIntList reads every integer cell of the named property.
func propIntList(n *ast.Node, name string, defines Defines) []int {
	var out []int
	for _, v := range cells(n.Property(name)) {
		if i, ok := intValue(v, defines); ok {
			out = append(out, i)
		}
	}
	return out
}

// propIdentList reads every identifier cell of the named property.
func propIdentList(n *ast.Node, name string) []string {
	var out []string
	for _, v := range cells(n.Property(name)) {
		if id, ok := v.(*ast.IdentValue); ok {
			out = append(out, id.Name)
		}
	}
	return out
}

// propBool reports whether the named valueless property is present.
func propBool(n *ast.Node, name string) bool {
	p := n.Property(name)
	return p != nil && p.IsBool()
}

// propRefList reads behavior references ('bindings = <&kp>, <&kp>;') as
// ampersand-prefixed strings.
func propRefList(n *ast.Node, name string) []string {
	var out []string
	for _, v := range cells(n.Property(name)) {
		if r, ok := v.(*ast.RefValue); ok {
			out = append(out, "&"+r.Name)
		}
	}
	return out
}

// propRaw reads the first cell of the named property rendered as source
// text, for modifier masks like (MOD_LSFT|MOD_RSFT).
func propRaw(n *ast.Node, name string) string {
	vals := cells(n.Property(name))
	if len(vals) == 0 {
		return ""
	}
	return vals[0].String()
}

// intValue interprets a cell as an integer, resolving defined identifiers
// one level.
func intValue(v ast.Value, defines Defines) (int, bool) {
	switch t := v.(type) {
	case *ast.IntValue:
		return int(t.Value), true
	case *ast.IdentValue:
		resolved := defines.Resolve(t.Name)
		if i, err := strconv.Atoi(resolved); err == nil {
			return i, true
		}
	}
	return 0, false
}

// BindingsFromValues reassembles a flattened cell sequence into bindings:
// every reference starts a new binding, and the cells that follow become
// its parameters until the next reference.
func BindingsFromValues(values []ast.Value, defines Defines) []binding.Binding {
	var out []binding.Binding
	var current *binding.Binding

	for _, v := range values {
		if r, ok := v.(*ast.RefValue); ok {
			if current != nil {
				out = append(out, *current)
			}
			current = &binding.Binding{Value: "&" + r.Name}
			continue
		}
		if current == nil {
			continue // stray cell before the first reference
		}
		current.Params = append(current.Params, valueToParam(v, defines))
	}
	if current != nil {
		out = append(out, *current)
	}
	return out
}

// bindingsFromProperty reassembles the named property's cells into
// bindings.
func bindingsFromProperty(n *ast.Node, name string, defines Defines) []binding.Binding {
	return BindingsFromValues(cells(n.Property(name)), defines)
}

// valueToParam lowers one cell to a binding parameter. Identifier
// substitution is one-level; call arguments are lowered recursively.
func valueToParam(v ast.Value, defines Defines) binding.Param {
	switch t := v.(type) {
	case *ast.IntValue:
		return binding.Param{Value: t.String()}
	case *ast.IdentValue:
		return binding.Param{Value: defines.Resolve(t.Name)}
	case *ast.CallValue:
		p := binding.Param{Value: t.Name}
		for _, arg := range t.Args {
			p.Params = append(p.Params, valueToParam(arg, defines))
		}
		return p
	case *ast.StringValue:
		return binding.Param{Value: t.Value}
	default:
		return binding.Param{Value: v.String()}
	}
}
