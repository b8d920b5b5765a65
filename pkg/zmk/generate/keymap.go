package generate

import (
	"fmt"
	"strings"

	"github.com/sambeau/zmklayout/pkg/zmk/binding"
	zmkerrors "github.com/sambeau/zmklayout/pkg/zmk/errors"
	"github.com/sambeau/zmklayout/pkg/zmk/model"
)

// bindingRowIndent is the fixed indentation of binding grid rows: three
// levels of four spaces.
const bindingRowIndent = "            "

// KeymapNode emits the 'keymap { ... };' block with one child per layer,
// ready to be spliced into a root node. Layer node names are kept verbatim;
// the binding grid follows the provider's row layout.
func (g *Generator) KeymapNode(doc *model.Document) (string, error) {
	compat := g.config.CompatibleStrings()
	format := g.config.FormattingOptions()

	var sb strings.Builder
	sb.WriteString(g.indent(1) + "keymap {\n")
	g.prop(&sb, 2, "compatible = %q;", compat.Keymap)

	for i, name := range doc.LayerNames {
		if !model.IsValidIdentifier(name) {
			return "", zmkerrors.NewInvalidIdentifier(name)
		}
		var layer []binding.Binding
		if i < len(doc.Layers) {
			layer = doc.Layers[i]
		}

		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s%s {\n", g.indent(2), name))
		sb.WriteString(g.indent(3) + "bindings = <\n")
		sb.WriteString(formatBindingGrid(layer, format.Rows, format.KeyGap))
		sb.WriteString(g.indent(3) + ">;\n")
		sb.WriteString(g.indent(2) + "};\n")
	}

	sb.WriteString(g.indent(1) + "};")
	return sb.String(), nil
}

// formatBindingGrid lays bindings out row by row. Each row is one line,
// with every binding padded to the row's widest binding plus the key gap.
func formatBindingGrid(layer []binding.Binding, rows []int, keyGap int) string {
	if len(layer) == 0 {
		return ""
	}
	if keyGap <= 0 {
		keyGap = 1
	}

	var sb strings.Builder
	for _, row := range splitRows(layer, rows) {
		width := 0
		rendered := make([]string, len(row))
		for i, b := range row {
			rendered[i] = b.String()
			if len(rendered[i]) > width {
				width = len(rendered[i])
			}
		}
		width += keyGap

		sb.WriteString(bindingRowIndent)
		for i, cell := range rendered {
			if i == len(rendered)-1 {
				sb.WriteString(cell)
				break
			}
			sb.WriteString(cell + strings.Repeat(" ", width-len(cell)))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// splitRows chunks the layer by the row layout; leftover bindings form a
// final row, and an empty layout yields a single row.
func splitRows(layer []binding.Binding, rows []int) [][]binding.Binding {
	if len(rows) == 0 {
		return [][]binding.Binding{layer}
	}
	var out [][]binding.Binding
	rest := layer
	for _, n := range rows {
		if len(rest) == 0 {
			break
		}
		if n > len(rest) {
			n = len(rest)
		}
		out = append(out, rest[:n])
		rest = rest[n:]
	}
	if len(rest) > 0 {
		out = append(out, rest)
	}
	return out
}
