// Package extract lowers a devicetree AST into a LayoutDocument: it finds
// the keymap node and the behavior definitions, reassembles binding arrays,
// and applies simple #define substitution.
package extract

import (
	"strings"

	"github.com/sambeau/zmklayout/pkg/zmk/ast"
)

// Defines is the one-pass #define table. Substitution is one-level and
// non-recursive; conditional directives are never evaluated.
type Defines map[string]string

// CollectDefines scans every conditional in the document and records
// '#define NAME VALUE' pairs. A define without a value maps to "".
func CollectDefines(doc *ast.Document) Defines {
	defines := Defines{}
	for _, cond := range doc.AllConditionals() {
		if cond.Directive != "define" {
			continue
		}
		name := cond.Condition
		value := ""
		if i := strings.IndexAny(name, " \t"); i >= 0 {
			value = strings.TrimSpace(name[i+1:])
			name = name[:i]
		}
		if name != "" {
			defines[name] = value
		}
	}
	return defines
}

// Resolve substitutes a defined identifier once. Unknown names come back
// unchanged.
func (d Defines) Resolve(name string) string {
	if v, ok := d[name]; ok && v != "" {
		return v
	}
	return name
}
