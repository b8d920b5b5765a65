package generate

import (
	"fmt"
	"strings"

	"github.com/sambeau/zmklayout/pkg/zmk/model"
)

// Kconfig renders the document's config parameters as 'CONFIG_KEY=VALUE'
// lines, one per setting, plus the resolved settings map. Booleans render
// as y/n. Unprefixed parameter names receive the CONFIG_ prefix.
func (g *Generator) Kconfig(doc *model.Document) (string, map[string]any) {
	settings := map[string]any{}
	var sb strings.Builder

	for _, param := range doc.ConfigParameters {
		name := param.ParamName
		if name == "" {
			continue
		}
		if !strings.HasPrefix(name, "CONFIG_") {
			name = "CONFIG_" + name
		}

		value := param.Value
		if value == nil {
			if opt, ok := g.config.KconfigOptions()[name]; ok {
				value = opt.Default
			}
		}

		settings[name] = value
		sb.WriteString(name + "=" + kconfigValue(value) + "\n")
	}

	return strings.TrimRight(sb.String(), "\n"), settings
}

func kconfigValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "n"
	case bool:
		if v {
			return "y"
		}
		return "n"
	case string:
		switch v {
		case "y", "n":
			return v
		}
		return fmt.Sprintf("%q", v)
	case float64:
		return fmt.Sprintf("%d", int64(v))
	default:
		return fmt.Sprintf("%v", v)
	}
}
