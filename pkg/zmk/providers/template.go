package providers

import (
	"bytes"
	"strings"
	"text/template"

	zmkerrors "github.com/sambeau/zmklayout/pkg/zmk/errors"
)

// TemplateRenderer is the default TemplateProvider, backed by
// text/template.
type TemplateRenderer struct{}

// NewTemplateRenderer creates the default template provider.
func NewTemplateRenderer() *TemplateRenderer {
	return &TemplateRenderer{}
}

// Render executes the template against the context dictionary.
func (r *TemplateRenderer) Render(tmplStr string, context map[string]any) (string, error) {
	tmpl, err := template.New("keymap").Option("missingkey=zero").Parse(tmplStr)
	if err != nil {
		return "", zmkerrors.New("PROVIDER-0001", map[string]any{
			"Provider": "template",
			"Reason":   err.Error(),
		})
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, context); err != nil {
		return "", zmkerrors.New("PROVIDER-0001", map[string]any{
			"Provider": "template",
			"Reason":   err.Error(),
		})
	}
	return buf.String(), nil
}

// HasTemplateSyntax reports whether the content contains template markers.
func (r *TemplateRenderer) HasTemplateSyntax(content string) bool {
	return strings.Contains(content, "{{") && strings.Contains(content, "}}")
}
