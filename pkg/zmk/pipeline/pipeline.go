// Package pipeline orchestrates parsing: tokenize, parse, extract and
// validate, in one of two modes. Full mode treats the input as a complete
// standalone keymap; Template mode treats it as a user fragment inside a
// known template, dropping include boilerplate and rendering template
// syntax before parsing.
package pipeline

import (
	"strings"

	"github.com/sambeau/zmklayout/pkg/zmk/ast"
	zmkerrors "github.com/sambeau/zmklayout/pkg/zmk/errors"
	"github.com/sambeau/zmklayout/pkg/zmk/extract"
	"github.com/sambeau/zmklayout/pkg/zmk/model"
	"github.com/sambeau/zmklayout/pkg/zmk/parser"
	"github.com/sambeau/zmklayout/pkg/zmk/providers"
)

// Mode selects the parsing strategy.
type Mode string

const (
	// ModeFull parses a standalone keymap file.
	ModeFull Mode = "full"
	// ModeTemplate parses a user fragment inside a known template.
	ModeTemplate Mode = "template"
)

// ExtractedSection is one named piece recognised during extraction.
// Content holds the processed form (names, defines map); Raw keeps the
// source text for diagnostics.
type ExtractedSection struct {
	Name    string
	Kind    string // "keymap", "behaviors", "combos", "macros", "defines"
	Content any
	Raw     string
}

// Result carries the outcome of one parse.
type Result struct {
	Success  bool
	Layout   *model.Document
	Errors   []*zmkerrors.LayoutError
	Warnings []*zmkerrors.LayoutError
	Mode     Mode
	Sections map[string]ExtractedSection
}

// Processor runs the parse pipeline against one provider bundle.
type Processor struct {
	providers *providers.Providers
}

// New creates a processor. A nil bundle uses the defaults.
func New(p *providers.Providers) *Processor {
	if p == nil {
		p = providers.Default()
	}
	return &Processor{providers: p}
}

// Parse runs the pipeline on keymap source text.
func (pr *Processor) Parse(content string, mode Mode) *Result {
	res := &Result{Mode: mode, Sections: map[string]ExtractedSection{}}
	log := pr.providers.Logger

	if mode == ModeTemplate {
		content = pr.prepareTemplate(content, res)
	}

	doc, parseErrs := parser.ParseSafe(content)
	for _, err := range parseErrs {
		res.Errors = append(res.Errors, err)
	}

	compat := pr.providers.Configuration.CompatibleStrings()
	extracted := extract.Extract(doc, extract.Options{
		Compatibles: compat,
		Logger:      log,
	})
	res.Warnings = append(res.Warnings, extracted.Warnings...)
	res.Layout = extracted.Document

	pr.recordSections(doc, compat, res)

	// A full parse of a keymap must actually find a keymap.
	if mode == ModeFull && len(res.Layout.LayerNames) == 0 {
		if _, found := res.Sections["keymap"]; !found {
			res.Errors = append(res.Errors, zmkerrors.New("EXTRACT-0002", map[string]any{
				"Compatible": compat.Keymap,
			}))
		}
	}

	if ctx := pr.providers.Configuration.TemplateContext(); res.Layout.Keyboard == "" {
		if kb, ok := ctx["keyboard"].(string); ok {
			res.Layout.Keyboard = kb
		}
	}
	if res.Layout.Title == "" {
		res.Layout.Title = res.Layout.Keyboard + " keymap"
	}

	res.Success = len(res.Errors) == 0
	log.Info("parsed keymap",
		"mode", string(mode),
		"layers", len(res.Layout.LayerNames),
		"errors", len(res.Errors),
		"warnings", len(res.Warnings))
	return res
}

// prepareTemplate strips include boilerplate named by the provider and
// renders template syntax against the provider's context.
func (pr *Processor) prepareTemplate(content string, res *Result) string {
	includes := pr.providers.Configuration.IncludeFiles()

	var kept []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#include") && matchesInclude(trimmed, includes) {
			continue
		}
		kept = append(kept, line)
	}
	content = strings.Join(kept, "\n")

	if pr.providers.Template.HasTemplateSyntax(content) {
		rendered, err := pr.providers.Template.Render(content, pr.providers.Configuration.TemplateContext())
		if err != nil {
			res.Warnings = append(res.Warnings, zmkerrors.NewSimple(zmkerrors.ClassProvider,
				"template rendering failed: "+err.Error()))
		} else {
			content = rendered
		}
	}
	return content
}

func matchesInclude(line string, includes []string) bool {
	for _, inc := range includes {
		if strings.Contains(line, inc) {
			return true
		}
	}
	return false
}

// recordSections captures each recognised section: the processed content
// (names, defines) alongside its raw source.
func (pr *Processor) recordSections(doc *ast.Document, compat providers.CompatibleStrings, res *Result) {
	record := func(name, kind string, content any, n *ast.Node) {
		res.Sections[name] = ExtractedSection{Name: name, Kind: kind, Content: content, Raw: n.String()}
	}

	layout := res.Layout
	for _, n := range ast.FindNodesCompatible(doc, compat.Keymap) {
		record("keymap", "keymap", layout.LayerNames, n)
	}
	for _, n := range ast.FindNodesNamed(doc, "behaviors") {
		names := make([]string, 0, len(layout.HoldTaps))
		for _, ht := range layout.HoldTaps {
			names = append(names, ht.Name)
		}
		record("behaviors", "behaviors", names, n)
	}
	for _, n := range ast.FindNodesCompatible(doc, compat.Combos) {
		names := make([]string, 0, len(layout.Combos))
		for _, c := range layout.Combos {
			names = append(names, c.Name)
		}
		record("combos", "combos", names, n)
	}
	for _, n := range ast.FindNodesNamed(doc, "macros") {
		names := make([]string, 0, len(layout.Macros))
		for _, m := range layout.Macros {
			names = append(names, m.Name)
		}
		record("macros", "macros", names, n)
	}

	if defines := extract.CollectDefines(doc); len(defines) > 0 {
		var sb strings.Builder
		for _, cond := range doc.AllConditionals() {
			if cond.Directive == "define" {
				sb.WriteString(cond.Raw + "\n")
			}
		}
		res.Sections["defines"] = ExtractedSection{
			Name:    "defines",
			Kind:    "defines",
			Content: defines,
			Raw:     sb.String(),
		}
	}
}
