// Package layout is the fluent mutation surface over a LayoutDocument.
//
// A Layout value is logically immutable: every mutation returns a new
// Layout sharing nothing observable with the old one. The zero-cost way to
// chain operations is to keep reassigning the returned value:
//
//	l, _ = l.Layers().Add("gaming")
//	l, _ = l.Behaviors().AddHoldTap(model.HoldTap{Name: "hm", Bindings: []string{"&kp", "&mo"}})
package layout

import (
	"github.com/sambeau/zmklayout/pkg/zmk/model"
	"github.com/sambeau/zmklayout/pkg/zmk/providers"

	zmkerrors "github.com/sambeau/zmklayout/pkg/zmk/errors"
)

// Layout wraps a LayoutDocument with the provider bundle.
type Layout struct {
	doc       *model.Document
	providers *providers.Providers
}

// New creates an empty layout for the given keyboard.
func New(keyboard, title string, p *providers.Providers) *Layout {
	if p == nil {
		p = providers.Default()
	}
	return &Layout{doc: model.New(keyboard, title), providers: p}
}

// FromDocument wraps an existing document. The document is copied, so the
// caller keeps ownership of its value.
func FromDocument(doc *model.Document, p *providers.Providers) *Layout {
	if p == nil {
		p = providers.Default()
	}
	return &Layout{doc: doc.Copy(), providers: p}
}

// FromDict builds a layout from the dictionary form, after a shape check.
func FromDict(dict map[string]any, p *providers.Providers) (*Layout, error) {
	if errs := model.ValidateDict(dict); len(errs) > 0 {
		return nil, errs[0]
	}
	doc, err := model.FromDict(dict)
	if err != nil {
		return nil, err
	}
	return FromDocument(doc, p), nil
}

// FromJSON builds a layout from JSON bytes.
func FromJSON(data []byte, p *providers.Providers) (*Layout, error) {
	doc, err := model.FromJSON(data)
	if err != nil {
		return nil, err
	}
	return FromDocument(doc, p), nil
}

// FromYAML builds a layout from YAML bytes.
func FromYAML(data []byte, p *providers.Providers) (*Layout, error) {
	doc, err := model.FromYAML(data)
	if err != nil {
		return nil, err
	}
	return FromDocument(doc, p), nil
}

// Document returns a copy of the underlying document, made by
// model.Document.Copy.
func (l *Layout) Document() *model.Document {
	return l.doc.Copy()
}

// ToDict returns the dictionary form.
func (l *Layout) ToDict() (map[string]any, error) {
	return l.doc.ToDict()
}

// ToJSON returns the document as indented JSON.
func (l *Layout) ToJSON() ([]byte, error) {
	return l.doc.ToJSON()
}

// ToYAML returns the document as YAML.
func (l *Layout) ToYAML() ([]byte, error) {
	return l.doc.ToYAML()
}

// Keyboard returns the keyboard name.
func (l *Layout) Keyboard() string {
	return l.doc.Keyboard
}

// Title returns the layout title.
func (l *Layout) Title() string {
	return l.doc.Title
}

// Providers returns the provider bundle.
func (l *Layout) Providers() *providers.Providers {
	return l.providers
}

// WithProviders returns the same layout bound to a different provider
// bundle.
func (l *Layout) WithProviders(p *providers.Providers) *Layout {
	return &Layout{doc: l.doc, providers: p}
}

// Copy returns a copy made by model.Document.Clone. The copy gets a fresh uuid with parentUuid
// pointing back at this layout.
func (l *Layout) Copy() *Layout {
	return &Layout{doc: l.doc.Clone(), providers: l.providers}
}

// Validate checks the document's invariants against the provider's
// validation rules and returns the first violation.
func (l *Layout) Validate() error {
	rules := l.providers.Configuration.ValidationRules()
	errs := l.doc.Validate(rules.KeyCount)
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// Validation starts a fluent validation pipeline.
func (l *Layout) Validation() *ValidationPipeline {
	return &ValidationPipeline{layout: l}
}

// Layers returns the layer manager.
func (l *Layout) Layers() *LayerManager {
	return &LayerManager{layout: l}
}

// Behaviors returns the behavior manager.
func (l *Layout) Behaviors() *BehaviorManager {
	return &BehaviorManager{layout: l}
}

// Export starts an export chain.
func (l *Layout) Export() *ExportManager {
	return &ExportManager{layout: l}
}

// mutate copies the document, applies fn, and wraps the result in a new
// Layout. A failing fn leaves the receiver untouched and returns no new
// layout, so documents are never observed half-modified.
func (l *Layout) mutate(fn func(doc *model.Document) *zmkerrors.LayoutError) (*Layout, error) {
	doc := l.doc.Copy()
	if err := fn(doc); err != nil {
		return nil, err
	}
	return &Layout{doc: doc, providers: l.providers}, nil
}
