package layout

import (
	"sort"
	"strings"

	"github.com/sambeau/zmklayout/pkg/zmk/generate"
	"github.com/sambeau/zmklayout/pkg/zmk/model"
)

// ExportManager is the entry point for generating artifacts from a layout.
type ExportManager struct {
	layout *Layout
}

// Keymap starts a keymap export chain.
func (e *ExportManager) Keymap() *KeymapBuilder {
	return &KeymapBuilder{
		layout:           e.layout,
		includeHeaders:   true,
		includeBehaviors: true,
		includeCombos:    true,
		includeMacros:    true,
		includeTapDances: true,
		includeListeners: true,
		context:          map[string]any{},
	}
}

// Config starts a kconfig export chain.
func (e *ExportManager) Config() *ConfigBuilder {
	return &ConfigBuilder{layout: e.layout, options: map[string]any{}}
}

// KeymapBuilder assembles the full keymap file. All With* methods return
// the builder for chaining.
type KeymapBuilder struct {
	layout           *Layout
	includeHeaders   bool
	includeBehaviors bool
	includeCombos    bool
	includeMacros    bool
	includeTapDances bool
	includeListeners bool
	template         string
	context          map[string]any
}

// WithHeaders includes or excludes the file header and include lines.
func (b *KeymapBuilder) WithHeaders(include bool) *KeymapBuilder {
	b.includeHeaders = include
	return b
}

// WithBehaviors includes or excludes behavior definitions.
func (b *KeymapBuilder) WithBehaviors(include bool) *KeymapBuilder {
	b.includeBehaviors = include
	return b
}

// WithCombos includes or excludes combo definitions.
func (b *KeymapBuilder) WithCombos(include bool) *KeymapBuilder {
	b.includeCombos = include
	return b
}

// WithMacros includes or excludes macro definitions.
func (b *KeymapBuilder) WithMacros(include bool) *KeymapBuilder {
	b.includeMacros = include
	return b
}

// WithTapDances includes or excludes tap dance definitions.
func (b *KeymapBuilder) WithTapDances(include bool) *KeymapBuilder {
	b.includeTapDances = include
	return b
}

// WithInputListeners includes or excludes input listener nodes.
func (b *KeymapBuilder) WithInputListeners(include bool) *KeymapBuilder {
	b.includeListeners = include
	return b
}

// WithTemplate renders the given template instead of assembling the file
// directly. The template receives the generation context.
func (b *KeymapBuilder) WithTemplate(template string) *KeymapBuilder {
	b.template = template
	return b
}

// WithContext adds custom template context variables.
func (b *KeymapBuilder) WithContext(key string, value any) *KeymapBuilder {
	b.context[key] = value
	return b
}

// Generate produces the keymap text.
func (b *KeymapBuilder) Generate() (string, error) {
	doc := b.layout.doc
	p := b.layout.providers
	gen := generate.New(p.Configuration, p.Logger)

	ctx, err := b.buildContext(gen, doc)
	if err != nil {
		return "", err
	}

	if b.template != "" {
		return p.Template.Render(b.template, ctx)
	}
	return b.assemble(ctx), nil
}

// buildContext generates each DTSI section and bundles them with the
// document metadata into the template context.
func (b *KeymapBuilder) buildContext(gen *generate.Generator, doc *model.Document) (map[string]any, error) {
	layerDefines, err := gen.LayerDefines(doc.LayerNames)
	if err != nil {
		return nil, err
	}

	behaviorsDTSI := ""
	if b.includeBehaviors {
		behaviorsDTSI, err = gen.BehaviorsDTSI(doc)
		if err != nil {
			return nil, err
		}
	}

	tapDancesDTSI := ""
	if b.includeTapDances {
		tapDancesDTSI, err = gen.TapDancesDTSI(doc)
		if err != nil {
			return nil, err
		}
	}

	combosDTSI := ""
	if b.includeCombos {
		combosDTSI, err = gen.CombosDTSI(doc)
		if err != nil {
			return nil, err
		}
	}

	macrosDTSI := ""
	if b.includeMacros {
		macrosDTSI, err = gen.MacrosDTSI(doc)
		if err != nil {
			return nil, err
		}
	}

	listenersDTSI := ""
	if b.includeListeners {
		listenersDTSI, err = gen.InputListenersDTSI(doc)
		if err != nil {
			return nil, err
		}
	}

	keymapNode, err := gen.KeymapNode(doc)
	if err != nil {
		return nil, err
	}

	var includes []string
	if b.includeHeaders {
		for _, inc := range b.layout.providers.Configuration.IncludeFiles() {
			includes = append(includes, "#include <"+inc+">")
		}
	}

	ctx := map[string]any{
		"keyboard":                 doc.Keyboard,
		"title":                    doc.Title,
		"layer_names":              doc.LayerNames,
		"layer_defines":            layerDefines,
		"keymap_node":              keymapNode,
		"user_behaviors_dtsi":      behaviorsDTSI,
		"user_tap_dances_dtsi":     tapDancesDTSI,
		"combos_dtsi":              combosDTSI,
		"user_macros_dtsi":         macrosDTSI,
		"input_listeners_dtsi":     listenersDTSI,
		"resolved_includes":        strings.Join(includes, "\n"),
		"custom_defined_behaviors": doc.CustomDefinedBehaviors,
		"custom_devicetree":        doc.CustomDevicetree,
	}
	for k, v := range b.layout.providers.Configuration.TemplateContext() {
		if _, taken := ctx[k]; !taken {
			ctx[k] = v
		}
	}
	for k, v := range b.context {
		ctx[k] = v
	}
	return ctx, nil
}

// assemble joins the generated sections in file order.
func (b *KeymapBuilder) assemble(ctx map[string]any) string {
	var parts []string
	section := func(key string) string {
		s, _ := ctx[key].(string)
		return s
	}

	if b.includeHeaders {
		header := "/*\n * " + section("keyboard") + " keymap"
		if title := section("title"); title != "" {
			header += " — " + title
		}
		header += "\n * SPDX-License-Identifier: MIT\n */"
		parts = append(parts, header)
		if inc := section("resolved_includes"); inc != "" {
			parts = append(parts, inc)
		}
	}

	if kp, ok := ctx["key_position_header"].(string); ok && kp != "" {
		parts = append(parts, kp)
	}
	if s := section("layer_defines"); s != "" {
		parts = append(parts, s)
	}
	if s := section("custom_defined_behaviors"); s != "" {
		parts = append(parts, s)
	}
	if s := section("user_behaviors_dtsi"); s != "" {
		parts = append(parts, "/ {\n"+s+"\n};")
	}
	if s := section("user_tap_dances_dtsi"); s != "" {
		parts = append(parts, "/ {\n"+s+"\n};")
	}
	if s := section("combos_dtsi"); s != "" {
		parts = append(parts, s)
	}
	if s := section("user_macros_dtsi"); s != "" {
		parts = append(parts, s)
	}
	if s := section("input_listeners_dtsi"); s != "" {
		parts = append(parts, s)
	}
	if sys, ok := ctx["system_behaviors_dts"].(string); ok && sys != "" {
		parts = append(parts, sys)
	}
	if s := section("custom_devicetree"); s != "" {
		parts = append(parts, s)
	}
	parts = append(parts, "/ {\n"+section("keymap_node")+"\n};")

	return strings.Join(parts, "\n\n") + "\n"
}

// ConfigBuilder assembles the kconfig fragment.
type ConfigBuilder struct {
	layout  *Layout
	options map[string]any
}

// WithOption sets one kconfig option, overriding any document value.
func (b *ConfigBuilder) WithOption(name string, value any) *ConfigBuilder {
	b.options[name] = value
	return b
}

// WithOptions merges several kconfig options at once.
func (b *ConfigBuilder) WithOptions(options map[string]any) *ConfigBuilder {
	for name, value := range options {
		b.options[name] = value
	}
	return b
}

// Generate produces the kconfig text and the resolved settings map.
func (b *ConfigBuilder) Generate() (string, map[string]any, error) {
	doc := b.layout.doc
	if len(b.options) > 0 {
		doc = doc.Copy()
		names := make([]string, 0, len(b.options))
		for name := range b.options {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			value := b.options[name]
			replaced := false
			for i, param := range doc.ConfigParameters {
				if param.ParamName == name {
					doc.ConfigParameters[i].Value = value
					replaced = true
					break
				}
			}
			if !replaced {
				doc.ConfigParameters = append(doc.ConfigParameters, model.ConfigParameter{
					ParamName: name,
					Value:     value,
				})
			}
		}
	}

	p := b.layout.providers
	gen := generate.New(p.Configuration, p.Logger)
	text, settings := gen.Kconfig(doc)
	return text, settings, nil
}
