package layout

import (
	"strconv"

	zmkerrors "github.com/sambeau/zmklayout/pkg/zmk/errors"
)

// ValidationPipeline is an immutable fluent validator: each step returns a
// new pipeline with accumulated results.
//
//	result := l.Validation().
//	    ValidateBindings().
//	    ValidateLayerReferences().
//	    ValidateKeyPositions(0)
//	if !result.IsValid() { ... }
type ValidationPipeline struct {
	layout   *Layout
	errors   []*zmkerrors.LayoutError
	warnings []*zmkerrors.LayoutError
}

func (v *ValidationPipeline) with(errs, warns []*zmkerrors.LayoutError) *ValidationPipeline {
	return &ValidationPipeline{
		layout:   v.layout,
		errors:   append(append([]*zmkerrors.LayoutError(nil), v.errors...), errs...),
		warnings: append(append([]*zmkerrors.LayoutError(nil), v.warnings...), warns...),
	}
}

// ValidateBindings checks binding syntax and that every behavior is either
// a provider built-in or defined in the document.
func (v *ValidationPipeline) ValidateBindings() *ValidationPipeline {
	var errs []*zmkerrors.LayoutError
	doc := v.layout.doc

	builtins := map[string]bool{}
	for _, b := range v.layout.providers.Configuration.BehaviorDefinitions() {
		builtins[b.Name] = true
	}

	for _, layer := range doc.Layers {
		for _, b := range layer {
			if len(b.Value) == 0 || b.Value[0] != '&' {
				errs = append(errs, zmkerrors.New("VALIDATE-0006", map[string]any{"Binding": b.Value}))
				continue
			}
			behavior := b.Behavior()
			if !builtins[behavior] && !doc.HasBehavior(behavior) {
				errs = append(errs, zmkerrors.New("VALIDATE-0007", map[string]any{
					"Binding": b.String(), "Behavior": behavior,
				}))
			}
		}
	}
	return v.with(errs, nil)
}

// layerSwitchBehaviors take a layer index as their first parameter.
var layerSwitchBehaviors = map[string]bool{
	"mo": true, "to": true, "tog": true, "lt": true, "sl": true,
}

// ValidateLayerReferences checks combo layer indices and numeric layer
// parameters of layer-switching bindings.
func (v *ValidationPipeline) ValidateLayerReferences() *ValidationPipeline {
	var errs, warns []*zmkerrors.LayoutError
	doc := v.layout.doc
	count := len(doc.LayerNames)

	for _, c := range doc.Combos {
		for _, idx := range c.Layers {
			if idx < 0 || idx >= count {
				errs = append(errs, zmkerrors.New("VALIDATE-0003", map[string]any{
					"Name": c.Name, "Index": idx, "Max": count,
				}))
			}
		}
	}

	for _, layer := range doc.Layers {
		for _, b := range layer {
			if !layerSwitchBehaviors[b.Behavior()] || len(b.Params) == 0 {
				continue
			}
			if idx, err := strconv.Atoi(b.Params[0].Value); err == nil {
				if idx < 0 || idx >= count {
					warns = append(warns, zmkerrors.NewSimple(zmkerrors.ClassValidate,
						"binding '"+b.String()+"' references layer "+b.Params[0].Value+" of "+strconv.Itoa(count)))
				}
			}
		}
	}
	return v.with(errs, warns)
}

// ValidateKeyPositions checks combo key positions and layer sizes against
// the key count; pass 0 to use the provider's validation rules.
func (v *ValidationPipeline) ValidateKeyPositions(maxKeys int) *ValidationPipeline {
	if maxKeys <= 0 {
		maxKeys = v.layout.providers.Configuration.ValidationRules().KeyCount
	}
	var errs, warns []*zmkerrors.LayoutError
	doc := v.layout.doc

	for _, c := range doc.Combos {
		for _, pos := range c.KeyPositions {
			if pos < 0 || pos >= maxKeys {
				errs = append(errs, zmkerrors.New("VALIDATE-0002", map[string]any{
					"Name": c.Name, "Position": pos, "Max": maxKeys,
				}))
			}
		}
	}

	for i, layer := range doc.Layers {
		if len(layer) > maxKeys {
			name := ""
			if i < len(doc.LayerNames) {
				name = doc.LayerNames[i]
			}
			warns = append(warns, zmkerrors.NewSimple(zmkerrors.ClassValidate,
				"layer '"+name+"' has "+strconv.Itoa(len(layer))+" bindings for "+strconv.Itoa(maxKeys)+" keys"))
		}
	}
	return v.with(errs, warns)
}

// ValidateBehaviorReferences checks structural behavior invariants:
// hold-tap and mod-morph binding counts, tap-dance range.
func (v *ValidationPipeline) ValidateBehaviorReferences() *ValidationPipeline {
	var errs []*zmkerrors.LayoutError
	doc := v.layout.doc

	for _, ht := range doc.HoldTaps {
		if len(ht.Bindings) != 2 {
			errs = append(errs, zmkerrors.New("VALIDATE-0004", map[string]any{
				"Kind": "hold-tap", "Name": ht.Name, "Want": "exactly 2", "Got": len(ht.Bindings),
			}))
		}
	}
	for _, mm := range doc.ModMorphs {
		if len(mm.Bindings) != 2 {
			errs = append(errs, zmkerrors.New("VALIDATE-0004", map[string]any{
				"Kind": "mod-morph", "Name": mm.Name, "Want": "exactly 2", "Got": len(mm.Bindings),
			}))
		}
	}
	for _, td := range doc.TapDances {
		if len(td.Bindings) < 2 || len(td.Bindings) > 5 {
			errs = append(errs, zmkerrors.New("VALIDATE-0004", map[string]any{
				"Kind": "tap-dance", "Name": td.Name, "Want": "2 to 5", "Got": len(td.Bindings),
			}))
		}
	}
	return v.with(errs, nil)
}

// ValidateMetadata checks uuid and locale fields; malformed values are
// warnings.
func (v *ValidationPipeline) ValidateMetadata() *ValidationPipeline {
	var warns []*zmkerrors.LayoutError
	doc := v.layout.doc

	warns = append(warns, doc.ValidateUUIDs()...)
	if err := doc.ValidateLocale(); err != nil {
		warns = append(warns, err)
	}
	return v.with(nil, warns)
}

// IsValid reports whether no errors have accumulated. Warnings do not
// affect validity.
func (v *ValidationPipeline) IsValid() bool {
	return len(v.errors) == 0
}

// Errors returns the accumulated errors.
func (v *ValidationPipeline) Errors() []*zmkerrors.LayoutError {
	return append([]*zmkerrors.LayoutError(nil), v.errors...)
}

// Warnings returns the accumulated warnings.
func (v *ValidationPipeline) Warnings() []*zmkerrors.LayoutError {
	return append([]*zmkerrors.LayoutError(nil), v.warnings...)
}

// Summary bundles the pipeline's results.
type Summary struct {
	Errors   []*zmkerrors.LayoutError
	Warnings []*zmkerrors.LayoutError
	IsValid  bool
}

// Summary returns the accumulated results.
func (v *ValidationPipeline) Summary() Summary {
	return Summary{
		Errors:   v.Errors(),
		Warnings: v.Warnings(),
		IsValid:  v.IsValid(),
	}
}
