package layout

import (
	zmkerrors "github.com/sambeau/zmklayout/pkg/zmk/errors"
	"github.com/sambeau/zmklayout/pkg/zmk/model"
)

// defaultTappingTermMs is applied to hold-taps and tap-dances added
// without an explicit tapping term.
const defaultTappingTermMs = 200

// defaultComboTimeoutMs is applied to combos added without a timeout.
const defaultComboTimeoutMs = 50

// BehaviorManager exposes behavior-level operations. Every mutation
// returns a new Layout.
type BehaviorManager struct {
	layout *Layout
}

func intPtr(v int) *int { return &v }

// AddHoldTap adds a hold-tap. An empty bindings list defaults to
// ["&kp", "&kp"]; a missing tapping term defaults to 200ms.
func (m *BehaviorManager) AddHoldTap(ht model.HoldTap) (*Layout, error) {
	if len(ht.Bindings) == 0 {
		ht.Bindings = []string{"&kp", "&kp"}
	}
	if ht.TappingTermMs == nil {
		ht.TappingTermMs = intPtr(defaultTappingTermMs)
	}
	if len(ht.Bindings) != 2 {
		return nil, zmkerrors.New("VALIDATE-0004", map[string]any{
			"Kind": "hold-tap", "Name": ht.Name, "Want": "exactly 2", "Got": len(ht.Bindings),
		})
	}
	return m.layout.mutate(func(doc *model.Document) *zmkerrors.LayoutError {
		if err := m.checkName(doc, ht.Name); err != nil {
			return err
		}
		doc.HoldTaps = append(doc.HoldTaps, ht)
		return nil
	})
}

// AddCombo adds a combo. A missing timeout defaults to 50ms. Key positions
// are checked against the provider's key count.
func (m *BehaviorManager) AddCombo(c model.Combo) (*Layout, error) {
	if c.TimeoutMs == nil {
		c.TimeoutMs = intPtr(defaultComboTimeoutMs)
	}
	rules := m.layout.providers.Configuration.ValidationRules()
	for _, pos := range c.KeyPositions {
		if pos < 0 || (rules.KeyCount > 0 && pos >= rules.KeyCount) {
			return nil, zmkerrors.New("VALIDATE-0002", map[string]any{
				"Name": c.Name, "Position": pos, "Max": rules.KeyCount,
			})
		}
	}
	return m.layout.mutate(func(doc *model.Document) *zmkerrors.LayoutError {
		if err := m.checkName(doc, c.Name); err != nil {
			return err
		}
		for _, idx := range c.Layers {
			if idx < 0 || idx >= len(doc.LayerNames) {
				return zmkerrors.New("VALIDATE-0003", map[string]any{
					"Name": c.Name, "Index": idx, "Max": len(doc.LayerNames),
				})
			}
		}
		doc.Combos = append(doc.Combos, c)
		return nil
	})
}

// AddMacro adds a macro.
func (m *BehaviorManager) AddMacro(mac model.Macro) (*Layout, error) {
	return m.layout.mutate(func(doc *model.Document) *zmkerrors.LayoutError {
		if err := m.checkName(doc, mac.Name); err != nil {
			return err
		}
		doc.Macros = append(doc.Macros, mac)
		return nil
	})
}

// AddTapDance adds a tap-dance. It must have 2 to 5 bindings; a missing
// tapping term defaults to 200ms.
func (m *BehaviorManager) AddTapDance(td model.TapDance) (*Layout, error) {
	if td.TappingTermMs == nil {
		td.TappingTermMs = intPtr(defaultTappingTermMs)
	}
	if len(td.Bindings) < 2 || len(td.Bindings) > 5 {
		return nil, zmkerrors.New("VALIDATE-0004", map[string]any{
			"Kind": "tap-dance", "Name": td.Name, "Want": "2 to 5", "Got": len(td.Bindings),
		})
	}
	return m.layout.mutate(func(doc *model.Document) *zmkerrors.LayoutError {
		if err := m.checkName(doc, td.Name); err != nil {
			return err
		}
		doc.TapDances = append(doc.TapDances, td)
		return nil
	})
}

// AddStickyKey adds a sticky key.
func (m *BehaviorManager) AddStickyKey(sk model.StickyKey) (*Layout, error) {
	if len(sk.Bindings) == 0 {
		sk.Bindings = []string{"&kp"}
	}
	return m.layout.mutate(func(doc *model.Document) *zmkerrors.LayoutError {
		if err := m.checkName(doc, sk.Name); err != nil {
			return err
		}
		doc.StickyKeys = append(doc.StickyKeys, sk)
		return nil
	})
}

// AddCapsWord adds a caps-word.
func (m *BehaviorManager) AddCapsWord(cw model.CapsWord) (*Layout, error) {
	return m.layout.mutate(func(doc *model.Document) *zmkerrors.LayoutError {
		if err := m.checkName(doc, cw.Name); err != nil {
			return err
		}
		doc.CapsWords = append(doc.CapsWords, cw)
		return nil
	})
}

// AddModMorph adds a mod-morph. It must have exactly two bindings.
func (m *BehaviorManager) AddModMorph(mm model.ModMorph) (*Layout, error) {
	if len(mm.Bindings) != 2 {
		return nil, zmkerrors.New("VALIDATE-0004", map[string]any{
			"Kind": "mod-morph", "Name": mm.Name, "Want": "exactly 2", "Got": len(mm.Bindings),
		})
	}
	return m.layout.mutate(func(doc *model.Document) *zmkerrors.LayoutError {
		if err := m.checkName(doc, mm.Name); err != nil {
			return err
		}
		doc.ModMorphs = append(doc.ModMorphs, mm)
		return nil
	})
}

func (m *BehaviorManager) checkName(doc *model.Document, name string) *zmkerrors.LayoutError {
	if !model.IsValidIdentifier(name) {
		return zmkerrors.NewInvalidIdentifier(name)
	}
	if doc.HasBehavior(name) {
		return zmkerrors.NewSimple(zmkerrors.ClassValidate, "behavior '"+name+"' already exists")
	}
	return nil
}

// HasHoldTap reports whether a hold-tap with the name exists.
func (m *BehaviorManager) HasHoldTap(name string) bool {
	for _, b := range m.layout.doc.HoldTaps {
		if b.Name == name {
			return true
		}
	}
	return false
}

// HasCombo reports whether a combo with the name exists.
func (m *BehaviorManager) HasCombo(name string) bool {
	for _, b := range m.layout.doc.Combos {
		if b.Name == name {
			return true
		}
	}
	return false
}

// HasMacro reports whether a macro with the name exists.
func (m *BehaviorManager) HasMacro(name string) bool {
	for _, b := range m.layout.doc.Macros {
		if b.Name == name {
			return true
		}
	}
	return false
}

// HasTapDance reports whether a tap-dance with the name exists.
func (m *BehaviorManager) HasTapDance(name string) bool {
	for _, b := range m.layout.doc.TapDances {
		if b.Name == name {
			return true
		}
	}
	return false
}

// RemoveHoldTap removes the named hold-tap.
func (m *BehaviorManager) RemoveHoldTap(name string) (*Layout, error) {
	return m.layout.mutate(func(doc *model.Document) *zmkerrors.LayoutError {
		for i, b := range doc.HoldTaps {
			if b.Name == name {
				doc.HoldTaps = append(doc.HoldTaps[:i], doc.HoldTaps[i+1:]...)
				return nil
			}
		}
		return notFound(name)
	})
}

// RemoveCombo removes the named combo.
func (m *BehaviorManager) RemoveCombo(name string) (*Layout, error) {
	return m.layout.mutate(func(doc *model.Document) *zmkerrors.LayoutError {
		for i, b := range doc.Combos {
			if b.Name == name {
				doc.Combos = append(doc.Combos[:i], doc.Combos[i+1:]...)
				return nil
			}
		}
		return notFound(name)
	})
}

// RemoveMacro removes the named macro.
func (m *BehaviorManager) RemoveMacro(name string) (*Layout, error) {
	return m.layout.mutate(func(doc *model.Document) *zmkerrors.LayoutError {
		for i, b := range doc.Macros {
			if b.Name == name {
				doc.Macros = append(doc.Macros[:i], doc.Macros[i+1:]...)
				return nil
			}
		}
		return notFound(name)
	})
}

// RemoveTapDance removes the named tap-dance.
func (m *BehaviorManager) RemoveTapDance(name string) (*Layout, error) {
	return m.layout.mutate(func(doc *model.Document) *zmkerrors.LayoutError {
		for i, b := range doc.TapDances {
			if b.Name == name {
				doc.TapDances = append(doc.TapDances[:i], doc.TapDances[i+1:]...)
				return nil
			}
		}
		return notFound(name)
	})
}

// ClearAll removes every user-defined behavior.
func (m *BehaviorManager) ClearAll() (*Layout, error) {
	return m.layout.mutate(func(doc *model.Document) *zmkerrors.LayoutError {
		doc.HoldTaps = nil
		doc.Combos = nil
		doc.Macros = nil
		doc.TapDances = nil
		doc.StickyKeys = nil
		doc.CapsWords = nil
		doc.ModMorphs = nil
		doc.InputListeners = nil
		return nil
	})
}

func notFound(name string) *zmkerrors.LayoutError {
	return zmkerrors.NewSimple(zmkerrors.ClassValidate, "behavior '"+name+"' not found")
}
