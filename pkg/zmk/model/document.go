// Package model defines the LayoutDocument: the canonical in-memory and
// dictionary representation of a keymap.
package model

import (
	"regexp"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/sambeau/zmklayout/pkg/zmk/binding"
	zmkerrors "github.com/sambeau/zmklayout/pkg/zmk/errors"
)

// Document is the top-level layout model. Layers are parallel to
// LayerNames: position i in Layers[k] is physical key position i of the
// layer named LayerNames[k].
type Document struct {
	Keyboard string `json:"keyboard"`
	Title    string `json:"title"`

	FirmwareAPIVersion string         `json:"firmwareApiVersion,omitempty"`
	Locale             string         `json:"locale,omitempty"`
	UUID               string         `json:"uuid,omitempty"`
	ParentUUID         string         `json:"parentUuid,omitempty"`
	Date               string         `json:"date,omitempty"`
	Creator            string         `json:"creator,omitempty"`
	Notes              string         `json:"notes,omitempty"`
	Tags               []string       `json:"tags,omitempty"`
	Variables          map[string]any `json:"variables,omitempty"`
	Version            string         `json:"version,omitempty"`
	BaseVersion        string         `json:"baseVersion,omitempty"`
	BaseLayout         string         `json:"baseLayout,omitempty"`

	LayerNames       []string            `json:"layerNames"`
	ConfigParameters []ConfigParameter   `json:"configParameters,omitempty"`
	Layers           [][]binding.Binding `json:"layers"`

	HoldTaps       []HoldTap       `json:"holdTaps,omitempty"`
	Combos         []Combo         `json:"combos,omitempty"`
	Macros         []Macro         `json:"macros,omitempty"`
	TapDances      []TapDance      `json:"tapDances,omitempty"`
	StickyKeys     []StickyKey     `json:"stickyKeys,omitempty"`
	CapsWords      []CapsWord      `json:"capsWords,omitempty"`
	ModMorphs      []ModMorph      `json:"modMorphs,omitempty"`
	InputListeners []InputListener `json:"inputListeners,omitempty"`

	// Escape hatches carried verbatim into generated keymaps.
	CustomDefinedBehaviors string `json:"customDefinedBehaviors,omitempty"`
	CustomDevicetree       string `json:"customDevicetree,omitempty"`
}

// New creates an empty document for the given keyboard.
func New(keyboard, title string) *Document {
	if title == "" {
		title = "New " + keyboard + " Layout"
	}
	return &Document{
		Keyboard:   keyboard,
		Title:      title,
		LayerNames: []string{},
		Layers:     [][]binding.Binding{},
	}
}

var cIdentRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsValidIdentifier reports whether name is a valid C identifier.
func IsValidIdentifier(name string) bool {
	return cIdentRe.MatchString(name)
}

// LayerIndex returns the index of the named layer, or -1.
func (d *Document) LayerIndex(name string) int {
	for i, n := range d.LayerNames {
		if n == name {
			return i
		}
	}
	return -1
}

// HasBehavior reports whether the document defines a behavior with the
// given name (without ampersand), across all behavior kinds.
func (d *Document) HasBehavior(name string) bool {
	for _, b := range d.HoldTaps {
		if b.Name == name {
			return true
		}
	}
	for _, b := range d.Macros {
		if b.Name == name {
			return true
		}
	}
	for _, b := range d.TapDances {
		if b.Name == name {
			return true
		}
	}
	for _, b := range d.StickyKeys {
		if b.Name == name {
			return true
		}
	}
	for _, b := range d.CapsWords {
		if b.Name == name {
			return true
		}
	}
	for _, b := range d.ModMorphs {
		if b.Name == name {
			return true
		}
	}
	return false
}

// EnsureUUID assigns a fresh uuid when the document has none.
func (d *Document) EnsureUUID() {
	if d.UUID == "" {
		d.UUID = uuid.NewString()
	}
}

// NormalizeDate re-renders the free-form date field as RFC 3339. Unparseable
// dates are left untouched.
func (d *Document) NormalizeDate() {
	if d.Date == "" {
		return
	}
	if t, err := dateparse.ParseAny(d.Date); err == nil {
		d.Date = t.Format(time.RFC3339)
	}
}

// Stamp sets the date field to the given time.
func (d *Document) Stamp(t time.Time) {
	d.Date = t.Format(time.RFC3339)
}

// Clone returns a copy of the document made as Copy makes it. The copy receives a fresh
// uuid, and its parentUuid points back at the original.
func (d *Document) Clone() *Document {
	c := d.Copy()
	c.ParentUUID = d.UUID
	c.UUID = uuid.NewString()
	return c
}

// Copy returns a copy of the document with identical metadata. Tags,
// config parameters, variables, layer names, each layer and each behavior
// list get their own storage; their elements are copied by value, so slices
// nested inside a binding or a behavior record (binding params, hold-tap
// bindings, combo key positions and the like) are shared with the original.
func (d *Document) Copy() *Document {
	c := *d

	c.Tags = append([]string(nil), d.Tags...)
	c.ConfigParameters = append([]ConfigParameter(nil), d.ConfigParameters...)
	if d.Variables != nil {
		c.Variables = make(map[string]any, len(d.Variables))
		for k, v := range d.Variables {
			c.Variables[k] = v
		}
	}

	// LayerNames and Layers marshal without omitempty, so empty slices
	// must stay non-nil through a copy.
	c.LayerNames = make([]string, len(d.LayerNames))
	copy(c.LayerNames, d.LayerNames)
	c.Layers = make([][]binding.Binding, len(d.Layers))
	for i, layer := range d.Layers {
		nl := make([]binding.Binding, len(layer))
		copy(nl, layer)
		c.Layers[i] = nl
	}

	c.HoldTaps = append([]HoldTap(nil), d.HoldTaps...)
	c.Combos = append([]Combo(nil), d.Combos...)
	c.Macros = append([]Macro(nil), d.Macros...)
	c.TapDances = append([]TapDance(nil), d.TapDances...)
	c.StickyKeys = append([]StickyKey(nil), d.StickyKeys...)
	c.CapsWords = append([]CapsWord(nil), d.CapsWords...)
	c.ModMorphs = append([]ModMorph(nil), d.ModMorphs...)
	c.InputListeners = append([]InputListener(nil), d.InputListeners...)

	return &c
}

// Validate checks the document's structural invariants and returns every
// violation found. maxKeyPositions bounds combo key positions; pass 0 to
// skip that check.
func (d *Document) Validate(maxKeyPositions int) []*zmkerrors.LayoutError {
	var errs []*zmkerrors.LayoutError

	if len(d.LayerNames) != len(d.Layers) {
		errs = append(errs, zmkerrors.New("VALIDATE-0001", map[string]any{
			"Names":  len(d.LayerNames),
			"Layers": len(d.Layers),
		}))
	}

	seen := map[string]bool{}
	for _, name := range d.LayerNames {
		if seen[name] {
			errs = append(errs, zmkerrors.New("VALIDATE-0005", map[string]any{"Name": name}))
		}
		seen[name] = true
		if !IsValidIdentifier(name) {
			errs = append(errs, zmkerrors.NewInvalidIdentifier(name))
		}
	}

	for _, layer := range d.Layers {
		for _, b := range layer {
			if len(b.Value) == 0 || b.Value[0] != '&' {
				errs = append(errs, zmkerrors.New("VALIDATE-0006", map[string]any{"Binding": b.Value}))
			}
		}
	}

	for _, c := range d.Combos {
		for _, pos := range c.KeyPositions {
			if maxKeyPositions > 0 && (pos < 0 || pos >= maxKeyPositions) {
				errs = append(errs, zmkerrors.New("VALIDATE-0002", map[string]any{
					"Name": c.Name, "Position": pos, "Max": maxKeyPositions,
				}))
			}
		}
		for _, idx := range c.Layers {
			if idx < 0 || idx >= len(d.LayerNames) {
				errs = append(errs, zmkerrors.New("VALIDATE-0003", map[string]any{
					"Name": c.Name, "Index": idx, "Max": len(d.LayerNames),
				}))
			}
		}
	}

	for _, ht := range d.HoldTaps {
		if len(ht.Bindings) != 2 {
			errs = append(errs, zmkerrors.New("VALIDATE-0004", map[string]any{
				"Kind": "hold-tap", "Name": ht.Name, "Want": "exactly 2", "Got": len(ht.Bindings),
			}))
		}
	}
	for _, mm := range d.ModMorphs {
		if len(mm.Bindings) != 2 {
			errs = append(errs, zmkerrors.New("VALIDATE-0004", map[string]any{
				"Kind": "mod-morph", "Name": mm.Name, "Want": "exactly 2", "Got": len(mm.Bindings),
			}))
		}
	}
	for _, td := range d.TapDances {
		if len(td.Bindings) < 2 || len(td.Bindings) > 5 {
			errs = append(errs, zmkerrors.New("VALIDATE-0004", map[string]any{
				"Kind": "tap-dance", "Name": td.Name, "Want": "2 to 5", "Got": len(td.Bindings),
			}))
		}
	}

	return errs
}

// ValidateLocale checks the locale field against BCP 47. An empty locale is
// fine; a malformed one is reported as a warning-grade error.
func (d *Document) ValidateLocale() *zmkerrors.LayoutError {
	if d.Locale == "" {
		return nil
	}
	if _, err := language.Parse(d.Locale); err != nil {
		return zmkerrors.NewSimple(zmkerrors.ClassValidate, "unrecognized locale '"+d.Locale+"'")
	}
	return nil
}

// ValidateUUIDs checks that uuid and parentUuid, when present, are well
// formed.
func (d *Document) ValidateUUIDs() []*zmkerrors.LayoutError {
	var errs []*zmkerrors.LayoutError
	if d.UUID != "" {
		if _, err := uuid.Parse(d.UUID); err != nil {
			errs = append(errs, zmkerrors.NewSimple(zmkerrors.ClassValidate, "malformed uuid '"+d.UUID+"'"))
		}
	}
	if d.ParentUUID != "" {
		if _, err := uuid.Parse(d.ParentUUID); err != nil {
			errs = append(errs, zmkerrors.NewSimple(zmkerrors.ClassValidate, "malformed parentUuid '"+d.ParentUUID+"'"))
		}
	}
	return errs
}
