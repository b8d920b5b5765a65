package model

import (
	"github.com/sambeau/zmklayout/pkg/zmk/binding"
)

// HoldTap is a user-defined hold-tap behavior
// (compatible = "zmk,behavior-hold-tap").
type HoldTap struct {
	Name                    string   `json:"name"`
	Description             string   `json:"description,omitempty"`
	Bindings                []string `json:"bindings"` // exactly two behavior refs, e.g. ["&kp", "&kp"]
	TappingTermMs           *int     `json:"tappingTermMs,omitempty"`
	QuickTapMs              *int     `json:"quickTapMs,omitempty"`
	RequirePriorIdleMs      *int     `json:"requirePriorIdleMs,omitempty"`
	Flavor                  string   `json:"flavor,omitempty"`
	HoldTriggerKeyPositions []int    `json:"holdTriggerKeyPositions,omitempty"`
	HoldTriggerOnRelease    bool     `json:"holdTriggerOnRelease,omitempty"`
	RetroTap                bool     `json:"retroTap,omitempty"`
}

// Combo triggers a binding when several key positions are pressed together
// (a child of the "zmk,combos" node).
type Combo struct {
	Name               string          `json:"name"`
	Description        string          `json:"description,omitempty"`
	Binding            binding.Binding `json:"binding"`
	KeyPositions       []int           `json:"keyPositions"`
	TimeoutMs          *int            `json:"timeoutMs,omitempty"`
	Layers             []int           `json:"layers,omitempty"` // indices into LayerNames
	RequirePriorIdleMs *int            `json:"requirePriorIdleMs,omitempty"`
}

// Macro emits a scripted sequence of bindings
// (compatible = "zmk,behavior-macro", "-one-param" or "-two-param").
type Macro struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Bindings    []binding.Binding `json:"bindings"`
	WaitMs      *int              `json:"waitMs,omitempty"`
	TapMs       *int              `json:"tapMs,omitempty"`
	ParamCount  int               `json:"paramCount,omitempty"` // 0, 1 or 2
}

// TapDance selects a binding by the number of sequential taps
// (compatible = "zmk,behavior-tap-dance").
type TapDance struct {
	Name          string            `json:"name"`
	Description   string            `json:"description,omitempty"`
	Bindings      []binding.Binding `json:"bindings"` // 2 to 5 entries
	TappingTermMs *int              `json:"tappingTermMs,omitempty"`
}

// StickyKey holds a modifier until the next key press
// (compatible = "zmk,behavior-sticky-key").
type StickyKey struct {
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	Bindings        []string `json:"bindings"`
	ReleaseAfterMs  *int     `json:"releaseAfterMs,omitempty"`
	QuickRelease    bool     `json:"quickRelease,omitempty"`
	Lazy            bool     `json:"lazy,omitempty"`
	IgnoreModifiers bool     `json:"ignoreModifiers,omitempty"`
}

// CapsWord keeps caps active while typing a word
// (compatible = "zmk,behavior-caps-word").
type CapsWord struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	ContinueList []string `json:"continueList,omitempty"`
	MouseKeys    bool     `json:"mouseKeys,omitempty"`
}

// ModMorph picks one of two bindings depending on active modifiers
// (compatible = "zmk,behavior-mod-morph").
type ModMorph struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Bindings    []binding.Binding `json:"bindings"` // exactly two
	Mods        string            `json:"mods,omitempty"`
	KeepMods    string            `json:"keepMods,omitempty"`
}

// InputProcessor transforms pointer events inside an input listener.
type InputProcessor struct {
	Code   string   `json:"code"`
	Params []string `json:"params,omitempty"`
}

// InputListenerNode is one child of an input listener, optionally scoped to
// a set of layers.
type InputListenerNode struct {
	Code            string           `json:"code"`
	Description     string           `json:"description,omitempty"`
	Layers          []int            `json:"layers,omitempty"`
	InputProcessors []InputProcessor `json:"inputProcessors,omitempty"`
}

// InputListener attaches input processors to a pointing device
// (compatible = "zmk,input-listener").
type InputListener struct {
	Code            string              `json:"code"`
	InputProcessors []InputProcessor    `json:"inputProcessors,omitempty"`
	Nodes           []InputListenerNode `json:"nodes,omitempty"`
}

// ConfigParameter is one free-form kconfig item.
type ConfigParameter struct {
	ParamName   string `json:"paramName"`
	Value       any    `json:"value,omitempty"`
	Description string `json:"description,omitempty"`
}
