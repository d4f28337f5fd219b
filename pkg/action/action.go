// Package action defines the Action tagged union the remapping engine
// dispatches on, and the Layer-switch/tap-hold enums that parameterize
// it. Actions are immutable once loaded from an artifact; the engine
// never mutates an Action, only the DeviceState it is applied to.
package action

import "github.com/keyrx/keyrx/pkg/keycode"

// Kind discriminates the Action variants. Kept as a small integer
// rather than a Go interface so the engine's hot-path dispatch is a
// switch over a fixed-size tag, not a virtual call — the same choice
// the artifact's CBOR encoding makes for Operation/Status in the
// teacher's wire protocol.
type Kind uint8

const (
	// KindPassthrough emits the input key unchanged. Zero value so a
	// zeroed Action is always safe to dispatch.
	KindPassthrough Kind = 0
	KindSimple      Kind = 1
	KindTapHold     Kind = 2
	KindMacro       Kind = 3
	KindLayerSwitch Kind = 4
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindPassthrough:
		return "Passthrough"
	case KindSimple:
		return "Simple"
	case KindTapHold:
		return "TapHold"
	case KindMacro:
		return "Macro"
	case KindLayerSwitch:
		return "LayerSwitch"
	default:
		return "Unknown"
	}
}

// Flavor chooses the disambiguation rule for a pending TapHold decision.
type Flavor uint8

const (
	// HoldOnTimeout resolves only when the deadline elapses. This is
	// the baseline flavor: the reference source's implemented set of
	// flavors is an Open Question (spec.md §9), so every DSL-emitted
	// TapHold not otherwise specified is HoldOnTimeout.
	HoldOnTimeout Flavor = 0
	// HoldOnOtherKeyPress resolves to hold immediately when any other
	// key is pressed while the decision is pending.
	HoldOnOtherKeyPress Flavor = 1
	// HoldOnInterrupt resolves to hold on the first other key's release.
	HoldOnInterrupt Flavor = 2
)

// String returns the flavor name.
func (f Flavor) String() string {
	switch f {
	case HoldOnTimeout:
		return "HoldOnTimeout"
	case HoldOnOtherKeyPress:
		return "HoldOnOtherKeyPress"
	case HoldOnInterrupt:
		return "HoldOnInterrupt"
	default:
		return "Unknown"
	}
}

// LayerSwitchMode selects how a LayerSwitch action behaves.
type LayerSwitchMode uint8

const (
	// MomentaryWhileModifiersActive does nothing on its own; the layer
	// is already conditional on modifier/lock state via its predicate.
	MomentaryWhileModifiersActive LayerSwitchMode = 0
	// ToggleOnTap flips the named layer's membership in the device's
	// toggled-layers set and bumps the generation counter.
	ToggleOnTap LayerSwitchMode = 1
)

// String returns the mode name.
func (m LayerSwitchMode) String() string {
	switch m {
	case MomentaryWhileModifiersActive:
		return "MomentaryWhileModifiersActive"
	case ToggleOnTap:
		return "ToggleOnTap"
	default:
		return "Unknown"
	}
}

// MacroStep is one emitted edge in a Macro action, with a delay (in
// microseconds) measured from the previous step.
type MacroStep struct {
	Key        keycode.Code `cbor:"1,keyasint"`
	Edge       Edge         `cbor:"2,keyasint"`
	DelayMicro uint32       `cbor:"3,keyasint"`
}

// Edge is a key transition direction.
type Edge uint8

const (
	Press   Edge = 0
	Release Edge = 1
)

// String returns the edge name.
func (e Edge) String() string {
	if e == Press {
		return "Press"
	}
	return "Release"
}

// Action is the tagged union consumed by the engine. Exactly one of
// the per-kind fields is meaningful, selected by Kind; this mirrors
// the teacher's CBOR message structs (pkg/wire/message.go), which
// likewise carry an operation/status discriminant next to an
// operation-specific payload field.
type Action struct {
	Kind Kind `cbor:"1,keyasint"`

	// KindSimple
	SimpleTarget keycode.Code `cbor:"2,keyasint,omitempty"`

	// KindTapHold
	TapHoldTap         keycode.Code `cbor:"3,keyasint,omitempty"`
	TapHoldHold        keycode.Code `cbor:"4,keyasint,omitempty"`
	TapHoldThresholdMs uint16       `cbor:"5,keyasint,omitempty"`
	TapHoldFlavor      Flavor       `cbor:"6,keyasint,omitempty"`

	// KindMacro
	MacroSteps []MacroStep `cbor:"7,keyasint,omitempty"`

	// KindLayerSwitch
	LayerSwitchLayer uint16          `cbor:"8,keyasint,omitempty"` // resolved LayerId index
	LayerSwitchMode  LayerSwitchMode `cbor:"9,keyasint,omitempty"`
}

// Simple builds a KindSimple action.
func Simple(target keycode.Code) Action {
	return Action{Kind: KindSimple, SimpleTarget: target}
}

// TapHold builds a KindTapHold action.
func TapHold(tap, hold keycode.Code, thresholdMs uint16, flavor Flavor) Action {
	return Action{
		Kind:               KindTapHold,
		TapHoldTap:         tap,
		TapHoldHold:        hold,
		TapHoldThresholdMs: thresholdMs,
		TapHoldFlavor:      flavor,
	}
}

// Macro builds a KindMacro action.
func Macro(steps ...MacroStep) Action {
	return Action{Kind: KindMacro, MacroSteps: steps}
}

// LayerSwitch builds a KindLayerSwitch action. layer is the resolved
// index into the artifact's layer arena (spec.md §9: "resolve names to
// indices at load time, store indices only at runtime").
func LayerSwitch(layer uint16, mode LayerSwitchMode) Action {
	return Action{Kind: KindLayerSwitch, LayerSwitchLayer: layer, LayerSwitchMode: mode}
}

// Passthrough is the identity action.
var Passthrough = Action{Kind: KindPassthrough}
