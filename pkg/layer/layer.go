// Package layer defines Layer, the LayerId arena, and the predicate
// type that selects a layer from a device's active modifier/lock set.
package layer

import (
	"sort"

	"github.com/keyrx/keyrx/pkg/action"
	"github.com/keyrx/keyrx/pkg/keycode"
)

// ID is a short stable string naming a layer in the DSL source. At
// runtime it is resolved once, at load time, to an Index into the
// artifact's layer arena (spec.md §9: cyclic config references are
// resolved to indices, never kept as names on the hot path).
type ID string

// Index is the resolved arena position of a layer.
type Index uint16

// BaseIndex is the index of the always-present base layer.
const BaseIndex Index = 0

// Predicate is a set of alias indices (MD_/LK_) that must all be
// simultaneously active for the owning layer to be selected.
type Predicate struct {
	Modifiers []uint8 // MD_ alias indices, ascending
	Locks     []uint8 // LK_ alias indices, ascending
}

// Matches reports whether every alias named in p is present in the
// active modifier/lock sets.
func (p Predicate) Matches(activeModifiers, activeLocks map[uint8]struct{}) bool {
	for _, m := range p.Modifiers {
		if _, ok := activeModifiers[m]; !ok {
			return false
		}
	}
	for _, l := range p.Locks {
		if _, ok := activeLocks[l]; !ok {
			return false
		}
	}
	return true
}

// Specificity is the total number of aliases the predicate requires.
// Predicates are ordered by specificity descending (spec.md §3: "larger
// active-set first"); ties are broken by declaration order, which is
// preserved by a stable sort over the original slice order.
func (p Predicate) Specificity() int {
	return len(p.Modifiers) + len(p.Locks)
}

// Layer is a partial KeyCode -> Action mapping.
type Layer struct {
	ID      ID
	Mapping map[keycode.Code]action.Action
}

// Conditional pairs a non-base layer with the predicate that activates
// it. Index is the layer's position in the artifact's layer arena,
// carried alongside Layer so a ToggleOnTap LayerSwitch (tracked by
// index in devicestate.State.ToggledLayers) can force this
// conditional active even when its Predicate does not match.
type Conditional struct {
	Predicate Predicate
	Index     uint16
	Layer     Layer
}

// SortConditionals orders a slice of Conditional entries by descending
// predicate specificity, preserving relative (declaration) order among
// ties. Call once at artifact-load time; the engine's layer resolution
// step (spec.md §4.2 step 2) then does a single linear "first match
// wins" scan.
func SortConditionals(conds []Conditional) {
	sort.SliceStable(conds, func(i, j int) bool {
		return conds[i].Predicate.Specificity() > conds[j].Predicate.Specificity()
	})
}

// ActiveLayer returns the highest-specificity conditional layer whose
// predicate currently matches, or whose index was force-activated by a
// ToggleOnTap LayerSwitch (toggled), or ok=false if none do (caller
// should use the base layer). This is the cached `active_layer` of
// DeviceState (spec.md §3 invariants): a pure function of the sorted
// predicate list, satisfying testable property 5.
func ActiveLayer(conds []Conditional, activeModifiers, activeLocks map[uint8]struct{}, toggled map[uint16]struct{}) (Layer, bool) {
	for _, c := range conds {
		if c.Predicate.Matches(activeModifiers, activeLocks) {
			return c.Layer, true
		}
		if _, ok := toggled[c.Index]; ok {
			return c.Layer, true
		}
	}
	return Layer{}, false
}

// Lookup resolves code against active (if given) then base, falling
// back to Passthrough (spec.md §4.2 step 3).
func Lookup(active *Layer, base Layer, code keycode.Code) action.Action {
	if active != nil {
		if a, ok := active.Mapping[code]; ok {
			return a
		}
	}
	if a, ok := base.Mapping[code]; ok {
		return a
	}
	return action.Passthrough
}
