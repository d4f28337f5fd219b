// Package devicestate holds the per-logical-device mutable state the
// remapping engine reads and updates. A State is owned exclusively by
// the dispatch worker for its device (spec.md §5); nothing in this
// package takes a lock, by design — concurrency safety comes from
// single-threaded ownership, not from synchronization here.
package devicestate

import (
	"time"

	"github.com/keyrx/keyrx/pkg/action"
	"github.com/keyrx/keyrx/pkg/keycode"
)

// Key is the stable identifier the platform adapter assigns to a
// logical device.
type Key string

// PendingTapHold is an in-flight tap/hold decision for a single source
// key.
type PendingTapHold struct {
	Source             keycode.Code
	Tap                keycode.Code
	Hold               keycode.Code
	Flavor             action.Flavor
	PressedAt          time.Time
	Deadline           time.Time
	ConsumedByDecision bool
	GenerationAtCreation uint64
}

// pressRecord remembers what a Simple/Passthrough press emitted, so the
// matching release can mirror it (spec.md §4.2 step 5, "else" branch).
type pressRecord struct {
	output keycode.Code
}

// State is the per-device mutable bundle of spec.md §3.
type State struct {
	DeviceKey Key

	// ActiveModifiers/ActiveLocks are keyed by alias index (0..255).
	ActiveModifiers map[uint8]struct{}
	ActiveLocks     map[uint8]struct{}

	// ToggledLayers holds layer-arena indices activated by a
	// ToggleOnTap LayerSwitch, independent of the predicate-driven
	// conditional layers. Indexed rather than named, per spec.md §9
	// ("resolve names to indices at load time, store indices only at
	// runtime").
	ToggledLayers map[uint16]struct{}

	Pending map[keycode.Code]*PendingTapHold

	// pressed records, per source key, what output key is currently
	// held down so Release can mirror it symmetrically.
	pressed map[keycode.Code]pressRecord

	// Generation increments on every layer switch and on artifact
	// reload; it invalidates in-flight tap-hold decisions (spec.md §3,
	// §4.2 step 1).
	Generation uint64
}

// New creates an empty State for the given device key.
func New(key Key) *State {
	return &State{
		DeviceKey:       key,
		ActiveModifiers: make(map[uint8]struct{}),
		ActiveLocks:     make(map[uint8]struct{}),
		ToggledLayers:   make(map[uint16]struct{}),
		Pending:         make(map[keycode.Code]*PendingTapHold),
		pressed:         make(map[keycode.Code]pressRecord),
	}
}

// RecordPress remembers that source produced output as its pressed
// key, for later release mirroring.
func (s *State) RecordPress(source, output keycode.Code) {
	s.pressed[source] = pressRecord{output: output}
}

// TakeRecordedPress returns and forgets the output key recorded for
// source's press, if any.
func (s *State) TakeRecordedPress(source keycode.Code) (keycode.Code, bool) {
	rec, ok := s.pressed[source]
	if ok {
		delete(s.pressed, source)
	}
	return rec.output, ok
}

// AddModifier adds alias index n to the active modifier set.
func (s *State) AddModifier(n uint8) { s.ActiveModifiers[n] = struct{}{} }

// RemoveModifier removes alias index n from the active modifier set.
func (s *State) RemoveModifier(n uint8) { delete(s.ActiveModifiers, n) }

// ToggleLock flips alias index n's membership in the active lock set.
// Two toggles are idempotent (spec.md §8 testable property 4).
func (s *State) ToggleLock(n uint8) {
	if _, ok := s.ActiveLocks[n]; ok {
		delete(s.ActiveLocks, n)
	} else {
		s.ActiveLocks[n] = struct{}{}
	}
}

// ToggleLayer flips a ToggleOnTap layer's membership and bumps the
// generation counter.
func (s *State) ToggleLayer(index uint16) {
	if _, ok := s.ToggledLayers[index]; ok {
		delete(s.ToggledLayers, index)
	} else {
		s.ToggledLayers[index] = struct{}{}
	}
	s.Generation++
}

// BeginTapHold creates a pending decision for source, stamped with the
// current generation.
func (s *State) BeginTapHold(p PendingTapHold) {
	p.GenerationAtCreation = s.Generation
	s.Pending[p.Source] = &p
}

// EndTapHold removes the pending decision for source, if any.
func (s *State) EndTapHold(source keycode.Code) {
	delete(s.Pending, source)
}

// PressedOutputs returns every output key currently recorded as held
// down by a Simple/Passthrough press, for shutdown drain to release
// (spec.md §5, "every active_modifiers and depressed real key is
// released").
func (s *State) PressedOutputs() []keycode.Code {
	out := make([]keycode.Code, 0, len(s.pressed))
	for _, rec := range s.pressed {
		out = append(out, rec.output)
	}
	return out
}

// EarliestDeadline returns the soonest deadline among undecided
// pending tap-holds and true, or ok=false if none is undecided.
// Entries already resolved to hold (ConsumedByDecision) only await
// their release and have no deadline left.
func (s *State) EarliestDeadline() (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, p := range s.Pending {
		if p.ConsumedByDecision {
			continue
		}
		if !found || p.Deadline.Before(earliest) {
			earliest = p.Deadline
			found = true
		}
	}
	return earliest, found
}
