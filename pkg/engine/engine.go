// Package engine implements the per-device remapping engine of
// spec.md §4.2: Process, a pure function of (DeviceState, InputEvent,
// now, Lookup) that produces output events and updates DeviceState in
// place, and Tick, which resolves any pending tap-holds whose deadline
// has passed. Neither function performs I/O or touches a clock beyond
// reading the `now` argument; real time only enters through the
// caller (the orchestrator), keeping the engine deterministic and easy
// to test (spec.md §8).
package engine

import (
	"time"

	"github.com/keyrx/keyrx/pkg/action"
	"github.com/keyrx/keyrx/pkg/artifact"
	"github.com/keyrx/keyrx/pkg/devicestate"
	"github.com/keyrx/keyrx/pkg/keycode"
	"github.com/keyrx/keyrx/pkg/keyevent"
	"github.com/keyrx/keyrx/pkg/layer"
)

// Process advances state by one InputEvent and returns the output
// events produced, plus the next tap-hold deadline to arm a timer for
// (nil if nothing is pending). See spec.md §4.2 for the numbered
// algorithm this function implements step by step.
func Process(state *devicestate.State, input keyevent.InputEvent, now time.Time, lookup artifact.Lookup) ([]keyevent.OutputEvent, *time.Time) {
	var out []keyevent.OutputEvent

	// Step 1: generation check / safety valve (spec.md §3, §4.2 step 1,
	// testable scenario S6). If the physical key driving this event has
	// a pending decision from a prior generation, discard it and treat
	// this event as Passthrough, skipping normal dispatch entirely.
	if p, ok := state.Pending[input.Physical]; ok && p.GenerationAtCreation != state.Generation {
		state.EndTapHold(input.Physical)
		out = append(out, keyevent.OutputEvent{Synthetic: input.Physical, Edge: input.Edge, EmitAt: now})
		return out, earliestDeadline(state)
	}

	if input.Edge == keyevent.Press {
		return processPress(state, input, now, lookup)
	}
	return processRelease(state, input, now, lookup)
}

func processPress(state *devicestate.State, input keyevent.InputEvent, now time.Time, lookup artifact.Lookup) ([]keyevent.OutputEvent, *time.Time) {
	var out []keyevent.OutputEvent

	// Edge case: auto-repeat. A second press of a key already pending
	// tap-hold resolution is silently dropped.
	if _, ok := state.Pending[input.Physical]; ok {
		return out, earliestDeadline(state)
	}

	// Step 6 (press side): any HoldOnOtherKeyPress pending entry for a
	// *different* key resolves to hold now, before this event's own
	// outputs.
	for source, p := range state.Pending {
		if source == input.Physical || p.ConsumedByDecision || p.Flavor != action.HoldOnOtherKeyPress {
			continue
		}
		out = append(out, resolveToHold(state, p, now)...)
	}

	active, hasActive := activeLayer(state, lookup)
	var activePtr *layer.Layer
	if hasActive {
		activePtr = &active
	}
	act := layer.Lookup(activePtr, lookup.Base, input.Physical)

	switch act.Kind {
	case action.KindSimple:
		out = append(out, applyPress(state, input.Physical, act.SimpleTarget, now)...)

	case action.KindTapHold:
		state.BeginTapHold(devicestate.PendingTapHold{
			Source:    input.Physical,
			Tap:       act.TapHoldTap,
			Hold:      act.TapHoldHold,
			Flavor:    act.TapHoldFlavor,
			PressedAt: now,
			Deadline:  now.Add(time.Duration(act.TapHoldThresholdMs) * time.Millisecond),
		})

	case action.KindMacro:
		out = append(out, runMacro(act.MacroSteps, now)...)

	case action.KindLayerSwitch:
		if act.LayerSwitchMode == action.ToggleOnTap {
			state.ToggleLayer(act.LayerSwitchLayer)
		}

	default: // KindPassthrough
		out = append(out, keyevent.OutputEvent{Synthetic: input.Physical, Edge: keyevent.Press, EmitAt: now})
	}

	return out, earliestDeadline(state)
}

func processRelease(state *devicestate.State, input keyevent.InputEvent, now time.Time, _ artifact.Lookup) ([]keyevent.OutputEvent, *time.Time) {
	var out []keyevent.OutputEvent

	// Step 6 (release side): any HoldOnInterrupt pending entry for a
	// different key resolves to hold on this, the interrupting key's,
	// release.
	for source, p := range state.Pending {
		if source == input.Physical || p.ConsumedByDecision || p.Flavor != action.HoldOnInterrupt {
			continue
		}
		out = append(out, resolveToHold(state, p, now)...)
	}

	if p, ok := state.Pending[input.Physical]; ok {
		if p.ConsumedByDecision {
			out = append(out, applyRelease(state, p.Hold, now)...)
		} else {
			// Resolve to tap: Press and Release emitted atomically.
			if !p.Tap.IsAlias() {
				out = append(out,
					keyevent.OutputEvent{Synthetic: p.Tap, Edge: keyevent.Press, EmitAt: now},
					keyevent.OutputEvent{Synthetic: p.Tap, Edge: keyevent.Release, EmitAt: now},
				)
			}
		}
		state.EndTapHold(input.Physical)
		return out, earliestDeadline(state)
	}

	if recorded, ok := state.TakeRecordedPress(input.Physical); ok {
		out = append(out, applyRelease(state, recorded, now)...)
		return out, earliestDeadline(state)
	}

	// Edge case: release of a key with no recorded state. Passthrough.
	out = append(out, keyevent.OutputEvent{Synthetic: input.Physical, Edge: keyevent.Release, EmitAt: now})
	return out, earliestDeadline(state)
}

// Tick resolves every pending tap-hold whose deadline has elapsed,
// regardless of flavor (spec.md §4.2 step 7: "or any flavor not yet
// resolved"). Call whenever the caller's earliest-deadline timer
// fires.
func Tick(state *devicestate.State, now time.Time) ([]keyevent.OutputEvent, *time.Time) {
	var out []keyevent.OutputEvent
	for _, p := range state.Pending {
		if p.ConsumedByDecision || p.Deadline.After(now) {
			continue
		}
		out = append(out, resolveToHold(state, p, now)...)
	}
	return out, earliestDeadline(state)
}

// resolveToHold emits the hold branch's press (if the hold target is
// injectable) and updates modifier/lock bookkeeping, marking the
// pending entry consumed so the eventual Release finds it already
// decided.
func resolveToHold(state *devicestate.State, p *devicestate.PendingTapHold, now time.Time) []keyevent.OutputEvent {
	var out []keyevent.OutputEvent
	if !p.Hold.IsAlias() {
		out = append(out, keyevent.OutputEvent{Synthetic: p.Hold, Edge: keyevent.Press, EmitAt: now})
	}
	if n, ok := p.Hold.ModifierIndex(); ok {
		state.AddModifier(n)
	}
	if n, ok := p.Hold.LockIndex(); ok {
		state.ToggleLock(n)
	}
	p.ConsumedByDecision = true
	return out
}

// applyPress dispatches a Simple(target) action: emits Press(target)
// unless target is an MD_/LK_ alias (invariant: aliases never cross
// the injection boundary), updates modifier/lock state, and records
// the press so the matching release can mirror it.
func applyPress(state *devicestate.State, source, target keycode.Code, now time.Time) []keyevent.OutputEvent {
	var out []keyevent.OutputEvent
	if !target.IsAlias() {
		out = append(out, keyevent.OutputEvent{Synthetic: target, Edge: keyevent.Press, EmitAt: now})
	}
	if n, ok := target.ModifierIndex(); ok {
		state.AddModifier(n)
	}
	if n, ok := target.LockIndex(); ok {
		state.ToggleLock(n)
	}
	state.RecordPress(source, target)
	return out
}

// applyRelease mirrors applyPress: emits Release(target) unless target
// is an alias, and removes a modifier (but never a lock — locks only
// clear via an explicit toggle, spec.md §3 invariants).
func applyRelease(state *devicestate.State, target keycode.Code, now time.Time) []keyevent.OutputEvent {
	var out []keyevent.OutputEvent
	if !target.IsAlias() {
		out = append(out, keyevent.OutputEvent{Synthetic: target, Edge: keyevent.Release, EmitAt: now})
	}
	if n, ok := target.ModifierIndex(); ok {
		state.RemoveModifier(n)
	}
	return out
}

func runMacro(steps []action.MacroStep, now time.Time) []keyevent.OutputEvent {
	out := make([]keyevent.OutputEvent, 0, len(steps))
	var cumulative time.Duration
	for _, s := range steps {
		cumulative += time.Duration(s.DelayMicro) * time.Microsecond
		out = append(out, keyevent.OutputEvent{
			Synthetic: s.Key,
			Edge:      keyevent.Edge(s.Edge),
			EmitAt:    now.Add(cumulative),
		})
	}
	return out
}

func activeLayer(state *devicestate.State, lookup artifact.Lookup) (layer.Layer, bool) {
	return layer.ActiveLayer(lookup.Conditionals, state.ActiveModifiers, state.ActiveLocks, state.ToggledLayers)
}

func earliestDeadline(state *devicestate.State) *time.Time {
	d, ok := state.EarliestDeadline()
	if !ok {
		return nil
	}
	return &d
}
