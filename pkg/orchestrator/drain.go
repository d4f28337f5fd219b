package orchestrator

import (
	"time"

	"github.com/keyrx/keyrx/pkg/devicestate"
	"github.com/keyrx/keyrx/pkg/keyevent"
)

// drainDevice implements the shutdown policy of spec.md §5: every
// pending tap-hold not yet decided resolves as a tap; one already
// resolved to hold (ConsumedByDecision) releases that hold instead,
// since its press already left the process. Then every key the device
// still shows as held (modifiers and real keys alike) is released.
// Locks are left as-is — they only clear via an explicit toggle, never
// on shutdown. MD_/LK_ alias targets never cross the injection
// boundary, matching applyPress/applyRelease/resolveToHold.
func drainDevice(state *devicestate.State, now time.Time) []keyevent.OutputEvent {
	var out []keyevent.OutputEvent

	for source, p := range state.Pending {
		switch {
		case p.ConsumedByDecision:
			// Already resolved to hold before shutdown (engine.Tick or an
			// interrupt); Press(Hold) is already out in the world, so
			// mirror applyRelease and release the hold, not the tap.
			if !p.Hold.IsAlias() {
				out = append(out, keyevent.OutputEvent{Synthetic: p.Hold, Edge: keyevent.Release, EmitAt: now})
			}
		case !p.Tap.IsAlias():
			out = append(out,
				keyevent.OutputEvent{Synthetic: p.Tap, Edge: keyevent.Press, EmitAt: now},
				keyevent.OutputEvent{Synthetic: p.Tap, Edge: keyevent.Release, EmitAt: now},
			)
		}
		state.EndTapHold(source)
	}

	for _, output := range state.PressedOutputs() {
		if output.IsAlias() {
			continue
		}
		out = append(out, keyevent.OutputEvent{Synthetic: output, Edge: keyevent.Release, EmitAt: now})
	}

	return out
}
