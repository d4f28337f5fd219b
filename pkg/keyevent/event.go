// Package keyevent defines the normalized input/output event types that
// cross the platform/engine boundary, plus the protocol-style event log
// used for ambient observability. The Logger/Event/adapter types are
// adapted from the teacher's pkg/log: same Logger interface and
// fan-out/file/slog adapters, applied to dispatch events instead of
// wire messages.
package keyevent

import (
	"time"

	"github.com/keyrx/keyrx/pkg/devicestate"
	"github.com/keyrx/keyrx/pkg/keycode"
)

// Edge is a key transition direction, normalized the same way across
// input and output events.
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

// InputEvent is a normalized physical key event delivered by a
// platform adapter.
type InputEvent struct {
	DeviceKey devicestate.Key
	Physical  keycode.Code
	Edge      Edge
	Timestamp time.Time
}

// OutputEvent is a synthetic key event the engine asks the injection
// sink to emit. EmitAt is advisory ordering only (spec.md §3): the
// sink injects immediately in produced order unless a macro step
// imposes a delay, in which case EmitAt records when that step's delay
// elapses relative to the triggering press.
type OutputEvent struct {
	Synthetic keycode.Code
	Edge      Edge
	EmitAt    time.Time
}
