package orchestrator

import (
	"github.com/keyrx/keyrx/pkg/devicestate"
	"github.com/keyrx/keyrx/pkg/platform"
)

// DeviceSnapshot is the read-only view of one device's state returned
// by a Snapshot command, for the inspection surface (spec.md §4.4,
// "reads device state only through snapshot requests posted into the
// worker's channel — never direct memory access from another
// goroutine").
type DeviceSnapshot struct {
	DeviceKey       devicestate.Key
	Generation      uint64
	ActiveModifiers []uint8
	ActiveLocks     []uint8
	ToggledLayers   []uint16
	PendingCount    int
}

// Snapshot is the full reply to a snapshot request: every known
// device's state plus the dropped/rejected counters.
type Snapshot struct {
	Devices  []DeviceSnapshot
	Counters platform.Counters
}
