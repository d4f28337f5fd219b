package orchestrator

import (
	"github.com/keyrx/keyrx/pkg/artifact"
	"github.com/keyrx/keyrx/pkg/devicestate"
	"github.com/keyrx/keyrx/pkg/keyevent"
	"github.com/keyrx/keyrx/pkg/platform"
)

// commandKind discriminates the closed set of messages the dispatch
// worker accepts on its single inbox (spec.md §5): a normalized input
// event, a timer wake, a hot-reloaded artifact, a snapshot request, or
// shutdown. Everything the worker does is a reaction to one of these.
type commandKind uint8

const (
	cmdInput commandKind = iota
	cmdTimerFired
	cmdReload
	cmdSnapshot
	cmdShutdown
)

// command is the tagged union posted into the dispatch worker's inbox.
// Only the fields relevant to kind are populated.
type command struct {
	kind commandKind

	deviceKey devicestate.Key

	input       keyevent.InputEvent
	timerHandle platform.TimerHandle

	newRoot *artifact.Root

	snapshotReply chan Snapshot
}
