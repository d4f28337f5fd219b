package orchestrator

import (
	"sync"
	"sync/atomic"
)

// inboxMutex guards the orchestrator's inbox slice. Kept as its own
// named type only so Orchestrator's field list reads as "the lock for
// the inbox", not an anonymous sync.Mutex mixed in with the
// dispatch-goroutine-only fields above it.
type inboxMutex struct {
	sync.Mutex
}

// post enqueues cmd. Capture and timer callbacks run on goroutines
// outside the dispatch worker, so this is the only synchronized entry
// point into the orchestrator.
//
// Overflow policy is drop-oldest-for-device (spec.md §5): a full inbox
// evicts the oldest queued InputEvent belonging to the same device as
// the new one, so a burst on one device can't starve another's
// already-queued events. Non-input commands (reload, snapshot,
// shutdown) are rare control traffic; if the inbox is full when one of
// those arrives, or when an input arrives for a device with nothing
// queued, the oldest entry of any kind is evicted instead. Every
// evicted InputEvent is counted in droppedInput.
func (o *Orchestrator) post(cmd command) {
	o.inboxMu.Lock()
	if len(o.inbox) >= o.inboxCap {
		evicted := false
		if cmd.kind == cmdInput {
			for i, queued := range o.inbox {
				if queued.kind == cmdInput && queued.deviceKey == cmd.deviceKey {
					o.inbox = append(o.inbox[:i], o.inbox[i+1:]...)
					atomic.AddUint64(&o.droppedInput, 1)
					evicted = true
					break
				}
			}
		}
		if !evicted {
			if o.inbox[0].kind == cmdInput {
				atomic.AddUint64(&o.droppedInput, 1)
			}
			o.inbox = o.inbox[1:]
		}
	}
	o.inbox = append(o.inbox, cmd)
	o.inboxMu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
}

// popOne removes and returns the oldest queued command, if any.
func (o *Orchestrator) popOne() (command, bool) {
	o.inboxMu.Lock()
	defer o.inboxMu.Unlock()
	if len(o.inbox) == 0 {
		return command{}, false
	}
	cmd := o.inbox[0]
	o.inbox = o.inbox[1:]
	return cmd, true
}
