// Package orchestrator wires the remapping engine to a platform
// adapter: one dispatch worker per process, owning every device's
// devicestate.State, serializing all engine calls onto a single
// goroutine the way spec.md §5 requires ("concurrency model: single
// dispatch worker"). Capture and timer callbacks only ever enqueue a
// command; all mutation happens inside the worker's loop.
package orchestrator

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/keyrx/keyrx/pkg/artifact"
	"github.com/keyrx/keyrx/pkg/devicestate"
	"github.com/keyrx/keyrx/pkg/engine"
	"github.com/keyrx/keyrx/pkg/keycode"
	"github.com/keyrx/keyrx/pkg/keyevent"
	"github.com/keyrx/keyrx/pkg/platform"
)

// ShutdownDrainTimeout bounds how long the worker waits for the
// shutdown drain to finish before returning anyway (spec.md §5, "a
// hard 5 second deadline").
const ShutdownDrainTimeout = 5 * time.Second

// defaultInboxCapacity bounds the dispatch worker's single inbox
// (spec.md §5: "a bounded channel... backpressure policy on overflow
// is drop-oldest-for-device").
const defaultInboxCapacity = 256

// timerNotifier is implemented by adapters that support registering a
// callback for fired timers (both pkg/platform/sim and
// pkg/platform/linuxevdev do). It sits outside platform.Adapter
// because nothing in the engine/orchestrator contract requires it —
// an adapter without it simply never produces TimerFired commands.
type timerNotifier interface {
	OnTimer(func(platform.TimerHandle))
}

// StartupError wraps a platform failure that happens before the
// dispatch loop ever starts running: device enumeration or hook
// install, both fatal at startup (spec.md §7, "Platform errors").
// Callers distinguish this from a later runtime failure with
// errors.As, since spec.md §6 assigns startup platform failures exit
// code 3 ("privilege error") instead of the generic runtime code 4.
type StartupError struct {
	err error
}

func (e *StartupError) Error() string { return e.err.Error() }
func (e *StartupError) Unwrap() error { return e.err }

// Orchestrator is the dispatch worker of spec.md §4.4/§5.
type Orchestrator struct {
	adapter platform.Adapter
	logger  keyevent.Logger

	inbox    []command
	inboxCap int
	wake     chan struct{}

	timers *timerIndex

	// Everything below is touched exclusively by the goroutine running
	// Run's loop. No lock: single ownership, per spec.md §5.
	root            *artifact.Root
	identities      map[devicestate.Key]artifact.DeviceIdentity
	lookups         map[devicestate.Key]artifact.Lookup
	states          map[devicestate.Key]*devicestate.State
	armedTimers     map[devicestate.Key]platform.TimerHandle
	nextTimerHandle uint64
	counters        platform.Counters // InjectionRejected/EngineDiscarded: dispatch-goroutine-only, no lock needed

	inboxMu inboxMutex

	// droppedInput is incremented from post(), which runs on capture
	// and timer-callback goroutines as well as the dispatch goroutine,
	// so it uses atomic ops rather than joining the dispatch-only
	// counters struct above.
	droppedInput uint64
}

// New creates an Orchestrator bound to adapter, starting from root. If
// logger is nil, events are discarded.
func New(adapter platform.Adapter, logger keyevent.Logger, root *artifact.Root) *Orchestrator {
	if logger == nil {
		logger = keyevent.NoopLogger{}
	}
	return &Orchestrator{
		adapter:     adapter,
		logger:      logger,
		inboxCap:    defaultInboxCapacity,
		wake:        make(chan struct{}, 1),
		timers:      newTimerIndex(),
		root:        root,
		identities:  make(map[devicestate.Key]artifact.DeviceIdentity),
		lookups:     make(map[devicestate.Key]artifact.Lookup),
		states:      make(map[devicestate.Key]*devicestate.State),
		armedTimers: make(map[devicestate.Key]platform.TimerHandle),
	}
}

// Run enumerates devices, installs the hook, and processes commands
// until ctx is cancelled or Shutdown is posted. It returns ctx.Err()
// on cancellation, or nil after a clean Shutdown drain.
func (o *Orchestrator) Run(ctx context.Context) error {
	identities, err := o.adapter.EnumerateDevices()
	if err != nil {
		return &StartupError{fmt.Errorf("enumerate devices: %w", err)}
	}
	o.registerIdentities(identities)

	handle, err := o.adapter.InstallHook(o.coverageUnion(), o.handleRawInput)
	if err != nil {
		return &StartupError{fmt.Errorf("install hook: %w", err)}
	}
	defer o.adapter.UninstallHook(handle)

	if tn, ok := o.adapter.(timerNotifier); ok {
		tn.OnTimer(o.handleTimerFired)
	}

	for {
		if cmd, ok := o.popOne(); ok {
			if o.process(cmd) {
				return nil
			}
			continue
		}
		select {
		case <-ctx.Done():
			o.process(command{kind: cmdShutdown})
			return ctx.Err()
		case <-o.wake:
		}
	}
}

// Reload posts a new artifact.Root to take effect for every device
// before the next event it processes (spec.md §5, hot-reload
// contract). The caller builds root off the dispatch path; only the
// pointer swap happens inside the worker.
func (o *Orchestrator) Reload(root *artifact.Root) {
	o.post(command{kind: cmdReload, newRoot: root})
}

// Shutdown posts a shutdown command. Run returns once the drain
// completes or ShutdownDrainTimeout elapses, whichever is first.
func (o *Orchestrator) Shutdown() {
	o.post(command{kind: cmdShutdown})
}

// RequestSnapshot posts a snapshot request and blocks for the reply.
func (o *Orchestrator) RequestSnapshot() Snapshot {
	reply := make(chan Snapshot, 1)
	o.post(command{kind: cmdSnapshot, snapshotReply: reply})
	return <-reply
}

func (o *Orchestrator) registerIdentities(identities []platform.DeviceIdentity) {
	for _, id := range identities {
		key := devicestate.Key(id.Path)
		artID := artifact.DeviceIdentity{VendorID: id.VendorID, ProductID: id.ProductID, Serial: id.Serial}
		o.identities[key] = artID
		o.lookups[key] = o.root.ForDevice(artID)
		o.states[key] = devicestate.New(key)
	}
}

func (o *Orchestrator) coverageUnion() map[keycode.Code]struct{} {
	union := make(map[keycode.Code]struct{})
	for _, l := range o.lookups {
		for c := range l.CoverageSet {
			union[c] = struct{}{}
		}
	}
	return union
}

// handleRawInput is the HookInstaller callback. It must only enqueue
// (spec.md §9, "platform callback reentry") — it never touches
// devicestate directly.
func (o *Orchestrator) handleRawInput(ev keyevent.InputEvent) {
	o.post(command{kind: cmdInput, deviceKey: ev.DeviceKey, input: ev})
}

// handleTimerFired is the timerNotifier callback, invoked from the
// adapter's own goroutine. Same reentry rule as handleRawInput.
func (o *Orchestrator) handleTimerFired(h platform.TimerHandle) {
	key, ok := o.timers.get(uint64(h))
	if !ok {
		return
	}
	o.post(command{kind: cmdTimerFired, deviceKey: key, timerHandle: h})
}

// process handles one command on the dispatch goroutine, returning
// true once a shutdown drain has completed.
func (o *Orchestrator) process(cmd command) bool {
	switch cmd.kind {
	case cmdInput:
		o.processInput(cmd)
	case cmdTimerFired:
		o.processTimerFired(cmd)
	case cmdReload:
		o.applyReload(cmd.newRoot)
	case cmdSnapshot:
		cmd.snapshotReply <- o.buildSnapshot()
	case cmdShutdown:
		o.runShutdownDrain()
		return true
	}
	return false
}

func (o *Orchestrator) processInput(cmd command) {
	state := o.stateFor(cmd.deviceKey)
	lookup := o.lookupFor(cmd.deviceKey)
	outs, deadline := engine.Process(state, cmd.input, cmd.input.Timestamp, lookup)
	o.emit(cmd.deviceKey, outs)
	o.rearm(cmd.deviceKey, deadline)
}

func (o *Orchestrator) processTimerFired(cmd command) {
	if armed, ok := o.armedTimers[cmd.deviceKey]; !ok || armed != cmd.timerHandle {
		return // superseded by a later rearm
	}
	state := o.stateFor(cmd.deviceKey)
	// The armed timer is always for the earliest deadline, so its firing
	// means that deadline has been reached on the adapter's clock, which
	// may be ahead of the wall clock (the sim adapter's Advance).
	now := time.Now()
	if d, ok := state.EarliestDeadline(); ok && d.After(now) {
		now = d
	}
	outs, deadline := engine.Tick(state, now)
	o.emit(cmd.deviceKey, outs)
	o.rearm(cmd.deviceKey, deadline)
}

func (o *Orchestrator) applyReload(newRoot *artifact.Root) {
	o.root = newRoot
	for key, identity := range o.identities {
		o.lookups[key] = newRoot.ForDevice(identity)
	}
	for _, state := range o.states {
		state.Generation++
	}
	o.logger.Log(keyevent.Event{
		Timestamp: time.Now(),
		Category:  keyevent.CategoryArtifact,
		Artifact:  &keyevent.ArtifactEvent{Ok: true},
	})
}

// stateFor returns the device's state, creating one for a device not
// seen at startup (hotplug is not otherwise tracked: the device set
// is enumerated once at Run, and a late-appearing device has no
// recorded identity, so it always uses the current root's Fallback
// lookup, before and after any reload).
func (o *Orchestrator) stateFor(key devicestate.Key) *devicestate.State {
	if s, ok := o.states[key]; ok {
		return s
	}
	s := devicestate.New(key)
	o.states[key] = s
	return s
}

func (o *Orchestrator) lookupFor(key devicestate.Key) artifact.Lookup {
	if l, ok := o.lookups[key]; ok {
		return l
	}
	return o.root.Fallback
}

func (o *Orchestrator) emit(key devicestate.Key, outs []keyevent.OutputEvent) {
	for _, out := range outs {
		if err := o.adapter.Inject(out); err != nil {
			o.counters.InjectionRejected++
			o.logger.Log(keyevent.Event{
				Timestamp: time.Now(),
				DeviceKey: string(key),
				Category:  keyevent.CategoryPlatform,
				Platform:  &keyevent.PlatformEvent{Kind: "inject_rejected", Reason: err.Error()},
			})
		}
	}
}

func (o *Orchestrator) rearm(key devicestate.Key, deadline *time.Time) {
	if old, ok := o.armedTimers[key]; ok {
		_ = o.adapter.CancelTimer(old)
		o.timers.delete(uint64(old))
		delete(o.armedTimers, key)
	}
	if deadline == nil {
		return
	}
	o.nextTimerHandle++
	h := platform.TimerHandle(o.nextTimerHandle)
	if err := o.adapter.ScheduleTimer(*deadline, h); err != nil {
		return
	}
	o.armedTimers[key] = h
	o.timers.set(uint64(h), key)
}

func (o *Orchestrator) runShutdownDrain() {
	done := make(chan struct{})
	go func() {
		now := time.Now()
		for key, state := range o.states {
			outs := drainDevice(state, now)
			o.emit(key, outs)
			if handle, ok := o.armedTimers[key]; ok {
				_ = o.adapter.CancelTimer(handle)
				o.timers.delete(uint64(handle))
				delete(o.armedTimers, key)
			}
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(ShutdownDrainTimeout):
	}
}

func (o *Orchestrator) buildSnapshot() Snapshot {
	devices := make([]DeviceSnapshot, 0, len(o.states))
	for key, state := range o.states {
		mods := make([]uint8, 0, len(state.ActiveModifiers))
		for n := range state.ActiveModifiers {
			mods = append(mods, n)
		}
		locks := make([]uint8, 0, len(state.ActiveLocks))
		for n := range state.ActiveLocks {
			locks = append(locks, n)
		}
		layers := make([]uint16, 0, len(state.ToggledLayers))
		for n := range state.ToggledLayers {
			layers = append(layers, n)
		}
		devices = append(devices, DeviceSnapshot{
			DeviceKey:       key,
			Generation:      state.Generation,
			ActiveModifiers: mods,
			ActiveLocks:     locks,
			ToggledLayers:   layers,
			PendingCount:    len(state.Pending),
		})
	}
	counters := o.counters
	counters.DroppedInput = atomic.LoadUint64(&o.droppedInput)
	return Snapshot{Devices: devices, Counters: counters}
}
