// Package sim is the in-process reference platform adapter: no OS
// hooks, no real devices, no real clock. It backs `keyrxd run
// --test-mode` and the orchestrator's own integration tests, the same
// role the teacher's in-memory transport fakes play for
// pkg/transport's client/server tests.
package sim

import (
	"sort"
	"sync"
	"time"

	"github.com/keyrx/keyrx/pkg/keycode"
	"github.com/keyrx/keyrx/pkg/keyevent"
	"github.com/keyrx/keyrx/pkg/platform"
)

var _ platform.Adapter = (*Adapter)(nil)

// Adapter implements platform.Adapter entirely in memory. Deliver and
// Advance are the test-driver entry points standing in for the real
// hardware hook and OS clock.
type Adapter struct {
	mu sync.Mutex

	devices []platform.DeviceIdentity

	installed  bool
	hookHandle platform.HookHandle
	coverage   map[keycode.Code]struct{}
	callback   func(keyevent.InputEvent)

	injected   []keyevent.OutputEvent
	rejectNext string // if non-empty, the next Inject call fails with this reason

	timers     map[platform.TimerHandle]time.Time
	onTimer    func(platform.TimerHandle)
	nextHandle uint64
}

// New creates a sim adapter that reports devices as its enumerated
// identities.
func New(devices []platform.DeviceIdentity) *Adapter {
	return &Adapter{
		devices: devices,
		timers:  make(map[platform.TimerHandle]time.Time),
	}
}

// InstallHook records callback for later Deliver calls. The coverage
// set is stored but not enforced as a hard filter — sim favors
// observability in tests over faithfully reproducing OS-level
// pre-filtering.
func (a *Adapter) InstallHook(coverage map[keycode.Code]struct{}, callback func(keyevent.InputEvent)) (platform.HookHandle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.installed {
		return 0, platform.ErrHookAlreadyInstalled
	}
	a.nextHandle++
	a.hookHandle = platform.HookHandle(a.nextHandle)
	a.coverage = coverage
	a.callback = callback
	a.installed = true
	return a.hookHandle, nil
}

// UninstallHook releases the hook. Calling it twice is harmless.
func (a *Adapter) UninstallHook(h platform.HookHandle) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.installed && a.hookHandle == h {
		a.installed = false
		a.callback = nil
	}
	return nil
}

// EnumerateDevices returns the adapter's configured device list.
func (a *Adapter) EnumerateDevices() ([]platform.DeviceIdentity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]platform.DeviceIdentity, len(a.devices))
	copy(out, a.devices)
	return out, nil
}

// SetRejectNext arranges for the next Inject call to fail with reason,
// then resets to accepting. Used to exercise the orchestrator's
// InjectionRejected counter path.
func (a *Adapter) SetRejectNext(reason string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rejectNext = reason
}

// Inject appends out to the adapter's injected-event log, or fails if
// SetRejectNext was armed.
func (a *Adapter) Inject(out keyevent.OutputEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.rejectNext != "" {
		reason := a.rejectNext
		a.rejectNext = ""
		return &platform.RejectedByOs{Reason: reason}
	}
	a.injected = append(a.injected, out)
	return nil
}

// Injected returns a snapshot of every OutputEvent accepted so far.
func (a *Adapter) Injected() []keyevent.OutputEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]keyevent.OutputEvent, len(a.injected))
	copy(out, a.injected)
	return out
}

// ScheduleTimer arms a oneshot wake for handle at the given time.
func (a *Adapter) ScheduleTimer(at time.Time, handle platform.TimerHandle) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.timers[handle] = at
	return nil
}

// CancelTimer cancels handle if still pending. Idempotent.
func (a *Adapter) CancelTimer(handle platform.TimerHandle) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.timers, handle)
	return nil
}

// OnTimer registers the callback Advance invokes for each timer whose
// deadline has elapsed.
func (a *Adapter) OnTimer(fn func(platform.TimerHandle)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onTimer = fn
}

// Deliver feeds an InputEvent through the installed hook callback, as
// if the hardware had produced it. It is a no-op if no hook is
// installed, mirroring a real adapter dropping events with nowhere to
// go.
func (a *Adapter) Deliver(ev keyevent.InputEvent) {
	a.mu.Lock()
	cb := a.callback
	a.mu.Unlock()
	if cb != nil {
		cb(ev)
	}
}

// Advance fires every timer whose deadline is at or before now, in
// deadline order, removing each from the pending set before invoking
// its callback.
func (a *Adapter) Advance(now time.Time) {
	a.mu.Lock()
	var due []platform.TimerHandle
	for h, at := range a.timers {
		if !at.After(now) {
			due = append(due, h)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		ti, tj := a.timers[due[i]], a.timers[due[j]]
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return due[i] < due[j]
	})
	for _, h := range due {
		delete(a.timers, h)
	}
	cb := a.onTimer
	a.mu.Unlock()

	if cb == nil {
		return
	}
	for _, h := range due {
		cb(h)
	}
}
