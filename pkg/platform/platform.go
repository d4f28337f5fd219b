// Package platform defines the adapter seam of spec.md §4.3: a
// capability contract a real OS backend implements, without this
// package itself touching any OS API. pkg/platform/sim provides an
// in-process reference implementation; pkg/platform/linuxevdev
// provides the Linux evdev/uinput one, behind a build tag.
package platform

import (
	"errors"
	"time"

	"github.com/keyrx/keyrx/pkg/keycode"
	"github.com/keyrx/keyrx/pkg/keyevent"
)

// Sentinel errors for the capability contract (spec.md §4.3, §7
// "Platform errors").
var (
	ErrInsufficientPrivilege  = errors.New("insufficient privilege to install hook")
	ErrHookAlreadyInstalled   = errors.New("hook already installed")
	ErrOS                     = errors.New("operating system error")
	ErrDeviceEnumerationFailed = errors.New("device enumeration failed")
)

// RejectedByOs reports that the platform adapter declined to inject an
// OutputEvent, with a human-readable reason (spec.md §4.3 inject()).
type RejectedByOs struct {
	Reason string
}

func (e *RejectedByOs) Error() string { return "rejected by os: " + e.Reason }

// DeviceIdentity is what enumerate_devices() returns: vendor, product,
// serial, and a stable platform path. Where the OS provides a serial,
// identity survives reconnects; otherwise adapters synthesize one
// keyed by (vendor, product, enumeration order) — spec.md §4.3.
type DeviceIdentity struct {
	VendorID  uint16
	ProductID uint16
	Serial    string
	Path      string
}

// HookHandle identifies an installed input hook, returned by
// install_hook and consumed by uninstall_hook.
type HookHandle uint64

// TimerHandle identifies a scheduled oneshot wake, returned by
// schedule_timer. Cancelling an already-fired or already-cancelled
// handle is a no-op (spec.md §4.3: "cancelling is idempotent").
type TimerHandle uint64

// HookInstaller begins delivering normalized InputEvents to callback,
// ideally pre-filtered to the coverage set. Implementers own the
// callback's thread (or poll loop) and MUST preserve hardware order
// and monotonic timestamps (spec.md §4.3); the callback itself must
// only enqueue into the orchestrator's dispatch channel and return —
// never touch engine state directly (spec.md §9, "platform callback
// reentry").
type HookInstaller interface {
	InstallHook(coverage map[keycode.Code]struct{}, callback func(keyevent.InputEvent)) (HookHandle, error)
	UninstallHook(HookHandle) error
}

// DeviceEnumerator lists the logical input devices the adapter can see.
type DeviceEnumerator interface {
	EnumerateDevices() ([]DeviceIdentity, error)
}

// Injector performs synchronous best-effort injection of a synthetic
// key event. A non-nil *RejectedByOs is logged and discarded by the
// orchestrator; engine state is never rolled back (spec.md §4.2
// "Failure semantics").
type Injector interface {
	Inject(keyevent.OutputEvent) error
}

// TimerScheduler arms and cancels the single oneshot wake the
// orchestrator needs per device: the earliest pending tap-hold
// deadline (spec.md §4.3 schedule_timer, §9 "cross-thread timer wake").
type TimerScheduler interface {
	ScheduleTimer(at time.Time, handle TimerHandle) error
	CancelTimer(TimerHandle) error
}

// Adapter bundles the four capabilities a complete platform backend
// offers. Orchestrator code depends on this interface, never on a
// concrete adapter package, so pkg/orchestrator compiles and tests
// identically against sim and linuxevdev.
type Adapter interface {
	HookInstaller
	DeviceEnumerator
	Injector
	TimerScheduler
}

// Counters are the dropped-event / rejection tallies spec.md §5 and §7
// require be "exposed via the inspection surface" without defining a
// shape. Read only through a Snapshot command posted into the dispatch
// worker's inbox (spec.md §5). InjectionRejected and EngineDiscarded
// are updated only by the dispatch worker; the orchestrator counts
// DroppedInput atomically in its enqueue path, which also runs on
// capture and timer goroutines, and copies it into each snapshot.
type Counters struct {
	DroppedInput      uint64
	InjectionRejected uint64
	EngineDiscarded   uint64
}
