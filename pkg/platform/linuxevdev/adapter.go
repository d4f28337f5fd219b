//go:build linux

package linuxevdev

import (
	"fmt"
	"sync"
	"time"

	"github.com/keyrx/keyrx/pkg/devicestate"
	"github.com/keyrx/keyrx/pkg/keycode"
	"github.com/keyrx/keyrx/pkg/keyevent"
	"github.com/keyrx/keyrx/pkg/platform"
)

var _ platform.Adapter = (*Adapter)(nil)

// Adapter is the Linux reference platform.Adapter: evdev for capture,
// uinput for injection. One Adapter instance owns every captured
// device and the single virtual output device.
type Adapter struct {
	mu sync.Mutex

	devices    map[devicestate.Key]*inputDevice
	installed  bool
	hookHandle platform.HookHandle
	callback   func(keyevent.InputEvent)

	uinput *uinputDevice

	timers     map[platform.TimerHandle]*time.Timer
	onTimer    func(platform.TimerHandle)
	nextHandle uint64
}

// OnTimer registers the callback invoked when a scheduled timer fires.
// The orchestrator wires this once, at startup, to its own Tick
// dispatch — mirroring pkg/platform/sim's OnTimer, the in-process
// adapter's equivalent wiring point.
func (a *Adapter) OnTimer(fn func(platform.TimerHandle)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onTimer = fn
}

// New opens every /dev/input/eventN node and the virtual uinput
// output device. Callers typically run this once at daemon startup.
func New() (*Adapter, error) {
	paths, err := listEventDevicePaths()
	if err != nil {
		return nil, err
	}

	devices := make(map[devicestate.Key]*inputDevice, len(paths))
	for _, p := range paths {
		d, err := openInputDevice(p)
		if err != nil {
			continue // device vanished or permission denied; skip, don't fail the whole adapter
		}
		devices[devicestate.Key(p)] = d
	}

	ui, err := openUinput()
	if err != nil {
		for _, d := range devices {
			_ = d.close()
		}
		return nil, fmt.Errorf("linuxevdev: %w", platform.ErrInsufficientPrivilege)
	}

	return &Adapter{
		devices: devices,
		uinput:  ui,
		timers:  make(map[platform.TimerHandle]*time.Timer),
	}, nil
}

// EnumerateDevices returns the identity of every opened capture device.
func (a *Adapter) EnumerateDevices() ([]platform.DeviceIdentity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]platform.DeviceIdentity, 0, len(a.devices))
	for _, d := range a.devices {
		id, err := d.identity()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", platform.ErrDeviceEnumerationFailed, err)
		}
		out = append(out, id)
	}
	return out, nil
}

// InstallHook grabs every capture device and starts one reader
// goroutine per device, translating raw evdev key events into
// keyevent.InputEvent and handing them to callback. coverage is
// accepted for interface conformance; the kernel has no per-key
// capture filter, so full translation happens and callers rely on the
// coverage set only for hardware-assisted filtering on adapters that
// support it.
func (a *Adapter) InstallHook(coverage map[keycode.Code]struct{}, callback func(keyevent.InputEvent)) (platform.HookHandle, error) {
	a.mu.Lock()
	if a.installed {
		a.mu.Unlock()
		return 0, platform.ErrHookAlreadyInstalled
	}
	a.nextHandle++
	handle := platform.HookHandle(a.nextHandle)
	a.hookHandle = handle
	a.callback = callback
	a.installed = true
	devices := make(map[devicestate.Key]*inputDevice, len(a.devices))
	for k, d := range a.devices {
		devices[k] = d
	}
	a.mu.Unlock()

	for key, d := range devices {
		if err := d.grab(true); err != nil {
			return 0, fmt.Errorf("%w: grab %s: %v", platform.ErrOS, key, err)
		}
		go a.runReader(key, d)
	}
	return handle, nil
}

func (a *Adapter) runReader(key devicestate.Key, d *inputDevice) {
	_ = d.readLoop(func(code uint16, value int32) {
		logical, ok := translateFromLinux(code)
		if !ok {
			return
		}
		edge := keyevent.Press
		if value == 0 {
			edge = keyevent.Release
		}
		a.mu.Lock()
		cb := a.callback
		a.mu.Unlock()
		if cb != nil {
			cb(keyevent.InputEvent{DeviceKey: key, Physical: logical, Edge: edge, Timestamp: time.Now()})
		}
	})
}

// UninstallHook ungrabs every device. Safe to call more than once.
func (a *Adapter) UninstallHook(h platform.HookHandle) error {
	a.mu.Lock()
	if !a.installed || a.hookHandle != h {
		a.mu.Unlock()
		return nil
	}
	a.installed = false
	a.callback = nil
	devices := make([]*inputDevice, 0, len(a.devices))
	for _, d := range a.devices {
		devices = append(devices, d)
	}
	a.mu.Unlock()

	for _, d := range devices {
		_ = d.grab(false)
	}
	return nil
}

// Inject writes out through the virtual uinput device.
func (a *Adapter) Inject(out keyevent.OutputEvent) error {
	code, ok := translateToLinux(out.Synthetic)
	if !ok {
		return &platform.RejectedByOs{Reason: fmt.Sprintf("no uinput mapping for %s", out.Synthetic)}
	}
	value := int32(1)
	if out.Edge == keyevent.Release {
		value = 0
	}
	if err := a.uinput.writeKey(code, value); err != nil {
		return &platform.RejectedByOs{Reason: err.Error()}
	}
	return nil
}

// ScheduleTimer arms a real OS timer via time.AfterFunc, the same
// one-shot-wake pattern the teacher's pkg/failsafe uses for the
// failsafe/grace-period timers.
func (a *Adapter) ScheduleTimer(at time.Time, handle platform.TimerHandle) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if existing, ok := a.timers[handle]; ok {
		existing.Stop()
	}
	d := time.Until(at)
	a.timers[handle] = time.AfterFunc(d, func() {
		a.mu.Lock()
		delete(a.timers, handle)
		cb := a.onTimer
		a.mu.Unlock()
		if cb != nil {
			cb(handle)
		}
	})
	return nil
}

// CancelTimer stops handle's timer if still pending. Idempotent.
func (a *Adapter) CancelTimer(handle platform.TimerHandle) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if t, ok := a.timers[handle]; ok {
		t.Stop()
		delete(a.timers, handle)
	}
	return nil
}

// Close releases every capture device and the uinput device.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, d := range a.devices {
		_ = d.close()
	}
	return a.uinput.close()
}
