package orchestrator

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/keyrx/keyrx/pkg/action"
	"github.com/keyrx/keyrx/pkg/artifact"
	"github.com/keyrx/keyrx/pkg/devicestate"
	"github.com/keyrx/keyrx/pkg/keycode"
	"github.com/keyrx/keyrx/pkg/keyevent"
	"github.com/keyrx/keyrx/pkg/platform"
	"github.com/keyrx/keyrx/pkg/platform/sim"
	"github.com/stretchr/testify/require"
)

const testDevicePath = "/dev/input/event0"

func buildTestRoot(t *testing.T, cfg artifact.ConfigRoot) *artifact.Root {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.krx")
	require.NoError(t, artifact.WriteFile(path, cfg))
	root, err := artifact.Load(path)
	require.NoError(t, err)
	return root
}

func simpleConfig() artifact.ConfigRoot {
	return artifact.ConfigRoot{
		VersionMajor: artifact.SupportedMajor,
		VersionMinor: artifact.SupportedMinor,
		Meta:         artifact.Metadata{Name: "orchestrator-test"},
		Layers: []artifact.LayerDecl{
			{ID: "base", Mapping: map[keycode.Code]action.Action{
				keycode.CapsLock: action.TapHold(keycode.Escape, keycode.LeftCtrl, 150, action.HoldOnTimeout),
				keycode.A:        action.Simple(keycode.B),
			}},
		},
		Devices: []artifact.DeviceConfig{
			{Pattern: artifact.DevicePattern{Kind: artifact.PatternWildcard}, BaseLayer: 0},
		},
		Fallback: artifact.DeviceConfig{Pattern: artifact.DevicePattern{Kind: artifact.PatternWildcard}, BaseLayer: 0},
	}
}

func newTestOrchestrator(t *testing.T, root *artifact.Root) (*Orchestrator, *sim.Adapter) {
	t.Helper()
	adapter := sim.New([]platform.DeviceIdentity{{Path: testDevicePath}})
	return New(adapter, keyevent.NoopLogger{}, root), adapter
}

func runInBackground(t *testing.T, o *Orchestrator) (context.CancelFunc, chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- o.Run(ctx) }()
	return cancel, errCh
}

func TestSimpleRemapInjectsMappedKey(t *testing.T) {
	root := buildTestRoot(t, simpleConfig())
	o, adapter := newTestOrchestrator(t, root)
	cancel, errCh := runInBackground(t, o)
	defer cancel()

	adapter.Deliver(keyevent.InputEvent{DeviceKey: devicestate.Key(testDevicePath), Physical: keycode.A, Edge: keyevent.Press, Timestamp: time.Now()})
	adapter.Deliver(keyevent.InputEvent{DeviceKey: devicestate.Key(testDevicePath), Physical: keycode.A, Edge: keyevent.Release, Timestamp: time.Now()})

	require.Eventually(t, func() bool {
		return len(adapter.Injected()) == 2
	}, time.Second, time.Millisecond)

	injected := adapter.Injected()
	require.Equal(t, keycode.B, injected[0].Synthetic)
	require.Equal(t, keyevent.Press, injected[0].Edge)
	require.Equal(t, keycode.B, injected[1].Synthetic)
	require.Equal(t, keyevent.Release, injected[1].Edge)

	o.Shutdown()
	require.NoError(t, <-errCh)
}

func TestTapHoldResolvesToHoldAfterTimerAdvance(t *testing.T) {
	root := buildTestRoot(t, simpleConfig())
	o, adapter := newTestOrchestrator(t, root)
	cancel, errCh := runInBackground(t, o)
	defer cancel()

	start := time.Now()
	adapter.Deliver(keyevent.InputEvent{DeviceKey: devicestate.Key(testDevicePath), Physical: keycode.CapsLock, Edge: keyevent.Press, Timestamp: start})

	require.Eventually(t, func() bool {
		snap := o.RequestSnapshot()
		return len(snap.Devices) == 1 && snap.Devices[0].PendingCount == 1
	}, time.Second, time.Millisecond)

	adapter.Advance(start.Add(200 * time.Millisecond))

	require.Eventually(t, func() bool {
		return len(adapter.Injected()) == 1
	}, time.Second, time.Millisecond)
	injected := adapter.Injected()
	require.Equal(t, keycode.LeftCtrl, injected[0].Synthetic)
	require.Equal(t, keyevent.Press, injected[0].Edge)

	o.Shutdown()
	require.NoError(t, <-errCh)
}

func TestReloadBumpsGenerationAndInvalidatesPending(t *testing.T) {
	root := buildTestRoot(t, simpleConfig())
	o, adapter := newTestOrchestrator(t, root)
	cancel, errCh := runInBackground(t, o)
	defer cancel()

	start := time.Now()
	adapter.Deliver(keyevent.InputEvent{DeviceKey: devicestate.Key(testDevicePath), Physical: keycode.CapsLock, Edge: keyevent.Press, Timestamp: start})

	require.Eventually(t, func() bool {
		snap := o.RequestSnapshot()
		return len(snap.Devices) == 1 && snap.Devices[0].PendingCount == 1
	}, time.Second, time.Millisecond)

	o.Reload(root)

	require.Eventually(t, func() bool {
		snap := o.RequestSnapshot()
		return len(snap.Devices) == 1 && snap.Devices[0].Generation == 1
	}, time.Second, time.Millisecond)

	adapter.Deliver(keyevent.InputEvent{DeviceKey: devicestate.Key(testDevicePath), Physical: keycode.CapsLock, Edge: keyevent.Release, Timestamp: start.Add(10 * time.Millisecond)})

	// Only the passthrough release of the depressed source: no tap or
	// hold output for the interrupted decision.
	require.Eventually(t, func() bool {
		return len(adapter.Injected()) == 1
	}, time.Second, time.Millisecond)
	injected := adapter.Injected()
	require.Len(t, injected, 1)
	require.Equal(t, keycode.CapsLock, injected[0].Synthetic)
	require.Equal(t, keyevent.Release, injected[0].Edge)
	require.Zero(t, o.RequestSnapshot().Devices[0].PendingCount)

	o.Shutdown()
	require.NoError(t, <-errCh)
}

func TestShutdownDrainResolvesPendingAsTapAndReleasesHeldKeys(t *testing.T) {
	root := buildTestRoot(t, simpleConfig())
	o, adapter := newTestOrchestrator(t, root)
	cancel, errCh := runInBackground(t, o)
	defer cancel()

	adapter.Deliver(keyevent.InputEvent{DeviceKey: devicestate.Key(testDevicePath), Physical: keycode.A, Edge: keyevent.Press, Timestamp: time.Now()})
	adapter.Deliver(keyevent.InputEvent{DeviceKey: devicestate.Key(testDevicePath), Physical: keycode.CapsLock, Edge: keyevent.Press, Timestamp: time.Now()})

	require.Eventually(t, func() bool {
		return len(adapter.Injected()) == 1 // the Simple(B) press from the 'A' key
	}, time.Second, time.Millisecond)

	o.Shutdown()
	require.NoError(t, <-errCh)

	injected := adapter.Injected()
	require.Len(t, injected, 4)
	require.Equal(t, keycode.B, injected[0].Synthetic)
	require.Equal(t, keyevent.Press, injected[0].Edge)
	require.Equal(t, keycode.Escape, injected[1].Synthetic)
	require.Equal(t, keyevent.Press, injected[1].Edge)
	require.Equal(t, keycode.Escape, injected[2].Synthetic)
	require.Equal(t, keyevent.Release, injected[2].Edge)
	require.Equal(t, keycode.B, injected[3].Synthetic)
	require.Equal(t, keyevent.Release, injected[3].Edge)
}

func TestShutdownDrainReleasesAlreadyResolvedHoldInsteadOfFabricatingTap(t *testing.T) {
	root := buildTestRoot(t, simpleConfig())
	o, adapter := newTestOrchestrator(t, root)
	cancel, errCh := runInBackground(t, o)
	defer cancel()

	start := time.Now()
	adapter.Deliver(keyevent.InputEvent{DeviceKey: devicestate.Key(testDevicePath), Physical: keycode.CapsLock, Edge: keyevent.Press, Timestamp: start})

	require.Eventually(t, func() bool {
		snap := o.RequestSnapshot()
		return len(snap.Devices) == 1 && snap.Devices[0].PendingCount == 1
	}, time.Second, time.Millisecond)

	// Let the tap-hold resolve to hold before shutdown: Press(LeftCtrl)
	// is injected and the pending entry stays (ConsumedByDecision=true)
	// so the eventual release still finds it, per the engine's
	// Tick/resolveToHold exception.
	adapter.Advance(start.Add(200 * time.Millisecond))
	require.Eventually(t, func() bool {
		return len(adapter.Injected()) == 1
	}, time.Second, time.Millisecond)
	require.Equal(t, keycode.LeftCtrl, adapter.Injected()[0].Synthetic)
	require.Equal(t, keyevent.Press, adapter.Injected()[0].Edge)

	o.Shutdown()
	require.NoError(t, <-errCh)

	injected := adapter.Injected()
	require.Len(t, injected, 2, "must release the already-injected hold, not fabricate a tap")
	require.Equal(t, keycode.LeftCtrl, injected[1].Synthetic)
	require.Equal(t, keyevent.Release, injected[1].Edge)
}

// failingEnumerateAdapter wraps a sim.Adapter but fails
// EnumerateDevices, to exercise Run's startup-error path without
// touching a real OS.
type failingEnumerateAdapter struct {
	*sim.Adapter
}

func (failingEnumerateAdapter) EnumerateDevices() ([]platform.DeviceIdentity, error) {
	return nil, platform.ErrDeviceEnumerationFailed
}

func TestRunReturnsStartupErrorOnEnumerateFailure(t *testing.T) {
	root := buildTestRoot(t, simpleConfig())
	adapter := failingEnumerateAdapter{sim.New(nil)}
	o := New(adapter, keyevent.NoopLogger{}, root)

	err := o.Run(context.Background())
	require.Error(t, err)
	var startupErr *StartupError
	require.ErrorAs(t, err, &startupErr)
	require.ErrorIs(t, err, platform.ErrDeviceEnumerationFailed)
}

func TestInjectionRejectedIncrementsCounter(t *testing.T) {
	root := buildTestRoot(t, simpleConfig())
	o, adapter := newTestOrchestrator(t, root)
	cancel, errCh := runInBackground(t, o)
	defer cancel()

	adapter.SetRejectNext("device busy")
	adapter.Deliver(keyevent.InputEvent{DeviceKey: devicestate.Key(testDevicePath), Physical: keycode.A, Edge: keyevent.Press, Timestamp: time.Now()})

	require.Eventually(t, func() bool {
		return o.RequestSnapshot().Counters.InjectionRejected == 1
	}, time.Second, time.Millisecond)

	o.Shutdown()
	require.NoError(t, <-errCh)
}
