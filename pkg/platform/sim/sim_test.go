package sim

import (
	"testing"
	"time"

	"github.com/keyrx/keyrx/pkg/keycode"
	"github.com/keyrx/keyrx/pkg/keyevent"
	"github.com/keyrx/keyrx/pkg/platform"
	"github.com/stretchr/testify/require"
)

func TestInstallHookRejectsDoubleInstall(t *testing.T) {
	a := New(nil)
	_, err := a.InstallHook(nil, func(keyevent.InputEvent) {})
	require.NoError(t, err)

	_, err = a.InstallHook(nil, func(keyevent.InputEvent) {})
	require.ErrorIs(t, err, platform.ErrHookAlreadyInstalled)
}

func TestDeliverRoutesThroughInstalledCallback(t *testing.T) {
	a := New(nil)
	var got []keyevent.InputEvent
	_, err := a.InstallHook(nil, func(ev keyevent.InputEvent) { got = append(got, ev) })
	require.NoError(t, err)

	ev := keyevent.InputEvent{Physical: keycode.A, Edge: keyevent.Press}
	a.Deliver(ev)
	require.Equal(t, []keyevent.InputEvent{ev}, got)
}

func TestDeliverBeforeInstallIsNoop(t *testing.T) {
	a := New(nil)
	require.NotPanics(t, func() {
		a.Deliver(keyevent.InputEvent{Physical: keycode.A, Edge: keyevent.Press})
	})
}

func TestInjectRecordsAndRejectNextFailsOnce(t *testing.T) {
	a := New(nil)
	require.NoError(t, a.Inject(keyevent.OutputEvent{Synthetic: keycode.Escape, Edge: keyevent.Press}))

	a.SetRejectNext("device busy")
	err := a.Inject(keyevent.OutputEvent{Synthetic: keycode.Escape, Edge: keyevent.Release})
	var rejected *platform.RejectedByOs
	require.ErrorAs(t, err, &rejected)
	require.Equal(t, "device busy", rejected.Reason)

	require.NoError(t, a.Inject(keyevent.OutputEvent{Synthetic: keycode.Escape, Edge: keyevent.Release}))
	require.Len(t, a.Injected(), 2)
}

func TestAdvanceFiresOnlyDueTimersAndRemovesThem(t *testing.T) {
	a := New(nil)
	var fired []platform.TimerHandle
	a.OnTimer(func(h platform.TimerHandle) { fired = append(fired, h) })

	base := time.Unix(0, 0)
	require.NoError(t, a.ScheduleTimer(base.Add(100*time.Millisecond), 1))
	require.NoError(t, a.ScheduleTimer(base.Add(300*time.Millisecond), 2))

	a.Advance(base.Add(200 * time.Millisecond))
	require.Equal(t, []platform.TimerHandle{1}, fired)

	a.Advance(base.Add(400 * time.Millisecond))
	require.Equal(t, []platform.TimerHandle{1, 2}, fired)
}

func TestCancelTimerIsIdempotentAndPreventsFiring(t *testing.T) {
	a := New(nil)
	var fired []platform.TimerHandle
	a.OnTimer(func(h platform.TimerHandle) { fired = append(fired, h) })

	require.NoError(t, a.ScheduleTimer(time.Unix(0, 0), 1))
	require.NoError(t, a.CancelTimer(1))
	require.NoError(t, a.CancelTimer(1))

	a.Advance(time.Unix(0, 0).Add(time.Second))
	require.Empty(t, fired)
}

func TestEnumerateDevicesReturnsConfiguredSnapshot(t *testing.T) {
	want := []platform.DeviceIdentity{{VendorID: 0x046d, ProductID: 0xc52b, Serial: "abc123", Path: "/dev/input/event3"}}
	a := New(want)

	got, err := a.EnumerateDevices()
	require.NoError(t, err)
	require.Equal(t, want, got)
}
