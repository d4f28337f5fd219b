package keyevent

import (
	"testing"
	"time"
)

func TestEncodeDecodeEventRoundTrip(t *testing.T) {
	ev := Event{
		Timestamp: time.Now().UTC(),
		DeviceKey: "dev-1",
		Category:  CategoryEngine,
		Engine:    &EngineEvent{Kind: "tap-hold-resolved", Detail: "hold"},
	}

	data, err := EncodeEvent(ev)
	if err != nil {
		t.Fatalf("EncodeEvent: %v", err)
	}
	got, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	if got.DeviceKey != ev.DeviceKey || got.Category != ev.Category {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, ev)
	}
	if got.Engine == nil || got.Engine.Kind != "tap-hold-resolved" {
		t.Fatalf("engine payload lost in round trip: %+v", got.Engine)
	}
}

func TestMultiLoggerFansOutToAll(t *testing.T) {
	var a, b []Event
	rec := func(dst *[]Event) Logger {
		return recorderLogger{dst: dst}
	}
	m := NewMultiLogger(rec(&a), rec(&b))

	ev := Event{Category: CategoryDispatch, Dispatch: &DispatchEvent{Dropped: true}}
	m.Log(ev)

	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("expected both loggers to receive the event, got a=%d b=%d", len(a), len(b))
	}
}

type recorderLogger struct {
	dst *[]Event
}

func (r recorderLogger) Log(e Event) {
	*r.dst = append(*r.dst, e)
}
