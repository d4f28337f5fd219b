package keyevent

import (
	"context"
	"log/slog"
)

// SlogAdapter writes Events to a log/slog.Logger. Useful for console
// output during development or under --debug. Adapted from the
// teacher's pkg/log.SlogAdapter.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter wraps logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes event at Debug level with structured fields (spec.md §7:
// "logged with structured fields: component, kind, device where
// applicable").
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("component", event.Category.String()),
	}
	if event.DeviceKey != "" {
		attrs = append(attrs, slog.String("device", event.DeviceKey))
	}

	switch {
	case event.Dispatch != nil:
		attrs = append(attrs,
			slog.Bool("dropped", event.Dispatch.Dropped),
			slog.String("reason", event.Dispatch.Reason),
		)
	case event.Engine != nil:
		attrs = append(attrs,
			slog.String("kind", event.Engine.Kind),
			slog.String("detail", event.Engine.Detail),
		)
	case event.Artifact != nil:
		attrs = append(attrs,
			slog.String("path", event.Artifact.Path),
			slog.Bool("ok", event.Artifact.Ok),
			slog.String("reason", event.Artifact.Reason),
		)
	case event.Platform != nil:
		attrs = append(attrs,
			slog.String("kind", event.Platform.Kind),
			slog.String("reason", event.Platform.Reason),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "keyrx event", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
