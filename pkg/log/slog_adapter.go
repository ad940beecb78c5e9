package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes lifecycle events to an slog.Logger.
// Useful for development when you want to see ref-count transitions in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("registry_id", event.RegistryID),
		slog.String("op", event.Op.String()),
	}

	if event.Key != "" {
		attrs = append(attrs, slog.String("key", event.Key))
	}

	// Observer count is meaningless for a global clear
	if event.Op != OpClear {
		attrs = append(attrs, slog.Int("observers", event.Observers))
	}

	if event.Err != "" {
		attrs = append(attrs, slog.String("err", event.Err))
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "registry", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
