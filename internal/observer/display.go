package observer

import (
	"context"
	"log/slog"

	"github.com/vietddude/weatherwatch/internal/core/domain"
)

// Display renders every event it receives as a log record.
type Display struct {
	base
}

// NewDisplay creates a display observer.
func NewDisplay(name string, l *slog.Logger) *Display {
	d := &Display{}
	d.init(name, "display", l)
	return d
}

func (d *Display) Receive(ctx context.Context, ev domain.Event) error {
	d.log.InfoContext(ctx, "Weather update",
		"kind", ev.Kind,
		"severity", ev.Severity.String(),
		"temperature", ev.Snapshot.Temperature,
		"humidity", ev.Snapshot.Humidity,
		"pressure", ev.Snapshot.Pressure,
		"captured_at", ev.Snapshot.CapturedAt,
	)
	return nil
}
