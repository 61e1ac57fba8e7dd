package observer

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/vietddude/weatherwatch/internal/core/domain"
	"github.com/vietddude/weatherwatch/internal/notify"
)

// AlertConfig configures an Alert observer.
type AlertConfig struct {
	// MinSeverity is the lowest severity that raises an alert.
	MinSeverity domain.Severity
	Recipient   string
}

// DefaultAlertConfig alerts on HIGH and CRITICAL events.
var DefaultAlertConfig = AlertConfig{MinSeverity: domain.SeverityHigh}

// Alert forwards events at or above a severity floor to a notification channel.
type Alert struct {
	base
	cfg     AlertConfig
	channel notify.Channel
	count   atomic.Int64
}

// NewAlert creates an alert observer sending through ch.
func NewAlert(name string, cfg AlertConfig, ch notify.Channel, l *slog.Logger) *Alert {
	if cfg.Recipient == "" {
		cfg.Recipient = name
	}
	a := &Alert{cfg: cfg, channel: ch}
	a.init(name, "alert", l)
	return a
}

// Receive raises an alert for qualifying events. Lower severities are ignored.
func (a *Alert) Receive(ctx context.Context, ev domain.Event) error {
	if ev.Severity < a.cfg.MinSeverity {
		return nil
	}

	n := a.count.Add(1)
	msg := notify.Message{
		Recipient: a.cfg.Recipient,
		Subject:   fmt.Sprintf("Weather alert #%d: %s", n, ev.Kind),
		Body: fmt.Sprintf(
			"severity=%s temperature=%.1f°C humidity=%.1f%% pressure=%.1fhPa at %s",
			ev.Severity,
			ev.Snapshot.Temperature,
			ev.Snapshot.Humidity,
			ev.Snapshot.Pressure,
			ev.Snapshot.CapturedAt.Format("2006-01-02 15:04:05"),
		),
		Priority: priorityFor(ev.Severity),
		Metadata: map[string]string{
			"event_id": ev.ID,
			"kind":     string(ev.Kind),
			"severity": ev.Severity.String(),
		},
		SentAt: ev.EmittedAt,
	}

	a.log.Warn("Critical weather condition detected",
		"kind", ev.Kind,
		"severity", ev.Severity.String(),
		"alert_number", n,
	)

	if err := a.channel.Send(ctx, msg); err != nil {
		return fmt.Errorf("send alert via %s: %w", a.channel.Name(), err)
	}
	return nil
}

// Count returns the number of alerts raised so far.
func (a *Alert) Count() int64 {
	return a.count.Load()
}

func priorityFor(s domain.Severity) notify.Priority {
	switch {
	case s >= domain.SeverityHigh:
		return notify.PriorityHigh
	case s == domain.SeverityMedium:
		return notify.PriorityMedium
	default:
		return notify.PriorityLow
	}
}
