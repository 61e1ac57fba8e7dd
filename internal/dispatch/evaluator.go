package dispatch

import (
	"github.com/google/uuid"
	"github.com/vietddude/weatherwatch/internal/core/domain"
)

// Evaluate classifies a measurement against the thresholds.
//
// Rules are checked independently, in this order:
//   - temperature >= max or <= min: critical_threshold, CRITICAL
//   - humidity >= max:              humidity_changed, HIGH
//   - pressure <= min or >= max:    pressure_changed, MEDIUM
//
// When no rule fires a single LOW temperature_changed event is returned, so
// the result is never empty.
func Evaluate(m domain.Measurement, cfg domain.ThresholdConfig) []domain.Event {
	var events []domain.Event

	if m.Temperature >= cfg.TemperatureMax || m.Temperature <= cfg.TemperatureMin {
		events = append(events, newEvent(m, domain.EventKindCriticalThreshold, domain.SeverityCritical))
	}

	if m.Humidity >= cfg.HumidityMax {
		events = append(events, newEvent(m, domain.EventKindHumidityChanged, domain.SeverityHigh))
	}

	if m.Pressure <= cfg.PressureMin || m.Pressure >= cfg.PressureMax {
		events = append(events, newEvent(m, domain.EventKindPressureChanged, domain.SeverityMedium))
	}

	if len(events) == 0 {
		events = append(events, newEvent(m, domain.EventKindTemperatureChanged, domain.SeverityLow))
	}

	return events
}

func newEvent(m domain.Measurement, kind domain.EventKind, severity domain.Severity) domain.Event {
	return domain.Event{
		ID:        uuid.New().String(),
		Kind:      kind,
		Severity:  severity,
		Snapshot:  m,
		EmittedAt: m.CapturedAt,
	}
}
