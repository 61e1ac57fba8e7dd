package domain

import (
	"fmt"
	"strings"
	"time"
)

// Event represents a classified change in station state.
type Event struct {
	ID        string
	Kind      EventKind
	Severity  Severity
	Snapshot  Measurement
	EmittedAt time.Time
}

type EventKind string

const (
	EventKindTemperatureChanged EventKind = "temperature_changed"
	EventKindHumidityChanged    EventKind = "humidity_changed"
	EventKindPressureChanged    EventKind = "pressure_changed"
	EventKindCriticalThreshold  EventKind = "critical_threshold"
	EventKindGenericAlert       EventKind = "generic_alert"
)

// Severity is ordered: Low < Medium < High < Critical.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ParseSeverity parses a case-insensitive severity name.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOW":
		return SeverityLow, nil
	case "MEDIUM":
		return SeverityMedium, nil
	case "HIGH":
		return SeverityHigh, nil
	case "CRITICAL":
		return SeverityCritical, nil
	}
	return SeverityLow, fmt.Errorf("unknown severity %q", s)
}
