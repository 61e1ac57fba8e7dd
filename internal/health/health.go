// Package health provides station health monitoring and status reporting.
package health

import (
	"time"

	"github.com/vietddude/weatherwatch/internal/core/domain"
)

// SystemStatus represents the overall health state of the system or a component.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

func (s SystemStatus) rank() int {
	switch s {
	case StatusCritical:
		return 2
	case StatusDegraded:
		return 1
	}
	return 0
}

// Worse returns the more severe of two statuses.
func Worse(a, b SystemStatus) SystemStatus {
	if b.rank() > a.rank() {
		return b
	}
	return a
}

// ComponentHealth contains health details for one part of the station.
type ComponentHealth struct {
	Name    string       `json:"name"`
	Status  SystemStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// SensorHealth describes the reading feed.
type SensorHealth struct {
	ComponentHealth
	LastReading time.Time     `json:"last_reading"`
	Age         time.Duration `json:"age_ns"`
	Interval    time.Duration `json:"interval_ns"`
	Failures    int           `json:"failures"`
}

// SubscriberHealth describes the registered observers.
type SubscriberHealth struct {
	ComponentHealth
	Registered int      `json:"registered"`
	Active     int      `json:"active"`
	IDs        []string `json:"ids"`
}

// HealthReport contains the full station health report.
type HealthReport struct {
	SystemStatus SystemStatus       `json:"system_status"`
	Sensor       SensorHealth       `json:"sensor"`
	Subscribers  SubscriberHealth   `json:"subscribers"`
	Measurement  domain.Measurement `json:"measurement"`
	CheckedAt    time.Time          `json:"checked_at"`
}
