package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsTotal tracks events produced by the threshold evaluator
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherwatch_events_total",
			Help: "Total number of events evaluated from station readings",
		},
		[]string{"kind", "severity"},
	)

	// DeliveriesTotal tracks event deliveries per subscriber
	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherwatch_deliveries_total",
			Help: "Total number of event deliveries to subscribers",
		},
		[]string{"subscriber", "result"},
	)

	// RejectedReadingsTotal tracks readings rejected by validation, per field
	RejectedReadingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherwatch_rejected_readings_total",
			Help: "Total number of rejected reading fields",
		},
		[]string{"field"},
	)

	// RetryAttemptsTotal tracks executor attempts by outcome
	RetryAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherwatch_retry_attempts_total",
			Help: "Total number of attempts made by the retry executor",
		},
		[]string{"operation", "outcome"},
	)

	// RetryDelay tracks backoff waits
	RetryDelay = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weatherwatch_retry_delay_seconds",
			Help:    "Backoff delay before a retry in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"operation"},
	)

	// Temperature tracks the latest accepted temperature
	Temperature = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "weatherwatch_temperature_celsius",
			Help: "Latest accepted temperature in degrees Celsius",
		},
	)

	// Humidity tracks the latest accepted relative humidity
	Humidity = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "weatherwatch_humidity_percent",
			Help: "Latest accepted relative humidity in percent",
		},
	)

	// Pressure tracks the latest accepted pressure
	Pressure = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "weatherwatch_pressure_hpa",
			Help: "Latest accepted pressure in hectopascal",
		},
	)
)
