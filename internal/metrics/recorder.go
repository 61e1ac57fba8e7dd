package metrics

import (
	"time"

	"github.com/vietddude/weatherwatch/internal/core/domain"
	"github.com/vietddude/weatherwatch/internal/core/retry"
)

// Recorder forwards executor and dispatcher events to the prometheus
// collectors. It satisfies retry.Recorder and dispatch.Recorder.
type Recorder struct{}

// NewRecorder returns a recorder backed by the package collectors.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) RecordAttempt(operation string, outcome retry.Outcome) {
	RetryAttemptsTotal.WithLabelValues(operation, string(outcome)).Inc()
}

func (r *Recorder) RecordDelay(operation string, delay time.Duration) {
	RetryDelay.WithLabelValues(operation).Observe(delay.Seconds())
}

func (r *Recorder) RecordMeasurement(m domain.Measurement) {
	Temperature.Set(m.Temperature)
	Humidity.Set(m.Humidity)
	Pressure.Set(m.Pressure)
}

func (r *Recorder) RecordEvent(event domain.Event) {
	EventsTotal.WithLabelValues(string(event.Kind), event.Severity.String()).Inc()
}

func (r *Recorder) RecordDelivery(subscriber string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	DeliveriesTotal.WithLabelValues(subscriber, result).Inc()
}

func (r *Recorder) RecordRejected(fields []string) {
	for _, f := range fields {
		RejectedReadingsTotal.WithLabelValues(f).Inc()
	}
}
