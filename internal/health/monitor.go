package health

import (
	"fmt"
	"sync"
	"time"

	"github.com/vietddude/weatherwatch/internal/core/domain"
)

// StaleFactor is how many sensor intervals may pass without a reading before
// the feed counts as degraded.
const StaleFactor = 3

// Station exposes dispatcher state; *dispatch.Dispatcher implements it.
type Station interface {
	CurrentState() domain.Measurement
	Subscribers() []string
	SubscriberCount() int
	ActiveCount() int
}

// Feed exposes the sensor poller; *sensor.Poller implements it.
type Feed interface {
	Interval() time.Duration
	LastSuccess() time.Time
	Failures() int
}

// Monitor aggregates health status from the station components.
type Monitor struct {
	station Station
	feed    Feed
	now     func() time.Time
	started time.Time

	mu         sync.RWMutex
	lastReport HealthReport
}

// NewMonitor creates a new health monitor. feed may be nil when readings are
// pushed by something other than a poller.
func NewMonitor(station Station, feed Feed) *Monitor {
	return NewMonitorWithClock(station, feed, time.Now)
}

// NewMonitorWithClock is NewMonitor with an injected clock.
func NewMonitorWithClock(station Station, feed Feed, now func() time.Time) *Monitor {
	return &Monitor{
		station: station,
		feed:    feed,
		now:     now,
		started: now(),
	}
}

// CheckHealth evaluates every component and returns the aggregate report.
func (m *Monitor) CheckHealth() HealthReport {
	now := m.now()
	report := HealthReport{
		Sensor:      m.checkSensor(now),
		Subscribers: m.checkSubscribers(),
		Measurement: m.station.CurrentState(),
		CheckedAt:   now,
	}
	report.SystemStatus = Worse(report.Sensor.Status, report.Subscribers.Status)

	m.mu.Lock()
	m.lastReport = report
	m.mu.Unlock()
	return report
}

// LastReport returns the most recent report without re-checking.
func (m *Monitor) LastReport() HealthReport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastReport
}

func (m *Monitor) checkSensor(now time.Time) SensorHealth {
	h := SensorHealth{ComponentHealth: ComponentHealth{Name: "sensor", Status: StatusHealthy}}
	if m.feed == nil {
		h.Message = "no poller attached"
		return h
	}

	h.Interval = m.feed.Interval()
	h.Failures = m.feed.Failures()
	h.LastReading = m.feed.LastSuccess()

	// Before the first reading, measure staleness from startup
	since := h.LastReading
	if since.IsZero() {
		since = m.started
	}
	h.Age = now.Sub(since)

	if limit := StaleFactor * h.Interval; h.Age > limit {
		h.Status = StatusDegraded
		h.Message = fmt.Sprintf("no reading for %s (limit %s)", h.Age.Round(time.Millisecond), limit)
	}
	return h
}

func (m *Monitor) checkSubscribers() SubscriberHealth {
	h := SubscriberHealth{
		ComponentHealth: ComponentHealth{Name: "subscribers", Status: StatusHealthy},
		Registered:      m.station.SubscriberCount(),
		Active:          m.station.ActiveCount(),
		IDs:             m.station.Subscribers(),
	}
	if h.Active == 0 {
		h.Status = StatusCritical
		h.Message = "no active subscriber"
	}
	return h
}
