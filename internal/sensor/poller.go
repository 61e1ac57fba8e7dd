package sensor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vietddude/weatherwatch/internal/core/retry"
)

// Updater accepts validated state updates; *dispatch.Dispatcher implements it.
type Updater interface {
	UpdateState(ctx context.Context, temperature, humidity, pressure float64) error
}

// Poller reads a Source on an interval and pushes each reading to an Updater.
// Reads go through the executor so transient sensor failures are retried.
type Poller struct {
	source   Source
	target   Updater
	executor *retry.Executor
	interval time.Duration
	log      *slog.Logger

	mu          sync.RWMutex
	lastSuccess time.Time
	failures    int
}

// NewPoller creates a poller. interval <= 0 means 5s.
func NewPoller(
	source Source,
	target Updater,
	executor *retry.Executor,
	interval time.Duration,
	l *slog.Logger,
) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if l == nil {
		l = slog.Default()
	}
	return &Poller{
		source:   source,
		target:   target,
		executor: executor,
		interval: interval,
		log:      l.With("component", "poller"),
	}
}

// Poll performs one read-and-update cycle.
func (p *Poller) Poll(ctx context.Context) error {
	reading, err := retry.Run(ctx, p.executor, "sensor.read", p.source.Read, nil)
	if err != nil {
		p.recordFailure()
		return fmt.Errorf("read sensor: %w", err)
	}

	r := reading.Round()
	if err := p.target.UpdateState(ctx, r.Temperature, r.Humidity, r.Pressure); err != nil {
		p.recordFailure()
		return fmt.Errorf("update state: %w", err)
	}

	p.mu.Lock()
	p.lastSuccess = time.Now()
	p.mu.Unlock()
	return nil
}

// Run polls until ctx is done. Cycle errors are logged and do not stop the loop.
func (p *Poller) Run(ctx context.Context) error {
	p.log.Info("Starting sensor poller", "interval", p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.Poll(ctx); err != nil && ctx.Err() == nil {
			p.log.Warn("Poll cycle failed", "error", err)
		}

		select {
		case <-ctx.Done():
			p.log.Info("Sensor poller stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (p *Poller) recordFailure() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures++
}

// Interval returns the polling interval.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// LastSuccess returns the time of the last successful cycle, zero if none.
func (p *Poller) LastSuccess() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastSuccess
}

// Failures returns the number of failed cycles.
func (p *Poller) Failures() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.failures
}
