// Package dispatch evaluates station readings against thresholds and fans the
// resulting events out to subscribers.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vietddude/weatherwatch/internal/core/domain"
)

// Recorder receives structured dispatch events.
type Recorder interface {
	RecordMeasurement(m domain.Measurement)
	RecordEvent(event domain.Event)
	RecordDelivery(subscriber string, err error)
	RecordRejected(fields []string)
}

type nopRecorder struct{}

func (nopRecorder) RecordMeasurement(domain.Measurement) {}
func (nopRecorder) RecordEvent(domain.Event)             {}
func (nopRecorder) RecordDelivery(string, error)         {}
func (nopRecorder) RecordRejected([]string)              {}

// Config holds dispatcher settings.
type Config struct {
	Thresholds domain.ThresholdConfig
	Bounds     domain.Bounds
	// Initial is the state reported before the first update. Nil
	// means domain.DefaultMeasurement.
	Initial *domain.Measurement
}

// DefaultConfig returns the station defaults.
func DefaultConfig() Config {
	return Config{
		Thresholds: domain.DefaultThresholds,
		Bounds:     domain.DefaultBounds,
	}
}

type registration struct {
	handle Handle
	sub    Subscriber
}

// Dispatcher owns the subscriber set and the latest measurement.
//
// UpdateState and Notify are serialized by one mutex: a state update swaps the
// measurement, evaluates it and delivers every event before releasing it.
// Subscribers must not call back into the dispatcher from Receive.
type Dispatcher struct {
	mu         sync.Mutex
	subs       []registration
	current    domain.Measurement
	thresholds domain.ThresholdConfig
	bounds     domain.Bounds
	log        *slog.Logger
	recorder   Recorder
	now        func() time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

// WithRecorder sets the observability sink.
func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) {
		if r != nil {
			d.recorder = r
		}
	}
}

// WithClock overrides the timestamp source for new measurements.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// New creates a dispatcher.
func New(cfg Config, opts ...Option) (*Dispatcher, error) {
	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid thresholds: %w", err)
	}

	d := &Dispatcher{
		thresholds: cfg.Thresholds,
		bounds:     cfg.Bounds,
		log:        slog.Default(),
		recorder:   nopRecorder{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.With("component", "dispatcher")

	if cfg.Initial != nil {
		d.current = *cfg.Initial
	} else {
		d.current = domain.DefaultMeasurement(d.now())
	}
	return d, nil
}

// Register adds a subscriber. Registering an ID that is already present is a
// no-op: the existing handle is returned with added=false.
func (d *Dispatcher) Register(sub Subscriber) (handle Handle, added bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := sub.ID()
	for _, r := range d.subs {
		if r.sub.ID() == id {
			d.log.Warn("Subscriber already registered", "subscriber", id)
			return r.handle, false
		}
	}

	handle = Handle(uuid.New().String())
	d.subs = append(d.subs, registration{handle: handle, sub: sub})
	d.log.Info("Subscriber registered", "subscriber", id, "total", len(d.subs))
	return handle, true
}

// Unregister removes the registration for h. It reports whether one existed.
func (d *Dispatcher) Unregister(h Handle) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, r := range d.subs {
		if r.handle == h {
			return d.removeLocked(i)
		}
	}
	return false
}

// UnregisterID removes the subscriber with the given ID, if registered.
func (d *Dispatcher) UnregisterID(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, r := range d.subs {
		if r.sub.ID() == id {
			return d.removeLocked(i)
		}
	}
	return false
}

func (d *Dispatcher) removeLocked(i int) bool {
	id := d.subs[i].sub.ID()
	d.subs = append(d.subs[:i], d.subs[i+1:]...)
	d.log.Info("Subscriber removed", "subscriber", id, "total", len(d.subs))
	return true
}

// UpdateState validates a reading and, if every field is within bounds,
// replaces the current measurement and dispatches the evaluated events.
// Invalid input returns *domain.ValidationError and changes nothing.
func (d *Dispatcher) UpdateState(ctx context.Context, temperature, humidity, pressure float64) error {
	if err := d.bounds.Check("dispatcher.UpdateState", temperature, humidity, pressure); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			d.recorder.RecordRejected(verr.Fields())
		}
		d.log.Warn("Rejected reading", "error", err)
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	m := domain.Measurement{
		Temperature: temperature,
		Humidity:    humidity,
		Pressure:    pressure,
		CapturedAt:  d.now(),
	}
	d.current = m
	d.recorder.RecordMeasurement(m)
	d.log.Info("Weather data updated",
		"temperature", temperature,
		"humidity", humidity,
		"pressure", pressure,
	)

	for _, event := range Evaluate(m, d.thresholds) {
		d.recorder.RecordEvent(event)
		d.notifyLocked(ctx, event)
	}
	return nil
}

// Notify delivers event to every registered subscriber that is active at the
// time of the call, in registration order. A failing subscriber does not stop
// delivery to the rest.
func (d *Dispatcher) Notify(ctx context.Context, event domain.Event) DeliveryReport {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.notifyLocked(ctx, event)
}

func (d *Dispatcher) notifyLocked(ctx context.Context, event domain.Event) DeliveryReport {
	report := DeliveryReport{EventID: event.ID}

	active := make([]Subscriber, 0, len(d.subs))
	for _, r := range d.subs {
		if r.sub.Active() {
			active = append(active, r.sub)
		} else {
			report.Skipped++
		}
	}

	d.log.Debug("Notifying active subscribers",
		"count", len(active),
		"kind", event.Kind,
		"severity", event.Severity.String(),
	)

	for _, sub := range active {
		err := deliver(ctx, sub, event)
		d.recorder.RecordDelivery(sub.ID(), err)
		if err != nil {
			derr := &DeliveryError{
				Subscriber: sub.ID(),
				EventID:    event.ID,
				Kind:       event.Kind,
				Err:        err,
			}
			report.Failures = append(report.Failures, derr)
			d.log.Error("Error notifying subscriber", "subscriber", sub.ID(), "error", err)
			continue
		}
		report.Delivered++
	}
	return report
}

func deliver(ctx context.Context, sub Subscriber, event domain.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return sub.Receive(ctx, event)
}

// CurrentState returns a copy of the latest measurement.
func (d *Dispatcher) CurrentState() domain.Measurement {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Thresholds returns the configured thresholds.
func (d *Dispatcher) Thresholds() domain.ThresholdConfig {
	return d.thresholds
}

// SubscriberCount returns the number of registered subscribers.
func (d *Dispatcher) SubscriberCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs)
}

// Subscribers returns registered subscriber IDs in registration order.
func (d *Dispatcher) Subscribers() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	ids := make([]string, len(d.subs))
	for i, r := range d.subs {
		ids[i] = r.sub.ID()
	}
	return ids
}

// ActiveCount returns the number of registered subscribers currently active.
func (d *Dispatcher) ActiveCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, r := range d.subs {
		if r.sub.Active() {
			n++
		}
	}
	return n
}
