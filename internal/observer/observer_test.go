package observer

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/vietddude/weatherwatch/internal/core/domain"
	"github.com/vietddude/weatherwatch/internal/dispatch"
	"github.com/vietddude/weatherwatch/internal/notify"
)

// Compile-time checks.
var (
	_ dispatch.Subscriber = (*Display)(nil)
	_ dispatch.Subscriber = (*Alert)(nil)
	_ dispatch.Subscriber = (*Statistics)(nil)
)

type fakeChannel struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (c *fakeChannel) Name() string { return "fake" }

func (c *fakeChannel) Send(ctx context.Context, msg notify.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

var t0 = time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)

func event(sev domain.Severity, temp float64, at time.Time) domain.Event {
	return domain.Event{
		ID:       "ev-" + at.Format("150405"),
		Kind:     domain.EventKindCriticalThreshold,
		Severity: sev,
		Snapshot: domain.Measurement{Temperature: temp, Humidity: 50, Pressure: 1000, CapturedAt: at},
	}
}

func TestActivationToggle(t *testing.T) {
	d := NewDisplay("lobby", nil)
	if !d.Active() {
		t.Fatal("observers start active")
	}
	d.SetActive(false)
	if d.Active() {
		t.Error("expected inactive")
	}
	d.SetActive(false) // no-op
	d.SetActive(true)
	if !d.Active() || d.ID() != "lobby" {
		t.Error("unexpected state after reactivation")
	}
	if err := d.Receive(context.Background(), event(domain.SeverityLow, 20, t0)); err != nil {
		t.Errorf("display Receive failed: %v", err)
	}
}

func TestAlertSeverityFloor(t *testing.T) {
	ch := &fakeChannel{}
	a := NewAlert("ops", DefaultAlertConfig, ch, nil)
	ctx := context.Background()

	for _, sev := range []domain.Severity{domain.SeverityLow, domain.SeverityMedium, domain.SeverityHigh, domain.SeverityCritical} {
		if err := a.Receive(ctx, event(sev, 45, t0)); err != nil {
			t.Fatalf("Receive(%s) failed: %v", sev, err)
		}
	}

	if a.Count() != 2 {
		t.Errorf("expected 2 alerts, got %d", a.Count())
	}
	if len(ch.sent) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(ch.sent))
	}
	msg := ch.sent[1]
	if msg.Priority != notify.PriorityHigh || msg.Recipient != "ops" {
		t.Errorf("unexpected message %+v", msg)
	}
	if msg.Metadata["severity"] != "CRITICAL" {
		t.Errorf("metadata severity = %q", msg.Metadata["severity"])
	}
	if err := msg.Validate(); err != nil {
		t.Errorf("alert message invalid: %v", err)
	}
}

func TestAlertPropagatesChannelError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("redis down")}
	a := NewAlert("ops", AlertConfig{MinSeverity: domain.SeverityMedium, Recipient: "oncall"}, ch, nil)

	err := a.Receive(context.Background(), event(domain.SeverityMedium, 20, t0))
	if err == nil || !errors.Is(err, ch.err) {
		t.Fatalf("expected wrapped channel error, got %v", err)
	}
}

func TestStatisticsSummary(t *testing.T) {
	s := NewStatistics("stats", 3, nil)
	ctx := context.Background()

	if got := s.Summary(); got.Readings != 0 {
		t.Fatalf("expected empty summary, got %+v", got)
	}

	temps := []float64{10, 20, 30, 40}
	for i, temp := range temps {
		at := t0.Add(time.Duration(i) * time.Minute)
		if err := s.Receive(ctx, event(domain.SeverityLow, temp, at)); err != nil {
			t.Fatalf("Receive failed: %v", err)
		}
	}
	// Same snapshot again (a second event from one update) is not double counted.
	_ = s.Receive(ctx, event(domain.SeverityHigh, 40, t0.Add(3*time.Minute)))

	sum := s.Summary()
	if sum.Readings != 4 {
		t.Errorf("expected 4 readings, got %d", sum.Readings)
	}
	if sum.AvgTemperature != 25 {
		t.Errorf("lifetime avg = %v, want 25", sum.AvgTemperature)
	}
	if sum.WindowSize != 3 {
		t.Errorf("window size = %d, want 3", sum.WindowSize)
	}
	// Window holds 20, 30, 40.
	if sum.Temperature.Min != 20 || sum.Temperature.Max != 40 || sum.Temperature.Avg != 30 {
		t.Errorf("window temperature stats = %+v", sum.Temperature)
	}
	if sum.Span != 2*time.Minute {
		t.Errorf("span = %v, want 2m", sum.Span)
	}
	if math.Abs(sum.AvgPressure-1000) > 1e-9 {
		t.Errorf("avg pressure = %v", sum.AvgPressure)
	}
}

func TestObserversWithDispatcher(t *testing.T) {
	tick := 0
	clock := func() time.Time {
		tick++
		return t0.Add(time.Duration(tick) * time.Second)
	}
	d, err := dispatch.New(dispatch.DefaultConfig(), dispatch.WithClock(clock))
	if err != nil {
		t.Fatalf("dispatch.New failed: %v", err)
	}

	ch := &fakeChannel{}
	alert := NewAlert("alerts", DefaultAlertConfig, ch, nil)
	stats := NewStatistics("stats", 10, nil)
	display := NewDisplay("display", nil)
	for _, sub := range []dispatch.Subscriber{display, alert, stats} {
		d.Register(sub)
	}

	ctx := context.Background()
	readings := [][3]float64{
		{20, 50, 1013}, // LOW
		{45, 98, 940},  // CRITICAL, HIGH, MEDIUM
		{25, 96, 1013}, // HIGH
	}
	for _, r := range readings {
		if err := d.UpdateState(ctx, r[0], r[1], r[2]); err != nil {
			t.Fatalf("UpdateState(%v) failed: %v", r, err)
		}
	}

	if alert.Count() != 3 {
		t.Errorf("expected 3 alerts, got %d", alert.Count())
	}
	if got := stats.Summary().Readings; got != 3 {
		t.Errorf("expected 3 readings, got %d", got)
	}
}
