package retry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// recordingSleeper captures requested delays without waiting.
type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return ctx.Err()
}

type countingRecorder struct {
	mu       sync.Mutex
	outcomes map[Outcome]int
	delays   int
}

func (r *countingRecorder) RecordAttempt(_ string, o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outcomes == nil {
		r.outcomes = make(map[Outcome]int)
	}
	r.outcomes[o]++
}

func (r *countingRecorder) RecordDelay(string, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays++
}

var testPolicy = Policy{
	MaxRetries:        3,
	BaseDelay:         1000 * time.Millisecond,
	MaxDelay:          10000 * time.Millisecond,
	BackoffMultiplier: 2,
}

func newTestExecutor(t *testing.T, p Policy, jitter float64) (*Executor, *recordingSleeper, *countingRecorder) {
	t.Helper()
	sleeper := &recordingSleeper{}
	rec := &countingRecorder{}
	e, err := NewExecutor(p,
		WithSleeper(sleeper.Sleep),
		WithJitter(func() float64 { return jitter }),
		WithRecorder(rec),
	)
	if err != nil {
		t.Fatalf("NewExecutor failed: %v", err)
	}
	return e, sleeper, rec
}

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		wantErr bool
	}{
		{"default", DefaultPolicy, false},
		{"zero retries", Policy{0, time.Millisecond, time.Millisecond, 1}, false},
		{"negative retries", Policy{-1, time.Millisecond, time.Millisecond, 1}, true},
		{"zero base", Policy{1, 0, time.Millisecond, 1}, true},
		{"max below base", Policy{1, time.Second, time.Millisecond, 1}, true},
		{"shrinking multiplier", Policy{1, time.Millisecond, time.Second, 0.5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if _, err := NewExecutor(Policy{}); err == nil {
		t.Error("expected NewExecutor to reject an invalid policy")
	}
}

func TestPolicyDelay(t *testing.T) {
	// Retry 1: 1000ms, retry 2: 2000ms, retry 3: 4000ms (no jitter)
	for n, want := range map[int]time.Duration{
		0: 0,
		1: 1000 * time.Millisecond,
		2: 2000 * time.Millisecond,
		3: 4000 * time.Millisecond,
		4: 8000 * time.Millisecond,
		5: 10000 * time.Millisecond, // 16000 capped
	} {
		if got := testPolicy.Delay(n, 0); got != want {
			t.Errorf("Delay(%d, 0) = %v, want %v", n, got, want)
		}
	}

	// Full jitter adds 10%.
	if got := testPolicy.Delay(3, MaxJitter); got != 4400*time.Millisecond {
		t.Errorf("Delay(3, max) = %v, want 4.4s", got)
	}

	// Jitter never pushes past the cap.
	if got := testPolicy.Delay(4, MaxJitter); got != 8800*time.Millisecond {
		t.Errorf("Delay(4, max) = %v, want 8.8s", got)
	}
	if got := testPolicy.Delay(30, MaxJitter); got != testPolicy.MaxDelay {
		t.Errorf("Delay(30, max) = %v, want cap", got)
	}

	// Out of range jitter is clamped.
	if got := testPolicy.Delay(1, 5); got != 1100*time.Millisecond {
		t.Errorf("Delay(1, 5) = %v, want 1.1s", got)
	}
}

func TestPolicyDelayNonDecreasing(t *testing.T) {
	p := Policy{MaxRetries: 20, BaseDelay: 50 * time.Millisecond, MaxDelay: 3 * time.Second, BackoffMultiplier: 1.5}
	prev := time.Duration(0)
	for n := 1; n <= 20; n++ {
		d := p.Delay(n, 0)
		if d < prev {
			t.Fatalf("delay for retry %d (%v) below previous %v", n, d, prev)
		}
		if d > p.MaxDelay {
			t.Fatalf("delay for retry %d (%v) exceeds max", n, d)
		}
		prev = d
	}
}

func TestRunSucceedsImmediately(t *testing.T) {
	e, sleeper, rec := newTestExecutor(t, testPolicy, 0)

	calls := 0
	got, err := Run(context.Background(), e, "op", func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	}, nil)
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if got != "ok" {
		t.Errorf("expected ok, got %q", got)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if len(sleeper.delays) != 0 {
		t.Errorf("expected no delays, got %v", sleeper.delays)
	}
	if rec.outcomes[OutcomeSuccess] != 1 {
		t.Errorf("expected one success outcome, got %v", rec.outcomes)
	}
}

func TestRunRecoversAfterTransientFailures(t *testing.T) {
	// Fails on attempts 1-3, succeeds on attempt 4.
	e, sleeper, _ := newTestExecutor(t, testPolicy, MaxJitter)

	calls := 0
	got, err := Run(context.Background(), e, "gateway", func(ctx context.Context) (int, error) {
		calls++
		if calls <= 3 {
			return 0, Transient(errors.New("gateway timeout"))
		}
		return 42, nil
	}, nil)
	if err != nil {
		t.Fatalf("expected nil after retries, got %v", err)
	}
	if got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	if calls != 4 {
		t.Errorf("expected 4 calls, got %d", calls)
	}

	want := [][2]time.Duration{
		{1000 * time.Millisecond, 1100 * time.Millisecond},
		{2000 * time.Millisecond, 2200 * time.Millisecond},
		{4000 * time.Millisecond, 4400 * time.Millisecond},
	}
	if len(sleeper.delays) != len(want) {
		t.Fatalf("expected %d delays, got %v", len(want), sleeper.delays)
	}
	for i, d := range sleeper.delays {
		if d < want[i][0] || d > want[i][1] {
			t.Errorf("delay %d = %v not in [%v, %v]", i, d, want[i][0], want[i][1])
		}
		if i > 0 && d < sleeper.delays[i-1] {
			t.Errorf("delay %d (%v) decreased from %v", i, d, sleeper.delays[i-1])
		}
	}
}

func TestRunExhaustsRetries(t *testing.T) {
	e, sleeper, rec := newTestExecutor(t, testPolicy, 0)

	calls := 0
	_, err := Run(context.Background(), e, "smtp", func(ctx context.Context) (bool, error) {
		calls++
		return false, Transient(errors.New("SMTP server timeout"))
	}, nil)

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected *ExhaustedError, got %T: %v", err, err)
	}
	if !errors.Is(err, ErrExhausted) {
		t.Error("expected errors.Is(err, ErrExhausted)")
	}
	// maxRetries=3 means initial attempt + 3 retries = 4 total calls.
	if calls != 4 {
		t.Errorf("expected 4 calls, got %d", calls)
	}
	if exhausted.Attempts != 4 {
		t.Errorf("expected Attempts=4, got %d", exhausted.Attempts)
	}
	if exhausted.Err.Error() != "SMTP server timeout" {
		t.Errorf("expected original message, got %q", exhausted.Err.Error())
	}
	if len(sleeper.delays) != 3 {
		t.Errorf("expected 3 delays, got %d", len(sleeper.delays))
	}
	if rec.outcomes[OutcomeTransient] != 3 || rec.outcomes[OutcomeExhausted] != 1 {
		t.Errorf("unexpected outcomes %v", rec.outcomes)
	}
}

func TestRunNonTransientErrorNoRetry(t *testing.T) {
	e, sleeper, _ := newTestExecutor(t, testPolicy, 0)

	calls := 0
	permanentErr := errors.New("card declined")
	_, err := Run(context.Background(), e, "charge", func(ctx context.Context) (string, error) {
		calls++
		return "", permanentErr
	}, nil)
	if err != permanentErr {
		t.Errorf("expected permanentErr unmodified, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call (no retry for non-transient), got %d", calls)
	}
	if len(sleeper.delays) != 0 {
		t.Errorf("expected zero delays, got %v", sleeper.delays)
	}
}

func TestRunZeroRetriesMeansOneAttempt(t *testing.T) {
	e, _, _ := newTestExecutor(t, Policy{MaxRetries: 0, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffMultiplier: 1}, 0)

	calls := 0
	err := e.Do(context.Background(), "op", func(ctx context.Context) error {
		calls++
		return Transient(errors.New("busy"))
	}, nil)
	if !errors.Is(err, ErrExhausted) {
		t.Errorf("expected exhausted error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call with maxRetries=0, got %d", calls)
	}
}

func TestRunCustomClassifier(t *testing.T) {
	e, _, _ := newTestExecutor(t, testPolicy, 0)
	errTimeout := errors.New("timeout")

	calls := 0
	err := e.Do(context.Background(), "op", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return fmt.Errorf("send: %w", errTimeout)
		}
		return nil
	}, func(err error) bool { return errors.Is(err, errTimeout) })
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRunCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	e, err := NewExecutor(Policy{MaxRetries: 5, BaseDelay: time.Hour, MaxDelay: time.Hour, BackoffMultiplier: 1})
	if err != nil {
		t.Fatalf("NewExecutor failed: %v", err)
	}

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- e.Do(ctx, "op", func(ctx context.Context) error {
			calls++
			return Transient(errors.New("unavailable"))
		}, nil)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		var cancelled *CancelledError
		if !errors.As(err, &cancelled) {
			t.Fatalf("expected *CancelledError, got %T: %v", err, err)
		}
		if !errors.Is(err, context.Canceled) {
			t.Error("expected cancelled error to wrap context.Canceled")
		}
		if cancelled.Attempts != 1 || calls != 1 {
			t.Errorf("expected a single attempt, got Attempts=%d calls=%d", cancelled.Attempts, calls)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestIsTransient(t *testing.T) {
	base := errors.New("boom")
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"untagged", base, false},
		{"transient", Transient(base), true},
		{"wrapped transient", fmt.Errorf("publish: %w", Transient(base)), true},
		{"permanent", Permanent(base), false},
		{"permanent over transient", Permanent(Transient(base)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}

	if Transient(nil) != nil || Permanent(nil) != nil {
		t.Error("tagging nil must yield nil")
	}
	if !errors.Is(Transient(base), base) {
		t.Error("Transient must unwrap to the original error")
	}
}

func TestWithPolicyKeepsSinks(t *testing.T) {
	e, sleeper, _ := newTestExecutor(t, testPolicy, 0)
	short, err := e.WithPolicy(Policy{MaxRetries: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffMultiplier: 1})
	if err != nil {
		t.Fatalf("WithPolicy failed: %v", err)
	}
	if e.Policy().MaxRetries != 3 {
		t.Error("WithPolicy must not modify the original executor")
	}

	calls := 0
	_ = short.Do(context.Background(), "op", func(ctx context.Context) error {
		calls++
		return Transient(errors.New("busy"))
	}, nil)
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
	if len(sleeper.delays) != 1 {
		t.Errorf("expected the shared sleeper to record 1 delay, got %d", len(sleeper.delays))
	}
}
