// Package retry runs operations with classified failures and exponential
// backoff. Only failures the caller classifies as transient are retried;
// anything else is returned unmodified on first occurrence.
package retry

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"
)

// Classifier reports whether a failure is worth retrying. It must be pure.
type Classifier func(err error) bool

// Sleeper waits for d or until ctx is done, whichever comes first.
type Sleeper func(ctx context.Context, d time.Duration) error

// Outcome labels the result of one attempt for a Recorder.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeTransient Outcome = "transient"
	OutcomeFatal     Outcome = "fatal"
	OutcomeExhausted Outcome = "exhausted"
	OutcomeCancelled Outcome = "cancelled"
)

// Recorder receives structured retry events.
type Recorder interface {
	RecordAttempt(operation string, outcome Outcome)
	RecordDelay(operation string, delay time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordAttempt(string, Outcome)       {}
func (nopRecorder) RecordDelay(string, time.Duration) {}

// Executor applies a fixed Policy to any number of sequential operations.
type Executor struct {
	policy   Policy
	log      *slog.Logger
	recorder Recorder
	jitter   func() float64
	sleep    Sleeper
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.log = l
		}
	}
}

// WithRecorder sets the sink for attempt outcomes and delays.
func WithRecorder(r Recorder) Option {
	return func(e *Executor) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithJitter overrides the jitter source. fn must return a fraction in [0, MaxJitter].
func WithJitter(fn func() float64) Option {
	return func(e *Executor) {
		if fn != nil {
			e.jitter = fn
		}
	}
}

// WithSleeper overrides how the executor waits between attempts.
func WithSleeper(s Sleeper) Option {
	return func(e *Executor) {
		if s != nil {
			e.sleep = s
		}
	}
}

// NewExecutor creates an executor for the given policy.
func NewExecutor(policy Policy, opts ...Option) (*Executor, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	e := &Executor{
		policy:   policy,
		log:      slog.Default(),
		recorder: nopRecorder{},
		jitter:   func() float64 { return rand.Float64() * MaxJitter },
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Policy returns the executor's policy.
func (e *Executor) Policy() Policy {
	return e.policy
}

// WithPolicy returns a copy of e using another policy and the same sinks.
func (e *Executor) WithPolicy(policy Policy) (*Executor, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	clone := *e
	clone.policy = policy
	return &clone, nil
}

// Do runs an operation that produces no value.
func (e *Executor) Do(
	ctx context.Context,
	name string,
	op func(ctx context.Context) error,
	isTransient Classifier,
) error {
	_, err := Run(ctx, e, name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	}, isTransient)
	return err
}

// Run invokes op until it succeeds, fails with a non-transient error, or the
// policy's retries are used up. A nil classifier means IsTransient.
//
// At most MaxRetries+1 attempts are made. Non-transient errors are returned
// as-is; exhaustion yields *ExhaustedError and a context ending during a wait
// yields *CancelledError.
func Run[T any](
	ctx context.Context,
	e *Executor,
	name string,
	op func(ctx context.Context) (T, error),
	isTransient Classifier,
) (T, error) {
	if isTransient == nil {
		isTransient = IsTransient
	}

	var zero T
	for attempt := 0; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			e.recorder.RecordAttempt(name, OutcomeSuccess)
			if attempt > 0 {
				e.log.Debug("Operation succeeded after retry", "operation", name, "attempts", attempt+1)
			}
			return result, nil
		}

		if !isTransient(err) {
			e.recorder.RecordAttempt(name, OutcomeFatal)
			e.log.Warn("Non-transient error, aborting retry",
				"operation", name,
				"attempt", attempt+1,
				"error", err,
			)
			return zero, err
		}

		if attempt == e.policy.MaxRetries {
			e.recorder.RecordAttempt(name, OutcomeExhausted)
			e.log.Error("Retries exhausted",
				"operation", name,
				"attempts", attempt+1,
				"error", err,
			)
			return zero, &ExhaustedError{Operation: name, Attempts: attempt + 1, Err: err}
		}

		e.recorder.RecordAttempt(name, OutcomeTransient)
		delay := e.policy.Delay(attempt+1, e.jitter())
		e.log.Warn("Transient error, retrying",
			"operation", name,
			"attempt", attempt+1,
			"max_retries", e.policy.MaxRetries,
			"delay", delay,
			"error", err,
		)
		e.recorder.RecordDelay(name, delay)

		if err := e.sleep(ctx, delay); err != nil {
			e.recorder.RecordAttempt(name, OutcomeCancelled)
			return zero, &CancelledError{Operation: name, Attempts: attempt + 1, Err: err}
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
