package dispatch

import (
	"context"
	"fmt"

	"github.com/vietddude/weatherwatch/internal/core/domain"
)

// Subscriber consumes events fanned out by a Dispatcher.
type Subscriber interface {
	// ID identifies the subscriber; registration is idempotent per ID.
	ID() string

	// Active is checked for every event. Inactive subscribers are skipped.
	Active() bool

	// Receive handles one event. Errors are reported, never propagated.
	Receive(ctx context.Context, event domain.Event) error
}

// Handle identifies one registration.
type Handle string

// DeliveryError records a subscriber failing to receive an event.
type DeliveryError struct {
	Subscriber string
	EventID    string
	Kind       domain.EventKind
	Err        error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver %s event %s to %s: %v", e.Kind, e.EventID, e.Subscriber, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// DeliveryReport summarizes the fan-out of one event.
type DeliveryReport struct {
	EventID   string
	Delivered int
	Skipped   int
	Failures  []*DeliveryError
}
