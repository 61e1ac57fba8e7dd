// Package notify delivers alert messages over pluggable channels.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Priority of a message.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Message is one notification.
type Message struct {
	Recipient string            `json:"recipient"`
	Subject   string            `json:"subject"`
	Body      string            `json:"body"`
	Priority  Priority          `json:"priority"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	SentAt    time.Time         `json:"sent_at"`
}

// Validate checks the fields every channel requires.
func (m Message) Validate() error {
	var errs []error
	if strings.TrimSpace(m.Recipient) == "" {
		errs = append(errs, errors.New("recipient is required"))
	}
	if strings.TrimSpace(m.Subject) == "" {
		errs = append(errs, errors.New("subject is required"))
	}
	switch m.Priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		errs = append(errs, fmt.Errorf("unknown priority %q", m.Priority))
	}
	return errors.Join(errs...)
}

// Channel sends messages to one destination.
type Channel interface {
	// Name returns the channel kind for logging and metrics.
	Name() string

	// Send delivers msg. Implementations retry transient failures themselves.
	Send(ctx context.Context, msg Message) error
}
