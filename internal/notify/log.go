package notify

import (
	"context"
	"fmt"
	"log/slog"
)

// LogChannel writes messages to a structured logger.
type LogChannel struct {
	log *slog.Logger
}

// NewLogChannel creates a log channel. A nil logger means slog.Default().
func NewLogChannel(l *slog.Logger) *LogChannel {
	if l == nil {
		l = slog.Default()
	}
	return &LogChannel{log: l.With("channel", KindLog)}
}

func (c *LogChannel) Name() string { return string(KindLog) }

func (c *LogChannel) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}

	level := slog.LevelInfo
	if msg.Priority == PriorityHigh {
		level = slog.LevelWarn
	}
	c.log.Log(ctx, level, msg.Subject,
		"recipient", msg.Recipient,
		"priority", msg.Priority,
		"body", msg.Body,
	)
	return nil
}
