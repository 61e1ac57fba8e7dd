package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/vietddude/weatherwatch/internal/core/retry"
	redisclient "github.com/vietddude/weatherwatch/internal/infra/redis"
)

// Publisher is the subset of the Redis client used by RedisChannel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) (int64, error)
}

// RedisChannel publishes JSON-encoded messages on a Redis pub/sub channel.
type RedisChannel struct {
	pub      Publisher
	channel  string
	executor *retry.Executor
	log      *slog.Logger
}

// NewRedisChannel creates a channel publishing on channel through pub. Every
// publish runs through executor, retrying only transient Redis failures.
func NewRedisChannel(pub Publisher, channel string, executor *retry.Executor, l *slog.Logger) *RedisChannel {
	if l == nil {
		l = slog.Default()
	}
	return &RedisChannel{
		pub:      pub,
		channel:  channel,
		executor: executor,
		log:      l.With("channel", KindRedis),
	}
}

func (c *RedisChannel) Name() string { return string(KindRedis) }

func (c *RedisChannel) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	receivers, err := retry.Run(ctx, c.executor, "notify.redis.publish",
		func(ctx context.Context) (int64, error) {
			return c.pub.Publish(ctx, c.channel, payload)
		},
		redisclient.IsTransient,
	)
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", c.channel, err)
	}

	c.log.Debug("Published notification",
		"redis_channel", c.channel,
		"receivers", receivers,
		"subject", msg.Subject,
	)
	return nil
}
