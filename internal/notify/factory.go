package notify

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vietddude/weatherwatch/internal/core/retry"
)

// Kind names a channel implementation.
type Kind string

const (
	KindLog   Kind = "log"
	KindRedis Kind = "redis"
)

// ErrUnsupportedChannel is returned for unknown kinds or kinds the factory
// was not configured for.
var ErrUnsupportedChannel = errors.New("unsupported notification channel")

// FactoryConfig holds what the factory needs to build channels.
type FactoryConfig struct {
	Logger   *slog.Logger
	Executor *retry.Executor
	// Publisher and RedisChannel are required for KindRedis.
	Publisher    Publisher
	RedisChannel string
}

// Factory builds channels by kind and caches one instance per kind.
type Factory struct {
	cfg   FactoryConfig
	mu    sync.Mutex
	cache map[Kind]Channel
}

// NewFactory creates a channel factory.
func NewFactory(cfg FactoryConfig) *Factory {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Factory{
		cfg:   cfg,
		cache: make(map[Kind]Channel),
	}
}

// Get returns the cached channel for kind, creating it on first use.
func (f *Factory) Get(kind Kind) (Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if ch, ok := f.cache[kind]; ok {
		return ch, nil
	}

	var ch Channel
	switch kind {
	case KindLog:
		ch = NewLogChannel(f.cfg.Logger)
	case KindRedis:
		if f.cfg.Publisher == nil || f.cfg.Executor == nil {
			return nil, fmt.Errorf("%w: %s requires a publisher and an executor", ErrUnsupportedChannel, kind)
		}
		ch = NewRedisChannel(f.cfg.Publisher, f.cfg.RedisChannel, f.cfg.Executor, f.cfg.Logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedChannel, kind)
	}

	f.cache[kind] = ch
	f.cfg.Logger.Info("Notification channel created", "kind", kind)
	return ch, nil
}

// Supported lists the kinds the factory knows about.
func (f *Factory) Supported() []Kind {
	return []Kind{KindLog, KindRedis}
}

// Reset drops every cached channel.
func (f *Factory) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache = make(map[Kind]Channel)
}
