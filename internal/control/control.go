// Package control wires the station components together and manages their
// lifecycle.
package control

import (
	"log/slog"

	"github.com/vietddude/weatherwatch/internal/core/config"
	"github.com/vietddude/weatherwatch/internal/notify"
	"github.com/vietddude/weatherwatch/internal/sensor"
)

// Config holds the application configuration.
type Config struct {
	config.AppConfig
	// HealthEnabled starts the HTTP health server on Server.Port.
	HealthEnabled bool
}

// Option customizes a Station beyond what the config file expresses.
type Option func(*options)

type options struct {
	log       *slog.Logger
	source    sensor.Source
	publisher notify.Publisher
}

// WithLogger sets the logger handed to every component.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithSource replaces the simulated sensor.
func WithSource(s sensor.Source) Option {
	return func(o *options) { o.source = s }
}

// WithPublisher replaces the Redis connection used by the redis channel.
func WithPublisher(p notify.Publisher) Option {
	return func(o *options) { o.publisher = p }
}
