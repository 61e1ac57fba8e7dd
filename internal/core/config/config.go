package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/vietddude/weatherwatch/internal/core/domain"
	"github.com/vietddude/weatherwatch/internal/core/retry"
	redisclient "github.com/vietddude/weatherwatch/internal/infra/redis"
	"github.com/vietddude/weatherwatch/internal/notify"
	"github.com/vietddude/weatherwatch/internal/sensor"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server     ServerConfig           `yaml:"server"`
	Logging    LoggingConfig          `yaml:"logging"`
	Thresholds domain.ThresholdConfig `yaml:"thresholds"`
	Bounds     domain.Bounds          `yaml:"bounds"`
	Retry      retry.Policy           `yaml:"retry"`
	Sensor     SensorConfig           `yaml:"sensor"`
	Alert      AlertConfig            `yaml:"alert"`
	Statistics StatisticsConfig       `yaml:"statistics"`
	Notify     NotifyConfig           `yaml:"notify"`
	Redis      RedisConfig            `yaml:"redis"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// SensorConfig holds the polling interval and simulator settings.
type SensorConfig struct {
	Interval               time.Duration `yaml:"interval"`
	sensor.SimulatorConfig `yaml:",inline"`
}

// AlertConfig holds the alert observer settings.
type AlertConfig struct {
	MinSeverity string `yaml:"min_severity"` // low, medium, high, critical
	Recipient   string `yaml:"recipient"`
}

// StatisticsConfig holds the rolling window size.
type StatisticsConfig struct {
	Window int `yaml:"window"`
}

// NotifyConfig selects the alert notification channel.
type NotifyConfig struct {
	Kind notify.Kind `yaml:"kind"`
}

// RedisConfig holds the Redis connection and the pub/sub channel alerts go to.
type RedisConfig struct {
	redisclient.Config `yaml:",inline"`
	Channel            string `yaml:"channel"`
}

// Default returns a configuration that runs a simulated station with log alerts.
func Default() AppConfig {
	return AppConfig{
		Server:     ServerConfig{Port: 8080},
		Logging:    LoggingConfig{Level: "info", Format: "text"},
		Thresholds: domain.DefaultThresholds,
		Bounds:     domain.DefaultBounds,
		Retry:      retry.DefaultPolicy,
		Sensor: SensorConfig{
			Interval:        5 * time.Second,
			SimulatorConfig: sensor.DefaultSimulatorConfig,
		},
		Alert:      AlertConfig{MinSeverity: domain.SeverityHigh.String()},
		Statistics: StatisticsConfig{Window: 60},
		Notify:     NotifyConfig{Kind: notify.KindLog},
		Redis: RedisConfig{
			Config:  redisclient.Config{Prefix: "weatherwatch"},
			Channel: "alerts",
		},
	}
}

// Validate reports every invalid section.
func (c *AppConfig) Validate() error {
	var errs []error

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if err := c.Thresholds.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("thresholds: %w", err))
	}
	for name, r := range map[string]domain.Range{
		"temperature": c.Bounds.Temperature,
		"humidity":    c.Bounds.Humidity,
		"pressure":    c.Bounds.Pressure,
	} {
		if r.Min > r.Max {
			errs = append(errs, fmt.Errorf("bounds.%s: min %g above max %g", name, r.Min, r.Max))
		}
	}
	if err := c.Retry.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("retry: %w", err))
	}
	if c.Sensor.Interval <= 0 {
		errs = append(errs, errors.New("sensor.interval must be positive"))
	}
	if c.Sensor.FailureRate < 0 || c.Sensor.FailureRate > 1 {
		errs = append(errs, fmt.Errorf("sensor.failure_rate %g must be within [0, 1]", c.Sensor.FailureRate))
	}
	if _, err := c.MinSeverity(); err != nil {
		errs = append(errs, fmt.Errorf("alert.min_severity: %w", err))
	}
	if c.Statistics.Window < 1 {
		errs = append(errs, errors.New("statistics.window must be at least 1"))
	}
	switch c.Notify.Kind {
	case notify.KindLog:
	case notify.KindRedis:
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("redis.url is required for notify.kind redis"))
		}
		if c.Redis.Channel == "" {
			errs = append(errs, errors.New("redis.channel is required for notify.kind redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("notify.kind %q: %w", c.Notify.Kind, notify.ErrUnsupportedChannel))
	}

	return errors.Join(errs...)
}

// MinSeverity parses the alert floor.
func (c *AppConfig) MinSeverity() (domain.Severity, error) {
	return domain.ParseSeverity(c.Alert.MinSeverity)
}
