package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/vietddude/weatherwatch/internal/core/retry"
	"github.com/vietddude/weatherwatch/internal/dispatch"
	"github.com/vietddude/weatherwatch/internal/health"
	redisclient "github.com/vietddude/weatherwatch/internal/infra/redis"
	"github.com/vietddude/weatherwatch/internal/metrics"
	"github.com/vietddude/weatherwatch/internal/notify"
	"github.com/vietddude/weatherwatch/internal/observer"
	"github.com/vietddude/weatherwatch/internal/sensor"
)

// Station is the main application struct that manages the station lifecycle.
type Station struct {
	cfg          Config
	dispatcher   *dispatch.Dispatcher
	executor     *retry.Executor
	poller       *sensor.Poller
	channels     *notify.Factory
	display      *observer.Display
	alert        *observer.Alert
	statistics   *observer.Statistics
	healthMon    *health.Monitor
	healthServer *health.Server
	redisClient  *redisclient.Client
	log          *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStation creates a new Station with all dependencies initialized.
func NewStation(cfg Config, opts ...Option) (*Station, error) {
	o := options{log: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.log

	minSeverity, err := cfg.MinSeverity()
	if err != nil {
		return nil, fmt.Errorf("invalid alert severity: %w", err)
	}

	// 1. Shared components
	recorder := metrics.NewRecorder()

	executor, err := retry.NewExecutor(cfg.Retry,
		retry.WithLogger(log.With("component", "retry")),
		retry.WithRecorder(recorder),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init executor: %w", err)
	}

	dispatcher, err := dispatch.New(
		dispatch.Config{Thresholds: cfg.Thresholds, Bounds: cfg.Bounds},
		dispatch.WithLogger(log.With("component", "dispatcher")),
		dispatch.WithRecorder(recorder),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init dispatcher: %w", err)
	}

	s := &Station{
		cfg:        cfg,
		dispatcher: dispatcher,
		executor:   executor,
		log:        log,
	}

	// 2. Notification channel
	publisher := o.publisher
	if publisher == nil && cfg.Notify.Kind == notify.KindRedis {
		client, err := redisclient.NewClient(cfg.Redis.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		s.redisClient = client
		publisher = client
		log.Info("Using Redis alert channel", "channel", cfg.Redis.Channel)
	}

	s.channels = notify.NewFactory(notify.FactoryConfig{
		Logger:       log.With("component", "notify"),
		Executor:     executor,
		Publisher:    publisher,
		RedisChannel: cfg.Redis.Channel,
	})
	channel, err := s.channels.Get(cfg.Notify.Kind)
	if err != nil {
		s.closeRedis()
		return nil, err
	}

	// 3. Observers
	s.display = observer.NewDisplay("display", log)
	s.alert = observer.NewAlert("alert", observer.AlertConfig{
		MinSeverity: minSeverity,
		Recipient:   cfg.Alert.Recipient,
	}, channel, log)
	s.statistics = observer.NewStatistics("statistics", cfg.Statistics.Window, log)

	for _, sub := range []dispatch.Subscriber{s.display, s.alert, s.statistics} {
		dispatcher.Register(sub)
	}

	// 4. Sensor feed
	source := o.source
	if source == nil {
		source = sensor.NewSimulator(cfg.Sensor.SimulatorConfig)
	}
	s.poller = sensor.NewPoller(source, dispatcher, executor, cfg.Sensor.Interval, log)

	// 5. Health
	s.healthMon = health.NewMonitor(dispatcher, s.poller)
	if cfg.HealthEnabled {
		s.healthServer = health.NewServer(s.healthMon, dispatcher, cfg.Server.Port)
	}

	return s, nil
}

// Start launches the sensor poller and the health server. It does not block.
func (s *Station) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	if s.healthServer != nil {
		go func() {
			s.log.Info("Starting health server", "port", s.cfg.Server.Port)
			if err := s.healthServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.log.Error("Health server failed", "error", err)
			}
		}()
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.poller.Run(ctx); err != nil {
			s.log.Error("Sensor poller failed", "error", err)
		}
	}()

	return nil
}

// Stop stops the station.
func (s *Station) Stop(ctx context.Context) error {
	s.log.Info("Stopping station...")

	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()

	summary := s.statistics.Summary()
	s.log.Info("Final statistics",
		"readings", summary.Readings,
		"avg_temperature", summary.AvgTemperature,
		"avg_humidity", summary.AvgHumidity,
		"avg_pressure", summary.AvgPressure,
		"alerts", s.alert.Count(),
	)

	s.closeRedis()

	if s.healthServer != nil {
		return s.healthServer.Stop(ctx)
	}
	return nil
}

func (s *Station) closeRedis() {
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.log.Warn("Failed to close Redis", "error", err)
		}
	}
}

// Dispatcher returns the station's dispatcher.
func (s *Station) Dispatcher() *dispatch.Dispatcher { return s.dispatcher }

// Statistics returns the statistics observer.
func (s *Station) Statistics() *observer.Statistics { return s.statistics }

// Alerts returns the number of alerts raised so far.
func (s *Station) Alerts() int64 { return s.alert.Count() }

// Health returns the current health report.
func (s *Station) Health() health.HealthReport { return s.healthMon.CheckHealth() }
