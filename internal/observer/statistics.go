package observer

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/vietddude/weatherwatch/internal/core/domain"
)

// FieldStats summarizes one measured quantity.
type FieldStats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// Summary holds lifetime averages and rolling-window statistics.
type Summary struct {
	Readings       int           `json:"readings"`
	AvgTemperature float64       `json:"avg_temperature"`
	AvgHumidity    float64       `json:"avg_humidity"`
	AvgPressure    float64       `json:"avg_pressure"`
	WindowSize     int           `json:"window_size"`
	Temperature    FieldStats    `json:"temperature"`
	Humidity       FieldStats    `json:"humidity"`
	Pressure       FieldStats    `json:"pressure"`
	Span           time.Duration `json:"span"` // time covered by the window
}

// Statistics accumulates readings from every event it receives.
//
// One update can produce several events carrying the same snapshot; each
// snapshot is counted once.
type Statistics struct {
	base

	mu         sync.Mutex
	windowSize int
	window     []domain.Measurement // ring buffer of recent snapshots
	sumTemp    float64
	sumHum     float64
	sumPres    float64
	count      int
	last       domain.Measurement
}

// NewStatistics creates a statistics observer keeping the last windowSize
// snapshots. windowSize < 1 means 60.
func NewStatistics(name string, windowSize int, l *slog.Logger) *Statistics {
	if windowSize < 1 {
		windowSize = 60
	}
	s := &Statistics{windowSize: windowSize}
	s.init(name, "statistics", l)
	return s
}

func (s *Statistics) Receive(ctx context.Context, ev domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := ev.Snapshot
	if s.count > 0 && m == s.last {
		return nil
	}
	s.last = m

	s.sumTemp += m.Temperature
	s.sumHum += m.Humidity
	s.sumPres += m.Pressure
	s.count++

	if len(s.window) >= s.windowSize {
		// Shift elements left, drop oldest
		copy(s.window, s.window[1:])
		s.window[len(s.window)-1] = m
	} else {
		s.window = append(s.window, m)
	}

	s.log.DebugContext(ctx, "Statistics updated",
		"readings", s.count,
		"avg_temperature", s.sumTemp/float64(s.count),
	)
	return nil
}

// Summary returns the current statistics.
func (s *Statistics) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{
		Readings:   s.count,
		WindowSize: len(s.window),
	}
	if s.count == 0 {
		return sum
	}

	n := float64(s.count)
	sum.AvgTemperature = s.sumTemp / n
	sum.AvgHumidity = s.sumHum / n
	sum.AvgPressure = s.sumPres / n

	sum.Temperature = fieldStats(s.window, func(m domain.Measurement) float64 { return m.Temperature })
	sum.Humidity = fieldStats(s.window, func(m domain.Measurement) float64 { return m.Humidity })
	sum.Pressure = fieldStats(s.window, func(m domain.Measurement) float64 { return m.Pressure })

	if len(s.window) >= 2 {
		sum.Span = s.window[len(s.window)-1].CapturedAt.Sub(s.window[0].CapturedAt)
	}
	return sum
}

func fieldStats(window []domain.Measurement, field func(domain.Measurement) float64) FieldStats {
	fs := FieldStats{Min: math.Inf(1), Max: math.Inf(-1)}
	total := 0.0
	for _, m := range window {
		v := field(m)
		fs.Min = math.Min(fs.Min, v)
		fs.Max = math.Max(fs.Max, v)
		total += v
	}
	fs.Avg = total / float64(len(window))
	return fs
}
