// Package sensor produces station readings and feeds them to a dispatcher.
package sensor

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/vietddude/weatherwatch/internal/core/retry"
)

// ErrSensorTimeout is the transient failure a simulated sensor reports.
var ErrSensorTimeout = errors.New("sensor read timeout")

// Reading is one raw sample.
type Reading struct {
	Temperature float64
	Humidity    float64
	Pressure    float64
}

// Source produces readings.
type Source interface {
	Read(ctx context.Context) (Reading, error)
}

// SimulatorConfig controls the random walk.
type SimulatorConfig struct {
	Seed        uint64  `yaml:"seed"`
	FailureRate float64 `yaml:"failure_rate"` // probability of a transient read error
	// Step is the maximum change per read for temperature, humidity and
	// pressure respectively.
	TemperatureStep float64 `yaml:"temperature_step"`
	HumidityStep    float64 `yaml:"humidity_step"`
	PressureStep    float64 `yaml:"pressure_step"`
}

// DefaultSimulatorConfig drifts slowly and fails one read in ten.
var DefaultSimulatorConfig = SimulatorConfig{
	Seed:            1,
	FailureRate:     0.1,
	TemperatureStep: 1.5,
	HumidityStep:    3,
	PressureStep:    4,
}

// Simulator is a random-walk Source starting from a calm reading.
type Simulator struct {
	mu      sync.Mutex
	cfg     SimulatorConfig
	rng     *rand.Rand
	current Reading
}

// NewSimulator creates a simulator.
func NewSimulator(cfg SimulatorConfig) *Simulator {
	return &Simulator{
		cfg:     cfg,
		rng:     rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		current: Reading{Temperature: 20, Humidity: 50, Pressure: 1013},
	}
}

// Read advances the walk. Failures are tagged transient.
func (s *Simulator) Read(ctx context.Context) (Reading, error) {
	if err := ctx.Err(); err != nil {
		return Reading{}, retry.Permanent(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rng.Float64() < s.cfg.FailureRate {
		return Reading{}, retry.Transient(ErrSensorTimeout)
	}

	s.current.Temperature = clamp(s.current.Temperature+s.step(s.cfg.TemperatureStep), -45, 55)
	s.current.Humidity = clamp(s.current.Humidity+s.step(s.cfg.HumidityStep), 0, 100)
	s.current.Pressure = clamp(s.current.Pressure+s.step(s.cfg.PressureStep), 905, 1095)
	return s.current, nil
}

func (s *Simulator) step(max float64) float64 {
	return (s.rng.Float64()*2 - 1) * max
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Round keeps readings to one decimal, like a real station display.
func (r Reading) Round() Reading {
	return Reading{
		Temperature: math.Round(r.Temperature*10) / 10,
		Humidity:    math.Round(r.Humidity*10) / 10,
		Pressure:    math.Round(r.Pressure*10) / 10,
	}
}

// Sequence replays a fixed list of readings, then repeats the last one.
type Sequence struct {
	mu       sync.Mutex
	readings []Reading
	pos      int
}

// NewSequence creates a replaying source.
func NewSequence(readings ...Reading) *Sequence {
	return &Sequence{readings: readings}
}

func (s *Sequence) Read(ctx context.Context) (Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.readings) == 0 {
		return Reading{}, errors.New("empty sequence")
	}
	r := s.readings[s.pos]
	if s.pos < len(s.readings)-1 {
		s.pos++
	}
	return r, nil
}
