package domain

import (
	"fmt"
	"time"
)

// Measurement is an immutable weather snapshot. It is passed by value so
// that holders never share the dispatcher's copy.
type Measurement struct {
	Temperature float64   `json:"temperature"` // °C
	Humidity    float64   `json:"humidity"`    // %
	Pressure    float64   `json:"pressure"`    // hPa
	CapturedAt  time.Time `json:"captured_at"`
}

// ThresholdConfig holds the bounds that mark a reading as noteworthy.
type ThresholdConfig struct {
	TemperatureMin float64 `yaml:"temperature_min" json:"temperature_min"`
	TemperatureMax float64 `yaml:"temperature_max" json:"temperature_max"`
	HumidityMax    float64 `yaml:"humidity_max"    json:"humidity_max"`
	PressureMin    float64 `yaml:"pressure_min"    json:"pressure_min"`
	PressureMax    float64 `yaml:"pressure_max"    json:"pressure_max"`
}

// DefaultThresholds are the station defaults.
var DefaultThresholds = ThresholdConfig{
	TemperatureMin: -10,
	TemperatureMax: 40,
	HumidityMax:    95,
	PressureMin:    950,
	PressureMax:    1050,
}

// Validate rejects inverted ranges.
func (c ThresholdConfig) Validate() error {
	if c.TemperatureMin >= c.TemperatureMax {
		return fmt.Errorf(
			"temperature_min %.2f must be below temperature_max %.2f",
			c.TemperatureMin,
			c.TemperatureMax,
		)
	}
	if c.PressureMin >= c.PressureMax {
		return fmt.Errorf(
			"pressure_min %.2f must be below pressure_max %.2f",
			c.PressureMin,
			c.PressureMax,
		)
	}
	return nil
}

// Range is an inclusive [Min, Max] interval.
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Bounds are the absolute sanity limits applied to incoming readings.
type Bounds struct {
	Temperature Range `yaml:"temperature" json:"temperature"`
	Humidity    Range `yaml:"humidity"    json:"humidity"`
	Pressure    Range `yaml:"pressure"    json:"pressure"`
}

// DefaultBounds accept anything a ground station can plausibly report.
var DefaultBounds = Bounds{
	Temperature: Range{Min: -50, Max: 60},
	Humidity:    Range{Min: 0, Max: 100},
	Pressure:    Range{Min: 900, Max: 1100},
}

// DefaultMeasurement is the state a station reports before its first reading.
func DefaultMeasurement(at time.Time) Measurement {
	return Measurement{
		Temperature: 20,
		Humidity:    50,
		Pressure:    1013,
		CapturedAt:  at,
	}
}
