package domain

import (
	"fmt"
	"math"
)

// Check validates a raw reading against the bounds. Every violated field is
// reported; a nil return means all three values are usable.
func (b Bounds) Check(op string, temperature, humidity, pressure float64) error {
	var violations []FieldViolation

	check := func(field string, v float64, r Range) {
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			violations = append(violations, FieldViolation{
				Field:   field,
				Value:   v,
				Message: "must be a finite number",
			})
		case v < r.Min:
			violations = append(violations, FieldViolation{
				Field:   field,
				Value:   v,
				Message: fmt.Sprintf("must be at least %g", r.Min),
			})
		case v > r.Max:
			violations = append(violations, FieldViolation{
				Field:   field,
				Value:   v,
				Message: fmt.Sprintf("must be at most %g", r.Max),
			})
		}
	}

	check("temperature", temperature, b.Temperature)
	check("humidity", humidity, b.Humidity)
	check("pressure", pressure, b.Pressure)

	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Op: op, Violations: violations}
}
