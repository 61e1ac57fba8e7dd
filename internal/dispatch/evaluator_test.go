package dispatch

import (
	"testing"
	"time"

	"github.com/vietddude/weatherwatch/internal/core/domain"
)

func TestEvaluate(t *testing.T) {
	type want struct {
		kind     domain.EventKind
		severity domain.Severity
	}

	tests := []struct {
		name    string
		t, h, p float64
		want    []want
	}{
		{
			name: "calm reading falls back to low",
			t:    20, h: 50, p: 1013,
			want: []want{{domain.EventKindTemperatureChanged, domain.SeverityLow}},
		},
		{
			name: "heat is critical",
			t:    40, h: 50, p: 1013,
			want: []want{{domain.EventKindCriticalThreshold, domain.SeverityCritical}},
		},
		{
			name: "frost is critical",
			t:    -10, h: 50, p: 1013,
			want: []want{{domain.EventKindCriticalThreshold, domain.SeverityCritical}},
		},
		{
			name: "humid is high",
			t:    25, h: 95, p: 1013,
			want: []want{{domain.EventKindHumidityChanged, domain.SeverityHigh}},
		},
		{
			name: "low pressure is medium",
			t:    25, h: 60, p: 950,
			want: []want{{domain.EventKindPressureChanged, domain.SeverityMedium}},
		},
		{
			name: "high pressure is medium",
			t:    25, h: 60, p: 1050,
			want: []want{{domain.EventKindPressureChanged, domain.SeverityMedium}},
		},
		{
			name: "storm fires every rule in order",
			t:    45, h: 98, p: 940,
			want: []want{
				{domain.EventKindCriticalThreshold, domain.SeverityCritical},
				{domain.EventKindHumidityChanged, domain.SeverityHigh},
				{domain.EventKindPressureChanged, domain.SeverityMedium},
			},
		},
		{
			name: "just inside every threshold",
			t:    39.99, h: 94.99, p: 950.01,
			want: []want{{domain.EventKindTemperatureChanged, domain.SeverityLow}},
		},
	}

	at := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := domain.Measurement{Temperature: tt.t, Humidity: tt.h, Pressure: tt.p, CapturedAt: at}
			events := Evaluate(m, domain.DefaultThresholds)

			if len(events) != len(tt.want) {
				t.Fatalf("expected %d events, got %d: %+v", len(tt.want), len(events), events)
			}
			for i, ev := range events {
				if ev.Kind != tt.want[i].kind || ev.Severity != tt.want[i].severity {
					t.Errorf("event %d = %s/%s, want %s/%s",
						i, ev.Kind, ev.Severity, tt.want[i].kind, tt.want[i].severity)
				}
				if ev.Snapshot != m {
					t.Errorf("event %d snapshot = %+v, want %+v", i, ev.Snapshot, m)
				}
				if ev.ID == "" {
					t.Errorf("event %d has no ID", i)
				}
				if !ev.EmittedAt.Equal(at) {
					t.Errorf("event %d EmittedAt = %v, want %v", i, ev.EmittedAt, at)
				}
			}
		})
	}
}

func TestEvaluateNeverEmpty(t *testing.T) {
	for temp := -50.0; temp <= 60; temp += 7.5 {
		for hum := 0.0; hum <= 100; hum += 12.5 {
			for pres := 900.0; pres <= 1100; pres += 25 {
				m := domain.Measurement{Temperature: temp, Humidity: hum, Pressure: pres}
				events := Evaluate(m, domain.DefaultThresholds)
				if len(events) == 0 {
					t.Fatalf("no events for %+v", m)
				}

				lows := 0
				for _, ev := range events {
					if ev.Severity == domain.SeverityLow {
						lows++
					}
				}
				// The fallback is exclusive with every threshold event.
				if lows > 0 && len(events) != 1 {
					t.Fatalf("fallback mixed with threshold events for %+v: %+v", m, events)
				}
			}
		}
	}
}
