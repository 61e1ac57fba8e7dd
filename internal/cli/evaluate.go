package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"
	"github.com/vietddude/weatherwatch/internal/core/config"
	"github.com/vietddude/weatherwatch/internal/core/domain"
	"github.com/vietddude/weatherwatch/internal/dispatch"
)

var (
	evalTemperature float64
	evalHumidity    float64
	evalPressure    float64
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a single reading against the configured thresholds",
	Run:   runEvaluate,
}

func init() {
	evaluateCmd.Flags().Float64Var(&evalTemperature, "temperature", 20, "temperature in °C")
	evaluateCmd.Flags().Float64Var(&evalHumidity, "humidity", 50, "relative humidity in %")
	evaluateCmd.Flags().Float64Var(&evalPressure, "pressure", 1013, "pressure in hPa")
	rootCmd.AddCommand(evaluateCmd)
}

// collector records every event it receives.
type collector struct {
	mu     sync.Mutex
	events []domain.Event
}

func (c *collector) ID() string   { return "cli" }
func (c *collector) Active() bool { return true }

func (c *collector) Receive(ctx context.Context, ev domain.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return nil
}

func runEvaluate(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogging(cfg)

	events, err := evaluateReading(cmd.Context(), cfg, evalTemperature, evalHumidity, evalPressure)
	if err != nil {
		slog.Error("Reading rejected", "error", err)
		os.Exit(1)
	}
	printEvents(os.Stdout, events)
}

func evaluateReading(ctx context.Context, cfg *config.AppConfig, t, h, p float64) ([]domain.Event, error) {
	d, err := dispatch.New(dispatch.Config{Thresholds: cfg.Thresholds, Bounds: cfg.Bounds})
	if err != nil {
		return nil, err
	}

	c := &collector{}
	d.Register(c)
	if err := d.UpdateState(ctx, t, h, p); err != nil {
		return nil, err
	}
	return c.events, nil
}

func printEvents(out io.Writer, events []domain.Event) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "KIND\tSEVERITY\tTEMPERATURE\tHUMIDITY\tPRESSURE")
	for _, ev := range events {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%.1f\t%.1f\t%.1f\n",
			ev.Kind,
			ev.Severity,
			ev.Snapshot.Temperature,
			ev.Snapshot.Humidity,
			ev.Snapshot.Pressure,
		)
	}
	_ = w.Flush()
}
