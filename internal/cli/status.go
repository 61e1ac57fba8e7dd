package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"
	"github.com/vietddude/weatherwatch/internal/health"
)

var statusAddr string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the health of a running station",
	Run:   runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusAddr, "addr", "", "station address (default http://localhost:<server.port>)")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogging(cfg)

	addr := statusAddr
	if addr == "" {
		addr = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	report, err := fetchHealth(ctx, http.DefaultClient, addr)
	if err != nil {
		slog.Error("Failed to fetch station health", "addr", addr, "error", err)
		os.Exit(1)
	}
	printHealth(os.Stdout, report)
}

func fetchHealth(ctx context.Context, client *http.Client, addr string) (*health.HealthReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr+"/health/detailed", nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// 503 still carries a report
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var report health.HealthReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("failed to decode health report: %w", err)
	}
	return &report, nil
}

func printHealth(out io.Writer, r *health.HealthReport) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "COMPONENT\tSTATUS\tDETAIL")
	_, _ = fmt.Fprintf(w, "station\t%s\tchecked %s\n", r.SystemStatus, r.CheckedAt.Format(time.RFC3339))
	_, _ = fmt.Fprintf(w, "sensor\t%s\tlast reading %s ago, %d failures %s\n",
		r.Sensor.Status, r.Sensor.Age.Round(time.Millisecond), r.Sensor.Failures, r.Sensor.Message)
	_, _ = fmt.Fprintf(w, "subscribers\t%s\t%d/%d active %s\n",
		r.Subscribers.Status, r.Subscribers.Active, r.Subscribers.Registered, r.Subscribers.Message)
	_, _ = fmt.Fprintf(w, "measurement\t-\t%.1f°C %.1f%% %.1fhPa\n",
		r.Measurement.Temperature, r.Measurement.Humidity, r.Measurement.Pressure)
	_ = w.Flush()
}
