package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vietddude/weatherwatch/internal/core/domain"
)

// ThresholdSource exposes the active thresholds for /state.
type ThresholdSource interface {
	Thresholds() domain.ThresholdConfig
}

// StateResponse is the body of /state.
type StateResponse struct {
	Measurement domain.Measurement     `json:"measurement"`
	Thresholds  domain.ThresholdConfig `json:"thresholds"`
}

// Server provides HTTP endpoints for health monitoring.
type Server struct {
	monitor    *Monitor
	thresholds ThresholdSource
	server     *http.Server
}

// NewServer creates a new health server.
func NewServer(monitor *Monitor, thresholds ThresholdSource, port int) *Server {
	s := &Server{
		monitor:    monitor,
		thresholds: thresholds,
	}
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.Handler(),
	}
	return s
}

// Handler returns the routes served by the health server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/detailed", s.handleDetailed)
	mux.HandleFunc("/state", s.handleState)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.monitor.CheckHealth()

	response := map[string]string{"status": string(report.SystemStatus)}
	writeJSON(w, statusCode(report.SystemStatus), response)
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	report := s.monitor.CheckHealth()
	writeJSON(w, statusCode(report.SystemStatus), report)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	resp := StateResponse{Measurement: s.monitor.station.CurrentState()}
	if s.thresholds != nil {
		resp.Thresholds = s.thresholds.Thresholds()
	}
	writeJSON(w, http.StatusOK, resp)
}

func statusCode(status SystemStatus) int {
	if status == StatusCritical {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
