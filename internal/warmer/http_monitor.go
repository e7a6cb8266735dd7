package warmer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// HTTPMonitor serves warming progress over HTTP
type HTTPMonitor struct {
	server   *http.Server
	progress *ProgressTracker
	logger   *slog.Logger
}

func NewHTTPMonitor(port int, progress *ProgressTracker, logger *slog.Logger) *HTTPMonitor {
	m := &HTTPMonitor{progress: progress, logger: logger}
	m.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return m
}

// Handler exposes /status and /health
func (m *HTTPMonitor) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", m.handleStatus)
	mux.HandleFunc("GET /health", m.handleHealth)
	return mux
}

// Start starts the HTTP server in a goroutine
func (m *HTTPMonitor) Start() {
	go func() {
		m.logger.Info("starting HTTP monitor", "addr", m.server.Addr)
		if err := m.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("HTTP monitor error", "error", err)
		}
	}()
}

func (m *HTTPMonitor) Stop(ctx context.Context) error {
	return m.server.Shutdown(ctx)
}

func (m *HTTPMonitor) handleStatus(w http.ResponseWriter, r *http.Request) {
	s := m.progress.GetSnapshot()

	response := map[string]any{
		"status":     s.Status,
		"started_at": s.StartedAt.Format(time.RFC3339),
		"elapsed":    s.Elapsed.Round(time.Second).String(),
		"progress": map[string]any{
			"total_terms": s.TotalTerms,
			"processed":   s.Processed,
			"success":     s.Success,
			"failed":      s.Failed,
			"skipped":     s.Skipped,
			"empty":       s.Empty,
			"records":     s.Records,
			"percentage":  fmt.Sprintf("%.2f", s.Percentage),
		},
		"rate": map[string]any{
			"current_rps":     fmt.Sprintf("%.2f", s.RequestsPerSec),
			"total_requests":  s.TotalRequests,
			"rate_limit_hits": s.RateLimitHits,
			"network_errors":  s.NetworkErrors,
		},
		"eta": map[string]any{
			"remaining_terms":      s.TotalTerms - s.Processed,
			"estimated_completion": s.ETA.Format(time.RFC3339),
			"time_remaining":       s.Remaining.Round(time.Second).String(),
		},
		"last_error":   s.LastError,
		"current_term": s.CurrentTerm,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (m *HTTPMonitor) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
