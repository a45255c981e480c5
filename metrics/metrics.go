// Package metrics exposes Prometheus-format metrics on a dedicated listener.
//
// The metrics server runs alongside the admin API on its own address so that
// scrapers never pass through the admin authentication gate.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

// MetricsServer serves the /metrics endpoint for Prometheus scrapers.
type MetricsServer struct {
	srv *http.Server
}

// New creates a metrics server for the given service name listening on addr.
func New(name, addr string) (*MetricsServer, error) {
	if name == "" {
		return nil, fmt.Errorf("metrics server requires a service name")
	}

	metrics.GetOrCreateCounter(fmt.Sprintf(`service_info{service=%q}`, name)).Set(1)

	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	return &MetricsServer{
		srv: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}, nil
}

// ListenAndServe blocks serving metrics until Shutdown is called.
func (m *MetricsServer) ListenAndServe() error {
	return m.srv.ListenAndServe()
}

// Shutdown gracefully stops the metrics server.
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}

// IncStatusCheck counts a health-check request by endpoint and outcome.
func IncStatusCheck(endpoint string, ok bool) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`admin_status_checks_total{endpoint=%q,ok="%t"}`, endpoint, ok)).Inc()
}

// IncUnauthorized counts a request rejected by the authentication gate.
func IncUnauthorized() {
	metrics.GetOrCreateCounter(`admin_unauthorized_requests_total`).Inc()
}

// IncStatsReset counts administrative resets of the timing collector.
func IncStatsReset() {
	metrics.GetOrCreateCounter(`admin_stats_resets_total`).Inc()
}
