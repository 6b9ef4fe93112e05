// Package metrics exposes Prometheus instrumentation for the service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds the Prometheus collectors of the memory service.
type Metrics struct {
	// HTTP
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Domain
	MemoryEventsTotal       *prometheus.CounterVec
	BlockValidationFailures *prometheus.CounterVec
	ImageFilesTotal         *prometheus.CounterVec
	BlocksRenderedTotal     *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors on first use and
// returns the shared instance afterwards.
//
// Metrics:
//   - memoryblocks_http_requests_total{method,route,status}
//   - memoryblocks_http_request_duration_seconds{method,route}
//   - memoryblocks_memory_events_total{type}
//   - memoryblocks_block_validation_failures_total{type}
//   - memoryblocks_image_files_total{outcome}
//   - memoryblocks_blocks_rendered_total{type}
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			RequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "memoryblocks_http_requests_total",
					Help: "Total HTTP requests by method, route pattern and status code",
				},
				[]string{"method", "route", "status"},
			),
			RequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "memoryblocks_http_request_duration_seconds",
					Help:    "HTTP request duration in seconds",
					Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
				},
				[]string{"method", "route"},
			),
			MemoryEventsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "memoryblocks_memory_events_total",
					Help: "Memory lifecycle events emitted",
				},
				[]string{"type"},
			),
			BlockValidationFailures: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "memoryblocks_block_validation_failures_total",
					Help: "Blocks rejected by validation, by block type",
				},
				[]string{"type"},
			),
			ImageFilesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "memoryblocks_image_files_total",
					Help: "Uploaded image files by outcome (accepted, rejected)",
				},
				[]string{"outcome"},
			),
			BlocksRenderedTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "memoryblocks_blocks_rendered_total",
					Help: "Blocks rendered by the viewer, by block type",
				},
				[]string{"type"},
			),
		}
	})
	return globalMetrics
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latencies labelled by the chi
// route pattern rather than the raw path.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
