package events

import (
	"context"
	"log/slog"

	"github.com/phrazzld/memoryblocks/internal/platform/logger"
	"github.com/phrazzld/memoryblocks/internal/platform/metrics"
)

// LogHandler writes every event to the request logger.
type LogHandler struct {
	logger *slog.Logger
}

// NewLogHandler creates a LogHandler. If l is nil, slog.Default() is used.
func NewLogHandler(l *slog.Logger) *LogHandler {
	if l == nil {
		l = slog.Default()
	}
	return &LogHandler{logger: l.With(slog.String("component", "event_log"))}
}

// HandleEvent implements EventHandler.
func (h *LogHandler) HandleEvent(ctx context.Context, event *MemoryEvent) error {
	logger.FromContextOrDefault(ctx, h.logger).Info("memory event",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type),
		slog.String("memory_id", event.MemoryID.String()),
		slog.String("user_id", event.UserID.String()),
		slog.String("payload", string(event.Payload)))
	return nil
}

// MetricsHandler counts events by type.
type MetricsHandler struct {
	metrics *metrics.Metrics
}

// NewMetricsHandler creates a MetricsHandler.
func NewMetricsHandler(m *metrics.Metrics) *MetricsHandler {
	return &MetricsHandler{metrics: m}
}

// HandleEvent implements EventHandler.
func (h *MetricsHandler) HandleEvent(_ context.Context, event *MemoryEvent) error {
	h.metrics.MemoryEventsTotal.WithLabelValues(event.Type).Inc()
	return nil
}
