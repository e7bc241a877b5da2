package http

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/weather-ingest-service/internal/ingest"
	"github.com/kjstillabower/weather-ingest-service/internal/lifecycle"
)

// ingestCompleteBody is the fixed trigger response. The trigger contract is
// always 200 with this body once every city has terminated, regardless of how
// many cities failed.
const ingestCompleteBody = "Weather data ingestion complete."

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	ingestor  *ingest.Ingestor
	logger    *zap.Logger
	startTime time.Time
	// storePing, when set, is called by the health check to verify store
	// reachability. Nil for the in-memory backend.
	storePing func() error
}

// NewHandler returns a new Handler. storePing may be nil.
func NewHandler(ingestor *ingest.Ingestor, logger *zap.Logger, storePing func() error) *Handler {
	return &Handler{
		ingestor:  ingestor,
		logger:    logger,
		startTime: time.Now(),
		storePing: storePing,
	}
}

// RunIngest handles GET|POST /run. It executes the batch synchronously and
// always responds 200 with the fixed confirmation body; per-city outcomes are
// visible only in logs and metrics.
func (h *Handler) RunIngest(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromRequest(r, h.logger)
	logger.Info("ingestion triggered", zap.String("method", r.Method))

	results := h.ingestor.RunBatch(r.Context())

	succeeded, failed := 0, 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		} else {
			succeeded++
		}
	}
	logger.Info("ingestion finished", zap.Int("succeeded", succeeded), zap.Int("failed", failed))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(ingestCompleteBody))
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	statusCode := http.StatusOK
	if lifecycle.IsShuttingDown() {
		status = "shutting-down"
		statusCode = http.StatusServiceUnavailable
	}

	checks := make(map[string]string)
	if h.storePing != nil {
		if h.storePing() == nil {
			checks["store"] = "healthy"
		} else {
			checks["store"] = "unhealthy"
		}
	}

	resp := map[string]interface{}{
		"status":    status,
		"service":   "weather-ingest-service",
		"version":   "dev",
		"checks":    checks,
		"uptime":    time.Since(h.startTime).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	writeJSON(w, statusCode, resp)
}

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// loggerFromRequest returns the correlation-scoped logger set by middleware,
// or fallback when absent.
func loggerFromRequest(r *http.Request, fallback *zap.Logger) *zap.Logger {
	if v := r.Context().Value("logger"); v != nil {
		if l, ok := v.(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return fallback
}
