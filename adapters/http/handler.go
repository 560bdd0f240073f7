// Package http provides HTTP handlers for the metadata service.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/metagate/metagate/adapters/metrics"
	"github.com/metagate/metagate/app"
	"github.com/metagate/metagate/domain/deploy"
	"github.com/metagate/metagate/domain/object"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

// CreateMetadataResponse is returned when a deployment succeeds.
type CreateMetadataResponse struct {
	Message    string         `json:"message" example:"Custom object created and deployed successfully"`
	ObjectName string         `json:"objectName" example:"Beat_Plan"`
	Fields     []object.Field `json:"fields"`
	Output     string         `json:"output"`
}

// ErrorResponse is the error envelope shared by every failure response.
type ErrorResponse struct {
	Error   string `json:"error" example:"Validation Error"`
	Message string `json:"message" example:"objectName is required"`
	Details string `json:"details,omitempty"`
}

// DeploymentRecord is one deployment history entry in API form.
type DeploymentRecord struct {
	ID         string    `json:"id"`
	ObjectName string    `json:"objectName"`
	APIName    string    `json:"apiName"`
	OrgAlias   string    `json:"orgAlias"`
	FieldCount int       `json:"fieldCount"`
	Status     string    `json:"status" example:"succeeded"`
	Output     string    `json:"output,omitempty"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"durationMs"`
	CreatedAt  time.Time `json:"createdAt"`
}

// DeploymentsResponse lists recent deployment attempts, newest first.
type DeploymentsResponse struct {
	Deployments []DeploymentRecord `json:"deployments"`
}

// VersionResponse represents the version endpoint response.
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
	Service string `json:"service" example:"metagate"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// DeployHandler wraps the deployment service for HTTP handling.
type DeployHandler struct {
	service *app.DeployService
	logger  zerolog.Logger
	metrics *metrics.Collector
}

// NewDeployHandler creates a new HTTP deployment handler.
func NewDeployHandler(service *app.DeployService, logger zerolog.Logger) *DeployHandler {
	return &DeployHandler{
		service: service,
		logger:  logger,
	}
}

// NewDeployHandlerWithMetrics creates a new HTTP deployment handler with metrics.
func NewDeployHandlerWithMetrics(service *app.DeployService, logger zerolog.Logger, m *metrics.Collector) *DeployHandler {
	return &DeployHandler{
		service: service,
		logger:  logger,
		metrics: m,
	}
}

// CreateMetadata handles object creation requests.
//
//	@Summary		Create and deploy a custom object
//	@Description	Validates the definition, generates metadata descriptors, and deploys them to the target org
//	@Tags			Metadata
//	@Accept			json
//	@Produce		json
//	@Param			definition	body		object.Definition	true	"Object definition"
//	@Success		200			{object}	CreateMetadataResponse	"Deployment succeeded"
//	@Failure		400			{object}	ErrorResponse			"Invalid request"
//	@Failure		500			{object}	ErrorResponse			"Deployment or internal failure"
//	@Router			/create-metadata [post]
func (h *DeployHandler) CreateMetadata(w http.ResponseWriter, r *http.Request) {
	var def object.Definition
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&def); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request", "Request body must be valid JSON")
		return
	}

	result, err := h.service.Deploy(r.Context(), def)
	h.observeDeployment(result, err)

	if err != nil {
		var verr *object.ValidationError
		var derr *app.DeploymentError
		switch {
		case errors.As(err, &verr):
			writeError(w, http.StatusBadRequest, "Validation Error", verr.Message)
		case errors.As(err, &derr):
			// The tool's own diagnostics go in the message; any partial
			// progress output rides along in details.
			msg := derr.Err.Error()
			if derr.Output.Stderr != "" {
				msg = derr.Output.Stderr
			}
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{
				Error:   "Deployment Failed",
				Message: msg,
				Details: derr.Output.Stdout,
			})
		default:
			h.logger.Error().Err(err).
				Str("object", def.Name).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("create metadata failed")
			writeError(w, http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred")
		}
		return
	}

	writeJSON(w, http.StatusOK, CreateMetadataResponse{
		Message:    "Custom object created and deployed successfully",
		ObjectName: def.Name,
		Fields:     def.Fields,
		Output:     result.Output.Stdout,
	})
}

// ListDeployments returns recent deployment attempts.
//
//	@Summary		List deployment history
//	@Description	Returns the most recent deployment attempts, newest first
//	@Tags			Metadata
//	@Produce		json
//	@Param			limit	query		int	false	"Maximum records to return (capped at 100)"
//	@Success		200		{object}	DeploymentsResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/deployments [get]
func (h *DeployHandler) ListDeployments(w http.ResponseWriter, r *http.Request) {
	limit := 0 // store default
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 100 {
		limit = 100
	}

	records, err := h.service.History(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list deployments")
		writeError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load deployment history")
		return
	}

	resp := DeploymentsResponse{Deployments: make([]DeploymentRecord, 0, len(records))}
	for _, rec := range records {
		resp.Deployments = append(resp.Deployments, toDeploymentRecord(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

// observeDeployment records deployment metrics for a settled attempt.
func (h *DeployHandler) observeDeployment(result app.Result, err error) {
	if h.metrics == nil {
		return
	}

	var verr *object.ValidationError
	var serr *app.StagingError
	switch {
	case errors.As(err, &verr):
		// Rejected before anything ran
	case errors.As(err, &serr):
		h.metrics.StagingFailures.Inc()
	default:
		status := string(result.Record.Status)
		h.metrics.DeploymentsTotal.WithLabelValues(status).Inc()
		h.metrics.DeployDuration.WithLabelValues(status).Observe(float64(result.Record.DurationMs) / 1000.0)
	}
}

func toDeploymentRecord(rec deploy.Record) DeploymentRecord {
	return DeploymentRecord{
		ID:         rec.ID,
		ObjectName: rec.ObjectName,
		APIName:    rec.APIName,
		OrgAlias:   rec.OrgAlias,
		FieldCount: rec.FieldCount,
		Status:     string(rec.Status),
		Output:     rec.Output,
		Error:      rec.Error,
		DurationMs: rec.DurationMs,
		CreatedAt:  rec.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, label, message string) {
	writeJSON(w, status, ErrorResponse{Error: label, Message: message})
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	db HealthChecker
}

// HealthChecker interface for checking history database health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db HealthChecker) *HealthHandler {
	return &HealthHandler{db: db}
}

// Liveness returns a simple liveness check.
//
//	@Summary		Liveness check
//	@Description	Returns OK if the service is running
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	HealthResponse	"status: ok"
//	@Router			/health [get]
//	@Router			/health/live [get]
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
}

// Readiness checks if the service is ready to handle traffic.
//
//	@Summary		Readiness check
//	@Description	Checks if the service and its history database are ready
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	HealthResponse			"status: ok"
//	@Failure		503	{object}	map[string]interface{}	"status: unhealthy, error: message"
//	@Router			/health/ready [get]
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if h.db != nil {
		if err := h.db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
}

// Version returns the service version.
//
//	@Summary		Get service version
//	@Description	Returns the version information for the MetaGate service
//	@Tags			System
//	@Produce		json
//	@Success		200	{object}	VersionResponse	"Version information"
//	@Router			/version [get]
func Version(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(VersionResponse{
		Version: "dev",
		Service: "metagate",
	})
}

// RouterConfig holds optional configuration for the router.
type RouterConfig struct {
	Metrics        *metrics.Collector
	MetricsHandler http.Handler  // Optional metrics exporter handler (for the metrics endpoint)
	MetricsPath    string        // Metrics endpoint path (default: /metrics)
	EnableOpenAPI  bool          // Serve the OpenAPI document and Swagger UI
	StaticDir      string        // Document root for the GET fallthrough (default: public)
	CORSOrigins    []string      // Allowed origins; empty or "*" allows everything
	RequestTimeout time.Duration // Per-request ceiling; must outlast the deployment tool
}

// NewRouter creates the main HTTP router.
func NewRouter(deployHandler *DeployHandler, healthHandler *HealthHandler, logger zerolog.Logger) chi.Router {
	return NewRouterWithConfig(deployHandler, healthHandler, logger, RouterConfig{})
}

// NewRouterWithConfig creates the main HTTP router with optional config.
func NewRouterWithConfig(deployHandler *DeployHandler, healthHandler *HealthHandler, logger zerolog.Logger, cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	staticDir := cfg.StaticDir
	if staticDir == "" {
		staticDir = "public"
	}
	metricsPath := cfg.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		// Requests block on the deployment tool, so the ceiling follows
		// the tool timeout rather than a typical API budget.
		timeout = 16 * time.Minute
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(SecurityHeaders)
	r.Use(NewCORSMiddleware(cfg.CORSOrigins))

	// Metrics middleware (if enabled)
	if cfg.Metrics != nil {
		r.Use(NewMetricsMiddleware(cfg.Metrics))
	}

	// Health endpoints
	r.Get("/health", healthHandler.Liveness)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	// Metrics endpoint (prefer explicit exporter handler, fall back to promhttp)
	if cfg.MetricsHandler != nil {
		r.Handle(metricsPath, cfg.MetricsHandler)
	} else if cfg.Metrics != nil {
		r.Handle(metricsPath, promhttp.Handler())
	}

	// OpenAPI/Swagger endpoints (if enabled)
	if cfg.EnableOpenAPI {
		r.Get("/.well-known/openapi.json", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Access-Control-Allow-Origin", "*")
			http.ServeFile(w, r, filepath.Join(staticDir, "openapi.json"))
		})

		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/.well-known/openapi.json"),
		))
	}

	// Version endpoint
	r.Get("/version", Version)

	// Metadata API
	r.Post("/create-metadata", deployHandler.CreateMetadata)
	r.Get("/deployments", deployHandler.ListDeployments)

	// Everything else falls through to the document root
	static := NewStaticHandler(staticDir, logger)
	r.NotFound(static)
	r.MethodNotAllowed(static)

	return r
}

// NewStaticHandler serves files from the document root and answers with a
// JSON 404 when nothing matches. Directory requests resolve to index.html;
// directories without one are not listed.
func NewStaticHandler(root string, logger zerolog.Logger) http.HandlerFunc {
	dir := http.Dir(root)
	fileServer := http.FileServer(dir)

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			writeNotFound(w, r)
			return
		}

		clean := path.Clean("/" + r.URL.Path)
		f, err := dir.Open(clean)
		if err != nil {
			writeNotFound(w, r)
			return
		}
		info, err := f.Stat()
		f.Close()
		if err != nil {
			writeNotFound(w, r)
			return
		}

		if info.IsDir() {
			idx, err := dir.Open(path.Join(clean, "index.html"))
			if err != nil {
				writeNotFound(w, r)
				return
			}
			idx.Close()
		}

		fileServer.ServeHTTP(w, r)
	}
}

func writeNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not Found", "The requested resource "+r.URL.Path+" was not found")
}

// NewMetricsMiddleware creates middleware that records request metrics.
func NewMetricsMiddleware(m *metrics.Collector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip metrics for internal endpoints
			if strings.HasPrefix(r.URL.Path, "/health") || r.URL.Path == "/metrics" ||
				strings.HasPrefix(r.URL.Path, "/swagger") || strings.HasPrefix(r.URL.Path, "/.well-known") {
				next.ServeHTTP(w, r)
				return
			}

			m.RequestsInFlight.Inc()
			defer m.RequestsInFlight.Dec()

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			duration := time.Since(start).Seconds()
			status := statusLabel(ww.Status())
			path := metrics.NormalizePath(r.URL.Path)

			m.RequestsTotal.WithLabelValues(r.Method, path, status).Inc()
			m.RequestDuration.WithLabelValues(r.Method, path, status).Observe(duration)
		})
	}
}

// statusLabel returns a string label for the status code.
func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "other"
	}
}

// SecurityHeaders marks every response as non-sniffable and non-framable.
// The service serves JSON and a small static bundle, neither of which
// belongs in an iframe.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// NewCORSMiddleware answers preflight requests and sets the allow-origin
// header on everything else.
func NewCORSMiddleware(origins []string) func(next http.Handler) http.Handler {
	allowAll := len(origins) == 0
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case allowAll:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin != "" && allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// NewLoggingMiddleware creates a new logging middleware.
func NewLoggingMiddleware(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			// Skip logging for health checks and metrics
			if strings.HasPrefix(r.URL.Path, "/health") || r.URL.Path == "/metrics" {
				return
			}

			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("http request")
		})
	}
}
