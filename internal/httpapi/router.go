package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"falcon-mcp/internal/config"
	"falcon-mcp/internal/observe"
	"falcon-mcp/internal/pipeline"
	"falcon-mcp/pkg/logging"
)

// Pinger checks that the Falcon API answers at baseURL.
type Pinger interface {
	Ping(ctx context.Context, baseURL string) error
}

// Handler serves the REST routes.
type Handler struct {
	cfg      config.HTTPConfig
	pipeline *pipeline.Pipeline
	version  string

	pinger       Pinger
	readyBaseURL string

	metrics        *observe.Metrics
	metricsHandler http.Handler
}

// Option customizes a Handler.
type Option func(*Handler)

// WithVersion sets the version reported by GET /.
func WithVersion(version string) Option {
	return func(h *Handler) {
		h.version = version
	}
}

// WithReadiness makes GET /readyz ping baseURL when the config asks for an
// upstream check.
func WithReadiness(p Pinger, baseURL string) Option {
	return func(h *Handler) {
		h.pinger = p
		h.readyBaseURL = baseURL
	}
}

// WithMetrics records request latency on m and serves promHandler on
// /metrics.
func WithMetrics(m *observe.Metrics, promHandler http.Handler) Option {
	return func(h *Handler) {
		h.metrics = m
		h.metricsHandler = promHandler
	}
}

// NewHandler creates the REST handler.
func NewHandler(cfg config.HTTPConfig, p *pipeline.Pipeline, opts ...Option) *Handler {
	h := &Handler{
		cfg:      cfg,
		pipeline: p,
		version:  "dev",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router builds the chi router with all routes and middleware.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	if h.metrics != nil {
		r.Use(observe.Middleware(h.metrics))
	}

	r.Get("/", h.handleInfo)
	r.Get("/healthz", h.handleHealth)
	r.Get("/readyz", h.handleReady)
	r.Get("/tools", h.handleListTools)
	r.Post("/tools/{name}", h.handleCallTool)
	if h.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", h.metricsHandler)
	}
	return r
}

// requestLogger logs each request at debug level through pkg/logging.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logging.Debug("HTTPAPI", "%s %s -> %d in %s (request %s)",
			r.Method, r.URL.Path, ww.Status(), time.Since(start), middleware.GetReqID(r.Context()))
	})
}
