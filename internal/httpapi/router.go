// Package httpapi exposes conversion, generation and probing over HTTP.
package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"proxysmith/internal/codec"
	"proxysmith/internal/generator"
	"proxysmith/internal/liveness"
	"proxysmith/internal/metrics"
)

// Config wires the server to its collaborators.
type Config struct {
	Codecs *codec.Registry
	// Checker backs /probe; nil disables the route's probing.
	Checker   liveness.Checker
	Scheduler liveness.SchedulerConfig
	// ProbeWait bounds how long /probe waits for results.
	ProbeWait time.Duration
	// Validator backs subscription validation.
	Validator      generator.Validator
	AllowedOrigins []string
	Logger         *zap.Logger
}

// Server holds the handlers.
type Server struct {
	cfg Config
	log *zap.Logger
}

// NewServer creates a new Server.
func NewServer(cfg Config) *Server {
	if cfg.Codecs == nil {
		cfg.Codecs = codec.NewRegistry()
	}
	if cfg.ProbeWait <= 0 {
		cfg.ProbeWait = 30 * time.Second
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{cfg: cfg, log: log}
}

// Router builds the chi router with CORS, metrics and recovery.
func (s *Server) Router() http.Handler {
	metrics.InitMetrics()

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api/v1", func(api chi.Router) {
		api.Post("/convert", s.handleConvert)
		api.Post("/generate", s.handleGenerate)
		api.Post("/subscription", s.handleSubscription)
		api.Post("/probe", s.handleProbe)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// instrument records request counters and logs each request.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		pattern := "(unknown)"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			pattern = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)

		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, pattern, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, pattern).Observe(elapsed.Seconds())
		s.log.Info("http request",
			zap.String("method", r.Method),
			zap.String("pattern", pattern),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", elapsed))
	})
}
