// Package server exposes the analytics endpoint consumed by the insights
// panel, plus health and Prometheus metrics routes.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Iron-Ham/insights/internal/insight"
	"github.com/Iron-Ham/insights/internal/logging"
)

// Outcome labels for insights_requests_total.
const (
	OutcomeSuccess      = "success"
	OutcomeError        = "error"
	OutcomeUnauthorized = "unauthorized"
)

const notAuthenticated = "User not authenticated"

// Config controls the server's behavior.
type Config struct {
	// Token, when non-empty, must be presented as a bearer token.
	Token string
	// Metrics enables the /metrics route.
	Metrics bool
}

// Server serves insights produced by a Provider.
type Server struct {
	provider insight.Provider
	config   Config
	logger   *logging.Logger
	registry *prometheus.Registry
	metrics  *Metrics
	router   chi.Router
}

// New builds the router. A nil logger discards output.
func New(provider insight.Provider, cfg Config, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.NopLogger()
	}
	reg := prometheus.NewRegistry()
	s := &Server{
		provider: provider,
		config:   cfg,
		logger:   logger.WithComponent("server"),
		registry: reg,
		metrics:  NewMetrics(reg),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/api/health", s.handleHealth)
	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Post("/api/analytics/", s.handleAnalytics)
	})
	if s.config.Metrics {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.config.Token == "" {
			next.ServeHTTP(w, r)
			return
		}
		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(s.config.Token)) != 1 {
			s.metrics.Requests.WithLabelValues(OutcomeUnauthorized).Inc()
			s.logger.Warn("rejected unauthenticated request", "remote", r.RemoteAddr)
			writeDetail(w, http.StatusUnauthorized, notAuthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	out, err := s.provider.FetchInsight(r.Context())
	s.metrics.Generation.Observe(time.Since(start).Seconds())

	if err != nil {
		s.metrics.Requests.WithLabelValues(OutcomeError).Inc()
		s.logger.Error("insight generation failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to generate insights")
		return
	}

	s.metrics.Requests.WithLabelValues(OutcomeSuccess).Inc()
	writeJSON(w, http.StatusOK, out)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
