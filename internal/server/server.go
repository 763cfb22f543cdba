package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/voyagen/xtreamvault/api"
	"github.com/voyagen/xtreamvault/internal/cache"
	"github.com/voyagen/xtreamvault/internal/metrics"
	"github.com/voyagen/xtreamvault/internal/models"
	"github.com/voyagen/xtreamvault/internal/service"
)

// Service is the part of service.Parser the API needs.
type Service interface {
	AllCategories(ctx context.Context) ([]models.Category, error)
	AllChannels(ctx context.Context) ([]models.LiveStream, error)
	Refresh(ctx context.Context) (service.Result, error)
	ForceRefresh(ctx context.Context) (service.Result, error)
}

// Server holds dependencies for the HTTP API.
type Server struct {
	svc     Service
	port    string
	redis   *cache.Redis // nil when REDIS_URL is not set
	metrics *metrics.Metrics
	logger  *log.Logger
	mux     *http.ServeMux
}

// New creates a Server and registers routes. rds and m may be nil.
func New(svc Service, port string, rds *cache.Redis, m *metrics.Metrics, logger *log.Logger) *Server {
	srv := &Server{
		svc:     svc,
		port:    port,
		redis:   rds,
		metrics: m,
		logger:  logger.With("component", "server"),
		mux:     http.NewServeMux(),
	}
	srv.routes()
	return srv
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/categories", s.handleListCategories)
	s.mux.HandleFunc("GET /api/channels", s.handleListChannels)
	s.mux.HandleFunc("POST /api/refresh", s.handleRefresh)

	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}

	s.mux.HandleFunc("GET /api/docs/openapi.yaml", handleOpenAPISpec)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server on the configured port.
// It blocks until the server is shut down or ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := ":" + s.port
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.withLogging(s),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown", "err", err)
		}
	}()

	s.logger.Info("listening", "addr", addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ListenAndServe: %w", err)
	}
	return nil
}

// --- handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok"}
	if s.redis != nil {
		body["refresh_running"] = cache.IsLocked(r.Context(), s.redis, cache.RefreshLockKey)
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.svc.AllCategories(r.Context())
	if err != nil {
		s.writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleListChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := s.svc.AllChannels(r.Context())
	if err != nil {
		s.writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if channels == nil {
		channels = []models.LiveStream{}
	}
	writeJSON(w, http.StatusOK, channels)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	force := false
	if v := r.URL.Query().Get("force"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid force: %s (use true or false)", v))
			return
		}
		force = b
	}

	// With Redis the worker owns refreshes; hand the job over.
	if s.redis != nil {
		job := cache.RefreshJob{Force: force, RequestedAt: time.Now().UTC()}
		if err := cache.Enqueue(r.Context(), s.redis, cache.RefreshQueue, job); err != nil {
			s.writeErr(w, http.StatusInternalServerError, fmt.Errorf("enqueue: %w", err))
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{"queued": true, "force": force})
		return
	}

	refresh := s.svc.Refresh
	if force {
		refresh = s.svc.ForceRefresh
	}
	res, err := refresh(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrRefreshRunning) {
			s.writeErr(w, http.StatusConflict, err)
			return
		}
		s.writeErr(w, http.StatusInternalServerError, fmt.Errorf("refresh: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// --- middleware ---

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// withLogging logs each request with method, path, status, and duration.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start).Round(time.Microsecond),
		)
	})
}

// --- helpers ---

// APIError is the standard error envelope for all error responses.
type APIError struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeErr(w http.ResponseWriter, status int, err error) {
	if status >= 500 {
		s.logger.Error("request failed", "status", status, "err", err)
	}
	writeJSON(w, status, APIError{
		Status: status,
		Error:  http.StatusText(status),
		Detail: err.Error(),
	})
}

func handleOpenAPISpec(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(api.OpenAPISpec)
}
