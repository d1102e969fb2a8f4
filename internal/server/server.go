// Package server exposes the curricula pipeline over HTTP.
//
// # Endpoints
//
//	POST /api/v1/analyze             per-course metrics as JSON
//	POST /api/v1/schedule            term-ordered plan as JSON
//	POST /api/v1/render?type=&select=&format=
//	GET  /healthz
//	GET  /metrics                    prometheus exposition
//
// Request bodies hold a plan in the tabular export or, with
// Content-Type: application/json, the structured JSON format. Every request
// builds its own plan; only rendered artifacts are shared, through the
// runner's cache.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/pipeline"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server routes API requests to a pipeline runner.
type Server struct {
	runner   *pipeline.Runner
	logger   *log.Logger
	defaults pipeline.Options
	router   chi.Router
}

// New builds the router. defaults fill any option a request leaves unset.
// A nil logger uses the runner's.
func New(runner *pipeline.Runner, logger *log.Logger, defaults pipeline.Options) *Server {
	if logger == nil {
		logger = runner.Logger
	}
	s := &Server{
		runner:   runner,
		logger:   logger,
		defaults: defaults,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/schedule", s.handleSchedule)
		r.Post("/render", s.handleRender)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, http.StatusMethodNotAllowed, "INVALID_INPUT", "method "+r.Method+" not allowed")
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
