// Package server exposes the heatmap pipeline over HTTP.
//
// # Routes
//
//	GET    /healthz                          build info
//	POST   /v1/squarify                      lay out generic records
//	POST   /v1/layouts                       lay out a portfolio and store it
//	GET    /v1/layouts                       list stored layouts
//	GET    /v1/layouts/{id}                  fetch a stored layout
//	GET    /v1/layouts/{id}/render.{format}  render a stored layout
//	DELETE /v1/layouts/{id}                  delete a stored layout
//
// Errors are returned as {"error": {"code": ..., "message": ...}} with the
// status code given by [herrors.HTTPStatus]. Every response carries an
// X-Request-ID header.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	herrors "github.com/matzehuels/heatmap/pkg/errors"
	"github.com/matzehuels/heatmap/pkg/pipeline"
	"github.com/matzehuels/heatmap/pkg/storage"
)

// Defaults for Config.
const (
	DefaultAddr         = ":8080"
	DefaultMaxBodyBytes = 4 << 20
	DefaultTimeout      = 30 * time.Second

	shutdownTimeout = 10 * time.Second
)

// Config configures a Server.
type Config struct {
	// Runner computes and renders layouts. Nil uses an uncached runner.
	Runner *pipeline.Runner

	// Store keeps computed layouts. Nil uses a MemoryStore.
	Store storage.Store

	// Logger receives one line per request. Nil discards.
	Logger *log.Logger

	// MaxBodyBytes bounds request bodies.
	MaxBodyBytes int64

	// Timeout bounds each request.
	Timeout time.Duration
}

// Server is the HTTP API.
type Server struct {
	runner  *pipeline.Runner
	store   storage.Store
	logger  *log.Logger
	maxBody int64
	timeout time.Duration
	router  chi.Router
}

// New builds a Server and its routes.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	runner := cfg.Runner
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	store := cfg.Store
	if store == nil {
		store = storage.NewMemoryStore()
	}

	s := &Server{
		runner:  runner,
		store:   store,
		logger:  logger,
		maxBody: cfg.MaxBodyBytes,
		timeout: cfg.Timeout,
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBodyBytes
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/squarify", s.handleSquarify)

		r.Route("/layouts", func(r chi.Router) {
			r.Post("/", s.handleCreateLayout)
			r.Get("/", s.handleListLayouts)
			r.Get("/{id}", s.handleGetLayout)
			r.Get("/{id}/render.{format}", s.handleRenderLayout)
			r.Delete("/{id}", s.handleDeleteLayout)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, notFoundError(r))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: errorDetail{
			Code:    herrors.ErrCodeInvalidInput,
			Message: fmt.Sprintf("method %s not allowed on %s", r.Method, r.URL.Path),
		}})
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
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Close releases the store and the runner's cache.
func (s *Server) Close() error {
	return errors.Join(s.store.Close(), s.runner.Close())
}
