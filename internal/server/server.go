// Package server implements the numberline HTTP rendering surface.
//
// The server exposes the item repository, the current scale selection and
// the layout pipeline over HTTP:
//
//	GET    /healthz
//	GET    /items              list items in insertion order
//	POST   /items              create {id?, label, value}; id defaults to a UUID
//	PATCH  /items/{id}         edit {label?} and/or {value?}
//	DELETE /items/{id}         delete; unknown ids are ignored
//	GET    /scale              current multiplier
//	PUT    /scale              select {multiplier} from 1, 2, 5, 10
//	GET    /layout             placed items, ticks and canvas height
//	GET    /render.{format}    svg, png or json artifact
//	GET    /metrics            Prometheus metrics, when configured
//
// /layout and /render accept ?scale= and ?strategy= to override the
// current selection for one request.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/numberline/pkg/pipeline"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

const shutdownTimeout = 10 * time.Second

// Server serves the HTTP surface over a pipeline runner.
type Server struct {
	runner   *pipeline.Runner
	logger   *log.Logger
	defaults pipeline.Options
	metrics  http.Handler
	newID    func() string

	mu         sync.RWMutex
	multiplier int
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithDefaults sets the pipeline options every request starts from. The
// multiplier becomes the initial scale selection.
func WithDefaults(opts pipeline.Options) Option {
	return func(s *Server) { s.defaults = opts }
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithIDGenerator replaces the UUID generator used for items created
// without an id.
func WithIDGenerator(fn func() string) Option {
	return func(s *Server) { s.newID = fn }
}

// New creates a server over runner.
func New(runner *pipeline.Runner, opts ...Option) (*Server, error) {
	s := &Server{
		runner: runner,
		logger: runner.Logger,
		newID:  newUUID,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.defaults.ValidateForLayout(); err != nil {
		return nil, err
	}
	s.multiplier = s.defaults.Multiplier
	return s, nil
}

// Multiplier returns the current scale selection.
func (s *Server) Multiplier() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.multiplier
}

func (s *Server) setMultiplier(m int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.multiplier = m
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/items", func(r chi.Router) {
		r.Get("/", s.handleListItems)
		r.Post("/", s.handleCreateItem)
		r.Patch("/{id}", s.handleEditItem)
		r.Delete("/{id}", s.handleDeleteItem)
	})

	r.Get("/scale", s.handleGetScale)
	r.Put("/scale", s.handleSetScale)

	r.Get("/layout", s.handleLayout)
	r.Get("/render.{format}", s.handleRender)

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
