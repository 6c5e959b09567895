// Package server exposes the tool registry, resolver, and invoker over
// a small REST API. It is protocol plumbing around the core: outcomes
// pass through as discriminated values and are never collapsed into a
// generic error.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/me/bioexec/internal/argexpr"
	"github.com/me/bioexec/internal/config"
	"github.com/me/bioexec/internal/detect"
	"github.com/me/bioexec/internal/queue"
	"github.com/me/bioexec/internal/registry"
	"github.com/me/bioexec/internal/sandbox"
	"github.com/me/bioexec/internal/store"
)

// Server is the BioExec REST API server.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	config    config.ServerConfig
	execCfg   config.ExecConfig
	startTime time.Time

	registry *registry.Registry
	resolver *detect.Resolver
	invoker  *sandbox.Invoker
	eval     *argexpr.Evaluator
	store    store.Store    // optional; history endpoints answer 503 without it
	queue    *queue.Client  // optional; queue endpoints answer 503 without it
}

// Option configures optional Server dependencies.
type Option func(*Server)

// WithStore sets the invocation history store.
func WithStore(st store.Store) Option {
	return func(s *Server) {
		s.store = st
	}
}

// WithQueueClient sets the remote job broker client.
func WithQueueClient(qc *queue.Client) Option {
	return func(s *Server) {
		s.queue = qc
	}
}

// WithResolver replaces the resolver (used by tests to inject fakes).
func WithResolver(r *detect.Resolver) Option {
	return func(s *Server) {
		s.resolver = r
	}
}

// New creates a Server with all routes registered. The resolver's cache
// lives as long as the Server: a tool resolved once is never re-probed
// by this process.
func New(cfg config.ServerConfig, execCfg config.ExecConfig, reg *registry.Registry, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.With("component", "server"),
		config:    cfg,
		execCfg:   execCfg,
		startTime: time.Now(),
		registry:  reg,
		resolver:  detect.NewResolver(logger),
		invoker:   sandbox.NewInvoker(logger),
		eval:      argexpr.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/tools", func(r chi.Router) {
			r.Get("/", s.handleListTools)
			r.Route("/{name}", func(r chi.Router) {
				r.Get("/", s.handleGetTool)
				r.Get("/detection", s.handleDetection)
				r.Post("/run", s.handleRun)
				r.Post("/submit", s.handleSubmitJob)
			})
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/", s.handleListHistory)
			r.Get("/{id}", s.handleGetHistory)
		})

		r.Route("/queue/jobs", func(r chi.Router) {
			r.Get("/", s.handleListJobs)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleJobStatus)
				r.Get("/result", s.handleJobResult)
				r.Delete("/", s.handleCancelJob)
			})
		})
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}
