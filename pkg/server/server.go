// Package server exposes the pipeline over HTTP.
//
// Routes:
//
//	POST   /api/v1/traces                            run an engine, archive the document
//	GET    /api/v1/traces                            newest archived documents
//	GET    /api/v1/traces/{id}                       one document
//	DELETE /api/v1/traces/{id}                       remove a document
//	GET    /api/v1/traces/{id}/steps/{index}         one step
//	GET    /api/v1/traces/{id}/steps/{index}/{format} step as dot, svg, png or pdf
//	GET    /api/v1/engines                           supported engines and operations
//	GET    /healthz                                  liveness
//	GET    /metrics                                  Prometheus metrics
//
// Errors are JSON objects {"code": ..., "message": ...} carrying the codes of
// package errors.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/algotrace/pkg/archive"
	"github.com/matzehuels/algotrace/pkg/pipeline"
)

// Config holds HTTP server settings.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64

	// Metrics serves /metrics. Nil uses the default Prometheus registry.
	Metrics http.Handler
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    60 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		MaxBodyBytes:    1 << 20,
	}
}

// Server is the HTTP API.
type Server struct {
	cfg    Config
	runner *pipeline.Runner
	store  archive.Store
	logger *log.Logger
	router chi.Router
}

// New creates a server that runs engines with runner and keeps documents in
// store. Zero fields of cfg take their defaults.
func New(cfg Config, runner *pipeline.Runner, store archive.Store, logger *log.Logger) *Server {
	def := DefaultConfig()
	if cfg.Addr == "" {
		cfg.Addr = def.Addr
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = def.ReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = def.IdleTimeout
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = def.ShutdownTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = def.MaxBodyBytes
	}
	if cfg.Metrics == nil {
		cfg.Metrics = promhttp.Handler()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	if store == nil {
		store = archive.NewMemoryStore()
	}
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		cfg:    cfg,
		runner: runner,
		store:  store,
		logger: logger.WithPrefix("http"),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, s.logger, notFound("no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Code: "METHOD_NOT_ALLOWED", Message: r.Method + " not allowed"})
	})

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.cfg.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/engines", s.handleEngines)
		r.Route("/traces", func(r chi.Router) {
			r.Post("/", s.handleCreateTrace)
			r.Get("/", s.handleListTraces)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetTrace)
				r.Delete("/", s.handleDeleteTrace)
				r.Get("/steps/{index}", s.handleGetStep)
				r.Get("/steps/{index}/{format}", s.handleRenderStep)
			})
		})
	})
	return r
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("server started", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
