// Package api exposes the site generator, the project log and the agent
// form helpers over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-agentsite/internal/logging"
	"github.com/goliatone/go-agentsite/internal/pipeline"
	"github.com/goliatone/go-agentsite/internal/projects"
	"github.com/goliatone/go-agentsite/pkg/fields"
)

// Runner executes one site generation.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (pipeline.Result, error)
}

// Invoker forwards a request to a deployed agent.
type Invoker interface {
	Invoke(ctx context.Context, agent string, values map[string]any) (json.RawMessage, error)
}

// FieldDefaults apply to /api/fields when the body leaves them out.
type FieldDefaults struct {
	MaxDepth   int
	Heuristics bool
}

// Option configures a Server.
type Option func(*Server)

// WithRunner enables /api/generate-site.
func WithRunner(r Runner) Option {
	return func(s *Server) { s.runner = r }
}

// WithStore enables the project log endpoints.
func WithStore(store projects.Store) Option {
	return func(s *Server) { s.store = store }
}

// WithInvoker enables agent invocation.
func WithInvoker(inv Invoker) Option {
	return func(s *Server) { s.invoker = inv }
}

// WithFieldDefaults sets the extractor defaults.
func WithFieldDefaults(d FieldDefaults) Option {
	return func(s *Server) { s.fieldDefaults = d }
}

// WithGatherer serves gatherer on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Server holds the HTTP handlers. Collaborators left unset make their
// routes answer 503.
type Server struct {
	Router        *chi.Mux
	runner        Runner
	store         projects.Store
	invoker       Invoker
	fieldDefaults FieldDefaults
	gatherer      prometheus.Gatherer
	validate      *requestValidator
	logger        *slog.Logger
}

// New builds the router.
func New(options ...Option) *Server {
	s := &Server{
		Router:        chi.NewRouter(),
		fieldDefaults: FieldDefaults{MaxDepth: fields.DefaultMaxDepth},
		validate:      newRequestValidator(),
		logger:        logging.Discard(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	s.logger = s.logger.With("component", "api")

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.Router.Use(chiMiddleware.RealIP)
	s.Router.Use(chiMiddleware.RequestID)
	s.Router.Use(s.requestLogger)
	s.Router.Use(chiMiddleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.Router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.gatherer != nil {
		s.Router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	s.Router.Route("/api", func(r chi.Router) {
		r.Post("/generate-site", s.generateSite)

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", s.listProjects)
			r.Get("/{id}", s.getProject)
		})

		r.Post("/fields", s.extractFields)
		r.Post("/submissions/nest", s.nestSubmission)
		r.Post("/agents/{name}/invoke", s.invokeAgent)
	})

	s.Router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	s.Router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chiMiddleware.GetReqID(r.Context()),
		)
	})
}
