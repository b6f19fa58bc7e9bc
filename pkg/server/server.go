// Package server exposes a parsed graph session over a read-only HTTP API.
//
// # Routes
//
//	GET /healthz                            liveness probe
//	GET /graph                              counts, roots and genome names
//	GET /nodes/{id}                         one segment with its sequence
//	GET /subgraph?center=&radius=&collapse= layered view (pkg/io JSON format)
//	GET /genomes/{name}/segments/{pos}      segment holding a genome coordinate
//
// Failures are answered with {"code": ..., "error": ...}. The status is
// derived from the error code: NOT_FOUND is 404, INVALID_INPUT and
// INVALID_PATH are 400, CYCLE_DETECTED is 422, everything else is 500.
//
// The session must be fully loaded before it is served. Handlers only read
// from it, so requests run concurrently without locking.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/seqtower/pkg/buildinfo"
	errs "github.com/matzehuels/seqtower/pkg/errors"
	"github.com/matzehuels/seqtower/pkg/observability"
	"github.com/matzehuels/seqtower/pkg/session"
)

// DefaultRadius is used by /subgraph when no radius is given.
const DefaultRadius = 10

// ShutdownTimeout bounds graceful shutdown in [Server.ListenAndServe].
const ShutdownTimeout = 5 * time.Second

// Server serves one session.
type Server struct {
	router   chi.Router
	sess     *session.Session
	logger   *log.Logger
	radius   int
	collapse bool
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the request logger. Defaults to log.Default().
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithDefaults sets the radius and SNP collapsing used when a /subgraph
// request leaves them out.
func WithDefaults(radius int, collapse bool) Option {
	return func(s *Server) {
		s.radius = radius
		s.collapse = collapse
	}
}

// New returns a server for sess.
func New(sess *session.Session, opts ...Option) *Server {
	s := &Server{
		router: chi.NewRouter(),
		sess:   sess,
		logger: log.Default(),
		radius: DefaultRadius,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(s.logRequests)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/graph", s.handleGraph)
	s.router.Get("/nodes/{id}", s.handleNode)
	s.router.Get("/subgraph", s.handleSubgraph)
	s.router.Get("/genomes/{name}/segments/{pos}", s.handleLocate)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down,
// giving in-flight requests ShutdownTimeout to finish.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("serving graph", "addr", addr, "path", s.sess.Path, "session", s.sess.ID)

	select {
	case err := <-errCh:
		return errs.Wrap(errs.ErrCodeInternal, err, "listen on %s", addr)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "shutdown")
	}
	s.logger.Info("server stopped")
	return ctx.Err()
}

// logRequests logs every request through the charm logger and reports it to
// the HTTP hooks.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		w.Header().Set("Server", buildinfo.UserAgent())
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, status, elapsed)
		s.logger.Debug("request",
			"id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", elapsed)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Code  errs.Code `json:"code"`
	Error string    `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	writeJSON(w, status, errorResponse{Code: code, Error: errs.UserMessage(err)})
}

func statusFor(err error) int {
	switch {
	case errs.Is(err, errs.ErrCodeNotFound):
		return http.StatusNotFound
	case errs.Is(err, errs.ErrCodeInvalidInput), errs.Is(err, errs.ErrCodeInvalidPath):
		return http.StatusBadRequest
	case errs.Is(err, errs.ErrCodeCycle):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// intParam parses an integer path or query value.
func intParam(name, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errs.New(errs.ErrCodeInvalidInput, "%s must be an integer, got %q", name, raw)
	}
	return n, nil
}
