// Package api serves the segmentation pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz        build information
//	GET  /v1/formats     output formats and their content types
//	POST /v1/segment     body is the geometry file, query selects options
//
// /v1/segment takes the file name from ?filename= and reads thresholds from
// distance, angle, min_size, radius, sort_seeds, vertex_distance. It renders
// a single ?format= (default json) and answers with the artifact itself.
// Errors are JSON objects {"code": ..., "message": ...} with the status
// from [errors.HTTPStatus].
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/planeseg/internal/config"
	"github.com/matzehuels/planeseg/pkg/buildinfo"
	"github.com/matzehuels/planeseg/pkg/observability"
	"github.com/matzehuels/planeseg/pkg/pipeline"
)

// Response headers set by /v1/segment.
const (
	HeaderRunID          = "X-Run-ID"
	HeaderSegmentationID = "X-Segmentation-ID"
	HeaderRegions        = "X-Regions"
	HeaderUnassigned     = "X-Unassigned"
	HeaderCache          = "X-Cache"
)

const shutdownTimeout = 5 * time.Second

// Server is the HTTP front end of a pipeline runner.
type Server struct {
	runner *pipeline.Runner
	cfg    config.Config
	logger *log.Logger
}

// New returns a server that runs requests through runner. Values in cfg
// fill options a request leaves unset.
func New(runner *pipeline.Runner, cfg config.Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, cfg: cfg, logger: logger}
}

// Handler returns the routed handler with its middleware stack.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/formats", s.formats)
		r.Post("/segment", s.segment)
	})
	return r
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.cfg.Server.ReadTimeout.Duration,
		ReadTimeout:       s.cfg.Server.ReadTimeout.Duration,
		WriteTimeout:      s.cfg.Server.WriteTimeout.Duration,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": buildinfo.Get(),
	})
}

func (s *Server) formats(w http.ResponseWriter, r *http.Request) {
	type format struct {
		Name        string `json:"name"`
		ContentType string `json:"content_type"`
		NeedsMesh   bool   `json:"needs_mesh"`
	}
	out := make([]format, len(pipeline.Formats))
	for i, f := range pipeline.Formats {
		out[i] = format{Name: f, ContentType: pipeline.ContentTypes[f], NeedsMesh: pipeline.NeedsMesh(f)}
	}
	writeJSON(w, http.StatusOK, out)
}

// logRequests logs each request and reports it to the HTTP hooks.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, status, elapsed)
		s.logger.Info("request",
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
