// Package server exposes a fill engine over HTTP.
//
// The engine is single-threaded by contract, so the server owns it and
// serializes every request that touches it behind one mutex. Handlers
// translate coded errors from [errors] into JSON bodies with a matching
// status:
//
//	UNKNOWN_REGION, UNKNOWN_PATTERN              404
//	INVALID_*, ASSET_DECODE_ERROR, PARSE_ERROR   400
//	anything else                                500
//
// When a preference store is configured, stroke, canvas, zoom and pattern
// changes are written through to it so the next session starts where this
// one left off.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/cloverquilt/pkg/cache"
	"github.com/matzehuels/cloverquilt/pkg/engine"
	"github.com/matzehuels/cloverquilt/pkg/observability"
	"github.com/matzehuels/cloverquilt/pkg/patterns"
	"github.com/matzehuels/cloverquilt/pkg/prefs"
)

const (
	// maxUploadBytes bounds a pattern upload.
	maxUploadBytes = 32 << 20
	// maxBodyBytes bounds JSON request bodies.
	maxBodyBytes = 1 << 20

	shutdownTimeout = 10 * time.Second
)

// Server serves one engine and its pattern library.
type Server struct {
	mu      sync.Mutex
	engine  *engine.Engine
	library *patterns.Library

	store  prefs.Store
	cache  cache.Cache
	keyer  cache.Keyer
	logger *log.Logger

	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server's logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithStore persists preference changes to store.
func WithStore(store prefs.Store) Option {
	return func(s *Server) { s.store = store }
}

// WithCache caches PNG exports in c.
func WithCache(c cache.Cache) Option {
	return func(s *Server) { s.cache = c }
}

// New returns a server for eng, which must already have a drawing loaded.
// lib is the pattern source eng was created with.
func New(eng *engine.Engine, lib *patterns.Library, opts ...Option) *Server {
	s := &Server{
		engine:  eng,
		library: lib,
		cache:   cache.Nop(),
		keyer:   cache.Keyer{Scope: "server:"},
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)

	r.Get("/regions", s.handleRegions)
	r.Get("/regions/{id}", s.handleRegion)
	r.Put("/regions/{id}/fill", s.handleFill)
	r.Delete("/regions/{id}/fill", s.handleResetRegion)
	r.Post("/reset", s.handleResetAll)

	r.Route("/presentation", func(r chi.Router) {
		r.Get("/", s.handlePresentation)
		r.Put("/stroke", s.handleStroke)
		r.Put("/canvas", s.handleCanvas)
		r.Put("/zoom", s.handleZoom)
	})

	r.Get("/patterns", s.handlePatterns)
	r.Post("/patterns", s.handleUploadPattern)
	r.Delete("/patterns", s.handleClearPatterns)
	r.Delete("/patterns/{id}", s.handleRemovePattern)

	r.Get("/drawing.svg", s.handleSVG)
	r.Get("/export.png", s.handlePNG)

	r.Get("/design", s.handleSnapshot)
	r.Put("/design", s.handleRestore)
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, status, dur)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"took", dur,
			"id", middleware.GetReqID(r.Context()),
		)
	})
}
