// Package server exposes a builder session over HTTP: a JSON API and a
// script-free HTML page rendered by the vanilla renderer.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formbuilder/internal/metrics"
	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/render"
)

const (
	maxUploadMemory   = 32 << 20
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Option configures a Server.
type Option func(*Server)

// WithRenderer sets the HTML renderer used for GET /.
func WithRenderer(renderer render.Renderer) Option {
	return func(s *Server) {
		if renderer != nil {
			s.renderer = renderer
		}
	}
}

// WithRenderOptions sets the title, countries and action prefix used when
// rendering the page.
func WithRenderOptions(options render.RenderOptions) Option {
	return func(s *Server) {
		s.renderOptions = options
	}
}

// WithLogger attaches the request and error logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRateLimit limits each client IP to limit requests per window. A limit
// of zero disables the limiter.
func WithRateLimit(limit int, window time.Duration) Option {
	return func(s *Server) {
		s.rateLimit = RateLimitConfig{RequestLimit: limit, WindowSize: window}
	}
}

// WithAssets serves files under /assets/, e.g. the renderer stylesheet.
func WithAssets(files fs.FS) Option {
	return func(s *Server) {
		s.assets = files
	}
}

// WithMetrics records Prometheus collectors for every request and exposes
// them on GET /metrics.
func WithMetrics(enabled bool) Option {
	return func(s *Server) {
		s.metrics = enabled
	}
}

// Server serialises access to one session; net/http runs handlers
// concurrently and the session is not safe for concurrent use.
type Server struct {
	mu      sync.Mutex
	session *builder.Session
	// warning is shown once on the next page render.
	warning string

	renderer      render.Renderer
	renderOptions render.RenderOptions
	rateLimit     RateLimitConfig
	assets        fs.FS
	metrics       bool
	logger        zerolog.Logger
}

// New wraps session. A renderer is required for the HTML routes.
func New(session *builder.Session, options ...Option) (*Server, error) {
	if session == nil {
		return nil, errors.New("server: session is required")
	}
	s := &Server{
		session: session,
		logger:  zerolog.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.renderer == nil {
		return nil, errors.New("server: renderer is required")
	}
	return s, nil
}

// Handler returns the routed handler with the middleware stack applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger(s.logger))
	if s.metrics {
		r.Use(instrument)
	}
	if s.rateLimit.RequestLimit > 0 {
		r.Use(RateLimit(s.rateLimit))
	}

	if s.metrics {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	r.Get("/", s.handlePage)
	if s.assets != nil {
		r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServerFS(s.assets)))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/form", s.handleForm)
		r.Post("/sections", s.handleAddSection)
		r.Post("/sections/{id}/select", s.handleSelectSection)
		r.Post("/sections/fields", s.handleAddField)
		r.Delete("/items/{id}", s.handleDeleteItem)
		r.Put("/items/{id}/condition", s.handleSetCondition)
		r.Delete("/fields/{id}", s.handleDeleteField)
		r.Post("/fields/{id}/options", s.handleAddOption)
		r.Put("/fields/{id}/value", s.handleChange)
		r.Post("/submit", s.handleSubmit)
	})

	r.Route("/form", func(r chi.Router) {
		r.Post("/sections", s.formAddSection)
		r.Post("/sections/{id}/select", s.formSelectSection)
		r.Post("/fields", s.formAddField)
		r.Post("/items/{id}/delete", s.formDeleteItem)
		r.Post("/fields/{id}/delete", s.formDeleteField)
		r.Post("/fields/{id}/options", s.formAddOption)
		r.Post("/submit", s.formSubmit)
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	}
}
