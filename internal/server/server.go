// Package server exposes daily reports over HTTP: a web page, a JSON API and metrics.
package server

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"diderot/internal/archive"
	"diderot/internal/config"
	"diderot/internal/core"
	"diderot/internal/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// ReportService loads, lists and generates daily reports.
type ReportService interface {
	Get(ctx context.Context, date string, force bool) (*core.DailyReport, archive.State, error)
	Lookup(date string, force bool) (archive.State, *core.DailyReport, error)
	List() ([]string, error)
}

// Server represents the HTTP server
type Server struct {
	router       *chi.Mux
	httpServer   *http.Server
	reports      ReportService
	config       config.Server
	writeTimeout time.Duration
	metrics      http.Handler
	page         *template.Template
	log          *slog.Logger
	now          func() time.Time
}

// Option configures a Server
type Option func(*Server)

// WithMetricsHandler serves h at /metrics
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithTimeouts sets the HTTP read and write timeouts
func WithTimeouts(read, write time.Duration) Option {
	return func(s *Server) {
		s.httpServer.ReadTimeout = read
		s.httpServer.WriteTimeout = write
		s.writeTimeout = write
	}
}

// New creates a new HTTP server instance
func New(reports ReportService, cfg config.Server, opts ...Option) *Server {
	s := &Server{
		router:       chi.NewRouter(),
		reports:      reports,
		config:       cfg,
		writeTimeout: 30 * time.Minute,
		page:         template.Must(template.New("page").Parse(pageTemplate)),
		log:          logger.Get(),
		now:          time.Now,
	}

	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	// generation runs inside the request, so the timeout follows the write timeout
	s.router.Use(middleware.Timeout(s.writeTimeout))
	s.router.Use(securityHeaders)

	if s.config.CORS.Enabled {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.CORS.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
}

// setupRoutes configures routes for the server
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics)
	}

	s.router.Route("/api/reports", func(r chi.Router) {
		r.Use(noCache)
		r.Get("/", s.handleListReports)
		r.Get("/{date}", s.handleGetReport)
		r.Post("/{date}/generate", s.handleGenerateReport)
	})

	s.router.Get("/", s.handleHomePage)
	s.router.Post("/generate", s.handleGenerateForm)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server",
		"addr", s.httpServer.Addr,
		"read_timeout", s.httpServer.ReadTimeout.String(),
		"write_timeout", s.httpServer.WriteTimeout.String(),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server gracefully...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}
