// Package api serves classification and reporting over HTTP.
package api

import (
	"context"
	"crypto/tls"
	"net/http"
	"time"

	"github.com/Veraticus/passbook/internal/catalog"
	"github.com/Veraticus/passbook/internal/classification"
	"github.com/Veraticus/passbook/internal/ingest"
	"github.com/Veraticus/passbook/internal/report"
	"github.com/Veraticus/passbook/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultMaxUploadBytes caps the size of an uploaded export.
const DefaultMaxUploadBytes = 32 << 20

// Config holds the HTTP server settings.
type Config struct {
	Addr           string
	Version        string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxUploadBytes int64
	// TLSCertificate enables HTTPS when set.
	TLSCertificate *tls.Certificate
}

// Dependencies are the shared, read-only values every request uses.
type Dependencies struct {
	Catalog    *catalog.Catalog
	Filter     *ingest.Filter
	Clock      service.Clock
	Classifier classification.Options
	Report     report.Options
}

// Server represents the HTTP API server.
type Server struct {
	router  *chi.Mux
	handler *Handler
	server  *http.Server
	config  Config
}

// NewServer creates a new API server.
func NewServer(cfg Config, deps Dependencies) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}

	handler := NewHandler(deps, cfg.Version, cfg.MaxUploadBytes)
	router := chi.NewRouter()

	router.Use(RequestIDMiddleware)
	router.Use(RecoverMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(middleware.RealIP)
	router.Use(middleware.Compress(5))

	router.Get("/health", handler.Health)
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/v1", func(r chi.Router) {
		r.Get("/catalog", handler.Catalog)
		r.Post("/classify", handler.Classify)
		r.Post("/report", handler.Report)
	})

	return &Server{
		router:  router,
		handler: handler,
		config:  cfg,
	}
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadTimeout:       s.config.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	if s.config.TLSCertificate == nil {
		return s.server.ListenAndServe()
	}
	s.server.TLSConfig = &tls.Config{
		Certificates: []tls.Certificate{*s.config.TLSCertificate},
		MinVersion:   tls.VersionTLS12,
	}
	return s.server.ListenAndServeTLS("", "")
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
