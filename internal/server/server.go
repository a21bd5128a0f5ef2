// Package server provides the HTTP API for HomeScout.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/homescout/homescout/internal/config"
	"github.com/homescout/homescout/internal/search"
	"github.com/homescout/homescout/internal/storage"
)

// Server is the HTTP server for the HomeScout API.
type Server struct {
	orchestrator *search.Orchestrator
	storage      storage.Storage
	config       *config.Config
	logger       *zap.Logger
	server       *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	orchestrator *search.Orchestrator,
	storage storage.Storage,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		orchestrator: orchestrator,
		storage:      storage,
		config:       cfg,
		logger:       logger,
	}
}

// Router builds the chi router with all API routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/search", s.handleSearch)
	r.Get("/api/v1/suggestions", s.handleSuggestions)
	r.Post("/api/v1/listings/{id}/index", s.handleIndexListing)
	r.Delete("/api/v1/listings/{id}/index", s.handleDeleteListingIndex)
	r.Post("/api/v1/admin/reindex", s.handleReindex)
	r.Post("/api/v1/admin/index/init", s.handleInitIndex)
	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
