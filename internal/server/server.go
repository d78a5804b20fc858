package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"mobiledev-news/internal/core"
	"mobiledev-news/internal/features/crawler"
	"mobiledev-news/internal/server/handlers"
)

// Server is the crawl daemon: the crawler feature plus its operator routes
type Server struct {
	config   *core.Config
	logger   *core.Logger
	db       *core.Database
	articles handlers.ArticleCounter
	registry *core.Registry
	server   *http.Server
}

// New opens the database, registers the crawler feature and sets up routes
func New(config *core.Config, logger *core.Logger) (*Server, error) {
	db, err := core.OpenSQLite(config.Database.Path, logger)
	if err != nil {
		return nil, err
	}

	registry := core.NewRegistry(logger)

	crawlerFeature, err := crawler.NewFeature(logger, db, crawler.NewConfig(config))
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := registry.Register(crawlerFeature); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to register crawler feature: %w", err)
	}

	srv := &Server{
		config:   config,
		logger:   logger,
		db:       db,
		articles: crawlerFeature.Pipeline().Articles,
		registry: registry,
	}
	srv.setupRoutes()

	return srv, nil
}

func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.logger, s.db, s.articles, s.registry)

	mux := chi.NewRouter()

	mux.Use(middleware.Recoverer)
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(middleware.Logger)

	mux.Get("/healthz", healthHandler.HealthCheckHandler)

	// Feature routes
	for _, route := range s.registry.GetAllRoutes() {
		mux.Method(route.Method, route.Path, route.Handler)
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port),
		Handler:           mux,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Handler returns the HTTP handler serving all routes
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start initializes the features and serves until Shutdown is called
func (s *Server) Start(ctx context.Context) error {
	if err := s.registry.InitAll(ctx); err != nil {
		s.logger.Error("Failed to initialize features", "error", err)
		return err
	}

	s.logger.Info("Starting server", "host", s.config.Server.Host, "port", s.config.Server.Port)

	err := s.server.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	s.logger.Info("Server stopped")
	return nil
}

// Shutdown stops accepting requests, shuts down the features and closes the database
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Error("Failed to shutdown HTTP server", "error", err)
	}

	if err := s.registry.ShutdownAll(ctx); err != nil {
		s.logger.Error("Failed to shutdown features", "error", err)
	}

	s.db.LogStats()

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}
