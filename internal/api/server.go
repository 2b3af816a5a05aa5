// Package api assembles the HTTP server: services, middleware, and routes.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/reelfeed/reelfeed/internal/config"
	"github.com/reelfeed/reelfeed/internal/details"
	"github.com/reelfeed/reelfeed/internal/feeds"
	"github.com/reelfeed/reelfeed/internal/media/scoring"
	"github.com/reelfeed/reelfeed/internal/provider/tmdb"
	"github.com/reelfeed/reelfeed/internal/search"
)

// Server handles HTTP requests for the ReelFeed API.
type Server struct {
	echo   *echo.Echo
	logger zerolog.Logger
	cfg    *config.Config

	client *tmdb.Client
	cache  *feeds.Cache

	feedService    *feeds.Service
	genreCatalog   *feeds.Catalog
	searchEngine   *search.Engine
	searchSessions *search.Manager
	detailService  *details.Service

	startTime time.Time
}

// NewServer creates a new API server instance.
func NewServer(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:      e,
		logger:    logger,
		cfg:       cfg,
		startTime: time.Now(),
	}

	s.client = tmdb.NewClient(cfg.TMDB, logger)
	scorer := scoring.NewDefault()

	s.cache = feeds.NewCache(feeds.CacheConfig{
		TTL:      time.Duration(cfg.Cache.TTLMinutes) * time.Minute,
		MaxItems: cfg.Cache.MaxItems,
	})

	s.feedService = feeds.NewService(s.client, scorer, s.cache, logger)

	catalog, err := feeds.NewCatalog(s.client, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create genre catalog: %w", err)
	}
	s.genreCatalog = catalog

	s.searchEngine = search.NewEngine(s.client, scorer, cfg.Search.SuggestionLimit, logger)
	s.searchSessions = search.NewManager(
		s.searchEngine,
		time.Duration(cfg.Search.DebounceMS)*time.Millisecond,
		logger,
	)

	s.detailService = details.NewService(s.client, scorer, logger)

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogMethod:   true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Info().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))

	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
	}))
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/healthz", s.healthCheck)

	api := s.echo.Group("/api/v1")
	api.GET("/status", s.getStatus)

	feedHandlers := feeds.NewHandlers(s.feedService, s.genreCatalog)
	feedHandlers.RegisterRoutes(api)

	searchHandlers := search.NewHandlers(s.searchEngine, s.searchSessions)
	searchHandlers.RegisterRoutes(api)

	detailHandlers := details.NewHandlers(s.detailService)
	detailHandlers.RegisterRoutes(api)
}

// Start begins serving and launches the background refreshers.
func (s *Server) Start(address string) error {
	if !s.client.IsConfigured() {
		return tmdb.ErrAPIKeyMissing
	}

	s.logger.Info().Str("address", address).Msg("starting HTTP server")

	interval := time.Duration(s.cfg.Genres.RefreshMinutes) * time.Minute
	if err := s.genreCatalog.Start(context.Background(), interval); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to start genre catalog")
	}

	return s.echo.Start(address)
}

// Shutdown gracefully stops the server and its background services.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")

	if err := s.genreCatalog.Stop(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to stop genre catalog")
	}
	s.searchSessions.Close()
	s.cache.Close()

	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"version":    "0.1.0",
		"startTime":  s.startTime.Format(time.RFC3339),
		"provider":   s.client.Name(),
		"configured": s.client.IsConfigured(),
		"genres":     len(s.genreCatalog.Genres()),
		"cacheSize":  s.cache.Len(),
	})
}
