// Package server provides the HTTP server and routing for the optimizer
// service.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/internal/config"
	"github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/internal/database"
	chartshandlers "github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/internal/modules/charts/handlers"
	optimizationhandlers "github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/internal/modules/optimization/handlers"
)

// Config holds server configuration
type Config struct {
	Log               zerolog.Logger
	Cfg               *config.Config
	Port              int
	HistoryDB         *database.DB
	CacheDB           *database.DB
	OptimizerHandlers *optimizationhandlers.Handler
	ChartHandlers     *chartshandlers.Handler
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(120 * time.Second))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	systemHandlers := NewSystemHandlers(cfg.Log, cfg.HistoryDB, cfg.CacheDB)

	router.Route("/api", func(r chi.Router) {
		cfg.OptimizerHandlers.RegisterRoutes(r)
		cfg.ChartHandlers.RegisterRoutes(r)
		r.Route("/system", func(r chi.Router) {
			r.Get("/health", systemHandlers.Health)
		})
	})

	return &Server{
		router: router,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      router,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
		},
		log: cfg.Log.With().Str("component", "server").Logger(),
	}
}

// Router returns the chi router (exposed for tests)
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start begins listening. Blocks until the server stops.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
