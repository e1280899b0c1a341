// Package main is the entry point for the portfolio optimizer service.
// The service maintains a local store of daily price history, estimates
// return and risk moments from it, and searches the long-only frontier by
// Monte Carlo sampling. Results are served over HTTP as JSON and as rendered
// charts.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/internal/clients/yahoo"
	"github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/internal/config"
	"github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/internal/database"
	"github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/internal/modules/calculations"
	"github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/internal/modules/charts"
	chartshandlers "github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/internal/modules/charts/handlers"
	"github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/internal/modules/optimization"
	optimizationhandlers "github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/internal/modules/optimization/handlers"
	"github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/internal/modules/universe"
	"github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/internal/scheduler"
	"github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/internal/server"
	"github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Strs("tickers", cfg.Tickers).
		Int("num_samples", cfg.NumSamples).
		Int("lookback_years", cfg.LookbackYears).
		Msg("Starting portfolio optimizer")

	// Databases: durable price history, ephemeral calculation cache.
	historyDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "history.db"),
		Profile: database.ProfileStandard,
		Name:    "history",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open history database")
	}
	defer historyDB.Close()

	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	history := universe.NewHistoryDB(historyDB.Conn(), log)
	if err := history.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize history schema")
	}

	calcCache := calculations.NewCache(cacheDB.Conn(), log)
	if err := calcCache.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cache schema")
	}
	if err := calcCache.Purge(); err != nil {
		log.Warn().Err(err).Msg("Failed to purge expired cache entries")
	}

	// Market data and services.
	yahooClient := yahoo.NewClient(cfg.YahooBaseURL, log)
	syncService := universe.NewSyncService(yahooClient, history, log)
	optimizerService := optimization.NewOptimizerService(calcCache, log)
	chartService := charts.NewService(log)

	// HTTP layer.
	optimizerHandlers := optimizationhandlers.NewHandler(optimizerService, history, syncService, cfg, log)
	chartHandlers := chartshandlers.NewHandler(optimizerService, chartService, log)

	srv := server.New(server.Config{
		Log:               log,
		Cfg:               cfg,
		Port:              cfg.Port,
		HistoryDB:         historyDB,
		CacheDB:           cacheDB,
		OptimizerHandlers: optimizerHandlers,
		ChartHandlers:     chartHandlers,
	})

	// Scheduled refresh keeps the latest result current without requests.
	sched := scheduler.New(cfg, syncService, history, optimizerService, log)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutdown signal received")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	if err := historyDB.WALCheckpoint("TRUNCATE"); err != nil {
		log.Warn().Err(err).Msg("WAL checkpoint failed on shutdown")
	}

	log.Info().Msg("Shutdown complete")
}
