// Package scheduler runs the periodic refresh job: refetch price history and
// rebuild the optimization result on a cron schedule.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/internal/config"
	"github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/internal/modules/optimization"
	"github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/internal/modules/universe"
)

// Scheduler owns the cron runner and the refresh job.
type Scheduler struct {
	cron      *cron.Cron
	cfg       *config.Config
	sync      *universe.SyncService
	historyDB *universe.HistoryDB
	optimizer *optimization.OptimizerService
	log       zerolog.Logger

	mu      sync.Mutex
	lastRun time.Time
	lastErr error
}

// New creates a scheduler. It does not start until Start is called.
func New(
	cfg *config.Config,
	syncService *universe.SyncService,
	historyDB *universe.HistoryDB,
	optimizer *optimization.OptimizerService,
	log zerolog.Logger,
) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		cfg:       cfg,
		sync:      syncService,
		historyDB: historyDB,
		optimizer: optimizer,
		log:       log.With().Str("component", "scheduler").Logger(),
	}
}

// Start registers the refresh job on the configured schedule and starts the
// cron runner.
func (s *Scheduler) Start() error {
	if s.cfg.RefreshSchedule == "" {
		s.log.Info().Msg("No refresh schedule configured, scheduler disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.cfg.RefreshSchedule, s.runRefresh)
	if err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", s.cfg.RefreshSchedule, err)
	}

	s.cron.Start()
	s.log.Info().Str("schedule", s.cfg.RefreshSchedule).Msg("Scheduler started")
	return nil
}

// Stop stops the cron runner and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// LastRun reports the time and outcome of the most recent refresh.
func (s *Scheduler) LastRun() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastErr
}

// runRefresh refetches the full lookback window for the configured universe
// and re-runs the optimizer so the cached latest result stays current.
func (s *Scheduler) runRefresh() {
	start := time.Now()
	err := s.refresh()

	s.mu.Lock()
	s.lastRun = start
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		s.log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("Scheduled refresh failed")
		return
	}
	s.log.Info().Dur("elapsed", time.Since(start)).Msg("Scheduled refresh complete")
}

func (s *Scheduler) refresh() error {
	lookbackDays := s.cfg.LookbackYears * 365

	if s.sync != nil {
		if err := s.sync.RefreshAll(s.cfg.Tickers, lookbackDays); err != nil {
			return fmt.Errorf("price refresh failed: %w", err)
		}
	}

	panel, err := optimization.BuildPanel(s.historyDB, s.cfg.Tickers, lookbackDays)
	if err != nil {
		return fmt.Errorf("failed to build price panel: %w", err)
	}

	_, err = s.optimizer.Run(panel, optimization.RunConfig{
		NumSamples:            s.cfg.NumSamples,
		RiskFreeRate:          s.cfg.RiskFreeRate,
		TradingPeriodsPerYear: s.cfg.TradingDays,
		Seed:                  s.cfg.RandomSeed,
	})
	if err != nil {
		return fmt.Errorf("scheduled optimization failed: %w", err)
	}

	return nil
}
