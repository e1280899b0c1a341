package universe

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Coverage below this fraction of the expected trading-day count triggers a
// refetch from the price source.
const minCoverageRatio = 0.5

// SyncService keeps the local price history aligned with the market-data
// source.
type SyncService struct {
	source PriceSource
	db     *HistoryDB
	log    zerolog.Logger
}

// NewSyncService creates a new price history sync service.
func NewSyncService(source PriceSource, db *HistoryDB, log zerolog.Logger) *SyncService {
	return &SyncService{
		source: source,
		db:     db,
		log:    log.With().Str("component", "price_sync").Logger(),
	}
}

// EnsureHistory fetches price history for any symbol whose stored coverage
// over the lookback window is too thin to estimate returns from. Symbols with
// adequate coverage are left untouched.
func (s *SyncService) EnsureHistory(symbols []string, lookbackDays int) error {
	since := sinceDate(lookbackDays)

	// Roughly 252 trading days per 365 calendar days
	expectedObs := lookbackDays * 252 / 365

	for _, symbol := range symbols {
		count, err := s.db.CountPrices(symbol, since)
		if err != nil {
			return fmt.Errorf("failed to check coverage for %s: %w", symbol, err)
		}

		if float64(count) >= minCoverageRatio*float64(expectedObs) {
			continue
		}

		if err := s.refresh(symbol, lookbackDays); err != nil {
			return err
		}
	}

	return nil
}

// RefreshAll refetches the full lookback window for every symbol.
func (s *SyncService) RefreshAll(symbols []string, lookbackDays int) error {
	for _, symbol := range symbols {
		if err := s.refresh(symbol, lookbackDays); err != nil {
			return err
		}
	}
	return nil
}

func (s *SyncService) refresh(symbol string, lookbackDays int) error {
	prices, err := s.source.FetchDailyCloses(symbol, lookbackDays)
	if err != nil {
		return fmt.Errorf("failed to fetch prices for %s: %w", symbol, err)
	}

	if err := s.db.SaveDailyPrices(symbol, prices); err != nil {
		return fmt.Errorf("failed to save prices for %s: %w", symbol, err)
	}

	s.log.Info().
		Str("symbol", symbol).
		Int("num_prices", len(prices)).
		Msg("Refreshed price history")

	return nil
}

func sinceDate(lookbackDays int) string {
	return time.Now().UTC().AddDate(0, 0, -lookbackDays).Format("2006-01-02")
}
