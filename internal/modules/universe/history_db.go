package universe

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/internal/database"
)

// HistoryDB provides access to historical price data
type HistoryDB struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewHistoryDB creates a new history database accessor
func NewHistoryDB(db *sql.DB, log zerolog.Logger) *HistoryDB {
	return &HistoryDB{
		db:  db,
		log: log.With().Str("component", "history_db").Logger(),
	}
}

// Init creates the daily_prices table if it does not exist.
func (h *HistoryDB) Init() error {
	schema := `
		CREATE TABLE IF NOT EXISTS daily_prices (
			symbol    TEXT NOT NULL,
			date      TEXT NOT NULL,
			adj_close REAL NOT NULL,
			PRIMARY KEY (symbol, date)
		);
		CREATE INDEX IF NOT EXISTS idx_daily_prices_date ON daily_prices(date);
	`
	if _, err := h.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create daily_prices schema: %w", err)
	}
	return nil
}

// GetDailyPrices fetches daily price data for a symbol from the given date
// (inclusive) onwards, ordered by date ascending.
func (h *HistoryDB) GetDailyPrices(symbol string, since string) ([]DailyPrice, error) {
	query := `
		SELECT date, adj_close
		FROM daily_prices
		WHERE symbol = ? AND date >= ?
		ORDER BY date ASC
	`

	rows, err := h.db.Query(query, symbol, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily prices: %w", err)
	}
	defer rows.Close()

	var prices []DailyPrice
	for rows.Next() {
		var p DailyPrice
		if err := rows.Scan(&p.Date, &p.AdjClose); err != nil {
			return nil, fmt.Errorf("failed to scan daily price: %w", err)
		}
		prices = append(prices, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily prices: %w", err)
	}

	return prices, nil
}

// SaveDailyPrices upserts a batch of daily prices for a symbol.
func (h *HistoryDB) SaveDailyPrices(symbol string, prices []DailyPrice) error {
	if len(prices) == 0 {
		return nil
	}

	err := database.WithTransaction(h.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO daily_prices (symbol, date, adj_close)
			VALUES (?, ?, ?)
			ON CONFLICT(symbol, date) DO UPDATE SET adj_close = excluded.adj_close
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare upsert: %w", err)
		}
		defer stmt.Close()

		for _, p := range prices {
			if _, err := stmt.Exec(symbol, p.Date, p.AdjClose); err != nil {
				return fmt.Errorf("failed to upsert price %s %s: %w", symbol, p.Date, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	h.log.Debug().
		Str("symbol", symbol).
		Int("num_prices", len(prices)).
		Msg("Saved daily prices")

	return nil
}

// CountPrices returns the number of stored observations for a symbol from the
// given date (inclusive) onwards.
func (h *HistoryDB) CountPrices(symbol string, since string) (int, error) {
	var count int
	err := h.db.QueryRow(
		`SELECT COUNT(*) FROM daily_prices WHERE symbol = ? AND date >= ?`,
		symbol, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count prices: %w", err)
	}
	return count, nil
}

// Symbols returns all symbols with stored history.
func (h *HistoryDB) Symbols() ([]string, error) {
	rows, err := h.db.Query(`SELECT DISTINCT symbol FROM daily_prices ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to query symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating symbols: %w", err)
	}

	return symbols, nil
}
