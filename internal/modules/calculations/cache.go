// Package calculations provides a TTL cache for derived results that are
// expensive to recompute, backed by the cache database.
package calculations

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// TTLOptimizer is the lifetime of cached moment estimates (return vector +
// covariance matrix). Price history updates at most daily.
const TTLOptimizer = 24 * time.Hour

// Cache stores msgpack-encoded results keyed by (kind, key).
type Cache struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewCache creates a cache over the given database connection.
func NewCache(db *sql.DB, log zerolog.Logger) *Cache {
	return &Cache{
		db:  db,
		log: log.With().Str("component", "calc_cache").Logger(),
	}
}

// Init creates the cache table if it does not exist.
func (c *Cache) Init() error {
	schema := `
		CREATE TABLE IF NOT EXISTS calc_cache (
			kind       TEXT NOT NULL,
			key        TEXT NOT NULL,
			data       BLOB NOT NULL,
			expires_at INTEGER NOT NULL,
			PRIMARY KEY (kind, key)
		);
	`
	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create calc_cache schema: %w", err)
	}
	return nil
}

// Get returns the raw cached bytes for (kind, key), or false when absent or
// expired.
func (c *Cache) Get(kind, key string) ([]byte, bool) {
	var data []byte
	var expiresAt int64

	err := c.db.QueryRow(
		`SELECT data, expires_at FROM calc_cache WHERE kind = ? AND key = ?`,
		kind, key,
	).Scan(&data, &expiresAt)
	if err != nil {
		if err != sql.ErrNoRows {
			c.log.Warn().Err(err).Str("kind", kind).Msg("Cache lookup failed")
		}
		return nil, false
	}

	if time.Now().Unix() >= expiresAt {
		return nil, false
	}

	return data, true
}

// Set stores raw bytes for (kind, key) with the given TTL.
func (c *Cache) Set(kind, key string, data []byte, ttl time.Duration) error {
	expiresAt := time.Now().Add(ttl).Unix()

	_, err := c.db.Exec(`
		INSERT INTO calc_cache (kind, key, data, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(kind, key) DO UPDATE SET data = excluded.data, expires_at = excluded.expires_at
	`, kind, key, data, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to write cache entry %s/%s: %w", kind, key, err)
	}

	return nil
}

// GetObject decodes a cached msgpack value into v. Returns false when absent,
// expired, or undecodable.
func (c *Cache) GetObject(kind, key string, v interface{}) bool {
	data, ok := c.Get(kind, key)
	if !ok {
		return false
	}
	if err := msgpack.Unmarshal(data, v); err != nil {
		c.log.Warn().Err(err).Str("kind", kind).Msg("Failed to decode cached value, ignoring")
		return false
	}
	return true
}

// SetObject encodes v with msgpack and stores it with the given TTL.
func (c *Cache) SetObject(kind, key string, v interface{}, ttl time.Duration) error {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %s/%s: %w", kind, key, err)
	}
	return c.Set(kind, key, data, ttl)
}

// Purge removes expired entries.
func (c *Cache) Purge() error {
	res, err := c.db.Exec(`DELETE FROM calc_cache WHERE expires_at < ?`, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		c.log.Debug().Int64("purged", n).Msg("Purged expired cache entries")
	}

	return nil
}
