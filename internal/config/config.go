// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Default optimizer parameters, used when the corresponding environment
// variables are unset.
const (
	DefaultNumSamples      = 5000
	DefaultRiskFreeRate    = 0.02
	DefaultTradingDays     = 252
	DefaultLookbackYears   = 5
	DefaultRefreshSchedule = "0 18 * * MON-FRI" // after US market close
)

// Config holds application configuration
type Config struct {
	DataDir         string   // Base directory for all databases (always absolute)
	LogLevel        string
	Port            int
	DevMode         bool
	Tickers         []string // Default asset universe for scheduled runs
	LookbackYears   int      // Price history window
	NumSamples      int      // Monte Carlo samples per optimization run
	RiskFreeRate    float64  // Annual risk-free rate used in Sharpe ratios
	TradingDays     int      // Trading periods per year for annualization
	RandomSeed      *int64   // Optional seed for reproducible sampling
	RefreshSchedule string   // Cron expression for the price refresh job
	YahooBaseURL    string   // Overridable for tests
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("OPTIMIZER_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:         absDataDir,
		Port:            getEnvAsInt("GO_PORT", 8001),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Tickers:         getEnvAsList("TICKERS", []string{"AAPL", "MSFT", "GOOGL", "AMZN"}),
		LookbackYears:   getEnvAsInt("LOOKBACK_YEARS", DefaultLookbackYears),
		NumSamples:      getEnvAsInt("NUM_SAMPLES", DefaultNumSamples),
		RiskFreeRate:    getEnvAsFloat("RISK_FREE_RATE", DefaultRiskFreeRate),
		TradingDays:     getEnvAsInt("TRADING_DAYS", DefaultTradingDays),
		RandomSeed:      getEnvAsOptionalInt64("RANDOM_SEED"),
		RefreshSchedule: getEnv("REFRESH_SCHEDULE", DefaultRefreshSchedule),
		YahooBaseURL:    getEnv("YAHOO_BASE_URL", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if len(c.Tickers) < 2 {
		return fmt.Errorf("at least 2 tickers required, got %d", len(c.Tickers))
	}
	if c.NumSamples < 0 {
		return fmt.Errorf("NUM_SAMPLES must be non-negative, got %d", c.NumSamples)
	}
	if c.TradingDays <= 0 {
		return fmt.Errorf("TRADING_DAYS must be positive, got %d", c.TradingDays)
	}
	if c.LookbackYears <= 0 {
		return fmt.Errorf("LOOKBACK_YEARS must be positive, got %d", c.LookbackYears)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsOptionalInt64(key string) *int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return &intVal
		}
	}
	return nil
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			result = append(result, p)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
