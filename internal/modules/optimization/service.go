package optimization

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/internal/modules/calculations"
)

// RunConfig holds the per-run optimization parameters. Passed explicitly so
// concurrent runs with different configurations never share state.
type RunConfig struct {
	NumSamples            int     `json:"num_samples"`
	RiskFreeRate          float64 `json:"risk_free_rate"`
	TradingPeriodsPerYear int     `json:"trading_periods_per_year"`
	Seed                  *int64  `json:"seed,omitempty"`
}

// Result is the full output of one optimization run: the estimated moments,
// every evaluated sample (for plotting), and the two selected optima. The
// presentation layer must not mutate or re-derive these values.
type Result struct {
	RunID            string            `json:"run_id"`
	Assets           []string          `json:"assets"`
	ExpectedReturns  []float64         `json:"expected_returns"`
	Covariance       [][]float64       `json:"covariance"`
	Correlation      [][]float64       `json:"correlation"`
	HighCorrelations []CorrelationPair `json:"high_correlations"`
	Samples          []PortfolioRecord `json:"-"`
	MaxSharpe        PortfolioRecord   `json:"max_sharpe"`
	MinVariance      PortfolioRecord   `json:"min_variance"`
	NumDegenerate    int               `json:"num_degenerate"`
	GeneratedAt      time.Time         `json:"generated_at"`
}

// cachedMoments is the cache encoding of the estimation stage.
type cachedMoments struct {
	ExpectedReturns []float64   `msgpack:"mu"`
	Covariance      [][]float64 `msgpack:"cov"`
}

// OptimizerService runs the Monte Carlo frontier pipeline.
type OptimizerService struct {
	cache *calculations.Cache // optional, nil disables moment caching
	log   zerolog.Logger

	mu   sync.RWMutex
	last *Result
}

// NewOptimizerService creates a new optimizer service. cache may be nil.
func NewOptimizerService(cache *calculations.Cache, log zerolog.Logger) *OptimizerService {
	return &OptimizerService{
		cache: cache,
		log:   log.With().Str("component", "optimizer").Logger(),
	}
}

// EstimateMoments derives the annualized expected-return vector and
// covariance matrix from a price panel. Asset ordering is the panel's.
func EstimateMoments(panel PricePanel, periodsPerYear int) ([]float64, [][]float64, error) {
	returns, err := panel.LogReturns()
	if err != nil {
		return nil, nil, err
	}

	mu, err := ExpectedReturns(returns, periodsPerYear)
	if err != nil {
		return nil, nil, err
	}

	cov, err := CovarianceMatrix(returns, periodsPerYear)
	if err != nil {
		return nil, nil, err
	}

	return mu, cov, nil
}

// Run executes a full optimization over the panel: estimate moments (cached
// across runs over unchanged history), sample, evaluate, select. Failure is
// all-or-nothing; no partial results are returned.
func (s *OptimizerService) Run(panel PricePanel, cfg RunConfig) (*Result, error) {
	if cfg.TradingPeriodsPerYear <= 0 {
		cfg.TradingPeriodsPerYear = DefaultTradingDays
	}

	mu, cov, err := s.moments(panel, cfg.TradingPeriodsPerYear)
	if err != nil {
		return nil, err
	}

	return s.Optimize(panel.Assets, mu, cov, cfg)
}

// Optimize runs the Monte Carlo stage against precomputed moments. Exposed
// separately so callers with their own estimates (and tests) can drive the
// sampling pipeline directly.
func (s *OptimizerService) Optimize(assets []string, mu []float64, cov [][]float64, cfg RunConfig) (*Result, error) {
	if cfg.TradingPeriodsPerYear <= 0 {
		cfg.TradingPeriodsPerYear = DefaultTradingDays
	}

	evaluator, err := NewEvaluator(mu, cov, cfg.RiskFreeRate)
	if err != nil {
		return nil, err
	}

	sampler := NewWeightSampler(len(assets), cfg.Seed)

	start := time.Now()
	records := make([]PortfolioRecord, 0, cfg.NumSamples)
	degenerate := 0

	for i := 0; i < cfg.NumSamples; i++ {
		record, err := evaluator.Evaluate(sampler.Sample())
		if err != nil {
			if errors.Is(err, ErrUndefinedRatio) {
				// Recovered locally: the record carries SharpeRatio = -Inf,
				// stays eligible for min-variance, and can never win
				// max-Sharpe against a non-degenerate sample.
				degenerate++
				records = append(records, record)
				continue
			}
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		records = append(records, record)
	}

	selection, err := SelectFrontier(records)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:            uuid.NewString(),
		Assets:           append([]string(nil), assets...),
		ExpectedReturns:  mu,
		Covariance:       cov,
		Correlation:      CorrelationMatrix(cov),
		HighCorrelations: HighCorrelations(cov, assets, HighCorrelationThreshold),
		Samples:          records,
		MaxSharpe:        selection.MaxSharpe,
		MinVariance:      selection.MinVariance,
		NumDegenerate:    degenerate,
		GeneratedAt:      time.Now().UTC(),
	}

	s.log.Info().
		Str("run_id", result.RunID).
		Int("num_assets", len(assets)).
		Int("num_samples", len(records)).
		Int("num_degenerate", degenerate).
		Float64("max_sharpe", selection.MaxSharpe.SharpeRatio).
		Float64("min_volatility", selection.MinVariance.Volatility).
		Dur("elapsed", time.Since(start)).
		Msg("Optimization run complete")

	s.mu.Lock()
	s.last = result
	s.mu.Unlock()

	return result, nil
}

// Latest returns the most recent completed result, or nil.
func (s *OptimizerService) Latest() *Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// moments returns cached moment estimates when the panel is unchanged since
// the last run, recomputing otherwise.
func (s *OptimizerService) moments(panel PricePanel, periodsPerYear int) ([]float64, [][]float64, error) {
	key := momentsCacheKey(panel, periodsPerYear)

	if s.cache != nil {
		var cached cachedMoments
		if s.cache.GetObject("moments", key, &cached) {
			s.log.Debug().Str("key", key[:8]).Msg("Using cached moment estimates")
			return cached.ExpectedReturns, cached.Covariance, nil
		}
	}

	mu, cov, err := EstimateMoments(panel, periodsPerYear)
	if err != nil {
		return nil, nil, err
	}

	if s.cache != nil {
		entry := cachedMoments{ExpectedReturns: mu, Covariance: cov}
		if err := s.cache.SetObject("moments", key, entry, calculations.TTLOptimizer); err != nil {
			s.log.Warn().Err(err).Msg("Failed to cache moment estimates")
		}
	}

	return mu, cov, nil
}

// momentsCacheKey is a deterministic key over the ordered asset set, the
// panel's date range, and the annualization constant.
func momentsCacheKey(panel PricePanel, periodsPerYear int) string {
	first, last := "", ""
	if len(panel.Dates) > 0 {
		first = panel.Dates[0]
		last = panel.Dates[len(panel.Dates)-1]
	}
	keyData := fmt.Sprintf("%s|%s|%s|%d|%d",
		strings.Join(panel.Assets, ","), first, last, len(panel.Dates), periodsPerYear)
	h := sha256.Sum256([]byte(keyData))
	return hex.EncodeToString(h[:16])
}
