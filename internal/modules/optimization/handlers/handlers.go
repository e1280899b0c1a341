// Package handlers exposes the optimization engine over HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/internal/config"
	"github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/internal/modules/optimization"
	"github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/internal/modules/universe"
)

// Handler handles optimizer API requests.
type Handler struct {
	service   *optimization.OptimizerService
	historyDB universe.HistoryDBInterface
	sync      *universe.SyncService
	cfg       *config.Config
	log       zerolog.Logger
}

// NewHandler creates a new optimizer handler. sync may be nil when no price
// source is wired (tests, offline mode).
func NewHandler(
	service *optimization.OptimizerService,
	historyDB universe.HistoryDBInterface,
	sync *universe.SyncService,
	cfg *config.Config,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		service:   service,
		historyDB: historyDB,
		sync:      sync,
		cfg:       cfg,
		log:       log.With().Str("handler", "optimizer").Logger(),
	}
}

// RegisterRoutes registers optimizer routes on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/optimizer", func(r chi.Router) {
		r.Get("/latest", h.GetLatest)
		r.Post("/run", h.Run)
	})
}

type runRequest struct {
	Assets                []string `json:"assets,omitempty"`
	LookbackYears         int      `json:"lookback_years,omitempty"`
	NumSamples            int      `json:"num_samples,omitempty"`
	RiskFreeRate          *float64 `json:"risk_free_rate,omitempty"`
	TradingPeriodsPerYear int      `json:"trading_periods_per_year,omitempty"`
	Seed                  *int64   `json:"seed,omitempty"`
}

type portfolioJSON struct {
	Weights        map[string]float64 `json:"weights"`
	ExpectedReturn float64            `json:"expected_return"`
	Volatility     float64            `json:"volatility"`
	SharpeRatio    float64            `json:"sharpe_ratio"`
}

type samplePoint struct {
	Volatility     float64 `json:"volatility"`
	ExpectedReturn float64 `json:"expected_return"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
}

type runResponse struct {
	RunID            string                         `json:"run_id"`
	Assets           []string                       `json:"assets"`
	ExpectedReturns  map[string]float64             `json:"expected_returns"`
	Correlation      [][]float64                    `json:"correlation"`
	HighCorrelations []optimization.CorrelationPair `json:"high_correlations"`
	MaxSharpe        portfolioJSON                  `json:"max_sharpe"`
	MinVariance      portfolioJSON                  `json:"min_variance"`
	Frontier         []samplePoint                  `json:"frontier"`
	NumSamples       int                            `json:"num_samples"`
	NumDegenerate    int                            `json:"num_degenerate"`
	GeneratedAt      time.Time                      `json:"generated_at"`
}

// Run executes an optimization over the requested (or configured) asset set.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	assets := req.Assets
	if len(assets) == 0 {
		assets = h.cfg.Tickers
	}
	lookbackYears := req.LookbackYears
	if lookbackYears <= 0 {
		lookbackYears = h.cfg.LookbackYears
	}
	lookbackDays := lookbackYears * 365

	runCfg := optimization.RunConfig{
		NumSamples:            h.cfg.NumSamples,
		RiskFreeRate:          h.cfg.RiskFreeRate,
		TradingPeriodsPerYear: h.cfg.TradingDays,
		Seed:                  h.cfg.RandomSeed,
	}
	if req.NumSamples > 0 {
		runCfg.NumSamples = req.NumSamples
	}
	if req.RiskFreeRate != nil {
		runCfg.RiskFreeRate = *req.RiskFreeRate
	}
	if req.TradingPeriodsPerYear > 0 {
		runCfg.TradingPeriodsPerYear = req.TradingPeriodsPerYear
	}
	if req.Seed != nil {
		runCfg.Seed = req.Seed
	}

	if h.sync != nil {
		if err := h.sync.EnsureHistory(assets, lookbackDays); err != nil {
			h.log.Error().Err(err).Msg("Price history sync failed")
			writeError(w, http.StatusBadGateway, "price history sync failed: "+err.Error())
			return
		}
	}

	panel, err := optimization.BuildPanel(h.historyDB, assets, lookbackDays)
	if err != nil {
		h.writeRunError(w, err)
		return
	}

	result, err := h.service.Run(panel, runCfg)
	if err != nil {
		h.writeRunError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toRunResponse(result))
}

// GetLatest returns the most recent optimization result.
func (h *Handler) GetLatest(w http.ResponseWriter, r *http.Request) {
	result := h.service.Latest()
	if result == nil {
		writeError(w, http.StatusNotFound, "no optimization run yet")
		return
	}
	writeJSON(w, http.StatusOK, toRunResponse(result))
}

func (h *Handler) writeRunError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, optimization.ErrInsufficientData),
		errors.Is(err, optimization.ErrEmptySample):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.log.Error().Err(err).Msg("Optimization run failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func toRunResponse(res *optimization.Result) runResponse {
	// Degenerate samples carry SharpeRatio = -Inf, which JSON cannot encode;
	// they are excluded from the plotted cloud.
	frontier := make([]samplePoint, 0, len(res.Samples))
	for _, rec := range res.Samples {
		if math.IsInf(rec.SharpeRatio, 0) {
			continue
		}
		frontier = append(frontier, samplePoint{
			Volatility:     rec.Volatility,
			ExpectedReturn: rec.ExpectedReturn,
			SharpeRatio:    rec.SharpeRatio,
		})
	}

	return runResponse{
		RunID:            res.RunID,
		Assets:           res.Assets,
		ExpectedReturns:  weightsMap(res.Assets, res.ExpectedReturns),
		Correlation:      res.Correlation,
		HighCorrelations: res.HighCorrelations,
		MaxSharpe:        toPortfolioJSON(res.Assets, res.MaxSharpe),
		MinVariance:      toPortfolioJSON(res.Assets, res.MinVariance),
		Frontier:         frontier,
		NumSamples:       len(res.Samples),
		NumDegenerate:    res.NumDegenerate,
		GeneratedAt:      res.GeneratedAt,
	}
}

func toPortfolioJSON(assets []string, rec optimization.PortfolioRecord) portfolioJSON {
	sharpe := rec.SharpeRatio
	if math.IsInf(sharpe, 0) {
		sharpe = 0
	}
	return portfolioJSON{
		Weights:        weightsMap(assets, rec.Weights),
		ExpectedReturn: rec.ExpectedReturn,
		Volatility:     rec.Volatility,
		SharpeRatio:    sharpe,
	}
}

func weightsMap(assets []string, values []float64) map[string]float64 {
	m := make(map[string]float64, len(assets))
	for i, asset := range assets {
		if i < len(values) {
			m[asset] = values[i]
		}
	}
	return m
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
