package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/internal/config"
	"github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/internal/modules/optimization"
	"github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/internal/modules/universe"
)

// fakeHistory serves canned price history, ignoring the since date.
type fakeHistory struct {
	prices map[string][]universe.DailyPrice
}

func (f *fakeHistory) GetDailyPrices(symbol string, since string) ([]universe.DailyPrice, error) {
	return f.prices[symbol], nil
}

func testHistory() *fakeHistory {
	return &fakeHistory{
		prices: map[string][]universe.DailyPrice{
			"AAA": {
				{Date: "2024-01-02", AdjClose: 100},
				{Date: "2024-01-03", AdjClose: 102},
				{Date: "2024-01-04", AdjClose: 101},
				{Date: "2024-01-05", AdjClose: 104},
			},
			"BBB": {
				{Date: "2024-01-02", AdjClose: 50},
				{Date: "2024-01-03", AdjClose: 49},
				{Date: "2024-01-04", AdjClose: 51},
				{Date: "2024-01-05", AdjClose: 52},
			},
		},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Tickers:       []string{"AAA", "BBB"},
		LookbackYears: 1,
		NumSamples:    200,
		RiskFreeRate:  0.02,
		TradingDays:   252,
	}
}

func setupRouter(history universe.HistoryDBInterface, cfg *config.Config) (*chi.Mux, *optimization.OptimizerService) {
	service := optimization.NewOptimizerService(nil, zerolog.Nop())
	handler := NewHandler(service, history, nil, cfg, zerolog.Nop())

	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router, service
}

func TestRun(t *testing.T) {
	router, _ := setupRouter(testHistory(), testConfig())

	body := `{"assets": ["AAA", "BBB"], "num_samples": 100, "seed": 42}`
	req := httptest.NewRequest(http.MethodPost, "/optimizer/run", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp runResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, []string{"AAA", "BBB"}, resp.Assets)
	assert.Equal(t, 100, resp.NumSamples)
	assert.Len(t, resp.Frontier, 100)

	sum := 0.0
	for _, w := range resp.MaxSharpe.Weights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestRun_DefaultsFromConfig(t *testing.T) {
	router, _ := setupRouter(testHistory(), testConfig())

	// Empty body falls back to configured universe and sample count
	req := httptest.NewRequest(http.MethodPost, "/optimizer/run", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp runResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, []string{"AAA", "BBB"}, resp.Assets)
	assert.Equal(t, 200, resp.NumSamples)
}

func TestRun_SeededRunsAreIdentical(t *testing.T) {
	router, _ := setupRouter(testHistory(), testConfig())

	run := func() runResponse {
		body := `{"num_samples": 500, "seed": 42}`
		req := httptest.NewRequest(http.MethodPost, "/optimizer/run", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp runResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		return resp
	}

	first := run()
	second := run()
	assert.Equal(t, first.MaxSharpe.Weights, second.MaxSharpe.Weights)
	assert.Equal(t, first.MinVariance.Weights, second.MinVariance.Weights)
}

func TestRun_ZeroSamples(t *testing.T) {
	cfg := testConfig()
	cfg.NumSamples = 0
	router, _ := setupRouter(testHistory(), cfg)

	req := httptest.NewRequest(http.MethodPost, "/optimizer/run", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRun_InsufficientData(t *testing.T) {
	history := &fakeHistory{
		prices: map[string][]universe.DailyPrice{
			"AAA": {{Date: "2024-01-02", AdjClose: 100}},
			"BBB": {{Date: "2024-01-02", AdjClose: 50}},
		},
	}
	router, _ := setupRouter(history, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/optimizer/run", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp["error"], "observations")
}

func TestRun_InvalidBody(t *testing.T) {
	router, _ := setupRouter(testHistory(), testConfig())

	req := httptest.NewRequest(http.MethodPost, "/optimizer/run", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetLatest(t *testing.T) {
	router, service := setupRouter(testHistory(), testConfig())

	// No run yet
	req := httptest.NewRequest(http.MethodGet, "/optimizer/latest", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Run, then fetch
	runReq := httptest.NewRequest(http.MethodPost, "/optimizer/run", nil)
	runRec := httptest.NewRecorder()
	router.ServeHTTP(runRec, runReq)
	require.Equal(t, http.StatusOK, runRec.Code)
	require.NotNil(t, service.Latest())

	req = httptest.NewRequest(http.MethodGet, "/optimizer/latest", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp runResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, service.Latest().RunID, resp.RunID)
}
