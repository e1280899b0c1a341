// Package yahoo provides a client for the Yahoo Finance v8 chart API, the
// market-data collaborator supplying adjusted daily closes.
package yahoo

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/internal/modules/universe"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Client fetches adjusted close history. Implements universe.PriceSource.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a Yahoo client. An empty baseURL uses the public
// endpoint; tests point it at a local server.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log.With().Str("component", "yahoo_client").Logger(),
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Adjclose []struct {
					Adjclose []float64 `json:"adjclose"`
				} `json:"adjclose"`
				Quote []struct {
					Close []float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDailyCloses fetches adjusted daily closes for a symbol over the
// lookback window, oldest first. Bars with a missing close are skipped; gap
// handling is the price panel's responsibility.
func (c *Client) FetchDailyCloses(symbol string, lookbackDays int) ([]universe.DailyPrice, error) {
	rangeParam := rangeForDays(lookbackDays)

	u := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=1d&events=div%%2Csplit",
		c.baseURL, url.PathEscape(symbol), rangeParam)

	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", symbol, err)
	}
	req.Header.Set("User-Agent", "curl/8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, symbol)
	}

	var cr chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("failed to decode chart response for %s: %w", symbol, err)
	}

	if cr.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error for %s: %s (%s)",
			symbol, cr.Chart.Error.Description, cr.Chart.Error.Code)
	}
	if len(cr.Chart.Result) == 0 {
		return nil, fmt.Errorf("no chart data for %s", symbol)
	}

	result := cr.Chart.Result[0]

	// Prefer split/dividend adjusted closes; fall back to raw closes.
	var closes []float64
	if len(result.Indicators.Adjclose) > 0 {
		closes = result.Indicators.Adjclose[0].Adjclose
	} else if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
	}

	if len(result.Timestamp) == 0 || len(closes) == 0 {
		return nil, fmt.Errorf("empty bars for %s", symbol)
	}

	prices := make([]universe.DailyPrice, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] <= 0 {
			continue
		}
		prices = append(prices, universe.DailyPrice{
			Date:     time.Unix(ts, 0).UTC().Format("2006-01-02"),
			AdjClose: closes[i],
		})
	}

	if len(prices) == 0 {
		return nil, fmt.Errorf("no valid bars for %s", symbol)
	}

	c.log.Debug().
		Str("symbol", symbol).
		Int("num_bars", len(prices)).
		Str("range", rangeParam).
		Msg("Fetched daily closes")

	return prices, nil
}

// ValidateSymbols splits symbols into those with available data and those
// without.
func (c *Client) ValidateSymbols(symbols []string) (valid []string, invalid []string) {
	for _, symbol := range symbols {
		if _, err := c.FetchDailyCloses(symbol, 5); err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Symbol validation failed")
			invalid = append(invalid, symbol)
			continue
		}
		valid = append(valid, symbol)
	}
	return valid, invalid
}

// rangeForDays maps a day count onto the chart API's coarse range buckets.
func rangeForDays(days int) string {
	switch {
	case days <= 5:
		return "5d"
	case days <= 31:
		return "1mo"
	case days <= 186:
		return "6mo"
	case days <= 366:
		return "1y"
	case days <= 731:
		return "2y"
	case days <= 1830:
		return "5y"
	default:
		return "10y"
	}
}
