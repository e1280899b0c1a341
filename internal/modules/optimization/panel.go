package optimization

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/internal/modules/universe"
)

// PricePanel holds aligned adjusted-close series for a set of assets.
// Assets fixes the column ordering that every derived quantity (return
// vector, covariance matrix, weight vectors) must preserve. Dates are
// strictly increasing; missing observations are NaN until FillMissing runs.
type PricePanel struct {
	Assets []string
	Dates  []string
	Prices map[string][]float64
}

// BuildPanel assembles a price panel from stored history for the given
// symbols over the lookback window. Dates are the union of all observed
// dates; gaps are NaN and filled via forward/back-fill.
func BuildPanel(provider universe.HistoryDBInterface, symbols []string, lookbackDays int) (PricePanel, error) {
	since := time.Now().UTC().AddDate(0, 0, -lookbackDays).Format("2006-01-02")

	pricesBySymbol := make(map[string]map[string]float64, len(symbols))
	dateSet := make(map[string]bool)

	for _, symbol := range symbols {
		daily, err := provider.GetDailyPrices(symbol, since)
		if err != nil {
			return PricePanel{}, fmt.Errorf("failed to get prices for %s: %w", symbol, err)
		}

		bySymbol := make(map[string]float64, len(daily))
		for _, p := range daily {
			bySymbol[p.Date] = p.AdjClose
			dateSet[p.Date] = true
		}
		pricesBySymbol[symbol] = bySymbol
	}

	dates := make([]string, 0, len(dateSet))
	for date := range dateSet {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	data := make(map[string][]float64, len(symbols))
	for _, symbol := range symbols {
		prices := make([]float64, len(dates))
		for i, date := range dates {
			if price, ok := pricesBySymbol[symbol][date]; ok {
				prices[i] = price
			} else {
				prices[i] = math.NaN()
			}
		}
		data[symbol] = prices
	}

	panel := PricePanel{
		Assets: append([]string(nil), symbols...),
		Dates:  dates,
		Prices: data,
	}
	panel.FillMissing()

	if err := panel.Validate(); err != nil {
		return PricePanel{}, err
	}

	return panel, nil
}

// FillMissing fills gaps using forward-fill, then back-fill for leading NaNs.
// A column with no finite value at all stays NaN and is rejected by Validate.
func (p *PricePanel) FillMissing() {
	for symbol, prices := range p.Prices {
		filled := make([]float64, len(prices))
		copy(filled, prices)

		// First pass: forward-fill (use previous valid value)
		var lastValid float64
		hasLastValid := false
		for i := 0; i < len(filled); i++ {
			if math.IsNaN(filled[i]) {
				if hasLastValid {
					filled[i] = lastValid
				}
			} else {
				lastValid = filled[i]
				hasLastValid = true
			}
		}

		// Second pass: back-fill (for leading NaNs)
		var nextValid float64
		hasNextValid := false
		for i := len(filled) - 1; i >= 0; i-- {
			if math.IsNaN(filled[i]) {
				if hasNextValid {
					filled[i] = nextValid
				}
			} else {
				nextValid = filled[i]
				hasNextValid = true
			}
		}

		p.Prices[symbol] = filled
	}
}

// Validate checks the panel invariants: at least two observations, strictly
// increasing dates, and a usable price series for every asset.
func (p *PricePanel) Validate() error {
	if len(p.Dates) < 2 {
		return fmt.Errorf("%w: only %d observations (need at least 2)", ErrInsufficientData, len(p.Dates))
	}

	for i := 1; i < len(p.Dates); i++ {
		if p.Dates[i] <= p.Dates[i-1] {
			return fmt.Errorf("%w: dates not strictly increasing at %s", ErrInsufficientData, p.Dates[i])
		}
	}

	for _, symbol := range p.Assets {
		prices, ok := p.Prices[symbol]
		if !ok || len(prices) != len(p.Dates) {
			return fmt.Errorf("%w: asset %s has no aligned price series", ErrInsufficientData, symbol)
		}
		usable := false
		for _, v := range prices {
			if !math.IsNaN(v) && v > 0 {
				usable = true
				break
			}
		}
		if !usable {
			return fmt.Errorf("%w: asset %s has no usable prices", ErrInsufficientData, symbol)
		}
	}

	return nil
}

// LogReturns computes per-period log returns for every asset, column order
// preserved. Result is indexed [asset][period] with len(Dates)-1 periods.
func (p *PricePanel) LogReturns() ([][]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	periods := len(p.Dates) - 1
	returns := make([][]float64, len(p.Assets))

	for j, symbol := range p.Assets {
		prices := p.Prices[symbol]
		series := make([]float64, periods)
		for i := 1; i < len(prices); i++ {
			if prices[i-1] > 0 && prices[i] > 0 {
				series[i-1] = math.Log(prices[i] / prices[i-1])
			} else {
				series[i-1] = 0.0
			}
		}
		returns[j] = series
	}

	return returns, nil
}
