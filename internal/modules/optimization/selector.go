package optimization

// FrontierSelection holds the two optima picked from an evaluated sample
// collection, with their positions in sampling order.
type FrontierSelection struct {
	MaxSharpe        PortfolioRecord `json:"max_sharpe"`
	MinVariance      PortfolioRecord `json:"min_variance"`
	MaxSharpeIndex   int             `json:"max_sharpe_index"`
	MinVarianceIndex int             `json:"min_variance_index"`
}

// SelectFrontier scans the evaluated records for the max-Sharpe and
// min-variance portfolios. Both scans are O(M) and deterministic: ties on the
// primary criterion break on the secondary one, then on first occurrence in
// sampling order. Returns ErrEmptySample for an empty collection.
func SelectFrontier(records []PortfolioRecord) (FrontierSelection, error) {
	if len(records) == 0 {
		return FrontierSelection{}, ErrEmptySample
	}

	maxSharpeIdx := 0
	minVarIdx := 0

	for i := 1; i < len(records); i++ {
		if betterSharpe(records[i], records[maxSharpeIdx]) {
			maxSharpeIdx = i
		}
		if lowerVariance(records[i], records[minVarIdx]) {
			minVarIdx = i
		}
	}

	return FrontierSelection{
		MaxSharpe:        records[maxSharpeIdx],
		MinVariance:      records[minVarIdx],
		MaxSharpeIndex:   maxSharpeIdx,
		MinVarianceIndex: minVarIdx,
	}, nil
}

// betterSharpe reports whether a beats b for max-Sharpe selection:
// greater Sharpe ratio, tie broken by lower volatility. Equal on both keeps
// the earlier record.
func betterSharpe(a, b PortfolioRecord) bool {
	if a.SharpeRatio != b.SharpeRatio {
		return a.SharpeRatio > b.SharpeRatio
	}
	return a.Volatility < b.Volatility
}

// lowerVariance reports whether a beats b for min-variance selection:
// lower volatility, tie broken by higher Sharpe ratio. Equal on both keeps
// the earlier record.
func lowerVariance(a, b PortfolioRecord) bool {
	if a.Volatility != b.Volatility {
		return a.Volatility < b.Volatility
	}
	return a.SharpeRatio > b.SharpeRatio
}
