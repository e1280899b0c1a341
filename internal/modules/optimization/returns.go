package optimization

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// DefaultTradingDays is the annualization constant for daily observations.
const DefaultTradingDays = 252

// ExpectedReturns computes the annualized expected return per asset from
// per-period log returns: mean(returns) * periodsPerYear. The slice order
// matches the returns matrix (and therefore the panel's asset order).
func ExpectedReturns(returns [][]float64, periodsPerYear int) ([]float64, error) {
	if len(returns) == 0 {
		return nil, fmt.Errorf("%w: no return series", ErrInsufficientData)
	}
	if periodsPerYear <= 0 {
		periodsPerYear = DefaultTradingDays
	}

	mu := make([]float64, len(returns))
	for i, series := range returns {
		if len(series) < 1 {
			return nil, fmt.Errorf("%w: asset %d has no return observations", ErrInsufficientData, i)
		}
		mu[i] = stat.Mean(series, nil) * float64(periodsPerYear)
	}

	return mu, nil
}
