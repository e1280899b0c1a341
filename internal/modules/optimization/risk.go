package optimization

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// HighCorrelationThreshold marks an asset pair as highly correlated.
const HighCorrelationThreshold = 0.80

// CorrelationPair records a high correlation between two assets.
type CorrelationPair struct {
	Asset1      string  `json:"asset_1"`
	Asset2      string  `json:"asset_2"`
	Correlation float64 `json:"correlation"`
}

// CovarianceMatrix computes the annualized sample covariance matrix of the
// per-period returns: cov(returns) * periodsPerYear. Symmetric by
// construction; the N-1 denominator matches gonum's stat.Covariance.
func CovarianceMatrix(returns [][]float64, periodsPerYear int) ([][]float64, error) {
	n := len(returns)
	if n == 0 {
		return nil, fmt.Errorf("%w: no return series", ErrInsufficientData)
	}
	if periodsPerYear <= 0 {
		periodsPerYear = DefaultTradingDays
	}

	periods := len(returns[0])
	for i, series := range returns {
		if len(series) != periods {
			return nil, fmt.Errorf("inconsistent return lengths: asset %d has %d observations, expected %d", i, len(series), periods)
		}
	}
	if periods < 2 {
		return nil, fmt.Errorf("%w: need at least 2 return observations, got %d", ErrInsufficientData, periods)
	}

	cov := make([][]float64, n)
	for i := range cov {
		cov[i] = make([]float64, n)
	}

	scale := float64(periodsPerYear)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			c := stat.Covariance(returns[i], returns[j], nil) * scale
			cov[i][j] = c
			if i != j {
				cov[j][i] = c // Symmetry
			}
		}
	}

	return cov, nil
}

// CorrelationMatrix derives the correlation matrix from a covariance matrix:
// corr(i,j) = cov(i,j) / sqrt(var(i) * var(j)). Zero-variance rows get zero
// off-diagonal entries and a unit diagonal.
func CorrelationMatrix(cov [][]float64) [][]float64 {
	n := len(cov)
	corr := make([][]float64, n)
	for i := range corr {
		corr[i] = make([]float64, n)
		corr[i][i] = 1.0
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if cov[i][i] > 0 && cov[j][j] > 0 {
				c := cov[i][j] / math.Sqrt(cov[i][i]*cov[j][j])
				corr[i][j] = c
				corr[j][i] = c
			}
		}
	}

	return corr
}

// HighCorrelations extracts asset pairs whose absolute correlation meets the
// threshold. Diagnostic output for the presentation layer.
func HighCorrelations(cov [][]float64, assets []string, threshold float64) []CorrelationPair {
	if len(cov) == 0 || len(assets) == 0 {
		return []CorrelationPair{}
	}

	pairs := make([]CorrelationPair, 0)
	for i := 0; i < len(cov); i++ {
		for j := i + 1; j < len(cov); j++ {
			if cov[i][i] > 0 && cov[j][j] > 0 {
				correlation := cov[i][j] / math.Sqrt(cov[i][i]*cov[j][j])
				if math.Abs(correlation) >= threshold {
					pairs = append(pairs, CorrelationPair{
						Asset1:      assets[i],
						Asset2:      assets[j],
						Correlation: correlation,
					})
				}
			}
		}
	}

	return pairs
}
