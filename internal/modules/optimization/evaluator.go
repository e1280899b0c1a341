package optimization

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// weightSumTolerance bounds |sum(w) - 1| at the evaluator boundary. The
// sampler normalizes well inside this; a violation is a caller bug.
const weightSumTolerance = 1e-6

// PortfolioRecord holds the evaluated statistics for one sampled weight
// vector. Weights follow the panel's asset ordering. A degenerate
// zero-volatility sample carries SharpeRatio = -Inf (see Evaluator.Evaluate).
type PortfolioRecord struct {
	Weights        []float64 `json:"weights"`
	ExpectedReturn float64   `json:"expected_return"`
	Volatility     float64   `json:"volatility"`
	SharpeRatio    float64   `json:"sharpe_ratio"`
}

// Evaluator computes portfolio statistics against a fixed return vector,
// covariance matrix, and risk-free rate. Evaluate is pure and deterministic.
type Evaluator struct {
	mu       []float64
	sigma    *mat.SymDense
	riskFree float64
}

// NewEvaluator validates the moment inputs and builds an evaluator.
func NewEvaluator(mu []float64, cov [][]float64, riskFree float64) (*Evaluator, error) {
	n := len(mu)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty return vector", ErrInsufficientData)
	}
	if len(cov) != n {
		return nil, fmt.Errorf("covariance matrix size %d doesn't match return vector length %d", len(cov), n)
	}

	sigma := mat.NewSymDense(n, nil)
	for i := range cov {
		if len(cov[i]) != n {
			return nil, fmt.Errorf("covariance matrix row %d has size %d, expected %d", i, len(cov[i]), n)
		}
		for j := i; j < n; j++ {
			sigma.SetSym(i, j, cov[i][j])
		}
	}

	return &Evaluator{
		mu:       append([]float64(nil), mu...),
		sigma:    sigma,
		riskFree: riskFree,
	}, nil
}

// Evaluate computes expected return, volatility, and Sharpe ratio for one
// weight vector. Returns ErrInvalidWeight for vectors violating the
// non-negativity or sum-to-one invariant, and ErrUndefinedRatio for
// zero-volatility portfolios; in the latter case the record is still
// populated with SharpeRatio = -Inf so callers can keep it for min-variance
// selection.
func (e *Evaluator) Evaluate(w []float64) (PortfolioRecord, error) {
	if err := e.checkWeights(w); err != nil {
		return PortfolioRecord{}, err
	}

	wVec := mat.NewVecDense(len(w), w)
	expectedReturn := mat.Dot(wVec, mat.NewVecDense(len(e.mu), e.mu))

	// Clamp handles floating noise: w'Σw is non-negative in exact arithmetic
	// for a PSD Σ, but can come out slightly negative numerically.
	variance := mat.Inner(wVec, e.sigma, wVec)
	volatility := math.Sqrt(math.Max(variance, 0))

	record := PortfolioRecord{
		Weights:        append([]float64(nil), w...),
		ExpectedReturn: expectedReturn,
		Volatility:     volatility,
	}

	if volatility == 0 {
		record.SharpeRatio = math.Inf(-1)
		return record, fmt.Errorf("%w: expected return %.6f", ErrUndefinedRatio, expectedReturn)
	}

	record.SharpeRatio = (expectedReturn - e.riskFree) / volatility
	return record, nil
}

func (e *Evaluator) checkWeights(w []float64) error {
	if len(w) != len(e.mu) {
		return fmt.Errorf("%w: got %d weights for %d assets", ErrInvalidWeight, len(w), len(e.mu))
	}

	sum := 0.0
	for i, v := range w {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: weight %d is %v", ErrInvalidWeight, i, v)
		}
		sum += v
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("%w: weights sum to %.12f", ErrInvalidWeight, sum)
	}

	return nil
}
