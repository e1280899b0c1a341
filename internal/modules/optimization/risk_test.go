package optimization

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCovarianceMatrix_KnownValues(t *testing.T) {
	// Perfectly correlated pair: series B is 2x series A.
	a := []float64{0.01, -0.01, 0.02, 0.00}
	b := []float64{0.02, -0.02, 0.04, 0.00}

	cov, err := CovarianceMatrix([][]float64{a, b}, 1)
	require.NoError(t, err)
	require.Len(t, cov, 2)

	// Sample variance of a (N-1 denominator):
	// mean = 0.005; deviations 0.005,-0.015,0.015,-0.005
	// sum of squares = 0.0005; / 3
	varA := 0.0005 / 3.0
	assert.InDelta(t, varA, cov[0][0], 1e-12)
	assert.InDelta(t, 4*varA, cov[1][1], 1e-12)
	assert.InDelta(t, 2*varA, cov[0][1], 1e-12)
}

func TestCovarianceMatrix_SymmetricAndAnnualized(t *testing.T) {
	returns := [][]float64{
		{0.010, -0.005, 0.020, 0.003, -0.011},
		{0.002, 0.004, -0.007, 0.009, 0.001},
		{-0.003, 0.006, 0.001, -0.002, 0.008},
	}

	cov, err := CovarianceMatrix(returns, 252)
	require.NoError(t, err)
	require.Len(t, cov, 3)

	for i := range cov {
		require.Len(t, cov[i], 3)
		assert.GreaterOrEqual(t, cov[i][i], 0.0)
		for j := range cov[i] {
			// Exact symmetry, not approximate
			assert.Equal(t, cov[i][j], cov[j][i])
		}
	}

	unscaled, err := CovarianceMatrix(returns, 1)
	require.NoError(t, err)
	assert.InDelta(t, unscaled[0][0]*252, cov[0][0], 1e-12)
}

func TestCovarianceMatrix_Errors(t *testing.T) {
	_, err := CovarianceMatrix(nil, 252)
	assert.ErrorIs(t, err, ErrInsufficientData)

	// Single observation cannot produce a sample covariance
	_, err = CovarianceMatrix([][]float64{{0.01}}, 252)
	assert.ErrorIs(t, err, ErrInsufficientData)

	// Ragged input
	_, err = CovarianceMatrix([][]float64{
		{0.01, 0.02},
		{0.01, 0.02, 0.03},
	}, 252)
	assert.Error(t, err)
}

func TestCorrelationMatrix(t *testing.T) {
	cov := [][]float64{
		{0.04, 0.01},
		{0.01, 0.09},
	}

	corr := CorrelationMatrix(cov)
	require.Len(t, corr, 2)

	assert.Equal(t, 1.0, corr[0][0])
	assert.Equal(t, 1.0, corr[1][1])
	expected := 0.01 / math.Sqrt(0.04*0.09)
	assert.InDelta(t, expected, corr[0][1], 1e-12)
	assert.Equal(t, corr[0][1], corr[1][0])
}

func TestCorrelationMatrix_ZeroVariance(t *testing.T) {
	cov := [][]float64{
		{0.0, 0.0},
		{0.0, 0.09},
	}

	corr := CorrelationMatrix(cov)
	assert.Equal(t, 1.0, corr[0][0])
	assert.Equal(t, 0.0, corr[0][1])
	assert.Equal(t, 0.0, corr[1][0])
}

func TestHighCorrelations(t *testing.T) {
	// corr(A,B) = 1.0, corr(A,C) small
	cov := [][]float64{
		{0.04, 0.060, 0.001},
		{0.060, 0.09, 0.002},
		{0.001, 0.002, 0.05},
	}
	assets := []string{"AAA", "BBB", "CCC"}

	pairs := HighCorrelations(cov, assets, 0.80)
	require.Len(t, pairs, 1)
	assert.Equal(t, "AAA", pairs[0].Asset1)
	assert.Equal(t, "BBB", pairs[0].Asset2)
	assert.InDelta(t, 1.0, pairs[0].Correlation, 1e-12)

	assert.Empty(t, HighCorrelations(nil, nil, 0.80))
}

func TestHighCorrelations_NegativeCorrelation(t *testing.T) {
	cov := [][]float64{
		{0.04, -0.055},
		{-0.055, 0.09},
	}

	pairs := HighCorrelations(cov, []string{"A", "B"}, 0.80)
	require.Len(t, pairs, 1)
	assert.Less(t, pairs[0].Correlation, 0.0)
}
