package optimization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpectedReturns_KnownValues(t *testing.T) {
	returns := [][]float64{
		{0.01, 0.02, 0.03},  // mean 0.02
		{-0.01, 0.00, 0.01}, // mean 0.00
	}

	mu, err := ExpectedReturns(returns, 252)
	require.NoError(t, err)
	require.Len(t, mu, 2)

	assert.InDelta(t, 0.02*252, mu[0], 1e-12)
	assert.InDelta(t, 0.0, mu[1], 1e-12)
}

func TestExpectedReturns_DefaultAnnualization(t *testing.T) {
	returns := [][]float64{{0.01, 0.01}}

	mu, err := ExpectedReturns(returns, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.01*DefaultTradingDays, mu[0], 1e-12)
}

func TestExpectedReturns_Errors(t *testing.T) {
	_, err := ExpectedReturns(nil, 252)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = ExpectedReturns([][]float64{{}}, 252)
	assert.ErrorIs(t, err, ErrInsufficientData)
}
