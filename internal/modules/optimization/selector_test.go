package optimization

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectFrontier_PicksOptima(t *testing.T) {
	records := []PortfolioRecord{
		{Volatility: 0.20, SharpeRatio: 0.50},
		{Volatility: 0.15, SharpeRatio: 0.80},
		{Volatility: 0.10, SharpeRatio: 0.60},
		{Volatility: 0.25, SharpeRatio: 0.40},
	}

	sel, err := SelectFrontier(records)
	require.NoError(t, err)

	assert.Equal(t, 1, sel.MaxSharpeIndex)
	assert.Equal(t, 2, sel.MinVarianceIndex)

	// Selected values dominate the whole sample
	for _, rec := range records {
		assert.GreaterOrEqual(t, sel.MaxSharpe.SharpeRatio, rec.SharpeRatio)
		assert.LessOrEqual(t, sel.MinVariance.Volatility, rec.Volatility)
	}
}

func TestSelectFrontier_Empty(t *testing.T) {
	_, err := SelectFrontier(nil)
	assert.ErrorIs(t, err, ErrEmptySample)

	_, err = SelectFrontier([]PortfolioRecord{})
	assert.ErrorIs(t, err, ErrEmptySample)
}

func TestSelectFrontier_SharpeTieBreaksOnVolatility(t *testing.T) {
	records := []PortfolioRecord{
		{Volatility: 0.20, SharpeRatio: 0.75},
		{Volatility: 0.12, SharpeRatio: 0.75},
		{Volatility: 0.18, SharpeRatio: 0.75},
	}

	sel, err := SelectFrontier(records)
	require.NoError(t, err)
	assert.Equal(t, 1, sel.MaxSharpeIndex)
}

func TestSelectFrontier_VolatilityTieBreaksOnSharpe(t *testing.T) {
	records := []PortfolioRecord{
		{Volatility: 0.10, SharpeRatio: 0.40},
		{Volatility: 0.10, SharpeRatio: 0.90},
		{Volatility: 0.10, SharpeRatio: 0.60},
	}

	sel, err := SelectFrontier(records)
	require.NoError(t, err)
	assert.Equal(t, 1, sel.MinVarianceIndex)
}

func TestSelectFrontier_FullTieKeepsFirst(t *testing.T) {
	records := []PortfolioRecord{
		{Volatility: 0.10, SharpeRatio: 0.50},
		{Volatility: 0.10, SharpeRatio: 0.50},
		{Volatility: 0.10, SharpeRatio: 0.50},
	}

	sel, err := SelectFrontier(records)
	require.NoError(t, err)
	assert.Equal(t, 0, sel.MaxSharpeIndex)
	assert.Equal(t, 0, sel.MinVarianceIndex)
}

func TestSelectFrontier_DegenerateRecords(t *testing.T) {
	// A zero-volatility record carries SharpeRatio = -Inf: it can never win
	// max-Sharpe against a finite sample but remains eligible for
	// min-variance.
	records := []PortfolioRecord{
		{Volatility: 0.15, SharpeRatio: 0.70},
		{Volatility: 0.0, SharpeRatio: math.Inf(-1)},
		{Volatility: 0.12, SharpeRatio: 0.65},
	}

	sel, err := SelectFrontier(records)
	require.NoError(t, err)
	assert.Equal(t, 0, sel.MaxSharpeIndex)
	assert.Equal(t, 1, sel.MinVarianceIndex)
}

func TestSelectFrontier_AllDegenerate(t *testing.T) {
	records := []PortfolioRecord{
		{Volatility: 0.0, SharpeRatio: math.Inf(-1)},
		{Volatility: 0.0, SharpeRatio: math.Inf(-1)},
	}

	sel, err := SelectFrontier(records)
	require.NoError(t, err)
	assert.Equal(t, 0, sel.MaxSharpeIndex)
	assert.Equal(t, 0, sel.MinVarianceIndex)
}

func TestSelectFrontier_SingleRecord(t *testing.T) {
	records := []PortfolioRecord{{Volatility: 0.2, SharpeRatio: 0.3}}

	sel, err := SelectFrontier(records)
	require.NoError(t, err)
	assert.Equal(t, records[0], sel.MaxSharpe)
	assert.Equal(t, records[0], sel.MinVariance)
}
