package charts

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/internal/modules/optimization"
)

func testResult() *optimization.Result {
	samples := []optimization.PortfolioRecord{
		{Weights: []float64{0.6, 0.4}, ExpectedReturn: 0.12, Volatility: 0.18, SharpeRatio: 0.56},
		{Weights: []float64{0.3, 0.7}, ExpectedReturn: 0.16, Volatility: 0.24, SharpeRatio: 0.58},
		{Weights: []float64{0.5, 0.5}, ExpectedReturn: 0.15, Volatility: 0.19, SharpeRatio: 0.68},
		{Weights: []float64{0.8, 0.2}, ExpectedReturn: 0.11, Volatility: 0.17, SharpeRatio: 0.53},
	}
	return &optimization.Result{
		RunID:       "test-run",
		Assets:      []string{"AAA", "BBB"},
		Samples:     samples,
		MaxSharpe:   samples[2],
		MinVariance: samples[3],
	}
}

func TestFrontierPNG(t *testing.T) {
	svc := NewService(zerolog.Nop())

	img, err := svc.FrontierPNG(testResult())
	require.NoError(t, err)
	require.NotEmpty(t, img)

	// PNG magic bytes
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, img[:4])
}

func TestFrontierPNG_NoSamples(t *testing.T) {
	svc := NewService(zerolog.Nop())

	_, err := svc.FrontierPNG(nil)
	assert.Error(t, err)

	_, err = svc.FrontierPNG(&optimization.Result{})
	assert.Error(t, err)
}

func TestFrontierPNG_AllDegenerate(t *testing.T) {
	svc := NewService(zerolog.Nop())

	res := &optimization.Result{
		Assets: []string{"AAA"},
		Samples: []optimization.PortfolioRecord{
			{Weights: []float64{1.0}, Volatility: 0, SharpeRatio: math.Inf(-1)},
		},
	}

	_, err := svc.FrontierPNG(res)
	assert.Error(t, err)
}

func TestAllocationPNG(t *testing.T) {
	svc := NewService(zerolog.Nop())
	res := testResult()

	for _, which := range []string{"max_sharpe", "min_variance"} {
		img, err := svc.AllocationPNG(res, which)
		require.NoError(t, err)
		require.NotEmpty(t, img)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, img[:4])
	}
}

func TestAllocationPNG_UnknownPortfolio(t *testing.T) {
	svc := NewService(zerolog.Nop())

	_, err := svc.AllocationPNG(testResult(), "median")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "median")

	_, err = svc.AllocationPNG(nil, "max_sharpe")
	assert.Error(t, err)
}
