// Package charts renders optimization results as PNG images for the
// presentation layer.
package charts

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"
	charts "github.com/vicanso/go-charts/v2"

	"github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/internal/modules/optimization"
)

// frontierBins is the number of volatility buckets used to trace the upper
// edge of the sampled cloud.
const frontierBins = 60

// Service renders result charts.
type Service struct {
	log zerolog.Logger
}

// NewService creates a new charts service.
func NewService(log zerolog.Logger) *Service {
	return &Service{
		log: log.With().Str("service", "charts").Logger(),
	}
}

// FrontierPNG renders the efficient frontier: the best sampled return per
// volatility bucket, as a line over volatility. Degenerate zero-volatility
// samples are excluded from the plot.
func (s *Service) FrontierPNG(res *optimization.Result) ([]byte, error) {
	if res == nil || len(res.Samples) == 0 {
		return nil, fmt.Errorf("no samples to plot")
	}

	type point struct {
		vol float64
		ret float64
	}
	points := make([]point, 0, len(res.Samples))
	minVol, maxVol := math.Inf(1), math.Inf(-1)
	for _, rec := range res.Samples {
		if rec.Volatility == 0 {
			continue
		}
		points = append(points, point{vol: rec.Volatility, ret: rec.ExpectedReturn})
		minVol = math.Min(minVol, rec.Volatility)
		maxVol = math.Max(maxVol, rec.Volatility)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("no non-degenerate samples to plot")
	}

	sort.Slice(points, func(i, j int) bool { return points[i].vol < points[j].vol })

	// Upper edge per volatility bucket.
	binWidth := (maxVol - minVol) / frontierBins
	if binWidth <= 0 {
		binWidth = 1
	}

	var xLabels []string
	var bestReturns []float64
	idx := 0
	for b := 0; b < frontierBins; b++ {
		hi := minVol + float64(b+1)*binWidth
		best := math.Inf(-1)
		for idx < len(points) && (points[idx].vol <= hi || b == frontierBins-1) {
			best = math.Max(best, points[idx].ret)
			idx++
		}
		if math.IsInf(best, -1) {
			continue
		}
		xLabels = append(xLabels, fmt.Sprintf("%.3f", hi-binWidth/2))
		bestReturns = append(bestReturns, best*100)
	}

	painter, err := charts.LineRender([][]float64{bestReturns},
		charts.TitleTextOptionFunc("Efficient Frontier",
			fmt.Sprintf("%d samples • max Sharpe %.2f", len(res.Samples), res.MaxSharpe.SharpeRatio)),
		charts.XAxisDataOptionFunc(xLabels),
		charts.LegendOptionFunc(charts.LegendOption{Data: []string{"best return % by volatility"}}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render frontier chart: %w", err)
	}

	return painter.Bytes()
}

// AllocationPNG renders the weight allocation of one of the selected optima
// ("max_sharpe" or "min_variance") as a bar chart, weights in percent.
func (s *Service) AllocationPNG(res *optimization.Result, which string) ([]byte, error) {
	if res == nil {
		return nil, fmt.Errorf("no result to plot")
	}

	var record optimization.PortfolioRecord
	var title string
	switch which {
	case "max_sharpe":
		record = res.MaxSharpe
		title = "Max Sharpe Allocation"
	case "min_variance":
		record = res.MinVariance
		title = "Min Variance Allocation"
	default:
		return nil, fmt.Errorf("unknown portfolio %q (want max_sharpe or min_variance)", which)
	}

	weights := make([]float64, len(record.Weights))
	for i, w := range record.Weights {
		weights[i] = w * 100
	}

	painter, err := charts.BarRender([][]float64{weights},
		charts.TitleTextOptionFunc(title,
			fmt.Sprintf("return %.1f%% • volatility %.1f%%", record.ExpectedReturn*100, record.Volatility*100)),
		charts.XAxisDataOptionFunc(res.Assets),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render allocation chart: %w", err)
	}

	return painter.Bytes()
}
