package optimization

import "errors"

// Sentinel errors for the optimization engine. Callers match them with
// errors.Is; sites that raise them wrap with fmt.Errorf("%w: ...") to attach
// the offending asset or parameter.
var (
	// ErrInsufficientData indicates too few observations or an asset column
	// with no usable prices.
	ErrInsufficientData = errors.New("insufficient price data")

	// ErrEmptySample indicates there were no candidate portfolios to select
	// from.
	ErrEmptySample = errors.New("no candidate portfolios")

	// ErrUndefinedRatio indicates a degenerate zero-volatility portfolio for
	// which the Sharpe ratio is undefined.
	ErrUndefinedRatio = errors.New("sharpe ratio undefined for zero-volatility portfolio")

	// ErrInvalidWeight indicates a weight vector violating the non-negativity
	// or sum-to-one invariant. The sampler never produces such vectors, so
	// hitting this signals a programming error in the caller.
	ErrInvalidWeight = errors.New("invalid weight vector")
)
