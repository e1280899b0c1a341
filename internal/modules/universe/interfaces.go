package universe

// HistoryDBInterface provides read access to stored price history.
// Consumed by the optimization module to avoid a dependency on the concrete
// store in tests.
type HistoryDBInterface interface {
	// GetDailyPrices returns daily prices for a symbol from the given date
	// (inclusive, YYYY-MM-DD) onwards, ordered by date ascending. An empty
	// since string returns the full history.
	GetDailyPrices(symbol string, since string) ([]DailyPrice, error)
}

// PriceSource fetches adjusted daily closes from a market-data provider.
// Implemented by the Yahoo client.
type PriceSource interface {
	FetchDailyCloses(symbol string, lookbackDays int) ([]DailyPrice, error)
}
