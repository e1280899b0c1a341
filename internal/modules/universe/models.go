package universe

// DailyPrice represents an adjusted daily close for one asset.
type DailyPrice struct {
	Date     string  `json:"date"` // YYYY-MM-DD format
	AdjClose float64 `json:"adj_close"`
}
