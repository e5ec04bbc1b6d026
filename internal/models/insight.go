package models

// InsightMetrics is the subset of a record the narrative is written from.
type InsightMetrics struct {
	Name           *string  `json:"name"`
	CurrentPrice   *float64 `json:"current_price"`
	PERatio        *float64 `json:"pe_ratio"`
	EPS            *float64 `json:"eps"`
	RevenueGrowth  *float64 `json:"revenue_growth"`
	MarketCap      *float64 `json:"market_cap"`
	DividendYield  *float64 `json:"dividend_yield"`
	Recommendation *string  `json:"recommendation"`
}

// InsightRequest is the POST /analyze body.
type InsightRequest struct {
	Symbol    string          `json:"symbol" validate:"required"`
	StockData *InsightMetrics `json:"stock_data" validate:"required"`
}

// InsightResult is returned to the caller as-is and never stored.
type InsightResult struct {
	Symbol  string `json:"symbol"`
	Summary string `json:"summary"`
}

// MetricsFromRecord projects an assembled record onto the insight fields.
func MetricsFromRecord(r StockRecord) InsightMetrics {
	name := r.Name
	m := InsightMetrics{
		Name:          &name,
		CurrentPrice:  r.CurrentPrice,
		PERatio:       r.PERatio,
		EPS:           r.EPS,
		RevenueGrowth: r.RevenueGrowthPct,
		MarketCap:     r.MarketCap,
		DividendYield: r.DividendYieldPct,
	}
	if r.Recommendation != "" {
		rec := r.Recommendation
		m.Recommendation = &rec
	}
	return m
}
