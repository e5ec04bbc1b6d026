package services

import "github.com/tropicaldog17/stock-insight/internal/models"

// AssembleStockRecord merges normalized fundamentals and bars. When the quote
// price is absent, the last bar's close (or zero without history) is used.
func AssembleStockRecord(symbol string, fundamentals models.FundamentalsSnapshot, bars []models.DailyBar) models.StockRecord {
	if fundamentals.CurrentPrice == nil {
		var price float64
		if n := len(bars); n > 0 {
			price = bars[n-1].Close
		}
		fundamentals.CurrentPrice = &price
	}
	if bars == nil {
		bars = []models.DailyBar{}
	}
	return models.StockRecord{
		Symbol:               symbol,
		FundamentalsSnapshot: fundamentals,
		History:              bars,
	}
}
