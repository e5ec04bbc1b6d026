package models

import (
	"encoding/json"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day in UTC, encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

// DateFromUnix truncates a second-based timestamp to its UTC calendar day.
func DateFromUnix(sec int64) Date {
	t := time.Unix(sec, 0).UTC()
	return Date{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string { return d.Format(dateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// DailyBar is one trading day. Close is never zero.
type DailyBar struct {
	Date   Date    `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// FundamentalsSnapshot holds the best-effort fundamentals for a symbol.
// Percent fields are already scaled by 100; nil means absent.
type FundamentalsSnapshot struct {
	Name             string   `json:"name"`
	CurrentPrice     *float64 `json:"current_price"`
	PERatio          *float64 `json:"pe_ratio"`
	EPS              *float64 `json:"eps"`
	RevenueGrowthPct *float64 `json:"revenue_growth"`
	MarketCap        *float64 `json:"market_cap"`
	DividendYieldPct *float64 `json:"dividend_yield"`
	Recommendation   string   `json:"recommendation"`
}

// StockRecord is the merged lookup response. The embedded snapshot is
// flattened into the top-level JSON object.
type StockRecord struct {
	Symbol string `json:"symbol"`
	FundamentalsSnapshot
	History []DailyBar `json:"history"`
}

// Price returns the resolved current price; zero when none was resolved.
func (r StockRecord) Price() float64 {
	if r.CurrentPrice == nil {
		return 0
	}
	return *r.CurrentPrice
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
