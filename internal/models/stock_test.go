package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDateFromUnix_TruncatesToUTCDay(t *testing.T) {
	// 2024-03-15T23:30:00Z
	d := DateFromUnix(1710545400)
	require.Equal(t, "2024-03-15", d.String())
	require.Equal(t, 0, d.Hour())
}

func TestDate_JSONRoundTrip(t *testing.T) {
	b, err := json.Marshal(DateFromUnix(1704067200))
	require.NoError(t, err)
	require.Equal(t, `"2024-01-01"`, string(b))

	var d Date
	require.NoError(t, json.Unmarshal(b, &d))
	require.Equal(t, "2024-01-01", d.String())

	require.Error(t, json.Unmarshal([]byte(`"01/01/2024"`), &d))
}

func TestStockRecord_FlatJSONShape(t *testing.T) {
	rec := StockRecord{
		Symbol: "AAPL",
		FundamentalsSnapshot: FundamentalsSnapshot{
			Name:           "Apple Inc.",
			CurrentPrice:   Float(189.5),
			PERatio:        Float(29.12),
			MarketCap:      Float(2.9e12),
			Recommendation: "buy",
		},
		History: []DailyBar{{Date: DateFromUnix(1704067200), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 100}},
	}

	b, err := json.Marshal(rec)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	for _, key := range []string{"symbol", "name", "history", "current_price", "pe_ratio", "eps", "revenue_growth", "market_cap", "dividend_yield", "recommendation"} {
		require.Contains(t, got, key)
	}
	require.Nil(t, got["eps"])
	require.Equal(t, 2.9e12, got["market_cap"])

	history := got["history"].([]any)
	require.Len(t, history, 1)
	require.Equal(t, "2024-01-01", history[0].(map[string]any)["date"])
}

func TestMetricsFromRecord(t *testing.T) {
	rec := StockRecord{
		Symbol: "MSFT",
		FundamentalsSnapshot: FundamentalsSnapshot{
			Name:           "Microsoft",
			CurrentPrice:   Float(410),
			Recommendation: "strong buy",
		},
	}
	m := MetricsFromRecord(rec)
	require.Equal(t, "Microsoft", *m.Name)
	require.Equal(t, 410.0, *m.CurrentPrice)
	require.Nil(t, m.PERatio)
	require.Equal(t, "strong buy", *m.Recommendation)
}
