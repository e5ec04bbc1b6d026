package services

import (
	"encoding/json"

	apperrors "github.com/tropicaldog17/stock-insight/internal/errors"
	"github.com/tropicaldog17/stock-insight/internal/models"
)

// chartResponse is the response structure from the Yahoo chart API.
// Tick values are pointers because upstream emits null for missing ticks.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []chartQuote `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartQuote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*float64 `json:"volume"`
}

// tick returns values[i], or zero when the index is missing or null.
func tick(values []*float64, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return 0
	}
	return *values[i]
}

// NormalizeTimeSeries converts a chart payload into daily bars in upstream
// order. A zero close marks an index without trading data and drops the bar;
// any other missing tick reads as zero.
func NormalizeTimeSeries(raw []byte) ([]models.DailyBar, error) {
	var chart chartResponse
	if err := json.Unmarshal(raw, &chart); err != nil {
		return nil, apperrors.MalformedUpstreamData("chart payload could not be decoded: %v", err)
	}
	if len(chart.Chart.Result) == 0 {
		if e := chart.Chart.Error; e != nil && e.Description != "" {
			return nil, apperrors.MalformedUpstreamData("chart data not found: %s", e.Description)
		}
		return nil, apperrors.MalformedUpstreamData("chart data not found")
	}
	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, apperrors.MalformedUpstreamData("chart data has no quote section")
	}
	quote := result.Indicators.Quote[0]

	bars := make([]models.DailyBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		closePrice := tick(quote.Close, i)
		if closePrice == 0 {
			continue
		}
		volume := tick(quote.Volume, i)
		if volume < 0 {
			volume = 0
		}
		bars = append(bars, models.DailyBar{
			Date:   models.DateFromUnix(ts),
			Open:   tick(quote.Open, i),
			High:   tick(quote.High, i),
			Low:    tick(quote.Low, i),
			Close:  closePrice,
			Volume: int64(volume),
		})
	}
	return bars, nil
}
