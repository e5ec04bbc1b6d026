package services

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/tropicaldog17/stock-insight/internal/models"
)

const recommendationUnknown = "N/A"

var hundred = decimal.NewFromInt(100)

// reader yields a candidate value and whether it is present.
type reader[T any] func() (T, bool)

// firstPresent evaluates readers in order and returns the first present value.
func firstPresent[T any](readers ...reader[T]) (T, bool) {
	for _, r := range readers {
		if v, ok := r(); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// holderValue reads a numeric value that upstream may wrap as {"raw": n, "fmt": "..."}.
func holderValue(r gjson.Result) (float64, bool) {
	if r.IsObject() {
		r = r.Get("raw")
	}
	if r.Type != gjson.Number {
		return 0, false
	}
	v := r.Float()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// number reads a value holder at path, keeping zero.
func number(root gjson.Result, path string) reader[float64] {
	return func() (float64, bool) {
		return holderValue(root.Get(path))
	}
}

// nonZero reads a value holder at path, treating zero as absent.
func nonZero(root gjson.Result, path string) reader[float64] {
	return func() (float64, bool) {
		v, ok := holderValue(root.Get(path))
		return v, ok && v != 0
	}
}

func text(root gjson.Result, path string) reader[string] {
	return func() (string, bool) {
		r := root.Get(path)
		if r.Type != gjson.String || r.Str == "" {
			return "", false
		}
		return r.Str, true
	}
}

func constant[T any](v T) reader[T] {
	return func() (T, bool) { return v, true }
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

func percent2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Mul(hundred).Round(2).Float64()
	return f
}

func optional(v float64, ok bool, transform func(float64) float64) *float64 {
	if !ok {
		return nil
	}
	if transform != nil {
		v = transform(v)
	}
	return &v
}

// NormalizeFundamentals extracts a snapshot from a quoteSummary payload. It
// never fails: missing or malformed sections yield absent fields.
func NormalizeFundamentals(raw []byte, symbol string) models.FundamentalsSnapshot {
	var root gjson.Result
	if gjson.ValidBytes(raw) {
		root = gjson.GetBytes(raw, "quoteSummary.result.0")
	}

	price, hasPrice := firstPresent(nonZero(root, "financialData.currentPrice"))
	pe, hasPE := firstPresent(
		nonZero(root, "summaryDetail.trailingPE"),
		nonZero(root, "summaryDetail.forwardPE"),
	)
	eps, hasEPS := firstPresent(
		nonZero(root, "defaultKeyStatistics.trailingEps"),
		nonZero(root, "defaultKeyStatistics.forwardEps"),
	)
	growth, hasGrowth := firstPresent(nonZero(root, "financialData.revenueGrowth"))
	yield, hasYield := firstPresent(nonZero(root, "summaryDetail.dividendYield"))
	marketCap, hasMarketCap := firstPresent(number(root, "summaryDetail.marketCap"))

	name, _ := firstPresent(text(root, "assetProfile.longName"), constant(symbol))
	rec, _ := firstPresent(text(root, "financialData.recommendationKey"), constant(recommendationUnknown))

	return models.FundamentalsSnapshot{
		Name:             name,
		CurrentPrice:     optional(price, hasPrice, round2),
		PERatio:          optional(pe, hasPE, round2),
		EPS:              optional(eps, hasEPS, round2),
		RevenueGrowthPct: optional(growth, hasGrowth, percent2),
		MarketCap:        optional(marketCap, hasMarketCap, nil),
		DividendYieldPct: optional(yield, hasYield, percent2),
		Recommendation:   strings.ReplaceAll(rec, "_", " "),
	}
}
