package services

import (
	"strconv"
	"strings"

	"github.com/tropicaldog17/stock-insight/internal/models"
)

const (
	notAvailable = "N/A"

	insightSystemPrompt = "你是專業的投資分析師，根據提供的股票基本面數據，用繁體中文撰寫約 200 字的投資洞察摘要。內容應包含：簡要評價、風險提示、投資建議方向。語氣專業但易讀，避免過度樂觀或悲觀。"
	insightUserPrefix   = "請根據以下股票數據撰寫投資洞察摘要：\n\n"
)

func formatNumber(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatText(v *string) string {
	if v == nil {
		return notAvailable
	}
	return *v
}

// BuildInsightBrief renders the metrics as a fixed nine-line brief. Absent
// values print as N/A so the shape never changes.
func BuildInsightBrief(symbol string, m models.InsightMetrics) string {
	lines := []struct{ label, value string }{
		{"股票代碼", symbol},
		{"公司名稱", formatText(m.Name)},
		{"當前股價", formatNumber(m.CurrentPrice)},
		{"本益比 (PE)", formatNumber(m.PERatio)},
		{"每股盈餘 (EPS)", formatNumber(m.EPS)},
		{"營收成長率 (%)", formatNumber(m.RevenueGrowth)},
		{"市值", formatNumber(m.MarketCap)},
		{"股息殖利率 (%)", formatNumber(m.DividendYield)},
		{"分析師建議", formatText(m.Recommendation)},
	}
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l.label)
		b.WriteString("：")
		b.WriteString(l.value)
	}
	return strings.TrimSpace(b.String())
}

// BuildInsightMessages wraps the brief with the analyst instructions.
func BuildInsightMessages(symbol string, m models.InsightMetrics) []Message {
	return []Message{
		{Role: "system", Content: insightSystemPrompt},
		{Role: "user", Content: insightUserPrefix + BuildInsightBrief(symbol, m)},
	}
}
