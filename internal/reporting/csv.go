package reporting

import (
	"encoding/csv"
	"strconv"
	"strings"

	"trading-journal/internal/domain"
)

// RenderCSV renders classified metric results as CSV string.
func RenderCSV(results []domain.MetricResult) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	_ = w.Write([]string{"metric_id", "label", "value", "status", "trend", "format"})
	for _, r := range results {
		trend := ""
		if r.Trend != nil {
			trend = string(*r.Trend)
		}
		_ = w.Write([]string{
			r.ID,
			r.Label,
			strconv.FormatFloat(r.Value, 'f', 6, 64),
			string(r.Status),
			trend,
			string(r.Format),
		})
	}

	w.Flush()
	return sb.String()
}

// RenderDrawdownCSV renders the equity curve as CSV string.
func RenderDrawdownCSV(points []domain.DrawdownPoint) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	_ = w.Write([]string{"index", "trade_id", "timestamp_ms", "equity", "peak", "drawdown", "in_drawdown"})
	for _, p := range points {
		ts := ""
		if p.TimestampMs != nil {
			ts = strconv.FormatInt(*p.TimestampMs, 10)
		}
		_ = w.Write([]string{
			strconv.Itoa(p.Index),
			p.TradeID,
			ts,
			strconv.FormatFloat(p.Value, 'f', 6, 64),
			strconv.FormatFloat(p.Peak, 'f', 6, 64),
			strconv.FormatFloat(p.Drawdown, 'f', 6, 64),
			strconv.FormatBool(p.InDrawdown),
		})
	}

	w.Flush()
	return sb.String()
}
