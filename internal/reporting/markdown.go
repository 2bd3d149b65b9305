package reporting

import (
	"fmt"
	"strings"
	"time"

	"trading-journal/internal/insight"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Trading Performance Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("User: %s | Benchmark preset: %s\n\n", r.UserID, r.Preset))

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Trades | %d |\n", r.Summary.TotalTrades))
	sb.WriteString(fmt.Sprintf("| Closed Trades | %d |\n", r.Summary.ClosedTrades))
	sb.WriteString(fmt.Sprintf("| Open Trades | %d |\n", r.Summary.OpenTrades))
	sb.WriteString(fmt.Sprintf("| Symbols | %d |\n", r.Summary.Symbols))
	sb.WriteString(fmt.Sprintf("| Date Range Start | %s |\n", formatMs(r.Summary.DateRangeStart)))
	sb.WriteString(fmt.Sprintf("| Date Range End | %s |\n", formatMs(r.Summary.DateRangeEnd)))
	sb.WriteString("\n")

	// Metrics and insights
	if r.Assessment != nil {
		sb.WriteString(insight.RenderMarkdown(r.Results, r.Assessment))
		sb.WriteString("\n")
	}

	// Drawdown
	sb.WriteString("## Equity Curve\n\n")
	if len(r.Drawdown) > 0 {
		sb.WriteString("| # | Trade | Equity | Peak | Drawdown |\n")
		sb.WriteString("|---|-------|--------|------|----------|\n")
		for _, p := range r.Drawdown {
			sb.WriteString(fmt.Sprintf("| %d | %s | %.2f | %.2f | %.2f%% |\n",
				p.Index+1, p.TradeID, p.Value, p.Peak, p.Drawdown*100))
		}
	} else {
		sb.WriteString("No closed trades.\n")
	}
	sb.WriteString("\n")

	// Excursions
	if r.Excursions != nil {
		sb.WriteString("## Excursions\n\n")
		if r.Excursions.TradesAnalyzed > 0 {
			e := r.Excursions
			sb.WriteString("| Trades | Avg MAE | Avg MFE | Avg Edge Ratio | Worst MAE | Best MFE |\n")
			sb.WriteString("|--------|---------|---------|----------------|-----------|----------|\n")
			sb.WriteString(fmt.Sprintf("| %d | %.2f | %.2f | %.2f | %.2f | %.2f |\n",
				e.TradesAnalyzed, e.AvgMAE, e.AvgMFE, e.AvgEdgeRatio, e.WorstMAE, e.BestMFE))
		} else {
			sb.WriteString("No price samples recorded.\n")
		}
		sb.WriteString("\n")
	}

	// Rejected trades
	if len(r.Rejected) > 0 {
		sb.WriteString("## Excluded Trades\n\n")
		for _, rej := range r.Rejected {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", rej.TradeID, rej.Reason))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func formatMs(ms *int64) string {
	if ms == nil {
		return "-"
	}
	return time.UnixMilli(*ms).UTC().Format(time.RFC3339)
}
