package insight

import (
	"fmt"
	"strings"

	"trading-journal/internal/domain"
)

// RenderMarkdown renders classified results and their Assessment as Markdown.
func RenderMarkdown(results []domain.MetricResult, a *Assessment) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("## Assessment: %s\n\n", strings.ToUpper(string(a.Overall))))

	// Status table
	sb.WriteString("| # | Metric | Value | Status | Trend |\n")
	sb.WriteString("|---|--------|-------|--------|-------|\n")
	for i, r := range results {
		trend := "-"
		if r.Trend != nil {
			trend = string(*r.Trend)
		}
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s |\n",
			i+1, r.Label, FormatValue(r.Value, r.Format), strings.ToUpper(string(r.Status)), trend))
	}
	sb.WriteString("\n")

	counts := make(map[domain.Status]int)
	for _, r := range results {
		counts[r.Status]++
	}
	sb.WriteString(fmt.Sprintf("Good: %d, Warning: %d, Danger: %d\n\n",
		counts[domain.StatusGood], counts[domain.StatusWarning], counts[domain.StatusDanger]))

	// Insights
	sb.WriteString("### Insights\n\n")
	if len(a.Insights) == 0 {
		sb.WriteString("All metrics meet their benchmarks.\n")
		return sb.String()
	}
	for _, in := range a.Insights {
		sb.WriteString(fmt.Sprintf("- %s\n", in.Message))
	}
	return sb.String()
}
