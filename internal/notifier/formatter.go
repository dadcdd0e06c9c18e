package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"StockLens/internal/analyzer"
	"StockLens/internal/model"
	"StockLens/internal/recorder"
)

// FormatAnalysisReport formats one analysis into a Telegram message.
func FormatAnalysisReport(r *analyzer.Report) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s | %s\n\n", html.EscapeString(r.Symbol), r.Mode, r.ModelName))
	b.WriteString(fmt.Sprintf("Rows: %d | Horizon: %d\n", r.Rows, r.Horizon))
	if r.Target != "" {
		b.WriteString(fmt.Sprintf("Target: %s\n", r.Target))
	}

	b.WriteString("\n📈 <b>Metrics:</b>\n")
	names := make([]string, 0, len(r.Metrics.Values))
	for name := range r.Metrics.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b.WriteString(fmt.Sprintf("  %s: %.4f\n", name, r.Metrics.Values[name]))
	}

	if r.Clusters != nil {
		b.WriteString(fmt.Sprintf("\n🧩 <b>Clusters (k=%d):</b>\n", r.Clusters.K))
		for _, id := range r.Clusters.SortedClusterIDs() {
			b.WriteString(fmt.Sprintf("  #%d: %d days\n", id, r.Clusters.Counts[id]))
		}
	}

	if n := len(r.Predictions); n > 0 && r.Mode != model.ModeClustering {
		last := r.Predictions[n-1]
		b.WriteString(fmt.Sprintf("\n🔮 Latest (%s): ", last.Date.Format(time.DateOnly)))
		if last.Label != "" {
			b.WriteString(last.Label)
		} else {
			b.WriteString(fmt.Sprintf("%.2f", last.Predicted))
		}
		b.WriteString("\n")
	}

	if r.Message != "" {
		b.WriteString(fmt.Sprintf("\n<i>%s</i>\n", html.EscapeString(r.Message)))
	}
	return b.String()
}

// FormatRuns formats recent run history.
func FormatRuns(runs []recorder.Run) string {
	if len(runs) == 0 {
		return "📦 No analysis runs recorded yet."
	}
	var b strings.Builder
	b.WriteString("📦 <b>Recent runs</b>\n\n")
	for _, run := range runs {
		status := "✅"
		if run.Status != "ok" {
			status = "❌"
		}
		b.WriteString(fmt.Sprintf("%s %s %s %s", status, run.CreatedAt.Format("01-02 15:04"),
			html.EscapeString(run.Symbol), run.Mode))
		if score, name, ok := headlineScore(run); ok {
			b.WriteString(fmt.Sprintf(" %s=%.3f", name, score))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func headlineScore(run recorder.Run) (float64, string, bool) {
	for _, name := range []string{model.MetricR2, model.MetricAccuracy, model.MetricSilhouette} {
		if v, ok := run.Metrics[name]; ok {
			return v, name, true
		}
	}
	return 0, "", false
}

// RefreshResult is the outcome of one watchlist symbol in a scheduled refresh.
type RefreshResult struct {
	Symbol string
	Report *analyzer.Report
	Err    error
}

// FormatRefreshSummary formats a scheduled watchlist refresh.
func FormatRefreshSummary(results []RefreshResult, at time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗓 <b>Watchlist refresh</b> | %s\n\n", at.Format(time.DateOnly)))
	for _, res := range results {
		if res.Err != nil {
			b.WriteString(fmt.Sprintf("❌ %s: %s\n", html.EscapeString(res.Symbol), html.EscapeString(res.Err.Error())))
			continue
		}
		r := res.Report
		r2, _ := r.Metrics.Get(model.MetricR2)
		line := fmt.Sprintf("✅ %s: R² %.3f over %d days", html.EscapeString(r.Symbol), r2, r.Rows)
		if n := len(r.Predictions); n > 0 {
			line += fmt.Sprintf(", next close %.2f", r.Predictions[n-1].Predicted)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
