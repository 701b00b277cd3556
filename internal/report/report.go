// Package report renders refresh summaries and scan results for the CLIs.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"LiquidLeaders/internal/model"
)

// FormatSummary formats a refresh summary into a human-readable block.
func FormatSummary(sum *model.RefreshSummary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Refresh complete | %s\n", time.Now().Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("  Attempted: %d\n", sum.Attempted))
	b.WriteString(fmt.Sprintf("  Succeeded: %d\n", sum.Succeeded))
	b.WriteString(fmt.Sprintf("  Failed:    %d\n", sum.Failed))
	b.WriteString(fmt.Sprintf("  Duration:  %s\n", sum.Duration.Round(time.Second)))
	if len(sum.FailedTickers) > 0 {
		b.WriteString("  Failed tickers: " + strings.Join(sum.FailedTickers, ", ") + "\n")
	}
	return b.String()
}

// WriteScanTable renders ranked scan results as an aligned table. Results
// are assumed already ranked (tier descending, then momentum).
func WriteScanTable(w io.Writer, results []model.Classified) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No leaders found")
		return
	}
	table := tablewriter.NewTable(w,
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{Left: tw.On, Right: tw.On, Top: tw.Off, Bottom: tw.Off},
		}),
		tablewriter.WithRowAlignment(tw.AlignRight),
	)
	table.Header("#", "Ticker", "Tier", "Close", "Ret21 %", "DCR", "ATR %", "RR", "AvgVol20")
	for i, r := range results {
		table.Append([]string{
			strconv.Itoa(i + 1),
			r.Ticker,
			strconv.Itoa(r.Tier),
			strconv.FormatFloat(r.Metrics.Close, 'f', 2, 64),
			formatFloat(r.Metrics.Return21, 2),
			formatFloat(r.Metrics.DCR, 1),
			formatFloat(r.Metrics.ATRPct, 2),
			formatFloat(r.Metrics.RR, 2),
			formatFloat(r.Metrics.AvgVol20, 0),
		})
	}
	table.Render()
}

// formatFloat renders a nullable metric, showing "-" for undefined values.
func formatFloat(f model.Float, prec int) string {
	if !f.Valid {
		return "-"
	}
	return strconv.FormatFloat(f.Float64, 'f', prec, 64)
}
