package renderer

import (
	"fmt"
	"strings"

	"github.com/sohumt123/Tickker"
	"github.com/sohumt123/Tickker/date"
)

// HistoryMarkdown renders the value of a portfolio next to the benchmark,
// keeping the first day and the last day of every period.
func HistoryMarkdown(resp *tickker.HistoryResponse, period date.Period) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Portfolio History\n\n")
	fmt.Fprintf(&b, "| Date | Value | %s |\n", resp.Benchmark)
	fmt.Fprintln(&b, "|:---|---:|---:|")
	for _, p := range sample(resp.History, func(p tickker.HistoryPoint) date.Date { return p.Date }, period) {
		bench := "-"
		if !p.BenchmarkPrice.IsZero() {
			bench = p.BenchmarkPrice.String()
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", p.Date, p.TotalValue, bench)
	}
	reportMarkdown(&b, resp.Report)
	return b.String()
}

// TradesMarkdown renders the latest transactions, most recent first.
func TradesMarkdown(resp *tickker.TradesResponse) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Recent Trades\n\n")
	fmt.Fprintln(&b, "| Date | Action | Symbol | Quantity | Price | Amount |")
	fmt.Fprintln(&b, "|:---|:---|:---|---:|---:|---:|")
	for _, tx := range resp.Trades {
		quantity, price := "-", "-"
		if !tx.Quantity.IsZero() {
			quantity = tx.Quantity.String()
		}
		if !tx.Price.IsZero() {
			price = tx.Price.String()
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n", tx.Date, tx.Action, tx.Symbol, quantity, price, tx.Amount.SignedString())
	}
	return b.String()
}
