package renderer

import (
	"fmt"
	"strings"

	"github.com/sohumt123/Tickker"
)

// HoldingsMarkdown renders the valued positions of a portfolio.
func HoldingsMarkdown(resp *tickker.HoldingsResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Holdings on %s\n\n", resp.Date)
	fmt.Fprintln(&b, "| Symbol | Shares | Price | Value | Weight | Cost | Gain |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|---:|---:|")
	for _, h := range resp.Holdings {
		price := "-"
		if !h.Price.IsZero() {
			price = h.Price.String()
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n", h.Symbol, h.Shares, price, h.Value, h.Weight, h.CostBasis, pct(h.GainLossPct))
	}
	fmt.Fprintf(&b, "| **Total** | | | **%s** | | | |\n", resp.Total)
	reportMarkdown(&b, resp.Report)
	return b.String()
}
