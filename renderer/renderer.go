// Package renderer formats engine responses as markdown reports.
package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/sohumt123/Tickker"
	"github.com/sohumt123/Tickker/date"
)

// ComparisonMarkdown renders the growth of the baseline amount, keeping the
// baseline and the last point of every period.
func ComparisonMarkdown(resp *tickker.ComparisonResponse, period date.Period) string {
	var b strings.Builder
	c := resp.Comparison
	fmt.Fprintf(&b, "# Growth of %s since %s\n\n", c.Amount.Whole(), resp.Baseline)

	fmt.Fprint(&b, "| Date |")
	for _, name := range c.Names {
		fmt.Fprintf(&b, " %s |", seriesTitle(name))
	}
	fmt.Fprint(&b, "\n|:---|")
	fmt.Fprint(&b, strings.Repeat("---:|", len(c.Names)))
	fmt.Fprintln(&b)

	for _, p := range sample(c.Points, pointDate, period) {
		fmt.Fprintf(&b, "| %s |", p.Date)
		for _, v := range p.Values {
			fmt.Fprintf(&b, " %s |", v)
		}
		fmt.Fprintln(&b)
	}

	if n := len(c.Points); n > 0 {
		last := c.Points[n-1]
		fmt.Fprint(&b, "\n## Change\n\n")
		fmt.Fprintln(&b, "| Series | Final | Change |")
		fmt.Fprintln(&b, "|:---|---:|---:|")
		for i, name := range c.Names {
			v := last.Values[i]
			fmt.Fprintf(&b, "| %s | %s | %s |\n", seriesTitle(name), v, pct(tickker.PercentOf(v.Sub(c.Amount).Ratio(c.Amount))))
		}
	}
	reportMarkdown(&b, resp.Report)
	return b.String()
}

// sample keeps the first point and the last point of each period.
func sample[T any](points []T, day func(T) date.Date, period date.Period) []T {
	if period == date.Daily || len(points) <= 2 {
		return points
	}
	res := []T{points[0]}
	for i := 1; i < len(points); i++ {
		if i == len(points)-1 || !period.Range(day(points[i])).Contains(day(points[i+1])) {
			res = append(res, points[i])
		}
	}
	return res
}

func pointDate(p tickker.ComparisonPoint) date.Date { return p.Date }

// PerformanceMarkdown renders the trailing metrics and returns since the baseline.
func PerformanceMarkdown(resp *tickker.PerformanceResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Performance from %s to %s\n\n", resp.Net.StartDate, resp.Net.EndDate)

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "## Trailing Returns\n\n")
		fmt.Fprintln(w, "| Window | Portfolio | Benchmark | Outperformance |")
		fmt.Fprintln(w, "|:---|---:|---:|---:|")
		for _, m := range resp.Metrics {
			fmt.Fprintf(w, "| %s | %s | %s | %s |\n", m.Name, pct(m.PortfolioReturn), pct(m.SPYReturn), pct(m.Outperformance))
		}
		fmt.Fprintln(w)
		return len(resp.Metrics) > 0
	})

	fmt.Fprint(&b, "## Returns\n\n")
	fmt.Fprintln(&b, "| Measure | Value |")
	fmt.Fprintln(&b, "|:---|---:|")
	if twr := resp.TWR; twr != nil {
		fmt.Fprintf(&b, "| Time-Weighted Return | %s |\n", pct(twr.TWRPct))
		if twr.Days > 365 {
			fmt.Fprintf(&b, "| Annualized | %s |\n", pct(twr.AnnualizedPct))
		}
	}
	netRows(&b, resp.Net)
	fmt.Fprintf(&b, "| Deposit-Averaged Return | %s |\n", pct(resp.DepositAvg.AvgReturnPct))

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "\n## Deposit Periods\n\n")
		fmt.Fprintln(w, "| From | To | Begin | End | Contributions | Return |")
		fmt.Fprintln(w, "|:---|:---|---:|---:|---:|---:|")
		for _, p := range resp.DepositAvg.Periods {
			fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s |\n",
				p.Start, p.End, p.BeginValue, p.EndValue, p.NetContrib.SignedString(), pct(p.ReturnPct))
		}
		return len(resp.DepositAvg.Periods) > 1
	})
	reportMarkdown(&b, resp.Report)
	return b.String()
}

func netRows(w io.Writer, n tickker.NetReturn) {
	fmt.Fprintf(w, "| Start Value | %s |\n", n.StartValue)
	fmt.Fprintf(w, "| End Value | %s |\n", n.EndValue)
	fmt.Fprintf(w, "| Net Contributions | %s |\n", n.NetContributions.SignedString())
	fmt.Fprintf(w, "| Net Profit | %s |\n", n.NetProfit.SignedString())
	fmt.Fprintf(w, "| Return on Start | %s |\n", pct(n.PctOfStart))
	fmt.Fprintf(w, "| Return on Invested | %s |\n", pct(n.PctOfStartPlusContrib))
}

// NetReturnMarkdown renders the contribution-adjusted return.
func NetReturnMarkdown(resp *tickker.NetReturnResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Net Return from %s to %s\n\n", resp.StartDate, resp.EndDate)
	fmt.Fprintln(&b, "| Measure | Value |")
	fmt.Fprintln(&b, "|:---|---:|")
	netRows(&b, resp.NetReturn)
	reportMarkdown(&b, resp.Report)
	return b.String()
}
