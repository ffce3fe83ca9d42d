package tickker

import (
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"github.com/sohumt123/Tickker/date"
)

// Flows are end-of-day: a flow dated d closes the sub-period ending on d. The
// value series only has trading days, flows dated on a weekend are moved to
// the next trading day, the first valuation that sees them.

// SubPeriod is a part of a range with no external cash flow except on its last day.
type SubPeriod struct {
	Start      date.Date `json:"start"`
	End        date.Date `json:"end"`
	BeginValue Money     `json:"begin_value"`
	EndValue   Money     `json:"end_value"`
	NetContrib Money     `json:"net_contrib"`
	ReturnPct  Percent   `json:"return_pct"`

	growth decimal.Decimal // (EndValue - NetContrib) / BeginValue
}

// flowsWithin returns the flows that close a sub-period within (r.From, r.To].
func flowsWithin(flows *Series, r date.Range) map[date.Date]Money {
	res := make(map[date.Date]Money)
	if flows == nil {
		return res
	}
	for d, f := range flows.Values() {
		d = d.NextTradingDay()
		if !d.After(r.From) || d.After(r.To) {
			continue
		}
		res[d] = res[d].Add(f)
	}
	return res
}

// subPeriods splits r at every flow, or at every trading day when daily is
// set. Sub-periods starting with a zero value have no defined return and are
// skipped.
func subPeriods(values, flows *Series, r date.Range, daily bool) []SubPeriod {
	byDay := flowsWithin(flows, r)
	var res []SubPeriod
	begin := r.From
	beginValue, _ := values.ValueAsOf(begin)
	closePeriod := func(end date.Date) {
		endValue, _ := values.ValueAsOf(end)
		flow := byDay[end]
		if !beginValue.IsZero() {
			growth := endValue.Sub(flow).Ratio(beginValue)
			res = append(res, SubPeriod{
				Start:      begin,
				End:        end,
				BeginValue: beginValue,
				EndValue:   endValue,
				NetContrib: flow,
				ReturnPct:  PercentOf(growth.Sub(decimal.NewFromInt(1))),
				growth:     growth,
			})
		}
		begin, beginValue = end, endValue
	}
	for day := range date.NewRange(r.From.Add(1), r.To).TradingDays() {
		if _, ok := byDay[day]; ok || daily {
			closePeriod(day)
		}
	}
	if last := r.To.PreviousTradingDay(); begin.Before(last) {
		closePeriod(last)
	}
	return res
}

// TWRStats is the time-weighted return over a range.
type TWRStats struct {
	TWR           float64 `json:"twr"` // as a ratio, 0.1 for 10%
	TWRPct        Percent `json:"twr_pct"`
	Days          int     `json:"days"`
	AnnualizedPct Percent `json:"annualized_pct"`

	exact decimal.Decimal
}

// TimeWeightedReturn chain-links the flow-adjusted sub-period returns of the
// value series over r: twr = Π(1 + r_i) - 1. The value on r.From is the
// opening value.
//
// The return is annualized only when r spans more than 365 days, otherwise
// AnnualizedPct equals TWRPct. It reports false when no sub-period had a
// starting value.
func TimeWeightedReturn(values, flows *Series, r date.Range) (TWRStats, bool) {
	periods := subPeriods(values, flows, r, false)
	stats := TWRStats{Days: r.Days()}
	if len(periods) == 0 {
		return stats, false
	}
	growth := decimal.NewFromInt(1)
	for _, p := range periods {
		growth = growth.Mul(p.growth)
	}
	stats.exact = growth.Sub(decimal.NewFromInt(1))
	stats.TWR = stats.exact.InexactFloat64()
	stats.TWRPct = PercentOf(stats.exact)
	stats.AnnualizedPct = stats.TWRPct
	if stats.Days > 365 {
		g := growth.InexactFloat64()
		stats.AnnualizedPct = Percent(100 * (math.Pow(g, 365/float64(stats.Days)) - 1))
	}
	return stats, true
}

// NetReturn is the contribution-adjusted return over a range.
type NetReturn struct {
	StartDate             date.Date `json:"start_date"`
	EndDate               date.Date `json:"end_date"`
	StartValue            Money     `json:"start_value"`
	EndValue              Money     `json:"end_value"`
	NetContributions      Money     `json:"net_contributions"`
	NetProfit             Money     `json:"net_profit"`
	PctOfStart            Percent   `json:"pct_of_start"`              // NaN when starting from zero
	PctOfStartPlusContrib Percent   `json:"pct_of_start_plus_contrib"` // NaN when nothing was invested
}

// ComputeNetReturn returns the profit over r net of contributions:
// end - start - contributions, relative to start and to start + contributions.
func ComputeNetReturn(values, flows *Series, r date.Range) NetReturn {
	start, _ := values.ValueAsOf(r.From)
	end, _ := values.ValueAsOf(r.To)
	var contrib Money
	for _, f := range flowsWithin(flows, r) {
		contrib = contrib.Add(f)
	}
	n := NetReturn{
		StartDate:             r.From,
		EndDate:               r.To,
		StartValue:            start,
		EndValue:              end,
		NetContributions:      contrib,
		NetProfit:             end.Sub(start).Sub(contrib),
		PctOfStart:            Percent(math.NaN()),
		PctOfStartPlusContrib: Percent(math.NaN()),
	}
	if !start.IsZero() {
		n.PctOfStart = PercentOf(n.NetProfit.Ratio(start))
	}
	if invested := start.Add(contrib); !invested.IsZero() {
		n.PctOfStartPlusContrib = PercentOf(n.NetProfit.Ratio(invested))
	}
	return n
}

// Gain returns the contribution-adjusted dollar gain.
func (n NetReturn) Gain() Money { return n.NetProfit }

// DepositAveraged is the arithmetic mean of the returns of the periods
// bounded by contributions, each period weighs the same regardless of its
// duration or size.
type DepositAveraged struct {
	Periods      []SubPeriod `json:"periods"`
	AvgReturnPct Percent     `json:"avg_return_pct"`
}

// ComputeDepositAveraged splits r at each flow and averages the simple return of each period.
func ComputeDepositAveraged(values, flows *Series, r date.Range) DepositAveraged {
	periods := subPeriods(values, flows, r, false)
	d := DepositAveraged{Periods: periods}
	if d.Periods == nil {
		d.Periods = []SubPeriod{}
	}
	if len(periods) == 0 {
		return d
	}
	returns := make([]float64, len(periods))
	for i, p := range periods {
		returns[i] = float64(p.ReturnPct)
	}
	d.AvgReturnPct = Percent(stat.Mean(returns, nil))
	return d
}

// DailyReturns returns the flow-adjusted return of every trading day of r
// against the previous close.
func DailyReturns(values, flows *Series, r date.Range) []SubPeriod {
	return subPeriods(values, flows, r, true)
}

// Metric compares the portfolio to the benchmark over a trailing window.
type Metric struct {
	PortfolioReturn Percent `json:"portfolio_return"`
	SPYReturn       Percent `json:"spy_return"`
	Outperformance  Percent `json:"outperformance"`
}

// TrailingWindows are the trailing windows of the performance metrics, in days.
var TrailingWindows = []struct {
	Name string
	Days int
}{
	{"1M", 30},
	{"3M", 90},
	{"6M", 180},
	{"1Y", 365},
}

// NamedMetric is a Metric over the window called Name.
type NamedMetric struct {
	Name string
	Metric
}

// Metrics holds the metrics in window order.
type Metrics []NamedMetric

// Get returns the metric of the window called name.
func (m Metrics) Get(name string) (Metric, bool) {
	for _, nm := range m {
		if nm.Name == name {
			return nm.Metric, true
		}
	}
	return Metric{}, false
}

// MarshalJSON writes metrics as an object keyed by window name, in window order.
func (m Metrics) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	for _, nm := range m {
		w.Append(nm.Name, nm.Metric)
	}
	return w.MarshalJSON()
}

// TrailingMetrics computes the portfolio TWR and the benchmark price return
// over each trailing window ending on end. Windows starting before the first
// activity are skipped.
func TrailingMetrics(values, flows, benchmark *Series, firstActivity, end date.Date) Metrics {
	res := Metrics{}
	for _, w := range TrailingWindows {
		r := date.NewRange(end.Add(-w.Days), end)
		if r.From.Before(firstActivity) {
			continue
		}
		twr, ok := TimeWeightedReturn(values, flows, r)
		if !ok {
			continue
		}
		spy := priceReturn(benchmark, r)
		res = append(res, NamedMetric{Name: w.Name, Metric: Metric{
			PortfolioReturn: twr.TWRPct.Round(),
			SPYReturn:       spy.Round(),
			Outperformance:  (twr.TWRPct - spy).Round(),
		}})
	}
	return res
}

// priceReturn is the simple return of a price series over r, NaN when unknown.
func priceReturn(prices *Series, r date.Range) Percent {
	if prices == nil {
		return Percent(math.NaN())
	}
	start, ok1 := prices.ValueAsOf(r.From)
	end, ok2 := prices.ValueAsOf(r.To)
	if !ok1 || !ok2 || start.IsZero() {
		return Percent(math.NaN())
	}
	return PercentOf(end.Ratio(start).Sub(decimal.NewFromInt(1)))
}

var _ json.Marshaler = Metrics(nil)
