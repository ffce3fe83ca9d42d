package tickker

import (
	"math"
	"slices"

	"github.com/sohumt123/Tickker/date"
)

// ValueAsOf returns the market value of positions on a given day: for each held
// symbol, shares times the latest closing price on or before that day.
//
// A symbol without any price yet contributes zero and is reported as a
// *MissingPriceDataError.
func ValueAsOf(positions Positions, prices Prices, on date.Date) (Money, Warnings) {
	var total Money
	var warnings Warnings
	for _, symbol := range positions.Symbols() {
		price, ok := prices.PriceAsOf(symbol, on)
		if !ok {
			warnings.Add(&MissingPriceDataError{Symbol: symbol, Date: on})
			continue
		}
		total = total.Add(price.Mul(positions[symbol]))
	}
	return total, warnings
}

// Valuation is the daily market value of a ledger.
type Valuation struct {
	Values   *Series // one point per trading day
	Warnings Warnings
}

// ValueSeries values the ledger on every trading day of r. Positions are
// folded incrementally. Each symbol missing a price is reported once, on the
// first day it was needed, and each ledger anomaly once.
func ValueSeries(ledger *Ledger, prices Prices, r date.Range) *Valuation {
	v := &Valuation{Values: new(Series)}
	b := newPositionBuilder(ledger)
	missing := make(map[string]bool)
	for day := range r.TradingDays() {
		b.advance(day)
		var total Money
		for symbol, shares := range b.shares {
			price, ok := prices.PriceAsOf(symbol, day)
			if !ok {
				if !missing[symbol] {
					missing[symbol] = true
					v.Warnings.Add(&MissingPriceDataError{Symbol: symbol, Date: day})
				}
				continue
			}
			total = total.Add(price.Mul(shares))
		}
		v.Values.Append(day, total)
	}
	v.Warnings.Add(b.anomalies...)
	return v
}

// Holding is the detail of a single position.
type Holding struct {
	Symbol      string   `json:"symbol"`
	Shares      Quantity `json:"shares"`
	Price       Money    `json:"price"` // zero when unknown
	Value       Money    `json:"value"`
	Weight      Percent  `json:"weight_pct"`    // share of the total value
	CostBasis   Money    `json:"cost_basis"`    // total cost of the held shares
	GainLossPct Percent  `json:"gain_loss_pct"` // NaN without a price or a cost
}

// Holdings returns the valued positions of the ledger on a given day, sorted by symbol.
func Holdings(ledger *Ledger, prices Prices, on date.Date) ([]Holding, Money, Warnings) {
	b := newPositionBuilder(ledger)
	b.advance(on)
	positions, warnings := b.positions(), slices.Clone(b.anomalies)
	total, missing := ValueAsOf(positions, prices, on)
	warnings.Add(missing...)
	res := make([]Holding, 0, len(positions))
	for _, symbol := range positions.Symbols() {
		h := Holding{
			Symbol:      symbol,
			Shares:      positions[symbol],
			CostBasis:   b.cost[symbol],
			GainLossPct: Percent(math.NaN()),
		}
		if price, ok := prices.PriceAsOf(symbol, on); ok {
			h.Price = price
			h.Value = price.Mul(h.Shares)
			if h.CostBasis.IsPositive() {
				h.GainLossPct = PercentOf(h.Value.Sub(h.CostBasis).Ratio(h.CostBasis))
			}
		}
		if total.IsPositive() {
			h.Weight = PercentOf(h.Value.Ratio(total))
		}
		res = append(res, h)
	}
	return res, total, warnings
}

// HistoryPoint is the value of a portfolio and the benchmark close on a trading day.
type HistoryPoint struct {
	Date           date.Date `json:"date"`
	TotalValue     Money     `json:"total_value"`
	BenchmarkPrice Money     `json:"spy_price"` // zero before the first benchmark close
}

// History zips the daily values of a portfolio with the benchmark closes
// carried forward, over the trading days of r.
func History(values, benchmark *Series, r date.Range) []HistoryPoint {
	aligned := Align(benchmark, r)
	res := []HistoryPoint{}
	for day, v := range values.Between(r).Values() {
		p := HistoryPoint{Date: day, TotalValue: v}
		p.BenchmarkPrice, _ = aligned.Get(day)
		res = append(res, p)
	}
	return res
}

// Align projects a price series on the trading days of r, carrying the last
// known value forward. Days before the first known value are omitted.
func Align(s *Series, r date.Range) *Series {
	res := new(Series)
	if s == nil {
		return res
	}
	for day := range r.TradingDays() {
		if v, ok := s.ValueAsOf(day); ok {
			res.Append(day, v)
		}
	}
	return res
}
