package tickker

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/sohumt123/Tickker/date"
)

// DefaultBaselineAmount is the amount every compared series is rebased to.
var DefaultBaselineAmount = USD(10000)

// MaxBaselineYears bounds how far back a baseline can be.
const MaxBaselineYears = 10

// NamedSeries is a value series to compare, Name is its key in the comparison.
type NamedSeries struct {
	Name   string
	Values *Series
}

// SymbolKey returns the comparison key of a custom symbol.
func SymbolKey(symbol string) string { return strings.ToLower(symbol) }

// ComparisonPoint holds the rebased values of all series on a day, in the
// order of Comparison.Names.
type ComparisonPoint struct {
	Date   date.Date
	Values []Money
}

// Comparison is a set of series aligned on the same trading days and rebased
// to the same amount on the same baseline date.
type Comparison struct {
	Baseline date.Date
	Amount   Money
	Names    []string
	Points   []ComparisonPoint
}

// Series returns the rebased series called name, or nil.
func (c *Comparison) Series(name string) *Series {
	for i, n := range c.Names {
		if n != name {
			continue
		}
		s := new(Series)
		for _, p := range c.Points {
			s.Append(p.Date, p.Values[i])
		}
		return s
	}
	return nil
}

// MarshalJSON writes the points as a list of objects keyed by date then each
// series name, in order.
func (c *Comparison) MarshalJSON() ([]byte, error) {
	points := make([]json.RawMessage, 0, len(c.Points))
	for _, p := range c.Points {
		var w jsonObjectWriter
		w.Append("date", p.Date)
		for i, name := range c.Names {
			w.Append(name, p.Values[i])
		}
		data, err := w.MarshalJSON()
		if err != nil {
			return nil, err
		}
		points = append(points, data)
	}
	return json.Marshal(points)
}

// Normalize rebases every series so that its value on baseline is exactly
// amount, and aligns them on the trading days from baseline to the latest
// date of any series, carrying values forward.
//
// A baseline on a non-trading day uses the previous trading day. A series
// whose first non-zero value comes after the baseline is held flat at amount
// until that day, then scaled by amount over that first value.
//
// It fails with *InvalidBaselineError when a series is zero on the baseline
// after its first activity, has no non-zero value at all, or when the
// baseline is after all data.
func Normalize(series []NamedSeries, baseline date.Date, amount Money) (*Comparison, error) {
	if amount.IsZero() {
		amount = DefaultBaselineAmount
	}
	if baseline.IsZero() {
		return nil, &InvalidBaselineError{Reason: "baseline date is required"}
	}
	baseline = baseline.PreviousTradingDay()

	series = slices.Clone(series)
	for i, s := range series {
		if s.Values == nil {
			series[i].Values = new(Series)
		}
	}
	var end date.Date
	for _, s := range series {
		if last, _ := s.Values.Latest(); last.After(end) {
			end = last
		}
	}
	if end.Before(baseline) {
		return nil, &InvalidBaselineError{Date: baseline, Reason: fmt.Sprintf("after all data, latest is %s", end)}
	}

	type scaler struct {
		values *Series
		first  date.Date // first non-zero day
		base   Money
	}
	scalers := make([]scaler, len(series))
	names := make([]string, len(series))
	for i, s := range series {
		names[i] = s.Name
		first, firstValue, ok := firstNonZero(s.Values)
		if !ok {
			return nil, &InvalidBaselineError{Date: baseline, Series: s.Name, Reason: "series has no non-zero value"}
		}
		sc := scaler{values: s.Values, first: first, base: firstValue}
		if !first.After(baseline) {
			v, _ := s.Values.ValueAsOf(baseline)
			if v.IsZero() {
				return nil, &InvalidBaselineError{Date: baseline, Series: s.Name, Reason: "value at baseline is zero"}
			}
			sc.base = v
		}
		scalers[i] = sc
	}

	c := &Comparison{Baseline: baseline, Amount: amount, Names: names}
	for day := range date.NewRange(baseline, end).TradingDays() {
		p := ComparisonPoint{Date: day, Values: make([]Money, len(scalers))}
		for i, sc := range scalers {
			if day.Before(sc.first) {
				p.Values[i] = amount
				continue
			}
			v, _ := sc.values.ValueAsOf(day)
			p.Values[i] = v.Scale(amount, sc.base)
		}
		c.Points = append(c.Points, p)
	}
	return c, nil
}

// Renormalize rebases an existing comparison, rebasing twice on the same
// baseline gives the same comparison.
func (c *Comparison) Renormalize(baseline date.Date, amount Money) (*Comparison, error) {
	series := make([]NamedSeries, len(c.Names))
	for i, name := range c.Names {
		series[i] = NamedSeries{Name: name, Values: c.Series(name)}
	}
	return Normalize(series, baseline, amount)
}

func firstNonZero(s *Series) (date.Date, Money, bool) {
	for d, v := range s.Values() {
		if !v.IsZero() {
			return d, v, true
		}
	}
	return date.Date{}, Money{}, false
}

// ClampBaseline returns a usable baseline: an unset baseline or one after
// today falls back to start, one more than MaxBaselineYears before today is
// moved forward. Weekends move back to the previous Friday.
func ClampBaseline(baseline, start, today date.Date) date.Date {
	if baseline.IsZero() || baseline.After(today) {
		baseline = start
	}
	if oldest := date.New(today.Year()-MaxBaselineYears, today.Month(), today.Day()); baseline.Before(oldest) {
		baseline = oldest
	}
	return baseline.PreviousTradingDay()
}
