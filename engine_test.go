package tickker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sohumt123/Tickker/date"
)

// fakeTransactions serves transactions per user, failing for users in failing.
type fakeTransactions struct {
	ledgers map[UserID][]Transaction
	failing map[UserID]bool
}

func (f fakeTransactions) Transactions(ctx context.Context, user UserID) ([]Transaction, error) {
	if f.failing[user] {
		return nil, errors.New("database unavailable")
	}
	return f.ledgers[user], nil
}

type fakeGroups struct {
	members map[GroupID][]UserID
	notes   map[GroupID][]Note
}

func (f fakeGroups) GroupMembers(ctx context.Context, group GroupID) ([]UserID, error) {
	ids, ok := f.members[group]
	if !ok {
		return nil, errors.New("no such group")
	}
	return ids, nil
}

func (f fakeGroups) GroupNotes(ctx context.Context, group GroupID, week date.Range) ([]Note, error) {
	return f.notes[group], nil
}

func testEngine(today date.Date, txs fakeTransactions, groups fakeGroups, prices PriceTable) *Engine {
	e := NewEngine(txs, groups, prices, zerolog.Nop())
	e.Today = func() date.Date { return today }
	return e
}

func appleEngine() *Engine {
	l, _ := appleLedger()
	var txs []Transaction
	for _, tx := range l.Transactions() {
		txs = append(txs, tx)
	}
	prices := PriceTable{}.
		Set("AAPL", map[date.Date]float64{
			day(2024, time.January, 2): 150,
			day(2024, time.June, 1):    200,
		}).
		Set("SPY", map[date.Date]float64{
			day(2023, time.June, 1):    400,
			day(2024, time.January, 2): 470,
			day(2024, time.June, 3):    517,
		}).
		Set("MSFT", map[date.Date]float64{
			day(2024, time.January, 2): 400,
			day(2024, time.June, 3):    300,
		})
	return testEngine(day(2024, time.June, 3), fakeTransactions{ledgers: map[UserID][]Transaction{1: txs}}, fakeGroups{}, prices)
}

func TestEngine_Comparison(t *testing.T) {
	e := appleEngine()
	resp, err := e.Comparison(context.Background(), 1, ComparisonRequest{Symbols: []string{" msft", "MSFT", "zzz"}})
	if err != nil {
		t.Fatalf("Comparison() unexpected error: %v", err)
	}
	if got, want := resp.Baseline, day(2024, time.January, 2); got != want {
		t.Errorf("Baseline = %v, want %v", got, want)
	}
	c := resp.Comparison
	if got, want := len(c.Names), 3; got != want {
		t.Fatalf("Names = %v, want portfolio, spy and msft", c.Names)
	}
	end := day(2024, time.June, 3)
	testCases := []struct {
		name string
		want Money
	}{
		{"portfolio", USD(13333.33)},
		{"spy", USD(11000)},
		{"msft", USD(7500)},
	}
	for _, tc := range testCases {
		s := c.Series(tc.name)
		if s == nil {
			t.Errorf("Comparison() has no %s series", tc.name)
			continue
		}
		if got := valueOn(s, end).Round(); !got.Equal(tc.want) {
			t.Errorf("%s on %v = %v, want %v", tc.name, end, got, tc.want)
		}
	}
	if !resp.Degraded {
		t.Errorf("Comparison() not degraded for an unknown symbol")
	}
	var missing *MissingPriceDataError
	if len(resp.Warnings) != 1 || !errors.As(resp.Warnings[0], &missing) || missing.Symbol != "ZZZ" {
		t.Errorf("Comparison() warnings = %v, want one MissingPriceDataError for ZZZ", resp.Warnings)
	}
}

func TestEngine_NoTransactions(t *testing.T) {
	e := appleEngine()
	if _, err := e.Comparison(context.Background(), 42, ComparisonRequest{}); !errors.Is(err, ErrNoTransactions) {
		t.Errorf("Comparison() error = %v, want ErrNoTransactions", err)
	}
	if _, err := e.Performance(context.Background(), 42, date.Date{}); !errors.Is(err, ErrNoTransactions) {
		t.Errorf("Performance() error = %v, want ErrNoTransactions", err)
	}
}

func TestEngine_Performance(t *testing.T) {
	e := appleEngine()
	resp, err := e.Performance(context.Background(), 1, date.Date{})
	if err != nil {
		t.Fatalf("Performance() unexpected error: %v", err)
	}
	if resp.TWR == nil {
		t.Fatalf("Performance() has no TWR")
	}
	// the dividend is paid out of the portfolio: (1500+5)/1500 then 2000/1500.
	if want := Percent(33.78); !resp.TWR.TWRPct.Round().Equal(want) {
		t.Errorf("TWR = %v, want %v", resp.TWR.TWRPct, want)
	}
	if want := USD(505); !resp.Net.NetProfit.Equal(want) {
		t.Errorf("NetProfit = %v, want %v", resp.Net.NetProfit, want)
	}
	if got := len(resp.DepositAvg.Periods); got != 2 {
		t.Errorf("DepositAvg has %d periods, want 2", got)
	}
	if got := len(resp.Metrics); got != 2 {
		t.Errorf("Metrics = %v, want 1M and 3M only", resp.Metrics)
	}
	if m, ok := resp.Metrics.Get("1M"); !ok || !m.PortfolioReturn.Equal(33.33) {
		t.Errorf("1M metric = %+v, want 33.33%%", m)
	}
}

func TestEngine_NetReturn(t *testing.T) {
	e := appleEngine()
	resp, err := e.NetReturn(context.Background(), 1, date.NewRange(day(2024, time.February, 1), date.Date{}))
	if err != nil {
		t.Fatalf("NetReturn() unexpected error: %v", err)
	}
	if got, want := resp.EndDate, day(2024, time.June, 3); got != want {
		t.Errorf("EndDate = %v, want today %v", got, want)
	}
	if want := USD(500); !resp.NetProfit.Equal(want) {
		t.Errorf("NetProfit = %v, want %v", resp.NetProfit, want)
	}

	// Saturday: valued at Friday's close.
	resp, err = e.NetReturn(context.Background(), 1, date.NewRange(day(2024, time.February, 3), date.Date{}))
	if err != nil {
		t.Fatalf("NetReturn() unexpected error: %v", err)
	}
	if want := USD(1500); !resp.StartValue.Equal(want) {
		t.Errorf("weekend StartValue = %v, want %v", resp.StartValue, want)
	}
	if want := USD(500); !resp.NetProfit.Equal(want) {
		t.Errorf("weekend NetProfit = %v, want %v", resp.NetProfit, want)
	}
	if want := Percent(33.33); !resp.PctOfStart.Round().Equal(want) {
		t.Errorf("weekend PctOfStart = %v, want %v", resp.PctOfStart, want)
	}

	_, err = e.NetReturn(context.Background(), 1, date.NewRange(day(2024, time.March, 1), day(2024, time.February, 1)))
	var invalid *InvalidBaselineError
	if !errors.As(err, &invalid) {
		t.Errorf("NetReturn() error = %v, want an InvalidBaselineError", err)
	}
}

func weeklyEngine() *Engine {
	prices := PriceTable{}
	weekly, spy := weeklyPrices()
	for symbol, s := range weekly {
		prices[symbol] = s
	}
	prices["SPY"] = spy
	txs := fakeTransactions{
		ledgers: map[UserID][]Transaction{
			1: {NewBuy(day(2024, time.January, 2), "XYZ", Q(10), USD(100))},
			2: {
				NewBuy(day(2024, time.January, 2), "XYZ", Q(5), USD(100)),
				NewBuy(day(2024, time.January, 9), "ABC", Q(20), USD(100)),
			},
		},
		failing: map[UserID]bool{3: true},
	}
	groups := fakeGroups{members: map[GroupID][]UserID{10: {2, 3, 1}}}
	return testEngine(day(2024, time.January, 15), txs, groups, prices)
}

func TestEngine_WeeklyLeaderboard(t *testing.T) {
	e := weeklyEngine()
	resp, err := e.WeeklyLeaderboard(context.Background(), 10, week2(t))
	if err != nil {
		t.Fatalf("WeeklyLeaderboard() unexpected error: %v", err)
	}
	if len(resp.Rows) != 2 || resp.Rows[0].UserID != 1 || resp.Rows[1].UserID != 2 {
		t.Fatalf("WeeklyLeaderboard() rows = %+v, want users 1 and 2", resp.Rows)
	}
	if got, want := badgeContext(resp.Rows[0], AlwaysUp), "up every trading day, beat SPY on 2 down days"; got != want {
		t.Errorf("always_up context = %q, want %q", got, want)
	}
	if !resp.Degraded || len(resp.Warnings) != 1 {
		t.Errorf("WeeklyLeaderboard() degraded = %v warnings = %v, want user 3 reported", resp.Degraded, resp.Warnings)
	}

	if _, err := e.WeeklyLeaderboard(context.Background(), 99, week2(t)); err == nil {
		t.Errorf("WeeklyLeaderboard() of an unknown group succeeded")
	}
}

func TestEngine_GroupComparison(t *testing.T) {
	e := weeklyEngine()
	resp, err := e.GroupComparison(context.Background(), 10, date.Date{})
	if err != nil {
		t.Fatalf("GroupComparison() unexpected error: %v", err)
	}
	if got, want := resp.Baseline, day(2024, time.January, 2); got != want {
		t.Errorf("Baseline = %v, want %v", got, want)
	}
	for _, name := range []string{"user_1", "user_2", "spy"} {
		if resp.Comparison.Series(name) == nil {
			t.Errorf("GroupComparison() has no %s series", name)
		}
	}
	if got := valueOn(resp.Comparison.Series("user_1"), day(2024, time.January, 12)); !got.Equal(USD(12500)) {
		t.Errorf("user_1 on 2024-01-12 = %v, want $12,500", got)
	}
}

func TestEngine_History(t *testing.T) {
	e := appleEngine()
	resp, err := e.History(context.Background(), 1, date.NewRange(day(2024, time.January, 2), day(2024, time.January, 5)))
	if err != nil {
		t.Fatalf("History() unexpected error: %v", err)
	}
	if got, want := len(resp.History), 4; got != want {
		t.Fatalf("History() has %d points, want %d", got, want)
	}
	first := resp.History[0]
	if first.Date != day(2024, time.January, 2) || !first.TotalValue.Equal(USD(1500)) || !first.BenchmarkPrice.Equal(USD(470)) {
		t.Errorf("History()[0] = %+v, want 2024-01-02 $1,500 and SPY $470", first)
	}

	// a weekend start, up to today.
	resp, err = e.History(context.Background(), 1, date.NewRange(day(2024, time.June, 1), date.Date{}))
	if err != nil {
		t.Fatalf("History() unexpected error: %v", err)
	}
	if len(resp.History) != 1 {
		t.Fatalf("History() = %+v, want only 2024-06-03", resp.History)
	}
	if got := resp.History[0]; !got.TotalValue.Equal(USD(2000)) || !got.BenchmarkPrice.Equal(USD(517)) {
		t.Errorf("History() on today = %+v, want $2,000 and SPY $517", got)
	}

	if _, err := e.History(context.Background(), 2, date.Range{}); !errors.Is(err, ErrNoTransactions) {
		t.Errorf("History() of an unknown user error = %v, want ErrNoTransactions", err)
	}
}

func TestEngine_Trades(t *testing.T) {
	e := appleEngine()
	resp, err := e.Trades(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("Trades() unexpected error: %v", err)
	}
	if len(resp.Trades) != 2 || resp.Trades[0].Action != Dividend {
		t.Errorf("Trades() = %+v, want the dividend first", resp.Trades)
	}
	resp, _ = e.Trades(context.Background(), 1, 1)
	if len(resp.Trades) != 1 {
		t.Errorf("Trades(limit 1) returned %d transactions", len(resp.Trades))
	}
}

func TestEngine_GroupRanking(t *testing.T) {
	e := weeklyEngine()
	resp, err := e.GroupRanking(context.Background(), 10, date.Date{})
	if err != nil {
		t.Fatalf("GroupRanking() unexpected error: %v", err)
	}
	if len(resp.Rows) != 2 || resp.Rows[0].UserID != 1 || resp.Rows[1].UserID != 2 {
		t.Fatalf("GroupRanking() rows = %+v, want users 1 and 2", resp.Rows)
	}
	if got := resp.Rows[0]; !got.ReturnPct.Equal(25) || !got.GainUSD.Equal(USD(250)) || got.Since != day(2024, time.January, 2) {
		t.Errorf("user 1 = %+v, want +25%% and $250 since 2024-01-02", got)
	}
	if got := resp.Rows[1]; !got.ReturnPct.Equal(12.77) || !got.GainUSD.Equal(USD(25)) {
		t.Errorf("user 2 = %+v, want +12.77%% and $25", got)
	}
	if !resp.Degraded || len(resp.Warnings) != 1 {
		t.Errorf("GroupRanking() degraded = %v warnings = %v, want user 3 reported", resp.Degraded, resp.Warnings)
	}

	resp, err = e.GroupRanking(context.Background(), 10, day(2024, time.January, 9))
	if err != nil {
		t.Fatalf("GroupRanking() unexpected error: %v", err)
	}
	if got := resp.Rows[1]; got.UserID != 2 || !got.ReturnPct.Equal(-1.94) || got.Since != day(2024, time.January, 9) {
		t.Errorf("user 2 since 2024-01-09 = %+v, want -1.94%%", got)
	}
}
