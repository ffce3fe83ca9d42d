package tickker

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sohumt123/Tickker/date"
)

// GroupID identifies a group of users.
type GroupID int64

// TransactionSource returns the transactions of a user.
type TransactionSource interface {
	Transactions(ctx context.Context, user UserID) ([]Transaction, error)
}

// GroupSource returns group members and notes.
type GroupSource interface {
	GroupMembers(ctx context.Context, group GroupID) ([]UserID, error)
	GroupNotes(ctx context.Context, group GroupID, week date.Range) ([]Note, error)
}

// DefaultBenchmark is the symbol portfolios are compared to.
const DefaultBenchmark = "SPY"

// Engine computes performance outputs from its sources.
//
// Every method is independent and read only, an Engine can serve concurrent
// requests.
type Engine struct {
	Transactions TransactionSource
	Groups       GroupSource
	Prices       PriceSource
	Benchmark    string // defaults to DefaultBenchmark
	Fetch        FetchOptions
	Log          zerolog.Logger
	Today        func() date.Date // defaults to date.Today
}

// NewEngine returns an engine with default settings.
func NewEngine(txs TransactionSource, groups GroupSource, prices PriceSource, log zerolog.Logger) *Engine {
	return &Engine{
		Transactions: txs,
		Groups:       groups,
		Prices:       prices,
		Benchmark:    DefaultBenchmark,
		Log:          log.With().Str("component", "engine").Logger(),
		Today:        date.Today,
	}
}

func (e *Engine) today() date.Date {
	if e.Today == nil {
		return date.Today()
	}
	return e.Today()
}

func (e *Engine) benchmark() string {
	if e.Benchmark == "" {
		return DefaultBenchmark
	}
	return e.Benchmark
}

// Report holds the recoverable issues met while computing a response.
type Report struct {
	Warnings Warnings `json:"warnings"`
	Degraded bool     `json:"degraded"`
}

func (r *Report) add(res *FetchResult) {
	r.Warnings.Add(res.Warnings...)
	r.Degraded = r.Degraded || res.Degraded
}

// ledger loads the ledger of user, ErrNoTransactions when empty.
func (e *Engine) ledger(ctx context.Context, user UserID) (*Ledger, error) {
	txs, err := e.Transactions.Transactions(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("loading transactions of user %d: %w", user, err)
	}
	if len(txs) == 0 {
		return nil, fmt.Errorf("user %d: %w", user, ErrNoTransactions)
	}
	return NewLedger(txs...), nil
}

// start returns the first activity of the ledger, or its first transaction.
func start(l *Ledger) date.Date {
	if d, ok := l.FirstActivity(); ok {
		return d
	}
	return l.FirstDate()
}

// fetch fetches symbols over r. Prices starting a week earlier are requested
// so that the first days can be carried forward.
func (e *Engine) fetch(ctx context.Context, symbols []string, r date.Range) *FetchResult {
	ctx = e.Log.WithContext(ctx)
	symbols = slices.Compact(slices.Sorted(slices.Values(symbols)))
	return FetchPrices(ctx, e.Prices, symbols, date.NewRange(r.From.Add(-7), r.To), e.Fetch)
}

func (e *Engine) logWarnings(user UserID, w Warnings) {
	for _, err := range w {
		e.Log.Warn().Int64("user_id", int64(user)).Err(err).Msg("degraded computation")
	}
}

// ComparisonRequest selects the baseline and custom symbols of a comparison.
type ComparisonRequest struct {
	Baseline date.Date // defaults to the first activity
	Symbols  []string  // extra symbols to compare
	Amount   Money     // defaults to DefaultBaselineAmount
}

// ComparisonResponse is the growth of the baseline amount for the portfolio,
// the benchmark and custom symbols.
type ComparisonResponse struct {
	Comparison *Comparison `json:"comparison"`
	Baseline   date.Date   `json:"baseline_date"`
	Report
}

// Comparison rebases the user's portfolio, the benchmark and requested
// symbols to the same amount on the baseline.
func (e *Engine) Comparison(ctx context.Context, user UserID, req ComparisonRequest) (*ComparisonResponse, error) {
	l, err := e.ledger(ctx, user)
	if err != nil {
		return nil, err
	}
	today := e.today()
	first := start(l)
	baseline := ClampBaseline(req.Baseline, first, today)
	r := date.NewRange(minDate(baseline, first), today)

	bench := e.benchmark()
	custom := make([]string, 0, len(req.Symbols))
	for _, s := range req.Symbols {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" && s != bench && !slices.Contains(custom, s) {
			custom = append(custom, s)
		}
	}
	fetched := e.fetch(ctx, slices.Concat(l.Symbols(), []string{bench}, custom), r)
	resp := &ComparisonResponse{Baseline: baseline}
	resp.add(fetched)

	v := ValueSeries(l, fetched.Prices, r)
	resp.Warnings.Add(v.Warnings...)
	series := []NamedSeries{{Name: "portfolio", Values: v.Values}}
	for _, s := range append([]string{bench}, custom...) {
		aligned := Align(fetched.Prices[s], r)
		if aligned.Len() == 0 {
			resp.Warnings.Add(&MissingPriceDataError{Symbol: s})
			resp.Degraded = true
			continue
		}
		series = append(series, NamedSeries{Name: SymbolKey(s), Values: aligned})
	}
	c, err := normalize(series, baseline, req.Amount, "portfolio", &resp.Report)
	if err != nil {
		return nil, err
	}
	resp.Comparison = c
	e.logWarnings(user, resp.Warnings)
	return resp, nil
}

// PerformanceResponse holds trailing metrics, TWR, net and deposit-averaged
// returns from the baseline up to today.
type PerformanceResponse struct {
	Metrics    Metrics         `json:"metrics"`
	TWR        *TWRStats       `json:"twr,omitempty"`
	Net        NetReturn       `json:"net"`
	DepositAvg DepositAveraged `json:"deposit_avg"`
	Report
}

// Performance computes returns of the user's portfolio from baseline (first
// activity when unset) to today.
func (e *Engine) Performance(ctx context.Context, user UserID, baseline date.Date) (*PerformanceResponse, error) {
	l, err := e.ledger(ctx, user)
	if err != nil {
		return nil, err
	}
	today := e.today()
	first := start(l)
	baseline = ClampBaseline(baseline, first, today)
	// trailing windows reach back a year.
	valued := date.NewRange(minDate(baseline, minDate(first, today.Add(-366))), today)
	bench := e.benchmark()
	fetched := e.fetch(ctx, append(l.Symbols(), bench), valued)
	resp := &PerformanceResponse{}
	resp.add(fetched)

	v := ValueSeries(l, fetched.Prices, valued)
	resp.Warnings.Add(v.Warnings...)
	flows := l.Flows()
	r := date.NewRange(baseline, today)
	if twr, ok := TimeWeightedReturn(v.Values, flows, r); ok {
		resp.TWR = &twr
	}
	resp.Net = ComputeNetReturn(v.Values, flows, r)
	resp.DepositAvg = ComputeDepositAveraged(v.Values, flows, r)
	resp.Metrics = TrailingMetrics(v.Values, flows, fetched.Prices[bench], first, today)
	e.logWarnings(user, resp.Warnings)
	return resp, nil
}

// NetReturnResponse is the net return with its report.
type NetReturnResponse struct {
	NetReturn
	Report
}

// NetReturn computes the contribution-adjusted return over r. An unset start
// is the first activity, an unset end is today.
func (e *Engine) NetReturn(ctx context.Context, user UserID, r date.Range) (*NetReturnResponse, error) {
	l, err := e.ledger(ctx, user)
	if err != nil {
		return nil, err
	}
	if r.From.IsZero() {
		r.From = start(l)
	}
	if r.To.IsZero() {
		r.To = e.today()
	}
	if r.To.Before(r.From) {
		return nil, &InvalidBaselineError{Date: r.From, Reason: fmt.Sprintf("start is after end %s", r.To)}
	}
	fetched := e.fetch(ctx, l.Symbols(), r)
	resp := &NetReturnResponse{}
	resp.add(fetched)
	// a weekend start is valued at the previous close.
	v := ValueSeries(l, fetched.Prices, date.NewRange(r.From.PreviousTradingDay(), r.To))
	resp.Warnings.Add(v.Warnings...)
	resp.NetReturn = ComputeNetReturn(v.Values, l.Flows(), r)
	e.logWarnings(user, resp.Warnings)
	return resp, nil
}

// HoldingsResponse is the valued positions of a user on a day.
type HoldingsResponse struct {
	Date     date.Date `json:"date"`
	Holdings []Holding `json:"holdings"`
	Total    Money     `json:"total"`
	Report
}

// Holdings values the positions of the user on (today when unset).
func (e *Engine) Holdings(ctx context.Context, user UserID, on date.Date) (*HoldingsResponse, error) {
	l, err := e.ledger(ctx, user)
	if err != nil {
		return nil, err
	}
	if on.IsZero() || on.After(e.today()) {
		on = e.today()
	}
	positions, _ := PositionsAsOf(l, on)
	fetched := e.fetch(ctx, positions.Symbols(), date.NewRange(on, on))
	resp := &HoldingsResponse{Date: on}
	resp.add(fetched)
	var warnings Warnings
	resp.Holdings, resp.Total, warnings = Holdings(l, fetched.Prices, on)
	resp.Warnings.Add(warnings...)
	e.logWarnings(user, resp.Warnings)
	return resp, nil
}

// HistoryResponse is the daily value of a portfolio next to the benchmark close.
type HistoryResponse struct {
	Benchmark string         `json:"benchmark"`
	History   []HistoryPoint `json:"history"`
	Report
}

// History returns the daily value of the user's portfolio over r. An unset
// start is the first activity, an unset or future end is today.
func (e *Engine) History(ctx context.Context, user UserID, r date.Range) (*HistoryResponse, error) {
	l, err := e.ledger(ctx, user)
	if err != nil {
		return nil, err
	}
	if r.From.IsZero() {
		r.From = start(l)
	}
	if r.To.IsZero() || r.To.After(e.today()) {
		r.To = e.today()
	}
	if r.To.Before(r.From) {
		return nil, &InvalidBaselineError{Date: r.From, Reason: fmt.Sprintf("start is after end %s", r.To)}
	}
	bench := e.benchmark()
	fetched := e.fetch(ctx, append(l.Symbols(), bench), r)
	resp := &HistoryResponse{Benchmark: bench}
	resp.add(fetched)
	v := ValueSeries(l, fetched.Prices, r)
	resp.Warnings.Add(v.Warnings...)
	resp.History = History(v.Values, fetched.Prices[bench], r)
	e.logWarnings(user, resp.Warnings)
	return resp, nil
}

// DefaultTradesLimit is the number of transactions listed by Trades.
const DefaultTradesLimit = 20

// TradesResponse lists the latest transactions of a user.
type TradesResponse struct {
	Trades []Transaction `json:"trades"`
}

// Trades returns the limit (DefaultTradesLimit when not positive) latest
// transactions of the user, most recent first.
func (e *Engine) Trades(ctx context.Context, user UserID, limit int) (*TradesResponse, error) {
	l, err := e.ledger(ctx, user)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultTradesLimit
	}
	return &TradesResponse{Trades: l.Recent(limit)}, nil
}

// RankingResponse ranks the members of a group since a baseline.
type RankingResponse struct {
	Baseline date.Date    `json:"baseline_date,omitzero"`
	Rows     []RankingRow `json:"leaderboard"`
	Report
}

// GroupRanking ranks the members of group by their return since baseline,
// since each member's first activity when unset.
func (e *Engine) GroupRanking(ctx context.Context, group GroupID, baseline date.Date) (*RankingResponse, error) {
	resp := &RankingResponse{Baseline: baseline}
	members, err := e.members(ctx, group, &resp.Report)
	if err != nil {
		return nil, err
	}
	today := e.today()
	var symbols []string
	from := today
	for _, m := range members {
		if m.Ledger.Len() == 0 {
			continue
		}
		symbols = append(symbols, m.Ledger.Symbols()...)
		first := start(m.Ledger)
		from = minDate(from, minDate(ClampBaseline(baseline, first, today), first))
	}
	fetched := e.fetch(ctx, symbols, date.NewRange(from, today))
	resp.add(fetched)
	var warnings Warnings
	resp.Rows, warnings = RankSince(members, fetched.Prices, baseline, today)
	resp.Warnings.Add(warnings...)
	for _, w := range resp.Warnings {
		e.Log.Warn().Int64("group_id", int64(group)).Err(w).Msg("degraded ranking")
	}
	return resp, nil
}

// members loads the ledgers of all members of group with bounded
// concurrency. Members that fail to load are reported and skipped.
func (e *Engine) members(ctx context.Context, group GroupID, report *Report) ([]Member, error) {
	ids, err := e.Groups.GroupMembers(ctx, group)
	if err != nil {
		return nil, fmt.Errorf("loading members of group %d: %w", group, err)
	}
	members := make([]Member, len(ids))
	errs := make([]error, len(ids))
	var g errgroup.Group
	g.SetLimit(max(e.Fetch.Concurrency, DefaultFetchConcurrency))
	for i, id := range ids {
		g.Go(func() error {
			members[i].UserID = id
			txs, err := e.Transactions.Transactions(ctx, id)
			if err != nil {
				errs[i] = fmt.Errorf("loading transactions of user %d: %w", id, err)
				return nil
			}
			members[i].Ledger = NewLedger(txs...)
			return nil
		})
	}
	_ = g.Wait()
	res := members[:0]
	for i, m := range members {
		if errs[i] != nil {
			report.Warnings.Add(errs[i])
			report.Degraded = true
			continue
		}
		res = append(res, m)
	}
	slices.SortFunc(res, func(a, b Member) int { return cmp.Compare(a.UserID, b.UserID) })
	return res, nil
}

// LeaderboardResponse is the weekly leaderboard with its report.
type LeaderboardResponse struct {
	*Leaderboard
	Report
}

// WeeklyLeaderboard ranks the members of group over the week.
func (e *Engine) WeeklyLeaderboard(ctx context.Context, group GroupID, week date.Range) (*LeaderboardResponse, error) {
	resp := &LeaderboardResponse{}
	members, err := e.members(ctx, group, &resp.Report)
	if err != nil {
		return nil, err
	}
	notes, err := e.Groups.GroupNotes(ctx, group, week)
	if err != nil {
		resp.Warnings.Add(fmt.Errorf("loading notes of group %d: %w", group, err))
		resp.Degraded = true
	}
	bench := e.benchmark()
	symbols := []string{bench}
	for _, m := range members {
		symbols = append(symbols, m.Ledger.Symbols()...)
	}
	fetched := e.fetch(ctx, symbols, date.NewRange(week.From.Add(-lookback), week.To))
	resp.add(fetched)
	lb, warnings := WeeklyLeaderboard(WeeklyInput{
		Week:      week,
		Members:   members,
		Prices:    fetched.Prices,
		Benchmark: fetched.Prices[bench],
		Notes:     notes,
	})
	resp.Leaderboard = lb
	resp.Warnings.Add(warnings...)
	for _, w := range resp.Warnings {
		e.Log.Warn().Int64("group_id", int64(group)).Err(w).Msg("degraded leaderboard")
	}
	return resp, nil
}

// MemberKey returns the comparison key of a group member.
func MemberKey(user UserID) string { return fmt.Sprintf("user_%d", user) }

// GroupComparison rebases every member's portfolio and the benchmark to the
// same amount on the baseline (earliest member activity when unset).
func (e *Engine) GroupComparison(ctx context.Context, group GroupID, baseline date.Date) (*ComparisonResponse, error) {
	resp := &ComparisonResponse{}
	members, err := e.members(ctx, group, &resp.Report)
	if err != nil {
		return nil, err
	}
	var first date.Date
	active := members[:0]
	for _, m := range members {
		if m.Ledger.Len() == 0 {
			resp.Warnings.Add(fmt.Errorf("user %d skipped: %w", m.UserID, ErrNoTransactions))
			continue
		}
		active = append(active, m)
		if s := start(m.Ledger); first.IsZero() || s.Before(first) {
			first = s
		}
	}
	if len(active) == 0 {
		return nil, fmt.Errorf("group %d: %w", group, ErrNoTransactions)
	}
	today := e.today()
	baseline = ClampBaseline(baseline, first, today)
	resp.Baseline = baseline
	r := date.NewRange(minDate(baseline, first), today)
	bench := e.benchmark()
	symbols := []string{bench}
	for _, m := range active {
		symbols = append(symbols, m.Ledger.Symbols()...)
	}
	fetched := e.fetch(ctx, symbols, r)
	resp.add(fetched)

	var series []NamedSeries
	for _, m := range active {
		v := ValueSeries(m.Ledger, fetched.Prices, r)
		for _, w := range v.Warnings {
			resp.Warnings.Add(fmt.Errorf("user %d: %w", m.UserID, w))
		}
		series = append(series, NamedSeries{Name: MemberKey(m.UserID), Values: v.Values})
	}
	if aligned := Align(fetched.Prices[bench], r); aligned.Len() > 0 {
		series = append(series, NamedSeries{Name: SymbolKey(bench), Values: aligned})
	} else {
		resp.Warnings.Add(&MissingPriceDataError{Symbol: bench})
		resp.Degraded = true
	}
	c, err := normalize(series, baseline, Money{}, "", &resp.Report)
	if err != nil {
		return nil, err
	}
	resp.Comparison = c
	return resp, nil
}

// normalize rebases series, dropping (and reporting) the series that cannot
// be rebased on baseline, except required whose failure is returned.
func normalize(series []NamedSeries, baseline date.Date, amount Money, required string, report *Report) (*Comparison, error) {
	for {
		c, err := Normalize(series, baseline, amount)
		var invalid *InvalidBaselineError
		if err == nil || !errors.As(err, &invalid) || invalid.Series == "" || invalid.Series == required || len(series) <= 1 {
			return c, err
		}
		report.Warnings.Add(err)
		report.Degraded = true
		series = slices.DeleteFunc(slices.Clone(series), func(s NamedSeries) bool { return s.Name == invalid.Series })
	}
}

func minDate(a, b date.Date) date.Date {
	if b.Before(a) {
		return b
	}
	return a
}
