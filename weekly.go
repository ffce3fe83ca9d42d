package tickker

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/sohumt123/Tickker/date"
)

// UserID identifies a user.
type UserID int64

// Member is a group member with their ledger.
type Member struct {
	UserID UserID
	Ledger *Ledger
}

// Note is a research note (and rating) a member posted in a group.
type Note struct {
	UserID    UserID    `json:"user_id"`
	Symbol    string    `json:"symbol"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// SymbolMove is the price change of a symbol over the week.
type SymbolMove struct {
	Symbol    string  `json:"symbol"`
	ChangePct Percent `json:"change_pct"`
}

// WeeklyBadges holds the badges of a member and their best and worst symbols.
type WeeklyBadges struct {
	Badges        []Badge     `json:"badges"`
	BiggestGainer *SymbolMove `json:"biggest_gainer"`
	BiggestLoser  *SymbolMove `json:"biggest_loser"`
}

// LeaderboardRow is the weekly result of a member.
type LeaderboardRow struct {
	UserID       UserID       `json:"user_id"`
	TWRPct       Percent      `json:"twr_pct"`
	GainUSD      Money        `json:"gain_usd"`
	WeeklyBadges WeeklyBadges `json:"weekly_badges"`
}

// Leaderboard ranks the members of a group over a week.
type Leaderboard struct {
	Week string           `json:"week"`
	Rows []LeaderboardRow `json:"leaderboard"`
}

// WeeklyInput holds everything needed to rank a group over a week.
type WeeklyInput struct {
	Week      date.Range // Monday to Sunday
	Members   []Member
	Prices    Prices  // prices of every symbol held by any member
	Benchmark *Series // benchmark closing prices
	Notes     []Note
}

// memberWeek is the weekly computation of a single member.
type memberWeek struct {
	row       LeaderboardRow
	values    *Series
	flows     *Series
	daily     []SubPeriod
	trade     Transaction // largest transaction of the week
	positions Positions   // at week end
	builder   *positionBuilder
}

// lookback is how far before the week valuations are needed, for the
// opening close and the one month bull run.
const lookback = 40

// WeeklyLeaderboard computes each member's time-weighted return and
// contribution-adjusted gain over the week, ranks them by return (ties by
// ascending user id) and assigns the group badges.
//
// The opening value is the close before Monday. Members without any
// transaction are skipped and reported in the warnings.
func WeeklyLeaderboard(in WeeklyInput) (*Leaderboard, Warnings) {
	var warnings Warnings
	members := slices.SortedFunc(slices.Values(in.Members), func(a, b Member) int { return cmp.Compare(a.UserID, b.UserID) })

	window := date.NewRange(in.Week.From.Add(-1), in.Week.To) // opens on Sunday, valued at Friday's close
	valued := date.NewRange(in.Week.From.Add(-lookback), in.Week.To)

	weeks := make([]*memberWeek, 0, len(members))
	for _, m := range members {
		if m.Ledger == nil || m.Ledger.Len() == 0 {
			warnings.Add(fmt.Errorf("user %d skipped: %w", m.UserID, ErrNoTransactions))
			continue
		}
		v := ValueSeries(m.Ledger, in.Prices, valued)
		for _, w := range v.Warnings {
			warnings.Add(fmt.Errorf("user %d: %w", m.UserID, w))
		}
		mw := &memberWeek{
			values: v.Values,
			flows:  m.Ledger.Flows(),
		}
		twr, _ := TimeWeightedReturn(mw.values, mw.flows, window)
		mw.row = LeaderboardRow{
			UserID:       m.UserID,
			TWRPct:       twr.TWRPct.Round(),
			GainUSD:      ComputeNetReturn(mw.values, mw.flows, window).Gain(),
			WeeklyBadges: WeeklyBadges{Badges: []Badge{}},
		}
		mw.daily = DailyReturns(mw.values, mw.flows, window)
		for _, tx := range m.Ledger.Transactions(Within(in.Week)) {
			if tx.Size().GreaterThan(mw.trade.Size()) {
				mw.trade = tx
			}
		}
		mw.builder = newPositionBuilder(m.Ledger)
		mw.builder.advance(window.From)
		opening := mw.builder.positions()
		mw.builder.advance(in.Week.To)
		mw.positions = mw.builder.positions()
		mw.row.WeeklyBadges.BiggestGainer, mw.row.WeeklyBadges.BiggestLoser = symbolMoves(opening, mw.positions, in.Prices, window)
		weeks = append(weeks, mw)
	}

	assignBadges(weeks, in, window)

	lb := &Leaderboard{Week: in.Week.Identifier(), Rows: make([]LeaderboardRow, 0, len(weeks))}
	for _, mw := range weeks {
		lb.Rows = append(lb.Rows, mw.row)
	}
	slices.SortStableFunc(lb.Rows, func(a, b LeaderboardRow) int {
		if c := cmp.Compare(b.TWRPct, a.TWRPct); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	return lb, warnings
}

// symbolMoves returns the held symbols with the highest positive and the
// lowest negative price change over the window, nil when there is none.
func symbolMoves(opening, closing Positions, prices Prices, window date.Range) (gainer, loser *SymbolMove) {
	held := make(map[string]bool)
	for s := range opening {
		held[s] = true
	}
	for s := range closing {
		held[s] = true
	}
	var best, worst *SymbolMove
	symbols := make([]string, 0, len(held))
	for s := range held {
		symbols = append(symbols, s)
	}
	slices.Sort(symbols)
	for _, symbol := range symbols {
		change := priceReturn(prices[symbol], window)
		if math.IsNaN(float64(change)) {
			continue // price unknown
		}
		move := &SymbolMove{Symbol: symbol, ChangePct: change.Round()}
		if best == nil || move.ChangePct > best.ChangePct {
			best = move
		}
		if worst == nil || move.ChangePct < worst.ChangePct {
			worst = move
		}
	}
	if best != nil && best.ChangePct > 0 {
		gainer = best
	}
	if worst != nil && worst.ChangePct < 0 {
		loser = worst
	}
	return gainer, loser
}
