package tickker

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/sohumt123/Tickker/date"
)

// RankingRow is the return of a member since a baseline.
type RankingRow struct {
	UserID    UserID    `json:"user_id"`
	Since     date.Date `json:"since"`
	ReturnPct Percent   `json:"return_pct"`
	GainUSD   Money     `json:"gain_usd"`
}

// RankSince ranks members by their time-weighted return from baseline to
// today, ties by ascending user id. Each member's baseline is clamped on
// their own first activity, so an unset baseline compares every member since
// they started.
//
// Members without transactions, or never valued over the range, are skipped
// and reported in the warnings.
func RankSince(members []Member, prices Prices, baseline, today date.Date) ([]RankingRow, Warnings) {
	var warnings Warnings
	rows := []RankingRow{}
	for _, m := range members {
		if m.Ledger == nil || m.Ledger.Len() == 0 {
			warnings.Add(fmt.Errorf("user %d skipped: %w", m.UserID, ErrNoTransactions))
			continue
		}
		first := start(m.Ledger)
		since := ClampBaseline(baseline, first, today)
		r := date.NewRange(since, today)
		v := ValueSeries(m.Ledger, prices, date.NewRange(minDate(since, first), today))
		for _, w := range v.Warnings {
			warnings.Add(fmt.Errorf("user %d: %w", m.UserID, w))
		}
		flows := m.Ledger.Flows()
		twr, ok := TimeWeightedReturn(v.Values, flows, r)
		if !ok {
			warnings.Add(fmt.Errorf("user %d skipped: no value since %s", m.UserID, since))
			continue
		}
		rows = append(rows, RankingRow{
			UserID:    m.UserID,
			Since:     since,
			ReturnPct: twr.TWRPct.Round(),
			GainUSD:   ComputeNetReturn(v.Values, flows, r).Gain(),
		})
	}
	slices.SortStableFunc(rows, func(a, b RankingRow) int {
		if c := cmp.Compare(b.ReturnPct, a.ReturnPct); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	return rows, warnings
}
