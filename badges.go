package tickker

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sohumt123/Tickker/date"
)

// BadgeKey identifies a kind of weekly badge.
type BadgeKey string

const (
	LargestTrade BadgeKey = "largest_trade"
	BestSymbol   BadgeKey = "best_symbol"
	WorstSymbol  BadgeKey = "worst_symbol"
	AlwaysUp     BadgeKey = "always_up"
	BestFind     BadgeKey = "best_find"
	Researcher   BadgeKey = "researcher"
	BullRun      BadgeKey = "bull_run"
)

// Badge is a weekly award. Display is up to the client.
type Badge struct {
	Key     BadgeKey `json:"key"`
	Label   string   `json:"label"`
	Emoji   string   `json:"emoji,omitempty"`
	Context string   `json:"context,omitempty"`
}

var badgeDefinitions = map[BadgeKey]Badge{
	LargestTrade: {Key: LargestTrade, Label: "Whale Trade", Emoji: "🐋"},
	BestSymbol:   {Key: BestSymbol, Label: "Rocket Pick", Emoji: "🚀"},
	WorstSymbol:  {Key: WorstSymbol, Label: "Wilted Pick", Emoji: "🥀"},
	AlwaysUp:     {Key: AlwaysUp, Label: "Always Up", Emoji: "📈"},
	BestFind:     {Key: BestFind, Label: "Best Find", Emoji: "💎"},
	Researcher:   {Key: Researcher, Label: "Researcher", Emoji: "🔎"},
	BullRun:      {Key: BullRun, Label: "Bull Run", Emoji: "🐂"},
}

// NewBadge returns the badge key with a context.
func NewBadge(key BadgeKey, context string) Badge {
	b := badgeDefinitions[key]
	b.Context = context
	return b
}

const (
	bestFindThreshold = 10 // percent over the average cost
	bullRunThreshold  = 20 // percent over bullRunDays
	bullRunDays       = 30
)

func (mw *memberWeek) award(b Badge) {
	mw.row.WeeklyBadges.Badges = append(mw.row.WeeklyBadges.Badges, b)
}

// assignBadges assigns group badges (a single winner across the group) then
// member badges. weeks are in ascending user id order, ties go to the lowest
// user id.
func assignBadges(weeks []*memberWeek, in WeeklyInput, window date.Range) {
	// largest_trade
	var whale *memberWeek
	for _, mw := range weeks {
		if mw.trade.Size().IsZero() {
			continue
		}
		if whale == nil || mw.trade.Size().GreaterThan(whale.trade.Size()) {
			whale = mw
		}
	}
	if whale != nil {
		symbol := whale.trade.Symbol
		if IsCashLike(symbol) {
			symbol = "Cash"
		}
		whale.award(NewBadge(LargestTrade, fmt.Sprintf("%s - %s", symbol, whale.trade.Size().Whole())))
	}

	// researcher
	counts := make(map[UserID]int)
	for _, n := range in.Notes {
		if in.Week.Contains(date.Of(n.CreatedAt)) {
			counts[n.UserID]++
		}
	}
	var researcher *memberWeek
	for _, mw := range weeks {
		c := counts[mw.row.UserID]
		if c > 0 && (researcher == nil || c > counts[researcher.row.UserID]) {
			researcher = mw
		}
	}

	open := sessions(in.Benchmark, in.Week)
	benchmarkDown := 0
	if in.Benchmark != nil {
		for _, p := range DailyReturns(in.Benchmark, nil, window) {
			if open[p.End] && p.ReturnPct < 0 {
				benchmarkDown++
			}
		}
	}

	for _, mw := range weeks {
		badges := &mw.row.WeeklyBadges
		if g := badges.BiggestGainer; g != nil {
			mw.award(NewBadge(BestSymbol, fmt.Sprintf("%s %s", g.Symbol, g.ChangePct.SignedString())))
		}
		if l := badges.BiggestLoser; l != nil {
			mw.award(NewBadge(WorstSymbol, fmt.Sprintf("%s %s", l.Symbol, l.ChangePct.SignedString())))
		}
		if alwaysUp(mw.daily, open) {
			context := "up every trading day"
			if benchmarkDown > 0 {
				context = fmt.Sprintf("up every trading day, beat SPY on %d down days", benchmarkDown)
			}
			mw.award(NewBadge(AlwaysUp, context))
		}
		if mw == researcher {
			mw.award(NewBadge(Researcher, fmt.Sprintf("%d notes", counts[mw.row.UserID])))
		}
		if symbol, gain, ok := bestFind(mw, in.Prices, in.Week.To); ok {
			mw.award(NewBadge(BestFind, fmt.Sprintf("%s (+%.1f%%)", symbol, gain)))
		}
		month := date.NewRange(in.Week.To.Add(-bullRunDays), in.Week.To)
		if twr, ok := TimeWeightedReturn(mw.values, mw.flows, month); ok && twr.TWRPct >= bullRunThreshold {
			mw.award(NewBadge(BullRun, fmt.Sprintf("%.1f%% growth in one month", twr.TWRPct)))
		}
	}
}

// sessions returns the days of week the market was open: the days with a
// benchmark close. Every trading day counts when the benchmark has no close
// in the week.
func sessions(benchmark *Series, week date.Range) map[date.Date]bool {
	open := make(map[date.Date]bool)
	all := make(map[date.Date]bool)
	for day := range week.TradingDays() {
		all[day] = true
		if benchmark == nil {
			continue
		}
		if _, ok := benchmark.Get(day); ok {
			open[day] = true
		}
	}
	if len(open) == 0 {
		return all
	}
	return open
}

// alwaysUp reports whether the portfolio had a positive return on every
// session of the week. Returns of days the market was closed are ignored.
func alwaysUp(daily []SubPeriod, open map[date.Date]bool) bool {
	if len(open) == 0 {
		return false
	}
	seen := 0
	for _, p := range daily {
		if !open[p.End] {
			continue
		}
		if p.ReturnPct <= 0 {
			return false
		}
		seen++
	}
	return seen == len(open)
}

// bestFind returns the held symbol with the highest gain over its average
// cost when that gain exceeds bestFindThreshold.
func bestFind(mw *memberWeek, prices Prices, on date.Date) (string, Percent, bool) {
	var best string
	var bestGain Percent
	for _, symbol := range mw.positions.Symbols() {
		price, ok := prices.PriceAsOf(symbol, on)
		if !ok {
			continue
		}
		avg, ok := mw.builder.averageCost(symbol)
		if !ok || !avg.IsPositive() {
			continue
		}
		gain := PercentOf(price.Ratio(avg).Sub(decimal.NewFromInt(1)))
		if gain > bestFindThreshold && (best == "" || gain > bestGain) {
			best, bestGain = symbol, gain
		}
	}
	return best, bestGain, best != ""
}
