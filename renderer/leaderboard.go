package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/sohumt123/Tickker"
)

// LeaderboardMarkdown renders the weekly ranking of a group and its badges.
func LeaderboardMarkdown(resp *tickker.LeaderboardResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Leaderboard %s\n\n", resp.Week)

	fmt.Fprintln(&b, "| # | User | Return | Gain | Best | Worst | Badges |")
	fmt.Fprintln(&b, "|---:|:---|---:|---:|:---|:---|:---|")
	for i, row := range resp.Rows {
		fmt.Fprintf(&b, "| %d | %d | %s | %s | %s | %s | %s |\n",
			i+1,
			row.UserID,
			pct(row.TWRPct),
			row.GainUSD.SignedString(),
			move(row.WeeklyBadges.BiggestGainer),
			move(row.WeeklyBadges.BiggestLoser),
			badges(row.WeeklyBadges.Badges),
		)
	}

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "\n## Badges\n\n")
		n := 0
		for _, row := range resp.Rows {
			for _, badge := range row.WeeklyBadges.Badges {
				n++
				fmt.Fprintf(w, "- %s **%s** user %d", badge.Emoji, badge.Label, row.UserID)
				if badge.Context != "" {
					fmt.Fprintf(w, ": %s", badge.Context)
				}
				fmt.Fprintln(w)
			}
		}
		return n > 0
	})
	reportMarkdown(&b, resp.Report)
	return b.String()
}

// RankingMarkdown renders the ranking of a group since a baseline.
func RankingMarkdown(resp *tickker.RankingResponse) string {
	var b strings.Builder
	if resp.Baseline.IsZero() {
		fmt.Fprint(&b, "# Ranking since first activity\n\n")
	} else {
		fmt.Fprintf(&b, "# Ranking since %s\n\n", resp.Baseline)
	}
	fmt.Fprintln(&b, "| # | User | Since | Return | Gain |")
	fmt.Fprintln(&b, "|---:|:---|:---|---:|---:|")
	for i, row := range resp.Rows {
		fmt.Fprintf(&b, "| %d | %d | %s | %s | %s |\n", i+1, row.UserID, row.Since, pct(row.ReturnPct), row.GainUSD.SignedString())
	}
	reportMarkdown(&b, resp.Report)
	return b.String()
}

func move(m *tickker.SymbolMove) string {
	if m == nil {
		return "-"
	}
	return fmt.Sprintf("%s %s", m.Symbol, pct(m.ChangePct))
}

func badges(list []tickker.Badge) string {
	if len(list) == 0 {
		return "-"
	}
	emojis := make([]string, len(list))
	for i, b := range list {
		emojis[i] = b.Emoji
	}
	return strings.Join(emojis, " ")
}
