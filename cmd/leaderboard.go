package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/sohumt123/Tickker"
	"github.com/sohumt123/Tickker/date"
	"github.com/sohumt123/Tickker/renderer"
)

type leaderboardCmd struct {
	group int64
	week  string
	json  bool
}

func (*leaderboardCmd) Name() string     { return "leaderboard" }
func (*leaderboardCmd) Synopsis() string { return "rank the members of a group over a week" }
func (*leaderboardCmd) Usage() string {
	return `tkr leaderboard -g <group> [-w <week>] [-json]

  Rank the members of a group by their time-weighted return over a week,
  Monday to Sunday, and award the weekly badges. The week is an ISO week
  like 2024-W02 or any date within it. It defaults to the current week.

Usage Examples:
$ tkr leaderboard -g 1 -w -1w
`
}

func (c *leaderboardCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.group, "g", 0, "Group to rank")
	f.StringVar(&c.week, "w", "", "ISO week or a date within the week. Defaults to the current week")
	f.BoolVar(&c.json, "json", false, "Print the API JSON instead of a report")
}

func (c *leaderboardCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.group <= 0 {
		fmt.Fprintln(os.Stderr, "Error: -g is required")
		return subcommands.ExitUsageError
	}
	on, err := today()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: parsing -today: %v\n", err)
		return subcommands.ExitUsageError
	}
	week := date.Weekly.Range(on)
	if c.week != "" {
		if week, err = date.ParseWeek(c.week); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	engine, closer, err := newEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closer()

	resp, err := engine.WeeklyLeaderboard(ctx, tickker.GroupID(c.group), week)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.json {
		return printJSON(resp)
	}
	printMarkdown(renderer.LeaderboardMarkdown(resp))
	return subcommands.ExitSuccess
}

type rankingCmd struct {
	group    int64
	baseline string
	json     bool
}

func (*rankingCmd) Name() string     { return "ranking" }
func (*rankingCmd) Synopsis() string { return "rank the members of a group since a baseline" }
func (*rankingCmd) Usage() string {
	return `tkr ranking -g <group> [-b <date>] [-json]

  Rank the members of a group by their time-weighted return from the
  baseline to today. Without a baseline every member is ranked since their
  first activity.
`
}

func (c *rankingCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.group, "g", 0, "Group to rank")
	f.StringVar(&c.baseline, "b", "", "Baseline date. Defaults to each member's first activity")
	f.BoolVar(&c.json, "json", false, "Print the API JSON instead of a report")
}

func (c *rankingCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.group <= 0 {
		fmt.Fprintln(os.Stderr, "Error: -g is required")
		return subcommands.ExitUsageError
	}
	baseline, err := optionalDate(c.baseline)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: parsing baseline: %v\n", err)
		return subcommands.ExitUsageError
	}
	engine, closer, err := newEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closer()

	resp, err := engine.GroupRanking(ctx, tickker.GroupID(c.group), baseline)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.json {
		return printJSON(resp)
	}
	printMarkdown(renderer.RankingMarkdown(resp))
	return subcommands.ExitSuccess
}
