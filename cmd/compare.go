package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/sohumt123/Tickker"
	"github.com/sohumt123/Tickker/date"
	"github.com/sohumt123/Tickker/renderer"
)

// compareCmd holds the flags for the 'compare' subcommand.
type compareCmd struct {
	user     int64
	group    int64
	baseline string
	symbols  string
	period   string
	json     bool
}

func (*compareCmd) Name() string { return "compare" }
func (*compareCmd) Synopsis() string {
	return "compare the growth of $10,000 in a portfolio and the benchmark"
}
func (*compareCmd) Usage() string {
	return `tkr compare -u <user> [-b <date>] [-s <symbols>] [-p <period>] [-json]
tkr compare -g <group> [-b <date>] [-p <period>] [-json]

  Rebase the portfolio of a user, the benchmark and extra symbols to $10,000
  on the baseline date, and show their growth. With -g, compare every member
  of a group.

Usage Examples:
$ tkr compare -u 1 -b 2024-01-02 -s msft,qqq -p month
`
}

func (c *compareCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.user, "u", 0, "User whose portfolio is compared")
	f.Int64Var(&c.group, "g", 0, "Group whose members are compared. Overrides -u")
	f.StringVar(&c.baseline, "b", "", "Baseline date. Defaults to the first activity")
	f.StringVar(&c.symbols, "s", "", "Comma separated list of extra symbols to compare")
	f.StringVar(&c.period, "p", date.Weekly.String(), "Sampling period of the table (day, week, month, quarter, year)")
	f.BoolVar(&c.json, "json", false, "Print the API JSON instead of a report")
}

func (c *compareCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	baseline, err := optionalDate(c.baseline)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: parsing baseline: %v\n", err)
		return subcommands.ExitUsageError
	}
	period, err := date.ParsePeriod(c.period)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.user <= 0 && c.group <= 0 {
		fmt.Fprintln(os.Stderr, "Error: -u or -g is required")
		return subcommands.ExitUsageError
	}

	engine, closer, err := newEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closer()

	var resp *tickker.ComparisonResponse
	if c.group > 0 {
		resp, err = engine.GroupComparison(ctx, tickker.GroupID(c.group), baseline)
	} else {
		var symbols []string
		if c.symbols != "" {
			symbols = strings.Split(c.symbols, ",")
		}
		resp, err = engine.Comparison(ctx, tickker.UserID(c.user), tickker.ComparisonRequest{Baseline: baseline, Symbols: symbols})
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.json {
		return printJSON(resp)
	}
	printMarkdown(renderer.ComparisonMarkdown(resp, period))
	return subcommands.ExitSuccess
}
