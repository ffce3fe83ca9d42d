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

// performanceCmd holds the flags for the 'performance' subcommand.
type performanceCmd struct {
	user     int64
	baseline string
	json     bool
}

func (*performanceCmd) Name() string     { return "performance" }
func (*performanceCmd) Synopsis() string { return "review a portfolio performance" }
func (*performanceCmd) Usage() string {
	return `tkr performance -u <user> [-b <date>] [-json]

  Trailing returns against the benchmark, time-weighted, net and
  deposit-averaged returns from the baseline to today.
`
}

func (c *performanceCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.user, "u", 0, "User whose portfolio is reviewed")
	f.StringVar(&c.baseline, "b", "", "Baseline date. Defaults to the first activity")
	f.BoolVar(&c.json, "json", false, "Print the API JSON instead of a report")
}

func (c *performanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	baseline, err := optionalDate(c.baseline)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: parsing baseline: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.user <= 0 {
		fmt.Fprintln(os.Stderr, "Error: -u is required")
		return subcommands.ExitUsageError
	}
	engine, closer, err := newEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closer()

	resp, err := engine.Performance(ctx, tickker.UserID(c.user), baseline)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.json {
		return printJSON(resp)
	}
	printMarkdown(renderer.PerformanceMarkdown(resp))
	return subcommands.ExitSuccess
}

// netCmd holds the flags for the 'net' subcommand.
type netCmd struct {
	user  int64
	start string
	end   string
	json  bool
}

func (*netCmd) Name() string     { return "net" }
func (*netCmd) Synopsis() string { return "contribution-adjusted return over a range" }
func (*netCmd) Usage() string {
	return `tkr net -u <user> [-start <date>] [-end <date>] [-json]

  Profit over the range net of deposits and withdrawals, relative to the
  starting value and to the starting value plus contributions.

Usage Examples:
$ tkr net -u 1 -start -1y
`
}

func (c *netCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.user, "u", 0, "User whose portfolio is reviewed")
	f.StringVar(&c.start, "start", "", "Start date. Defaults to the first activity")
	f.StringVar(&c.end, "end", "", "End date. Defaults to today")
	f.BoolVar(&c.json, "json", false, "Print the API JSON instead of a report")
}

func (c *netCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var r date.Range
	var err error
	if r.From, err = optionalDate(c.start); err != nil {
		fmt.Fprintf(os.Stderr, "Error: parsing start date: %v\n", err)
		return subcommands.ExitUsageError
	}
	if r.To, err = optionalDate(c.end); err != nil {
		fmt.Fprintf(os.Stderr, "Error: parsing end date: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.user <= 0 {
		fmt.Fprintln(os.Stderr, "Error: -u is required")
		return subcommands.ExitUsageError
	}
	engine, closer, err := newEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closer()

	resp, err := engine.NetReturn(ctx, tickker.UserID(c.user), r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.json {
		return printJSON(resp)
	}
	printMarkdown(renderer.NetReturnMarkdown(resp))
	return subcommands.ExitSuccess
}
