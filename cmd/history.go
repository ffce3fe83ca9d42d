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

type historyCmd struct {
	user   int64
	start  string
	end    string
	period string
	json   bool
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display the daily value of a portfolio next to the benchmark" }
func (*historyCmd) Usage() string {
	return `tkr history -u <user> [-start <date>] [-end <date>] [-p <period>] [-json]

  Value of the portfolio and benchmark close on every trading day. The report
  keeps the last day of each period, the JSON has every day.

Usage Examples:
$ tkr history -u 1 -start -3m -p week
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.user, "u", 0, "User whose portfolio is displayed")
	f.StringVar(&c.start, "start", "", "First day. Defaults to the first activity")
	f.StringVar(&c.end, "end", "", "Last day. Defaults to today")
	f.StringVar(&c.period, "p", date.Monthly.String(), "Sampling period of the table (day, week, month, quarter, year)")
	f.BoolVar(&c.json, "json", false, "Print the API JSON instead of a report")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.user <= 0 {
		fmt.Fprintln(os.Stderr, "Error: -u is required")
		return subcommands.ExitUsageError
	}
	from, err := optionalDate(c.start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: parsing -start: %v\n", err)
		return subcommands.ExitUsageError
	}
	to, err := optionalDate(c.end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: parsing -end: %v\n", err)
		return subcommands.ExitUsageError
	}
	period, err := date.ParsePeriod(c.period)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	engine, closer, err := newEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closer()

	resp, err := engine.History(ctx, tickker.UserID(c.user), date.NewRange(from, to))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.json {
		return printJSON(resp)
	}
	printMarkdown(renderer.HistoryMarkdown(resp, period))
	return subcommands.ExitSuccess
}

type tradesCmd struct {
	user  int64
	limit int
	json  bool
}

func (*tradesCmd) Name() string     { return "trades" }
func (*tradesCmd) Synopsis() string { return "list the latest transactions of a portfolio" }
func (*tradesCmd) Usage() string {
	return `tkr trades -u <user> [-n <count>] [-json]

  The latest transactions of the ledger, most recent first.
`
}

func (c *tradesCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.user, "u", 0, "User whose transactions are listed")
	f.IntVar(&c.limit, "n", tickker.DefaultTradesLimit, "Number of transactions")
	f.BoolVar(&c.json, "json", false, "Print the API JSON instead of a report")
}

func (c *tradesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	resp, err := engine.Trades(ctx, tickker.UserID(c.user), c.limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.json {
		return printJSON(resp)
	}
	printMarkdown(renderer.TradesMarkdown(resp))
	return subcommands.ExitSuccess
}
