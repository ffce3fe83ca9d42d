package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/sohumt123/Tickker"
	"github.com/sohumt123/Tickker/renderer"
)

type holdingsCmd struct {
	user int64
	date string
	json bool
}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "display the valued positions of a portfolio" }
func (*holdingsCmd) Usage() string {
	return `tkr holdings -u <user> [-d <date>] [-json]

  Shares, closing price, value and weight of every position held on the date.
`
}

func (c *holdingsCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.user, "u", 0, "User whose portfolio is displayed")
	f.StringVar(&c.date, "d", "", "Date of the holdings. Defaults to today")
	f.BoolVar(&c.json, "json", false, "Print the API JSON instead of a report")
}

func (c *holdingsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := optionalDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: parsing date: %v\n", err)
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

	resp, err := engine.Holdings(ctx, tickker.UserID(c.user), on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.json {
		return printJSON(resp)
	}
	printMarkdown(renderer.HoldingsMarkdown(resp))
	return subcommands.ExitSuccess
}
