package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/sohumt123/Tickker"
	"github.com/sohumt123/Tickker/store"
)

type fmtCmd struct {
	user int64
}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats the ledger files into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `tkr fmt [-u <user>]

  Validates and formats the ledger files of the data directory. This command
  reads all transactions, validates them, sorts them by date, and writes them
  back in a canonical JSONL format. By default, it formats all ledgers
  in-place. Use -u to specify a single user.

Usage Examples:
$ tkr fmt -u 1

`
}

func (p *fmtCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&p.user, "u", 0, "User whose ledger is formatted. Formats all by default.")
}

func (p *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	dir := store.Dir{Path: *dataDir}
	users := []tickker.UserID{tickker.UserID(p.user)}
	if p.user <= 0 {
		var err error
		if users, err = dir.Users(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: could not list ledgers: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	if len(users) == 0 {
		fmt.Fprintf(os.Stderr, "Warning: no ledgers found to format.\n")
		return subcommands.ExitSuccess
	}

	failed := false
	for _, user := range users {
		ledger, err := dir.Ledger(user)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: could not load ledger of user %d: %v\n", user, err)
			failed = true
			continue
		}
		if err := dir.WriteLedger(user, ledger); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving formatted ledger of user %d: %v\n", user, err)
			failed = true
			continue
		}
		fmt.Fprintf(os.Stderr, "Formatted ledger of user %d (%d transactions).\n", user, ledger.Len())
	}
	if failed {
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "✅ Successfully formatted ledgers.\n")
	return subcommands.ExitSuccess
}
