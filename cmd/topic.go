package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/sohumt123/Tickker/docs"
)

// topicCmd prints the embedded documentation.
type topicCmd struct {
	list bool
}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "explain ledgers, returns and badges" }
func (*topicCmd) Usage() string {
	return `tkr topic [-list] [<topic>...]

  Print the documentation of each topic, the readme when none is given.
  '*' prints every topic.

Usage Examples:
$ tkr topic returns
$ tkr topic -list
`
}

func (c *topicCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.list, "list", false, "List the available topics")
}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	available, err := docs.All()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.list {
		for _, topic := range available {
			fmt.Fprintln(stdout, topic)
		}
		return subcommands.ExitSuccess
	}

	requested := f.Args()
	if len(requested) == 0 {
		requested = []string{"readme"}
	}
	md, err := docs.Topics(requested...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\navailable topics: %s\n", err, strings.Join(available, ", "))
		return subcommands.ExitFailure
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}
