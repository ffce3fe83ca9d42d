// Package cmd implements the CLI application reporting on portfolios.
package cmd

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	"github.com/sohumt123/Tickker"
	"github.com/sohumt123/Tickker/date"
	"github.com/sohumt123/Tickker/logger"
	"github.com/sohumt123/Tickker/pricecache"
	"github.com/sohumt123/Tickker/store"
	"github.com/sohumt123/Tickker/yahoo"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&compareCmd{}, "reports")
	c.Register(&performanceCmd{}, "reports")
	c.Register(&netCmd{}, "reports")
	c.Register(&holdingsCmd{}, "reports")
	c.Register(&historyCmd{}, "reports")
	c.Register(&tradesCmd{}, "reports")
	c.Register(&leaderboardCmd{}, "groups")
	c.Register(&rankingCmd{}, "groups")

	c.Register(&fmtCmd{}, "ledgers")

	c.Register(&serveCmd{}, "server")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	dataDir   = flag.String("data-dir", "data", "Path to the data directory holding ledgers, groups and notes")
	cachePath = flag.String("cache", "data/prices.db", "Path to the price cache database, empty to disable the cache")
	yahooURL  = flag.String("yahoo-url", yahoo.DefaultURL, "Base URL of the chart API")
	todayFlag = flag.String("today", "", "Date reports are computed as of. Defaults to the current day")
	benchmark = flag.String("benchmark", tickker.DefaultBenchmark, "Symbol portfolios are compared to")
	// Verbose enables debug logs.
	Verbose = flag.Bool("v", false, "Verbose mode: log fetches and anomalies")
)

// stdout is where reports are printed.
var stdout io.Writer = os.Stdout

// openPrices returns the price source of the reports and a function to release it.
var openPrices = func(log zerolog.Logger) (tickker.PriceSource, func(), error) {
	client := yahoo.New(*yahooURL, tickker.DefaultFetchTimeout)
	if *cachePath == "" {
		return client, func() {}, nil
	}
	cache, err := pricecache.Open(*cachePath, client, log)
	if err != nil {
		return nil, nil, err
	}
	return cache, func() { cache.Close() }, nil
}

func today() (date.Date, error) {
	if *todayFlag == "" {
		return date.Today(), nil
	}
	return date.Parse(*todayFlag)
}

func cliLogger() zerolog.Logger {
	level := "warn"
	if *Verbose {
		level = "debug"
	}
	return logger.New(logger.Config{Level: level, Pretty: true})
}

// newEngine builds the engine on the data directory. The returned function
// releases its resources.
func newEngine() (*tickker.Engine, func(), error) {
	on, err := today()
	if err != nil {
		return nil, nil, fmt.Errorf("parsing -today: %w", err)
	}
	log := cliLogger()
	prices, closer, err := openPrices(log)
	if err != nil {
		return nil, nil, fmt.Errorf("opening prices: %w", err)
	}
	dir := store.Dir{Path: *dataDir}
	e := tickker.NewEngine(dir, dir, prices, log)
	e.Benchmark = *benchmark
	e.Today = func() date.Date { return on }
	return e, closer, nil
}

// printMarkdown renders md on a terminal, or prints it as is.
func printMarkdown(md string) {
	if f, ok := stdout.(*os.File); ok {
		if info, err := f.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
			r, err := glamour.NewTermRenderer(glamour.WithStandardStyle("dark"), glamour.WithWordWrap(120))
			if err == nil {
				if out, err := r.Render(md); err == nil {
					fmt.Fprint(stdout, out)
					return
				}
			}
		}
	}
	fmt.Fprint(stdout, md)
}

// printJSON prints v as indented JSON.
func printJSON(v any) subcommands.ExitStatus {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// optionalDate parses str, the zero date when empty.
func optionalDate(str string) (date.Date, error) {
	if str == "" {
		return date.Date{}, nil
	}
	return date.Parse(str)
}
