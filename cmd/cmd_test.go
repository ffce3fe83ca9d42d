package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	"github.com/sohumt123/Tickker"
	"github.com/sohumt123/Tickker/date"
	"github.com/sohumt123/Tickker/store"
)

// setup points the global flags to a temporary data directory holding the
// ledger of user 1, and captures the output.
func setup(t *testing.T) (store.Dir, *bytes.Buffer) {
	t.Helper()
	dir := store.Dir{Path: t.TempDir()}
	l := tickker.NewLedger(
		tickker.NewBuy(date.New(2024, 1, 2), "AAPL", tickker.Q(10), tickker.USD(150)),
		tickker.NewDividend(date.New(2024, 2, 1), "AAPL", tickker.USD(5)),
	)
	if err := dir.WriteLedger(1, l); err != nil {
		t.Fatalf("WriteLedger() error = %v", err)
	}

	oldDir, oldToday, oldStdout, oldPrices := *dataDir, *todayFlag, stdout, openPrices
	t.Cleanup(func() {
		*dataDir, *todayFlag, stdout, openPrices = oldDir, oldToday, oldStdout, oldPrices
	})
	*dataDir = dir.Path
	*todayFlag = "2024-06-03"
	out := &bytes.Buffer{}
	stdout = out
	openPrices = func(zerolog.Logger) (tickker.PriceSource, func(), error) {
		prices := tickker.PriceTable{}.
			Set("AAPL", map[date.Date]float64{
				date.New(2024, 1, 2): 150,
				date.New(2024, 6, 1): 200,
			}).
			Set("SPY", map[date.Date]float64{
				date.New(2024, 1, 2): 470,
				date.New(2024, 6, 3): 517,
			})
		return prices, func() {}, nil
	}
	return dir, out
}

func execute(t *testing.T, c subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("parsing %v: %v", args, err)
	}
	return c.Execute(context.Background(), f)
}

func TestCompareCmd_JSON(t *testing.T) {
	_, out := setup(t)
	if status := execute(t, &compareCmd{}, "-u", "1", "-json"); status != subcommands.ExitSuccess {
		t.Fatalf("Expected ExitSuccess, got %v", status)
	}
	var resp struct {
		Baseline   string           `json:"baseline_date"`
		Comparison []map[string]any `json:"comparison"`
	}
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if got, want := resp.Baseline, "2024-01-02"; got != want {
		t.Errorf("baseline = %q, want %q", got, want)
	}
	if len(resp.Comparison) == 0 {
		t.Fatalf("empty comparison")
	}
	last := resp.Comparison[len(resp.Comparison)-1]
	if got, want := last["portfolio"], 13333.33; got != want {
		t.Errorf("last portfolio value = %v, want %v", got, want)
	}
}

func TestCompareCmd_Markdown(t *testing.T) {
	_, out := setup(t)
	if status := execute(t, &compareCmd{}, "-u", "1", "-p", "month"); status != subcommands.ExitSuccess {
		t.Fatalf("Expected ExitSuccess, got %v", status)
	}
	if !strings.HasPrefix(out.String(), "# Growth of $10,000 since 2024-01-02") {
		t.Errorf("unexpected report:\n%s", out)
	}
}

func TestReportCmds(t *testing.T) {
	testCases := []struct {
		name   string
		cmd    subcommands.Command
		args   []string
		status subcommands.ExitStatus
		prefix string
	}{
		{"performance", &performanceCmd{}, []string{"-u", "1"}, subcommands.ExitSuccess, "# Performance from 2024-01-02 to 2024-06-03"},
		{"net", &netCmd{}, []string{"-u", "1", "-start", "2024-02-01"}, subcommands.ExitSuccess, "# Net Return from 2024-02-01 to 2024-06-03"},
		{"holdings", &holdingsCmd{}, []string{"-u", "1"}, subcommands.ExitSuccess, "# Holdings on 2024-06-03"},
		{"history", &historyCmd{}, []string{"-u", "1", "-start", "2024-05-31"}, subcommands.ExitSuccess, "# Portfolio History"},
		{"bad period", &historyCmd{}, []string{"-u", "1", "-p", "decade"}, subcommands.ExitUsageError, ""},
		{"trades", &tradesCmd{}, []string{"-u", "1", "-n", "1"}, subcommands.ExitSuccess, "# Recent Trades"},
		{"missing group", &rankingCmd{}, nil, subcommands.ExitUsageError, ""},
		{"missing user", &performanceCmd{}, nil, subcommands.ExitUsageError, ""},
		{"bad baseline", &performanceCmd{}, []string{"-u", "1", "-b", "someday"}, subcommands.ExitUsageError, ""},
		{"no transactions", &performanceCmd{}, []string{"-u", "2"}, subcommands.ExitFailure, ""},
		{"topic", &topicCmd{}, []string{"returns"}, subcommands.ExitSuccess, "# Returns"},
		{"unknown topic", &topicCmd{}, []string{"nope"}, subcommands.ExitFailure, ""},
		{"list topics", &topicCmd{}, []string{"-list"}, subcommands.ExitSuccess, "badges\nledger\nreturns\n"},
		{"bad week", &leaderboardCmd{}, []string{"-g", "1", "-w", "2024-W99"}, subcommands.ExitUsageError, ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, out := setup(t)
			if got := execute(t, tc.cmd, tc.args...); got != tc.status {
				t.Fatalf("status = %v, want %v", got, tc.status)
			}
			if !strings.HasPrefix(out.String(), tc.prefix) {
				t.Errorf("unexpected output:\n%s", out)
			}
		})
	}
}

func TestLeaderboardCmd(t *testing.T) {
	dir, out := setup(t)
	groups := `[{"id": 1, "name": "friends", "members": [1]}]`
	if err := os.WriteFile(filepath.Join(dir.Path, "groups.json"), []byte(groups), 0o644); err != nil {
		t.Fatal(err)
	}
	if status := execute(t, &leaderboardCmd{}, "-g", "1", "-w", "2024-W22", "-json"); status != subcommands.ExitSuccess {
		t.Fatalf("Expected ExitSuccess, got %v", status)
	}
	var resp tickker.Leaderboard
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if got, want := resp.Week, "2024-W22"; got != want {
		t.Errorf("week = %q, want %q", got, want)
	}
	if got, want := len(resp.Rows), 1; got != want {
		t.Errorf("got %d rows, want %d", got, want)
	}
}

func TestRankingCmd(t *testing.T) {
	dir, out := setup(t)
	groups := `[{"id": 1, "name": "friends", "members": [1]}]`
	if err := os.WriteFile(filepath.Join(dir.Path, "groups.json"), []byte(groups), 0o644); err != nil {
		t.Fatal(err)
	}
	if status := execute(t, &rankingCmd{}, "-g", "1", "-b", "2024-01-02"); status != subcommands.ExitSuccess {
		t.Fatalf("Expected ExitSuccess, got %v", status)
	}
	if !strings.HasPrefix(out.String(), "# Ranking since 2024-01-02") {
		t.Errorf("unexpected report:\n%s", out)
	}
}

func TestFmtCmd(t *testing.T) {
	dir, _ := setup(t)
	file := filepath.Join(dir.Path, "ledgers", "1.jsonl")
	// out of order and with a lower case symbol.
	original := `{"date":"2024-02-01","action":"dividend","symbol":"AAPL","amount":5}
{"action":"buy","date":"2024-01-02","symbol":"aapl","quantity":10,"price":150,"amount":-1500}
`
	expected := `{"date":"2024-01-02","action":"buy","symbol":"AAPL","quantity":10,"price":150,"amount":-1500}
{"date":"2024-02-01","action":"dividend","symbol":"AAPL","amount":5}
`
	if err := os.WriteFile(file, []byte(original), 0o644); err != nil {
		t.Fatal(err)
	}

	if status := execute(t, &fmtCmd{}); status != subcommands.ExitSuccess {
		t.Fatalf("Expected ExitSuccess, got %v", status)
	}
	got, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != expected {
		t.Errorf("formatted ledger:\n%s\nwant:\n%s", got, expected)
	}
}

func TestFmtCmd_Invalid(t *testing.T) {
	dir, _ := setup(t)
	file := filepath.Join(dir.Path, "ledgers", "2.jsonl")
	if err := os.WriteFile(file, []byte(`{"date":"2024-01-02","action":"explode"}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if status := execute(t, &fmtCmd{}, "-u", "2"); status != subcommands.ExitFailure {
		t.Errorf("Expected ExitFailure, got %v", status)
	}
}
