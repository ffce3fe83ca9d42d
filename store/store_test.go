package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/sohumt123/Tickker"
	"github.com/sohumt123/Tickker/date"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testDir(t *testing.T) Dir {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ledgers", "1.jsonl"), `{"date":"2024-01-09","action":"buy","symbol":"msft","quantity":2,"price":370,"amount":-740}
{"date":"2024-01-02","action":"YOU BOUGHT APPLE INC","symbol":"AAPL","quantity":10,"price":185,"amount":-1850}

{"date":"2024-02-15","action":"DIVIDEND RECEIVED","symbol":"AAPL","amount":2.4}
`)
	writeFile(t, filepath.Join(dir, "ledgers", "2.jsonl"), `{"date":"2024-01-03","action":"buy","symbol":"SPY","quantity":1,"price":470,"amount":-470}
`)
	writeFile(t, filepath.Join(dir, "ledgers", "README"), "not a ledger")
	writeFile(t, filepath.Join(dir, "groups.json"), `[{"id": 10, "name": "Friends", "members": [1, 2]}]`)
	writeFile(t, filepath.Join(dir, "notes.jsonl"), `{"group_id":10,"user_id":1,"symbol":"AAPL","rating":4,"created_at":"2024-01-09T15:04:05Z"}
{"group_id":10,"user_id":2,"symbol":"SPY","rating":3,"created_at":"2024-01-20T15:04:05Z"}
{"group_id":11,"user_id":1,"symbol":"AAPL","rating":5,"created_at":"2024-01-10T15:04:05Z"}
`)
	return Dir{Path: dir}
}

func TestDir_Transactions(t *testing.T) {
	d := testDir(t)
	txs, err := d.Transactions(context.Background(), 1)
	if err != nil {
		t.Fatalf("Transactions() unexpected error: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("Transactions() = %d transactions, want 3", len(txs))
	}
	if got, want := txs[0].Action, tickker.Buy; got != want {
		t.Errorf("first action = %q, want %q", got, want)
	}
	if got, want := txs[1].Symbol, "MSFT"; got != want {
		t.Errorf("second symbol = %q, want %q", got, want)
	}

	txs, err = d.Transactions(context.Background(), 99)
	if err != nil || len(txs) != 0 {
		t.Errorf("Transactions(99) = %v, %v, want no transactions", txs, err)
	}
}

func TestDir_BadLedger(t *testing.T) {
	d := testDir(t)
	writeFile(t, d.ledgerFile(3), `{"date":"2024-01-03","action":"buy","quantity":1,"price":1,"amount":-1}`)
	if _, err := d.Transactions(context.Background(), 3); err == nil {
		t.Errorf("Transactions() of a buy without symbol succeeded")
	}
}

func TestDir_WriteLedger(t *testing.T) {
	d := testDir(t)
	l, err := d.Ledger(1)
	if err != nil {
		t.Fatalf("Ledger() unexpected error: %v", err)
	}
	l.Append(tickker.NewSell(date.New(2024, time.March, 1), "MSFT", tickker.Q(1), tickker.USD(400)))
	if err := d.WriteLedger(1, l); err != nil {
		t.Fatalf("WriteLedger() unexpected error: %v", err)
	}
	if err := d.AppendTransaction(1, tickker.NewDividend(date.New(2024, time.March, 2), "AAPL", tickker.USD(1))); err != nil {
		t.Fatalf("AppendTransaction() unexpected error: %v", err)
	}
	got, err := d.Ledger(1)
	if err != nil {
		t.Fatalf("Ledger() unexpected error: %v", err)
	}
	if got.Len() != 5 {
		t.Errorf("Ledger() = %d transactions, want 5", got.Len())
	}
	if got, want := got.LastDate(), date.New(2024, time.March, 2); got != want {
		t.Errorf("LastDate() = %v, want %v", got, want)
	}
}

func TestDir_Users(t *testing.T) {
	users, err := testDir(t).Users()
	if err != nil {
		t.Fatalf("Users() unexpected error: %v", err)
	}
	if want := []tickker.UserID{1, 2}; !slices.Equal(users, want) {
		t.Errorf("Users() = %v, want %v", users, want)
	}
}

func TestDir_Groups(t *testing.T) {
	d := testDir(t)
	ids, err := d.GroupMembers(context.Background(), 10)
	if err != nil {
		t.Fatalf("GroupMembers() unexpected error: %v", err)
	}
	if want := []tickker.UserID{1, 2}; !slices.Equal(ids, want) {
		t.Errorf("GroupMembers() = %v, want %v", ids, want)
	}
	if _, err := d.GroupMembers(context.Background(), 12); !errors.Is(err, ErrUnknownGroup) {
		t.Errorf("GroupMembers(12) error = %v, want ErrUnknownGroup", err)
	}

	week, _ := date.ParseWeek("2024-W02")
	notes, err := d.GroupNotes(context.Background(), 10, week)
	if err != nil {
		t.Fatalf("GroupNotes() unexpected error: %v", err)
	}
	if len(notes) != 1 || notes[0].UserID != 1 || notes[0].Rating != 4 {
		t.Errorf("GroupNotes() = %+v, want the note of user 1 only", notes)
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	m.AddTransactions(1, tickker.NewBuy(date.New(2024, time.January, 2), "AAPL", tickker.Q(1), tickker.USD(185)))
	m.AddGroup(Group{ID: 10, Members: []tickker.UserID{1}})
	m.AddGroup(Group{ID: 10, Members: []tickker.UserID{1, 2}})
	m.AddNote(10, tickker.Note{UserID: 2, CreatedAt: time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)})

	txs, _ := m.Transactions(context.Background(), 1)
	if len(txs) != 1 {
		t.Errorf("Transactions() = %v, want 1 transaction", txs)
	}
	ids, err := m.GroupMembers(context.Background(), 10)
	if err != nil || len(ids) != 2 {
		t.Errorf("GroupMembers() = %v, %v, want the replaced group", ids, err)
	}
	week, _ := date.ParseWeek("2024-01-10")
	if notes, _ := m.GroupNotes(context.Background(), 10, week); len(notes) != 1 {
		t.Errorf("GroupNotes() = %v, want 1 note", notes)
	}
}
