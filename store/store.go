// Package store implements the transaction and group sources of the engine
// on a data directory, and in memory.
//
// A data directory is laid out as:
//
//	<dir>/ledgers/<user id>.jsonl   one transaction per line
//	<dir>/groups.json               [{"id": 1, "name": "...", "members": [1, 2]}]
//	<dir>/notes.jsonl               one note per line, with its "group_id"
package store

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/sohumt123/Tickker"
	"github.com/sohumt123/Tickker/date"
)

// Group is a named set of users.
type Group struct {
	ID      tickker.GroupID  `json:"id"`
	Name    string           `json:"name"`
	Members []tickker.UserID `json:"members"`
}

// GroupNote is a note posted in a group.
type GroupNote struct {
	GroupID tickker.GroupID `json:"group_id"`
	tickker.Note
}

// ErrUnknownGroup is returned for groups that do not exist.
var ErrUnknownGroup = errors.New("unknown group")

// Dir reads ledgers, groups and notes from a data directory.
type Dir struct {
	Path string
}

var (
	_ tickker.TransactionSource = Dir{}
	_ tickker.GroupSource       = Dir{}
)

func (d Dir) ledgerFile(user tickker.UserID) string {
	return filepath.Join(d.Path, "ledgers", strconv.FormatInt(int64(user), 10)+".jsonl")
}

// Transactions implements tickker.TransactionSource. A user without a ledger
// file has no transactions.
func (d Dir) Transactions(ctx context.Context, user tickker.UserID) ([]tickker.Transaction, error) {
	l, err := d.Ledger(user)
	if err != nil {
		return nil, err
	}
	var res []tickker.Transaction
	for _, tx := range l.Transactions() {
		res = append(res, tx)
	}
	return res, nil
}

// Ledger decodes the ledger of user.
func (d Dir) Ledger(user tickker.UserID) (*tickker.Ledger, error) {
	f, err := os.Open(d.ledgerFile(user))
	if errors.Is(err, fs.ErrNotExist) {
		return tickker.NewLedger(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	l, err := tickker.DecodeLedger(f)
	if err != nil {
		return nil, fmt.Errorf("ledger of user %d: %w", user, err)
	}
	return l, nil
}

// WriteLedger replaces the ledger file of user with l in canonical form.
func (d Dir) WriteLedger(user tickker.UserID, l *tickker.Ledger) error {
	var buf bytes.Buffer
	if err := tickker.EncodeLedger(&buf, l); err != nil {
		return err
	}
	file := d.ledgerFile(user)
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return err
	}
	// write then rename, a reader never sees a partial ledger.
	tmp := file + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, file)
}

// AppendTransaction appends tx to the ledger file of user.
func (d Dir) AppendTransaction(user tickker.UserID, tx tickker.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	file := d.ledgerFile(user)
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("error opening ledger file %q: %w", file, err)
	}
	defer f.Close()
	return tickker.EncodeTransaction(f, tx)
}

// Users returns the ids of the users with a ledger file, sorted.
func (d Dir) Users() ([]tickker.UserID, error) {
	entries, err := os.ReadDir(filepath.Join(d.Path, "ledgers"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var res []tickker.UserID
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".jsonl")
		if !ok || e.IsDir() {
			continue
		}
		id, err := strconv.ParseInt(name, 10, 64)
		if err != nil {
			continue
		}
		res = append(res, tickker.UserID(id))
	}
	slices.Sort(res)
	return res, nil
}

// Groups decodes the groups file, none when it does not exist.
func (d Dir) Groups() ([]Group, error) {
	data, err := os.ReadFile(filepath.Join(d.Path, "groups.json"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var groups []Group
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("groups.json: %w", err)
	}
	return groups, nil
}

// GroupMembers implements tickker.GroupSource.
func (d Dir) GroupMembers(ctx context.Context, group tickker.GroupID) ([]tickker.UserID, error) {
	groups, err := d.Groups()
	if err != nil {
		return nil, err
	}
	return members(groups, group)
}

// GroupNotes implements tickker.GroupSource.
func (d Dir) GroupNotes(ctx context.Context, group tickker.GroupID, week date.Range) ([]tickker.Note, error) {
	f, err := os.Open(filepath.Join(d.Path, "notes.jsonl"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var notes []GroupNote
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		if len(bytes.TrimSpace(scanner.Bytes())) == 0 {
			continue
		}
		var n GroupNote
		if err := json.Unmarshal(scanner.Bytes(), &n); err != nil {
			return nil, fmt.Errorf("notes.jsonl line %d: %w", line, err)
		}
		notes = append(notes, n)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return notesOf(notes, group, week), nil
}

func members(groups []Group, group tickker.GroupID) ([]tickker.UserID, error) {
	for _, g := range groups {
		if g.ID == group {
			return slices.Clone(g.Members), nil
		}
	}
	return nil, fmt.Errorf("group %d: %w", group, ErrUnknownGroup)
}

func notesOf(notes []GroupNote, group tickker.GroupID, week date.Range) []tickker.Note {
	var res []tickker.Note
	for _, n := range notes {
		if n.GroupID == group && week.Contains(date.Of(n.CreatedAt)) {
			res = append(res, n.Note)
		}
	}
	return res
}
