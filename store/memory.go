package store

import (
	"context"
	"slices"
	"sync"

	"github.com/sohumt123/Tickker"
	"github.com/sohumt123/Tickker/date"
)

// Memory is an in-memory transaction and group source, safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	ledgers map[tickker.UserID][]tickker.Transaction
	groups  []Group
	notes   []GroupNote
}

var (
	_ tickker.TransactionSource = (*Memory)(nil)
	_ tickker.GroupSource       = (*Memory)(nil)
)

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{ledgers: make(map[tickker.UserID][]tickker.Transaction)}
}

// AddTransactions appends transactions to the ledger of user.
func (m *Memory) AddTransactions(user tickker.UserID, txs ...tickker.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ledgers[user] = append(m.ledgers[user], txs...)
}

// AddGroup adds or replaces a group.
func (m *Memory) AddGroup(g Group) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups = slices.DeleteFunc(m.groups, func(x Group) bool { return x.ID == g.ID })
	m.groups = append(m.groups, g)
}

// AddNote records a note posted in group.
func (m *Memory) AddNote(group tickker.GroupID, n tickker.Note) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes = append(m.notes, GroupNote{GroupID: group, Note: n})
}

// Transactions implements tickker.TransactionSource.
func (m *Memory) Transactions(ctx context.Context, user tickker.UserID) ([]tickker.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.ledgers[user]), nil
}

// GroupMembers implements tickker.GroupSource.
func (m *Memory) GroupMembers(ctx context.Context, group tickker.GroupID) ([]tickker.UserID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return members(m.groups, group)
}

// GroupNotes implements tickker.GroupSource.
func (m *Memory) GroupNotes(ctx context.Context, group tickker.GroupID, week date.Range) ([]tickker.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return notesOf(m.notes, group, week), nil
}
