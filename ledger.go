package tickker

import (
	"iter"
	"slices"
	"sort"

	"github.com/sohumt123/Tickker/date"
)

// Ledger represents a list of transactions.
//
// In a Ledger transactions are always in chronological order, transactions on
// the same day keep their ingestion order.
type Ledger struct {
	transactions []Transaction
}

// NewLedger creates a ledger holding txs.
func NewLedger(txs ...Transaction) *Ledger {
	l := &Ledger{}
	l.Append(txs...)
	return l
}

// Append appends transactions to this ledger and maintains the chronological order of transactions.
func (l *Ledger) Append(txs ...Transaction) {
	l.transactions = append(l.transactions, txs...)
	l.stableSort()
}

// stableSort sorts the transactions by date, keeping the relative order of transactions on the same day.
func (l *Ledger) stableSort() {
	sort.SliceStable(l.transactions, func(i, j int) bool {
		return l.transactions[i].Date.Before(l.transactions[j].Date)
	})
}

// Len returns the number of transactions.
func (l *Ledger) Len() int { return len(l.transactions) }

// Transactions returns an iterator over the transactions matching all filters, in chronological order.
func (l *Ledger) Transactions(filters ...func(Transaction) bool) iter.Seq2[int, Transaction] {
	return func(yield func(int, Transaction) bool) {
	next:
		for i, tx := range l.transactions {
			for _, f := range filters {
				if !f(tx) {
					continue next
				}
			}
			if !yield(i, tx) {
				return
			}
		}
	}
}

// BySymbol selects transactions on symbol.
func BySymbol(symbol string) func(Transaction) bool {
	return func(tx Transaction) bool { return tx.Symbol == symbol }
}

// Within selects transactions dated within r.
func Within(r date.Range) func(Transaction) bool {
	return func(tx Transaction) bool { return r.Contains(tx.Date) }
}

// Between returns a ledger with the transactions dated within r, in order.
func (l *Ledger) Between(r date.Range) *Ledger {
	res := &Ledger{}
	for _, tx := range l.Transactions(Within(r)) {
		res.transactions = append(res.transactions, tx)
	}
	return res
}

// Recent returns the n latest transactions, most recent first. Transactions
// of the same day come in reverse ledger order.
func (l *Ledger) Recent(n int) []Transaction {
	n = min(max(n, 0), len(l.transactions))
	res := make([]Transaction, 0, n)
	for i := len(l.transactions) - 1; i >= len(l.transactions)-n; i-- {
		res = append(res, l.transactions[i])
	}
	return res
}

// Symbols returns the sorted list of non cash-like symbols ever traded.
func (l *Ledger) Symbols() []string {
	seen := make(map[string]struct{})
	for _, tx := range l.transactions {
		if IsCashLike(tx.Symbol) {
			continue
		}
		seen[tx.Symbol] = struct{}{}
	}
	res := make([]string, 0, len(seen))
	for s := range seen {
		res = append(res, s)
	}
	slices.Sort(res)
	return res
}

// FirstDate returns the date of the oldest transaction, or the zero date.
func (l *Ledger) FirstDate() date.Date {
	if len(l.transactions) == 0 {
		return date.Date{}
	}
	return l.transactions[0].Date
}

// LastDate returns the date of the newest transaction, or the zero date.
func (l *Ledger) LastDate() date.Date {
	if len(l.transactions) == 0 {
		return date.Date{}
	}
	return l.transactions[len(l.transactions)-1].Date
}

// FirstActivity returns the date of the first transaction acquiring shares.
func (l *Ledger) FirstActivity() (date.Date, bool) {
	for _, tx := range l.transactions {
		if (tx.Action == Buy || tx.Action == Reinvest) && !IsCashLike(tx.Symbol) {
			return tx.Date, true
		}
	}
	return date.Date{}, false
}

// Flows returns the net external cash flow per day, see Transaction.Flow.
// Days whose flows cancel out are omitted.
func (l *Ledger) Flows() *date.History[Money] {
	flows := new(date.History[Money])
	var day date.Date
	var net Money
	flush := func() {
		if !net.IsZero() {
			flows.Append(day, net)
		}
	}
	for _, tx := range l.transactions {
		if tx.Date != day {
			flush()
			day, net = tx.Date, Money{}
		}
		net = net.Add(tx.Flow())
	}
	flush()
	return flows
}
