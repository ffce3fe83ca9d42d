package tickker

import (
	"maps"
	"slices"

	"github.com/sohumt123/Tickker/date"
)

// Positions maps symbols to the number of shares held. Symbols with no share
// are absent.
type Positions map[string]Quantity

// Symbols returns the held symbols in alphabetical order.
func (p Positions) Symbols() []string {
	return slices.Sorted(maps.Keys(p))
}

// PositionsAsOf replays all transactions dated on or before on, in ledger
// order, and returns the shares held at the end of that day.
//
// A sell exceeding the held shares clamps the position to zero, the anomaly is
// reported as a *DataIntegrityError in the returned warnings.
func PositionsAsOf(ledger *Ledger, on date.Date) (Positions, Warnings) {
	b := newPositionBuilder(ledger)
	b.advance(on)
	return b.positions(), b.anomalies
}

// positionBuilder folds a ledger into positions incrementally: advancing to
// successive dates applies only the transactions not yet applied.
type positionBuilder struct {
	ledger    *Ledger
	next      int // index of the next transaction to apply
	shares    map[string]Quantity
	cost      map[string]Money // average cost basis of the held shares
	anomalies Warnings
}

func newPositionBuilder(ledger *Ledger) *positionBuilder {
	return &positionBuilder{
		ledger: ledger,
		shares: make(map[string]Quantity),
		cost:   make(map[string]Money),
	}
}

// advance applies all transactions dated on or before on. Dates must not go
// backward.
func (b *positionBuilder) advance(on date.Date) {
	txs := b.ledger.transactions
	for b.next < len(txs) && !txs[b.next].Date.After(on) {
		b.apply(txs[b.next])
		b.next++
	}
}

// impliedQuantity returns the shares acquired by a buy or a reinvestment.
func impliedQuantity(tx Transaction) Quantity {
	if !tx.Quantity.IsZero() {
		return tx.Quantity.Abs()
	}
	if tx.Price.IsPositive() {
		return tx.Amount.Abs().DivPrice(tx.Price)
	}
	return Quantity{}
}

func (b *positionBuilder) apply(tx Transaction) {
	if IsCashLike(tx.Symbol) {
		return
	}
	switch tx.Action {
	case Buy, Reinvest:
		q := impliedQuantity(tx)
		if q.IsZero() {
			return
		}
		b.shares[tx.Symbol] = b.shares[tx.Symbol].Add(q)
		b.cost[tx.Symbol] = b.cost[tx.Symbol].Add(tx.Size())
	case Sell:
		held := b.shares[tx.Symbol]
		sold := tx.Quantity.Abs()
		if sold.GreaterThan(held) {
			b.anomalies.Add(&DataIntegrityError{Date: tx.Date, Symbol: tx.Symbol, Held: held, Sold: sold})
			sold = held
		}
		if held.IsZero() {
			return
		}
		costOfSale := b.cost[tx.Symbol].Mul(sold).Div(held)
		remaining := held.Sub(sold)
		if remaining.IsZero() {
			delete(b.shares, tx.Symbol)
			delete(b.cost, tx.Symbol)
			return
		}
		b.shares[tx.Symbol] = remaining
		b.cost[tx.Symbol] = b.cost[tx.Symbol].Sub(costOfSale)
	}
}

// positions returns a copy of the current positions.
func (b *positionBuilder) positions() Positions {
	return maps.Clone(b.shares)
}

// averageCost returns the average cost per share of symbol, false if not held.
func (b *positionBuilder) averageCost(symbol string) (Money, bool) {
	held, ok := b.shares[symbol]
	if !ok || held.IsZero() {
		return Money{}, false
	}
	return b.cost[symbol].Div(held), true
}
