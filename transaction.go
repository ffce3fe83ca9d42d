package tickker

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sohumt123/Tickker/date"
)

// Action is the kind of a brokerage transaction.
type Action string

const (
	Buy      Action = "buy"
	Sell     Action = "sell"
	Dividend Action = "dividend"
	Interest Action = "interest"
	Reinvest Action = "reinvest"
	Other    Action = "other"
)

// brokerageActions maps keywords found in brokerage export action columns to
// actions. Order matters: "DIVIDEND REINVESTMENT" is a reinvest.
var brokerageActions = []struct {
	keyword string
	action  Action
}{
	{"REINVEST", Reinvest},
	{"BOUGHT", Buy},
	{"BUY", Buy},
	{"SOLD", Sell},
	{"SELL", Sell},
	{"DIVIDEND", Dividend},
	{"INTEREST", Interest},
}

// ParseAction maps an action label, either canonical ("buy") or as spelled in
// brokerage exports ("YOU BOUGHT APPLE INC", "DIVIDEND RECEIVED"), to an
// Action. It reports false when the label is not recognized, Other is returned
// then.
func ParseAction(s string) (Action, bool) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case Buy, Sell, Dividend, Interest, Reinvest, Other:
		return a, true
	}
	upper := strings.ToUpper(s)
	for _, ba := range brokerageActions {
		if strings.Contains(upper, ba.keyword) {
			return ba.action, true
		}
	}
	return Other, false
}

// Transaction is a single dated brokerage transaction.
//
// Amount is signed as in brokerage exports: buys are negative, sells,
// dividends and interest are positive.
type Transaction struct {
	Date     date.Date
	Action   Action
	Symbol   string
	Quantity Quantity
	Price    Money
	Amount   Money
}

// IsCashLike reports whether symbol designates cash or a money-market sweep
// ("SPAXX**"), these never create positions.
func IsCashLike(symbol string) bool {
	s := strings.TrimSpace(symbol)
	return s == "" || strings.EqualFold(s, "cash") || strings.HasSuffix(s, "**")
}

// Flow returns the external cash flow the transaction brings into the valued
// portfolio: buys and reinvestments contribute |amount|, sells, dividends and
// interest withdraw |amount|. Cash-like transactions never flow.
func (t Transaction) Flow() Money {
	if IsCashLike(t.Symbol) {
		return Money{}
	}
	switch t.Action {
	case Buy, Reinvest:
		return t.value()
	case Sell, Dividend, Interest:
		return t.value().Neg()
	default:
		return Money{}
	}
}

// value returns the absolute dollar size of the transaction, falling back to
// quantity × price when the export has no amount.
func (t Transaction) value() Money {
	if !t.Amount.IsZero() {
		return t.Amount.Abs()
	}
	return t.Price.Mul(t.Quantity.Abs()).Abs()
}

// Size returns the absolute dollar size of the transaction.
func (t Transaction) Size() Money { return t.value() }

// Validate checks the transaction is meaningful.
func (t Transaction) Validate() error {
	var errs []error
	if t.Date.IsZero() {
		errs = append(errs, errors.New("date is required"))
	}
	if t.Price.IsNegative() {
		errs = append(errs, fmt.Errorf("price %v cannot be negative", t.Price))
	}
	switch t.Action {
	case Buy, Sell, Reinvest:
		if strings.TrimSpace(t.Symbol) == "" {
			errs = append(errs, fmt.Errorf("symbol is required for %s", t.Action))
		}
	case Dividend, Interest, Other:
	default:
		errs = append(errs, fmt.Errorf("unknown action %q", t.Action))
	}
	return errors.Join(errs...)
}

// MarshalJSON writes the transaction with a stable key order.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", t.Date)
	w.Append("action", t.Action)
	w.Optional("symbol", t.Symbol)
	if !t.Quantity.IsZero() {
		w.Append("quantity", t.Quantity)
	}
	if !t.Price.IsZero() {
		// prices are kept with all their digits.
		w.Append("price", t.Price.Decimal())
	}
	w.Append("amount", t.Amount)
	return w.MarshalJSON()
}

// UnmarshalJSON reads and validates a transaction. Brokerage action spellings
// are accepted.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var temp struct {
		Date     date.Date `json:"date"`
		Action   string    `json:"action"`
		Symbol   string    `json:"symbol"`
		Quantity Quantity  `json:"quantity"`
		Price    Money     `json:"price"`
		Amount   Money     `json:"amount"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	action, ok := ParseAction(temp.Action)
	if !ok {
		return fmt.Errorf("unknown action %q", temp.Action)
	}
	tx := Transaction{
		Date:     temp.Date,
		Action:   action,
		Symbol:   strings.ToUpper(strings.TrimSpace(temp.Symbol)),
		Quantity: temp.Quantity,
		Price:    temp.Price,
		Amount:   temp.Amount,
	}
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("invalid %s transaction on %v: %w", tx.Action, tx.Date, err)
	}
	*t = tx
	return nil
}

// NewBuy returns a buy of quantity shares of symbol at price, the amount is
// the negative cost.
func NewBuy(on date.Date, symbol string, quantity Quantity, price Money) Transaction {
	return Transaction{Date: on, Action: Buy, Symbol: symbol, Quantity: quantity, Price: price, Amount: price.Mul(quantity).Neg()}
}

// NewSell returns a sale of quantity shares of symbol at price.
func NewSell(on date.Date, symbol string, quantity Quantity, price Money) Transaction {
	return Transaction{Date: on, Action: Sell, Symbol: symbol, Quantity: quantity, Price: price, Amount: price.Mul(quantity)}
}

// NewDividend returns a dividend of amount paid by symbol.
func NewDividend(on date.Date, symbol string, amount Money) Transaction {
	return Transaction{Date: on, Action: Dividend, Symbol: symbol, Amount: amount.Abs()}
}
