package tickker

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sohumt123/Tickker/date"
)

// ErrNoTransactions is returned when a user has no transaction at all: there
// is nothing to value.
var ErrNoTransactions = errors.New("no transactions")

// DataIntegrityError reports a ledger implying an impossible position, like
// selling more shares than held. The position is clamped to zero.
type DataIntegrityError struct {
	Date   date.Date
	Symbol string
	Held   Quantity
	Sold   Quantity
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("on %s sold %s %s but only %s were held, position clamped to zero", e.Date, e.Sold, e.Symbol, e.Held)
}

// InvalidBaselineError reports a baseline date that cannot be used to rebase a
// series: the value at baseline is zero or the baseline is outside any data.
type InvalidBaselineError struct {
	Date   date.Date
	Series string
	Reason string
}

func (e *InvalidBaselineError) Error() string {
	if e.Series == "" {
		return fmt.Sprintf("invalid baseline %s: %s", e.Date, e.Reason)
	}
	return fmt.Sprintf("invalid baseline %s for %q: %s", e.Date, e.Series, e.Reason)
}

// MissingPriceDataError reports a held symbol without any known price. It is
// valued at zero.
type MissingPriceDataError struct {
	Symbol string
	Date   date.Date // first date the price was needed
}

func (e *MissingPriceDataError) Error() string {
	if e.Date.IsZero() {
		return fmt.Sprintf("no price data for %s", e.Symbol)
	}
	return fmt.Sprintf("no price data for %s as of %s, valued at zero", e.Symbol, e.Date)
}

// UpstreamTimeoutError reports a fetch that exceeded its deadline.
type UpstreamTimeoutError struct {
	Symbol string
	Err    error
}

func (e *UpstreamTimeoutError) Error() string {
	return fmt.Sprintf("fetching %s timed out: %v", e.Symbol, e.Err)
}

func (e *UpstreamTimeoutError) Unwrap() error { return e.Err }

// Warnings collects recoverable errors. Warnings are reported alongside a
// result instead of failing it.
type Warnings []error

// Add appends non nil errors to the warnings. errors.Join values are flattened.
func (w *Warnings) Add(errs ...error) {
	for _, err := range errs {
		if err == nil {
			continue
		}
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			w.Add(joined.Unwrap()...)
			continue
		}
		*w = append(*w, err)
	}
}

// Err returns all warnings joined, or nil.
func (w Warnings) Err() error { return errors.Join(w...) }

// Strings returns the warning messages.
func (w Warnings) Strings() []string {
	res := make([]string, 0, len(w))
	for _, err := range w {
		res = append(res, err.Error())
	}
	return res
}

// MarshalJSON writes warnings as a list of messages.
func (w Warnings) MarshalJSON() ([]byte, error) { return json.Marshal(w.Strings()) }
