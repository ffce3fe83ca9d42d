package tickker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sohumt123/Tickker/date"
)

// Series is a daily closing price (or value) series.
type Series = date.History[Money]

// PriceSource returns daily closing prices for a symbol within a range.
//
// A source may return a partial (stale) series together with an error, the
// series is then used as is.
type PriceSource interface {
	PriceSeries(ctx context.Context, symbol string, r date.Range) (*Series, error)
}

// Prices holds the price series of several symbols.
type Prices map[string]*Series

// PriceAsOf returns the latest closing price of symbol on or before on.
func (p Prices) PriceAsOf(symbol string, on date.Date) (Money, bool) {
	s, ok := p[symbol]
	if !ok || s == nil {
		return Money{}, false
	}
	return s.ValueAsOf(on)
}

// PriceTable is an in-memory PriceSource.
type PriceTable map[string]*Series

// PriceSeries implements PriceSource. The series is returned whole: points
// before the range are needed to carry prices forward.
func (t PriceTable) PriceSeries(ctx context.Context, symbol string, r date.Range) (*Series, error) {
	s, ok := t[symbol]
	if !ok {
		return nil, &MissingPriceDataError{Symbol: symbol}
	}
	return s.Between(date.NewRange(date.Date{}, r.To)), nil
}

// Set records the price series of symbol.
func (t PriceTable) Set(symbol string, points map[date.Date]float64) PriceTable {
	s := new(Series)
	for d, v := range points {
		s.Append(d, USD(v))
	}
	t[symbol] = s
	return t
}

const (
	// DefaultFetchConcurrency caps the number of concurrent upstream fetches.
	DefaultFetchConcurrency = 4
	// DefaultFetchTimeout bounds each symbol fetch.
	DefaultFetchTimeout = 10 * time.Second
)

// FetchOptions configures FetchPrices. Zero values select the defaults.
type FetchOptions struct {
	Concurrency int
	Timeout     time.Duration
}

// FetchResult holds the prices fetched for a batch of symbols.
type FetchResult struct {
	Prices   Prices
	Warnings Warnings
	Degraded bool // at least one symbol failed or timed out
}

// FetchPrices fetches the price series of all symbols with bounded
// concurrency. A failing symbol never fails the batch: its error is recorded
// as a warning, the stale series returned with the error is kept, and the
// result is flagged degraded.
func FetchPrices(ctx context.Context, src PriceSource, symbols []string, r date.Range, opts FetchOptions) *FetchResult {
	log := zerolog.Ctx(ctx)
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultFetchConcurrency
	}
	limit = min(limit, max(len(symbols), 1))
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}

	res := &FetchResult{Prices: make(Prices, len(symbols))}
	errs := make([]error, len(symbols))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(limit)
	for i, symbol := range symbols {
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			start := time.Now()
			series, err := src.PriceSeries(fctx, symbol, r)
			var missing *MissingPriceDataError
			if errors.As(err, &missing) {
				// not an upstream failure, valuation reports symbols it cannot price.
				err = nil
			}
			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) || errors.Is(fctx.Err(), context.DeadlineExceeded) {
					err = &UpstreamTimeoutError{Symbol: symbol, Err: err}
				} else {
					err = fmt.Errorf("fetching %s: %w", symbol, err)
				}
				errs[i] = err
				log.Warn().Err(err).Str("symbol", symbol).Dur("elapsed", time.Since(start)).Msg("price fetch degraded")
			}
			if series != nil && series.Len() > 0 {
				mu.Lock()
				res.Prices[symbol] = series
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait() // workers never fail the batch

	for _, err := range errs {
		if err != nil {
			res.Warnings.Add(err)
			res.Degraded = true
		}
	}
	log.Debug().Int("symbols", len(symbols)).Int("fetched", len(res.Prices)).Bool("degraded", res.Degraded).Msg("prices fetched")
	return res
}
