// Package pricecache implements a read-through SQLite cache of daily prices
// in front of a tickker.PriceSource.
package pricecache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/sohumt123/Tickker"
	"github.com/sohumt123/Tickker/date"
)

const schema = `
CREATE TABLE IF NOT EXISTS prices (
	symbol TEXT NOT NULL,
	day    TEXT NOT NULL,
	close  TEXT NOT NULL,
	PRIMARY KEY (symbol, day)
);
CREATE TABLE IF NOT EXISTS coverage (
	symbol     TEXT PRIMARY KEY,
	from_day   TEXT NOT NULL,
	to_day     TEXT NOT NULL,
	fetched_on TEXT NOT NULL
);`

// Cache is a tickker.PriceSource that stores upstream prices per (symbol, day).
//
// A range already covered is served from the database. A range reaching
// the day of the last fetch or later is fetched again on the next day, so that
// today's close eventually replaces an intraday price.
type Cache struct {
	db       *sql.DB
	upstream tickker.PriceSource
	log      zerolog.Logger

	// Today defaults to date.Today.
	Today func() date.Date
}

// Open opens (or creates) the cache database at path.
func Open(path string, upstream tickker.PriceSource, log zerolog.Logger) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	// it's a cache: no fsync
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=synchronous(OFF)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open price cache %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize price cache %s: %w", path, err)
	}
	return &Cache{
		db:       db,
		upstream: upstream,
		log:      log.With().Str("component", "pricecache").Logger(),
		Today:    date.Today,
	}, nil
}

// Close closes the database.
func (c *Cache) Close() error { return c.db.Close() }

type coverage struct {
	r         date.Range
	fetchedOn date.Date
}

// covers reports whether r can be served without asking upstream.
func (cv coverage) covers(r date.Range, today date.Date) bool {
	if cv.r.IsZero() || r.From.Before(cv.r.From) || r.To.After(cv.r.To) {
		return false
	}
	// the latest days may have changed since the fetch.
	if !r.To.Before(cv.fetchedOn) {
		return cv.fetchedOn == today
	}
	return true
}

// PriceSeries implements tickker.PriceSource.
//
// On upstream failure the cached points are returned along with the error.
func (c *Cache) PriceSeries(ctx context.Context, symbol string, r date.Range) (*tickker.Series, error) {
	today := c.Today()
	cv, err := c.coverage(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if cv.covers(r, today) {
		c.log.Debug().Str("symbol", symbol).Stringer("range", r).Msg("cache hit")
		return c.load(ctx, symbol, r)
	}

	series, fetchErr := c.upstream.PriceSeries(ctx, symbol, r)
	if fetchErr != nil {
		var missing *tickker.MissingPriceDataError
		if errors.As(fetchErr, &missing) {
			return nil, fetchErr
		}
		stale, err := c.load(ctx, symbol, r)
		if err != nil || stale.Len() == 0 {
			return series, fetchErr
		}
		c.log.Warn().Err(fetchErr).Str("symbol", symbol).Int("points", stale.Len()).Msg("serving stale prices")
		return stale, fetchErr
	}
	if err := c.store(ctx, symbol, series, cv, r, today); err != nil {
		// the fetch succeeded, a cache write err is ignored.
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("cache write")
	}
	return series, nil
}

func (c *Cache) coverage(ctx context.Context, symbol string) (coverage, error) {
	var from, to, fetched string
	err := c.db.QueryRowContext(ctx, `SELECT from_day, to_day, fetched_on FROM coverage WHERE symbol = ?`, symbol).Scan(&from, &to, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return coverage{}, nil
	}
	if err != nil {
		return coverage{}, fmt.Errorf("reading coverage of %s: %w", symbol, err)
	}
	var cv coverage
	for _, f := range []struct {
		str string
		d   *date.Date
	}{{from, &cv.r.From}, {to, &cv.r.To}, {fetched, &cv.fetchedOn}} {
		if *f.d, err = date.Parse(f.str); err != nil {
			return coverage{}, fmt.Errorf("reading coverage of %s: %w", symbol, err)
		}
	}
	return cv, nil
}

// load returns the cached points of symbol up to r.To.
func (c *Cache) load(ctx context.Context, symbol string, r date.Range) (*tickker.Series, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT day, close FROM prices WHERE symbol = ? AND day <= ? ORDER BY day`, symbol, r.To.String())
	if err != nil {
		return nil, fmt.Errorf("reading prices of %s: %w", symbol, err)
	}
	defer rows.Close()
	res := new(tickker.Series)
	for rows.Next() {
		var day, price string
		if err := rows.Scan(&day, &price); err != nil {
			return nil, fmt.Errorf("reading prices of %s: %w", symbol, err)
		}
		d, err := date.Parse(day)
		if err != nil {
			return nil, fmt.Errorf("reading prices of %s: %w", symbol, err)
		}
		v, err := decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("reading prices of %s on %s: %w", symbol, day, err)
		}
		res.Append(d, tickker.USD(v))
	}
	return res, rows.Err()
}

// store saves the fetched points and extends the coverage of symbol with r.
func (c *Cache) store(ctx context.Context, symbol string, series *tickker.Series, cv coverage, r date.Range, today date.Date) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if series != nil {
		for d, v := range series.Values() {
			if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO prices (symbol, day, close) VALUES (?, ?, ?)`, symbol, d.String(), v.Decimal().String()); err != nil {
				return err
			}
		}
	}
	// extend when contiguous, replace otherwise.
	fetchedOn := today
	if !cv.r.IsZero() && !r.From.After(cv.r.To.Add(1)) && !cv.r.From.After(r.To.Add(1)) {
		if cv.r.From.Before(r.From) {
			r.From = cv.r.From
		}
		if cv.r.To.After(r.To) {
			// the latest cached days were not fetched again.
			r.To = cv.r.To
			fetchedOn = cv.fetchedOn
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO coverage (symbol, from_day, to_day, fetched_on) VALUES (?, ?, ?, ?)`,
		symbol, r.From.String(), r.To.String(), fetchedOn.String()); err != nil {
		return err
	}
	return tx.Commit()
}
