// Package yahoo fetches daily closing prices from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // exchange time zones

	"github.com/PaesslerAG/jsonpath"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/sohumt123/Tickker"
	"github.com/sohumt123/Tickker/date"
)

// DefaultURL is the Yahoo Finance query host.
const DefaultURL = "https://query1.finance.yahoo.com"

// defaultTimezone is used when the payload does not name the exchange time zone.
const defaultTimezone = "America/New_York"

// Client is a tickker.PriceSource backed by the Yahoo v8 chart endpoint.
type Client struct {
	client *resty.Client
}

// New returns a client querying baseURL (DefaultURL when empty).
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "tickker/1.0")
	return &Client{client: client}
}

// Ticker returns the Yahoo ticker of a symbol: share classes use a dash ("BRK.B" is "BRK-B").
func Ticker(symbol string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(symbol)), ".", "-")
}

// PriceSeries implements tickker.PriceSource.
func (c *Client) PriceSeries(ctx context.Context, symbol string, r date.Range) (*tickker.Series, error) {
	// https://query1.finance.yahoo.com/v8/finance/chart/AAPL?period1=1704067200&period2=1704412800&interval=1d
	// {"chart": {"result": [{
	//    "meta": {"currency": "USD", "symbol": "AAPL", "exchangeTimezoneName": "America/New_York", ...},
	//    "timestamp": [1704205800, ...],
	//    "indicators": {"quote": [{"close": [185.64, ...], ...}], ...}
	// }], "error": null}}
	log := zerolog.Ctx(ctx).With().Str("symbol", symbol).Logger()
	params := map[string]string{
		"period1":  strconv.FormatInt(r.From.Time().Unix(), 10),
		"period2":  strconv.FormatInt(r.To.Add(1).Time().Unix(), 10),
		"interval": "1d",
		"events":   "div,splits",
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("ticker", Ticker(symbol)).
		SetQueryParams(params).
		Get("/v8/finance/chart/{ticker}")
	if err != nil {
		return nil, fmt.Errorf("cannot GET %s chart: %w", symbol, err)
	}
	log.Debug().Int("status", resp.StatusCode()).Dur("elapsed", resp.Time()).Msg("yahoo chart")

	var jobj any
	if err := json.Unmarshal(resp.Body(), &jobj); err != nil {
		if resp.StatusCode() != http.StatusOK {
			return nil, fmt.Errorf("cannot GET %s chart: %s", symbol, resp.Status())
		}
		return nil, fmt.Errorf("error parsing %s chart: %w", symbol, err)
	}
	if description, ok := get(jobj, "$.chart.error.description").(string); ok {
		if resp.StatusCode() == http.StatusNotFound || strings.Contains(description, "No data") {
			return nil, &tickker.MissingPriceDataError{Symbol: symbol}
		}
		return nil, fmt.Errorf("yahoo %s: %s", symbol, description)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("cannot GET %s chart: %s", symbol, resp.Status())
	}
	return parseChart(symbol, jobj)
}

// parseChart extracts the daily closes of a chart payload.
func parseChart(symbol string, jobj any) (*tickker.Series, error) {
	timestamps, _ := get(jobj, "$.chart.result[0].timestamp").([]any)
	closes, _ := get(jobj, "$.chart.result[0].indicators.quote[0].close").([]any)
	if len(timestamps) == 0 {
		return nil, &tickker.MissingPriceDataError{Symbol: symbol}
	}
	if len(closes) != len(timestamps) {
		return nil, fmt.Errorf("error parsing %s chart: %d timestamps for %d closes", symbol, len(timestamps), len(closes))
	}

	tz, _ := get(jobj, "$.chart.result[0].meta.exchangeTimezoneName").(string)
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}

	res := new(tickker.Series)
	for i, ts := range timestamps {
		sec, ok := ts.(float64)
		if !ok {
			continue
		}
		price, ok := closes[i].(float64)
		if !ok || price <= 0 {
			// yahoo leaves holes as null
			continue
		}
		res.Append(date.Of(time.Unix(int64(sec), 0).In(loc)), tickker.USD(price))
	}
	if res.Len() == 0 {
		return nil, &tickker.MissingPriceDataError{Symbol: symbol}
	}
	return res, nil
}

// get returns the value at path, or nil.
func get(jobj any, path string) any {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil
	}
	return jval
}
