package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sohumt123/Tickker"
	"github.com/sohumt123/Tickker/date"
)

const chartPayload = `{"chart":{"result":[{
	"meta":{"currency":"USD","symbol":"AAPL","exchangeTimezoneName":"America/New_York"},
	"timestamp":[1704205800,1704292200,1704378600],
	"indicators":{"quote":[{"close":[185.64,null,181.91]}]}
}],"error":null}}`

const notFoundPayload = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v8/finance/chart/AAPL":
			if r.URL.Query().Get("interval") != "1d" {
				http.Error(w, "bad interval", http.StatusBadRequest)
				return
			}
			w.Write([]byte(chartPayload))
		case "/v8/finance/chart/BRK-B":
			w.Write([]byte(chartPayload))
		case "/v8/finance/chart/SLOW":
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte(chartPayload))
		case "/v8/finance/chart/BROKEN":
			http.Error(w, "oops", http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(notFoundPayload))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

var week = date.NewRange(date.New(2024, time.January, 1), date.New(2024, time.January, 5))

func TestClient_PriceSeries(t *testing.T) {
	c := New(testServer(t).URL, time.Second)
	s, err := c.PriceSeries(context.Background(), "AAPL", week)
	if err != nil {
		t.Fatalf("PriceSeries() unexpected error: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("PriceSeries() has %d points, want 2 (null close skipped)", s.Len())
	}
	testCases := []struct {
		on   date.Date
		want tickker.Money
	}{
		{date.New(2024, time.January, 2), tickker.USD(185.64)},
		{date.New(2024, time.January, 4), tickker.USD(181.91)},
	}
	for _, tc := range testCases {
		got, ok := s.Get(tc.on)
		if !ok || !got.Equal(tc.want) {
			t.Errorf("close on %v = %v, want %v", tc.on, got, tc.want)
		}
	}
}

func TestClient_Ticker(t *testing.T) {
	c := New(testServer(t).URL, time.Second)
	if _, err := c.PriceSeries(context.Background(), "brk.b", week); err != nil {
		t.Errorf("PriceSeries(brk.b) unexpected error: %v", err)
	}
}

func TestClient_Errors(t *testing.T) {
	c := New(testServer(t).URL, time.Second)

	_, err := c.PriceSeries(context.Background(), "NOPE", week)
	var missing *tickker.MissingPriceDataError
	if !errors.As(err, &missing) {
		t.Errorf("PriceSeries(NOPE) error = %v, want a MissingPriceDataError", err)
	}

	if _, err := c.PriceSeries(context.Background(), "BROKEN", week); err == nil || errors.As(err, &missing) {
		t.Errorf("PriceSeries(BROKEN) error = %v, want an upstream error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.PriceSeries(ctx, "SLOW", week); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("PriceSeries(SLOW) error = %v, want a deadline", err)
	}
}
