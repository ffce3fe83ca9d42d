package tickker

import (
	"bytes"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/sohumt123/Tickker/date"
)

func TestLedger_StableOrder(t *testing.T) {
	tx1 := NewBuy(day(2024, time.January, 3), "AAPL", Q(1), USD(100))
	tx2 := NewBuy(day(2024, time.January, 2), "MSFT", Q(1), USD(100))
	tx3 := NewSell(day(2024, time.January, 2), "MSFT", Q(1), USD(100)) // Same date as tx2

	l := NewLedger(tx1, tx2, tx3)
	var got []string
	for _, tx := range l.Transactions() {
		got = append(got, string(tx.Action)+" "+tx.Symbol)
	}
	want := []string{"buy MSFT", "sell MSFT", "buy AAPL"}
	if !slices.Equal(got, want) {
		t.Errorf("Transactions() = %v, want %v", got, want)
	}
	if got, want := l.FirstDate(), day(2024, time.January, 2); got != want {
		t.Errorf("FirstDate() = %v, want %v", got, want)
	}
}

func TestLedger_Symbols(t *testing.T) {
	on := day(2024, time.January, 2)
	l := NewLedger(
		NewBuy(on, "MSFT", Q(1), USD(100)),
		NewBuy(on, "SPAXX**", Q(100), USD(1)),
		NewBuy(on, "AAPL", Q(1), USD(100)),
		Transaction{Date: on, Action: Interest, Amount: USD(1)},
	)
	if got, want := l.Symbols(), []string{"AAPL", "MSFT"}; !slices.Equal(got, want) {
		t.Errorf("Symbols() = %v, want %v", got, want)
	}
}

func TestLedger_Flows(t *testing.T) {
	l := NewLedger(
		NewBuy(day(2024, time.January, 2), "AAPL", Q(10), USD(100)),
		NewBuy(day(2024, time.January, 3), "AAPL", Q(5), USD(100)),
		NewSell(day(2024, time.January, 3), "AAPL", Q(5), USD(100)), // cancels the buy of the day
		NewDividend(day(2024, time.January, 4), "AAPL", USD(5)),
	)
	flows := l.Flows()
	if got, want := flows.Len(), 2; got != want {
		t.Fatalf("Flows().Len() = %d, want %d", got, want)
	}
	if got, want := valueOn(flows, day(2024, time.January, 2)), USD(1000); !got.Equal(want) {
		t.Errorf("flow on 2024-01-02 = %v, want %v", got, want)
	}
	if got, want := valueOn(flows, day(2024, time.January, 4)), USD(-5); !got.Equal(want) {
		t.Errorf("flow on 2024-01-04 = %v, want %v", got, want)
	}
}

func TestDecodeLedger(t *testing.T) {
	jsonlStream := `
{"date":"2024-01-03","action":"Sell","symbol":"AAPL","quantity":5,"price":160,"amount":800}
{"date":"2024-01-02","action":"YOU BOUGHT","symbol":"AAPL","quantity":10,"price":150,"amount":-1500}

{"date":"2024-02-01","action":"DIVIDEND RECEIVED","symbol":"AAPL","amount":5}
`
	ledger, err := DecodeLedger(strings.NewReader(jsonlStream))
	if err != nil {
		t.Fatalf("DecodeLedger() returned an unexpected error: %v", err)
	}
	if got, want := ledger.Len(), 3; got != want {
		t.Fatalf("DecodeLedger() decoded %d transactions, want %d", got, want)
	}
	var actions []Action
	for _, tx := range ledger.Transactions() {
		actions = append(actions, tx.Action)
	}
	if want := []Action{Buy, Sell, Dividend}; !slices.Equal(actions, want) {
		t.Errorf("DecodeLedger() actions = %v, want %v", actions, want)
	}

	var buf bytes.Buffer
	if err := EncodeLedger(&buf, ledger); err != nil {
		t.Fatalf("EncodeLedger() unexpected error: %v", err)
	}
	firstLine, _, _ := strings.Cut(buf.String(), "\n")
	if want := `{"date":"2024-01-02","action":"buy","symbol":"AAPL","quantity":10,"price":150,"amount":-1500}`; firstLine != want {
		t.Errorf("EncodeLedger() first line = %s, want %s", firstLine, want)
	}
}

func TestDecodeLedger_InvalidLine(t *testing.T) {
	_, err := DecodeLedger(strings.NewReader("{\"date\":\"2024-01-02\",\"action\":\"buy\"}\n"))
	if err == nil {
		t.Fatal("DecodeLedger() must reject a buy without symbol")
	}
	if !strings.Contains(err.Error(), "line 1") {
		t.Errorf("DecodeLedger() error %q must name the line", err)
	}
}

func TestLedger_Between(t *testing.T) {
	l := NewLedger(
		NewBuy(day(2024, time.January, 2), "AAPL", Q(1), USD(100)),
		NewBuy(day(2024, time.January, 9), "MSFT", Q(1), USD(100)),
		NewSell(day(2024, time.January, 16), "AAPL", Q(1), USD(110)),
	)
	got := l.Between(date.NewRange(day(2024, time.January, 8), day(2024, time.January, 14)))
	if got.Len() != 1 || got.FirstDate() != day(2024, time.January, 9) {
		t.Errorf("Between() = %d transactions from %v, want the MSFT buy only", got.Len(), got.FirstDate())
	}
}

func TestLedger_Recent(t *testing.T) {
	l := NewLedger(
		NewBuy(day(2024, time.January, 3), "AAPL", Q(1), USD(100)),
		NewBuy(day(2024, time.January, 2), "MSFT", Q(1), USD(100)),
		NewSell(day(2024, time.January, 4), "MSFT", Q(1), USD(110)),
	)
	symbols := func(txs []Transaction) string {
		var res []string
		for _, tx := range txs {
			res = append(res, tx.Date.String()+":"+tx.Symbol)
		}
		return strings.Join(res, ",")
	}
	testCases := []struct {
		n    int
		want string
	}{
		{2, "2024-01-04:MSFT,2024-01-03:AAPL"},
		{20, "2024-01-04:MSFT,2024-01-03:AAPL,2024-01-02:MSFT"},
		{0, ""},
		{-1, ""},
	}
	for _, tc := range testCases {
		if got := symbols(l.Recent(tc.n)); got != tc.want {
			t.Errorf("Recent(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}
