package tickker

import (
	"encoding/json"
	"math"
	"testing"
)

func TestJsonObjectWriter(t *testing.T) {
	t.Run("empty object", func(t *testing.T) {
		var w jsonObjectWriter
		got, err := w.MarshalJSON()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := "{}"; string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("keeps insertion order", func(t *testing.T) {
		var w jsonObjectWriter
		w.Append("date", "2024-01-02")
		w.Append("portfolio", 1)
		w.Append("spy", "hello")
		w.Append("aapl", 2)
		got, err := w.MarshalJSON()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `{"date":"2024-01-02","portfolio":1,"spy":"hello","aapl":2}`
		if string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("embed object", func(t *testing.T) {
		var w jsonObjectWriter
		embedded := json.RawMessage(`{"c":3,"d":4}`)
		w.Append("a", 1)
		w.Embed(embedded)
		w.Embed([]byte(`{}`))
		w.Append("b", 2)
		got, err := w.MarshalJSON()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `{"a":1,"c":3,"d":4,"b":2}`
		if string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("optional fields", func(t *testing.T) {
		var w jsonObjectWriter
		w.Append("a", 0) // assess that a zero value is actually added.
		w.Optional("b", "")
		w.Optional("c", 0)
		w.Optional("d", "hello")
		got, err := w.MarshalJSON()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `{"a":0,"d":"hello"}`
		if string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("error is sticky", func(t *testing.T) {
		var w jsonObjectWriter
		w.Append("bad", math.Inf(1))
		w.Append("good", 1)
		if _, err := w.MarshalJSON(); err == nil {
			t.Errorf("MarshalJSON() must report the marshalling error")
		}
	})
}

func TestNumbersJSON(t *testing.T) {
	testCases := []struct {
		name string
		in   any
		want string
	}{
		{"money rounded to cents", USD(13333.3333333), "13333.33"},
		{"money integer", USD(2000), "2000"},
		{"quantity exact", Q(1.23456), "1.23456"},
		{"percent rounded", Percent(10.0000001), "10"},
		{"percent NaN", Percent(math.NaN()), "null"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := json.Marshal(tc.in)
			if err != nil {
				t.Fatalf("json.Marshal() unexpected error: %v", err)
			}
			if string(got) != tc.want {
				t.Errorf("json.Marshal(%v) = %s, want %s", tc.in, got, tc.want)
			}
		})
	}
}

func TestMoney_String(t *testing.T) {
	testCases := []struct {
		in   Money
		want string
	}{
		{USD(1234.5), "$1,234.50"},
		{USD(-5), "-$5.00"},
		{USD(12345.67), "$12,346"},
	}
	for i, tc := range testCases[:2] {
		if got := tc.in.String(); got != tc.want {
			t.Errorf("#%d String() = %q, want %q", i, got, tc.want)
		}
	}
	if got, want := testCases[2].in.Whole(), testCases[2].want; got != want {
		t.Errorf("Whole() = %q, want %q", got, want)
	}
}
