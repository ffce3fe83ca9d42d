package tickker

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Percent is a percentage, 10 means 10%.
type Percent float64

// PercentOf converts a decimal ratio (0.1) into a Percent (10).
func PercentOf(ratio decimal.Decimal) Percent {
	return Percent(ratio.Shift(2).InexactFloat64())
}

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", p)
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", p)
	if res == "+0.00%" {
		return "-"
	}
	return res
}

// Round returns p rounded to 2 decimals.
func (p Percent) Round() Percent {
	return Percent(math.Round(float64(p)*100) / 100)
}

// MarshalJSON writes the percentage as a number rounded to 2 decimals, NaN is written as null.
func (p Percent) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(p)) || math.IsInf(float64(p), 0) {
		return []byte("null"), nil
	}
	return decimal.NewFromFloat(float64(p)).Round(2).MarshalJSON()
}
