package dataprocessing

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// round2 rounds a decimal amount to two places and returns it as a float.
func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// cellDecimal converts a numeric cell to an exact decimal, preferring the
// raw text so sums stay independent of float representation. Null cells
// contribute zero.
func cellDecimal(c Cell) decimal.Decimal {
	if !c.Valid {
		return decimal.Zero
	}
	if d, err := decimal.NewFromString(strings.TrimSpace(c.Raw)); err == nil {
		return d
	}
	return decimal.NewFromFloat(c.Num)
}

// parseAmount coerces a raw cell to a float, defaulting to zero when the
// cell is not numeric.
func parseAmount(s string) float64 {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0.0
	}
	return n
}

// parseAmount2 coerces like parseAmount and rounds to two decimals.
func parseAmount2(s string) float64 {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0.0
	}
	return round2(d)
}
