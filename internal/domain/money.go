package domain

import (
	"fmt"
	"math"
)

// Money is an amount in cents. All price arithmetic happens on Money so
// totals never accumulate floating-point error.
type Money int64

// MoneyFromDollars converts a dollar amount to Money. The amount must have
// at most 2 decimal places.
func MoneyFromDollars(f float64) (Money, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("monetary values must be finite")
	}
	// A non-zero third decimal means sub-cent precision.
	// Round first: 1.10 * 1000 = 1099.9999...
	scaled := math.Round(f * 1000)
	if math.Mod(scaled, 10) != 0 {
		return 0, fmt.Errorf("monetary values must have at most 2 decimal places")
	}
	return Money(math.Round(f * 100)), nil
}

// PriceFromDollars is MoneyFromDollars restricted to non-negative amounts,
// which is what every catalog price must be.
func PriceFromDollars(f float64) (Money, error) {
	if f < 0 {
		return 0, fmt.Errorf("price must be >= 0")
	}
	return MoneyFromDollars(f)
}

// Dollars returns the amount as a float64 dollar value for the wire.
func (m Money) Dollars() float64 {
	return float64(m) / 100.0
}

func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s$%d.%02d", sign, v/100, v%100)
}
