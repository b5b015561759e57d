package utils

import (
	"math"

	"github.com/shopspring/decimal"
)

var half = decimal.NewFromFloat(0.5)

// RoundMoney rounds a number to 2 decimal places, halves toward positive
// infinity, so 2.005 becomes 2.01 and -2.005 becomes -2.00. The value goes
// through its shortest decimal representation first, which keeps 2.005 from
// truncating to 2.00 in binary.
func RoundMoney(num float64) float64 {
	if !IsFinite(num) {
		return num
	}
	rounded, _ := decimal.NewFromFloat(num).
		Shift(MoneyDecimalPlaces).
		Add(half).
		Floor().
		Shift(-MoneyDecimalPlaces).
		Float64()
	if rounded == 0 {
		return 0
	}
	return rounded
}

// IsNegligible reports whether |num| is at or below NegligibleThreshold
func IsNegligible(num float64) bool {
	return IsNegligibleWithin(num, NegligibleThreshold)
}

// IsNegligibleWithin reports whether |num| is at or below threshold
func IsNegligibleWithin(num, threshold float64) bool {
	return math.Abs(num) <= threshold
}

// IsFinite reports whether num is neither NaN nor infinite
func IsFinite(num float64) bool {
	return !math.IsNaN(num) && !math.IsInf(num, 0)
}

// Min returns the minimum of two float64 values
func Min(a, b float64) float64 {
	return math.Min(a, b)
}

// SumMoney adds amounts as decimals and rounds the result
func SumMoney(amounts ...float64) float64 {
	total := decimal.Zero
	for _, amount := range amounts {
		if !IsFinite(amount) {
			continue
		}
		total = total.Add(decimal.NewFromFloat(amount))
	}
	result, _ := total.Round(MoneyDecimalPlaces).Float64()
	return result
}
