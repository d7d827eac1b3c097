// Package money rounds monetary amounts.
package money

import "github.com/shopspring/decimal"

// Places is the number of decimal places kept for monetary values.
const Places = 2

// Round rounds f to Places decimals, half away from zero, using the shortest
// decimal representation of f (so 2.675 rounds to 2.68).
func Round(f float64) float64 {
	return decimal.NewFromFloat(f).Round(Places).InexactFloat64()
}

// Line returns quantity × price as an exact decimal product.
func Line(quantity int64, price float64) float64 {
	return decimal.NewFromInt(quantity).Mul(decimal.NewFromFloat(price)).InexactFloat64()
}

// Sum adds amounts exactly and rounds the result.
func Sum(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	return total.Round(Places).InexactFloat64()
}
