// Package money normalizes monetary amounts at computation boundaries.
// All prices, premiums and cash movements in the API are two-decimal values.
package money

import "github.com/shopspring/decimal"

// Round2 rounds a monetary amount half-up to two decimal places.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
