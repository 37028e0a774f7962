package util

import "github.com/shopspring/decimal"

// CentsToDollars renders an integer amount of cents as dollars with two decimals.
func CentsToDollars(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
