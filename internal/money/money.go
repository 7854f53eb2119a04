// Package money formats minor-unit integer amounts for presentation.
// All authoritative arithmetic stays in int64 minor units.
package money

import "github.com/shopspring/decimal"

var symbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

// Major converts minor units to a fixed two-decimal major-unit string (89900 -> "899.00").
func Major(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}

// Display renders an amount with its currency symbol, or the code when unknown.
func Display(minor int64, currency string) string {
	if sym, ok := symbols[currency]; ok {
		return sym + Major(minor)
	}
	return Major(minor) + " " + currency
}
