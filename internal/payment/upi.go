package payment

import (
	"net/url"

	"mini-mart/internal/money"
)

// UPIConfig identifies the payee of generated UPI links.
type UPIConfig struct {
	PayeeVPA  string
	PayeeName string
	Currency  string
}

// UPILink builds a upi://pay deep link for amount (minor units) with the given note.
func (c UPIConfig) UPILink(amount int64, note string) string {
	currency := c.Currency
	if currency == "" {
		currency = "INR"
	}
	params := url.Values{
		"pa": {c.PayeeVPA},
		"pn": {c.PayeeName},
		"am": {money.Major(amount)},
		"cu": {currency},
		"tn": {note},
	}
	return "upi://pay?" + params.Encode()
}
