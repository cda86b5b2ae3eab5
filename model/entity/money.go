package entity

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// DefaultCurrency is used when the storefront returns no currency code.
const DefaultCurrency = "USD"

type Money struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode"`
}

// NewMoney builds a Money, defaulting the currency to USD.
func NewMoney(amount decimal.Decimal, code string) Money {
	if code == "" {
		code = DefaultCurrency
	}
	return Money{Amount: amount, CurrencyCode: code}
}

// Unit parses the ISO 4217 code.
func (m Money) Unit() (currency.Unit, error) {
	return currency.ParseISO(m.CurrencyCode)
}

var symbols = map[string]string{
	"USD": "$",
	"CAD": "CA$",
	"AUD": "A$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// Format renders the amount with two decimals, e.g. "$50.00" or "CHF 50.00".
func (m Money) Format() string {
	code := m.CurrencyCode
	if u, err := m.Unit(); err == nil {
		code = u.String()
	}
	amount := m.Amount.StringFixed(2)
	if s, ok := symbols[code]; ok {
		return s + amount
	}
	if code == "" {
		code = DefaultCurrency
		return symbols[code] + amount
	}
	return code + " " + amount
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}
