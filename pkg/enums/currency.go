package enums

import (
	"fmt"
	"strings"
)

// Currency is a settlement currency accepted for card payments.
type Currency string

const (
	CurrencyGBP Currency = "gbp"
	CurrencyEUR Currency = "eur"
)

var validCurrencies = []Currency{
	CurrencyGBP,
	CurrencyEUR,
}

// String implements fmt.Stringer.
func (c Currency) String() string {
	return string(c)
}

// IsValid reports whether the currency is recognized.
func (c Currency) IsValid() bool {
	for _, candidate := range validCurrencies {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCurrency accepts any casing; blank means GBP.
func ParseCurrency(value string) (Currency, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return CurrencyGBP, nil
	}
	if c := Currency(value); c.IsValid() {
		return c, nil
	}
	return "", fmt.Errorf("invalid currency %q", value)
}
