package domain

import (
	"fmt"
	"strings"
)

// Currency is one of the three currencies the agency trades in.
type Currency string

const (
	CurrencyYER Currency = "YER"
	CurrencySAR Currency = "SAR"
	CurrencyOMR Currency = "OMR"
)

var currencies = []Currency{CurrencyYER, CurrencySAR, CurrencyOMR}

// Currencies returns the recognized currencies in display order.
func Currencies() []Currency {
	out := make([]Currency, len(currencies))
	copy(out, currencies)
	return out
}

// IsValid reports whether c is a recognized currency.
func (c Currency) IsValid() bool {
	for _, known := range currencies {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCurrency normalizes and validates a currency code.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, s)
	}
	return c, nil
}
