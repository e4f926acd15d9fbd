package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ExchangeRates are display-only conversion rates into YER. Nothing in the
// ledger uses them; balances stay segregated per currency.
type ExchangeRates struct {
	SARToYER decimal.Decimal `json:"sar_to_yer"`
	OMRToYER decimal.Decimal `json:"omr_to_yer"`
}

// DefaultExchangeRates returns the rates the agency starts with.
func DefaultExchangeRates() ExchangeRates {
	return ExchangeRates{
		SARToYER: decimal.NewFromInt(430),
		OMRToYER: decimal.NewFromInt(425),
	}
}

// Validate checks that every rate is positive.
func (r ExchangeRates) Validate() error {
	if !r.SARToYER.IsPositive() || !r.OMRToYER.IsPositive() {
		return fmt.Errorf("%w: exchange rates must be positive", ErrValidation)
	}
	return nil
}

// ConvertToYER gives an advisory YER equivalent of amount.
func (r ExchangeRates) ConvertToYER(amount decimal.Decimal, from Currency) (decimal.Decimal, error) {
	switch from {
	case CurrencyYER:
		return amount, nil
	case CurrencySAR:
		return amount.Mul(r.SARToYER), nil
	case CurrencyOMR:
		return amount.Mul(r.OMRToYER), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidCurrency, from)
	}
}
