package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxNameLength   = 255
	MinNameLength   = 1
	MaxNoteLength   = 1024
	MaxAmount       = "1000000000000" // 1 trillion
	MaxQuantity     = 1_000_000
	MaxPageSize     = 1000
	DefaultPageSize = 50
)

// ValidateName validates a party, item or expense name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)

	if utf8.RuneCountInString(name) < MinNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}

	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, MaxNameLength)
	}

	return nil
}

// ValidateNote validates free text attached to a record.
func ValidateNote(note string) error {
	if utf8.RuneCountInString(note) > MaxNoteLength {
		return fmt.Errorf("%w: note exceeds %d characters", ErrValidation, MaxNoteLength)
	}
	return nil
}

// ValidateAmount validates a money amount.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	maxAmount := decimal.RequireFromString(MaxAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrInvalidAmount, MaxAmount)
	}

	return nil
}

// ValidatePrice validates a unit price, which may be zero.
func ValidatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("%w: unit price cannot be negative", ErrValidation)
	}
	return nil
}

// ValidateQuantity validates a stock quantity.
func ValidateQuantity(quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	if quantity > MaxQuantity {
		return fmt.Errorf("%w: maximum quantity is %d", ErrInvalidQuantity, MaxQuantity)
	}

	return nil
}

// ValidateCurrency validates a currency code.
func ValidateCurrency(c Currency) error {
	if !c.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCurrency, c)
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
