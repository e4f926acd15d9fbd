package domain

import (
	"errors"
	"fmt"
)

// Error classes. Every specific error below wraps one of them so callers can
// branch with errors.Is on the class alone.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrPersistence = errors.New("persistence failed")
)

var (
	// Validation errors
	ErrInvalidAmount   = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrInvalidQuantity = fmt.Errorf("%w: quantity must be positive", ErrValidation)
	ErrInvalidCurrency = fmt.Errorf("%w: unknown currency", ErrValidation)
	ErrInvalidName     = fmt.Errorf("%w: invalid name", ErrValidation)
	ErrMissingParty    = fmt.Errorf("%w: party is required", ErrValidation)
	ErrMissingItem     = fmt.Errorf("%w: item is required", ErrValidation)
	ErrInvalidCommand  = fmt.Errorf("%w: invalid command", ErrValidation)
	ErrAlreadyReturned = fmt.Errorf("%w: transaction already returned", ErrValidation)

	// Lookup errors
	ErrTransactionNotFound = fmt.Errorf("transaction %w", ErrNotFound)
	ErrVoucherNotFound     = fmt.Errorf("voucher %w", ErrNotFound)
	ErrPartyNotFound       = fmt.Errorf("party %w", ErrNotFound)
	ErrItemNotFound        = fmt.Errorf("inventory item %w", ErrNotFound)
	ErrWasteNotFound       = fmt.Errorf("waste record %w", ErrNotFound)
	ErrExpenseNotFound     = fmt.Errorf("expense %w", ErrNotFound)
)

// WrapPersistence marks a storage failure. Domain errors pass through
// untouched so lookups keep their not-found meaning.
func WrapPersistence(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrPersistence) {
		return err
	}

	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
