package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxVoucherHistory is how many prior versions of a voucher are kept.
const MaxVoucherHistory = 5

// VoucherDirection is the way cash moved.
type VoucherDirection string

const (
	// VoucherReceipt is cash received from a party.
	VoucherReceipt VoucherDirection = "receipt"
	// VoucherPayment is cash paid to a party.
	VoucherPayment VoucherDirection = "payment"
)

// IsValid reports whether d is a known direction.
func (d VoucherDirection) IsValid() bool {
	return d == VoucherReceipt || d == VoucherPayment
}

// VoucherEdit is a snapshot of a voucher before one edit.
type VoucherEdit struct {
	PreviousAmount decimal.Decimal `json:"previous_amount"`
	PreviousNote   string          `json:"previous_note"`
	EditedAt       time.Time       `json:"edited_at"`
}

// Voucher records a cash movement between the agency and a party.
type Voucher struct {
	ID        string           `json:"id"`
	Direction VoucherDirection `json:"direction"`
	PartyID   string           `json:"party_id"`
	PartyName string           `json:"party_name"`
	PartyType PartyType        `json:"party_type"`
	Amount    decimal.Decimal  `json:"amount"`
	Currency  Currency         `json:"currency"`
	Note      string           `json:"note,omitempty"`
	History   []VoucherEdit    `json:"history,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// ApplyEdit pushes the current amount and note onto the history (newest
// first, at most MaxVoucherHistory entries) and then overwrites them.
func (v *Voucher) ApplyEdit(amount decimal.Decimal, note string, at time.Time) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	history := make([]VoucherEdit, 0, MaxVoucherHistory)
	history = append(history, VoucherEdit{
		PreviousAmount: v.Amount,
		PreviousNote:   v.Note,
		EditedAt:       at,
	})
	history = append(history, v.History...)
	if len(history) > MaxVoucherHistory {
		history = history[:MaxVoucherHistory]
	}

	v.History = history
	v.Amount = amount
	v.Note = note

	return nil
}
