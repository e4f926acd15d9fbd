package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind tells sales and purchases apart.
type TransactionKind string

const (
	KindSale     TransactionKind = "sale"
	KindPurchase TransactionKind = "purchase"
)

// IsValid reports whether k is a known transaction kind.
func (k TransactionKind) IsValid() bool {
	return k == KindSale || k == KindPurchase
}

// PartyType returns the counterpart type for the kind.
func (k TransactionKind) PartyType() PartyType {
	if k == KindPurchase {
		return PartySupplier
	}
	return PartyCustomer
}

// Settlement is how the transaction is paid.
type Settlement string

const (
	SettlementCash     Settlement = "cash"
	SettlementDeferred Settlement = "deferred"
)

// Transaction is a sale or a purchase: a stock movement plus the money owed
// for it in one currency.
type Transaction struct {
	ID         string          `json:"id"`
	Kind       TransactionKind `json:"kind"`
	PartyID    string          `json:"party_id"`
	PartyName  string          `json:"party_name"`
	ItemID     string          `json:"item_id,omitempty"`
	ItemName   string          `json:"item_name"`
	Quantity   int64           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Total      decimal.Decimal `json:"total"`
	Currency   Currency        `json:"currency"`
	Settlement Settlement      `json:"settlement"`
	Notes      string          `json:"notes,omitempty"`
	IsReturned bool            `json:"is_returned"`
	CreatedAt  time.Time       `json:"created_at"`
}

// IsOpeningBalance reports whether t seeds a pre-existing debt without any
// stock movement.
func (t *Transaction) IsOpeningBalance() bool {
	return t.Quantity == 0 && t.Total.IsPositive()
}

// StockDelta is the signed change t applied to its item when recorded.
// Sales take stock out, purchases bring it in.
func (t *Transaction) StockDelta() int64 {
	if t.Kind == KindPurchase {
		return t.Quantity
	}
	return -t.Quantity
}

// Counts reports whether t contributes to party balances.
func (t *Transaction) Counts() bool {
	return !t.IsReturned
}

// MarkReturned flips t to returned. The second call fails so the caller never
// reverses stock twice.
func (t *Transaction) MarkReturned() error {
	if t.IsReturned {
		return ErrAlreadyReturned
	}
	t.IsReturned = true
	return nil
}

// LineTotal computes quantity × unit price.
func LineTotal(quantity int64, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(quantity))
}
