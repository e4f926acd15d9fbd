package domain

import "time"

// Event types
const (
	EventTypeSaleRecorded     = "sale.recorded"
	EventTypeSaleReturned     = "sale.returned"
	EventTypeSaleDeleted      = "sale.deleted"
	EventTypePurchaseRecorded = "purchase.recorded"
	EventTypePurchaseReturned = "purchase.returned"
	EventTypePurchaseDeleted  = "purchase.deleted"
	EventTypeVoucherRecorded  = "voucher.recorded"
	EventTypeVoucherEdited    = "voucher.edited"
	EventTypeVoucherDeleted   = "voucher.deleted"
	EventTypeWasteRecorded    = "waste.recorded"
	EventTypeWasteDeleted     = "waste.deleted"
	EventTypeExpenseRecorded  = "expense.recorded"
	EventTypeExpenseEdited    = "expense.edited"
	EventTypeExpenseDeleted   = "expense.deleted"
	EventTypePartyAdded       = "party.added"
	EventTypePartyDeleted     = "party.deleted"
	EventTypeItemAdded        = "item.added"
	EventTypeItemEdited       = "item.edited"
	EventTypeItemDeleted      = "item.deleted"
)

// Aggregate types
const (
	AggregateTypeTransaction = "transaction"
	AggregateTypeVoucher     = "voucher"
	AggregateTypeWaste       = "waste"
	AggregateTypeExpense     = "expense"
	AggregateTypeParty       = "party"
	AggregateTypeItem        = "item"
)

// ChangeEvent tells subscribers that a committed mutation touched the
// snapshot. PartyID and ItemID are empty when not applicable.
type ChangeEvent struct {
	EventType     string    `json:"event_type"`
	AggregateType string    `json:"aggregate_type"`
	AggregateID   string    `json:"aggregate_id"`
	PartyID       string    `json:"party_id,omitempty"`
	PartyType     PartyType `json:"party_type,omitempty"`
	ItemID        string    `json:"item_id,omitempty"`
	StockDelta    int64     `json:"stock_delta,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
