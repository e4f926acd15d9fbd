package domain

import "time"

// MaxActivityLogEntries is how many activity entries are retained.
const MaxActivityLogEntries = 50

// ActivityCategory tags an activity entry for filtering.
type ActivityCategory string

const (
	ActivitySale     ActivityCategory = "sale"
	ActivityPurchase ActivityCategory = "purchase"
	ActivityVoucher  ActivityCategory = "voucher"
	ActivityWaste    ActivityCategory = "waste"
	ActivitySystem   ActivityCategory = "system"
)

// ActivityAction labels what happened.
type ActivityAction string

const (
	ActionSaleRecorded        ActivityAction = "sale.record"
	ActionSaleReturned        ActivityAction = "sale.return"
	ActionSaleDeleted         ActivityAction = "sale.delete"
	ActionPurchaseRecorded    ActivityAction = "purchase.record"
	ActionPurchaseReturned    ActivityAction = "purchase.return"
	ActionPurchaseDeleted     ActivityAction = "purchase.delete"
	ActionOpeningBalance      ActivityAction = "opening_balance.record"
	ActionVoucherRecorded     ActivityAction = "voucher.record"
	ActionVoucherEdited       ActivityAction = "voucher.edit"
	ActionVoucherDeleted      ActivityAction = "voucher.delete"
	ActionWasteRecorded       ActivityAction = "waste.record"
	ActionWasteDeleted        ActivityAction = "waste.delete"
	ActionExpenseRecorded     ActivityAction = "expense.record"
	ActionExpenseEdited       ActivityAction = "expense.edit"
	ActionExpenseDeleted      ActivityAction = "expense.delete"
	ActionPartyAdded          ActivityAction = "party.add"
	ActionPartyDeleted        ActivityAction = "party.delete"
	ActionInventoryItemAdded  ActivityAction = "item.add"
	ActionInventoryItemEdited ActivityAction = "item.edit"
	ActionInventoryItemDelete ActivityAction = "item.delete"
)

// ActivityLogEntry is an append-only audit record written by every mutation.
type ActivityLogEntry struct {
	ID        string           `json:"id"`
	Action    ActivityAction   `json:"action"`
	Detail    string           `json:"detail"`
	Category  ActivityCategory `json:"category"`
	CreatedAt time.Time        `json:"created_at"`
}

// PrependActivity puts entry at the head of log and drops the oldest entries
// past MaxActivityLogEntries.
func PrependActivity(log []ActivityLogEntry, entry ActivityLogEntry) []ActivityLogEntry {
	out := make([]ActivityLogEntry, 0, MaxActivityLogEntries)
	out = append(out, entry)
	out = append(out, log...)
	if len(out) > MaxActivityLogEntries {
		out = out[:MaxActivityLogEntries]
	}
	return out
}
