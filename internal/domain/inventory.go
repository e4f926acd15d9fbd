package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem is a stocked product category. Stock may go negative; it is
// never clamped.
type InventoryItem struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Stock             int64           `json:"stock"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Currency          Currency        `json:"currency"`
	LowStockThreshold int64           `json:"low_stock_threshold"`
	CreatedAt         time.Time       `json:"created_at"`
}

// ApplyStockDelta adjusts the stock counter by delta.
func (i *InventoryItem) ApplyStockDelta(delta int64) {
	i.Stock += delta
}

// IsLowStock reports whether stock is at or below the threshold.
func (i *InventoryItem) IsLowStock() bool {
	return i.Stock <= i.LowStockThreshold
}

// Waste records stock lost to spoilage.
type Waste struct {
	ID            string          `json:"id"`
	ItemID        string          `json:"item_id"`
	ItemName      string          `json:"item_name"`
	Quantity      int64           `json:"quantity"`
	EstimatedLoss decimal.Decimal `json:"estimated_loss"`
	Currency      Currency        `json:"currency"`
	Reason        string          `json:"reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Expense is an operating cost. It has no stock effect and no party.
type Expense struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Category  string          `json:"category,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  Currency        `json:"currency"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
