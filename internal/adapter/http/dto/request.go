package dto

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/qatledger/internal/domain"
	"github.com/iho/qatledger/internal/usecase"
)

func currency(s string) domain.Currency {
	return domain.Currency(strings.ToUpper(strings.TrimSpace(s)))
}

// CreatePartyRequest represents a request to add a customer or supplier.
type CreatePartyRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Region  string `json:"region,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreatePartyRequest) ToUseCaseInput() usecase.AddPartyInput {
	return usecase.AddPartyInput{
		Name:    r.Name,
		Phone:   r.Phone,
		Address: r.Address,
		Region:  r.Region,
	}
}

// CreateItemRequest represents a request to add an inventory item.
type CreateItemRequest struct {
	Name              string          `json:"name"`
	Stock             int64           `json:"stock"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Currency          string          `json:"currency"`
	LowStockThreshold int64           `json:"low_stock_threshold"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateItemRequest) ToUseCaseInput() usecase.AddItemInput {
	return usecase.AddItemInput{
		Name:              r.Name,
		Stock:             r.Stock,
		UnitPrice:         r.UnitPrice,
		Currency:          currency(r.Currency),
		LowStockThreshold: r.LowStockThreshold,
	}
}

// UpdateItemRequest represents a partial edit of an inventory item. Absent
// fields are left unchanged.
type UpdateItemRequest struct {
	Name              *string          `json:"name,omitempty"`
	UnitPrice         *decimal.Decimal `json:"unit_price,omitempty"`
	Currency          *string          `json:"currency,omitempty"`
	LowStockThreshold *int64           `json:"low_stock_threshold,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateItemRequest) ToUseCaseInput() usecase.UpdateItemInput {
	input := usecase.UpdateItemInput{
		Name:              r.Name,
		UnitPrice:         r.UnitPrice,
		LowStockThreshold: r.LowStockThreshold,
	}
	if r.Currency != nil {
		c := currency(*r.Currency)
		input.Currency = &c
	}
	return input
}

// CreateTransactionRequest represents a request to record a sale or purchase.
// The item may be given by ID or by name.
type CreateTransactionRequest struct {
	PartyID    string          `json:"party_id"`
	ItemID     string          `json:"item_id,omitempty"`
	ItemName   string          `json:"item_name,omitempty"`
	Quantity   int64           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Currency   string          `json:"currency"`
	Settlement string          `json:"settlement,omitempty"`
	Notes      string          `json:"notes,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransactionRequest) ToUseCaseInput() usecase.RecordTransactionInput {
	return usecase.RecordTransactionInput{
		PartyID:    r.PartyID,
		ItemID:     r.ItemID,
		ItemName:   r.ItemName,
		Quantity:   r.Quantity,
		UnitPrice:  r.UnitPrice,
		Currency:   currency(r.Currency),
		Settlement: domain.Settlement(strings.ToLower(strings.TrimSpace(r.Settlement))),
		Notes:      r.Notes,
	}
}

// CreateOpeningBalanceRequest represents a request to seed a prior debt.
type CreateOpeningBalanceRequest struct {
	PartyType string          `json:"party_type"`
	PartyID   string          `json:"party_id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Notes     string          `json:"notes,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateOpeningBalanceRequest) ToUseCaseInput() usecase.OpeningBalanceInput {
	return usecase.OpeningBalanceInput{
		PartyType: domain.PartyType(strings.ToLower(strings.TrimSpace(r.PartyType))),
		PartyID:   r.PartyID,
		Amount:    r.Amount,
		Currency:  currency(r.Currency),
		Notes:     r.Notes,
	}
}

// CreateVoucherRequest represents a request to record a receipt or payment.
type CreateVoucherRequest struct {
	Direction string          `json:"direction"`
	PartyID   string          `json:"party_id"`
	PartyType string          `json:"party_type,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Note      string          `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateVoucherRequest) ToUseCaseInput() usecase.RecordVoucherInput {
	return usecase.RecordVoucherInput{
		Direction: domain.VoucherDirection(strings.ToLower(strings.TrimSpace(r.Direction))),
		PartyID:   r.PartyID,
		PartyType: domain.PartyType(strings.ToLower(strings.TrimSpace(r.PartyType))),
		Amount:    r.Amount,
		Currency:  currency(r.Currency),
		Note:      r.Note,
	}
}

// EditVoucherRequest represents a request to correct a voucher.
type EditVoucherRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
}

// ToUseCaseInput converts to use case input.
func (r *EditVoucherRequest) ToUseCaseInput() usecase.EditVoucherInput {
	return usecase.EditVoucherInput{Amount: r.Amount, Note: r.Note}
}

// CreateWasteRequest represents a request to record spoiled stock.
type CreateWasteRequest struct {
	ItemID        string          `json:"item_id,omitempty"`
	ItemName      string          `json:"item_name,omitempty"`
	Quantity      int64           `json:"quantity"`
	EstimatedLoss decimal.Decimal `json:"estimated_loss"`
	Currency      string          `json:"currency"`
	Reason        string          `json:"reason,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateWasteRequest) ToUseCaseInput() usecase.RecordWasteInput {
	return usecase.RecordWasteInput{
		ItemID:        r.ItemID,
		ItemName:      r.ItemName,
		Quantity:      r.Quantity,
		EstimatedLoss: r.EstimatedLoss,
		Currency:      currency(r.Currency),
		Reason:        r.Reason,
	}
}

// CreateExpenseRequest represents a request to record an expense.
type CreateExpenseRequest struct {
	Title    string          `json:"title"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Notes    string          `json:"notes,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateExpenseRequest) ToUseCaseInput() usecase.RecordExpenseInput {
	return usecase.RecordExpenseInput{
		Title:    r.Title,
		Category: r.Category,
		Amount:   r.Amount,
		Currency: currency(r.Currency),
		Notes:    r.Notes,
	}
}

// UpdateExpenseRequest represents a partial edit of an expense. Absent
// fields are left unchanged.
type UpdateExpenseRequest struct {
	Title    *string          `json:"title,omitempty"`
	Category *string          `json:"category,omitempty"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Currency *string          `json:"currency,omitempty"`
	Notes    *string          `json:"notes,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateExpenseRequest) ToUseCaseInput() usecase.UpdateExpenseInput {
	input := usecase.UpdateExpenseInput{
		Title:    r.Title,
		Category: r.Category,
		Amount:   r.Amount,
		Notes:    r.Notes,
	}
	if r.Currency != nil {
		c := currency(*r.Currency)
		input.Currency = &c
	}
	return input
}

// ProposalRequest carries the free text handed to the assistant.
type ProposalRequest struct {
	Text string `json:"text"`
}
