package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/qatledger/internal/domain"
	"github.com/iho/qatledger/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ListResponse wraps a collection.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// NewListResponse never returns a nil Items slice so clients always see [].
func NewListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Count: len(items)}
}

// BalanceResponse represents what one party owes or is owed, per currency.
type BalanceResponse struct {
	PartyID   string                  `json:"party_id"`
	PartyType domain.PartyType        `json:"party_type"`
	Name      string                  `json:"name"`
	Balances  []domain.CurrencyAmount `json:"balances"`
}

// BalanceFromUseCase converts a party balance to response.
func BalanceFromUseCase(b *usecase.PartyBalance) *BalanceResponse {
	return &BalanceResponse{
		PartyID:   b.Party.ID,
		PartyType: b.Party.Type,
		Name:      b.Party.Name,
		Balances:  b.Balances,
	}
}

// SummaryResponse represents the global per-currency position.
type SummaryResponse struct {
	Currencies []domain.CurrencySummary `json:"currencies"`
}

// DebtRow is one party with outstanding amounts.
type DebtRow struct {
	PartyID string                  `json:"party_id"`
	Name    string                  `json:"name"`
	Phone   string                  `json:"phone,omitempty"`
	Region  string                  `json:"region,omitempty"`
	Debts   []domain.CurrencyAmount `json:"debts"`
}

// DebtsResponse represents the debts report.
type DebtsResponse struct {
	Receivables []DebtRow `json:"receivables"`
	Payables    []DebtRow `json:"payables"`
	GeneratedAt time.Time `json:"generated_at"`
}

// DebtsFromUseCase converts a debts report to response.
func DebtsFromUseCase(r *usecase.DebtsReport) *DebtsResponse {
	return &DebtsResponse{
		Receivables: debtRows(r.Receivables),
		Payables:    debtRows(r.Payables),
		GeneratedAt: r.GeneratedAt,
	}
}

func debtRows(debts []domain.PartyDebt) []DebtRow {
	rows := make([]DebtRow, len(debts))
	for i, d := range debts {
		rows[i] = DebtRow{
			PartyID: d.Party.ID,
			Name:    d.Party.Name,
			Phone:   d.Party.Phone,
			Region:  d.Party.Region,
			Debts:   d.Debts,
		}
	}
	return rows
}

// ConversionResponse represents an advisory YER conversion.
type ConversionResponse struct {
	From   domain.Currency      `json:"from"`
	Amount decimal.Decimal      `json:"amount"`
	YER    decimal.Decimal      `json:"yer"`
	Rates  domain.ExchangeRates `json:"rates"`
}

// ConversionFromUseCase converts a conversion to response.
func ConversionFromUseCase(c *usecase.Conversion, rates domain.ExchangeRates) *ConversionResponse {
	return &ConversionResponse{From: c.From, Amount: c.Amount, YER: c.YER, Rates: rates}
}
