package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/qatledger/internal/domain"
)

// CurrencyPerformance is the trading result in one currency.
type CurrencyPerformance struct {
	Currency   domain.Currency `json:"currency"`
	GrossSales decimal.Decimal `json:"gross_sales"`
	Expenses   decimal.Decimal `json:"expenses"`
	WasteLoss  decimal.Decimal `json:"waste_loss"`
	NetProfit  decimal.Decimal `json:"net_profit"`
}

// PerformanceSummary aggregates sales, expenses and waste per currency.
type PerformanceSummary struct {
	SalesCount  int                   `json:"sales_count"`
	Currencies  []CurrencyPerformance `json:"currencies"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// Conversion is an advisory amount in YER. It is never used for balances.
type Conversion struct {
	From   domain.Currency `json:"from"`
	Amount decimal.Decimal `json:"amount"`
	YER    decimal.Decimal `json:"yer"`
}

// ReportUseCase serves read-only reports.
type ReportUseCase struct {
	repos Repositories

	mu    sync.RWMutex
	rates domain.ExchangeRates
}

// NewReportUseCase creates a new ReportUseCase.
func NewReportUseCase(repos Repositories, rates domain.ExchangeRates) *ReportUseCase {
	return &ReportUseCase{repos: repos, rates: rates}
}

// PerformanceSummary counts active sales and nets gross sales against
// expenses and waste losses, currency by currency. Returned sales and
// opening balances are not trading activity and are left out.
func (uc *ReportUseCase) PerformanceSummary(ctx context.Context) (*PerformanceSummary, error) {
	sales, err := uc.repos.Transactions.List(ctx, domain.KindSale)
	if err != nil {
		return nil, domain.WrapPersistence("list sales", err)
	}
	expenses, err := uc.repos.Expenses.List(ctx)
	if err != nil {
		return nil, domain.WrapPersistence("list expenses", err)
	}
	waste, err := uc.repos.Waste.List(ctx)
	if err != nil {
		return nil, domain.WrapPersistence("list waste", err)
	}

	gross := make(map[domain.Currency]decimal.Decimal)
	spent := make(map[domain.Currency]decimal.Decimal)
	lost := make(map[domain.Currency]decimal.Decimal)

	summary := &PerformanceSummary{GeneratedAt: time.Now().UTC()}

	for _, s := range sales {
		if !s.Counts() || s.IsOpeningBalance() {
			continue
		}
		summary.SalesCount++
		gross[s.Currency] = gross[s.Currency].Add(s.Total)
	}
	for _, e := range expenses {
		spent[e.Currency] = spent[e.Currency].Add(e.Amount)
	}
	for _, w := range waste {
		lost[w.Currency] = lost[w.Currency].Add(w.EstimatedLoss)
	}

	for _, c := range domain.Currencies() {
		summary.Currencies = append(summary.Currencies, CurrencyPerformance{
			Currency:   c,
			GrossSales: gross[c],
			Expenses:   spent[c],
			WasteLoss:  lost[c],
			NetProfit:  gross[c].Sub(spent[c]).Sub(lost[c]),
		})
	}

	return summary, nil
}

// Convert expresses amount in YER at the configured display rates.
func (uc *ReportUseCase) Convert(amount decimal.Decimal, from domain.Currency) (*Conversion, error) {
	yer, err := uc.Rates().ConvertToYER(amount, from)
	if err != nil {
		return nil, err
	}
	return &Conversion{From: from, Amount: amount, YER: yer}, nil
}

// Rates returns the current display rates.
func (uc *ReportUseCase) Rates() domain.ExchangeRates {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.rates
}

// SetRates replaces the display rates until the next restart, when the
// configured rates apply again.
func (uc *ReportUseCase) SetRates(rates domain.ExchangeRates) error {
	if err := rates.Validate(); err != nil {
		return err
	}

	uc.mu.Lock()
	uc.rates = rates
	uc.mu.Unlock()

	return nil
}

// ActivityLog returns up to limit entries, newest first.
func (uc *ReportUseCase) ActivityLog(ctx context.Context, limit int) ([]*domain.ActivityLogEntry, error) {
	if limit <= 0 || limit > domain.MaxActivityLogEntries {
		limit = domain.MaxActivityLogEntries
	}

	entries, err := uc.repos.Activity.List(ctx, limit)
	if err != nil {
		return nil, domain.WrapPersistence("list activity", err)
	}
	return entries, nil
}

// ListTransactions lists sales or purchases, newest first.
func (uc *ReportUseCase) ListTransactions(ctx context.Context, kind domain.TransactionKind) ([]*domain.Transaction, error) {
	txs, err := uc.repos.Transactions.List(ctx, kind)
	if err != nil {
		return nil, domain.WrapPersistence("list "+string(kind), err)
	}
	return txs, nil
}

// GetTransaction retrieves one sale or purchase.
func (uc *ReportUseCase) GetTransaction(ctx context.Context, kind domain.TransactionKind, id string) (*domain.Transaction, error) {
	t, err := uc.repos.Transactions.GetByID(ctx, kind, id)
	if err != nil {
		return nil, domain.WrapPersistence("get "+string(kind), err)
	}
	return t, nil
}

// ListVouchers lists vouchers, newest first.
func (uc *ReportUseCase) ListVouchers(ctx context.Context) ([]*domain.Voucher, error) {
	vouchers, err := uc.repos.Vouchers.List(ctx)
	if err != nil {
		return nil, domain.WrapPersistence("list vouchers", err)
	}
	return vouchers, nil
}

// GetVoucher retrieves one voucher with its edit history.
func (uc *ReportUseCase) GetVoucher(ctx context.Context, id string) (*domain.Voucher, error) {
	v, err := uc.repos.Vouchers.GetByID(ctx, id)
	if err != nil {
		return nil, domain.WrapPersistence("get voucher", err)
	}
	return v, nil
}

// ListWaste lists waste records, newest first.
func (uc *ReportUseCase) ListWaste(ctx context.Context) ([]*domain.Waste, error) {
	waste, err := uc.repos.Waste.List(ctx)
	if err != nil {
		return nil, domain.WrapPersistence("list waste", err)
	}
	return waste, nil
}
