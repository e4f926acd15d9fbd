package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/iho/qatledger/internal/adapter/export"
	"github.com/iho/qatledger/internal/adapter/http/dto"
	"github.com/iho/qatledger/internal/domain"
	"github.com/iho/qatledger/internal/usecase"
)

// BalanceService defines the derived-balance reads needed by ReportHandler.
type BalanceService interface {
	Receivable(ctx context.Context, customerID string) (*usecase.PartyBalance, error)
	Payable(ctx context.Context, supplierID string) (*usecase.PartyBalance, error)
	GlobalSummary(ctx context.Context) ([]domain.CurrencySummary, error)
	Debts(ctx context.Context) (*usecase.DebtsReport, error)
}

// ReportService defines the report reads needed by ReportHandler.
type ReportService interface {
	PerformanceSummary(ctx context.Context) (*usecase.PerformanceSummary, error)
	Convert(amount decimal.Decimal, from domain.Currency) (*usecase.Conversion, error)
	Rates() domain.ExchangeRates
	SetRates(rates domain.ExchangeRates) error
	ActivityLog(ctx context.Context, limit int) ([]*domain.ActivityLogEntry, error)
}

// ReportHandler serves balances, summaries and reports.
type ReportHandler struct {
	balance BalanceService
	reports ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(balance BalanceService, reports ReportService) *ReportHandler {
	return &ReportHandler{balance: balance, reports: reports}
}

// Summary returns assets, liabilities and net per currency.
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.balance.GlobalSummary(r.Context())
	if err != nil {
		writeDomainError(w, "failed to compute summary", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SummaryResponse{Currencies: summary})
}

// Receivable returns what a customer owes, per currency.
func (h *ReportHandler) Receivable(w http.ResponseWriter, r *http.Request) {
	h.partyBalance(w, r, h.balance.Receivable)
}

// Payable returns what is owed to a supplier, per currency.
func (h *ReportHandler) Payable(w http.ResponseWriter, r *http.Request) {
	h.partyBalance(w, r, h.balance.Payable)
}

func (h *ReportHandler) partyBalance(w http.ResponseWriter, r *http.Request, get func(context.Context, string) (*usecase.PartyBalance, error)) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	balance, err := get(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to compute balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromUseCase(balance))
}

// Performance returns the trading summary.
func (h *ReportHandler) Performance(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reports.PerformanceSummary(r.Context())
	if err != nil {
		writeDomainError(w, "failed to compute performance", err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// Debts returns every party with an outstanding positive balance.
func (h *ReportHandler) Debts(w http.ResponseWriter, r *http.Request) {
	report, err := h.balance.Debts(r.Context())
	if err != nil {
		writeDomainError(w, "failed to compute debts", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DebtsFromUseCase(report))
}

// DebtsXLSX returns the debts report as a spreadsheet download.
func (h *ReportHandler) DebtsXLSX(w http.ResponseWriter, r *http.Request) {
	report, err := h.balance.Debts(r.Context())
	if err != nil {
		writeDomainError(w, "failed to compute debts", err)
		return
	}

	// Render fully before writing headers so a failure can still be a JSON error.
	var buf bytes.Buffer
	if err := export.WriteDebts(&buf, report); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to export debts", "")
		return
	}

	w.Header().Set("Content-Type", export.ContentTypeXLSX)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"debts_%s.xlsx\"", report.GeneratedAt.Format("20060102")))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Convert gives an advisory YER equivalent: ?amount=100&currency=SAR.
func (h *ReportHandler) Convert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	amount, err := decimal.NewFromString(q.Get("amount"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	from, err := domain.ParseCurrency(q.Get("currency"))
	if err != nil {
		writeDomainError(w, "invalid currency", err)
		return
	}

	conv, err := h.reports.Convert(amount, from)
	if err != nil {
		writeDomainError(w, "failed to convert", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ConversionFromUseCase(conv, h.reports.Rates()))
}

// Rates returns the current display exchange rates.
func (h *ReportHandler) Rates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.reports.Rates())
}

// UpdateRates replaces the display exchange rates.
func (h *ReportHandler) UpdateRates(w http.ResponseWriter, r *http.Request) {
	var rates domain.ExchangeRates
	if err := decodeJSON(w, r, &rates); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.reports.SetRates(rates); err != nil {
		writeDomainError(w, "failed to update rates", err)
		return
	}

	writeJSON(w, http.StatusOK, h.reports.Rates())
}

// Activity lists the newest activity log entries: ?limit=20.
func (h *ReportHandler) Activity(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", domain.MaxActivityLogEntries)

	entries, err := h.reports.ActivityLog(r.Context(), limit)
	if err != nil {
		writeDomainError(w, "failed to list activity", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewListResponse(entries))
}
