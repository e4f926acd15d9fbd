package handler

import (
	"context"
	"net/http"

	"github.com/iho/qatledger/internal/adapter/http/dto"
	"github.com/iho/qatledger/internal/domain"
	"github.com/iho/qatledger/internal/usecase"
)

// LedgerService defines the mutations needed by LedgerHandler.
type LedgerService interface {
	RecordSale(ctx context.Context, input usecase.RecordTransactionInput) (*domain.Transaction, error)
	RecordPurchase(ctx context.Context, input usecase.RecordTransactionInput) (*domain.Transaction, error)
	RecordOpeningBalance(ctx context.Context, input usecase.OpeningBalanceInput) (*domain.Transaction, error)
	ReturnSale(ctx context.Context, id string) (*domain.Transaction, error)
	ReturnPurchase(ctx context.Context, id string) (*domain.Transaction, error)
	DeleteSale(ctx context.Context, id string, revertStock bool) (*domain.Transaction, error)
	DeletePurchase(ctx context.Context, id string, revertStock bool) (*domain.Transaction, error)
	RecordWaste(ctx context.Context, input usecase.RecordWasteInput) (*domain.Waste, error)
	DeleteWaste(ctx context.Context, id string, revertStock bool) error
	RecordVoucher(ctx context.Context, input usecase.RecordVoucherInput) (*domain.Voucher, error)
	EditVoucher(ctx context.Context, id string, input usecase.EditVoucherInput) (*domain.Voucher, error)
	DeleteVoucher(ctx context.Context, id string) error
}

// RecordReader defines the reads needed by LedgerHandler.
type RecordReader interface {
	ListTransactions(ctx context.Context, kind domain.TransactionKind) ([]*domain.Transaction, error)
	GetTransaction(ctx context.Context, kind domain.TransactionKind, id string) (*domain.Transaction, error)
	ListVouchers(ctx context.Context) ([]*domain.Voucher, error)
	GetVoucher(ctx context.Context, id string) (*domain.Voucher, error)
	ListWaste(ctx context.Context) ([]*domain.Waste, error)
}

// LedgerHandler handles sales, purchases, opening balances, vouchers and waste.
type LedgerHandler struct {
	ledger  LedgerService
	records RecordReader
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledger LedgerService, records RecordReader) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, records: records}
}

// CreateTransaction records a sale or purchase.
func (h *LedgerHandler) CreateTransaction(kind domain.TransactionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.CreateTransactionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}

		record := h.ledger.RecordSale
		if kind == domain.KindPurchase {
			record = h.ledger.RecordPurchase
		}

		t, err := record(r.Context(), req.ToUseCaseInput())
		if err != nil {
			writeDomainError(w, "failed to record "+string(kind), err)
			return
		}

		writeJSON(w, http.StatusCreated, t)
	}
}

// ListTransactions lists sales or purchases, newest first.
func (h *LedgerHandler) ListTransactions(kind domain.TransactionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		txs, err := h.records.ListTransactions(r.Context(), kind)
		if err != nil {
			writeDomainError(w, "failed to list transactions", err)
			return
		}

		writeJSON(w, http.StatusOK, dto.NewListResponse(txs))
	}
}

// GetTransaction retrieves a sale or purchase by ID.
func (h *LedgerHandler) GetTransaction(kind domain.TransactionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}

		t, err := h.records.GetTransaction(r.Context(), kind, id)
		if err != nil {
			writeDomainError(w, "failed to get "+string(kind), err)
			return
		}

		writeJSON(w, http.StatusOK, t)
	}
}

// ReturnTransaction marks a sale or purchase returned and reverses its stock.
func (h *LedgerHandler) ReturnTransaction(kind domain.TransactionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}

		ret := h.ledger.ReturnSale
		if kind == domain.KindPurchase {
			ret = h.ledger.ReturnPurchase
		}

		t, err := ret(r.Context(), id)
		if err != nil {
			writeDomainError(w, "failed to return "+string(kind), err)
			return
		}

		writeJSON(w, http.StatusOK, t)
	}
}

// DeleteTransaction removes a sale or purchase. Stock is reverted unless
// ?revert_stock=false is given.
func (h *LedgerHandler) DeleteTransaction(kind domain.TransactionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}

		del := h.ledger.DeleteSale
		if kind == domain.KindPurchase {
			del = h.ledger.DeletePurchase
		}

		t, err := del(r.Context(), id, parseBoolQuery(r, "revert_stock", true))
		if err != nil {
			writeDomainError(w, "failed to delete "+string(kind), err)
			return
		}

		writeJSON(w, http.StatusOK, t)
	}
}

// CreateOpeningBalance seeds a debt that predates the ledger.
func (h *LedgerHandler) CreateOpeningBalance(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateOpeningBalanceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	t, err := h.ledger.RecordOpeningBalance(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to record opening balance", err)
		return
	}

	writeJSON(w, http.StatusCreated, t)
}

// CreateVoucher records a receipt or payment.
func (h *LedgerHandler) CreateVoucher(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateVoucherRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	v, err := h.ledger.RecordVoucher(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to record voucher", err)
		return
	}

	writeJSON(w, http.StatusCreated, v)
}

// ListVouchers lists vouchers, newest first.
func (h *LedgerHandler) ListVouchers(w http.ResponseWriter, r *http.Request) {
	vouchers, err := h.records.ListVouchers(r.Context())
	if err != nil {
		writeDomainError(w, "failed to list vouchers", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewListResponse(vouchers))
}

// GetVoucher retrieves a voucher with its edit history.
func (h *LedgerHandler) GetVoucher(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	v, err := h.records.GetVoucher(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get voucher", err)
		return
	}

	writeJSON(w, http.StatusOK, v)
}

// EditVoucher corrects a voucher's amount and note.
func (h *LedgerHandler) EditVoucher(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	var req dto.EditVoucherRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	v, err := h.ledger.EditVoucher(r.Context(), id, req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to edit voucher", err)
		return
	}

	writeJSON(w, http.StatusOK, v)
}

// DeleteVoucher removes a voucher.
func (h *LedgerHandler) DeleteVoucher(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	if err := h.ledger.DeleteVoucher(r.Context(), id); err != nil {
		writeDomainError(w, "failed to delete voucher", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateWaste records spoiled stock.
func (h *LedgerHandler) CreateWaste(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateWasteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	waste, err := h.ledger.RecordWaste(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to record waste", err)
		return
	}

	writeJSON(w, http.StatusCreated, waste)
}

// ListWaste lists waste records.
func (h *LedgerHandler) ListWaste(w http.ResponseWriter, r *http.Request) {
	waste, err := h.records.ListWaste(r.Context())
	if err != nil {
		writeDomainError(w, "failed to list waste", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewListResponse(waste))
}

// DeleteWaste removes a waste record, returning its quantity to stock
// unless ?revert_stock=false is given.
func (h *LedgerHandler) DeleteWaste(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	if err := h.ledger.DeleteWaste(r.Context(), id, parseBoolQuery(r, "revert_stock", true)); err != nil {
		writeDomainError(w, "failed to delete waste", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
