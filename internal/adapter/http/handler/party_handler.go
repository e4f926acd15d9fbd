package handler

import (
	"context"
	"net/http"

	"github.com/iho/qatledger/internal/adapter/http/dto"
	"github.com/iho/qatledger/internal/domain"
	"github.com/iho/qatledger/internal/usecase"
)

// PartyService defines the behavior needed by PartyHandler.
type PartyService interface {
	AddCustomer(ctx context.Context, input usecase.AddPartyInput) (*domain.Party, error)
	AddSupplier(ctx context.Context, input usecase.AddPartyInput) (*domain.Party, error)
	GetParty(ctx context.Context, partyType domain.PartyType, id string) (*domain.Party, error)
	ListParties(ctx context.Context, partyType domain.PartyType) ([]*domain.Party, error)
	DeleteParty(ctx context.Context, partyType domain.PartyType, id string) error
}

// PartyHandler serves customers and suppliers. Each method is bound to one
// party type when the route is registered.
type PartyHandler struct {
	parties PartyService
}

// NewPartyHandler creates a new PartyHandler.
func NewPartyHandler(parties PartyService) *PartyHandler {
	return &PartyHandler{parties: parties}
}

// Create adds a party of the given type.
func (h *PartyHandler) Create(partyType domain.PartyType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.CreatePartyRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}

		add := h.parties.AddCustomer
		if partyType == domain.PartySupplier {
			add = h.parties.AddSupplier
		}

		party, err := add(r.Context(), req.ToUseCaseInput())
		if err != nil {
			writeDomainError(w, "failed to add "+string(partyType), err)
			return
		}

		writeJSON(w, http.StatusCreated, party)
	}
}

// List lists parties of the given type.
func (h *PartyHandler) List(partyType domain.PartyType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parties, err := h.parties.ListParties(r.Context(), partyType)
		if err != nil {
			writeDomainError(w, "failed to list parties", err)
			return
		}

		writeJSON(w, http.StatusOK, dto.NewListResponse(parties))
	}
}

// Get retrieves a party by ID.
func (h *PartyHandler) Get(partyType domain.PartyType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}

		party, err := h.parties.GetParty(r.Context(), partyType, id)
		if err != nil {
			writeDomainError(w, "failed to get "+string(partyType), err)
			return
		}

		writeJSON(w, http.StatusOK, party)
	}
}

// Delete removes a party. Its transactions and vouchers are kept.
func (h *PartyHandler) Delete(partyType domain.PartyType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}

		if err := h.parties.DeleteParty(r.Context(), partyType, id); err != nil {
			writeDomainError(w, "failed to delete "+string(partyType), err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
