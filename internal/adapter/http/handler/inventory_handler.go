package handler

import (
	"context"
	"net/http"

	"github.com/iho/qatledger/internal/adapter/http/dto"
	"github.com/iho/qatledger/internal/domain"
	"github.com/iho/qatledger/internal/usecase"
)

// InventoryService defines the behavior needed by InventoryHandler.
type InventoryService interface {
	AddItem(ctx context.Context, input usecase.AddItemInput) (*domain.InventoryItem, error)
	GetItem(ctx context.Context, id string) (*domain.InventoryItem, error)
	ListItems(ctx context.Context) ([]*domain.InventoryItem, error)
	LowStock(ctx context.Context) ([]*domain.InventoryItem, error)
	UpdateItem(ctx context.Context, id string, input usecase.UpdateItemInput) (*domain.InventoryItem, error)
	DeleteItem(ctx context.Context, id string) error
}

// InventoryHandler handles inventory item requests.
type InventoryHandler struct {
	inventory InventoryService
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(inventory InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

// Create adds an item.
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	item, err := h.inventory.AddItem(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to add item", err)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// List lists items.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventory.ListItems(r.Context())
	if err != nil {
		writeDomainError(w, "failed to list items", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewListResponse(items))
}

// LowStock lists items at or below their threshold.
func (h *InventoryHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventory.LowStock(r.Context())
	if err != nil {
		writeDomainError(w, "failed to list low stock items", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewListResponse(items))
}

// Get retrieves an item by ID.
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	item, err := h.inventory.GetItem(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get item", err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// Update edits an item's name, price, currency or threshold.
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	item, err := h.inventory.UpdateItem(r.Context(), id, req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to update item", err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// Delete removes an item.
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	if err := h.inventory.DeleteItem(r.Context(), id); err != nil {
		writeDomainError(w, "failed to delete item", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
