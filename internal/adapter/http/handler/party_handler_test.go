package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/qatledger/internal/domain"
)

func TestPartyHandler_CustomersAndSuppliersAreSeparate(t *testing.T) {
	a := newApp(t)
	h := NewPartyHandler(a.parties)

	rr := serve(http.MethodPost, "/suppliers", "/suppliers", `{"name":"Hamdan Farms","region":"Hamdan"}`, h.Create(domain.PartySupplier))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var supplier domain.Party
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &supplier))
	assert.Equal(t, domain.PartySupplier, supplier.Type)

	rr = serve(http.MethodGet, "/customers/{id}", "/customers/"+supplier.ID, "", h.Get(domain.PartyCustomer))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = serve(http.MethodGet, "/suppliers", "/suppliers", "", h.List(domain.PartySupplier))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Hamdan Farms")

	rr = serve(http.MethodDelete, "/suppliers/{id}", "/suppliers/"+supplier.ID, "", h.Delete(domain.PartySupplier))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = serve(http.MethodPost, "/customers", "/customers", `{"name":"   "}`, h.Create(domain.PartyCustomer))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestInventoryHandler_LowStock(t *testing.T) {
	a := newApp(t)
	h := NewInventoryHandler(a.inventory)

	rr := serve(http.MethodPost, "/items", "/items", `{"name":"Sawti","stock":2,"unit_price":"100","currency":"YER","low_stock_threshold":5}`, h.Create)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = serve(http.MethodPost, "/items", "/items", `{"name":"Arhabi","stock":50,"unit_price":"80","currency":"YER","low_stock_threshold":5}`, h.Create)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = serve(http.MethodGet, "/items/low-stock", "/items/low-stock", "", h.LowStock)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Sawti")
	assert.NotContains(t, rr.Body.String(), "Arhabi")

	rr = serve(http.MethodDelete, "/items/{id}", "/items/missing", "", h.Delete)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestExpenseHandler(t *testing.T) {
	a := newApp(t)
	h := NewExpenseHandler(a.expenses)

	rr := serve(http.MethodPost, "/expenses", "/expenses", `{"title":"Transport","category":"logistics","amount":"1200","currency":"YER"}`, h.Create)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var expense domain.Expense
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &expense))

	rr = serve(http.MethodPost, "/expenses", "/expenses", `{"title":"Rent","amount":"-1","currency":"YER"}`, h.Create)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(http.MethodGet, "/expenses", "/expenses", "", h.List)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"count":1`)

	rr = serve(http.MethodDelete, "/expenses/{id}", "/expenses/"+expense.ID, "", h.Delete)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}
