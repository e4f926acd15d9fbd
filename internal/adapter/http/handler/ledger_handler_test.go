package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/qatledger/internal/domain"
	"github.com/iho/qatledger/internal/usecase"
)

func TestLedgerHandler_SaleLifecycle(t *testing.T) {
	a := newApp(t)
	h := NewLedgerHandler(a.ledger, a.reports)
	ctx := context.Background()

	customer := a.customer(t, "Ali")
	item := a.item(t, "Sawti", 10)

	body := fmt.Sprintf(`{"party_id":%q,"item_id":%q,"quantity":3,"unit_price":"250","currency":"yer","settlement":"deferred"}`, customer.ID, item.ID)
	rr := serve(http.MethodPost, "/sales", "/sales", body, h.CreateTransaction(domain.KindSale))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var sale domain.Transaction
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sale))
	assert.Equal(t, "750", sale.Total.String())
	assert.Equal(t, domain.CurrencyYER, sale.Currency)

	stocked, err := a.inventory.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), stocked.Stock)

	rr = serve(http.MethodPost, "/sales/{id}/return", "/sales/"+sale.ID+"/return", "", h.ReturnTransaction(domain.KindSale))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = serve(http.MethodPost, "/sales/{id}/return", "/sales/"+sale.ID+"/return", "", h.ReturnTransaction(domain.KindSale))
	assert.Equal(t, http.StatusConflict, rr.Code)

	stocked, err = a.inventory.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stocked.Stock, "second return must not move stock")

	rr = serve(http.MethodGet, "/sales", "/sales", "", h.ListTransactions(domain.KindSale))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"count":1`)
}

func TestLedgerHandler_DeleteRevertStockFlag(t *testing.T) {
	testCases := []struct {
		name     string
		query    string
		expected int64
	}{
		{name: "defaults to revert", query: "", expected: 10},
		{name: "explicit keep", query: "?revert_stock=false", expected: 8},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := newApp(t)
			h := NewLedgerHandler(a.ledger, a.reports)

			customer := a.customer(t, "Ali")
			item := a.item(t, "Sawti", 10)
			sale := a.sale(t, customer.ID, item.ID, 2, 100)

			rr := serve(http.MethodDelete, "/sales/{id}", "/sales/"+sale.ID+tc.query, "", h.DeleteTransaction(domain.KindSale))
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

			stocked, err := a.inventory.GetItem(context.Background(), item.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, stocked.Stock)
		})
	}
}

func TestLedgerHandler_Errors(t *testing.T) {
	a := newApp(t)
	h := NewLedgerHandler(a.ledger, a.reports)
	customer := a.customer(t, "Ali")

	testCases := []struct {
		name     string
		method   string
		pattern  string
		target   string
		body     string
		handler  http.HandlerFunc
		expected int
	}{
		{
			name: "malformed body", method: http.MethodPost, pattern: "/sales", target: "/sales",
			body: `{"party_id":`, handler: h.CreateTransaction(domain.KindSale), expected: http.StatusBadRequest,
		},
		{
			name: "zero quantity", method: http.MethodPost, pattern: "/sales", target: "/sales",
			body:    fmt.Sprintf(`{"party_id":%q,"item_name":"Sawti","quantity":0,"unit_price":"1","currency":"YER"}`, customer.ID),
			handler: h.CreateTransaction(domain.KindSale), expected: http.StatusBadRequest,
		},
		{
			name: "unknown currency", method: http.MethodPost, pattern: "/sales", target: "/sales",
			body:    fmt.Sprintf(`{"party_id":%q,"item_name":"Sawti","quantity":1,"unit_price":"1","currency":"USD"}`, customer.ID),
			handler: h.CreateTransaction(domain.KindSale), expected: http.StatusBadRequest,
		},
		{
			name: "unknown supplier", method: http.MethodPost, pattern: "/purchases", target: "/purchases",
			body:    `{"party_id":"nobody","item_name":"Sawti","quantity":1,"unit_price":"1","currency":"YER"}`,
			handler: h.CreateTransaction(domain.KindPurchase), expected: http.StatusNotFound,
		},
		{
			name: "return missing purchase", method: http.MethodPost, pattern: "/purchases/{id}/return", target: "/purchases/missing/return",
			handler: h.ReturnTransaction(domain.KindPurchase), expected: http.StatusNotFound,
		},
		{
			name: "edit missing voucher", method: http.MethodPatch, pattern: "/vouchers/{id}", target: "/vouchers/missing",
			body: `{"amount":"10","note":"x"}`, handler: h.EditVoucher, expected: http.StatusNotFound,
		},
		{
			name: "delete missing waste", method: http.MethodDelete, pattern: "/waste/{id}", target: "/waste/missing",
			handler: h.DeleteWaste, expected: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := serve(tc.method, tc.pattern, tc.target, tc.body, tc.handler)
			assert.Equal(t, tc.expected, rr.Code, rr.Body.String())
		})
	}
}

func TestLedgerHandler_VoucherEditKeepsHistory(t *testing.T) {
	a := newApp(t)
	h := NewLedgerHandler(a.ledger, a.reports)
	customer := a.customer(t, "Ali")

	body := fmt.Sprintf(`{"direction":"receipt","party_id":%q,"amount":"400","currency":"YER","note":"first"}`, customer.ID)
	rr := serve(http.MethodPost, "/vouchers", "/vouchers", body, h.CreateVoucher)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var v domain.Voucher
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))

	rr = serve(http.MethodPatch, "/vouchers/{id}", "/vouchers/"+v.ID, `{"amount":"450","note":"fixed"}`, h.EditVoucher)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = serve(http.MethodGet, "/vouchers/{id}", "/vouchers/"+v.ID, "", h.GetVoucher)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	assert.Equal(t, "450", v.Amount.String())
	require.Len(t, v.History, 1)
	assert.Equal(t, "400", v.History[0].PreviousAmount.String())

	rr = serve(http.MethodDelete, "/vouchers/{id}", "/vouchers/"+v.ID, "", h.DeleteVoucher)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestLedgerHandler_OpeningBalanceAndWaste(t *testing.T) {
	a := newApp(t)
	h := NewLedgerHandler(a.ledger, a.reports)
	customer := a.customer(t, "Ali")
	item := a.item(t, "Sawti", 10)

	body := fmt.Sprintf(`{"party_type":"customer","party_id":%q,"amount":"1000","currency":"SAR"}`, customer.ID)
	rr := serve(http.MethodPost, "/opening-balances", "/opening-balances", body, h.CreateOpeningBalance)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	body = fmt.Sprintf(`{"item_id":%q,"quantity":4,"estimated_loss":"400","currency":"YER","reason":"dried out"}`, item.ID)
	rr = serve(http.MethodPost, "/waste", "/waste", body, h.CreateWaste)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = serve(http.MethodGet, "/waste", "/waste", "", h.ListWaste)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "dried out")

	stocked, err := a.inventory.GetItem(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), stocked.Stock, "opening balance is stock neutral, waste is not")
}

// failingLedger overrides one mutation to simulate a storage failure.
type failingLedger struct {
	LedgerService
}

func (failingLedger) RecordSale(context.Context, usecase.RecordTransactionInput) (*domain.Transaction, error) {
	return nil, domain.WrapPersistence("record sale", errors.New("disk full"))
}

func TestLedgerHandler_PersistenceFailureIs500(t *testing.T) {
	a := newApp(t)
	h := NewLedgerHandler(failingLedger{}, a.reports)

	rr := serve(http.MethodPost, "/sales", "/sales", `{"party_id":"c","item_name":"x","quantity":1,"unit_price":"1","currency":"YER"}`, h.CreateTransaction(domain.KindSale))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "disk full")
}
