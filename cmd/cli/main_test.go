package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBody(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// runCLI executes the root command against srv and returns its output.
func runCLI(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--url", srv.URL}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "lon...", truncate("longerstring", 6))
	assert.Equal(t, "lo", truncate("longerstring", 2))
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, struct {
		A int `json:"a"`
	}{A: 1}))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}

func TestSummaryCmd(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v1/summary", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, `{"currencies":[{"currency":"YER","assets":"600","liabilities":"100","net":"500"}]}`)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	out, err := runCLI(t, srv, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "CURRENCY")
	assert.Regexp(t, `YER\s+600\s+100\s+500`, out)
}

func TestBalanceCmd(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v1/customers/{id}/receivable", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") != "c1" {
			writeBody(w, http.StatusNotFound, `{"error":"party not found"}`)
			return
		}
		writeBody(w, http.StatusOK, `{"party_id":"c1","name":"Ali","balances":[{"currency":"YER","amount":"350"}]}`)
	})
	r.Get("/api/v1/suppliers/{id}/payable", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, `{"party_id":"s1","name":"Saleh","balances":[]}`)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	out, err := runCLI(t, srv, "balance", "customer", "c1")
	require.NoError(t, err)
	assert.Contains(t, out, "Ali")
	assert.Contains(t, out, "350 YER")

	out, err = runCLI(t, srv, "balance", "supplier", "s1")
	require.NoError(t, err)
	assert.Contains(t, out, "settled")

	_, err = runCLI(t, srv, "balance", "customer", "missing")
	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "party not found", apiErr.Code)

	_, err = runCLI(t, srv, "balance", "broker", "x")
	require.Error(t, err)
}

func TestReturnCmd_SendsIdempotencyKey(t *testing.T) {
	var gotKey, gotPath string

	r := chi.NewRouter()
	r.Post("/api/v1/sales/{id}/return", func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Idempotency-Key")
		gotPath = r.URL.Path
		writeBody(w, http.StatusOK, `{"id":"s1","returned":true}`)
	})
	r.Post("/api/v1/purchases/{id}/return", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusConflict, `{"error":"transaction already returned"}`)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	out, err := runCLI(t, srv, "--idempotency-key", "k-1", "sale", "return", "s1")
	require.NoError(t, err)
	assert.Equal(t, "k-1", gotKey)
	assert.Equal(t, "/api/v1/sales/s1/return", gotPath)
	assert.Contains(t, out, `"returned": true`)

	_, err = runCLI(t, srv, "purchase", "return", "p1")
	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
}

func TestItemsCmd(t *testing.T) {
	var lowStockCalled bool

	r := chi.NewRouter()
	r.Get("/api/v1/items", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, `{"items":[
			{"id":"i1","name":"Sawti","stock":2,"unit_price":"300","currency":"YER","low_stock_threshold":5},
			{"id":"i2","name":"Hamdani","stock":40,"unit_price":"12","currency":"SAR","low_stock_threshold":5}
		],"count":2}`)
	})
	r.Get("/api/v1/items/low-stock", func(w http.ResponseWriter, r *http.Request) {
		lowStockCalled = true
		writeBody(w, http.StatusOK, `{"items":[],"count":0}`)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	out, err := runCLI(t, srv, "items")
	require.NoError(t, err)
	assert.Contains(t, out, "2 (low)")
	assert.Contains(t, out, "12 SAR")

	_, err = runCLI(t, srv, "items", "--low-stock")
	require.NoError(t, err)
	assert.True(t, lowStockCalled)
}

func TestActivityCmd(t *testing.T) {
	var gotLimit string

	r := chi.NewRouter()
	r.Get("/api/v1/activity", func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		writeBody(w, http.StatusOK, `{"items":[{"id":"a1","action":"sale.record","detail":"sold 2 Sawti","category":"sale","created_at":"2026-01-02T10:00:00Z"}],"count":1}`)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	out, err := runCLI(t, srv, "activity", "--limit", "5")
	require.NoError(t, err)
	assert.Equal(t, "5", gotLimit)
	assert.Contains(t, out, "sale.record")
	assert.Contains(t, out, "sold 2 Sawti")
}

func TestConvertCmd(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v1/reports/convert", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		writeBody(w, http.StatusOK, `{"amount":"`+q.Get("amount")+`","currency":"`+q.Get("currency")+`","yer":"4300"}`)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	out, err := runCLI(t, srv, "convert", "10", "SAR")
	require.NoError(t, err)
	assert.Contains(t, out, `"yer": "4300"`)
	assert.Contains(t, out, `"currency": "SAR"`)
}

func TestExportDebtsCmd(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v1/reports/debts.xlsx", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		_, _ = w.Write([]byte("PK-workbook"))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "debts.xlsx")
	out, err := runCLI(t, srv, "export", "debts", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "PK-workbook", string(data))
}

func TestAssistantProposeCmd(t *testing.T) {
	var executed map[string]any

	r := chi.NewRouter()
	r.Post("/api/v1/assistant/proposals", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text string `json:"text"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if strings.TrimSpace(req.Text) == "" {
			writeBody(w, http.StatusBadRequest, `{"error":"empty text"}`)
			return
		}
		writeBody(w, http.StatusOK, `{"operation":"record_sale","party_name":"Ali","quantity":2}`)
	})
	r.Post("/api/v1/assistant/execute", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&executed)
		writeBody(w, http.StatusCreated, `{"transaction":{"id":"s1"}}`)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	out, err := runCLI(t, srv, "assistant", "propose", "sold 2 to ali")
	require.NoError(t, err)
	assert.Contains(t, out, "record_sale")
	assert.Nil(t, executed)

	out, err = runCLI(t, srv, "assistant", "propose", "--execute", "sold 2 to ali")
	require.NoError(t, err)
	assert.Equal(t, "record_sale", executed["operation"])
	assert.Contains(t, out, `"id": "s1"`)

	_, err = runCLI(t, srv, "assistant", "propose", " ")
	require.Error(t, err)
}
