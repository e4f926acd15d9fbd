package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/qatledger/internal/adapter/repository/memory"
	"github.com/iho/qatledger/internal/domain"
	"github.com/iho/qatledger/internal/usecase"
)

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%03d", g.n)
}

// app wires real use cases over the in-memory store.
type app struct {
	repos     usecase.Repositories
	ledger    *usecase.LedgerUseCase
	parties   *usecase.PartyUseCase
	inventory *usecase.InventoryUseCase
	expenses  *usecase.ExpenseUseCase
	balance   *usecase.BalanceUseCase
	reports   *usecase.ReportUseCase
}

func newApp(t *testing.T) *app {
	t.Helper()

	store := memory.NewStore()
	repos := store.Repositories()
	deps := usecase.Deps{TxManager: store, IDGen: &seqIDs{}, Logger: zerolog.Nop()}

	return &app{
		repos:     repos,
		ledger:    usecase.NewLedgerUseCase(repos, deps),
		parties:   usecase.NewPartyUseCase(repos, deps),
		inventory: usecase.NewInventoryUseCase(repos, deps),
		expenses:  usecase.NewExpenseUseCase(repos, deps),
		balance:   usecase.NewBalanceUseCase(repos, nil, 0, zerolog.Nop()),
		reports:   usecase.NewReportUseCase(repos, domain.DefaultExchangeRates()),
	}
}

func (a *app) customer(t *testing.T, name string) *domain.Party {
	t.Helper()
	p, err := a.parties.AddCustomer(context.Background(), usecase.AddPartyInput{Name: name})
	if err != nil {
		t.Fatalf("add customer: %v", err)
	}
	return p
}

func (a *app) item(t *testing.T, name string, stock int64) *domain.InventoryItem {
	t.Helper()
	item, err := a.inventory.AddItem(context.Background(), usecase.AddItemInput{
		Name:      name,
		Stock:     stock,
		UnitPrice: decimal.NewFromInt(100),
		Currency:  domain.CurrencyYER,
	})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	return item
}

func (a *app) sale(t *testing.T, partyID, itemID string, qty int64, price int64) *domain.Transaction {
	t.Helper()
	sale, err := a.ledger.RecordSale(context.Background(), usecase.RecordTransactionInput{
		PartyID:    partyID,
		ItemID:     itemID,
		Quantity:   qty,
		UnitPrice:  decimal.NewFromInt(price),
		Currency:   domain.CurrencyYER,
		Settlement: domain.SettlementDeferred,
	})
	if err != nil {
		t.Fatalf("record sale: %v", err)
	}
	return sale
}

// serve routes a single request through a chi router so URL params resolve.
func serve(method, pattern, target, body string, h http.HandlerFunc) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}
