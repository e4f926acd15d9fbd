package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/qatledger/internal/adapter/repository/memory"
	"github.com/iho/qatledger/internal/domain"
	"github.com/iho/qatledger/internal/usecase"
)

type seqIDGen struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDGen) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%04d", g.n)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ChangeEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) last() domain.ChangeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

type fixture struct {
	store     *memory.Store
	repos     usecase.Repositories
	deps      usecase.Deps
	publisher *recordingPublisher
	ledger    *usecase.LedgerUseCase
	parties   *usecase.PartyUseCase
	inventory *usecase.InventoryUseCase
	balance   *usecase.BalanceUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	repos := store.Repositories()
	publisher := &recordingPublisher{}

	clock := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	deps := usecase.Deps{
		TxManager: store,
		IDGen:     &seqIDGen{},
		Publisher: publisher,
		Logger:    zerolog.Nop(),
		Clock: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	}

	return &fixture{
		store:     store,
		repos:     repos,
		deps:      deps,
		publisher: publisher,
		ledger:    usecase.NewLedgerUseCase(repos, deps),
		parties:   usecase.NewPartyUseCase(repos, deps),
		inventory: usecase.NewInventoryUseCase(repos, deps),
		balance:   usecase.NewBalanceUseCase(repos, nil, 0, zerolog.Nop()),
	}
}

func (f *fixture) customer(t *testing.T, name string) *domain.Party {
	t.Helper()
	p, err := f.parties.AddCustomer(context.Background(), usecase.AddPartyInput{Name: name})
	if err != nil {
		t.Fatalf("add customer: %v", err)
	}
	return p
}

func (f *fixture) supplier(t *testing.T, name string) *domain.Party {
	t.Helper()
	p, err := f.parties.AddSupplier(context.Background(), usecase.AddPartyInput{Name: name})
	if err != nil {
		t.Fatalf("add supplier: %v", err)
	}
	return p
}

func (f *fixture) item(t *testing.T, name string, stock int64) *domain.InventoryItem {
	t.Helper()
	item, err := f.inventory.AddItem(context.Background(), usecase.AddItemInput{
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

func (f *fixture) stock(t *testing.T, itemID string) int64 {
	t.Helper()
	item, err := f.repos.Inventory.GetByID(context.Background(), itemID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	return item.Stock
}

func (f *fixture) activityCount(t *testing.T) int {
	t.Helper()
	entries, err := f.repos.Activity.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	return len(entries)
}

func amountIn(balances []domain.CurrencyAmount, c domain.Currency) decimal.Decimal {
	for _, b := range balances {
		if b.Currency == c {
			return b.Amount
		}
	}
	return decimal.Zero
}

func sale(partyID, itemID string, qty int64, price int64) usecase.RecordTransactionInput {
	return usecase.RecordTransactionInput{
		PartyID:   partyID,
		ItemID:    itemID,
		Quantity:  qty,
		UnitPrice: decimal.NewFromInt(price),
		Currency:  domain.CurrencyYER,
	}
}
