// Package memory is an in-process record store. Writes are staged on a copy
// of the data and swapped in at commit, so readers never see a partial
// mutation.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/iho/qatledger/internal/domain"
	"github.com/iho/qatledger/internal/usecase"
)

// ErrTxDone is returned when a finished transaction is used again.
var ErrTxDone = errors.New("memory: transaction already finished")

// ErrForeignTx is returned when a transaction from another store is passed in.
var ErrForeignTx = errors.New("memory: transaction does not belong to this store")

// table keeps rows by ID plus their insertion order, newest first.
type table[T any] struct {
	rows  map[string]T
	order []string
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]T)}
}

func (t *table[T]) clone(copyRow func(T) T) *table[T] {
	c := &table[T]{
		rows:  make(map[string]T, len(t.rows)),
		order: append([]string(nil), t.order...),
	}
	for id, row := range t.rows {
		c.rows[id] = copyRow(row)
	}
	return c
}

func (t *table[T]) get(id string) (T, bool) {
	row, ok := t.rows[id]
	return row, ok
}

func (t *table[T]) insert(id string, row T) {
	if _, exists := t.rows[id]; !exists {
		t.order = append([]string{id}, t.order...)
	}
	t.rows[id] = row
}

func (t *table[T]) update(id string, row T) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	t.rows[id] = row
	return true
}

func (t *table[T]) remove(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

func (t *table[T]) list() []T {
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.rows[id])
	}
	return out
}

type arena struct {
	customers *table[domain.Party]
	suppliers *table[domain.Party]
	sales     *table[domain.Transaction]
	purchases *table[domain.Transaction]
	vouchers  *table[domain.Voucher]
	items     *table[domain.InventoryItem]
	waste     *table[domain.Waste]
	expenses  *table[domain.Expense]
	activity  []domain.ActivityLogEntry
}

func newArena() *arena {
	return &arena{
		customers: newTable[domain.Party](),
		suppliers: newTable[domain.Party](),
		sales:     newTable[domain.Transaction](),
		purchases: newTable[domain.Transaction](),
		vouchers:  newTable[domain.Voucher](),
		items:     newTable[domain.InventoryItem](),
		waste:     newTable[domain.Waste](),
		expenses:  newTable[domain.Expense](),
	}
}

func same[T any](v T) T { return v }

func copyVoucher(v domain.Voucher) domain.Voucher {
	v.History = append([]domain.VoucherEdit(nil), v.History...)
	return v
}

func (a *arena) clone() *arena {
	return &arena{
		customers: a.customers.clone(same[domain.Party]),
		suppliers: a.suppliers.clone(same[domain.Party]),
		sales:     a.sales.clone(same[domain.Transaction]),
		purchases: a.purchases.clone(same[domain.Transaction]),
		vouchers:  a.vouchers.clone(copyVoucher),
		items:     a.items.clone(same[domain.InventoryItem]),
		waste:     a.waste.clone(same[domain.Waste]),
		expenses:  a.expenses.clone(same[domain.Expense]),
		activity:  append([]domain.ActivityLogEntry(nil), a.activity...),
	}
}

func (a *arena) parties(partyType domain.PartyType) *table[domain.Party] {
	if partyType == domain.PartySupplier {
		return a.suppliers
	}
	return a.customers
}

func (a *arena) transactions(kind domain.TransactionKind) *table[domain.Transaction] {
	if kind == domain.KindPurchase {
		return a.purchases
	}
	return a.sales
}

// Store is the in-memory record store. It implements usecase.TxManager and
// hands out one repository per entity type.
type Store struct {
	writer chan struct{}
	mu     sync.RWMutex
	live   *arena
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{writer: make(chan struct{}, 1), live: newArena()}
}

// Begin starts a transaction. Only one transaction is open at a time; Begin
// blocks until the previous one finishes or ctx is done.
func (s *Store) Begin(ctx context.Context) (usecase.Tx, error) {
	select {
	case s.writer <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.mu.RLock()
	staged := s.live.clone()
	s.mu.RUnlock()

	return &Tx{store: s, staged: staged}, nil
}

// Repositories returns the repositories backed by s.
func (s *Store) Repositories() usecase.Repositories {
	return usecase.Repositories{
		Parties:      &PartyRepository{store: s},
		Transactions: &TransactionRepository{store: s},
		Vouchers:     &VoucherRepository{store: s},
		Inventory:    &InventoryRepository{store: s},
		Waste:        &WasteRepository{store: s},
		Expenses:     &ExpenseRepository{store: s},
		Activity:     &ActivityLogRepository{store: s},
	}
}

// read runs fn against committed data.
func (s *Store) read(fn func(a *arena)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.live)
}

// staged returns the working copy of tx.
func (s *Store) staged(tx usecase.Tx) (*arena, error) {
	t, ok := tx.(*Tx)
	if !ok || t.store != s {
		return nil, ErrForeignTx
	}
	if t.done {
		return nil, ErrTxDone
	}
	return t.staged, nil
}

// Tx is a staged set of writes against a Store.
type Tx struct {
	store  *Store
	staged *arena
	done   bool
}

// Commit publishes the staged writes.
func (t *Tx) Commit(_ context.Context) error {
	if t.done {
		return ErrTxDone
	}

	t.store.mu.Lock()
	t.store.live = t.staged
	t.store.mu.Unlock()

	t.finish()
	return nil
}

// Rollback discards the staged writes. It is a no-op after Commit.
func (t *Tx) Rollback(_ context.Context) error {
	if t.done {
		return nil
	}
	t.finish()
	return nil
}

func (t *Tx) finish() {
	t.done = true
	t.staged = nil
	<-t.store.writer
}
