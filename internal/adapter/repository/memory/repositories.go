package memory

import (
	"context"

	"github.com/iho/qatledger/internal/domain"
	"github.com/iho/qatledger/internal/usecase"
)

func ptrs[T any](rows []T) []*T {
	out := make([]*T, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out
}

// PartyRepository implements usecase.PartyRepository.
type PartyRepository struct {
	store *Store
}

// Create stores a new party.
func (r *PartyRepository) Create(_ context.Context, tx usecase.Tx, party *domain.Party) error {
	a, err := r.store.staged(tx)
	if err != nil {
		return err
	}
	a.parties(party.Type).insert(party.ID, *party)
	return nil
}

// Delete removes a party.
func (r *PartyRepository) Delete(_ context.Context, tx usecase.Tx, partyType domain.PartyType, id string) error {
	a, err := r.store.staged(tx)
	if err != nil {
		return err
	}
	if !a.parties(partyType).remove(id) {
		return domain.ErrPartyNotFound
	}
	return nil
}

// GetByID retrieves a committed party.
func (r *PartyRepository) GetByID(_ context.Context, partyType domain.PartyType, id string) (*domain.Party, error) {
	var (
		party domain.Party
		ok    bool
	)
	r.store.read(func(a *arena) { party, ok = a.parties(partyType).get(id) })
	if !ok {
		return nil, domain.ErrPartyNotFound
	}
	return &party, nil
}

// List lists committed parties, newest first.
func (r *PartyRepository) List(_ context.Context, partyType domain.PartyType) ([]*domain.Party, error) {
	var rows []domain.Party
	r.store.read(func(a *arena) { rows = a.parties(partyType).list() })
	return ptrs(rows), nil
}

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	store *Store
}

// Create stores a new sale or purchase.
func (r *TransactionRepository) Create(_ context.Context, tx usecase.Tx, t *domain.Transaction) error {
	a, err := r.store.staged(tx)
	if err != nil {
		return err
	}
	a.transactions(t.Kind).insert(t.ID, *t)
	return nil
}

// Update overwrites a sale or purchase.
func (r *TransactionRepository) Update(_ context.Context, tx usecase.Tx, t *domain.Transaction) error {
	a, err := r.store.staged(tx)
	if err != nil {
		return err
	}
	if !a.transactions(t.Kind).update(t.ID, *t) {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// Delete removes a sale or purchase.
func (r *TransactionRepository) Delete(_ context.Context, tx usecase.Tx, kind domain.TransactionKind, id string) error {
	a, err := r.store.staged(tx)
	if err != nil {
		return err
	}
	if !a.transactions(kind).remove(id) {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// GetByID retrieves a committed sale or purchase.
func (r *TransactionRepository) GetByID(_ context.Context, kind domain.TransactionKind, id string) (*domain.Transaction, error) {
	var (
		t  domain.Transaction
		ok bool
	)
	r.store.read(func(a *arena) { t, ok = a.transactions(kind).get(id) })
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	return &t, nil
}

// GetByIDForUpdate retrieves a sale or purchase as staged in tx.
func (r *TransactionRepository) GetByIDForUpdate(_ context.Context, tx usecase.Tx, kind domain.TransactionKind, id string) (*domain.Transaction, error) {
	a, err := r.store.staged(tx)
	if err != nil {
		return nil, err
	}
	t, ok := a.transactions(kind).get(id)
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	return &t, nil
}

// List lists committed sales or purchases, newest first.
func (r *TransactionRepository) List(_ context.Context, kind domain.TransactionKind) ([]*domain.Transaction, error) {
	var rows []domain.Transaction
	r.store.read(func(a *arena) { rows = a.transactions(kind).list() })
	return ptrs(rows), nil
}

// VoucherRepository implements usecase.VoucherRepository.
type VoucherRepository struct {
	store *Store
}

// Create stores a new voucher.
func (r *VoucherRepository) Create(_ context.Context, tx usecase.Tx, v *domain.Voucher) error {
	a, err := r.store.staged(tx)
	if err != nil {
		return err
	}
	a.vouchers.insert(v.ID, copyVoucher(*v))
	return nil
}

// Update overwrites a voucher.
func (r *VoucherRepository) Update(_ context.Context, tx usecase.Tx, v *domain.Voucher) error {
	a, err := r.store.staged(tx)
	if err != nil {
		return err
	}
	if !a.vouchers.update(v.ID, copyVoucher(*v)) {
		return domain.ErrVoucherNotFound
	}
	return nil
}

// Delete removes a voucher.
func (r *VoucherRepository) Delete(_ context.Context, tx usecase.Tx, id string) error {
	a, err := r.store.staged(tx)
	if err != nil {
		return err
	}
	if !a.vouchers.remove(id) {
		return domain.ErrVoucherNotFound
	}
	return nil
}

// GetByID retrieves a committed voucher.
func (r *VoucherRepository) GetByID(_ context.Context, id string) (*domain.Voucher, error) {
	var (
		v  domain.Voucher
		ok bool
	)
	r.store.read(func(a *arena) {
		v, ok = a.vouchers.get(id)
		v = copyVoucher(v)
	})
	if !ok {
		return nil, domain.ErrVoucherNotFound
	}
	return &v, nil
}

// GetByIDForUpdate retrieves a voucher as staged in tx.
func (r *VoucherRepository) GetByIDForUpdate(_ context.Context, tx usecase.Tx, id string) (*domain.Voucher, error) {
	a, err := r.store.staged(tx)
	if err != nil {
		return nil, err
	}
	v, ok := a.vouchers.get(id)
	if !ok {
		return nil, domain.ErrVoucherNotFound
	}
	v = copyVoucher(v)
	return &v, nil
}

// List lists committed vouchers, newest first.
func (r *VoucherRepository) List(_ context.Context) ([]*domain.Voucher, error) {
	var rows []domain.Voucher
	r.store.read(func(a *arena) {
		rows = a.vouchers.list()
		for i := range rows {
			rows[i] = copyVoucher(rows[i])
		}
	})
	return ptrs(rows), nil
}

// InventoryRepository implements usecase.InventoryRepository.
type InventoryRepository struct {
	store *Store
}

// Create stores a new item.
func (r *InventoryRepository) Create(_ context.Context, tx usecase.Tx, item *domain.InventoryItem) error {
	a, err := r.store.staged(tx)
	if err != nil {
		return err
	}
	a.items.insert(item.ID, *item)
	return nil
}

// Update overwrites an item.
func (r *InventoryRepository) Update(_ context.Context, tx usecase.Tx, item *domain.InventoryItem) error {
	a, err := r.store.staged(tx)
	if err != nil {
		return err
	}
	if !a.items.update(item.ID, *item) {
		return domain.ErrItemNotFound
	}
	return nil
}

// Delete removes an item.
func (r *InventoryRepository) Delete(_ context.Context, tx usecase.Tx, id string) error {
	a, err := r.store.staged(tx)
	if err != nil {
		return err
	}
	if !a.items.remove(id) {
		return domain.ErrItemNotFound
	}
	return nil
}

// GetByID retrieves a committed item.
func (r *InventoryRepository) GetByID(_ context.Context, id string) (*domain.InventoryItem, error) {
	var (
		item domain.InventoryItem
		ok   bool
	)
	r.store.read(func(a *arena) { item, ok = a.items.get(id) })
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return &item, nil
}

// GetByIDForUpdate retrieves an item as staged in tx.
func (r *InventoryRepository) GetByIDForUpdate(_ context.Context, tx usecase.Tx, id string) (*domain.InventoryItem, error) {
	a, err := r.store.staged(tx)
	if err != nil {
		return nil, err
	}
	item, ok := a.items.get(id)
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return &item, nil
}

// List lists committed items, newest first.
func (r *InventoryRepository) List(_ context.Context) ([]*domain.InventoryItem, error) {
	var rows []domain.InventoryItem
	r.store.read(func(a *arena) { rows = a.items.list() })
	return ptrs(rows), nil
}

// WasteRepository implements usecase.WasteRepository.
type WasteRepository struct {
	store *Store
}

// Create stores a new waste record.
func (r *WasteRepository) Create(_ context.Context, tx usecase.Tx, w *domain.Waste) error {
	a, err := r.store.staged(tx)
	if err != nil {
		return err
	}
	a.waste.insert(w.ID, *w)
	return nil
}

// Delete removes a waste record.
func (r *WasteRepository) Delete(_ context.Context, tx usecase.Tx, id string) error {
	a, err := r.store.staged(tx)
	if err != nil {
		return err
	}
	if !a.waste.remove(id) {
		return domain.ErrWasteNotFound
	}
	return nil
}

// GetByIDForUpdate retrieves a waste record as staged in tx.
func (r *WasteRepository) GetByIDForUpdate(_ context.Context, tx usecase.Tx, id string) (*domain.Waste, error) {
	a, err := r.store.staged(tx)
	if err != nil {
		return nil, err
	}
	w, ok := a.waste.get(id)
	if !ok {
		return nil, domain.ErrWasteNotFound
	}
	return &w, nil
}

// List lists committed waste records, newest first.
func (r *WasteRepository) List(_ context.Context) ([]*domain.Waste, error) {
	var rows []domain.Waste
	r.store.read(func(a *arena) { rows = a.waste.list() })
	return ptrs(rows), nil
}

// ExpenseRepository implements usecase.ExpenseRepository.
type ExpenseRepository struct {
	store *Store
}

// Create stores a new expense.
func (r *ExpenseRepository) Create(_ context.Context, tx usecase.Tx, e *domain.Expense) error {
	a, err := r.store.staged(tx)
	if err != nil {
		return err
	}
	a.expenses.insert(e.ID, *e)
	return nil
}

// Update overwrites an expense.
func (r *ExpenseRepository) Update(_ context.Context, tx usecase.Tx, e *domain.Expense) error {
	a, err := r.store.staged(tx)
	if err != nil {
		return err
	}
	if !a.expenses.update(e.ID, *e) {
		return domain.ErrExpenseNotFound
	}
	return nil
}

// Delete removes an expense.
func (r *ExpenseRepository) Delete(_ context.Context, tx usecase.Tx, id string) error {
	a, err := r.store.staged(tx)
	if err != nil {
		return err
	}
	if !a.expenses.remove(id) {
		return domain.ErrExpenseNotFound
	}
	return nil
}

// GetByIDForUpdate retrieves an expense as staged in tx.
func (r *ExpenseRepository) GetByIDForUpdate(_ context.Context, tx usecase.Tx, id string) (*domain.Expense, error) {
	a, err := r.store.staged(tx)
	if err != nil {
		return nil, err
	}
	e, ok := a.expenses.get(id)
	if !ok {
		return nil, domain.ErrExpenseNotFound
	}
	return &e, nil
}

// List lists committed expenses, newest first.
func (r *ExpenseRepository) List(_ context.Context) ([]*domain.Expense, error) {
	var rows []domain.Expense
	r.store.read(func(a *arena) { rows = a.expenses.list() })
	return ptrs(rows), nil
}

// ActivityLogRepository implements usecase.ActivityLogRepository.
type ActivityLogRepository struct {
	store *Store
}

// Append puts entry at the head of the capped log.
func (r *ActivityLogRepository) Append(_ context.Context, tx usecase.Tx, entry *domain.ActivityLogEntry) error {
	a, err := r.store.staged(tx)
	if err != nil {
		return err
	}
	a.activity = domain.PrependActivity(a.activity, *entry)
	return nil
}

// List returns up to limit committed entries, newest first.
func (r *ActivityLogRepository) List(_ context.Context, limit int) ([]*domain.ActivityLogEntry, error) {
	var rows []domain.ActivityLogEntry
	r.store.read(func(a *arena) {
		n := len(a.activity)
		if limit > 0 && limit < n {
			n = limit
		}
		rows = append([]domain.ActivityLogEntry(nil), a.activity[:n]...)
	})
	return ptrs(rows), nil
}
