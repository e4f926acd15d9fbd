package sqlite

import (
	"context"

	"github.com/iho/qatledger/internal/domain"
	"github.com/iho/qatledger/internal/usecase"
)

// Repositories returns every repository backed by the records table.
func (d *DB) Repositories() usecase.Repositories {
	db := d.db
	return usecase.Repositories{
		Parties: &PartyRepository{
			customers: recordTable[domain.Party]{db, entityCustomer, domain.ErrPartyNotFound},
			suppliers: recordTable[domain.Party]{db, entitySupplier, domain.ErrPartyNotFound},
		},
		Transactions: &TransactionRepository{
			sales:     recordTable[domain.Transaction]{db, entitySale, domain.ErrTransactionNotFound},
			purchases: recordTable[domain.Transaction]{db, entityPurchase, domain.ErrTransactionNotFound},
		},
		Vouchers:  &VoucherRepository{table: recordTable[domain.Voucher]{db, entityVoucher, domain.ErrVoucherNotFound}},
		Inventory: &InventoryRepository{table: recordTable[domain.InventoryItem]{db, entityItem, domain.ErrItemNotFound}},
		Waste:     &WasteRepository{table: recordTable[domain.Waste]{db, entityWaste, domain.ErrWasteNotFound}},
		Expenses:  &ExpenseRepository{table: recordTable[domain.Expense]{db, entityExpense, domain.ErrExpenseNotFound}},
		Activity:  &ActivityLogRepository{table: recordTable[domain.ActivityLogEntry]{db, entityActivity, nil}},
	}
}

// PartyRepository implements usecase.PartyRepository.
type PartyRepository struct {
	customers recordTable[domain.Party]
	suppliers recordTable[domain.Party]
}

func (r *PartyRepository) table(partyType domain.PartyType) recordTable[domain.Party] {
	if partyType == domain.PartySupplier {
		return r.suppliers
	}
	return r.customers
}

func (r *PartyRepository) Create(ctx context.Context, tx usecase.Tx, party *domain.Party) error {
	t, err := sqlTx(tx)
	if err != nil {
		return err
	}
	return r.table(party.Type).insert(ctx, t, party.ID, party.CreatedAt, party)
}

func (r *PartyRepository) Delete(ctx context.Context, tx usecase.Tx, partyType domain.PartyType, id string) error {
	t, err := sqlTx(tx)
	if err != nil {
		return err
	}
	return r.table(partyType).delete(ctx, t, id)
}

func (r *PartyRepository) GetByID(ctx context.Context, partyType domain.PartyType, id string) (*domain.Party, error) {
	table := r.table(partyType)
	return table.get(ctx, table.db, id)
}

func (r *PartyRepository) List(ctx context.Context, partyType domain.PartyType) ([]*domain.Party, error) {
	return r.table(partyType).list(ctx, 0)
}

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	sales     recordTable[domain.Transaction]
	purchases recordTable[domain.Transaction]
}

func (r *TransactionRepository) table(kind domain.TransactionKind) recordTable[domain.Transaction] {
	if kind == domain.KindPurchase {
		return r.purchases
	}
	return r.sales
}

func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Tx, t *domain.Transaction) error {
	st, err := sqlTx(tx)
	if err != nil {
		return err
	}
	return r.table(t.Kind).insert(ctx, st, t.ID, t.CreatedAt, t)
}

func (r *TransactionRepository) Update(ctx context.Context, tx usecase.Tx, t *domain.Transaction) error {
	st, err := sqlTx(tx)
	if err != nil {
		return err
	}
	return r.table(t.Kind).update(ctx, st, t.ID, t)
}

func (r *TransactionRepository) Delete(ctx context.Context, tx usecase.Tx, kind domain.TransactionKind, id string) error {
	st, err := sqlTx(tx)
	if err != nil {
		return err
	}
	return r.table(kind).delete(ctx, st, id)
}

func (r *TransactionRepository) GetByID(ctx context.Context, kind domain.TransactionKind, id string) (*domain.Transaction, error) {
	table := r.table(kind)
	return table.get(ctx, table.db, id)
}

func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Tx, kind domain.TransactionKind, id string) (*domain.Transaction, error) {
	st, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}
	return r.table(kind).get(ctx, st, id)
}

func (r *TransactionRepository) List(ctx context.Context, kind domain.TransactionKind) ([]*domain.Transaction, error) {
	return r.table(kind).list(ctx, 0)
}

// VoucherRepository implements usecase.VoucherRepository.
type VoucherRepository struct {
	table recordTable[domain.Voucher]
}

func (r *VoucherRepository) Create(ctx context.Context, tx usecase.Tx, v *domain.Voucher) error {
	st, err := sqlTx(tx)
	if err != nil {
		return err
	}
	return r.table.insert(ctx, st, v.ID, v.CreatedAt, v)
}

func (r *VoucherRepository) Update(ctx context.Context, tx usecase.Tx, v *domain.Voucher) error {
	st, err := sqlTx(tx)
	if err != nil {
		return err
	}
	return r.table.update(ctx, st, v.ID, v)
}

func (r *VoucherRepository) Delete(ctx context.Context, tx usecase.Tx, id string) error {
	st, err := sqlTx(tx)
	if err != nil {
		return err
	}
	return r.table.delete(ctx, st, id)
}

func (r *VoucherRepository) GetByID(ctx context.Context, id string) (*domain.Voucher, error) {
	return r.table.get(ctx, r.table.db, id)
}

func (r *VoucherRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Tx, id string) (*domain.Voucher, error) {
	st, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}
	return r.table.get(ctx, st, id)
}

func (r *VoucherRepository) List(ctx context.Context) ([]*domain.Voucher, error) {
	return r.table.list(ctx, 0)
}

// InventoryRepository implements usecase.InventoryRepository.
type InventoryRepository struct {
	table recordTable[domain.InventoryItem]
}

func (r *InventoryRepository) Create(ctx context.Context, tx usecase.Tx, item *domain.InventoryItem) error {
	st, err := sqlTx(tx)
	if err != nil {
		return err
	}
	return r.table.insert(ctx, st, item.ID, item.CreatedAt, item)
}

func (r *InventoryRepository) Update(ctx context.Context, tx usecase.Tx, item *domain.InventoryItem) error {
	st, err := sqlTx(tx)
	if err != nil {
		return err
	}
	return r.table.update(ctx, st, item.ID, item)
}

func (r *InventoryRepository) Delete(ctx context.Context, tx usecase.Tx, id string) error {
	st, err := sqlTx(tx)
	if err != nil {
		return err
	}
	return r.table.delete(ctx, st, id)
}

func (r *InventoryRepository) GetByID(ctx context.Context, id string) (*domain.InventoryItem, error) {
	return r.table.get(ctx, r.table.db, id)
}

func (r *InventoryRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Tx, id string) (*domain.InventoryItem, error) {
	st, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}
	return r.table.get(ctx, st, id)
}

func (r *InventoryRepository) List(ctx context.Context) ([]*domain.InventoryItem, error) {
	return r.table.list(ctx, 0)
}

// WasteRepository implements usecase.WasteRepository.
type WasteRepository struct {
	table recordTable[domain.Waste]
}

func (r *WasteRepository) Create(ctx context.Context, tx usecase.Tx, w *domain.Waste) error {
	st, err := sqlTx(tx)
	if err != nil {
		return err
	}
	return r.table.insert(ctx, st, w.ID, w.CreatedAt, w)
}

func (r *WasteRepository) Delete(ctx context.Context, tx usecase.Tx, id string) error {
	st, err := sqlTx(tx)
	if err != nil {
		return err
	}
	return r.table.delete(ctx, st, id)
}

func (r *WasteRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Tx, id string) (*domain.Waste, error) {
	st, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}
	return r.table.get(ctx, st, id)
}

func (r *WasteRepository) List(ctx context.Context) ([]*domain.Waste, error) {
	return r.table.list(ctx, 0)
}

// ExpenseRepository implements usecase.ExpenseRepository.
type ExpenseRepository struct {
	table recordTable[domain.Expense]
}

func (r *ExpenseRepository) Create(ctx context.Context, tx usecase.Tx, e *domain.Expense) error {
	st, err := sqlTx(tx)
	if err != nil {
		return err
	}
	return r.table.insert(ctx, st, e.ID, e.CreatedAt, e)
}

func (r *ExpenseRepository) Update(ctx context.Context, tx usecase.Tx, e *domain.Expense) error {
	st, err := sqlTx(tx)
	if err != nil {
		return err
	}
	return r.table.update(ctx, st, e.ID, e)
}

func (r *ExpenseRepository) Delete(ctx context.Context, tx usecase.Tx, id string) error {
	st, err := sqlTx(tx)
	if err != nil {
		return err
	}
	return r.table.delete(ctx, st, id)
}

func (r *ExpenseRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Tx, id string) (*domain.Expense, error) {
	st, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}
	return r.table.get(ctx, st, id)
}

func (r *ExpenseRepository) List(ctx context.Context) ([]*domain.Expense, error) {
	return r.table.list(ctx, 0)
}

// ActivityLogRepository implements usecase.ActivityLogRepository.
type ActivityLogRepository struct {
	table recordTable[domain.ActivityLogEntry]
}

// Append inserts entry and trims the log to the newest
// domain.MaxActivityLogEntries rows.
func (r *ActivityLogRepository) Append(ctx context.Context, tx usecase.Tx, entry *domain.ActivityLogEntry) error {
	st, err := sqlTx(tx)
	if err != nil {
		return err
	}
	if err := r.table.insert(ctx, st, entry.ID, entry.CreatedAt, entry); err != nil {
		return err
	}
	return r.table.trim(ctx, st, domain.MaxActivityLogEntries)
}

// List returns up to limit entries, newest first. limit <= 0 returns all.
func (r *ActivityLogRepository) List(ctx context.Context, limit int) ([]*domain.ActivityLogEntry, error) {
	return r.table.list(ctx, limit)
}
