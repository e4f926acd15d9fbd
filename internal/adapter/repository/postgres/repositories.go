package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/qatledger/internal/domain"
	"github.com/iho/qatledger/internal/infrastructure/postgres/generated"
	"github.com/iho/qatledger/internal/usecase"
)

// NewRepositories returns every repository backed by the records table.
func NewRepositories(pool *pgxpool.Pool) usecase.Repositories {
	return newRepositories(generated.New(pool))
}

func newRepositories(queries *generated.Queries) usecase.Repositories {
	return usecase.Repositories{
		Parties: &PartyRepository{
			customers: recordTable[domain.Party]{queries, entityCustomer, domain.ErrPartyNotFound},
			suppliers: recordTable[domain.Party]{queries, entitySupplier, domain.ErrPartyNotFound},
		},
		Transactions: &TransactionRepository{
			sales:     recordTable[domain.Transaction]{queries, entitySale, domain.ErrTransactionNotFound},
			purchases: recordTable[domain.Transaction]{queries, entityPurchase, domain.ErrTransactionNotFound},
		},
		Vouchers:  &VoucherRepository{table: recordTable[domain.Voucher]{queries, entityVoucher, domain.ErrVoucherNotFound}},
		Inventory: &InventoryRepository{table: recordTable[domain.InventoryItem]{queries, entityItem, domain.ErrItemNotFound}},
		Waste:     &WasteRepository{table: recordTable[domain.Waste]{queries, entityWaste, domain.ErrWasteNotFound}},
		Expenses:  &ExpenseRepository{table: recordTable[domain.Expense]{queries, entityExpense, domain.ErrExpenseNotFound}},
		Activity:  &ActivityLogRepository{table: recordTable[domain.ActivityLogEntry]{queries, entityActivity, nil}},
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

// Create creates a new party.
func (r *PartyRepository) Create(ctx context.Context, tx usecase.Tx, party *domain.Party) error {
	return r.table(party.Type).insert(ctx, tx, party.ID, party.CreatedAt, party)
}

// Delete removes a party.
func (r *PartyRepository) Delete(ctx context.Context, tx usecase.Tx, partyType domain.PartyType, id string) error {
	return r.table(partyType).delete(ctx, tx, id)
}

// GetByID retrieves a party by ID.
func (r *PartyRepository) GetByID(ctx context.Context, partyType domain.PartyType, id string) (*domain.Party, error) {
	return r.table(partyType).get(ctx, id)
}

// List lists parties of one type, newest first.
func (r *PartyRepository) List(ctx context.Context, partyType domain.PartyType) ([]*domain.Party, error) {
	return r.table(partyType).list(ctx)
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

// Create creates a new sale or purchase.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Tx, t *domain.Transaction) error {
	return r.table(t.Kind).insert(ctx, tx, t.ID, t.CreatedAt, t)
}

// Update overwrites a sale or purchase.
func (r *TransactionRepository) Update(ctx context.Context, tx usecase.Tx, t *domain.Transaction) error {
	return r.table(t.Kind).update(ctx, tx, t.ID, t)
}

// Delete removes a sale or purchase.
func (r *TransactionRepository) Delete(ctx context.Context, tx usecase.Tx, kind domain.TransactionKind, id string) error {
	return r.table(kind).delete(ctx, tx, id)
}

// GetByID retrieves a sale or purchase by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, kind domain.TransactionKind, id string) (*domain.Transaction, error) {
	return r.table(kind).get(ctx, id)
}

// GetByIDForUpdate retrieves a sale or purchase with a FOR UPDATE lock.
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Tx, kind domain.TransactionKind, id string) (*domain.Transaction, error) {
	return r.table(kind).getForUpdate(ctx, tx, id)
}

// List lists sales or purchases, newest first.
func (r *TransactionRepository) List(ctx context.Context, kind domain.TransactionKind) ([]*domain.Transaction, error) {
	return r.table(kind).list(ctx)
}

// VoucherRepository implements usecase.VoucherRepository.
type VoucherRepository struct {
	table recordTable[domain.Voucher]
}

func (r *VoucherRepository) Create(ctx context.Context, tx usecase.Tx, v *domain.Voucher) error {
	return r.table.insert(ctx, tx, v.ID, v.CreatedAt, v)
}

func (r *VoucherRepository) Update(ctx context.Context, tx usecase.Tx, v *domain.Voucher) error {
	return r.table.update(ctx, tx, v.ID, v)
}

func (r *VoucherRepository) Delete(ctx context.Context, tx usecase.Tx, id string) error {
	return r.table.delete(ctx, tx, id)
}

func (r *VoucherRepository) GetByID(ctx context.Context, id string) (*domain.Voucher, error) {
	return r.table.get(ctx, id)
}

func (r *VoucherRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Tx, id string) (*domain.Voucher, error) {
	return r.table.getForUpdate(ctx, tx, id)
}

func (r *VoucherRepository) List(ctx context.Context) ([]*domain.Voucher, error) {
	return r.table.list(ctx)
}

// InventoryRepository implements usecase.InventoryRepository.
type InventoryRepository struct {
	table recordTable[domain.InventoryItem]
}

func (r *InventoryRepository) Create(ctx context.Context, tx usecase.Tx, item *domain.InventoryItem) error {
	return r.table.insert(ctx, tx, item.ID, item.CreatedAt, item)
}

func (r *InventoryRepository) Update(ctx context.Context, tx usecase.Tx, item *domain.InventoryItem) error {
	return r.table.update(ctx, tx, item.ID, item)
}

func (r *InventoryRepository) Delete(ctx context.Context, tx usecase.Tx, id string) error {
	return r.table.delete(ctx, tx, id)
}

func (r *InventoryRepository) GetByID(ctx context.Context, id string) (*domain.InventoryItem, error) {
	return r.table.get(ctx, id)
}

func (r *InventoryRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Tx, id string) (*domain.InventoryItem, error) {
	return r.table.getForUpdate(ctx, tx, id)
}

func (r *InventoryRepository) List(ctx context.Context) ([]*domain.InventoryItem, error) {
	return r.table.list(ctx)
}

// WasteRepository implements usecase.WasteRepository.
type WasteRepository struct {
	table recordTable[domain.Waste]
}

func (r *WasteRepository) Create(ctx context.Context, tx usecase.Tx, w *domain.Waste) error {
	return r.table.insert(ctx, tx, w.ID, w.CreatedAt, w)
}

func (r *WasteRepository) Delete(ctx context.Context, tx usecase.Tx, id string) error {
	return r.table.delete(ctx, tx, id)
}

func (r *WasteRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Tx, id string) (*domain.Waste, error) {
	return r.table.getForUpdate(ctx, tx, id)
}

func (r *WasteRepository) List(ctx context.Context) ([]*domain.Waste, error) {
	return r.table.list(ctx)
}

// ExpenseRepository implements usecase.ExpenseRepository.
type ExpenseRepository struct {
	table recordTable[domain.Expense]
}

func (r *ExpenseRepository) Create(ctx context.Context, tx usecase.Tx, e *domain.Expense) error {
	return r.table.insert(ctx, tx, e.ID, e.CreatedAt, e)
}

func (r *ExpenseRepository) Update(ctx context.Context, tx usecase.Tx, e *domain.Expense) error {
	return r.table.update(ctx, tx, e.ID, e)
}

func (r *ExpenseRepository) Delete(ctx context.Context, tx usecase.Tx, id string) error {
	return r.table.delete(ctx, tx, id)
}

func (r *ExpenseRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Tx, id string) (*domain.Expense, error) {
	return r.table.getForUpdate(ctx, tx, id)
}

func (r *ExpenseRepository) List(ctx context.Context) ([]*domain.Expense, error) {
	return r.table.list(ctx)
}

// ActivityLogRepository implements usecase.ActivityLogRepository.
type ActivityLogRepository struct {
	table recordTable[domain.ActivityLogEntry]
}

// Append inserts entry and trims the log to the newest
// domain.MaxActivityLogEntries rows in the same transaction.
func (r *ActivityLogRepository) Append(ctx context.Context, tx usecase.Tx, entry *domain.ActivityLogEntry) error {
	if err := r.table.insert(ctx, tx, entry.ID, entry.CreatedAt, entry); err != nil {
		return err
	}

	q, err := queriesFor(tx)
	if err != nil {
		return err
	}

	return q.TrimRecords(ctx, generated.TrimRecordsParams{
		EntityType: entityActivity,
		Keep:       domain.MaxActivityLogEntries,
	})
}

// List returns up to limit entries, newest first. limit <= 0 returns all.
func (r *ActivityLogRepository) List(ctx context.Context, limit int) ([]*domain.ActivityLogEntry, error) {
	if limit <= 0 {
		return r.table.list(ctx)
	}

	rows, err := r.table.queries.ListRecordsLimit(ctx, generated.ListRecordsLimitParams{
		EntityType: entityActivity,
		Limit:      int32(limit),
	})
	if err != nil {
		return nil, err
	}
	return r.table.decodeAll(rows)
}
