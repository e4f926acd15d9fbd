package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/qatledger/internal/domain"
)

// PartyRepository defines data access for customers and suppliers.
type PartyRepository interface {
	Create(ctx context.Context, tx Tx, party *domain.Party) error
	Delete(ctx context.Context, tx Tx, partyType domain.PartyType, id string) error
	GetByID(ctx context.Context, partyType domain.PartyType, id string) (*domain.Party, error)
	List(ctx context.Context, partyType domain.PartyType) ([]*domain.Party, error)
}

// TransactionRepository defines data access for sales and purchases.
type TransactionRepository interface {
	Create(ctx context.Context, tx Tx, t *domain.Transaction) error
	Update(ctx context.Context, tx Tx, t *domain.Transaction) error
	Delete(ctx context.Context, tx Tx, kind domain.TransactionKind, id string) error
	GetByID(ctx context.Context, kind domain.TransactionKind, id string) (*domain.Transaction, error)
	GetByIDForUpdate(ctx context.Context, tx Tx, kind domain.TransactionKind, id string) (*domain.Transaction, error)
	List(ctx context.Context, kind domain.TransactionKind) ([]*domain.Transaction, error)
}

// VoucherRepository defines data access for vouchers.
type VoucherRepository interface {
	Create(ctx context.Context, tx Tx, v *domain.Voucher) error
	Update(ctx context.Context, tx Tx, v *domain.Voucher) error
	Delete(ctx context.Context, tx Tx, id string) error
	GetByID(ctx context.Context, id string) (*domain.Voucher, error)
	GetByIDForUpdate(ctx context.Context, tx Tx, id string) (*domain.Voucher, error)
	List(ctx context.Context) ([]*domain.Voucher, error)
}

// InventoryRepository defines data access for inventory items.
type InventoryRepository interface {
	Create(ctx context.Context, tx Tx, item *domain.InventoryItem) error
	Update(ctx context.Context, tx Tx, item *domain.InventoryItem) error
	Delete(ctx context.Context, tx Tx, id string) error
	GetByID(ctx context.Context, id string) (*domain.InventoryItem, error)
	GetByIDForUpdate(ctx context.Context, tx Tx, id string) (*domain.InventoryItem, error)
	List(ctx context.Context) ([]*domain.InventoryItem, error)
}

// WasteRepository defines data access for waste records.
type WasteRepository interface {
	Create(ctx context.Context, tx Tx, w *domain.Waste) error
	Delete(ctx context.Context, tx Tx, id string) error
	GetByIDForUpdate(ctx context.Context, tx Tx, id string) (*domain.Waste, error)
	List(ctx context.Context) ([]*domain.Waste, error)
}

// ExpenseRepository defines data access for expenses.
type ExpenseRepository interface {
	Create(ctx context.Context, tx Tx, e *domain.Expense) error
	Update(ctx context.Context, tx Tx, e *domain.Expense) error
	Delete(ctx context.Context, tx Tx, id string) error
	GetByIDForUpdate(ctx context.Context, tx Tx, id string) (*domain.Expense, error)
	List(ctx context.Context) ([]*domain.Expense, error)
}

// ActivityLogRepository defines data access for the capped activity log.
type ActivityLogRepository interface {
	// Append stores entry at the head of the log and drops entries past
	// domain.MaxActivityLogEntries.
	Append(ctx context.Context, tx Tx, entry *domain.ActivityLogEntry) error
	List(ctx context.Context, limit int) ([]*domain.ActivityLogEntry, error)
}

// Tx represents a storage transaction.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TxManager handles transaction lifecycle.
type TxManager interface {
	Begin(ctx context.Context) (Tx, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// IdempotencyPending is the value an IdempotencyStore holds for a key whose
// first request has not finished yet.
const IdempotencyPending = "processing"

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key so the request can be retried.
	Release(ctx context.Context, key string) error
}

// EventPublisher receives change events after a mutation commits.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.ChangeEvent) error
}

// EventHandlerFunc adapts a function to EventPublisher.
type EventHandlerFunc func(ctx context.Context, event domain.ChangeEvent) error

// Publish calls f(ctx, event).
func (f EventHandlerFunc) Publish(ctx context.Context, event domain.ChangeEvent) error {
	return f(ctx, event)
}

// Assistant turns a natural-language request into a proposed ledger command.
// Proposals are never applied directly; they go through LedgerUseCase.Execute.
type Assistant interface {
	Propose(ctx context.Context, request AssistantRequest) (*Command, error)
}
