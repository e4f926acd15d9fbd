package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/qatledger/internal/domain"
)

// Repositories groups the record store, one repository per entity type.
type Repositories struct {
	Parties      PartyRepository
	Transactions TransactionRepository
	Vouchers     VoucherRepository
	Inventory    InventoryRepository
	Waste        WasteRepository
	Expenses     ExpenseRepository
	Activity     ActivityLogRepository
}

// Deps carries the collaborators shared by the mutating use cases.
// Retrier, Publisher and Clock are optional.
type Deps struct {
	TxManager TxManager
	IDGen     IDGenerator
	Retrier   Retrier
	Publisher EventPublisher
	Logger    zerolog.Logger
	Clock     func() time.Time
}

type noopRetrier struct{}

func (noopRetrier) Retry(_ context.Context, operation func() error) error {
	return operation()
}

// mutator holds the transaction plumbing every write path goes through.
type mutator struct {
	repos     Repositories
	txManager TxManager
	idGen     IDGenerator
	retrier   Retrier
	publisher EventPublisher
	logger    zerolog.Logger
	clock     func() time.Time
}

func newMutator(repos Repositories, deps Deps) mutator {
	m := mutator{
		repos:     repos,
		txManager: deps.TxManager,
		idGen:     deps.IDGen,
		retrier:   deps.Retrier,
		publisher: deps.Publisher,
		logger:    deps.Logger,
		clock:     deps.Clock,
	}
	if m.retrier == nil {
		m.retrier = noopRetrier{}
	}
	if m.clock == nil {
		m.clock = func() time.Time { return time.Now().UTC() }
	}
	return m
}

// inTx runs fn inside one storage transaction. Nothing fn wrote survives
// unless it returns nil and the commit succeeds.
func (m *mutator) inTx(ctx context.Context, op string, fn func(ctx context.Context, tx Tx) error) error {
	return m.retrier.Retry(ctx, func() error {
		ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := m.txManager.Begin(ctx)
		if err != nil {
			return domain.WrapPersistence(op+": begin", err)
		}
		defer tx.Rollback(ctx)

		if err := fn(ctx, tx); err != nil {
			return domain.WrapPersistence(op, err)
		}

		if err := tx.Commit(ctx); err != nil {
			return domain.WrapPersistence(op+": commit", err)
		}

		return nil
	})
}

// adjustStock applies delta to the item and returns it. A missing item is
// skipped (nil, nil) so money records are never blocked by inventory drift.
func (m *mutator) adjustStock(ctx context.Context, tx Tx, itemID string, delta int64) (*domain.InventoryItem, error) {
	if itemID == "" {
		return nil, nil
	}

	item, err := m.repos.Inventory.GetByIDForUpdate(ctx, tx, itemID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			m.logger.Debug().Str("item_id", itemID).Int64("delta", delta).Msg("stock adjustment skipped, item not found")
			return nil, nil
		}
		return nil, err
	}

	if delta == 0 {
		return item, nil
	}

	item.ApplyStockDelta(delta)
	if err := m.repos.Inventory.Update(ctx, tx, item); err != nil {
		return nil, err
	}

	return item, nil
}

func (m *mutator) appendLog(ctx context.Context, tx Tx, action domain.ActivityAction, category domain.ActivityCategory, detail string) error {
	return m.repos.Activity.Append(ctx, tx, &domain.ActivityLogEntry{
		ID:        m.idGen.Generate(),
		Action:    action,
		Detail:    detail,
		Category:  category,
		CreatedAt: m.clock(),
	})
}

// publish notifies subscribers after commit. Failures are logged only; the
// mutation itself already succeeded.
func (m *mutator) publish(ctx context.Context, event domain.ChangeEvent) {
	if m.publisher == nil {
		return
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = m.clock()
	}

	if err := m.publisher.Publish(ctx, event); err != nil {
		m.logger.Warn().Err(err).
			Str("event_type", event.EventType).
			Str("aggregate_id", event.AggregateID).
			Msg("failed to publish change event")
	}
}
