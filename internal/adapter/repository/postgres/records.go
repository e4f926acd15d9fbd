package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/qatledger/internal/infrastructure/postgres/generated"
	"github.com/iho/qatledger/internal/usecase"
)

// Entity types stored in the records table.
const (
	entityCustomer = "customer"
	entitySupplier = "supplier"
	entitySale     = "sale"
	entityPurchase = "purchase"
	entityVoucher  = "voucher"
	entityItem     = "item"
	entityWaste    = "waste"
	entityExpense  = "expense"
	entityActivity = "activity"
)

// recordTable reads and writes one entity type of the records table as JSON
// documents of T. notFound is returned for missing rows.
type recordTable[T any] struct {
	queries    *generated.Queries
	entityType string
	notFound   error
}

func (r recordTable[T]) insert(ctx context.Context, tx usecase.Tx, id string, createdAt time.Time, v *T) error {
	q, err := queriesFor(tx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.entityType, err)
	}

	return q.InsertRecord(ctx, generated.InsertRecordParams{
		EntityType: r.entityType,
		ID:         id,
		Payload:    payload,
		CreatedAt:  timeToPgTimestamptz(createdAt),
	})
}

func (r recordTable[T]) update(ctx context.Context, tx usecase.Tx, id string, v *T) error {
	q, err := queriesFor(tx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.entityType, err)
	}

	n, err := q.UpdateRecordPayload(ctx, generated.UpdateRecordPayloadParams{
		EntityType: r.entityType,
		ID:         id,
		Payload:    payload,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return r.notFound
	}
	return nil
}

func (r recordTable[T]) delete(ctx context.Context, tx usecase.Tx, id string) error {
	q, err := queriesFor(tx)
	if err != nil {
		return err
	}

	n, err := q.DeleteRecord(ctx, generated.DeleteRecordParams{EntityType: r.entityType, ID: id})
	if err != nil {
		return err
	}
	if n == 0 {
		return r.notFound
	}
	return nil
}

func (r recordTable[T]) get(ctx context.Context, id string) (*T, error) {
	row, err := r.queries.GetRecord(ctx, generated.GetRecordParams{EntityType: r.entityType, ID: id})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.notFound
		}
		return nil, err
	}
	return r.decode(row)
}

func (r recordTable[T]) getForUpdate(ctx context.Context, tx usecase.Tx, id string) (*T, error) {
	q, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	row, err := q.GetRecordForUpdate(ctx, generated.GetRecordForUpdateParams{EntityType: r.entityType, ID: id})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.notFound
		}
		return nil, err
	}
	return r.decode(row)
}

func (r recordTable[T]) list(ctx context.Context) ([]*T, error) {
	rows, err := r.queries.ListRecords(ctx, r.entityType)
	if err != nil {
		return nil, err
	}
	return r.decodeAll(rows)
}

func (r recordTable[T]) decode(row generated.Record) (*T, error) {
	var v T
	if err := json.Unmarshal(row.Payload, &v); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", r.entityType, row.ID, err)
	}
	return &v, nil
}

func (r recordTable[T]) decodeAll(rows []generated.Record) ([]*T, error) {
	out := make([]*T, 0, len(rows))
	for _, row := range rows {
		v, err := r.decode(row)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: !t.IsZero()}
}
