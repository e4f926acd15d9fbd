package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
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

const (
	insertRecord = `INSERT INTO records (entity_type, id, payload, created_at) VALUES (?, ?, ?, ?)`
	updateRecord = `UPDATE records SET payload = ? WHERE entity_type = ? AND id = ?`
	deleteRecord = `DELETE FROM records WHERE entity_type = ? AND id = ?`
	getRecord    = `SELECT payload FROM records WHERE entity_type = ? AND id = ?`
	listRecords  = `SELECT payload FROM records WHERE entity_type = ? ORDER BY seq DESC`
	listLimit    = `SELECT payload FROM records WHERE entity_type = ? ORDER BY seq DESC LIMIT ?`
	trimRecords  = `DELETE FROM records WHERE entity_type = ? AND seq NOT IN (
		SELECT seq FROM records WHERE entity_type = ? ORDER BY seq DESC LIMIT ?)`
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// recordTable reads and writes one entity type as JSON documents of T.
type recordTable[T any] struct {
	db         *sql.DB
	entityType string
	notFound   error
}

func (r recordTable[T]) insert(ctx context.Context, tx *sql.Tx, id string, createdAt time.Time, v *T) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.entityType, err)
	}

	_, err = tx.ExecContext(ctx, insertRecord, r.entityType, id, string(payload), createdAt.UTC().Format(time.RFC3339Nano))
	return err
}

func (r recordTable[T]) update(ctx context.Context, tx *sql.Tx, id string, v *T) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.entityType, err)
	}

	res, err := tx.ExecContext(ctx, updateRecord, string(payload), r.entityType, id)
	if err != nil {
		return err
	}
	return r.requireRow(res)
}

func (r recordTable[T]) delete(ctx context.Context, tx *sql.Tx, id string) error {
	res, err := tx.ExecContext(ctx, deleteRecord, r.entityType, id)
	if err != nil {
		return err
	}
	return r.requireRow(res)
}

func (r recordTable[T]) requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return r.notFound
	}
	return nil
}

func (r recordTable[T]) get(ctx context.Context, q querier, id string) (*T, error) {
	var payload string
	if err := q.QueryRowContext(ctx, getRecord, r.entityType, id).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.notFound
		}
		return nil, err
	}
	return r.decode(payload)
}

func (r recordTable[T]) list(ctx context.Context, limit int) ([]*T, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, listLimit, r.entityType, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, listRecords, r.entityType)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*T{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		v, err := r.decode(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r recordTable[T]) trim(ctx context.Context, tx *sql.Tx, keep int) error {
	_, err := tx.ExecContext(ctx, trimRecords, r.entityType, r.entityType, keep)
	return err
}

func (r recordTable[T]) decode(payload string) (*T, error) {
	var v T
	if err := json.Unmarshal([]byte(payload), &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.entityType, err)
	}
	return &v, nil
}
