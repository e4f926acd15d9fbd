package integration

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/qatledger/internal/domain"
	"github.com/iho/qatledger/internal/usecase"
	"github.com/iho/qatledger/tests/testutil"
)

func TestConcurrentSales(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	l := testDB.NewLedger()
	customer := l.CreateCustomer(t, "Ali")
	item := l.CreateItem(t, "Sawti", 30)

	const numSales = 30

	var (
		wg         sync.WaitGroup
		errorCount atomic.Int32
	)

	wg.Add(numSales)
	for range numSales {
		go func() {
			defer wg.Done()

			_, err := l.Ledger.RecordSale(ctx, usecase.RecordTransactionInput{
				PartyID:    customer.ID,
				ItemID:     item.ID,
				Quantity:   1,
				UnitPrice:  decimal.NewFromInt(100),
				Currency:   domain.CurrencyYER,
				Settlement: domain.SettlementDeferred,
			})
			if err != nil {
				t.Logf("sale failed: %v", err)
				errorCount.Add(1)
			}
		}()
	}
	wg.Wait()

	if errorCount.Load() != 0 {
		t.Fatalf("expected every sale to succeed, %d failed", errorCount.Load())
	}

	got, err := l.Inventory.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("failed to get item: %v", err)
	}
	if got.Stock != 0 {
		t.Errorf("expected stock 0 after %d sales, got %d", numSales, got.Stock)
	}

	if r := l.Receivable(t, customer.ID, domain.CurrencyYER); !r.Equal(decimal.NewFromInt(100 * numSales)) {
		t.Errorf("expected receivable %d, got %s", 100*numSales, r)
	}

	sales, err := testDB.Repos.Transactions.List(ctx, domain.KindSale)
	if err != nil {
		t.Fatalf("failed to list sales: %v", err)
	}
	if len(sales) != numSales {
		t.Errorf("expected %d sales, got %d", numSales, len(sales))
	}
}

func TestConcurrentReturnsApplyOnce(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	l := testDB.NewLedger()
	customer := l.CreateCustomer(t, "Ali")
	item := l.CreateItem(t, "Sawti", 10)

	sale, err := l.Ledger.RecordSale(ctx, usecase.RecordTransactionInput{
		PartyID:    customer.ID,
		ItemID:     item.ID,
		Quantity:   4,
		UnitPrice:  decimal.NewFromInt(250),
		Currency:   domain.CurrencyYER,
		Settlement: domain.SettlementDeferred,
	})
	if err != nil {
		t.Fatalf("failed to record sale: %v", err)
	}

	const attempts = 10

	var (
		wg       sync.WaitGroup
		returned atomic.Int32
		rejected atomic.Int32
	)

	wg.Add(attempts)
	for range attempts {
		go func() {
			defer wg.Done()

			_, err := l.Ledger.ReturnSale(ctx, sale.ID)
			switch {
			case err == nil:
				returned.Add(1)
			case errors.Is(err, domain.ErrAlreadyReturned):
				rejected.Add(1)
			default:
				t.Errorf("unexpected return error: %v", err)
			}
		}()
	}
	wg.Wait()

	if returned.Load() != 1 || rejected.Load() != attempts-1 {
		t.Fatalf("expected exactly one return, got %d returned and %d rejected", returned.Load(), rejected.Load())
	}

	got, err := l.Inventory.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("failed to get item: %v", err)
	}
	if got.Stock != 10 {
		t.Errorf("expected stock restored to 10, got %d", got.Stock)
	}

	if r := l.Receivable(t, customer.ID, domain.CurrencyYER); !r.IsZero() {
		t.Errorf("a returned sale must not be owed, got %s", r)
	}
}
