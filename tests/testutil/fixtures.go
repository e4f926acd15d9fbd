package testutil

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/qatledger/internal/adapter/repository/postgres"
	"github.com/iho/qatledger/internal/domain"
	"github.com/iho/qatledger/internal/infrastructure/idgen"
	pginfra "github.com/iho/qatledger/internal/infrastructure/postgres"
	"github.com/iho/qatledger/internal/usecase"
)

// TestDB provides an isolated PostgreSQL ledger.
type TestDB struct {
	Pool  *pgxpool.Pool
	Repos usecase.Repositories
	t     *testing.T
}

// Ledger bundles the use cases wired over a TestDB.
type Ledger struct {
	Ledger    *usecase.LedgerUseCase
	Parties   *usecase.PartyUseCase
	Inventory *usecase.InventoryUseCase
	Balance   *usecase.BalanceUseCase
	Reports   *usecase.ReportUseCase
}

// MigrationsPath returns the repository migrations directory.
func MigrationsPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}

// NewTestDB connects to DATABASE_URL and applies migrations. The test is
// skipped when DATABASE_URL is unset.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	if err := pginfra.RunMigrations(dbURL, MigrationsPath(), zerolog.Nop()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, dbURL, 20, 2)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	return &TestDB{
		Pool:  pool,
		Repos: postgres.NewRepositories(pool),
		t:     t,
	}
}

// Cleanup closes the database connection.
func (db *TestDB) Cleanup() {
	db.Pool.Close()
}

// TruncateAll removes every record.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	if _, err := db.Pool.Exec(ctx, `TRUNCATE TABLE records`); err != nil {
		db.t.Fatalf("failed to truncate records: %v", err)
	}
}

// NewLedger wires the use cases with the PostgreSQL retrier.
func (db *TestDB) NewLedger() *Ledger {
	deps := usecase.Deps{
		TxManager: postgres.NewTxManager(db.Pool),
		IDGen:     idgen.NewULIDGenerator(),
		Retrier:   postgres.NewRetrier(zerolog.Nop()),
		Logger:    zerolog.Nop(),
	}

	ledger := usecase.NewLedgerUseCase(db.Repos, deps)
	return &Ledger{
		Ledger:    ledger,
		Parties:   usecase.NewPartyUseCase(db.Repos, deps),
		Inventory: usecase.NewInventoryUseCase(db.Repos, deps),
		Balance:   usecase.NewBalanceUseCase(db.Repos, nil, 0, zerolog.Nop()),
		Reports:   usecase.NewReportUseCase(db.Repos, domain.DefaultExchangeRates()),
	}
}

// CreateCustomer adds a customer.
func (l *Ledger) CreateCustomer(t *testing.T, name string) *domain.Party {
	t.Helper()

	p, err := l.Parties.AddCustomer(context.Background(), usecase.AddPartyInput{Name: name})
	if err != nil {
		t.Fatalf("failed to create customer: %v", err)
	}
	return p
}

// CreateSupplier adds a supplier.
func (l *Ledger) CreateSupplier(t *testing.T, name string) *domain.Party {
	t.Helper()

	p, err := l.Parties.AddSupplier(context.Background(), usecase.AddPartyInput{Name: name})
	if err != nil {
		t.Fatalf("failed to create supplier: %v", err)
	}
	return p
}

// CreateItem adds an item priced in YER.
func (l *Ledger) CreateItem(t *testing.T, name string, stock int64) *domain.InventoryItem {
	t.Helper()

	item, err := l.Inventory.AddItem(context.Background(), usecase.AddItemInput{
		Name:      name,
		Stock:     stock,
		UnitPrice: decimal.NewFromInt(100),
		Currency:  domain.CurrencyYER,
	})
	if err != nil {
		t.Fatalf("failed to create item: %v", err)
	}
	return item
}

// Receivable returns a customer's outstanding amount in currency.
func (l *Ledger) Receivable(t *testing.T, customerID string, currency domain.Currency) decimal.Decimal {
	t.Helper()

	b, err := l.Balance.Receivable(context.Background(), customerID)
	if err != nil {
		t.Fatalf("failed to compute receivable: %v", err)
	}
	for _, a := range b.Balances {
		if a.Currency == currency {
			return a.Amount
		}
	}
	return decimal.Zero
}
