package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/qatledger/internal/domain"
)

const (
	summaryCacheKey = "summary:global"
	debtsCacheKey   = "report:debts"
)

// PartyBalance is the per-currency balance of one party.
type PartyBalance struct {
	Party    *domain.Party           `json:"party"`
	Balances []domain.CurrencyAmount `json:"balances"`
}

// DebtsReport lists outstanding debts in both directions.
type DebtsReport struct {
	Receivables []domain.PartyDebt `json:"receivables"`
	Payables    []domain.PartyDebt `json:"payables"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// BalanceUseCase loads the ledger snapshot and derives balances from it.
// Derived figures may be cached; they are never stored as records.
type BalanceUseCase struct {
	repos  Repositories
	cache  Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewBalanceUseCase creates a new BalanceUseCase. cache may be nil.
func NewBalanceUseCase(repos Repositories, cache Cache, ttl time.Duration, logger zerolog.Logger) *BalanceUseCase {
	if ttl <= 0 {
		ttl = DefaultBalanceCacheTTL
	}

	return &BalanceUseCase{
		repos:  repos,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// Receivable returns what the customer owes the agency per currency.
func (uc *BalanceUseCase) Receivable(ctx context.Context, customerID string) (*PartyBalance, error) {
	return uc.partyBalance(ctx, domain.PartyCustomer, customerID)
}

// Payable returns what the agency owes the supplier per currency.
func (uc *BalanceUseCase) Payable(ctx context.Context, supplierID string) (*PartyBalance, error) {
	return uc.partyBalance(ctx, domain.PartySupplier, supplierID)
}

func (uc *BalanceUseCase) partyBalance(ctx context.Context, partyType domain.PartyType, id string) (*PartyBalance, error) {
	party, err := uc.repos.Parties.GetByID(ctx, partyType, id)
	if err != nil {
		return nil, domain.WrapPersistence("get party", err)
	}

	return cached(ctx, uc, balanceCacheKey(partyType, id), func() (*PartyBalance, error) {
		vouchers, err := uc.repos.Vouchers.List(ctx)
		if err != nil {
			return nil, domain.WrapPersistence("list vouchers", err)
		}

		if partyType == domain.PartySupplier {
			purchases, err := uc.repos.Transactions.List(ctx, domain.KindPurchase)
			if err != nil {
				return nil, domain.WrapPersistence("list purchases", err)
			}
			return &PartyBalance{Party: party, Balances: domain.PartyPayable(id, purchases, vouchers)}, nil
		}

		sales, err := uc.repos.Transactions.List(ctx, domain.KindSale)
		if err != nil {
			return nil, domain.WrapPersistence("list sales", err)
		}
		return &PartyBalance{Party: party, Balances: domain.PartyReceivable(id, sales, vouchers)}, nil
	})
}

// GlobalSummary returns assets, liabilities and net per currency.
func (uc *BalanceUseCase) GlobalSummary(ctx context.Context) ([]domain.CurrencySummary, error) {
	return cached(ctx, uc, summaryCacheKey, func() ([]domain.CurrencySummary, error) {
		snap, err := uc.loadSnapshot(ctx)
		if err != nil {
			return nil, err
		}
		return domain.GlobalSummary(snap.customers, snap.suppliers, snap.sales, snap.purchases, snap.vouchers), nil
	})
}

// Debts lists every current party with a positive balance.
func (uc *BalanceUseCase) Debts(ctx context.Context) (*DebtsReport, error) {
	return cached(ctx, uc, debtsCacheKey, func() (*DebtsReport, error) {
		snap, err := uc.loadSnapshot(ctx)
		if err != nil {
			return nil, err
		}

		receivables, payables := domain.DebtsReport(snap.customers, snap.suppliers, snap.sales, snap.purchases, snap.vouchers)
		if receivables == nil {
			receivables = []domain.PartyDebt{}
		}
		if payables == nil {
			payables = []domain.PartyDebt{}
		}

		return &DebtsReport{
			Receivables: receivables,
			Payables:    payables,
			GeneratedAt: time.Now().UTC(),
		}, nil
	})
}

// Invalidate drops cached figures a committed change may have affected.
// It is subscribed to the change-event broker.
func (uc *BalanceUseCase) Invalidate(ctx context.Context, event domain.ChangeEvent) error {
	if uc.cache == nil || event.PartyID == "" {
		return nil
	}

	keys := []string{summaryCacheKey, debtsCacheKey}
	if event.PartyType.IsValid() {
		keys = append(keys, balanceCacheKey(event.PartyType, event.PartyID))
	}

	return uc.cache.Delete(ctx, keys...)
}

type snapshot struct {
	customers []*domain.Party
	suppliers []*domain.Party
	sales     []*domain.Transaction
	purchases []*domain.Transaction
	vouchers  []*domain.Voucher
}

func (uc *BalanceUseCase) loadSnapshot(ctx context.Context) (*snapshot, error) {
	var (
		snap snapshot
		err  error
	)

	if snap.customers, err = uc.repos.Parties.List(ctx, domain.PartyCustomer); err != nil {
		return nil, domain.WrapPersistence("list customers", err)
	}
	if snap.suppliers, err = uc.repos.Parties.List(ctx, domain.PartySupplier); err != nil {
		return nil, domain.WrapPersistence("list suppliers", err)
	}
	if snap.sales, err = uc.repos.Transactions.List(ctx, domain.KindSale); err != nil {
		return nil, domain.WrapPersistence("list sales", err)
	}
	if snap.purchases, err = uc.repos.Transactions.List(ctx, domain.KindPurchase); err != nil {
		return nil, domain.WrapPersistence("list purchases", err)
	}
	if snap.vouchers, err = uc.repos.Vouchers.List(ctx); err != nil {
		return nil, domain.WrapPersistence("list vouchers", err)
	}

	return &snap, nil
}

// cached serves key from the cache when possible and fills it otherwise.
// Cache failures only cost a recomputation.
func cached[T any](ctx context.Context, uc *BalanceUseCase, key string, load func() (T, error)) (T, error) {
	if uc.cache == nil {
		return load()
	}

	if raw, err := uc.cache.Get(ctx, key); err == nil {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		uc.logger.Warn().Str("key", key).Msg("discarding undecodable cache entry")
	} else if !errors.Is(err, ErrCacheMiss) {
		uc.logger.Warn().Err(err).Str("key", key).Msg("balance cache read failed")
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return v, nil
	}
	if err := uc.cache.Set(ctx, key, raw, uc.ttl); err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("balance cache write failed")
	}

	return v, nil
}

func balanceCacheKey(partyType domain.PartyType, id string) string {
	return "balance:" + string(partyType) + ":" + id
}
