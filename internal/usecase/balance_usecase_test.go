package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/qatledger/internal/domain"
	"github.com/iho/qatledger/internal/usecase"
	"github.com/iho/qatledger/internal/usecase/mocks"
)

func summaryIn(t *testing.T, summary []domain.CurrencySummary, c domain.Currency) domain.CurrencySummary {
	t.Helper()
	for _, s := range summary {
		if s.Currency == c {
			return s
		}
	}
	t.Fatalf("currency %s missing from summary", c)
	return domain.CurrencySummary{}
}

func TestBalanceUseCase_GlobalSummaryIgnoresCredits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	debtor := f.customer(t, "Ali")
	overpaid := f.customer(t, "Saleh")
	supplier := f.supplier(t, "Wadi")

	if _, err := f.ledger.RecordSale(ctx, usecase.RecordTransactionInput{
		PartyID: debtor.ID, ItemName: "Sawti", Quantity: 2, UnitPrice: decimal.NewFromInt(500), Currency: domain.CurrencyYER,
	}); err != nil {
		t.Fatalf("record sale: %v", err)
	}
	if _, err := f.ledger.RecordVoucher(ctx, usecase.RecordVoucherInput{
		Direction: domain.VoucherReceipt, PartyID: overpaid.ID, Amount: decimal.NewFromInt(300), Currency: domain.CurrencyYER,
	}); err != nil {
		t.Fatalf("record voucher: %v", err)
	}
	if _, err := f.ledger.RecordPurchase(ctx, usecase.RecordTransactionInput{
		PartyID: supplier.ID, ItemName: "Sawti", Quantity: 1, UnitPrice: decimal.NewFromInt(40), Currency: domain.CurrencySAR,
	}); err != nil {
		t.Fatalf("record purchase: %v", err)
	}

	summary, err := f.balance.GlobalSummary(ctx)
	if err != nil {
		t.Fatalf("global summary: %v", err)
	}

	yer := summaryIn(t, summary, domain.CurrencyYER)
	if !yer.Assets.Equal(decimal.NewFromInt(1000)) || !yer.Net.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("credit must not offset debts, got %+v", yer)
	}
	sar := summaryIn(t, summary, domain.CurrencySAR)
	if !sar.Liabilities.Equal(decimal.NewFromInt(40)) || !sar.Net.Equal(decimal.NewFromInt(-40)) {
		t.Fatalf("unexpected SAR summary %+v", sar)
	}

	// Deleting the debtor drops its sales from the summary.
	if err := f.parties.DeleteParty(ctx, domain.PartyCustomer, debtor.ID); err != nil {
		t.Fatalf("delete party: %v", err)
	}
	summary, err = f.balance.GlobalSummary(ctx)
	if err != nil {
		t.Fatalf("global summary: %v", err)
	}
	if got := summaryIn(t, summary, domain.CurrencyYER); !got.Assets.IsZero() {
		t.Fatalf("expected no YER assets after delete, got %s", got.Assets)
	}
}

func TestBalanceUseCase_Debts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	debtor := f.customer(t, "Ali")
	f.customer(t, "Settled")
	supplier := f.supplier(t, "Wadi")

	if _, err := f.ledger.RecordOpeningBalance(ctx, usecase.OpeningBalanceInput{
		PartyType: domain.PartyCustomer, PartyID: debtor.ID, Amount: decimal.NewFromInt(70), Currency: domain.CurrencyOMR,
	}); err != nil {
		t.Fatalf("opening balance: %v", err)
	}
	if _, err := f.ledger.RecordOpeningBalance(ctx, usecase.OpeningBalanceInput{
		PartyType: domain.PartySupplier, PartyID: supplier.ID, Amount: decimal.NewFromInt(15), Currency: domain.CurrencySAR,
	}); err != nil {
		t.Fatalf("opening balance: %v", err)
	}

	report, err := f.balance.Debts(ctx)
	if err != nil {
		t.Fatalf("debts: %v", err)
	}
	if len(report.Receivables) != 1 || report.Receivables[0].Party.ID != debtor.ID {
		t.Fatalf("expected only %s in receivables, got %+v", debtor.ID, report.Receivables)
	}
	if len(report.Receivables[0].Debts) != 1 || report.Receivables[0].Debts[0].Currency != domain.CurrencyOMR {
		t.Fatalf("expected a single OMR debt, got %+v", report.Receivables[0].Debts)
	}
	if len(report.Payables) != 1 || report.Payables[0].Party.ID != supplier.ID {
		t.Fatalf("expected %s in payables, got %+v", supplier.ID, report.Payables)
	}
}

func TestBalanceUseCase_PayableUnknownSupplier(t *testing.T) {
	f := newFixture(t)
	customer := f.customer(t, "Ali")

	_, err := f.balance.Payable(context.Background(), customer.ID)
	if !errors.Is(err, domain.ErrPartyNotFound) {
		t.Fatalf("expected ErrPartyNotFound, got %v", err)
	}
}

func TestBalanceUseCase_DeletedCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer := f.customer(t, "Ali")
	item := f.item(t, "Sawti", 10)
	if _, err := f.ledger.RecordSale(ctx, sale(customer.ID, item.ID, 2, 300)); err != nil {
		t.Fatalf("record sale: %v", err)
	}
	if err := f.parties.DeleteParty(ctx, domain.PartyCustomer, customer.ID); err != nil {
		t.Fatalf("delete customer: %v", err)
	}

	if _, err := f.balance.Receivable(ctx, customer.ID); !errors.Is(err, domain.ErrPartyNotFound) {
		t.Fatalf("expected ErrPartyNotFound, got %v", err)
	}

	sales, err := f.repos.Transactions.List(ctx, domain.KindSale)
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	vouchers, err := f.repos.Vouchers.List(ctx)
	if err != nil {
		t.Fatalf("list vouchers: %v", err)
	}
	if got := amountIn(domain.PartyReceivable(customer.ID, sales, vouchers), domain.CurrencyYER); !got.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("expected orphan receivable 600, got %s", got)
	}

	summary, err := f.balance.GlobalSummary(ctx)
	if err != nil {
		t.Fatalf("global summary: %v", err)
	}
	if assets := summaryIn(t, summary, domain.CurrencyYER).Assets; !assets.IsZero() {
		t.Fatalf("orphaned sales must not count as assets, got %s", assets)
	}
}

func TestBalanceUseCase_Cache(t *testing.T) {
	ctx := context.Background()

	t.Run("hit skips the store", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		cache := mocks.NewMockCache(ctrl)
		parties := mocks.NewMockPartyRepository(ctrl)

		want := []domain.CurrencySummary{{Currency: domain.CurrencyYER, Assets: decimal.NewFromInt(5), Net: decimal.NewFromInt(5)}}
		raw, err := json.Marshal(want)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		cache.EXPECT().Get(gomock.Any(), "summary:global").Return(raw, nil)

		uc := usecase.NewBalanceUseCase(usecase.Repositories{Parties: parties}, cache, time.Minute, zerolog.Nop())

		got, err := uc.GlobalSummary(ctx)
		if err != nil {
			t.Fatalf("global summary: %v", err)
		}
		if len(got) != 1 || !got[0].Assets.Equal(decimal.NewFromInt(5)) {
			t.Fatalf("expected cached summary, got %+v", got)
		}
	})

	t.Run("miss loads and stores", func(t *testing.T) {
		f := newFixture(t)
		customer := f.customer(t, "Ali")

		ctrl := gomock.NewController(t)
		cache := mocks.NewMockCache(ctrl)

		key := "balance:customer:" + customer.ID
		cache.EXPECT().Get(gomock.Any(), key).Return(nil, usecase.ErrCacheMiss)
		cache.EXPECT().Set(gomock.Any(), key, gomock.Any(), time.Minute).Return(nil)

		uc := usecase.NewBalanceUseCase(f.repos, cache, time.Minute, zerolog.Nop())

		got, err := uc.Receivable(ctx, customer.ID)
		if err != nil {
			t.Fatalf("receivable: %v", err)
		}
		if len(got.Balances) != 3 {
			t.Fatalf("expected three currencies, got %d", len(got.Balances))
		}
	})

	t.Run("cache errors fall back to the store", func(t *testing.T) {
		f := newFixture(t)

		ctrl := gomock.NewController(t)
		cache := mocks.NewMockCache(ctrl)

		cache.EXPECT().Get(gomock.Any(), "report:debts").Return(nil, errors.New("redis down"))
		cache.EXPECT().Set(gomock.Any(), "report:debts", gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

		uc := usecase.NewBalanceUseCase(f.repos, cache, 0, zerolog.Nop())

		report, err := uc.Debts(ctx)
		if err != nil {
			t.Fatalf("debts: %v", err)
		}
		if report.Receivables == nil || report.Payables == nil {
			t.Fatalf("expected empty non-nil lists")
		}
	})
}

func TestBalanceUseCase_Invalidate(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCache(ctrl)

	uc := usecase.NewBalanceUseCase(usecase.Repositories{}, cache, 0, zerolog.Nop())

	cache.EXPECT().Delete(gomock.Any(), "summary:global", "report:debts", "balance:supplier:s1").Return(nil)

	err := uc.Invalidate(ctx, domain.ChangeEvent{
		EventType: domain.EventTypePurchaseRecorded,
		PartyID:   "s1",
		PartyType: domain.PartySupplier,
	})
	if err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	// Events without a party never touch the cache.
	if err := uc.Invalidate(ctx, domain.ChangeEvent{EventType: domain.EventTypeItemAdded, ItemID: "i1"}); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
}

func TestBalanceUseCase_InvalidateAsSubscriber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCache(ctrl)
	balance := usecase.NewBalanceUseCase(f.repos, cache, 0, zerolog.Nop())

	customer := f.customer(t, "Ali")

	deps := f.deps
	deps.Publisher = usecase.EventHandlerFunc(balance.Invalidate)
	ledger := usecase.NewLedgerUseCase(f.repos, deps)

	cache.EXPECT().Delete(gomock.Any(), "summary:global", "report:debts", "balance:customer:"+customer.ID).Return(nil)

	if _, err := ledger.RecordVoucher(ctx, usecase.RecordVoucherInput{
		Direction: domain.VoucherReceipt,
		PartyID:   customer.ID,
		Amount:    decimal.NewFromInt(1),
		Currency:  domain.CurrencyYER,
	}); err != nil {
		t.Fatalf("record voucher: %v", err)
	}
}
