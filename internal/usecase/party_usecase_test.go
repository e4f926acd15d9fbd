package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/qatledger/internal/domain"
	"github.com/iho/qatledger/internal/usecase"
)

func TestPartyUseCase_AddAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	party, err := f.parties.AddCustomer(ctx, usecase.AddPartyInput{Name: "  Ali  ", Region: " Sanaa "})
	if err != nil {
		t.Fatalf("add customer: %v", err)
	}
	if party.Name != "Ali" || party.Region != "Sanaa" || party.Type != domain.PartyCustomer {
		t.Fatalf("unexpected party %+v", party)
	}
	if ev := f.publisher.last(); ev.EventType != domain.EventTypePartyAdded || ev.PartyID != party.ID {
		t.Fatalf("unexpected event %+v", ev)
	}

	if _, err := f.parties.AddSupplier(ctx, usecase.AddPartyInput{Name: "   "}); !errors.Is(err, domain.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}

	list, err := f.parties.ListParties(ctx, domain.PartyCustomer)
	if err != nil {
		t.Fatalf("list parties: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 customer, got %d", len(list))
	}

	s, err := f.ledger.RecordSale(ctx, usecase.RecordTransactionInput{
		PartyID: party.ID, ItemName: "Sawti", Quantity: 1, UnitPrice: decimal.NewFromInt(10), Currency: domain.CurrencyYER,
	})
	if err != nil {
		t.Fatalf("record sale: %v", err)
	}

	if err := f.parties.DeleteParty(ctx, domain.PartyCustomer, party.ID); err != nil {
		t.Fatalf("delete party: %v", err)
	}
	if _, err := f.parties.GetParty(ctx, domain.PartyCustomer, party.ID); !errors.Is(err, domain.ErrPartyNotFound) {
		t.Fatalf("expected ErrPartyNotFound, got %v", err)
	}
	if err := f.parties.DeleteParty(ctx, domain.PartyCustomer, party.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}

	// Records of a deleted party stay in place.
	if _, err := f.repos.Transactions.GetByID(ctx, domain.KindSale, s.ID); err != nil {
		t.Fatalf("sale of deleted party should remain: %v", err)
	}
}
