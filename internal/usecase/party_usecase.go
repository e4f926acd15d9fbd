package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/iho/qatledger/internal/domain"
)

// PartyUseCase handles customers and suppliers.
type PartyUseCase struct {
	mutator
}

// NewPartyUseCase creates a new PartyUseCase.
func NewPartyUseCase(repos Repositories, deps Deps) *PartyUseCase {
	return &PartyUseCase{mutator: newMutator(repos, deps)}
}

// AddPartyInput represents input for adding a customer or supplier.
type AddPartyInput struct {
	Name    string
	Phone   string
	Address string
	Region  string
}

// AddCustomer adds a customer.
func (uc *PartyUseCase) AddCustomer(ctx context.Context, input AddPartyInput) (*domain.Party, error) {
	return uc.addParty(ctx, domain.PartyCustomer, input)
}

// AddSupplier adds a supplier.
func (uc *PartyUseCase) AddSupplier(ctx context.Context, input AddPartyInput) (*domain.Party, error) {
	return uc.addParty(ctx, domain.PartySupplier, input)
}

func (uc *PartyUseCase) addParty(ctx context.Context, partyType domain.PartyType, input AddPartyInput) (*domain.Party, error) {
	name := strings.TrimSpace(input.Name)
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}

	party := &domain.Party{
		ID:        uc.idGen.Generate(),
		Type:      partyType,
		Name:      name,
		Phone:     strings.TrimSpace(input.Phone),
		Address:   strings.TrimSpace(input.Address),
		Region:    strings.TrimSpace(input.Region),
		CreatedAt: uc.clock(),
	}

	err := uc.inTx(ctx, "add "+string(partyType), func(ctx context.Context, tx Tx) error {
		if err := uc.repos.Parties.Create(ctx, tx, party); err != nil {
			return err
		}

		return uc.appendLog(ctx, tx, domain.ActionPartyAdded, domain.ActivitySystem,
			fmt.Sprintf("add %s %s", partyType, party.Name))
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, partyEvent(domain.EventTypePartyAdded, party))

	return party, nil
}

// GetParty retrieves a party by ID.
func (uc *PartyUseCase) GetParty(ctx context.Context, partyType domain.PartyType, id string) (*domain.Party, error) {
	party, err := uc.repos.Parties.GetByID(ctx, partyType, id)
	if err != nil {
		return nil, domain.WrapPersistence("get party", err)
	}
	return party, nil
}

// ListParties lists all parties of one type, newest first.
func (uc *PartyUseCase) ListParties(ctx context.Context, partyType domain.PartyType) ([]*domain.Party, error) {
	parties, err := uc.repos.Parties.List(ctx, partyType)
	if err != nil {
		return nil, domain.WrapPersistence("list parties", err)
	}
	return parties, nil
}

// DeleteParty removes a party. Its transactions and vouchers stay in place
// and drop out of the global summary.
func (uc *PartyUseCase) DeleteParty(ctx context.Context, partyType domain.PartyType, id string) error {
	party, err := uc.GetParty(ctx, partyType, id)
	if err != nil {
		return err
	}

	err = uc.inTx(ctx, "delete "+string(partyType), func(ctx context.Context, tx Tx) error {
		if err := uc.repos.Parties.Delete(ctx, tx, partyType, id); err != nil {
			return err
		}

		return uc.appendLog(ctx, tx, domain.ActionPartyDeleted, domain.ActivitySystem,
			fmt.Sprintf("delete %s %s", partyType, party.Name))
	})
	if err != nil {
		return err
	}

	uc.publish(ctx, partyEvent(domain.EventTypePartyDeleted, party))

	return nil
}

func partyEvent(eventType string, party *domain.Party) domain.ChangeEvent {
	return domain.ChangeEvent{
		EventType:     eventType,
		AggregateType: domain.AggregateTypeParty,
		AggregateID:   party.ID,
		PartyID:       party.ID,
		PartyType:     party.Type,
	}
}
