package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/iho/qatledger/internal/domain"
)

// AssistantContext is the read-only ledger view handed to the assistant.
type AssistantContext struct {
	Customers []*domain.Party            `json:"customers"`
	Suppliers []*domain.Party            `json:"suppliers"`
	Items     []*domain.InventoryItem    `json:"items"`
	Summary   []domain.CurrencySummary   `json:"summary"`
	Recent    []*domain.ActivityLogEntry `json:"recent_activity"`
}

// AssistantRequest is one natural-language request plus its ledger context.
type AssistantRequest struct {
	Text    string
	Context AssistantContext
}

// AssistantUseCase turns requests into proposed commands and applies
// accepted proposals through the ledger.
type AssistantUseCase struct {
	assistant Assistant
	repos     Repositories
	balance   *BalanceUseCase
	ledger    *LedgerUseCase
}

// NewAssistantUseCase creates a new AssistantUseCase. assistant may be nil,
// in which case proposals are rejected.
func NewAssistantUseCase(assistant Assistant, repos Repositories, balance *BalanceUseCase, ledger *LedgerUseCase) *AssistantUseCase {
	return &AssistantUseCase{
		assistant: assistant,
		repos:     repos,
		balance:   balance,
		ledger:    ledger,
	}
}

// ErrAssistantDisabled is returned when no assistant is configured.
var ErrAssistantDisabled = fmt.Errorf("%w: assistant is not configured", domain.ErrValidation)

// Propose asks the assistant for a command. The result is normalized and
// validated but not applied.
func (uc *AssistantUseCase) Propose(ctx context.Context, text string) (*Command, error) {
	if uc.assistant == nil {
		return nil, ErrAssistantDisabled
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: request text is required", domain.ErrValidation)
	}

	actx, err := uc.buildContext(ctx)
	if err != nil {
		return nil, err
	}

	cmd, err := uc.assistant.Propose(ctx, AssistantRequest{Text: text, Context: *actx})
	if err != nil {
		return nil, err
	}

	cmd.Normalize()
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return cmd, nil
}

// Execute applies an accepted proposal.
func (uc *AssistantUseCase) Execute(ctx context.Context, cmd Command) (*CommandResult, error) {
	return uc.ledger.Execute(ctx, cmd)
}

func (uc *AssistantUseCase) buildContext(ctx context.Context) (*AssistantContext, error) {
	var (
		actx AssistantContext
		err  error
	)

	if actx.Customers, err = uc.repos.Parties.List(ctx, domain.PartyCustomer); err != nil {
		return nil, domain.WrapPersistence("list customers", err)
	}
	if actx.Suppliers, err = uc.repos.Parties.List(ctx, domain.PartySupplier); err != nil {
		return nil, domain.WrapPersistence("list suppliers", err)
	}
	if actx.Items, err = uc.repos.Inventory.List(ctx); err != nil {
		return nil, domain.WrapPersistence("list items", err)
	}
	if actx.Summary, err = uc.balance.GlobalSummary(ctx); err != nil {
		return nil, err
	}
	if actx.Recent, err = uc.repos.Activity.List(ctx, 10); err != nil {
		return nil, domain.WrapPersistence("list activity", err)
	}

	return &actx, nil
}
