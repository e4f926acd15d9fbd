package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/qatledger/internal/domain"
)

// ExpenseUseCase handles operating expenses.
type ExpenseUseCase struct {
	mutator
}

// NewExpenseUseCase creates a new ExpenseUseCase.
func NewExpenseUseCase(repos Repositories, deps Deps) *ExpenseUseCase {
	return &ExpenseUseCase{mutator: newMutator(repos, deps)}
}

// RecordExpenseInput represents input for recording an expense.
type RecordExpenseInput struct {
	Title    string
	Category string
	Amount   decimal.Decimal
	Currency domain.Currency
	Notes    string
}

// RecordExpense records an expense.
func (uc *ExpenseUseCase) RecordExpense(ctx context.Context, input RecordExpenseInput) (*domain.Expense, error) {
	title := strings.TrimSpace(input.Title)
	if err := domain.ValidateName(title); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}
	if err := domain.ValidateNote(input.Notes); err != nil {
		return nil, err
	}

	e := &domain.Expense{
		ID:        uc.idGen.Generate(),
		Title:     title,
		Category:  strings.TrimSpace(input.Category),
		Amount:    input.Amount,
		Currency:  input.Currency,
		Notes:     input.Notes,
		CreatedAt: uc.clock(),
	}

	err := uc.inTx(ctx, "record expense", func(ctx context.Context, tx Tx) error {
		if err := uc.repos.Expenses.Create(ctx, tx, e); err != nil {
			return err
		}

		return uc.appendLog(ctx, tx, domain.ActionExpenseRecorded, domain.ActivitySystem,
			fmt.Sprintf("expense %s: %s %s", e.Title, e.Amount.String(), e.Currency))
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, domain.ChangeEvent{
		EventType:     domain.EventTypeExpenseRecorded,
		AggregateType: domain.AggregateTypeExpense,
		AggregateID:   e.ID,
	})

	return e, nil
}

// ListExpenses lists all expenses, newest first.
func (uc *ExpenseUseCase) ListExpenses(ctx context.Context) ([]*domain.Expense, error) {
	expenses, err := uc.repos.Expenses.List(ctx)
	if err != nil {
		return nil, domain.WrapPersistence("list expenses", err)
	}
	return expenses, nil
}

// UpdateExpenseInput carries the expense fields to change. Nil fields are
// kept.
type UpdateExpenseInput struct {
	Title    *string
	Category *string
	Amount   *decimal.Decimal
	Currency *domain.Currency
	Notes    *string
}

// UpdateExpense edits an expense.
func (uc *ExpenseUseCase) UpdateExpense(ctx context.Context, id string, input UpdateExpenseInput) (*domain.Expense, error) {
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if err := domain.ValidateName(title); err != nil {
			return nil, err
		}
		input.Title = &title
	}
	if input.Amount != nil {
		if err := domain.ValidateAmount(*input.Amount); err != nil {
			return nil, err
		}
	}
	if input.Currency != nil {
		if err := domain.ValidateCurrency(*input.Currency); err != nil {
			return nil, err
		}
	}
	if input.Notes != nil {
		if err := domain.ValidateNote(*input.Notes); err != nil {
			return nil, err
		}
	}

	var e *domain.Expense

	err := uc.inTx(ctx, "update expense", func(ctx context.Context, tx Tx) error {
		var err error

		e, err = uc.repos.Expenses.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		previous := e.Amount
		if input.Title != nil {
			e.Title = *input.Title
		}
		if input.Category != nil {
			e.Category = strings.TrimSpace(*input.Category)
		}
		if input.Amount != nil {
			e.Amount = *input.Amount
		}
		if input.Currency != nil {
			e.Currency = *input.Currency
		}
		if input.Notes != nil {
			e.Notes = *input.Notes
		}

		if err := uc.repos.Expenses.Update(ctx, tx, e); err != nil {
			return err
		}

		return uc.appendLog(ctx, tx, domain.ActionExpenseEdited, domain.ActivitySystem,
			fmt.Sprintf("edit expense %s: %s -> %s %s", e.Title, previous.String(), e.Amount.String(), e.Currency))
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, domain.ChangeEvent{
		EventType:     domain.EventTypeExpenseEdited,
		AggregateType: domain.AggregateTypeExpense,
		AggregateID:   e.ID,
	})

	return e, nil
}

// DeleteExpense removes an expense.
func (uc *ExpenseUseCase) DeleteExpense(ctx context.Context, id string) error {
	var e *domain.Expense

	err := uc.inTx(ctx, "delete expense", func(ctx context.Context, tx Tx) error {
		var err error

		e, err = uc.repos.Expenses.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := uc.repos.Expenses.Delete(ctx, tx, id); err != nil {
			return err
		}

		return uc.appendLog(ctx, tx, domain.ActionExpenseDeleted, domain.ActivitySystem,
			fmt.Sprintf("delete expense %s: %s %s", e.Title, e.Amount.String(), e.Currency))
	})
	if err != nil {
		return err
	}

	uc.publish(ctx, domain.ChangeEvent{
		EventType:     domain.EventTypeExpenseDeleted,
		AggregateType: domain.AggregateTypeExpense,
		AggregateID:   e.ID,
	})

	return nil
}
