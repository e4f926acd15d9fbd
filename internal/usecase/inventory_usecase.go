package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/qatledger/internal/domain"
)

// InventoryUseCase handles inventory items. Stock itself only moves through
// LedgerUseCase.
type InventoryUseCase struct {
	mutator
}

// NewInventoryUseCase creates a new InventoryUseCase.
func NewInventoryUseCase(repos Repositories, deps Deps) *InventoryUseCase {
	return &InventoryUseCase{mutator: newMutator(repos, deps)}
}

// AddItemInput represents input for adding an inventory item.
type AddItemInput struct {
	Name              string
	Stock             int64
	UnitPrice         decimal.Decimal
	Currency          domain.Currency
	LowStockThreshold int64
}

// AddItem adds an inventory item with its initial stock.
func (uc *InventoryUseCase) AddItem(ctx context.Context, input AddItemInput) (*domain.InventoryItem, error) {
	name := strings.TrimSpace(input.Name)
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}
	if input.Stock < 0 {
		return nil, fmt.Errorf("%w: initial stock must not be negative", domain.ErrInvalidQuantity)
	}
	if input.LowStockThreshold < 0 {
		return nil, fmt.Errorf("%w: low stock threshold must not be negative", domain.ErrValidation)
	}
	if err := domain.ValidatePrice(input.UnitPrice); err != nil {
		return nil, err
	}
	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	item := &domain.InventoryItem{
		ID:                uc.idGen.Generate(),
		Name:              name,
		Stock:             input.Stock,
		UnitPrice:         input.UnitPrice,
		Currency:          input.Currency,
		LowStockThreshold: input.LowStockThreshold,
		CreatedAt:         uc.clock(),
	}

	err := uc.inTx(ctx, "add item", func(ctx context.Context, tx Tx) error {
		if err := uc.repos.Inventory.Create(ctx, tx, item); err != nil {
			return err
		}

		return uc.appendLog(ctx, tx, domain.ActionInventoryItemAdded, domain.ActivitySystem,
			fmt.Sprintf("add item %s: stock %d", item.Name, item.Stock))
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, domain.ChangeEvent{
		EventType:     domain.EventTypeItemAdded,
		AggregateType: domain.AggregateTypeItem,
		AggregateID:   item.ID,
		ItemID:        item.ID,
		StockDelta:    item.Stock,
	})

	return item, nil
}

// GetItem retrieves an inventory item by ID.
func (uc *InventoryUseCase) GetItem(ctx context.Context, id string) (*domain.InventoryItem, error) {
	item, err := uc.repos.Inventory.GetByID(ctx, id)
	if err != nil {
		return nil, domain.WrapPersistence("get item", err)
	}
	return item, nil
}

// ListItems lists all inventory items.
func (uc *InventoryUseCase) ListItems(ctx context.Context) ([]*domain.InventoryItem, error) {
	items, err := uc.repos.Inventory.List(ctx)
	if err != nil {
		return nil, domain.WrapPersistence("list items", err)
	}
	return items, nil
}

// LowStock lists the items at or below their low-stock threshold.
func (uc *InventoryUseCase) LowStock(ctx context.Context) ([]*domain.InventoryItem, error) {
	items, err := uc.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	low := make([]*domain.InventoryItem, 0)
	for _, item := range items {
		if item.IsLowStock() {
			low = append(low, item)
		}
	}

	return low, nil
}

// UpdateItemInput carries the item fields to change. Nil fields are kept.
// Stock is not editable here.
type UpdateItemInput struct {
	Name              *string
	UnitPrice         *decimal.Decimal
	Currency          *domain.Currency
	LowStockThreshold *int64
}

// UpdateItem edits an item's descriptive fields and price.
func (uc *InventoryUseCase) UpdateItem(ctx context.Context, id string, input UpdateItemInput) (*domain.InventoryItem, error) {
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if err := domain.ValidateName(name); err != nil {
			return nil, err
		}
		input.Name = &name
	}
	if input.UnitPrice != nil {
		if err := domain.ValidatePrice(*input.UnitPrice); err != nil {
			return nil, err
		}
	}
	if input.Currency != nil {
		if err := domain.ValidateCurrency(*input.Currency); err != nil {
			return nil, err
		}
	}
	if input.LowStockThreshold != nil && *input.LowStockThreshold < 0 {
		return nil, fmt.Errorf("%w: low stock threshold must not be negative", domain.ErrValidation)
	}

	var item *domain.InventoryItem

	err := uc.inTx(ctx, "update item", func(ctx context.Context, tx Tx) error {
		var err error

		item, err = uc.repos.Inventory.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		if input.Name != nil {
			item.Name = *input.Name
		}
		if input.UnitPrice != nil {
			item.UnitPrice = *input.UnitPrice
		}
		if input.Currency != nil {
			item.Currency = *input.Currency
		}
		if input.LowStockThreshold != nil {
			item.LowStockThreshold = *input.LowStockThreshold
		}

		if err := uc.repos.Inventory.Update(ctx, tx, item); err != nil {
			return err
		}

		return uc.appendLog(ctx, tx, domain.ActionInventoryItemEdited, domain.ActivitySystem,
			fmt.Sprintf("edit item %s: %s %s, threshold %d", item.Name, item.UnitPrice.String(), item.Currency, item.LowStockThreshold))
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, domain.ChangeEvent{
		EventType:     domain.EventTypeItemEdited,
		AggregateType: domain.AggregateTypeItem,
		AggregateID:   item.ID,
		ItemID:        item.ID,
	})

	return item, nil
}

// DeleteItem removes an inventory item. Transactions that reference it keep
// their item name; later stock adjustments against it become no-ops.
func (uc *InventoryUseCase) DeleteItem(ctx context.Context, id string) error {
	var item *domain.InventoryItem

	err := uc.inTx(ctx, "delete item", func(ctx context.Context, tx Tx) error {
		var err error

		item, err = uc.repos.Inventory.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := uc.repos.Inventory.Delete(ctx, tx, id); err != nil {
			return err
		}

		return uc.appendLog(ctx, tx, domain.ActionInventoryItemDelete, domain.ActivitySystem,
			fmt.Sprintf("delete item %s", item.Name))
	})
	if err != nil {
		return err
	}

	uc.publish(ctx, domain.ChangeEvent{
		EventType:     domain.EventTypeItemDeleted,
		AggregateType: domain.AggregateTypeItem,
		AggregateID:   item.ID,
		ItemID:        item.ID,
	})

	return nil
}
