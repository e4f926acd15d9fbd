package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/qatledger/internal/domain"
)

// LedgerUseCase applies every state transition that touches money or stock.
// Each operation writes its record, its stock delta and one activity entry
// in a single storage transaction.
type LedgerUseCase struct {
	mutator
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(repos Repositories, deps Deps) *LedgerUseCase {
	return &LedgerUseCase{mutator: newMutator(repos, deps)}
}

// RecordTransactionInput represents input for recording a sale or purchase.
type RecordTransactionInput struct {
	PartyID    string
	ItemID     string
	ItemName   string
	Quantity   int64
	UnitPrice  decimal.Decimal
	Currency   domain.Currency
	Settlement domain.Settlement
	Notes      string
}

// OpeningBalanceInput represents input for seeding a pre-existing debt.
type OpeningBalanceInput struct {
	PartyType domain.PartyType
	PartyID   string
	Amount    decimal.Decimal
	Currency  domain.Currency
	Notes     string
}

// RecordWasteInput represents input for recording spoiled stock.
type RecordWasteInput struct {
	ItemID        string
	ItemName      string
	Quantity      int64
	EstimatedLoss decimal.Decimal
	Currency      domain.Currency
	Reason        string
}

// RecordVoucherInput represents input for recording a cash movement.
// PartyType defaults to customer for receipts and supplier for payments.
type RecordVoucherInput struct {
	Direction domain.VoucherDirection
	PartyID   string
	PartyType domain.PartyType
	Amount    decimal.Decimal
	Currency  domain.Currency
	Note      string
}

// EditVoucherInput represents input for editing a voucher.
type EditVoucherInput struct {
	Amount decimal.Decimal
	Note   string
}

// RecordSale records a sale and takes its quantity out of stock.
func (uc *LedgerUseCase) RecordSale(ctx context.Context, input RecordTransactionInput) (*domain.Transaction, error) {
	return uc.recordTransaction(ctx, domain.KindSale, input)
}

// RecordPurchase records a purchase and adds its quantity to stock.
func (uc *LedgerUseCase) RecordPurchase(ctx context.Context, input RecordTransactionInput) (*domain.Transaction, error) {
	return uc.recordTransaction(ctx, domain.KindPurchase, input)
}

func (uc *LedgerUseCase) recordTransaction(ctx context.Context, kind domain.TransactionKind, input RecordTransactionInput) (*domain.Transaction, error) {
	if err := validateTransactionInput(&input); err != nil {
		return nil, err
	}

	party, err := uc.lookupParty(ctx, kind.PartyType(), input.PartyID)
	if err != nil {
		return nil, err
	}

	itemID, err := uc.resolveItemID(ctx, input.ItemID, input.ItemName)
	if err != nil {
		return nil, err
	}

	t := &domain.Transaction{
		ID:         uc.idGen.Generate(),
		Kind:       kind,
		PartyID:    party.ID,
		PartyName:  party.Name,
		ItemID:     itemID,
		ItemName:   input.ItemName,
		Quantity:   input.Quantity,
		UnitPrice:  input.UnitPrice,
		Total:      domain.LineTotal(input.Quantity, input.UnitPrice),
		Currency:   input.Currency,
		Settlement: input.Settlement,
		Notes:      input.Notes,
		CreatedAt:  uc.clock(),
	}

	var applied int64

	err = uc.inTx(ctx, "record "+string(kind), func(ctx context.Context, tx Tx) error {
		applied = 0

		item, err := uc.adjustStock(ctx, tx, t.ItemID, t.StockDelta())
		if err != nil {
			return err
		}
		if item != nil {
			applied = t.StockDelta()
			if t.ItemName == "" {
				t.ItemName = item.Name
			}
		}

		if err := uc.repos.Transactions.Create(ctx, tx, t); err != nil {
			return err
		}

		action, category := recordedAction(kind)
		return uc.appendLog(ctx, tx, action, category, fmt.Sprintf("%s %s: %d x %s = %s %s",
			kind, t.PartyName, t.Quantity, t.ItemName, t.Total.String(), t.Currency))
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, transactionEvent(recordedEvent(kind), t, applied))

	return t, nil
}

// RecordOpeningBalance records a zero-quantity transaction that seeds a debt
// the party already had. It never moves stock.
func (uc *LedgerUseCase) RecordOpeningBalance(ctx context.Context, input OpeningBalanceInput) (*domain.Transaction, error) {
	if !input.PartyType.IsValid() {
		return nil, fmt.Errorf("%w: unknown party type %q", domain.ErrValidation, input.PartyType)
	}
	if input.PartyID == "" {
		return nil, domain.ErrMissingParty
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

	party, err := uc.lookupParty(ctx, input.PartyType, input.PartyID)
	if err != nil {
		return nil, err
	}

	kind := domain.KindSale
	if input.PartyType == domain.PartySupplier {
		kind = domain.KindPurchase
	}

	t := &domain.Transaction{
		ID:         uc.idGen.Generate(),
		Kind:       kind,
		PartyID:    party.ID,
		PartyName:  party.Name,
		ItemName:   OpeningBalanceItemName,
		UnitPrice:  decimal.Zero,
		Total:      input.Amount,
		Currency:   input.Currency,
		Settlement: domain.SettlementDeferred,
		Notes:      input.Notes,
		CreatedAt:  uc.clock(),
	}

	err = uc.inTx(ctx, "record opening balance", func(ctx context.Context, tx Tx) error {
		if err := uc.repos.Transactions.Create(ctx, tx, t); err != nil {
			return err
		}

		return uc.appendLog(ctx, tx, domain.ActionOpeningBalance, categoryFor(kind),
			fmt.Sprintf("opening balance %s: %s %s", party.Name, t.Total.String(), t.Currency))
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, transactionEvent(recordedEvent(kind), t, 0))

	return t, nil
}

// ReturnSale flips a sale to returned and puts its quantity back in stock.
func (uc *LedgerUseCase) ReturnSale(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.returnTransaction(ctx, domain.KindSale, id)
}

// ReturnPurchase flips a purchase to returned and takes its quantity back out
// of stock.
func (uc *LedgerUseCase) ReturnPurchase(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.returnTransaction(ctx, domain.KindPurchase, id)
}

func (uc *LedgerUseCase) returnTransaction(ctx context.Context, kind domain.TransactionKind, id string) (*domain.Transaction, error) {
	var (
		t       *domain.Transaction
		applied int64
	)

	err := uc.inTx(ctx, "return "+string(kind), func(ctx context.Context, tx Tx) error {
		var err error
		applied = 0

		t, err = uc.repos.Transactions.GetByIDForUpdate(ctx, tx, kind, id)
		if err != nil {
			return err
		}

		// Must fail before any stock is touched.
		if err := t.MarkReturned(); err != nil {
			return err
		}

		if err := uc.repos.Transactions.Update(ctx, tx, t); err != nil {
			return err
		}

		item, err := uc.adjustStock(ctx, tx, t.ItemID, -t.StockDelta())
		if err != nil {
			return err
		}
		if item != nil {
			applied = -t.StockDelta()
		}

		action, category := returnedAction(kind)
		return uc.appendLog(ctx, tx, action, category, fmt.Sprintf("return %s %s: %d x %s = %s %s",
			kind, t.PartyName, t.Quantity, t.ItemName, t.Total.String(), t.Currency))
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, transactionEvent(returnedEvent(kind), t, applied))

	return t, nil
}

// DeleteSale removes a sale. With revertStock the original deduction is
// undone, unless the sale was already returned.
func (uc *LedgerUseCase) DeleteSale(ctx context.Context, id string, revertStock bool) (*domain.Transaction, error) {
	return uc.deleteTransaction(ctx, domain.KindSale, id, revertStock)
}

// DeletePurchase removes a purchase. With revertStock the original addition
// is undone, unless the purchase was already returned.
func (uc *LedgerUseCase) DeletePurchase(ctx context.Context, id string, revertStock bool) (*domain.Transaction, error) {
	return uc.deleteTransaction(ctx, domain.KindPurchase, id, revertStock)
}

func (uc *LedgerUseCase) deleteTransaction(ctx context.Context, kind domain.TransactionKind, id string, revertStock bool) (*domain.Transaction, error) {
	var (
		t       *domain.Transaction
		applied int64
	)

	err := uc.inTx(ctx, "delete "+string(kind), func(ctx context.Context, tx Tx) error {
		var err error
		applied = 0

		t, err = uc.repos.Transactions.GetByIDForUpdate(ctx, tx, kind, id)
		if err != nil {
			return err
		}

		if err := uc.repos.Transactions.Delete(ctx, tx, kind, id); err != nil {
			return err
		}

		// A returned transaction already had its stock effect reversed.
		if revertStock && !t.IsReturned {
			item, err := uc.adjustStock(ctx, tx, t.ItemID, -t.StockDelta())
			if err != nil {
				return err
			}
			if item != nil {
				applied = -t.StockDelta()
			}
		}

		action, category := deletedAction(kind)
		return uc.appendLog(ctx, tx, action, category, fmt.Sprintf("delete %s %s: %d x %s = %s %s",
			kind, t.PartyName, t.Quantity, t.ItemName, t.Total.String(), t.Currency))
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, transactionEvent(deletedEvent(kind), t, applied))

	return t, nil
}

// RecordWaste records spoiled stock and takes it out of inventory.
func (uc *LedgerUseCase) RecordWaste(ctx context.Context, input RecordWasteInput) (*domain.Waste, error) {
	input.ItemName = strings.TrimSpace(input.ItemName)
	if input.ItemID == "" && input.ItemName == "" {
		return nil, domain.ErrMissingItem
	}
	if err := domain.ValidateQuantity(input.Quantity); err != nil {
		return nil, err
	}
	if err := domain.ValidatePrice(input.EstimatedLoss); err != nil {
		return nil, err
	}
	if input.Currency == "" {
		input.Currency = domain.CurrencyYER
	}
	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}
	if err := domain.ValidateNote(input.Reason); err != nil {
		return nil, err
	}

	itemID, err := uc.resolveItemID(ctx, input.ItemID, input.ItemName)
	if err != nil {
		return nil, err
	}

	w := &domain.Waste{
		ID:            uc.idGen.Generate(),
		ItemID:        itemID,
		ItemName:      input.ItemName,
		Quantity:      input.Quantity,
		EstimatedLoss: input.EstimatedLoss,
		Currency:      input.Currency,
		Reason:        input.Reason,
		CreatedAt:     uc.clock(),
	}

	var applied int64

	err = uc.inTx(ctx, "record waste", func(ctx context.Context, tx Tx) error {
		applied = 0

		item, err := uc.adjustStock(ctx, tx, w.ItemID, -w.Quantity)
		if err != nil {
			return err
		}
		if item != nil {
			applied = -w.Quantity
			if w.ItemName == "" {
				w.ItemName = item.Name
			}
		}

		if err := uc.repos.Waste.Create(ctx, tx, w); err != nil {
			return err
		}

		return uc.appendLog(ctx, tx, domain.ActionWasteRecorded, domain.ActivityWaste,
			fmt.Sprintf("waste %s: %d, loss %s %s", w.ItemName, w.Quantity, w.EstimatedLoss.String(), w.Currency))
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, domain.ChangeEvent{
		EventType:     domain.EventTypeWasteRecorded,
		AggregateType: domain.AggregateTypeWaste,
		AggregateID:   w.ID,
		ItemID:        w.ItemID,
		StockDelta:    applied,
	})

	return w, nil
}

// DeleteWaste removes a waste record. With revertStock the spoiled quantity
// goes back into stock.
func (uc *LedgerUseCase) DeleteWaste(ctx context.Context, id string, revertStock bool) error {
	var (
		w       *domain.Waste
		applied int64
	)

	err := uc.inTx(ctx, "delete waste", func(ctx context.Context, tx Tx) error {
		var err error
		applied = 0

		w, err = uc.repos.Waste.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := uc.repos.Waste.Delete(ctx, tx, id); err != nil {
			return err
		}

		if revertStock {
			item, err := uc.adjustStock(ctx, tx, w.ItemID, w.Quantity)
			if err != nil {
				return err
			}
			if item != nil {
				applied = w.Quantity
			}
		}

		return uc.appendLog(ctx, tx, domain.ActionWasteDeleted, domain.ActivityWaste,
			fmt.Sprintf("delete waste %s: %d", w.ItemName, w.Quantity))
	})
	if err != nil {
		return err
	}

	uc.publish(ctx, domain.ChangeEvent{
		EventType:     domain.EventTypeWasteDeleted,
		AggregateType: domain.AggregateTypeWaste,
		AggregateID:   w.ID,
		ItemID:        w.ItemID,
		StockDelta:    applied,
	})

	return nil
}

// RecordVoucher records a receipt from or a payment to a party. It moves no
// stock; the party balance shifts on the next read.
func (uc *LedgerUseCase) RecordVoucher(ctx context.Context, input RecordVoucherInput) (*domain.Voucher, error) {
	if !input.Direction.IsValid() {
		return nil, fmt.Errorf("%w: unknown voucher direction %q", domain.ErrValidation, input.Direction)
	}
	if input.PartyType == "" {
		input.PartyType = domain.PartyCustomer
		if input.Direction == domain.VoucherPayment {
			input.PartyType = domain.PartySupplier
		}
	}
	if !input.PartyType.IsValid() {
		return nil, fmt.Errorf("%w: unknown party type %q", domain.ErrValidation, input.PartyType)
	}
	if input.PartyID == "" {
		return nil, domain.ErrMissingParty
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}
	if err := domain.ValidateNote(input.Note); err != nil {
		return nil, err
	}

	party, err := uc.lookupParty(ctx, input.PartyType, input.PartyID)
	if err != nil {
		return nil, err
	}

	v := &domain.Voucher{
		ID:        uc.idGen.Generate(),
		Direction: input.Direction,
		PartyID:   party.ID,
		PartyName: party.Name,
		PartyType: party.Type,
		Amount:    input.Amount,
		Currency:  input.Currency,
		Note:      input.Note,
		CreatedAt: uc.clock(),
	}

	err = uc.inTx(ctx, "record voucher", func(ctx context.Context, tx Tx) error {
		if err := uc.repos.Vouchers.Create(ctx, tx, v); err != nil {
			return err
		}

		return uc.appendLog(ctx, tx, domain.ActionVoucherRecorded, domain.ActivityVoucher,
			fmt.Sprintf("%s voucher %s: %s %s", v.Direction, v.PartyName, v.Amount.String(), v.Currency))
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, voucherEvent(domain.EventTypeVoucherRecorded, v))

	return v, nil
}

// EditVoucher overwrites the amount and note of a voucher, keeping the
// previous values in its bounded history.
func (uc *LedgerUseCase) EditVoucher(ctx context.Context, id string, input EditVoucherInput) (*domain.Voucher, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateNote(input.Note); err != nil {
		return nil, err
	}

	var v *domain.Voucher

	err := uc.inTx(ctx, "edit voucher", func(ctx context.Context, tx Tx) error {
		var err error

		v, err = uc.repos.Vouchers.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		previous := v.Amount
		if err := v.ApplyEdit(input.Amount, input.Note, uc.clock()); err != nil {
			return err
		}

		if err := uc.repos.Vouchers.Update(ctx, tx, v); err != nil {
			return err
		}

		return uc.appendLog(ctx, tx, domain.ActionVoucherEdited, domain.ActivityVoucher,
			fmt.Sprintf("edit voucher %s: %s -> %s %s", v.PartyName, previous.String(), v.Amount.String(), v.Currency))
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, voucherEvent(domain.EventTypeVoucherEdited, v))

	return v, nil
}

// DeleteVoucher removes a voucher.
func (uc *LedgerUseCase) DeleteVoucher(ctx context.Context, id string) error {
	var v *domain.Voucher

	err := uc.inTx(ctx, "delete voucher", func(ctx context.Context, tx Tx) error {
		var err error

		v, err = uc.repos.Vouchers.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := uc.repos.Vouchers.Delete(ctx, tx, id); err != nil {
			return err
		}

		return uc.appendLog(ctx, tx, domain.ActionVoucherDeleted, domain.ActivityVoucher,
			fmt.Sprintf("delete %s voucher %s: %s %s", v.Direction, v.PartyName, v.Amount.String(), v.Currency))
	})
	if err != nil {
		return err
	}

	uc.publish(ctx, voucherEvent(domain.EventTypeVoucherDeleted, v))

	return nil
}

func (uc *LedgerUseCase) lookupParty(ctx context.Context, partyType domain.PartyType, id string) (*domain.Party, error) {
	party, err := uc.repos.Parties.GetByID(ctx, partyType, id)
	if err != nil {
		return nil, domain.WrapPersistence("get party", err)
	}
	return party, nil
}

// resolveItemID finds the inventory item by name when only a name is given.
// An unknown name resolves to "" and the stock step becomes a no-op.
func (uc *LedgerUseCase) resolveItemID(ctx context.Context, itemID, itemName string) (string, error) {
	if itemID != "" || itemName == "" {
		return itemID, nil
	}

	items, err := uc.repos.Inventory.List(ctx)
	if err != nil {
		return "", domain.WrapPersistence("list items", err)
	}

	for _, item := range items {
		if strings.EqualFold(strings.TrimSpace(item.Name), itemName) {
			return item.ID, nil
		}
	}

	return "", nil
}

func validateTransactionInput(input *RecordTransactionInput) error {
	input.ItemName = strings.TrimSpace(input.ItemName)

	if input.PartyID == "" {
		return domain.ErrMissingParty
	}
	if input.ItemID == "" && input.ItemName == "" {
		return domain.ErrMissingItem
	}
	if err := domain.ValidateQuantity(input.Quantity); err != nil {
		return err
	}
	if err := domain.ValidatePrice(input.UnitPrice); err != nil {
		return err
	}
	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return err
	}
	if err := domain.ValidateNote(input.Notes); err != nil {
		return err
	}

	switch input.Settlement {
	case "":
		input.Settlement = domain.SettlementCash
	case domain.SettlementCash, domain.SettlementDeferred:
	default:
		return fmt.Errorf("%w: unknown settlement %q", domain.ErrValidation, input.Settlement)
	}

	return nil
}

func categoryFor(kind domain.TransactionKind) domain.ActivityCategory {
	if kind == domain.KindPurchase {
		return domain.ActivityPurchase
	}
	return domain.ActivitySale
}

func recordedAction(kind domain.TransactionKind) (domain.ActivityAction, domain.ActivityCategory) {
	if kind == domain.KindPurchase {
		return domain.ActionPurchaseRecorded, domain.ActivityPurchase
	}
	return domain.ActionSaleRecorded, domain.ActivitySale
}

func returnedAction(kind domain.TransactionKind) (domain.ActivityAction, domain.ActivityCategory) {
	if kind == domain.KindPurchase {
		return domain.ActionPurchaseReturned, domain.ActivityPurchase
	}
	return domain.ActionSaleReturned, domain.ActivitySale
}

func deletedAction(kind domain.TransactionKind) (domain.ActivityAction, domain.ActivityCategory) {
	if kind == domain.KindPurchase {
		return domain.ActionPurchaseDeleted, domain.ActivityPurchase
	}
	return domain.ActionSaleDeleted, domain.ActivitySale
}

func recordedEvent(kind domain.TransactionKind) string {
	if kind == domain.KindPurchase {
		return domain.EventTypePurchaseRecorded
	}
	return domain.EventTypeSaleRecorded
}

func returnedEvent(kind domain.TransactionKind) string {
	if kind == domain.KindPurchase {
		return domain.EventTypePurchaseReturned
	}
	return domain.EventTypeSaleReturned
}

func deletedEvent(kind domain.TransactionKind) string {
	if kind == domain.KindPurchase {
		return domain.EventTypePurchaseDeleted
	}
	return domain.EventTypeSaleDeleted
}

func transactionEvent(eventType string, t *domain.Transaction, stockDelta int64) domain.ChangeEvent {
	return domain.ChangeEvent{
		EventType:     eventType,
		AggregateType: domain.AggregateTypeTransaction,
		AggregateID:   t.ID,
		PartyID:       t.PartyID,
		PartyType:     t.Kind.PartyType(),
		ItemID:        t.ItemID,
		StockDelta:    stockDelta,
	}
}

func voucherEvent(eventType string, v *domain.Voucher) domain.ChangeEvent {
	return domain.ChangeEvent{
		EventType:     eventType,
		AggregateType: domain.AggregateTypeVoucher,
		AggregateID:   v.ID,
		PartyID:       v.PartyID,
		PartyType:     v.PartyType,
	}
}
