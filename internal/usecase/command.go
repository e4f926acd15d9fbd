package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/qatledger/internal/domain"
)

// Operation names a ledger mutation a Command can carry.
type Operation string

const (
	OpRecordSale           Operation = "record_sale"
	OpRecordPurchase       Operation = "record_purchase"
	OpReturnSale           Operation = "return_sale"
	OpReturnPurchase       Operation = "return_purchase"
	OpDeleteSale           Operation = "delete_sale"
	OpDeletePurchase       Operation = "delete_purchase"
	OpRecordWaste          Operation = "record_waste"
	OpRecordVoucher        Operation = "record_voucher"
	OpEditVoucher          Operation = "edit_voucher"
	OpRecordOpeningBalance Operation = "record_opening_balance"
)

// Operations returns every operation a Command may name.
func Operations() []Operation {
	return []Operation{
		OpRecordSale, OpRecordPurchase, OpReturnSale, OpReturnPurchase,
		OpDeleteSale, OpDeletePurchase, OpRecordWaste, OpRecordVoucher,
		OpEditVoucher, OpRecordOpeningBalance,
	}
}

// Command is a serialized ledger operation. The assistant proposes commands
// in this shape and clients may submit them back for execution. Amounts are
// decimal strings; fields an operation does not use are left empty. Deletes
// issued as commands always put the stock back.
type Command struct {
	Operation  Operation `json:"operation" jsonschema:"enum=record_sale,enum=record_purchase,enum=return_sale,enum=return_purchase,enum=delete_sale,enum=delete_purchase,enum=record_waste,enum=record_voucher,enum=edit_voucher,enum=record_opening_balance"`
	TargetID   string    `json:"target_id" jsonschema:"description=ID of the record to return or delete or edit"`
	PartyType  string    `json:"party_type" jsonschema:"description=customer or supplier"`
	PartyID    string    `json:"party_id"`
	PartyName  string    `json:"party_name" jsonschema:"description=Used to find the party when party_id is empty"`
	ItemID     string    `json:"item_id"`
	ItemName   string    `json:"item_name"`
	Quantity   int64     `json:"quantity"`
	UnitPrice  string    `json:"unit_price" jsonschema:"description=Decimal string"`
	Amount     string    `json:"amount" jsonschema:"description=Decimal string for vouchers and opening balances and waste loss"`
	Currency   string    `json:"currency" jsonschema:"description=YER or SAR or OMR"`
	Settlement string    `json:"settlement" jsonschema:"description=cash or deferred"`
	Direction  string    `json:"direction" jsonschema:"description=receipt or payment"`
	Note       string    `json:"note"`
}

// CommandResult holds whichever record the executed command produced.
type CommandResult struct {
	Operation   Operation           `json:"operation"`
	Transaction *domain.Transaction `json:"transaction,omitempty"`
	Voucher     *domain.Voucher     `json:"voucher,omitempty"`
	Waste       *domain.Waste       `json:"waste,omitempty"`
}

// Normalize trims fields and folds enumerations to their canonical case.
func (c *Command) Normalize() {
	c.Operation = Operation(strings.ToLower(strings.TrimSpace(string(c.Operation))))
	c.TargetID = strings.TrimSpace(c.TargetID)
	c.PartyType = strings.ToLower(strings.TrimSpace(c.PartyType))
	c.PartyID = strings.TrimSpace(c.PartyID)
	c.PartyName = strings.TrimSpace(c.PartyName)
	c.ItemID = strings.TrimSpace(c.ItemID)
	c.ItemName = strings.TrimSpace(c.ItemName)
	c.UnitPrice = strings.TrimSpace(c.UnitPrice)
	c.Amount = strings.TrimSpace(c.Amount)
	c.Currency = strings.ToUpper(strings.TrimSpace(c.Currency))
	c.Settlement = strings.ToLower(strings.TrimSpace(c.Settlement))
	c.Direction = strings.ToLower(strings.TrimSpace(c.Direction))
	c.Note = strings.TrimSpace(c.Note)
}

// commandValues holds the decimals parsed while validating a command.
type commandValues struct {
	unitPrice decimal.Decimal
	amount    decimal.Decimal
}

// Validate checks that the fields the operation needs are present and
// well-formed. It does not look anything up.
func (c *Command) Validate() error {
	_, err := c.parse()
	return err
}

func (c *Command) parse() (commandValues, error) {
	var (
		v   commandValues
		err error
	)

	switch c.Operation {
	case OpRecordSale, OpRecordPurchase:
		if err := c.requireParty(); err != nil {
			return v, err
		}
		if c.ItemID == "" && c.ItemName == "" {
			return v, invalidCommand("item is required")
		}
		if c.Quantity <= 0 {
			return v, invalidCommand("quantity must be positive")
		}
		if v.unitPrice, err = c.decimalField("unit_price", c.UnitPrice); err != nil {
			return v, err
		}
		return v, c.requireCurrency()

	case OpReturnSale, OpReturnPurchase, OpDeleteSale, OpDeletePurchase, OpEditVoucher:
		if c.TargetID == "" {
			return v, invalidCommand("target_id is required")
		}
		if c.Operation == OpEditVoucher {
			if v.amount, err = c.decimalField("amount", c.Amount); err != nil {
				return v, err
			}
		}
		return v, nil

	case OpRecordWaste:
		if c.ItemID == "" && c.ItemName == "" {
			return v, invalidCommand("item is required")
		}
		if c.Quantity <= 0 {
			return v, invalidCommand("quantity must be positive")
		}
		if c.Amount != "" {
			if v.amount, err = c.decimalField("amount", c.Amount); err != nil {
				return v, err
			}
		}
		if c.Currency != "" {
			return v, c.requireCurrency()
		}
		return v, nil

	case OpRecordVoucher:
		if !domain.VoucherDirection(c.Direction).IsValid() {
			return v, invalidCommand(fmt.Sprintf("unknown direction %q", c.Direction))
		}
		if err := c.requireParty(); err != nil {
			return v, err
		}
		if v.amount, err = c.decimalField("amount", c.Amount); err != nil {
			return v, err
		}
		return v, c.requireCurrency()

	case OpRecordOpeningBalance:
		if !domain.PartyType(c.PartyType).IsValid() {
			return v, invalidCommand(fmt.Sprintf("unknown party type %q", c.PartyType))
		}
		if err := c.requireParty(); err != nil {
			return v, err
		}
		if v.amount, err = c.decimalField("amount", c.Amount); err != nil {
			return v, err
		}
		return v, c.requireCurrency()
	}

	return v, invalidCommand(fmt.Sprintf("unknown operation %q", c.Operation))
}

func (c *Command) requireParty() error {
	if c.PartyID == "" && c.PartyName == "" {
		return invalidCommand("party_id or party_name is required")
	}
	if c.PartyType != "" && !domain.PartyType(c.PartyType).IsValid() {
		return invalidCommand(fmt.Sprintf("unknown party type %q", c.PartyType))
	}
	return nil
}

func (c *Command) requireCurrency() error {
	if !domain.Currency(c.Currency).IsValid() {
		return invalidCommand(fmt.Sprintf("unknown currency %q", c.Currency))
	}
	return nil
}

func (c *Command) decimalField(name, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, invalidCommand(name + " is required")
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, invalidCommand(fmt.Sprintf("%s %q is not a number", name, value))
	}
	return d, nil
}

func invalidCommand(reason string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidCommand, reason)
}

// Execute normalizes, validates and applies cmd through the regular ledger
// operations. Parties named only by name are looked up among current parties.
func (uc *LedgerUseCase) Execute(ctx context.Context, cmd Command) (*CommandResult, error) {
	cmd.Normalize()
	values, err := cmd.parse()
	if err != nil {
		return nil, err
	}

	result := &CommandResult{Operation: cmd.Operation}

	switch cmd.Operation {
	case OpRecordSale, OpRecordPurchase:
		kind := domain.KindSale
		if cmd.Operation == OpRecordPurchase {
			kind = domain.KindPurchase
		}

		partyID, perr := uc.resolvePartyID(ctx, kind.PartyType(), cmd.PartyID, cmd.PartyName)
		if perr != nil {
			return nil, perr
		}

		input := RecordTransactionInput{
			PartyID:    partyID,
			ItemID:     cmd.ItemID,
			ItemName:   cmd.ItemName,
			Quantity:   cmd.Quantity,
			UnitPrice:  values.unitPrice,
			Currency:   domain.Currency(cmd.Currency),
			Settlement: domain.Settlement(cmd.Settlement),
			Notes:      cmd.Note,
		}

		result.Transaction, err = uc.recordTransaction(ctx, kind, input)

	case OpReturnSale:
		result.Transaction, err = uc.ReturnSale(ctx, cmd.TargetID)

	case OpReturnPurchase:
		result.Transaction, err = uc.ReturnPurchase(ctx, cmd.TargetID)

	case OpDeleteSale:
		result.Transaction, err = uc.DeleteSale(ctx, cmd.TargetID, true)

	case OpDeletePurchase:
		result.Transaction, err = uc.DeletePurchase(ctx, cmd.TargetID, true)

	case OpRecordWaste:
		result.Waste, err = uc.RecordWaste(ctx, RecordWasteInput{
			ItemID:        cmd.ItemID,
			ItemName:      cmd.ItemName,
			Quantity:      cmd.Quantity,
			EstimatedLoss: values.amount,
			Currency:      domain.Currency(cmd.Currency),
			Reason:        cmd.Note,
		})

	case OpRecordVoucher:
		direction := domain.VoucherDirection(cmd.Direction)
		partyType := domain.PartyType(cmd.PartyType)
		if partyType == "" {
			partyType = domain.PartyCustomer
			if direction == domain.VoucherPayment {
				partyType = domain.PartySupplier
			}
		}

		partyID, perr := uc.resolvePartyID(ctx, partyType, cmd.PartyID, cmd.PartyName)
		if perr != nil {
			return nil, perr
		}

		result.Voucher, err = uc.RecordVoucher(ctx, RecordVoucherInput{
			Direction: direction,
			PartyID:   partyID,
			PartyType: partyType,
			Amount:    values.amount,
			Currency:  domain.Currency(cmd.Currency),
			Note:      cmd.Note,
		})

	case OpEditVoucher:
		result.Voucher, err = uc.EditVoucher(ctx, cmd.TargetID, EditVoucherInput{Amount: values.amount, Note: cmd.Note})

	case OpRecordOpeningBalance:
		partyType := domain.PartyType(cmd.PartyType)

		partyID, perr := uc.resolvePartyID(ctx, partyType, cmd.PartyID, cmd.PartyName)
		if perr != nil {
			return nil, perr
		}

		result.Transaction, err = uc.RecordOpeningBalance(ctx, OpeningBalanceInput{
			PartyType: partyType,
			PartyID:   partyID,
			Amount:    values.amount,
			Currency:  domain.Currency(cmd.Currency),
			Notes:     cmd.Note,
		})
	}

	if err != nil {
		return nil, err
	}

	return result, nil
}

func (uc *LedgerUseCase) resolvePartyID(ctx context.Context, partyType domain.PartyType, id, name string) (string, error) {
	if id != "" {
		return id, nil
	}

	parties, err := uc.repos.Parties.List(ctx, partyType)
	if err != nil {
		return "", domain.WrapPersistence("list parties", err)
	}

	for _, p := range parties {
		if strings.EqualFold(strings.TrimSpace(p.Name), name) {
			return p.ID, nil
		}
	}

	return "", fmt.Errorf("%w: %s %q", domain.ErrPartyNotFound, partyType, name)
}
