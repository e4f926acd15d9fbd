package domain

import "github.com/shopspring/decimal"

// CurrencyAmount is a signed amount in one currency.
type CurrencyAmount struct {
	Currency Currency        `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

// CurrencySummary is the agency position in one currency.
type CurrencySummary struct {
	Currency    Currency        `json:"currency"`
	Assets      decimal.Decimal `json:"assets"`
	Liabilities decimal.Decimal `json:"liabilities"`
	Net         decimal.Decimal `json:"net"`
}

// PartyReceivable returns what the customer owes the agency in each
// recognized currency: non-returned sale totals minus receipt vouchers.
// Negative amounts mean the customer has overpaid. All three currencies are
// always present, in Currencies() order.
func PartyReceivable(partyID string, sales []*Transaction, vouchers []*Voucher) []CurrencyAmount {
	return partyBalance(partyID, sales, vouchers, VoucherReceipt)
}

// PartyPayable returns what the agency owes the supplier in each recognized
// currency: non-returned purchase totals minus payment vouchers.
func PartyPayable(partyID string, purchases []*Transaction, vouchers []*Voucher) []CurrencyAmount {
	return partyBalance(partyID, purchases, vouchers, VoucherPayment)
}

func partyBalance(partyID string, txs []*Transaction, vouchers []*Voucher, settles VoucherDirection) []CurrencyAmount {
	sums := make(map[Currency]decimal.Decimal, len(currencies))

	for _, t := range txs {
		if t == nil || t.PartyID != partyID || !t.Counts() {
			continue
		}
		sums[t.Currency] = sums[t.Currency].Add(t.Total)
	}

	for _, v := range vouchers {
		if v == nil || v.PartyID != partyID || v.Direction != settles {
			continue
		}
		sums[v.Currency] = sums[v.Currency].Sub(v.Amount)
	}

	out := make([]CurrencyAmount, 0, len(currencies))
	for _, c := range currencies {
		out = append(out, CurrencyAmount{Currency: c, Amount: sums[c]})
	}

	return out
}

// GlobalSummary aggregates the positive balances of current parties. A
// customer credit is never netted against another customer's debt, and
// transactions of deleted parties are not counted.
func GlobalSummary(customers, suppliers []*Party, sales, purchases []*Transaction, vouchers []*Voucher) []CurrencySummary {
	assets := make(map[Currency]decimal.Decimal, len(currencies))
	liabilities := make(map[Currency]decimal.Decimal, len(currencies))

	for _, c := range customers {
		for _, ca := range PartyReceivable(c.ID, sales, vouchers) {
			if ca.Amount.IsPositive() {
				assets[ca.Currency] = assets[ca.Currency].Add(ca.Amount)
			}
		}
	}

	for _, s := range suppliers {
		for _, ca := range PartyPayable(s.ID, purchases, vouchers) {
			if ca.Amount.IsPositive() {
				liabilities[ca.Currency] = liabilities[ca.Currency].Add(ca.Amount)
			}
		}
	}

	out := make([]CurrencySummary, 0, len(currencies))
	for _, c := range currencies {
		out = append(out, CurrencySummary{
			Currency:    c,
			Assets:      assets[c],
			Liabilities: liabilities[c],
			Net:         assets[c].Sub(liabilities[c]),
		})
	}

	return out
}

// Debts keeps only the currencies with an outstanding positive amount.
func Debts(balances []CurrencyAmount) []CurrencyAmount {
	var out []CurrencyAmount
	for _, b := range balances {
		if b.Amount.IsPositive() {
			out = append(out, b)
		}
	}
	return out
}

// PartyDebt is one row of the debts report.
type PartyDebt struct {
	Party *Party           `json:"party"`
	Debts []CurrencyAmount `json:"debts"`
}

// DebtsReport lists every current customer with a positive receivable and
// every supplier with a positive payable.
func DebtsReport(customers, suppliers []*Party, sales, purchases []*Transaction, vouchers []*Voucher) (receivables, payables []PartyDebt) {
	for _, c := range customers {
		if d := Debts(PartyReceivable(c.ID, sales, vouchers)); len(d) > 0 {
			receivables = append(receivables, PartyDebt{Party: c, Debts: d})
		}
	}

	for _, s := range suppliers {
		if d := Debts(PartyPayable(s.ID, purchases, vouchers)); len(d) > 0 {
			payables = append(payables, PartyDebt{Party: s, Debts: d})
		}
	}

	return receivables, payables
}
