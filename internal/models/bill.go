package models

import "github.com/shopspring/decimal"

// BillRecord is a single repayment entry on a user's bill.
type BillRecord struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
}

// BillDocument is the bill partition: the full record list plus the credit
// limit the usage figures are computed against.
type BillDocument struct {
	Records     []BillRecord    `json:"records"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
}

// TotalRepayment sums the amounts of all records.
func (d *BillDocument) TotalRepayment() decimal.Decimal {
	total := decimal.Zero
	for _, r := range d.Records {
		total = total.Add(r.Amount)
	}
	return total
}

// CreditUsagePercentage returns total repayment as a percentage of the
// credit limit. A zero limit yields zero, never a division fault.
func (d *BillDocument) CreditUsagePercentage() decimal.Decimal {
	if d.CreditLimit.IsZero() {
		return decimal.Zero
	}
	return d.TotalRepayment().Div(d.CreditLimit).Mul(decimal.NewFromInt(100))
}

// RemainingCredit returns the credit limit minus total repayment, clamped
// at zero.
func (d *BillDocument) RemainingCredit() decimal.Decimal {
	remaining := d.CreditLimit.Sub(d.TotalRepayment())
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}
