package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseRecord represents a financial expense record inside the expense
// partition.
type ExpenseRecord struct {
	ID          int64           `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Date        time.Time       `json:"date"`
}

// ExpenseDocument is the expense partition: the full list of records for
// one user.
type ExpenseDocument struct {
	Records []ExpenseRecord `json:"records"`
}

// Total sums the amounts of all records.
func (d *ExpenseDocument) Total() decimal.Decimal {
	total := decimal.Zero
	for _, r := range d.Records {
		total = total.Add(r.Amount)
	}
	return total
}

// Settings is the settings partition: free-form key/value preferences.
type Settings map[string]string

// BudgetDocument is the budget partition. Its shape belongs to the budget
// feature; the store and the export treat it as an opaque JSON object.
type BudgetDocument map[string]any
