package models

import "github.com/shopspring/decimal"

// BudgetUsage describes how much of one category budget has been consumed.
type BudgetUsage struct {
	Limit      decimal.Decimal `json:"limit"`
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage decimal.Decimal `json:"percentage"`
}

// AnalysisSnapshot is the analysis partition: aggregate figures computed by
// the analysis feature and stored as one document.
type AnalysisSnapshot struct {
	TotalExpenses    decimal.Decimal            `json:"total_expenses"`
	TotalIncome      decimal.Decimal            `json:"total_income"`
	CategoryExpenses map[string]decimal.Decimal `json:"category_expenses"`
	MonthlyTrends    map[string]decimal.Decimal `json:"monthly_trends"`
	BudgetUsage      map[string]BudgetUsage     `json:"budget_usage"`
	ExpenseTags      []string                   `json:"expense_tags"`
}

// SavingsRate returns (income - expenses) / income * 100. Zero income
// yields zero.
func (s *AnalysisSnapshot) SavingsRate() decimal.Decimal {
	if s.TotalIncome.IsZero() {
		return decimal.Zero
	}
	return s.TotalIncome.Sub(s.TotalExpenses).Div(s.TotalIncome).Mul(decimal.NewFromInt(100))
}

// TopCategory returns the category with the highest spend and its amount.
// Ties break toward the lexicographically smaller name so the result is
// deterministic. Returns ("", 0) when no categories are recorded.
func (s *AnalysisSnapshot) TopCategory() (string, decimal.Decimal) {
	var top string
	max := decimal.Zero
	for name, amount := range s.CategoryExpenses {
		if top == "" || amount.GreaterThan(max) || (amount.Equal(max) && name < top) {
			top = name
			max = amount
		}
	}
	return top, max
}
