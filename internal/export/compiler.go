package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"finbook/internal/accounts"
	"finbook/internal/docstore"
	"finbook/internal/models"
	"finbook/internal/partitions"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Placeholder row emitted for a section whose data is absent or unreadable.
const noDataPlaceholder = "无数据"

var (
	// ErrNoData is returned by the single-purpose exports when their one
	// required partition is absent. No file is written.
	ErrNoData = errors.New("no data to export")
	// ErrInvalidAccount is returned when the account or its username is
	// missing.
	ErrInvalidAccount = errors.New("account with username is required")
)

// Compiler flattens a user's partitions and registry entry into sectioned
// CSV export files.
type Compiler struct {
	index      *accounts.Index
	partitions *partitions.Manager
	dir        string
	logger     *zap.Logger
}

// NewCompiler creates a compiler writing into dir.
func NewCompiler(index *accounts.Index, parts *partitions.Manager, dir string, logger *zap.Logger) *Compiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compiler{index: index, partitions: parts, dir: dir, logger: logger}
}

// ExportComplete compiles every section for the account into one CSV file
// and returns its path. Absent or unreadable partitions degrade to a
// placeholder row; the export itself only fails on invalid input or a
// write error.
func (c *Compiler) ExportComplete(account *models.Account) (string, error) {
	if account == nil || account.Username == "" {
		return "", ErrInvalidAccount
	}
	user := account.Username

	// The registry entry is authoritative over whatever the caller passed.
	if current, err := c.index.FindByIdentifier(user); err == nil {
		account = current
	}

	doc := newDocument()
	c.writeAccountSection(doc, account)

	bills, billsOK := c.loadBills(user)
	c.writeBillRecords(doc, bills, billsOK)
	c.writeBillSummary(doc, bills, billsOK)

	analysis, analysisOK := c.loadAnalysis(user)
	c.writeAnalysisSummary(doc, analysis, analysisOK)
	c.writeCategoryBreakdown(doc, analysis, analysisOK)

	expenses, expensesOK := c.loadExpenses(user)
	c.writeExpenseRecords(doc, expenses, expensesOK)

	budget, budgetOK := c.loadBudget(user)
	c.writeBudgetData(doc, budget, budgetOK)

	settings, settingsOK := c.loadSettings(user)
	c.writeSettings(doc, settings, settingsOK)

	return c.write(user, "complete_data", doc)
}

// ExportBillOnly compiles just the bill sections. Unlike the complete
// export it fails, writing nothing, when the bill partition is absent.
func (c *Compiler) ExportBillOnly(account *models.Account) (string, error) {
	if account == nil || account.Username == "" {
		return "", ErrInvalidAccount
	}

	bills, err := c.partitions.LoadBills(account.Username)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return "", fmt.Errorf("%w: bill partition for %s", ErrNoData, account.Username)
		}
		return "", err
	}

	doc := newDocument()
	c.writeBillRecords(doc, bills, true)
	c.writeBillSummary(doc, bills, true)
	return c.write(account.Username, "bill_data", doc)
}

// ExportAnalysisOnly compiles just the analysis sections. Fails, writing
// nothing, when the analysis partition is absent.
func (c *Compiler) ExportAnalysisOnly(account *models.Account) (string, error) {
	if account == nil || account.Username == "" {
		return "", ErrInvalidAccount
	}

	analysis, err := c.partitions.LoadAnalysis(account.Username)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return "", fmt.Errorf("%w: analysis partition for %s", ErrNoData, account.Username)
		}
		return "", err
	}

	doc := newDocument()
	c.writeAnalysisSummary(doc, analysis, true)
	c.writeCategoryBreakdown(doc, analysis, true)
	return c.write(account.Username, "analysis_data", doc)
}

// write renders the document to <dir>/<user>_<kind>_<timestamp>.csv via a
// temp file and rename, so a partially written export is never visible
// under its final name.
func (c *Compiler) write(user, kind string, doc *document) (string, error) {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("unable to create export directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s_%s.csv", user, kind, time.Now().Format("20060102_150405"))
	path := filepath.Join(c.dir, name)
	if err := docstore.WriteAtomic(path, doc.bytes()); err != nil {
		c.logger.Error("write export failed",
			zap.String("user", user), zap.String("kind", kind), zap.Error(err))
		return "", fmt.Errorf("unable to write export for %s: %w", user, err)
	}

	c.logger.Info("export written",
		zap.String("user", user), zap.String("kind", kind), zap.String("path", path))
	return path, nil
}

// Partition loaders for the complete export: absent and unreadable both
// degrade to "no data" (unreadable is logged), per the placeholder policy.

func (c *Compiler) loadBills(user string) (*models.BillDocument, bool) {
	doc, err := c.partitions.LoadBills(user)
	if err != nil {
		c.logDegraded(user, partitions.BillPartition, err)
		return nil, false
	}
	return doc, true
}

func (c *Compiler) loadAnalysis(user string) (*models.AnalysisSnapshot, bool) {
	snap, err := c.partitions.LoadAnalysis(user)
	if err != nil {
		c.logDegraded(user, partitions.AnalysisPartition, err)
		return nil, false
	}
	return snap, true
}

func (c *Compiler) loadExpenses(user string) (*models.ExpenseDocument, bool) {
	doc, err := c.partitions.LoadExpenses(user)
	if err != nil {
		c.logDegraded(user, partitions.ExpensePartition, err)
		return nil, false
	}
	return doc, true
}

func (c *Compiler) loadBudget(user string) (models.BudgetDocument, bool) {
	doc, err := c.partitions.LoadBudget(user)
	if err != nil {
		c.logDegraded(user, partitions.BudgetPartition, err)
		return nil, false
	}
	return doc, true
}

func (c *Compiler) loadSettings(user string) (models.Settings, bool) {
	settings, err := c.partitions.LoadSettings(user)
	if err != nil {
		c.logDegraded(user, partitions.SettingsPartition, err)
		return nil, false
	}
	return settings, true
}

func (c *Compiler) logDegraded(user, partition string, err error) {
	if errors.Is(err, docstore.ErrNotFound) {
		return
	}
	c.logger.Warn("partition unreadable, exporting placeholder",
		zap.String("user", user), zap.String("partition", partition), zap.Error(err))
}

// Section writers. Fixed order, every section always present; blank line
// after each.

func (c *Compiler) writeAccountSection(doc *document, account *models.Account) {
	doc.section("Account Information")
	doc.row("Username", "Email", "Birthday", "Security Question")
	doc.row(account.Username, account.Email, account.Birthday, account.SecurityQuestion)
	doc.blank()
}

func (c *Compiler) writeBillRecords(doc *document, bills *models.BillDocument, ok bool) {
	doc.section("Bill Records")
	if !ok {
		doc.placeholder()
		return
	}
	doc.row("Date", "Description", "Amount", "Status")
	for _, r := range bills.Records {
		doc.row(r.Date, r.Description, r.Amount.StringFixed(2), r.Status)
	}
	doc.blank()
}

func (c *Compiler) writeBillSummary(doc *document, bills *models.BillDocument, ok bool) {
	doc.section("Bill Summary")
	if !ok {
		doc.placeholder()
		return
	}
	doc.row("Metric", "Value")
	doc.row("Total Repayment", bills.TotalRepayment().StringFixed(2))
	doc.row("Credit Limit", bills.CreditLimit.StringFixed(2))
	doc.row("Credit Usage", percent(bills.CreditUsagePercentage()))
	doc.row("Remaining Credit", bills.RemainingCredit().StringFixed(2))
	doc.blank()
}

func (c *Compiler) writeAnalysisSummary(doc *document, analysis *models.AnalysisSnapshot, ok bool) {
	doc.section("Analysis Summary")
	if !ok {
		doc.placeholder()
		return
	}

	topCategory, topAmount := analysis.TopCategory()
	doc.row("Metric", "Value")
	doc.row("Total Expenses", analysis.TotalExpenses.StringFixed(2))
	doc.row("Total Income", analysis.TotalIncome.StringFixed(2))
	doc.row("Savings Rate", percent(analysis.SavingsRate()))
	if topCategory != "" {
		doc.row("Top Category", fmt.Sprintf("%s (%s)", topCategory, topAmount.StringFixed(2)))
	}
	if len(analysis.ExpenseTags) > 0 {
		doc.row("Expense Tags", strings.Join(analysis.ExpenseTags, "; "))
	}

	if len(analysis.MonthlyTrends) > 0 {
		doc.blank()
		doc.row("Month", "Amount")
		for _, month := range sortedKeys(analysis.MonthlyTrends) {
			doc.row(month, analysis.MonthlyTrends[month].StringFixed(2))
		}
	}

	if len(analysis.BudgetUsage) > 0 {
		doc.blank()
		doc.row("Category", "Limit", "Spent", "Remaining", "Usage")
		for _, category := range sortedKeys(analysis.BudgetUsage) {
			usage := analysis.BudgetUsage[category]
			doc.row(category,
				usage.Limit.StringFixed(2),
				usage.Spent.StringFixed(2),
				usage.Remaining.StringFixed(2),
				percent(usage.Percentage))
		}
	}
	doc.blank()
}

func (c *Compiler) writeCategoryBreakdown(doc *document, analysis *models.AnalysisSnapshot, ok bool) {
	doc.section("Category Breakdown")
	if !ok || len(analysis.CategoryExpenses) == 0 {
		doc.placeholder()
		return
	}

	total := decimal.Zero
	for _, amount := range analysis.CategoryExpenses {
		total = total.Add(amount)
	}

	doc.row("Category", "Amount", "Percentage")
	for _, category := range sortedKeys(analysis.CategoryExpenses) {
		amount := analysis.CategoryExpenses[category]
		share := decimal.Zero
		if !total.IsZero() {
			share = amount.Div(total).Mul(decimal.NewFromInt(100))
		}
		doc.row(category, amount.StringFixed(2), percent(share))
	}
	doc.blank()
}

func (c *Compiler) writeExpenseRecords(doc *document, expenses *models.ExpenseDocument, ok bool) {
	doc.section("Expense Records")
	if !ok {
		doc.placeholder()
		return
	}
	doc.row("Date", "Category", "Description", "Amount")
	for _, r := range expenses.Records {
		date := ""
		if !r.Date.IsZero() {
			date = r.Date.Format("2006-01-02 15:04")
		}
		doc.row(date, r.Category, r.Description, r.Amount.StringFixed(2))
	}
	doc.blank()
}

func (c *Compiler) writeBudgetData(doc *document, budget models.BudgetDocument, ok bool) {
	doc.section("Budget Data")
	if !ok {
		doc.placeholder()
		return
	}
	doc.row("Key", "Value")
	for _, key := range sortedKeys(budget) {
		doc.row(key, formatValue(budget[key]))
	}
	doc.blank()
}

func (c *Compiler) writeSettings(doc *document, settings models.Settings, ok bool) {
	doc.section("Settings")
	if !ok {
		doc.placeholder()
		return
	}
	doc.row("Key", "Value")
	for _, key := range sortedKeys(settings) {
		doc.row(key, settings[key])
	}
	doc.blank()
}

func percent(v decimal.Decimal) string {
	return v.StringFixed(2) + "%"
}

// formatValue renders an opaque JSON value for the budget passthrough.
// Numbers get the two-decimal treatment every other amount receives.
func formatValue(v any) string {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n).StringFixed(2)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
