package export

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"finbook/internal/accounts"
	"finbook/internal/auth"
	"finbook/internal/docstore"
	"finbook/internal/models"
	"finbook/internal/partitions"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// CompilerTestSuite provides a test suite for export compilation
type CompilerTestSuite struct {
	suite.Suite
	compiler  *Compiler
	index     *accounts.Index
	manager   *partitions.Manager
	exportDir string
	account   *models.Account
}

// SetupTest runs before each test
func (suite *CompilerTestSuite) SetupTest() {
	dataDir := suite.T().TempDir()
	suite.exportDir = filepath.Join(dataDir, "exports")

	idx, err := accounts.NewIndex(dataDir, auth.BcryptHasher{}, nil)
	require.NoError(suite.T(), err, "failed to create index")
	suite.index = idx

	acct, err := idx.Register(models.Registration{
		Username:         "alice",
		Email:            "a@x.com",
		Password:         "Passw0rd",
		SecurityQuestion: "Q",
		SecurityAnswer:   "A",
		Birthday:         "1990-01-01",
	})
	require.NoError(suite.T(), err, "failed to register account")
	suite.account = acct

	suite.manager = partitions.New(docstore.New(dataDir, nil))
	suite.compiler = NewCompiler(idx, suite.manager, suite.exportDir, nil)
}

func (suite *CompilerTestSuite) saveBills() {
	err := suite.manager.SaveBills("alice", models.BillDocument{
		Records: []models.BillRecord{
			{Date: "2023-09-10", Description: "Rent, Sept", Amount: dec("1200.00"), Status: "Paid"},
		},
		CreditLimit: dec("2000.00"),
	})
	require.NoError(suite.T(), err)
}

func (suite *CompilerTestSuite) readExport(path string) string {
	data, err := os.ReadFile(path)
	require.NoError(suite.T(), err)
	return string(data)
}

// sectionRows parses the CSV rows of one named section back through a
// standard CSV reader.
func (suite *CompilerTestSuite) sectionRows(content, name string) [][]string {
	marker := "=== " + name + " ===\n"
	start := strings.Index(content, marker)
	require.GreaterOrEqual(suite.T(), start, 0, "section %q not found", name)

	body := content[start+len(marker):]
	if end := strings.Index(body, "\n=== "); end >= 0 {
		body = body[:end]
	}

	r := csv.NewReader(strings.NewReader(body))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	require.NoError(suite.T(), err, "section %q is not parseable CSV", name)
	return rows
}

func (suite *CompilerTestSuite) TestExportCompleteQuotesUserStrings() {
	suite.saveBills()

	path, err := suite.compiler.ExportComplete(suite.account)
	require.NoError(suite.T(), err)

	content := suite.readExport(path)
	assert.Contains(suite.T(), content, `"Rent, Sept"`,
		"description with a comma must be quoted")
	assert.Contains(suite.T(), content, "60.00%")

	rows := suite.sectionRows(content, "Bill Records")
	require.GreaterOrEqual(suite.T(), len(rows), 2)
	assert.Equal(suite.T(), "Rent, Sept", rows[1][1],
		"quoted cell must parse back to the original string")
}

func (suite *CompilerTestSuite) TestExportCompleteWithOnlySettings() {
	require.NoError(suite.T(), suite.manager.SaveSettings("alice", models.Settings{"currency": "EUR"}))

	path, err := suite.compiler.ExportComplete(suite.account)
	require.NoError(suite.T(), err)
	content := suite.readExport(path)

	sections := []string{
		"Bill Records", "Bill Summary", "Analysis Summary", "Category Breakdown",
		"Expense Records", "Budget Data", "Settings",
	}
	for _, name := range sections {
		assert.Contains(suite.T(), content, "=== "+name+" ===")
	}
	assert.Contains(suite.T(), content, "=== Account Information ===")

	assert.Equal(suite.T(), 6, strings.Count(content, noDataPlaceholder),
		"every absent section gets exactly one placeholder row")

	rows := suite.sectionRows(content, "Settings")
	require.Len(suite.T(), rows, 2)
	assert.Equal(suite.T(), []string{"currency", "EUR"}, rows[1])
}

func (suite *CompilerTestSuite) TestExportCompleteSectionOrder() {
	suite.saveBills()
	path, err := suite.compiler.ExportComplete(suite.account)
	require.NoError(suite.T(), err)
	content := suite.readExport(path)

	ordered := []string{
		"Account Information", "Bill Records", "Bill Summary", "Analysis Summary",
		"Category Breakdown", "Expense Records", "Budget Data", "Settings",
	}
	last := -1
	for _, name := range ordered {
		pos := strings.Index(content, "=== "+name+" ===")
		require.GreaterOrEqual(suite.T(), pos, 0, "section %q missing", name)
		assert.Greater(suite.T(), pos, last, "section %q out of order", name)
		last = pos
	}
}

func (suite *CompilerTestSuite) TestExportCompleteUsesRegistryEntry() {
	require.NoError(suite.T(), suite.index.Update(models.ProfileUpdate{
		Username:         "alice",
		Email:            "new@x.com",
		SecurityQuestion: "Q",
		SecurityAnswer:   "A",
		Birthday:         "1990-01-01",
	}))

	// Caller still holds the stale account; the export reflects the registry.
	path, err := suite.compiler.ExportComplete(suite.account)
	require.NoError(suite.T(), err)
	assert.Contains(suite.T(), suite.readExport(path), "new@x.com")
}

func (suite *CompilerTestSuite) TestExportCompleteAnalysisSections() {
	require.NoError(suite.T(), suite.manager.SaveAnalysis("alice", models.AnalysisSnapshot{
		TotalExpenses: dec("600.00"),
		TotalIncome:   dec("1000.00"),
		CategoryExpenses: map[string]decimal.Decimal{
			"food":    dec("450.00"),
			"leisure": dec("150.00"),
		},
		MonthlyTrends: map[string]decimal.Decimal{"2023-09": dec("600.00")},
		BudgetUsage: map[string]models.BudgetUsage{
			"food": {Limit: dec("500.00"), Spent: dec("450.00"), Remaining: dec("50.00"), Percentage: dec("90.00")},
		},
	}))

	path, err := suite.compiler.ExportComplete(suite.account)
	require.NoError(suite.T(), err)
	content := suite.readExport(path)

	assert.Contains(suite.T(), content, "Savings Rate,40.00%")
	assert.Contains(suite.T(), content, "Top Category,food (450.00)")

	rows := suite.sectionRows(content, "Category Breakdown")
	require.Len(suite.T(), rows, 3)
	assert.Equal(suite.T(), []string{"food", "450.00", "75.00%"}, rows[1])
	assert.Equal(suite.T(), []string{"leisure", "150.00", "25.00%"}, rows[2])
}

func (suite *CompilerTestSuite) TestExportCompleteZeroTotals() {
	// All-zero analysis must export 0.00% rather than fault on division.
	require.NoError(suite.T(), suite.manager.SaveAnalysis("alice", models.AnalysisSnapshot{
		CategoryExpenses: map[string]decimal.Decimal{"food": decimal.Zero},
	}))

	path, err := suite.compiler.ExportComplete(suite.account)
	require.NoError(suite.T(), err)
	content := suite.readExport(path)
	assert.Contains(suite.T(), content, "Savings Rate,0.00%")

	rows := suite.sectionRows(content, "Category Breakdown")
	require.Len(suite.T(), rows, 2)
	assert.Equal(suite.T(), []string{"food", "0.00", "0.00%"}, rows[1])
}

func (suite *CompilerTestSuite) TestExportCompleteInvalidAccount() {
	_, err := suite.compiler.ExportComplete(nil)
	assert.True(suite.T(), errors.Is(err, ErrInvalidAccount))

	_, err = suite.compiler.ExportComplete(&models.Account{})
	assert.True(suite.T(), errors.Is(err, ErrInvalidAccount))
}

func (suite *CompilerTestSuite) TestEscapingRoundTrip() {
	tricky := map[string]string{
		"comma":   "a,b",
		"quote":   `say "hi"`,
		"newline": "line1\nline2",
		"mixed":   "a,\"b\"\nc",
	}
	require.NoError(suite.T(), suite.manager.SaveSettings("alice", models.Settings(tricky)))

	path, err := suite.compiler.ExportComplete(suite.account)
	require.NoError(suite.T(), err)

	rows := suite.sectionRows(suite.readExport(path), "Settings")
	parsed := make(map[string]string)
	for _, row := range rows[1:] {
		require.Len(suite.T(), row, 2)
		parsed[row[0]] = row[1]
	}
	assert.Equal(suite.T(), tricky, parsed,
		"escaped values must parse back to the original strings")
}

func (suite *CompilerTestSuite) TestExportBillOnly() {
	suite.saveBills()

	path, err := suite.compiler.ExportBillOnly(suite.account)
	require.NoError(suite.T(), err)
	assert.Contains(suite.T(), filepath.Base(path), "alice_bill_data_")

	content := suite.readExport(path)
	assert.Contains(suite.T(), content, "=== Bill Records ===")
	assert.Contains(suite.T(), content, "=== Bill Summary ===")
	assert.NotContains(suite.T(), content, "=== Account Information ===")
	assert.NotContains(suite.T(), content, "=== Settings ===")
}

func (suite *CompilerTestSuite) TestExportBillOnlyWithoutData() {
	_, err := suite.compiler.ExportBillOnly(suite.account)
	require.Error(suite.T(), err)
	assert.True(suite.T(), errors.Is(err, ErrNoData))
	suite.assertNoExports()
}

func (suite *CompilerTestSuite) TestExportAnalysisOnlyWithoutData() {
	_, err := suite.compiler.ExportAnalysisOnly(suite.account)
	require.Error(suite.T(), err)
	assert.True(suite.T(), errors.Is(err, ErrNoData))
	suite.assertNoExports()
}

func (suite *CompilerTestSuite) assertNoExports() {
	entries, err := os.ReadDir(suite.exportDir)
	if os.IsNotExist(err) {
		return
	}
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), entries, "failed export must not leave a file behind")
}

func (suite *CompilerTestSuite) TestCleanupOldExports() {
	suite.saveBills()

	oldPath, err := suite.compiler.ExportBillOnly(suite.account)
	require.NoError(suite.T(), err)
	newPath, err := suite.compiler.ExportComplete(suite.account)
	require.NoError(suite.T(), err)

	// Unrelated file in the export directory must survive the sweep.
	unrelated := filepath.Join(suite.exportDir, "notes.csv")
	require.NoError(suite.T(), os.WriteFile(unrelated, []byte("keep"), 0o644))

	stale := time.Now().Add(-40 * 24 * time.Hour)
	require.NoError(suite.T(), os.Chtimes(oldPath, stale, stale))
	require.NoError(suite.T(), os.Chtimes(unrelated, stale, stale))

	removed, err := suite.compiler.CleanupOldExports(30 * 24 * time.Hour)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, removed)

	assert.NoFileExists(suite.T(), oldPath)
	assert.FileExists(suite.T(), newPath)
	assert.FileExists(suite.T(), unrelated)
}

func (suite *CompilerTestSuite) TestCleanupMissingDirectory() {
	removed, err := suite.compiler.CleanupOldExports(time.Hour)
	require.NoError(suite.T(), err)
	assert.Zero(suite.T(), removed)
}

func TestCompilerSuite(t *testing.T) {
	suite.Run(t, new(CompilerTestSuite))
}
