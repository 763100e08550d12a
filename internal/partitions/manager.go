package partitions

import (
	"finbook/internal/docstore"
	"finbook/internal/models"
)

// Well-known partition names. Features go through the typed methods below
// so these strings never leak into callers.
const (
	BillPartition     = "bill_data"
	AnalysisPartition = "analysis_data"
	BudgetPartition   = "budget_data"
	ExpensePartition  = "expense_data"
	SettingsPartition = "settings"
)

// Manager is a typed façade over the document store binding each feature
// to its partition name and document shape.
type Manager struct {
	store *docstore.Store
}

// New creates a manager over the given store.
func New(store *docstore.Store) *Manager {
	return &Manager{store: store}
}

// SaveBills overwrites the bill partition for user.
func (m *Manager) SaveBills(user string, doc models.BillDocument) error {
	return m.store.Save(user, BillPartition, doc)
}

// LoadBills returns the bill partition, or docstore.ErrNotFound.
func (m *Manager) LoadBills(user string) (*models.BillDocument, error) {
	var doc models.BillDocument
	if err := m.store.Load(user, BillPartition, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// SaveAnalysis overwrites the analysis partition for user.
func (m *Manager) SaveAnalysis(user string, snap models.AnalysisSnapshot) error {
	return m.store.Save(user, AnalysisPartition, snap)
}

// LoadAnalysis returns the analysis partition, or docstore.ErrNotFound.
func (m *Manager) LoadAnalysis(user string) (*models.AnalysisSnapshot, error) {
	var snap models.AnalysisSnapshot
	if err := m.store.Load(user, AnalysisPartition, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// SaveBudget overwrites the budget partition for user.
func (m *Manager) SaveBudget(user string, doc models.BudgetDocument) error {
	return m.store.Save(user, BudgetPartition, doc)
}

// LoadBudget returns the budget partition, or docstore.ErrNotFound.
func (m *Manager) LoadBudget(user string) (models.BudgetDocument, error) {
	var doc models.BudgetDocument
	if err := m.store.Load(user, BudgetPartition, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// SaveExpenses overwrites the expense partition for user.
func (m *Manager) SaveExpenses(user string, doc models.ExpenseDocument) error {
	return m.store.Save(user, ExpensePartition, doc)
}

// LoadExpenses returns the expense partition, or docstore.ErrNotFound.
func (m *Manager) LoadExpenses(user string) (*models.ExpenseDocument, error) {
	var doc models.ExpenseDocument
	if err := m.store.Load(user, ExpensePartition, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// SaveSettings overwrites the settings partition for user.
func (m *Manager) SaveSettings(user string, settings models.Settings) error {
	return m.store.Save(user, SettingsPartition, settings)
}

// LoadSettings returns the settings partition, or docstore.ErrNotFound.
func (m *Manager) LoadSettings(user string) (models.Settings, error) {
	var settings models.Settings
	if err := m.store.Load(user, SettingsPartition, &settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// SaveCustom stores an arbitrary document under a caller-chosen partition
// name. Escape hatch for feature data without a typed slot.
func (m *Manager) SaveCustom(user, name string, v any) error {
	return m.store.Save(user, name, v)
}

// LoadCustom loads an arbitrary document saved with SaveCustom.
func (m *Manager) LoadCustom(user, name string, v any) error {
	return m.store.Load(user, name, v)
}

// Purge removes every partition for user. Used by bulk account cleanup.
func (m *Manager) Purge(user string) error {
	return m.store.DeleteUser(user)
}
