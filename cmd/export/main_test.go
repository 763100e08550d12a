package main

import (
	"bytes"
	"testing"

	"finbook/internal/accounts"
	"finbook/internal/auth"
	"finbook/internal/docstore"
	"finbook/internal/models"
	"finbook/internal/partitions"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAccount(t *testing.T, dataDir string) {
	t.Helper()
	index, err := accounts.NewIndex(dataDir, auth.BcryptHasher{}, nil)
	require.NoError(t, err)
	_, err = index.Register(models.Registration{
		Username:         "alice",
		Email:            "a@x.com",
		Password:         "Passw0rd",
		SecurityQuestion: "Q",
		SecurityAnswer:   "A",
		Birthday:         "1990-01-01",
	})
	require.NoError(t, err)
}

func TestRun_CompleteExport(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("FINBOOK_DATA_DIR", dataDir)
	setupAccount(t, dataDir)

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)

	err := run([]string{"-user", "alice"}, stdout, stderr, nil)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Export written to")
	assert.Contains(t, stdout.String(), "alice_complete_data_")
}

func TestRun_BillExportWithData(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("FINBOOK_DATA_DIR", dataDir)
	setupAccount(t, dataDir)

	parts := partitions.New(docstore.New(dataDir, nil))
	require.NoError(t, parts.SaveBills("alice", models.BillDocument{
		Records:     []models.BillRecord{{Date: "2023-09-10", Description: "Rent", Amount: decimal.RequireFromString("1200.00"), Status: "Paid"}},
		CreditLimit: decimal.RequireFromString("2000.00"),
	}))

	stdout := new(bytes.Buffer)
	err := run([]string{"-user", "a@x.com", "-kind", "bill"}, stdout, new(bytes.Buffer), nil)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "alice_bill_data_")
}

func TestRun_AnalysisExportWithoutData(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("FINBOOK_DATA_DIR", dataDir)
	setupAccount(t, dataDir)

	err := run([]string{"-user", "alice", "-kind", "analysis"}, new(bytes.Buffer), new(bytes.Buffer), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data")
}

func TestRun_UnknownUser(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("FINBOOK_DATA_DIR", dataDir)

	err := run([]string{"-user", "ghost"}, new(bytes.Buffer), new(bytes.Buffer), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestRun_UnknownKind(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("FINBOOK_DATA_DIR", dataDir)
	setupAccount(t, dataDir)

	err := run([]string{"-user", "alice", "-kind", "pdf"}, new(bytes.Buffer), new(bytes.Buffer), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown export kind")
}

func TestRun_Cleanup(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("FINBOOK_DATA_DIR", dataDir)

	stdout := new(bytes.Buffer)
	err := run([]string{"-cleanup"}, stdout, new(bytes.Buffer), nil)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Removed 0 old export(s)")
}

func TestRun_MissingUser(t *testing.T) {
	t.Setenv("FINBOOK_DATA_DIR", t.TempDir())

	stdout := new(bytes.Buffer)
	err := run(nil, stdout, new(bytes.Buffer), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required flags: user")
	assert.Contains(t, stdout.String(), "Usage: export")
}
