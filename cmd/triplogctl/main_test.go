package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCaptureListAndReport(t *testing.T) {
	t.Setenv("MILEAGE_RATES", "")
	data := filepath.Join(t.TempDir(), "records.json")

	out, err := run(t, "--data", data, "capture", "meal", "lunch", "45", "at", "Cafe", "Nero")
	require.NoError(t, err)
	assert.Contains(t, out, "Expense added successfully")
	assert.Contains(t, out, `"amount": "45.00"`)

	_, err = os.Stat(data)
	require.NoError(t, err, "capture should persist the data file")

	out, err = run(t, "--data", data, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Meals")
	assert.Contains(t, out, "45.00")

	out, err = run(t, "--data", data, "report", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "Date,Title,Category,Amount")
	assert.Contains(t, out, ",Meals,45.00,")

	out, err = run(t, "--data", data, "report", "tax", "--category", "meals")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Business Expenses: $45.00")
}

func TestParseDoesNotSave(t *testing.T) {
	data := filepath.Join(t.TempDir(), "records.json")

	out, err := run(t, "--data", data, "parse", "fuel", "65", "dollars", "at", "Shell")
	require.NoError(t, err)
	assert.Contains(t, out, `"intent": "fuel"`)

	_, err = os.Stat(data)
	assert.True(t, os.IsNotExist(err))
}

func TestDryRunSavesNothing(t *testing.T) {
	data := filepath.Join(t.TempDir(), "records.json")

	out, err := run(t, "--data", data, "--dry-run", "add", "mileage",
		"--start-odometer", "45180", "--end-odometer", "45230",
		"--from", "Office", "--to", "Client", "--date", "2024-05-02")
	require.NoError(t, err)
	assert.Contains(t, out, "Added trip dry-1")
	assert.Contains(t, out, "= 34.00")

	_, err = os.Stat(data)
	assert.True(t, os.IsNotExist(err))
}

func TestCommandErrors(t *testing.T) {
	data := filepath.Join(t.TempDir(), "records.json")

	_, err := run(t, "--data", data, "capture", "taxi", "20 dollars")
	assert.Error(t, err, "unknown intent")

	_, err = run(t, "--data", data, "capture", "mileage", "odometer 100 and 100")
	assert.ErrorContains(t, err, "couldn't process")

	_, err = run(t, "--data", data, "delete", "expense", "missing")
	assert.ErrorContains(t, err, "record not found")

	_, err = run(t, "--data", data, "report", "pdf")
	assert.Error(t, err)

	_, err = run(t, "--data", data, "summary", "--from", "2024-05-10", "--to", "2024-05-01")
	assert.Error(t, err)
}

func TestRates(t *testing.T) {
	t.Setenv("MILEAGE_RATES", "2023:0.655,2024:0.67")
	out, err := run(t, "rates")
	require.NoError(t, err)
	assert.Contains(t, out, "2023")
	assert.Contains(t, out, "0.655")
	assert.Contains(t, out, "0.67")
}
