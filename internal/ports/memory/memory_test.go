package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"triplog/internal/core"
	"triplog/internal/ports"
)

func mustExpense(t *testing.T, id, title string) core.Expense {
	t.Helper()
	e, err := core.NewExpense(id, core.ExpenseInput{
		Title:    title,
		Amount:   decimal.RequireFromString("12.5"),
		Category: core.Meals,
		Date:     core.NewDate(2024, 2, 3),
	})
	if err != nil {
		t.Fatalf("NewExpense: %v", err)
	}
	return e
}

func TestStoreAddDeleteSnapshot(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.AddExpense(ctx, mustExpense(t, "a", "First")); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	if err := s.AddExpense(ctx, mustExpense(t, "b", "Second")); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}

	before, _ := s.Snapshot(ctx)
	if len(before.Expenses) != 2 || before.Expenses[0].ID != "b" {
		t.Fatalf("expected most recent first, got %+v", before.Expenses)
	}

	if err := s.DeleteExpense(ctx, "a"); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}
	if err := s.DeleteExpense(ctx, "a"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	// Earlier snapshots are unaffected by later mutations.
	if len(before.Expenses) != 2 {
		t.Fatalf("snapshot mutated: %+v", before.Expenses)
	}
	if _, err := s.Expense(ctx, "b"); err != nil {
		t.Fatalf("Expense: %v", err)
	}
}

func TestStorePersistsToFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "records.json")

	s, err := NewFromFile(ctx, path)
	if err != nil {
		t.Fatalf("NewFromFile on missing file: %v", err)
	}
	if err := s.AddExpense(ctx, mustExpense(t, "a", "Lunch")); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}

	reloaded, err := NewFromFile(ctx, path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	e, err := reloaded.Expense(ctx, "a")
	if err != nil {
		t.Fatalf("reloaded Expense: %v", err)
	}
	if e.Title != "Lunch" || core.FormatAmount(e.Amount) != "12.50" {
		t.Fatalf("unexpected reloaded expense: %+v", e)
	}
}

func TestStoreDropsBadEntriesOnLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "records.json")
	content := `[{"type":"expense","id":"x","date":"nope","title":"T","amount":"1.00","category":"Meals"},
		{"type":"expense","id":"y","date":"2024-01-01","title":"T","amount":"1.00","category":"Meals"}]`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := NewFromFile(ctx, path)
	if err != nil {
		t.Fatalf("NewFromFile: %v", err)
	}
	snap, _ := s.Snapshot(ctx)
	if len(snap.Expenses) != 1 || snap.Expenses[0].ID != "y" {
		t.Fatalf("expected only y, got %+v", snap.Expenses)
	}
}

func TestSink(t *testing.T) {
	ctx := context.Background()
	s := NewSink()
	e := mustExpense(t, "a", "Lunch")
	if _, err := s.AppendExpense(ctx, e); err != nil {
		t.Fatalf("AppendExpense: %v", err)
	}
	if _, err := s.AppendExpense(ctx, e); err != nil {
		t.Fatalf("AppendExpense again: %v", err)
	}
	if len(s.Rows()) != 1 || s.Appends() != 2 {
		t.Fatalf("rows=%d appends=%d", len(s.Rows()), s.Appends())
	}
	if err := s.DeleteRecord(ctx, core.KindMileage, "a"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected kind mismatch to be ErrNotFound, got %v", err)
	}
	if err := s.DeleteRecord(ctx, core.KindExpense, "a"); err != nil {
		t.Fatalf("DeleteRecord: %v", err)
	}
}
