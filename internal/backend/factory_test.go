package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"triplog/internal/config"
	"triplog/internal/core"
	"triplog/internal/storage"
)

func TestFromAppConfig(t *testing.T) {
	app := &config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: "/tmp/x.db",
		MileageRates: "2024:0.70",
	}
	cfg, err := FromAppConfig(app)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "/tmp/x.db" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if got := cfg.Rates.RateFor(2024).String(); got != "0.7" {
		t.Errorf("rate = %s, want 0.7", got)
	}

	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Error("unknown backend should fail")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("nil config should fail")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory ok", Config{Type: MemoryBackend, DataFile: "r.json"}, false},
		{"memory without file", Config{Type: MemoryBackend}, true},
		{"sqlite ok", Config{Type: SQLiteBackend, SQLiteDBPath: "t.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"unknown", Config{Type: "sheets"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func fixedClock() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }

func TestCreateMemoryBackend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "records.json")
	res, err := NewFactory(nil).Create(ctx, Config{Type: MemoryBackend, DataFile: path, Clock: fixedClock})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer res.Cleanup()

	if _, _, err := res.Ledger.AddExpense(ctx, core.ExpenseInput{
		Title:    "Parking",
		Amount:   decimal.RequireFromString("15"),
		Category: core.Miscellaneous,
		Date:     core.NewDate(2024, 3, 15),
	}); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}

	// A second backend over the same file sees the record.
	again, err := NewFactory(nil).Create(ctx, Config{Type: MemoryBackend, DataFile: path})
	if err != nil {
		t.Fatalf("Create again: %v", err)
	}
	snap, err := again.Store.Snapshot(ctx)
	if err != nil || snap.Len() != 1 {
		t.Fatalf("expected persisted record, got %d (%v)", snap.Len(), err)
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	ctx := context.Background()
	res, err := NewFactory(nil).Create(ctx, Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "triplog.db"),
		Clock:        fixedClock,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer res.Cleanup()

	if _, ok := res.Store.(*storage.SQLiteRepository); !ok {
		t.Fatalf("store is %T, want *storage.SQLiteRepository", res.Store)
	}
	result, err := res.Ledger.CaptureVoice(ctx, "drove from home to client 45180 45230", "mileage")
	if err != nil {
		t.Fatalf("CaptureVoice: %v", err)
	}
	if result.Mileage == nil || result.Mileage.Amount.StringFixed(2) != "34.00" {
		t.Fatalf("unexpected capture %+v", result)
	}
}
