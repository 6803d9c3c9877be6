package main

import (
	"context"
	"path/filepath"
	"testing"
)

func setEnv(t *testing.T, dataFile string) {
	t.Helper()
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("DATA_FILE", dataFile)
	t.Setenv("AMQP_URL", "")
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")
	t.Setenv("LOG_LEVEL", "error")
}

func TestRunStopsCleanlyWhenCancelled(t *testing.T) {
	setEnv(t, filepath.Join(t.TempDir(), "records.json"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if code := run(ctx); code != 0 {
		t.Fatalf("run() = %d, want 0", code)
	}
}

func TestRunReturnsErrorCode(t *testing.T) {
	setEnv(t, t.TempDir())

	if code := run(context.Background()); code != 1 {
		t.Fatalf("run() = %d, want 1", code)
	}
}
