package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("TRIPLOG_TEST_KEY=from-dotenv\n"), 0644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer os.Chdir(wd)
	t.Setenv("TRIPLOG_TEST_KEY", "")
	os.Unsetenv("TRIPLOG_TEST_KEY")

	LoadEnvFile()

	if got := os.Getenv("TRIPLOG_TEST_KEY"); got != "from-dotenv" {
		t.Errorf("TRIPLOG_TEST_KEY = %q, want from-dotenv", got)
	}
}

func TestLoadEnvFileMissing(t *testing.T) {
	wd, _ := os.Getwd()
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer os.Chdir(wd)
	LoadEnvFile() // must not panic or exit
}
